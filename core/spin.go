package core

import "py32hal/errcode"

// DefaultSpinBudget bounds every blocking wait on a hardware flag.
const DefaultSpinBudget = 10000

// SpinUntil polls cond up to budget times. A zero budget uses DefaultSpinBudget.
// It returns a Timeout error naming op and phase when the budget runs out.
func SpinUntil(budget uint32, op, phase string, cond func() bool) error {
	if budget == 0 {
		budget = DefaultSpinBudget
	}
	for i := uint32(0); i < budget; i++ {
		if cond() {
			return nil
		}
		Relax()
	}
	if cond() {
		return nil
	}
	return errcode.New(errcode.Timeout, op, phase)
}
