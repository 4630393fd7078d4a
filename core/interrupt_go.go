//go:build !tinygo

package core

import "py32hal/sim"

// State is the saved PRIMASK of the simulated core.
type State uint32

// disableInterrupts masks simulated interrupts and returns the previous state
func disableInterrupts() State {
	return State(sim.DisableIRQ())
}

// restoreInterrupts restores the simulated interrupt mask
func restoreInterrupts(state State) {
	sim.RestoreIRQ(uint32(state))
}

// Relax lets simulated hardware make progress while software spins.
func Relax() {
	sim.Relax()
}

// WaitForInterrupt idles the simulated core until an interrupt is taken.
func WaitForInterrupt() {
	sim.WaitForInterrupt()
}
