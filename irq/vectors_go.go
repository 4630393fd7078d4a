//go:build !tinygo

package irq

import "py32hal/sim"

func init() {
	sim.SetDispatch(Dispatch)
}
