//go:build tinygo

package core

import "runtime/interrupt"

// Cortex-M0+ has no 64-bit atomics, so the counter is guarded by PRIMASK.
var systemTicks uint64

func loadTicks() uint64 {
	state := interrupt.Disable()
	t := systemTicks
	interrupt.Restore(state)
	return t
}

func storeTicks(t uint64) {
	state := interrupt.Disable()
	systemTicks = t
	interrupt.Restore(state)
}

// addTick is only called from the SysTick handler.
func addTick() uint64 {
	systemTicks++
	return systemTicks
}
