//go:build tinygo

package core

import (
	"device/arm"
	"runtime/interrupt"
)

// State is the saved PRIMASK.
type State = interrupt.State

// disableInterrupts disables interrupts and returns the previous state
func disableInterrupts() interrupt.State {
	return interrupt.Disable()
}

// restoreInterrupts restores the interrupt state
func restoreInterrupts(state interrupt.State) {
	interrupt.Restore(state)
}

// Relax is called from spin loops.
func Relax() {
	arm.Asm("nop")
}

// WaitForInterrupt sleeps until the next interrupt.
func WaitForInterrupt() {
	arm.Asm("wfi")
}
