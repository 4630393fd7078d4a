package core

// With runs fn with interrupts disabled on this core.
//
// Used for read-modify-write of registers shared between drivers: clock gates,
// EXTI routing and edge selection, SYSCFG DMA mapping and NVIC enables.
func With(fn func()) {
	state := disableInterrupts()
	defer restoreInterrupts(state)
	fn()
}

// Idle sleeps until the next interrupt unless ready reports pending work.
// The check and the sleep happen with interrupts masked so a wake between the
// two is not lost: a pending interrupt still ends the wait, and its handler
// runs once the mask is restored.
func Idle(ready func() bool) {
	state := disableInterrupts()
	if !ready() {
		WaitForInterrupt()
	}
	restoreInterrupts(state)
}
