package core

// DefaultTickRate is the SysTick rate used when none is configured.
const DefaultTickRate = 1000

var tickRate uint32 = DefaultTickRate

// Now returns the 64-bit monotonic tick count.
func Now() uint64 {
	return loadTicks()
}

// SetTime overwrites the tick count (for tests and warm restarts)
func SetTime(ticks uint64) {
	storeTicks(ticks)
}

// TickRate returns the configured tick frequency in Hz.
func TickRate() uint32 {
	return tickRate
}

// SetTickRate records the tick frequency. Called by the SysTick driver.
func SetTickRate(hz uint32) {
	if hz == 0 {
		hz = DefaultTickRate
	}
	tickRate = hz
}

// TicksFromMS converts milliseconds to ticks, rounding up.
func TicksFromMS(ms uint32) uint64 {
	return CeilDiv(uint64(ms)*uint64(tickRate), 1000)
}

// TicksToMS converts ticks to milliseconds.
func TicksToMS(ticks uint64) uint64 {
	return ticks * 1000 / uint64(tickRate)
}

// Tick advances the clock by one tick and runs due alarms.
// Must be called from the SysTick handler only.
func Tick() {
	now := addTick()
	TimerDispatch(now)
}
