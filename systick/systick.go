// Package systick drives the core tick from SysTick and offers millisecond
// delays on top of it, blocking and as futures.
package systick

import (
	"py32hal/async"
	"py32hal/core"
	"py32hal/device/py32"
	"py32hal/errcode"
	"py32hal/irq"
	"py32hal/rcc"
	"py32hal/reg"
)

var regs = reg.Block(py32.SYSTICK_BASE)

// Reload returns the SysTick reload for rate ticks per second at hclk.
func Reload(hclk, rate uint32) (uint32, error) {
	if rate == 0 || hclk/rate == 0 || hclk/rate-1 > py32.SYST_RVR_MAX {
		return 0, errcode.New(errcode.InvalidFrequency, "systick.Start", core.Utoa(rate))
	}
	return hclk/rate - 1, nil
}

// Start runs SysTick from HCLK at rate Hz, zero meaning
// core.DefaultTickRate. Each tick advances core.Now and runs due alarms.
func Start(rate uint32) error {
	if rate == 0 {
		rate = core.DefaultTickRate
	}
	reload, err := Reload(rcc.Current().HCLK, rate)
	if err != nil {
		return err
	}
	Stop()
	core.SetTickRate(rate)
	irq.HandleSysTick(core.Tick)
	regs.At(py32.SYST_RVR).Set(reload)
	regs.At(py32.SYST_CVR).Set(0)
	regs.At(py32.SYST_CSR).Set(1<<py32.SYST_CSR_CLKSOURCE | 1<<py32.SYST_CSR_TICKINT | 1<<py32.SYST_CSR_ENABLE)
	core.Debug("systick: " + core.Utoa(rate) + " Hz")
	return nil
}

// Stop halts the tick. core.Now holds its value.
func Stop() {
	regs.At(py32.SYST_CSR).Set(0)
}

// Running reports whether the tick is enabled.
func Running() bool {
	return regs.At(py32.SYST_CSR).Bit(py32.SYST_CSR_ENABLE)
}

// Now returns ticks since Start.
func Now() uint64 { return core.Now() }

// Millis returns milliseconds since Start.
func Millis() uint64 { return core.TicksToMS(core.Now()) }

// Delay blocks for at least ms milliseconds, sleeping between ticks.
func Delay(ms uint32) {
	until := core.Now() + core.TicksFromMS(ms)
	for core.Now() < until {
		core.Idle(func() bool { return core.Now() >= until })
	}
}

// SleepFuture completes once its deadline tick has passed.
type SleepFuture struct {
	until uint64
	t     core.Timer
	w     async.AtomicWaker
}

// Sleep returns a future that completes after at least ms milliseconds.
func Sleep(ms uint32) *SleepFuture {
	return SleepUntil(core.Now() + core.TicksFromMS(ms))
}

// SleepUntil returns a future that completes at tick until.
func SleepUntil(until uint64) *SleepFuture {
	f := &SleepFuture{until: until}
	f.t.WakeTime = until
	f.t.Handler = func(*core.Timer) uint8 {
		f.w.Wake()
		return core.SF_DONE
	}
	core.ScheduleTimer(&f.t)
	return f
}

func (f *SleepFuture) Poll(cx *async.Context) (struct{}, bool) {
	f.w.Register(cx.Waker())
	if core.Now() >= f.until {
		f.w.Take()
		core.CancelTimer(&f.t)
		return struct{}{}, true
	}
	return struct{}{}, false
}

// Cancel unschedules the alarm.
func (f *SleepFuture) Cancel() {
	f.w.Take()
	core.CancelTimer(&f.t)
}
