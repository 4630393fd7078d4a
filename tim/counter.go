package tim

import (
	"py32hal/async"
	"py32hal/core"
	"py32hal/device/py32"
	"py32hal/errcode"
	"py32hal/irq"
	"py32hal/periph"
	"py32hal/rcc"
)

// Counter measures intervals with one timer.
//
// Repetitions that fit the hardware repetition counter (TIM1, up to 256) are
// counted there; longer ones are counted in software, one update event at a
// time.
type Counter struct {
	timer
	left uint32 // update events still to see
}

// NewCounter claims tok's timer in counter mode.
func NewCounter(tok *periph.Token) (*Counter, error) {
	t, err := open(tok, "tim.NewCounter")
	if err != nil {
		return nil, err
	}
	return &Counter{timer: t}, nil
}

// Start programs an interval of t units of 1/scale seconds and starts the
// counter.
func (c *Counter) Start(t uint64, scale uint64) error {
	tm, err := Periods(rcc.TimerClock(), t, scale)
	if err != nil {
		return err
	}
	c.StartTiming(tm)
	return nil
}

// StartTiming starts the counter with precomputed register values.
func (c *Counter) StartTiming(tm Timing) {
	c.Stop()
	c.r(py32.TIM_PSC).Set(uint32(tm.Prescaler))
	c.r(py32.TIM_ARR).Set(uint32(tm.Reload))
	c.left = tm.Repeat + 1
	if c.d.rcr {
		if tm.Repeat <= 0xFF {
			c.r(py32.TIM_RCR).Set(tm.Repeat)
			c.left = 1
		} else {
			c.r(py32.TIM_RCR).Set(0)
		}
	}
	c.update()
	c.r(py32.TIM_CR1).SetBit(py32.TIM_CR1_CEN)
}

// Stop disables the counter.
func (c *Counter) Stop() {
	c.r(py32.TIM_CR1).ClearBit(py32.TIM_CR1_CEN)
}

// Expired consumes one update event if there is one and reports whether the
// interval has elapsed.
func (c *Counter) Expired() bool {
	if c.left == 0 {
		return true
	}
	if c.r(py32.TIM_SR).Bit(py32.TIM_SR_UIF) {
		c.clear(Update)
		c.left--
	}
	return c.left == 0
}

// Wait spins until the running interval elapses, then stops the counter.
func (c *Counter) Wait() error {
	for !c.Expired() {
		if !c.Running() {
			return errcode.New(errcode.Timeout, "tim.Wait", errcode.PhaseComplete)
		}
		core.Relax()
	}
	c.Stop()
	return nil
}

// Delay blocks for us microseconds.
func (c *Counter) Delay(us uint32) error {
	if err := c.Start(uint64(us), Micros); err != nil {
		return err
	}
	return c.Wait()
}

// DelayNS blocks for ns nanoseconds, rounded down to the timer tick.
func (c *Counter) DelayNS(ns uint32) error {
	if err := c.Start(uint64(ns), Nanos); err != nil {
		return err
	}
	return c.Wait()
}

// DelayFuture completes when a counter interval elapses. Cancelling it stops
// the counter.
type DelayFuture struct {
	c    *Counter
	fut  irq.Future
	err  error
	done bool
}

// DelayAsync starts a us microsecond interval and returns a future for it.
func (c *Counter) DelayAsync(us uint32) *DelayFuture {
	if err := c.Start(uint64(us), Micros); err != nil {
		return &DelayFuture{c: c, err: err, done: true}
	}
	return c.WaitAsync()
}

// WaitAsync returns a future for the interval already running.
func (c *Counter) WaitAsync() *DelayFuture {
	f := &DelayFuture{c: c}
	if c.Expired() {
		c.Stop()
		f.done = true
		return f
	}
	f.fut.Init(c.d.inst, Update)
	return f
}

func (f *DelayFuture) Poll(cx *async.Context) (error, bool) {
	if f.done {
		return f.err, true
	}
	for {
		if _, ok := f.fut.Poll(cx); !ok {
			return nil, false
		}
		f.c.left--
		if f.c.left == 0 {
			f.c.Stop()
			f.done = true
			return nil, true
		}
		f.fut.Rearm()
	}
}

// Cancel disarms the update interrupt and stops the counter.
func (f *DelayFuture) Cancel() {
	if f.done {
		return
	}
	f.fut.Cancel()
	f.c.Stop()
	f.done = true
}

// Close stops the timer and releases it.
func (c *Counter) Close() {
	c.close()
}
