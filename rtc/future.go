package rtc

import (
	"py32hal/async"
	"py32hal/device/py32"
	"py32hal/errcode"
	"py32hal/irq"
)

// events bridges CRL flags and CRH enables to the interrupt layer.
type events struct{}

func (events) Flags() uint32 { return regs.At(py32.RTC_CRL).Get() & allFlags }

func (events) Clear(m uint32) { regs.At(py32.RTC_CRL).Set(keepCRL &^ (m & allFlags)) }

func (events) Enable(m uint32) { regs.At(py32.RTC_CRH).SetBits(m & allFlags) }

func (events) Disable(m uint32) { regs.At(py32.RTC_CRH).ClearBits(m & allFlags) }

func (events) Enabled() uint32 { return regs.At(py32.RTC_CRH).Get() & allFlags }

func attach() { irq.Register(irq.RTC, events{}) }
func detach() { irq.Register(irq.RTC, nil) }

// Future waits for an RTC event and yields the counter at wake-up.
type Future struct {
	r    *RTC
	ev   irq.Future
	res  async.Result[uint32]
	done bool
}

// WaitAlarm completes when the counter reaches after seconds from now.
func (r *RTC) WaitAlarm(after uint32) *Future {
	f := &Future{r: r}
	if after == 0 {
		f.res.Val, f.done = r.Read(), true
		return f
	}
	if err := r.setAlarm("rtc.WaitAlarm", r.Read()+after); err != nil {
		f.res.Err, f.done = err, true
		return f
	}
	f.ev.Init(irq.RTC, FlagAlarm)
	return f
}

// WaitSecond completes on the next counter tick.
func (r *RTC) WaitSecond() *Future {
	f := &Future{r: r}
	f.ev.Init(irq.RTC, FlagSecond)
	return f
}

func (f *Future) Poll(cx *async.Context) (async.Result[uint32], bool) {
	if f.done {
		return f.res, true
	}
	if _, ok := f.ev.Poll(cx); !ok {
		return async.Result[uint32]{}, false
	}
	f.res.Val, f.done = f.r.Read(), true
	return f.res, true
}

// Cancel disarms the interrupt.
func (f *Future) Cancel() {
	if f.done {
		return
	}
	f.ev.Cancel()
	f.res.Err = errcode.New(errcode.Timeout, "rtc.Wait", "canceled")
	f.done = true
}
