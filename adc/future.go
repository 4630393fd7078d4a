package adc

import (
	"py32hal/async"
	"py32hal/device/py32"
	"py32hal/irq"
)

// Future is one conversion result awaited on the ADC interrupt.
type Future struct {
	a    *ADC
	ev   irq.Future
	res  async.Result[uint16]
	done bool
}

// ReadAsync waits for the next result of the sequence, starting a conversion
// first as Read does.
func (a *ADC) ReadAsync() *Future {
	f := &Future{a: a}
	if st := a.r(py32.ADC_ISR).Get() & (FlagEOC | FlagOVR); st != 0 {
		f.res.Val, f.res.Err = a.result("adc.ReadAsync", st)
		f.done = true
		return f
	}
	f.ev.Init(irq.ADC, FlagEOC|FlagOVR)
	a.kick()
	return f
}

func (f *Future) Poll(cx *async.Context) (async.Result[uint16], bool) {
	if f.done {
		return f.res, true
	}
	got, ok := f.ev.Poll(cx)
	if !ok {
		return async.Result[uint16]{}, false
	}
	f.ev.Cancel()
	f.res.Val, f.res.Err = f.a.result("adc.ReadAsync", got)
	f.done = true
	return f.res, true
}

// Cancel disarms the interrupt. A conversion already started still completes.
func (f *Future) Cancel() {
	if !f.done {
		f.ev.Cancel()
		f.done = true
	}
}
