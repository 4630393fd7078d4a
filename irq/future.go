package irq

import (
	"math/bits"

	"py32hal/async"
	"py32hal/core"
)

// Future waits until at least one event in its mask is flagged and returns
// the observed subset, with those flags cleared.
type Future struct {
	inst  Instance
	mask  uint32
	got   uint32
	state uint8
}

const (
	futureArmed uint8 = iota
	futureDone
	futureCanceled
)

// NewFuture clears the flags in mask on inst, enables them and unmasks the
// NVIC line.
func NewFuture(inst Instance, mask uint32) *Future {
	f := &Future{inst: inst, mask: mask}
	f.arm()
	return f
}

// Init arms f in place, for drivers that embed a Future instead of
// allocating one.
func (f *Future) Init(inst Instance, mask uint32) {
	*f = Future{inst: inst, mask: mask}
	f.arm()
}

func (f *Future) arm() {
	src := sources[f.inst]
	if src == nil {
		f.state = futureCanceled
		return
	}
	src.Clear(f.mask)
	src.Enable(f.mask)
	core.RecordEvent(core.EvtArm, uint8(f.inst), f.mask, 0)
	Refresh(f.inst)
}

// Poll registers the task on every requested event slot, then reports the
// flagged subset. Events that completed are cleared and disabled; the rest
// are re-enabled in case the handler masked them for a flag that has since
// gone away.
func (f *Future) Poll(cx *async.Context) (uint32, bool) {
	switch f.state {
	case futureDone:
		return f.got, true
	case futureCanceled:
		return 0, true
	}
	src := sources[f.inst]
	if src == nil {
		// Source detached while armed.
		f.release()
		f.state = futureCanceled
		return 0, true
	}
	for m := f.mask; m != 0; m &= m - 1 {
		Slots[f.inst][bits.TrailingZeros32(m)%EventsPerInstance].Register(cx.Waker())
	}
	got := src.Flags() & f.mask
	if got != 0 {
		src.Clear(got)
		f.finish()
		f.got = got
		f.state = futureDone
		return got, true
	}
	src.Enable(f.mask)
	Refresh(f.inst)
	return 0, false
}

// Rearm re-enables a completed future for the same events without clearing
// flags, so an event that fired since the last poll is not lost.
func (f *Future) Rearm() {
	src := sources[f.inst]
	if src == nil {
		f.state = futureCanceled
		return
	}
	f.got = 0
	f.state = futureArmed
	src.Enable(f.mask)
	core.RecordEvent(core.EvtArm, uint8(f.inst), f.mask, 0)
	Refresh(f.inst)
}

// Cancel disables whatever the future still has armed. Safe to call after
// completion.
func (f *Future) Cancel() {
	if f.state != futureArmed {
		return
	}
	f.finish()
	f.state = futureCanceled
}

func (f *Future) finish() {
	src := sources[f.inst]
	if src == nil {
		return
	}
	src.Disable(f.mask)
	f.release()
	core.RecordEvent(core.EvtDisarm, uint8(f.inst), f.mask, 0)
	Refresh(f.inst)
}

func (f *Future) release() {
	for m := f.mask; m != 0; m &= m - 1 {
		Slots[f.inst][bits.TrailingZeros32(m)%EventsPerInstance].Take()
	}
}

// Done reports whether the future has completed or been cancelled.
func (f *Future) Done() bool {
	return f.state != futureArmed
}
