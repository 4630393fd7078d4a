package tim

import (
	"math/bits"

	"py32hal/core"
	"py32hal/errcode"
)

// Interval scales for Periods.
const (
	Micros uint64 = 1000000
	Nanos  uint64 = 1000000000
)

const span = 1 << 16

// Timing is a programmed interval: the update event fires every
// (Prescaler+1)·(Reload+1) input ticks, and the interval ends after
// Repeat+1 update events.
type Timing struct {
	Prescaler uint16
	Reload    uint16
	Repeat    uint32
}

// Ticks returns the interval length in timer input clock ticks.
func (t Timing) Ticks() uint64 {
	return (uint64(t.Prescaler) + 1) * (uint64(t.Reload) + 1) * (uint64(t.Repeat) + 1)
}

// Periods converts interval t, in units of 1/scale seconds, at timer clock f
// into prescaler, auto-reload and repetition. Intervals shorter than one tick
// round up to one tick.
func Periods(f uint32, t uint64, scale uint64) (Timing, error) {
	if f == 0 || scale == 0 {
		return Timing{}, errcode.New(errcode.InvalidFrequency, "tim.Periods", "clock")
	}
	hi, lo := bits.Mul64(t, uint64(f))
	if hi >= scale {
		return Timing{}, errcode.New(errcode.InvalidFrequency, "tim.Periods", "interval")
	}
	ticks, _ := bits.Div64(hi, lo, scale)
	if ticks == 0 {
		ticks = 1
	}
	rep := uint64(1)
	if ticks > span*span {
		rep = core.CeilDiv(ticks, span*span)
		if rep > 1<<32 {
			return Timing{}, errcode.New(errcode.InvalidFrequency, "tim.Periods", "interval")
		}
		ticks /= rep
	}
	psc := uint64(0)
	if ticks > span {
		psc = core.CeilDiv(ticks, span) - 1
	}
	arr := ticks/(psc+1) - 1
	return Timing{Prescaler: uint16(psc), Reload: uint16(arr), Repeat: uint32(rep - 1)}, nil
}
