// Package tim drives TIM1 (advanced) and the general-purpose timers TIM3,
// TIM14, TIM16 and TIM17.
//
// Every timer offers two surfaces: Counter, which turns time intervals into
// prescaler/reload/repetition and waits for them, and PWM, which drives the
// capture/compare outputs.
package tim

import (
	"py32hal/core"
	"py32hal/device/py32"
	"py32hal/errcode"
	"py32hal/irq"
	"py32hal/periph"
	"py32hal/reg"
)

// Channel is a capture/compare channel, 1 to 4.
type Channel uint8

const (
	CH1 Channel = 1 + iota
	CH2
	CH3
	CH4
)

type desc struct {
	id       periph.ID
	inst     irq.Instance
	base     reg.Block
	channels Channel
	rcr      bool // hardware repetition counter
	bdtr     bool // break, dead time and main output enable
	comp     bool // complementary outputs on channels 1..3 (1 on TIM16/17)
}

var descs = [...]desc{
	{periph.TIM1, irq.TIM1, reg.Block(py32.TIM1_BASE), 4, true, true, true},
	{periph.TIM3, irq.TIM3, reg.Block(py32.TIM3_BASE), 4, false, false, false},
	{periph.TIM14, irq.TIM14, reg.Block(py32.TIM14_BASE), 1, false, false, false},
	{periph.TIM16, irq.TIM16, reg.Block(py32.TIM16_BASE), 1, false, true, true},
	{periph.TIM17, irq.TIM17, reg.Block(py32.TIM17_BASE), 1, false, true, true},
}

func lookup(id periph.ID) *desc {
	for i := range descs {
		if descs[i].id == id {
			return &descs[i]
		}
	}
	return nil
}

// Events, in SR/DIER bit positions.
const (
	Update  uint32 = 1 << py32.TIM_SR_UIF
	CC1     uint32 = 1 << py32.TIM_SR_CC1IF
	CC2     uint32 = CC1 << 1
	CC3     uint32 = CC1 << 2
	CC4     uint32 = CC1 << 3
	Commute uint32 = 1 << py32.TIM_SR_COMIF
	Trigger uint32 = 1 << py32.TIM_SR_TIF
	Break   uint32 = 1 << py32.TIM_SR_BIF

	allEvents uint32 = 0xFF
)

// timer is the state shared by the Counter and PWM surfaces.
type timer struct {
	d   *desc
	tok *periph.Token
}

func open(tok *periph.Token, op string) (timer, error) {
	if tok == nil {
		return timer{}, errcode.New(errcode.InvalidConfig, op, "token")
	}
	d := lookup(tok.ID())
	if d == nil {
		return timer{}, errcode.New(errcode.InvalidConfig, op, tok.ID().String())
	}
	if err := tok.Claim(); err != nil {
		return timer{}, err
	}
	irq.Register(d.inst, events{d.base})
	return timer{d: d, tok: tok}, nil
}

func (t *timer) r(off uint32) reg.Register { return t.d.base.At(off) }

func (t *timer) checkChannel(ch Channel, op string) error {
	if ch < CH1 || ch > t.d.channels {
		return errcode.New(errcode.InvalidChannel, op, core.Itoa(int(ch)))
	}
	return nil
}

// Running reports whether the counter is enabled.
func (t *timer) Running() bool {
	return t.r(py32.TIM_CR1).Bit(py32.TIM_CR1_CEN)
}

// ID returns the timer's peripheral identity.
func (t *timer) ID() periph.ID { return t.d.id }

// update forces an update event to load PSC, ARR and RCR without raising UIF.
func (t *timer) update() {
	cr1 := t.r(py32.TIM_CR1)
	cr1.SetBit(py32.TIM_CR1_URS)
	t.r(py32.TIM_EGR).Set(1 << py32.TIM_EGR_UG)
	t.clear(Update)
}

func (t *timer) clear(m uint32) {
	// rc_w0: writing 0 clears, 1 leaves the flag alone.
	t.r(py32.TIM_SR).Set(^m & 0xFFFF)
}

func (t *timer) close() {
	t.r(py32.TIM_CR1).ClearBit(py32.TIM_CR1_CEN)
	t.r(py32.TIM_DIER).Set(0)
	irq.Register(t.d.inst, nil)
	t.tok.Release()
}

type events struct{ b reg.Block }

func (e events) Flags() uint32   { return e.b.At(py32.TIM_SR).Get() & allEvents }
func (e events) Clear(m uint32)  { e.b.At(py32.TIM_SR).Set(^(m & allEvents) & 0xFFFF) }
func (e events) Enabled() uint32 { return e.b.At(py32.TIM_DIER).Get() & allEvents }
func (e events) Enable(m uint32) {
	core.With(func() { e.b.At(py32.TIM_DIER).SetBits(m & allEvents) })
}
func (e events) Disable(m uint32) {
	core.With(func() { e.b.At(py32.TIM_DIER).ClearBits(m & allEvents) })
}
