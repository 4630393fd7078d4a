package tim

import (
	"py32hal/core"
	"py32hal/device/py32"
	"py32hal/errcode"
	"py32hal/gpio"
	"py32hal/periph"
	"py32hal/rcc"
)

// OCMode is the output compare mode of a channel.
type OCMode uint8

const (
	Frozen    OCMode = 0
	Toggle    OCMode = 3
	ForceLow  OCMode = 4
	ForceHigh OCMode = 5
	PWM1      OCMode = 6 // active while CNT < CCR
	PWM2      OCMode = 7 // inactive while CNT < CCR
)

type Polarity uint8

const (
	ActiveHigh Polarity = iota
	ActiveLow
)

// Direction of counting.
type Direction uint8

const (
	Up Direction = iota
	Down
)

// CenterMode selects edge- or center-aligned counting; the three center modes
// differ in which direction sets the compare flags.
type CenterMode uint8

const (
	EdgeAligned CenterMode = iota
	CenterDown
	CenterUp
	CenterBoth
)

// ChannelConfig configures one output channel. The complementary fields apply
// to TIM1 channels 1-3 and TIM16/TIM17 channel 1.
type ChannelConfig struct {
	Mode     OCMode
	Polarity Polarity
	IdleHigh bool
	Preload  bool

	Complementary bool
	NPolarity     Polarity
	NIdleHigh     bool
}

// PWM drives a timer's compare outputs.
type PWM struct {
	timer
	comp uint8 // channels with the complementary output configured
	pins []*gpio.IO
}

// NewPWM claims tok's timer in PWM mode with auto-reload preload on.
func NewPWM(tok *periph.Token) (*PWM, error) {
	t, err := open(tok, "tim.NewPWM")
	if err != nil {
		return nil, err
	}
	t.r(py32.TIM_CR1).SetBit(py32.TIM_CR1_ARPE)
	return &PWM{timer: t}, nil
}

// SetFrequency sets the counter clock to hz.
func (p *PWM) SetFrequency(hz uint32) error {
	f := rcc.TimerClock()
	if hz == 0 || hz > f {
		return errcode.New(errcode.InvalidFrequency, "tim.SetFrequency", core.Utoa(hz))
	}
	psc := f/hz - 1
	if psc > 0xFFFF {
		return errcode.New(errcode.InvalidFrequency, "tim.SetFrequency", core.Utoa(hz))
	}
	p.r(py32.TIM_PSC).Set(psc)
	if !p.Running() {
		p.update()
	}
	return nil
}

// Frequency returns the counter clock.
func (p *PWM) Frequency() uint32 {
	return rcc.TimerClock() / (p.r(py32.TIM_PSC).Get() + 1)
}

// SetPeriod sets the auto-reload value; the waveform period is arr+1 counter
// ticks. While running it takes effect at the next update.
func (p *PWM) SetPeriod(arr uint16) {
	p.r(py32.TIM_ARR).Set(uint32(arr))
	if !p.Running() {
		p.update()
	}
}

// Period returns the auto-reload value.
func (p *PWM) Period() uint16 {
	return uint16(p.r(py32.TIM_ARR).Get())
}

// MaxDuty is the duty that keeps a PWM1 output active for the whole period.
func (p *PWM) MaxDuty() uint32 {
	return p.r(py32.TIM_ARR).Get() + 1
}

// SetDuty sets channel ch's compare value, clamped to MaxDuty.
func (p *PWM) SetDuty(ch Channel, duty uint32) error {
	if err := p.checkChannel(ch, "tim.SetDuty"); err != nil {
		return err
	}
	duty = core.Clamp(duty, 0, p.MaxDuty())
	p.r(ccr(ch)).Set(core.Clamp(duty, 0, 0xFFFF))
	return nil
}

// Duty returns channel ch's compare value.
func (p *PWM) Duty(ch Channel) uint32 {
	if p.checkChannel(ch, "tim.Duty") != nil {
		return 0
	}
	return p.r(ccr(ch)).Get()
}

func ccr(ch Channel) uint32 {
	return py32.TIM_CCR1 + 4*uint32(ch-1)
}

// ConfigureChannel programs mode, polarity and idle state of ch. The channel
// stays disabled until EnableChannel.
func (p *PWM) ConfigureChannel(ch Channel, cfg ChannelConfig) error {
	if err := p.checkChannel(ch, "tim.ConfigureChannel"); err != nil {
		return err
	}
	if cfg.Complementary && (!p.d.comp || ch == CH4) {
		return errcode.New(errcode.InvalidChannel, "tim.ConfigureChannel", "complementary "+core.Itoa(int(ch)))
	}
	if cfg.Mode > PWM2 {
		return errcode.New(errcode.InvalidConfig, "tim.ConfigureChannel", "mode")
	}
	i := uint8(ch - 1)
	ccmr := p.r(py32.TIM_CCMR1 + 4*uint32(i/2))
	sh := 8 * (i % 2)
	v := ccmr.Get() &^ (0xFF << sh)
	v |= uint32(cfg.Mode) << (sh + py32.TIM_CCMR_OCM_Pos)
	if cfg.Preload {
		v |= 1 << (sh + py32.TIM_CCMR_OCPE)
	}
	ccmr.Set(v)

	ccer := p.r(py32.TIM_CCER)
	pol := uint32(1<<py32.TIM_CCER_CCP|1<<py32.TIM_CCER_CCNP) << (4 * i)
	var set uint32
	if cfg.Polarity == ActiveLow {
		set |= 1 << (4*i + py32.TIM_CCER_CCP)
	}
	if cfg.Complementary && cfg.NPolarity == ActiveLow {
		set |= 1 << (4*i + py32.TIM_CCER_CCNP)
	}
	ccer.Set(ccer.Get()&^pol | set)

	if p.d.bdtr {
		cr2 := p.r(py32.TIM_CR2)
		ois := uint8(py32.TIM_CR2_OIS1 + 2*i)
		idle := cr2.Get() &^ (3 << ois)
		if cfg.IdleHigh {
			idle |= 1 << ois
		}
		if cfg.Complementary && cfg.NIdleHigh {
			idle |= 2 << ois
		}
		cr2.Set(idle)
	}
	if cfg.Complementary {
		p.comp |= 1 << i
	} else {
		p.comp &^= 1 << i
	}
	return nil
}

// EnableChannel turns ch's output on, together with its complementary output
// if one is configured.
func (p *PWM) EnableChannel(ch Channel) error {
	if err := p.checkChannel(ch, "tim.EnableChannel"); err != nil {
		return err
	}
	p.r(py32.TIM_CCER).SetBits(p.enableBits(ch))
	return nil
}

// DisableChannel turns ch's outputs off.
func (p *PWM) DisableChannel(ch Channel) error {
	if err := p.checkChannel(ch, "tim.DisableChannel"); err != nil {
		return err
	}
	i := uint8(ch - 1)
	p.r(py32.TIM_CCER).ClearBits(uint32(1<<py32.TIM_CCER_CCE|1<<py32.TIM_CCER_CCNE) << (4 * i))
	return nil
}

func (p *PWM) enableBits(ch Channel) uint32 {
	i := uint8(ch - 1)
	m := uint32(1) << (4*i + py32.TIM_CCER_CCE)
	if p.comp&(1<<i) != 0 {
		m |= 1 << (4*i + py32.TIM_CCER_CCNE)
	}
	return m
}

// ChannelEnabled reports whether ch's main output is on.
func (p *PWM) ChannelEnabled(ch Channel) bool {
	if p.checkChannel(ch, "tim.ChannelEnabled") != nil {
		return false
	}
	return p.r(py32.TIM_CCER).Bit(4*uint8(ch-1) + py32.TIM_CCER_CCE)
}

// Start enables the counter and, on timers with a break unit, the main
// output.
func (p *PWM) Start() {
	if p.d.bdtr {
		p.r(py32.TIM_BDTR).SetBit(py32.TIM_BDTR_MOE)
	}
	p.r(py32.TIM_CR1).SetBit(py32.TIM_CR1_CEN)
}

// Stop disables the counter and the main output.
func (p *PWM) Stop() {
	p.r(py32.TIM_CR1).ClearBit(py32.TIM_CR1_CEN)
	if p.d.bdtr {
		p.r(py32.TIM_BDTR).ClearBit(py32.TIM_BDTR_MOE)
	}
}

// SetDirection selects up or down counting. Refused while running.
func (p *PWM) SetDirection(d Direction) error {
	if p.Running() {
		return errcode.New(errcode.Busy, "tim.SetDirection", "running")
	}
	if d == Down {
		p.r(py32.TIM_CR1).SetBit(py32.TIM_CR1_DIR)
	} else {
		p.r(py32.TIM_CR1).ClearBit(py32.TIM_CR1_DIR)
	}
	return nil
}

// SetCenterAligned selects the alignment mode. Refused while running.
func (p *PWM) SetCenterAligned(m CenterMode) error {
	if p.Running() {
		return errcode.New(errcode.Busy, "tim.SetCenterAligned", "running")
	}
	if m > CenterBoth {
		return errcode.New(errcode.InvalidConfig, "tim.SetCenterAligned", "mode")
	}
	p.r(py32.TIM_CR1).SetField(py32.TIM_CR1_CMS_Pos, py32.TIM_CR1_CMS_Len, uint32(m))
	return nil
}

// SetDeadTime inserts ns nanoseconds between a complementary pair's edges.
func (p *PWM) SetDeadTime(ns uint32) error {
	if !p.d.bdtr {
		return errcode.New(errcode.InvalidConfig, "tim.SetDeadTime", p.d.id.String())
	}
	ticks := uint64(ns) * uint64(rcc.TimerClock()) / Nanos
	dtg, ok := deadTimeBits(ticks)
	if !ok {
		return errcode.New(errcode.InvalidConfig, "tim.SetDeadTime", core.Utoa(ns))
	}
	p.r(py32.TIM_BDTR).SetField(py32.TIM_BDTR_DTG_Pos, py32.TIM_BDTR_DTG_Len, dtg)
	return nil
}

// deadTimeBits encodes a dead time in timer ticks into the DTG field, rounding
// down to the nearest representable step.
func deadTimeBits(ticks uint64) (uint32, bool) {
	switch {
	case ticks <= 127:
		return uint32(ticks), true
	case ticks <= 254:
		return 0x80 | uint32(ticks/2-64), true
	case ticks <= 504:
		return 0xC0 | uint32(ticks/8-32), true
	case ticks <= 1008:
		return 0xE0 | uint32(ticks/16-32), true
	}
	return 0, false
}

// EnableBreak arms the break input. With autoOutput the main output comes
// back at the next update after the break clears.
func (p *PWM) EnableBreak(activeHigh, autoOutput bool) error {
	if !p.d.bdtr {
		return errcode.New(errcode.InvalidConfig, "tim.EnableBreak", p.d.id.String())
	}
	bdtr := p.r(py32.TIM_BDTR)
	v := bdtr.Get() | 1<<py32.TIM_BDTR_BKE
	v &^= 1<<py32.TIM_BDTR_BKP | 1<<py32.TIM_BDTR_AOE
	if activeHigh {
		v |= 1 << py32.TIM_BDTR_BKP
	}
	if autoOutput {
		v |= 1 << py32.TIM_BDTR_AOE
	}
	bdtr.Set(v)
	return nil
}

// Broken reports whether a break has cut the outputs.
func (p *PWM) Broken() bool {
	return p.d.bdtr && p.r(py32.TIM_SR).Bit(py32.TIM_SR_BIF)
}

// Resume clears a break and turns the main output back on.
func (p *PWM) Resume() {
	if !p.d.bdtr {
		return
	}
	p.clear(Break)
	p.r(py32.TIM_BDTR).SetBit(py32.TIM_BDTR_MOE)
}

// Attach routes out to its pin. The output must belong to this timer.
func (p *PWM) Attach(out Output) error {
	if out.id != p.d.id {
		return errcode.New(errcode.InvalidPin, "tim.Attach", out.id.String())
	}
	if out.ch != 0 {
		if err := p.checkChannel(out.ch, "tim.Attach"); err != nil {
			return err
		}
	}
	io, err := gpio.NewAltFn(out.pin, out.af, gpio.PushPull, gpio.PullNone, gpio.SpeedHigh)
	if err != nil {
		return err
	}
	p.pins = append(p.pins, io)
	return nil
}

// Close stops the timer, disables its outputs, frees its pins and releases
// it.
func (p *PWM) Close() {
	p.Stop()
	p.r(py32.TIM_CCER).Set(0)
	for _, io := range p.pins {
		io.Close()
	}
	p.pins = nil
	p.close()
}
