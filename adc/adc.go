// Package adc drives the 12-bit successive-approximation ADC: channel scans
// in single, continuous or discontinuous mode, calibration, and the internal
// temperature and reference channels.
package adc

import (
	"py32hal/core"
	"py32hal/device/py32"
	"py32hal/errcode"
	"py32hal/gpio"
	"py32hal/irq"
	"py32hal/periph"
	"py32hal/reg"
)

// Channels is a set of input channels, bit n for channel n.
type Channels uint16

const (
	ChTemp Channels = 1 << py32.ADC_CH_TEMP
	ChVref Channels = 1 << py32.ADC_CH_VREF

	allChannels Channels = 1<<py32.ADC_CHANNELS - 1
)

// Channel returns the set holding only channel n.
func Channel(n uint8) Channels { return 1 << n }

// Count returns the number of channels in the set.
func (c Channels) Count() int {
	n := 0
	for ; c != 0; c &= c - 1 {
		n++
	}
	return n
}

type Mode uint8

const (
	// Single converts the sequence once per start.
	Single Mode = iota
	// Continuous restarts the sequence after its last channel.
	Continuous
	// Discontinuous converts one channel of the sequence per start.
	Discontinuous
)

// SampleTime is the sampling window in ADC clock cycles.
type SampleTime uint8

const (
	Sample3_5 SampleTime = iota
	Sample5_5
	Sample7_5
	Sample13_5
	Sample28_5
	Sample41_5
	Sample71_5
	Sample239_5
)

// Resolution is the conversion width. The zero value is 12 bits.
type Resolution uint8

const (
	Bits12 Resolution = iota
	Bits10
	Bits8
	Bits6
)

// Bits returns the width in bits.
func (r Resolution) Bits() uint8 { return 12 - 2*uint8(r) }

// Edge selects how an external trigger starts a conversion. Software means no
// external trigger.
type Edge uint8

const (
	Software Edge = iota
	Rising
	Falling
	BothEdges
)

// Trigger sources for an external edge.
const (
	TrigTIM1TRGO uint8 = 0
	TrigTIM1CC4  uint8 = 1
	TrigTIM3TRGO uint8 = 3
)

// Trigger starts conversions on an edge of Source.
type Trigger struct {
	Edge   Edge
	Source uint8
}

// Config for the converter. Timeout is the spin budget of each blocking wait;
// zero uses core.DefaultSpinBudget.
type Config struct {
	Channels     Channels
	Mode         Mode
	SampleTime   SampleTime
	Resolution   Resolution
	ScanBackward bool // convert from the highest channel down
	Trigger      Trigger
	Overwrite    bool // a new result replaces an unread one instead of being lost
	Timeout      uint32
}

// DefaultConfig is a single software-started scan at 12 bits with the longest
// sampling window, which the internal channels need.
func DefaultConfig() Config {
	return Config{SampleTime: Sample239_5}
}

// Interrupt flags, at their ISR and IER positions.
const (
	FlagEOSMP uint32 = 1 << py32.ADC_ISR_EOSMP
	FlagEOC   uint32 = 1 << py32.ADC_ISR_EOC
	FlagEOSEQ uint32 = 1 << py32.ADC_ISR_EOSEQ
	FlagOVR   uint32 = 1 << py32.ADC_ISR_OVR

	allFlags = FlagEOSMP | FlagEOC | FlagEOSEQ | FlagOVR
)

var regs = reg.Block(py32.ADC_BASE)

// ADC is the converter.
type ADC struct {
	tok  *periph.Token
	cfg  Config
	pins []*gpio.IO
}

// New claims the ADC and applies cfg. The converter is left enabled and idle.
func New(tok *periph.Token, cfg Config) (*ADC, error) {
	if tok == nil || tok.ID() != periph.ADC {
		return nil, errcode.New(errcode.InvalidConfig, "adc.New", "token")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := tok.Claim(); err != nil {
		return nil, err
	}
	a := &ADC{tok: tok}
	if err := a.Configure(cfg); err != nil {
		a.Close()
		return nil, err
	}
	irq.Register(irq.ADC, events{})
	return a, nil
}

// Validate checks cfg.
func (cfg Config) Validate() error {
	const op = "adc.Config"
	if cfg.Channels&^allChannels != 0 {
		return errcode.New(errcode.InvalidChannel, op, core.Utoa(uint32(cfg.Channels)))
	}
	if cfg.Mode > Discontinuous || cfg.SampleTime > Sample239_5 || cfg.Resolution > Bits6 ||
		cfg.Trigger.Edge > BothEdges || cfg.Trigger.Source > 7 {
		return errcode.New(errcode.InvalidConfig, op, "options")
	}
	if cfg.Mode == Continuous && cfg.Trigger.Edge != Software {
		return errcode.New(errcode.InvalidConfig, op, "continuous with trigger")
	}
	return nil
}

func (a *ADC) r(off uint32) reg.Register { return regs.At(off) }

// Configure stops any conversion and applies cfg.
func (a *ADC) Configure(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = core.DefaultSpinBudget
	}
	if err := a.stop("adc.Configure"); err != nil {
		return err
	}
	a.cfg = cfg

	v := uint32(cfg.Resolution)<<py32.ADC_CFGR1_RES_Pos |
		uint32(cfg.Trigger.Source)<<py32.ADC_CFGR1_EXTSEL_Pos |
		uint32(cfg.Trigger.Edge)<<py32.ADC_CFGR1_EXTEN_Pos
	switch cfg.Mode {
	case Continuous:
		v |= 1 << py32.ADC_CFGR1_CONT
	case Discontinuous:
		v |= 1 << py32.ADC_CFGR1_DISCEN
	}
	if cfg.ScanBackward {
		v |= 1 << py32.ADC_CFGR1_SCANDIR
	}
	if cfg.Overwrite {
		v |= 1 << py32.ADC_CFGR1_OVRMOD
	}
	a.r(py32.ADC_CFGR1).Set(v)
	a.r(py32.ADC_SMPR).Set(uint32(cfg.SampleTime))
	a.r(py32.ADC_CHSELR).Set(uint32(cfg.Channels))

	ccr := a.r(py32.ADC_CCR)
	ccr.ClearBits(1<<py32.ADC_CCR_TSEN | 1<<py32.ADC_CCR_VREFEN)
	if cfg.Channels&ChTemp != 0 {
		ccr.SetBit(py32.ADC_CCR_TSEN)
	}
	if cfg.Channels&ChVref != 0 {
		ccr.SetBit(py32.ADC_CCR_VREFEN)
	}
	a.r(py32.ADC_ISR).Set(allFlags)
	a.r(py32.ADC_CR).Set(1 << py32.ADC_CR_ADEN)
	return nil
}

// Config returns the active configuration.
func (a *ADC) Config() Config { return a.cfg }

// Pin puts p in analog mode and returns its channel. The pin is released by
// Close.
func (a *ADC) Pin(p gpio.ADCPin) (Channels, error) {
	io, err := gpio.NewAnalog(p)
	if err != nil {
		return 0, err
	}
	a.pins = append(a.pins, io)
	return Channel(p.ADCChannel()), nil
}

// Calibrate runs the self-calibration with the converter disabled, then
// re-enables it.
func (a *ADC) Calibrate() error {
	const op = "adc.Calibrate"
	if err := a.stop(op); err != nil {
		return err
	}
	cr := a.r(py32.ADC_CR)
	cr.Set(0)
	cr.Set(1 << py32.ADC_CR_ADCAL)
	err := core.SpinUntil(a.cfg.Timeout, op, errcode.PhaseComplete, func() bool {
		return !cr.Bit(py32.ADC_CR_ADCAL)
	})
	if err == nil && a.r(py32.ADC_CCSR).Bit(py32.ADC_CCSR_CALFAIL) {
		err = errcode.New(errcode.Calibration, op, errcode.PhaseComplete)
	}
	cr.Set(1 << py32.ADC_CR_ADEN)
	return err
}

// Start begins a conversion run. With an external trigger it arms the
// converter and the run waits for the edge.
func (a *ADC) Start() {
	cr := a.r(py32.ADC_CR)
	cr.Set(1<<py32.ADC_CR_ADEN | 1<<py32.ADC_CR_ADSTART)
}

// Stop aborts any conversion and disarms the trigger.
func (a *ADC) Stop() error {
	return a.stop("adc.Stop")
}

func (a *ADC) stop(op string) error {
	cr := a.r(py32.ADC_CR)
	if !cr.Bit(py32.ADC_CR_ADSTART) {
		return nil
	}
	cr.Set(cr.Get()&(1<<py32.ADC_CR_ADEN) | 1<<py32.ADC_CR_ADSTP)
	return core.SpinUntil(a.cfg.Timeout, op, errcode.PhaseStop, func() bool {
		return !cr.Bit(py32.ADC_CR_ADSTART)
	})
}

// Converting reports whether a run is armed or in progress.
func (a *ADC) Converting() bool {
	return a.r(py32.ADC_CR).Bit(py32.ADC_CR_ADSTART)
}

// kick starts the next conversion when a software-started run has ended and
// no result is waiting.
func (a *ADC) kick() {
	if a.cfg.Trigger.Edge != Software || a.Converting() {
		return
	}
	if a.r(py32.ADC_ISR).Get()&FlagEOC == 0 {
		a.Start()
	}
}

// Read returns the next result of the sequence. With a software trigger it
// starts a conversion itself if none is running, so in discontinuous mode
// successive reads walk the channels one by one.
func (a *ADC) Read() (uint16, error) {
	const op = "adc.Read"
	a.kick()
	isr := a.r(py32.ADC_ISR)
	var st uint32
	err := core.SpinUntil(a.cfg.Timeout, op, errcode.PhaseRx, func() bool {
		st = isr.Get() & (FlagEOC | FlagOVR)
		return st != 0
	})
	if err != nil {
		return 0, err
	}
	return a.result(op, st)
}

// result reads DR for an EOC, or reports and clears an overrun.
func (a *ADC) result(op string, st uint32) (uint16, error) {
	if st&FlagOVR != 0 && !a.cfg.Overwrite {
		a.r(py32.ADC_ISR).Set(FlagOVR)
		v := a.r(py32.ADC_DR).Get()
		return uint16(v), errcode.New(errcode.Overrun, op, errcode.PhaseRx)
	}
	a.r(py32.ADC_ISR).Set(FlagOVR)
	return uint16(a.r(py32.ADC_DR).Get()), nil
}

// Scan fills buf with successive results, in sequence order.
func (a *ADC) Scan(buf []uint16) error {
	for n := range buf {
		v, err := a.Read()
		if err != nil {
			return err
		}
		buf[n] = v
	}
	return nil
}

// Close stops the converter, turns the internal channels off and releases its
// pins and clock.
func (a *ADC) Close() {
	irq.Register(irq.ADC, nil)
	a.stop("adc.Close")
	a.r(py32.ADC_IER).Set(0)
	a.r(py32.ADC_CR).Set(0)
	a.r(py32.ADC_CCR).Set(0)
	for _, p := range a.pins {
		p.Close()
	}
	a.pins = nil
	a.tok.Release()
}

// events bridges ISR and IER to the interrupt layer. The enable bits sit at
// the positions of their flags.
type events struct{}

func (events) Flags() uint32 { return regs.At(py32.ADC_ISR).Get() & allFlags }

func (events) Clear(m uint32) { regs.At(py32.ADC_ISR).Set(m & allFlags) }

func (events) Enable(m uint32) { regs.At(py32.ADC_IER).SetBits(m & allFlags) }

func (events) Disable(m uint32) { regs.At(py32.ADC_IER).ClearBits(m & allFlags) }

func (events) Enabled() uint32 { return regs.At(py32.ADC_IER).Get() & allFlags }
