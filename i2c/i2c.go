// Package i2c drives the I2C peripheral as a bus master, with a blocking and
// an interrupt-driven form of the same transfer step machine, and as a
// polled slave.
package i2c

import (
	"py32hal/core"
	"py32hal/device/py32"
	"py32hal/errcode"
	"py32hal/gpio"
	"py32hal/irq"
	"py32hal/periph"
	"py32hal/rcc"
	"py32hal/reg"
)

const (
	StandardMode uint32 = 100000
	FastMode     uint32 = 400000
)

// Config for the bus. Timeout is the spin budget of each blocking step; zero
// uses core.DefaultSpinBudget.
type Config struct {
	Frequency uint32
	Timeout   uint32
}

// DefaultConfig is standard mode.
func DefaultConfig() Config {
	return Config{Frequency: StandardMode}
}

// SR1 flags. They double as event masks for the interrupt bridge.
const (
	FlagSB    uint32 = 1 << py32.I2C_SR1_SB
	FlagADDR  uint32 = 1 << py32.I2C_SR1_ADDR
	FlagBTF   uint32 = 1 << py32.I2C_SR1_BTF
	FlagSTOPF uint32 = 1 << py32.I2C_SR1_STOPF
	FlagRXNE  uint32 = 1 << py32.I2C_SR1_RXNE
	FlagTXE   uint32 = 1 << py32.I2C_SR1_TXE
	FlagBERR  uint32 = 1 << py32.I2C_SR1_BERR
	FlagARLO  uint32 = 1 << py32.I2C_SR1_ARLO
	FlagAF    uint32 = 1 << py32.I2C_SR1_AF
	FlagOVR   uint32 = 1 << py32.I2C_SR1_OVR

	evFlags  = FlagSB | FlagADDR | FlagBTF | FlagSTOPF
	bufFlags = FlagRXNE | FlagTXE
	errFlags = FlagBERR | FlagARLO | FlagAF | FlagOVR
)

var regs = reg.Block(py32.I2C_BASE)

// I2C is the bus. The zero value is not usable; call New.
type I2C struct {
	tok  *periph.Token
	cfg  Config
	pins [2]*gpio.IO
	own  uint8
	busy bool // an async transfer owns the bus
}

// New claims the I2C peripheral on scl and sda and configures it for
// cfg.Frequency at the current PCLK.
func New(tok *periph.Token, scl gpio.I2CSCLPin, sda gpio.I2CSDAPin, cfg Config) (*I2C, error) {
	const op = "i2c.New"
	if tok == nil || tok.ID() != periph.I2C {
		return nil, errcode.New(errcode.InvalidConfig, op, "token")
	}
	if cfg.Frequency == 0 {
		cfg.Frequency = StandardMode
	}
	if _, _, err := timing(rcc.Current().PCLK, cfg.Frequency); err != nil {
		return nil, err
	}
	if err := tok.Claim(); err != nil {
		return nil, err
	}
	i := &I2C{tok: tok, cfg: cfg}
	var err error
	if i.pins[0], err = gpio.NewAltFn(scl, scl.I2CSCL(), gpio.OpenDrain, gpio.PullUp, gpio.SpeedHigh); err != nil {
		tok.Release()
		return nil, err
	}
	if i.pins[1], err = gpio.NewAltFn(sda, sda.I2CSDA(), gpio.OpenDrain, gpio.PullUp, gpio.SpeedHigh); err != nil {
		i.pins[0].Close()
		tok.Release()
		return nil, err
	}
	if err := i.init(); err != nil {
		i.Close()
		return nil, err
	}
	irq.Register(irq.I2C, events{regs})
	return i, nil
}

// timing returns CCR and TRISE for bus frequency hz at peripheral clock pclk.
// SCL never runs faster than hz.
func timing(pclk, hz uint32) (ccr, trise uint32, err error) {
	const op = "i2c.Config"
	switch {
	case hz == 0:
		return 0, 0, errcode.New(errcode.InvalidFrequency, op, "zero")
	case hz > FastMode:
		return 0, 0, errcode.New(errcode.SpeedMode, op, core.Utoa(hz))
	}
	mhz := pclk / 1000000
	fast := hz > StandardMode
	if mhz < 2 || fast && mhz < 4 {
		return 0, 0, errcode.New(errcode.PeripheralClockTooLow, op, core.Utoa(pclk))
	}
	if fast {
		ccr = core.Clamp(core.CeilDiv(pclk, 3*hz), 1, 0xFFF)
		return ccr | 1<<py32.I2C_CCR_FS, mhz*300/1000 + 1, nil
	}
	ccr = core.Clamp(core.CeilDiv(pclk, 2*hz), 4, 0xFFF)
	return ccr, mhz + 1, nil
}

// init resets the peripheral and programs the bus timing and own address.
func (i *I2C) init() error {
	pclk := rcc.Current().PCLK
	ccr, trise, err := timing(pclk, i.cfg.Frequency)
	if err != nil {
		return err
	}
	if i.cfg.Timeout == 0 {
		i.cfg.Timeout = core.DefaultSpinBudget
	}
	cr1 := i.r(py32.I2C_CR1)
	cr1.Set(1 << py32.I2C_CR1_SWRST)
	cr1.Set(0)
	i.r(py32.I2C_CR2).Set(pclk / 1000000 << py32.I2C_CR2_FREQ_Pos)
	i.r(py32.I2C_CCR).Set(ccr)
	i.r(py32.I2C_TRISE).Set(trise)
	i.r(py32.I2C_OAR1).Set(uint32(i.own) << py32.I2C_OAR1_ADD_Pos)
	cr1.Set(1<<py32.I2C_CR1_PE | 1<<py32.I2C_CR1_ACK)
	return nil
}

func (i *I2C) r(off uint32) reg.Register { return regs.At(off) }

func (i *I2C) sr1() uint32 { return i.r(py32.I2C_SR1).Get() }

// Frequency returns the SCL rate the bus actually runs at.
func (i *I2C) Frequency() uint32 {
	ccr := i.r(py32.I2C_CCR).Get()
	n := ccr & 0xFFF
	if n == 0 {
		return 0
	}
	if ccr&(1<<py32.I2C_CCR_FS) != 0 {
		return rcc.Current().PCLK / (3 * n)
	}
	return rcc.Current().PCLK / (2 * n)
}

// Configure changes the bus frequency. The peripheral is reset.
func (i *I2C) Configure(cfg Config) error {
	if i.busy {
		return errcode.New(errcode.Busy, "i2c.Configure", "async transfer")
	}
	if cfg.Frequency == 0 {
		cfg.Frequency = StandardMode
	}
	old := i.cfg
	i.cfg = cfg
	if err := i.init(); err != nil {
		i.cfg = old
		return err
	}
	return nil
}

// recover pulses SWRST and restores the configuration. It is the only way
// out of a bus error or a lost arbitration that left the state machine stuck.
func (i *I2C) recover() {
	i.init()
}

// Close disables the peripheral and releases its pins and clock.
func (i *I2C) Close() {
	irq.Register(irq.I2C, nil)
	i.r(py32.I2C_CR2).ClearBits(1<<py32.I2C_CR2_ITEVTEN | 1<<py32.I2C_CR2_ITBUFEN | 1<<py32.I2C_CR2_ITERREN)
	i.r(py32.I2C_CR1).Set(0)
	for n, p := range i.pins {
		if p != nil {
			p.Close()
			i.pins[n] = nil
		}
	}
	i.tok.Release()
}

// events maps SR1 flags to the CR2 interrupt enables. Flags are cleared by
// the transfer sequence itself (SR1 then DR or SR2 reads), so Clear is a
// no-op and the step machine sees every flag the bridge reported.
type events struct{ b reg.Block }

func (e events) Flags() uint32 { return e.b.At(py32.I2C_SR1).Get() & (evFlags | bufFlags | errFlags) }

func (e events) Clear(uint32) {}

func (e events) Enabled() uint32 {
	cr2 := e.b.At(py32.I2C_CR2).Get()
	var m uint32
	if cr2&(1<<py32.I2C_CR2_ITEVTEN) != 0 {
		m |= evFlags
		if cr2&(1<<py32.I2C_CR2_ITBUFEN) != 0 {
			m |= bufFlags
		}
	}
	if cr2&(1<<py32.I2C_CR2_ITERREN) != 0 {
		m |= errFlags
	}
	return m
}

func (e events) Enable(m uint32) {
	var v uint32
	if m&(evFlags|bufFlags) != 0 {
		v |= 1 << py32.I2C_CR2_ITEVTEN
	}
	if m&bufFlags != 0 {
		v |= 1 << py32.I2C_CR2_ITBUFEN
	}
	if m&errFlags != 0 {
		v |= 1 << py32.I2C_CR2_ITERREN
	}
	core.With(func() { e.b.At(py32.I2C_CR2).SetBits(v) })
}

func (e events) Disable(m uint32) {
	var v uint32
	if m&evFlags != 0 {
		v |= 1 << py32.I2C_CR2_ITEVTEN
	}
	if m&bufFlags != 0 {
		v |= 1 << py32.I2C_CR2_ITBUFEN
	}
	if m&errFlags != 0 {
		v |= 1 << py32.I2C_CR2_ITERREN
	}
	core.With(func() { e.b.At(py32.I2C_CR2).ClearBits(v) })
}
