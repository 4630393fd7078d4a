// Package spi drives SPI1 and SPI2 as bus masters with software NSS.
package spi

import (
	"py32hal/core"
	"py32hal/device/py32"
	"py32hal/errcode"
	"py32hal/gpio"
	"py32hal/periph"
	"py32hal/rcc"
	"py32hal/reg"
)

// Mode is the clock polarity and phase, CPOL<<1 | CPHA.
type Mode uint8

const (
	Mode0 Mode = iota
	Mode1
	Mode2
	Mode3
)

type Direction uint8

const (
	FullDuplex Direction = iota
	HalfDuplex           // one data line, MOSI
	RxOnly
)

// Prescaler divides PCLK down to SCK.
type Prescaler uint8

const (
	Div2 Prescaler = iota
	Div4
	Div8
	Div16
	Div32
	Div64
	Div128
	Div256
)

func (p Prescaler) Divisor() uint32 { return 2 << p }

// Config for a port. A non-zero Frequency picks the fastest prescaler that
// does not exceed it and overrides Prescaler. Timeout is the spin budget of
// each frame; zero uses core.DefaultSpinBudget.
type Config struct {
	Frequency uint32
	Prescaler Prescaler
	Mode      Mode
	LSBFirst  bool
	Frame16   bool
	Direction Direction
	Timeout   uint32
}

// DefaultConfig is mode 0, MSB first, 8-bit frames at PCLK/8.
func DefaultConfig() Config {
	return Config{Prescaler: Div8}
}

// PrescalerFor returns the fastest prescaler whose SCK at pclk does not
// exceed hz.
func PrescalerFor(pclk, hz uint32) (Prescaler, error) {
	if hz == 0 {
		return 0, errcode.New(errcode.InvalidFrequency, "spi.Config", "zero")
	}
	for p := Div2; p <= Div256; p++ {
		if pclk/p.Divisor() <= hz {
			return p, nil
		}
	}
	return 0, errcode.New(errcode.InvalidFrequency, "spi.Config", core.Utoa(hz))
}

type desc struct {
	id   periph.ID
	base reg.Block
}

var (
	spi1 = desc{periph.SPI1, reg.Block(py32.SPI1_BASE)}
	spi2 = desc{periph.SPI2, reg.Block(py32.SPI2_BASE)}
)

// SPI is one master port.
type SPI struct {
	d    *desc
	tok  *periph.Token
	cfg  Config
	pins [3]*gpio.IO
}

type pinAF struct {
	p  gpio.Pin
	af gpio.AF
}

// NewSPI1 claims SPI1. mosi may be nil in RxOnly, miso may be nil in
// HalfDuplex.
func NewSPI1(tok *periph.Token, sck gpio.SPI1SCKPin, mosi gpio.SPI1MOSIPin, miso gpio.SPI1MISOPin, cfg Config) (*SPI, error) {
	var pins [3]pinAF
	pins[0] = pinAF{sck, sck.SPI1SCK()}
	if mosi != nil {
		pins[1] = pinAF{mosi, mosi.SPI1MOSI()}
	}
	if miso != nil {
		pins[2] = pinAF{miso, miso.SPI1MISO()}
	}
	return open(&spi1, tok, pins, cfg)
}

// NewSPI2 claims SPI2, with the same pin rules as NewSPI1.
func NewSPI2(tok *periph.Token, sck gpio.SPI2SCKPin, mosi gpio.SPI2MOSIPin, miso gpio.SPI2MISOPin, cfg Config) (*SPI, error) {
	var pins [3]pinAF
	pins[0] = pinAF{sck, sck.SPI2SCK()}
	if mosi != nil {
		pins[1] = pinAF{mosi, mosi.SPI2MOSI()}
	}
	if miso != nil {
		pins[2] = pinAF{miso, miso.SPI2MISO()}
	}
	return open(&spi2, tok, pins, cfg)
}

func open(d *desc, tok *periph.Token, pins [3]pinAF, cfg Config) (*SPI, error) {
	const op = "spi.New"
	if tok == nil || tok.ID() != d.id {
		return nil, errcode.New(errcode.InvalidConfig, op, "token")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	need := [3]bool{true, cfg.Direction != RxOnly, cfg.Direction != HalfDuplex}
	for n, p := range pins {
		if need[n] && p.p == nil {
			return nil, errcode.New(errcode.InvalidPin, op, [...]string{"sck", "mosi", "miso"}[n])
		}
	}
	if err := tok.Claim(); err != nil {
		return nil, err
	}
	s := &SPI{d: d, tok: tok}
	for n, p := range pins {
		if p.p == nil || !need[n] {
			continue
		}
		io, err := gpio.NewAltFn(p.p, p.af, gpio.PushPull, gpio.PullNone, gpio.SpeedVeryHigh)
		if err != nil {
			s.Close()
			return nil, err
		}
		s.pins[n] = io
	}
	if err := s.Configure(cfg); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// Validate checks the options that do not depend on the clock.
func (cfg Config) Validate() error {
	if cfg.Mode > Mode3 || cfg.Direction > RxOnly || cfg.Prescaler > Div256 {
		return errcode.New(errcode.InvalidConfig, "spi.Config", "options")
	}
	return nil
}

func (s *SPI) r(off uint32) reg.Register { return s.d.base.At(off) }

// Configure applies cfg with the port disabled.
func (s *SPI) Configure(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if cfg.Frequency != 0 {
		p, err := PrescalerFor(rcc.Current().PCLK, cfg.Frequency)
		if err != nil {
			return err
		}
		cfg.Prescaler = p
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = core.DefaultSpinBudget
	}
	s.cfg = cfg
	cr1 := s.r(py32.SPI_CR1)
	cr1.ClearBit(py32.SPI_CR1_SPE)

	v := uint32(cfg.Mode)<<py32.SPI_CR1_CPHA |
		uint32(cfg.Prescaler)<<py32.SPI_CR1_BR_Pos |
		1<<py32.SPI_CR1_MSTR | 1<<py32.SPI_CR1_SSM | 1<<py32.SPI_CR1_SSI
	if cfg.LSBFirst {
		v |= 1 << py32.SPI_CR1_LSBFIRST
	}
	if cfg.Frame16 {
		v |= 1 << py32.SPI_CR1_DFF
	}
	// Half-duplex idles as transmitter so the bus is not clocked. RXONLY
	// clocks as soon as SPE is set, so it is only raised for a read.
	if cfg.Direction == HalfDuplex {
		v |= 1<<py32.SPI_CR1_BIDIMODE | 1<<py32.SPI_CR1_BIDIOE
	}
	cr1.Set(v)
	s.r(py32.SPI_CR2).Set(0)
	cr1.SetBit(py32.SPI_CR1_SPE)
	return nil
}

// Frequency returns the SCK rate.
func (s *SPI) Frequency() uint32 {
	return rcc.Current().PCLK / s.cfg.Prescaler.Divisor()
}

// Close waits for the last frame, disables the port and releases its pins and
// clock.
func (s *SPI) Close() {
	s.waitIdle("spi.Close")
	s.r(py32.SPI_CR1).Set(0)
	for n, p := range s.pins {
		if p != nil {
			p.Close()
			s.pins[n] = nil
		}
	}
	s.tok.Release()
}
