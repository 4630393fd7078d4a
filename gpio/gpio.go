// Package gpio drives the PY32F030 pin matrix.
//
// Every pin is its own type (PA0 ... PF4, generated from pinmap.yaml). For each
// role a pin can carry there is a method returning the alternate-function
// number, and a role interface such as USART1TXPin that only legal pins
// satisfy. Binding a pin records it in a claim map; a second binding fails
// with InUse until the first driver closes.
package gpio

//go:generate go run ../cmd/pinmap-gen --in pinmap.yaml --out pins_py32f030.go --test pins_py32f030_test.go

import (
	"py32hal/core"
	"py32hal/device/py32"
	"py32hal/errcode"
	"py32hal/periph"
	"py32hal/reg"
)

// Port names a GPIO port.
type Port uint8

const (
	PortA Port = iota
	PortB
	PortF
)

func (p Port) block() reg.Block {
	switch p {
	case PortB:
		return reg.Block(py32.GPIOB_BASE)
	case PortF:
		return reg.Block(py32.GPIOF_BASE)
	}
	return reg.Block(py32.GPIOA_BASE)
}

func (p Port) id() periph.ID {
	switch p {
	case PortB:
		return periph.GPIOB
	case PortF:
		return periph.GPIOF
	}
	return periph.GPIOA
}

func (p Port) String() string {
	return [...]string{"A", "B", "F"}[p%3]
}

// Pin is implemented by every generated pin type.
type Pin interface {
	Port() Port
	Index() uint8
}

// AF is an alternate-function number, 0..15.
type AF uint8

type Pull uint8

const (
	PullNone Pull = iota
	PullUp
	PullDown
)

type Speed uint8

const (
	SpeedLow Speed = iota
	SpeedMedium
	SpeedHigh
	SpeedVeryHigh
)

type OutputType uint8

const (
	PushPull OutputType = iota
	OpenDrain
)

// Level is a logic level.
type Level bool

const (
	Low  Level = false
	High Level = true
)

var claims [3]uint16

// Bind claims p for one driver and turns its port clock on.
func Bind(p Pin) error {
	port, bit := p.Port(), uint16(1)<<p.Index()
	var err error
	core.With(func() {
		if claims[port]&bit != 0 {
			err = errcode.New(errcode.InUse, "gpio.Bind", "P"+port.String()+core.Utoa(uint32(p.Index())))
			return
		}
		claims[port] |= bit
	})
	if err != nil {
		return err
	}
	if !port.id().ClockOn() {
		port.id().SetClock(true)
	}
	return nil
}

// Unbind returns p to analog mode and frees its claim.
func Unbind(p Pin) {
	io := IO{port: p.Port(), idx: p.Index()}
	io.ConfigureAnalog()
	core.With(func() {
		claims[io.port] &^= 1 << io.idx
	})
}

// Bound reports whether p is claimed.
func Bound(p Pin) bool {
	return claims[p.Port()]&(1<<p.Index()) != 0
}

// ResetClaims forgets every pin claim. For tests.
func ResetClaims() {
	core.With(func() {
		claims = [3]uint16{}
	})
}

// IO is a bound pin. Its role can be changed with the Configure methods.
type IO struct {
	port Port
	idx  uint8
}

// Claim binds p and returns a handle to it without touching its mode.
func Claim(p Pin) (*IO, error) {
	if err := Bind(p); err != nil {
		return nil, err
	}
	return &IO{port: p.Port(), idx: p.Index()}, nil
}

func (io *IO) Port() Port   { return io.port }
func (io *IO) Index() uint8 { return io.idx }

func (io *IO) String() string {
	return "P" + io.port.String() + core.Utoa(uint32(io.idx))
}

// configure writes mode, type, pull and speed of the pin. The mode goes
// last so the pin never drives with stale settings.
func (io *IO) configure(mode uint32, typ OutputType, pull Pull, speed Speed) {
	b := io.port.block()
	i := io.idx
	core.With(func() {
		if typ == OpenDrain {
			b.At(py32.GPIO_OTYPER).SetBit(i)
		} else {
			b.At(py32.GPIO_OTYPER).ClearBit(i)
		}
		b.At(py32.GPIO_OSPEEDR).SetField(2*i, 2, uint32(speed))
		b.At(py32.GPIO_PUPDR).SetField(2*i, 2, uint32(pull))
		b.At(py32.GPIO_MODER).SetField(2*i, 2, mode)
	})
}

// ConfigureInput makes the pin a digital input.
func (io *IO) ConfigureInput(pull Pull, speed Speed) {
	io.configure(py32.GPIO_MODE_INPUT, PushPull, pull, speed)
}

// ConfigureOutput makes the pin an output, driving level first so there is no
// glitch when the mode switches.
func (io *IO) ConfigureOutput(typ OutputType, pull Pull, speed Speed, level Level) {
	io.Set(level)
	io.configure(py32.GPIO_MODE_OUTPUT, typ, pull, speed)
}

// ConfigureAltFn hands the pin to a peripheral.
func (io *IO) ConfigureAltFn(af AF, typ OutputType, pull Pull, speed Speed) {
	b := io.port.block()
	off, pos := uint32(py32.GPIO_AFRL), 4*io.idx
	if io.idx >= 8 {
		off, pos = py32.GPIO_AFRH, 4*(io.idx-8)
	}
	core.With(func() {
		b.At(off).SetField(pos, 4, uint32(af))
	})
	io.configure(py32.GPIO_MODE_ALT, typ, pull, speed)
}

// ConfigureAnalog disconnects the digital path: the benign state.
func (io *IO) ConfigureAnalog() {
	io.configure(py32.GPIO_MODE_ANALOG, PushPull, PullNone, SpeedLow)
}

// Get reads the input level.
func (io *IO) Get() Level {
	return Level(io.port.block().At(py32.GPIO_IDR).Bit(io.idx))
}

// IsSetHigh reports the level the output latch drives.
func (io *IO) IsSetHigh() bool {
	return io.port.block().At(py32.GPIO_ODR).Bit(io.idx)
}

// Set drives the output latch. BSRR and BRR writes are atomic per pin.
func (io *IO) Set(level Level) {
	if level {
		io.High()
	} else {
		io.Low()
	}
}

func (io *IO) High() {
	io.port.block().At(py32.GPIO_BSRR).Set(1 << io.idx)
}

func (io *IO) Low() {
	io.port.block().At(py32.GPIO_BRR).Set(1 << io.idx)
}

// Toggle inverts the output latch.
func (io *IO) Toggle() {
	io.Set(!Level(io.IsSetHigh()))
}

// Lock freezes the pin configuration until the next reset.
func (io *IO) Lock() error {
	lckr := io.port.block().At(py32.GPIO_LCKR)
	var ok bool
	core.With(func() {
		pins := lckr.Get()&0xFFFF | 1<<io.idx
		key := uint32(1 << py32.GPIO_LCKR_LCKK)
		lckr.Set(key | pins)
		lckr.Set(pins)
		lckr.Set(key | pins)
		lckr.Get()
		ok = lckr.Bit(py32.GPIO_LCKR_LCKK)
	})
	if !ok {
		return errcode.New(errcode.Locked, "gpio.Lock", io.String())
	}
	return nil
}

// Close returns the pin to analog mode and frees it.
func (io *IO) Close() {
	Unbind(io)
}

// NewInput binds p as an input.
func NewInput(p Pin, pull Pull) (*IO, error) {
	io, err := Claim(p)
	if err != nil {
		return nil, err
	}
	io.ConfigureInput(pull, SpeedLow)
	return io, nil
}

// NewOutput binds p as an output at level.
func NewOutput(p Pin, typ OutputType, pull Pull, speed Speed, level Level) (*IO, error) {
	io, err := Claim(p)
	if err != nil {
		return nil, err
	}
	io.ConfigureOutput(typ, pull, speed, level)
	return io, nil
}

// NewAnalog binds p in analog mode, e.g. for an ADC input.
func NewAnalog(p Pin) (*IO, error) {
	io, err := Claim(p)
	if err != nil {
		return nil, err
	}
	io.ConfigureAnalog()
	return io, nil
}

// NewAltFn binds p to alternate function af. Drivers call it with the AF
// returned by the role method, e.g. tx.USART1TX().
func NewAltFn(p Pin, af AF, typ OutputType, pull Pull, speed Speed) (*IO, error) {
	io, err := Claim(p)
	if err != nil {
		return nil, err
	}
	io.ConfigureAltFn(af, typ, pull, speed)
	return io, nil
}

// NewMCO routes the MCO output to pin.
func NewMCO(p MCOPin) (*IO, error) {
	return NewAltFn(p, p.MCO(), PushPull, PullNone, SpeedVeryHigh)
}

// SplitA claims port A and returns its pins.
func SplitA(tok *periph.Token) (*PinsA, error) {
	if err := splitCheck(tok, periph.GPIOA); err != nil {
		return nil, err
	}
	return &PinsA{}, nil
}

// SplitB claims port B and returns its pins.
func SplitB(tok *periph.Token) (*PinsB, error) {
	if err := splitCheck(tok, periph.GPIOB); err != nil {
		return nil, err
	}
	return &PinsB{}, nil
}

// SplitF claims port F and returns its pins.
func SplitF(tok *periph.Token) (*PinsF, error) {
	if err := splitCheck(tok, periph.GPIOF); err != nil {
		return nil, err
	}
	return &PinsF{}, nil
}

func splitCheck(tok *periph.Token, id periph.ID) error {
	if tok == nil || tok.ID() != id {
		return errcode.New(errcode.InvalidConfig, "gpio.Split", id.String())
	}
	return tok.Claim()
}
