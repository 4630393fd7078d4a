// Package periph holds the peripheral tokens and their clock gates.
//
// There is one Token per physical peripheral. Go cannot move a value out of
// scope, so exclusive ownership is checked at run time: a driver constructor
// claims the token, which turns the peripheral clock on, and the driver's
// Close releases it, which resets the peripheral and turns the clock off.
package periph

import (
	"py32hal/core"
	"py32hal/device/py32"
	"py32hal/errcode"
	"py32hal/reg"
)

// ID names a peripheral.
type ID uint8

const (
	GPIOA ID = iota
	GPIOB
	GPIOF
	DMA
	CRC
	FLASH
	TIM3
	RTC
	SPI2
	USART2
	I2C
	PWR
	SYSCFG
	TIM1
	SPI1
	USART1
	TIM14
	TIM16
	TIM17
	ADC
	IWDG

	NumIDs
)

var names = [NumIDs]string{
	"GPIOA", "GPIOB", "GPIOF", "DMA", "CRC", "FLASH", "TIM3", "RTC", "SPI2",
	"USART2", "I2C", "PWR", "SYSCFG", "TIM1", "SPI1", "USART1", "TIM14",
	"TIM16", "TIM17", "ADC", "IWDG",
}

func (id ID) String() string {
	if id >= NumIDs {
		return "periph?"
	}
	return names[id]
}

// gate locates a peripheral's bit in an ENR/RSTR register pair.
type gate struct {
	enr, rstr uint32
	bit       uint8
	none      bool // always clocked, no gate
}

var gates = [NumIDs]gate{
	GPIOA:  {py32.RCC_IOPENR, py32.RCC_IOPRSTR, py32.RCC_IOP_GPIOA, false},
	GPIOB:  {py32.RCC_IOPENR, py32.RCC_IOPRSTR, py32.RCC_IOP_GPIOB, false},
	GPIOF:  {py32.RCC_IOPENR, py32.RCC_IOPRSTR, py32.RCC_IOP_GPIOF, false},
	DMA:    {py32.RCC_AHBENR, py32.RCC_AHBRSTR, py32.RCC_AHB_DMA, false},
	CRC:    {py32.RCC_AHBENR, py32.RCC_AHBRSTR, py32.RCC_AHB_CRC, false},
	FLASH:  {none: true}, // the CPU fetches through it
	TIM3:   {py32.RCC_APBENR1, py32.RCC_APBRSTR1, py32.RCC_APB1_TIM3, false},
	RTC:    {py32.RCC_APBENR1, py32.RCC_APBRSTR1, py32.RCC_APB1_RTCAPB, false},
	SPI2:   {py32.RCC_APBENR1, py32.RCC_APBRSTR1, py32.RCC_APB1_SPI2, false},
	USART2: {py32.RCC_APBENR1, py32.RCC_APBRSTR1, py32.RCC_APB1_USART2, false},
	I2C:    {py32.RCC_APBENR1, py32.RCC_APBRSTR1, py32.RCC_APB1_I2C, false},
	PWR:    {py32.RCC_APBENR1, py32.RCC_APBRSTR1, py32.RCC_APB1_PWR, false},
	SYSCFG: {py32.RCC_APBENR2, py32.RCC_APBRSTR2, py32.RCC_APB2_SYSCFG, false},
	TIM1:   {py32.RCC_APBENR2, py32.RCC_APBRSTR2, py32.RCC_APB2_TIM1, false},
	SPI1:   {py32.RCC_APBENR2, py32.RCC_APBRSTR2, py32.RCC_APB2_SPI1, false},
	USART1: {py32.RCC_APBENR2, py32.RCC_APBRSTR2, py32.RCC_APB2_USART1, false},
	TIM14:  {py32.RCC_APBENR2, py32.RCC_APBRSTR2, py32.RCC_APB2_TIM14, false},
	TIM16:  {py32.RCC_APBENR2, py32.RCC_APBRSTR2, py32.RCC_APB2_TIM16, false},
	TIM17:  {py32.RCC_APBENR2, py32.RCC_APBRSTR2, py32.RCC_APB2_TIM17, false},
	ADC:    {py32.RCC_APBENR2, py32.RCC_APBRSTR2, py32.RCC_APB2_ADC, false},
	IWDG:   {none: true},
}

var rcc = reg.Block(py32.RCC_BASE)

// SetClock gates the peripheral clock.
func (id ID) SetClock(on bool) {
	if id >= NumIDs || gates[id].none {
		return
	}
	g := gates[id]
	core.With(func() {
		if on {
			rcc.At(g.enr).SetBit(g.bit)
			// Dummy read: the first access after enabling must not race the gate.
			rcc.At(g.enr).Get()
		} else {
			rcc.At(g.enr).ClearBit(g.bit)
		}
	})
}

// ClockOn reports whether the peripheral clock is enabled.
func (id ID) ClockOn() bool {
	if id >= NumIDs {
		return false
	}
	g := gates[id]
	return g.none || rcc.At(g.enr).Bit(g.bit)
}

// Reset pulses the peripheral's reset line.
func (id ID) Reset() {
	if id >= NumIDs || gates[id].none {
		return
	}
	g := gates[id]
	core.With(func() {
		rcc.At(g.rstr).SetBit(g.bit)
		rcc.At(g.rstr).ClearBit(g.bit)
	})
}

var claimed uint32

// Token anchors ownership of one peripheral.
type Token struct {
	id ID
}

// ID returns the peripheral the token stands for.
func (t *Token) ID() ID {
	return t.id
}

// Claim takes the token for a driver and turns the peripheral clock on.
// A second claim before Release fails with InUse.
func (t *Token) Claim() error {
	if t == nil {
		return errcode.New(errcode.InvalidConfig, "periph.Claim", "nil token")
	}
	var err error
	core.With(func() {
		if claimed&(1<<t.id) != 0 {
			err = errcode.New(errcode.InUse, "periph.Claim", t.id.String())
			return
		}
		claimed |= 1 << t.id
	})
	if err != nil {
		return err
	}
	t.id.SetClock(true)
	return nil
}

// Release resets the peripheral, turns its clock off and frees the token.
// Releasing an unclaimed token does nothing.
func (t *Token) Release() {
	if t == nil || !t.Claimed() {
		return
	}
	t.id.Reset()
	t.id.SetClock(false)
	core.With(func() {
		claimed &^= 1 << t.id
	})
}

// Claimed reports whether a driver holds the token.
func (t *Token) Claimed() bool {
	return claimed&(1<<t.id) != 0
}

// Registry is the one set of tokens handed out by py32.Init.
type Registry struct {
	GPIOA, GPIOB, GPIOF *Token
	DMA, CRC, FLASH     *Token
	TIM1, TIM3, TIM14   *Token
	TIM16, TIM17        *Token
	USART1, USART2      *Token
	I2C, SPI1, SPI2     *Token
	ADC, RTC, IWDG      *Token
	PWR, SYSCFG         *Token
}

var taken bool

// Take builds the registry. It succeeds once per process.
func Take() (*Registry, error) {
	var err error
	core.With(func() {
		if taken {
			err = errcode.New(errcode.AlreadyInitialized, "periph.Take", "")
			return
		}
		taken = true
	})
	if err != nil {
		return nil, err
	}
	return NewRegistry(), nil
}

// NewRegistry builds a fresh set of tokens without the once check. Tests use
// it together with ResetClaims.
func NewRegistry() *Registry {
	tok := func(id ID) *Token { return &Token{id: id} }
	return &Registry{
		GPIOA: tok(GPIOA), GPIOB: tok(GPIOB), GPIOF: tok(GPIOF),
		DMA: tok(DMA), CRC: tok(CRC), FLASH: tok(FLASH),
		TIM1: tok(TIM1), TIM3: tok(TIM3), TIM14: tok(TIM14),
		TIM16: tok(TIM16), TIM17: tok(TIM17),
		USART1: tok(USART1), USART2: tok(USART2),
		I2C: tok(I2C), SPI1: tok(SPI1), SPI2: tok(SPI2),
		ADC: tok(ADC), RTC: tok(RTC), IWDG: tok(IWDG),
		PWR: tok(PWR), SYSCFG: tok(SYSCFG),
	}
}

// ResetClaims forgets every claim and the once flag. For tests.
func ResetClaims() {
	core.With(func() {
		claimed = 0
		taken = false
	})
}
