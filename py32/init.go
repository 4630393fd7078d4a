// Package py32 brings the chip up: clocks, the SysTick time base and the
// peripheral registry, in that order.
package py32

import (
	"py32hal/core"
	"py32hal/errcode"
	"py32hal/periph"
	"py32hal/rcc"
	"py32hal/systick"
)

// SysClk is the system clock source.
type SysClk uint8

const (
	PLLHSI SysClk = iota // HSI 8 MHz doubled
	HSI                  // HSI 8 MHz
	HSE
	PLLHSE
)

func (s SysClk) String() string {
	switch s {
	case PLLHSI:
		return "PLL(HSI)"
	case HSI:
		return "HSI"
	case HSE:
		return "HSE"
	case PLLHSE:
		return "PLL(HSE)"
	}
	return "py32.SysClk?"
}

// Config selects the clock tree and the tick rate.
type Config struct {
	SysClk    SysClk
	HSEFreq   uint32 // HSE and PLLHSE only
	HSEBypass bool
	HCLKDiv   uint16
	PCLKDiv   uint8
	TickRate  uint32 // Hz; 0 means core.DefaultTickRate
}

// Peripherals holds one token per peripheral.
type Peripherals = periph.Registry

// DefaultConfig runs at 16 MHz from the PLL over HSI with a 1 kHz tick.
func DefaultConfig() Config {
	return Config{SysClk: PLLHSI, HCLKDiv: 1, PCLKDiv: 1, TickRate: 1000}
}

// Clocks translates cfg into the rcc tree it describes.
func (cfg Config) Clocks() (rcc.Config, error) {
	c := rcc.Config{
		HSIFreq:   rcc.HSI8MHz,
		HSIDiv:    1,
		HSEFreq:   cfg.HSEFreq,
		HSEBypass: cfg.HSEBypass,
		HCLKDiv:   cfg.HCLKDiv,
		PCLKDiv:   cfg.PCLKDiv,
	}
	switch cfg.SysClk {
	case PLLHSI:
		c.Source, c.PLLSource = rcc.PLL, rcc.PLLFromHSI
	case HSI:
		c.Source = rcc.HSI
	case HSE:
		c.Source = rcc.HSE
	case PLLHSE:
		c.Source, c.PLLSource = rcc.PLL, rcc.PLLFromHSE
	default:
		return rcc.Config{}, errcode.New(errcode.InvalidConfig, "py32.Init", cfg.SysClk.String())
	}
	return c, nil
}

// Init configures the clocks, starts SysTick and hands out the peripheral
// tokens. It succeeds once; later calls fail with AlreadyInitialized and
// leave the running configuration alone.
func Init(cfg Config) (*Peripherals, error) {
	tree, err := cfg.Clocks()
	if err != nil {
		return nil, err
	}
	if err := tree.Validate(); err != nil {
		return nil, err
	}
	if _, err := systick.Reload(tree.HCLKFreq(), tickRate(cfg.TickRate)); err != nil {
		return nil, err
	}
	p, err := periph.Take()
	if err != nil {
		return nil, err
	}
	clk, err := rcc.Configure(tree)
	if err != nil {
		return nil, err
	}
	if err := systick.Start(tickRate(cfg.TickRate)); err != nil {
		return nil, err
	}
	core.Info("py32: " + cfg.SysClk.String() + " " + core.Utoa(clk.CPU) + " Hz")
	return p, nil
}

func tickRate(hz uint32) uint32 {
	if hz == 0 {
		return core.DefaultTickRate
	}
	return hz
}
