// Package rcc configures the clock tree and gates peripheral clocks.
//
// Configure brings up the requested oscillator, waits for it with a bounded
// spin, switches the system clock and publishes the resulting frequencies.
// Drivers read Current at use time; nothing caches a frequency.
package rcc

import (
	"py32hal/core"
	"py32hal/device/py32"
	"py32hal/errcode"
	"py32hal/reg"
)

// Source selects the system clock.
type Source uint8

const (
	HSI Source = iota // HSI divided by HSIDiv
	HSE
	PLL
	LSI
	LSE
)

func (s Source) String() string {
	switch s {
	case HSI:
		return "HSI"
	case HSE:
		return "HSE"
	case PLL:
		return "PLL"
	case LSI:
		return "LSI"
	case LSE:
		return "LSE"
	}
	return "clock?"
}

// HSIFreq is one of the factory-trimmed HSI frequencies.
type HSIFreq uint8

const (
	HSI4MHz HSIFreq = iota
	HSI8MHz
	HSI16MHz
	HSI22MHz // 22.12 MHz
	HSI24MHz
)

var hsiHz = [...]uint32{4000000, 8000000, 16000000, 22120000, 24000000}

// Hz returns the oscillator frequency.
func (f HSIFreq) Hz() uint32 {
	if int(f) >= len(hsiHz) {
		return 0
	}
	return hsiHz[f]
}

// PLLSource selects the PLL input. The PLL always multiplies by two.
type PLLSource uint8

const (
	PLLFromHSI PLLSource = iota
	PLLFromHSE
)

const (
	LSIFreq = 32768
	LSEFreq = 32768

	// MaxSysClk is the highest system clock the part is rated for.
	MaxSysClk = 48000000
	// zeroWaitMax is the highest HCLK that runs flash without a wait state.
	zeroWaitMax = 24000000

	hseMin = 4000000
	hseMax = 32000000

	// ReadyBudget bounds every oscillator ready and switch poll.
	ReadyBudget = 10000
)

// Config describes a clock tree.
type Config struct {
	Source    Source
	HSIFreq   HSIFreq
	HSIDiv    uint8 // 1, 2, 4 ... 128; only for Source == HSI
	HSEFreq   uint32
	HSEBypass bool
	PLLSource PLLSource
	HCLKDiv   uint16 // 1, 2, 4, 8, 16, 64, 128, 256, 512
	PCLKDiv   uint8  // 1, 2, 4, 8, 16
}

// DefaultConfig is the PLL over the 8 MHz HSI: 16 MHz everywhere.
func DefaultConfig() Config {
	return Config{
		Source:    PLL,
		HSIFreq:   HSI8MHz,
		HSIDiv:    1,
		PLLSource: PLLFromHSI,
		HCLKDiv:   1,
		PCLKDiv:   1,
	}
}

// Clocks is the frequency triple published after each reconfiguration.
type Clocks struct {
	CPU  uint32
	HCLK uint32
	PCLK uint32
}

var (
	rcc   = reg.Block(py32.RCC_BASE)
	flash = reg.Block(py32.FLASH_BASE)

	current       = Clocks{CPU: 8000000, HCLK: 8000000, PCLK: 8000000}
	pclkDiv uint8 = 1
)

// Current returns the clocks published by the last Configure.
func Current() Clocks {
	return current
}

// TimerClock returns the timer kernel clock: PCLK, doubled when the APB
// prescaler divides.
func TimerClock() uint32 {
	if pclkDiv > 1 {
		return current.PCLK * 2
	}
	return current.PCLK
}

func hpreBits(div uint16) (uint32, bool) {
	switch div {
	case 0, 1:
		return 0, true
	case 2:
		return 0x8, true
	case 4:
		return 0x9, true
	case 8:
		return 0xA, true
	case 16:
		return 0xB, true
	case 64:
		return 0xC, true
	case 128:
		return 0xD, true
	case 256:
		return 0xE, true
	case 512:
		return 0xF, true
	}
	return 0, false
}

func ppreBits(div uint8) (uint32, bool) {
	switch div {
	case 0, 1:
		return 0, true
	case 2:
		return 0x4, true
	case 4:
		return 0x5, true
	case 8:
		return 0x6, true
	case 16:
		return 0x7, true
	}
	return 0, false
}

func hsiDivBits(div uint8) (uint32, bool) {
	if div == 0 {
		return 0, true
	}
	for n := uint32(0); n < 8; n++ {
		if div == 1<<n {
			return n, true
		}
	}
	return 0, false
}

// SysClkFreq computes the system clock cfg would produce.
func (cfg Config) SysClkFreq() uint32 {
	switch cfg.Source {
	case HSI:
		n, _ := hsiDivBits(cfg.HSIDiv)
		return cfg.HSIFreq.Hz() >> n
	case HSE:
		return cfg.HSEFreq
	case PLL:
		if cfg.PLLSource == PLLFromHSE {
			return cfg.HSEFreq * 2
		}
		return cfg.HSIFreq.Hz() * 2
	case LSI:
		return LSIFreq
	case LSE:
		return LSEFreq
	}
	return 0
}

// HCLKFreq computes the AHB clock cfg would produce.
func (cfg Config) HCLKFreq() uint32 {
	if cfg.HCLKDiv <= 1 {
		return cfg.SysClkFreq()
	}
	return cfg.SysClkFreq() / uint32(cfg.HCLKDiv)
}

// Validate checks cfg without touching hardware.
func (cfg Config) Validate() error {
	const op = "rcc.Configure"
	if cfg.Source > LSE {
		return errcode.New(errcode.InvalidConfig, op, "source")
	}
	if cfg.HSIFreq.Hz() == 0 {
		return errcode.New(errcode.InvalidFrequency, op, "HSI")
	}
	if _, ok := hsiDivBits(cfg.HSIDiv); !ok {
		return errcode.New(errcode.InvalidConfig, op, "HSI divider")
	}
	if _, ok := hpreBits(cfg.HCLKDiv); !ok {
		return errcode.New(errcode.InvalidConfig, op, "HCLK divider")
	}
	if _, ok := ppreBits(cfg.PCLKDiv); !ok {
		return errcode.New(errcode.InvalidConfig, op, "PCLK divider")
	}
	usesHSE := cfg.Source == HSE || (cfg.Source == PLL && cfg.PLLSource == PLLFromHSE)
	if usesHSE && (cfg.HSEFreq < hseMin || cfg.HSEFreq > hseMax) {
		return errcode.New(errcode.InvalidFrequency, op, "HSE")
	}
	if cfg.SysClkFreq() > MaxSysClk {
		return errcode.New(errcode.InvalidFrequency, op, "SYSCLK")
	}
	return nil
}

func spin(src string, cond func() bool) error {
	if err := core.SpinUntil(ReadyBudget, "rcc.Configure", src, cond); err != nil {
		return errcode.New(errcode.ClockTimeout, "rcc.Configure", src)
	}
	return nil
}

func active() uint32 {
	return rcc.At(py32.RCC_CFGR).Field(py32.RCC_CFGR_SWS_Pos, py32.RCC_CFGR_SWS_Len)
}

// switchTo selects sw and waits until the status mirror follows.
func switchTo(sw uint32, name string) error {
	cfgr := rcc.At(py32.RCC_CFGR)
	cfgr.SetField(py32.RCC_CFGR_SW_Pos, py32.RCC_CFGR_SW_Len, sw)
	return spin(name, func() bool { return active() == sw })
}

// Configure applies cfg and publishes the new clocks.
//
// The PLL cannot be reprogrammed while it drives the system clock, so when it
// does, the system clock moves to the HSI first.
func Configure(cfg Config) (Clocks, error) {
	if err := cfg.Validate(); err != nil {
		return current, err
	}
	cr := rcc.At(py32.RCC_CR)

	if active() == py32.RCC_SW_PLL {
		cr.SetBit(py32.RCC_CR_HSION)
		if err := spin("HSI", func() bool { return cr.Bit(py32.RCC_CR_HSIRDY) }); err != nil {
			return current, err
		}
		if err := switchTo(py32.RCC_SW_HSISYS, "HSI"); err != nil {
			return current, err
		}
		if cfg.Source == PLL {
			cr.ClearBit(py32.RCC_CR_PLLON)
			if err := spin("PLL", func() bool { return !cr.Bit(py32.RCC_CR_PLLRDY) }); err != nil {
				return current, err
			}
		}
	}

	var sw uint32
	switch cfg.Source {
	case HSI:
		if err := startHSI(cfg); err != nil {
			return current, err
		}
		sw = py32.RCC_SW_HSISYS
	case HSE:
		if err := startHSE(cfg); err != nil {
			return current, err
		}
		sw = py32.RCC_SW_HSE
	case PLL:
		if err := startPLL(cfg); err != nil {
			return current, err
		}
		sw = py32.RCC_SW_PLL
	case LSI:
		if err := EnableLSI(); err != nil {
			return current, err
		}
		sw = py32.RCC_SW_LSI
	case LSE:
		if err := EnableLSE(false); err != nil {
			return current, err
		}
		sw = py32.RCC_SW_LSE
	}

	hpre, _ := hpreBits(cfg.HCLKDiv)
	ppre, _ := ppreBits(cfg.PCLKDiv)
	sys := cfg.SysClkFreq()
	hclk := sys >> hpreShift(hpre)
	acr := flash.At(py32.FLASH_ACR)

	// Raise the wait state before the clock goes up, drop it after it goes down.
	if hclk > zeroWaitMax {
		acr.SetBit(py32.FLASH_ACR_LATENCY)
	}
	cfgr := rcc.At(py32.RCC_CFGR)
	cfgr.SetField(py32.RCC_CFGR_HPRE_Pos, py32.RCC_CFGR_HPRE_Len, hpre)
	cfgr.SetField(py32.RCC_CFGR_PPRE_Pos, py32.RCC_CFGR_PPRE_Len, ppre)
	if active() != sw {
		if err := switchTo(sw, cfg.Source.String()); err != nil {
			return current, err
		}
	}
	if hclk <= zeroWaitMax {
		acr.ClearBit(py32.FLASH_ACR_LATENCY)
	}

	pclkDiv = cfg.PCLKDiv
	if pclkDiv == 0 {
		pclkDiv = 1
	}
	current = Clocks{CPU: sys, HCLK: hclk, PCLK: hclk / uint32(pclkDiv)}
	core.Info("rcc: sysclk=" + core.Utoa(current.CPU) +
		" hclk=" + core.Utoa(current.HCLK) +
		" pclk=" + core.Utoa(current.PCLK))
	return current, nil
}

func hpreShift(bits uint32) uint32 {
	if bits < 8 {
		return 0
	}
	return [...]uint32{1, 2, 3, 4, 6, 7, 8, 9}[bits-8]
}

func startHSI(cfg Config) error {
	cr := rcc.At(py32.RCC_CR)
	icscr := rcc.At(py32.RCC_ICSCR)
	fs := uint32(cfg.HSIFreq)
	trim := reg.Read32(py32.HSI_TRIM_BASE+4*fs) & (1<<py32.RCC_ICSCR_HSI_TRIM_Len - 1)
	icscr.Set(fs<<py32.RCC_ICSCR_HSI_FS_Pos | trim<<py32.RCC_ICSCR_HSI_TRIM_Pos)
	div, _ := hsiDivBits(cfg.HSIDiv)
	if cfg.Source != HSI {
		div = 0
	}
	cr.SetField(py32.RCC_CR_HSIDIV_Pos, py32.RCC_CR_HSIDIV_Len, div)
	cr.SetBit(py32.RCC_CR_HSION)
	return spin("HSI", func() bool { return cr.Bit(py32.RCC_CR_HSIRDY) })
}

// hseDrive picks the oscillator drive strength for the crystal frequency.
func hseDrive(hz uint32) uint32 {
	switch {
	case hz <= 8000000:
		return 1
	case hz <= 16000000:
		return 2
	}
	return 3
}

func startHSE(cfg Config) error {
	cr := rcc.At(py32.RCC_CR)
	if cr.Bit(py32.RCC_CR_HSERDY) {
		return nil
	}
	drv := hseDrive(cfg.HSEFreq)
	if cfg.HSEBypass {
		drv = 0
		cr.SetBit(py32.RCC_CR_HSEBYP)
	} else {
		cr.ClearBit(py32.RCC_CR_HSEBYP)
	}
	rcc.At(py32.RCC_ECSCR).SetField(py32.RCC_ECSCR_HSE_DRV_Pos, py32.RCC_ECSCR_HSE_DRV_Len, drv)
	cr.SetBit(py32.RCC_CR_HSEON)
	return spin("HSE", func() bool { return cr.Bit(py32.RCC_CR_HSERDY) })
}

func startPLL(cfg Config) error {
	cr := rcc.At(py32.RCC_CR)
	if cfg.PLLSource == PLLFromHSE {
		if err := startHSE(cfg); err != nil {
			return err
		}
	} else if err := startHSI(cfg); err != nil {
		return err
	}
	if cr.Bit(py32.RCC_CR_PLLON) {
		cr.ClearBit(py32.RCC_CR_PLLON)
		if err := spin("PLL", func() bool { return !cr.Bit(py32.RCC_CR_PLLRDY) }); err != nil {
			return err
		}
	}
	pllcfgr := rcc.At(py32.RCC_PLLCFGR)
	if cfg.PLLSource == PLLFromHSE {
		pllcfgr.SetBit(py32.RCC_PLLCFGR_PLLSRC)
	} else {
		pllcfgr.ClearBit(py32.RCC_PLLCFGR_PLLSRC)
	}
	cr.SetBit(py32.RCC_CR_PLLON)
	return spin("PLL", func() bool { return cr.Bit(py32.RCC_CR_PLLRDY) })
}

// EnableLSI starts the 32.768 kHz internal oscillator.
func EnableLSI() error {
	csr := rcc.At(py32.RCC_CSR)
	csr.SetBit(py32.RCC_CSR_LSION)
	return spin("LSI", func() bool { return csr.Bit(py32.RCC_CSR_LSIRDY) })
}

// EnableLSE starts the 32.768 kHz crystal oscillator. LSE sits in the backup
// domain, which must be write-enabled (PWR DBP) by the caller.
func EnableLSE(bypass bool) error {
	bdcr := rcc.At(py32.RCC_BDCR)
	if bdcr.Bit(py32.RCC_BDCR_LSERDY) {
		return nil
	}
	if bypass {
		bdcr.SetBit(py32.RCC_BDCR_LSEBYP)
	}
	bdcr.SetBit(py32.RCC_BDCR_LSEON)
	return spin("LSE", func() bool { return bdcr.Bit(py32.RCC_BDCR_LSERDY) })
}

// EnableHSE starts the external oscillator outside Configure, e.g. to clock
// the RTC from HSE/32.
func EnableHSE(hz uint32, bypass bool) error {
	if hz < hseMin || hz > hseMax {
		return errcode.New(errcode.InvalidFrequency, "rcc.EnableHSE", core.Utoa(hz))
	}
	return startHSE(Config{HSEFreq: hz, HSEBypass: bypass})
}
