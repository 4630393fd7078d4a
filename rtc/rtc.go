// Package rtc runs the real-time counter as a seconds clock with an alarm.
//
// The counter, prescaler and alarm sit in the backup domain. New opens it
// through PWR and keeps it open; every counter write goes through the
// configuration mode, which the hardware applies a few RTC cycles later.
package rtc

import (
	"py32hal/core"
	"py32hal/device/py32"
	"py32hal/errcode"
	"py32hal/periph"
	"py32hal/rcc"
	"py32hal/reg"
)

// Clock selects the counter clock.
type Clock uint8

const (
	LSI Clock = iota
	LSE
	HSEDiv32
)

func (c Clock) String() string {
	switch c {
	case LSI:
		return "LSI"
	case LSE:
		return "LSE"
	case HSEDiv32:
		return "HSE/32"
	}
	return "rtc.Clock?"
}

// Config for the counter. HSEFreq is needed for HSEDiv32 only.
type Config struct {
	Clock     Clock
	LSEBypass bool
	HSEFreq   uint32
	Timeout   uint32
}

func DefaultConfig() Config {
	return Config{Clock: LSI}
}

// Events, at their CRL flag and CRH enable positions.
const (
	FlagSecond   uint32 = 1 << py32.RTC_CRL_SECF
	FlagAlarm    uint32 = 1 << py32.RTC_CRL_ALRF
	FlagOverflow uint32 = 1 << py32.RTC_CRL_OWF

	allFlags = FlagSecond | FlagAlarm | FlagOverflow
	// Writing 1 to a flag leaves it; RSF is kept set so a clear does not
	// start a resynchronisation.
	keepCRL = allFlags | 1<<py32.RTC_CRL_RSF
)

var (
	regs    = reg.Block(py32.RTC_BASE)
	pwr     = reg.Block(py32.PWR_BASE)
	rccRegs = reg.Block(py32.RCC_BASE)
)

var selBits = [...]uint32{
	LSI:      py32.RTC_SEL_LSI,
	LSE:      py32.RTC_SEL_LSE,
	HSEDiv32: py32.RTC_SEL_HSE32,
}

// RTC is the seconds counter.
type RTC struct {
	tok *periph.Token
	cfg Config
	hz  uint32
}

// Prescaler returns the reload that divides hz down to one tick per second.
func Prescaler(hz uint32) (uint32, error) {
	if hz == 0 || hz-1 > 0xFFFFF {
		return 0, errcode.New(errcode.InvalidFrequency, "rtc.Prescaler", core.Utoa(hz))
	}
	return hz - 1, nil
}

// New starts the selected oscillator, routes it to the RTC and programs the
// prescaler for 1 Hz. The counter keeps its value if the domain was already
// running from the same clock.
func New(tok *periph.Token, cfg Config) (*RTC, error) {
	const op = "rtc.New"
	if tok == nil || tok.ID() != periph.RTC {
		return nil, errcode.New(errcode.InvalidConfig, op, "token")
	}
	if cfg.Clock > HSEDiv32 {
		return nil, errcode.New(errcode.InvalidConfig, op, "clock")
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = core.DefaultSpinBudget
	}
	hz, err := clockFreq(cfg)
	if err != nil {
		return nil, err
	}
	prl, err := Prescaler(hz)
	if err != nil {
		return nil, err
	}
	if err := tok.Claim(); err != nil {
		return nil, err
	}
	r := &RTC{tok: tok, cfg: cfg, hz: hz}
	if err := r.start(prl); err != nil {
		tok.Release()
		return nil, err
	}
	attach()
	return r, nil
}

func clockFreq(cfg Config) (uint32, error) {
	switch cfg.Clock {
	case LSI:
		return rcc.LSIFreq, nil
	case LSE:
		return rcc.LSEFreq, nil
	}
	if cfg.HSEFreq == 0 {
		return 0, errcode.New(errcode.InvalidFrequency, "rtc.New", "HSE frequency")
	}
	return cfg.HSEFreq / 32, nil
}

func (r *RTC) start(prl uint32) error {
	const op = "rtc.New"
	periph.PWR.SetClock(true)
	pwr.At(py32.PWR_CR1).SetBit(py32.PWR_CR1_DBP)

	var err error
	switch r.cfg.Clock {
	case LSI:
		err = rcc.EnableLSI()
	case LSE:
		err = rcc.EnableLSE(r.cfg.LSEBypass)
	case HSEDiv32:
		err = rcc.EnableHSE(r.cfg.HSEFreq, false)
	}
	if err != nil {
		return err
	}

	bdcr := rccRegs.At(py32.RCC_BDCR)
	sel := selBits[r.cfg.Clock]
	cur := bdcr.Field(py32.RCC_BDCR_RTCSEL_Pos, py32.RCC_BDCR_RTCSEL_Len)
	if cur != py32.RTC_SEL_NONE && cur != sel {
		// RTCSEL only changes through a backup domain reset, which also
		// stops LSE.
		keep := bdcr.Get() & (1<<py32.RCC_BDCR_LSEON | 1<<py32.RCC_BDCR_LSEBYP)
		bdcr.SetBit(py32.RCC_BDCR_BDRST)
		bdcr.Set(keep)
		if keep&(1<<py32.RCC_BDCR_LSEON) != 0 {
			if err := rcc.EnableLSE(r.cfg.LSEBypass); err != nil {
				return err
			}
		}
	}
	bdcr.SetField(py32.RCC_BDCR_RTCSEL_Pos, py32.RCC_BDCR_RTCSEL_Len, sel)
	bdcr.SetBit(py32.RCC_BDCR_RTCEN)

	if err := r.sync(op); err != nil {
		return err
	}
	return r.configure(op, func() {
		regs.At(py32.RTC_PRLH).Set(prl >> 16 & 0xF)
		regs.At(py32.RTC_PRLL).Set(prl & 0xFFFF)
	})
}

// sync waits for the APB view of the registers to catch up with the RTC
// clock.
func (r *RTC) sync(op string) error {
	crl := regs.At(py32.RTC_CRL)
	crl.Set(keepCRL &^ (1 << py32.RTC_CRL_RSF))
	return core.SpinUntil(r.cfg.Timeout, op, errcode.PhaseReady, func() bool {
		return crl.Bit(py32.RTC_CRL_RSF)
	})
}

// configure runs write inside configuration mode and waits for the RTC to
// take the writes.
func (r *RTC) configure(op string, write func()) error {
	crl := regs.At(py32.RTC_CRL)
	idle := func() bool { return crl.Bit(py32.RTC_CRL_RTOFF) }
	if err := core.SpinUntil(r.cfg.Timeout, op, errcode.PhaseReady, idle); err != nil {
		return err
	}
	crl.Set(keepCRL | 1<<py32.RTC_CRL_CNF)
	write()
	crl.Set(keepCRL)
	return core.SpinUntil(r.cfg.Timeout, op, errcode.PhaseComplete, idle)
}

// Clock returns the selected clock and its frequency.
func (r *RTC) Clock() (Clock, uint32) { return r.cfg.Clock, r.hz }

// Read returns the seconds counter.
func (r *RTC) Read() uint32 {
	hi := regs.At(py32.RTC_CNTH).Get()
	lo := regs.At(py32.RTC_CNTL).Get()
	if hi2 := regs.At(py32.RTC_CNTH).Get(); hi2 != hi {
		// CNTL wrapped between the reads.
		hi, lo = hi2, regs.At(py32.RTC_CNTL).Get()
	}
	return hi<<16 | lo&0xFFFF
}

// SetCounter loads the seconds counter and restarts the current second.
func (r *RTC) SetCounter(v uint32) error {
	return r.configure("rtc.SetCounter", func() {
		regs.At(py32.RTC_CNTH).Set(v >> 16)
		regs.At(py32.RTC_CNTL).Set(v & 0xFFFF)
	})
}

func (r *RTC) setAlarm(op string, at uint32) error {
	return r.configure(op, func() {
		regs.At(py32.RTC_ALRH).Set(at >> 16)
		regs.At(py32.RTC_ALRL).Set(at & 0xFFFF)
	})
}

// WaitBlocking returns once s seconds have been counted. Each second is
// bounded by a spin of HCLK iterations, so a stopped clock ends in Timeout.
func (r *RTC) WaitBlocking(s uint32) error {
	const op = "rtc.WaitBlocking"
	start := r.Read()
	budget := rcc.Current().HCLK
	for k := uint32(1); k <= s; k++ {
		err := core.SpinUntil(budget, op, errcode.PhaseComplete, func() bool {
			return r.Read()-start >= k
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// Close masks the RTC interrupt and releases the APB interface. The counter
// keeps running in the backup domain.
func (r *RTC) Close() {
	detach()
	regs.At(py32.RTC_CRH).Set(0)
	r.tok.Release()
}
