// Package iwdg starts and feeds the independent watchdog. Once started it
// runs from LSI until the next reset; there is no way to stop it.
package iwdg

import (
	"time"

	"py32hal/core"
	"py32hal/device/py32"
	"py32hal/errcode"
	"py32hal/periph"
	"py32hal/rcc"
	"py32hal/reg"
)

// Divider is the LSI prescaler, PR encoding.
type Divider uint8

const (
	Div4 Divider = iota
	Div8
	Div16
	Div32
	Div64
	Div128
	Div256
)

func (d Divider) Value() uint32 { return 4 << d }

// MaxReload is the largest counter reload.
const MaxReload = py32.IWDG_RLR_MAX

// Config is a divider and reload. The watchdog fires after
// (Reload+1)*Divider LSI cycles without a Feed.
type Config struct {
	Divider Divider
	Reload  uint16
}

// Timeout returns the expiry period of cfg.
func (cfg Config) Timeout() time.Duration {
	cycles := uint64(cfg.Reload+1) * uint64(cfg.Divider.Value())
	return time.Duration(cycles * uint64(time.Second) / rcc.LSIFreq)
}

func (cfg Config) Validate() error {
	if cfg.Divider > Div256 || cfg.Reload > MaxReload {
		return errcode.New(errcode.InvalidConfig, "iwdg.Config", core.Utoa(uint32(cfg.Reload)))
	}
	return nil
}

// TimeoutFor picks the finest divider whose reload still covers d. The
// result never expires sooner than d; periods beyond the largest setting fail.
func TimeoutFor(d time.Duration) (Config, error) {
	if d <= 0 {
		return Config{}, errcode.New(errcode.InvalidConfig, "iwdg.TimeoutFor", "period")
	}
	lsi := core.CeilDiv(uint64(d)*rcc.LSIFreq, uint64(time.Second))
	for div := Div4; div <= Div256; div++ {
		ticks := core.CeilDiv(lsi, uint64(div.Value()))
		if ticks <= MaxReload+1 {
			return Config{Divider: div, Reload: uint16(max(ticks, 1) - 1)}, nil
		}
	}
	return Config{}, errcode.New(errcode.InvalidConfig, "iwdg.TimeoutFor", "too long")
}

var regs = reg.Block(py32.IWDG_BASE)

// Watchdog is a running watchdog.
type Watchdog struct {
	cfg Config
}

// Start claims the watchdog, starts it and loads cfg. The token is never
// released.
func Start(tok *periph.Token, cfg Config) (*Watchdog, error) {
	const op = "iwdg.Start"
	if tok == nil || tok.ID() != periph.IWDG {
		return nil, errcode.New(errcode.InvalidConfig, op, "token")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := tok.Claim(); err != nil {
		return nil, err
	}
	kr := regs.At(py32.IWDG_KR)
	kr.Set(py32.IWDG_KEY_ENABLE)
	kr.Set(py32.IWDG_KEY_ACCESS)
	regs.At(py32.IWDG_PR).Set(uint32(cfg.Divider))
	regs.At(py32.IWDG_RLR).Set(uint32(cfg.Reload))
	sr := regs.At(py32.IWDG_SR)
	err := core.SpinUntil(0, op, errcode.PhaseComplete, func() bool {
		return sr.Get()&(1<<py32.IWDG_SR_PVU|1<<py32.IWDG_SR_RVU) == 0
	})
	kr.Set(py32.IWDG_KEY_RELOAD)
	if err != nil {
		return nil, err
	}
	return &Watchdog{cfg: cfg}, nil
}

// Feed reloads the counter.
func (w *Watchdog) Feed() {
	regs.At(py32.IWDG_KR).Set(py32.IWDG_KEY_RELOAD)
}

// Config returns the programmed divider and reload.
func (w *Watchdog) Config() Config { return w.cfg }
