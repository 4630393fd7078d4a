//go:build !tinygo

package sim

import "py32hal/device/py32"

const iwdgUpdateDelay = 64

type iwdg struct {
	mc *Machine

	pr, rlr, sr uint32
	access      bool
	running     bool
	counter     uint32
	acc         uint64
	pvu, rvu    uint64
	resets      int
}

func (w *iwdg) base() uint32 { return py32.IWDG_BASE }
func (w *iwdg) size() uint32 { return 0x400 }

func (w *iwdg) reset() {
	// The watchdog keeps running and counting across peripheral resets.
	*w = iwdg{mc: w.mc, resets: w.resets}
	w.rlr, w.counter = py32.IWDG_RLR_MAX, py32.IWDG_RLR_MAX
}

func (w *iwdg) load(off uint32) uint32 {
	switch off {
	case py32.IWDG_PR:
		return w.pr
	case py32.IWDG_RLR:
		return w.rlr
	case py32.IWDG_SR:
		return w.sr
	}
	return 0
}

func (w *iwdg) store(off, v uint32) {
	switch off {
	case py32.IWDG_KR:
		switch v & 0xFFFF {
		case py32.IWDG_KEY_ENABLE:
			w.running = true
			w.counter = w.rlr
			w.access = false
		case py32.IWDG_KEY_RELOAD:
			w.counter = w.rlr
			w.access = false
		case py32.IWDG_KEY_ACCESS:
			w.access = true
		default:
			w.access = false
		}
	case py32.IWDG_PR:
		if w.access {
			w.pr = v & 7
			w.sr |= 1 << py32.IWDG_SR_PVU
			w.pvu = iwdgUpdateDelay
		}
	case py32.IWDG_RLR:
		if w.access {
			w.rlr = v & py32.IWDG_RLR_MAX
			w.sr |= 1 << py32.IWDG_SR_RVU
			w.rvu = iwdgUpdateDelay
		}
	}
}

func (w *iwdg) step(cycles uint32) {
	c := uint64(cycles)
	if countdown64(&w.pvu, c) {
		w.sr &^= 1 << py32.IWDG_SR_PVU
	}
	if countdown64(&w.rvu, c) {
		w.sr &^= 1 << py32.IWDG_SR_RVU
	}
	if !w.running {
		return
	}
	div := uint64(4) << w.pr
	if w.pr >= 6 {
		div = 256
	}
	w.acc += c * LSIFreq
	period := uint64(w.mc.rcc.hclk) * div
	ticks := w.acc / period
	w.acc %= period
	for ticks > 0 {
		if ticks <= uint64(w.counter) {
			w.counter -= uint32(ticks)
			break
		}
		ticks -= uint64(w.counter) + 1
		w.resets++
		w.counter = w.rlr
	}
}

func countdown64(w *uint64, c uint64) bool {
	if *w == 0 {
		return false
	}
	if *w <= c {
		*w = 0
		return true
	}
	*w -= c
	return false
}

// WatchdogResets counts expiries of the independent watchdog.
func WatchdogResets() int { return m.iwdg.resets }

// WatchdogCounter returns the watchdog down-counter.
func WatchdogCounter() uint32 { return m.iwdg.counter }

// WatchdogRunning reports whether the watchdog was started.
func WatchdogRunning() bool { return m.iwdg.running }
