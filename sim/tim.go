//go:build !tinygo

package sim

import "py32hal/device/py32"

type timer struct {
	mc       *Machine
	addr     uint32
	channels int
	advanced bool
	irq      int

	cr1, cr2, smcr, dier, sr uint32
	ccmr                     [2]uint32
	ccer, cnt, psc, arr, rcr uint32
	ccr                      [4]uint32
	bdtr                     uint32

	// shadow registers loaded on update
	pscS, arrS, rcrS uint32
	repCnt           uint32
	pscCnt           uint64
	acc              uint64
	down             bool

	updates uint64
}

func (t *timer) base() uint32 { return t.addr }
func (t *timer) size() uint32 { return 0x400 }

func (t *timer) reset() {
	*t = timer{mc: t.mc, addr: t.addr, channels: t.channels, advanced: t.advanced, irq: t.irq}
	t.arr, t.arrS = 0xFFFF, 0xFFFF
}

func (t *timer) load(off uint32) uint32 {
	switch off {
	case py32.TIM_CR1:
		return t.cr1
	case py32.TIM_CR2:
		return t.cr2
	case py32.TIM_SMCR:
		return t.smcr
	case py32.TIM_DIER:
		return t.dier
	case py32.TIM_SR:
		return t.sr
	case py32.TIM_CCMR1:
		return t.ccmr[0]
	case py32.TIM_CCMR2:
		return t.ccmr[1]
	case py32.TIM_CCER:
		return t.ccer
	case py32.TIM_CNT:
		return t.cnt
	case py32.TIM_PSC:
		return t.psc
	case py32.TIM_ARR:
		return t.arr
	case py32.TIM_RCR:
		if t.advanced {
			return t.rcr
		}
	case py32.TIM_BDTR:
		if t.advanced {
			return t.bdtr
		}
	}
	if off >= py32.TIM_CCR1 && off < py32.TIM_CCR1+16 {
		return t.ccr[(off-py32.TIM_CCR1)/4]
	}
	return 0
}

func (t *timer) store(off, v uint32) {
	switch off {
	case py32.TIM_CR1:
		t.cr1 = v & 0x3FF
		t.down = v&(1<<py32.TIM_CR1_DIR) != 0
	case py32.TIM_CR2:
		t.cr2 = v
	case py32.TIM_SMCR:
		t.smcr = v
	case py32.TIM_DIER:
		t.dier = v
	case py32.TIM_SR:
		t.sr &= v
	case py32.TIM_EGR:
		if v&(1<<py32.TIM_EGR_UG) != 0 {
			t.loadShadows()
			t.cnt = 0
			if t.down {
				t.cnt = t.arrS
			}
			t.pscCnt = 0
			if t.cr1&(1<<py32.TIM_CR1_URS) == 0 {
				t.sr |= 1 << py32.TIM_SR_UIF
			}
		}
		if v&(1<<py32.TIM_SR_BIF) != 0 && t.advanced {
			t.brk()
		}
	case py32.TIM_CCMR1:
		t.ccmr[0] = v
	case py32.TIM_CCMR2:
		t.ccmr[1] = v
	case py32.TIM_CCER:
		t.ccer = v
	case py32.TIM_CNT:
		t.cnt = v & 0xFFFF
	case py32.TIM_PSC:
		t.psc = v & 0xFFFF
	case py32.TIM_ARR:
		t.arr = v & 0xFFFF
		if t.cr1&(1<<py32.TIM_CR1_ARPE) == 0 {
			t.arrS = t.arr
		}
	case py32.TIM_RCR:
		if t.advanced {
			t.rcr = v & 0xFF
		}
	case py32.TIM_BDTR:
		if t.advanced {
			t.bdtr = v
		}
	default:
		if off >= py32.TIM_CCR1 && off < py32.TIM_CCR1+uint32(4*t.channels) {
			t.ccr[(off-py32.TIM_CCR1)/4] = v & 0xFFFF
		}
	}
}

// loadShadows copies preload registers into their shadows.
func (t *timer) loadShadows() {
	t.pscS, t.arrS, t.rcrS = t.psc, t.arr, t.rcr
	t.repCnt = t.rcrS
}

func (t *timer) brk() {
	t.sr |= 1 << py32.TIM_SR_BIF
	t.bdtr &^= 1 << py32.TIM_BDTR_MOE
}

func (t *timer) updateEvent() {
	if t.cr1&(1<<py32.TIM_CR1_UDIS) != 0 {
		return
	}
	t.pscS, t.arrS = t.psc, t.arr
	if t.repCnt > 0 {
		t.repCnt--
		return
	}
	t.repCnt = t.rcr
	t.rcrS = t.rcr
	t.sr |= 1 << py32.TIM_SR_UIF
	t.updates++
	if t.bdtr&(1<<py32.TIM_BDTR_AOE) != 0 && t.bdtr&(1<<py32.TIM_BDTR_BKE) != 0 {
		t.bdtr |= 1 << py32.TIM_BDTR_MOE
	}
	if t.cr1&(1<<py32.TIM_CR1_OPM) != 0 {
		t.cr1 &^= 1 << py32.TIM_CR1_CEN
	}
}

func (t *timer) compare(from, to uint32) {
	for ch := 0; ch < t.channels; ch++ {
		c := t.ccr[ch]
		if c > from && c <= to {
			t.sr |= 1 << uint(py32.TIM_SR_CC1IF+ch)
		}
	}
}

func (t *timer) count(n uint64) {
	for n > 0 && t.cr1&(1<<py32.TIM_CR1_CEN) != 0 {
		arr := t.arrS
		if arr == 0 {
			return
		}
		if !t.down {
			if t.cnt > arr {
				t.cnt = arr
			}
			left := uint64(arr-t.cnt) + 1
			if n < left {
				t.compare(t.cnt, t.cnt+uint32(n))
				t.cnt += uint32(n)
				return
			}
			t.compare(t.cnt, arr)
			n -= left
			t.cnt = 0
			t.updateEvent()
		} else {
			left := uint64(t.cnt) + 1
			if n < left {
				t.cnt -= uint32(n)
				return
			}
			n -= left
			t.cnt = arr
			t.updateEvent()
		}
	}
}

func (t *timer) step(cycles uint32) {
	if t.cr1&(1<<py32.TIM_CR1_CEN) != 0 {
		t.acc += uint64(cycles) * uint64(t.mc.rcc.timclk())
		hclk := uint64(t.mc.rcc.hclk)
		ticks := t.acc / hclk
		t.acc %= hclk
		t.pscCnt += ticks
		div := uint64(t.pscS) + 1
		t.count(t.pscCnt / div)
		t.pscCnt %= div
	}
	pend := t.sr & t.dier & 0xFF
	if t.addr == py32.TIM1_BASE {
		if pend&0xE1 != 0 {
			t.mc.nvic.raise(py32.IRQ_TIM1_BRK_UP_TRG_COM)
		}
		if pend&0x1E != 0 {
			t.mc.nvic.raise(py32.IRQ_TIM1_CC)
		}
	} else if pend != 0 {
		t.mc.nvic.raise(t.irq)
	}
}

// output computes the OCx level from mode, compare value and polarity.
func (t *timer) output(ch int) bool {
	en := t.ccer>>(4*uint(ch))&1 != 0
	if !en {
		return false
	}
	if t.advanced && t.bdtr&(1<<py32.TIM_BDTR_MOE) == 0 {
		return t.cr2>>(py32.TIM_CR2_OIS1+2*uint(ch))&1 != 0
	}
	mode := t.ccmr[ch/2] >> (8*uint(ch%2) + py32.TIM_CCMR_OCM_Pos) & 7
	var active bool
	switch mode {
	case 4: // force inactive
		active = false
	case 5: // force active
		active = true
	case 6: // PWM1
		active = t.cnt < t.ccr[ch]
	case 7: // PWM2
		active = t.cnt >= t.ccr[ch]
	default:
		active = false
	}
	if t.ccer>>(4*uint(ch)+py32.TIM_CCER_CCP)&1 != 0 {
		active = !active
	}
	return active
}

// Timer is the test handle to a timer model.
type Timer struct{ t *timer }

// Tim returns the timer at base address addr.
func Tim(addr uint32) Timer { return Timer{m.tims[addr]} }

// Output samples the channel output (1-based) at the current counter value.
func (t Timer) Output(ch int) bool { return t.t.output(ch - 1) }

// Updates counts update events that set UIF.
func (t Timer) Updates() uint64 { return t.t.updates }

// Running reports CEN.
func (t Timer) Running() bool { return t.t.cr1&(1<<py32.TIM_CR1_CEN) != 0 }

// Break asserts the break input.
func (t Timer) Break() {
	if t.t.advanced && t.t.bdtr&(1<<py32.TIM_BDTR_BKE) != 0 {
		t.t.brk()
	}
}
