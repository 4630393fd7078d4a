//go:build !tinygo

package sim

import "py32hal/device/py32"

const rtcWriteDelay = 96

type rtc struct {
	mc *Machine

	crh, crl uint32
	prl      uint32
	div      uint32
	cnt      uint32
	alr      uint32
	acc      uint64
	busy     uint64
	rsfWait  uint64
}

func (r *rtc) base() uint32 { return py32.RTC_BASE }
func (r *rtc) size() uint32 { return 0x400 }

func (r *rtc) reset() {
	*r = rtc{mc: r.mc}
	r.crl = 1 << py32.RTC_CRL_RTOFF
	r.prl, r.div = 0x7FFF, 0x7FFF
	r.alr = 0xFFFFFFFF
}

func (r *rtc) writable() bool {
	return r.mc.mem[py32.PWR_BASE+py32.PWR_CR1]&(1<<py32.PWR_CR1_DBP) != 0
}

func (r *rtc) configuring() bool {
	return r.writable() && r.crl&(1<<py32.RTC_CRL_CNF) != 0
}

func (r *rtc) load(off uint32) uint32 {
	switch off {
	case py32.RTC_CRH:
		return r.crh
	case py32.RTC_CRL:
		return r.crl
	case py32.RTC_DIVH:
		return r.div >> 16 & 0xF
	case py32.RTC_DIVL:
		return r.div & 0xFFFF
	case py32.RTC_CNTH:
		return r.cnt >> 16
	case py32.RTC_CNTL:
		return r.cnt & 0xFFFF
	case py32.RTC_ALRH:
		return r.alr >> 16
	case py32.RTC_ALRL:
		return r.alr & 0xFFFF
	}
	return 0
}

func (r *rtc) store(off, v uint32) {
	v &= 0xFFFF
	switch off {
	case py32.RTC_CRH:
		r.crh = v & 7
		return
	case py32.RTC_CRL:
		if !r.writable() {
			return
		}
		const w0 = 1<<py32.RTC_CRL_SECF | 1<<py32.RTC_CRL_ALRF | 1<<py32.RTC_CRL_OWF | 1<<py32.RTC_CRL_RSF
		was := r.crl&(1<<py32.RTC_CRL_CNF) != 0
		r.crl = r.crl&(v|^uint32(w0))&^(1<<py32.RTC_CRL_CNF) | v&(1<<py32.RTC_CRL_CNF)
		if v&(1<<py32.RTC_CRL_RSF) == 0 {
			r.rsfWait = rtcWriteDelay
		}
		if was && v&(1<<py32.RTC_CRL_CNF) == 0 {
			// leaving configuration: the write takes a few RTC cycles
			r.crl &^= 1 << py32.RTC_CRL_RTOFF
			r.busy = rtcWriteDelay
		}
		return
	}
	if !r.configuring() {
		return
	}
	switch off {
	case py32.RTC_PRLH:
		r.prl = r.prl&0xFFFF | (v&0xF)<<16
	case py32.RTC_PRLL:
		r.prl = r.prl&0xF0000 | v
		r.div = r.prl
	case py32.RTC_CNTH:
		r.cnt = r.cnt&0xFFFF | v<<16
	case py32.RTC_CNTL:
		r.cnt = r.cnt&0xFFFF0000 | v
		r.div = r.prl
	case py32.RTC_ALRH:
		r.alr = r.alr&0xFFFF | v<<16
	case py32.RTC_ALRL:
		r.alr = r.alr&0xFFFF0000 | v
	}
}

func (r *rtc) clock() uint32 {
	rc := r.mc.rcc
	bdcr := rc.regs[py32.RCC_BDCR/4]
	if bdcr&(1<<py32.RCC_BDCR_RTCEN) == 0 {
		return 0
	}
	switch bdcr >> py32.RCC_BDCR_RTCSEL_Pos & 3 {
	case py32.RTC_SEL_LSE:
		if bdcr&(1<<py32.RCC_BDCR_LSERDY) != 0 {
			return LSEFreq
		}
	case py32.RTC_SEL_LSI:
		if rc.bit(py32.RCC_CSR, py32.RCC_CSR_LSIRDY) {
			return LSIFreq
		}
	case py32.RTC_SEL_HSE32:
		if rc.bit(py32.RCC_CR, py32.RCC_CR_HSERDY) {
			return rc.hseFreq / 32
		}
	}
	return 0
}

func (r *rtc) step(cycles uint32) {
	c := uint64(cycles)
	if r.busy > 0 {
		if r.busy > c {
			r.busy -= c
		} else {
			r.busy = 0
			r.crl |= 1 << py32.RTC_CRL_RTOFF
		}
	}
	if r.rsfWait > 0 {
		if r.rsfWait > c {
			r.rsfWait -= c
		} else {
			r.rsfWait = 0
			r.crl |= 1 << py32.RTC_CRL_RSF
		}
	}
	if f := r.clock(); f != 0 && !r.configuring() {
		r.acc += c * uint64(f)
		hclk := uint64(r.mc.rcc.hclk)
		ticks := r.acc / hclk
		r.acc %= hclk
		for ticks > 0 {
			if ticks <= uint64(r.div) {
				r.div -= uint32(ticks)
				break
			}
			ticks -= uint64(r.div) + 1
			r.div = r.prl
			r.second()
		}
	}
	if r.crl&r.crh&7 != 0 {
		r.mc.nvic.raise(py32.IRQ_RTC)
	}
}

func (r *rtc) second() {
	r.cnt++
	r.crl |= 1 << py32.RTC_CRL_SECF
	if r.cnt == 0 {
		r.crl |= 1 << py32.RTC_CRL_OWF
	}
	if r.cnt == r.alr {
		r.crl |= 1 << py32.RTC_CRL_ALRF
	}
}

// RTCCounter returns the seconds counter without touching the bus.
func RTCCounter() uint32 { return m.rtc.cnt }

// RTCPrescaler returns the programmed prescaler reload.
func RTCPrescaler() uint32 { return m.rtc.prl }
