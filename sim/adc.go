//go:build !tinygo

package sim

import "py32hal/device/py32"

// Factory calibration values loaded into system memory.
const (
	tsCal1 = 1120
	tsCal2 = 1380
)

// Sample time codes to ADC cycles, times two.
var smpHalfCycles = [8]uint64{7, 11, 15, 27, 57, 83, 143, 479}

type adc struct {
	mc *Machine

	isr, ier, cr, cfgr1, cfgr2, smpr, chselr, dr, ccsr, ccr uint32

	values     [py32.ADC_CHANNELS]uint16
	seq        []int
	pos        int
	converting bool
	wait       uint64
	calWait    uint64
	failCal    bool
	drFull     bool
	triggers   int
}

func newADC(mc *Machine) *adc {
	a := &adc{mc: mc}
	for ch := range a.values {
		a.values[ch] = 2048
	}
	a.values[py32.ADC_CH_TEMP] = 1096
	a.values[py32.ADC_CH_VREF] = 1489
	return a
}

func (a *adc) base() uint32 { return py32.ADC_BASE }
func (a *adc) size() uint32 { return 0x400 }

func (a *adc) reset() {
	v, fail := a.values, a.failCal
	*a = adc{mc: a.mc, values: v, failCal: fail}
}

func (a *adc) load(off uint32) uint32 {
	switch off {
	case py32.ADC_ISR:
		return a.isr
	case py32.ADC_IER:
		return a.ier
	case py32.ADC_CR:
		return a.cr
	case py32.ADC_CFGR1:
		return a.cfgr1
	case py32.ADC_CFGR2:
		return a.cfgr2
	case py32.ADC_SMPR:
		return a.smpr
	case py32.ADC_CHSELR:
		return a.chselr
	case py32.ADC_DR:
		a.isr &^= 1 << py32.ADC_ISR_EOC
		a.drFull = false
		return a.dr
	case py32.ADC_CCSR:
		return a.ccsr
	case py32.ADC_CCR:
		return a.ccr
	}
	return 0
}

func (a *adc) store(off, v uint32) {
	switch off {
	case py32.ADC_ISR:
		a.isr &^= v
		if v&(1<<py32.ADC_ISR_EOC) != 0 {
			a.drFull = false
		}
	case py32.ADC_IER:
		a.ier = v
	case py32.ADC_CR:
		a.writeCR(v)
	case py32.ADC_CFGR1:
		if a.cr&(1<<py32.ADC_CR_ADSTART) == 0 {
			a.cfgr1 = v
		}
	case py32.ADC_CFGR2:
		a.cfgr2 = v
	case py32.ADC_SMPR:
		a.smpr = v
	case py32.ADC_CHSELR:
		if a.cr&(1<<py32.ADC_CR_ADSTART) == 0 {
			a.chselr = v
		}
	case py32.ADC_CCSR:
		a.ccsr = a.ccsr&(1<<py32.ADC_CCSR_CALON|1<<py32.ADC_CCSR_CALFAIL) | v&^(1<<py32.ADC_CCSR_CALON|1<<py32.ADC_CCSR_CALFAIL)
	case py32.ADC_CCR:
		a.ccr = v
	}
}

func (a *adc) writeCR(v uint32) {
	if v&(1<<py32.ADC_CR_ADCAL) != 0 && a.cr&(1<<py32.ADC_CR_ADEN) == 0 {
		a.cr |= 1 << py32.ADC_CR_ADCAL
		a.ccsr |= 1 << py32.ADC_CCSR_CALON
		a.ccsr &^= 1 << py32.ADC_CCSR_CALFAIL
		a.calWait = 512
		return
	}
	if v&(1<<py32.ADC_CR_ADSTP) != 0 {
		a.cr &^= 1 << py32.ADC_CR_ADSTART
		a.converting = false
	}
	a.cr = a.cr&(1<<py32.ADC_CR_ADCAL|1<<py32.ADC_CR_ADSTART) | v&(1<<py32.ADC_CR_ADEN)
	if v&(1<<py32.ADC_CR_ADSTART) != 0 && a.cr&(1<<py32.ADC_CR_ADEN) != 0 {
		a.cr |= 1 << py32.ADC_CR_ADSTART
		if a.cfgr1>>py32.ADC_CFGR1_EXTEN_Pos&3 == 0 {
			a.begin()
		}
	}
}

// begin starts a conversion run. In discontinuous mode a run is one channel.
func (a *adc) begin() {
	if a.seq == nil || a.pos >= len(a.seq) || a.cfgr1&(1<<py32.ADC_CFGR1_DISCEN) == 0 {
		a.seq = a.seq[:0]
		for ch := 0; ch < py32.ADC_CHANNELS; ch++ {
			if a.chselr&(1<<uint(ch)) != 0 {
				a.seq = append(a.seq, ch)
			}
		}
		if a.cfgr1&(1<<py32.ADC_CFGR1_SCANDIR) != 0 {
			for i, j := 0, len(a.seq)-1; i < j; i, j = i+1, j-1 {
				a.seq[i], a.seq[j] = a.seq[j], a.seq[i]
			}
		}
		a.pos = 0
	}
	if len(a.seq) == 0 {
		a.cr &^= 1 << py32.ADC_CR_ADSTART
		return
	}
	a.converting = true
	a.wait = (smpHalfCycles[a.smpr&7] + 25) * 2
}

func (a *adc) sample(ch int) uint32 {
	v := uint32(a.values[ch])
	if ch == py32.ADC_CH_TEMP && a.ccr&(1<<py32.ADC_CCR_TSEN) == 0 ||
		ch == py32.ADC_CH_VREF && a.ccr&(1<<py32.ADC_CCR_VREFEN) == 0 {
		v = 0
	}
	res := a.cfgr1 >> py32.ADC_CFGR1_RES_Pos & 3
	return v >> (2 * res)
}

func (a *adc) step(cycles uint32) {
	c := uint64(cycles)
	if a.calWait > 0 {
		if a.calWait > c {
			a.calWait -= c
		} else {
			a.calWait = 0
			a.cr &^= 1 << py32.ADC_CR_ADCAL
			a.ccsr &^= 1 << py32.ADC_CCSR_CALON
			if a.failCal {
				a.ccsr |= 1 << py32.ADC_CCSR_CALFAIL
			}
		}
	}
	if a.converting {
		if a.wait > c {
			a.wait -= c
		} else {
			a.complete()
		}
	}
	if a.isr&a.ier&0x9E != 0 {
		a.mc.nvic.raise(py32.IRQ_ADC_COMP)
	}
}

func (a *adc) complete() {
	ch := a.seq[a.pos]
	a.pos++
	if a.drFull {
		a.isr |= 1 << py32.ADC_ISR_OVR
		if a.cfgr1&(1<<py32.ADC_CFGR1_OVRMOD) != 0 {
			a.dr = a.sample(ch)
		}
	} else {
		a.dr = a.sample(ch)
		a.drFull = true
	}
	a.isr |= 1<<py32.ADC_ISR_EOC | 1<<py32.ADC_ISR_EOSMP
	a.converting = false
	last := a.pos >= len(a.seq)
	if last {
		a.isr |= 1 << py32.ADC_ISR_EOSEQ
	}
	switch {
	case a.cfgr1&(1<<py32.ADC_CFGR1_DISCEN) != 0:
		a.cr &^= 1 << py32.ADC_CR_ADSTART
	case !last:
		a.converting = true
		a.wait = (smpHalfCycles[a.smpr&7] + 25) * 2
	case a.cfgr1&(1<<py32.ADC_CFGR1_CONT) != 0:
		a.pos = len(a.seq)
		a.begin()
	default:
		a.cr &^= 1 << py32.ADC_CR_ADSTART
	}
}

func (a *adc) dmaRequest() bool {
	return a.cfgr1&(1<<py32.ADC_CFGR1_DMAEN) != 0 && a.drFull
}

// ADCModel is the test handle to the ADC model.
type ADCModel struct{ a *adc }

// ADC returns the ADC model handle.
func ADC() ADCModel { return ADCModel{m.adc} }

// Set sets the 12-bit value channel ch converts to.
func (h ADCModel) Set(ch int, raw uint16) { h.a.values[ch] = raw & 0xFFF }

// FailCalibration makes the next calibration report CALFAIL.
func (h ADCModel) FailCalibration(fail bool) { h.a.failCal = fail }

// Trigger fires the external trigger: starts a run if ADSTART is armed.
func (h ADCModel) Trigger() {
	a := h.a
	a.triggers++
	if a.cr&(1<<py32.ADC_CR_ADSTART) != 0 && !a.converting {
		a.begin()
	}
}

// Converting reports whether a conversion is in progress.
func (h ADCModel) Converting() bool { return h.a.converting }
