//go:build !tinygo

package sim

import "py32hal/device/py32"

// Oscillator start-up delays in HCLK cycles.
const (
	hsiStartup = 64
	hseStartup = 512
	pllStartup = 256
	lsiStartup = 128
	lseStartup = 1024
	swDelay    = 16
)

// LSIFreq and LSEFreq are the low-speed oscillator frequencies.
const (
	LSIFreq = 32768
	LSEFreq = 32768
)

var hsiFreqs = [8]uint32{4000000, 8000000, 16000000, 22120000, 24000000, 24000000, 24000000, 24000000}

type rcc struct {
	mc   *Machine
	regs [0x64 / 4]uint32

	hseFreq    uint32
	hsePresent bool
	lsePresent bool

	// countdowns to ready flags
	hseWait, pllWait, hsiWait, lsiWait, lseWait, swWait uint32

	sysclk, hclk, pclk uint32
}

func newRCC(mc *Machine) *rcc {
	return &rcc{mc: mc, hseFreq: 8000000, hsePresent: true, lsePresent: true}
}

func (r *rcc) base() uint32 { return py32.RCC_BASE }
func (r *rcc) size() uint32 { return 0x64 }

func (r *rcc) reset() {
	r.regs = [0x64 / 4]uint32{}
	r.regs[py32.RCC_CR/4] = 1<<py32.RCC_CR_HSION | 1<<py32.RCC_CR_HSIRDY
	// Reset value selects the 8 MHz HSI.
	r.regs[py32.RCC_ICSCR/4] = 1 << py32.RCC_ICSCR_HSI_FS_Pos
	r.hseWait, r.pllWait, r.hsiWait, r.lsiWait, r.lseWait, r.swWait = 0, 0, 0, 0, 0, 0
	r.recompute()
}

func (r *rcc) bit(off uint32, b uint) bool { return r.regs[off/4]&(1<<b) != 0 }

func (r *rcc) setBit(off uint32, b uint, on bool) {
	if on {
		r.regs[off/4] |= 1 << b
	} else {
		r.regs[off/4] &^= 1 << b
	}
}

func field(v uint32, pos, n uint) uint32 { return v >> pos & (1<<n - 1) }

func (r *rcc) hsiFreq() uint32 {
	return hsiFreqs[field(r.regs[py32.RCC_ICSCR/4], py32.RCC_ICSCR_HSI_FS_Pos, py32.RCC_ICSCR_HSI_FS_Len)]
}

func (r *rcc) pllFreq() uint32 {
	if r.bit(py32.RCC_PLLCFGR, py32.RCC_PLLCFGR_PLLSRC) {
		return r.hseFreq * 2
	}
	return r.hsiFreq() * 2
}

func (r *rcc) sourceFreq(sw uint32) uint32 {
	switch sw {
	case py32.RCC_SW_HSE:
		return r.hseFreq
	case py32.RCC_SW_PLL:
		return r.pllFreq()
	case py32.RCC_SW_LSI:
		return LSIFreq
	case py32.RCC_SW_LSE:
		return LSEFreq
	}
	div := field(r.regs[py32.RCC_CR/4], py32.RCC_CR_HSIDIV_Pos, py32.RCC_CR_HSIDIV_Len)
	return r.hsiFreq() >> div
}

var hpreShift = [16]uint{0, 0, 0, 0, 0, 0, 0, 0, 1, 2, 3, 4, 6, 7, 8, 9}
var ppreShift = [8]uint{0, 0, 0, 0, 1, 2, 3, 4}

func (r *rcc) recompute() {
	cfgr := r.regs[py32.RCC_CFGR/4]
	r.sysclk = r.sourceFreq(field(cfgr, py32.RCC_CFGR_SWS_Pos, py32.RCC_CFGR_SWS_Len))
	r.hclk = r.sysclk >> hpreShift[field(cfgr, py32.RCC_CFGR_HPRE_Pos, py32.RCC_CFGR_HPRE_Len)]
	r.pclk = r.hclk >> ppreShift[field(cfgr, py32.RCC_CFGR_PPRE_Pos, py32.RCC_CFGR_PPRE_Len)]
	if r.hclk == 0 {
		r.hclk = 1
	}
	if r.pclk == 0 {
		r.pclk = 1
	}
}

func (r *rcc) timclk() uint32 {
	if field(r.regs[py32.RCC_CFGR/4], py32.RCC_CFGR_PPRE_Pos, py32.RCC_CFGR_PPRE_Len) >= 4 {
		return r.pclk * 2
	}
	return r.pclk
}

func (r *rcc) load(off uint32) uint32 {
	if off/4 < uint32(len(r.regs)) {
		return r.regs[off/4]
	}
	return 0
}

func (r *rcc) store(off, v uint32) {
	if off/4 >= uint32(len(r.regs)) {
		return
	}
	old := r.regs[off/4]
	switch off {
	case py32.RCC_CR:
		ro := uint32(1<<py32.RCC_CR_HSIRDY | 1<<py32.RCC_CR_HSERDY | 1<<py32.RCC_CR_PLLRDY)
		sws := field(r.regs[py32.RCC_CFGR/4], py32.RCC_CFGR_SWS_Pos, py32.RCC_CFGR_SWS_Len)
		// The running source cannot be stopped.
		if sws == py32.RCC_SW_PLL {
			v |= 1 << py32.RCC_CR_PLLON
		}
		if sws == py32.RCC_SW_HSE || (sws == py32.RCC_SW_PLL && r.bit(py32.RCC_PLLCFGR, py32.RCC_PLLCFGR_PLLSRC)) {
			v |= 1 << py32.RCC_CR_HSEON
		}
		if sws == py32.RCC_SW_HSISYS || (sws == py32.RCC_SW_PLL && !r.bit(py32.RCC_PLLCFGR, py32.RCC_PLLCFGR_PLLSRC)) {
			v |= 1 << py32.RCC_CR_HSION
		}
		r.regs[0] = v&^ro | old&ro
		r.onEdge(old, r.regs[0], py32.RCC_CR_HSEON, &r.hseWait, hseStartup, py32.RCC_CR_HSERDY)
		r.onEdge(old, r.regs[0], py32.RCC_CR_PLLON, &r.pllWait, pllStartup, py32.RCC_CR_PLLRDY)
		r.onEdge(old, r.regs[0], py32.RCC_CR_HSION, &r.hsiWait, hsiStartup, py32.RCC_CR_HSIRDY)
	case py32.RCC_CFGR:
		ro := uint32(0x7 << py32.RCC_CFGR_SWS_Pos)
		r.regs[off/4] = v&^ro | old&ro
		if field(v, py32.RCC_CFGR_SW_Pos, py32.RCC_CFGR_SW_Len) != field(old, py32.RCC_CFGR_SW_Pos, py32.RCC_CFGR_SW_Len) {
			r.swWait = swDelay
		}
	case py32.RCC_PLLCFGR:
		// Locked while the PLL runs.
		if r.bit(py32.RCC_CR, py32.RCC_CR_PLLON) {
			return
		}
		r.regs[off/4] = v
	case py32.RCC_CSR:
		r.regs[off/4] = v&^(1<<py32.RCC_CSR_LSIRDY) | old&(1<<py32.RCC_CSR_LSIRDY)
		if v&(1<<py32.RCC_CSR_LSION) == 0 {
			r.regs[off/4] &^= 1 << py32.RCC_CSR_LSIRDY
		} else if old&(1<<py32.RCC_CSR_LSION) == 0 {
			r.lsiWait = lsiStartup
		}
	case py32.RCC_BDCR:
		if v&(1<<py32.RCC_BDCR_BDRST) != 0 {
			r.regs[off/4] = 1 << py32.RCC_BDCR_BDRST
			r.mc.rtc.reset()
			return
		}
		r.regs[off/4] = v&^(1<<py32.RCC_BDCR_LSERDY) | old&(1<<py32.RCC_BDCR_LSERDY)
		if v&(1<<py32.RCC_BDCR_LSEON) == 0 {
			r.regs[off/4] &^= 1 << py32.RCC_BDCR_LSERDY
		} else if old&(1<<py32.RCC_BDCR_LSEON) == 0 {
			r.lseWait = lseStartup
		}
	case py32.RCC_IOPRSTR, py32.RCC_AHBRSTR, py32.RCC_APBRSTR1, py32.RCC_APBRSTR2:
		r.regs[off/4] = v
		r.resetPeripherals(off, v&^old)
	default:
		r.regs[off/4] = v
	}
	r.recompute()
}

func (r *rcc) onEdge(old, now uint32, on uint, wait *uint32, delay uint32, rdy uint) {
	switch {
	case now&(1<<on) != 0 && old&(1<<on) == 0:
		*wait = delay
	case now&(1<<on) == 0:
		r.regs[0] &^= 1 << rdy
		*wait = 0
	}
}

func countdown(w *uint32, cycles uint32) bool {
	if *w == 0 {
		return false
	}
	if *w <= cycles {
		*w = 0
		return true
	}
	*w -= cycles
	return false
}

func (r *rcc) step(cycles uint32) {
	if countdown(&r.hsiWait, cycles) {
		r.setBit(py32.RCC_CR, py32.RCC_CR_HSIRDY, true)
	}
	if countdown(&r.hseWait, cycles) && r.hsePresent {
		r.setBit(py32.RCC_CR, py32.RCC_CR_HSERDY, true)
	}
	if countdown(&r.pllWait, cycles) {
		srcReady := r.bit(py32.RCC_CR, py32.RCC_CR_HSIRDY)
		if r.bit(py32.RCC_PLLCFGR, py32.RCC_PLLCFGR_PLLSRC) {
			srcReady = r.bit(py32.RCC_CR, py32.RCC_CR_HSERDY)
		}
		if srcReady {
			r.setBit(py32.RCC_CR, py32.RCC_CR_PLLRDY, true)
		}
	}
	if countdown(&r.lsiWait, cycles) {
		r.setBit(py32.RCC_CSR, py32.RCC_CSR_LSIRDY, true)
	}
	if countdown(&r.lseWait, cycles) && r.lsePresent {
		r.setBit(py32.RCC_BDCR, py32.RCC_BDCR_LSERDY, true)
	}
	if countdown(&r.swWait, cycles) {
		r.switchClock()
	}
}

// switchClock moves SWS to SW if the requested source is ready.
func (r *rcc) switchClock() {
	cfgr := r.regs[py32.RCC_CFGR/4]
	sw := field(cfgr, py32.RCC_CFGR_SW_Pos, py32.RCC_CFGR_SW_Len)
	ready := false
	switch sw {
	case py32.RCC_SW_HSISYS:
		ready = r.bit(py32.RCC_CR, py32.RCC_CR_HSIRDY)
	case py32.RCC_SW_HSE:
		ready = r.bit(py32.RCC_CR, py32.RCC_CR_HSERDY)
	case py32.RCC_SW_PLL:
		ready = r.bit(py32.RCC_CR, py32.RCC_CR_PLLRDY)
	case py32.RCC_SW_LSI:
		ready = r.bit(py32.RCC_CSR, py32.RCC_CSR_LSIRDY)
	case py32.RCC_SW_LSE:
		ready = r.bit(py32.RCC_BDCR, py32.RCC_BDCR_LSERDY)
	}
	if !ready {
		return
	}
	r.regs[py32.RCC_CFGR/4] = cfgr&^(0x7<<py32.RCC_CFGR_SWS_Pos) | sw<<py32.RCC_CFGR_SWS_Pos
	r.recompute()
}

type resetTarget struct {
	reg uint32
	bit uint
	md  func(*Machine) model
}

var resetTargets = []resetTarget{
	{py32.RCC_IOPRSTR, py32.RCC_IOP_GPIOA, func(mc *Machine) model { return mc.gpio[0] }},
	{py32.RCC_IOPRSTR, py32.RCC_IOP_GPIOB, func(mc *Machine) model { return mc.gpio[1] }},
	{py32.RCC_IOPRSTR, py32.RCC_IOP_GPIOF, func(mc *Machine) model { return mc.gpio[2] }},
	{py32.RCC_AHBRSTR, py32.RCC_AHB_DMA, func(mc *Machine) model { return mc.dma }},
	{py32.RCC_AHBRSTR, py32.RCC_AHB_CRC, func(mc *Machine) model { return mc.crc }},
	{py32.RCC_APBRSTR1, py32.RCC_APB1_TIM3, func(mc *Machine) model { return mc.tims[py32.TIM3_BASE] }},
	{py32.RCC_APBRSTR1, py32.RCC_APB1_SPI2, func(mc *Machine) model { return mc.spis[1] }},
	{py32.RCC_APBRSTR1, py32.RCC_APB1_USART2, func(mc *Machine) model { return mc.usarts[1] }},
	{py32.RCC_APBRSTR1, py32.RCC_APB1_I2C, func(mc *Machine) model { return mc.i2c }},
	{py32.RCC_APBRSTR2, py32.RCC_APB2_TIM1, func(mc *Machine) model { return mc.tims[py32.TIM1_BASE] }},
	{py32.RCC_APBRSTR2, py32.RCC_APB2_SPI1, func(mc *Machine) model { return mc.spis[0] }},
	{py32.RCC_APBRSTR2, py32.RCC_APB2_USART1, func(mc *Machine) model { return mc.usarts[0] }},
	{py32.RCC_APBRSTR2, py32.RCC_APB2_TIM14, func(mc *Machine) model { return mc.tims[py32.TIM14_BASE] }},
	{py32.RCC_APBRSTR2, py32.RCC_APB2_TIM16, func(mc *Machine) model { return mc.tims[py32.TIM16_BASE] }},
	{py32.RCC_APBRSTR2, py32.RCC_APB2_TIM17, func(mc *Machine) model { return mc.tims[py32.TIM17_BASE] }},
	{py32.RCC_APBRSTR2, py32.RCC_APB2_ADC, func(mc *Machine) model { return mc.adc }},
}

// resetPeripherals resets every model whose reset bit rose.
func (r *rcc) resetPeripherals(reg uint32, rose uint32) {
	for _, t := range resetTargets {
		if t.reg == reg && rose&(1<<t.bit) != 0 {
			t.md(r.mc).reset()
		}
	}
}

// SetHSE configures the external oscillator. present=false makes HSERDY never
// assert.
func SetHSE(freq uint32, present bool) {
	m.rcc.hseFreq = freq
	m.rcc.hsePresent = present
	m.rcc.recompute()
}

// SetLSEPresent controls whether the LSE crystal starts.
func SetLSEPresent(present bool) {
	m.rcc.lsePresent = present
}

// Clocks returns the SYSCLK, HCLK and PCLK the model is running at.
func Clocks() (sysclk, hclk, pclk uint32) {
	return m.rcc.sysclk, m.rcc.hclk, m.rcc.pclk
}

// ClockEnabled reports an enable bit in one of the RCC ENR registers.
func ClockEnabled(enr uint32, bit uint) bool {
	return m.rcc.bit(enr, bit)
}
