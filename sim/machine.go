//go:build !tinygo

// Package sim is a register-level model of the PY32F030 used by host builds.
//
// Every register access made through package reg lands here. An access costs
// Quantum HCLK cycles, during which every peripheral model advances, DMA moves
// data and pending interrupts are dispatched to the handler installed with
// SetDispatch. Tests drive the outside world (pin levels, serial bytes, I2C
// targets) through the model accessors.
package sim

import (
	"sort"

	"py32hal/device/py32"
)

// DefaultQuantum is the number of HCLK cycles charged per register access.
const DefaultQuantum = 4

// model is one memory-mapped peripheral.
type model interface {
	base() uint32
	size() uint32
	load(off uint32) uint32
	store(off, v uint32)
	step(cycles uint32)
	reset()
}

// Machine is the simulated chip. There is exactly one, reached via the
// package-level functions.
type Machine struct {
	models []model
	mem    map[uint32]uint32
	bufs   []buffer
	next   uint32

	quantum uint32
	cycles  uint64
	primask bool
	inISR   bool
	taken   uint64

	dispatch func(irq int)

	nvic    *nvic
	systick *systick
	rcc     *rcc
	gpio    [3]*gpioPort
	exti    *exti
	dma     *dma
	tims    map[uint32]*timer
	usarts  [2]*usart
	i2c     *i2c
	spis    [2]*spi
	adc     *adc
	rtc     *rtc
	iwdg    *iwdg
	crc     *crc
	flash   *flash
}

var m *Machine

func init() {
	m = newMachine()
}

func newMachine() *Machine {
	mc := &Machine{
		mem:     make(map[uint32]uint32),
		quantum: DefaultQuantum,
		next:    py32.SRAM_BASE,
		tims:    make(map[uint32]*timer),
	}
	mc.nvic = &nvic{mc: mc}
	mc.systick = &systick{mc: mc}
	mc.rcc = newRCC(mc)
	mc.gpio[0] = &gpioPort{mc: mc, addr: py32.GPIOA_BASE, port: py32.EXTI_PORT_A}
	mc.gpio[1] = &gpioPort{mc: mc, addr: py32.GPIOB_BASE, port: py32.EXTI_PORT_B}
	mc.gpio[2] = &gpioPort{mc: mc, addr: py32.GPIOF_BASE, port: py32.EXTI_PORT_F}
	mc.exti = &exti{mc: mc}
	mc.dma = &dma{mc: mc}
	for _, t := range []struct {
		addr     uint32
		channels int
		advanced bool
		irq      int
	}{
		{py32.TIM1_BASE, 4, true, py32.IRQ_TIM1_BRK_UP_TRG_COM},
		{py32.TIM3_BASE, 4, false, py32.IRQ_TIM3},
		{py32.TIM14_BASE, 1, false, py32.IRQ_TIM14},
		{py32.TIM16_BASE, 1, false, py32.IRQ_TIM16},
		{py32.TIM17_BASE, 1, false, py32.IRQ_TIM17},
	} {
		mc.tims[t.addr] = &timer{mc: mc, addr: t.addr, channels: t.channels, advanced: t.advanced, irq: t.irq}
	}
	mc.usarts[0] = &usart{mc: mc, addr: py32.USART1_BASE, irq: py32.IRQ_USART1, txReq: py32.DMA_REQ_USART1_TX, rxReq: py32.DMA_REQ_USART1_RX}
	mc.usarts[1] = &usart{mc: mc, addr: py32.USART2_BASE, irq: py32.IRQ_USART2, txReq: py32.DMA_REQ_USART2_TX, rxReq: py32.DMA_REQ_USART2_RX}
	mc.i2c = &i2c{mc: mc, targets: make(map[uint8]Target)}
	mc.spis[0] = &spi{mc: mc, addr: py32.SPI1_BASE, irq: py32.IRQ_SPI1, txReq: py32.DMA_REQ_SPI1_TX, rxReq: py32.DMA_REQ_SPI1_RX}
	mc.spis[1] = &spi{mc: mc, addr: py32.SPI2_BASE, irq: py32.IRQ_SPI2, txReq: py32.DMA_REQ_SPI2_TX, rxReq: py32.DMA_REQ_SPI2_RX}
	mc.adc = newADC(mc)
	mc.rtc = &rtc{mc: mc}
	mc.iwdg = &iwdg{mc: mc}
	mc.crc = &crc{mc: mc}
	mc.flash = newFlash(mc)

	mc.models = []model{mc.nvic, mc.systick, mc.rcc, mc.gpio[0], mc.gpio[1], mc.gpio[2], mc.exti}
	addrs := make([]uint32, 0, len(mc.tims))
	for a := range mc.tims {
		addrs = append(addrs, a)
	}
	sort.Slice(addrs, func(i, j int) bool { return addrs[i] < addrs[j] })
	for _, a := range addrs {
		mc.models = append(mc.models, mc.tims[a])
	}
	mc.models = append(mc.models, mc.usarts[0], mc.usarts[1], mc.i2c, mc.spis[0], mc.spis[1],
		mc.adc, mc.rtc, mc.iwdg, mc.crc, mc.flash, flashArray{mc.flash})
	// DMA runs last so it sees requests raised in the same step.
	mc.models = append(mc.models, mc.dma)

	for _, md := range mc.models {
		md.reset()
	}
	mc.loadSystemMemory()
	return mc
}

// loadSystemMemory fills the factory area: UID, HSI trims, ADC calibration.
func (mc *Machine) loadSystemMemory() {
	uid := [4]uint32{0x50593332, 0x46303330, 0x00C0FFEE, 0x12345678}
	for i, w := range uid {
		mc.mem[py32.UID_BASE+uint32(i)*4] = w
	}
	for i := uint32(0); i < 5; i++ {
		mc.mem[py32.HSI_TRIM_BASE+i*4] = 0x1000 | i
	}
	mc.mem[py32.TS_CAL1_ADDR] = tsCal1
	mc.mem[py32.TS_CAL2_ADDR] = tsCal2
}

// Reset returns the whole chip to power-on state. Mapped buffers and the
// dispatch hook survive.
func Reset() {
	d := m.dispatch
	m = newMachine()
	m.dispatch = d
}

// SetDispatch installs the interrupt entry point. irq is an NVIC line, or
// py32.IRQ_SysTick for the SysTick exception.
func SetDispatch(fn func(irq int)) {
	m.dispatch = fn
}

// SetQuantum changes the cycles charged per access. Larger values make long
// waits (RTC seconds, watchdog) cheap to simulate.
func SetQuantum(cycles uint32) {
	if cycles == 0 {
		cycles = DefaultQuantum
	}
	m.quantum = cycles
}

// Cycles returns the HCLK cycles elapsed since reset.
func Cycles() uint64 {
	return m.cycles
}

// InterruptsTaken counts dispatched interrupts since reset.
func InterruptsTaken() uint64 {
	return m.taken
}

func (mc *Machine) find(addr uint32) (model, uint32) {
	for _, md := range mc.models {
		b := md.base()
		if addr >= b && addr < b+md.size() {
			return md, addr - b
		}
	}
	return nil, 0
}

// load reads a word without charging time. Used by models (DMA) and hooks.
func (mc *Machine) load(addr uint32) uint32 {
	if md, off := mc.find(addr); md != nil {
		return md.load(off)
	}
	if b, off := mc.buffer(addr); b != nil {
		return b.read(off, 4)
	}
	return mc.mem[addr&^3]
}

func (mc *Machine) store(addr, v uint32) {
	if md, off := mc.find(addr); md != nil {
		md.store(off, v)
		return
	}
	if b, off := mc.buffer(addr); b != nil {
		b.write(off, 4, v)
		return
	}
	mc.mem[addr&^3] = v
}

// loadN and storeN move 1, 2 or 4 bytes. Peripheral registers are always word
// accessed; the low bytes carry the value.
func (mc *Machine) loadN(addr uint32, n uint32) uint32 {
	if b, off := mc.buffer(addr); b != nil {
		return b.read(off, n)
	}
	if md, off := mc.find(addr); md != nil {
		return md.load(off&^3) >> (8 * (off & 3)) & widthMask(n)
	}
	return mc.mem[addr&^3] >> (8 * (addr & 3)) & widthMask(n)
}

func (mc *Machine) storeN(addr uint32, n uint32, v uint32) {
	if b, off := mc.buffer(addr); b != nil {
		b.write(off, n, v)
		return
	}
	if md, off := mc.find(addr); md != nil {
		md.store(off&^3, v&widthMask(n))
		return
	}
	sh := 8 * (addr & 3)
	w := mc.mem[addr&^3]
	mc.mem[addr&^3] = w&^(widthMask(n)<<sh) | (v&widthMask(n))<<sh
}

func widthMask(n uint32) uint32 {
	if n >= 4 {
		return ^uint32(0)
	}
	return 1<<(8*n) - 1
}

// advance charges cycles to every model and takes pending interrupts.
func (mc *Machine) advance(cycles uint32) {
	mc.cycles += uint64(cycles)
	for _, md := range mc.models {
		md.step(cycles)
	}
	mc.takeInterrupts()
}

func (mc *Machine) takeInterrupts() {
	if mc.primask || mc.inISR || mc.dispatch == nil {
		return
	}
	for n := 0; n < 64; n++ {
		irq, ok := mc.nvic.next()
		if !ok {
			return
		}
		mc.inISR = true
		mc.taken++
		mc.dispatch(irq)
		mc.inISR = false
	}
}

// Read32 reads the word at addr.
func Read32(addr uint32) uint32 {
	v := m.load(addr)
	m.advance(m.quantum)
	return v
}

// Write32 writes the word at addr.
func Write32(addr, v uint32) {
	m.store(addr, v)
	m.advance(m.quantum)
}

// Read8 reads one byte, e.g. from flash or a mapped buffer.
func Read8(addr uint32) uint8 {
	v := m.loadN(addr, 1)
	m.advance(m.quantum)
	return uint8(v)
}

// Write8 writes one byte.
func Write8(addr uint32, v uint8) {
	m.storeN(addr, 1, uint32(v))
	m.advance(m.quantum)
}

// Relax charges one quantum without touching the bus.
func Relax() {
	m.advance(m.quantum)
}

// Advance runs the machine for at least cycles HCLK cycles.
func Advance(cycles uint64) {
	for done := uint64(0); done < cycles; done += uint64(m.quantum) {
		m.advance(m.quantum)
	}
}

// maxIdle bounds WaitForInterrupt so a test with nothing armed cannot hang.
const maxIdle = 1 << 26

// WaitForInterrupt idles until an interrupt is dispatched or the idle bound
// is reached.
func WaitForInterrupt() {
	start := m.taken
	for idle := uint64(0); idle < maxIdle && m.taken == start; idle += uint64(m.quantum) {
		m.advance(m.quantum)
		if m.primask && m.nvic.anyPending() {
			return
		}
	}
}

// DisableIRQ sets PRIMASK and returns its previous value.
func DisableIRQ() uint32 {
	old := m.primask
	m.primask = true
	if old {
		return 1
	}
	return 0
}

// RestoreIRQ restores PRIMASK and takes anything that became pending.
func RestoreIRQ(state uint32) {
	m.primask = state != 0
	if !m.primask {
		m.takeInterrupts()
	}
}

// InISR reports whether an interrupt handler is running.
func InISR() bool {
	return m.inISR
}
