// Package irq bridges interrupt vectors to futures.
//
// Every peripheral instance that raises interrupts registers an Events source.
// A Future arms a set of events and parks its task in one waker slot per
// event. The vector handler disables exactly the events that are both flagged
// and enabled, then wakes their slots; the woken future observes and clears
// the flags on its next poll.
package irq

import (
	"math/bits"

	"py32hal/async"
	"py32hal/core"
	"py32hal/device/py32"
	"py32hal/reg"
)

// Instance names one interrupt-capable peripheral instance. DMA channels are
// separate instances.
type Instance uint8

const (
	EXTI Instance = iota
	DMA1
	DMA2
	DMA3
	ADC
	TIM1
	TIM3
	TIM14
	TIM16
	TIM17
	USART1
	USART2
	I2C
	SPI1
	SPI2
	RTC

	NumInstances
)

// EventsPerInstance is the number of waker slots per instance. Event bit n
// parks in slot n%EventsPerInstance.
const EventsPerInstance = 16

// Events is the view the bridge needs of a peripheral's status and
// interrupt-enable registers. Masks use the peripheral's flag bit positions.
type Events interface {
	Flags() uint32
	Clear(mask uint32)
	Enable(mask uint32)
	Disable(mask uint32)
	Enabled() uint32
}

// Slots holds one waker per (instance, event).
var Slots [NumInstances][EventsPerInstance]async.AtomicWaker

var sources [NumInstances]Events

// binding ties the events of an instance selected by mask to an NVIC line.
type binding struct {
	inst Instance
	line int
	mask uint32
}

const (
	tim1UpMask = 1<<py32.TIM_SR_UIF | 1<<py32.TIM_SR_COMIF | 1<<py32.TIM_SR_TIF | 1<<py32.TIM_SR_BIF
	allEvents  = 0xFFFFFFFF
)

var bindings = [...]binding{
	{EXTI, py32.IRQ_EXTI0_1, 0x0003},
	{EXTI, py32.IRQ_EXTI2_3, 0x000C},
	{EXTI, py32.IRQ_EXTI4_15, 0xFFF0},
	{DMA1, py32.IRQ_DMA1_CHANNEL1, allEvents},
	{DMA2, py32.IRQ_DMA1_CHANNEL2_3, allEvents},
	{DMA3, py32.IRQ_DMA1_CHANNEL2_3, allEvents},
	{ADC, py32.IRQ_ADC_COMP, allEvents},
	{TIM1, py32.IRQ_TIM1_BRK_UP_TRG_COM, tim1UpMask},
	{TIM1, py32.IRQ_TIM1_CC, allEvents &^ tim1UpMask},
	{TIM3, py32.IRQ_TIM3, allEvents},
	{TIM14, py32.IRQ_TIM14, allEvents},
	{TIM16, py32.IRQ_TIM16, allEvents},
	{TIM17, py32.IRQ_TIM17, allEvents},
	{USART1, py32.IRQ_USART1, allEvents},
	{USART2, py32.IRQ_USART2, allEvents},
	{I2C, py32.IRQ_I2C1, allEvents},
	{SPI1, py32.IRQ_SPI1, allEvents},
	{SPI2, py32.IRQ_SPI2, allEvents},
	{RTC, py32.IRQ_RTC, allEvents},
}

var nvic = reg.Block(py32.NVIC_BASE)

// Register attaches src to inst. A nil src detaches it; its lines are masked
// if nothing else on them is armed.
func Register(inst Instance, src Events) {
	if inst >= NumInstances {
		return
	}
	core.With(func() {
		sources[inst] = src
	})
	Refresh(inst)
}

// Source returns the events attached to inst, or nil.
func Source(inst Instance) Events {
	if inst >= NumInstances {
		return nil
	}
	return sources[inst]
}

// Refresh unmasks every NVIC line of inst on which some attached source has
// an event enabled, and masks the others.
func Refresh(inst Instance) {
	core.With(func() {
		for _, b := range bindings {
			if b.inst == inst {
				refreshLine(b.line)
			}
		}
	})
}

func refreshLine(line int) {
	armed := false
	for _, b := range bindings {
		if b.line != line {
			continue
		}
		if src := sources[b.inst]; src != nil && src.Enabled()&b.mask != 0 {
			armed = true
			break
		}
	}
	if armed {
		EnableLine(line)
	} else {
		DisableLine(line)
	}
}

// EnableLine unmasks an NVIC line.
func EnableLine(line int) {
	if line < 0 || line >= py32.IRQ_MAX {
		return
	}
	nvic.At(py32.NVIC_ISER).Set(1 << uint(line))
}

// DisableLine masks an NVIC line.
func DisableLine(line int) {
	if line < 0 || line >= py32.IRQ_MAX {
		return
	}
	nvic.At(py32.NVIC_ICER).Set(1 << uint(line))
}

// LineEnabled reports whether an NVIC line is unmasked.
func LineEnabled(line int) bool {
	if line < 0 || line >= py32.IRQ_MAX {
		return false
	}
	return nvic.At(py32.NVIC_ISER).Get()&(1<<uint(line)) != 0
}

// SetPriority sets the priority of an NVIC line. The M0+ keeps the top two
// bits, so 0x00, 0x40, 0x80 and 0xC0 are the distinct levels.
func SetPriority(line int, prio uint8) {
	if line < 0 || line >= py32.IRQ_MAX {
		return
	}
	r := nvic.At(py32.NVIC_IPR + uint32(line/4)*4)
	core.With(func() {
		r.ReplaceBits(uint32(prio&0xC0), 0xFF, uint8(8*(line%4)))
	})
}

// OnInterrupt services inst for the events in within: it disables exactly the
// events that are flagged and enabled and wakes their slots. Flags are left
// for the woken future to observe and clear.
func OnInterrupt(inst Instance, within uint32) uint32 {
	src := sources[inst]
	if src == nil {
		return 0
	}
	hit := src.Flags() & src.Enabled() & within
	if hit == 0 {
		return 0
	}
	src.Disable(hit)
	core.RecordEvent(core.EvtIRQ, uint8(inst), hit, 0)
	for m := hit; m != 0; m &= m - 1 {
		Slots[inst][bits.TrailingZeros32(m)%EventsPerInstance].Wake()
	}
	return hit
}

var tickHandler func()

// HandleSysTick installs the SysTick exception handler.
func HandleSysTick(fn func()) {
	tickHandler = fn
}

// Dispatch runs the handler for an interrupt number. Vector stubs call it.
func Dispatch(line int) {
	if line == py32.IRQ_SysTick {
		if tickHandler != nil {
			tickHandler()
		}
		return
	}
	serviced := false
	for _, b := range bindings {
		if b.line == line && OnInterrupt(b.inst, b.mask) != 0 {
			serviced = true
		}
	}
	if serviced {
		refreshLine(line)
	}
}
