//go:build !tinygo

package sim

import "py32hal/device/py32"

type gpioPort struct {
	mc   *Machine
	addr uint32
	port uint32

	moder, otyper, ospeedr, pupdr, odr, lckr, afrl, afrh uint32

	ext, extSet uint32 // externally driven levels, which pins are driven
	locked      uint32
	lockStage   int
	idr         uint32
	toggles     [16]uint32
}

func (g *gpioPort) base() uint32 { return g.addr }
func (g *gpioPort) size() uint32 { return 0x400 }

func (g *gpioPort) reset() {
	*g = gpioPort{mc: g.mc, addr: g.addr, port: g.port, ext: g.ext, extSet: g.extSet}
	if g.addr == py32.GPIOA_BASE {
		// SWD pins come up in AF mode with pulls.
		g.moder = 0xEBFFFFFF
		g.pupdr = 0x24000000
	} else {
		g.moder = 0xFFFFFFFF
	}
	g.update()
}

func (g *gpioPort) load(off uint32) uint32 {
	switch off {
	case py32.GPIO_MODER:
		return g.moder
	case py32.GPIO_OTYPER:
		return g.otyper
	case py32.GPIO_OSPEEDR:
		return g.ospeedr
	case py32.GPIO_PUPDR:
		return g.pupdr
	case py32.GPIO_IDR:
		return g.idr
	case py32.GPIO_ODR:
		return g.odr
	case py32.GPIO_LCKR:
		return g.lckr
	case py32.GPIO_AFRL:
		return g.afrl
	case py32.GPIO_AFRH:
		return g.afrh
	}
	return 0
}

// guard keeps locked pins' fields intact. width is the field width per pin.
func (g *gpioPort) guard(old, v uint32, width uint) uint32 {
	for p := uint(0); p < 16; p++ {
		if g.locked&(1<<p) == 0 {
			continue
		}
		if p*width >= 32 {
			continue
		}
		m := uint32(1<<width-1) << (p * width)
		v = v&^m | old&m
	}
	return v
}

func (g *gpioPort) store(off, v uint32) {
	switch off {
	case py32.GPIO_MODER:
		g.moder = g.guard(g.moder, v, 2)
	case py32.GPIO_OTYPER:
		g.otyper = g.guard(g.otyper, v&0xFFFF, 1)
	case py32.GPIO_OSPEEDR:
		g.ospeedr = g.guard(g.ospeedr, v, 2)
	case py32.GPIO_PUPDR:
		g.pupdr = g.guard(g.pupdr, v, 2)
	case py32.GPIO_ODR:
		g.setODR(v & 0xFFFF)
	case py32.GPIO_BSRR:
		g.setODR((g.odr | v&0xFFFF) &^ (v >> 16))
	case py32.GPIO_BRR:
		g.setODR(g.odr &^ (v & 0xFFFF))
	case py32.GPIO_LCKR:
		g.lockWrite(v)
	case py32.GPIO_AFRL:
		g.afrl = g.guardAF(g.afrl, v, 0)
	case py32.GPIO_AFRH:
		g.afrh = g.guardAF(g.afrh, v, 8)
	}
	g.update()
}

func (g *gpioPort) guardAF(old, v uint32, first uint) uint32 {
	for p := uint(0); p < 8; p++ {
		if g.locked&(1<<(p+first)) != 0 {
			m := uint32(0xF) << (4 * p)
			v = v&^m | old&m
		}
	}
	return v
}

// lockWrite follows the LCKK write-1, write-0, write-1, read sequence.
func (g *gpioPort) lockWrite(v uint32) {
	k := v&(1<<py32.GPIO_LCKR_LCKK) != 0
	switch {
	case g.lockStage == 0 && k, g.lockStage == 2 && k:
		g.lockStage++
	case g.lockStage == 1 && !k:
		g.lockStage++
	default:
		g.lockStage = 0
	}
	g.lckr = v & 0xFFFF
	if g.lockStage == 3 {
		g.locked |= g.lckr
		g.lckr |= 1 << py32.GPIO_LCKR_LCKK
		g.lockStage = 0
	}
}

func (g *gpioPort) setODR(v uint32) {
	changed := g.odr ^ v
	for p := uint(0); p < 16; p++ {
		if changed&(1<<p) != 0 {
			g.toggles[p]++
		}
	}
	g.odr = v
}

// update recomputes IDR and feeds edges to EXTI.
func (g *gpioPort) update() {
	var idr uint32
	for p := uint(0); p < 16; p++ {
		mode := g.moder >> (2 * p) & 3
		pull := g.pupdr >> (2 * p) & 3
		var level bool
		switch {
		case mode == py32.GPIO_MODE_OUTPUT:
			level = g.odr&(1<<p) != 0
			if g.otyper&(1<<p) != 0 && g.extSet&(1<<p) != 0 && g.ext&(1<<p) == 0 {
				level = false // open drain pulled low externally
			}
		case mode == py32.GPIO_MODE_ANALOG:
			level = false
		case g.extSet&(1<<p) != 0:
			level = g.ext&(1<<p) != 0
		default:
			level = pull == 1
		}
		if level {
			idr |= 1 << p
		}
	}
	old := g.idr
	g.idr = idr
	if old != idr && g.mc.exti != nil {
		g.mc.exti.edges(g.port, old, idr)
	}
}

func (g *gpioPort) step(uint32) {}

// Port returns the model for port 'A', 'B' or 'F'.
func Port(name byte) *GPIO {
	switch name {
	case 'A':
		return (*GPIO)(m.gpio[0])
	case 'B':
		return (*GPIO)(m.gpio[1])
	case 'F':
		return (*GPIO)(m.gpio[2])
	}
	return nil
}

// GPIO is the test handle to one port.
type GPIO gpioPort

// Drive forces an external level on pin.
func (g *GPIO) Drive(pin uint8, high bool) {
	p := (*gpioPort)(g)
	p.extSet |= 1 << pin
	if high {
		p.ext |= 1 << pin
	} else {
		p.ext &^= 1 << pin
	}
	p.update()
	p.mc.takeInterrupts()
}

// Release stops driving pin.
func (g *GPIO) Release(pin uint8) {
	p := (*gpioPort)(g)
	p.extSet &^= 1 << pin
	p.update()
}

// Output reports the ODR bit of pin.
func (g *GPIO) Output(pin uint8) bool {
	return g.odr&(1<<pin) != 0
}

// Level reports the IDR bit of pin.
func (g *GPIO) Level(pin uint8) bool {
	return g.idr&(1<<pin) != 0
}

// Mode reports the MODER field of pin.
func (g *GPIO) Mode(pin uint8) uint32 {
	return g.moder >> (2 * pin) & 3
}

// AF reports the alternate function number selected for pin.
func (g *GPIO) AF(pin uint8) uint32 {
	if pin < 8 {
		return g.afrl >> (4 * pin) & 0xF
	}
	return g.afrh >> (4 * (pin - 8)) & 0xF
}

// Toggles counts ODR transitions of pin since reset.
func (g *GPIO) Toggles(pin uint8) uint32 {
	return g.toggles[pin]
}

// Locked reports whether pin configuration is frozen.
func (g *GPIO) Locked(pin uint8) bool {
	return g.locked&(1<<pin) != 0
}

type exti struct {
	mc                  *Machine
	rtsr, ftsr, pr, imr uint32
	emr, swier          uint32
	exticr              [4]uint32
}

func (e *exti) base() uint32 { return py32.EXTI_BASE }
func (e *exti) size() uint32 { return 0x90 }

func (e *exti) reset() {
	*e = exti{mc: e.mc}
}

func (e *exti) load(off uint32) uint32 {
	switch off {
	case py32.EXTI_RTSR:
		return e.rtsr
	case py32.EXTI_FTSR:
		return e.ftsr
	case py32.EXTI_SWIER:
		return e.swier
	case py32.EXTI_PR:
		return e.pr
	case py32.EXTI_IMR:
		return e.imr
	case py32.EXTI_EMR:
		return e.emr
	}
	if off >= py32.EXTI_EXTICR1 && off < py32.EXTI_EXTICR1+16 {
		return e.exticr[(off-py32.EXTI_EXTICR1)/4]
	}
	return 0
}

func (e *exti) store(off, v uint32) {
	switch off {
	case py32.EXTI_RTSR:
		e.rtsr = v
	case py32.EXTI_FTSR:
		e.ftsr = v
	case py32.EXTI_SWIER:
		e.pr |= v &^ e.swier
		e.swier = v
	case py32.EXTI_PR:
		e.pr &^= v
		e.swier &^= v
	case py32.EXTI_IMR:
		e.imr = v
	case py32.EXTI_EMR:
		e.emr = v
	default:
		if off >= py32.EXTI_EXTICR1 && off < py32.EXTI_EXTICR1+16 {
			e.exticr[(off-py32.EXTI_EXTICR1)/4] = v
		}
	}
}

func (e *exti) portOf(line uint) uint32 {
	return e.exticr[line/4] >> (8 * (line % 4)) & 3
}

func (e *exti) edges(port, old, now uint32) {
	for line := uint(0); line < 16; line++ {
		bit := uint32(1) << line
		if (old^now)&bit == 0 || e.portOf(line) != port {
			continue
		}
		rising := now&bit != 0
		if rising && e.rtsr&bit != 0 || !rising && e.ftsr&bit != 0 {
			e.pr |= bit
		}
	}
}

func (e *exti) step(uint32) {
	p := e.pr & e.imr
	if p&0x0003 != 0 {
		e.mc.nvic.raise(py32.IRQ_EXTI0_1)
	}
	if p&0x000C != 0 {
		e.mc.nvic.raise(py32.IRQ_EXTI2_3)
	}
	if p&0xFFF0 != 0 {
		e.mc.nvic.raise(py32.IRQ_EXTI4_15)
	}
}
