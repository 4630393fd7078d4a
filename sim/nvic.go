//go:build !tinygo

package sim

import "py32hal/device/py32"

type nvic struct {
	mc      *Machine
	enabled uint32
	pending uint32
	prio    [8]uint32

	systickPending bool
}

func (n *nvic) base() uint32 { return py32.NVIC_BASE }
func (n *nvic) size() uint32 { return py32.NVIC_IPR + 0x20 }

func (n *nvic) reset() {
	n.enabled, n.pending = 0, 0
	n.prio = [8]uint32{}
	n.systickPending = false
}

func (n *nvic) load(off uint32) uint32 {
	switch off {
	case py32.NVIC_ISER, py32.NVIC_ICER:
		return n.enabled
	case py32.NVIC_ISPR, py32.NVIC_ICPR:
		return n.pending
	}
	if off >= py32.NVIC_IPR && off < py32.NVIC_IPR+0x20 {
		return n.prio[(off-py32.NVIC_IPR)/4]
	}
	return 0
}

func (n *nvic) store(off, v uint32) {
	switch off {
	case py32.NVIC_ISER:
		n.enabled |= v
	case py32.NVIC_ICER:
		n.enabled &^= v
	case py32.NVIC_ISPR:
		n.pending |= v
	case py32.NVIC_ICPR:
		n.pending &^= v
	default:
		if off >= py32.NVIC_IPR && off < py32.NVIC_IPR+0x20 {
			n.prio[(off-py32.NVIC_IPR)/4] = v & 0xC0C0C0C0
		}
	}
}

func (n *nvic) step(uint32) {}

// raise marks a line pending. Peripheral models call it every step while their
// interrupt condition holds.
func (n *nvic) raise(irq int) {
	if irq == py32.IRQ_SysTick {
		n.systickPending = true
		return
	}
	n.pending |= 1 << uint(irq)
}

func (n *nvic) priority(irq int) uint32 {
	return n.prio[irq/4] >> (8 * uint(irq%4)) & 0xFF
}

// next pops the highest-priority pending and enabled interrupt. SysTick wins
// over NVIC lines; among lines, lower priority value then lower number wins.
func (n *nvic) next() (int, bool) {
	if n.systickPending {
		n.systickPending = false
		return py32.IRQ_SysTick, true
	}
	ready := n.pending & n.enabled
	if ready == 0 {
		return 0, false
	}
	best := -1
	for irq := 0; irq < py32.IRQ_MAX; irq++ {
		if ready&(1<<uint(irq)) == 0 {
			continue
		}
		if best < 0 || n.priority(irq) < n.priority(best) {
			best = irq
		}
	}
	n.pending &^= 1 << uint(best)
	return best, true
}

func (n *nvic) anyPending() bool {
	return n.systickPending || n.pending&n.enabled != 0
}

// LineEnabled reports whether irq is unmasked at the NVIC.
func LineEnabled(irq int) bool {
	return m.nvic.enabled&(1<<uint(irq)) != 0
}

// LinePending reports whether irq is pending at the NVIC.
func LinePending(irq int) bool {
	return m.nvic.pending&(1<<uint(irq)) != 0
}

// Raise pends irq from outside any model, e.g. to test a spurious entry.
func Raise(irq int) {
	m.nvic.raise(irq)
}
