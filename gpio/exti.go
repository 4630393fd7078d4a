package gpio

import (
	"py32hal/async"
	"py32hal/core"
	"py32hal/device/py32"
	"py32hal/errcode"
	"py32hal/irq"
	"py32hal/reg"
)

// Edge selects which transitions wake an EXTI wait.
type Edge uint8

const (
	Rising Edge = 1 << iota
	Falling
	Both = Rising | Falling
)

var exti = reg.Block(py32.EXTI_BASE)

// extiEvents exposes the EXTI pending and mask registers to the bridge.
// Event bit n is line n.
type extiEvents struct{}

func (extiEvents) Flags() uint32 { return exti.At(py32.EXTI_PR).Get() & 0xFFFF }

// PR is write-1-to-clear.
func (extiEvents) Clear(m uint32) { exti.At(py32.EXTI_PR).Set(m & 0xFFFF) }

func (extiEvents) Enable(m uint32) {
	core.With(func() { exti.At(py32.EXTI_IMR).SetBits(m & 0xFFFF) })
}

func (extiEvents) Disable(m uint32) {
	core.With(func() { exti.At(py32.EXTI_IMR).ClearBits(m & 0xFFFF) })
}

func (extiEvents) Enabled() uint32 { return exti.At(py32.EXTI_IMR).Get() & 0xFFFF }

func init() {
	irq.Register(irq.EXTI, extiEvents{})
}

// A line is shared by the same pin number of every port, so only one wait
// per line can be armed.
var lineClaims uint16

// EdgeFuture completes when the watched edge or level is seen. It yields nil,
// or InUse when another wait holds the line.
type EdgeFuture struct {
	port  Port
	line  uint8
	edge  Edge
	level int8 // -1: edge wait, 0/1: wait for that level
	fut   irq.Future
	err   error
	armed bool
	done  bool
}

// WaitForEdge arms EXTI on p's line for edge. The pin should already be an
// input.
func WaitForEdge(p Pin, edge Edge) *EdgeFuture {
	f := &EdgeFuture{port: p.Port(), line: p.Index(), edge: edge, level: -1}
	f.arm()
	return f
}

// WaitForHigh completes at once if p is high, else on the next rising edge.
func WaitForHigh(p Pin) *EdgeFuture {
	f := &EdgeFuture{port: p.Port(), line: p.Index(), edge: Rising, level: 1}
	f.arm()
	return f
}

// WaitForLow completes at once if p is low, else on the next falling edge.
func WaitForLow(p Pin) *EdgeFuture {
	f := &EdgeFuture{port: p.Port(), line: p.Index(), edge: Falling, level: 0}
	f.arm()
	return f
}

func (f *EdgeFuture) arm() {
	bit := uint16(1) << f.line
	core.With(func() {
		if lineClaims&bit != 0 {
			f.err = errcode.New(errcode.InUse, "gpio.WaitForEdge", "EXTI"+core.Utoa(uint32(f.line)))
			return
		}
		lineClaims |= bit
		cr := exti.At(py32.EXTI_EXTICR1 + 4*uint32(f.line/4))
		cr.SetField(8*(f.line%4), 2, uint32(f.port))
		rtsr, ftsr := exti.At(py32.EXTI_RTSR), exti.At(py32.EXTI_FTSR)
		if f.edge&Rising != 0 {
			rtsr.SetBit(f.line)
		} else {
			rtsr.ClearBit(f.line)
		}
		if f.edge&Falling != 0 {
			ftsr.SetBit(f.line)
		} else {
			ftsr.ClearBit(f.line)
		}
	})
	if f.err != nil {
		f.done = true
		return
	}
	f.armed = true
	f.fut.Init(irq.EXTI, 1<<f.line)
}

// Poll implements async.Future.
func (f *EdgeFuture) Poll(cx *async.Context) (error, bool) {
	if f.done {
		return f.err, true
	}
	if _, ok := f.fut.Poll(cx); ok {
		f.finish()
		return nil, true
	}
	if f.level >= 0 {
		high := f.port.block().At(py32.GPIO_IDR).Bit(f.line)
		if high == (f.level == 1) {
			f.finish()
			return nil, true
		}
	}
	return nil, false
}

// Cancel undoes the edge selection and masks the line if it is still armed.
func (f *EdgeFuture) Cancel() {
	if !f.done {
		f.finish()
	}
}

func (f *EdgeFuture) finish() {
	f.done = true
	if !f.armed {
		return
	}
	f.armed = false
	f.fut.Cancel()
	core.With(func() {
		if f.edge&Rising != 0 {
			exti.At(py32.EXTI_RTSR).ClearBit(f.line)
		}
		if f.edge&Falling != 0 {
			exti.At(py32.EXTI_FTSR).ClearBit(f.line)
		}
		lineClaims &^= 1 << f.line
	})
}
