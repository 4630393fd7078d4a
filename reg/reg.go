// Package reg is the only place that touches memory-mapped registers.
//
// A Block is the base address of one peripheral instance; Block.At yields a
// Register. On TinyGo a Register is a volatile pointer, on the host it is an
// address on the simulated bus.
package reg

import "py32hal/core"

// Block is the base address of a peripheral register block.
type Block uint32

// At returns the register at byte offset off.
func (b Block) At(off uint32) Register {
	return Register(uint32(b) + off)
}

// Addr returns the absolute address of the register at off, e.g. for DMA.
func (b Block) Addr(off uint32) uint32 {
	return uint32(b) + off
}

// SetBits sets the bits in value.
func (r Register) SetBits(value uint32) {
	r.Set(r.Get() | value)
}

// ClearBits clears the bits in value.
func (r Register) ClearBits(value uint32) {
	r.Set(r.Get() &^ value)
}

// HasBits reports whether any bit in value is set.
func (r Register) HasBits(value uint32) bool {
	return r.Get()&value != 0
}

// ReplaceBits replaces the bits under mask<<pos with value<<pos.
func (r Register) ReplaceBits(value, mask uint32, pos uint8) {
	r.Set(r.Get()&^(mask<<pos) | (value&mask)<<pos)
}

// Bit reports whether bit i is set.
func (r Register) Bit(i uint8) bool {
	return r.Get()&(1<<i) != 0
}

// SetBit sets bit i.
func (r Register) SetBit(i uint8) {
	r.SetBits(1 << i)
}

// ClearBit clears bit i.
func (r Register) ClearBit(i uint8) {
	r.ClearBits(1 << i)
}

// Field reads the w-bit field at offset i.
func (r Register) Field(i, w uint8) uint32 {
	return core.Field(i, w, r.Get())
}

// SetField writes the w-bit field at offset i, preserving the other bits.
func (r Register) SetField(i, w uint8, val uint32) {
	r.Set(core.Modify(i, w, r.Get(), val))
}
