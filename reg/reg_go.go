//go:build !tinygo

package reg

import (
	"unsafe"

	"py32hal/sim"
)

// Register is a 32-bit register on the simulated bus.
type Register uint32

// Get reads the register.
func (r Register) Get() uint32 {
	return sim.Read32(uint32(r))
}

// Set writes the register.
func (r Register) Set(v uint32) {
	sim.Write32(uint32(r), v)
}

// AddrOf maps b into the simulated SRAM window and returns its address.
func AddrOf(b []byte) uint32 {
	if len(b) == 0 {
		return 0
	}
	return sim.MapBuffer(unsafe.Pointer(&b[0]), len(b))
}

// AddrOf16 maps b into the simulated SRAM window and returns its address.
func AddrOf16(b []uint16) uint32 {
	if len(b) == 0 {
		return 0
	}
	return sim.MapBuffer(unsafe.Pointer(&b[0]), 2*len(b))
}

// Read8 reads one byte of simulated memory.
func Read8(addr uint32) uint8 {
	return sim.Read8(addr)
}

// Read32 reads one word of simulated memory.
func Read32(addr uint32) uint32 {
	return sim.Read32(addr)
}

// Write32 writes one word of simulated memory.
func Write32(addr, v uint32) {
	sim.Write32(addr, v)
}
