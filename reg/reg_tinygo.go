//go:build tinygo

package reg

import (
	"runtime/volatile"
	"unsafe"
)

// Register is a 32-bit memory-mapped register.
type Register uint32

func (r Register) ptr() *volatile.Register32 {
	return (*volatile.Register32)(unsafe.Pointer(uintptr(r)))
}

// Get reads the register.
func (r Register) Get() uint32 {
	return r.ptr().Get()
}

// Set writes the register.
func (r Register) Set(v uint32) {
	r.ptr().Set(v)
}

// AddrOf returns the bus address of b's first byte, for DMA.
func AddrOf(b []byte) uint32 {
	if len(b) == 0 {
		return 0
	}
	return uint32(uintptr(unsafe.Pointer(&b[0])))
}

// AddrOf16 returns the bus address of b's first element, for DMA.
func AddrOf16(b []uint16) uint32 {
	if len(b) == 0 {
		return 0
	}
	return uint32(uintptr(unsafe.Pointer(&b[0])))
}

// Read8 reads one byte of memory, e.g. from flash.
func Read8(addr uint32) uint8 {
	return volatile.LoadUint8((*uint8)(unsafe.Pointer(uintptr(addr))))
}

// Read32 reads one word of memory.
func Read32(addr uint32) uint32 {
	return volatile.LoadUint32((*uint32)(unsafe.Pointer(uintptr(addr))))
}

// Write32 writes one word of memory, e.g. into the flash page buffer.
func Write32(addr, v uint32) {
	volatile.StoreUint32((*uint32)(unsafe.Pointer(uintptr(addr))), v)
}
