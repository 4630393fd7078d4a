//go:build !tinygo

package sim

import "unsafe"

// buffer is a host byte slice visible to the simulated bus, so DMA can move
// data in and out of Go memory.
type buffer struct {
	addr uint32
	data []byte
}

func (b *buffer) read(off, n uint32) uint32 {
	var v uint32
	for i := uint32(0); i < n && off+i < uint32(len(b.data)); i++ {
		v |= uint32(b.data[off+i]) << (8 * i)
	}
	return v
}

func (b *buffer) write(off, n, v uint32) {
	for i := uint32(0); i < n && off+i < uint32(len(b.data)); i++ {
		b.data[off+i] = byte(v >> (8 * i))
	}
}

func (mc *Machine) buffer(addr uint32) (*buffer, uint32) {
	for i := range mc.bufs {
		b := &mc.bufs[i]
		if addr >= b.addr && addr < b.addr+uint32(len(b.data)) {
			return b, addr - b.addr
		}
	}
	return nil, 0
}

// MapBuffer gives p a simulated SRAM address. Mapping the same backing array
// again returns the same address.
func MapBuffer(p unsafe.Pointer, n int) uint32 {
	if n == 0 || p == nil {
		return 0
	}
	data := unsafe.Slice((*byte)(p), n)
	for i := range m.bufs {
		b := &m.bufs[i]
		if unsafe.Pointer(&b.data[0]) == p {
			if len(b.data) < n {
				// Grown in place: remap under a fresh address.
				break
			}
			return b.addr
		}
	}
	addr := m.next
	m.next += (uint32(n) + 3) &^ 3
	m.bufs = append(m.bufs, buffer{addr: addr, data: data})
	return addr
}

// Peek reads simulated memory without advancing time.
func Peek(addr uint32) uint32 {
	return m.load(addr)
}

// Poke writes simulated memory without advancing time.
func Poke(addr, v uint32) {
	m.store(addr, v)
}
