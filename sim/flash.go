//go:build !tinygo

package sim

import "py32hal/device/py32"

// Operation times in HCLK cycles.
const (
	flashPageErase   = 2000
	flashSectorErase = 8000
	flashMassErase   = 32000
	flashProgram     = 1000
)

type flash struct {
	mc *Machine

	acr, sr, cr uint32
	keyStage    int
	keyErr      bool
	busy        uint64
	mem         []byte
	pageBuf     map[uint32]uint32
	erases      int
	programs    int
}

func newFlash(mc *Machine) *flash {
	f := &flash{mc: mc, mem: make([]byte, py32.FLASH_MEM_SIZE)}
	for i := range f.mem {
		f.mem[i] = 0xFF
	}
	return f
}

func (f *flash) base() uint32 { return py32.FLASH_BASE }
func (f *flash) size() uint32 { return 0x400 }

// reset keeps the array contents: it is non-volatile.
func (f *flash) reset() {
	*f = flash{mc: f.mc, mem: f.mem, pageBuf: make(map[uint32]uint32)}
	f.cr = 1 << py32.FLASH_CR_LOCK
}

func (f *flash) load(off uint32) uint32 {
	switch off {
	case py32.FLASH_ACR:
		return f.acr
	case py32.FLASH_SR:
		return f.sr
	case py32.FLASH_CR:
		return f.cr
	}
	return 0
}

func (f *flash) store(off, v uint32) {
	switch off {
	case py32.FLASH_ACR:
		f.acr = v & 1
	case py32.FLASH_KEYR:
		f.key(v)
	case py32.FLASH_SR:
		f.sr &^= v & (1<<py32.FLASH_SR_EOP | 1<<py32.FLASH_SR_WRPERR)
	case py32.FLASH_CR:
		if f.cr&(1<<py32.FLASH_CR_LOCK) != 0 {
			return
		}
		if f.sr&(1<<py32.FLASH_SR_BSY) != 0 {
			return
		}
		f.cr = v
		if v&(1<<py32.FLASH_CR_PG) == 0 {
			f.pageBuf = make(map[uint32]uint32)
		}
	}
}

func (f *flash) key(v uint32) {
	if f.keyErr || f.cr&(1<<py32.FLASH_CR_LOCK) == 0 {
		f.keyErr = true
		return
	}
	switch {
	case f.keyStage == 0 && v == py32.FLASH_KEY1:
		f.keyStage = 1
	case f.keyStage == 1 && v == py32.FLASH_KEY2:
		f.keyStage = 0
		f.cr &^= 1 << py32.FLASH_CR_LOCK
	default:
		// A wrong key locks the interface until reset.
		f.keyErr = true
	}
}

func (f *flash) step(cycles uint32) {
	if f.busy == 0 {
		return
	}
	if f.busy > uint64(cycles) {
		f.busy -= uint64(cycles)
		return
	}
	f.busy = 0
	f.sr &^= 1 << py32.FLASH_SR_BSY
	f.sr |= 1 << py32.FLASH_SR_EOP
	f.cr &^= 1 << py32.FLASH_CR_PGSTRT
}

func (f *flash) erase(from, n uint32, t uint64) {
	for i := from; i < from+n && i < uint32(len(f.mem)); i++ {
		f.mem[i] = 0xFF
	}
	f.erases++
	f.sr |= 1 << py32.FLASH_SR_BSY
	f.busy = t
}

// arrayWrite handles a CPU write into main flash.
func (f *flash) arrayWrite(off, v uint32) {
	if f.sr&(1<<py32.FLASH_SR_BSY) != 0 || f.cr&(1<<py32.FLASH_CR_LOCK) != 0 {
		f.sr |= 1 << py32.FLASH_SR_WRPERR
		return
	}
	switch {
	case f.cr&(1<<py32.FLASH_CR_MER) != 0:
		f.erase(0, py32.FLASH_MEM_SIZE, flashMassErase)
	case f.cr&(1<<py32.FLASH_CR_SER) != 0:
		f.erase(off&^(py32.FLASH_SECT_SIZE-1), py32.FLASH_SECT_SIZE, flashSectorErase)
	case f.cr&(1<<py32.FLASH_CR_PER) != 0:
		f.erase(off&^(py32.FLASH_PAGE_SIZE-1), py32.FLASH_PAGE_SIZE, flashPageErase)
	case f.cr&(1<<py32.FLASH_CR_PG) != 0:
		f.pageBuf[off&^3] = v
		if f.cr&(1<<py32.FLASH_CR_PGSTRT) != 0 {
			f.commit(off &^ (py32.FLASH_PAGE_SIZE - 1))
		}
	default:
		f.sr |= 1 << py32.FLASH_SR_WRPERR
	}
}

func (f *flash) commit(page uint32) {
	for a, w := range f.pageBuf {
		if a&^(py32.FLASH_PAGE_SIZE-1) != page {
			continue
		}
		for i := uint32(0); i < 4; i++ {
			// programming can only clear bits
			f.mem[a+i] &= byte(w >> (8 * i))
		}
	}
	f.pageBuf = make(map[uint32]uint32)
	f.programs++
	f.sr |= 1 << py32.FLASH_SR_BSY
	f.busy = flashProgram
}

// flashArray maps main flash into the address space.
type flashArray struct{ f *flash }

func (a flashArray) base() uint32        { return py32.FLASH_MEM_BASE }
func (a flashArray) size() uint32        { return py32.FLASH_MEM_SIZE }
func (a flashArray) reset()              {}
func (a flashArray) step(uint32)         {}
func (a flashArray) store(off, v uint32) { a.f.arrayWrite(off, v) }
func (a flashArray) load(off uint32) uint32 {
	b := a.f.mem[off&^3 : off&^3+4]
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}

// FlashBytes returns a copy of main flash at byte offset off.
func FlashBytes(off, n uint32) []byte {
	return append([]byte(nil), m.flash.mem[off:off+n]...)
}

// FlashFill overwrites main flash without going through the controller.
func FlashFill(off uint32, b []byte) {
	copy(m.flash.mem[off:], b)
}

// FlashStats reports completed erase and program operations.
func FlashStats() (erases, programs int) {
	return m.flash.erases, m.flash.programs
}
