// Package flash erases and programs main flash through the controller's
// lock-key interface, and reads pages and the unique device ID.
//
// Main flash is 64 KiB at 0x08000000: 16 sectors of 4 KiB, each 32 pages of
// 128 bytes. Erase works on a page, a sector or the whole array; programming
// works on one whole page.
package flash

import (
	"encoding/binary"

	"py32hal/core"
	"py32hal/device/py32"
	"py32hal/errcode"
	"py32hal/periph"
	"py32hal/reg"
)

const (
	Base           = py32.FLASH_MEM_BASE
	Size           = py32.FLASH_MEM_SIZE
	PageSize       = py32.FLASH_PAGE_SIZE
	SectorSize     = py32.FLASH_SECT_SIZE
	Sectors        = py32.FLASH_SECTORS
	PagesPerSector = SectorSize / PageSize
)

// opBudget bounds the wait for one erase or program. A mass erase is the
// longest operation.
const opBudget = 1 << 20

var regs = reg.Block(py32.FLASH_BASE)

// Flash is the controller.
type Flash struct {
	tok *periph.Token
}

// New claims the controller. The interface starts locked.
func New(tok *periph.Token) (*Flash, error) {
	if tok == nil || tok.ID() != periph.FLASH {
		return nil, errcode.New(errcode.InvalidConfig, "flash.New", "token")
	}
	if err := tok.Claim(); err != nil {
		return nil, err
	}
	return &Flash{tok: tok}, nil
}

func (f *Flash) cr() reg.Register { return regs.At(py32.FLASH_CR) }

// IsLocked reports whether erase and program are blocked.
func (f *Flash) IsLocked() bool { return f.cr().Bit(py32.FLASH_CR_LOCK) }

// Unlock writes the key sequence. Unlocking an unlocked interface fails with
// Unlocked without writing the keys: a key write in that state locks the
// controller until reset.
func (f *Flash) Unlock() error {
	const op = "flash.Unlock"
	if !f.IsLocked() {
		return errcode.New(errcode.Unlocked, op, "")
	}
	keyr := regs.At(py32.FLASH_KEYR)
	keyr.Set(py32.FLASH_KEY1)
	keyr.Set(py32.FLASH_KEY2)
	if f.IsLocked() {
		return errcode.New(errcode.Locked, op, "key rejected")
	}
	return nil
}

// Lock blocks erase and program until the next Unlock.
func (f *Flash) Lock() {
	f.cr().SetBit(py32.FLASH_CR_LOCK)
}

// PageAddress returns the address of page within sector.
func PageAddress(sector, page uint8) (uint32, error) {
	if sector >= Sectors || page >= PagesPerSector {
		return 0, errcode.New(errcode.InvalidAddress, "flash.PageAddress", core.Utoa(uint32(sector)))
	}
	return Base + uint32(sector)*SectorSize + uint32(page)*PageSize, nil
}

// check validates that addr is inside main flash and aligned to align.
func check(op string, addr, align uint32) error {
	if addr < Base || addr >= Base+Size {
		return errcode.New(errcode.InvalidAddress, op, core.Htoa(addr))
	}
	if addr&(align-1) != 0 {
		return errcode.New(errcode.AddressMisaligned, op, core.Htoa(addr))
	}
	return nil
}

func (f *Flash) ready(op string) error {
	if f.IsLocked() {
		return errcode.New(errcode.Locked, op, "")
	}
	if regs.At(py32.FLASH_SR).Bit(py32.FLASH_SR_BSY) {
		return errcode.New(errcode.Busy, op, "")
	}
	return nil
}

// wait spins on BSY, then clears EOP and the operation bits in mode.
func (f *Flash) wait(op string, mode uint32) error {
	sr := regs.At(py32.FLASH_SR)
	err := core.SpinUntil(opBudget, op, errcode.PhaseComplete, func() bool {
		return !sr.Bit(py32.FLASH_SR_BSY)
	})
	st := sr.Get()
	sr.Set(st & (1<<py32.FLASH_SR_EOP | 1<<py32.FLASH_SR_WRPERR))
	f.cr().ClearBits(mode)
	if err != nil {
		return err
	}
	if st&(1<<py32.FLASH_SR_WRPERR) != 0 {
		return errcode.New(errcode.Error, op, "write protected")
	}
	return nil
}

// erase starts an erase of mode kind with a dummy write inside the target.
func (f *Flash) erase(op string, addr uint32, bit uint8) error {
	if err := f.ready(op); err != nil {
		return err
	}
	f.cr().SetBit(bit)
	reg.Write32(addr, 0xFFFFFFFF)
	return f.wait(op, 1<<bit)
}

// ErasePage erases the 128-byte page at addr.
func (f *Flash) ErasePage(addr uint32) error {
	const op = "flash.ErasePage"
	if err := check(op, addr, PageSize); err != nil {
		return err
	}
	return f.erase(op, addr, py32.FLASH_CR_PER)
}

// EraseSector erases the 4 KiB sector at addr.
func (f *Flash) EraseSector(addr uint32) error {
	const op = "flash.EraseSector"
	if err := check(op, addr, SectorSize); err != nil {
		return err
	}
	return f.erase(op, addr, py32.FLASH_CR_SER)
}

// EraseMass erases all of main flash, including the running program.
func (f *Flash) EraseMass() error {
	return f.erase("flash.EraseMass", Base, py32.FLASH_CR_MER)
}

// ProgramPage writes data, exactly one page, to the erased page at addr.
// Programming only clears bits.
func (f *Flash) ProgramPage(addr uint32, data []byte) error {
	const op = "flash.ProgramPage"
	if err := check(op, addr, PageSize); err != nil {
		return err
	}
	if len(data) != PageSize {
		return errcode.New(errcode.InvalidConfig, op, core.Itoa(len(data)))
	}
	if err := f.ready(op); err != nil {
		return err
	}
	cr := f.cr()
	cr.SetBit(py32.FLASH_CR_PG)
	// The page buffer commits on the last word once PGSTRT is set.
	last := PageSize - 4
	for off := 0; off < last; off += 4 {
		reg.Write32(addr+uint32(off), binary.LittleEndian.Uint32(data[off:]))
	}
	cr.SetBit(py32.FLASH_CR_PGSTRT)
	reg.Write32(addr+uint32(last), binary.LittleEndian.Uint32(data[last:]))
	return f.wait(op, 1<<py32.FLASH_CR_PG)
}

// ReadPage returns the page at addr.
func (f *Flash) ReadPage(addr uint32) ([PageSize]byte, error) {
	var page [PageSize]byte
	if err := check("flash.ReadPage", addr, PageSize); err != nil {
		return page, err
	}
	for off := 0; off < PageSize; off += 4 {
		binary.LittleEndian.PutUint32(page[off:], reg.Read32(addr+uint32(off)))
	}
	return page, nil
}

// ReadSectorPage returns page of sector.
func (f *Flash) ReadSectorPage(sector, page uint8) ([PageSize]byte, error) {
	addr, err := PageAddress(sector, page)
	if err != nil {
		return [PageSize]byte{}, err
	}
	return f.ReadPage(addr)
}

// Close locks the interface and releases the controller.
func (f *Flash) Close() {
	f.Lock()
	f.tok.Release()
}

// UUID returns the 128-bit factory-unique device ID.
func UUID() [py32.UID_SIZE]byte {
	var id [py32.UID_SIZE]byte
	for off := 0; off < py32.UID_SIZE; off += 4 {
		binary.LittleEndian.PutUint32(id[off:], reg.Read32(py32.UID_BASE+uint32(off)))
	}
	return id
}
