package reg

import (
	"testing"

	"py32hal/device/py32"
	"py32hal/sim"
)

func TestRegisterFieldOps(t *testing.T) {
	sim.Reset()
	crc := Block(py32.CRC_BASE)
	idr := crc.At(py32.CRC_IDR)

	idr.Set(0x5A)
	if got := idr.Get(); got != 0x5A {
		t.Fatalf("IDR = %#x, want 0x5a", got)
	}
	idr.SetField(4, 4, 0x3)
	if got := idr.Get(); got != 0x3A {
		t.Errorf("after SetField IDR = %#x, want 0x3a", got)
	}
	if got := idr.Field(0, 4); got != 0xA {
		t.Errorf("Field(0,4) = %#x, want 0xa", got)
	}
	idr.ClearBit(1)
	if idr.Bit(1) {
		t.Error("bit 1 still set after ClearBit")
	}
	idr.ReplaceBits(0x7, 0x7, 0)
	if got := idr.Get(); got != 0x3F {
		t.Errorf("after ReplaceBits IDR = %#x, want 0x3f", got)
	}
}

func TestAddrOfStable(t *testing.T) {
	sim.Reset()
	buf := make([]byte, 16)
	a := AddrOf(buf)
	if a < py32.SRAM_BASE {
		t.Fatalf("AddrOf = %#x, below SRAM", a)
	}
	if b := AddrOf(buf); b != a {
		t.Errorf("second AddrOf = %#x, want %#x", b, a)
	}
	Write32(a+4, 0x04030201)
	if buf[4] != 1 || buf[7] != 4 {
		t.Errorf("write through bus not visible in slice: %v", buf)
	}
	if AddrOf(nil) != 0 {
		t.Error("AddrOf(nil) != 0")
	}
}
