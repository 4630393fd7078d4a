package crc

import (
	"testing"

	"py32hal/errcode"
	"py32hal/periph"
	"py32hal/sim"
)

func open(t *testing.T) *CRC {
	t.Helper()
	sim.Reset()
	periph.ResetClaims()
	c, err := New(periph.NewRegistry().CRC)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(c.Close)
	return c
}

func TestCalculate(t *testing.T) {
	c := open(t)
	tests := []struct {
		words []uint32
		want  uint32
	}{
		{nil, 0xFFFFFFFF},
		{[]uint32{0x00000000}, 0xC704DD7B},
		{[]uint32{0x12345678}, 0xDF8A8A2B},
	}
	for _, tt := range tests {
		if got := c.Calculate(tt.words); got != tt.want {
			t.Errorf("Calculate(%x) = %#08x, want %#08x", tt.words, got, tt.want)
		}
	}
}

func TestAccumulate(t *testing.T) {
	c := open(t)
	words := []uint32{0xDEADBEEF, 0x01020304, 0xCAFEF00D}
	whole := c.Calculate(words)
	c.Reset()
	c.Accumulate(words[:1])
	if got := c.Accumulate(words[1:]); got != whole {
		t.Errorf("split = %#08x, whole = %#08x", got, whole)
	}
}

func TestCalculateBytes(t *testing.T) {
	c := open(t)
	if got, want := c.CalculateBytes([]byte{0x12, 0x34, 0x56, 0x78}), c.Calculate([]uint32{0x12345678}); got != want {
		t.Errorf("aligned = %#08x, want %#08x", got, want)
	}
	got := c.CalculateBytes([]byte{1, 2, 3, 4, 5, 6})
	if want := c.Calculate([]uint32{0x01020304, 0x05060000}); got != want {
		t.Errorf("padded = %#08x, want %#08x", got, want)
	}
}

func TestScratchSurvivesReset(t *testing.T) {
	c := open(t)
	c.SetScratch(0xA5)
	c.Reset()
	if c.Scratch() != 0xA5 {
		t.Errorf("scratch = %#x", c.Scratch())
	}
	if _, err := New(periph.NewRegistry().ADC); errcode.Of(err) != errcode.InvalidConfig {
		t.Errorf("wrong token: %v", err)
	}
}
