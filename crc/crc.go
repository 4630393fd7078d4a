// Package crc drives the CRC-32 unit: polynomial 0x04C11DB7, initial value
// 0xFFFFFFFF, words fed MSB first with no reflection or final XOR.
package crc

import (
	"encoding/binary"

	"py32hal/device/py32"
	"py32hal/errcode"
	"py32hal/periph"
	"py32hal/reg"
)

var regs = reg.Block(py32.CRC_BASE)

// CRC is the calculation unit.
type CRC struct {
	tok *periph.Token
}

// New claims the unit and resets it.
func New(tok *periph.Token) (*CRC, error) {
	if tok == nil || tok.ID() != periph.CRC {
		return nil, errcode.New(errcode.InvalidConfig, "crc.New", "token")
	}
	if err := tok.Claim(); err != nil {
		return nil, err
	}
	c := &CRC{tok: tok}
	c.Reset()
	return c, nil
}

// Reset loads the initial value.
func (c *CRC) Reset() {
	regs.At(py32.CRC_CR).Set(1 << py32.CRC_CR_RESET)
}

// Accumulate folds words into the running value and returns it.
func (c *CRC) Accumulate(words []uint32) uint32 {
	dr := regs.At(py32.CRC_DR)
	for _, w := range words {
		dr.Set(w)
	}
	return dr.Get()
}

// Calculate returns the CRC of words alone.
func (c *CRC) Calculate(words []uint32) uint32 {
	c.Reset()
	return c.Accumulate(words)
}

// CalculateBytes returns the CRC of b read as big-endian words. A short tail
// is padded with zero bytes.
func (c *CRC) CalculateBytes(b []byte) uint32 {
	c.Reset()
	dr := regs.At(py32.CRC_DR)
	for len(b) >= 4 {
		dr.Set(binary.BigEndian.Uint32(b))
		b = b[4:]
	}
	if len(b) > 0 {
		var tail [4]byte
		copy(tail[:], b)
		dr.Set(binary.BigEndian.Uint32(tail[:]))
	}
	return dr.Get()
}

// SetScratch stores a byte in the independent data register, which Reset
// leaves alone.
func (c *CRC) SetScratch(v uint8) { regs.At(py32.CRC_IDR).Set(uint32(v)) }

// Scratch returns the independent data register.
func (c *CRC) Scratch() uint8 { return uint8(regs.At(py32.CRC_IDR).Get()) }

// Close releases the unit.
func (c *CRC) Close() {
	c.tok.Release()
}
