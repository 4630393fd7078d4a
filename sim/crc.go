//go:build !tinygo

package sim

import "py32hal/device/py32"

const crcPoly = 0x04C11DB7

type crc struct {
	mc  *Machine
	dr  uint32
	idr uint32
}

func (c *crc) base() uint32 { return py32.CRC_BASE }
func (c *crc) size() uint32 { return 0x400 }
func (c *crc) reset()       { *c = crc{mc: c.mc, dr: 0xFFFFFFFF} }
func (c *crc) step(uint32)  {}

func (c *crc) load(off uint32) uint32 {
	switch off {
	case py32.CRC_DR:
		return c.dr
	case py32.CRC_IDR:
		return c.idr
	}
	return 0
}

func (c *crc) store(off, v uint32) {
	switch off {
	case py32.CRC_DR:
		c.dr = CRC32Word(c.dr, v)
	case py32.CRC_IDR:
		c.idr = v & 0xFF
	case py32.CRC_CR:
		if v&(1<<py32.CRC_CR_RESET) != 0 {
			c.dr = 0xFFFFFFFF
		}
	}
}

// CRC32Word folds one word into crc, MSB first, polynomial 0x04C11DB7.
func CRC32Word(crc, w uint32) uint32 {
	crc ^= w
	for i := 0; i < 32; i++ {
		if crc&0x80000000 != 0 {
			crc = crc<<1 ^ crcPoly
		} else {
			crc <<= 1
		}
	}
	return crc
}
