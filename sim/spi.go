//go:build !tinygo

package sim

import "py32hal/device/py32"

type spi struct {
	mc           *Machine
	addr         uint32
	irq          int
	txReq, rxReq uint32

	cr1, cr2, sr, rdr uint32
	tdr               uint32
	tdrFull           bool
	shifting          bool
	shiftVal          uint32
	wait              uint64

	respond func(uint16) uint16
	sent    []uint16
}

func (s *spi) base() uint32 { return s.addr }
func (s *spi) size() uint32 { return 0x400 }

func (s *spi) reset() {
	*s = spi{mc: s.mc, addr: s.addr, irq: s.irq, txReq: s.txReq, rxReq: s.rxReq, respond: s.respond, sent: s.sent[:0]}
	s.sr = 1 << py32.SPI_SR_TXE
}

func (s *spi) on() bool { return s.cr1&(1<<py32.SPI_CR1_SPE) != 0 }

func (s *spi) rxOnly() bool {
	if s.cr1&(1<<py32.SPI_CR1_BIDIMODE) != 0 {
		return s.cr1&(1<<py32.SPI_CR1_BIDIOE) == 0
	}
	return s.cr1&(1<<py32.SPI_CR1_RXONLY) != 0
}

func (s *spi) txOnly() bool {
	return s.cr1&(1<<py32.SPI_CR1_BIDIMODE) != 0 && s.cr1&(1<<py32.SPI_CR1_BIDIOE) != 0
}

func (s *spi) load(off uint32) uint32 {
	switch off {
	case py32.SPI_CR1:
		return s.cr1
	case py32.SPI_CR2:
		return s.cr2
	case py32.SPI_SR:
		return s.sr
	case py32.SPI_DR:
		s.sr &^= 1<<py32.SPI_SR_RXNE | 1<<py32.SPI_SR_OVR
		return s.rdr
	}
	return 0
}

func (s *spi) store(off, v uint32) {
	switch off {
	case py32.SPI_CR1:
		s.cr1 = v
		if !s.on() {
			s.shifting = false
			s.sr &^= 1 << py32.SPI_SR_BSY
		}
	case py32.SPI_CR2:
		s.cr2 = v
	case py32.SPI_SR:
		s.sr &= v | ^uint32(1<<py32.SPI_SR_OVR)
	case py32.SPI_DR:
		if !s.on() {
			return
		}
		if !s.shifting {
			s.start(v)
		} else {
			s.tdr = v
			s.tdrFull = true
			s.sr &^= 1 << py32.SPI_SR_TXE
		}
	}
}

func (s *spi) frameCycles() uint64 {
	bits := uint64(8)
	if s.cr1&(1<<py32.SPI_CR1_DFF) != 0 {
		bits = 16
	}
	div := uint64(2) << (s.cr1 >> py32.SPI_CR1_BR_Pos & 7)
	return bits * div * uint64(s.mc.rcc.hclk) / uint64(s.mc.rcc.pclk)
}

func (s *spi) start(v uint32) {
	s.shifting = true
	s.shiftVal = v
	s.wait = s.frameCycles()
	s.sr |= 1<<py32.SPI_SR_TXE | 1<<py32.SPI_SR_BSY
}

func (s *spi) step(cycles uint32) {
	c := uint64(cycles)
	if s.on() && !s.shifting && s.rxOnly() && s.sr&(1<<py32.SPI_SR_RXNE) == 0 {
		s.start(0xFFFF)
	}
	if s.shifting {
		if s.wait > c {
			s.wait -= c
		} else {
			s.finish()
		}
	}
	en := s.cr2
	sr := s.sr
	if sr&(1<<py32.SPI_SR_RXNE) != 0 && en&(1<<py32.SPI_CR2_RXNEIE) != 0 ||
		sr&(1<<py32.SPI_SR_TXE) != 0 && en&(1<<py32.SPI_CR2_TXEIE) != 0 ||
		sr&(1<<py32.SPI_SR_OVR|1<<py32.SPI_SR_MODF) != 0 && en&(1<<py32.SPI_CR2_ERRIE) != 0 {
		s.mc.nvic.raise(s.irq)
	}
}

func (s *spi) finish() {
	s.shifting = false
	mask := uint32(0xFF)
	if s.cr1&(1<<py32.SPI_CR1_DFF) != 0 {
		mask = 0xFFFF
	}
	out := uint16(s.shiftVal & mask)
	if !s.rxOnly() {
		s.sent = append(s.sent, out)
	}
	in := out
	if s.respond != nil {
		in = s.respond(out)
	}
	if !s.txOnly() {
		if s.sr&(1<<py32.SPI_SR_RXNE) != 0 {
			s.sr |= 1 << py32.SPI_SR_OVR
		} else {
			s.rdr = uint32(in) & mask
			s.sr |= 1 << py32.SPI_SR_RXNE
		}
	}
	if s.tdrFull {
		s.tdrFull = false
		s.start(s.tdr)
		return
	}
	s.sr &^= 1 << py32.SPI_SR_BSY
}

func (s *spi) txRequest() bool {
	return s.cr2&(1<<py32.SPI_CR2_TXDMAEN) != 0 && s.sr&(1<<py32.SPI_SR_TXE) != 0 && !s.tdrFull && s.on()
}

func (s *spi) rxRequest() bool {
	return s.cr2&(1<<py32.SPI_CR2_RXDMAEN) != 0 && s.sr&(1<<py32.SPI_SR_RXNE) != 0
}

// SPI is the test handle to an SPI model.
type SPI struct{ s *spi }

// SPIPort returns SPI1 (n=1) or SPI2 (n=2).
func SPIPort(n int) SPI { return SPI{m.spis[n-1]} }

// Respond installs the device side: it sees each MOSI frame and returns MISO.
// Without a responder MISO echoes MOSI.
func (p SPI) Respond(fn func(mosi uint16) (miso uint16)) { p.s.respond = fn }

// Sent returns and clears the MOSI frames.
func (p SPI) Sent() []uint16 {
	out := append([]uint16(nil), p.s.sent...)
	p.s.sent = p.s.sent[:0]
	return out
}
