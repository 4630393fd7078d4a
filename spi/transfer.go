package spi

import (
	"py32hal/core"
	"py32hal/device/py32"
	"py32hal/errcode"
)

func (s *SPI) sr() uint32 { return s.r(py32.SPI_SR).Get() }

func (s *SPI) wait(op, phase string, flag uint32) error {
	return core.SpinUntil(s.cfg.Timeout, op, phase, func() bool {
		return s.sr()&flag != 0
	})
}

func (s *SPI) waitIdle(op string) error {
	return core.SpinUntil(s.cfg.Timeout, op, errcode.PhaseComplete, func() bool {
		return s.sr()&(1<<py32.SPI_SR_BSY) == 0
	})
}

// frame shifts one frame out and returns the frame shifted in.
func (s *SPI) frame(op string, v uint32) (uint32, error) {
	if err := s.wait(op, errcode.PhaseTx, 1<<py32.SPI_SR_TXE); err != nil {
		return 0, err
	}
	s.r(py32.SPI_DR).Set(v)
	if err := s.wait(op, errcode.PhaseRx, 1<<py32.SPI_SR_RXNE); err != nil {
		return 0, err
	}
	if s.sr()&(1<<py32.SPI_SR_OVR) != 0 {
		s.r(py32.SPI_DR).Get()
		return 0, errcode.New(errcode.Overrun, op, errcode.PhaseRx)
	}
	return s.r(py32.SPI_DR).Get(), nil
}

// Transfer exchanges one byte on a full-duplex port.
func (s *SPI) Transfer(b byte) (byte, error) {
	const op = "spi.Transfer"
	if s.cfg.Direction != FullDuplex {
		return 0, errcode.New(errcode.InvalidConfig, op, "not full duplex")
	}
	v, err := s.frame(op, uint32(b))
	return byte(v), err
}

// Tx writes w and reads r. On a full-duplex port both are exchanged in step:
// they must be the same length unless one is empty, and an empty w sends
// zeros. A half-duplex port writes w, turns the line around and reads r. An
// rx-only port accepts only r.
func (s *SPI) Tx(w, r []byte) error {
	return tx(s, "spi.Tx", w, r)
}

// Tx16 is Tx for a port configured with 16-bit frames.
func (s *SPI) Tx16(w, r []uint16) error {
	if !s.cfg.Frame16 {
		return errcode.New(errcode.InvalidConfig, "spi.Tx16", "8-bit frames")
	}
	return tx(s, "spi.Tx16", w, r)
}

func tx[T uint8 | uint16](s *SPI, op string, w, r []T) error {
	put := func(n int, v uint32) { r[n] = T(v) }
	switch s.cfg.Direction {
	case HalfDuplex:
		for _, v := range w {
			if err := s.send(op, uint32(v)); err != nil {
				return err
			}
		}
		if err := s.waitIdle(op); err != nil {
			return err
		}
		return s.receive(op, len(r), put)
	case RxOnly:
		if len(w) != 0 {
			return errcode.New(errcode.InvalidConfig, op, "rx only")
		}
		return s.receive(op, len(r), put)
	}
	if len(w) != 0 && len(r) != 0 && len(w) != len(r) {
		return errcode.New(errcode.InvalidConfig, op, "length")
	}
	for k := 0; k < max(len(w), len(r)); k++ {
		var out uint32
		if k < len(w) {
			out = uint32(w[k])
		}
		in, err := s.frame(op, out)
		if err != nil {
			return err
		}
		if k < len(r) {
			put(k, in)
		}
	}
	return s.waitIdle(op)
}

// send queues one frame on a half-duplex port, which receives nothing.
func (s *SPI) send(op string, v uint32) error {
	if err := s.wait(op, errcode.PhaseTx, 1<<py32.SPI_SR_TXE); err != nil {
		return err
	}
	s.r(py32.SPI_DR).Set(v)
	return nil
}

// receive clocks n frames in with the transmitter off. The master keeps
// clocking while receive-only is set, so the port is disabled after the last
// frame and the spare frame dropped.
func (s *SPI) receive(op string, n int, put func(int, uint32)) error {
	if n == 0 {
		return nil
	}
	cr1 := s.r(py32.SPI_CR1)
	dr := s.r(py32.SPI_DR)
	idle := cr1.Get()
	if s.cfg.Direction == HalfDuplex {
		cr1.ClearBit(py32.SPI_CR1_BIDIOE)
	} else {
		cr1.SetBit(py32.SPI_CR1_RXONLY)
	}
	var err error
	for k := 0; k < n; k++ {
		if err = s.wait(op, errcode.PhaseRx, 1<<py32.SPI_SR_RXNE); err != nil {
			break
		}
		put(k, dr.Get())
	}
	cr1.ClearBit(py32.SPI_CR1_SPE)
	dr.Get()
	cr1.Set(idle &^ (1 << py32.SPI_CR1_SPE))
	cr1.Set(idle)
	return err
}
