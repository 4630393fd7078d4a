package i2c

import (
	"py32hal/core"
	"py32hal/device/py32"
	"py32hal/errcode"
)

type stage uint8

const (
	stBegin   stage = iota
	stStart         // START issued, waiting for SB
	stAddress       // address sent, waiting for ADDR
	stWrite
	stRead
	stStop
	stDone
)

var phases = [...]string{
	stBegin:   errcode.PhaseStart,
	stStart:   errcode.PhaseStart,
	stAddress: errcode.PhaseAddress,
	stWrite:   errcode.PhaseTx,
	stRead:    errcode.PhaseRx,
	stStop:    errcode.PhaseStop,
	stDone:    errcode.PhaseComplete,
}

// txn is one master transfer: an optional write, then an optional read after
// a repeated START. advance moves it forward as far as the flags allow and
// reports what it waits for, so a spin loop and an interrupt future can drive
// the same sequence.
type txn struct {
	i      *I2C
	op     string
	addr   uint8
	w, r   []byte
	nw, nr int
	rd     bool // the read phase has begun
	st     stage
}

func (t *txn) phase() string { return phases[t.st] }

func (i *I2C) newTxn(op string, addr uint16, w, r []byte) (txn, error) {
	if addr > 0x7F {
		return txn{}, errcode.New(errcode.InvalidAddress, op, core.Utoa(uint32(addr)))
	}
	return txn{i: i, op: op, addr: uint8(addr), w: w, r: r}, nil
}

// advance returns the SR1 flags the transfer needs next, or zero when it has
// finished. Bus errors end the transfer with a STOP.
func (t *txn) advance() (uint32, error) {
	i := t.i
	cr1 := i.r(py32.I2C_CR1)
	dr := i.r(py32.I2C_DR)
	for {
		sr1 := i.sr1()
		if sr1&errFlags != 0 && t.st != stDone {
			return 0, t.fail(sr1 & errFlags)
		}
		switch t.st {
		case stBegin:
			t.rd = len(t.w) == 0 && len(t.r) > 0
			t.restart()

		case stStart:
			if sr1&FlagSB == 0 {
				return FlagSB, nil
			}
			a := uint32(t.addr) << 1
			if t.rd {
				a |= 1
			}
			dr.Set(a)
			t.st = stAddress

		case stAddress:
			if sr1&FlagADDR == 0 {
				return FlagADDR, nil
			}
			if !t.rd {
				i.clearADDR()
				t.st = stWrite
				continue
			}
			// Single byte: NACK it before ADDR releases the clock, and
			// queue STOP behind it.
			if len(t.r) == 1 {
				cr1.ClearBit(py32.I2C_CR1_ACK)
				i.clearADDR()
				cr1.SetBit(py32.I2C_CR1_STOP)
			} else {
				i.clearADDR()
				if len(t.r) == 2 {
					cr1.ClearBit(py32.I2C_CR1_ACK)
				}
			}
			t.st = stRead

		case stWrite:
			if t.nw < len(t.w) {
				if sr1&FlagTXE == 0 {
					return FlagTXE, nil
				}
				dr.Set(uint32(t.w[t.nw]))
				t.nw++
				continue
			}
			if len(t.w) > 0 && sr1&FlagBTF == 0 {
				return FlagBTF, nil
			}
			if len(t.r) > 0 {
				t.rd = true
				t.restart()
				continue
			}
			cr1.SetBit(py32.I2C_CR1_STOP)
			t.st = stStop

		case stRead:
			switch left := len(t.r) - t.nr; {
			case left == 0:
				t.st = stStop
			case len(t.r) == 1:
				if sr1&FlagRXNE == 0 {
					return FlagRXNE, nil
				}
				t.r[t.nr] = byte(dr.Get())
				t.nr++
			case left == 2:
				// Both tail bytes are in: DR and the shift register.
				if sr1&FlagBTF == 0 {
					return FlagBTF, nil
				}
				cr1.SetBit(py32.I2C_CR1_STOP)
				t.r[t.nr] = byte(dr.Get())
				t.r[t.nr+1] = byte(dr.Get())
				t.nr += 2
			case left == 3:
				if sr1&FlagBTF == 0 {
					return FlagBTF, nil
				}
				cr1.ClearBit(py32.I2C_CR1_ACK)
				t.r[t.nr] = byte(dr.Get())
				t.nr++
			default:
				if sr1&FlagRXNE == 0 {
					return FlagRXNE, nil
				}
				t.r[t.nr] = byte(dr.Get())
				t.nr++
			}

		case stStop:
			err := core.SpinUntil(i.cfg.Timeout, t.op, errcode.PhaseStop, func() bool {
				return !cr1.Bit(py32.I2C_CR1_STOP)
			})
			t.finish()
			if err != nil {
				i.recover()
				return 0, err
			}
			return 0, nil

		case stDone:
			return 0, nil
		}
	}
}

// restart issues a START (or repeated START) for the current direction.
func (t *txn) restart() {
	cr1 := t.i.r(py32.I2C_CR1)
	if t.rd && len(t.r) == 2 {
		cr1.SetBits(1<<py32.I2C_CR1_ACK | 1<<py32.I2C_CR1_POS)
	} else {
		cr1.SetBit(py32.I2C_CR1_ACK)
	}
	cr1.SetBit(py32.I2C_CR1_START)
	t.st = stStart
}

func (t *txn) finish() {
	cr1 := t.i.r(py32.I2C_CR1)
	cr1.ClearBit(py32.I2C_CR1_POS)
	cr1.SetBit(py32.I2C_CR1_ACK)
	t.st = stDone
}

// fail ends the transfer on a bus error. NACKs release the bus with a STOP;
// a lost arbitration or a misplaced START/STOP resets the peripheral.
func (t *txn) fail(e uint32) error {
	i := t.i
	phase := t.phase()
	code := errcode.Overrun
	switch {
	case e&FlagBERR != 0:
		code = errcode.BusError
	case e&FlagARLO != 0:
		code = errcode.Arbitration
	case e&FlagAF != 0:
		code = errcode.Acknowledge
	}
	i.r(py32.I2C_SR1).Set(^e & 0xFFFF)
	t.abort()
	if code == errcode.BusError || code == errcode.Arbitration {
		i.recover()
	}
	return errcode.New(code, t.op, phase)
}

// abort sends STOP and falls back to a reset if the master does not let go
// or a START is still outstanding.
func (t *txn) abort() {
	if t.st == stDone {
		return
	}
	pending := t.st <= stStart
	i := t.i
	cr1 := i.r(py32.I2C_CR1)
	cr1.ClearBit(py32.I2C_CR1_START)
	cr1.SetBit(py32.I2C_CR1_STOP)
	err := core.SpinUntil(64, t.op, errcode.PhaseStop, func() bool {
		return !cr1.Bit(py32.I2C_CR1_STOP)
	})
	t.finish()
	if err != nil || pending {
		i.recover()
	}
}

// clearADDR reads SR1 then SR2, which releases the clock after an address
// match. It returns SR2 as it was before the clear.
func (i *I2C) clearADDR() uint32 {
	i.sr1()
	return i.r(py32.I2C_SR2).Get()
}

// Tx writes w to the device at addr, then reads len(r) bytes after a repeated
// START. Either may be empty; with both empty it probes the address.
func (i *I2C) Tx(addr uint16, w, r []byte) error {
	const op = "i2c.Tx"
	if i.busy {
		return errcode.New(errcode.Busy, op, "async transfer")
	}
	t, err := i.newTxn(op, addr, w, r)
	if err != nil {
		return err
	}
	return t.run()
}

// run spins the step machine to completion, one bounded wait per step.
func (t *txn) run() error {
	i := t.i
	for {
		want, err := t.advance()
		if err != nil || want == 0 {
			return err
		}
		err = core.SpinUntil(i.cfg.Timeout, t.op, t.phase(), func() bool {
			return i.sr1()&(want|errFlags) != 0
		})
		if err != nil {
			t.abort()
			return err
		}
	}
}

// WriteRegister writes buf to register r of the device at addr.
func (i *I2C) WriteRegister(addr, r uint8, buf []byte) error {
	w := make([]byte, 1+len(buf))
	w[0] = r
	copy(w[1:], buf)
	return i.Tx(uint16(addr), w, nil)
}

// ReadRegister reads len(buf) bytes from register r of the device at addr.
func (i *I2C) ReadRegister(addr, r uint8, buf []byte) error {
	return i.Tx(uint16(addr), []byte{r}, buf)
}
