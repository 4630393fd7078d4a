package i2c

import (
	"py32hal/core"
	"py32hal/device/py32"
	"py32hal/errcode"
)

// Request is what the remote master did during a Listen.
type Request uint8

const (
	MasterWrote Request = iota + 1
	MasterRead
)

func (r Request) String() string {
	switch r {
	case MasterWrote:
		return "write"
	case MasterRead:
		return "read"
	}
	return "none"
}

// Slave answers a remote master at its own address. It shares the
// peripheral with the master side; the two must not be used at once.
type Slave struct {
	i *I2C
}

// Slave sets the own address and returns the slave side of the bus.
func (i *I2C) Slave(addr uint8) (*Slave, error) {
	if addr > 0x7F {
		return nil, errcode.New(errcode.InvalidAddress, "i2c.Slave", core.Utoa(uint32(addr)))
	}
	i.own = addr
	i.r(py32.I2C_OAR1).Set(uint32(addr) << py32.I2C_OAR1_ADD_Pos)
	return &Slave{i: i}, nil
}

// Address returns the own address.
func (s *Slave) Address() uint8 { return s.i.own }

// Listen waits for the remote master to address us, then serves one
// transaction. A write is stored in rx, bytes past its end are dropped; a
// read is served from tx, padded with 0xFF. n counts the bytes stored or
// sent.
func (s *Slave) Listen(rx, tx []byte) (req Request, n int, err error) {
	const op = "i2c.Listen"
	i := s.i
	if i.busy {
		return 0, 0, errcode.New(errcode.Busy, op, "async transfer")
	}
	i.r(py32.I2C_CR1).SetBit(py32.I2C_CR1_ACK)
	err = core.SpinUntil(i.cfg.Timeout, op, errcode.PhaseAddress, func() bool {
		return i.sr1()&FlagADDR != 0
	})
	if err != nil {
		return 0, 0, err
	}
	if i.clearADDR()&(1<<py32.I2C_SR2_TRA) != 0 {
		n, err = s.send(op, tx)
		return MasterRead, n, err
	}
	n, err = s.receive(op, rx)
	return MasterWrote, n, err
}

// send feeds DR until the master NACKs the last byte.
func (s *Slave) send(op string, tx []byte) (int, error) {
	i := s.i
	n := 0
	for {
		var sr1 uint32
		err := core.SpinUntil(i.cfg.Timeout, op, errcode.PhaseTx, func() bool {
			sr1 = i.sr1()
			return sr1&(FlagTXE|errFlags) != 0
		})
		if err != nil {
			return n, err
		}
		if sr1&FlagAF != 0 {
			i.r(py32.I2C_SR1).Set(^FlagAF & 0xFFFF)
			return n, nil
		}
		if e := sr1 & errFlags; e != 0 {
			i.r(py32.I2C_SR1).Set(^e & 0xFFFF)
			return n, slaveErr(e, op, errcode.PhaseTx)
		}
		b := byte(0xFF)
		if n < len(tx) {
			b = tx[n]
		}
		i.r(py32.I2C_DR).Set(uint32(b))
		n++
	}
}

// receive drains DR until the master's STOP.
func (s *Slave) receive(op string, rx []byte) (int, error) {
	i := s.i
	n := 0
	for {
		var sr1 uint32
		err := core.SpinUntil(i.cfg.Timeout, op, errcode.PhaseRx, func() bool {
			sr1 = i.sr1()
			return sr1&(FlagRXNE|FlagSTOPF|errFlags) != 0
		})
		if err != nil {
			return n, err
		}
		if e := sr1 & errFlags; e != 0 {
			i.r(py32.I2C_SR1).Set(^e & 0xFFFF)
			return n, slaveErr(e, op, errcode.PhaseRx)
		}
		if sr1&FlagRXNE != 0 {
			b := byte(i.r(py32.I2C_DR).Get())
			if n < len(rx) {
				rx[n] = b
				n++
			}
			continue
		}
		// STOPF clears on SR1 read followed by a CR1 write.
		cr1 := i.r(py32.I2C_CR1)
		i.sr1()
		cr1.Set(cr1.Get())
		return n, nil
	}
}

func slaveErr(e uint32, op, phase string) error {
	switch {
	case e&FlagBERR != 0:
		return errcode.New(errcode.BusError, op, phase)
	case e&FlagOVR != 0:
		return errcode.New(errcode.Overrun, op, phase)
	}
	return errcode.New(errcode.Error, op, phase)
}
