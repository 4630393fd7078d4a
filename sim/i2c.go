//go:build !tinygo

package sim

import (
	"fmt"

	"py32hal/device/py32"
)

// Target is a device on the simulated I2C bus.
type Target interface {
	// Start is called when the target's address is acknowledged.
	Start(read bool)
	// Write receives one byte from the master and returns the ACK.
	Write(b byte) bool
	// Read supplies the next byte to the master.
	Read() byte
	// Stop ends the transaction.
	Stop()
}

type i2cPhase uint8

const (
	i2cIdle i2cPhase = iota
	i2cStarting
	i2cAddress
	i2cStarted
	i2cTx
	i2cRx
)

// extMaster is a transfer driven by an external master against our slave.
type extMaster struct {
	addr   uint8
	write  []byte
	readN  int
	got    []byte
	stage  int // 0 address, 1 data, 2 done
	wait   uint64
	nacked bool
}

type i2c struct {
	mc      *Machine
	targets map[uint8]Target

	cr1, cr2, oar1, ccr, trise uint32
	sr1, sr2                   uint32
	dr                         uint32
	sr1Read                    bool

	phase      i2cPhase
	wait       uint64
	target     Target
	reading    bool
	shifting   bool
	shiftVal   uint32
	shiftFull  bool
	drFull     bool
	lastAck    bool
	ackThis    bool
	stopReq    bool
	loseArb    bool
	transcript []string

	ext     *extMaster
	extDone *extMaster
}

func (c *i2c) base() uint32 { return py32.I2C_BASE }
func (c *i2c) size() uint32 { return 0x400 }

func (c *i2c) reset() {
	*c = i2c{mc: c.mc, targets: c.targets, transcript: c.transcript[:0]}
}

func (c *i2c) byteCycles() uint64 {
	ccr := uint64(c.ccr & 0xFFF)
	if ccr == 0 {
		ccr = 4
	}
	bit := 2 * ccr
	if c.ccr&(1<<py32.I2C_CCR_FS) != 0 {
		bit = 3 * ccr
		if c.ccr&(1<<py32.I2C_CCR_DUTY) != 0 {
			bit = 25 * ccr
		}
	}
	return 9 * bit * uint64(c.mc.rcc.hclk) / uint64(c.mc.rcc.pclk)
}

func (c *i2c) log(format string, args ...any) {
	c.transcript = append(c.transcript, fmt.Sprintf(format, args...))
}

func (c *i2c) load(off uint32) uint32 {
	switch off {
	case py32.I2C_CR1:
		return c.cr1
	case py32.I2C_CR2:
		return c.cr2
	case py32.I2C_OAR1:
		return c.oar1
	case py32.I2C_DR:
		return c.readDR()
	case py32.I2C_SR1:
		c.sr1Read = true
		return c.sr1
	case py32.I2C_SR2:
		v := c.sr2
		if c.sr1Read && c.sr1&(1<<py32.I2C_SR1_ADDR) != 0 {
			c.sr1 &^= 1 << py32.I2C_SR1_ADDR
			c.addrCleared()
		}
		c.sr1Read = false
		return v
	case py32.I2C_CCR:
		return c.ccr
	case py32.I2C_TRISE:
		return c.trise
	}
	return 0
}

func (c *i2c) store(off, v uint32) {
	switch off {
	case py32.I2C_CR1:
		c.writeCR1(v)
	case py32.I2C_CR2:
		c.cr2 = v
	case py32.I2C_OAR1:
		c.oar1 = v
	case py32.I2C_DR:
		c.writeDR(v & 0xFF)
	case py32.I2C_SR1:
		const w0 = 1<<py32.I2C_SR1_BERR | 1<<py32.I2C_SR1_ARLO | 1<<py32.I2C_SR1_AF | 1<<py32.I2C_SR1_OVR
		c.sr1 &= v | ^uint32(w0)
	case py32.I2C_CCR:
		c.ccr = v
	case py32.I2C_TRISE:
		c.trise = v
	}
}

func (c *i2c) writeCR1(v uint32) {
	if v&(1<<py32.I2C_CR1_SWRST) != 0 {
		c.reset()
		c.cr1 = v
		return
	}
	if c.sr1&(1<<py32.I2C_SR1_STOPF) != 0 && c.sr1Read {
		c.sr1 &^= 1 << py32.I2C_SR1_STOPF
		c.sr1Read = false
	}
	c.cr1 = v
	if v&(1<<py32.I2C_CR1_PE) == 0 {
		c.phase = i2cIdle
		c.sr1, c.sr2 = 0, 0
		return
	}
	if v&(1<<py32.I2C_CR1_START) != 0 && c.phase != i2cStarting {
		if c.phase == i2cIdle && c.sr2&(1<<py32.I2C_SR2_BUSY) != 0 && c.ext == nil {
			return
		}
		c.phase = i2cStarting
		c.wait = c.byteCycles() / 9
		// A (repeated) START ends the byte transfer state of the last phase.
		c.sr1 &^= 1<<py32.I2C_SR1_TXE | 1<<py32.I2C_SR1_BTF
	}
	if v&(1<<py32.I2C_CR1_STOP) != 0 && c.sr2&(1<<py32.I2C_SR2_MSL) != 0 {
		c.stopReq = true
		if !c.shifting && c.phase != i2cAddress {
			c.stop()
		}
	}
}

func (c *i2c) stop() {
	c.log("P")
	if c.target != nil {
		c.target.Stop()
		c.target = nil
	}
	c.stopReq = false
	c.cr1 &^= 1 << py32.I2C_CR1_STOP
	c.sr2 &^= 1<<py32.I2C_SR2_MSL | 1<<py32.I2C_SR2_BUSY | 1<<py32.I2C_SR2_TRA
	c.sr1 &^= 1<<py32.I2C_SR1_TXE | 1<<py32.I2C_SR1_BTF
	c.phase = i2cIdle
	c.shifting, c.drFull = false, false
}

func (c *i2c) writeDR(v uint32) {
	sr1Read := c.sr1Read
	c.sr1Read = false
	if c.ext != nil && c.sr2&(1<<py32.I2C_SR2_TRA) != 0 {
		// slave transmitter
		c.dr = v
		c.sr1 &^= 1<<py32.I2C_SR1_TXE | 1<<py32.I2C_SR1_BTF
		c.drFull = true
		return
	}
	switch {
	case c.sr1&(1<<py32.I2C_SR1_SB) != 0:
		if !sr1Read {
			return
		}
		c.sr1 &^= 1 << py32.I2C_SR1_SB
		c.phase = i2cAddress
		c.shiftVal = v
		c.shifting = true
		c.wait = c.byteCycles()
	case c.phase == i2cTx:
		c.sr1 &^= 1 << py32.I2C_SR1_BTF
		if !c.shifting {
			c.startTx(v)
		} else {
			c.dr = v
			c.drFull = true
			c.sr1 &^= 1 << py32.I2C_SR1_TXE
		}
	}
}

func (c *i2c) startTx(v uint32) {
	c.shiftVal = v
	c.shifting = true
	c.wait = c.byteCycles()
	c.sr1 |= 1 << py32.I2C_SR1_TXE
}

func (c *i2c) readDR() uint32 {
	v := c.dr
	c.sr1Read = false
	if c.ext != nil {
		c.sr1 &^= 1 << py32.I2C_SR1_RXNE
		return v
	}
	c.sr1 &^= 1 << py32.I2C_SR1_RXNE
	if c.shiftFull {
		c.dr = c.shiftVal
		c.shiftFull = false
		c.sr1 |= 1 << py32.I2C_SR1_RXNE
		c.sr1 &^= 1 << py32.I2C_SR1_BTF
	}
	if c.phase == i2cRx && !c.shifting && !c.shiftFull {
		switch {
		case c.stopReq:
			c.stop()
		case c.lastAck:
			c.startRx()
		}
	}
	return v
}

func (c *i2c) startRx() {
	c.shifting = true
	c.wait = c.byteCycles()
	c.ackThis = c.cr1&(1<<py32.I2C_CR1_ACK) != 0
}

func (c *i2c) addrCleared() {
	if c.ext != nil {
		return
	}
	if c.reading {
		c.phase = i2cRx
		c.startRx()
	} else {
		c.phase = i2cTx
		c.sr1 |= 1 << py32.I2C_SR1_TXE
	}
}

func (c *i2c) step(cycles uint32) {
	c.stepMaster(uint64(cycles))
	c.stepExt(uint64(cycles))
	c.raise()
}

func (c *i2c) stepMaster(n uint64) {
	if c.phase == i2cStarting {
		if c.wait > n {
			c.wait -= n
			return
		}
		c.cr1 &^= 1 << py32.I2C_CR1_START
		if c.loseArb {
			c.loseArb = false
			c.sr1 |= 1 << py32.I2C_SR1_ARLO
			c.phase = i2cIdle
			c.log("ARLO")
			return
		}
		if c.sr2&(1<<py32.I2C_SR2_MSL) != 0 {
			c.log("Sr")
		} else {
			c.log("S")
		}
		c.sr1 |= 1 << py32.I2C_SR1_SB
		c.sr2 |= 1<<py32.I2C_SR2_MSL | 1<<py32.I2C_SR2_BUSY
		c.phase = i2cStarted
		return
	}
	if !c.shifting {
		return
	}
	if c.wait > n {
		c.wait -= n
		return
	}
	c.shifting = false
	switch c.phase {
	case i2cAddress:
		addr := uint8(c.shiftVal >> 1)
		c.reading = c.shiftVal&1 != 0
		dir := "W"
		if c.reading {
			dir = "R"
		}
		t, ok := c.targets[addr]
		if !ok {
			c.log("A %02X %s NACK", addr, dir)
			c.sr1 |= 1 << py32.I2C_SR1_AF
			c.phase = i2cStarted
		} else {
			c.log("A %02X %s ACK", addr, dir)
			c.target = t
			t.Start(c.reading)
			c.sr1 |= 1 << py32.I2C_SR1_ADDR
			if !c.reading {
				c.sr2 |= 1 << py32.I2C_SR2_TRA
			} else {
				c.sr2 &^= 1 << py32.I2C_SR2_TRA
			}
		}
		if c.stopReq {
			c.stop()
		}
	case i2cTx:
		ack := c.target.Write(byte(c.shiftVal))
		if ack {
			c.log("D %02X ACK", byte(c.shiftVal))
		} else {
			c.log("D %02X NACK", byte(c.shiftVal))
			c.sr1 |= 1 << py32.I2C_SR1_AF
			c.drFull = false
		}
		switch {
		case c.stopReq:
			c.stop()
		case !ack:
		case c.drFull:
			c.drFull = false
			c.startTx(c.dr)
		default:
			c.sr1 |= 1<<py32.I2C_SR1_BTF | 1<<py32.I2C_SR1_TXE
		}
	case i2cRx:
		b := uint32(c.target.Read())
		ack := c.ackThis
		if c.cr1&(1<<py32.I2C_CR1_POS) == 0 {
			ack = c.cr1&(1<<py32.I2C_CR1_ACK) != 0
		}
		c.lastAck = ack
		if ack {
			c.log("D %02X ACK", b)
		} else {
			c.log("D %02X NACK", b)
		}
		if c.sr1&(1<<py32.I2C_SR1_RXNE) == 0 {
			c.dr = b
			c.sr1 |= 1 << py32.I2C_SR1_RXNE
			switch {
			case c.stopReq:
				c.stop()
			case ack:
				c.startRx()
			}
		} else {
			c.shiftVal = b
			c.shiftFull = true
			c.sr1 |= 1 << py32.I2C_SR1_BTF
			if c.stopReq && !ack {
				c.stop()
			}
		}
	}
}

// stepExt advances a transfer started by an external master.
func (c *i2c) stepExt(n uint64) {
	x := c.ext
	if x == nil {
		return
	}
	if x.wait > n {
		x.wait -= n
		return
	}
	x.wait = c.byteCycles()
	own := uint8(c.oar1 >> py32.I2C_OAR1_ADD_Pos & 0x7F)
	switch x.stage {
	case 0:
		if c.cr1&(1<<py32.I2C_CR1_PE) == 0 || c.cr1&(1<<py32.I2C_CR1_ACK) == 0 || own != x.addr {
			x.nacked = true
			c.extDone = x
			c.ext = nil
			return
		}
		c.sr2 |= 1 << py32.I2C_SR2_BUSY
		if x.readN > 0 {
			c.sr2 |= 1 << py32.I2C_SR2_TRA
			c.sr1 |= 1 << py32.I2C_SR1_TXE
		}
		c.sr1 |= 1 << py32.I2C_SR1_ADDR
		x.stage = 1
	case 1:
		if c.sr1&(1<<py32.I2C_SR1_ADDR) != 0 {
			return // stretched until ADDR is cleared
		}
		if x.readN > 0 {
			if !c.drFull {
				return
			}
			x.got = append(x.got, byte(c.dr))
			c.drFull = false
			c.sr1 |= 1 << py32.I2C_SR1_TXE
			if len(x.got) == x.readN {
				c.sr1 |= 1 << py32.I2C_SR1_AF
				c.sr2 &^= 1<<py32.I2C_SR2_BUSY | 1<<py32.I2C_SR2_TRA
				x.stage = 2
			}
			return
		}
		if len(x.write) == 0 {
			c.sr1 |= 1 << py32.I2C_SR1_STOPF
			c.sr2 &^= 1 << py32.I2C_SR2_BUSY
			x.stage = 2
			return
		}
		if c.sr1&(1<<py32.I2C_SR1_RXNE) != 0 {
			return
		}
		c.dr = uint32(x.write[0])
		x.write = x.write[1:]
		c.sr1 |= 1 << py32.I2C_SR1_RXNE
	case 2:
		c.extDone = x
		c.ext = nil
	}
}

func (c *i2c) raise() {
	sr1 := c.sr1
	ev := sr1 & (1<<py32.I2C_SR1_SB | 1<<py32.I2C_SR1_ADDR | 1<<py32.I2C_SR1_BTF | 1<<py32.I2C_SR1_STOPF)
	buf := sr1 & (1<<py32.I2C_SR1_RXNE | 1<<py32.I2C_SR1_TXE)
	errs := sr1 & (1<<py32.I2C_SR1_BERR | 1<<py32.I2C_SR1_ARLO | 1<<py32.I2C_SR1_AF | 1<<py32.I2C_SR1_OVR)
	if c.cr2&(1<<py32.I2C_CR2_ITEVTEN) != 0 && (ev != 0 || buf != 0 && c.cr2&(1<<py32.I2C_CR2_ITBUFEN) != 0) ||
		c.cr2&(1<<py32.I2C_CR2_ITERREN) != 0 && errs != 0 {
		c.mc.nvic.raise(py32.IRQ_I2C1)
	}
}

// I2C is the test handle to the I2C model.
type I2C struct{ c *i2c }

// Bus returns the I2C model handle.
func Bus() I2C { return I2C{m.i2c} }

// Attach puts t on the bus at 7-bit address addr.
func (b I2C) Attach(addr uint8, t Target) { b.c.targets[addr] = t }

// Detach removes the target at addr.
func (b I2C) Detach(addr uint8) { delete(b.c.targets, addr) }

// Transcript returns and clears the bus log: S, Sr, P, "A 3C W ACK", "D 01 ACK".
func (b I2C) Transcript() []string {
	out := append([]string(nil), b.c.transcript...)
	b.c.transcript = b.c.transcript[:0]
	return out
}

// LoseArbitration makes the next START fail with ARLO.
func (b I2C) LoseArbitration() { b.c.loseArb = true }

// BusError raises BERR.
func (b I2C) BusError() { b.c.sr1 |= 1 << py32.I2C_SR1_BERR }

// MasterWrite starts an external master writing data to addr.
func (b I2C) MasterWrite(addr uint8, data []byte) {
	b.c.extDone = nil
	b.c.ext = &extMaster{addr: addr, write: append([]byte(nil), data...), wait: b.c.byteCycles()}
}

// MasterRead starts an external master reading n bytes from addr.
func (b I2C) MasterRead(addr uint8, n int) {
	b.c.extDone = nil
	b.c.ext = &extMaster{addr: addr, readN: n, wait: b.c.byteCycles()}
}

// MasterDone reports whether the external transfer finished, whether the
// address was acknowledged, and the bytes read.
func (b I2C) MasterDone() (done, acked bool, read []byte) {
	if b.c.ext != nil || b.c.extDone == nil {
		return false, false, nil
	}
	x := b.c.extDone
	return true, !x.nacked, x.got
}

// Memory is a register-file target: the first written byte sets the pointer,
// later writes store and advance, reads return and advance.
type Memory struct {
	Regs    [256]byte
	ptr     uint8
	fresh   bool
	NackAt  int // NACK the nth data byte written (1-based), 0 never
	written int
	Writes  [][]byte
	cur     []byte
}

func (mem *Memory) Start(read bool) {
	mem.fresh = !read
	mem.written = 0
	mem.cur = nil
}

func (mem *Memory) Write(b byte) bool {
	mem.written++
	if mem.NackAt != 0 && mem.written == mem.NackAt {
		return false
	}
	mem.cur = append(mem.cur, b)
	if mem.fresh {
		mem.ptr = b
		mem.fresh = false
		return true
	}
	mem.Regs[mem.ptr] = b
	mem.ptr++
	return true
}

func (mem *Memory) Read() byte {
	v := mem.Regs[mem.ptr]
	mem.ptr++
	return v
}

func (mem *Memory) Stop() {
	if mem.cur != nil {
		mem.Writes = append(mem.Writes, mem.cur)
		mem.cur = nil
	}
}
