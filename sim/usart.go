//go:build !tinygo

package sim

import "py32hal/device/py32"

type rxByte struct {
	v     uint16
	flags uint32 // PE, FE, NE bits to raise with this byte
}

type usart struct {
	mc           *Machine
	addr         uint32
	irq          int
	txReq, rxReq uint32

	sr, rdr, brr, cr1, cr2, cr3 uint32
	srRead                      bool

	tdr       uint32
	tdrFull   bool
	shifting  bool
	shiftVal  uint32
	txWait    uint64
	rxQueue   []rxByte
	rxWait    uint64
	rxActive  bool
	idleArmed bool
	idleWait  uint64
	loopback  bool
	sent      []byte
}

func (u *usart) base() uint32 { return u.addr }
func (u *usart) size() uint32 { return 0x400 }

func (u *usart) reset() {
	*u = usart{mc: u.mc, addr: u.addr, irq: u.irq, txReq: u.txReq, rxReq: u.rxReq,
		rxQueue: u.rxQueue[:0], sent: u.sent[:0], loopback: u.loopback}
	u.sr = 1<<py32.USART_SR_TXE | 1<<py32.USART_SR_TC
}

func (u *usart) enabled(b uint) bool { return u.cr1&(1<<py32.USART_CR1_UE) != 0 && u.cr1&(1<<b) != 0 }

func (u *usart) load(off uint32) uint32 {
	switch off {
	case py32.USART_SR:
		u.srRead = true
		return u.sr
	case py32.USART_DR:
		v := u.rdr
		u.sr &^= 1 << py32.USART_SR_RXNE
		if u.srRead {
			u.sr &^= 1<<py32.USART_SR_PE | 1<<py32.USART_SR_FE | 1<<py32.USART_SR_NE |
				1<<py32.USART_SR_ORE | 1<<py32.USART_SR_IDLE
			u.srRead = false
		}
		return v
	case py32.USART_BRR:
		return u.brr
	case py32.USART_CR1:
		return u.cr1
	case py32.USART_CR2:
		return u.cr2
	case py32.USART_CR3:
		return u.cr3
	}
	return 0
}

func (u *usart) store(off, v uint32) {
	switch off {
	case py32.USART_SR:
		const w0 = 1<<py32.USART_SR_RXNE | 1<<py32.USART_SR_TC
		u.sr &= v | ^uint32(w0)
	case py32.USART_DR:
		if u.srRead {
			u.sr &^= 1 << py32.USART_SR_TC
			u.srRead = false
		}
		if !u.enabled(py32.USART_CR1_TE) {
			return
		}
		u.sr &^= 1 << py32.USART_SR_TC
		if !u.shifting {
			u.startShift(v)
		} else {
			u.tdr = v
			u.tdrFull = true
			u.sr &^= 1 << py32.USART_SR_TXE
		}
	case py32.USART_BRR:
		u.brr = v & 0xFFFF
	case py32.USART_CR1:
		u.cr1 = v
	case py32.USART_CR2:
		u.cr2 = v
	case py32.USART_CR3:
		u.cr3 = v
	}
}

// frameCycles is the duration of one frame in HCLK cycles.
func (u *usart) frameCycles() uint64 {
	bit := uint64(u.brr)
	if u.cr1&(1<<py32.USART_CR1_OVER8) != 0 {
		bit = uint64(u.brr>>4)*8 + uint64(u.brr&7)
	}
	if bit == 0 {
		bit = 16
	}
	bits := uint64(10)
	if u.cr1&(1<<py32.USART_CR1_M) != 0 {
		bits++
	}
	if u.cr2>>py32.USART_CR2_STOP_Pos&3 == 2 {
		bits++
	}
	return bit * bits * uint64(u.mc.rcc.hclk) / uint64(u.mc.rcc.pclk)
}

func (u *usart) startShift(v uint32) {
	u.shifting = true
	u.shiftVal = v
	u.txWait = u.frameCycles()
}

func (u *usart) step(cycles uint32) {
	c := uint64(cycles)
	if u.shifting {
		if u.txWait <= c {
			u.shifting = false
			u.sent = append(u.sent, byte(u.shiftVal))
			if u.loopback {
				u.rxQueue = append(u.rxQueue, rxByte{v: uint16(u.shiftVal)})
			}
			if u.tdrFull {
				u.tdrFull = false
				u.sr |= 1 << py32.USART_SR_TXE
				u.startShift(u.tdr)
			} else {
				u.sr |= 1 << py32.USART_SR_TC
			}
		} else {
			u.txWait -= c
		}
	}
	u.stepRx(c)
	u.raise()
}

func (u *usart) stepRx(c uint64) {
	if !u.enabled(py32.USART_CR1_RE) {
		return
	}
	if len(u.rxQueue) > 0 {
		if !u.rxActive {
			u.rxActive = true
			u.rxWait = u.frameCycles()
		}
		if u.rxWait > c {
			u.rxWait -= c
			return
		}
		b := u.rxQueue[0]
		u.rxQueue = u.rxQueue[1:]
		u.rxActive = false
		if u.sr&(1<<py32.USART_SR_RXNE) != 0 {
			u.sr |= 1 << py32.USART_SR_ORE
		} else {
			mask := uint32(0xFF)
			if u.cr1&(1<<py32.USART_CR1_M) != 0 {
				mask = 0x1FF
			}
			u.rdr = uint32(b.v) & mask
			u.sr |= 1<<py32.USART_SR_RXNE | b.flags
		}
		u.idleArmed = true
		u.idleWait = u.frameCycles()
		return
	}
	if u.idleArmed {
		if u.idleWait > c {
			u.idleWait -= c
			return
		}
		u.idleArmed = false
		u.sr |= 1 << py32.USART_SR_IDLE
	}
}

func (u *usart) raise() {
	sr, cr1 := u.sr, u.cr1
	on := func(flag, en uint) bool { return sr&(1<<flag) != 0 && cr1&(1<<en) != 0 }
	if on(py32.USART_SR_TXE, py32.USART_CR1_TXEIE) ||
		on(py32.USART_SR_TC, py32.USART_CR1_TCIE) ||
		on(py32.USART_SR_RXNE, py32.USART_CR1_RXNEIE) ||
		on(py32.USART_SR_ORE, py32.USART_CR1_RXNEIE) ||
		on(py32.USART_SR_IDLE, py32.USART_CR1_IDLEIE) ||
		on(py32.USART_SR_PE, py32.USART_CR1_PEIE) ||
		(u.cr3&(1<<py32.USART_CR3_EIE) != 0 && sr&(1<<py32.USART_SR_FE|1<<py32.USART_SR_NE|1<<py32.USART_SR_ORE) != 0) {
		u.mc.nvic.raise(u.irq)
	}
}

func (u *usart) txRequest() bool {
	return u.cr3&(1<<py32.USART_CR3_DMAT) != 0 && u.sr&(1<<py32.USART_SR_TXE) != 0 && u.enabled(py32.USART_CR1_TE) && !u.tdrFull
}

func (u *usart) rxRequest() bool {
	return u.cr3&(1<<py32.USART_CR3_DMAR) != 0 && u.sr&(1<<py32.USART_SR_RXNE) != 0
}

// USART is the test handle to a USART model.
type USART struct{ u *usart }

// Serial returns USART1 (n=1) or USART2 (n=2).
func Serial(n int) USART { return USART{m.usarts[n-1]} }

// Inject queues bytes on the RX line, sent back to back.
func (s USART) Inject(b ...byte) {
	for _, v := range b {
		s.u.rxQueue = append(s.u.rxQueue, rxByte{v: uint16(v)})
	}
}

// Error flags for InjectError.
const (
	ErrParity = 1 << py32.USART_SR_PE
	ErrFrame  = 1 << py32.USART_SR_FE
	ErrNoise  = 1 << py32.USART_SR_NE
)

// InjectError queues one byte received with the given error flags.
func (s USART) InjectError(v byte, flags uint32) {
	s.u.rxQueue = append(s.u.rxQueue, rxByte{v: uint16(v), flags: flags})
}

// Sent returns and clears everything shifted out on TX.
func (s USART) Sent() []byte {
	out := append([]byte(nil), s.u.sent...)
	s.u.sent = s.u.sent[:0]
	return out
}

// SetLoopback wires TX back into RX.
func (s USART) SetLoopback(on bool) { s.u.loopback = on }

// Pending reports bytes still queued on RX.
func (s USART) Pending() int { return len(s.u.rxQueue) }

// Baud returns the rate the programmed BRR produces at the current PCLK.
func (s USART) Baud() uint32 {
	u := s.u
	bit := u.brr
	if u.cr1&(1<<py32.USART_CR1_OVER8) != 0 {
		bit = (u.brr>>4)*8 + u.brr&7
	}
	if bit == 0 {
		return 0
	}
	return u.mc.rcc.pclk / bit
}
