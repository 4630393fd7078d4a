package usart

import (
	"py32hal/async"
	"py32hal/core"
	"py32hal/device/py32"
	"py32hal/dma"
	"py32hal/errcode"
	"py32hal/irq"
	"py32hal/reg"
)

// RX is the receive half of a port.
type RX struct {
	u  *USART
	ch *dma.Channel
}

func (r *RX) sr() reg.Register { return r.u.r(py32.USART_SR) }
func (r *RX) dr() reg.Register { return r.u.r(py32.USART_DR) }

// ReadByte waits for one byte. A byte received with an error is consumed and
// the error returned.
func (r *RX) ReadByte() (byte, error) {
	const op = "usart.ReadByte"
	var sr uint32
	err := core.SpinUntil(r.u.cfg.Timeout, op, errcode.PhaseRx, func() bool {
		sr = r.sr().Get()
		return sr&(FlagRXNE|errFlags) != 0
	})
	if err != nil {
		return 0, err
	}
	b := byte(r.dr().Get())
	if err := statusErr(sr, op); err != nil {
		return b, err
	}
	return b, nil
}

// Read fills p until it is full or the line stays quiet for one timeout after
// the first byte.
func (r *RX) Read(p []byte) (int, error) {
	for n := range p {
		b, err := r.ReadByte()
		if err != nil {
			if n > 0 && errcode.Of(err) == errcode.Timeout {
				return n, nil
			}
			return n, err
		}
		p[n] = b
	}
	return len(p), nil
}

// dropIdle clears a stale idle or error condition from earlier traffic.
func (r *RX) dropIdle() {
	if r.sr().Get()&readClears != 0 {
		r.dr().Get()
	}
}

func (r *RX) configureDMA(buf []byte, op string) error {
	if r.ch == nil {
		return errcode.New(errcode.InvalidConfig, op, "no rx dma channel")
	}
	if len(buf) > 0xFFFF {
		buf = buf[:0xFFFF]
	}
	return r.ch.Configure(dma.Config{
		Dir:      dma.PeriphToMem,
		Priority: dma.PriorityHigh,
		Src:      r.u.d.base.Addr(py32.USART_DR),
		Dst:      reg.AddrOf(buf),
		DstInc:   true,
		Count:    uint16(len(buf)),
		Request:  r.u.d.rxReq,
	})
}

func (r *RX) startDMA() error {
	r.u.r(py32.USART_CR3).SetBit(py32.USART_CR3_DMAR)
	return r.ch.Start()
}

func (r *RX) stopDMA() {
	r.ch.Stop()
	r.u.r(py32.USART_CR3).ClearBit(py32.USART_CR3_DMAR)
}

// ReadDMAIdleBlocking receives into buf by DMA until buf is full or the line
// goes idle for one frame, and returns the number of bytes received. The
// timeout budget restarts whenever a byte arrives.
func (r *RX) ReadDMAIdleBlocking(buf []byte) (int, error) {
	const op = "usart.ReadDMAIdleBlocking"
	if len(buf) == 0 {
		return 0, nil
	}
	if err := r.configureDMA(buf, op); err != nil {
		return 0, err
	}
	r.dropIdle()
	total := int(r.ch.Remaining())
	budget := r.u.cfg.Timeout
	left, last := budget, uint16(total)
	if err := r.startDMA(); err != nil {
		return 0, err
	}
	var sr uint32
	for {
		if flags := r.ch.Flags(); flags&(dma.TransferComplete|dma.TransferError) != 0 {
			r.stopDMA()
			r.ch.ClearFlags(flags)
			if flags&dma.TransferError != 0 {
				return total - int(r.ch.Remaining()), errcode.New(errcode.Transfer, op, errcode.PhaseRx)
			}
			return total, nil
		}
		sr = r.sr().Get()
		if sr&FlagIdle != 0 {
			break
		}
		if rem := r.ch.Remaining(); rem != last {
			last, left = rem, budget
		} else if left == 0 {
			r.stopDMA()
			return total - int(rem), errcode.New(errcode.Timeout, op, errcode.PhaseRx)
		}
		left--
		core.Relax()
	}
	r.stopDMA()
	n := total - int(r.ch.Remaining())
	r.ch.ClearFlags(dma.TransferComplete | dma.HalfTransfer | dma.TransferError)
	// SR was read last; this DR read completes the idle clear sequence.
	r.dr().Get()
	return n, statusErr(sr, op)
}

// ReadFuture is a DMA receive in flight. It yields the byte count and any
// error. Cancelling it stops the DMA channel.
type ReadFuture struct {
	r    *RX
	want int
	dma  *dma.Future
	ev   irq.Future
	res  async.Result[int]
	done bool
}

// ReadAsync receives exactly len(buf) bytes by DMA.
func (r *RX) ReadAsync(buf []byte) *ReadFuture {
	return r.read(buf, 0, "usart.ReadAsync")
}

// ReadIdle receives by DMA until buf is full or the line goes idle.
func (r *RX) ReadIdle(buf []byte) *ReadFuture {
	return r.read(buf, FlagIdle, "usart.ReadIdle")
}

func (r *RX) read(buf []byte, extra uint32, op string) *ReadFuture {
	f := &ReadFuture{r: r}
	if len(buf) == 0 {
		f.done = true
		return f
	}
	if err := r.configureDMA(buf, op); err != nil {
		f.res.Err, f.done = err, true
		return f
	}
	f.want = int(r.ch.Remaining())
	f.dma = r.ch.Wait(dma.TransferComplete | dma.TransferError)
	f.ev.Init(r.u.d.inst, errFlags|extra)
	if err := r.startDMA(); err != nil {
		f.finish()
		f.res.Err, f.done = err, true
	}
	return f
}

func (f *ReadFuture) Poll(cx *async.Context) (async.Result[int], bool) {
	if f.done {
		return f.res, true
	}
	if got, ok := f.dma.Poll(cx); ok {
		f.res.Val = f.want - int(f.r.ch.Remaining())
		if got&dma.TransferError != 0 {
			f.res.Err = errcode.New(errcode.Transfer, "usart.Read", errcode.PhaseRx)
		}
		f.finish()
		return f.res, true
	}
	if got, ok := f.ev.Poll(cx); ok {
		f.res.Val = f.want - int(f.r.ch.Remaining())
		f.res.Err = statusErr(got, "usart.Read")
		f.finish()
		return f.res, true
	}
	return async.Result[int]{}, false
}

func (f *ReadFuture) finish() {
	f.dma.Cancel()
	f.ev.Cancel()
	f.r.stopDMA()
	f.done = true
}

// Cancel stops the receive.
func (f *ReadFuture) Cancel() {
	if !f.done {
		f.finish()
	}
}
