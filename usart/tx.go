package usart

import (
	"py32hal/async"
	"py32hal/core"
	"py32hal/device/py32"
	"py32hal/dma"
	"py32hal/errcode"
	"py32hal/reg"
)

// TX is the transmit half of a port.
type TX struct {
	u  *USART
	ch *dma.Channel
}

func (t *TX) sr() reg.Register { return t.u.r(py32.USART_SR) }

// WriteByte queues one byte once the data register is free.
func (t *TX) WriteByte(b byte) error {
	err := core.SpinUntil(t.u.cfg.Timeout, "usart.WriteByte", errcode.PhaseTx, func() bool {
		return t.sr().Get()&FlagTXE != 0
	})
	if err != nil {
		return err
	}
	t.u.r(py32.USART_DR).Set(uint32(b))
	return nil
}

func (t *TX) Write(p []byte) (int, error) {
	for n, b := range p {
		if err := t.WriteByte(b); err != nil {
			return n, err
		}
	}
	return len(p), nil
}

// Flush waits until the last frame has left the shift register.
func (t *TX) Flush() error {
	return core.SpinUntil(t.u.cfg.Timeout, "usart.Flush", errcode.PhaseComplete, func() bool {
		return t.sr().Get()&FlagTC != 0
	})
}

// WriteFuture is a DMA transmit in flight. Cancelling it stops the DMA
// channel.
type WriteFuture struct {
	t    *TX
	want int
	dma  *dma.Future
	res  async.Result[int]
	done bool
}

// WriteAsync sends buf by DMA. The future completes when the last byte has
// been handed to the USART; Flush waits for it to leave the wire.
func (t *TX) WriteAsync(buf []byte) *WriteFuture {
	const op = "usart.WriteAsync"
	f := &WriteFuture{t: t}
	if len(buf) == 0 {
		f.done = true
		return f
	}
	if t.ch == nil {
		f.res.Err, f.done = errcode.New(errcode.InvalidConfig, op, "no tx dma channel"), true
		return f
	}
	if len(buf) > 0xFFFF {
		buf = buf[:0xFFFF]
	}
	err := t.ch.Configure(dma.Config{
		Dir:      dma.MemToPeriph,
		Priority: dma.PriorityMedium,
		Src:      reg.AddrOf(buf),
		SrcInc:   true,
		Dst:      t.u.d.base.Addr(py32.USART_DR),
		Count:    uint16(len(buf)),
		Request:  t.u.d.txReq,
	})
	if err != nil {
		f.res.Err, f.done = err, true
		return f
	}
	f.want = len(buf)
	f.dma = t.ch.Wait(dma.TransferComplete | dma.TransferError)
	t.sr().Set(^FlagTC & 0xFF)
	t.u.r(py32.USART_CR3).SetBit(py32.USART_CR3_DMAT)
	if err := t.ch.Start(); err != nil {
		f.finish()
		f.res.Err = err
	}
	return f
}

func (f *WriteFuture) Poll(cx *async.Context) (async.Result[int], bool) {
	if f.done {
		return f.res, true
	}
	got, ok := f.dma.Poll(cx)
	if !ok {
		return async.Result[int]{}, false
	}
	f.res.Val = f.want - int(f.t.ch.Remaining())
	if got&dma.TransferError != 0 {
		f.res.Err = errcode.New(errcode.Transfer, "usart.Write", errcode.PhaseTx)
	}
	f.finish()
	return f.res, true
}

func (f *WriteFuture) finish() {
	f.dma.Cancel()
	f.t.ch.Stop()
	f.t.u.r(py32.USART_CR3).ClearBit(py32.USART_CR3_DMAT)
	f.done = true
}

// Cancel stops the transmit.
func (f *WriteFuture) Cancel() {
	if !f.done {
		f.finish()
	}
}
