package i2c

import (
	"py32hal/async"
	"py32hal/errcode"
	"py32hal/irq"
)

// Future is a master transfer driven from the I2C interrupt. The bus stays
// busy for blocking calls until it completes or is cancelled.
type Future struct {
	t     txn
	ev    irq.Future
	armed bool
	err   error
	done  bool
}

// WriteAsync writes w to the device at addr.
func (i *I2C) WriteAsync(addr uint16, w []byte) *Future {
	return i.TxAsync(addr, w, nil)
}

// ReadAsync reads len(r) bytes from the device at addr.
func (i *I2C) ReadAsync(addr uint16, r []byte) *Future {
	return i.TxAsync(addr, nil, r)
}

// TxAsync is the interrupt-driven form of Tx.
func (i *I2C) TxAsync(addr uint16, w, r []byte) *Future {
	const op = "i2c.TxAsync"
	f := &Future{}
	if i.busy {
		f.err, f.done = errcode.New(errcode.Busy, op, "async transfer"), true
		return f
	}
	t, err := i.newTxn(op, addr, w, r)
	if err != nil {
		f.err, f.done = err, true
		return f
	}
	f.t = t
	i.busy = true
	f.step()
	return f
}

// step advances the transfer and arms the interrupt for whatever it needs
// next.
func (f *Future) step() {
	want, err := f.t.advance()
	if err != nil || want == 0 {
		f.finish(err)
		return
	}
	f.ev.Init(irq.I2C, want|errFlags)
	f.armed = true
}

func (f *Future) Poll(cx *async.Context) (error, bool) {
	for !f.done {
		if _, ok := f.ev.Poll(cx); !ok {
			return nil, false
		}
		f.armed = false
		f.step()
	}
	return f.err, true
}

func (f *Future) finish(err error) {
	if f.armed {
		f.ev.Cancel()
		f.armed = false
	}
	events{regs}.Disable(evFlags | bufFlags | errFlags)
	irq.Refresh(irq.I2C)
	f.err = err
	f.done = true
	f.t.i.busy = false
}

// Cancel abandons the transfer with a STOP.
func (f *Future) Cancel() {
	if f.done {
		return
	}
	f.t.abort()
	f.finish(errcode.New(errcode.Timeout, f.t.op, "canceled"))
}
