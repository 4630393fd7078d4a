// Package dma drives the three-channel DMA controller.
//
// A channel is configured while disabled, started, and then either waited on
// with a bounded spin or awaited through a Future built on the irq bridge.
// Channel 1 has its own vector; channels 2 and 3 share one and each is
// serviced by its own flags.
package dma

import (
	"py32hal/core"
	"py32hal/device/py32"
	"py32hal/errcode"
	"py32hal/irq"
	"py32hal/periph"
	"py32hal/reg"
)

// Direction of a transfer.
type Direction uint8

const (
	PeriphToMem Direction = iota
	MemToPeriph
	MemToMem
)

type Priority uint8

const (
	PriorityLow Priority = iota
	PriorityMedium
	PriorityHigh
	PriorityVeryHigh
)

// Width is the size of one transfer unit.
type Width uint8

const (
	Width8 Width = iota
	Width16
	Width32
)

// Bytes returns the unit size in bytes.
func (w Width) Bytes() uint32 {
	return 1 << w
}

// Request selects the peripheral request routed to a channel.
type Request uint8

const (
	ReqADC      Request = py32.DMA_REQ_ADC
	ReqSPI1TX   Request = py32.DMA_REQ_SPI1_TX
	ReqSPI1RX   Request = py32.DMA_REQ_SPI1_RX
	ReqSPI2TX   Request = py32.DMA_REQ_SPI2_TX
	ReqSPI2RX   Request = py32.DMA_REQ_SPI2_RX
	ReqUSART1TX Request = py32.DMA_REQ_USART1_TX
	ReqUSART1RX Request = py32.DMA_REQ_USART1_RX
	ReqUSART2TX Request = py32.DMA_REQ_USART2_TX
	ReqUSART2RX Request = py32.DMA_REQ_USART2_RX
	ReqI2CTX    Request = py32.DMA_REQ_I2C_TX
	ReqI2CRX    Request = py32.DMA_REQ_I2C_RX
	ReqTIM1CH1  Request = py32.DMA_REQ_TIM1_CH1
	ReqTIM1UP   Request = py32.DMA_REQ_TIM1_UP
	ReqTIM3UP   Request = py32.DMA_REQ_TIM3_UP
	ReqTIM16UP  Request = py32.DMA_REQ_TIM16_UP
	ReqTIM17UP  Request = py32.DMA_REQ_TIM17_UP
)

// Events, in channel-local flag positions.
const (
	TransferComplete uint32 = 1 << py32.DMA_ISR_TCIF
	HalfTransfer     uint32 = 1 << py32.DMA_ISR_HTIF
	TransferError    uint32 = 1 << py32.DMA_ISR_TEIF

	allEvents = TransferComplete | HalfTransfer | TransferError
)

// Config describes one transfer.
type Config struct {
	Dir      Direction
	Priority Priority
	SrcWidth Width
	DstWidth Width
	Src, Dst uint32
	SrcInc   bool
	DstInc   bool
	Circular bool
	Count    uint16 // transfer units, not bytes
	Request  Request
}

var (
	block  = reg.Block(py32.DMA_BASE)
	syscfg = reg.Block(py32.SYSCFG_BASE)
)

// DMA owns the controller and hands out channels.
type DMA struct {
	tok   *periph.Token
	inUse uint8
	ch    [py32.DMA_CHANNELS]Channel
}

// New claims the DMA controller. SYSCFG is clocked as well since it holds the
// request map.
func New(tok *periph.Token) (*DMA, error) {
	if tok == nil || tok.ID() != periph.DMA {
		return nil, errcode.New(errcode.InvalidConfig, "dma.New", "token")
	}
	if err := tok.Claim(); err != nil {
		return nil, err
	}
	periph.SYSCFG.SetClock(true)
	d := &DMA{tok: tok}
	for i := range d.ch {
		c := &d.ch[i]
		c.d = d
		c.n = uint8(i + 1)
		c.inst = irq.DMA1 + irq.Instance(i)
		c.regs = block.At(py32.DMA_CCR1 + uint32(i)*py32.DMA_CH_STRIDE)
		irq.Register(c.inst, events{c})
	}
	return d, nil
}

// Channel claims channel n, 1 to 3.
func (d *DMA) Channel(n int) (*Channel, error) {
	if n < 1 || n > py32.DMA_CHANNELS {
		return nil, errcode.New(errcode.InvalidChannel, "dma.Channel", core.Itoa(n))
	}
	bit := uint8(1) << (n - 1)
	if d.inUse&bit != 0 {
		return nil, errcode.New(errcode.InUse, "dma.Channel", core.Itoa(n))
	}
	d.inUse |= bit
	return &d.ch[n-1], nil
}

// Close stops every channel and releases the controller.
func (d *DMA) Close() {
	for i := range d.ch {
		d.ch[i].Stop()
		irq.Register(d.ch[i].inst, nil)
	}
	d.inUse = 0
	d.tok.Release()
}

// Channel is one DMA channel.
type Channel struct {
	d    *DMA
	n    uint8
	inst irq.Instance
	regs reg.Register // CCR; CNDTR, CPAR, CMAR follow
}

func (c *Channel) ccr() reg.Register   { return c.regs }
func (c *Channel) cndtr() reg.Register { return c.regs + py32.DMA_CNDTR }
func (c *Channel) cpar() reg.Register  { return c.regs + py32.DMA_CPAR }
func (c *Channel) cmar() reg.Register  { return c.regs + py32.DMA_CMAR }
func (c *Channel) shift() uint8        { return 4 * (c.n - 1) }

// Number returns the channel number, 1 to 3.
func (c *Channel) Number() int { return int(c.n) }

// Configure disables the channel and programs cfg. The channel is left
// disabled; Start enables it.
func (c *Channel) Configure(cfg Config) error {
	if cfg.Count == 0 {
		return errcode.New(errcode.InvalidConfig, "dma.Configure", "count")
	}
	if cfg.SrcWidth > Width32 || cfg.DstWidth > Width32 {
		return errcode.New(errcode.InvalidConfig, "dma.Configure", "width")
	}
	c.Stop()

	ccr := uint32(cfg.Priority&3) << py32.DMA_CCR_PL_Pos
	var par, mar uint32
	var pinc, minc bool
	var psize, msize Width
	switch cfg.Dir {
	case MemToPeriph:
		ccr |= 1 << py32.DMA_CCR_DIR
		par, mar = cfg.Dst, cfg.Src
		pinc, minc = cfg.DstInc, cfg.SrcInc
		psize, msize = cfg.DstWidth, cfg.SrcWidth
	case MemToMem:
		ccr |= 1 << py32.DMA_CCR_MEM2MEM
		fallthrough
	default:
		par, mar = cfg.Src, cfg.Dst
		pinc, minc = cfg.SrcInc, cfg.DstInc
		psize, msize = cfg.SrcWidth, cfg.DstWidth
	}
	if pinc {
		ccr |= 1 << py32.DMA_CCR_PINC
	}
	if minc {
		ccr |= 1 << py32.DMA_CCR_MINC
	}
	if cfg.Circular {
		ccr |= 1 << py32.DMA_CCR_CIRC
	}
	ccr |= uint32(psize) << py32.DMA_CCR_PSIZE_Pos
	ccr |= uint32(msize) << py32.DMA_CCR_MSIZE_Pos

	if cfg.Dir != MemToMem {
		core.With(func() {
			syscfg.At(py32.SYSCFG_CFGR3).SetField(8*(c.n-1), py32.SYSCFG_CFGR3_DMA_MAP_Len, uint32(cfg.Request&0x1F))
		})
	}
	c.cpar().Set(par)
	c.cmar().Set(mar)
	c.cndtr().Set(uint32(cfg.Count))
	core.With(func() {
		// Keep interrupt enables a pending future may own.
		c.ccr().Set(ccr | c.ccr().Get()&allEvents)
	})
	c.ClearFlags(allEvents)
	return nil
}

// Start enables the channel. It fails with Busy while a transfer is in
// flight.
func (c *Channel) Start() error {
	if c.Active() {
		return errcode.New(errcode.Busy, "dma.Start", "channel "+core.Itoa(int(c.n)))
	}
	core.With(func() {
		// A finished run leaves EN set; cycle it so the counter reloads.
		c.ccr().ClearBit(py32.DMA_CCR_EN)
		c.ccr().SetBit(py32.DMA_CCR_EN)
	})
	core.RecordEvent(core.EvtDMAStart, uint8(c.inst), c.cndtr().Get(), 0)
	return nil
}

// Stop disables the channel. Remaining still reports where it stopped.
func (c *Channel) Stop() {
	core.With(func() {
		if c.ccr().Bit(py32.DMA_CCR_EN) {
			c.ccr().ClearBit(py32.DMA_CCR_EN)
			core.RecordEvent(core.EvtDMAStop, uint8(c.inst), c.cndtr().Get(), 0)
		}
	})
}

// Remaining returns the number of units still to transfer.
func (c *Channel) Remaining() uint16 {
	return uint16(c.cndtr().Get())
}

// Active reports whether a transfer is in flight.
func (c *Channel) Active() bool {
	return c.ccr().Bit(py32.DMA_CCR_EN) && c.Remaining() != 0
}

// Flags returns the channel's raised events.
func (c *Channel) Flags() uint32 {
	return block.At(py32.DMA_ISR).Get() >> c.shift() & allEvents
}

// ClearFlags clears the channel's events in m.
func (c *Channel) ClearFlags(m uint32) {
	block.At(py32.DMA_IFCR).Set((m & allEvents) << c.shift())
}

// WaitComplete spins until the transfer completes or fails, then stops the
// channel.
func (c *Channel) WaitComplete(budget uint32) error {
	var flags uint32
	err := core.SpinUntil(budget, "dma.WaitComplete", errcode.PhaseComplete, func() bool {
		flags = c.Flags() & (TransferComplete | TransferError)
		return flags != 0
	})
	c.Stop()
	if err != nil {
		return err
	}
	c.ClearFlags(flags)
	if flags&TransferError != 0 {
		return errcode.New(errcode.Transfer, "dma.WaitComplete", "channel "+core.Itoa(int(c.n)))
	}
	return nil
}

// Future waits for channel events. Cancelling it stops the channel.
type Future struct {
	irq.Future
	c *Channel
}

// Wait arms events (any of TransferComplete, HalfTransfer, TransferError) and
// returns a future yielding the subset that fired.
func (c *Channel) Wait(events uint32) *Future {
	f := &Future{c: c}
	f.Init(c.inst, events&allEvents)
	return f
}

// Cancel disarms the future and stops the channel.
func (f *Future) Cancel() {
	if !f.Done() {
		f.c.Stop()
	}
	f.Future.Cancel()
}

// Close stops the channel and gives it back to the controller.
func (c *Channel) Close() {
	c.Stop()
	core.With(func() {
		c.ccr().ClearBits(allEvents)
	})
	irq.Refresh(c.inst)
	c.d.inUse &^= 1 << (c.n - 1)
}

// Copy moves src into dst with a memory-to-memory transfer and waits for it.
// Only min(len(dst), len(src)) bytes move, at most 65535.
func (c *Channel) Copy(dst, src []byte) (int, error) {
	n := len(src)
	if len(dst) < n {
		n = len(dst)
	}
	if n == 0 {
		return 0, nil
	}
	if n > 0xFFFF {
		n = 0xFFFF
	}
	err := c.Configure(Config{
		Dir:      MemToMem,
		Priority: PriorityMedium,
		Src:      reg.AddrOf(src),
		Dst:      reg.AddrOf(dst),
		SrcInc:   true,
		DstInc:   true,
		Count:    uint16(n),
	})
	if err != nil {
		return 0, err
	}
	if err := c.Start(); err != nil {
		return 0, err
	}
	if err := c.WaitComplete(uint32(n)*4 + 64); err != nil {
		return n - int(c.Remaining()), err
	}
	return n, nil
}

// events exposes one channel's flags and enables to the bridge. TCIE, HTIE and
// TEIE sit at the same positions in CCR as the flags in the channel's ISR
// nibble.
type events struct{ c *Channel }

func (e events) Flags() uint32    { return e.c.Flags() }
func (e events) Clear(m uint32)   { e.c.ClearFlags(m) }
func (e events) Enabled() uint32  { return e.c.ccr().Get() & allEvents }
func (e events) Enable(m uint32)  { core.With(func() { e.c.ccr().SetBits(m & allEvents) }) }
func (e events) Disable(m uint32) { core.With(func() { e.c.ccr().ClearBits(m & allEvents) }) }
