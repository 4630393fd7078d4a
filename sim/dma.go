//go:build !tinygo

package sim

import "py32hal/device/py32"

type dmaChannel struct {
	ccr, cndtr, cpar, cmar uint32

	reload     uint32
	pAddr      uint32
	mAddr      uint32
	failNext   bool
	transfers  uint64
	remainings []uint32 // CNDTR after each transfer, for tests
}

type dma struct {
	mc  *Machine
	isr uint32
	ch  [py32.DMA_CHANNELS]dmaChannel
}

func (d *dma) base() uint32 { return py32.DMA_BASE }
func (d *dma) size() uint32 { return 0x400 }

func (d *dma) reset() {
	*d = dma{mc: d.mc}
}

func (d *dma) chanOf(off uint32) (int, uint32, bool) {
	if off < py32.DMA_CCR1 {
		return 0, 0, false
	}
	n := int((off - py32.DMA_CCR1) / py32.DMA_CH_STRIDE)
	if n >= py32.DMA_CHANNELS {
		return 0, 0, false
	}
	return n, (off - py32.DMA_CCR1) % py32.DMA_CH_STRIDE, true
}

func (d *dma) load(off uint32) uint32 {
	if off == py32.DMA_ISR {
		return d.isr
	}
	n, reg, ok := d.chanOf(off)
	if !ok {
		return 0
	}
	c := &d.ch[n]
	switch reg {
	case py32.DMA_CCR:
		return c.ccr
	case py32.DMA_CNDTR:
		return c.cndtr
	case py32.DMA_CPAR:
		return c.cpar
	case py32.DMA_CMAR:
		return c.cmar
	}
	return 0
}

func (d *dma) store(off, v uint32) {
	if off == py32.DMA_IFCR {
		for n := 0; n < py32.DMA_CHANNELS; n++ {
			sh := uint(4 * n)
			if v>>sh&1 != 0 {
				d.isr &^= 0xF << sh
			} else {
				d.isr &^= v & (0xE << sh)
			}
		}
		d.refreshGIF()
		return
	}
	n, reg, ok := d.chanOf(off)
	if !ok {
		return
	}
	c := &d.ch[n]
	enabled := c.ccr&(1<<py32.DMA_CCR_EN) != 0
	switch reg {
	case py32.DMA_CCR:
		if enabled {
			// Only EN and the interrupt enables are writable while running.
			const live = 1<<py32.DMA_CCR_EN | 1<<py32.DMA_CCR_TCIE | 1<<py32.DMA_CCR_HTIE | 1<<py32.DMA_CCR_TEIE
			c.ccr = c.ccr&^live | v&live
			return
		}
		c.ccr = v & 0x7FFF
		if c.ccr&(1<<py32.DMA_CCR_EN) != 0 {
			c.reload = c.cndtr
			c.pAddr, c.mAddr = c.cpar, c.cmar
			c.remainings = c.remainings[:0]
		}
	case py32.DMA_CNDTR:
		if !enabled {
			c.cndtr = v & 0xFFFF
		}
	case py32.DMA_CPAR:
		if !enabled {
			c.cpar = v
		}
	case py32.DMA_CMAR:
		if !enabled {
			c.cmar = v
		}
	}
}

func (d *dma) refreshGIF() {
	for n := 0; n < py32.DMA_CHANNELS; n++ {
		sh := uint(4 * n)
		if d.isr&(0xE<<sh) != 0 {
			d.isr |= 1 << sh
		} else {
			d.isr &^= 1 << sh
		}
	}
}

var sizeBytes = [4]uint32{1, 2, 4, 4}

func (d *dma) requestLine(n int) uint32 {
	cfgr3 := d.mc.mem[py32.SYSCFG_BASE+py32.SYSCFG_CFGR3]
	return cfgr3 >> (8 * uint(n)) & 0x1F
}

func (d *dma) step(uint32) {
	for n := range d.ch {
		c := &d.ch[n]
		if c.ccr&(1<<py32.DMA_CCR_EN) == 0 || c.cndtr == 0 {
			continue
		}
		if c.failNext {
			c.failNext = false
			c.ccr &^= 1 << py32.DMA_CCR_EN
			d.isr |= 1 << (4*uint(n) + py32.DMA_ISR_TEIF)
			d.refreshGIF()
			continue
		}
		m2m := c.ccr&(1<<py32.DMA_CCR_MEM2MEM) != 0
		if !m2m && !d.mc.dmaRequest(d.requestLine(n)) {
			continue
		}
		d.transfer(n, c)
	}
	d.raise()
}

func (d *dma) transfer(n int, c *dmaChannel) {
	psize := sizeBytes[c.ccr>>py32.DMA_CCR_PSIZE_Pos&3]
	msize := sizeBytes[c.ccr>>py32.DMA_CCR_MSIZE_Pos&3]
	if c.ccr&(1<<py32.DMA_CCR_DIR) != 0 {
		v := d.mc.loadN(c.mAddr, msize)
		d.mc.storeN(c.pAddr, psize, v)
	} else {
		v := d.mc.loadN(c.pAddr, psize)
		d.mc.storeN(c.mAddr, msize, v)
	}
	if c.ccr&(1<<py32.DMA_CCR_PINC) != 0 {
		c.pAddr += psize
	}
	if c.ccr&(1<<py32.DMA_CCR_MINC) != 0 {
		c.mAddr += msize
	}
	c.cndtr--
	c.transfers++
	c.remainings = append(c.remainings, c.cndtr)
	sh := 4 * uint(n)
	if c.cndtr == c.reload/2 {
		d.isr |= 1 << (sh + py32.DMA_ISR_HTIF)
	}
	if c.cndtr == 0 {
		d.isr |= 1 << (sh + py32.DMA_ISR_TCIF)
		if c.ccr&(1<<py32.DMA_CCR_CIRC) != 0 {
			c.cndtr = c.reload
			c.pAddr, c.mAddr = c.cpar, c.cmar
		}
	}
	d.refreshGIF()
}

func (d *dma) raise() {
	for n := range d.ch {
		sh := 4 * uint(n)
		if d.isr>>sh&0xE&d.ch[n].ccr != 0 {
			if n == 0 {
				d.mc.nvic.raise(py32.IRQ_DMA1_CHANNEL1)
			} else {
				d.mc.nvic.raise(py32.IRQ_DMA1_CHANNEL2_3)
			}
		}
	}
}

// dmaRequest asks the peripheral behind request line req whether it wants a
// transfer now.
func (mc *Machine) dmaRequest(req uint32) bool {
	switch req {
	case py32.DMA_REQ_USART1_TX:
		return mc.usarts[0].txRequest()
	case py32.DMA_REQ_USART1_RX:
		return mc.usarts[0].rxRequest()
	case py32.DMA_REQ_USART2_TX:
		return mc.usarts[1].txRequest()
	case py32.DMA_REQ_USART2_RX:
		return mc.usarts[1].rxRequest()
	case py32.DMA_REQ_SPI1_TX:
		return mc.spis[0].txRequest()
	case py32.DMA_REQ_SPI1_RX:
		return mc.spis[0].rxRequest()
	case py32.DMA_REQ_SPI2_TX:
		return mc.spis[1].txRequest()
	case py32.DMA_REQ_SPI2_RX:
		return mc.spis[1].rxRequest()
	case py32.DMA_REQ_ADC:
		return mc.adc.dmaRequest()
	}
	return false
}

// DMAChannel is the test handle to one channel (1-based).
type DMAChannel struct{ n int }

// DMA returns the handle for channel n, 1 to 3.
func DMA(n int) DMAChannel { return DMAChannel{n - 1} }

// FailNext makes the channel's next transfer raise a transfer error.
func (c DMAChannel) FailNext() { m.dma.ch[c.n].failNext = true }

// Remainings returns CNDTR after every transfer of the current run.
func (c DMAChannel) Remainings() []uint32 {
	return append([]uint32(nil), m.dma.ch[c.n].remainings...)
}

// Transfers counts units moved since reset.
func (c DMAChannel) Transfers() uint64 { return m.dma.ch[c.n].transfers }

// Enabled reports the channel EN bit.
func (c DMAChannel) Enabled() bool {
	return m.dma.ch[c.n].ccr&(1<<py32.DMA_CCR_EN) != 0
}
