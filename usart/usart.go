// Package usart drives USART1 and USART2: blocking byte I/O, DMA receive
// terminated by an idle line, and async DMA halves.
package usart

import (
	"py32hal/core"
	"py32hal/device/py32"
	"py32hal/dma"
	"py32hal/errcode"
	"py32hal/gpio"
	"py32hal/irq"
	"py32hal/periph"
	"py32hal/rcc"
	"py32hal/reg"
)

type StopBits uint8

const (
	Stop1 StopBits = iota
	Stop2
)

type DataBits uint8

const (
	Data8 DataBits = iota
	Data9
)

type Parity uint8

const (
	ParityNone Parity = iota
	ParityEven
	ParityOdd
)

type Oversampling uint8

const (
	Over16 Oversampling = iota
	Over8
)

// Config for a USART. Timeout is the spin budget of each blocking wait; zero
// uses core.DefaultSpinBudget.
type Config struct {
	Baud         uint32
	StopBits     StopBits
	DataBits     DataBits
	Parity       Parity
	Oversampling Oversampling
	Timeout      uint32
}

// DefaultConfig is 115200 8N1.
func DefaultConfig() Config {
	return Config{Baud: 115200, Timeout: 100000}
}

// Status flags, in SR bit positions. They double as event masks for the
// interrupt bridge.
const (
	FlagParity  uint32 = 1 << py32.USART_SR_PE
	FlagFrame   uint32 = 1 << py32.USART_SR_FE
	FlagNoise   uint32 = 1 << py32.USART_SR_NE
	FlagOverrun uint32 = 1 << py32.USART_SR_ORE
	FlagIdle    uint32 = 1 << py32.USART_SR_IDLE
	FlagRXNE    uint32 = 1 << py32.USART_SR_RXNE
	FlagTC      uint32 = 1 << py32.USART_SR_TC
	FlagTXE     uint32 = 1 << py32.USART_SR_TXE

	errFlags   = FlagParity | FlagFrame | FlagNoise | FlagOverrun
	cr1Events  = FlagIdle | FlagRXNE | FlagTC | FlagTXE // CR1 enables share SR positions
	readClears = errFlags | FlagIdle                    // cleared by SR then DR read
)

type desc struct {
	id           periph.ID
	inst         irq.Instance
	base         reg.Block
	rxReq, txReq dma.Request
}

var (
	usart1 = desc{periph.USART1, irq.USART1, reg.Block(py32.USART1_BASE), dma.ReqUSART1RX, dma.ReqUSART1TX}
	usart2 = desc{periph.USART2, irq.USART2, reg.Block(py32.USART2_BASE), dma.ReqUSART2RX, dma.ReqUSART2TX}
)

// USART is one full-duplex port.
type USART struct {
	d    *desc
	tok  *periph.Token
	cfg  Config
	pins [2]*gpio.IO
	rx   RX
	tx   TX
}

// NewUSART1 claims USART1 on the given pins.
func NewUSART1(tok *periph.Token, rx gpio.USART1RXPin, tx gpio.USART1TXPin, cfg Config) (*USART, error) {
	return open(&usart1, tok, rx, rx.USART1RX(), tx, tx.USART1TX(), cfg)
}

// NewUSART2 claims USART2 on the given pins.
func NewUSART2(tok *periph.Token, rx gpio.USART2RXPin, tx gpio.USART2TXPin, cfg Config) (*USART, error) {
	return open(&usart2, tok, rx, rx.USART2RX(), tx, tx.USART2TX(), cfg)
}

func open(d *desc, tok *periph.Token, rx gpio.Pin, rxAF gpio.AF, tx gpio.Pin, txAF gpio.AF, cfg Config) (*USART, error) {
	const op = "usart.New"
	if tok == nil || tok.ID() != d.id {
		return nil, errcode.New(errcode.InvalidConfig, op, "token")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := tok.Claim(); err != nil {
		return nil, err
	}
	u := &USART{d: d, tok: tok, cfg: cfg}
	u.rx.u, u.tx.u = u, u
	var err error
	if u.pins[0], err = gpio.NewAltFn(rx, rxAF, gpio.PushPull, gpio.PullUp, gpio.SpeedHigh); err != nil {
		tok.Release()
		return nil, err
	}
	if u.pins[1], err = gpio.NewAltFn(tx, txAF, gpio.PushPull, gpio.PullUp, gpio.SpeedHigh); err != nil {
		u.pins[0].Close()
		tok.Release()
		return nil, err
	}
	if err := u.Configure(cfg); err != nil {
		u.Close()
		return nil, err
	}
	irq.Register(d.inst, events{d.base})
	return u, nil
}

func (u *USART) r(off uint32) reg.Register { return u.d.base.At(off) }

// Validate checks the framing options. The baud rate is checked against the
// live clock by Configure.
func (cfg Config) Validate() error {
	const op = "usart.Config"
	switch {
	case cfg.Baud == 0:
		return errcode.New(errcode.InvalidFrequency, op, "baud")
	case cfg.StopBits > Stop2, cfg.DataBits > Data9, cfg.Parity > ParityOdd, cfg.Oversampling > Over8:
		return errcode.New(errcode.InvalidConfig, op, "framing")
	case cfg.DataBits == Data9 && cfg.Parity != ParityNone:
		return errcode.New(errcode.InvalidConfig, op, "9 data bits with parity")
	}
	return nil
}

// BRR returns the baud rate register value for baud at clock f, and the rate
// it actually produces.
func BRR(f, baud uint32, ovs Oversampling) (brr, actual uint32, err error) {
	if baud == 0 || f == 0 {
		return 0, 0, errcode.New(errcode.InvalidFrequency, "usart.BRR", "baud")
	}
	// Bit time in clock cycles, rounded; mantissa and fraction fall out of it.
	div := core.RoundDiv(f, baud)
	lo := uint32(16)
	if ovs == Over8 {
		lo = 8
	}
	if div < lo || div > 0xFFFF {
		return 0, 0, errcode.New(errcode.InvalidFrequency, "usart.BRR", core.Utoa(baud))
	}
	brr = div
	if ovs == Over8 {
		brr = div>>3<<4 | div&7
	}
	actual = f / div
	if core.AbsDiff(actual, baud)*100 > baud*3 {
		return 0, 0, errcode.New(errcode.InvalidFrequency, "usart.BRR", core.Utoa(baud))
	}
	return brr, actual, nil
}

// Configure applies cfg with the peripheral disabled, then enables the
// transmitter and receiver.
func (u *USART) Configure(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	brr, _, err := BRR(rcc.Current().PCLK, cfg.Baud, cfg.Oversampling)
	if err != nil {
		return err
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = core.DefaultSpinBudget
	}
	u.cfg = cfg
	cr1 := u.r(py32.USART_CR1)
	cr1.ClearBit(py32.USART_CR1_UE)
	u.r(py32.USART_BRR).Set(brr)
	u.r(py32.USART_CR2).SetField(py32.USART_CR2_STOP_Pos, py32.USART_CR2_STOP_Len, uint32(cfg.StopBits)<<1)

	var v uint32 = 1<<py32.USART_CR1_TE | 1<<py32.USART_CR1_RE
	if cfg.DataBits == Data9 || cfg.Parity != ParityNone {
		v |= 1 << py32.USART_CR1_M
	}
	if cfg.Parity != ParityNone {
		v |= 1 << py32.USART_CR1_PCE
		if cfg.Parity == ParityOdd {
			v |= 1 << py32.USART_CR1_PS
		}
	}
	if cfg.Oversampling == Over8 {
		v |= 1 << py32.USART_CR1_OVER8
	}
	cr1.Set(v)
	cr1.SetBit(py32.USART_CR1_UE)
	return nil
}

// Config returns the active configuration.
func (u *USART) Config() Config { return u.cfg }

// AttachDMA hands DMA channels to the port for DMA receive and the async
// halves. Either may be nil. Close releases them.
func (u *USART) AttachDMA(rx, tx *dma.Channel) {
	u.rx.ch = rx
	u.tx.ch = tx
}

// Split returns the receive and transmit halves. They share the port; each
// may be driven from its own task.
func (u *USART) Split() (*RX, *TX) {
	return &u.rx, &u.tx
}

func (u *USART) ReadByte() (byte, error)     { return u.rx.ReadByte() }
func (u *USART) Read(p []byte) (int, error)  { return u.rx.Read(p) }
func (u *USART) WriteByte(b byte) error      { return u.tx.WriteByte(b) }
func (u *USART) Write(p []byte) (int, error) { return u.tx.Write(p) }
func (u *USART) Flush() error                { return u.tx.Flush() }
func (u *USART) ReadDMAIdleBlocking(buf []byte) (int, error) {
	return u.rx.ReadDMAIdleBlocking(buf)
}

// Close disables the port, frees its pins and DMA channels and releases the
// peripheral.
func (u *USART) Close() {
	u.r(py32.USART_CR1).Set(0)
	u.r(py32.USART_CR3).Set(0)
	irq.Register(u.d.inst, nil)
	for _, ch := range []*dma.Channel{u.rx.ch, u.tx.ch} {
		if ch != nil {
			ch.Close()
		}
	}
	u.rx.ch, u.tx.ch = nil, nil
	for i, io := range u.pins {
		if io != nil {
			io.Close()
			u.pins[i] = nil
		}
	}
	u.tok.Release()
}

// statusErr maps error flags in sr to an error. Overrun wins over the
// per-byte errors.
func statusErr(sr uint32, op string) error {
	switch {
	case sr&FlagOverrun != 0:
		return errcode.New(errcode.Overrun, op, errcode.PhaseRx)
	case sr&FlagFrame != 0:
		return errcode.New(errcode.Frame, op, errcode.PhaseRx)
	case sr&FlagNoise != 0:
		return errcode.New(errcode.Noise, op, errcode.PhaseRx)
	case sr&FlagParity != 0:
		return errcode.New(errcode.Parity, op, errcode.PhaseRx)
	}
	return nil
}

type events struct{ b reg.Block }

func (e events) Flags() uint32 { return e.b.At(py32.USART_SR).Get() & 0xFF }

func (e events) Clear(m uint32) {
	if m&readClears != 0 {
		e.b.At(py32.USART_SR).Get()
		e.b.At(py32.USART_DR).Get()
	}
	if w := m & (FlagRXNE | FlagTC); w != 0 {
		e.b.At(py32.USART_SR).Set(^w & 0xFF)
	}
}

func (e events) Enabled() uint32 {
	cr1 := e.b.At(py32.USART_CR1).Get()
	m := cr1 & cr1Events
	if cr1&(1<<py32.USART_CR1_PEIE) != 0 {
		m |= FlagParity
	}
	if e.b.At(py32.USART_CR3).Bit(py32.USART_CR3_EIE) {
		m |= FlagFrame | FlagNoise | FlagOverrun
	}
	return m
}

func (e events) Enable(m uint32) {
	core.With(func() {
		e.b.At(py32.USART_CR1).SetBits(cr1Bits(m))
		if m&(FlagFrame|FlagNoise|FlagOverrun) != 0 {
			e.b.At(py32.USART_CR3).SetBit(py32.USART_CR3_EIE)
		}
	})
}

func (e events) Disable(m uint32) {
	core.With(func() {
		e.b.At(py32.USART_CR1).ClearBits(cr1Bits(m))
		if m&(FlagFrame|FlagNoise|FlagOverrun) != 0 {
			e.b.At(py32.USART_CR3).ClearBit(py32.USART_CR3_EIE)
		}
	})
}

func cr1Bits(m uint32) uint32 {
	v := m & cr1Events
	if m&FlagParity != 0 {
		v |= 1 << py32.USART_CR1_PEIE
	}
	return v
}
