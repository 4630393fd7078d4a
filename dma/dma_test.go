package dma

import (
	"bytes"
	"testing"

	"py32hal/async"
	"py32hal/device/py32"
	"py32hal/errcode"
	"py32hal/irq"
	"py32hal/periph"
	"py32hal/reg"
	"py32hal/sim"
)

func setup(t *testing.T) *DMA {
	t.Helper()
	sim.Reset()
	async.Reset()
	periph.ResetClaims()
	d, err := New(periph.NewRegistry().DMA)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(d.Close)
	return d
}

func channel(t *testing.T, d *DMA, n int) *Channel {
	t.Helper()
	c, err := d.Channel(n)
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func m2m(dst, src []byte) Config {
	return Config{
		Dir:    MemToMem,
		Src:    reg.AddrOf(src),
		Dst:    reg.AddrOf(dst),
		SrcInc: true,
		DstInc: true,
		Count:  uint16(len(src)),
	}
}

func TestNewNeedsDMAToken(t *testing.T) {
	sim.Reset()
	periph.ResetClaims()
	if _, err := New(periph.NewRegistry().CRC); errcode.Of(err) != errcode.InvalidConfig {
		t.Errorf("New(CRC token) err = %v", err)
	}
	d := setup(t)
	if !periph.DMA.ClockOn() || !periph.SYSCFG.ClockOn() {
		t.Error("DMA or SYSCFG clock off after New")
	}
	_ = d
}

func TestChannelClaims(t *testing.T) {
	d := setup(t)
	tests := []struct {
		n    int
		want errcode.Code
	}{
		{0, errcode.InvalidChannel},
		{4, errcode.InvalidChannel},
		{1, ""},
		{1, errcode.InUse},
		{3, ""},
	}
	for _, tt := range tests {
		_, err := d.Channel(tt.n)
		if errcode.Of(err) != tt.want && !(tt.want == "" && err == nil) {
			t.Errorf("Channel(%d) err = %v, want %q", tt.n, err, tt.want)
		}
	}
	c, _ := d.Channel(2)
	c.Close()
	if _, err := d.Channel(2); err != nil {
		t.Errorf("Channel(2) after Close: %v", err)
	}
}

func TestCopy(t *testing.T) {
	d := setup(t)
	c := channel(t, d, 1)
	src := []byte("the quick brown fox jumps")
	dst := make([]byte, len(src))
	n, err := c.Copy(dst, src)
	if err != nil {
		t.Fatal(err)
	}
	if n != len(src) || !bytes.Equal(dst, src) {
		t.Errorf("Copy = %d %q, want %q", n, dst, src)
	}
	if sim.DMA(1).Enabled() {
		t.Error("channel left enabled after Copy")
	}
	// Short destination bounds the copy.
	short := make([]byte, 4)
	if n, _ := c.Copy(short, src); n != 4 || string(short) != "the " {
		t.Errorf("short Copy = %d %q", n, short)
	}
	if n, err := c.Copy(nil, src); n != 0 || err != nil {
		t.Errorf("empty Copy = %d, %v", n, err)
	}
}

func TestRemainingCountsDown(t *testing.T) {
	d := setup(t)
	c := channel(t, d, 2)
	src := make([]byte, 16)
	dst := make([]byte, 16)
	if err := c.Configure(m2m(dst, src)); err != nil {
		t.Fatal(err)
	}
	if c.Remaining() != 16 {
		t.Fatalf("Remaining before start = %d", c.Remaining())
	}
	if err := c.Start(); err != nil {
		t.Fatal(err)
	}
	if err := c.WaitComplete(0); err != nil {
		t.Fatal(err)
	}
	got := sim.DMA(2).Remainings()
	if len(got) != 16 {
		t.Fatalf("%d transfers, want 16", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i] >= got[i-1] {
			t.Fatalf("remaining not decreasing: %v", got)
		}
	}
	if c.Remaining() != 0 {
		t.Errorf("Remaining after completion = %d", c.Remaining())
	}
}

func TestStartWhileActive(t *testing.T) {
	d := setup(t)
	c := channel(t, d, 1)
	// A peripheral request nobody raises keeps the channel pending.
	buf := make([]byte, 8)
	err := c.Configure(Config{
		Dir:     PeriphToMem,
		Src:     reg.Block(py32.USART1_BASE).Addr(py32.USART_DR),
		Dst:     reg.AddrOf(buf),
		DstInc:  true,
		Count:   8,
		Request: ReqUSART1RX,
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Start(); err != nil {
		t.Fatal(err)
	}
	if err := c.Start(); errcode.Of(err) != errcode.Busy {
		t.Errorf("second Start err = %v, want busy", err)
	}
	if got := sim.Peek(py32.SYSCFG_BASE+py32.SYSCFG_CFGR3) & 0x1F; got != py32.DMA_REQ_USART1_RX {
		t.Errorf("request map = %d", got)
	}
	if err := c.WaitComplete(50); errcode.Of(err) != errcode.Timeout || errcode.Phase(err) != errcode.PhaseComplete {
		t.Errorf("WaitComplete err = %v", err)
	}
	if c.Active() || sim.DMA(1).Enabled() {
		t.Error("channel still running after timeout")
	}
}

func TestTransferError(t *testing.T) {
	d := setup(t)
	c := channel(t, d, 3)
	src := make([]byte, 8)
	dst := make([]byte, 8)
	if err := c.Configure(m2m(dst, src)); err != nil {
		t.Fatal(err)
	}
	sim.DMA(3).FailNext()
	if err := c.Start(); err != nil {
		t.Fatal(err)
	}
	if err := c.WaitComplete(0); errcode.Of(err) != errcode.Transfer {
		t.Errorf("WaitComplete err = %v, want transfer", err)
	}
	if c.Flags() != 0 {
		t.Errorf("flags left set: %#x", c.Flags())
	}
}

func TestConfigureRejects(t *testing.T) {
	d := setup(t)
	c := channel(t, d, 1)
	tests := []struct {
		name string
		cfg  Config
	}{
		{"zero count", Config{Dir: MemToMem}},
		{"width", Config{Dir: MemToMem, Count: 1, SrcWidth: Width32 + 1}},
	}
	for _, tt := range tests {
		if err := c.Configure(tt.cfg); errcode.Of(err) != errcode.InvalidConfig {
			t.Errorf("%s: err = %v", tt.name, err)
		}
	}
}

func TestWaitFuture(t *testing.T) {
	d := setup(t)
	c := channel(t, d, 1)
	src := []byte("0123456789abcdef")
	dst := make([]byte, len(src))
	if err := c.Configure(m2m(dst, src)); err != nil {
		t.Fatal(err)
	}
	half := c.Wait(HalfTransfer)
	done := c.Wait(TransferComplete | TransferError)
	if !irq.LineEnabled(py32.IRQ_DMA1_CHANNEL1) {
		t.Fatal("vector masked while armed")
	}
	if err := c.Start(); err != nil {
		t.Fatal(err)
	}
	if got := async.BlockOn[uint32](half); got != HalfTransfer {
		t.Errorf("half future = %#x", got)
	}
	if got := async.BlockOn[uint32](done); got != TransferComplete {
		t.Errorf("complete future = %#x", got)
	}
	if !bytes.Equal(dst, src) {
		t.Errorf("dst = %q", dst)
	}
	if irq.LineEnabled(py32.IRQ_DMA1_CHANNEL1) {
		t.Error("vector left unmasked after completion")
	}
}

func TestSharedVectorWakesOwnChannel(t *testing.T) {
	d := setup(t)
	c2 := channel(t, d, 2)
	c3 := channel(t, d, 3)
	a, b := make([]byte, 4), make([]byte, 4)
	if err := c2.Configure(m2m(b, a)); err != nil {
		t.Fatal(err)
	}
	x, y := make([]byte, 4), make([]byte, 4)
	if err := c3.Configure(m2m(y, x)); err != nil {
		t.Fatal(err)
	}
	f2 := c2.Wait(TransferComplete)
	f3 := c3.Wait(TransferComplete)
	if err := c2.Start(); err != nil {
		t.Fatal(err)
	}
	async.BlockOn[uint32](f2)
	if f3.Done() {
		t.Fatal("channel 3 future completed by channel 2")
	}
	if !irq.LineEnabled(py32.IRQ_DMA1_CHANNEL2_3) {
		t.Error("shared vector masked while channel 3 is armed")
	}
	f3.Cancel()
	if irq.LineEnabled(py32.IRQ_DMA1_CHANNEL2_3) {
		t.Error("shared vector unmasked with nothing armed")
	}
}

func TestCancelStopsChannel(t *testing.T) {
	d := setup(t)
	c := channel(t, d, 1)
	buf := make([]byte, 4)
	err := c.Configure(Config{
		Dir:     MemToPeriph,
		Src:     reg.AddrOf(buf),
		SrcInc:  true,
		Dst:     reg.Block(py32.USART2_BASE).Addr(py32.USART_DR),
		Count:   4,
		Request: ReqSPI2TX,
	})
	if err != nil {
		t.Fatal(err)
	}
	f := c.Wait(TransferComplete)
	if err := c.Start(); err != nil {
		t.Fatal(err)
	}
	f.Cancel()
	if sim.DMA(1).Enabled() {
		t.Error("cancel left the channel enabled")
	}
	if got, ok := f.Poll(async.NewContext(async.WakerMain)); !ok || got != 0 {
		t.Errorf("cancelled Poll = %#x, %v", got, ok)
	}
}
