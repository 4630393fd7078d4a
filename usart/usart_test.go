package usart

import (
	"io"
	"testing"

	"py32hal/async"
	"py32hal/core"
	"py32hal/device/py32"
	"py32hal/dma"
	"py32hal/errcode"
	"py32hal/gpio"
	"py32hal/periph"
	"py32hal/rcc"
	"py32hal/sim"
)

var (
	_ io.Reader     = (*USART)(nil)
	_ io.Writer     = (*USART)(nil)
	_ io.ByteReader = (*RX)(nil)
	_ io.ByteWriter = (*TX)(nil)
)

func setup(t *testing.T) *periph.Registry {
	t.Helper()
	sim.Reset()
	async.Reset()
	periph.ResetClaims()
	gpio.ResetClaims()
	if _, err := rcc.Configure(rcc.DefaultConfig()); err != nil {
		t.Fatal(err)
	}
	return periph.NewRegistry()
}

func open1(t *testing.T, r *periph.Registry, cfg Config) *USART {
	t.Helper()
	u, err := NewUSART1(r.USART1, gpio.PA10{}, gpio.PA9{}, cfg)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(u.Close)
	return u
}

func withDMA(t *testing.T, r *periph.Registry, u *USART) {
	t.Helper()
	d, err := dma.New(r.DMA)
	if err != nil {
		t.Fatal(err)
	}
	rx, _ := d.Channel(1)
	tx, _ := d.Channel(2)
	u.AttachDMA(rx, tx)
	t.Cleanup(d.Close)
}

func TestBRR(t *testing.T) {
	tests := []struct {
		f, baud uint32
		ovs     Oversampling
		want    uint32
	}{
		{16000000, 115200, Over16, 0x8B},
		{16000000, 115200, Over8, 0x113},
		{8000000, 9600, Over16, 833},
		{48000000, 1200, Over16, 40000},
	}
	for _, tt := range tests {
		got, _, err := BRR(tt.f, tt.baud, tt.ovs)
		if err != nil || got != tt.want {
			t.Errorf("BRR(%d, %d, %d) = %#x, %v; want %#x", tt.f, tt.baud, tt.ovs, got, err, tt.want)
		}
	}
	if _, _, err := BRR(4000000, 1000000, Over16); errcode.Of(err) != errcode.InvalidFrequency {
		t.Errorf("too fast err = %v", err)
	}
	if _, _, err := BRR(48000000, 300, Over16); errcode.Of(err) != errcode.InvalidFrequency {
		t.Errorf("too slow err = %v", err)
	}
}

// Every recognised clock, baud and oversampling lands within 2 %.
func TestBaudRounding(t *testing.T) {
	clocks := []uint32{4000000, 8000000, 16000000, 24000000, 48000000}
	bauds := []uint32{1200, 2400, 4800, 9600, 19200, 38400, 57600, 115200}
	for _, f := range clocks {
		for _, baud := range bauds {
			for _, ovs := range []Oversampling{Over16, Over8} {
				brr, _, err := BRR(f, baud, ovs)
				if err != nil {
					if f/baud > 0xFFFF {
						continue
					}
					t.Errorf("BRR(%d, %d, %d): %v", f, baud, ovs, err)
					continue
				}
				bit := brr
				if ovs == Over8 {
					bit = brr>>4*8 + brr&7
				}
				actual := f / bit
				if dev := core.AbsDiff(actual, baud); dev*50 > baud {
					t.Errorf("f=%d baud=%d ovs=%d: brr %#x gives %d", f, baud, ovs, brr, actual)
				}
			}
		}
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want errcode.Code
	}{
		{"default", DefaultConfig(), ""},
		{"zero baud", Config{}, errcode.InvalidFrequency},
		{"stop bits", Config{Baud: 9600, StopBits: 3}, errcode.InvalidConfig},
		{"9 bits parity", Config{Baud: 9600, DataBits: Data9, Parity: ParityEven}, errcode.InvalidConfig},
		{"odd parity", Config{Baud: 9600, Parity: ParityOdd}, ""},
	}
	for _, tt := range tests {
		err := tt.cfg.Validate()
		if tt.want == "" && err != nil || tt.want != "" && errcode.Of(err) != tt.want {
			t.Errorf("%s: err = %v, want %q", tt.name, err, tt.want)
		}
	}
}

func TestClockAndPinLifecycle(t *testing.T) {
	r := setup(t)
	if _, err := NewUSART1(r.USART2, gpio.PA10{}, gpio.PA9{}, DefaultConfig()); errcode.Of(err) != errcode.InvalidConfig {
		t.Errorf("wrong token err = %v", err)
	}
	u, err := NewUSART1(r.USART1, gpio.PA10{}, gpio.PA9{}, DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	if !periph.USART1.ClockOn() || !gpio.Bound(gpio.PA9{}) {
		t.Error("clock or pin not taken")
	}
	if got := sim.Serial(1).Baud(); core.AbsDiff(got, 115200) > 2304 {
		t.Errorf("baud %d", got)
	}
	u.Close()
	if periph.USART1.ClockOn() || gpio.Bound(gpio.PA9{}) || gpio.Bound(gpio.PA10{}) {
		t.Error("clock or pins held after Close")
	}
	// PA9 is busy with USART1, so USART2 cannot use it for TX.
	u1, err := NewUSART1(r.USART1, gpio.PA10{}, gpio.PA9{}, DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	defer u1.Close()
	if _, err := NewUSART2(r.USART2, gpio.PA3{}, gpio.PA9{}, DefaultConfig()); errcode.Of(err) != errcode.InUse {
		t.Errorf("shared pin err = %v", err)
	}
	if periph.USART2.ClockOn() || gpio.Bound(gpio.PA3{}) {
		t.Error("failed constructor left USART2 or PA3 claimed")
	}
}

func TestBlockingIO(t *testing.T) {
	r := setup(t)
	u := open1(t, r, DefaultConfig())
	sim.Serial(1).Inject('h', 'i')
	for _, want := range []byte("hi") {
		b, err := u.ReadByte()
		if err != nil || b != want {
			t.Fatalf("ReadByte = %q, %v; want %q", b, err, want)
		}
	}
	if _, err := u.Write([]byte("ok")); err != nil {
		t.Fatal(err)
	}
	if err := u.Flush(); err != nil {
		t.Fatal(err)
	}
	if got := string(sim.Serial(1).Sent()); got != "ok" {
		t.Errorf("sent %q", got)
	}
}

func TestReadErrors(t *testing.T) {
	tests := []struct {
		name  string
		flags uint32
		want  errcode.Code
	}{
		{"frame", sim.ErrFrame, errcode.Frame},
		{"noise", sim.ErrNoise, errcode.Noise},
		{"parity", sim.ErrParity, errcode.Parity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := setup(t)
			u := open1(t, r, DefaultConfig())
			sim.Serial(1).InjectError(0x55, tt.flags)
			if _, err := u.ReadByte(); errcode.Of(err) != tt.want {
				t.Errorf("err = %v, want %s", err, tt.want)
			}
			// The error is consumed with the byte.
			sim.Serial(1).Inject(0x66)
			if b, err := u.ReadByte(); err != nil || b != 0x66 {
				t.Errorf("next byte = %#x, %v", b, err)
			}
		})
	}

	r := setup(t)
	u := open1(t, r, DefaultConfig())
	sim.Serial(1).Inject(1, 2, 3)
	sim.Advance(10000) // three frames with nobody reading
	if _, err := u.ReadByte(); errcode.Of(err) != errcode.Overrun {
		t.Errorf("overrun err = %v", err)
	}
}

func TestReadTimeout(t *testing.T) {
	r := setup(t)
	cfg := DefaultConfig()
	cfg.Timeout = 200
	u := open1(t, r, cfg)
	_, err := u.ReadByte()
	if errcode.Of(err) != errcode.Timeout || errcode.Phase(err) != errcode.PhaseRx {
		t.Errorf("err = %v", err)
	}
	sim.Serial(1).Inject([]byte("hello")...)
	buf := make([]byte, 16)
	u.cfg.Timeout = 5000
	n, err := u.Read(buf)
	if err != nil || string(buf[:n]) != "hello" {
		t.Errorf("Read = %q, %v", buf[:n], err)
	}
}

// Receiving k bytes then one idle frame returns exactly those k bytes.
func TestReadDMAIdleBlocking(t *testing.T) {
	for _, k := range []int{1, 5, 9, 10} {
		r := setup(t)
		u := open1(t, r, DefaultConfig())
		withDMA(t, r, u)
		msg := []byte("0123456789")[:k]
		sim.Serial(1).Inject(msg...)
		buf := make([]byte, 10)
		n, err := u.ReadDMAIdleBlocking(buf)
		if err != nil {
			t.Fatalf("k=%d: %v", k, err)
		}
		if n != k || string(buf[:n]) != string(msg) {
			t.Errorf("k=%d: got %d %q", k, n, buf[:n])
		}
		if sim.DMA(1).Enabled() {
			t.Errorf("k=%d: DMA left running", k)
		}
	}
}

func TestReadDMAIdleNeedsChannel(t *testing.T) {
	r := setup(t)
	u := open1(t, r, DefaultConfig())
	if _, err := u.ReadDMAIdleBlocking(make([]byte, 4)); errcode.Of(err) != errcode.InvalidConfig {
		t.Errorf("err = %v", err)
	}
}

func TestReadDMAIdleTimeout(t *testing.T) {
	r := setup(t)
	cfg := DefaultConfig()
	cfg.Timeout = 300
	u := open1(t, r, cfg)
	withDMA(t, r, u)
	n, err := u.ReadDMAIdleBlocking(make([]byte, 4))
	if n != 0 || errcode.Of(err) != errcode.Timeout {
		t.Errorf("silent line = %d, %v", n, err)
	}
}

// USART1 echo at 115200 8N1: what comes in goes back out.
func TestEchoScenario(t *testing.T) {
	r := setup(t)
	u := open1(t, r, DefaultConfig())
	withDMA(t, r, u)
	buf := make([]byte, 10)
	for _, msg := range []string{"ping", "hello, py", "0123456789"} {
		sim.Serial(1).Inject([]byte(msg)...)
		n, err := u.ReadDMAIdleBlocking(buf)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := u.Write(buf[:n]); err != nil {
			t.Fatal(err)
		}
		if err := u.Flush(); err != nil {
			t.Fatal(err)
		}
		if got := string(sim.Serial(1).Sent()); got != msg {
			t.Errorf("echoed %q, want %q", got, msg)
		}
	}
}

func TestAsyncHalves(t *testing.T) {
	r := setup(t)
	u := open1(t, r, DefaultConfig())
	withDMA(t, r, u)
	rx, tx := u.Split()

	buf := make([]byte, 8)
	f := rx.ReadIdle(buf)
	sim.Serial(1).Inject([]byte("abcd")...)
	res := async.BlockOn[async.Result[int]](f)
	if res.Err != nil || res.Val != 4 || string(buf[:4]) != "abcd" {
		t.Fatalf("ReadIdle = %+v %q", res, buf[:res.Val])
	}

	full := make([]byte, 3)
	sim.Serial(1).Inject([]byte("xyz")...)
	res = async.BlockOn[async.Result[int]](rx.ReadAsync(full))
	if res.Err != nil || res.Val != 3 || string(full) != "xyz" {
		t.Errorf("ReadAsync = %+v %q", res, full)
	}

	res = async.BlockOn[async.Result[int]](tx.WriteAsync([]byte("pong")))
	if res.Err != nil || res.Val != 4 {
		t.Fatalf("WriteAsync = %+v", res)
	}
	if err := tx.Flush(); err != nil {
		t.Fatal(err)
	}
	if got := string(sim.Serial(1).Sent()); got != "pong" {
		t.Errorf("sent %q", got)
	}
}

func TestAsyncCancel(t *testing.T) {
	r := setup(t)
	u := open1(t, r, DefaultConfig())
	withDMA(t, r, u)
	rx, _ := u.Split()
	f := rx.ReadAsync(make([]byte, 4))
	if _, ok := f.Poll(async.NewContext(async.WakerMain)); ok {
		t.Fatal("read ready with nothing received")
	}
	f.Cancel()
	if sim.DMA(1).Enabled() {
		t.Error("cancel left DMA running")
	}
	if cr3 := sim.Peek(py32.USART1_BASE + py32.USART_CR3); cr3&(1<<py32.USART_CR3_DMAR) != 0 {
		t.Errorf("cancel left DMAR set: CR3 %#x", cr3)
	}
}

func TestAsyncWithoutDMA(t *testing.T) {
	r := setup(t)
	u := open1(t, r, DefaultConfig())
	rx, tx := u.Split()
	if res, ok := rx.ReadAsync(make([]byte, 1)).Poll(async.NewContext(async.WakerMain)); !ok || errcode.Of(res.Err) != errcode.InvalidConfig {
		t.Errorf("ReadAsync without DMA = %+v, %v", res, ok)
	}
	if res, ok := tx.WriteAsync([]byte{1}).Poll(async.NewContext(async.WakerMain)); !ok || errcode.Of(res.Err) != errcode.InvalidConfig {
		t.Errorf("WriteAsync without DMA = %+v, %v", res, ok)
	}
}
