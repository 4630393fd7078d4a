package rtc

import (
	"testing"

	"py32hal/async"
	"py32hal/device/py32"
	"py32hal/errcode"
	"py32hal/irq"
	"py32hal/periph"
	"py32hal/rcc"
	"py32hal/sim"
)

// A slow HCLK keeps simulated seconds short.
var slowClock = rcc.Config{Source: rcc.HSI, HSIFreq: rcc.HSI8MHz, HSIDiv: 1, HCLKDiv: 16, PCLKDiv: 1}

func setup(t *testing.T) *periph.Registry {
	t.Helper()
	sim.Reset()
	async.Reset()
	periph.ResetClaims()
	sim.SetHSE(8000000, true)
	sim.SetLSEPresent(true)
	if _, err := rcc.Configure(slowClock); err != nil {
		t.Fatal(err)
	}
	return periph.NewRegistry()
}

func open(t *testing.T, r *periph.Registry, cfg Config) *RTC {
	t.Helper()
	c, err := New(r.RTC, cfg)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(c.Close)
	return c
}

func TestPrescaler(t *testing.T) {
	tests := []struct {
		hz, want uint32
		ok       bool
	}{
		{32768, 32767, true},
		{250000, 249999, true},
		{1 << 20, 1<<20 - 1, true},
		{1<<20 + 1, 0, false},
		{0, 0, false},
	}
	for _, tt := range tests {
		got, err := Prescaler(tt.hz)
		if (err == nil) != tt.ok || got != tt.want {
			t.Errorf("Prescaler(%d) = %d, %v", tt.hz, got, err)
		}
	}
}

func TestWaitThreeSeconds(t *testing.T) {
	r := setup(t)
	c := open(t, r, DefaultConfig())
	if p := sim.RTCPrescaler(); p != 32767 {
		t.Fatalf("prescaler = %d", p)
	}
	start := c.Read()
	if err := c.WaitBlocking(3); err != nil {
		t.Fatal(err)
	}
	if now := c.Read(); now < start+3 || now > start+4 {
		t.Errorf("after 3 s: %d, started at %d", now, start)
	}
}

func TestSetCounter(t *testing.T) {
	r := setup(t)
	c := open(t, r, DefaultConfig())
	if err := c.SetCounter(0x1FFFE); err != nil {
		t.Fatal(err)
	}
	if got := c.Read(); got != 0x1FFFE {
		t.Fatalf("Read = %#x", got)
	}
	// Crosses the carry from CNTL into CNTH.
	if err := c.WaitBlocking(3); err != nil {
		t.Fatal(err)
	}
	if got := c.Read(); got < 0x20001 || got > 0x20002 {
		t.Errorf("Read = %#x", got)
	}
	if got := sim.RTCCounter(); got != c.Read() {
		t.Errorf("counter %#x, Read %#x", got, c.Read())
	}
}

func TestHSEDiv32(t *testing.T) {
	r := setup(t)
	c := open(t, r, Config{Clock: HSEDiv32, HSEFreq: 8000000})
	if p := sim.RTCPrescaler(); p != 249999 {
		t.Fatalf("prescaler = %d", p)
	}
	if clk, hz := c.Clock(); clk != HSEDiv32 || hz != 250000 {
		t.Errorf("Clock = %v %d", clk, hz)
	}
	start := c.Read()
	if err := c.WaitBlocking(1); err != nil {
		t.Fatal(err)
	}
	if c.Read() == start {
		t.Error("counter did not advance")
	}
}

func TestClockSwitchResetsDomain(t *testing.T) {
	r := setup(t)
	c, err := New(r.RTC, DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	if err := c.SetCounter(100); err != nil {
		t.Fatal(err)
	}
	c.Close()

	// Same clock: the counter survives.
	c, err = New(r.RTC, DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	if got := c.Read(); got < 100 {
		t.Errorf("counter lost on reopen: %d", got)
	}
	c.Close()

	c = open(t, r, Config{Clock: LSE})
	if got := c.Read(); got >= 100 {
		t.Errorf("counter kept across clock switch: %d", got)
	}
	bdcr := sim.Peek(py32.RCC_BASE + py32.RCC_BDCR)
	if sel := bdcr >> py32.RCC_BDCR_RTCSEL_Pos & 3; sel != py32.RTC_SEL_LSE {
		t.Errorf("RTCSEL = %d", sel)
	}
}

func TestWaitAlarm(t *testing.T) {
	r := setup(t)
	c := open(t, r, DefaultConfig())
	start := c.Read()
	res := async.BlockOn[async.Result[uint32]](c.WaitAlarm(2))
	if res.Err != nil || res.Val != start+2 {
		t.Fatalf("WaitAlarm = %d, %v; started at %d", res.Val, res.Err, start)
	}
	if sim.InterruptsTaken() == 0 {
		t.Error("no interrupt taken")
	}
	if crh := sim.Peek(py32.RTC_BASE + py32.RTC_CRH); crh != 0 {
		t.Errorf("CRH left armed: %#x", crh)
	}
	if irq.LineEnabled(py32.IRQ_RTC) {
		t.Error("RTC line left enabled")
	}

	res = async.BlockOn[async.Result[uint32]](c.WaitAlarm(0))
	if res.Err != nil || res.Val != start+2 {
		t.Errorf("zero alarm = %d, %v", res.Val, res.Err)
	}
}

func TestWaitSecond(t *testing.T) {
	r := setup(t)
	c := open(t, r, DefaultConfig())
	start := c.Read()
	res := async.BlockOn[async.Result[uint32]](c.WaitSecond())
	if res.Err != nil || res.Val != start+1 {
		t.Fatalf("WaitSecond = %d, %v; started at %d", res.Val, res.Err, start)
	}

	f := c.WaitSecond()
	f.Cancel()
	if res, ok := f.Poll(nil); !ok || errcode.Of(res.Err) != errcode.Timeout {
		t.Errorf("canceled: %v %v", res, ok)
	}
	if crh := sim.Peek(py32.RTC_BASE + py32.RTC_CRH); crh != 0 {
		t.Errorf("CRH after cancel: %#x", crh)
	}
}

func TestNewErrors(t *testing.T) {
	r := setup(t)
	if _, err := New(r.ADC, DefaultConfig()); errcode.Of(err) != errcode.InvalidConfig {
		t.Errorf("wrong token: %v", err)
	}
	if _, err := New(r.RTC, Config{Clock: HSEDiv32}); errcode.Of(err) != errcode.InvalidFrequency {
		t.Errorf("HSE without frequency: %v", err)
	}
	sim.SetLSEPresent(false)
	if _, err := New(r.RTC, Config{Clock: LSE}); err == nil {
		t.Error("LSE without crystal started")
	}
	if r.RTC.Claimed() {
		t.Error("token kept after failed start")
	}
}
