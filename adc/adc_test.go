package adc

import (
	"slices"
	"testing"

	"py32hal/async"
	"py32hal/device/py32"
	"py32hal/errcode"
	"py32hal/gpio"
	"py32hal/irq"
	"py32hal/periph"
	"py32hal/rcc"
	"py32hal/sim"
)

func setup(t *testing.T) *periph.Registry {
	t.Helper()
	sim.Reset()
	async.Reset()
	periph.ResetClaims()
	gpio.ResetClaims()
	sim.ADC().FailCalibration(false)
	for ch := 0; ch < py32.ADC_CH_TEMP; ch++ {
		sim.ADC().Set(ch, 2048)
	}
	sim.ADC().Set(py32.ADC_CH_TEMP, 1096)
	sim.ADC().Set(py32.ADC_CH_VREF, 1489)
	if _, err := rcc.Configure(rcc.DefaultConfig()); err != nil {
		t.Fatal(err)
	}
	return periph.NewRegistry()
}

func open(t *testing.T, r *periph.Registry, cfg Config) *ADC {
	t.Helper()
	a, err := New(r.ADC, cfg)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(a.Close)
	return a
}

func peek(off uint32) uint32 { return sim.Peek(py32.ADC_BASE + off) }

func TestTemperatureAndVref(t *testing.T) {
	r := setup(t)
	a := open(t, r, Config{
		Channels:   ChTemp | ChVref,
		Mode:       Discontinuous,
		SampleTime: Sample239_5,
	})
	if err := a.Calibrate(); err != nil {
		t.Fatal(err)
	}
	a.Start()
	temp, err := a.Read()
	if err != nil {
		t.Fatal(err)
	}
	if a.Converting() {
		t.Error("discontinuous run went past one channel")
	}
	vref, err := a.Read()
	if err != nil {
		t.Fatal(err)
	}
	if temp != 1096 || vref != 1489 {
		t.Fatalf("raw temp %d vref %d", temp, vref)
	}

	if c := Temperature(temp); c < 0 || c > 85000 {
		t.Errorf("Temperature(%d) = %d m°C", temp, c)
	}
	if mv := VrefInternal(vref); mv < 1140 || mv > 1260 {
		t.Errorf("VrefInternal(%d) = %d mV", vref, mv)
	}
	if mv := VDDA(vref); mv != 3300 {
		t.Errorf("VDDA(%d) = %d mV", vref, mv)
	}
}

func TestTemperatureCurve(t *testing.T) {
	setup(t)
	tests := []struct {
		raw  uint16
		want int32
	}{
		{1120, 30000},
		{1380, 85000},
		{1250, 57500},
		{1094, 24500},
	}
	for _, tt := range tests {
		if got := Temperature(tt.raw); got != tt.want {
			t.Errorf("Temperature(%d) = %d, want %d", tt.raw, got, tt.want)
		}
	}
	if VDDA(0) != 0 {
		t.Error("VDDA(0) != 0")
	}
	if mv := Millivolts(255, Bits8, 3300); mv != 3300 {
		t.Errorf("Millivolts full scale = %d", mv)
	}
}

func TestInternalChannelsGated(t *testing.T) {
	r := setup(t)
	a := open(t, r, Config{Channels: ChTemp, SampleTime: Sample71_5})
	if ccr := peek(py32.ADC_CCR); ccr&(1<<py32.ADC_CCR_TSEN) == 0 || ccr&(1<<py32.ADC_CCR_VREFEN) != 0 {
		t.Fatalf("CCR = %#x", ccr)
	}
	if err := a.Configure(Config{Channels: Channel(0)}); err != nil {
		t.Fatal(err)
	}
	if ccr := peek(py32.ADC_CCR); ccr != 0 {
		t.Errorf("internal channels left on: CCR = %#x", ccr)
	}
}

func TestScanOrder(t *testing.T) {
	r := setup(t)
	sim.ADC().Set(0, 100)
	sim.ADC().Set(3, 300)
	sim.ADC().Set(5, 500)
	cfg := Config{Channels: Channel(0) | Channel(3) | Channel(5), SampleTime: Sample239_5}
	a := open(t, r, cfg)

	buf := make([]uint16, 3)
	if err := a.Scan(buf); err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(buf, []uint16{100, 300, 500}) {
		t.Errorf("forward scan = %v", buf)
	}

	cfg.ScanBackward = true
	if err := a.Configure(cfg); err != nil {
		t.Fatal(err)
	}
	if err := a.Scan(buf); err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(buf, []uint16{500, 300, 100}) {
		t.Errorf("backward scan = %v", buf)
	}
	if cfg.Channels.Count() != 3 {
		t.Errorf("Count = %d", cfg.Channels.Count())
	}
}

func TestResolution(t *testing.T) {
	r := setup(t)
	sim.ADC().Set(0, 0xFFF)
	a := open(t, r, Config{Channels: Channel(0)})
	for _, res := range []Resolution{Bits12, Bits10, Bits8, Bits6} {
		if err := a.Configure(Config{Channels: Channel(0), Resolution: res}); err != nil {
			t.Fatal(err)
		}
		v, err := a.Read()
		if err != nil {
			t.Fatal(err)
		}
		if want := uint16(1)<<res.Bits() - 1; v != want {
			t.Errorf("%d bits: %d, want %d", res.Bits(), v, want)
		}
	}
}

func TestContinuous(t *testing.T) {
	r := setup(t)
	sim.ADC().Set(1, 777)
	a := open(t, r, Config{Channels: Channel(1), Mode: Continuous, Overwrite: true})
	a.Start()
	for n := 0; n < 3; n++ {
		v, err := a.Read()
		if err != nil || v != 777 {
			t.Fatalf("read %d: %d, %v", n, v, err)
		}
	}
	if !a.Converting() {
		t.Error("continuous run stopped")
	}
	if err := a.Stop(); err != nil {
		t.Fatal(err)
	}
	if a.Converting() || sim.ADC().Converting() {
		t.Error("still converting after Stop")
	}
}

func TestOverrun(t *testing.T) {
	r := setup(t)
	sim.ADC().Set(0, 10)
	sim.ADC().Set(1, 20)
	cfg := Config{Channels: Channel(0) | Channel(1), SampleTime: Sample3_5}
	a := open(t, r, cfg)

	a.Start()
	sim.Advance(2000)
	v, err := a.Read()
	if errcode.Of(err) != errcode.Overrun || v != 10 {
		t.Errorf("kept first: %d, %v", v, err)
	}

	cfg.Overwrite = true
	if err := a.Configure(cfg); err != nil {
		t.Fatal(err)
	}
	a.Start()
	sim.Advance(2000)
	if v, err := a.Read(); err != nil || v != 20 {
		t.Errorf("overwrite: %d, %v", v, err)
	}
}

func TestCalibrate(t *testing.T) {
	r := setup(t)
	a := open(t, r, DefaultConfig())
	if err := a.Calibrate(); err != nil {
		t.Fatal(err)
	}
	if cr := peek(py32.ADC_CR); cr&(1<<py32.ADC_CR_ADEN) == 0 {
		t.Errorf("not re-enabled: CR = %#x", cr)
	}
	sim.ADC().FailCalibration(true)
	if err := a.Calibrate(); errcode.Of(err) != errcode.Calibration {
		t.Errorf("got %v", err)
	}
}

func TestExternalTrigger(t *testing.T) {
	r := setup(t)
	sim.ADC().Set(2, 1234)
	a := open(t, r, Config{
		Channels: Channel(2),
		Trigger:  Trigger{Edge: Rising, Source: TrigTIM3TRGO},
		Timeout:  200,
	})
	if f := peek(py32.ADC_CFGR1); f>>py32.ADC_CFGR1_EXTEN_Pos&3 != uint32(Rising) || f>>py32.ADC_CFGR1_EXTSEL_Pos&7 != uint32(TrigTIM3TRGO) {
		t.Fatalf("CFGR1 = %#x", f)
	}
	a.Start()
	sim.Advance(5000)
	if sim.ADC().Converting() {
		t.Fatal("converted without a trigger")
	}
	if _, err := a.Read(); errcode.Of(err) != errcode.Timeout || errcode.Phase(err) != errcode.PhaseRx {
		t.Fatalf("untriggered read: %v", err)
	}
	sim.ADC().Trigger()
	if v, err := a.Read(); err != nil || v != 1234 {
		t.Errorf("triggered read = %d, %v", v, err)
	}
}

func TestReadAsync(t *testing.T) {
	r := setup(t)
	sim.ADC().Set(4, 3210)
	a := open(t, r, Config{Channels: Channel(4), SampleTime: Sample239_5})

	f := a.ReadAsync()
	sim.Advance(2000)
	// The handler masks only the event that fired.
	if ier := peek(py32.ADC_IER); ier&FlagEOC != 0 || ier&FlagOVR == 0 {
		t.Errorf("IER after interrupt = %#x", ier)
	}
	res := async.BlockOn[async.Result[uint16]](f)
	if res.Err != nil || res.Val != 3210 {
		t.Fatalf("ReadAsync = %d, %v", res.Val, res.Err)
	}
	if sim.InterruptsTaken() == 0 {
		t.Error("no interrupt taken")
	}
	if peek(py32.ADC_IER) != 0 {
		t.Errorf("IER left armed: %#x", peek(py32.ADC_IER))
	}
	if irq.LineEnabled(py32.IRQ_ADC_COMP) {
		t.Error("ADC line left enabled")
	}

	// A result already waiting completes without an interrupt.
	a.Start()
	sim.Advance(2000)
	res = async.BlockOn[async.Result[uint16]](a.ReadAsync())
	if res.Err != nil || res.Val != 3210 {
		t.Errorf("pending result = %d, %v", res.Val, res.Err)
	}
}

func TestConfigErrors(t *testing.T) {
	r := setup(t)
	tests := []struct {
		cfg  Config
		code errcode.Code
	}{
		{Config{Channels: 1 << 13}, errcode.InvalidChannel},
		{Config{Mode: Discontinuous + 1}, errcode.InvalidConfig},
		{Config{Mode: Continuous, Trigger: Trigger{Edge: Falling}}, errcode.InvalidConfig},
		{Config{Trigger: Trigger{Source: 8}}, errcode.InvalidConfig},
	}
	for _, tt := range tests {
		if _, err := New(r.ADC, tt.cfg); errcode.Of(err) != tt.code {
			t.Errorf("%+v: %v", tt.cfg, err)
		}
	}
	if _, err := New(r.RTC, DefaultConfig()); errcode.Of(err) != errcode.InvalidConfig {
		t.Errorf("wrong token: %v", err)
	}
}

func TestPin(t *testing.T) {
	r := setup(t)
	a, err := New(r.ADC, DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	ch, err := a.Pin(gpio.PA4{})
	if err != nil || ch != Channel(4) {
		t.Fatalf("Pin = %#x, %v", ch, err)
	}
	if m := sim.Port('A').Mode(4); m != py32.GPIO_MODE_ANALOG {
		t.Errorf("PA4 mode = %d", m)
	}
	sim.ADC().Set(4, 42)
	if err := a.Configure(Config{Channels: ch}); err != nil {
		t.Fatal(err)
	}
	if v, err := a.Read(); err != nil || v != 42 {
		t.Errorf("Read = %d, %v", v, err)
	}
	a.Close()
	if gpio.Bound(gpio.PA4{}) {
		t.Error("PA4 still bound after Close")
	}
	if _, err := New(r.ADC, DefaultConfig()); err != nil {
		t.Errorf("reopen: %v", err)
	}
}
