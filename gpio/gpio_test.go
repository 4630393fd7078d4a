package gpio

import (
	"os"
	"sort"
	"testing"

	"gopkg.in/yaml.v3"

	"py32hal/async"
	"py32hal/device/py32"
	"py32hal/errcode"
	"py32hal/periph"
	"py32hal/sim"
)

func setup(t *testing.T) {
	t.Helper()
	sim.Reset()
	async.Reset()
	ResetClaims()
	periph.ResetClaims()
	lineClaims = 0
}

// Compile-time role checks: legal pins satisfy their role interfaces.
var (
	_ USART1TXPin = PA9{}
	_ USART1RXPin = PA10{}
	_ I2CSCLPin   = PA3{}
	_ I2CSDAPin   = PA2{}
	_ TIM1CH1Pin  = PA8{}
	_ TIM1CH1NPin = PA7{}
	_ ADCPin      = PB1{}
	_ MCOPin      = PA8{}
)

func TestPinTableMatchesTypes(t *testing.T) {
	raw, err := os.ReadFile("pinmap.yaml")
	if err != nil {
		t.Fatal(err)
	}
	var table struct {
		Functions map[string]map[string]uint8 `yaml:"functions"`
		Analog    map[string]uint8            `yaml:"analog"`
	}
	if err := yaml.Unmarshal(raw, &table); err != nil {
		t.Fatal(err)
	}
	if len(roleChecks) != len(table.Functions) {
		t.Fatalf("generated %d roles, table has %d; rerun go generate", len(roleChecks), len(table.Functions))
	}
	for role, pins := range table.Functions {
		check, ok := roleChecks[role]
		if !ok {
			t.Errorf("role %s has no generated interface", role)
			continue
		}
		var got []string
		for _, p := range AllPins {
			name := p.(interface{ String() string }).String()
			af, ok := check(p)
			if !ok {
				continue
			}
			got = append(got, name)
			if want, listed := pins[name]; !listed {
				t.Errorf("%s accepts %s, not in the table", role, name)
			} else if af != AF(want) {
				t.Errorf("%s on %s: AF%d, table says AF%d", role, name, af, want)
			}
		}
		if len(got) != len(pins) {
			sort.Strings(got)
			t.Errorf("%s: compiler accepts %v, table lists %d pins", role, got, len(pins))
		}
	}
	for _, p := range AllPins {
		name := p.(interface{ String() string }).String()
		a, isADC := p.(ADCPin)
		ch, listed := table.Analog[name]
		if isADC != listed || isADC && a.ADCChannel() != ch {
			t.Errorf("%s: ADCPin=%v, table channel %d listed=%v", name, isADC, ch, listed)
		}
	}
}

func TestBindExclusive(t *testing.T) {
	setup(t)
	out, err := NewOutput(PA10{}, PushPull, PullNone, SpeedLow, Low)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := NewAltFn(PA10{}, PA10{}.USART1RX(), PushPull, PullUp, SpeedHigh); errcode.Of(err) != errcode.InUse {
		t.Fatalf("second bind err = %v, want in_use", err)
	}
	out.Close()
	if Bound(PA10{}) {
		t.Error("pin still bound after Close")
	}
	if m := sim.Port('A').Mode(10); m != py32.GPIO_MODE_ANALOG {
		t.Errorf("closed pin mode = %d, want analog", m)
	}
	rx, err := NewAltFn(PA10{}, PA10{}.USART1RX(), PushPull, PullUp, SpeedHigh)
	if err != nil {
		t.Fatalf("rebind after close: %v", err)
	}
	rx.Close()
}

func TestOutputToggle(t *testing.T) {
	setup(t)
	led, err := NewOutput(PA10{}, PushPull, PullDown, SpeedLow, Low)
	if err != nil {
		t.Fatal(err)
	}
	defer led.Close()
	a := sim.Port('A')
	if a.Mode(10) != py32.GPIO_MODE_OUTPUT || a.Output(10) {
		t.Fatalf("mode %d output %v after NewOutput", a.Mode(10), a.Output(10))
	}
	for i := 0; i < 6; i++ {
		led.Toggle()
		if want := i%2 == 0; a.Output(10) != want {
			t.Fatalf("toggle %d: ODR = %v", i, a.Output(10))
		}
	}
	if a.Toggles(10) != 6 {
		t.Errorf("toggles = %d, want 6", a.Toggles(10))
	}
	led.High()
	if !led.IsSetHigh() || led.Get() != High {
		t.Error("High not visible on ODR and IDR")
	}
	led.Set(Low)
	if led.IsSetHigh() {
		t.Error("Set(Low) left the latch high")
	}
}

func TestInputPulls(t *testing.T) {
	setup(t)
	in, err := NewInput(PB3{}, PullUp)
	if err != nil {
		t.Fatal(err)
	}
	defer in.Close()
	if in.Get() != High {
		t.Error("pulled-up input reads low")
	}
	b := sim.Port('B')
	b.Drive(3, false)
	defer b.Release(3)
	if in.Get() != Low {
		t.Error("driven-low input reads high")
	}
}

func TestAltFnAndLock(t *testing.T) {
	setup(t)
	tx, err := NewAltFn(PA9{}, PA9{}.USART1TX(), PushPull, PullUp, SpeedVeryHigh)
	if err != nil {
		t.Fatal(err)
	}
	a := sim.Port('A')
	if a.Mode(9) != py32.GPIO_MODE_ALT || a.AF(9) != 1 {
		t.Fatalf("PA9 mode %d AF%d", a.Mode(9), a.AF(9))
	}
	if err := tx.Lock(); err != nil {
		t.Fatal(err)
	}
	if !a.Locked(9) {
		t.Error("PA9 not locked")
	}
	tx.ConfigureAnalog()
	if a.Mode(9) != py32.GPIO_MODE_ALT {
		t.Error("locked pin changed mode")
	}
}

func TestSplit(t *testing.T) {
	setup(t)
	reg := periph.NewRegistry()
	pins, err := SplitA(reg.GPIOA)
	if err != nil {
		t.Fatal(err)
	}
	if pins.PA10.Index() != 10 || !periph.GPIOA.ClockOn() {
		t.Error("split did not clock port A")
	}
	if _, err := SplitA(reg.GPIOA); errcode.Of(err) != errcode.InUse {
		t.Errorf("second split err = %v", err)
	}
	if _, err := SplitB(reg.GPIOA); errcode.Of(err) != errcode.InvalidConfig {
		t.Errorf("split with wrong token err = %v", err)
	}
}

func TestWaitForEdge(t *testing.T) {
	setup(t)
	in, err := NewInput(PB3{}, PullUp)
	if err != nil {
		t.Fatal(err)
	}
	defer in.Close()

	f := WaitForEdge(PB3{}, Falling)
	cx := async.NewContext(1)
	if _, ok := f.Poll(cx); ok {
		t.Fatal("edge future ready before any edge")
	}
	if sim.Peek(py32.EXTI_BASE+py32.EXTI_IMR)&(1<<3) == 0 {
		t.Fatal("line 3 not unmasked")
	}
	if !sim.LineEnabled(py32.IRQ_EXTI2_3) {
		t.Fatal("EXTI2_3 vector masked")
	}

	// Another port on the same line must wait its turn.
	if err, ok := WaitForEdge(PA3{}, Rising).Poll(cx); !ok || errcode.Of(err) != errcode.InUse {
		t.Errorf("second wait on line 3 = %v, %v", err, ok)
	}

	b := sim.Port('B')
	b.Drive(3, false)
	defer b.Release(3)
	err, ok := f.Poll(cx)
	if !ok || err != nil {
		t.Fatalf("Poll after edge = %v, %v", err, ok)
	}
	for _, r := range []uint32{py32.EXTI_PR, py32.EXTI_IMR, py32.EXTI_FTSR} {
		if sim.Peek(py32.EXTI_BASE+r)&(1<<3) != 0 {
			t.Errorf("EXTI register %#x still has line 3 set", r)
		}
	}
	if lineClaims != 0 {
		t.Errorf("line claims = %#x after completion", lineClaims)
	}
}

func TestWaitForEdgeBlockOn(t *testing.T) {
	setup(t)
	in, err := NewInput(PA5{}, PullDown)
	if err != nil {
		t.Fatal(err)
	}
	defer in.Close()
	a := sim.Port('A')
	defer a.Release(5)

	// A helper task raises the pin once the main future is parked.
	raised := false
	helper := async.PollFunc[struct{}](func(cx *async.Context) (struct{}, bool) {
		a.Drive(5, true)
		raised = true
		return struct{}{}, true
	})
	if _, err := async.Spawn[struct{}](helper, nil); err != nil {
		t.Fatal(err)
	}
	if err := async.BlockOn[error](WaitForEdge(PA5{}, Rising)); err != nil {
		t.Fatal(err)
	}
	if !raised {
		t.Error("edge future completed before the edge")
	}
}

func TestWaitForLevel(t *testing.T) {
	setup(t)
	in, err := NewInput(PF1{}, PullUp)
	if err != nil {
		t.Fatal(err)
	}
	defer in.Close()
	cx := async.NewContext(1)
	if err, ok := WaitForHigh(PF1{}).Poll(cx); !ok || err != nil {
		t.Errorf("WaitForHigh on a high pin = %v, %v", err, ok)
	}
	low := WaitForLow(PF1{})
	if _, ok := low.Poll(cx); ok {
		t.Fatal("WaitForLow ready on a high pin")
	}
	low.Cancel()
	if sim.Peek(py32.EXTI_BASE+py32.EXTI_IMR)&(1<<1) != 0 {
		t.Error("cancel left line 1 unmasked")
	}
	if sim.Peek(py32.EXTI_BASE+py32.EXTI_FTSR)&(1<<1) != 0 {
		t.Error("cancel left the falling edge enabled")
	}
	if sim.LineEnabled(py32.IRQ_EXTI0_1) {
		t.Error("EXTI0_1 still unmasked after cancel")
	}
}
