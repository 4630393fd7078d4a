package systick

import (
	"testing"

	"py32hal/async"
	"py32hal/core"
	"py32hal/rcc"
	"py32hal/sim"
)

func setup(t *testing.T) {
	t.Helper()
	sim.Reset()
	async.Reset()
	core.SetTime(0)
	if _, err := rcc.Configure(rcc.DefaultConfig()); err != nil {
		t.Fatal(err)
	}
	if err := Start(1000); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(Stop)
}

func TestReload(t *testing.T) {
	tests := []struct {
		hclk, rate, want uint32
		ok               bool
	}{
		{16000000, 1000, 15999, true},
		{48000000, 1000, 47999, true},
		{8000000, 1, 7999999, true},
		{48000000, 1, 0, false},
		{16000000, 0, 0, false},
		{1000, 2000, 0, false},
	}
	for _, tt := range tests {
		got, err := Reload(tt.hclk, tt.rate)
		if (err == nil) != tt.ok || got != tt.want {
			t.Errorf("Reload(%d, %d) = %d, %v", tt.hclk, tt.rate, got, err)
		}
	}
}

func TestTicks(t *testing.T) {
	setup(t)
	start := Now()
	sim.Advance(5*16000 + 100)
	if got := Now() - start; got != 5 {
		t.Errorf("%d ticks in 5 ms", got)
	}
	if Millis() != Now() {
		t.Errorf("Millis = %d at 1 kHz, Now = %d", Millis(), Now())
	}
	Stop()
	frozen := Now()
	sim.Advance(50000)
	if Running() || Now() != frozen {
		t.Error("ticking after Stop")
	}
}

func TestDelay(t *testing.T) {
	setup(t)
	c0 := sim.Cycles()
	Delay(10)
	if d := sim.Cycles() - c0; d < 9*16000 || d > 11*16000 {
		t.Errorf("Delay(10) took %d cycles", d)
	}
}

func TestSleep(t *testing.T) {
	setup(t)
	start := Now()
	async.BlockOn[struct{}](Sleep(5))
	if d := Now() - start; d < 5 || d > 6 {
		t.Errorf("Sleep(5) took %d ticks", d)
	}
	if _, ok := core.NextWake(); ok {
		t.Error("alarm left queued")
	}
}

func TestSleepTasks(t *testing.T) {
	setup(t)
	var order []int
	for _, ms := range []uint32{8, 3} {
		if _, err := async.Spawn[struct{}](Sleep(ms), func(struct{}) {
			order = append(order, int(ms))
		}); err != nil {
			t.Fatal(err)
		}
	}
	async.RunUntil(func() bool { return len(order) == 2 })
	if order[0] != 3 || order[1] != 8 {
		t.Errorf("completion order %v", order)
	}
	if Now() < 8 {
		t.Errorf("finished at tick %d", Now())
	}
}

func TestSleepCancel(t *testing.T) {
	setup(t)
	f := Sleep(100)
	if _, ok := core.NextWake(); !ok {
		t.Fatal("alarm not queued")
	}
	f.Cancel()
	if _, ok := core.NextWake(); ok {
		t.Error("alarm still queued after Cancel")
	}
}
