package core

import (
	"slices"
	"testing"

	"py32hal/errcode"
	"py32hal/sim"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		got, want string
	}{
		{itoa(0), "0"},
		{itoa(-42), "-42"},
		{itoa(1234567), "1234567"},
		{itoa(-9223372036854775808), "-9223372036854775808"},
		{utoa(0), "0"},
		{utoa(4294967295), "4294967295"},
		{htoa(0x1F), "0x0000001f"},
		{htoa(0xDEADBEEF), "0xdeadbeef"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("got %q, want %q", tt.got, tt.want)
		}
	}
}

func TestFields(t *testing.T) {
	if m := Mask(4, 3); m != 0x70 {
		t.Errorf("Mask(4, 3) = %#x", m)
	}
	if m := Mask(0, 32); m != 0xFFFFFFFF {
		t.Errorf("Mask(0, 32) = %#x", m)
	}
	if f := Field(8, 4, 0xABCD); f != 0xB {
		t.Errorf("Field = %#x", f)
	}
	if v := Modify(8, 4, 0xABCD, 0x3); v != 0xA3CD {
		t.Errorf("Modify = %#x", v)
	}
	if v := SetField(4, 4, 0x0F); v != 0xFF {
		t.Errorf("SetField = %#x", v)
	}
	if v := ClearField(0, 4, 0xFF); v != 0xF0 {
		t.Errorf("ClearField = %#x", v)
	}
	if Bit(31) != 0x80000000 {
		t.Errorf("Bit(31) = %#x", Bit(31))
	}
	defer func() {
		if recover() == nil {
			t.Error("oversized field value accepted")
		}
	}()
	Modify(0, 2, 0, 4)
}

func TestMath(t *testing.T) {
	if CeilDiv(uint32(10), 3) != 4 || CeilDiv(uint32(9), 3) != 3 {
		t.Error("CeilDiv")
	}
	if RoundDiv(uint32(10), 4) != 3 || RoundDiv(uint32(9), 4) != 2 {
		t.Error("RoundDiv")
	}
	if Clamp(-5, 0, 10) != 0 || Clamp(15, 0, 10) != 10 || Clamp(7, 0, 10) != 7 {
		t.Error("Clamp")
	}
}

func TestTimers(t *testing.T) {
	sim.Reset()
	SetTime(0)
	SetTickRate(1000)

	var fired []int
	mk := func(id int, at uint64) *Timer {
		return &Timer{WakeTime: at, Handler: func(*Timer) uint8 {
			fired = append(fired, id)
			return SF_DONE
		}}
	}
	a, b, c := mk(1, 5), mk(2, 3), mk(3, 8)
	ScheduleTimer(a)
	ScheduleTimer(b)
	ScheduleTimer(c)
	if w, ok := NextWake(); !ok || w != 3 {
		t.Fatalf("NextWake = %d, %v", w, ok)
	}
	CancelTimer(c)

	periodic := 0
	p := &Timer{WakeTime: 2}
	p.Handler = func(tm *Timer) uint8 {
		periodic++
		if periodic == 3 {
			return SF_DONE
		}
		tm.WakeTime += 2
		return SF_RESCHEDULE
	}
	ScheduleTimer(p)

	for i := 0; i < 10; i++ {
		Tick()
	}
	if !slices.Equal(fired, []int{2, 1}) {
		t.Errorf("fired %v", fired)
	}
	if periodic != 3 {
		t.Errorf("periodic ran %d times", periodic)
	}
	if _, ok := NextWake(); ok {
		t.Error("timers left queued")
	}
	if Now() != 10 || TicksToMS(Now()) != 10 || TicksFromMS(7) != 7 {
		t.Errorf("Now = %d", Now())
	}
}

func TestSpinUntil(t *testing.T) {
	sim.Reset()
	n := 0
	if err := SpinUntil(5, "op", errcode.PhaseReady, func() bool { n++; return n == 3 }); err != nil {
		t.Fatal(err)
	}
	err := SpinUntil(5, "core.test", errcode.PhaseStop, func() bool { return false })
	if errcode.Of(err) != errcode.Timeout || errcode.Phase(err) != errcode.PhaseStop {
		t.Errorf("got %v", err)
	}
}

func TestLogAndEvents(t *testing.T) {
	sim.Reset()
	var lines []string
	SetLogSink(func(l Level, msg string) { lines = append(lines, l.String()+" "+msg) })
	defer SetLogSink(nil)
	SetLogLevel(LevelInfo)
	Debug("hidden")
	Info("shown")
	Warn("warned")
	if !slices.Equal(lines, []string{"INFO shown", "WARN warned"}) {
		t.Errorf("lines = %q", lines)
	}

	ClearEvents()
	for i := 0; i < EventRingSize+2; i++ {
		RecordEvent(EvtIRQ, 1, uint32(i), 0)
	}
	evs := Events()
	if len(evs) != EventRingSize || evs[0].Value1 != 2 || evs[len(evs)-1].Value1 != EventRingSize+1 {
		t.Errorf("ring holds %d events, first %d", len(evs), evs[0].Value1)
	}
	lines = nil
	DumpEvents()
	if len(lines) != EventRingSize+1 {
		t.Errorf("dump wrote %d lines", len(lines))
	}
	ClearEvents()
	if len(Events()) != 0 {
		t.Error("ring not cleared")
	}
}
