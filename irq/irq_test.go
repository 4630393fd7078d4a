package irq

import (
	"testing"

	"py32hal/async"
	"py32hal/device/py32"
	"py32hal/sim"
)

// fakeEvents is a status/enable register pair held in memory.
type fakeEvents struct {
	flags, enabled uint32
	clears         int
}

var _ Events = (*fakeEvents)(nil)

func (f *fakeEvents) Flags() uint32    { return f.flags }
func (f *fakeEvents) Clear(m uint32)   { f.flags &^= m; f.clears++ }
func (f *fakeEvents) Enable(m uint32)  { f.enabled |= m }
func (f *fakeEvents) Disable(m uint32) { f.enabled &^= m }
func (f *fakeEvents) Enabled() uint32  { return f.enabled }

func setup(t *testing.T, inst Instance) *fakeEvents {
	t.Helper()
	sim.Reset()
	async.Reset()
	ev := &fakeEvents{}
	Register(inst, ev)
	t.Cleanup(func() { Register(inst, nil) })
	return ev
}

func TestFutureLifecycle(t *testing.T) {
	ev := setup(t, TIM3)
	ev.flags = 0x1 // stale, must be cleared on arm

	f := NewFuture(TIM3, 0x3)
	if ev.flags != 0 {
		t.Fatalf("stale flags not cleared: %#x", ev.flags)
	}
	if ev.enabled != 0x3 {
		t.Fatalf("enabled = %#x, want 0x3", ev.enabled)
	}
	if !sim.LineEnabled(py32.IRQ_TIM3) {
		t.Fatal("NVIC line not unmasked while armed")
	}

	cx := async.NewContext(5)
	if _, ok := f.Poll(cx); ok {
		t.Fatal("future ready with no flags")
	}

	ev.flags = 0x2
	Dispatch(py32.IRQ_TIM3)
	if ev.enabled != 0x1 {
		t.Errorf("handler left enabled = %#x, want only the unflagged event", ev.enabled)
	}
	if Slots[TIM3][1].Registered() {
		t.Error("slot for fired event still holds a waker")
	}
	if !Slots[TIM3][0].Registered() {
		t.Error("slot for unfired event lost its waker")
	}

	got, ok := f.Poll(cx)
	if !ok || got != 0x2 {
		t.Fatalf("Poll = %#x, %v; want 0x2, true", got, ok)
	}
	if ev.flags != 0 {
		t.Errorf("observed flag not cleared: %#x", ev.flags)
	}
	if ev.enabled != 0 {
		t.Errorf("completed future left enables %#x", ev.enabled)
	}
	if sim.LineEnabled(py32.IRQ_TIM3) {
		t.Error("NVIC line still unmasked with nothing armed")
	}
}

func TestCancelDisarms(t *testing.T) {
	ev := setup(t, USART1)
	f := NewFuture(USART1, 1<<5)
	f.Poll(async.NewContext(1))
	f.Cancel()
	if ev.enabled != 0 {
		t.Errorf("cancel left enables %#x", ev.enabled)
	}
	if Slots[USART1][5].Registered() {
		t.Error("cancel left a waker registered")
	}
	if sim.LineEnabled(py32.IRQ_USART1) {
		t.Error("line unmasked after cancel")
	}
	if got, ok := f.Poll(async.NewContext(1)); !ok || got != 0 {
		t.Errorf("Poll after cancel = %#x, %v", got, ok)
	}
}

func TestPollAfterDetach(t *testing.T) {
	for _, tt := range []struct {
		name  string
		polls int
	}{
		{"unpolled", 0},
		{"polled", 1},
	} {
		t.Run(tt.name, func(t *testing.T) {
			setup(t, TIM3)
			f := NewFuture(TIM3, 0x3)
			for i := 0; i < tt.polls; i++ {
				if _, ok := f.Poll(async.NewContext(1)); ok {
					t.Fatal("future ready with no flags")
				}
			}
			Register(TIM3, nil)
			if got, ok := f.Poll(async.NewContext(1)); !ok || got != 0 {
				t.Fatalf("Poll = %#x, %v; want 0, true", got, ok)
			}
			if !f.Done() {
				t.Error("future still armed after its source went away")
			}
			if Slots[TIM3][0].Registered() || Slots[TIM3][1].Registered() {
				t.Error("detached future left a waker registered")
			}
			f.Cancel()
			f.Rearm()
			if !f.Done() {
				t.Error("rearm without a source armed the future")
			}
		})
	}
}

func TestRearmKeepsPendingFlag(t *testing.T) {
	ev := setup(t, TIM3)
	f := NewFuture(TIM3, 1)
	ev.flags = 1
	if got, ok := f.Poll(async.NewContext(1)); !ok || got != 1 {
		t.Fatalf("Poll = %#x, %v", got, ok)
	}
	ev.flags = 1 // fired again before the rearm
	f.Rearm()
	if ev.enabled != 1 || f.Done() {
		t.Fatalf("rearm: enabled %#x done %v", ev.enabled, f.Done())
	}
	if got, ok := f.Poll(async.NewContext(1)); !ok || got != 1 {
		t.Errorf("Poll after rearm = %#x, %v", got, ok)
	}
}

func TestSharedLineStaysUnmasked(t *testing.T) {
	sim.Reset()
	a, b := &fakeEvents{}, &fakeEvents{}
	Register(DMA2, a)
	Register(DMA3, b)
	t.Cleanup(func() {
		Register(DMA2, nil)
		Register(DMA3, nil)
	})

	fa := NewFuture(DMA2, 0x2)
	NewFuture(DMA3, 0x2)

	// Channel 3 fires: only its slot is serviced and channel 2 stays armed.
	b.flags = 0x2
	Dispatch(py32.IRQ_DMA1_CHANNEL2_3)
	if a.enabled != 0x2 {
		t.Errorf("channel 2 enables changed to %#x", a.enabled)
	}
	if b.enabled != 0 {
		t.Errorf("channel 3 enables = %#x, want 0", b.enabled)
	}
	if !sim.LineEnabled(py32.IRQ_DMA1_CHANNEL2_3) {
		t.Error("shared line masked while channel 2 is armed")
	}
	fa.Cancel()
	if sim.LineEnabled(py32.IRQ_DMA1_CHANNEL2_3) {
		t.Error("shared line unmasked with nothing armed")
	}
}

func TestExtiLinesSplitByVector(t *testing.T) {
	ev := setup(t, EXTI)
	NewFuture(EXTI, 1<<9)
	if !sim.LineEnabled(py32.IRQ_EXTI4_15) {
		t.Error("EXTI4_15 not unmasked for line 9")
	}
	if sim.LineEnabled(py32.IRQ_EXTI0_1) || sim.LineEnabled(py32.IRQ_EXTI2_3) {
		t.Error("unrelated EXTI vectors unmasked")
	}
	ev.flags = 1 << 9
	// Spurious entry on the wrong vector must not consume line 9.
	Dispatch(py32.IRQ_EXTI0_1)
	if ev.enabled != 1<<9 {
		t.Errorf("wrong vector disabled line 9")
	}
	Dispatch(py32.IRQ_EXTI4_15)
	if ev.enabled != 0 {
		t.Errorf("line 9 still enabled after its vector ran")
	}
}

func TestSysTickHandler(t *testing.T) {
	n := 0
	HandleSysTick(func() { n++ })
	t.Cleanup(func() { HandleSysTick(nil) })
	Dispatch(py32.IRQ_SysTick)
	if n != 1 {
		t.Errorf("tick handler ran %d times", n)
	}
}

func TestSetPriority(t *testing.T) {
	sim.Reset()
	SetPriority(py32.IRQ_USART2, 0xC3)
	got := sim.Peek(py32.NVIC_BASE+py32.NVIC_IPR+4*(py32.IRQ_USART2/4)) >> (8 * (py32.IRQ_USART2 % 4)) & 0xFF
	if got != 0xC0 {
		t.Errorf("priority = %#x, want 0xc0", got)
	}
}
