package async

import (
	"testing"

	"py32hal/errcode"
)

// countdown completes after n polls, waking itself each time.
type countdown struct {
	n        int
	polls    int
	canceled bool
}

func (c *countdown) Poll(cx *Context) (int, bool) {
	c.polls++
	if c.polls >= c.n {
		return c.polls, true
	}
	cx.Waker().Wake()
	return 0, false
}

func (c *countdown) Cancel() { c.canceled = true }

// parked never completes on its own; it completes once flag is set.
type parked struct {
	slot *AtomicWaker
	flag *bool
}

func (p parked) Poll(cx *Context) (struct{}, bool) {
	p.slot.Register(cx.Waker())
	if *p.flag {
		return struct{}{}, true
	}
	return struct{}{}, false
}

func TestAtomicWakerTakeOnce(t *testing.T) {
	Reset()
	var a AtomicWaker
	a.Register(3)
	if !a.Registered() {
		t.Fatal("waker not registered")
	}
	a.Wake()
	if a.Registered() {
		t.Error("waker still registered after Wake")
	}
	if got := ready.Load(); got != 1<<2 {
		t.Errorf("ready = %#b, want slot 3 set", got)
	}
	a.Wake()
	if got := ready.Load(); got != 1<<2 {
		t.Errorf("second Wake changed ready to %#b", got)
	}
}

func TestSpawnRunsToCompletion(t *testing.T) {
	Reset()
	c := &countdown{n: 3}
	var got int
	if _, err := Spawn[int](c, func(v int) { got = v }); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		if !RunOnce() {
			t.Fatalf("round %d: nothing ran", i)
		}
	}
	if got != 3 {
		t.Errorf("result = %d, want 3", got)
	}
	if Tasks() != 0 {
		t.Errorf("Tasks() = %d after completion", Tasks())
	}
	if RunOnce() {
		t.Error("RunOnce ran with no runnable task")
	}
}

func TestSpawnFull(t *testing.T) {
	Reset()
	flag := false
	var slot AtomicWaker
	for i := 0; i < MaxTasks; i++ {
		if _, err := Spawn[struct{}](parked{&slot, &flag}, nil); err != nil {
			t.Fatalf("spawn %d: %v", i, err)
		}
	}
	_, err := Spawn[struct{}](parked{&slot, &flag}, nil)
	if errcode.Of(err) != errcode.Busy {
		t.Errorf("33rd spawn err = %v, want busy", err)
	}
	Reset()
}

func TestAbortCancels(t *testing.T) {
	Reset()
	c := &countdown{n: 100}
	w, err := Spawn[int](c, nil)
	if err != nil {
		t.Fatal(err)
	}
	RunOnce()
	Abort(w)
	if !c.canceled {
		t.Error("aborted task was not cancelled")
	}
	if Tasks() != 0 {
		t.Errorf("Tasks() = %d after Abort", Tasks())
	}
}

func TestBlockOnRunsTasks(t *testing.T) {
	Reset()
	flag := false
	var slot AtomicWaker
	helper := PollFunc[struct{}](func(cx *Context) (struct{}, bool) {
		flag = true
		slot.Wake()
		return struct{}{}, true
	})
	if _, err := Spawn[struct{}](helper, nil); err != nil {
		t.Fatal(err)
	}
	BlockOn[struct{}](parked{&slot, &flag})
	if Tasks() != 0 {
		t.Errorf("helper still live")
	}
}

func TestSelectCancelsLoser(t *testing.T) {
	Reset()
	fast := &countdown{n: 2}
	slow := &countdown{n: 10}
	res := BlockOn(Select[int, int](fast, slow))
	if !res.First || res.A != 2 {
		t.Errorf("Select = %+v, want first with 2", res)
	}
	if !slow.canceled {
		t.Error("losing future not cancelled")
	}
	if fast.canceled {
		t.Error("winning future cancelled")
	}
}
