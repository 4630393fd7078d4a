// Package async is a cooperative single-core executor for poll-based futures.
//
// A future is a state machine with a Poll method. Poll either completes or
// registers the Context's waker somewhere an interrupt handler will find it
// and reports pending. Wakers are small integers so that interrupt handlers
// can store and take them with a single atomic operation.
package async

import (
	"sync/atomic"

	"py32hal/core"
)

// MaxTasks is the number of task slots in the executor.
const MaxTasks = 32

// Waker identifies what to make runnable. Zero is no waker, 1..MaxTasks are
// task slots and WakerMain is the caller of BlockOn.
type Waker uint32

const WakerMain Waker = MaxTasks + 1

var (
	ready     atomic.Uint32
	mainReady atomic.Bool
)

// Wake marks the waker's task runnable. Safe from interrupt handlers.
func (w Waker) Wake() {
	switch {
	case w == WakerMain:
		mainReady.Store(true)
	case w >= 1 && w <= MaxTasks:
		ready.Or(1 << (w - 1))
	default:
		return
	}
	core.RecordEvent(core.EvtWake, uint8(w), 0, 0)
}

// AtomicWaker is a slot holding at most one waker. Register and Take are
// wait-free; the slot is shared between a polling task and an interrupt
// handler.
type AtomicWaker struct {
	w atomic.Uint32
}

// Register stores w, replacing any previous waker.
func (a *AtomicWaker) Register(w Waker) {
	a.w.Store(uint32(w))
}

// Take removes and returns the stored waker.
func (a *AtomicWaker) Take() Waker {
	return Waker(a.w.Swap(0))
}

// Wake takes the stored waker, if any, and wakes it.
func (a *AtomicWaker) Wake() {
	if w := a.Take(); w != 0 {
		w.Wake()
	}
}

// Registered reports whether a waker is stored.
func (a *AtomicWaker) Registered() bool {
	return a.w.Load() != 0
}

// Context is handed to Poll. It names the task being polled.
type Context struct {
	waker Waker
}

// NewContext returns a context whose waker is w. Mostly useful in tests.
func NewContext(w Waker) *Context {
	return &Context{waker: w}
}

// Waker returns the waker of the task being polled.
func (cx *Context) Waker() Waker {
	return cx.waker
}
