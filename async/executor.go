package async

import (
	"math/bits"

	"py32hal/core"
	"py32hal/errcode"
)

type task interface {
	poll(cx *Context) bool
	cancel()
}

type taskOf[T any] struct {
	f    Future[T]
	done func(T)
}

func (t *taskOf[T]) poll(cx *Context) bool {
	v, ok := t.f.Poll(cx)
	if ok && t.done != nil {
		t.done(v)
	}
	return ok
}

func (t *taskOf[T]) cancel() {
	Drop(t.f)
}

var tasks [MaxTasks]task

// Spawn places f in a free task slot and marks it runnable. done, if not
// nil, receives the result when f completes. Spawn returns the slot's waker.
func Spawn[T any](f Future[T], done func(T)) (Waker, error) {
	for i := range tasks {
		if tasks[i] == nil {
			tasks[i] = &taskOf[T]{f: f, done: done}
			w := Waker(i + 1)
			w.Wake()
			return w, nil
		}
	}
	return 0, errcode.New(errcode.Busy, "async.Spawn", "no free task slot")
}

// Abort cancels the task in w's slot and frees the slot.
func Abort(w Waker) {
	if w < 1 || w > MaxTasks {
		return
	}
	i := w - 1
	if t := tasks[i]; t != nil {
		tasks[i] = nil
		ready.And(^(uint32(1) << i))
		t.cancel()
	}
}

// Tasks returns the number of live tasks.
func Tasks() int {
	n := 0
	for _, t := range tasks {
		if t != nil {
			n++
		}
	}
	return n
}

// RunOnce polls every runnable task once and reports whether any ran.
func RunOnce() bool {
	pending := ready.Swap(0)
	if pending == 0 {
		return false
	}
	for pending != 0 {
		i := bits.TrailingZeros32(pending)
		pending &^= 1 << i
		t := tasks[i]
		if t == nil {
			continue
		}
		cx := Context{waker: Waker(i + 1)}
		if t.poll(&cx) {
			tasks[i] = nil
		}
	}
	return true
}

// Run polls tasks forever, sleeping in WFI whenever nothing is runnable.
func Run() {
	for {
		if !RunOnce() {
			core.Idle(anyReady)
		}
	}
}

// RunUntil runs tasks until cond reports true.
func RunUntil(cond func() bool) {
	for !cond() {
		if !RunOnce() && !cond() {
			core.Idle(anyReady)
		}
	}
}

func anyReady() bool {
	return ready.Load() != 0 || mainReady.Load()
}

// BlockOn drives f to completion from the main loop, running spawned tasks
// while f is pending.
func BlockOn[T any](f Future[T]) T {
	cx := Context{waker: WakerMain}
	mainReady.Store(true)
	for {
		if mainReady.Swap(false) {
			if v, ok := f.Poll(&cx); ok {
				return v
			}
		}
		if !RunOnce() {
			core.Idle(anyReady)
		}
	}
}

// Reset drops every task without cancelling it and clears all ready state.
// Meant for tests and warm restarts.
func Reset() {
	tasks = [MaxTasks]task{}
	ready.Store(0)
	mainReady.Store(false)
}
