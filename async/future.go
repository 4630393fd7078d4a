package async

// Future is a value that eventually produces a T. Poll must be cheap and must
// register cx's waker before reporting pending.
type Future[T any] interface {
	Poll(cx *Context) (T, bool)
}

// Canceler is implemented by futures that armed hardware and must undo it when
// abandoned before completion.
type Canceler interface {
	Cancel()
}

// Drop cancels f if it supports cancellation. Safe on completed futures.
func Drop(f any) {
	if c, ok := f.(Canceler); ok {
		c.Cancel()
	}
}

// Result pairs a value with an error, the usual output of a driver future.
type Result[T any] struct {
	Val T
	Err error
}

// PollFunc adapts a function to Future.
type PollFunc[T any] func(cx *Context) (T, bool)

func (f PollFunc[T]) Poll(cx *Context) (T, bool) {
	return f(cx)
}

type readyFuture[T any] struct {
	v T
}

func (r readyFuture[T]) Poll(*Context) (T, bool) {
	return r.v, true
}

// Ready returns a future that completes immediately with v.
func Ready[T any](v T) Future[T] {
	return readyFuture[T]{v}
}

// Either is the outcome of Select: which side finished and with what.
type Either[A, B any] struct {
	First bool
	A     A
	B     B
}

type selectFuture[A, B any] struct {
	a    Future[A]
	b    Future[B]
	done bool
}

// Select polls a and b until one completes, then cancels the other.
// a is polled first, so it wins when both are ready.
func Select[A, B any](a Future[A], b Future[B]) Future[Either[A, B]] {
	return &selectFuture[A, B]{a: a, b: b}
}

func (s *selectFuture[A, B]) Poll(cx *Context) (Either[A, B], bool) {
	if v, ok := s.a.Poll(cx); ok {
		s.done = true
		Drop(s.b)
		return Either[A, B]{First: true, A: v}, true
	}
	if v, ok := s.b.Poll(cx); ok {
		s.done = true
		Drop(s.a)
		return Either[A, B]{B: v}, true
	}
	return Either[A, B]{}, false
}

func (s *selectFuture[A, B]) Cancel() {
	if !s.done {
		Drop(s.a)
		Drop(s.b)
		s.done = true
	}
}
