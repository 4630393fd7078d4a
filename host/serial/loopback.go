package serial

import (
	"bytes"
	"io"
	"sync"
	"time"
)

// Loopback is a Port whose writes come back on reads, like a board running
// the echo firmware. Corrupt, when set, rewrites each echoed chunk.
type Loopback struct {
	mu      sync.Mutex
	cond    *sync.Cond
	buf     bytes.Buffer
	closed  bool
	timeout time.Duration

	Corrupt func([]byte) []byte
}

// NewLoopback returns a loopback whose reads give up after timeout with
// zero bytes, as a native port with a read timeout does.
func NewLoopback(timeout time.Duration) *Loopback {
	l := &Loopback{timeout: timeout}
	l.cond = sync.NewCond(&l.mu)
	return l
}

func (l *Loopback) Write(b []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return 0, io.ErrClosedPipe
	}
	echo := b
	if l.Corrupt != nil {
		echo = l.Corrupt(bytes.Clone(b))
	}
	l.buf.Write(echo)
	l.cond.Broadcast()
	return len(b), nil
}

func (l *Loopback) Read(b []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	deadline := time.Now().Add(l.timeout)
	for l.buf.Len() == 0 && !l.closed {
		if !time.Now().Before(deadline) {
			return 0, nil
		}
		t := time.AfterFunc(time.Until(deadline), l.cond.Broadcast)
		l.cond.Wait()
		t.Stop()
	}
	if l.closed {
		return 0, io.EOF
	}
	return l.buf.Read(b)
}

func (l *Loopback) Flush() error {
	l.mu.Lock()
	l.buf.Reset()
	l.mu.Unlock()
	return nil
}

func (l *Loopback) Close() error {
	l.mu.Lock()
	l.closed = true
	l.cond.Broadcast()
	l.mu.Unlock()
	return nil
}
