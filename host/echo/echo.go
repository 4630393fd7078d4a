// Package echo checks a board running the USART echo firmware: every byte
// sent must come back unchanged and in order.
package echo

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"time"
)

// ErrMismatch is returned when the echoed bytes differ from those sent.
var ErrMismatch = errors.New("echo mismatch")

// ErrTimeout is returned when the echo stops before the whole frame is back.
var ErrTimeout = errors.New("echo timeout")

// Pattern fills an n-byte frame with a sequence derived from seed. Every
// byte value shows up, so stuck data bits are caught.
func Pattern(n int, seed byte) []byte {
	b := make([]byte, n)
	x := seed
	for i := range b {
		b[i] = x
		x = x*5 + 1 // full period mod 256
	}
	return b
}

// Result of one frame.
type Result struct {
	Sent     int
	Received int
	Elapsed  time.Duration
	// Offset of the first differing byte, -1 when the frames match.
	Offset int
}

// Frame writes payload to rw and reads until the same number of bytes came
// back or timeout passes without progress. rw reads must return (0, nil)
// after their own read timeout, as host/serial ports do.
func Frame(rw io.ReadWriter, payload []byte, timeout time.Duration) (Result, error) {
	res := Result{Sent: len(payload), Offset: -1}
	start := time.Now()
	if _, err := rw.Write(payload); err != nil {
		return res, fmt.Errorf("write: %w", err)
	}

	got := make([]byte, 0, len(payload))
	chunk := make([]byte, 64)
	last := time.Now()
	for len(got) < len(payload) {
		n, err := rw.Read(chunk[:min(len(chunk), len(payload)-len(got))])
		got = append(got, chunk[:n]...)
		if err != nil && !errors.Is(err, io.EOF) {
			return res, fmt.Errorf("read: %w", err)
		}
		if n > 0 {
			last = time.Now()
			continue
		}
		if errors.Is(err, io.EOF) || time.Since(last) >= timeout {
			break
		}
	}
	res.Received = len(got)
	res.Elapsed = time.Since(start)

	if i := firstDiff(payload, got); i >= 0 {
		res.Offset = i
		if i >= len(got) {
			return res, fmt.Errorf("%w: %d of %d bytes", ErrTimeout, len(got), len(payload))
		}
		return res, fmt.Errorf("%w at byte %d: sent %#02x, got %#02x", ErrMismatch, i, payload[i], got[i])
	}
	return res, nil
}

func firstDiff(want, got []byte) int {
	if bytes.Equal(want, got) {
		return -1
	}
	for i := range want {
		if i >= len(got) || want[i] != got[i] {
			return i
		}
	}
	return len(want)
}

// Stats sums a run of frames.
type Stats struct {
	Frames int
	Failed int
	Bytes  int
	Time   time.Duration
}

// BytesPerSecond is the echoed throughput.
func (s Stats) BytesPerSecond() float64 {
	if s.Time <= 0 {
		return 0
	}
	return float64(s.Bytes) / s.Time.Seconds()
}

// Run sends count frames of size bytes, each with its own seed, and stops at
// the first failure unless keepGoing is set. report, if not nil, sees every
// frame.
func Run(rw io.ReadWriter, count, size int, timeout time.Duration, keepGoing bool, report func(int, Result, error)) (Stats, error) {
	var st Stats
	var first error
	for i := 0; i < count; i++ {
		res, err := Frame(rw, Pattern(size, byte(i)), timeout)
		st.Frames++
		st.Bytes += res.Received
		st.Time += res.Elapsed
		if report != nil {
			report(i, res, err)
		}
		if err != nil {
			st.Failed++
			if first == nil {
				first = fmt.Errorf("frame %d: %w", i, err)
			}
			if !keepGoing {
				break
			}
		}
	}
	return st, first
}
