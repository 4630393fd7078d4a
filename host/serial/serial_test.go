package serial

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/tarm/serial"
)

func TestValidate(t *testing.T) {
	for _, tt := range []struct {
		name string
		cfg  *Config
		want string // empty: valid
	}{
		{"default", DefaultConfig("/dev/ttyUSB0"), ""},
		{"blocking", &Config{Device: "COM3", Baud: 9600}, ""},
		{"nil", nil, "nil"},
		{"no device", &Config{Baud: 115200}, "device"},
		{"zero baud", &Config{Device: "/dev/ttyUSB0"}, "baud"},
		{"negative baud", &Config{Device: "/dev/ttyUSB0", Baud: -1}, "baud"},
		{"negative timeout", &Config{Device: "/dev/ttyUSB0", Baud: 115200, ReadTimeout: -5}, "timeout"},
	} {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.want == "" {
				if err != nil {
					t.Fatalf("Validate = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("Validate = %v, want error mentioning %q", err, tt.want)
			}
		})
	}
}

func TestOpenRejectsInvalidConfig(t *testing.T) {
	if p, err := Open(&Config{Device: "/dev/ttyUSB0"}); err == nil {
		p.Close()
		t.Fatal("Open accepted a zero baud rate")
	}
}

func TestTarmConfig(t *testing.T) {
	got := DefaultConfig("/dev/ttyACM1").tarm()
	want := serial.Config{
		Name:        "/dev/ttyACM1",
		Baud:        115200,
		ReadTimeout: 100 * time.Millisecond,
		Size:        8,
		Parity:      serial.ParityNone,
		StopBits:    serial.Stop1,
	}
	if *got != want {
		t.Errorf("tarm() = %+v, want %+v", *got, want)
	}
}

func TestLoopbackEcho(t *testing.T) {
	invert := func(b []byte) []byte {
		for i := range b {
			b[i] ^= 0xFF
		}
		return b
	}
	for _, tt := range []struct {
		name    string
		corrupt func([]byte) []byte
		in      []byte
		want    []byte
	}{
		{"plain", nil, []byte("hello"), []byte("hello")},
		{"binary", nil, []byte{0x00, 0xFF, 0x55}, []byte{0x00, 0xFF, 0x55}},
		{"corrupted", invert, []byte{0x00, 0x0F}, []byte{0xFF, 0xF0}},
		{"dropped", func([]byte) []byte { return nil }, []byte("lost"), nil},
	} {
		t.Run(tt.name, func(t *testing.T) {
			l := NewLoopback(5 * time.Millisecond)
			l.Corrupt = tt.corrupt
			in := bytes.Clone(tt.in)
			n, err := l.Write(in)
			if err != nil || n != len(tt.in) {
				t.Fatalf("Write = %d, %v", n, err)
			}
			if !bytes.Equal(in, tt.in) {
				t.Errorf("Corrupt modified the caller's buffer: % X", in)
			}
			buf := make([]byte, 16)
			n, err = l.Read(buf)
			if err != nil {
				t.Fatalf("Read: %v", err)
			}
			if !bytes.Equal(buf[:n], tt.want) {
				t.Errorf("Read = % X, want % X", buf[:n], tt.want)
			}
		})
	}
}

func TestLoopbackReadTimeout(t *testing.T) {
	l := NewLoopback(10 * time.Millisecond)
	start := time.Now()
	n, err := l.Read(make([]byte, 4))
	if n != 0 || err != nil {
		t.Fatalf("Read = %d, %v; want 0, nil", n, err)
	}
	if d := time.Since(start); d < 10*time.Millisecond {
		t.Errorf("Read returned after %v, before the timeout", d)
	}
}

func TestLoopbackReadWakesOnWrite(t *testing.T) {
	l := NewLoopback(time.Second)
	go func() {
		time.Sleep(5 * time.Millisecond)
		l.Write([]byte{0x42})
	}()
	buf := make([]byte, 4)
	n, err := l.Read(buf)
	if err != nil || n != 1 || buf[0] != 0x42 {
		t.Fatalf("Read = % X, %v", buf[:n], err)
	}
}

func TestLoopbackFlush(t *testing.T) {
	l := NewLoopback(5 * time.Millisecond)
	l.Write([]byte("stale"))
	if err := l.Flush(); err != nil {
		t.Fatal(err)
	}
	if n, err := l.Read(make([]byte, 8)); n != 0 || err != nil {
		t.Errorf("Read after Flush = %d, %v", n, err)
	}
}

func TestLoopbackClose(t *testing.T) {
	for _, tt := range []struct {
		name string
		op   func(*Loopback) error
		want error
	}{
		{"read", func(l *Loopback) error { _, err := l.Read(make([]byte, 1)); return err }, io.EOF},
		{"write", func(l *Loopback) error { _, err := l.Write([]byte{1}); return err }, io.ErrClosedPipe},
	} {
		t.Run(tt.name, func(t *testing.T) {
			l := NewLoopback(time.Second)
			l.Write([]byte{1}) // pending data does not outlive Close
			if err := l.Close(); err != nil {
				t.Fatal(err)
			}
			if err := tt.op(l); !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestLoopbackCloseWakesReader(t *testing.T) {
	l := NewLoopback(time.Minute)
	done := make(chan error, 1)
	go func() {
		_, err := l.Read(make([]byte, 1))
		done <- err
	}()
	time.Sleep(5 * time.Millisecond)
	l.Close()
	select {
	case err := <-done:
		if err != io.EOF {
			t.Errorf("blocked Read = %v, want EOF", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Close did not wake a blocked Read")
	}
}
