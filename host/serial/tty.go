package serial

import (
	"fmt"
	"sync"
	"time"

	"github.com/tarm/serial"
)

// tty is a Port on an operating-system serial device.
type tty struct {
	dev  string
	once sync.Once
	p    *serial.Port
}

// Open validates cfg and opens the device it names as 8N1.
func Open(cfg *Config) (Port, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	p, err := serial.OpenPort(cfg.tarm())
	if err != nil {
		return nil, fmt.Errorf("open %s at %d baud: %w", cfg.Device, cfg.Baud, err)
	}
	return &tty{dev: cfg.Device, p: p}, nil
}

// tarm maps c onto the driver's settings. The echo firmware only speaks 8N1.
func (c *Config) tarm() *serial.Config {
	return &serial.Config{
		Name:        c.Device,
		Baud:        c.Baud,
		ReadTimeout: time.Duration(c.ReadTimeout) * time.Millisecond,
		Size:        8,
		Parity:      serial.ParityNone,
		StopBits:    serial.Stop1,
	}
}

func (t *tty) Read(b []byte) (int, error)  { return t.p.Read(b) }
func (t *tty) Write(b []byte) (int, error) { return t.p.Write(b) }

func (t *tty) Flush() error {
	if err := t.p.Flush(); err != nil {
		return fmt.Errorf("flush %s: %w", t.dev, err)
	}
	return nil
}

// Close releases the device; later calls are no-ops.
func (t *tty) Close() error {
	var err error
	t.once.Do(func() { err = t.p.Close() })
	return err
}
