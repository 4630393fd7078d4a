// Package serial opens the host side of a board's USART, usually through a
// USB-to-UART bridge.
package serial

import (
	"fmt"
	"io"
)

// Port is an open serial line. Tests substitute an in-memory loopback.
type Port interface {
	io.ReadWriteCloser

	// Flush drops anything the driver still buffers.
	Flush() error
}

// Config holds serial port configuration
type Config struct {
	// Device path (e.g., "/dev/ttyUSB0", "COM3")
	Device string

	// Baud rate; the echo firmware runs at 115200
	Baud int

	// Read timeout in milliseconds (0 = blocking)
	ReadTimeout int
}

// DefaultConfig returns the settings the echo firmware expects.
func DefaultConfig(device string) *Config {
	return &Config{
		Device:      device,
		Baud:        115200,
		ReadTimeout: 100,
	}
}

// Validate rejects configurations the driver would only fail on later.
func (c *Config) Validate() error {
	if c == nil {
		return fmt.Errorf("config cannot be nil")
	}
	if c.Device == "" {
		return fmt.Errorf("no serial device given")
	}
	if c.Baud <= 0 {
		return fmt.Errorf("invalid baud rate %d", c.Baud)
	}
	if c.ReadTimeout < 0 {
		return fmt.Errorf("invalid read timeout %d ms", c.ReadTimeout)
	}
	return nil
}
