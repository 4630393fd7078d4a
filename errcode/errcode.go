// Package errcode is the error taxonomy shared by every driver.
package errcode

import "errors"

// Code is a stable error identifier.
// It is a string newtype, comparable, allocation-free, and implements error.
type Code string

func (c Code) Error() string { return string(c) }

// Configuration
const (
	InvalidChannel        Code = "invalid_channel"
	InvalidFrequency      Code = "invalid_frequency"
	InvalidAddress        Code = "invalid_address"
	InvalidPin            Code = "invalid_pin"
	InvalidConfig         Code = "invalid_config"
	SpeedMode             Code = "speed_mode"
	PeripheralClockTooLow Code = "peripheral_clock_too_low"
	InUse                 Code = "in_use"
	AlreadyInitialized    Code = "already_initialized"
)

// Timing
const (
	Timeout       Code = "timeout"
	ClockNotReady Code = "clock_not_ready"
	ClockTimeout  Code = "clock_timeout"
)

// Transport
const (
	Noise       Code = "noise"
	Frame       Code = "frame"
	Parity      Code = "parity"
	Overrun     Code = "overrun"
	Arbitration Code = "arbitration"
	Acknowledge Code = "acknowledge"
	BusError    Code = "bus_error"
	Calibration Code = "calibration"
	Transfer    Code = "transfer"
)

// Storage
const (
	Busy              Code = "busy"
	Locked            Code = "locked"
	Unlocked          Code = "unlocked"
	AddressMisaligned Code = "address_misaligned"
)

const (
	OK    Code = "ok"
	Error Code = "error" // generic fallback
)

// Timeout phases carried in E.Msg.
const (
	PhaseStart    = "start"
	PhaseAddress  = "address"
	PhaseTx       = "tx"
	PhaseRx       = "rx"
	PhaseStop     = "stop"
	PhaseComplete = "complete"
	PhaseReady    = "ready"
	PhaseSwitch   = "switch"
)

// E keeps the operation, detail and cause next to a Code.
type E struct {
	C   Code
	Op  string
	Msg string
	Err error
}

// New returns an *E for op with detail msg.
func New(c Code, op, msg string) *E {
	return &E{C: c, Op: op, Msg: msg}
}

// Wrap returns an *E carrying cause err.
func Wrap(c Code, op string, err error) *E {
	return &E{C: c, Op: op, Err: err}
}

func (e *E) Error() string {
	s := string(e.C)
	if e.Op != "" {
		s = e.Op + ": " + s
	}
	if e.Msg != "" {
		s += " (" + e.Msg + ")"
	}
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}

func (e *E) Unwrap() error { return e.Err }
func (e *E) Code() Code    { return e.C }

// Is matches a bare Code, so errors.Is(err, errcode.Timeout) works on *E.
func (e *E) Is(target error) bool {
	c, ok := target.(Code)
	return ok && c == e.C
}

// Of extracts a Code from an error chain, defaulting to Error.
func Of(err error) Code {
	if err == nil {
		return OK
	}
	var c Code
	if errors.As(err, &c) {
		return c
	}
	type coder interface{ Code() Code }
	var x coder
	if errors.As(err, &x) {
		return x.Code()
	}
	return Error
}

// Phase returns the Msg of the first *E in err's chain.
func Phase(err error) string {
	var e *E
	if errors.As(err, &e) {
		return e.Msg
	}
	return ""
}
