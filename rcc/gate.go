package rcc

import (
	"py32hal/core"
	"py32hal/device/py32"
	"py32hal/errcode"
	"py32hal/periph"
)

// Enable gates the clock of one peripheral.
func Enable(id periph.ID, on bool) {
	id.SetClock(on)
}

// Reset pulses the reset line of one peripheral.
func Reset(id periph.ID) {
	id.Reset()
}

// IsEnabled reports whether a peripheral is clocked.
func IsEnabled(id periph.ID) bool {
	return id.ClockOn()
}

// MCOSource selects what the MCO pin outputs.
type MCOSource uint8

const (
	MCONone   MCOSource = 0
	MCOSysClk MCOSource = 1
	MCOHSI    MCOSource = 3
	MCOHSE    MCOSource = 4
	MCOPLL    MCOSource = 5
	MCOLSI    MCOSource = 6
	MCOLSE    MCOSource = 7
)

// SelectMCO routes src, divided by div (1, 2, 4 ... 128), to the MCO pin.
// The pin itself is configured by gpio.
func SelectMCO(src MCOSource, div uint8) error {
	n, ok := hsiDivBits(div)
	if !ok || src > MCOLSE || src == 2 {
		return errcode.New(errcode.InvalidConfig, "rcc.SelectMCO", "")
	}
	cfgr := rcc.At(py32.RCC_CFGR)
	core.With(func() {
		cfgr.SetField(py32.RCC_CFGR_MCOPRE_Pos, py32.RCC_CFGR_MCOPRE_Len, n)
		cfgr.SetField(py32.RCC_CFGR_MCOSEL_Pos, py32.RCC_CFGR_MCOSEL_Len, uint32(src))
	})
	return nil
}
