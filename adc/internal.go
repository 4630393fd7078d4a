package adc

import (
	"py32hal/device/py32"
	"py32hal/reg"
)

const fullScale = 4095

// factoryCal returns the temperature sensor readings taken at TS_CAL1_TEMP
// and TS_CAL2_TEMP with VDDA at VDDA_CAL_MV.
func factoryCal() (lo, hi int32) {
	lo = int32(reg.Read32(py32.TS_CAL1_ADDR) & 0xFFF)
	hi = int32(reg.Read32(py32.TS_CAL2_ADDR) & 0xFFF)
	return lo, hi
}

// Temperature converts a 12-bit reading of the temperature channel to
// millidegrees Celsius, interpolating between the two factory points.
func Temperature(raw uint16) int32 {
	lo, hi := factoryCal()
	if hi == lo {
		return py32.TS_CAL1_TEMP * 1000
	}
	span := int32(py32.TS_CAL2_TEMP-py32.TS_CAL1_TEMP) * 1000
	return (int32(raw)-lo)*span/(hi-lo) + py32.TS_CAL1_TEMP*1000
}

// VrefInternal converts a 12-bit reading of the reference channel to
// millivolts, taking VDDA as VDDA_CAL_MV.
func VrefInternal(raw uint16) uint32 {
	return (uint32(raw)*py32.VDDA_CAL_MV + fullScale/2) / fullScale
}

// VDDA returns the supply in millivolts implied by a reading of the internal
// reference, or 0 for a zero reading.
func VDDA(raw uint16) uint32 {
	if raw == 0 {
		return 0
	}
	return (py32.VREFINT_MV*fullScale + uint32(raw)/2) / uint32(raw)
}

// Millivolts scales a reading taken at resolution r against a supply of
// vdda millivolts.
func Millivolts(raw uint16, r Resolution, vdda uint32) uint32 {
	top := uint32(1)<<r.Bits() - 1
	return (uint32(raw)*vdda + top/2) / top
}
