package core

// Bit-field helpers over 32-bit register words. Offsets and widths are in bits.

// Mask returns w contiguous ones starting at bit i.
func Mask(i, w uint8) uint32 {
	if w >= 32 {
		return ^uint32(0) << i
	}
	return ((1 << w) - 1) << i
}

// Field extracts the w-bit field at offset i.
func Field(i, w uint8, word uint32) uint32 {
	return (word & Mask(i, w)) >> i
}

// Modify replaces the w-bit field at offset i of orig with val.
// val must fit in w bits; a wider value panics unless built with nodebug.
func Modify(i, w uint8, orig, val uint32) uint32 {
	m := Mask(i, w)
	if debugChecks && val > m>>i {
		panic("core: field value " + utoa(val) + " exceeds " + itoa(int(w)) + " bits")
	}
	return (orig &^ m) | ((val << i) & m)
}

// Bit returns a word with only bit i set.
func Bit(i uint8) uint32 {
	return 1 << i
}

// SetField sets every bit of the w-bit field at offset i.
func SetField(i, w uint8, orig uint32) uint32 {
	return orig | Mask(i, w)
}

// ClearField clears the w-bit field at offset i.
func ClearField(i, w uint8, orig uint32) uint32 {
	return orig &^ Mask(i, w)
}
