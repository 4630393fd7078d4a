package core

import "golang.org/x/exp/constraints"

// CeilDiv returns ceil(a / b) for b > 0.
func CeilDiv[T constraints.Unsigned](a, b T) T {
	return (a + b - 1) / b
}

// RoundDiv returns a / b rounded to nearest, halves away from zero.
func RoundDiv[T constraints.Unsigned](a, b T) T {
	return (a + b/2) / b
}

// Clamp limits v to [lo, hi].
func Clamp[T constraints.Ordered](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// AbsDiff returns |a - b|.
func AbsDiff[T constraints.Integer](a, b T) T {
	if a > b {
		return a - b
	}
	return b - a
}
