package common

import "cmp"

// Clamp restricts v to the closed range [lo, hi].
// If lo > hi the result is lo.
//
// Parameters:
//   - v: the value to clamp
//   - lo: lower bound (inclusive)
//   - hi: upper bound (inclusive)
//
// Returns:
//   - T: v limited to [lo, hi]
func Clamp[T cmp.Ordered](v, lo, hi T) T {
	if v > hi {
		v = hi
	}
	if v < lo {
		v = lo
	}
	return v
}

// RGB converts a packed 0xRRGGBB color into normalized float components.
//
// Parameters:
//   - hex: the packed color value
//
// Returns:
//   - [3]float32: red, green and blue in [0, 1]
func RGB(hex uint32) [3]float32 {
	return [3]float32{
		float32((hex>>16)&0xFF) / 255.0,
		float32((hex>>8)&0xFF) / 255.0,
		float32(hex&0xFF) / 255.0,
	}
}
