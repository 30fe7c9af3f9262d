package vmath

// EaseInOutQuad maps linear progress p in [0,1] to eased progress
// Accelerates through the first half, decelerates through the second
func EaseInOutQuad(p float64) float64 {
	if p <= 0 {
		return 0
	}
	if p >= 1 {
		return 1
	}
	if p < 0.5 {
		return 2 * p * p
	}
	return -1 + (4-2*p)*p
}

// Clamp restricts v to [lo, hi]
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
