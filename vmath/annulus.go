package vmath

import "math"

// AnnulusRadius maps a uniform u in [0,1) to a radius in [inner, outer]
// Inverse CDF of the area-uniform distribution: r = sqrt(u*(R²-r²) + r²)
func AnnulusRadius(u, inner, outer float64) float64 {
	return math.Sqrt(u*(outer*outer-inner*inner) + inner*inner)
}

// AnnulusPoint returns a point on the XZ plane around center, uniform by area
// between inner and outer radius; the Y component is copied from center
func AnnulusPoint(r *FastRand, center Vec3F, inner, outer float64) Vec3F {
	radius := AnnulusRadius(r.Float64(), inner, outer)
	s, c := math.Sincos(r.Angle())
	return Vec3F{
		X: center.X + c*radius,
		Y: center.Y,
		Z: center.Z + s*radius,
	}
}
