package vmath

import "math"

// Yaw is a heading around the up axis in radians
// Yaw 0 faces +Z, positive yaw turns toward +X
type Yaw float64

// YawOf returns the heading of the horizontal projection of v
// A vertical or zero vector yields yaw 0
func YawOf(v Vec3F) Yaw {
	if v.X == 0 && v.Z == 0 {
		return 0
	}
	return Yaw(math.Atan2(v.X, v.Z))
}

// Forward returns the unit horizontal vector for the heading
func (y Yaw) Forward() Vec3F {
	s, c := math.Sincos(float64(y))
	return Vec3F{X: s, Z: c}
}

// WrapAngle maps an angle into (-π, π]
func WrapAngle(a float64) float64 {
	a = math.Mod(a+math.Pi, 2*math.Pi)
	if a <= 0 {
		a += 2 * math.Pi
	}
	return a - math.Pi
}

// SlerpYaw rotates from a toward b along the shortest arc by fraction t
// t is clamped to [0,1] like a spherical interpolation restricted to one axis
func SlerpYaw(a, b Yaw, t float64) Yaw {
	if t <= 0 {
		return a
	}
	if t > 1 {
		t = 1
	}
	delta := WrapAngle(float64(b) - float64(a))
	return Yaw(WrapAngle(float64(a) + delta*t))
}
