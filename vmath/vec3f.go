package vmath

import (
	"math"
)

// Vec3F is a float64 3D world vector, Y is up
// Horizontal flight happens in the XZ plane at a fixed altitude
type Vec3F struct {
	X, Y, Z float64
}

func V3FAdd(a, b Vec3F) Vec3F {
	return Vec3F{a.X + b.X, a.Y + b.Y, a.Z + b.Z}
}

func V3FSub(a, b Vec3F) Vec3F {
	return Vec3F{a.X - b.X, a.Y - b.Y, a.Z - b.Z}
}

func V3FScale(v Vec3F, s float64) Vec3F {
	return Vec3F{v.X * s, v.Y * s, v.Z * s}
}

func V3FDot(a, b Vec3F) float64 {
	return a.X*b.X + a.Y*b.Y + a.Z*b.Z
}

func V3FMagSq(v Vec3F) float64 {
	return v.X*v.X + v.Y*v.Y + v.Z*v.Z
}

func V3FMag(v Vec3F) float64 {
	return math.Sqrt(V3FMagSq(v))
}

// V3FDist returns the Euclidean distance between a and b
func V3FDist(a, b Vec3F) float64 {
	return V3FMag(V3FSub(a, b))
}

// V3FNormalize returns the unit vector of v, zero vector stays zero
func V3FNormalize(v Vec3F) Vec3F {
	mag := V3FMag(v)
	if mag == 0 {
		return Vec3F{}
	}
	inv := 1.0 / mag
	return Vec3F{v.X * inv, v.Y * inv, v.Z * inv}
}

// V3FIsZero reports whether all components are exactly zero
func V3FIsZero(v Vec3F) bool {
	return v.X == 0 && v.Y == 0 && v.Z == 0
}

// V3FReflect returns v reflected off a surface with unit normal n
// v' = v - 2 * dot(v, n) * n
func V3FReflect(v, n Vec3F) Vec3F {
	d := 2 * V3FDot(v, n)
	return Vec3F{v.X - d*n.X, v.Y - d*n.Y, v.Z - d*n.Z}
}

// V3FLerp interpolates linearly, t is not clamped
func V3FLerp(a, b Vec3F, t float64) Vec3F {
	return Vec3F{
		a.X + (b.X-a.X)*t,
		a.Y + (b.Y-a.Y)*t,
		a.Z + (b.Z-a.Z)*t,
	}
}

// V3FFlat drops the vertical component
func V3FFlat(v Vec3F) Vec3F {
	return Vec3F{X: v.X, Z: v.Z}
}

// V3FAtY returns v moved to altitude y
func V3FAtY(v Vec3F, y float64) Vec3F {
	return Vec3F{X: v.X, Y: y, Z: v.Z}
}

// V3FDistXZ returns the horizontal distance between a and b
func V3FDistXZ(a, b Vec3F) float64 {
	dx := a.X - b.X
	dz := a.Z - b.Z
	return math.Sqrt(dx*dx + dz*dz)
}
