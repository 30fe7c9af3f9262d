package physics

import (
	"math"

	"github.com/lixenwraith/drone-harvest/vmath"
)

// Hit describes the first surface a ray touched
type Hit struct {
	Point    vmath.Vec3F
	Normal   vmath.Vec3F // Unit outward surface normal
	Distance float64
}

// Raycaster answers forward probes; dir must be a unit vector
// A ray starting inside a solid reports no hit, matching engine raycasts
type Raycaster interface {
	Raycast(origin, dir vmath.Vec3F, maxDist float64) (Hit, bool)
}

// Sphere is a spherical static obstacle
type Sphere struct {
	Center vmath.Vec3F
	Radius float64
}

func (s Sphere) Raycast(origin, dir vmath.Vec3F, maxDist float64) (Hit, bool) {
	oc := vmath.V3FSub(origin, s.Center)
	c := vmath.V3FMagSq(oc) - s.Radius*s.Radius
	if c < 0 {
		return Hit{}, false
	}
	b := vmath.V3FDot(oc, dir)
	disc := b*b - c
	if disc < 0 || b > 0 {
		return Hit{}, false
	}
	t := -b - math.Sqrt(disc)
	if t < 0 || t > maxDist {
		return Hit{}, false
	}
	p := vmath.V3FAdd(origin, vmath.V3FScale(dir, t))
	return Hit{
		Point:    p,
		Normal:   vmath.V3FNormalize(vmath.V3FSub(p, s.Center)),
		Distance: t,
	}, true
}

// Box is an axis-aligned static obstacle, Min must be component-wise below Max
type Box struct {
	Min, Max vmath.Vec3F
}

// Contains reports whether p lies inside or on the box
func (b Box) Contains(p vmath.Vec3F) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y &&
		p.Z >= b.Min.Z && p.Z <= b.Max.Z
}

// Raycast uses the slab method; the entering slab determines the normal
func (b Box) Raycast(origin, dir vmath.Vec3F, maxDist float64) (Hit, bool) {
	if b.Contains(origin) {
		return Hit{}, false
	}

	o := [3]float64{origin.X, origin.Y, origin.Z}
	d := [3]float64{dir.X, dir.Y, dir.Z}
	lo := [3]float64{b.Min.X, b.Min.Y, b.Min.Z}
	hi := [3]float64{b.Max.X, b.Max.Y, b.Max.Z}

	tMin, tMax := 0.0, maxDist
	axis, sign := -1, 0.0

	for i := 0; i < 3; i++ {
		if math.Abs(d[i]) < 1e-12 {
			if o[i] < lo[i] || o[i] > hi[i] {
				return Hit{}, false
			}
			continue
		}
		inv := 1 / d[i]
		t1 := (lo[i] - o[i]) * inv
		t2 := (hi[i] - o[i]) * inv
		s := -1.0
		if t1 > t2 {
			t1, t2 = t2, t1
			s = 1.0
		}
		if t1 > tMin {
			tMin = t1
			axis, sign = i, s
		}
		if t2 < tMax {
			tMax = t2
		}
		if tMin > tMax {
			return Hit{}, false
		}
	}
	if axis < 0 {
		return Hit{}, false
	}

	var n [3]float64
	n[axis] = sign
	return Hit{
		Point:    vmath.V3FAdd(origin, vmath.V3FScale(dir, tMin)),
		Normal:   vmath.Vec3F{X: n[0], Y: n[1], Z: n[2]},
		Distance: tMin,
	}, true
}

// Obstacles is a static obstacle set; Raycast returns the nearest hit
type Obstacles []Raycaster

func (obs Obstacles) Raycast(origin, dir vmath.Vec3F, maxDist float64) (Hit, bool) {
	var best Hit
	found := false
	for _, o := range obs {
		h, ok := o.Raycast(origin, dir, maxDist)
		if !ok {
			continue
		}
		if !found || h.Distance < best.Distance {
			best = h
			found = true
		}
	}
	return best, found
}
