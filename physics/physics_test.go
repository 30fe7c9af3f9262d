package physics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/drone-harvest/vmath"
)

func TestSphereRaycast(t *testing.T) {
	s := Sphere{Center: vmath.Vec3F{Z: 5}, Radius: 1}

	h, ok := s.Raycast(vmath.Vec3F{}, vmath.Vec3F{Z: 1}, 10)
	require.True(t, ok)
	assert.InDelta(t, 4, h.Distance, 1e-9)
	assert.InDelta(t, -1, h.Normal.Z, 1e-9)

	_, ok = s.Raycast(vmath.Vec3F{}, vmath.Vec3F{Z: 1}, 3)
	assert.False(t, ok, "beyond probe length")

	_, ok = s.Raycast(vmath.Vec3F{}, vmath.Vec3F{Z: -1}, 10)
	assert.False(t, ok, "pointing away")

	_, ok = s.Raycast(vmath.Vec3F{Z: 5}, vmath.Vec3F{Z: 1}, 10)
	assert.False(t, ok, "origin inside")
}

func TestBoxRaycast(t *testing.T) {
	b := Box{Min: vmath.Vec3F{X: -1, Y: -1, Z: 3}, Max: vmath.Vec3F{X: 1, Y: 1, Z: 4}}

	h, ok := b.Raycast(vmath.Vec3F{}, vmath.Vec3F{Z: 1}, 10)
	require.True(t, ok)
	assert.InDelta(t, 3, h.Distance, 1e-9)
	assert.Equal(t, vmath.Vec3F{Z: -1}, h.Normal)

	h, ok = b.Raycast(vmath.Vec3F{Z: 10}, vmath.Vec3F{Z: -1}, 10)
	require.True(t, ok)
	assert.InDelta(t, 6, h.Distance, 1e-9)
	assert.Equal(t, vmath.Vec3F{Z: 1}, h.Normal)

	_, ok = b.Raycast(vmath.Vec3F{X: 5}, vmath.Vec3F{Z: 1}, 10)
	assert.False(t, ok)
	assert.True(t, b.Contains(vmath.Vec3F{Z: 3.5}))
}

func TestObstaclesNearest(t *testing.T) {
	obs := Obstacles{
		Sphere{Center: vmath.Vec3F{Z: 8}, Radius: 1},
		Sphere{Center: vmath.Vec3F{Z: 4}, Radius: 1},
	}
	h, ok := obs.Raycast(vmath.Vec3F{}, vmath.Vec3F{Z: 1}, 20)
	require.True(t, ok)
	assert.InDelta(t, 3, h.Distance, 1e-9)
}

func TestSteerTurnsAndAdvances(t *testing.T) {
	profile := DefaultSteeringProfile()
	pose := Pose{Position: vmath.Vec3F{Y: 10}}
	in := SteerInput{Dest: vmath.Vec3F{X: 20, Y: 10}, Speed: 5, DT: 1.0 / 60}

	for i := 0; i < 120; i++ {
		pose = Steer(pose, in, &profile).Pose
	}
	assert.InDelta(t, math.Pi/2, float64(pose.Yaw), 0.1, "faces +X")
	assert.Greater(t, pose.Position.X, 5.0)
	assert.InDelta(t, 10, pose.Position.Y, 1e-9, "altitude untouched")
}

func TestSteerReachesDestination(t *testing.T) {
	profile := DefaultSteeringProfile()
	pose := Pose{}
	in := SteerInput{Dest: vmath.Vec3F{X: -7, Z: 12}, Speed: 20, DT: 1.0 / 60}

	arrived := false
	for i := 0; i < 60*20 && !arrived; i++ {
		r := Steer(pose, in, &profile)
		pose, arrived = r.Pose, r.Arrived
	}
	assert.True(t, arrived, "arrival slow-down prevents orbiting")
}

func TestSeparation(t *testing.T) {
	p := vmath.Vec3F{}
	sep := Separation(p, []vmath.Vec3F{{X: 1}, {X: 10}}, 2)
	assert.Equal(t, vmath.Vec3F{X: -1}, sep, "only close neighbor repels")

	assert.True(t, vmath.V3FIsZero(Separation(p, nil, 2)))
}

func TestDesiredHeadingSeparationBlend(t *testing.T) {
	profile := DefaultSteeringProfile()
	pose := Pose{}
	in := SteerInput{Dest: vmath.Vec3F{Z: 10}, Neighbors: []vmath.Vec3F{{X: 1}}}

	dir, avoiding := DesiredHeading(pose, &in, &profile)
	assert.False(t, avoiding)
	assert.Less(t, dir.X, 0.0, "pushed away from neighbor")
	assert.Greater(t, dir.Z, 0.0, "still heading to goal")
	assert.InDelta(t, 1, vmath.V3FMag(dir), 1e-9)
}

func TestDesiredHeadingReflectsOnObstacle(t *testing.T) {
	profile := DefaultSteeringProfile()
	pose := Pose{Yaw: vmath.YawOf(vmath.Vec3F{X: 1, Z: 1})}
	in := SteerInput{
		Dest:      vmath.Vec3F{Z: 50},
		Obstacles: Box{Min: vmath.Vec3F{X: -10, Y: -1, Z: 2}, Max: vmath.Vec3F{X: 10, Y: 1, Z: 3}},
	}

	dir, avoiding := DesiredHeading(pose, &in, &profile)
	require.True(t, avoiding)
	assert.Greater(t, dir.X, 0.0)
	assert.Less(t, dir.Z, 0.0, "reflected off the near face")
}

func TestDampImpulse(t *testing.T) {
	v := DampImpulse(vmath.Vec3F{X: 2}, 4, 0.25)
	assert.InDelta(t, 2*math.Exp(-1), v.X, 1e-12)
	assert.Equal(t, vmath.Vec3F{X: 2}, DampImpulse(vmath.Vec3F{X: 2}, 0, 1))
}

func TestLift(t *testing.T) {
	l := NewLift(0, 10, 5, 2.5)
	assert.InDelta(t, 2, l.Duration, 1e-12)

	y, done := l.Step(1)
	assert.False(t, done)
	assert.InDelta(t, 5, y, 1e-9, "midpoint of ease in-out")

	y, done = l.Step(1.5)
	assert.True(t, done)
	assert.Equal(t, 10.0, y)

	down := NewLift(10, 0, 5, 2.5)
	assert.InDelta(t, 4, down.Duration, 1e-12)

	instant := NewLift(3, 3, 5, 5)
	y, done = instant.Step(0)
	assert.True(t, done)
	assert.Equal(t, 3.0, y)
}
