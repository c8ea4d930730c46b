package physics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gazed/fiz/math/lin"
)

func TestUnitSphereMassProperties(t *testing.T) {
	s := &Sphere{Radius: 1}
	mp := s.ComputeMassProperties(1)
	wantVol := 4.0 / 3.0 * math.Pi
	assert.InDelta(t, wantVol, mp.Volume, 1e-9)
	wantI := 0.4 * wantVol
	assert.InDelta(t, wantI, mp.Ixx, 1e-9)
	assert.InDelta(t, wantI, mp.Iyy, 1e-9)
	assert.InDelta(t, wantI, mp.Izz, 1e-9)
}

func TestUnitCubeMassProperties(t *testing.T) {
	b := &Box{Half: lin.V3{X: 0.5, Y: 0.5, Z: 0.5}}
	mp := b.ComputeMassProperties(1)
	assert.InDelta(t, 1.0, mp.Volume, 1e-9)
	wantI := 1.0 / 6.0 // (1/12)*m*(s^2+s^2), s=1, m=1
	assert.InDelta(t, wantI, mp.Ixx, 1e-9)
	assert.InDelta(t, wantI, mp.Iyy, 1e-9)
	assert.InDelta(t, wantI, mp.Izz, 1e-9)
}

func TestSphereSupportPoint(t *testing.T) {
	s := &Sphere{Radius: 2}
	p := s.Support(lin.V3{X: 1})
	assert.InDelta(t, 2, p.X, 1e-9)
	assert.InDelta(t, 0, p.Y, 1e-9)
	assert.InDelta(t, 0, p.Z, 1e-9)
}

func TestBoxSupportPoint(t *testing.T) {
	b := &Box{Half: lin.V3{X: 1, Y: 2, Z: 3}}
	p := b.Support(lin.V3{X: 1, Y: -1, Z: 1})
	assert.Equal(t, lin.V3{X: 1, Y: -2, Z: 3}, p)
}

func TestBoxRayCastHitsNearFace(t *testing.T) {
	b := &Box{Half: lin.V3{X: 1, Y: 1, Z: 1}}
	hit, ok := b.RayCast(Ray{Origin: lin.V3{X: -5}, Dir: lin.V3{X: 1}})
	assert.True(t, ok)
	assert.InDelta(t, 4, hit, 1e-9)
}

func TestBoxRayCastMiss(t *testing.T) {
	b := &Box{Half: lin.V3{X: 1, Y: 1, Z: 1}}
	_, ok := b.RayCast(Ray{Origin: lin.V3{X: -5, Y: 5}, Dir: lin.V3{X: 1}})
	assert.False(t, ok)
}
