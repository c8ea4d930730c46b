package physics

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gazed/fiz/math/lin"
)

func TestCheckCollisionGroundPenetrating(t *testing.T) {
	def := NewBodyDef()
	def.Pos = lin.V3{Z: 0.5}
	def.Shape = &Sphere{Radius: 1}
	body := newDynamicBody(def)

	c, ok := checkCollisionGround(body)
	assert.True(t, ok)
	assert.InDelta(t, 0.5, c.Depth, 1e-9)
	assert.InDelta(t, 1.0, c.Normal.Z, 1e-9)
}

func TestCheckCollisionGroundClear(t *testing.T) {
	def := NewBodyDef()
	def.Pos = lin.V3{Z: 5}
	def.Shape = &Sphere{Radius: 1}
	body := newDynamicBody(def)

	_, ok := checkCollisionGround(body)
	assert.False(t, ok)
}

func TestCheckCollisionSphereSphere(t *testing.T) {
	def := NewBodyDef()
	def.Shape = &Sphere{Radius: 1}
	a := newDynamicBody(def)

	defB := NewBodyDef()
	defB.Pos = lin.V3{X: 1.5}
	defB.Shape = &Sphere{Radius: 1}
	b := newDynamicBody(defB)

	sa, sb := a.Shape().(*Sphere), b.Shape().(*Sphere)
	c, ok := checkCollisionSphereSphere(a, b, sa, sb)
	assert.True(t, ok)
	assert.InDelta(t, 0.5, c.Depth, 1e-9)
}

func TestSolveContactStaticRemovesApproachVelocity(t *testing.T) {
	def := NewBodyDef()
	def.Pos = lin.V3{Z: 0.9}
	def.Vel = lin.V3{Z: -2}
	def.Shape = &Sphere{Radius: 1}
	body := newDynamicBody(def)

	c, ok := checkCollisionGround(body)
	assert.True(t, ok)

	solveContactStatic(&c)
	assert.GreaterOrEqual(t, body.Velocity().Z, -1e-9)
}

func TestSolveContactDynamicConservesNothingButSeparates(t *testing.T) {
	defA := NewBodyDef()
	defA.Pos = lin.V3{X: -0.5}
	defA.Vel = lin.V3{X: 1}
	defA.Density = 1
	defA.Shape = &Sphere{Radius: 1}
	a := newDynamicBody(defA)

	defB := NewBodyDef()
	defB.Pos = lin.V3{X: 0.5}
	defB.Vel = lin.V3{X: -1}
	defB.Density = 1
	defB.Shape = &Sphere{Radius: 1}
	b := newDynamicBody(defB)

	sa, sb := a.Shape().(*Sphere), b.Shape().(*Sphere)
	c, ok := checkCollisionSphereSphere(a, b, sa, sb)
	assert.True(t, ok)

	solveContactDynamic(&c)
	// after resolving a head-on approach, the bodies must no longer be
	// closing: relative velocity along the normal should be >= 0.
	relVel := *lin.NewV3().Sub(&b.vel, &a.vel)
	assert.GreaterOrEqual(t, relVel.Dot(&c.Normal), -1e-9)
}
