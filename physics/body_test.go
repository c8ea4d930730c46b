package physics

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gazed/fiz/math/lin"
)

func TestNewBodyDefDefaults(t *testing.T) {
	def := NewBodyDef()
	assert.Equal(t, lin.Q{W: 1}, def.Orient)
	assert.Equal(t, 1.0, def.LinearDamping)
	assert.Equal(t, 1.0, def.AngularDamping)
	assert.Equal(t, 1.0, def.Density)
	assert.Equal(t, 0.2, def.Friction)
	assert.Equal(t, 0.2, def.Restitution)
}

func TestDynamicBodyIntegratesUnderForce(t *testing.T) {
	def := NewBodyDef()
	def.Density = 1
	def.LinearDamping = 1
	def.Shape = &Sphere{Radius: 1}
	b := newDynamicBody(def)

	b.ApplyForce(lin.V3{X: b.Mass()})
	b.update(1.0)

	assert.InDelta(t, 1.0, b.Velocity().X, 1e-9)
	assert.InDelta(t, 1.0, b.Position().X, 1e-9)
}

func TestDynamicBodySleepsAfterStillness(t *testing.T) {
	def := NewBodyDef()
	def.Density = 1
	def.Shape = &Sphere{Radius: 1}
	b := newDynamicBody(def)

	for i := 0; i < sleepFrameCount+1; i++ {
		b.updateSleep(1.0 / 60.0)
	}
	assert.False(t, b.IsAwake())
}

func TestDynamicBodyWakeClearsStillCounter(t *testing.T) {
	def := NewBodyDef()
	def.Density = 1
	def.Shape = &Sphere{Radius: 1}
	b := newDynamicBody(def)

	for i := 0; i < sleepFrameCount+1; i++ {
		b.updateSleep(1.0 / 60.0)
	}
	assert.False(t, b.IsAwake())

	b.wake()
	assert.True(t, b.IsAwake())
	assert.Equal(t, 0, b.stillFrames)
}

func TestApplyImpulseAtOffCenterPointInducesSpin(t *testing.T) {
	def := NewBodyDef()
	def.Density = 1
	def.Shape = &Sphere{Radius: 1}
	b := newDynamicBody(def)

	point := *lin.NewV3().Add(b.world.Loc, &lin.V3{X: 1})
	b.ApplyImpulse(lin.V3{Y: 1}, point)

	assert.Greater(t, b.AngularVelocity().Z, 0.0)
}

func TestStaticBodyHasNoMass(t *testing.T) {
	def := NewBodyDef()
	def.Kind = Static
	def.Shape = &Box{Half: lin.V3{X: 1, Y: 1, Z: 1}}
	b := newStaticBody(def)
	assert.Equal(t, Static, b.KindOf())
	assert.False(t, b.IsSensor())
}
