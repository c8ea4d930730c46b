package physics

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gazed/fiz/math/lin"
)

func TestCreateBodyRejectsMissingShape(t *testing.T) {
	w := NewWorld()
	_, err := w.CreateBody(BodyDef{Kind: Dynamic})
	assert.ErrorIs(t, err, ErrInvalidShape)
}

func TestCreateBodyRegistersByHandle(t *testing.T) {
	w := NewWorld()
	def := NewBodyDef()
	def.Shape = &Sphere{Radius: 1}
	h, err := w.CreateBody(def)
	assert.NoError(t, err)

	got, ok := w.Body(h)
	assert.True(t, ok)
	assert.Equal(t, h, got.Handle())
}

func TestSphereSettlesOnGround(t *testing.T) {
	w := NewWorld()
	def := NewBodyDef()
	def.Pos = lin.V3{Z: 5}
	def.Density = 1
	def.Restitution = 0
	def.Shape = &Sphere{Radius: 1}
	h, err := w.CreateBody(def)
	assert.NoError(t, err)

	for i := 0; i < 600; i++ {
		w.Step(1.0 / 60.0)
	}

	body, _ := w.Body(h)
	assert.InDelta(t, 1.0, body.Position().Z, 0.05)
}

func TestStackedBoxesStayOrdered(t *testing.T) {
	w := NewWorld()

	lowerDef := NewBodyDef()
	lowerDef.Pos = lin.V3{Z: 1}
	lowerDef.Density = 1
	lowerDef.Restitution = 0
	lowerDef.Shape = &Box{Half: lin.V3{X: 1, Y: 1, Z: 1}}
	lowerH, err := w.CreateBody(lowerDef)
	assert.NoError(t, err)

	upperDef := NewBodyDef()
	upperDef.Pos = lin.V3{Z: 3.05}
	upperDef.Density = 1
	upperDef.Restitution = 0
	upperDef.Shape = &Box{Half: lin.V3{X: 1, Y: 1, Z: 1}}
	upperH, err := w.CreateBody(upperDef)
	assert.NoError(t, err)

	for i := 0; i < 600; i++ {
		w.Step(1.0 / 60.0)
	}

	lower, _ := w.Body(lowerH)
	upper, _ := w.Body(upperH)
	assert.Greater(t, upper.Position().Z, lower.Position().Z)
	assert.InDelta(t, 1.0, lower.Position().Z, 0.1)
}

func TestDynamicDynamicListenerFires(t *testing.T) {
	w := NewWorld()
	w.Gravity = lin.V3{}

	var fired bool
	w.DynamicDynamicListener = func(c *ContactInfo) { fired = true }

	defA := NewBodyDef()
	defA.Pos = lin.V3{X: -1.2}
	defA.Density = 1
	defA.Shape = &Sphere{Radius: 1}
	_, err := w.CreateBody(defA)
	assert.NoError(t, err)

	defB := NewBodyDef()
	defB.Pos = lin.V3{X: 1.2}
	defB.Density = 1
	defB.Shape = &Sphere{Radius: 1}
	_, err = w.CreateBody(defB)
	assert.NoError(t, err)

	w.Step(1.0 / 60.0)
	assert.True(t, fired)
}

func TestStepPopulatesContactsAndResetsEachStep(t *testing.T) {
	w := NewWorld()
	w.Gravity = lin.V3{}

	defA := NewBodyDef()
	defA.Pos = lin.V3{X: -1.2}
	defA.Density = 1
	defA.Shape = &Sphere{Radius: 1}
	_, err := w.CreateBody(defA)
	assert.NoError(t, err)

	defB := NewBodyDef()
	defB.Pos = lin.V3{X: 1.2}
	defB.Density = 1
	defB.Shape = &Sphere{Radius: 1}
	_, err = w.CreateBody(defB)
	assert.NoError(t, err)

	w.Step(1.0 / 60.0)
	assert.NotEmpty(t, w.Contacts)

	w.DynamicBodies[0].Teleport(lin.V3{Z: 50})
	w.DynamicBodies[1].Teleport(lin.V3{Z: 60})
	w.Step(1.0 / 60.0)
	assert.Empty(t, w.Contacts)
}

func TestStaticDynamicListenerFiresWithManyStaticBodies(t *testing.T) {
	w := NewWorld()

	for i := 0; i < bvhBuildThreshold+2; i++ {
		def := NewBodyDef()
		def.Kind = Static
		def.Pos = lin.V3{X: float64(i) * 10, Z: -1}
		def.Shape = &Box{Half: lin.V3{X: 4, Y: 4, Z: 1}}
		_, err := w.CreateBody(def)
		assert.NoError(t, err)
	}

	var fired bool
	w.StaticDynamicListener = func(c *ContactInfo) { fired = true }

	def := NewBodyDef()
	def.Pos = lin.V3{Z: 0.5}
	def.Density = 1
	def.Shape = &Sphere{Radius: 1}
	_, err := w.CreateBody(def)
	assert.NoError(t, err)

	w.Step(1.0 / 60.0)
	assert.True(t, fired)
}
