package physics

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gazed/fiz/math/lin"
)

func newFreeDynamicSphere(pos lin.V3) *DynamicBody {
	def := NewBodyDef()
	def.Pos = pos
	def.Density = 1
	def.Shape = &Sphere{Radius: 0.5}
	return newDynamicBody(def)
}

func TestAnchoredBallJointPullsToAnchor(t *testing.T) {
	body := newFreeDynamicSphere(lin.V3{X: 3})
	j := &AnchoredBallJoint{Body: body, Anchor: lin.V3{}}
	j.Apply()
	assert.InDelta(t, 0, body.Position().X, 1e-9)
}

func TestBallJointMeetsInTheMiddle(t *testing.T) {
	a := newFreeDynamicSphere(lin.V3{X: -2})
	b := newFreeDynamicSphere(lin.V3{X: 2})
	j := &BallJoint{BodyA: a, BodyB: b}
	j.Apply()
	assert.InDelta(t, a.Position().X, b.Position().X, 1e-9)
}

func TestAnchoredSpringJointPullsTowardRestLength(t *testing.T) {
	body := newFreeDynamicSphere(lin.V3{X: 5})
	j := &AnchoredSpringJoint{
		Body:       body,
		Anchor:     lin.V3{},
		RestLength: 1,
		Stiffness:  10,
	}
	j.Apply()
	// stretched well past rest length: the spring should pull toward the
	// anchor, i.e. apply a force with a negative X component.
	assert.Less(t, body.force.X, 0.0)
}

func TestAnchoredRevoluteJointPullsToAnchorOnly(t *testing.T) {
	body := newFreeDynamicSphere(lin.V3{X: 3})
	j := &AnchoredRevoluteJoint{
		Body:      body,
		Anchor:    lin.V3{},
		LocalAxis: lin.V3{X: 1},
		WorldAxis: lin.V3{Z: 1},
	}
	j.Apply()
	assert.InDelta(t, 0, body.Position().X, 1e-9)
	// positional projection only: orientation is untouched.
	orient := body.Orientation()
	assert.True(t, orient.Eq(&lin.Q{W: 1}))
}

func TestAlignmentRotationNilWhenAlreadyAligned(t *testing.T) {
	rot := alignmentRotation(lin.V3{X: 1}, lin.V3{X: 1})
	assert.Nil(t, rot)
}

func TestAlignmentRotationHandlesAntiparallel(t *testing.T) {
	rot := alignmentRotation(lin.V3{X: 1}, lin.V3{X: -1})
	assert.NotNil(t, rot)
	from := lin.V3{X: 1}
	rotated := *lin.NewV3().MultvQ(&from, rot)
	assert.InDelta(t, -1, rotated.X, 1e-6)
}
