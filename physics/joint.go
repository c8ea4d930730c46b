package physics

import (
	"math"

	"github.com/gazed/fiz/math/lin"
)

// Joint is anything the world applies once per substep, before
// integration. Spring joints accumulate a force; ball joints and
// RevoluteJoint correct position (and, for RevoluteJoint, orientation)
// directly and then synthesize a zero-depth contact so the impulse
// solver removes any separating velocity along the constraint.
// AnchoredRevoluteJoint corrects position only.
type Joint interface {
	Apply()
}

// AnchoredSpringJoint pulls a dynamic body toward a fixed world-space
// anchor with Hooke's law, same as the pairwise spring but with one end
// nailed down.
type AnchoredSpringJoint struct {
	Body       *DynamicBody
	LocalPoint lin.V3 // attachment point, in Body's local frame
	Anchor     lin.V3 // fixed world-space point
	RestLength float64
	Stiffness  float64
	Damping    float64
}

func (j *AnchoredSpringJoint) Apply() {
	if j.Body == nil {
		return
	}
	worldPoint := j.Body.WorldPoint(j.LocalPoint)
	springForce(j.Body, worldPoint, j.Anchor, j.RestLength, j.Stiffness, j.Damping)
}

// SpringJoint connects two dynamic bodies with a damped Hooke's-law
// spring between two local attachment points.
type SpringJoint struct {
	BodyA, BodyB             *DynamicBody
	LocalPointA, LocalPointB lin.V3
	RestLength               float64
	Stiffness                float64
	Damping                  float64
}

func (j *SpringJoint) Apply() {
	if j.BodyA == nil || j.BodyB == nil {
		return
	}
	pointA := j.BodyA.WorldPoint(j.LocalPointA)
	pointB := j.BodyB.WorldPoint(j.LocalPointB)
	springForce(j.BodyA, pointA, pointB, j.RestLength, j.Stiffness, j.Damping)
	springForce(j.BodyB, pointB, pointA, j.RestLength, j.Stiffness, j.Damping)
}

// springForce applies (k(len-rest) - damping*closingSpeed)*dir at
// `from`, where dir is the unit vector from `from` toward `to` and
// closingSpeed is the point's velocity along dir: a stretched spring
// pulls body toward `to`.
func springForce(body *DynamicBody, from, to lin.V3, restLength, stiffness, damping float64) {
	delta := *lin.NewV3().Sub(&to, &from)
	dist := delta.Len()
	if dist < lin.Epsilon {
		return
	}
	dir := *lin.NewV3().Scale(&delta, 1/dist)
	stretch := dist - restLength
	vel := body.VelocityAtWorldPoint(from)
	closingSpeed := vel.Dot(&dir)
	mag := stiffness*stretch - damping*closingSpeed
	force := *lin.NewV3().Scale(&dir, mag)
	body.ApplyForceAtWorldPoint(force, from)
}

// jointContactSolve builds a zero-depth, zero-restitution contact along
// normal at point and runs it through the impulse solver, the same
// mechanism ball and revolute joints use to remove velocity that would
// otherwise re-open the constraint.
func jointContactSolveStatic(body *DynamicBody, point, normal lin.V3) {
	c := ContactInfo{
		BodyA:       body,
		Poc:         point,
		Normal:      normal,
		Depth:       0,
		Friction:    0,
		Restitution: 0,
		Collided:    true,
	}
	solveContactStatic(&c)
}

func jointContactSolveDynamic(bodyA, bodyB *DynamicBody, point, normal lin.V3) {
	c := ContactInfo{
		BodyA:       bodyA,
		BodyB:       bodyB,
		Poc:         point,
		Normal:      normal,
		Depth:       0,
		Friction:    0,
		Restitution: 0,
		Collided:    true,
	}
	solveContactDynamic(&c)
}

// contactNormalOrFallback returns delta's unit vector, or (0,0,1) when
// delta is too close to zero to normalize, matching the original
// engine's NaN-guard on ball-joint normals.
func contactNormalOrFallback(delta lin.V3) lin.V3 {
	lenSqr := delta.LenSqr()
	if lenSqr < lin.Epsilon || math.IsNaN(lenSqr) {
		return lin.V3{Z: 1}
	}
	n := *lin.NewV3().Scale(&delta, 1/math.Sqrt(lenSqr))
	return n
}

// AnchoredBallJoint pins a dynamic body's local point to a fixed
// world-space anchor: a 3-DOF point constraint with no rotational limit.
type AnchoredBallJoint struct {
	Body       *DynamicBody
	LocalPoint lin.V3
	Anchor     lin.V3
}

func (j *AnchoredBallJoint) Apply() {
	if j.Body == nil {
		return
	}
	worldPoint := j.Body.WorldPoint(j.LocalPoint)
	delta := *lin.NewV3().Sub(&j.Anchor, &worldPoint)
	if delta.LenSqr() < lin.Epsilon {
		return
	}
	pos := j.Body.Position()
	newPos := *lin.NewV3().Add(&pos, &delta)
	j.Body.Teleport(newPos)

	vel := j.Body.VelocityAtWorldPoint(j.Anchor)
	negVel := *lin.NewV3().Scale(&vel, -1)
	normal := contactNormalOrFallback(negVel)
	jointContactSolveStatic(j.Body, j.Anchor, normal)
}

// BallJoint pins two dynamic bodies' local points together, splitting
// the positional correction evenly between them.
type BallJoint struct {
	BodyA, BodyB             *DynamicBody
	LocalPointA, LocalPointB lin.V3
}

func (j *BallJoint) Apply() {
	if j.BodyA == nil || j.BodyB == nil {
		return
	}
	pointA := j.BodyA.WorldPoint(j.LocalPointA)
	pointB := j.BodyB.WorldPoint(j.LocalPointB)
	delta := *lin.NewV3().Sub(&pointB, &pointA)
	if delta.LenSqr() < lin.Epsilon {
		return
	}
	half := *lin.NewV3().Scale(&delta, 0.5)

	posA := j.BodyA.Position()
	j.BodyA.Teleport(*lin.NewV3().Add(&posA, &half))
	negHalf := *lin.NewV3().Scale(&half, -1)
	posB := j.BodyB.Position()
	j.BodyB.Teleport(*lin.NewV3().Add(&posB, &negHalf))

	mid := *lin.NewV3().Lerp(&pointA, &pointB, 0.5)
	velA := j.BodyA.VelocityAtWorldPoint(mid)
	velB := j.BodyB.VelocityAtWorldPoint(mid)
	relVel := *lin.NewV3().Sub(&velB, &velA)
	negRelVel := *lin.NewV3().Scale(&relVel, -1)
	normal := contactNormalOrFallback(negRelVel)
	jointContactSolveDynamic(j.BodyA, j.BodyB, mid, normal)
}

// AnchoredRevoluteJoint pins a dynamic body's local point to a fixed
// anchor, same 3-DOF constraint as AnchoredBallJoint. LocalAxis and
// WorldAxis are carried for symmetry with RevoluteJoint and the
// original engine's declared fields, but applyForces() there never
// reads them: the anchored joint does positional projection only.
type AnchoredRevoluteJoint struct {
	Body       *DynamicBody
	LocalPoint lin.V3
	Anchor     lin.V3
	LocalAxis  lin.V3
	WorldAxis  lin.V3
}

func (j *AnchoredRevoluteJoint) Apply() {
	if j.Body == nil {
		return
	}
	worldPoint := j.Body.WorldPoint(j.LocalPoint)
	delta := *lin.NewV3().Sub(&j.Anchor, &worldPoint)
	if delta.LenSqr() < lin.Epsilon {
		return
	}
	pos := j.Body.Position()
	j.Body.Teleport(*lin.NewV3().Add(&pos, &delta))
}

// RevoluteJoint pins two dynamic bodies' local points together and
// aligns body A's local axis with body B's local axis. Matching the
// original engine, only body A's orientation is corrected here: the
// constraint is a "hinge anchored on B's axis", not a symmetric pair of
// rotation corrections.
type RevoluteJoint struct {
	BodyA, BodyB             *DynamicBody
	LocalPointA, LocalPointB lin.V3
	LocalAxisA, LocalAxisB   lin.V3
}

func (j *RevoluteJoint) Apply() {
	if j.BodyA == nil || j.BodyB == nil {
		return
	}
	pointA := j.BodyA.WorldPoint(j.LocalPointA)
	pointB := j.BodyB.WorldPoint(j.LocalPointB)
	delta := *lin.NewV3().Sub(&pointB, &pointA)
	if delta.LenSqr() >= lin.Epsilon {
		normal := contactNormalOrFallback(delta)
		half := *lin.NewV3().Scale(&delta, 0.5)
		posA := j.BodyA.Position()
		j.BodyA.Teleport(*lin.NewV3().Add(&posA, &half))
		negHalf := *lin.NewV3().Scale(&half, -1)
		posB := j.BodyB.Position()
		j.BodyB.Teleport(*lin.NewV3().Add(&posB, &negHalf))
		mid := *lin.NewV3().Lerp(&pointA, &pointB, 0.5)
		jointContactSolveDynamic(j.BodyA, j.BodyB, mid, normal)
	}

	currentAxis := *j.BodyA.WorldVector(j.LocalAxisA).Unit()
	target := *j.BodyB.WorldVector(j.LocalAxisB).Unit()
	rot := alignmentRotation(currentAxis, target)
	if rot == nil {
		return
	}
	orientA := j.BodyA.Orientation()
	newOrient := *lin.NewQ().Mult(rot, &orientA)
	j.BodyA.SetOrientation(newOrient)
	pruneAngularVelocity(j.BodyA, target)
}

// alignmentRotation returns the shortest-arc quaternion rotating from
// toward target, or nil if they're already aligned (nothing to do).
// Antiparallel axes (cos ~ -1) have no unique rotation axis from the
// cross product, so a perpendicular axis is substituted, matching the
// original engine's two-stage fallback (+Z, then +X if +Z was also
// degenerate).
func alignmentRotation(from, target lin.V3) *lin.Q {
	cos := from.Dot(&target)
	if cos > 0.9999 {
		return nil
	}
	var axis lin.V3
	if cos < -0.9999 {
		axis = *lin.NewV3().Cross(&from, &lin.V3{Z: 1})
		if axis.LenSqr() < lin.Epsilon {
			axis = *lin.NewV3().Cross(&from, &lin.V3{X: 1})
		}
		if axis.LenSqr() < lin.Epsilon {
			return nil
		}
		axis = *axis.Unit()
		return lin.NewQ().SetAa(axis.X, axis.Y, axis.Z, lin.PI)
	}
	axis = *lin.NewV3().Cross(&from, &target)
	if axis.LenSqr() < lin.Epsilon {
		return nil
	}
	axis = *axis.Unit()
	angle := math.Acos(lin.Clamp(cos, -1, 1))
	return lin.NewQ().SetAa(axis.X, axis.Y, axis.Z, angle)
}

// pruneAngularVelocity strips the component of body's angular velocity
// that's perpendicular to axis, leaving only spin about the hinge.
func pruneAngularVelocity(body *DynamicBody, axis lin.V3) {
	w := body.AngularVelocity()
	spin := w.Dot(&axis)
	pruned := *lin.NewV3().Scale(&axis, spin)
	body.angularVel = pruned
}
