package physics

import (
	"math"

	"github.com/gazed/fiz/math/lin"
)

// groundRestitution and groundFriction are the material constants used by
// the generic "body against an infinite ground plane" fast path, matched
// against the original engine's hard-coded ground defaults.
const (
	groundRestitution = 0.1
	groundFriction    = 0.8
)

// ContactInfo describes a single contact point between two bodies,
// produced by the broad/narrow-phase pipeline and consumed by the
// impulse solver.
//
// Deviation: BodyA is always the dynamic body being solved and BodyB
// is nil or the second body (static, or another dynamic body for a
// dynamic-dynamic pair) — the reverse of the documented body_a/body_b
// convention, where body_a is the nilable/static side and body_b is
// always dynamic. This engine's solver functions (solveContactStatic,
// solveContactDynamic) type-assert BodyA to *DynamicBody, so the
// convention here is load-bearing internally; callers reading
// World.Contacts from outside the package should check which of
// BodyA/BodyB is a *DynamicBody rather than assuming BodyB always is.
type ContactInfo struct {
	BodyA, BodyB Body
	Poc          lin.V3 // contact point used for the impulse solve (world space)
	PocA, PocB   lin.V3 // the two surface points EPA reconstructed
	Normal       lin.V3 // world space; A into B for two dynamic bodies, static side (or ground) toward dynamic A otherwise
	Depth        float64
	Friction     float64
	Restitution  float64
	Collided     bool
}

// checkCollisionGround reports whether body (using its first shape)
// penetrates the z=0 ground plane, in the style of the engine's generic
// (non-shape-specific) ground check: it walks the support point along
// -Z and tests its height.
func checkCollisionGround(body Body) (ContactInfo, bool) {
	shape := body.Shape()
	localDown := body.LocalVector(lin.V3{Z: -1})
	localSupport := shape.Support(localDown)
	worldSupport := body.WorldPoint(localSupport)
	if worldSupport.Z >= 0 {
		return ContactInfo{}, false
	}
	depth := -worldSupport.Z
	contactPoint := worldSupport
	contactPoint.Z = 0
	return ContactInfo{
		BodyA:       body,
		BodyB:       nil,
		Poc:         contactPoint,
		PocA:        worldSupport,
		PocB:        contactPoint,
		Normal:      lin.V3{Z: 1},
		Depth:       depth,
		Friction:    math.Min(groundFriction, body.Friction()),
		Restitution: math.Max(groundRestitution, body.Restitution()),
		Collided:    true,
	}, true
}

// checkCollisionSphereSphere is the analytic fast path for two sphere
// bodies, bypassing GJK/EPA entirely.
func checkCollisionSphereSphere(a, b Body, sa, sb *Sphere) (ContactInfo, bool) {
	posA, posB := a.Position(), b.Position()
	delta := *lin.NewV3().Sub(&posB, &posA)
	dist := delta.Len()
	radiusSum := sa.Radius + sb.Radius
	if dist >= radiusSum {
		return ContactInfo{}, false
	}

	var normal lin.V3
	if dist > lin.Epsilon {
		normal = *lin.NewV3().Scale(&delta, 1/dist)
	} else {
		normal = lin.V3{Z: 1}
	}
	pointA := *lin.NewV3().Add(&posA, lin.NewV3().Scale(&normal, sa.Radius))
	negNormal := *lin.NewV3().Scale(&normal, -1)
	pointB := *lin.NewV3().Add(&posB, lin.NewV3().Scale(&negNormal, sb.Radius))
	mid := *lin.NewV3().Lerp(&pointA, &pointB, 0.5)

	return ContactInfo{
		BodyA:       a,
		BodyB:       b,
		Poc:         mid,
		PocA:        pointA,
		PocB:        pointB,
		Normal:      normal,
		Depth:       radiusSum - dist,
		Friction:    math.Min(a.Friction(), b.Friction()),
		Restitution: math.Max(a.Restitution(), b.Restitution()),
		Collided:    true,
	}, true
}

// checkCollision runs the general GJK+EPA narrow phase between a's and
// b's shapes, assuming the broad phase (AABB overlap / fast paths) has
// already established they're worth testing.
func checkCollision(a, b Body) (ContactInfo, bool) {
	s, overlap := gjk(a, a.Shape(), b, b.Shape())
	if !overlap {
		return ContactInfo{}, false
	}
	result, ok := epa(a, a.Shape(), b, b.Shape(), s)
	if !ok || result.depth <= 0 {
		return ContactInfo{}, false
	}
	mid := *lin.NewV3().Lerp(&result.pointA, &result.pointB, 0.5)
	return ContactInfo{
		BodyA:       a,
		BodyB:       b,
		Poc:         mid,
		PocA:        result.pointA,
		PocB:        result.pointB,
		Normal:      result.normal,
		Depth:       result.depth,
		Friction:    math.Min(a.Friction(), b.Friction()),
		Restitution: math.Max(a.Restitution(), b.Restitution()),
		Collided:    true,
	}, true
}

// contactBasis builds an orthonormal (tangent, bitangent, normal) frame
// from the contact normal, used to express the impulse-space K matrix.
// The world axis picked to seed the tangent is whichever of X or Y the
// normal is least aligned with, so the cross product never degenerates.
func contactBasis(normal lin.V3) (tangent, bitangent lin.V3) {
	axis := lin.V3{X: 1}
	if math.Abs(normal.X) > math.Abs(normal.Y) {
		axis = lin.V3{Y: 1}
	}
	tangent = *lin.NewV3().Cross(&normal, &axis)
	tangent = *tangent.Unit()
	bitangent = *lin.NewV3().Cross(&normal, &tangent)
	return tangent, bitangent
}

// contactToWorld builds the orthonormal change-of-basis matrix whose rows
// are the tangent, bitangent, and normal axes: it maps a world-space
// vector to its (tangent, bitangent, normal) components in contact space.
func contactToWorld(tangent, bitangent, normal lin.V3) lin.M3 {
	return *lin.NewM3().SetS(
		tangent.X, tangent.Y, tangent.Z,
		bitangent.X, bitangent.Y, bitangent.Z,
		normal.X, normal.Y, normal.Z)
}

// solveImpulse runs the coupled contact-space solve shared by the static
// and dynamic cases: given the combined world-space K matrix, the
// contact frame, the relative closing velocity, and the material terms,
// it returns the impulse to apply to the body the normal points toward:
// body B of a two-body contact (body A gets its negation), or the
// dynamic body A of a static or ground contact.
func solveImpulse(kWorld *lin.M3, normal, relVel lin.V3, restitution, friction float64) (impulse lin.V3, ok bool) {
	tangent, bitangent := contactBasis(normal)
	toContact := contactToWorld(tangent, bitangent, normal)
	toWorld := *lin.NewM3().Transpose(&toContact)

	kContact := *lin.NewM3().Mult(&toContact, kWorld)
	kContact = *lin.NewM3().Mult(&kContact, &toWorld)
	kInv := lin.NewM3().Inv(&kContact)
	if kInv.Eq(lin.M3Z) {
		return lin.V3{}, false
	}

	closingVel := *lin.NewV3().MultMv(&toContact, &relVel)
	if closingVel.Z > 0 {
		return lin.V3{}, false
	}

	dVel := -closingVel.Z * (1 + restitution)
	desiredVel := lin.V3{X: -closingVel.X, Y: -closingVel.Y, Z: dVel}
	jc := *lin.NewV3().MultMv(kInv, &desiredVel)

	planarImpulse := math.Hypot(jc.X, jc.Y)
	if planarImpulse > jc.Z*friction {
		jc.X /= planarImpulse
		jc.Y /= planarImpulse
		jc.Z = kContact.Zz + kContact.Xz*friction*jc.X + kContact.Yz*friction*jc.Y
		jc.Z = dVel / jc.Z
		jc.X *= friction * jc.Z
		jc.Y *= friction * jc.Z
	}

	impulse = *lin.NewV3().MultMv(&toWorld, &jc)
	return impulse, true
}

// solveContactStatic resolves a contact between a dynamic body and an
// immovable one (a StaticBody, or the ground plane when c.BodyB is nil):
// only the dynamic body's velocity changes.
func solveContactStatic(c *ContactInfo) {
	dyn, ok := c.BodyA.(*DynamicBody)
	if !ok {
		return
	}

	kWorld := *lin.NewM3I().Scale(dyn.InvMass())
	if !dyn.RotationLocked() {
		rA := *lin.NewV3().Sub(&c.Poc, dyn.world.Loc)
		skewA := *lin.NewM3().SetSkewSym(&rA)
		kWorld = computeK(dyn.InvMass(), &skewA, dyn.WorldInverseInertia())
	}

	relVel := dyn.VelocityAtWorldPoint(c.Poc)
	impulse, ok := solveImpulse(&kWorld, c.Normal, relVel, c.Restitution, c.Friction)
	if !ok {
		return
	}

	dyn.wake()
	dyn.ApplyImpulse(impulse, c.Poc)

	delta := *lin.NewV3().Scale(&c.Normal, c.Depth)
	pos := dyn.Position()
	dyn.Teleport(*lin.NewV3().Add(&pos, &delta))
}

// solveContactDynamic resolves a contact between two dynamic bodies,
// applying equal-and-opposite impulses about each body's own lever arm.
func solveContactDynamic(c *ContactInfo) {
	dynA, okA := c.BodyA.(*DynamicBody)
	dynB, okB := c.BodyB.(*DynamicBody)
	if !okA || !okB {
		return
	}

	kA := *lin.NewM3I().Scale(dynA.InvMass())
	if !dynA.RotationLocked() {
		rA := *lin.NewV3().Sub(&c.Poc, dynA.world.Loc)
		skewA := *lin.NewM3().SetSkewSym(&rA)
		kA = computeK(dynA.InvMass(), &skewA, dynA.WorldInverseInertia())
	}
	kB := *lin.NewM3I().Scale(dynB.InvMass())
	if !dynB.RotationLocked() {
		rB := *lin.NewV3().Sub(&c.Poc, dynB.world.Loc)
		skewB := *lin.NewM3().SetSkewSym(&rB)
		kB = computeK(dynB.InvMass(), &skewB, dynB.WorldInverseInertia())
	}
	kWorld := *lin.NewM3().Add(&kA, &kB)

	velA := dynA.VelocityAtWorldPoint(c.Poc)
	velB := dynB.VelocityAtWorldPoint(c.Poc)
	relVel := *lin.NewV3().Sub(&velB, &velA)

	impulse, ok := solveImpulse(&kWorld, c.Normal, relVel, c.Restitution, c.Friction)
	if !ok {
		return
	}
	negImpulse := *lin.NewV3().Scale(&impulse, -1)

	dynA.wake()
	dynB.wake()
	dynA.ApplyImpulse(negImpulse, c.Poc)
	dynB.ApplyImpulse(impulse, c.Poc)

	half := *lin.NewV3().Scale(&c.Normal, c.Depth*0.5)
	posA, posB := dynA.Position(), dynB.Position()
	dynA.Teleport(*lin.NewV3().Sub(&posA, &half))
	dynB.Teleport(*lin.NewV3().Add(&posB, &half))
}

// computeK builds the 3x3 "unit impulse -> delta contact-point velocity"
// matrix for a single body: invMass*I - skew*invInertia*skew, the
// standard rigid-body contact Jacobian term.
func computeK(invMass float64, skew *lin.M3, invInertia *lin.M3) lin.M3 {
	k := *lin.NewM3I().Scale(invMass)
	mid := *lin.NewM3().Mult(skew, invInertia)
	mid = *lin.NewM3().Mult(&mid, skew)
	return *lin.NewM3().Sub(&k, &mid)
}
