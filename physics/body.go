package physics

import (
	"math"

	"github.com/gazed/fiz/math/lin"
)

// BodyKind distinguishes a static body (infinite mass, never integrated or
// put to sleep) from a dynamic body (the subject of integration, impulses
// and sleeping).
type BodyKind int

const (
	Static BodyKind = iota
	Dynamic
)

// BodyDef is the immutable description a caller hands the world to create
// a body. Field defaults mirror the original engine's BodyDef: damping and
// density default to 1.0 (no damping, unit density), friction 0.2,
// restitution 0.2, rotation unlocked, not a sensor.
type BodyDef struct {
	Kind BodyKind

	Pos        lin.V3
	Vel        lin.V3
	Orient     lin.Q
	AngularVel lin.V3

	LinearDamping  float64
	AngularDamping float64
	Density        float64
	Friction       float64
	Restitution    float64
	RotationLocked bool
	IsSensor       bool // static only

	Shape Shape
}

// NewBodyDef returns a BodyDef with the engine's documented defaults.
func NewBodyDef() BodyDef {
	return BodyDef{
		Kind:           Dynamic,
		Orient:         lin.Q{W: 1},
		LinearDamping:  1.0,
		AngularDamping: 1.0,
		Density:        1.0,
		Friction:       0.2,
		Restitution:    0.2,
	}
}

// Body is the common surface both Static and Dynamic bodies expose to the
// collision and solver routines. Keeping this a small interface (rather
// than one shared struct with kind-specific zero fields) lets the solver
// treat a static body as "infinite mass" without branching on a bool
// everywhere an inverse mass or inverse inertia is used.
type Body interface {
	Handle() BodyHandle
	KindOf() BodyKind
	Position() lin.V3
	Orientation() lin.Q
	OrientationMat() *lin.M3
	Shape() Shape
	AABB() AABB
	Friction() float64
	Restitution() float64
	IsSensor() bool

	// WorldPoint/WorldVector transform a local-frame point/vector to world.
	WorldPoint(local lin.V3) lin.V3
	LocalPoint(world lin.V3) lin.V3
	WorldVector(local lin.V3) lin.V3
	LocalVector(world lin.V3) lin.V3

	updateAABB()
}

// ============================================================================
// StaticBody

type StaticBody struct {
	handle BodyHandle
	world  *lin.T // pose: world.Loc is position, world.Rot is orientation
	// orientMat is world.Rot's matrix form, cached for the hot paths that
	// need a full rotation matrix (shape WorldAABB, OrientationMat callers)
	// rather than the rotate-and-translate combination lin.T provides.
	orientMat   lin.M3
	friction    float64
	restitution float64
	shape       Shape
	aabb        AABB
	isSensor    bool
}

func newStaticBody(def BodyDef) *StaticBody {
	b := &StaticBody{
		handle:      newBodyHandle(),
		world:       lin.NewT().SetVQ(&def.Pos, &def.Orient),
		friction:    def.Friction,
		restitution: def.Restitution,
		shape:       def.Shape,
		isSensor:    def.IsSensor,
	}
	b.orientMat.SetQ(b.world.Rot)
	b.updateAABB()
	return b
}

func (b *StaticBody) Handle() BodyHandle      { return b.handle }
func (b *StaticBody) KindOf() BodyKind        { return Static }
func (b *StaticBody) Position() lin.V3        { return *b.world.Loc }
func (b *StaticBody) Orientation() lin.Q      { return *b.world.Rot }
func (b *StaticBody) OrientationMat() *lin.M3 { return &b.orientMat }
func (b *StaticBody) Shape() Shape            { return b.shape }
func (b *StaticBody) AABB() AABB              { return b.aabb }
func (b *StaticBody) Friction() float64       { return b.friction }
func (b *StaticBody) Restitution() float64    { return b.restitution }
func (b *StaticBody) IsSensor() bool          { return b.isSensor }

func (b *StaticBody) WorldPoint(local lin.V3) lin.V3 {
	return *b.world.App(&local)
}

func (b *StaticBody) LocalPoint(world lin.V3) lin.V3 {
	return *b.world.Inv(&world)
}

func (b *StaticBody) WorldVector(local lin.V3) lin.V3 {
	x, y, z := b.world.AppR(local.X, local.Y, local.Z)
	return lin.V3{X: x, Y: y, Z: z}
}

func (b *StaticBody) LocalVector(world lin.V3) lin.V3 {
	inv := *lin.NewM3().Transpose(&b.orientMat)
	return *lin.NewV3().MultMv(&inv, &world)
}

func (b *StaticBody) updateAABB() {
	if b.shape != nil {
		b.aabb = b.shape.WorldAABB(*b.world.Loc, &b.orientMat)
	}
}

// ============================================================================
// DynamicBody

type DynamicBody struct {
	handle    BodyHandle
	world     *lin.T // pose: world.Loc is position, world.Rot is orientation
	orientMat lin.M3 // world.Rot's matrix form, cached for the same reason as StaticBody's

	vel        lin.V3
	angularVel lin.V3

	linearDamping  float64
	angularDamping float64

	mass            float64
	centroid        lin.V3 // body-frame centroid, currently always origin (shapes recenter themselves)
	density         float64
	localInertia    lin.M3
	localInertiaInv lin.M3
	worldInertiaInv lin.M3

	force  lin.V3
	torque lin.V3

	stillFrames    int
	rotationLocked bool
	isAwake        bool

	friction    float64
	restitution float64
	shape       Shape
	aabb        AABB
}

const sleepThreshold = 0.005
const sleepFrameCount = 80

func newDynamicBody(def BodyDef) *DynamicBody {
	b := &DynamicBody{
		handle:         newBodyHandle(),
		world:          lin.NewT().SetVQ(&def.Pos, &def.Orient),
		vel:            def.Vel,
		angularVel:     def.AngularVel,
		linearDamping:  def.LinearDamping,
		angularDamping: def.AngularDamping,
		density:        def.Density,
		rotationLocked: def.RotationLocked,
		friction:       def.Friction,
		restitution:    def.Restitution,
		shape:          def.Shape,
		isAwake:        true,
	}
	b.orientMat.SetQ(b.world.Rot)
	b.updateMassProperties()
	b.updateWorldInertia()
	b.updateAABB()
	return b
}

func (b *DynamicBody) Handle() BodyHandle      { return b.handle }
func (b *DynamicBody) KindOf() BodyKind        { return Dynamic }
func (b *DynamicBody) Position() lin.V3        { return *b.world.Loc }
func (b *DynamicBody) Orientation() lin.Q      { return *b.world.Rot }
func (b *DynamicBody) OrientationMat() *lin.M3 { return &b.orientMat }
func (b *DynamicBody) Shape() Shape            { return b.shape }
func (b *DynamicBody) AABB() AABB              { return b.aabb }
func (b *DynamicBody) Friction() float64       { return b.friction }
func (b *DynamicBody) Restitution() float64    { return b.restitution }
func (b *DynamicBody) IsSensor() bool          { return false }
func (b *DynamicBody) Mass() float64           { return b.mass }
func (b *DynamicBody) InvMass() float64 {
	if b.mass <= 0 {
		return 0
	}
	return 1.0 / b.mass
}
func (b *DynamicBody) Velocity() lin.V3        { return b.vel }
func (b *DynamicBody) AngularVelocity() lin.V3 { return b.angularVel }
func (b *DynamicBody) IsAwake() bool           { return b.isAwake }
func (b *DynamicBody) RotationLocked() bool    { return b.rotationLocked }
func (b *DynamicBody) WorldInverseInertia() *lin.M3 { return &b.worldInertiaInv }

func (b *DynamicBody) WorldPoint(local lin.V3) lin.V3 {
	return *b.world.App(&local)
}

func (b *DynamicBody) LocalPoint(world lin.V3) lin.V3 {
	return *b.world.Inv(&world)
}

func (b *DynamicBody) WorldVector(local lin.V3) lin.V3 {
	x, y, z := b.world.AppR(local.X, local.Y, local.Z)
	return lin.V3{X: x, Y: y, Z: z}
}

func (b *DynamicBody) LocalVector(world lin.V3) lin.V3 {
	inv := *lin.NewM3().Transpose(&b.orientMat)
	return *lin.NewV3().MultMv(&inv, &world)
}

func (b *DynamicBody) updateAABB() {
	if b.shape != nil {
		b.aabb = b.shape.WorldAABB(*b.world.Loc, &b.orientMat)
	}
}

// updateMassProperties pulls volume/centroid/inertia from the body's
// single shape. The data model allows multiple shapes per body, but
// per the documented Open Question (see DESIGN.md) this engine, like
// the source it is drawn from, only ever populates body.shape from one
// shape and does not offset it via parallel axis.
func (b *DynamicBody) updateMassProperties() {
	if b.shape == nil {
		return
	}
	mp := b.shape.ComputeMassProperties(b.density)
	b.mass = mp.Volume * b.density
	b.centroid = mp.Centroid
	b.localInertia.SetS(
		mp.Ixx, -mp.Ixy, -mp.Ixz,
		-mp.Ixy, mp.Iyy, -mp.Iyz,
		-mp.Ixz, -mp.Iyz, mp.Izz,
	)
	if b.mass > 0 {
		b.localInertiaInv.Inv(&b.localInertia)
	}
}

// updateWorldInertia rebuilds I_w⁻¹ = R·I⁻¹·Rᵀ from the current
// orientation matrix.
func (b *DynamicBody) updateWorldInertia() {
	tmp := *lin.NewM3().Mult(&b.orientMat, &b.localInertiaInv)
	rt := *lin.NewM3().Transpose(&b.orientMat)
	b.worldInertiaInv = *lin.NewM3().Mult(&tmp, &rt)
}

// update advances the body by one substep of duration h, per §4.2.
func (b *DynamicBody) update(h float64) {
	if !b.isAwake {
		return
	}
	b.orientMat.SetQ(b.world.Rot)
	b.updateWorldInertia()

	// linear
	if b.mass > 0 {
		accel := *lin.NewV3().Scale(&b.force, 1.0/b.mass)
		b.vel = *lin.NewV3().Add(&b.vel, lin.NewV3().Scale(&accel, h))
	}
	b.vel = *lin.NewV3().Scale(&b.vel, b.linearDamping)
	newLoc := *lin.NewV3().Add(b.world.Loc, lin.NewV3().Scale(&b.vel, h))
	b.world.Loc.Set(&newLoc)

	// angular
	if !b.rotationLocked {
		angAccel := *lin.NewV3().MultMv(&b.worldInertiaInv, &b.torque)
		b.angularVel = *lin.NewV3().Add(&b.angularVel, lin.NewV3().Scale(&angAccel, h))
		b.angularVel = *lin.NewV3().Scale(&b.angularVel, b.angularDamping)

		dAng := *lin.NewV3().Scale(&b.angularVel, h)
		theta := 0.5 * dAng.Len()
		if theta > lin.Epsilon {
			axis := *dAng.Unit()
			s := math.Sin(theta)
			rot := lin.Q{X: axis.X * s, Y: axis.Y * s, Z: axis.Z * s, W: math.Cos(theta)}
			newOrient := *lin.NewQ().Mult(&rot, b.world.Rot)
			newOrient = *newOrient.Unit()
			b.world.Rot.Set(&newOrient)
		}
		b.orientMat.SetQ(b.world.Rot)
		b.updateWorldInertia()
	}

	b.updateAABB()
	b.force = lin.V3{}
	b.torque = lin.V3{}
}

// updateSleep implements the stall-counter sleeping heuristic of §4.2.
func (b *DynamicBody) updateSleep(h float64) {
	motion := math.Max(b.vel.Dot(&b.vel), b.angularVel.Dot(&b.angularVel))
	if motion < sleepThreshold {
		b.stillFrames++
	} else {
		b.stillFrames = 0
	}
	if b.stillFrames >= sleepFrameCount {
		if b.isAwake {
			b.vel = lin.V3{}
			b.angularVel = lin.V3{}
		}
		b.isAwake = false
	}
}

// wake clears the stall counter and marks the body awake; called whenever
// the solver produces a nonzero impulse on it.
func (b *DynamicBody) wake() {
	b.stillFrames = 0
	b.isAwake = true
}

// ApplyForce adds a centroid-applied world-frame force, accumulated until
// the next update() of the awake body clears it.
func (b *DynamicBody) ApplyForce(f lin.V3) {
	b.force = *lin.NewV3().Add(&b.force, &f)
}

// ApplyForceAtWorldPoint adds a world-frame force applied at a world-space
// point, accumulating the resulting torque about the body's position.
func (b *DynamicBody) ApplyForceAtWorldPoint(f, p lin.V3) {
	b.force = *lin.NewV3().Add(&b.force, &f)
	if !b.rotationLocked {
		r := *lin.NewV3().Sub(&p, b.world.Loc)
		t := *lin.NewV3().Cross(&r, &f)
		b.torque = *lin.NewV3().Add(&b.torque, &t)
	}
}

// ApplyImpulse applies an instantaneous impulse J at world point p.
func (b *DynamicBody) ApplyImpulse(j, p lin.V3) {
	if b.mass <= 0 {
		return
	}
	dv := *lin.NewV3().Scale(&j, 1.0/b.mass)
	b.vel = *lin.NewV3().Add(&b.vel, &dv)
	if !b.rotationLocked {
		r := *lin.NewV3().Sub(&p, b.world.Loc)
		impulsiveTorque := *lin.NewV3().Cross(&r, &j)
		dw := *lin.NewV3().MultMv(&b.worldInertiaInv, &impulsiveTorque)
		b.angularVel = *lin.NewV3().Add(&b.angularVel, &dw)
	}
}

// VelocityAtWorldPoint returns v + ω×(p−pos), the velocity of the
// material point of the body currently at world position p.
func (b *DynamicBody) VelocityAtWorldPoint(p lin.V3) lin.V3 {
	r := *lin.NewV3().Sub(&p, b.world.Loc)
	wv := *lin.NewV3().Cross(&b.angularVel, &r)
	return *lin.NewV3().Add(&b.vel, &wv)
}

// Teleport moves the body directly (used by joint positional projection),
// refreshing its AABB.
func (b *DynamicBody) Teleport(pos lin.V3) {
	b.world.Loc.Set(&pos)
	b.updateAABB()
}

// SetOrientation replaces the body's orientation directly (used by the
// revolute joint's rotational projection), refreshing cached matrices.
func (b *DynamicBody) SetOrientation(q lin.Q) {
	u := *q.Unit()
	b.world.Rot.Set(&u)
	b.orientMat.SetQ(b.world.Rot)
	b.updateWorldInertia()
	b.updateAABB()
}
