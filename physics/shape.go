package physics

import (
	"math"

	"github.com/gazed/fiz/math/lin"
)

// ShapeKind tags the concrete shape behind a Shape interface value, the
// way the teacher's collider package tags collider_Type. The sphere–sphere
// fast path (§4.5) in narrowPhase selects shapes with a type assertion and
// does not read Kind.
type ShapeKind int

const (
	KindSphere ShapeKind = iota
	KindBox
	KindCylinder
	KindCapsule
	KindPolyhedron
)

// MassProperties holds the volume, local centroid and inertia data every
// shape computes once at construction (or on demand for a polyhedron,
// whose computation also recenters its vertex list — see Polyhedron).
type MassProperties struct {
	Volume             float64
	Centroid           lin.V3
	Ixx, Iyy, Izz      float64 // principal inertia diagonal
	Ixy, Iyz, Ixz      float64 // products of inertia
}

// Shape is the capability set every convex primitive provides. Support is
// the only primitive GJK/EPA touch; everything else serves body
// construction, broad-phase AABBs and ray casts.
type Shape interface {
	Kind() ShapeKind

	// Support returns the furthest point of the shape, in its own local
	// frame, along axis (the argmax of axis·p).
	Support(axis lin.V3) lin.V3

	// WorldAABB returns a conservative bound of the shape given a body
	// position and orientation matrix.
	WorldAABB(pos lin.V3, rot *lin.M3) AABB

	// RayCast intersects a local-space ray with the shape, returning the
	// smallest positive hit parameter. ok is false when there is no hit
	// or the shape does not implement ray casting (cylinder, capsule).
	RayCast(r Ray) (t float64, ok bool)

	// Contains reports whether a local-space point lies within the shape.
	Contains(p lin.V3) bool

	// ComputeMassProperties derives volume/centroid/inertia from the
	// shape's geometry. For Polyhedron this additionally recenters the
	// vertex list at the computed centroid and must be called at most
	// once, before the shape is shared across bodies.
	ComputeMassProperties(density float64) MassProperties
}

// ============================================================================
// Sphere

type Sphere struct {
	Radius float64
}

func (s *Sphere) Kind() ShapeKind { return KindSphere }

func (s *Sphere) Support(axis lin.V3) lin.V3 {
	u := axis
	if u.LenSqr() < lin.Epsilon {
		return lin.V3{}
	}
	u = *u.Unit()
	return *u.Scale(&u, s.Radius)
}

func (s *Sphere) WorldAABB(pos lin.V3, rot *lin.M3) AABB {
	r := lin.V3{X: s.Radius, Y: s.Radius, Z: s.Radius}
	return AABB{Min: *lin.NewV3().Sub(&pos, &r), Max: *lin.NewV3().Add(&pos, &r)}
}

// RayCast solves the analytic sphere quadratic |o + t·d|² = r².
func (s *Sphere) RayCast(r Ray) (float64, bool) {
	o, d := r.Origin, r.Dir
	a := d.Dot(&d)
	if a < lin.Epsilon {
		return 0, false
	}
	b := 2 * o.Dot(&d)
	c := o.Dot(&o) - s.Radius*s.Radius
	disc := b*b - 4*a*c
	if disc < 0 {
		return 0, false
	}
	sq := math.Sqrt(disc)
	t0 := (-b - sq) / (2 * a)
	t1 := (-b + sq) / (2 * a)
	if t0 > 1e-6 {
		return t0, true
	}
	if t1 > 1e-6 {
		return t1, true
	}
	return 0, false
}

func (s *Sphere) Contains(p lin.V3) bool { return p.LenSqr() <= s.Radius*s.Radius }

// ComputeMassProperties uses the closed-form solid-sphere inertia
// I = 2/5·m·r² about each principal axis; products of inertia are zero
// by symmetry.
func (s *Sphere) ComputeMassProperties(density float64) MassProperties {
	vol := 4.0 / 3.0 * math.Pi * s.Radius * s.Radius * s.Radius
	mass := vol * density
	i := 0.4 * mass * s.Radius * s.Radius
	return MassProperties{Volume: vol, Ixx: i, Iyy: i, Izz: i}
}

// ============================================================================
// Box

type Box struct {
	Half lin.V3 // half-extents
}

func (b *Box) Kind() ShapeKind { return KindBox }

func (b *Box) Support(axis lin.V3) lin.V3 {
	sx, sy, sz := b.Half.X, b.Half.Y, b.Half.Z
	if axis.X < 0 {
		sx = -sx
	}
	if axis.Y < 0 {
		sy = -sy
	}
	if axis.Z < 0 {
		sz = -sz
	}
	return lin.V3{X: sx, Y: sy, Z: sz}
}

func (b *Box) WorldAABB(pos lin.V3, rot *lin.M3) AABB {
	// conservative bound: the half-diagonal length in every direction.
	diag := b.Half.Len()
	r := lin.V3{X: diag, Y: diag, Z: diag}
	return AABB{Min: *lin.NewV3().Sub(&pos, &r), Max: *lin.NewV3().Add(&pos, &r)}
}

// RayCast is the standard slab test against [-Half, +Half].
func (b *Box) RayCast(r Ray) (float64, bool) {
	lo := lin.V3{X: -b.Half.X, Y: -b.Half.Y, Z: -b.Half.Z}
	hi := b.Half
	tmin, tmax := -lin.Large, lin.Large
	o, d := [3]float64{r.Origin.X, r.Origin.Y, r.Origin.Z}, [3]float64{r.Dir.X, r.Dir.Y, r.Dir.Z}
	lov, hiv := [3]float64{lo.X, lo.Y, lo.Z}, [3]float64{hi.X, hi.Y, hi.Z}
	for i := 0; i < 3; i++ {
		if math.Abs(d[i]) < 1e-12 {
			if o[i] < lov[i] || o[i] > hiv[i] {
				return 0, false
			}
			continue
		}
		inv := 1.0 / d[i]
		t0 := (lov[i] - o[i]) * inv
		t1 := (hiv[i] - o[i]) * inv
		if t0 > t1 {
			t0, t1 = t1, t0
		}
		tmin = max64(tmin, t0)
		tmax = min64(tmax, t1)
		if tmin > tmax {
			return 0, false
		}
	}
	if tmax < 1e-6 {
		return 0, false
	}
	if tmin > 1e-6 {
		return tmin, true
	}
	return tmax, true
}

func (b *Box) Contains(p lin.V3) bool {
	return math.Abs(p.X) <= b.Half.X && math.Abs(p.Y) <= b.Half.Y && math.Abs(p.Z) <= b.Half.Z
}

func (b *Box) ComputeMassProperties(density float64) MassProperties {
	w, h, d := 2*b.Half.X, 2*b.Half.Y, 2*b.Half.Z
	vol := w * h * d
	mass := vol * density
	ixx := mass / 12.0 * (h*h + d*d)
	iyy := mass / 12.0 * (w*w + d*d)
	izz := mass / 12.0 * (w*w + h*h)
	return MassProperties{Volume: vol, Ixx: ixx, Iyy: iyy, Izz: izz}
}

// ============================================================================
// Cylinder — local Z axis, radius + half-height.

type Cylinder struct {
	Radius     float64
	HalfHeight float64
}

func (c *Cylinder) Kind() ShapeKind { return KindCylinder }

func (c *Cylinder) Support(axis lin.V3) lin.V3 {
	planar := lin.V3{X: axis.X, Y: axis.Y, Z: 0}
	var px, py float64
	if planar.LenSqr() > lin.Epsilon {
		u := *planar.Unit()
		px, py = u.X*c.Radius, u.Y*c.Radius
	}
	z := c.HalfHeight
	if axis.Z < 0 {
		z = -z
	}
	return lin.V3{X: px, Y: py, Z: z}
}

func (c *Cylinder) WorldAABB(pos lin.V3, rot *lin.M3) AABB {
	diag := math.Sqrt(c.Radius*c.Radius + c.HalfHeight*c.HalfHeight)
	r := lin.V3{X: diag, Y: diag, Z: diag}
	return AABB{Min: *lin.NewV3().Sub(&pos, &r), Max: *lin.NewV3().Add(&pos, &r)}
}

// RayCast is out of scope for cylinder per §4.1.
func (c *Cylinder) RayCast(r Ray) (float64, bool) { return 0, false }

func (c *Cylinder) Contains(p lin.V3) bool {
	planar := p.X*p.X + p.Y*p.Y
	return planar <= c.Radius*c.Radius && math.Abs(p.Z) <= c.HalfHeight
}

func (c *Cylinder) ComputeMassProperties(density float64) MassProperties {
	vol := math.Pi * c.Radius * c.Radius * (2 * c.HalfHeight)
	mass := vol * density
	h := 2 * c.HalfHeight
	ixy := mass / 12.0 * (3*c.Radius*c.Radius + h*h)
	izz := 0.5 * mass * c.Radius * c.Radius
	return MassProperties{Volume: vol, Ixx: ixy, Iyy: ixy, Izz: izz}
}

// ============================================================================
// Capsule — local Z axis, radius + half-height of the cylindrical core
// (total length along Z is 2·HalfHeight + 2·Radius).

type Capsule struct {
	Radius     float64
	HalfHeight float64
}

func (c *Capsule) Kind() ShapeKind { return KindCapsule }

func (c *Capsule) Support(axis lin.V3) lin.V3 {
	u := axis
	if u.LenSqr() < lin.Epsilon {
		u = lin.V3{Z: 1}
	} else {
		u = *u.Unit()
	}
	z := c.HalfHeight
	if axis.Z < 0 {
		z = -z
	}
	return lin.V3{X: u.X * c.Radius, Y: u.Y * c.Radius, Z: z + u.Z*c.Radius}
}

func (c *Capsule) WorldAABB(pos lin.V3, rot *lin.M3) AABB {
	half := lin.V3{Z: c.HalfHeight}
	axis := *lin.NewV3().MultMv(rot, &half)
	r := lin.V3{X: c.Radius, Y: c.Radius, Z: c.Radius}
	pTop := *lin.NewV3().Add(&pos, &axis)
	pBot := *lin.NewV3().Sub(&pos, &axis)
	box := AABB{Min: *lin.NewV3().Sub(&pTop, &r), Max: *lin.NewV3().Add(&pTop, &r)}
	box = box.Combine(AABB{Min: *lin.NewV3().Sub(&pBot, &r), Max: *lin.NewV3().Add(&pBot, &r)})
	return box
}

// RayCast is out of scope for capsule per §4.1.
func (c *Capsule) RayCast(r Ray) (float64, bool) { return 0, false }

func (c *Capsule) Contains(p lin.V3) bool {
	cz := math.Max(-c.HalfHeight, math.Min(c.HalfHeight, p.Z))
	d := lin.V3{X: p.X, Y: p.Y, Z: p.Z - cz}
	return d.LenSqr() <= c.Radius*c.Radius
}

func (c *Capsule) ComputeMassProperties(density float64) MassProperties {
	cylVol := math.Pi * c.Radius * c.Radius * (2 * c.HalfHeight)
	sphVol := 4.0 / 3.0 * math.Pi * c.Radius * c.Radius * c.Radius
	vol := cylVol + sphVol
	mass := vol * density
	// approximate: cylinder-core inertia plus two hemisphere end-caps
	// treated as a single offset sphere pair (engineering approximation,
	// adequate at the tolerances this package targets).
	h := 2 * c.HalfHeight
	izz := 0.5*(cylVol*density)*c.Radius*c.Radius + 0.4*(sphVol*density)*c.Radius*c.Radius
	ixy := (cylVol*density)/12.0*(3*c.Radius*c.Radius+h*h) + 0.4*(sphVol*density)*c.Radius*c.Radius
	return MassProperties{Volume: vol, Ixx: ixy, Iyy: ixy, Izz: izz}
}

// ============================================================================
// Polyhedron — vertex list + triangular face indices, outward winding.

type Polyhedron struct {
	Vertices []lin.V3
	Faces    [][3]int
}

func (p *Polyhedron) Kind() ShapeKind { return KindPolyhedron }

func (p *Polyhedron) Support(axis lin.V3) lin.V3 {
	best := 0
	bestDot := -lin.Large
	for i, v := range p.Vertices {
		d := v.Dot(&axis)
		if d > bestDot {
			bestDot = d
			best = i
		}
	}
	if len(p.Vertices) == 0 {
		return lin.V3{}
	}
	return p.Vertices[best]
}

func (p *Polyhedron) WorldAABB(pos lin.V3, rot *lin.M3) AABB {
	box := NewAABB()
	for _, v := range p.Vertices {
		wv := *lin.NewV3().MultMv(rot, &v)
		wv = *lin.NewV3().Add(&wv, &pos)
		box = box.ExtendPoint(wv)
	}
	return box
}

// RayCast uses Möller–Trumbore per triangle.
func (p *Polyhedron) RayCast(r Ray) (float64, bool) {
	const eps = 1e-6
	best := lin.Large
	hit := false
	for _, f := range p.Faces {
		v0, v1, v2 := p.Vertices[f[0]], p.Vertices[f[1]], p.Vertices[f[2]]
		e1 := *lin.NewV3().Sub(&v1, &v0)
		e2 := *lin.NewV3().Sub(&v2, &v0)
		h := *lin.NewV3().Cross(&r.Dir, &e2)
		det := e1.Dot(&h)
		if math.Abs(det) < eps {
			continue
		}
		invDet := 1.0 / det
		s := *lin.NewV3().Sub(&r.Origin, &v0)
		u := s.Dot(&h) * invDet
		if u < 0 || u > 1 {
			continue
		}
		q := *lin.NewV3().Cross(&s, &e1)
		v := r.Dir.Dot(&q) * invDet
		if v < 0 || u+v > 1 {
			continue
		}
		t := e2.Dot(&q) * invDet
		if t > eps && t < best {
			best = t
			hit = true
		}
	}
	return best, hit
}

func (p *Polyhedron) Contains(pt lin.V3) bool {
	// half-space test against every face plane; correct only for convex,
	// outward-wound hulls, which is the documented precondition.
	for _, f := range p.Faces {
		v0, v1, v2 := p.Vertices[f[0]], p.Vertices[f[1]], p.Vertices[f[2]]
		e1 := *lin.NewV3().Sub(&v1, &v0)
		e2 := *lin.NewV3().Sub(&v2, &v0)
		n := *lin.NewV3().Cross(&e1, &e2)
		rel := *lin.NewV3().Sub(&pt, &v0)
		if n.Dot(&rel) > lin.Epsilon {
			return false
		}
	}
	return true
}

// ComputeMassProperties implements the Mirtich polyhedral mass-property
// recurrence ("Fast and Accurate Computation of Polyhedral Mass
// Properties", 1996): each triangular face is projected onto the 2D
// plane perpendicular to its dominant normal axis, a "subexpr"-style
// recurrence accumulates the projection integrals, and those are lifted
// back to 3D volume/first-moment/second-moment integrals weighted by
// the face normal. After assembling mass/centroid/inertia, every vertex
// is translated so the centroid sits at the local origin — callers must
// not call this twice on a shared shape.
func (p *Polyhedron) ComputeMassProperties(density float64) MassProperties {
	var t0 float64        // volume integral
	var t1, t2, tp lin.V3 // first moment, second moment, mixed-product integrals

	for _, f := range p.Faces {
		v0, v1, v2 := p.Vertices[f[0]], p.Vertices[f[1]], p.Vertices[f[2]]
		e1 := *lin.NewV3().Sub(&v1, &v0)
		e2 := *lin.NewV3().Sub(&v2, &v0)
		n := *lin.NewV3().Cross(&e1, &e2)
		if n.Len() < lin.Epsilon {
			continue // degenerate triangle, contributes nothing
		}

		a, b, c := projectionAxes(n)
		Fa, Fb, Fc, Faa, Fbb, Fcc, Faaa, Fbbb, Fccc, Faab, Fbbc, Fcca := faceIntegrals(v0, v1, v2, a, b, c, n)

		t0 += comp(n, 0) * pick3(Fa, Fb, Fc, a, b, c, 0)

		addAxis(&t1, a, comp(n, a)*Faa)
		addAxis(&t1, b, comp(n, b)*Fbb)
		addAxis(&t1, c, comp(n, c)*Fcc)

		addAxis(&t2, a, comp(n, a)*Faaa)
		addAxis(&t2, b, comp(n, b)*Fbbb)
		addAxis(&t2, c, comp(n, c)*Fccc)

		addAxis(&tp, a, comp(n, a)*Faab)
		addAxis(&tp, b, comp(n, b)*Fbbc)
		addAxis(&tp, c, comp(n, c)*Fcca)
	}

	t1 = lin.V3{X: t1.X / 2, Y: t1.Y / 2, Z: t1.Z / 2}
	t2 = lin.V3{X: t2.X / 3, Y: t2.Y / 3, Z: t2.Z / 3}
	tp = lin.V3{X: tp.X / 2, Y: tp.Y / 2, Z: tp.Z / 2}

	volume := t0
	mass := volume * density
	var centroid lin.V3
	if math.Abs(volume) > lin.Epsilon {
		centroid = lin.V3{X: t1.X / volume, Y: t1.Y / volume, Z: t1.Z / volume}
	}

	// inertia about the origin, then parallel-axis shift to the centroid.
	Ixx := density*(t2.Y+t2.Z) - mass*(centroid.Y*centroid.Y+centroid.Z*centroid.Z)
	Iyy := density*(t2.Z+t2.X) - mass*(centroid.Z*centroid.Z+centroid.X*centroid.X)
	Izz := density*(t2.X+t2.Y) - mass*(centroid.X*centroid.X+centroid.Y*centroid.Y)
	Ixy := density*tp.X - mass*centroid.X*centroid.Y
	Iyz := density*tp.Y - mass*centroid.Y*centroid.Z
	Ixz := density*tp.Z - mass*centroid.Z*centroid.X

	// recenter vertices at the computed centroid, per the documented
	// single-call precondition.
	for i := range p.Vertices {
		p.Vertices[i] = *lin.NewV3().Sub(&p.Vertices[i], &centroid)
	}

	return MassProperties{
		Volume: math.Abs(volume),
		Ixx:    Ixx, Iyy: Iyy, Izz: Izz,
		Ixy: Ixy, Iyz: Iyz, Ixz: Ixz,
	}
}

// projectionAxes picks the (a,b,c) axis permutation — c is the axis the
// face normal is most aligned with — used to project each triangle onto
// a 2D plane for the subexpr recurrence, following Mirtich's convention.
func projectionAxes(n lin.V3) (a, b, c int) {
	nx, ny, nz := math.Abs(n.X), math.Abs(n.Y), math.Abs(n.Z)
	c = 2
	if nx > ny && nx > nz {
		c = 0
	} else if ny > nz {
		c = 1
	}
	a = (c + 1) % 3
	b = (a + 1) % 3
	return a, b, c
}

func comp(v lin.V3, axis int) float64 {
	switch axis {
	case 0:
		return v.X
	case 1:
		return v.Y
	default:
		return v.Z
	}
}

func pick3(fa, fb, fc float64, a, b, c, want int) float64 {
	switch want {
	case a:
		return fa
	case b:
		return fb
	default:
		_ = c
		return fc
	}
}

func addAxis(v *lin.V3, axis int, val float64) {
	switch axis {
	case 0:
		v.X += val
	case 1:
		v.Y += val
	default:
		v.Z += val
	}
}

// faceIntegrals computes the projection integrals over triangle
// (v0,v1,v2) along axes (a,b,c) — c is the face normal's dominant axis —
// and lifts them to the face's contribution to the volume/moment
// integrals, following Mirtich's compProjectionIntegrals/compFaceIntegrals.
func faceIntegrals(v0, v1, v2 lin.V3, a, b, c int, n lin.V3) (Fa, Fb, Fc, Faa, Fbb, Fcc, Faaa, Fbbb, Fccc, Faab, Fbbc, Fcca float64) {
	var P1, Pa, Pb, Paa, Pab, Pbb, Paaa, Paab, Pabb, Pbbb float64
	verts := [3]lin.V3{v0, v1, v2}
	for i := 0; i < 3; i++ {
		a0, b0 := comp(verts[i], a), comp(verts[i], b)
		a1, b1 := comp(verts[(i+1)%3], a), comp(verts[(i+1)%3], b)
		da := a1 - a0
		db := b1 - b0
		a0_2, a0_3, a0_4 := a0*a0, a0*a0*a0, a0*a0*a0*a0
		b0_2, b0_3, b0_4 := b0*b0, b0*b0*b0, b0*b0*b0*b0
		a1_2, a1_3 := a1*a1, a1*a1*a1
		b1_2, b1_3 := b1*b1, b1*b1*b1

		C1 := a1 + a0
		Ca := a1*C1 + a0_2
		Caa := a1*Ca + a0_3
		Caaa := a1*Caa + a0_4
		Cb := b1*(b1+b0) + b0_2
		Cbb := b1*Cb + b0_3
		Cbbb := b1*Cbb + b0_4
		Cab := 3*a1_2 + 2*a1*a0 + a0_2
		Kab := a1_2 + 2*a1*a0 + 3*a0_2
		Caab := a0*Cab + 4*a1_3
		Kaab := a1*Kab + 4*a0_3
		Cabb := 4*b1_3 + 3*b1_2*b0 + 2*b1*b0_2 + b0_3
		Kabb := b1_3 + 2*b1_2*b0 + 3*b1*b0_2 + 4*b0_3

		P1 += db * C1
		Pa += db * Ca
		Paa += db * Caa
		Paaa += db * Caaa
		Pb += da * Cb
		Pbb += da * Cbb
		Pbbb += da * Cbbb
		Pab += db * (b1*Cab + b0*Kab)
		Paab += db * (b1*Caab + b0*Kaab)
		Pabb += da * (a1*Cabb + a0*Kabb)
	}

	P1 /= 2
	Pa /= 6
	Paa /= 12
	Paaa /= 20
	Pb /= -6
	Pbb /= -12
	Pbbb /= -20
	Pab /= 24
	Paab /= 60
	Pabb /= -60

	na, nb, nc := comp(n, a), comp(n, b), comp(n, c)
	planeW := -(comp(n, 0)*v0.X + comp(n, 1)*v0.Y + comp(n, 2)*v0.Z)

	k1 := 1.0
	if math.Abs(nc) > lin.Epsilon {
		k1 = 1.0 / nc
	}
	k2, k3, k4 := k1*k1, k1*k1*k1, k1*k1*k1*k1

	Fa = k1 * Pa
	Fb = k1 * Pb
	Fc = -k2 * (na*Pa + nb*Pb + planeW*P1)

	Faa = k1 * Paa
	Fbb = k1 * Pbb
	Fcc = k3 * (na*na*Paa + 2*na*nb*Pab + nb*nb*Pbb + planeW*(2*(na*Pa+nb*Pb)+planeW*P1))

	Faaa = k1 * Paaa
	Fbbb = k1 * Pbbb
	Fccc = -k4 * (na*na*na*Paaa + 3*na*na*nb*Paab + 3*na*nb*nb*Pabb + nb*nb*nb*Pbbb +
		3*planeW*(na*na*Paa+2*na*nb*Pab+nb*nb*Pbb) +
		planeW*planeW*(3*(na*Pa+nb*Pb)+planeW*P1))

	Faab = k1 * Paab
	Fbbc = -k2 * (na*Pabb + nb*Pbbb + planeW*Pbb)
	Fcca = k3 * (na*na*Paaa + 2*na*nb*Paab + nb*nb*Pabb + planeW*(2*(na*Paa+nb*Pab)+planeW*Pa))

	return
}
