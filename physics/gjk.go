package physics

import (
	"math"

	"github.com/gazed/fiz/math/lin"
)

// gjkMaxIterations bounds the simplex-evolution loop. A run that hits the
// cap without resolving is treated as "no collision" and logged, rather
// than looping forever on a degenerate configuration (coincident shapes,
// NaN support points).
const gjkMaxIterations = 50

// minkowskiPoint is a single vertex of the Minkowski difference support
// mapping, carrying the two world-space support points on A and B whose
// difference produced it. EPA needs both halves to reconstruct the
// contact point via barycentric interpolation once it has isolated the
// closest triangle.
type minkowskiPoint struct {
	p  lin.V3 // support(A) - support(B), world space
	a  lin.V3 // support(A), world space
	b  lin.V3 // support(B), world space
}

// simplex holds up to four minkowskiPoints: a point, a line, a triangle,
// or a tetrahedron enclosing (or not) the origin.
type simplex struct {
	pts   [4]minkowskiPoint
	count int
}

func (s *simplex) push(p minkowskiPoint) {
	// newest point goes first; this mirrors the reference implementation's
	// convention of always inspecting pts[0] as "the point just added".
	for i := s.count; i > 0; i-- {
		s.pts[i] = s.pts[i-1]
	}
	s.pts[0] = p
	s.count++
}

func (s *simplex) set1(a minkowskiPoint) {
	s.pts[0] = a
	s.count = 1
}

func (s *simplex) set2(a, b minkowskiPoint) {
	s.pts[0], s.pts[1] = a, b
	s.count = 2
}

func (s *simplex) set3(a, b, c minkowskiPoint) {
	s.pts[0], s.pts[1], s.pts[2] = a, b, c
	s.count = 3
}

func (s *simplex) set4(a, b, c, d minkowskiPoint) {
	s.pts[0], s.pts[1], s.pts[2], s.pts[3] = a, b, c, d
	s.count = 4
}

// minkowskiSupport returns the support point of the Minkowski difference
// shapeA - shapeB along axis, expressed in world space, along with the
// two world-space support points that produced it.
func minkowskiSupport(bodyA Body, shapeA Shape, bodyB Body, shapeB Shape, axis lin.V3) minkowskiPoint {
	negAxis := *lin.NewV3().Scale(&axis, -1)

	localAxisA := bodyA.LocalVector(axis)
	spA := shapeA.Support(localAxisA)
	worldA := bodyA.WorldPoint(spA)

	localAxisB := bodyB.LocalVector(negAxis)
	spB := shapeB.Support(localAxisB)
	worldB := bodyB.WorldPoint(spB)

	diff := *lin.NewV3().Sub(&worldA, &worldB)
	return minkowskiPoint{p: diff, a: worldA, b: worldB}
}

// gjk runs the Gilbert-Johnson-Keerthi overlap test between two bodies'
// shapes. It returns the terminating simplex (a tetrahedron enclosing the
// origin when overlapping, or a smaller simplex touching the origin when
// the search direction collapses to zero) and whether the shapes overlap;
// EPA consumes a tetrahedron to extract the penetration depth and normal.
func gjk(bodyA Body, shapeA Shape, bodyB Body, shapeB Shape) (simplex, bool) {
	dir := lin.V3{X: 1}
	support := minkowskiSupport(bodyA, shapeA, bodyB, shapeB, dir)

	var s simplex
	s.set1(support)

	dir = *lin.NewV3().Scale(&support.p, -1)

	for i := 0; i < gjkMaxIterations; i++ {
		if dir.LenSqr() < lin.Epsilon {
			// direction collapsed to zero: origin coincides with the
			// simplex itself (shapes exactly touching at a vertex).
			return s, true
		}
		next := minkowskiSupport(bodyA, shapeA, bodyB, shapeB, dir)
		if next.p.Dot(&dir) < 0 {
			return s, false
		}
		s.push(next)

		var collided bool
		s, dir, collided = doSimplex(s)
		if collided {
			return s, true
		}
	}
	logger.Warn("physics: gjk exceeded iteration cap", "iterations", gjkMaxIterations)
	return s, false
}

// doSimplex reduces the simplex to the lowest-dimensional feature closest
// to the origin, returning the updated simplex, the next search direction,
// and whether the origin has been enclosed (tetrahedron case, collision
// found).
func doSimplex(s simplex) (simplex, lin.V3, bool) {
	switch s.count {
	case 2:
		return lineCase(s)
	case 3:
		return triangleCase(s)
	case 4:
		return tetrahedronCase(s)
	}
	// count == 1: search back toward the origin from the lone point.
	dir := *lin.NewV3().Scale(&s.pts[0].p, -1)
	return s, dir, false
}

func sameDirection(a, b lin.V3) bool {
	return a.Dot(&b) > 0
}

func lineCase(s simplex) (simplex, lin.V3, bool) {
	a, b := s.pts[0], s.pts[1]
	ab := *lin.NewV3().Sub(&b.p, &a.p)
	ao := *lin.NewV3().Scale(&a.p, -1)

	if sameDirection(ab, ao) {
		dir := *lin.NewV3().Cross(lin.NewV3().Cross(&ab, &ao), &ab)
		if dir.LenSqr() < lin.Epsilon {
			// origin lies on the line itself; pick any perpendicular.
			dir = perpendicularOf(ab)
		}
		s.set2(a, b)
		return s, dir, false
	}
	s.set1(a)
	return s, ao, false
}

func triangleCase(s simplex) (simplex, lin.V3, bool) {
	a, b, c := s.pts[0], s.pts[1], s.pts[2]
	ab := *lin.NewV3().Sub(&b.p, &a.p)
	ac := *lin.NewV3().Sub(&c.p, &a.p)
	ao := *lin.NewV3().Scale(&a.p, -1)
	abc := *lin.NewV3().Cross(&ab, &ac)

	abPerp := *lin.NewV3().Cross(&ab, &abc)
	if sameDirection(abPerp, ao) {
		if sameDirection(ab, ao) {
			s.set2(a, b)
			dir := *lin.NewV3().Cross(lin.NewV3().Cross(&ab, &ao), &ab)
			return s, dir, false
		}
		s.set1(a)
		return s, ao, false
	}

	acPerp := *lin.NewV3().Cross(&abc, &ac)
	if sameDirection(acPerp, ao) {
		if sameDirection(ac, ao) {
			s.set2(a, c)
			dir := *lin.NewV3().Cross(lin.NewV3().Cross(&ac, &ao), &ac)
			return s, dir, false
		}
		s.set1(a)
		return s, ao, false
	}

	s.set3(a, b, c)
	if sameDirection(abc, ao) {
		return s, abc, false
	}
	negAbc := *lin.NewV3().Scale(&abc, -1)
	// flip winding so the face normal keeps pointing away from the origin
	s.set3(a, c, b)
	return s, negAbc, false
}

func tetrahedronCase(s simplex) (simplex, lin.V3, bool) {
	a, b, c, d := s.pts[0], s.pts[1], s.pts[2], s.pts[3]
	ab := *lin.NewV3().Sub(&b.p, &a.p)
	ac := *lin.NewV3().Sub(&c.p, &a.p)
	ad := *lin.NewV3().Sub(&d.p, &a.p)
	ao := *lin.NewV3().Scale(&a.p, -1)

	abc := *lin.NewV3().Cross(&ab, &ac)
	acd := *lin.NewV3().Cross(&ac, &ad)
	adb := *lin.NewV3().Cross(&ad, &ab)

	if sameDirection(abc, ao) {
		s.set3(a, b, c)
		return triangleCase(s)
	}
	if sameDirection(acd, ao) {
		s.set3(a, c, d)
		return triangleCase(s)
	}
	if sameDirection(adb, ao) {
		s.set3(a, d, b)
		return triangleCase(s)
	}
	s.set4(a, b, c, d)
	return s, lin.V3{}, true
}

// perpendicularOf returns an arbitrary vector perpendicular to v, used
// only in the degenerate case where the origin lies exactly on a GJK
// simplex edge.
func perpendicularOf(v lin.V3) lin.V3 {
	axis := lin.V3{X: 1}
	if math.Abs(v.X) > 0.9 {
		axis = lin.V3{Y: 1}
	}
	return *lin.NewV3().Cross(&v, &axis)
}
