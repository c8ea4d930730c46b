package physics

import (
	"math"

	"github.com/gazed/fiz/math/lin"
)

const (
	epaMaxIterations = 50
	epaMaxFaces      = 40
	epaTolerance     = 0.0001
)

// polytopeFace is a triangle of the expanding polytope: three indices into
// the polytope's vertex list, plus its precomputed outward normal and
// distance from the origin to the plane it lies in.
type polytopeFace struct {
	a, b, c int
	normal  lin.V3
	dist    float64
}

// polytope is the working set EPA expands each iteration: the Minkowski
// vertices carried over from the GJK simplex, and the current set of
// triangular faces bounding them.
type polytope struct {
	verts []minkowskiPoint
	faces []polytopeFace
}

func newFace(verts []minkowskiPoint, a, b, c int) (polytopeFace, bool) {
	ab := *lin.NewV3().Sub(&verts[b].p, &verts[a].p)
	ac := *lin.NewV3().Sub(&verts[c].p, &verts[a].p)
	n := *lin.NewV3().Cross(&ab, &ac)
	if n.LenSqr() < lin.Epsilon {
		return polytopeFace{}, false
	}
	n = *n.Unit()
	dist := n.Dot(&verts[a].p)
	if dist < 0 {
		n = *lin.NewV3().Scale(&n, -1)
		dist = -dist
		a, b = b, a
	}
	return polytopeFace{a: a, b: b, c: c, normal: n, dist: dist}, true
}

// epaResult is the reconstructed contact once EPA has converged on the
// closest polytope face to the origin.
type epaResult struct {
	normal lin.V3 // world-space, points from A into B
	depth  float64
	pointA lin.V3 // world-space contact point on A's surface
	pointB lin.V3 // world-space contact point on B's surface
}

// epa expands the polytope seeded by a GJK tetrahedron that encloses the
// origin, converging on the face of minimum distance to the origin. That
// face's plane distance is the penetration depth, its normal the contact
// normal, and its vertices' barycentric weights reconstruct the surface
// points on A and B that generated the contact.
func epa(bodyA Body, shapeA Shape, bodyB Body, shapeB Shape, s simplex) (epaResult, bool) {
	if s.count != 4 {
		return epaResult{}, false
	}

	p := polytope{verts: []minkowskiPoint{s.pts[0], s.pts[1], s.pts[2], s.pts[3]}}
	faceDefs := [4][3]int{{0, 1, 2}, {0, 2, 3}, {0, 3, 1}, {1, 3, 2}}
	for _, fd := range faceDefs {
		if f, ok := newFace(p.verts, fd[0], fd[1], fd[2]); ok {
			p.faces = append(p.faces, f)
		}
	}
	if len(p.faces) == 0 {
		logger.Warn("physics: epa seed tetrahedron degenerate")
		return epaResult{}, false
	}

	for i := 0; i < epaMaxIterations; i++ {
		closest := p.faces[0]
		for _, f := range p.faces[1:] {
			if f.dist < closest.dist {
				closest = f
			}
		}

		support := minkowskiSupport(bodyA, shapeA, bodyB, shapeB, closest.normal)
		supportDist := closest.normal.Dot(&support.p)

		if supportDist-closest.dist < epaTolerance || len(p.faces) >= epaMaxFaces {
			return reconstructContact(p, closest), true
		}

		newIdx := len(p.verts)
		p.verts = append(p.verts, support)

		// remove every face the new point can "see" (faces whose plane has
		// the new support point on its positive side), collecting their
		// boundary edges, then re-triangulate the hole with the new point.
		edges := make([]edgeT, 0, 8)
		kept := p.faces[:0]
		for _, f := range p.faces {
			if f.normal.Dot(&support.p)-f.dist > epaTolerance {
				es := [3]edgeT{{f.a, f.b}, {f.b, f.c}, {f.c, f.a}}
				for _, e := range es {
					edges = addUniqueEdge(edges, e.a, e.b)
				}
			} else {
				kept = append(kept, f)
			}
		}
		p.faces = kept

		for _, e := range edges {
			if f, ok := newFace(p.verts, e.a, e.b, newIdx); ok {
				p.faces = append(p.faces, f)
			}
		}
		if len(p.faces) == 0 {
			logger.Warn("physics: epa lost all faces rebuilding polytope")
			return epaResult{}, false
		}
	}

	logger.Warn("physics: epa exceeded iteration cap", "iterations", epaMaxIterations)
	closest := p.faces[0]
	for _, f := range p.faces[1:] {
		if f.dist < closest.dist {
			closest = f
		}
	}
	return reconstructContact(p, closest), true
}

type edgeT = struct{ a, b int }

// addUniqueEdge keeps only edges not shared by two removed faces: a
// shared edge (present in both orientations) is interior to the hole and
// must not be re-triangulated.
func addUniqueEdge(edges []edgeT, a, b int) []edgeT {
	for i, e := range edges {
		if e.a == b && e.b == a {
			return append(edges[:i], edges[i+1:]...)
		}
	}
	return append(edges, edgeT{a, b})
}

// reconstructContact recovers the world-space surface points on A and B
// via the barycentric weights of the origin's projection onto face f,
// solved from the 2x2 Gram system of the face's edge vectors.
func reconstructContact(p polytope, f polytopeFace) epaResult {
	va, vb, vc := p.verts[f.a], p.verts[f.b], p.verts[f.c]
	proj := *lin.NewV3().Scale(&f.normal, f.dist)

	e0 := *lin.NewV3().Sub(&vb.p, &va.p)
	e1 := *lin.NewV3().Sub(&vc.p, &va.p)
	w := *lin.NewV3().Sub(&proj, &va.p)

	d00 := e0.Dot(&e0)
	d01 := e0.Dot(&e1)
	d11 := e1.Dot(&e1)
	d20 := w.Dot(&e0)
	d21 := w.Dot(&e1)
	denom := d00*d11 - d01*d01

	var v, wgt float64
	if math.Abs(denom) > lin.Epsilon {
		v = (d11*d20 - d01*d21) / denom
		wgt = (d00*d21 - d01*d20) / denom
	}
	u := 1 - v - wgt

	pointA := baryBlend(va.a, vb.a, vc.a, u, v, wgt)
	pointB := baryBlend(va.b, vb.b, vc.b, u, v, wgt)

	return epaResult{normal: f.normal, depth: f.dist, pointA: pointA, pointB: pointB}
}

func baryBlend(a, b, c lin.V3, u, v, w float64) lin.V3 {
	ua := *lin.NewV3().Scale(&a, u)
	vb := *lin.NewV3().Scale(&b, v)
	wc := *lin.NewV3().Scale(&c, w)
	out := *lin.NewV3().Add(&ua, &vb)
	return *lin.NewV3().Add(&out, &wc)
}
