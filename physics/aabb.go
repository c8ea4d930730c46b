package physics

import "github.com/gazed/fiz/math/lin"

// AABB is an axis-aligned bounding box used for broad-phase pruning and
// BVH nodes. It is intentionally a plain value type: the solver and BVH
// copy and combine these far more often than they mutate one in place.
type AABB struct {
	Min, Max lin.V3
}

// NewAABB returns a degenerate box, ready to be grown with Combine/ExtendPoint.
func NewAABB() AABB {
	return AABB{
		Min: lin.V3{X: lin.Large, Y: lin.Large, Z: lin.Large},
		Max: lin.V3{X: -lin.Large, Y: -lin.Large, Z: -lin.Large},
	}
}

// Valid reports whether the box encloses at least one point.
func (b AABB) Valid() bool {
	return b.Min.X <= b.Max.X && b.Min.Y <= b.Max.Y && b.Min.Z <= b.Max.Z
}

// ExtendPoint grows b to include p.
func (b AABB) ExtendPoint(p lin.V3) AABB {
	return AABB{
		Min: lin.V3{X: min64(b.Min.X, p.X), Y: min64(b.Min.Y, p.Y), Z: min64(b.Min.Z, p.Z)},
		Max: lin.V3{X: max64(b.Max.X, p.X), Y: max64(b.Max.Y, p.Y), Z: max64(b.Max.Z, p.Z)},
	}
}

// Combine returns the union of b and o.
func (b AABB) Combine(o AABB) AABB {
	return AABB{
		Min: lin.V3{X: min64(b.Min.X, o.Min.X), Y: min64(b.Min.Y, o.Min.Y), Z: min64(b.Min.Z, o.Min.Z)},
		Max: lin.V3{X: max64(b.Max.X, o.Max.X), Y: max64(b.Max.Y, o.Max.Y), Z: max64(b.Max.Z, o.Max.Z)},
	}
}

// Intersects reports whether b and o overlap on all three axes.
// Symmetric by construction: b.Intersects(o) == o.Intersects(b).
func (b AABB) Intersects(o AABB) bool {
	if b.Max.X < o.Min.X || o.Max.X < b.Min.X {
		return false
	}
	if b.Max.Y < o.Min.Y || o.Max.Y < b.Min.Y {
		return false
	}
	if b.Max.Z < o.Min.Z || o.Max.Z < b.Min.Z {
		return false
	}
	return true
}

// Center returns ½(min+max).
func (b AABB) Center() lin.V3 {
	return lin.V3{X: 0.5 * (b.Min.X + b.Max.X), Y: 0.5 * (b.Min.Y + b.Max.Y), Z: 0.5 * (b.Min.Z + b.Max.Z)}
}

// Extent returns max-min per axis.
func (b AABB) Extent() lin.V3 {
	return lin.V3{X: b.Max.X - b.Min.X, Y: b.Max.Y - b.Min.Y, Z: b.Max.Z - b.Min.Z}
}

// MaxExtentAxis returns the index (0=x,1=y,2=z) of the box's longest axis.
func (b AABB) MaxExtentAxis() int {
	e := b.Extent()
	axis := 0
	longest := e.X
	if e.Y > longest {
		axis, longest = 1, e.Y
	}
	if e.Z > longest {
		axis = 2
	}
	return axis
}

// Axis returns the min/max value of the box along the given axis (0,1,2).
func (b AABB) Axis(axis int) (lo, hi float64) {
	switch axis {
	case 0:
		return b.Min.X, b.Max.X
	case 1:
		return b.Min.Y, b.Max.Y
	default:
		return b.Min.Z, b.Max.Z
	}
}

func min64(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func max64(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

// Ray is a local-space ray: a point and a direction, used by shape
// ray-casts and BVH ray traversal.
type Ray struct {
	Origin lin.V3
	Dir    lin.V3
}

// slabIntersect performs the standard ray/AABB slab test. invDir must be
// the component-wise reciprocal of the ray direction; isNeg[i] is true
// when invDir's component i is negative (precomputed once per cast, used
// to pick the near/far child during BVH ray traversal).
func (b AABB) slabIntersect(r Ray, invDir lin.V3, isNeg [3]bool) bool {
	tmin := (axisOf(b, 0, isNeg[0]) - axisOf3(r.Origin, 0)) * axisOf3(invDir, 0)
	tmax := (axisOf(b, 0, !isNeg[0]) - axisOf3(r.Origin, 0)) * axisOf3(invDir, 0)
	for axis := 1; axis < 3; axis++ {
		tyMin := (axisOf(b, axis, isNeg[axis]) - axisOf3(r.Origin, axis)) * axisOf3(invDir, axis)
		tyMax := (axisOf(b, axis, !isNeg[axis]) - axisOf3(r.Origin, axis)) * axisOf3(invDir, axis)
		if tmin > tyMax || tyMin > tmax {
			return false
		}
		if tyMin > tmin {
			tmin = tyMin
		}
		if tyMax < tmax {
			tmax = tyMax
		}
	}
	return tmax >= max64(tmin, 0)
}

func axisOf(b AABB, axis int, hi bool) float64 {
	lo, max := b.Axis(axis)
	if hi {
		return max
	}
	return lo
}

func axisOf3(v lin.V3, axis int) float64 {
	switch axis {
	case 0:
		return v.X
	case 1:
		return v.Y
	default:
		return v.Z
	}
}
