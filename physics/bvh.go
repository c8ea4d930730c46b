package physics

import "github.com/gazed/fiz/math/lin"

// bvhLeafSize is the primitive count at or below which recursiveBuild
// stops splitting and emits a leaf, matching the reference builder's
// fixed threshold.
const bvhLeafSize = 4

// bvhStackDepth bounds the explicit traversal stack. A balanced tree over
// any realistic body count never approaches this; it exists so a
// pathological build can't overflow an unbounded stack.
const bvhStackDepth = 64

// LinearBVHNode is one entry of the flattened, pre-order bounding volume
// hierarchy: either an interior node (primitiveCount == 0, secondChild
// gives the offset of its right child, left is always the next entry) or
// a leaf spanning [primitiveOffset, primitiveOffset+primitiveCount) of
// the reordered body slice.
type LinearBVHNode struct {
	AABB            AABB
	PrimitiveOffset int
	SecondChild     int
	PrimitiveCount  int
	Axis            int
}

// StaticBVH is a bounding volume hierarchy over a world's static bodies,
// used to prune dynamic-vs-static collision tests to only the bodies
// whose AABB the moving body could plausibly touch.
type StaticBVH struct {
	Bodies []Body // reordered to match the flattened leaves once built
	Nodes  []LinearBVHNode
	built  bool
}

type bvhBuildNode struct {
	aabb                AABB
	left, right         *bvhBuildNode
	splitAxis           int
	primStart, primCount int
}

type bvhPrimInfo struct {
	aabb     AABB
	centroid lin.V3
	index    int
}

// Build (re)constructs the hierarchy from bodies, using the
// midpoint-split strategy with a fall back to an equal-counts median
// split when midpoint partitioning fails to separate the set (e.g. many
// centroids clustered to one side of the midpoint).
func (bv *StaticBVH) Build(bodies []Body) {
	if len(bodies) == 0 {
		bv.Bodies = nil
		bv.Nodes = nil
		bv.built = true
		return
	}

	info := make([]bvhPrimInfo, len(bodies))
	for i, b := range bodies {
		aabb := b.AABB()
		info[i] = bvhPrimInfo{aabb: aabb, centroid: aabb.Center(), index: i}
	}

	ordered := make([]Body, 0, len(bodies))
	totalNodes := 0
	root := bvhRecursiveBuild(bodies, info, 0, len(info), &totalNodes, &ordered)

	bv.Bodies = ordered
	bv.Nodes = make([]LinearBVHNode, totalNodes)
	offset := 0
	flattenBVH(root, bv.Nodes, &offset)
	bv.built = true
}

// Built reports whether Build has run at least once since construction
// or the last invalidation.
func (bv *StaticBVH) Built() bool { return bv.built }

func bvhRecursiveBuild(bodies []Body, info []bvhPrimInfo, start, end int, totalNodes *int, ordered *[]Body) *bvhBuildNode {
	*totalNodes++
	node := &bvhBuildNode{}

	bounds := info[start].aabb
	for i := start + 1; i < end; i++ {
		bounds = bounds.Combine(info[i].aabb)
	}

	n := end - start
	if n <= bvhLeafSize {
		initBVHLeaf(node, info, start, end, bounds, bodies, ordered)
		return node
	}

	centroidBounds := NewAABB()
	for i := start; i < end; i++ {
		centroidBounds = centroidBounds.ExtendPoint(info[i].centroid)
	}
	axis := centroidBounds.MaxExtentAxis()
	lo, hi := centroidBounds.Axis(axis)
	if hi-lo < lin.Epsilon {
		initBVHLeaf(node, info, start, end, bounds, bodies, ordered)
		return node
	}

	mid := (start + end) / 2
	pmid := 0.5 * (lo + hi)
	mid = partitionByMidpoint(info, start, end, axis, pmid)
	if mid == start || mid == end {
		mid = (start + end) / 2
		nthElementByAxis(info, start, mid, end, axis)
	}

	node.left = bvhRecursiveBuild(bodies, info, start, mid, totalNodes, ordered)
	node.right = bvhRecursiveBuild(bodies, info, mid, end, totalNodes, ordered)
	node.aabb = node.left.aabb.Combine(node.right.aabb)
	node.splitAxis = axis
	node.primCount = 0
	return node
}

func initBVHLeaf(node *bvhBuildNode, info []bvhPrimInfo, start, end int, bounds AABB, bodies []Body, ordered *[]Body) {
	firstOffset := len(*ordered)
	for i := start; i < end; i++ {
		*ordered = append(*ordered, bodies[info[i].index])
	}
	node.aabb = bounds
	node.primStart = firstOffset
	node.primCount = end - start
}

func axisComponent(v lin.V3, axis int) float64 {
	switch axis {
	case 0:
		return v.X
	case 1:
		return v.Y
	default:
		return v.Z
	}
}

// partitionByMidpoint moves every primitive whose centroid is below pmid
// on axis to the front of info[start:end], returning the split point.
func partitionByMidpoint(info []bvhPrimInfo, start, end, axis int, pmid float64) int {
	i := start
	for j := start; j < end; j++ {
		if axisComponent(info[j].centroid, axis) < pmid {
			info[i], info[j] = info[j], info[i]
			i++
		}
	}
	return i
}

// nthElementByAxis partially sorts info[start:end] so that info[mid]
// holds the element that would be there under a full sort by centroid
// axis component, an equal-counts median split.
func nthElementByAxis(info []bvhPrimInfo, start, mid, end int, axis int) {
	sub := info[start:end]
	k := mid - start
	quickselect(sub, k, func(a, b bvhPrimInfo) bool {
		return axisComponent(a.centroid, axis) < axisComponent(b.centroid, axis)
	})
}

func quickselect(s []bvhPrimInfo, k int, less func(a, b bvhPrimInfo) bool) {
	lo, hi := 0, len(s)-1
	for lo < hi {
		p := s[(lo+hi)/2]
		i, j := lo, hi
		for i <= j {
			for less(s[i], p) {
				i++
			}
			for less(p, s[j]) {
				j--
			}
			if i <= j {
				s[i], s[j] = s[j], s[i]
				i++
				j--
			}
		}
		if k <= j {
			hi = j
		} else if k >= i {
			lo = i
		} else {
			break
		}
	}
}

func flattenBVH(node *bvhBuildNode, nodes []LinearBVHNode, offset *int) int {
	myOffset := *offset
	linear := &nodes[myOffset]
	linear.AABB = node.aabb
	*offset++

	if node.primCount > 0 {
		linear.PrimitiveOffset = node.primStart
		linear.PrimitiveCount = node.primCount
		return myOffset
	}

	linear.Axis = node.splitAxis
	linear.PrimitiveCount = 0
	flattenBVH(node.left, nodes, offset)
	linear.SecondChild = flattenBVH(node.right, nodes, offset)
	return myOffset
}

// QueryAABB returns the indices (into bv.Bodies) of every body whose
// AABB might overlap aabb. The caller still needs an exact narrow-phase
// test; this only prunes by bounding volume.
func (bv *StaticBVH) QueryAABB(aabb AABB) []int {
	if len(bv.Nodes) == 0 {
		return nil
	}
	var hits []int
	var stack [bvhStackDepth]int
	stackPtr := 0
	current := 0

	for {
		node := &bv.Nodes[current]
		if aabb.Intersects(node.AABB) {
			if node.PrimitiveCount > 0 {
				for i := 0; i < node.PrimitiveCount; i++ {
					idx := node.PrimitiveOffset + i
					if aabb.Intersects(bv.Bodies[idx].AABB()) {
						hits = append(hits, idx)
					}
				}
				if stackPtr == 0 {
					break
				}
				stackPtr--
				current = stack[stackPtr]
			} else {
				stack[stackPtr] = current + 1
				stackPtr++
				current = node.SecondChild
			}
		} else {
			if stackPtr == 0 {
				break
			}
			stackPtr--
			current = stack[stackPtr]
		}
	}
	return hits
}

// QueryRay returns the index (into bv.Bodies) of the body whose shape is
// struck nearest the ray origin, and the hit distance, visiting near
// children before far children so the search can be extended with
// early-out pruning in the future without changing this traversal order.
func (bv *StaticBVH) QueryRay(r Ray) (int, float64, bool) {
	if len(bv.Nodes) == 0 {
		return -1, 0, false
	}
	invDir := lin.V3{X: invOrInf(r.Dir.X), Y: invOrInf(r.Dir.Y), Z: invOrInf(r.Dir.Z)}
	isNeg := [3]bool{invDir.X < 0, invDir.Y < 0, invDir.Z < 0}

	closestIdx := -1
	closestDist := lin.Large

	var stack [bvhStackDepth]int
	stackPtr := 0
	current := 0

	for {
		node := &bv.Nodes[current]
		if node.AABB.slabIntersect(r, invDir, isNeg) {
			if node.PrimitiveCount > 0 {
				for i := 0; i < node.PrimitiveCount; i++ {
					idx := node.PrimitiveOffset + i
					body := bv.Bodies[idx]
					local := Ray{Origin: body.LocalPoint(r.Origin), Dir: body.LocalVector(r.Dir)}
					dist, hit := body.Shape().RayCast(local)
					if hit && dist > 0 && dist < closestDist {
						closestDist = dist
						closestIdx = idx
					}
				}
				if stackPtr == 0 {
					break
				}
				stackPtr--
				current = stack[stackPtr]
			} else {
				if isNeg[node.Axis] {
					stack[stackPtr] = current + 1
					stackPtr++
					current = node.SecondChild
				} else {
					stack[stackPtr] = node.SecondChild
					stackPtr++
					current = current + 1
				}
			}
		} else {
			if stackPtr == 0 {
				break
			}
			stackPtr--
			current = stack[stackPtr]
		}
	}
	return closestIdx, closestDist, closestIdx >= 0
}

func invOrInf(f float64) float64 {
	if f == 0 {
		return lin.Large
	}
	return 1 / f
}
