package physics

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gazed/fiz/math/lin"
)

func newTestStaticBox(pos lin.V3) *StaticBody {
	def := NewBodyDef()
	def.Kind = Static
	def.Pos = pos
	def.Shape = &Box{Half: lin.V3{X: 0.5, Y: 0.5, Z: 0.5}}
	return newStaticBody(def)
}

func TestStaticBVHBuildAndQueryExactMatch(t *testing.T) {
	var bodies []Body
	for i := 0; i < 20; i++ {
		bodies = append(bodies, newTestStaticBox(lin.V3{X: float64(i) * 3}))
	}

	var bvh StaticBVH
	bvh.Build(bodies)
	assert.True(t, bvh.Built())
	assert.Len(t, bvh.Bodies, 20)
	assert.NotEmpty(t, bvh.Nodes)

	// a query box around body index 7's position should hit exactly the
	// bodies whose AABB it overlaps under a brute-force linear scan.
	query := AABB{Min: lin.V3{X: 21 - 0.6, Y: -0.6, Z: -0.6}, Max: lin.V3{X: 21 + 0.6, Y: 0.6, Z: 0.6}}

	var want []Body
	for _, b := range bodies {
		if query.Intersects(b.AABB()) {
			want = append(want, b)
		}
	}

	hits := bvh.QueryAABB(query)
	var got []Body
	for _, idx := range hits {
		got = append(got, bvh.Bodies[idx])
	}
	assert.ElementsMatch(t, want, got)
}

func TestStaticBVHQueryEmpty(t *testing.T) {
	var bvh StaticBVH
	bvh.Build(nil)
	assert.True(t, bvh.Built())
	hits := bvh.QueryAABB(NewAABB())
	assert.Empty(t, hits)
}

func TestStaticBVHRayThroughBox(t *testing.T) {
	bodies := []Body{newTestStaticBox(lin.V3{X: 10})}
	var bvh StaticBVH
	bvh.Build(bodies)

	ray := Ray{Origin: lin.V3{X: -5}, Dir: lin.V3{X: 1}}
	idx, dist, hit := bvh.QueryRay(ray)
	assert.True(t, hit)
	assert.Equal(t, 0, idx)
	assert.InDelta(t, 14.5, dist, 1e-6)
}

func TestStaticBVHRayMiss(t *testing.T) {
	bodies := []Body{newTestStaticBox(lin.V3{X: 10})}
	var bvh StaticBVH
	bvh.Build(bodies)

	ray := Ray{Origin: lin.V3{X: -5, Y: 10}, Dir: lin.V3{X: 1}}
	_, _, hit := bvh.QueryRay(ray)
	assert.False(t, hit)
}
