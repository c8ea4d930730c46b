package physics

import (
	"testing"

	"github.com/gazed/fiz/math/lin"
)

func newTestSphereBody(pos lin.V3, radius float64) *DynamicBody {
	def := NewBodyDef()
	def.Pos = pos
	def.Shape = &Sphere{Radius: radius}
	return newDynamicBody(def)
}

func newTestBoxBody(pos lin.V3, half lin.V3) *DynamicBody {
	def := NewBodyDef()
	def.Pos = pos
	def.Shape = &Box{Half: half}
	return newDynamicBody(def)
}

func TestGJKOverlappingSpheres(t *testing.T) {
	a := newTestSphereBody(lin.V3{}, 1)
	b := newTestSphereBody(lin.V3{X: 1.5}, 1)
	_, overlap := gjk(a, a.Shape(), b, b.Shape())
	if !overlap {
		t.Fatal("expected overlapping spheres to report a GJK hit")
	}
}

func TestGJKDisjointSpheres(t *testing.T) {
	a := newTestSphereBody(lin.V3{}, 1)
	b := newTestSphereBody(lin.V3{X: 5}, 1)
	_, overlap := gjk(a, a.Shape(), b, b.Shape())
	if overlap {
		t.Fatal("expected far-apart spheres to report no GJK hit")
	}
}

func TestGJKDisjointBoxes(t *testing.T) {
	a := newTestBoxBody(lin.V3{}, lin.V3{X: 1, Y: 1, Z: 1})
	b := newTestBoxBody(lin.V3{X: 5}, lin.V3{X: 1, Y: 1, Z: 1})
	_, overlap := gjk(a, a.Shape(), b, b.Shape())
	if overlap {
		t.Fatal("expected disjoint boxes to report no GJK hit")
	}
}

func TestGJKOverlappingBoxes(t *testing.T) {
	a := newTestBoxBody(lin.V3{}, lin.V3{X: 1, Y: 1, Z: 1})
	b := newTestBoxBody(lin.V3{X: 1.2}, lin.V3{X: 1, Y: 1, Z: 1})
	_, overlap := gjk(a, a.Shape(), b, b.Shape())
	if !overlap {
		t.Fatal("expected overlapping boxes to report a GJK hit")
	}
}

func TestGJKTouchingBoxesDoNotOverlap(t *testing.T) {
	a := newTestBoxBody(lin.V3{}, lin.V3{X: 1, Y: 1, Z: 1})
	b := newTestBoxBody(lin.V3{X: 2.01}, lin.V3{X: 1, Y: 1, Z: 1})
	_, overlap := gjk(a, a.Shape(), b, b.Shape())
	if overlap {
		t.Fatal("expected boxes separated by a small gap to report no GJK hit")
	}
}
