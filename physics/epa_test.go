package physics

import (
	"math"
	"testing"

	"github.com/gazed/fiz/math/lin"
)

func TestEPASphereSpherePenetration(t *testing.T) {
	a := newTestSphereBody(lin.V3{}, 1)
	b := newTestSphereBody(lin.V3{X: 1.5}, 1)
	s, overlap := gjk(a, a.Shape(), b, b.Shape())
	if !overlap {
		t.Fatal("expected overlap")
	}
	result, ok := epa(a, a.Shape(), b, b.Shape(), s)
	if !ok {
		t.Fatal("expected epa to converge")
	}
	wantDepth := 0.5
	if math.Abs(result.depth-wantDepth) > 0.05 {
		t.Errorf("depth = %v, want ~%v", result.depth, wantDepth)
	}
	// normal should point roughly along +X, from A toward B.
	if result.normal.X < 0.9 {
		t.Errorf("normal = %s, want ~(1,0,0)", dumpV3(result.normal))
	}
}

func TestEPABoxBoxPenetration(t *testing.T) {
	a := newTestBoxBody(lin.V3{}, lin.V3{X: 1, Y: 1, Z: 1})
	b := newTestBoxBody(lin.V3{X: 1.5}, lin.V3{X: 1, Y: 1, Z: 1})
	s, overlap := gjk(a, a.Shape(), b, b.Shape())
	if !overlap {
		t.Fatal("expected overlap")
	}
	result, ok := epa(a, a.Shape(), b, b.Shape(), s)
	if !ok {
		t.Fatal("expected epa to converge")
	}
	wantDepth := 0.5
	if math.Abs(result.depth-wantDepth) > 0.05 {
		t.Errorf("depth = %v, want ~%v", result.depth, wantDepth)
	}
}
