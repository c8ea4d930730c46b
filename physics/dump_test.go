package physics

import (
	"fmt"

	"github.com/gazed/fiz/math/lin"
)

// dumpV3 and dumpF render vectors/floats to a fixed precision string
// for tolerance-friendly comparisons in table-style tests, the same
// convention the math library's own tests use.
func dumpV3(v lin.V3) string { return fmt.Sprintf("%2.3f", v) }
func dumpF(f float64) string { return fmt.Sprintf("%2.3f", f) }
