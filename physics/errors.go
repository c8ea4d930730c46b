package physics

import "errors"

// ErrInvalidShape is returned by World.CreateBody when a BodyDef carries
// no shape. It is the only construction-time error in the package; every
// runtime degeneracy (near-zero denominators in GJK/EPA, zero-length
// joint directions, EPA non-convergence) is absorbed internally instead,
// per the solver's "prefer continuity over precision" propagation
// policy; GJK and EPA also log theirs.
var ErrInvalidShape = errors.New("physics: body definition has no shape")
