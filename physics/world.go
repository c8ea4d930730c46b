package physics

import "github.com/gazed/fiz/math/lin"

// ContactListener is notified of a contact the narrow phase produced,
// before the impulse solver runs on it. Returning from the listener
// without mutating c leaves the default resolution unchanged; it exists
// for instrumentation (contact counting, sound/particle triggers), not
// for altering the physics.
type ContactListener func(c *ContactInfo)

// World owns every body and joint in a simulation and advances them one
// fixed timestep at a time via Step. Collision against static geometry
// goes through a StaticBVH once it has enough bodies to be worth
// building; small worlds fall back to a linear scan.
type World struct {
	Gravity lin.V3
	Iters   int // velocity/position substeps per Step call, default 4

	DynamicBodies []*DynamicBody
	StaticBodies  []*StaticBody
	Joints        []Joint

	StaticBVH StaticBVH

	// DynamicDynamicListener and StaticDynamicListener, if set, are
	// called with every contact produced by the respective phase before
	// it's solved.
	DynamicDynamicListener ContactListener
	StaticDynamicListener  ContactListener

	// Contacts holds every contact produced by the most recently
	// completed Step, across all substeps. It's reset at the start of
	// each Step, so a renderer reading it afterward sees every contact
	// that Step produced, including contacts with sensor bodies, which
	// are listed but not solved.
	Contacts []ContactInfo

	byHandle map[BodyHandle]Body
}

// NewWorld returns a World with the engine's documented defaults:
// earth gravity along -Z and four solver substeps per Step.
func NewWorld() *World {
	return &World{
		Gravity:  lin.V3{Z: -9.8},
		Iters:    4,
		byHandle: make(map[BodyHandle]Body),
	}
}

// CreateBody constructs and registers a body from def, returning
// ErrInvalidShape if def carries no shape.
func (w *World) CreateBody(def BodyDef) (BodyHandle, error) {
	if def.Shape == nil {
		return BodyHandle{}, ErrInvalidShape
	}
	if w.byHandle == nil {
		w.byHandle = make(map[BodyHandle]Body)
	}

	switch def.Kind {
	case Static:
		b := newStaticBody(def)
		w.StaticBodies = append(w.StaticBodies, b)
		w.byHandle[b.handle] = b
		w.StaticBVH.built = false
		return b.handle, nil
	default:
		b := newDynamicBody(def)
		w.DynamicBodies = append(w.DynamicBodies, b)
		w.byHandle[b.handle] = b
		return b.handle, nil
	}
}

// Body looks up a previously created body by its handle.
func (w *World) Body(h BodyHandle) (Body, bool) {
	b, ok := w.byHandle[h]
	return b, ok
}

// AddJoint registers j to be applied every substep.
func (w *World) AddJoint(j Joint) JointHandle {
	w.Joints = append(w.Joints, j)
	return newJointHandle()
}

// BuildBVH (re)builds the static body hierarchy. Step calls this
// automatically the first time it needs the BVH after a static body was
// added; call it explicitly after adding static bodies mid-simulation to
// pay the rebuild cost up front instead of on the next Step.
func (w *World) BuildBVH() {
	bodies := make([]Body, len(w.StaticBodies))
	for i, b := range w.StaticBodies {
		bodies[i] = b
	}
	w.StaticBVH.Build(bodies)
}

// bvhBuildThreshold is the static body count at or above which querying the
// BVH is worth its maintenance cost; below it Step scans StaticBodies
// linearly instead.
const bvhBuildThreshold = 8

// Step advances the simulation by deltaT seconds, split into w.Iters
// substeps (each of length deltaT/Iters): apply joints, integrate,
// resolve dynamic-dynamic contacts, resolve dynamic-static contacts,
// update sleep state.
func (w *World) Step(deltaT float64) {
	iters := w.Iters
	if iters <= 0 {
		iters = 1
	}
	h := deltaT / float64(iters)

	w.Contacts = w.Contacts[:0]

	useBVH := len(w.StaticBodies) >= bvhBuildThreshold
	if useBVH && !w.StaticBVH.Built() {
		w.BuildBVH()
	}

	for step := 0; step < iters; step++ {
		for _, j := range w.Joints {
			j.Apply()
		}

		for _, b := range w.DynamicBodies {
			if b.isAwake {
				b.ApplyForce(*lin.NewV3().Scale(&w.Gravity, b.mass))
			}
			b.update(h)
		}

		w.resolveDynamicDynamic()
		w.resolveDynamicStatic(useBVH)

		for _, b := range w.DynamicBodies {
			b.updateSleep(h)
		}
	}
}

func (w *World) resolveDynamicDynamic() {
	for i, a := range w.DynamicBodies {
		if !a.IsAwake() {
			continue
		}
		if c, ok := checkCollisionGround(a); ok {
			w.notify(w.DynamicDynamicListener, &c)
			solveContactStatic(&c)
			w.Contacts = append(w.Contacts, c)
		}
		for j := 0; j < i; j++ {
			b := w.DynamicBodies[j]
			if !a.AABB().Intersects(b.AABB()) {
				continue
			}
			c, ok := narrowPhase(a, b)
			if !ok {
				continue
			}
			w.notify(w.DynamicDynamicListener, &c)
			solveContactDynamic(&c)
			w.Contacts = append(w.Contacts, c)
		}
	}
}

func (w *World) resolveDynamicStatic(useBVH bool) {
	for _, dyn := range w.DynamicBodies {
		if !dyn.IsAwake() {
			continue
		}
		if useBVH {
			hits := w.StaticBVH.QueryAABB(dyn.AABB())
			for _, idx := range hits {
				w.resolveOnePair(w.StaticBVH.Bodies[idx].(*StaticBody), dyn)
			}
			continue
		}
		for _, st := range w.StaticBodies {
			if !dyn.AABB().Intersects(st.AABB()) {
				continue
			}
			w.resolveOnePair(st, dyn)
		}
	}
}

func (w *World) resolveOnePair(st *StaticBody, dyn *DynamicBody) {
	// narrowPhase is called dynamic-first so its contact's BodyA is the
	// dynamic body, matching solveContactStatic's convention; its normal
	// then points from the dynamic body toward the static one, so it's
	// flipped here to the "points away from the static surface, toward
	// the dynamic body" convention checkCollisionGround already uses.
	c, ok := narrowPhase(dyn, st)
	if !ok {
		return
	}
	c.Normal = *lin.NewV3().Scale(&c.Normal, -1)
	w.notify(w.StaticDynamicListener, &c)
	w.Contacts = append(w.Contacts, c)
	if st.IsSensor() {
		return
	}
	solveContactStatic(&c)
}

// narrowPhase dispatches to the sphere-sphere analytic fast path when
// both shapes are spheres, falling back to GJK+EPA otherwise. The
// contact's BodyA is always the first argument, matching the caller's
// expectation for which body the solver treats as "A".
func narrowPhase(a, b Body) (ContactInfo, bool) {
	sa, aIsSphere := a.Shape().(*Sphere)
	sb, bIsSphere := b.Shape().(*Sphere)
	if aIsSphere && bIsSphere {
		return checkCollisionSphereSphere(a, b, sa, sb)
	}
	return checkCollision(a, b)
}

func (w *World) notify(listener ContactListener, c *ContactInfo) {
	if listener != nil {
		listener(c)
	}
}
