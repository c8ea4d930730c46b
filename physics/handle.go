package physics

import "github.com/google/uuid"

// BodyHandle and JointHandle are stable external identifiers handed out
// by the world. Unlike a raw slice index they stay valid (as a lookup
// key) across a BVH rebuild or body removal, so a renderer or test can
// hold one across steps without worrying about slot reuse. Shapes have
// no handle of their own: they're owned and addressed through the body
// they're attached to (BodyDef.Shape), never registered independently.
type BodyHandle uuid.UUID
type JointHandle uuid.UUID

func newBodyHandle() BodyHandle   { return BodyHandle(uuid.New()) }
func newJointHandle() JointHandle { return JointHandle(uuid.New()) }

func (h BodyHandle) String() string  { return uuid.UUID(h).String() }
func (h JointHandle) String() string { return uuid.UUID(h).String() }
