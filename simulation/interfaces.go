package simulation

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/oomph-ac/springbone/omath"
	"github.com/oomph-ac/springbone/skeleton"
)

// SkeletonProvider bridges the host's skeleton: bone hierarchy, rest pose and current pose.
// Transforms returned are in object (armature) space; ObjectTransform maps them into the world.
type SkeletonProvider interface {
	BoneExists(h skeleton.Handle) bool
	Parent(h skeleton.Handle) (skeleton.Handle, bool)
	PoseTransform(h skeleton.Handle) omath.Transform
	RestTransform(h skeleton.Handle) omath.Transform
	ObjectTransform() omath.Transform
	// RotateBone composes q with the bone's existing local rotation. It is only ever called
	// while committing a frame.
	RotateBone(h skeleton.Handle, q mgl64.Quat)
}
