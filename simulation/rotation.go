package simulation

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/oomph-ac/springbone/omath"
)

// Synthesize returns the local rotation that swings the head bone so its tail moves from tailPre
// to tail, together with the head's new world transform. headPre is the head's transform before
// the frame and headNext its transform for this frame before the rotation.
func Synthesize(headPre, headNext omath.Transform, tailPre, tail mgl64.Vec3) (mgl64.Quat, omath.Transform) {
	from := headPre.Inverse().Apply(tailPre)
	to := headNext.Inverse().Apply(tail)
	rotation := omath.ShortestArc(from, to)
	return rotation, headNext.Rotate(rotation)
}

// carry returns the transform a descendant of a rotated bone takes for this frame, before its own
// rotation. pre and moved are the rotated bone's transforms before and after the frame, and
// descendant is the descendant's transform before the frame.
func carry(pre, moved, descendant omath.Transform) omath.Transform {
	return moved.Mul(pre.Inverse()).Mul(descendant)
}
