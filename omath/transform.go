package omath

import "github.com/go-gl/mathgl/mgl64"

// Transform is a rigid transform with a uniform scale. Applying a transform to a point scales it
// first, then rotates it and finally translates it.
type Transform struct {
	Translation mgl64.Vec3
	Rotation    mgl64.Quat
	Scale       float64
}

// IdentityTransform returns the transform that leaves every point untouched.
func IdentityTransform() Transform {
	return Transform{Rotation: mgl64.QuatIdent(), Scale: 1}
}

// NewTransform returns a transform from its components. A zero rotation is replaced by the
// identity and a zero scale by 1, so zero values read from configuration stay usable.
func NewTransform(translation mgl64.Vec3, rotation mgl64.Quat, scale float64) Transform {
	if rotation.Len() == 0 {
		rotation = mgl64.QuatIdent()
	}
	if scale == 0 {
		scale = 1
	}
	return Transform{Translation: translation, Rotation: rotation.Normalize(), Scale: scale}
}

// Apply transforms the point p.
func (t Transform) Apply(p mgl64.Vec3) mgl64.Vec3 {
	return t.Translation.Add(t.Rotation.Rotate(p.Mul(t.Scale)))
}

// ApplyDirection rotates the direction d, ignoring translation and scale.
func (t Transform) ApplyDirection(d mgl64.Vec3) mgl64.Vec3 {
	return t.Rotation.Rotate(d)
}

// Mul returns the transform applying o first and t second (t ∘ o).
func (t Transform) Mul(o Transform) Transform {
	return Transform{
		Translation: t.Apply(o.Translation),
		Rotation:    t.Rotation.Mul(o.Rotation).Normalize(),
		Scale:       t.Scale * o.Scale,
	}
}

// Rotate returns t with r composed on its local side, i.e. t ∘ r.
func (t Transform) Rotate(r mgl64.Quat) Transform {
	t.Rotation = t.Rotation.Mul(r).Normalize()
	return t
}

// Inverse returns the transform undoing t.
func (t Transform) Inverse() Transform {
	inv := t.Rotation.Inverse()
	s := 1 / t.Scale
	return Transform{
		Translation: inv.Rotate(t.Translation).Mul(-s),
		Rotation:    inv,
		Scale:       s,
	}
}

// Mat4 returns the homogeneous matrix of the transform.
func (t Transform) Mat4() mgl64.Mat4 {
	return mgl64.Translate3D(t.Translation.X(), t.Translation.Y(), t.Translation.Z()).
		Mul4(t.Rotation.Mat4()).
		Mul4(mgl64.Scale3D(t.Scale, t.Scale, t.Scale))
}
