package collider

import (
	"github.com/chewxy/math32"
	"github.com/ethaniccc/float32-cube/cube"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/oomph-ac/springbone/omath"
	"github.com/oomph-ac/springbone/skeleton"
	"github.com/oomph-ac/springbone/spring"
)

// broadphaseMargin pads float32 bounds so rounding can never reject a touching point.
const broadphaseMargin = 1e-3

// World is a collider resolved into world space for the current frame.
type World struct {
	Shape spring.Shape
	// Head is the centre of a sphere, or the first end of a capsule.
	Head mgl64.Vec3
	// Tail is the second end of a capsule. It equals Head for spheres.
	Tail   mgl64.Vec3
	Radius float64
}

// Resolve transforms a collider from the local space of its bone into world space, using the
// bone's current world transform. The radius is copied unchanged.
func Resolve(boneWorld omath.Transform, c spring.Collider) World {
	w := World{Shape: c.Shape, Head: boneWorld.Apply(c.Offset), Radius: c.Radius}
	if c.Shape == spring.ShapeCapsule {
		w.Tail = boneWorld.Apply(c.Tail)
	} else {
		w.Tail = w.Head
	}
	return w
}

// Provider supplies the current world transforms of bones.
type Provider interface {
	BoneExists(h skeleton.Handle) bool
	PoseTransform(h skeleton.Handle) omath.Transform
	ObjectTransform() omath.Transform
}

// ResolveSpring returns the world colliders tested against the joints of the spring passed, in
// group order then collider order. Colliders attached to a missing bone are left out.
func ResolveSpring(p Provider, r *spring.Resolved, s spring.ResolvedSpring) Set {
	if len(s.Colliders) == 0 {
		return Set{}
	}
	object := p.ObjectTransform()
	worlds := make([]World, 0, len(s.Colliders))
	for _, i := range s.Colliders {
		c := r.Colliders[i]
		if !p.BoneExists(c.Bone) {
			continue
		}
		worlds = append(worlds, Resolve(object.Mul(p.PoseTransform(c.Bone)), c.Collider))
	}
	return NewSet(worlds...)
}

// closest returns the point of the collider's core (centre or segment) closest to p.
func (w World) closest(p mgl64.Vec3) mgl64.Vec3 {
	if w.Shape != spring.ShapeCapsule {
		return w.Head
	}
	segment := w.Tail.Sub(w.Head)
	lenSqr := segment.LenSqr()
	if lenSqr <= omath.Epsilon*omath.Epsilon {
		return w.Head
	}
	dot := p.Sub(w.Head).Dot(segment)
	switch {
	case dot <= 0:
		return w.Head
	case dot >= lenSqr:
		return w.Tail
	}
	return w.Head.Add(segment.Mul(dot / lenSqr))
}

// Collide returns the outward contact normal and the signed distance between a point with radius
// hitRadius and the surface of the collider. A negative distance means the point penetrates the
// collider by that amount. A point sitting exactly on the collider's core yields
// omath.DegenerateNormal and omath.DegenerateDistance. That fallback is fixed, so pushing such a
// point moves it by only 0.01 and leaves it inside any collider with a larger radius.
func (w World) Collide(p mgl64.Vec3, hitRadius float64) (normal mgl64.Vec3, distance float64) {
	diff := p.Sub(w.closest(p))
	l := diff.Len()
	if l <= omath.Epsilon {
		return omath.DegenerateNormal, omath.DegenerateDistance
	}
	return diff.Mul(1 / l), l - w.Radius - hitRadius
}

// Push moves p out of the collider along the contact normal. It returns the new position and
// whether the point was penetrating.
func (w World) Push(p mgl64.Vec3, hitRadius float64) (mgl64.Vec3, bool) {
	normal, distance := w.Collide(p, hitRadius)
	if distance >= 0 {
		return p, false
	}
	return p.Sub(normal.Mul(distance)), true
}

// Bounds returns the axis aligned box around the collider's core grown by its radius.
func (w World) Bounds() cube.BBox {
	head, tail := omath.Vec64To32(w.Head), omath.Vec64To32(w.Tail)
	return cube.Box(
		math32.Min(head.X(), tail.X()), math32.Min(head.Y(), tail.Y()), math32.Min(head.Z(), tail.Z()),
		math32.Max(head.X(), tail.X()), math32.Max(head.Y(), tail.Y()), math32.Max(head.Z(), tail.Z()),
	).Grow(float32(w.Radius) + broadphaseMargin)
}

// Set holds the colliders of one spring for the current frame, together with the box around all
// of them. The box is built once per spring and lets the integrator skip every collider at once
// for a tail that is nowhere near them.
type Set struct {
	Worlds []World
	bounds cube.BBox
}

// NewSet returns a set of the colliders passed, kept in order.
func NewSet(worlds ...World) Set {
	s := Set{Worlds: worlds}
	if len(worlds) == 0 {
		return s
	}
	lo, hi := worlds[0].Bounds().Min(), worlds[0].Bounds().Max()
	for _, w := range worlds[1:] {
		b := w.Bounds()
		lo = mgl32.Vec3{math32.Min(lo.X(), b.Min().X()), math32.Min(lo.Y(), b.Min().Y()), math32.Min(lo.Z(), b.Min().Z())}
		hi = mgl32.Vec3{math32.Max(hi.X(), b.Max().X()), math32.Max(hi.Y(), b.Max().Y()), math32.Max(hi.Z(), b.Max().Z())}
	}
	s.bounds = cube.Box(lo.X(), lo.Y(), lo.Z(), hi.X(), hi.Y(), hi.Z())
	return s
}

// Len returns the amount of colliders in the set.
func (s Set) Len() int {
	return len(s.Worlds)
}

// Bounds returns the box around every collider of the set. It is the zero box for an empty set.
func (s Set) Bounds() cube.BBox {
	return s.bounds
}

// MayCollide is a conservative float32 broadphase test: false means a point with the hit radius
// passed cannot touch any collider of the set.
func (s Set) MayCollide(p mgl64.Vec3, hitRadius float64) bool {
	if len(s.Worlds) == 0 {
		return false
	}
	return within(s.bounds.Grow(float32(hitRadius)), omath.Vec64To32(p))
}

// within checks if v is inside the box a or on its faces.
func within(a cube.BBox, v mgl32.Vec3) bool {
	lo, hi := a.Min(), a.Max()
	return v.X() >= lo.X() && v.X() <= hi.X() &&
		v.Y() >= lo.Y() && v.Y() <= hi.Y() &&
		v.Z() >= lo.Z() && v.Z() <= hi.Z()
}
