package skeleton

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/oomph-ac/springbone/oerror"
	"github.com/oomph-ac/springbone/omath"
)

// Handle addresses a bone inside a Skeleton. Handles stay stable for the lifetime of the skeleton,
// even when bones are removed.
type Handle int

// InvalidHandle is the handle of a bone that could not be resolved.
const InvalidHandle Handle = -1

// Bone is a single node of the bone tree.
type Bone struct {
	Name   string
	Parent Handle
	// Rest is the rest-pose transform of the bone relative to its parent.
	Rest omath.Transform
	// Rotation is the current local pose rotation, composed on top of Rest.
	Rotation mgl64.Quat

	children []Handle
	removed  bool
}

// Children returns the handles of the bone's direct children.
func (b *Bone) Children() []Handle {
	return b.children
}

// Skeleton is an in-memory bone hierarchy with a rest pose and a current pose. It stands in for
// the host's armature: the simulator only reads transforms from it and composes rotations onto it.
// Skeleton is not safe for concurrent mutation; concurrent reads are fine.
type Skeleton struct {
	bones  []*Bone
	byName map[string]Handle

	object omath.Transform
}

// New returns an empty skeleton placed at the world origin.
func New() *Skeleton {
	return &Skeleton{
		byName: make(map[string]Handle),
		object: omath.IdentityTransform(),
	}
}

// AddBone adds a bone with the given parent-relative rest transform. An empty parent name adds a
// root bone.
func (s *Skeleton) AddBone(name, parent string, rest omath.Transform) (Handle, error) {
	if name == "" {
		return InvalidHandle, oerror.Config("bone name must not be empty")
	}
	if _, ok := s.byName[name]; ok {
		return InvalidHandle, oerror.Config("duplicate bone %q", name)
	}

	p := InvalidHandle
	if parent != "" {
		h, ok := s.Handle(parent)
		if !ok {
			return InvalidHandle, &oerror.MissingBoneError{Bone: parent}
		}
		p = h
	}
	rest = omath.NewTransform(rest.Translation, rest.Rotation, rest.Scale)

	h := Handle(len(s.bones))
	s.bones = append(s.bones, &Bone{
		Name:     name,
		Parent:   p,
		Rest:     rest,
		Rotation: mgl64.QuatIdent(),
	})
	s.byName[name] = h
	if p != InvalidHandle {
		s.bones[p].children = append(s.bones[p].children, h)
	}
	return h, nil
}

// RemoveBone removes a bone and all of its descendants. Their handles are never reused.
func (s *Skeleton) RemoveBone(name string) bool {
	h, ok := s.Handle(name)
	if !ok {
		return false
	}
	b := s.bones[h]
	if b.Parent != InvalidHandle {
		parent := s.bones[b.Parent]
		for i, c := range parent.children {
			if c == h {
				parent.children = append(parent.children[:i], parent.children[i+1:]...)
				break
			}
		}
	}
	s.remove(h)
	return true
}

func (s *Skeleton) remove(h Handle) {
	b := s.bones[h]
	for _, c := range b.children {
		s.remove(c)
	}
	b.removed = true
	b.children = nil
	delete(s.byName, b.Name)
}

// Handle resolves a bone name.
func (s *Skeleton) Handle(name string) (Handle, bool) {
	h, ok := s.byName[name]
	return h, ok
}

// Bone returns the bone behind a handle, or nil if it does not exist.
func (s *Skeleton) Bone(h Handle) *Bone {
	if !s.BoneExists(h) {
		return nil
	}
	return s.bones[h]
}

// Len returns the number of handles ever issued, including removed bones.
func (s *Skeleton) Len() int {
	return len(s.bones)
}

// BoneExists ...
func (s *Skeleton) BoneExists(h Handle) bool {
	return h >= 0 && int(h) < len(s.bones) && !s.bones[h].removed
}

// Parent returns the parent of the bone, if it has one.
func (s *Skeleton) Parent(h Handle) (Handle, bool) {
	if !s.BoneExists(h) {
		return InvalidHandle, false
	}
	p := s.bones[h].Parent
	return p, p != InvalidHandle
}

// ObjectTransform returns the object-to-world transform of the skeleton.
func (s *Skeleton) ObjectTransform() omath.Transform {
	return s.object
}

// SetObjectTransform moves the whole skeleton in the world.
func (s *Skeleton) SetObjectTransform(t omath.Transform) {
	s.object = t
}

// RestTransform returns the object-space transform of the bone in the rest pose.
func (s *Skeleton) RestTransform(h Handle) omath.Transform {
	if !s.BoneExists(h) {
		return omath.IdentityTransform()
	}
	b := s.bones[h]
	if b.Parent == InvalidHandle {
		return b.Rest
	}
	return s.RestTransform(b.Parent).Mul(b.Rest)
}

// PoseTransform returns the object-space transform of the bone in the current pose.
func (s *Skeleton) PoseTransform(h Handle) omath.Transform {
	if !s.BoneExists(h) {
		return omath.IdentityTransform()
	}
	b := s.bones[h]
	local := b.Rest.Rotate(b.Rotation)
	if b.Parent == InvalidHandle {
		return local
	}
	return s.PoseTransform(b.Parent).Mul(local)
}

// WorldTransform returns the world-space transform of the bone in the current pose.
func (s *Skeleton) WorldTransform(h Handle) omath.Transform {
	return s.object.Mul(s.PoseTransform(h))
}

// LocalRotation returns the current local pose rotation of the bone.
func (s *Skeleton) LocalRotation(h Handle) mgl64.Quat {
	if !s.BoneExists(h) {
		return mgl64.QuatIdent()
	}
	return s.bones[h].Rotation
}

// SetLocalRotation replaces the current local pose rotation of the bone. This is what the host
// animation system does every frame before the simulator runs.
func (s *Skeleton) SetLocalRotation(h Handle, q mgl64.Quat) {
	if s.BoneExists(h) {
		s.bones[h].Rotation = q.Normalize()
	}
}

// RotateBone composes q with the current local rotation of the bone.
func (s *Skeleton) RotateBone(h Handle, q mgl64.Quat) {
	if s.BoneExists(h) {
		b := s.bones[h]
		b.Rotation = b.Rotation.Mul(q).Normalize()
	}
}

// ResetPose returns every bone to its rest pose.
func (s *Skeleton) ResetPose() {
	for _, b := range s.bones {
		b.Rotation = mgl64.QuatIdent()
	}
}

// IsAncestor reports whether ancestor is a strict ancestor of h.
func (s *Skeleton) IsAncestor(ancestor, h Handle) bool {
	for p, ok := s.Parent(h); ok; p, ok = s.Parent(p) {
		if p == ancestor {
			return true
		}
	}
	return false
}

// Walk calls f for every existing bone, parents before children.
func (s *Skeleton) Walk(f func(h Handle, b *Bone)) {
	for h, b := range s.bones {
		if b.Parent == InvalidHandle && !b.removed {
			s.walk(Handle(h), f)
		}
	}
}

func (s *Skeleton) walk(h Handle, f func(h Handle, b *Bone)) {
	b := s.bones[h]
	f(h, b)
	for _, c := range b.children {
		s.walk(c, f)
	}
}
