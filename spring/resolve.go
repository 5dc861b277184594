package spring

import (
	"github.com/oomph-ac/springbone/skeleton"
)

// JointHandle indexes a joint in Resolved.Joints and in the joint state store.
type JointHandle int

// ResolvedJoint is a joint with its bone resolved to a handle.
type ResolvedJoint struct {
	Name string
	Bone skeleton.Handle
	JointSettings
}

// ResolvedCollider is a collider with its bone resolved to a handle.
type ResolvedCollider struct {
	Bone skeleton.Handle
	Collider
}

// ResolvedSpring refers to joints and colliders by index.
type ResolvedSpring struct {
	Name string
	// Joints are the spring's joints in chain order.
	Joints []JointHandle
	// Colliders is the union of the spring's collider groups, in group order then collider order.
	Colliders []int
}

// Resolved is a rig whose bone names were mapped to skeleton handles. Joints and colliders live in
// flat arenas so the per-frame path never looks anything up by name.
type Resolved struct {
	Joints    []ResolvedJoint
	Colliders []ResolvedCollider
	Springs   []ResolvedSpring
}

// BoneIndex resolves bone names to handles.
type BoneIndex interface {
	Handle(name string) (skeleton.Handle, bool)
}

// Resolve maps every bone name of the rig to a handle of the index passed. Names that cannot be
// found resolve to skeleton.InvalidHandle and are treated as missing bones by the simulation.
func (r *Rig) Resolve(index BoneIndex) *Resolved {
	res := &Resolved{}
	lookup := func(name string) skeleton.Handle {
		if h, ok := index.Handle(name); ok {
			return h
		}
		return skeleton.InvalidHandle
	}

	groupColliders := make(map[string][]int, r.Groups.Len())
	for _, name := range r.Groups.Keys() {
		g, _ := r.Groups.Get(name)
		indices := make([]int, 0, len(g.Colliders))
		for _, c := range g.Colliders {
			indices = append(indices, len(res.Colliders))
			res.Colliders = append(res.Colliders, ResolvedCollider{Bone: lookup(c.Bone), Collider: c})
		}
		groupColliders[name] = indices
	}

	for _, s := range r.Springs {
		rs := ResolvedSpring{Name: s.Name, Joints: make([]JointHandle, 0, len(s.Joints))}
		for _, j := range s.Joints {
			rs.Joints = append(rs.Joints, JointHandle(len(res.Joints)))
			res.Joints = append(res.Joints, ResolvedJoint{Name: j.Bone, Bone: lookup(j.Bone), JointSettings: j.JointSettings})
		}
		for _, g := range s.ColliderGroups {
			rs.Colliders = append(rs.Colliders, groupColliders[g]...)
		}
		res.Springs = append(res.Springs, rs)
	}
	return res
}

// Spring returns the resolved spring with the given name.
func (r *Resolved) Spring(name string) (ResolvedSpring, bool) {
	for _, s := range r.Springs {
		if s.Name == name {
			return s, true
		}
	}
	return ResolvedSpring{}, false
}
