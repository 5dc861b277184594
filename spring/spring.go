package spring

import (
	"math"

	"github.com/elliotchance/orderedmap/v2"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/oomph-ac/springbone/oerror"
	"github.com/oomph-ac/springbone/omath"
)

// DefaultGravityDir is the gravity direction used when a joint does not configure one.
var DefaultGravityDir = mgl64.Vec3{0, 0, -1}

// JointSettings are the physics parameters of a joint. They apply to the pair formed by the joint
// (as head) and the next joint of the spring (as tail).
type JointSettings struct {
	// GravityPower scales the gravity force.
	GravityPower float64
	// GravityDir is a unit vector giving the direction of gravity.
	GravityDir mgl64.Vec3
	// Stiffness in [0, 1] is the strength pulling the chain back towards its rest shape.
	Stiffness float64
	// DragForce in [0, 1] damps the motion carried over from the previous frame. 1 removes it.
	DragForce float64
	// HitRadius is the radius of the joint's tail when testing it against colliders.
	HitRadius float64
}

// DefaultJointSettings ...
func DefaultJointSettings() JointSettings {
	return JointSettings{
		GravityDir: DefaultGravityDir,
		Stiffness:  1,
		DragForce:  0.4,
	}
}

// Joint is one simulated point of a spring, bound to a bone.
type Joint struct {
	Bone string
	JointSettings
}

// Spring is an ordered chain of joints simulated together against a set of collider groups.
type Spring struct {
	Name   string
	Joints []Joint
	// ColliderGroups are names of groups in the rig, tested in this order.
	ColliderGroups []string
}

// Shape ...
type Shape uint8

const (
	ShapeSphere Shape = iota
	ShapeCapsule
)

func (s Shape) String() string {
	switch s {
	case ShapeSphere:
		return "sphere"
	case ShapeCapsule:
		return "capsule"
	}
	return "unknown"
}

// Collider is a sphere or capsule defined in the local space of a bone.
type Collider struct {
	Bone   string
	Shape  Shape
	Offset mgl64.Vec3
	Radius float64
	// Tail is the second end of a capsule. Ignored for spheres.
	Tail mgl64.Vec3
}

// ColliderGroup is a named, ordered set of colliders.
type ColliderGroup struct {
	Name      string
	Colliders []Collider
}

// Rig is the full spring configuration of one skeleton.
type Rig struct {
	Springs []Spring
	// Groups keeps collider groups by name in the order they were added.
	Groups *orderedmap.OrderedMap[string, *ColliderGroup]
}

// NewRig returns an empty rig.
func NewRig() *Rig {
	return &Rig{Groups: orderedmap.NewOrderedMap[string, *ColliderGroup]()}
}

// AddGroup adds a collider group, replacing any group with the same name in place.
func (r *Rig) AddGroup(g ColliderGroup) {
	r.Groups.Set(g.Name, &g)
}

// AddSpring appends a spring.
func (r *Rig) AddSpring(s Spring) {
	r.Springs = append(r.Springs, s)
}

// RemoveSpring removes the spring with the given name, returning false if there was none.
func (r *Rig) RemoveSpring(name string) bool {
	for i, s := range r.Springs {
		if s.Name == name {
			r.Springs = append(r.Springs[:i], r.Springs[i+1:]...)
			return true
		}
	}
	return false
}

// Validate checks the value ranges and references of the rig and normalizes gravity directions.
// Bone names are not checked here: bones missing from the skeleton are skipped at simulation time.
func (r *Rig) Validate() error {
	for _, name := range r.Groups.Keys() {
		g, _ := r.Groups.Get(name)
		for i, c := range g.Colliders {
			if c.Radius < 0 {
				return oerror.Config("collider group %q: collider %d has negative radius %v", name, i, c.Radius)
			}
			if c.Shape != ShapeSphere && c.Shape != ShapeCapsule {
				return oerror.Config("collider group %q: collider %d has unknown shape %d", name, i, c.Shape)
			}
		}
	}

	springNames := make(map[string]struct{}, len(r.Springs))
	jointOwners := make(map[string]string)
	for si := range r.Springs {
		s := &r.Springs[si]
		if _, ok := springNames[s.Name]; ok {
			return oerror.Config("duplicate spring name %q", s.Name)
		}
		springNames[s.Name] = struct{}{}

		if len(s.Joints) == 0 {
			return oerror.Config("spring %q has no joints", s.Name)
		}
		for _, g := range s.ColliderGroups {
			if _, ok := r.Groups.Get(g); !ok {
				return oerror.Config("spring %q references unknown collider group %q", s.Name, g)
			}
		}
		for ji := range s.Joints {
			j := &s.Joints[ji]
			if owner, ok := jointOwners[j.Bone]; ok {
				return oerror.Config("bone %q is a joint of both %q and %q", j.Bone, owner, s.Name)
			}
			jointOwners[j.Bone] = s.Name

			if err := j.JointSettings.validate(); err != nil {
				return oerror.Config("spring %q: joint %q: %v", s.Name, j.Bone, err)
			}
			if math.Abs(j.GravityDir.Len()-1) > omath.Epsilon {
				j.GravityDir = omath.SafeNormalize(j.GravityDir, DefaultGravityDir)
			}
		}
	}
	return nil
}

func (s JointSettings) validate() error {
	switch {
	case s.Stiffness < 0 || s.Stiffness > 1:
		return oerror.New("stiffness %v out of [0, 1]", s.Stiffness)
	case s.DragForce < 0 || s.DragForce > 1:
		return oerror.New("drag force %v out of [0, 1]", s.DragForce)
	case s.HitRadius < 0:
		return oerror.New("negative hit radius %v", s.HitRadius)
	case s.GravityPower < 0:
		return oerror.New("negative gravity power %v", s.GravityPower)
	}
	return nil
}
