package settings

import (
	"fmt"
	"os"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/oomph-ac/springbone/oerror"
	"github.com/oomph-ac/springbone/omath"
	"github.com/oomph-ac/springbone/skeleton"
	"github.com/oomph-ac/springbone/spring"
	"github.com/pelletier/go-toml"
)

// RigFile is the TOML layout of a skeleton together with its springs. Bones must be listed after
// their parent. Vectors are [x, y, z] and rotations are quaternions written [w, x, y, z]. Numbers
// must be written as floats.
type RigFile struct {
	Bones          []BoneEntry   `toml:"bone"`
	ColliderGroups []GroupEntry  `toml:"collider_group"`
	Springs        []SpringEntry `toml:"spring"`
}

// BoneEntry ...
type BoneEntry struct {
	Name        string    `toml:"name"`
	Parent      string    `toml:"parent,omitempty"`
	Translation []float64 `toml:"translation,omitempty"`
	Rotation    []float64 `toml:"rotation,omitempty"`
	Scale       float64   `toml:"scale" default:"1"`
}

// ColliderEntry ...
type ColliderEntry struct {
	Bone   string    `toml:"bone"`
	Shape  string    `toml:"shape" default:"sphere"`
	Offset []float64 `toml:"offset,omitempty"`
	Tail   []float64 `toml:"tail,omitempty"`
	Radius float64   `toml:"radius"`
}

// GroupEntry ...
type GroupEntry struct {
	Name      string          `toml:"name"`
	Colliders []ColliderEntry `toml:"collider"`
}

// JointEntry ...
type JointEntry struct {
	Bone         string    `toml:"bone"`
	GravityPower float64   `toml:"gravity_power"`
	GravityDir   []float64 `toml:"gravity_dir,omitempty"`
	Stiffness    float64   `toml:"stiffness" default:"1"`
	DragForce    float64   `toml:"drag_force" default:"0.4"`
	HitRadius    float64   `toml:"hit_radius"`
}

// SpringEntry ...
type SpringEntry struct {
	Name           string       `toml:"name"`
	ColliderGroups []string     `toml:"collider_groups,omitempty"`
	Joints         []JointEntry `toml:"joint"`
}

// LoadRig reads a rig file.
func LoadRig(path string) (*skeleton.Skeleton, *spring.Rig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("error reading rig: %w", err)
	}
	return DecodeRig(data)
}

// DecodeRig builds a skeleton and a validated rig from TOML data.
func DecodeRig(data []byte) (*skeleton.Skeleton, *spring.Rig, error) {
	var file RigFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, nil, fmt.Errorf("error decoding rig: %w", err)
	}

	sk := skeleton.New()
	for _, b := range file.Bones {
		translation, err := vec(b.Translation, mgl64.Vec3{})
		if err != nil {
			return nil, nil, fmt.Errorf("bone %q: translation: %w", b.Name, err)
		}
		rotation, err := quat(b.Rotation)
		if err != nil {
			return nil, nil, fmt.Errorf("bone %q: rotation: %w", b.Name, err)
		}
		if _, err := sk.AddBone(b.Name, b.Parent, omath.NewTransform(translation, rotation, b.Scale)); err != nil {
			return nil, nil, err
		}
	}

	rig := spring.NewRig()
	for _, g := range file.ColliderGroups {
		if _, ok := rig.Groups.Get(g.Name); ok {
			return nil, nil, oerror.Config("duplicate collider group %q", g.Name)
		}
		group := spring.ColliderGroup{Name: g.Name}
		for i, c := range g.Colliders {
			col, err := c.collider()
			if err != nil {
				return nil, nil, fmt.Errorf("collider group %q: collider %d: %w", g.Name, i, err)
			}
			group.Colliders = append(group.Colliders, col)
		}
		rig.AddGroup(group)
	}
	for _, s := range file.Springs {
		sp := spring.Spring{Name: s.Name, ColliderGroups: s.ColliderGroups}
		for _, j := range s.Joints {
			dir, err := vec(j.GravityDir, spring.DefaultGravityDir)
			if err != nil {
				return nil, nil, fmt.Errorf("spring %q: joint %q: gravity direction: %w", s.Name, j.Bone, err)
			}
			sp.Joints = append(sp.Joints, spring.Joint{Bone: j.Bone, JointSettings: spring.JointSettings{
				GravityPower: j.GravityPower,
				GravityDir:   dir,
				Stiffness:    j.Stiffness,
				DragForce:    j.DragForce,
				HitRadius:    j.HitRadius,
			}})
		}
		rig.AddSpring(sp)
	}
	if err := rig.Validate(); err != nil {
		return nil, nil, err
	}
	return sk, rig, nil
}

// EncodeRig writes a skeleton and its rig in the layout DecodeRig reads.
func EncodeRig(sk *skeleton.Skeleton, rig *spring.Rig) ([]byte, error) {
	var file RigFile
	sk.Walk(func(_ skeleton.Handle, b *skeleton.Bone) {
		entry := BoneEntry{
			Name:        b.Name,
			Translation: b.Rest.Translation[:],
			Rotation:    []float64{b.Rest.Rotation.W, b.Rest.Rotation.V[0], b.Rest.Rotation.V[1], b.Rest.Rotation.V[2]},
			Scale:       b.Rest.Scale,
		}
		if parent := sk.Bone(b.Parent); parent != nil {
			entry.Parent = parent.Name
		}
		file.Bones = append(file.Bones, entry)
	})
	for _, name := range rig.Groups.Keys() {
		g, _ := rig.Groups.Get(name)
		entry := GroupEntry{Name: g.Name}
		for _, c := range g.Colliders {
			col := ColliderEntry{Bone: c.Bone, Shape: c.Shape.String(), Offset: c.Offset[:], Radius: c.Radius}
			if c.Shape == spring.ShapeCapsule {
				col.Tail = c.Tail[:]
			}
			entry.Colliders = append(entry.Colliders, col)
		}
		file.ColliderGroups = append(file.ColliderGroups, entry)
	}
	for _, s := range rig.Springs {
		entry := SpringEntry{Name: s.Name, ColliderGroups: s.ColliderGroups}
		for _, j := range s.Joints {
			entry.Joints = append(entry.Joints, JointEntry{
				Bone:         j.Bone,
				GravityPower: j.GravityPower,
				GravityDir:   j.GravityDir[:],
				Stiffness:    j.Stiffness,
				DragForce:    j.DragForce,
				HitRadius:    j.HitRadius,
			})
		}
		file.Springs = append(file.Springs, entry)
	}

	data, err := toml.Marshal(file)
	if err != nil {
		return nil, fmt.Errorf("failed encoding rig: %w", err)
	}
	return data, nil
}

func (c ColliderEntry) collider() (spring.Collider, error) {
	col := spring.Collider{Bone: c.Bone, Radius: c.Radius}
	switch c.Shape {
	case "", spring.ShapeSphere.String():
		col.Shape = spring.ShapeSphere
	case spring.ShapeCapsule.String():
		col.Shape = spring.ShapeCapsule
	default:
		return col, oerror.Config("unknown shape %q", c.Shape)
	}
	var err error
	if col.Offset, err = vec(c.Offset, mgl64.Vec3{}); err != nil {
		return col, err
	}
	tail := mgl64.Vec3{}
	if col.Shape == spring.ShapeCapsule {
		tail = col.Offset
	}
	if col.Tail, err = vec(c.Tail, tail); err != nil {
		return col, err
	}
	return col, nil
}

// vec converts a TOML array into a vector, returning def for an empty array.
func vec(v []float64, def mgl64.Vec3) (mgl64.Vec3, error) {
	switch len(v) {
	case 0:
		return def, nil
	case 3:
		return mgl64.Vec3{v[0], v[1], v[2]}, nil
	}
	return mgl64.Vec3{}, oerror.Config("expected 3 components, got %d", len(v))
}

func quat(v []float64) (mgl64.Quat, error) {
	switch len(v) {
	case 0:
		return mgl64.QuatIdent(), nil
	case 4:
		q := mgl64.Quat{W: v[0], V: mgl64.Vec3{v[1], v[2], v[3]}}
		if q.Len() < omath.Epsilon {
			return mgl64.Quat{}, oerror.Config("zero rotation")
		}
		return q.Normalize(), nil
	}
	return mgl64.Quat{}, oerror.Config("expected 4 components, got %d", len(v))
}
