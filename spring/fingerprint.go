package spring

import (
	"encoding/binary"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/zeebo/xxh3"
)

// Fingerprint hashes the structure of the rig: spring, joint, group and collider identities and
// every parameter. Two rigs with equal fingerprints simulate identically.
func (r *Rig) Fingerprint() uint64 {
	buf := make([]byte, 0, 256)
	for _, name := range r.Groups.Keys() {
		g, _ := r.Groups.Get(name)
		buf = appendString(buf, g.Name)
		for _, c := range g.Colliders {
			buf = appendString(buf, c.Bone)
			buf = append(buf, byte(c.Shape))
			buf = appendVec(buf, c.Offset)
			buf = appendVec(buf, c.Tail)
			buf = appendFloat(buf, c.Radius)
		}
	}
	for _, s := range r.Springs {
		buf = appendString(buf, s.Name)
		for _, j := range s.Joints {
			buf = appendString(buf, j.Bone)
			buf = appendFloat(buf, j.GravityPower)
			buf = appendVec(buf, j.GravityDir)
			buf = appendFloat(buf, j.Stiffness)
			buf = appendFloat(buf, j.DragForce)
			buf = appendFloat(buf, j.HitRadius)
		}
		for _, g := range s.ColliderGroups {
			buf = appendString(buf, g)
		}
	}
	return xxh3.Hash(buf)
}

func appendString(buf []byte, s string) []byte {
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(s)))
	return append(buf, s...)
}

func appendFloat(buf []byte, f float64) []byte {
	return binary.LittleEndian.AppendUint64(buf, math.Float64bits(f))
}

func appendVec(buf []byte, v mgl64.Vec3) []byte {
	return appendFloat(appendFloat(appendFloat(buf, v[0]), v[1]), v[2])
}
