package skeleton

import (
	"encoding/binary"

	"github.com/zeebo/xxh3"
)

// Fingerprint hashes the bone hierarchy: names, parents and handles of every existing bone. Poses
// and rest transforms do not contribute, so animating the skeleton never changes it.
func (s *Skeleton) Fingerprint() uint64 {
	h := xxh3.New()
	var buf [8]byte
	s.Walk(func(handle Handle, b *Bone) {
		binary.LittleEndian.PutUint32(buf[:4], uint32(handle))
		binary.LittleEndian.PutUint32(buf[4:], uint32(b.Parent))
		_, _ = h.Write(buf[:])
		_, _ = h.Write([]byte(b.Name))
	})
	return h.Sum64()
}
