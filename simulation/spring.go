package simulation

import (
	"github.com/oomph-ac/springbone/chain"
	"github.com/oomph-ac/springbone/collider"
	"github.com/oomph-ac/springbone/omath"
	"github.com/oomph-ac/springbone/skeleton"
	"github.com/oomph-ac/springbone/spring"
	"github.com/oomph-ac/springbone/state"
)

// Spring simulates one spring for a frame. It reads the skeleton, writes only the states of the
// spring's own joints and returns the rotations to commit; it never touches the pose. If the
// joints do not form a bone chain, no state is touched and the error is returned.
func (s Simulator) Spring(p SkeletonProvider, r *spring.Resolved, sp spring.ResolvedSpring, states *state.Store, deltaTime float64) (SpringResult, error) {
	res := SpringResult{Spring: sp.Name}

	links := make([]chain.Link, len(sp.Joints))
	for i, jh := range sp.Joints {
		links[i] = chain.Link{Name: r.Joints[jh].Name, Bone: r.Joints[jh].Bone}
	}
	if err := chain.Validate(p, sp.Name, links); err != nil {
		return res, err
	}
	if len(sp.Joints) < 2 {
		return res, nil
	}

	colliders := collider.ResolveSpring(p, r, sp)
	object := p.ObjectTransform()

	// The last head rotated in this chain. Every later head below it inherits its rotation, even
	// across pairs skipped for a missing bone.
	var (
		last             skeleton.Handle = skeleton.InvalidHandle
		lastPre, lastNew omath.Transform
	)
	for i := 0; i+1 < len(sp.Joints); i++ {
		head, tail := r.Joints[sp.Joints[i]], r.Joints[sp.Joints[i+1]]
		if !p.BoneExists(head.Bone) || !p.BoneExists(tail.Bone) {
			s.debugf("spring %s: skipping pair %s -> %s with a missing bone", sp.Name, head.Name, tail.Name)
			res.Skipped++
			continue
		}

		headPre := object.Mul(p.PoseTransform(head.Bone))
		tailPre := object.Mul(p.PoseTransform(tail.Bone))
		headNext := headPre
		if last != skeleton.InvalidHandle && descends(p, head.Bone, last) {
			headNext = carry(lastPre, lastNew, headPre)
		}

		pair := Integrate(Pair{
			DeltaTime:     deltaTime,
			HeadPre:       headPre,
			HeadNext:      headNext,
			TailPre:       tailPre,
			RestDirection: RestDirection(object, p.RestTransform(head.Bone), p.RestTransform(tail.Bone)),
			Settings:      head.JointSettings,
			State:         states.Get(sp.Joints[i+1]),
			Colliders:     colliders,
		})
		rotation, headNew := Synthesize(headPre, headNext, tailPre.Translation, pair.Tail)
		s.debugf("spring %s: %s -> %s seeded=%v inertia=%v tail=%v collisions=%d",
			sp.Name, head.Name, tail.Name, pair.Seeded, pair.Inertia, pair.Tail, pair.Collisions)

		res.Commands = append(res.Commands, Command{Bone: head.Bone, Rotation: rotation})
		res.Pairs++
		res.Collisions += pair.Collisions

		last, lastPre, lastNew = head.Bone, headPre, headNew
	}
	return res, nil
}

// descends checks if h is a strict descendant of ancestor.
func descends(p SkeletonProvider, h, ancestor skeleton.Handle) bool {
	for {
		parent, ok := p.Parent(h)
		if !ok {
			return false
		}
		if parent == ancestor {
			return true
		}
		h = parent
	}
}
