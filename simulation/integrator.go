package simulation

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/oomph-ac/springbone/collider"
	"github.com/oomph-ac/springbone/omath"
	"github.com/oomph-ac/springbone/spring"
	"github.com/oomph-ac/springbone/state"
)

// Pair is the input of a single joint pair step. All transforms and positions are in world space.
type Pair struct {
	DeltaTime float64

	// HeadPre is the head bone's transform before this frame.
	HeadPre omath.Transform
	// HeadNext is the head bone's transform for this frame before its own rotation is applied. It
	// already includes the rotations computed for the joints above it in the chain.
	HeadNext omath.Transform
	// TailPre is the tail bone's transform before this frame.
	TailPre omath.Transform

	// RestDirection is the unit direction from head to tail in the rest pose.
	RestDirection mgl64.Vec3

	// Settings are the settings of the head joint.
	Settings spring.JointSettings
	// State is the state of the tail joint. It is the only thing Integrate writes to.
	State *state.JointState

	// Colliders are the spring's colliders, tested in order.
	Colliders collider.Set
}

// RestDirection returns the world-space direction from the head to the tail in the rest pose,
// given the object transform and the object-space rest transforms of both bones.
func RestDirection(object, headRest, tailRest omath.Transform) mgl64.Vec3 {
	offset := tailRest.Translation.Sub(headRest.Translation)
	return omath.SafeNormalize(object.ApplyDirection(offset), omath.DegenerateNormal)
}

// Integrate advances the tail of a joint pair by one frame and records its new position in the
// tail state. The tail keeps the segment length it had before the frame, measured from the
// head's new position.
func Integrate(p Pair) PairResult {
	st := p.State
	tailPre := p.TailPre.Translation
	seeded := st.Seed(tailPre)

	inertia := st.Current.Sub(st.Previous).Mul(1 - p.Settings.DragForce)
	stiffness := p.RestDirection.Mul(p.DeltaTime * p.Settings.Stiffness)
	external := p.Settings.GravityDir.Mul(p.Settings.GravityPower * p.DeltaTime)
	candidate := st.Current.Add(inertia).Add(stiffness).Add(external)

	head := p.HeadNext.Translation
	restLength := p.HeadPre.Translation.Sub(tailPre).Len()
	candidate = constrain(head, candidate, restLength)

	// One pass in configured order. A push out of one collider may leave the tail inside an
	// earlier one. A tail outside the set's bounds touches none of them.
	collisions := 0
	if !p.Colliders.MayCollide(candidate, p.Settings.HitRadius) {
		st.Advance(candidate)
		return PairResult{Tail: candidate, Inertia: inertia, RestLength: restLength, Seeded: seeded}
	}
	for _, c := range p.Colliders.Worlds {
		pushed, hit := c.Push(candidate, p.Settings.HitRadius)
		if !hit {
			continue
		}
		collisions++
		candidate = constrain(head, pushed, restLength)
	}

	st.Advance(candidate)
	return PairResult{
		Tail:       candidate,
		Inertia:    inertia,
		RestLength: restLength,
		Collisions: collisions,
		Seeded:     seeded,
	}
}

// constrain places p at distance length from head, keeping its direction.
func constrain(head, p mgl64.Vec3, length float64) mgl64.Vec3 {
	return head.Add(omath.SafeNormalize(p.Sub(head), omath.DegenerateNormal).Mul(length))
}
