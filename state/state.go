package state

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/oomph-ac/springbone/assert"
	"github.com/oomph-ac/springbone/spring"
)

// JointState is the persistent simulation state of a joint when it acts as the tail of a pair.
// Velocity is never stored: it is implied by the two positions.
type JointState struct {
	Previous    mgl64.Vec3
	Current     mgl64.Vec3
	Initialized bool
}

// Seed initializes the state at position p with no velocity, if it is not initialized yet. It
// returns true if the state was seeded.
func (s *JointState) Seed(p mgl64.Vec3) bool {
	if s.Initialized {
		return false
	}
	s.Previous, s.Current, s.Initialized = p, p, true
	return true
}

// Advance records the position for the new frame, shifting the current position into the
// previous slot.
func (s *JointState) Advance(p mgl64.Vec3) {
	s.Previous, s.Current = s.Current, p
}

// Store owns the states of every joint of a resolved rig, indexed by joint handle. Each slot is
// only ever written by the spring that owns the joint, so distinct springs may be simulated in
// parallel without locking.
type Store struct {
	states []JointState
}

// NewStore returns a store holding an uninitialized state for each of n joints.
func NewStore(n int) *Store {
	return &Store{states: make([]JointState, n)}
}

// Len ...
func (s *Store) Len() int {
	return len(s.states)
}

// Get returns the state of the joint passed. The pointer stays valid for the lifetime of the store.
func (s *Store) Get(h spring.JointHandle) *JointState {
	assert.IsTrue(int(h) >= 0 && int(h) < len(s.states), "joint handle %d out of range [0, %d)", h, len(s.states))
	return &s.states[h]
}

// Reset marks the state of the joint as uninitialized, so it is seeded again on its next update.
func (s *Store) Reset(h spring.JointHandle) {
	*s.Get(h) = JointState{}
}

// ResetAll resets every joint.
func (s *Store) ResetAll() {
	clear(s.states)
}

// Rebind builds a store for a newly resolved rig, carrying over the state of every joint whose
// name also exists in the previous rig. Joints that were removed are dropped with their state.
func Rebind(old *Store, oldRig, newRig *spring.Resolved) *Store {
	s := NewStore(len(newRig.Joints))
	if old == nil || oldRig == nil {
		return s
	}
	previous := make(map[string]spring.JointHandle, len(oldRig.Joints))
	for i, j := range oldRig.Joints {
		previous[j.Name] = spring.JointHandle(i)
	}
	for i, j := range newRig.Joints {
		if h, ok := previous[j.Name]; ok && int(h) < old.Len() {
			s.states[i] = old.states[h]
		}
	}
	return s
}
