package state

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/oomph-ac/springbone/spring"
)

func TestSeedIsLazy(t *testing.T) {
	s := NewStore(2)
	st := s.Get(1)
	if st.Initialized {
		t.Fatalf("new state must start uninitialized")
	}

	p := mgl64.Vec3{1, 2, 3}
	if !st.Seed(p) {
		t.Fatalf("expected first seed to apply")
	}
	if st.Previous != p || st.Current != p {
		t.Fatalf("seed must set both positions, got %+v", st)
	}
	if st.Seed(mgl64.Vec3{9, 9, 9}) {
		t.Fatalf("second seed must be ignored")
	}

	st.Advance(mgl64.Vec3{1, 2, 4})
	if st.Previous != p || st.Current != (mgl64.Vec3{1, 2, 4}) {
		t.Fatalf("advance must shift positions, got %+v", st)
	}

	s.Reset(1)
	if s.Get(1).Initialized {
		t.Fatalf("reset must clear the state")
	}
}

func TestGetOutOfRangePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected a panic")
		}
	}()
	NewStore(1).Get(3)
}

func TestRebindKeepsStateByJointName(t *testing.T) {
	oldRig := &spring.Resolved{Joints: []spring.ResolvedJoint{{Name: "a"}, {Name: "b"}, {Name: "c"}}}
	newRig := &spring.Resolved{Joints: []spring.ResolvedJoint{{Name: "c"}, {Name: "x"}, {Name: "a"}}}

	old := NewStore(3)
	old.Get(0).Seed(mgl64.Vec3{1, 0, 0})
	old.Get(2).Seed(mgl64.Vec3{3, 0, 0})

	s := Rebind(old, oldRig, newRig)
	if s.Len() != 3 {
		t.Fatalf("expected 3 states, got %d", s.Len())
	}
	if st := s.Get(0); !st.Initialized || st.Current != (mgl64.Vec3{3, 0, 0}) {
		t.Fatalf("state of c was not carried over: %+v", st)
	}
	if s.Get(1).Initialized {
		t.Fatalf("new joint must start uninitialized")
	}
	if st := s.Get(2); st.Current != (mgl64.Vec3{1, 0, 0}) {
		t.Fatalf("state of a was not carried over: %+v", st)
	}

	old.ResetAll()
	if old.Get(0).Initialized {
		t.Fatalf("reset all must clear every state")
	}
}
