package simulation

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/oomph-ac/springbone/skeleton"
)

// Command is a rotation to compose with a bone's local rotation once the frame is committed.
type Command struct {
	Bone     skeleton.Handle
	Rotation mgl64.Quat
}

// PairResult captures the outcome of integrating a single joint pair.
type PairResult struct {
	// Tail is the new world position of the tail.
	Tail mgl64.Vec3
	// Inertia is the displacement carried over from the previous frame.
	Inertia    mgl64.Vec3
	RestLength float64
	// Collisions is the number of colliders that pushed the tail.
	Collisions int
	// Seeded is true if the tail state was initialized by this step.
	Seeded bool
}

// SpringResult captures the outcome of simulating a spring for one frame.
type SpringResult struct {
	Spring string
	// Commands hold one rotation per simulated pair, in chain order.
	Commands   []Command
	Pairs      int
	Skipped    int
	Collisions int
}
