package scheduler

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/oomph-ac/springbone/assert"
	"github.com/oomph-ac/springbone/simulation"
	"github.com/oomph-ac/springbone/skeleton"
)

// Target receives the rotations of the commit phase.
type Target interface {
	RotateBone(h skeleton.Handle, q mgl64.Quat)
}

type batch struct {
	target   Target
	commands []simulation.Command
}

// CommandBuffer collects the rotations computed for each spring of a tick and applies them once
// every spring has been computed. Each spring owns one slot, so slots may be filled concurrently.
type CommandBuffer struct {
	batches []batch
	sealed  bool
}

// NewCommandBuffer returns a buffer with n empty slots.
func NewCommandBuffer(n int) *CommandBuffer {
	return &CommandBuffer{batches: make([]batch, n)}
}

// Put fills slot i. It must not be called once the buffer is sealed.
func (b *CommandBuffer) Put(i int, target Target, commands []simulation.Command) {
	assert.IsTrue(!b.sealed, "command buffer slot %d filled after compute finished", i)
	b.batches[i] = batch{target: target, commands: commands}
}

// Seal marks the end of the compute phase.
func (b *CommandBuffer) Seal() {
	b.sealed = true
}

// Len returns the number of commands held.
func (b *CommandBuffer) Len() (n int) {
	for _, bt := range b.batches {
		n += len(bt.commands)
	}
	return n
}

// Commit applies every command in slot order, then chain order, and returns how many were
// applied. The buffer must be sealed.
func (b *CommandBuffer) Commit() int {
	assert.IsTrue(b.sealed, "command buffer committed before compute finished")
	n := 0
	for _, bt := range b.batches {
		for _, cmd := range bt.commands {
			bt.target.RotateBone(cmd.Bone, cmd.Rotation)
			n++
		}
	}
	clear(b.batches)
	return n
}
