package oerror

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidChain is matched by errors reporting a spring whose joints do not form a bone chain.
	ErrInvalidChain = errors.New("joints do not form an ancestor chain")
	// ErrMissingBone is matched by errors reporting a reference to a bone that does not exist.
	ErrMissingBone = errors.New("bone does not exist")
	// ErrInvalidConfig is matched by errors reporting configuration values out of range.
	ErrInvalidConfig = errors.New("invalid configuration")
)

type SpringError struct {
	Err string
}

// New returns an error formatted with the given arguments.
func New(format string, args ...any) *SpringError {
	return &SpringError{Err: fmt.Sprintf(format, args...)}
}

func (e *SpringError) Error() string {
	return e.Err
}

// ChainError is returned when a tail joint's bone is not a descendant of its head joint's bone.
type ChainError struct {
	Spring string
	Head   string
	Tail   string
	// Through is set when the walk from tail to head crossed another joint of the same spring.
	Through string
}

func (e *ChainError) Error() string {
	if e.Through != "" {
		return fmt.Sprintf("spring %q: %q reaches %q through joint %q", e.Spring, e.Tail, e.Head, e.Through)
	}
	return fmt.Sprintf("spring %q: %q is not a descendant of %q", e.Spring, e.Tail, e.Head)
}

func (e *ChainError) Is(target error) bool {
	return target == ErrInvalidChain
}

// MissingBoneError is returned when a configured bone cannot be found.
type MissingBoneError struct {
	Bone string
}

func (e *MissingBoneError) Error() string {
	return fmt.Sprintf("bone %q does not exist", e.Bone)
}

func (e *MissingBoneError) Is(target error) bool {
	return target == ErrMissingBone
}

// Config returns an error matching ErrInvalidConfig.
func Config(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
}
