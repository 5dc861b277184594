package chain

import (
	"errors"
	"testing"

	"github.com/oomph-ac/springbone/oerror"
	"github.com/oomph-ac/springbone/omath"
	"github.com/oomph-ac/springbone/skeleton"
)

// newTree builds root -> a -> b -> c and root -> d.
func newTree(t *testing.T) *skeleton.Skeleton {
	sk := skeleton.New()
	for _, b := range [][2]string{{"root", ""}, {"a", "root"}, {"b", "a"}, {"c", "b"}, {"d", "root"}} {
		if _, err := sk.AddBone(b[0], b[1], omath.IdentityTransform()); err != nil {
			t.Fatalf("add bone %s: %v", b[0], err)
		}
	}
	return sk
}

func links(sk *skeleton.Skeleton, names ...string) []Link {
	ls := make([]Link, 0, len(names))
	for _, n := range names {
		h, ok := sk.Handle(n)
		if !ok {
			h = skeleton.InvalidHandle
		}
		ls = append(ls, Link{Name: n, Bone: h})
	}
	return ls
}

func TestValidateChain(t *testing.T) {
	sk := newTree(t)

	if err := Validate(sk, "ok", links(sk, "a", "b", "c")); err != nil {
		t.Fatalf("expected valid chain, got %v", err)
	}
	// Descendants do not have to be direct children.
	if err := Validate(sk, "skip", links(sk, "a", "c")); err != nil {
		t.Fatalf("expected valid chain with a gap, got %v", err)
	}
	// A single joint is always valid.
	if err := Validate(sk, "single", links(sk, "d")); err != nil {
		t.Fatalf("expected valid single joint, got %v", err)
	}
}

func TestValidateRejectsSibling(t *testing.T) {
	sk := newTree(t)

	err := Validate(sk, "bad", links(sk, "a", "b", "d"))
	if !errors.Is(err, oerror.ErrInvalidChain) {
		t.Fatalf("expected chain error, got %v", err)
	}
	var chainErr *oerror.ChainError
	if !errors.As(err, &chainErr) || chainErr.Head != "b" || chainErr.Tail != "d" {
		t.Fatalf("unexpected error details %v", err)
	}

	// Reversed order is not a descendant relation either.
	if err := Validate(sk, "reversed", links(sk, "b", "a")); err == nil {
		t.Fatalf("expected reversed chain to fail")
	}
}

func TestValidateRejectsCrossingJoint(t *testing.T) {
	sk := newTree(t)

	err := Validate(sk, "crossing", links(sk, "a", "c", "b"))
	var chainErr *oerror.ChainError
	if !errors.As(err, &chainErr) {
		t.Fatalf("expected chain error, got %v", err)
	}
	if chainErr.Through != "b" {
		t.Fatalf("expected the walk to cross b, got %+v", chainErr)
	}
}

func TestValidateSkipsMissingBones(t *testing.T) {
	sk := newTree(t)

	if err := Validate(sk, "missing", links(sk, "a", "ghost", "c")); err != nil {
		t.Fatalf("pairs with missing bones must be skipped, got %v", err)
	}
	sk.RemoveBone("c")
	if err := Validate(sk, "removed", links(sk, "a", "b")); err != nil {
		t.Fatalf("expected valid chain after unrelated removal, got %v", err)
	}
}
