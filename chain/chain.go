package chain

import (
	"github.com/oomph-ac/springbone/oerror"
	"github.com/oomph-ac/springbone/skeleton"
)

// Hierarchy exposes the parent relation of a skeleton.
type Hierarchy interface {
	BoneExists(h skeleton.Handle) bool
	Parent(h skeleton.Handle) (skeleton.Handle, bool)
}

// Link is one joint of a chain being validated.
type Link struct {
	Name string
	Bone skeleton.Handle
}

// Validate checks that every link's bone is a strict descendant of the previous link's bone, and
// that the walk between the two does not cross another link of the same chain. Pairs with a
// missing bone are skipped. The first broken pair is returned as an *oerror.ChainError.
func Validate(h Hierarchy, spring string, links []Link) error {
	members := make(map[skeleton.Handle]string, len(links))
	for _, l := range links {
		if h.BoneExists(l.Bone) {
			members[l.Bone] = l.Name
		}
	}

	for i := 0; i+1 < len(links); i++ {
		head, tail := links[i], links[i+1]
		if !h.BoneExists(head.Bone) || !h.BoneExists(tail.Bone) {
			continue
		}
		if err := validatePair(h, spring, head, tail, members); err != nil {
			return err
		}
	}
	return nil
}

func validatePair(h Hierarchy, spring string, head, tail Link, members map[skeleton.Handle]string) error {
	for p, ok := h.Parent(tail.Bone); ok; p, ok = h.Parent(p) {
		if p == head.Bone {
			return nil
		}
		if name, member := members[p]; member {
			return &oerror.ChainError{Spring: spring, Head: head.Name, Tail: tail.Name, Through: name}
		}
	}
	return &oerror.ChainError{Spring: spring, Head: head.Name, Tail: tail.Name}
}
