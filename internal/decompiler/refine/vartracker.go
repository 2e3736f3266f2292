// Package refine turns the raw tree internal/decompiler recovers
// opcode-by-opcode into readable source: collapsing the goto/label
// pairs that encode while/for loops and match-break jumps back into
// structured statements, pruning labels nothing jumps to anymore, and
// working out which frame slots need an explicit `let` declaration
// versus which are adequately introduced by their first assignment.
package refine

import "fmt"

// VarMetaData tracks what is known about one frame slot across a
// function body: whether it was ever assigned to before being read,
// reassigned after that, read at all, indexed (used as an array), and
// - once FindEmptyArrayInits or CollapseStaticArrayInits has run -
// how many contiguous slots make up its array, if any.
type VarMetaData struct {
	Initialized  bool
	Reassigned   bool
	Used         bool
	Indexed      bool
	Parameter    bool
	ArrayLength  *int
	StaticArray  bool
}

// VarTracker is one function's (or the script's global frame's) full
// set of per-slot metadata, sized up front to the frame's slot count.
type VarTracker struct {
	meta []VarMetaData
}

// NewVarTracker allocates a tracker for a frame of the given size.
func NewVarTracker(frameSize int) *VarTracker {
	return &VarTracker{meta: make([]VarMetaData, frameSize)}
}

func (t *VarTracker) at(id int) (*VarMetaData, error) {
	if id < 0 || id >= len(t.meta) {
		return nil, fmt.Errorf("refine: frame id %d out of range (size %d)", id, len(t.meta))
	}
	return &t.meta[id], nil
}

func (t *VarTracker) MarkInitialized(id int) error {
	m, err := t.at(id)
	if err != nil {
		return err
	}
	m.Initialized = true
	return nil
}

func (t *VarTracker) MarkReassigned(id int) error {
	m, err := t.at(id)
	if err != nil {
		return err
	}
	m.Reassigned = true
	return nil
}

func (t *VarTracker) MarkUsed(id int) error {
	m, err := t.at(id)
	if err != nil {
		return err
	}
	m.Used = true
	return nil
}

func (t *VarTracker) MarkIndexed(id int) error {
	m, err := t.at(id)
	if err != nil {
		return err
	}
	m.Indexed = true
	return nil
}

func (t *VarTracker) MarkParameter(id int) error {
	m, err := t.at(id)
	if err != nil {
		return err
	}
	m.Parameter = true
	return nil
}

func (t *VarTracker) MarkStaticArray(id int) error {
	m, err := t.at(id)
	if err != nil {
		return err
	}
	m.StaticArray = true
	return nil
}

func (t *VarTracker) SetArrayLength(id, length int) error {
	m, err := t.at(id)
	if err != nil {
		return err
	}
	m.ArrayLength = &length
	return nil
}

func (t *VarTracker) IsInitialized(id int) (bool, error) {
	m, err := t.at(id)
	if err != nil {
		return false, err
	}
	return m.Initialized, nil
}

func (t *VarTracker) IsReassigned(id int) (bool, error) {
	m, err := t.at(id)
	if err != nil {
		return false, err
	}
	return m.Reassigned, nil
}

func (t *VarTracker) IsUsed(id int) (bool, error) {
	m, err := t.at(id)
	if err != nil {
		return false, err
	}
	return m.Used, nil
}

func (t *VarTracker) IsIndexed(id int) (bool, error) {
	m, err := t.at(id)
	if err != nil {
		return false, err
	}
	return m.Indexed, nil
}

// FindEmptyArrayInits scans for runs of slots that look like a
// zero-initialized array the binary never explicitly assigns: a slot
// that was indexed but never (yet) marked initialized starts a run,
// which extends through any immediately following slots that are
// untouched entirely (neither initialized nor used), recording the
// run's length as that base slot's array length and marking every
// slot in the run used so later passes don't re-flag them.
func (t *VarTracker) FindEmptyArrayInits() {
	i := 0
	for i < len(t.meta) {
		m := &t.meta[i]
		if m.Parameter || m.Initialized || !m.Indexed {
			i++
			continue
		}
		length := 1
		m.Used = true
		j := i + 1
		for j < len(t.meta) {
			next := &t.meta[j]
			if next.Parameter || next.Initialized || next.Used {
				break
			}
			next.Used = true
			length++
			j++
		}
		ln := length
		t.meta[i].ArrayLength = &ln
		i = j
	}
}

// DeclarationRequest is one frame slot (or contiguous run of slots)
// that needs an explicit `let` statement emitted ahead of the body.
type DeclarationRequest interface{ isDeclarationRequest() }

type ArrayDeclarationRequest struct {
	Base   int
	Length int
}
type VarDeclarationRequest struct{ Index int }

func (ArrayDeclarationRequest) isDeclarationRequest() {}
func (VarDeclarationRequest) isDeclarationRequest()   {}

// BuildDeclarationRequests walks every non-parameter slot in frame
// order. Array slots always need a request unless they are a static
// array (collapsed from a literal element-by-element assignment,
// which already self-declares) and includeStaticArrays is false. Plain
// slots that were never naturally introduced by an assignment still
// need a bare `let v;` to reserve the frame space.
func (t *VarTracker) BuildDeclarationRequests(includeStaticArrays bool) []DeclarationRequest {
	var reqs []DeclarationRequest
	for i := range t.meta {
		m := &t.meta[i]
		if m.Parameter {
			continue
		}
		if m.ArrayLength != nil {
			if m.StaticArray && !includeStaticArrays {
				continue
			}
			reqs = append(reqs, ArrayDeclarationRequest{Base: i, Length: *m.ArrayLength})
			continue
		}
		if !m.Initialized {
			reqs = append(reqs, VarDeclarationRequest{Index: i})
		}
	}
	return reqs
}
