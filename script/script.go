package script

import (
	"fmt"
	"sync/atomic"
)

// Script is a computed edit script transforming an old sequence of length OldLen into a new
// sequence of length NewLen.
//
// The operations are ordered as follows: structural operations (Insert and Remove) and Change
// operations in ascending old index order, followed by all Move operations. Insert, Remove and
// Change positions refer to old indices. Move positions refer to the sequence after all
// structural operations and all preceding moves have been applied.
//
// A Script is immutable except for the handover of its operations with Take, which may happen
// only once.
type Script struct {
	ops    []*Op
	oldLen int
	newLen int

	// offset[a] is the number of items inserted minus the number removed before old index a.
	offset []int
	// current[i] is the index of old item i once all structural operations are applied, -1 if the
	// item is removed.
	current []int
	// final[i] is the index of old item i in the new sequence, -1 if the item is removed.
	final []int

	count int
	moves int
	taken atomic.Bool
}

// OldLen returns the length of the sequence the script applies to.
func (s *Script) OldLen() int { return s.oldLen }

// NewLen returns the length of the sequence the script produces.
func (s *Script) NewLen() int { return s.newLen }

// Len returns the number of operations in the script.
func (s *Script) Len() int { return s.count }

// Moves returns the number of move operations in the script.
func (s *Script) Moves() int { return s.moves }

// Offset returns the number of items inserted minus the number of items removed before old index
// anchor. An Insert or Remove at old position p applies at current position p+Offset(p) once
// every preceding structural operation has been applied.
func (s *Script) Offset(anchor int) int {
	if anchor < 0 || anchor > s.oldLen {
		panic(fmt.Sprintf("anchor %d out of range [0, %d]", anchor, s.oldLen))
	}
	return s.offset[anchor]
}

// Current converts old index i to the index the item has once all structural operations are
// applied. The mapping is strictly increasing over kept items. It reports false if the item is
// removed by the script.
func (s *Script) Current(i int) (int, bool) {
	if i < 0 || i >= s.oldLen {
		return -1, false
	}
	c := s.current[i]
	return c, c >= 0
}

// Final converts old index i to the index of the matching item in the new sequence. It reports
// false if the item is removed by the script.
func (s *Script) Final(i int) (int, bool) {
	if i < 0 || i >= s.oldLen {
		return -1, false
	}
	f := s.final[i]
	return f, f >= 0
}

// Ops returns a copy of the operations for inspection. It returns nil once the operations have
// been taken.
func (s *Script) Ops() []Op {
	if s.taken.Load() {
		return nil
	}
	ret := make([]Op, len(s.ops))
	for i, op := range s.ops {
		ret[i] = op.detach()
	}
	return ret
}

// Take hands the operations over to the caller, which becomes responsible for recycling every
// one of them after executing it. Take reports false if the operations were already taken.
func (s *Script) Take() ([]*Op, bool) {
	if !s.taken.CompareAndSwap(false, true) {
		return nil, false
	}
	ops := s.ops
	s.ops = nil
	return ops, true
}

// Discard recycles all operations without executing them. It is a no-op if the operations were
// already taken.
func (s *Script) Discard() {
	ops, ok := s.Take()
	if !ok {
		return
	}
	for _, op := range ops {
		op.Recycle()
	}
}
