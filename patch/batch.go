package patch

import (
	"fmt"

	"flo.znkr.io/listpatch/observe"
	"flo.znkr.io/listpatch/script"
)

// Batch applies scripts with deferred execution: operations are first collected into a structural
// and a positional queue and only mutate the sequence once Execute is called.
//
// Both queues replay in emission order. Structural operations are positioned with a running offset,
// positional operations run after all structural ones, Changes before Moves.
type Batch[T any] struct {
	seq      Sequence[T]
	target   []T
	attached bool
	observer observe.Observer

	s          *script.Script
	structural []*script.Op
	positional []*script.Op
}

// NewBatch returns a batch applying scripts to seq. Only WithObserver is relevant for a batch.
func NewBatch[T any](seq Sequence[T], opts ...Option) *Batch[T] {
	o := fromOptions(opts)
	return &Batch[T]{seq: seq, observer: o.observer}
}

// Attach sets the target sequence that inserted and changed items are taken from. It must be called
// before Collect.
func (b *Batch[T]) Attach(target []T) {
	b.target = target
	b.attached = true
}

// Collect takes the operations of s and queues them. A batch holds the operations of at most one
// script at a time.
func (b *Batch[T]) Collect(s *script.Script) error {
	if !b.attached {
		return ErrNotAttached
	}
	if b.s != nil {
		return ErrPending
	}
	if err := fits(b.seq, b.target, s); err != nil {
		return err
	}
	ops, ok := s.Take()
	if !ok {
		return ErrConsumed
	}
	b.s = s
	for _, op := range ops {
		if op.Kind.Structural() {
			b.structural = append(b.structural, op)
		} else {
			b.positional = append(b.positional, op)
		}
		if b.observer != nil {
			b.observer.Scheduled(*op)
		}
	}
	return nil
}

// Pending returns the number of collected operations that were not executed yet.
func (b *Batch[T]) Pending() int {
	return len(b.structural) + len(b.positional)
}

// Execute applies all collected operations and recycles them. On failure, the remaining operations
// are recycled without being executed and the batch is empty again.
func (b *Batch[T]) Execute() error {
	if b.s == nil {
		return nil
	}
	defer b.reset()

	offset := 0
	for i, op := range b.structural {
		err := execute(b.observer, b.seq, op, func() error {
			if !op.Kind.Structural() {
				return malformed(*op, "%v in structural queue", op.Kind)
			}
			return structural(b.seq, b.target, op, op.Position+offset)
		})
		if err != nil {
			recycle(b.structural[i:])
			recycle(b.positional)
			return err
		}
		if op.Kind == script.Insert {
			offset += op.Count
		} else {
			offset -= op.Count
		}
		op.Recycle()
	}
	if b.seq.Len() != len(b.target) {
		recycle(b.positional)
		return fmt.Errorf("%w: %d items after structural replay, want %d",
			ErrMalformed, b.seq.Len(), len(b.target))
	}

	for _, phase := range []func(script.Kind) bool{
		func(k script.Kind) bool { return k != script.Move },
		func(k script.Kind) bool { return k == script.Move },
	} {
		for i, op := range b.positional {
			if op == nil || !phase(op.Kind) {
				continue
			}
			err := execute(b.observer, b.seq, op, func() error {
				if op.Kind.Structural() {
					return malformed(*op, "%v in positional queue", op.Kind)
				}
				return positional(b.seq, b.target, b.s, op)
			})
			if err != nil {
				recycleRemaining(b.positional)
				return err
			}
			op.Recycle()
			b.positional[i] = nil
		}
	}
	return nil
}

func (b *Batch[T]) reset() {
	b.s = nil
	b.structural = b.structural[:0]
	b.positional = b.positional[:0]
}

func recycleRemaining(ops []*script.Op) {
	for _, op := range ops {
		if op != nil {
			op.Recycle()
		}
	}
}
