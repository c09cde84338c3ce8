package patch

import (
	"fmt"

	"flo.znkr.io/listpatch/observe"
	"flo.znkr.io/listpatch/script"
)

// Apply applies s to seq immediately, operation by operation in script order. Insert and Remove
// positions are converted to current positions with [script.Script.Offset], Change positions with
// [script.Script.Current]. The target is the sequence s was computed against.
//
// Apply requires exclusive access to seq. If it fails, seq is left as it was after the last
// successful operation.
func Apply[T any](seq Sequence[T], target []T, s *script.Script, opts ...Option) error {
	o := fromOptions(opts)
	if err := fits(seq, target, s); err != nil {
		return err
	}
	ops, ok := s.Take()
	if !ok {
		return ErrConsumed
	}
	for i, op := range ops {
		err := execute(o.observer, seq, op, func() error {
			switch op.Kind {
			case script.Insert, script.Remove:
				if op.Position < 0 || op.Position > s.OldLen() {
					return malformed(*op, "position outside of [0, %d]", s.OldLen())
				}
				return structural(seq, target, op, op.Position+s.Offset(op.Position))
			default:
				return positional(seq, target, s, op)
			}
		})
		if err != nil {
			recycle(ops[i:])
			return err
		}
		op.Recycle()
	}
	return nil
}

// fits checks that s was computed for sequences of the lengths of seq and target.
func fits[T any](seq Sequence[T], target []T, s *script.Script) error {
	if seq.Len() != s.OldLen() || len(target) != s.NewLen() {
		return fmt.Errorf("%w: script transforms %d into %d items, got %d and %d items",
			ErrMalformed, s.OldLen(), s.NewLen(), seq.Len(), len(target))
	}
	return nil
}

// execute runs f for op and informs obs about the outcome.
func execute[T any](obs observe.Observer, seq Sequence[T], op *script.Op, f func() error) error {
	if op.Recycled() {
		panic(fmt.Sprintf("invariant violation: executing recycled %v", *op))
	}
	if obs == nil {
		return f()
	}
	before := snapshot(seq)
	if err := f(); err != nil {
		obs.Failed(*op, before, err)
		return err
	}
	obs.Applied(*op, before, snapshot(seq))
	return nil
}

// structural applies an Insert or Remove at current position at.
func structural[T any](seq Sequence[T], target []T, op *script.Op, at int) error {
	switch op.Kind {
	case script.Remove:
		if op.Count < 0 || at < 0 || at+op.Count > seq.Len() {
			return malformed(*op, "removing [%d, %d) from %d items", at, at+op.Count, seq.Len())
		}
		seq.Remove(at, op.Count)
	case script.Insert:
		if op.Count < 0 || at < 0 || at > seq.Len() || at+op.Count > len(target) {
			return malformed(*op, "inserting target [%d, %d) of %d items into %d items",
				at, at+op.Count, len(target), seq.Len())
		}
		seq.Insert(at, target[at:at+op.Count]...)
	default:
		return malformed(*op, "%v in structural phase", op.Kind)
	}
	return nil
}

// positional applies a Change or Move.
func positional[T any](seq Sequence[T], target []T, s *script.Script, op *script.Op) error {
	switch op.Kind {
	case script.Change:
		for k := range op.Count {
			cur, ok := s.Current(op.Position + k)
			if !ok {
				return malformed(*op, "old item %d is not kept", op.Position+k)
			}
			fin, _ := s.Final(op.Position + k)
			if cur >= seq.Len() || fin >= len(target) {
				return malformed(*op, "changing item %d of %d items", cur, seq.Len())
			}
			seq.Set(cur, target[fin])
		}
	case script.Move:
		n := seq.Len()
		if op.From < 0 || op.From >= n || op.To < 0 || op.To >= n {
			return malformed(*op, "moving within %d items", n)
		}
		v := seq.At(op.From)
		seq.Remove(op.From, 1)
		seq.Insert(op.To, v)
	default:
		return malformed(*op, "%v in positional phase", op.Kind)
	}
	return nil
}

func recycle(ops []*script.Op) {
	for _, op := range ops {
		op.Recycle()
	}
}
