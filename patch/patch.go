// Package patch reconciles a live list in place with a target list.
//
// A script is computed from identity and content predicates and then applied with one of two
// disciplines that produce the same result:
//
//   - Immediate ([Apply], [Patch]): every operation mutates the sequence as it is dispatched.
//   - Deferred ([Batch], [PatchBatch]): operations are collected first and replayed on Execute.
//
// Applying requires exclusive access to the sequence.
package patch

import (
	"fmt"

	"flo.znkr.io/listpatch/check"
	"flo.znkr.io/listpatch/script"
)

// Callback compares items of the live and the target sequence.
type Callback[T any] struct {
	// SameIdentity reports whether a and b are the same logical entity. Required.
	SameIdentity func(a, b T) bool
	// SameContent reports whether two identical items also have the same content. If nil, items
	// of the same identity never change.
	SameContent func(a, b T) bool
	// Payload optionally describes the change of a into b.
	Payload func(a, b T) any
}

// Equal returns a Callback treating equal items as identical with the same content.
func Equal[T comparable]() Callback[T] {
	return Callback[T]{
		SameIdentity: func(a, b T) bool { return a == b },
	}
}

func (cb Callback[T]) predicates(old, target []T) script.Predicates {
	p := script.Predicates{
		SameIdentity: func(i, j int) bool { return cb.SameIdentity(old[i], target[j]) },
	}
	if cb.SameContent != nil {
		p.SameContent = func(i, j int) bool { return cb.SameContent(old[i], target[j]) }
	}
	if cb.Payload != nil {
		p.Payload = func(i, j int) any { return cb.Payload(old[i], target[j]) }
	}
	return p
}

// same reports whether a and b are interchangeable in the patched sequence.
func (cb Callback[T]) same(a, b T) bool {
	if !cb.SameIdentity(a, b) {
		return false
	}
	return cb.SameContent == nil || cb.SameContent(a, b)
}

// Compute returns the script transforming old into target. The sequences must not change until the
// script is computed.
func Compute[T any](old, target []T, cb Callback[T], opts ...Option) *script.Script {
	o := fromOptions(opts)
	return o.source.Compute(len(old), len(target), cb.predicates(old, target), o.detectMoves)
}

// Patch transforms seq in place into target using the Immediate discipline. Unless disabled with
// Verify(false), the result is checked against target afterwards.
func Patch[T any](seq Sequence[T], target []T, cb Callback[T], opts ...Option) error {
	if cb.SameIdentity == nil {
		return fmt.Errorf("%w: missing identity predicate", ErrNotAttached)
	}
	o := fromOptions(opts)
	s := o.source.Compute(seq.Len(), len(target), cb.predicates(Items(seq), target), o.detectMoves)
	if err := Apply(seq, target, s, opts...); err != nil {
		s.Discard()
		return fmt.Errorf("applying script: %w", err)
	}
	return verify(o, seq, target, cb)
}

// PatchBatch is like Patch, but applies the script with the Deferred discipline.
func PatchBatch[T any](seq Sequence[T], target []T, cb Callback[T], opts ...Option) error {
	if cb.SameIdentity == nil {
		return fmt.Errorf("%w: missing identity predicate", ErrNotAttached)
	}
	o := fromOptions(opts)
	s := o.source.Compute(seq.Len(), len(target), cb.predicates(Items(seq), target), o.detectMoves)
	b := NewBatch(seq, opts...)
	b.Attach(target)
	if err := b.Collect(s); err != nil {
		s.Discard()
		return fmt.Errorf("collecting script: %w", err)
	}
	if err := b.Execute(); err != nil {
		return fmt.Errorf("executing batch: %w", err)
	}
	return verify(o, seq, target, cb)
}

func verify[T any](o *options, seq Sequence[T], target []T, cb Callback[T]) error {
	if !o.verify {
		return nil
	}
	if err := check.Check(Items(seq), target, cb.same); err != nil {
		return fmt.Errorf("%w: %w", ErrInconsistent, err)
	}
	return nil
}
