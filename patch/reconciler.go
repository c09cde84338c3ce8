package patch

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"flo.znkr.io/listpatch/script"
)

// Reconciler owns a live sequence and transforms it into every submitted list in turn.
//
// Submissions are serialized: a script is computed on a separate goroutine, but the next
// submission starts computing only after the previous one has been applied completely.
type Reconciler[T any] struct {
	cb   Callback[T]
	opts []Option

	mu  sync.Mutex
	seq Sequence[T]
	gen uint64
}

// NewReconciler returns a reconciler using cb. The options apply to every submission.
func NewReconciler[T any](cb Callback[T], opts ...Option) *Reconciler[T] {
	return &Reconciler[T]{cb: cb, opts: opts}
}

// Attach replaces the live sequence. It waits for a running submission to finish.
func (r *Reconciler[T]) Attach(seq Sequence[T]) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq = seq
	r.gen++
}

// Generation counts attached sequences and applied submissions.
func (r *Reconciler[T]) Generation() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.gen
}

// Items returns a copy of the live sequence.
func (r *Reconciler[T]) Items() []T {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.seq == nil {
		return nil
	}
	return Items(r.seq)
}

// Submit transforms the live sequence into next. If ctx is done before the script is computed,
// Submit returns without changing the live sequence and the script is discarded once it's ready.
// Once applying has started, it always runs to completion.
func (r *Reconciler[T]) Submit(ctx context.Context, next []T) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.seq == nil {
		return ErrNotAttached
	}
	if r.cb.SameIdentity == nil {
		return fmt.Errorf("%w: missing identity predicate", ErrNotAttached)
	}

	o := fromOptions(r.opts)
	old := Items(r.seq)
	target := slices.Clone(next)

	ready := make(chan *script.Script, 1)
	go func() {
		ready <- o.source.Compute(len(old), len(target), r.cb.predicates(old, target), o.detectMoves)
	}()

	var s *script.Script
	select {
	case s = <-ready:
	case <-ctx.Done():
		go func() { (<-ready).Discard() }()
		return fmt.Errorf("computing script: %w", ctx.Err())
	}

	if err := r.apply(o, target, s); err != nil {
		s.Discard()
		return fmt.Errorf("applying script: %w", err)
	}
	r.gen++
	return verify(o, r.seq, target, r.cb)
}

func (r *Reconciler[T]) apply(o *options, target []T, s *script.Script) error {
	if !o.deferred {
		return Apply(r.seq, target, s, r.opts...)
	}
	b := NewBatch(r.seq, r.opts...)
	b.Attach(target)
	if err := b.Collect(s); err != nil {
		return err
	}
	return b.Execute()
}
