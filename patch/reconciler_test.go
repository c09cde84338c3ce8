package patch

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"flo.znkr.io/listpatch/script"
)

func TestReconciler(t *testing.T) {
	for _, detectMoves := range []bool{true, false} {
		rec := script.NewRecords(0)
		r := NewReconciler(Equal[rune](), WithRecords(rec), DetectMoves(detectMoves))
		seq := Slice[rune]{}
		r.Attach(&seq)

		for _, next := range []string{"ABC", "ABCDEFG", "12345FFGHQRXYZ", "", "CBA"} {
			if err := r.Submit(context.Background(), []rune(next)); err != nil {
				t.Fatalf("Submit(%q) failed: %v", next, err)
			}
			if diff := cmp.Diff(next, string(r.Items())); diff != "" {
				t.Errorf("live sequence after Submit(%q) diff (-want, +got):\n%s", next, diff)
			}
		}
		if got, want := r.Generation(), uint64(6); got != want {
			t.Errorf("Generation() = %d, want %d", got, want)
		}
	}
}

func TestReconcilerNotAttached(t *testing.T) {
	r := NewReconciler(Equal[rune]())
	if err := r.Submit(context.Background(), []rune("A")); !errors.Is(err, ErrNotAttached) {
		t.Errorf("Submit error = %v, want %v", err, ErrNotAttached)
	}
	if r.Items() != nil {
		t.Errorf("Items() = %v, want nil", r.Items())
	}
}

// blockingSource computes scripts only once release is closed.
type blockingSource struct {
	release chan struct{}
	done    chan struct{}
}

func (s blockingSource) Compute(m, n int, p script.Predicates, detectMoves bool) *script.Script {
	<-s.release
	defer close(s.done)
	return script.Myers{}.Compute(m, n, p, detectMoves)
}

func TestReconcilerCancel(t *testing.T) {
	src := blockingSource{release: make(chan struct{}), done: make(chan struct{})}
	r := NewReconciler(Equal[rune](), WithSource(src))
	seq := Slice[rune]("ABC")
	r.Attach(&seq)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := r.Submit(ctx, []rune("CBA")); !errors.Is(err, context.Canceled) {
		t.Errorf("Submit error = %v, want %v", err, context.Canceled)
	}
	if diff := cmp.Diff("ABC", string(r.Items())); diff != "" {
		t.Errorf("canceled Submit changed the live sequence (-want, +got):\n%s", diff)
	}
	if got, want := r.Generation(), uint64(1); got != want {
		t.Errorf("Generation() = %d, want %d", got, want)
	}

	close(src.release)
	<-src.done
}

// counter counts observed operations.
type counter struct {
	scheduled, applied int
}

func (c *counter) Scheduled(script.Op)               { c.scheduled++ }
func (c *counter) Applied(script.Op, string, string) { c.applied++ }
func (c *counter) Failed(script.Op, string, error)   {}

func TestReconcilerDeferred(t *testing.T) {
	for _, deferred := range []bool{false, true} {
		var c counter
		r := NewReconciler(Equal[rune](), Deferred(deferred), WithObserver(&c))
		seq := Slice[rune]{}
		r.Attach(&seq)

		for _, next := range []string{"ABC", "ABCDEFG", "12345FFGHQRXYZ", "", "CBA"} {
			if err := r.Submit(context.Background(), []rune(next)); err != nil {
				t.Fatalf("deferred=%v: Submit(%q) failed: %v", deferred, next, err)
			}
			if diff := cmp.Diff(next, string(r.Items())); diff != "" {
				t.Errorf("deferred=%v: live sequence after Submit(%q) diff (-want, +got):\n%s", deferred, next, diff)
			}
		}
		if c.applied == 0 {
			t.Fatalf("deferred=%v: no operations applied", deferred)
		}
		want := 0
		if deferred {
			want = c.applied
		}
		if c.scheduled != want {
			t.Errorf("deferred=%v: %d operations scheduled, want %d", deferred, c.scheduled, want)
		}
	}
}
