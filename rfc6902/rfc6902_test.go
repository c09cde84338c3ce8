package rfc6902

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"flo.znkr.io/listpatch/patch"
)

func TestRecorder(t *testing.T) {
	tests := []struct {
		name     string
		old, new []string
		want     []Operation
	}{
		{
			name: "append",
			old:  []string{"a"},
			new:  []string{"a", "b"},
			want: []Operation{{Op: "add", Path: "/-", Value: []byte(`"b"`)}},
		},
		{
			name: "remove",
			old:  []string{"a", "b", "c"},
			new:  []string{"c"},
			want: []Operation{{Op: "remove", Path: "/0"}, {Op: "remove", Path: "/0"}},
		},
		{
			name: "insert-front",
			old:  []string{"c"},
			new:  []string{"a", "b", "c"},
			want: []Operation{
				{Op: "add", Path: "/0", Value: []byte(`"a"`)},
				{Op: "add", Path: "/1", Value: []byte(`"b"`)},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seq := patch.Slice[string](tt.old)
			r := NewRecorder[string](&seq)
			if err := patch.Patch(r, tt.new, patch.Equal[string]()); err != nil {
				t.Fatalf("Patch failed: %v", err)
			}
			if diff := cmp.Diff(tt.want, r.Operations()); diff != "" {
				t.Errorf("operations diff (-want, +got):\n%s", diff)
			}
		})
	}
}

func TestRoundTrip(t *testing.T) {
	type row struct {
		ID   string `json:"id"`
		Text string `json:"text"`
	}
	cb := patch.Callback[row]{
		SameIdentity: func(a, b row) bool { return a.ID == b.ID },
		SameContent:  func(a, b row) bool { return a.Text == b.Text },
	}
	steps := [][]row{
		{},
		{{"a", "1"}, {"b", "1"}, {"c", "1"}},
		{{"c", "2"}, {"a", "1"}, {"d", "1"}, {"b", "2"}},
		{{"d", "1"}, {"b", "3"}},
		{},
	}

	for _, detectMoves := range []bool{true, false} {
		for _, deferred := range []bool{true, false} {
			apply := patch.Patch[row]
			if deferred {
				apply = patch.PatchBatch[row]
			}
			for i := 1; i < len(steps); i++ {
				old, new := steps[i-1], steps[i]
				seq := patch.Slice[row](append([]row(nil), old...))
				r := NewRecorder[row](&seq)
				if err := apply(r, new, cb, patch.DetectMoves(detectMoves)); err != nil {
					t.Fatalf("step %d: patch failed: %v", i, err)
				}
				doc, err := r.Document()
				if err != nil {
					t.Fatalf("step %d: Document failed: %v", i, err)
				}
				got, err := Apply(doc, old)
				if err != nil {
					t.Fatalf("step %d: applying %s failed: %v", i, doc, err)
				}
				if diff := cmp.Diff(new, got, cmpopts.EquateEmpty()); diff != "" {
					t.Errorf("step %d: moves=%v deferred=%v: JSON Patch result diff (-want, +got):\n%s",
						i, detectMoves, deferred, diff)
				}
			}
		}
	}
}

func TestEmptyDocument(t *testing.T) {
	seq := patch.Slice[int]{1, 2}
	r := NewRecorder[int](&seq)
	doc, err := r.Document()
	if err != nil {
		t.Fatalf("Document failed: %v", err)
	}
	if got := string(doc); got != "[]" {
		t.Errorf("Document() = %s, want []", got)
	}
}

func TestApplyErrors(t *testing.T) {
	if _, err := Apply([]byte(`{`), []int{1}); err == nil {
		t.Errorf("Apply with invalid document succeeded")
	}
	if _, err := Apply([]byte(`[{"op": "remove", "path": "/5"}]`), []int{1}); err == nil {
		t.Errorf("Apply with out of range removal succeeded")
	}
}
