// Package rfc6902 records the mutations of a sequence as a JSON Patch document (RFC 6902).
//
// Patching a [Recorder] produces a document that transforms the JSON array of the old items into
// the JSON array of the new items, so scripts can be shipped to anything that speaks JSON Patch.
package rfc6902

import (
	"encoding/json"
	"fmt"
	"strconv"

	jsonpatch "github.com/evanphx/json-patch"

	"flo.znkr.io/listpatch/patch"
)

// Operation is a single JSON Patch operation.
type Operation struct {
	Op    string          `json:"op"`
	Path  string          `json:"path"`
	Value json.RawMessage `json:"value,omitempty"`
}

// Recorder is a [patch.Sequence] that forwards every mutation to another sequence and records it.
type Recorder[T any] struct {
	seq patch.Sequence[T]
	ops []Operation
	err error
}

// NewRecorder returns a recorder forwarding to seq.
func NewRecorder[T any](seq patch.Sequence[T]) *Recorder[T] {
	return &Recorder[T]{seq: seq}
}

func (r *Recorder[T]) Len() int   { return r.seq.Len() }
func (r *Recorder[T]) At(i int) T { return r.seq.At(i) }

func (r *Recorder[T]) Set(i int, v T) {
	r.seq.Set(i, v)
	r.record("replace", strconv.Itoa(i), v)
}

func (r *Recorder[T]) Insert(i int, vs ...T) {
	for k, v := range vs {
		at := strconv.Itoa(i + k)
		if i+k == r.seq.Len() {
			at = "-"
		}
		r.seq.Insert(i+k, v)
		r.record("add", at, v)
	}
}

func (r *Recorder[T]) Remove(i, n int) {
	r.seq.Remove(i, n)
	for range n {
		r.ops = append(r.ops, Operation{Op: "remove", Path: "/" + strconv.Itoa(i)})
	}
}

func (r *Recorder[T]) record(op, at string, v T) {
	b, err := json.Marshal(v)
	if err != nil && r.err == nil {
		r.err = fmt.Errorf("encoding %v: %v", v, err)
	}
	r.ops = append(r.ops, Operation{Op: op, Path: "/" + at, Value: b})
}

// Operations returns the recorded operations.
func (r *Recorder[T]) Operations() []Operation { return r.ops }

// Document returns the recorded operations as a JSON Patch document.
func (r *Recorder[T]) Document() ([]byte, error) {
	if r.err != nil {
		return nil, r.err
	}
	ops := r.ops
	if ops == nil {
		ops = []Operation{}
	}
	b, err := json.Marshal(ops)
	if err != nil {
		return nil, fmt.Errorf("encoding patch: %v", err)
	}
	return b, nil
}

// Apply applies a JSON Patch document to the JSON encoding of items and decodes the result.
func Apply[T any](doc []byte, items []T) ([]T, error) {
	p, err := jsonpatch.DecodePatch(doc)
	if err != nil {
		return nil, fmt.Errorf("decoding patch: %v", err)
	}
	if items == nil {
		items = []T{}
	}
	in, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("encoding items: %v", err)
	}
	out, err := p.Apply(in)
	if err != nil {
		return nil, fmt.Errorf("applying patch: %v", err)
	}
	var ret []T
	if err := json.Unmarshal(out, &ret); err != nil {
		return nil, fmt.Errorf("decoding items: %v", err)
	}
	return ret, nil
}
