package patch

import (
	"fmt"
	"slices"
	"strings"
)

// Sequence is an ordered, mutable, index-addressable container. Indices passed to the methods are
// always within bounds, the executor checks them beforehand.
type Sequence[T any] interface {
	Len() int
	At(i int) T
	Set(i int, v T)
	// Insert inserts vs before index i.
	Insert(i int, vs ...T)
	// Remove removes the n items starting at index i.
	Remove(i, n int)
}

// Slice is a Sequence backed by a slice.
type Slice[T any] []T

func (s *Slice[T]) Len() int              { return len(*s) }
func (s *Slice[T]) At(i int) T            { return (*s)[i] }
func (s *Slice[T]) Set(i int, v T)        { (*s)[i] = v }
func (s *Slice[T]) Insert(i int, vs ...T) { *s = slices.Insert(*s, i, vs...) }
func (s *Slice[T]) Remove(i, n int)       { *s = slices.Delete(*s, i, i+n) }

// Items returns a copy of the items in seq.
func Items[T any](seq Sequence[T]) []T {
	if s, ok := seq.(*Slice[T]); ok {
		return slices.Clone(*s)
	}
	ret := make([]T, seq.Len())
	for i := range ret {
		ret[i] = seq.At(i)
	}
	return ret
}

// snapshot formats the items of seq like [A, B, C].
func snapshot[T any](seq Sequence[T]) string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i := range seq.Len() {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprint(&sb, seq.At(i))
	}
	sb.WriteByte(']')
	return sb.String()
}
