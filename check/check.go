// Package check compares a patched sequence against the sequence it was supposed to become.
package check

import (
	"fmt"

	"github.com/sanity-io/litter"
)

var dumper = litter.Options{
	Compact:           true,
	StripPackageNames: true,
}

// Mismatch describes the first divergence between an actual and an expected sequence.
type Mismatch struct {
	Index       int // Index of the first differing item, -1 if the lengths differ
	ExpectedLen int
	ActualLen   int
	Expected    any // Expected item at Index
	Actual      any // Actual item at Index

	ExpectedDump string // Dump of the full expected sequence
	ActualDump   string // Dump of the full actual sequence
}

func (m *Mismatch) Error() string {
	if m.Index < 0 {
		return fmt.Sprintf("item count mismatch, expected (%d), but was (%d)\nexpected: %s\nactual:   %s",
			m.ExpectedLen, m.ActualLen, m.ExpectedDump, m.ActualDump)
	}
	return fmt.Sprintf("inconsistency at (%d), expected `%v`, but was `%v`\nexpected: %s\nactual:   %s",
		m.Index, m.Expected, m.Actual, m.ExpectedDump, m.ActualDump)
}

// Check compares actual against expected using eq. It returns a *Mismatch describing the first
// divergence, or nil if both sequences are equal.
func Check[T any](actual, expected []T, eq func(a, b T) bool) error {
	if len(actual) != len(expected) {
		return mismatch(-1, actual, expected)
	}
	for i := range expected {
		if !eq(actual[i], expected[i]) {
			return mismatch(i, actual, expected)
		}
	}
	return nil
}

// Equal is Check using ==.
func Equal[T comparable](actual, expected []T) error {
	return Check(actual, expected, func(a, b T) bool { return a == b })
}

func mismatch[T any](i int, actual, expected []T) *Mismatch {
	m := &Mismatch{
		Index:        i,
		ExpectedLen:  len(expected),
		ActualLen:    len(actual),
		ExpectedDump: dumper.Sdump(expected),
		ActualDump:   dumper.Sdump(actual),
	}
	if i >= 0 {
		m.Expected = expected[i]
		m.Actual = actual[i]
	}
	return m
}
