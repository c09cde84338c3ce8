package script

import "znkr.io/diff"

// Znkr computes scripts using the alignment of [znkr.io/diff].
type Znkr struct {
	Records *Records // Optional pools for operation records
}

// Compute implements [Source].
func (s Znkr) Compute(m, n int, p Predicates, detectMoves bool) *Script {
	xs := indices(m)
	ys := indices(n)
	edits := diff.EditsFunc(xs, ys, p.SameIdentity)

	var matches []pair
	x, y := 0, 0
	for _, e := range edits {
		switch e.Op {
		case diff.Match:
			matches = append(matches, pair{x, y})
			x++
			y++
		case diff.Delete:
			x++
		case diff.Insert:
			y++
		}
	}
	return build(m, n, matches, p, detectMoves, s.Records)
}

func indices(n int) []int {
	s := make([]int, n)
	for i := range s {
		s[i] = i
	}
	return s
}
