package script

import (
	"unicode/utf8"

	diffpatch "github.com/sergi/go-diff/diffmatchpatch"
)

// DiffMatchPatch computes scripts using the alignment of [diffpatch.DiffMainRunes]. Items are
// partitioned into identity classes and every class is encoded as a rune, which requires
// SameIdentity to be an equivalence relation.
//
// If there are more identity classes than runes, DiffMatchPatch falls back to [Myers].
type DiffMatchPatch struct {
	Records *Records // Optional pools for operation records
}

// Compute implements [Source].
func (s DiffMatchPatch) Compute(m, n int, p Predicates, detectMoves bool) *Script {
	xr, yr, ok := classify(m, n, p.SameIdentity)
	if !ok {
		return Myers(s).Compute(m, n, p, detectMoves)
	}

	dmp := diffpatch.New()
	dmp.DiffTimeout = 0 // always compute the minimal diff, results must not depend on timing
	diffs := dmp.DiffMainRunes(xr, yr, false)

	var matches []pair
	x, y := 0, 0
	for i := range diffs {
		d := &diffs[i]
		l := utf8.RuneCountInString(d.Text)
		switch d.Type {
		case diffpatch.DiffEqual:
			for range l {
				matches = append(matches, pair{x, y})
				x++
				y++
			}
		case diffpatch.DiffDelete:
			x += l
		case diffpatch.DiffInsert:
			y += l
		}
	}
	return build(m, n, matches, p, detectMoves, s.Records)
}

// maxClasses is the number of runes classRune can produce.
const maxClasses = utf8.MaxRune + 1 - 0x800 - 1

// classify assigns a rune to every old and every new item such that items with the same identity
// share a rune.
func classify(m, n int, same func(i, j int) bool) (xr, yr []rune, ok bool) {
	// rep[j] is the first old item with the identity of new item j.
	rep := filled(n, -1)
	for j := range n {
		for i := range m {
			if same(i, j) {
				rep[j] = i
				break
			}
		}
	}

	classes := 0
	next := func() (rune, bool) {
		if classes >= maxClasses {
			return 0, false
		}
		r := classRune(classes)
		classes++
		return r, true
	}

	xr = make([]rune, m)
	for i := range m {
		xr[i] = -1
		for j := range n {
			if same(i, j) {
				if r := rep[j]; r < i {
					xr[i] = xr[r]
				}
				break
			}
		}
		if xr[i] < 0 {
			r, ok := next()
			if !ok {
				return nil, nil, false
			}
			xr[i] = r
		}
	}

	yr = make([]rune, n)
	for j := range n {
		if r := rep[j]; r >= 0 {
			yr[j] = xr[r]
			continue
		}
		r, ok := next()
		if !ok {
			return nil, nil, false
		}
		yr[j] = r
	}
	return xr, yr, true
}

// classRune maps c to a valid rune. Runs of runes are compared as strings by diffmatchpatch, so
// surrogates must be skipped to keep the encoding lossless.
func classRune(c int) rune {
	r := rune(c + 1)
	if r >= 0xD800 {
		r += 0x800
	}
	return r
}
