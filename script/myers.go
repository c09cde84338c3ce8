package script

// Implementation note: This is Myers' diff algorithm. These algorithms seem like magic when read in
// code, they are not magic though, but they do require a bit of reading to understand them. The
// following links are a good explanation for this algorithm:
//
// https://blog.jcoglan.com/2017/02/12/the-myers-diff-algorithm-part-1/
// https://blog.jcoglan.com/2017/02/15/the-myers-diff-algorithm-part-2/
// https://blog.jcoglan.com/2017/02/17/the-myers-diff-algorithm-part-3/

import (
	"fmt"
	"slices"
)

const debug bool = false

// Myers computes scripts with a built-in implementation of Myers' algorithm.
type Myers struct {
	Records *Records // Optional pools for operation records
}

// Compute implements [Source].
func (s Myers) Compute(m, n int, p Predicates, detectMoves bool) *Script {
	return build(m, n, myers(m, n, p.SameIdentity), p, detectMoves, s.Records)
}

// myers returns a longest common subsequence of the index ranges [0, m) and [0, n) under eq.
func myers(m, n int, eq func(x, y int) bool) []pair {
	var matches []pair

	// Try to reduce the amount of work necessary by skipping a common prefix
	pre := 0
	for pre < m && pre < n && eq(pre, pre) {
		matches = append(matches, pair{pre, pre})
		pre++
	}

	// Try to reduce the amount of work necessary by skipping a common suffix
	suf := 0
	for suf < m-pre && suf < n-pre && eq(m-1-suf, n-1-suf) {
		suf++
	}

	x0, x1 := pre, m-suf
	y0, y1 := pre, n-suf
	if x1 > x0 && y1 > y0 {
		matches = findShortestEditSequence(matches, x0, x1, y0, y1, eq)
	}

	for i := range suf {
		matches = append(matches, pair{x1 + i, y1 + i})
	}
	return matches
}

func findShortestEditSequence(matches []pair, x0, x1, y0, y1 int, eq func(x, y int) bool) []pair {
	lx, ly := x1-x0, y1-y0
	if lx+ly < 0 {
		panic("inputs too large")
	}

	v := computeMyersGraph(lx, ly, func(s, t int) bool { return eq(x0+s, y0+t) })

	// Appends matches in reverse order by backtracking along the edges in the myersGraph and
	// reverses them in place.
	preexisting := len(matches)
	s, t := lx, ly

	for d := v.maxDepth; ; d-- {
		k := s - t
		if debug {
			if max(k, -k)%2 != d%2 {
				panic("invariant violation")
			}
		}

		var prevK int
		switch {
		case d == 0:
			prevK = 0
		case k == -d || (k != d && v.get(d-1, k-1) < v.get(d-1, k+1)):
			prevK = k + 1
		default:
			prevK = k - 1
		}

		prevS := 0
		if d > 0 {
			prevS = v.get(d-1, prevK)
		}
		prevT := prevS - prevK

		for prevS < s && prevT < t {
			matches = append(matches, pair{x0 + s - 1, y0 + t - 1})
			s--
			t--
		}

		if d == 0 {
			break
		}

		if debug {
			if prevS == s && prevT == t {
				panic("invariant violation")
			}
		}

		s = prevS
		t = prevT
	}

	slices.Reverse(matches[preexisting:])
	return matches
}

// myersGraph stores the graph that is generated during findShortestEditSequence. The graph is
// stored in a flat slice and by storing the full graph, it's not necessary to record a trace at
// every depth iteration.
type myersGraph struct {
	v        []int
	maxDepth int
}

func (g *myersGraph) upgradeMaxDepth(maxDepth int) {
	if maxDepth < g.maxDepth {
		return
	}
	n := (maxDepth + 2) * (maxDepth + 1) / 2
	g.v = slices.Grow(g.v, n)
	g.v = g.v[:n]
	g.maxDepth = maxDepth
}

func (g *myersGraph) get(d, k int) int    { return g.v[g.index(d, k)] }
func (g *myersGraph) set(d, k int, v int) { g.v[g.index(d, k)] = v }

func (g *myersGraph) index(d, k int) int {
	if debug {
		if d < 0 || d > g.maxDepth {
			panic(fmt.Sprintf("d must be in [0, %v] but is %v", g.maxDepth, d))
		}
		if k < -d || k > d {
			panic(fmt.Sprintf("k must be in [%v, %v] but is %v", -d, d, k))
		}
		if k&1 != d&1 {
			panic(fmt.Sprintf("d and k must have same parity: %v vs %v", d, k))
		}
	}
	// The number of k's is always equal to d + 1. Therefore, we know how many k's were before
	// this d: (d + 1) * d / 2. Every k between -d and d with the parity of d maps to one of the
	// next d + 1 slots.
	return (d+1)*d/2 + (k+d)/2
}

func computeMyersGraph(lx, ly int, eq func(s, t int) bool) myersGraph {
	v := myersGraph{maxDepth: -1}
	dMax := lx + ly
	for d := range dMax + 1 {
		v.upgradeMaxDepth(d)
		for k := -d; k <= d; k += 2 {
			var s int
			if d == 0 {
				s = 0
			} else if k == -d || (k != d && v.get(d-1, k-1) < v.get(d-1, k+1)) {
				s = v.get(d-1, k+1)
			} else {
				s = v.get(d-1, k-1) + 1
			}
			t := s - k

			for s < lx && t < ly && s >= 0 && t >= 0 && eq(s, t) {
				s++
				t++
			}

			v.set(d, k, s)

			if s >= lx && t >= ly {
				return v
			}
		}
	}
	panic("never reached")
}
