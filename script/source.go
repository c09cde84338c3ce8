package script

import (
	"slices"
	"sort"

	mapset "github.com/deckarep/golang-set/v2"
)

// Predicates compare items of the old and the new sequence by index. They must be pure for the
// duration of a computation, the sequences must not change while a script is computed.
type Predicates struct {
	// SameIdentity reports whether old item i and new item j represent the same logical entity.
	SameIdentity func(i, j int) bool
	// SameContent reports whether identical items have the same content. If nil, identical items
	// are assumed to never change.
	SameContent func(i, j int) bool
	// Payload optionally attaches a payload to a change of old item i into new item j.
	Payload func(i, j int) any
}

// Source computes edit scripts.
type Source interface {
	// Compute returns the script transforming an old sequence of length m into a new sequence of
	// length n.
	Compute(m, n int, p Predicates, detectMoves bool) *Script
}

// pair is a match between old index x and new index y.
type pair struct {
	x, y int
}

// build turns an identity alignment into a script. The matches must be strictly increasing in
// both indices.
func build(m, n int, matches []pair, p Predicates, detectMoves bool, rec *Records) *Script {
	oldTo := filled(m, -1)
	newFrom := filled(n, -1)
	for _, mt := range matches {
		oldTo[mt.x] = mt.y
		newFrom[mt.y] = mt.x
	}
	if detectMoves {
		pairMoves(oldTo, newFrom, p.SameIdentity)
	}

	s := &Script{
		oldLen:  m,
		newLen:  n,
		offset:  make([]int, m+1),
		current: make([]int, m),
		final:   oldTo,
	}

	kept := make([]int, 0, m)
	for i, j := range oldTo {
		if j >= 0 {
			kept = append(kept, i)
		}
	}

	// Inserted items enter right before the kept item that follows them. Since kept items stay in
	// old order during the structural phase, that's the k-th kept item for the k-th kept new slot.
	ins := make([]int, m+1)
	k := 0
	for j := range n {
		if newFrom[j] >= 0 {
			k++
			continue
		}
		a := m
		if k < len(kept) {
			a = kept[k]
		}
		ins[a]++
	}

	var ops []*Op
	var rem, chg *Op
	flush := func(op **Op) {
		if *op != nil {
			ops = append(ops, *op)
			*op = nil
		}
	}

	net := 0
	for a := 0; a <= m; a++ {
		if a == m || oldTo[a] >= 0 {
			flush(&rem)
		}
		s.offset[a] = net
		if c := ins[a]; c > 0 {
			flush(&chg)
			ops = append(ops, rec.Insert(a, c))
			net += c
		}
		if a == m {
			break
		}

		if oldTo[a] < 0 {
			flush(&chg)
			if rem == nil {
				rem = rec.Remove(a, 0)
			}
			rem.Count++
			net--
			s.current[a] = -1
			continue
		}

		s.current[a] = a + net
		if p.SameContent == nil || p.SameContent(a, oldTo[a]) {
			flush(&chg)
			continue
		}
		var payload any
		if p.Payload != nil {
			payload = p.Payload(a, oldTo[a])
		}
		if chg != nil && payload == nil && chg.Payload == nil && chg.Position+chg.Count == a {
			chg.Count++
			continue
		}
		flush(&chg)
		chg = rec.Change(a, 1, payload)
	}
	flush(&chg)

	// Kept items occupy the new slots that aren't inserted, in old order. Moves permute them into
	// new order.
	perm := make([]int, n)
	k = 0
	for j := range n {
		if newFrom[j] < 0 {
			perm[j] = j
			continue
		}
		perm[j] = oldTo[kept[k]]
		k++
	}
	for _, mv := range permutationMoves(perm) {
		ops = append(ops, rec.Move(mv.x, mv.y))
		s.moves++
	}

	s.ops = ops
	s.count = len(ops)
	return s
}

// pairMoves pairs unmatched old items with unmatched new items of the same identity, earliest
// first. Every item takes part in at most one pair.
func pairMoves(oldTo, newFrom []int, same func(i, j int) bool) {
	free := mapset.NewThreadUnsafeSet[int]()
	var order []int
	for j, i := range newFrom {
		if i < 0 {
			free.Add(j)
			order = append(order, j)
		}
	}
	for i := range oldTo {
		if free.Cardinality() == 0 {
			return
		}
		if oldTo[i] >= 0 {
			continue
		}
		for _, j := range order {
			if free.Contains(j) && same(i, j) {
				free.Remove(j)
				oldTo[i] = j
				newFrom[j] = i
				break
			}
		}
	}
}

// permutationMoves returns the single element moves (from, to) that sort perm, a permutation of
// [0, len(perm)). Elements on a longest increasing subsequence never move. A move removes the
// element at from and reinserts it at to in the shortened slice.
func permutationMoves(perm []int) []pair {
	settled := increasing(perm)
	cur := slices.Clone(perm)
	var moves []pair
	for v := range len(cur) {
		if settled[v] {
			continue
		}
		// All values below v are settled at this point and settled values are in order, so v
		// belongs right after v-1.
		from := slices.Index(cur, v)
		cur = slices.Delete(cur, from, from+1)
		to := 0
		if v > 0 {
			to = slices.Index(cur, v-1) + 1
		}
		cur = slices.Insert(cur, to, v)
		settled[v] = true
		if from != to {
			moves = append(moves, pair{from, to})
		}
	}
	return moves
}

// increasing returns a longest increasing subsequence of perm as a set indexed by value.
func increasing(perm []int) []bool {
	in := make([]bool, len(perm))
	if len(perm) == 0 {
		return in
	}
	prev := make([]int, len(perm))
	var tails []int // tails[k] is the index of the smallest tail of an increasing run of length k+1
	for i, v := range perm {
		k := sort.Search(len(tails), func(k int) bool { return perm[tails[k]] >= v })
		prev[i] = -1
		if k > 0 {
			prev[i] = tails[k-1]
		}
		if k == len(tails) {
			tails = append(tails, i)
		} else {
			tails[k] = i
		}
	}
	for i := tails[len(tails)-1]; i >= 0; i = prev[i] {
		in[perm[i]] = true
	}
	return in
}

func filled(n, v int) []int {
	s := make([]int, n)
	for i := range s {
		s[i] = v
	}
	return s
}
