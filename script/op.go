package script

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"flo.znkr.io/listpatch/pool"
)

// Op is a single edit operation. Which fields are meaningful depends on Kind:
//
//   - Insert: Count target items enter before old item Position (Position == old length appends)
//   - Remove: old items [Position, Position+Count) leave
//   - Move: the item at current index From is reinserted at To
//   - Change: old items [Position, Position+Count) get new content, Payload is optional
//
// Ops are usually pooled. An Op handed out by [Script.Take] must be recycled exactly once, after it
// has been executed, and must not be used after that.
type Op struct {
	Kind     Kind
	Position int
	Count    int
	From, To int
	Payload  any

	pool     *pool.Pool[Op]
	recycled bool
}

func (op Op) String() string {
	switch op.Kind {
	case Insert:
		return fmt.Sprintf("I(position=%d, count=%d)", op.Position, op.Count)
	case Remove:
		return fmt.Sprintf("R(position=%d, count=%d)", op.Position, op.Count)
	case Move:
		return fmt.Sprintf("M(from=%d, to=%d)", op.From, op.To)
	case Change:
		if op.Payload != nil {
			return fmt.Sprintf("C(position=%d, count=%d, L: %v)", op.Position, op.Count, op.Payload)
		}
		return fmt.Sprintf("C(position=%d, count=%d)", op.Position, op.Count)
	default:
		return op.Kind.String()
	}
}

// Recycled reports whether op has already been recycled.
func (op *Op) Recycled() bool { return op.recycled }

// Recycle returns op to the pool it was acquired from. It reports whether the pool retained it.
// Recycling an op twice is a programming error and panics.
func (op *Op) Recycle() bool {
	if op.recycled {
		panic(fmt.Sprintf("invariant violation: %v recycled twice", *op))
	}
	op.recycled = true
	op.Payload = nil
	if op.pool == nil {
		return false
	}
	return op.pool.Release(op)
}

// detach returns a copy of op that is not connected to any pool.
func (op *Op) detach() Op {
	c := *op
	c.pool = nil
	return c
}

// Records holds one pool per operation kind. A nil *Records is valid and allocates every record.
//
// Records implements [prometheus.Collector] to expose the pool counters.
type Records struct {
	pools [numKinds]*pool.Pool[Op]
}

// NewRecords creates type-segregated pools, each retaining at most capacity records.
func NewRecords(capacity int) *Records {
	r := &Records{}
	for k := range r.pools {
		r.pools[k] = pool.New[Op](capacity)
	}
	return r
}

func (r *Records) acquire(k Kind) *Op {
	var op *Op
	if r == nil {
		op = &Op{}
	} else {
		p := r.pools[k]
		op = p.Acquire()
		*op = Op{pool: p}
	}
	op.Kind = k
	return op
}

// Insert returns an Insert record.
func (r *Records) Insert(position, count int) *Op {
	op := r.acquire(Insert)
	op.Position, op.Count = position, count
	return op
}

// Remove returns a Remove record.
func (r *Records) Remove(position, count int) *Op {
	op := r.acquire(Remove)
	op.Position, op.Count = position, count
	return op
}

// Move returns a Move record.
func (r *Records) Move(from, to int) *Op {
	op := r.acquire(Move)
	op.From, op.To = from, to
	return op
}

// Change returns a Change record.
func (r *Records) Change(position, count int, payload any) *Op {
	op := r.acquire(Change)
	op.Position, op.Count, op.Payload = position, count, payload
	return op
}

// Stats returns the counters of the pool for kind k.
func (r *Records) Stats(k Kind) pool.Stats {
	if r == nil {
		return pool.Stats{}
	}
	return r.pools[k].Stats()
}

var (
	acquireDesc = prometheus.NewDesc(
		"listpatch_pool_acquire_total",
		"Operation records acquired, by kind and whether the pool had a free record.",
		[]string{"kind", "result"}, nil,
	)
	dropDesc = prometheus.NewDesc(
		"listpatch_pool_drop_total",
		"Operation records dropped on recycle because the pool was full.",
		[]string{"kind"}, nil,
	)
	freeDesc = prometheus.NewDesc(
		"listpatch_pool_free_records",
		"Operation records currently held by the pool.",
		[]string{"kind"}, nil,
	)
)

// Describe implements [prometheus.Collector].
func (r *Records) Describe(ch chan<- *prometheus.Desc) {
	ch <- acquireDesc
	ch <- dropDesc
	ch <- freeDesc
}

// Collect implements [prometheus.Collector].
func (r *Records) Collect(ch chan<- prometheus.Metric) {
	if r == nil {
		return
	}
	for k, p := range r.pools {
		kind := Kind(k).String()
		s := p.Stats()
		ch <- prometheus.MustNewConstMetric(acquireDesc, prometheus.CounterValue, float64(s.Hits), kind, "hit")
		ch <- prometheus.MustNewConstMetric(acquireDesc, prometheus.CounterValue, float64(s.Misses), kind, "miss")
		ch <- prometheus.MustNewConstMetric(dropDesc, prometheus.CounterValue, float64(s.Drops), kind)
		ch <- prometheus.MustNewConstMetric(freeDesc, prometheus.GaugeValue, float64(p.Len()), kind)
	}
}
