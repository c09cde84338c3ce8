// Package observe defines the observer that is informed about every operation applied by the patch
// executor. Observers are sinks, they never influence how a script is applied.
package observe

import (
	"fmt"
	"io"
	"log"
	"slices"
	"sync"

	"github.com/fatih/color"

	"flo.znkr.io/listpatch/script"
)

// Observer receives a trace of the operations of a script.
type Observer interface {
	// Scheduled is called when an operation is queued for deferred execution.
	Scheduled(op script.Op)
	// Applied is called after an operation was applied, with snapshots of the sequence before and
	// after.
	Applied(op script.Op, before, after string)
	// Failed is called when applying an operation failed.
	Failed(op script.Op, before string, err error)
}

// Trace writes a human readable trace, one line per operation:
//
//	I(position=0, count=3)    [] -> [C, D, E]
type Trace struct {
	w     io.Writer
	kinds map[script.Kind]*color.Color
	fail  *color.Color
}

// NewTrace returns an Observer writing to w. If plain is set, the output isn't colored.
func NewTrace(w io.Writer, plain bool) *Trace {
	t := &Trace{
		w: w,
		kinds: map[script.Kind]*color.Color{
			script.Insert: color.New(color.FgGreen),
			script.Remove: color.New(color.FgRed),
			script.Move:   color.New(color.FgCyan),
			script.Change: color.New(color.FgYellow),
		},
		fail: color.New(color.FgRed, color.Bold),
	}
	for _, c := range t.kinds {
		if plain {
			c.DisableColor()
		} else {
			c.EnableColor()
		}
	}
	if plain {
		t.fail.DisableColor()
	} else {
		t.fail.EnableColor()
	}
	return t
}

func (t *Trace) op(op script.Op) string {
	s := fmt.Sprintf("%-25s", op.String())
	if c, ok := t.kinds[op.Kind]; ok {
		return c.Sprint(s)
	}
	return s
}

// Scheduled implements [Observer].
func (t *Trace) Scheduled(op script.Op) {
	fmt.Fprintln(t.w, op.String())
}

// Applied implements [Observer].
func (t *Trace) Applied(op script.Op, before, after string) {
	fmt.Fprintf(t.w, "%s %s -> %s\n", t.op(op), before, after)
}

// Failed implements [Observer].
func (t *Trace) Failed(op script.Op, before string, err error) {
	fmt.Fprintf(t.w, "%s %s -> %s\n", t.op(op), before, t.fail.Sprintf("(Error) %v", err))
}

// Log reports operations to a [log.Logger]. If Logger is nil, the standard logger is used.
type Log struct {
	Logger *log.Logger
}

func (l Log) logger() *log.Logger {
	if l.Logger == nil {
		return log.Default()
	}
	return l.Logger
}

// Scheduled implements [Observer].
func (l Log) Scheduled(op script.Op) {
	l.logger().Printf("scheduled %v", op)
}

// Applied implements [Observer].
func (l Log) Applied(op script.Op, before, after string) {
	l.logger().Printf("applied %v: %s -> %s", op, before, after)
}

// Failed implements [Observer].
func (l Log) Failed(op script.Op, before string, err error) {
	l.logger().Printf("failed %v on %s: %v", op, before, err)
}

// Tee forwards every call to all observers in order. Nil observers are skipped.
func Tee(observers ...Observer) Observer {
	return tee(slices.DeleteFunc(slices.Clone(observers), func(o Observer) bool { return o == nil }))
}

type tee []Observer

func (t tee) Scheduled(op script.Op) {
	for _, o := range t {
		o.Scheduled(op)
	}
}

func (t tee) Applied(op script.Op, before, after string) {
	for _, o := range t {
		o.Applied(op, before, after)
	}
}

func (t tee) Failed(op script.Op, before string, err error) {
	for _, o := range t {
		o.Failed(op, before, err)
	}
}

// Recorder collects the applied and failed operations until they are flushed. It is safe for
// concurrent use.
type Recorder struct {
	mu  sync.Mutex
	ops []string
}

// Scheduled implements [Observer]. Scheduled operations aren't recorded.
func (r *Recorder) Scheduled(op script.Op) {}

// Applied implements [Observer].
func (r *Recorder) Applied(op script.Op, before, after string) {
	r.record(op.String())
}

// Failed implements [Observer].
func (r *Recorder) Failed(op script.Op, before string, err error) {
	r.record(fmt.Sprintf("%v (Error) %v", op, err))
}

func (r *Recorder) record(s string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ops = append(r.ops, s)
}

// Flush returns the operations recorded since the last flush.
func (r *Recorder) Flush() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	ops := r.ops
	r.ops = nil
	return ops
}
