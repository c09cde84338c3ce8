package patch

import (
	"flo.znkr.io/listpatch/observe"
	"flo.znkr.io/listpatch/script"
)

// Option configures how scripts are computed and applied.
type Option func(*options)

// DetectMoves controls whether relocated items are expressed as moves instead of a removal and an
// insertion. Defaults to true.
func DetectMoves(detect bool) Option {
	return func(o *options) {
		o.detectMoves = detect
	}
}

// WithSource sets the source computing edit scripts. Defaults to [script.Myers] using the records
// passed to WithRecords.
func WithSource(src script.Source) Option {
	return func(o *options) {
		o.source = src
	}
}

// WithRecords sets the pools for operation records used by the default source.
func WithRecords(rec *script.Records) Option {
	return func(o *options) {
		o.records = rec
	}
}

// WithObserver sets an observer that is informed about every operation.
func WithObserver(obs observe.Observer) Option {
	return func(o *options) {
		o.observer = obs
	}
}

// Deferred controls whether a [Reconciler] collects all operations of a script into a [Batch]
// before executing them. Patch and PatchBatch choose their discipline themselves and ignore it.
// Defaults to false.
func Deferred(deferred bool) Option {
	return func(o *options) {
		o.deferred = deferred
	}
}

// Verify controls whether the patched sequence is checked against the target after applying a
// script. Defaults to true.
func Verify(verify bool) Option {
	return func(o *options) {
		o.verify = verify
	}
}

type options struct {
	source      script.Source
	records     *script.Records
	detectMoves bool
	observer    observe.Observer
	deferred    bool
	verify      bool
}

func fromOptions(opts []Option) *options {
	o := &options{
		detectMoves: true,
		verify:      true,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(o)
	}

	if o.source == nil {
		o.source = script.Myers{Records: o.records}
	}
	return o
}
