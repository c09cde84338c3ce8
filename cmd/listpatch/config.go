package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/pflag"

	"flo.znkr.io/listpatch/observe"
	"flo.znkr.io/listpatch/patch"
	"flo.znkr.io/listpatch/predicate"
	"flo.znkr.io/listpatch/script"
)

// config holds the settings shared by all commands.
type config struct {
	Source  string
	Split   string
	Same    string
	Content string

	noMoves   bool
	deferred  bool
	plain     bool
	jsonPatch bool

	preds []*predicate.Predicate // compiled by callback
}

func (c *config) flags(fs *pflag.FlagSet, split string) {
	fs.StringVar(&c.Source, "source", "myers", "edit script source: myers, znkr or dmp")
	fs.StringVar(&c.Split, "split", split, "how to split input into items: chars, words or lines")
	fs.StringVar(&c.Same, "same", "", "identity expression over old and new, defaults to equality")
	fs.StringVar(&c.Content, "content", "", "content expression over old and new, items never change if empty")
	fs.BoolVar(&c.noMoves, "no-moves", false, "express relocated items as removal and insertion")
	fs.BoolVar(&c.deferred, "deferred", false, "collect all operations before executing them")
	fs.BoolVar(&c.plain, "plain", false, "don't color the trace")
}

func (c *config) source(rec *script.Records) (script.Source, error) {
	switch c.Source {
	case "", "myers":
		return script.Myers{Records: rec}, nil
	case "znkr":
		return script.Znkr{Records: rec}, nil
	case "dmp":
		return script.DiffMatchPatch{Records: rec}, nil
	default:
		return nil, fmt.Errorf("unknown source %q", c.Source)
	}
}

func (c *config) split(s string) ([]string, error) {
	switch c.Split {
	case "", "chars":
		return strings.Split(s, ""), nil
	case "words":
		return strings.Fields(s), nil
	case "lines":
		s = strings.TrimSuffix(s, "\n")
		if s == "" {
			return []string{}, nil
		}
		return strings.Split(s, "\n"), nil
	default:
		return nil, fmt.Errorf("unknown split mode %q", c.Split)
	}
}

func (c *config) callback() (patch.Callback[string], error) {
	cb := patch.Equal[string]()
	if c.Same != "" {
		p, err := predicate.Compile(c.Same)
		if err != nil {
			return cb, err
		}
		cb.SameIdentity = p.Func()
		c.preds = append(c.preds, p)
	}
	if c.Content != "" {
		p, err := predicate.Compile(c.Content)
		if err != nil {
			return cb, err
		}
		cb.SameContent = p.Func()
		c.preds = append(c.preds, p)
		cb.Payload = func(_, b string) any { return b }
	}
	return cb, nil
}

// evalErr returns the first error of evaluating the predicates created by callback.
func (c *config) evalErr() error {
	for _, p := range c.preds {
		if err := p.Err(); err != nil {
			return err
		}
	}
	return nil
}

// options returns the patch options for c. The trace goes to w.
func (c *config) options(w io.Writer, rec *script.Records) ([]patch.Option, error) {
	src, err := c.source(rec)
	if err != nil {
		return nil, err
	}
	return []patch.Option{
		patch.WithSource(src),
		patch.DetectMoves(!c.noMoves),
		patch.Deferred(c.deferred),
		patch.WithObserver(c.observer(w)),
	}, nil
}

func (c *config) observer(w io.Writer) observe.Observer {
	return observe.NewTrace(w, c.plain || !terminal(w))
}

func terminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
