// Package predicate compiles identity and content predicates over strings from expressions.
//
// An expression sees the two items as old and new and must evaluate to a bool:
//
//	key(old) == key(new)
//	lower(old) == lower(new)
//
// Besides the expr builtins, key(s) returns the part of s before the first ':', or all of s.
package predicate

import (
	"fmt"
	"strings"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

type env struct {
	Old string `expr:"old"`
	New string `expr:"new"`
}

// Predicate is a compiled expression.
type Predicate struct {
	src string
	prg *vm.Program

	mu  sync.Mutex
	err error // first error seen by Func since the last call to Err
}

// Compile compiles src.
func Compile(src string) (*Predicate, error) {
	prg, err := expr.Compile(src, exprOpts()...)
	if err != nil {
		return nil, fmt.Errorf("compiling predicate %q: %v", src, err)
	}
	return &Predicate{src: src, prg: prg}, nil
}

// MustCompile is like Compile but panics if src doesn't compile.
func MustCompile(src string) *Predicate {
	p, err := Compile(src)
	if err != nil {
		panic(err)
	}
	return p
}

func exprOpts() []expr.Option {
	return []expr.Option{
		expr.Env(env{}),
		expr.AsBool(),
		expr.Function("key", func(params ...any) (any, error) {
			k, _, _ := strings.Cut(params[0].(string), ":")
			return k, nil
		},
			new(func(string) string)),
	}
}

// Eval evaluates the predicate for old and new.
func (p *Predicate) Eval(old, new string) (bool, error) {
	res, err := expr.Run(p.prg, env{Old: old, New: new})
	if err != nil {
		return false, fmt.Errorf("evaluating predicate %q: %v", p.src, err)
	}
	return res.(bool), nil
}

// Func returns the predicate as a function. Evaluation errors count as false, the first one is
// kept for Err.
func (p *Predicate) Func() func(old, new string) bool {
	return func(old, new string) bool {
		ok, err := p.Eval(old, new)
		if err != nil {
			p.mu.Lock()
			if p.err == nil {
				p.err = err
			}
			p.mu.Unlock()
			return false
		}
		return ok
	}
}

// Err returns the first evaluation error of a function returned by Func since the previous call
// to Err, or nil.
func (p *Predicate) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	err := p.err
	p.err = nil
	return err
}

func (p *Predicate) String() string { return p.src }
