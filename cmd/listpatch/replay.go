package main

import (
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/goccy/go-yaml"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"

	"flo.znkr.io/listpatch/check"
	"flo.znkr.io/listpatch/patch"
	"flo.znkr.io/listpatch/script"
)

// scenario is a replay file:
//
//	source: myers
//	split: chars
//	steps:
//	  - ""
//	  - ABC
//	  - ABCDEFG
type scenario struct {
	Source  string   `yaml:"source"`
	Split   string   `yaml:"split"`
	Same    string   `yaml:"same"`
	Content string   `yaml:"content"`
	Steps   []string `yaml:"steps"`
}

func loadScenario(path string) (*scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario: %v", err)
	}
	var sc scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("parsing scenario %s: %v", path, err)
	}
	if len(sc.Steps) == 0 {
		return nil, fmt.Errorf("scenario %s has no steps", path)
	}
	return &sc, nil
}

func replayCmd() *cobra.Command {
	var (
		trace   bool
		metrics bool
		plain   bool
	)
	cmd := &cobra.Command{
		Use:   "replay SCENARIO",
		Short: "Replay a chain of lists with both disciplines, with and without move detection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, err := loadScenario(args[0])
			if err != nil {
				return err
			}
			return runReplay(cmd.OutOrStdout(), sc, trace, plain, metrics)
		},
	}
	cmd.Flags().BoolVar(&trace, "trace", false, "print every operation")
	cmd.Flags().BoolVar(&plain, "plain", false, "don't color the trace")
	cmd.Flags().BoolVar(&metrics, "metrics", false, "print operation record pool metrics at the end")
	return cmd
}

// variant is one way of applying scripts, each keeps its own live list.
type variant struct {
	name string
	cfg  config
	live patch.Slice[string]
}

func runReplay(w io.Writer, sc *scenario, trace, plain, metrics bool) error {
	rec := script.NewRecords(0)
	base := config{Source: sc.Source, Split: sc.Split, Same: sc.Same, Content: sc.Content, plain: plain}
	cb, err := base.callback()
	if err != nil {
		return err
	}
	traceTo := io.Discard
	if trace {
		traceTo = w
	}

	first, err := base.split(sc.Steps[0])
	if err != nil {
		return err
	}
	var variants []*variant
	for _, deferred := range []bool{false, true} {
		for _, noMoves := range []bool{false, true} {
			v := &variant{cfg: base, live: slices.Clone(first)}
			v.cfg.deferred, v.cfg.noMoves = deferred, noMoves
			v.name = fmt.Sprintf("deferred=%v moves=%v", deferred, !noMoves)
			variants = append(variants, v)
		}
	}

	for i, step := range sc.Steps[1:] {
		target, err := base.split(step)
		if err != nil {
			return err
		}
		for _, v := range variants {
			if trace {
				fmt.Fprintf(w, "--- step %d, %s\n", i+1, v.name)
			}
			opts, err := v.cfg.options(traceTo, rec)
			if err != nil {
				return err
			}
			apply := patch.Patch[string]
			if v.cfg.deferred {
				apply = patch.PatchBatch[string]
			}
			err = apply(&v.live, target, cb, opts...)
			if evalErr := base.evalErr(); evalErr != nil {
				err = evalErr
			}
			if err != nil {
				return fmt.Errorf("step %d, %s: %v", i+1, v.name, err)
			}
		}
		for _, v := range variants[1:] {
			if err := check.Equal([]string(v.live), []string(variants[0].live)); err != nil {
				return fmt.Errorf("step %d: %s disagrees with %s: %v", i+1, v.name, variants[0].name, err)
			}
		}
		fmt.Fprintf(w, "step %d: %q -> %q ok\n", i+1, sc.Steps[i], step)
	}

	if metrics {
		reg := prometheus.NewRegistry()
		if err := reg.Register(rec); err != nil {
			return fmt.Errorf("registering metrics: %v", err)
		}
		mfs, err := reg.Gather()
		if err != nil {
			return fmt.Errorf("gathering metrics: %v", err)
		}
		for _, mf := range mfs {
			if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
				return fmt.Errorf("writing metrics: %v", err)
			}
		}
	}
	return nil
}
