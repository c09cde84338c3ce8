package main

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"flo.znkr.io/listpatch/check"
	"flo.znkr.io/listpatch/patch"
	"flo.znkr.io/listpatch/rfc6902"
	"flo.znkr.io/listpatch/script"
)

func patchCmd() *cobra.Command {
	var cfg config
	cmd := &cobra.Command{
		Use:   "patch OLD NEW",
		Short: "Patch OLD into NEW and print every operation",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPatch(cmd.OutOrStdout(), &cfg, args[0], args[1])
		},
	}
	cfg.flags(cmd.Flags(), "chars")
	cmd.Flags().BoolVar(&cfg.jsonPatch, "json-patch", false, "also print the script as JSON Patch document")
	return cmd
}

func runPatch(w io.Writer, cfg *config, old, new string) error {
	cb, err := cfg.callback()
	if err != nil {
		return err
	}
	seq, err := cfg.split(old)
	if err != nil {
		return err
	}
	target, err := cfg.split(new)
	if err != nil {
		return err
	}
	opts, err := cfg.options(w, script.NewRecords(0))
	if err != nil {
		return err
	}

	live := patch.Slice[string](slices.Clone(seq))
	rec := rfc6902.NewRecorder[string](&live)
	apply := patch.Patch[string]
	if cfg.deferred {
		apply = patch.PatchBatch[string]
	}
	err = apply(rec, target, cb, opts...)
	if evalErr := cfg.evalErr(); evalErr != nil {
		err = evalErr
	}
	if err != nil {
		return fmt.Errorf("patching: %v", err)
	}
	fmt.Fprintf(w, "result: %s\n", join(cfg, live))

	if cfg.jsonPatch {
		doc, err := rec.Document()
		if err != nil {
			return err
		}
		// Make sure the document does what the script did.
		got, err := rfc6902.Apply(doc, seq)
		if err != nil {
			return err
		}
		if err := check.Equal(got, target); err != nil {
			return fmt.Errorf("JSON Patch document is inconsistent: %v", err)
		}
		fmt.Fprintf(w, "json-patch: %s\n", doc)
	}
	return nil
}

func join(cfg *config, items []string) string {
	switch cfg.Split {
	case "words":
		return strings.Join(items, " ")
	case "lines":
		return strings.Join(items, "\n")
	default:
		return strings.Join(items, "")
	}
}
