package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestSplit(t *testing.T) {
	tests := []struct {
		split string
		in    string
		want  []string
	}{
		{"chars", "", []string{}},
		{"chars", "AB✓", []string{"A", "B", "✓"}},
		{"words", "  a b\tc\n", []string{"a", "b", "c"}},
		{"lines", "", []string{}},
		{"lines", "a\n\nb\n", []string{"a", "", "b"}},
	}
	for _, tt := range tests {
		cfg := config{Split: tt.split}
		got, err := cfg.split(tt.in)
		if err != nil {
			t.Fatalf("split(%q) failed: %v", tt.in, err)
		}
		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Errorf("%s: split(%q) diff (-want, +got):\n%s", tt.split, tt.in, diff)
		}
	}

	cfg := config{Split: "bytes"}
	if _, err := cfg.split("x"); err == nil {
		t.Errorf("split with unknown mode succeeded")
	}
}

func TestRunPatch(t *testing.T) {
	tests := []struct {
		name     string
		cfg      config
		old, new string
		want     string
	}{
		{
			name: "insert",
			old:  "",
			new:  "CDE",
			want: "I(position=0, count=3)    [] -> [C, D, E]\nresult: CDE\n",
		},
		{
			name: "remove-deferred",
			cfg:  config{deferred: true},
			old:  "ABCD",
			new:  "",
			want: "R(position=0, count=4)\nR(position=0, count=4)    [A, B, C, D] -> []\nresult: \n",
		},
		{
			name: "json-patch",
			cfg:  config{jsonPatch: true},
			old:  "AB",
			new:  "ABC",
			want: "I(position=2, count=1)    [A, B] -> [A, B, C]\n" +
				"result: ABC\n" +
				`json-patch: [{"op":"add","path":"/-","value":"C"}]` + "\n",
		},
		{
			name: "change-words",
			cfg:  config{Split: "words", Same: "key(old) == key(new)", Content: "old == new"},
			old:  "a:1 b:1",
			new:  "a:2 b:1",
			want: "C(position=0, count=1, L: a:2) [a:1, b:1] -> [a:2, b:1]\nresult: a:2 b:1\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := runPatch(&buf, &tt.cfg, tt.old, tt.new); err != nil {
				t.Fatalf("runPatch failed: %v", err)
			}
			if diff := cmp.Diff(tt.want, buf.String()); diff != "" {
				t.Errorf("output diff (-want, +got):\n%s", diff)
			}
		})
	}
}

func TestRunPatchErrors(t *testing.T) {
	for _, cfg := range []config{
		{Source: "lcs"},
		{Split: "bytes"},
		{Same: "old +"},
		{Content: "len(old)"},
		{Same: "int(old) == int(new)"}, // fails evaluating
	} {
		if err := runPatch(io.Discard, &cfg, "AB", "BA"); err == nil {
			t.Errorf("runPatch with %+v succeeded, want error", cfg)
		}
	}
}

func TestReplay(t *testing.T) {
	for _, file := range []string{"chain.yaml", "rows.yaml"} {
		t.Run(file, func(t *testing.T) {
			sc, err := loadScenario(filepath.Join("testdata", file))
			if err != nil {
				t.Fatalf("loading scenario failed: %v", err)
			}
			var buf bytes.Buffer
			if err := runReplay(&buf, sc, true, true, true); err != nil {
				t.Fatalf("replay failed: %v", err)
			}
			out := buf.String()
			for i := range len(sc.Steps) - 1 {
				want := "step " + string(rune('1'+i)) + ": "
				if !strings.Contains(out, want) {
					t.Errorf("output is missing %q:\n%s", want, out)
				}
			}
			for _, want := range []string{"listpatch_pool_acquire_total", "listpatch_pool_drop_total"} {
				if !strings.Contains(out, want) {
					t.Errorf("output is missing metric %s", want)
				}
			}
		})
	}
}

func TestLoadScenarioErrors(t *testing.T) {
	dir := t.TempDir()
	for name, content := range map[string]string{
		"empty.yaml":   "source: myers\n",
		"invalid.yaml": "steps: [\n",
	} {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
		if _, err := loadScenario(path); err == nil {
			t.Errorf("loading %s succeeded, want error", name)
		}
	}
	if _, err := loadScenario(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Errorf("loading a missing file succeeded, want error")
	}
}

func TestWatcherReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "list.txt")
	cfg := config{Split: "lines"}
	w, err := newWatcher(io.Discard, &cfg, path)
	if err != nil {
		t.Fatalf("newWatcher failed: %v", err)
	}

	if err := w.reload(t.Context()); err == nil {
		t.Errorf("reloading a missing file succeeded, want error")
	}

	for _, content := range []string{"a\nb\n", "b\nc\na\n", ""} {
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
		if err := w.reload(t.Context()); err != nil {
			t.Fatalf("reload failed: %v", err)
		}
		want, _ := cfg.split(content)
		if diff := cmp.Diff(want, w.rec.Items(), cmpopts.EquateEmpty()); diff != "" {
			t.Errorf("live list diff (-want, +got):\n%s", diff)
		}
	}
	if got, want := w.rec.Generation(), uint64(4); got != want {
		t.Errorf("Generation() = %d, want %d", got, want)
	}

	feed, err := w.feed.Render("http://localhost")
	if err != nil {
		t.Fatalf("rendering feed failed: %v", err)
	}
	for _, want := range []string{"Generation 2", "Generation 4", "I(position=0, count=2)"} {
		if !strings.Contains(string(feed), want) {
			t.Errorf("feed is missing %q:\n%s", want, feed)
		}
	}
}

func TestWatcherDeferred(t *testing.T) {
	path := filepath.Join(t.TempDir(), "list.txt")
	cfg := config{Split: "lines", Same: "int(old) == int(new)", deferred: true, plain: true}
	var buf bytes.Buffer
	w, err := newWatcher(&buf, &cfg, path)
	if err != nil {
		t.Fatalf("newWatcher failed: %v", err)
	}

	if err := os.WriteFile(path, []byte("1\n2\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := w.reload(t.Context()); err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	// Deferred operations are traced when they are scheduled and again when they are applied.
	if want := "I(position=0, count=2)\nI(position=0, count=2)"; !strings.Contains(buf.String(), want) {
		t.Errorf("trace is missing the scheduled insertion:\n%s", buf.String())
	}

	if err := os.WriteFile(path, []byte("1\nx\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := w.reload(t.Context()); err == nil || !strings.Contains(err.Error(), "int(x)") {
		t.Errorf("reload with a failing predicate = %v, want an evaluation error", err)
	}
}
