package observe

import (
	"bytes"
	"errors"
	"log"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"flo.znkr.io/listpatch/script"
)

func TestTrace(t *testing.T) {
	var rec *script.Records
	var buf bytes.Buffer
	tr := NewTrace(&buf, true)

	tr.Scheduled(*rec.Move(0, 2))
	tr.Applied(*rec.Insert(0, 3), "[]", "[C, D, E]")
	tr.Applied(*rec.Change(1, 1, "x"), "[A, B]", "[A, x]")
	tr.Failed(*rec.Remove(2, 1), "[A]", errors.New("malformed operation stream"))

	want := "M(from=0, to=2)\n" +
		"I(position=0, count=3)    [] -> [C, D, E]\n" +
		"C(position=1, count=1, L: x) [A, B] -> [A, x]\n" +
		"R(position=2, count=1)    [A] -> (Error) malformed operation stream\n"
	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Errorf("trace diff (-want, +got):\n%s", diff)
	}
}

func TestTraceColor(t *testing.T) {
	var rec *script.Records
	var buf bytes.Buffer
	NewTrace(&buf, false).Applied(*rec.Insert(0, 1), "[]", "[A]")
	if !bytes.Contains(buf.Bytes(), []byte("\x1b[")) {
		t.Errorf("trace %q isn't colored", buf.String())
	}
}

func TestLog(t *testing.T) {
	var rec *script.Records
	var buf bytes.Buffer
	l := Log{Logger: log.New(&buf, "", 0)}

	l.Scheduled(*rec.Insert(0, 1))
	l.Applied(*rec.Insert(0, 1), "[]", "[A]")
	l.Failed(*rec.Move(0, 1), "[]", errors.New("boom"))

	want := "scheduled I(position=0, count=1)\n" +
		"applied I(position=0, count=1): [] -> [A]\n" +
		"failed M(from=0, to=1) on []: boom\n"
	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Errorf("log diff (-want, +got):\n%s", diff)
	}
}

func TestTeeAndRecorder(t *testing.T) {
	var rec *script.Records
	var buf bytes.Buffer
	r := &Recorder{}
	obs := Tee(NewTrace(&buf, true), nil, r)

	obs.Scheduled(*rec.Insert(0, 1))
	obs.Applied(*rec.Insert(0, 1), "[]", "[A]")
	obs.Failed(*rec.Move(0, 1), "[A]", errors.New("boom"))

	want := []string{"I(position=0, count=1)", "M(from=0, to=1) (Error) boom"}
	if diff := cmp.Diff(want, r.Flush()); diff != "" {
		t.Errorf("recorded diff (-want, +got):\n%s", diff)
	}
	if got := r.Flush(); got != nil {
		t.Errorf("second Flush() = %v, want nil", got)
	}
	if got := strings.Count(buf.String(), "\n"); got != 3 {
		t.Errorf("trace has %d lines, want 3:\n%s", got, buf.String())
	}
}
