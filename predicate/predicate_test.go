package predicate

import (
	"strings"
	"testing"
)

func TestEval(t *testing.T) {
	tests := []struct {
		src      string
		old, new string
		want     bool
	}{
		{"old == new", "a", "a", true},
		{"old == new", "a", "b", false},
		{"key(old) == key(new)", "1: first", "1: second", true},
		{"key(old) == key(new)", "1: first", "2: first", false},
		{"key(old) == key(new)", "plain", "plain", true},
		{"lower(old) == lower(new)", "ABC", "abc", true},
		{"len(old) == len(new)", "ab", "cd", true},
		{`old startsWith "x" && new startsWith "x"`, "xa", "xb", true},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			p, err := Compile(tt.src)
			if err != nil {
				t.Fatalf("Compile(%q) failed: %v", tt.src, err)
			}
			got, err := p.Eval(tt.old, tt.new)
			if err != nil {
				t.Fatalf("Eval(%q, %q) failed: %v", tt.old, tt.new, err)
			}
			if got != tt.want {
				t.Errorf("Eval(%q, %q) = %v, want %v", tt.old, tt.new, got, tt.want)
			}
			if got := p.Func()(tt.old, tt.new); got != tt.want {
				t.Errorf("Func()(%q, %q) = %v, want %v", tt.old, tt.new, got, tt.want)
			}
		})
	}
}

func TestFuncErr(t *testing.T) {
	p := MustCompile("int(old) == int(new)")
	f := p.Func()
	if !f("1", "1") {
		t.Errorf(`Func()("1", "1") = false, want true`)
	}
	if err := p.Err(); err != nil {
		t.Errorf("Err() = %v after successful evaluation, want nil", err)
	}

	if f("a", "1") {
		t.Errorf(`Func()("a", "1") = true, want false`)
	}
	if f("1", "b") {
		t.Errorf(`Func()("1", "b") = true, want false`)
	}
	err := p.Err()
	if err == nil {
		t.Fatalf("Err() = nil after failed evaluation, want error")
	}
	if !strings.Contains(err.Error(), "int(a)") {
		t.Errorf("Err() = %v, want the first error", err)
	}
	if err := p.Err(); err != nil {
		t.Errorf("second Err() = %v, want nil", err)
	}
}

func TestCompileErrors(t *testing.T) {
	for _, src := range []string{
		"old +",         // syntax
		"len(old)",      // not a bool
		"other == new",  // unknown variable
		"key(1) == new", // wrong argument type
	} {
		if _, err := Compile(src); err == nil {
			t.Errorf("Compile(%q) succeeded, want error", src)
		}
	}
}

func TestMustCompile(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Errorf("MustCompile didn't panic")
		}
	}()
	MustCompile("old +")
}
