package marker

import (
	"reflect"
	"testing"

	errs "github.com/matzehuels/wheeltool/pkg/errors"
)

func TestSplitExtra(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantExtra string
		wantRest  string
	}{
		{"only extra", `extra == "dev"`, "dev", ""},
		{"single quotes", `extra == 'tests'`, "tests", ""},
		{"extra last", `python_version < "3" and extra == "tests"`, "tests", `python_version < "3"`},
		{"extra first", `extra == "tests" and python_version < "3"`, "tests", `python_version < "3"`},
		{"extra middle", `os_name == "nt" and extra == "win" and python_version >= "3.8"`, "win", `os_name == "nt" and python_version >= "3.8"`},
		{"reversed operands", `"dev" == extra`, "dev", ""},
		{"extra in group", `(python_version < "3.8" and extra == "compat") or os_name == "nt"`, "compat", `(python_version < "3.8") or os_name == "nt"`},
		{"group emptied at end", `python_version >= "3.6" and (extra == "docs")`, "docs", `python_version >= "3.6"`},
		{"group emptied at start", `((extra == "a")) and os_name == "nt"`, "a", `os_name == "nt"`},
		{"nested groups kept", `os_name == "nt" and ((sys_platform == "win32" and extra == "x"))`, "x", `os_name == "nt" and ((sys_platform == "win32"))`},
		{"no extra", `python_version < "3.8" or (os_name == "nt" and platform_machine == "x86_64")`, "", `python_version < "3.8" or (os_name == "nt" and platform_machine == "x86_64")`},
		{"extra inequality kept", `extra != "dev" and os_name == "nt"`, "", `extra != "dev" and os_name == "nt"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := SplitExtra(MustParse(tt.input))
			if err != nil {
				t.Fatalf("SplitExtra(%q) error: %v", tt.input, err)
			}
			if res.Extra != tt.wantExtra {
				t.Errorf("Extra = %q, want %q", res.Extra, tt.wantExtra)
			}
			if got := res.Remaining.String(); got != tt.wantRest {
				t.Errorf("Remaining = %q, want %q", got, tt.wantRest)
			}
			assertWellFormed(t, res.Remaining)

			if tt.wantRest == "" {
				return
			}
			reparsed, err := Parse(res.Remaining.String())
			if err != nil {
				t.Fatalf("remaining marker does not re-parse: %v", err)
			}
			again, err := SplitExtra(reparsed)
			if err != nil {
				t.Fatalf("second split failed: %v", err)
			}
			if again.Extra != "" {
				t.Errorf("remaining marker still names extra %q", again.Extra)
			}
		})
	}
}

func TestSplitExtra_NoExtraIsIdentity(t *testing.T) {
	inputs := []string{
		`os_name == "nt"`,
		`python_version >= "3.6" and (sys_platform == "linux" or sys_platform == "darwin")`,
		`"arm" in platform_machine or python_full_version < "3.9.2"`,
	}
	for _, in := range inputs {
		tree := MustParse(in)
		res, err := SplitExtra(tree)
		if err != nil {
			t.Fatalf("SplitExtra(%q) error: %v", in, err)
		}
		if res.Extra != "" {
			t.Errorf("Extra = %q, want empty", res.Extra)
		}
		if !reflect.DeepEqual(res.Remaining, tree) {
			t.Errorf("Remaining = %#v, want %#v", res.Remaining, tree)
		}
		if res.Remaining.String() != tree.String() {
			t.Errorf("serialized %q, want %q", res.Remaining.String(), tree.String())
		}
	}
}

func TestSplitExtra_DoesNotModifyInput(t *testing.T) {
	tree := MustParse(`os_name == "nt" and (extra == "x" or sys_platform == "win32")`)
	before := tree.String()
	if _, err := SplitExtra(tree); err != nil {
		t.Fatal(err)
	}
	if tree.String() != before {
		t.Errorf("input changed to %q", tree.String())
	}
}

func TestSplitExtra_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"two extras with or", `extra == "docs" or extra == "dev"`},
		{"two extras in group", `(extra == "docs" or extra == "dev")`},
		{"extra in separate groups", `(extra == "a" and os_name == "nt") or (extra == "b")`},
		{"empty extra", `extra == ""`},
		{"extra against variable", `extra == os_name`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := SplitExtra(MustParse(tt.input))
			if err == nil {
				t.Fatalf("SplitExtra(%q) expected error", tt.input)
			}
			if !errs.Is(err, errs.ErrCodeMalformedMarker) {
				t.Errorf("expected MALFORMED_MARKER, got %v", err)
			}
		})
	}
}

func TestSplitExtra_UnknownKind(t *testing.T) {
	_, err := SplitExtra(Tree{{}})
	if !errs.Is(err, errs.ErrCodeInternal) {
		t.Errorf("expected INTERNAL_ERROR, got %v", err)
	}
}

func TestSplitExtra_Variables(t *testing.T) {
	tests := []struct {
		marker string
		want   []string
	}{
		{`extra == 'socks' and python_version >= "3.7"`, []string{"python_version"}},
		{`extra == 'socks'`, nil},
		{`(os_name == "nt" or "win32" == sys_platform) and os_name != "posix" and extra == 'x'`, []string{"os_name", "sys_platform"}},
	}
	for _, tt := range tests {
		t.Run(tt.marker, func(t *testing.T) {
			res, err := SplitExtra(MustParse(tt.marker))
			if err != nil {
				t.Fatal(err)
			}
			if got := res.Remaining.Variables(); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Variables() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSplitExtra_Empty(t *testing.T) {
	res, err := SplitExtra(nil)
	if err != nil {
		t.Fatal(err)
	}
	if res.Extra != "" || len(res.Remaining) != 0 || res.Remaining.String() != "" {
		t.Errorf("SplitExtra(nil) = %+v", res)
	}
}

// assertWellFormed checks that operands and connectives alternate, that the
// tree neither starts nor ends with a connective, and that no group is empty.
func assertWellFormed(t *testing.T, tree Tree) {
	t.Helper()
	for i, it := range tree {
		if wantOp := i%2 == 1; (it.Kind == KindOp) != wantOp {
			t.Errorf("item %d (%s) breaks operand/connective alternation in %q", i, it, tree)
		}
		if it.Kind == KindGroup {
			if len(it.Group) == 0 {
				t.Errorf("empty group in %q", tree)
			}
			assertWellFormed(t, it.Group)
		}
	}
	if n := len(tree); n > 0 && tree[n-1].Kind == KindOp {
		t.Errorf("tree %q ends with a connective", tree)
	}
}
