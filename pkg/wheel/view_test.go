package wheel

import (
	"encoding/json"
	"reflect"
	"slices"
	"testing"

	errs "github.com/matzehuels/wheeltool/pkg/errors"
)

func TestBareName(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"six", "six"},
		{"foo (>=1.0,<2.0)", "foo"},
		{"foo(>=1.0)", "foo"},
		{"grpcio>=1.2.0", "grpcio"},
		{"requests[security]>=2.0", "requests"},
		{"zope.interface", "zope.interface"},
		{"PySocks!=1.5.7", "PySocks"},
		{"attrs~=18.1", "attrs"},
		{"idna==2.8", "idna"},
		{"typing<4", "typing"},
		{"  padded  ", "padded"},
		{"pkg @ https://example.com/pkg.whl", "pkg"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := BareName(tt.input); got != tt.want {
				t.Errorf("BareName(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestView_Dependencies_Lazy(t *testing.T) {
	meta := &Metadata{
		Name: "x",
		Requirements: []Requirement{
			{Name: "a"}, {Name: "b"}, {Name: "c"},
		},
	}
	v := mustView(t, meta, linuxEnv())

	var got []string
	for name := range v.Dependencies("") {
		got = append(got, name)
		if name == "b" {
			break
		}
	}
	if !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("got %v, want [a b]", got)
	}
}

func TestView_Dependencies_ExtraMatching(t *testing.T) {
	meta := &Metadata{
		Name: "x",
		Requirements: []Requirement{
			{Name: "core"},
			{Name: "chardet", Extra: "use_chardet_on_py3"},
		},
		Extras: []string{"use_chardet_on_py3"},
	}
	v := mustView(t, meta, linuxEnv())

	if got := slices.Collect(v.Dependencies("use-chardet-on-py3")); !reflect.DeepEqual(got, []string{"chardet"}) {
		t.Errorf("normalized extra lookup = %v", got)
	}
	if got := slices.Collect(v.Dependencies("unknown")); len(got) != 0 {
		t.Errorf("unknown extra = %v, want none", got)
	}
	if got := slices.Collect(v.Dependencies("")); !reflect.DeepEqual(got, []string{"core"}) {
		t.Errorf("unconditional = %v", got)
	}
}

func TestView_Applies(t *testing.T) {
	meta := &Metadata{
		Name: "x",
		Requirements: []Requirement{
			{Name: "always"},
			{Name: "py2", Environment: `python_version < "3"`},
			{Name: "linux", Environment: `sys_platform == "linux"`},
		},
	}
	v := mustView(t, meta, linuxEnv())

	want := map[string]bool{"always": true, "py2": false, "linux": true}
	for _, r := range meta.Requirements {
		if got := v.Applies(r); got != want[r.Name] {
			t.Errorf("Applies(%s) = %v, want %v", r.Name, got, want[r.Name])
		}
	}
}

func TestView_Applies_UncompiledEnvironment(t *testing.T) {
	v := mustView(t, &Metadata{Name: "x"}, linuxEnv())
	tests := []struct {
		env  string
		want bool
	}{
		{`sys_platform == "win32"`, false},
		{`sys_platform == "linux" and python_version >= "3.8"`, true},
		{`os_name == "nt" or platform_machine == "x86_64"`, true},
		{`python_version`, false},
		{`(`, false},
	}
	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			if got := v.Applies(Requirement{Name: "y", Environment: tt.env}); got != tt.want {
				t.Errorf("Applies(%q) = %v, want %v", tt.env, got, tt.want)
			}
		})
	}
}

func TestNewView_BadEnvironment(t *testing.T) {
	meta := &Metadata{Name: "x", Requirements: []Requirement{{Name: "y", Environment: "python_version"}}}
	if _, err := NewView(meta, linuxEnv()); !errs.Is(err, errs.ErrCodeMalformedMarker) {
		t.Errorf("expected MALFORMED_MARKER, got %v", err)
	}
}

func TestView_Report(t *testing.T) {
	meta := &Metadata{
		Name: "x",
		Requirements: []Requirement{
			{Name: "six (>=1.10)"},
			{Name: "six", Environment: `python_version >= "3"`},
			{Name: "futures", Environment: `python_version < "3"`},
			{Name: "pytest", Extra: "tests"},
		},
		Extras: []string{"tests", "docs"},
	}
	v := mustView(t, meta, linuxEnv())

	r := v.Report()
	if !reflect.DeepEqual(r.Requires, []string{"six"}) {
		t.Errorf("Requires = %v, want [six]", r.Requires)
	}
	want := map[string][]string{"tests": {"pytest"}, "docs": {}}
	if !reflect.DeepEqual(r.Extras, want) {
		t.Errorf("Extras = %v, want %v", r.Extras, want)
	}

	data, err := json.Marshal(r)
	if err != nil {
		t.Fatal(err)
	}
	if got := string(data); got != `{"requires":["six"],"extras":{"docs":[],"tests":["pytest"]}}` {
		t.Errorf("json = %s", got)
	}
}

func TestView_Report_Empty(t *testing.T) {
	v := mustView(t, &Metadata{Name: "x"}, linuxEnv())
	data, err := json.Marshal(v.Report())
	if err != nil {
		t.Fatal(err)
	}
	if got := string(data); got != `{"requires":[],"extras":{}}` {
		t.Errorf("json = %s", got)
	}
}
