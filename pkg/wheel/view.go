package wheel

import (
	"iter"
	"strings"

	errs "github.com/matzehuels/wheeltool/pkg/errors"
	"github.com/matzehuels/wheeltool/pkg/marker"
)

// View answers dependency queries for one wheel under one environment.
// It is a read-only projection of [Metadata].
type View struct {
	meta    *Metadata
	env     marker.Environment
	markers map[string]marker.Tree
}

// NewView compiles the environment markers of meta for evaluation in env.
func NewView(meta *Metadata, env marker.Environment) (*View, error) {
	v := &View{meta: meta, env: env, markers: make(map[string]marker.Tree)}
	for _, r := range meta.Requirements {
		if r.Environment == "" {
			continue
		}
		if _, ok := v.markers[r.Environment]; ok {
			continue
		}
		tree, err := marker.Parse(r.Environment)
		if err != nil {
			return nil, errs.Wrap(errs.ErrCodeMalformedMarker, err, "requirement %q", r.Name)
		}
		v.markers[r.Environment] = tree
	}
	return v, nil
}

// Metadata returns the metadata the view was built from.
func (v *View) Metadata() *Metadata { return v.meta }

// Applies reports whether r's environment holds. Requirements without an
// environment always apply. An environment not compiled by NewView is parsed
// on each call, and one that does not parse never applies.
func (v *View) Applies(r Requirement) bool {
	if r.Environment == "" {
		return true
	}
	tree, ok := v.markers[r.Environment]
	if !ok {
		var err error
		if tree, err = marker.Parse(r.Environment); err != nil {
			return false
		}
	}
	return tree.Evaluate(v.env)
}

// Requirements yields the requirements belonging to extra ("" for the
// unconditional ones) whose environment holds.
func (v *View) Requirements(extra string) iter.Seq[Requirement] {
	want := marker.NormalizeExtra(extra)
	return func(yield func(Requirement) bool) {
		for _, r := range v.meta.Requirements {
			if marker.NormalizeExtra(r.Extra) != want || !v.Applies(r) {
				continue
			}
			if !yield(r) {
				return
			}
		}
	}
}

// Dependencies yields the bare package names of [View.Requirements].
func (v *View) Dependencies(extra string) iter.Seq[string] {
	return func(yield func(string) bool) {
		for r := range v.Requirements(extra) {
			if !yield(BareName(r.Name)) {
				return
			}
		}
	}
}

// Extras returns every extra the wheel declares.
func (v *View) Extras() []string {
	return v.meta.Extras
}

// Report is the dependency summary printed for build systems.
type Report struct {
	Requires []string            `json:"requires"`
	Extras   map[string][]string `json:"extras"`
}

// Report collects the unconditional dependencies and those of every extra.
// Names within each list are unique and keep declaration order.
func (v *View) Report() Report {
	r := Report{
		Requires: collect(v.Dependencies("")),
		Extras:   make(map[string][]string, len(v.meta.Extras)),
	}
	for _, e := range v.meta.Extras {
		r.Extras[e] = collect(v.Dependencies(e))
	}
	return r
}

func collect(seq iter.Seq[string]) []string {
	out := []string{}
	seen := make(map[string]bool)
	for name := range seq {
		if !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}
	return out
}

// BareName strips version specifiers, extras and markers from a requirement,
// e.g. "foo (>=1.0,<2.0)" becomes "foo".
func BareName(spec string) string {
	spec = strings.TrimSpace(spec)
	if i := strings.IndexAny(spec, " ><=!~()[;,"); i >= 0 {
		return spec[:i]
	}
	return spec
}
