package wheel

import (
	"bufio"
	"bytes"
	"encoding/json"
	"strings"

	"github.com/tidwall/jsonc"

	errs "github.com/matzehuels/wheeltool/pkg/errors"
	"github.com/matzehuels/wheeltool/pkg/marker"
)

// Format identifies the metadata file a wheel carries.
type Format int

const (
	FormatStructured Format = iota + 1 // metadata.json
	FormatLegacy                       // METADATA (RFC 822 style)
)

// String returns the file name the format is read from.
func (f Format) String() string {
	switch f {
	case FormatStructured:
		return structuredFile
	case FormatLegacy:
		return legacyFile
	}
	return "unknown"
}

// LegacyPolicy selects how marker conditions other than extra are treated
// in METADATA files.
type LegacyPolicy int

const (
	// LegacyEvaluate keeps residual conditions as the requirement's
	// environment so they are evaluated like metadata.json environments.
	LegacyEvaluate LegacyPolicy = iota

	// LegacyCompat keeps only requirements whose marker opens with an
	// extra == '...' comparison and discards the rest of the marker.
	// Everything else is skipped, including markers that test an extra
	// after another condition.
	LegacyCompat
)

func (p LegacyPolicy) String() string {
	if p == LegacyCompat {
		return "compat"
	}
	return "evaluate"
}

// ParseOptions configures metadata parsing.
type ParseOptions struct {
	Legacy LegacyPolicy                 // Marker policy for METADATA (default: LegacyEvaluate)
	Logger func(string, ...any)         // Receives skipped requirements (optional)
	OnSkip func(spec string, err error) // Called for each requirement dropped under LegacyCompat (optional)
}

// WithDefaults returns a copy of ParseOptions with zero values replaced by defaults.
func (o ParseOptions) WithDefaults() ParseOptions {
	opts := o
	if opts.Logger == nil {
		opts.Logger = func(string, ...any) {}
	}
	if opts.OnSkip == nil {
		opts.OnSkip = func(string, error) {}
	}
	return opts
}

// Requirement is one declared dependency.
type Requirement struct {
	Name        string `json:"name"`                  // Requirement text as declared, e.g. "foo (>=1.0,<2.0)"
	Extra       string `json:"extra,omitempty"`       // Extra the requirement belongs to; "" for unconditional
	Environment string `json:"environment,omitempty"` // Residual marker; "" means always applies
}

// Metadata is the normalized dependency metadata of a wheel.
//
// Extras lists every extra name in order of first appearance, each once,
// and includes every extra referenced by Requirements.
type Metadata struct {
	Name         string        `json:"name"`
	Version      string        `json:"version,omitempty"`
	Requirements []Requirement `json:"requirements"`
	Extras       []string      `json:"extras"`
}

func (m *Metadata) addExtra(name string) {
	if name == "" {
		return
	}
	for _, e := range m.Extras {
		if e == name {
			return
		}
	}
	m.Extras = append(m.Extras, name)
}

func (m *Metadata) add(r Requirement) {
	m.Requirements = append(m.Requirements, r)
	m.addExtra(r.Extra)
}

// Validate checks that every extra name is well formed, that every
// environment marker parses and that every extra referenced by a
// requirement is listed in Extras.
func (m *Metadata) Validate() error {
	listed := make(map[string]bool, len(m.Extras))
	for _, e := range m.Extras {
		if err := errs.ValidateExtraName(e); err != nil {
			return errs.Wrap(errs.ErrCodeMalformedMetadata, err, "extras")
		}
		listed[e] = true
	}
	for _, r := range m.Requirements {
		if r.Environment != "" {
			if _, err := marker.Parse(r.Environment); err != nil {
				return errs.Wrap(errs.ErrCodeMalformedMarker, err, "requirement %q", r.Name)
			}
		}
		if r.Extra != "" && !listed[r.Extra] {
			return errs.New(errs.ErrCodeMalformedMetadata, "requirement %q references undeclared extra %q", r.Name, r.Extra)
		}
	}
	return nil
}

// ParseMetadata parses raw metadata in the given format.
func ParseMetadata(data []byte, format Format, opts ParseOptions) (*Metadata, error) {
	opts = opts.WithDefaults()

	var (
		meta *Metadata
		err  error
	)
	switch format {
	case FormatStructured:
		meta, err = parseStructured(data)
	case FormatLegacy:
		meta, err = parseLegacy(data, opts)
	default:
		return nil, errs.New(errs.ErrCodeInvalidInput, "unknown metadata format %d", format)
	}
	if err != nil {
		return nil, err
	}
	if err := meta.Validate(); err != nil {
		return nil, err
	}
	return meta, nil
}

type structuredMetadata struct {
	Name        string        `json:"name"`
	Version     string        `json:"version"`
	RunRequires []runRequires `json:"run_requires"`
	Extras      []string      `json:"extras"`
}

type runRequires struct {
	Extra       string   `json:"extra"`
	Environment string   `json:"environment"`
	Requires    []string `json:"requires"`
}

// parseStructured reads metadata.json. Requirements there are already split
// by extra and environment.
func parseStructured(data []byte) (*Metadata, error) {
	var raw structuredMetadata
	if err := json.Unmarshal(jsonc.ToJSON(data), &raw); err != nil {
		return nil, errs.Wrap(errs.ErrCodeMalformedMetadata, err, "decode %s", structuredFile)
	}

	meta := &Metadata{Name: raw.Name, Version: raw.Version, Requirements: []Requirement{}, Extras: []string{}}
	for _, e := range raw.Extras {
		meta.addExtra(e)
	}
	for _, group := range raw.RunRequires {
		env := strings.TrimSpace(group.Environment)
		for _, spec := range group.Requires {
			meta.add(Requirement{Name: strings.TrimSpace(spec), Extra: group.Extra, Environment: env})
		}
	}
	return meta, nil
}

// parseLegacy reads the header section of a METADATA file.
func parseLegacy(data []byte, opts ParseOptions) (*Metadata, error) {
	meta := &Metadata{Requirements: []Requirement{}, Extras: []string{}}
	haveName := false

	headers, err := readHeaders(data)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeMalformedMetadata, err, "read %s", legacyFile)
	}
	for _, h := range headers {
		switch strings.ToLower(h.key) {
		case "name":
			meta.Name = h.value
			haveName = h.value != ""
		case "version":
			meta.Version = h.value
		case "provides-extra":
			meta.addExtra(h.value)
		case "requires-dist":
			req, ok, err := parseRequiresDist(h.value, opts)
			if err != nil {
				return nil, err
			}
			if ok {
				meta.add(req)
			}
		}
	}

	if !haveName {
		return nil, errs.New(errs.ErrCodeMalformedMetadata, "%s has no Name field", legacyFile)
	}
	return meta, nil
}

// parseRequiresDist converts one Requires-Dist value. ok is false when the
// requirement is skipped under LegacyCompat.
func parseRequiresDist(value string, opts ParseOptions) (req Requirement, ok bool, err error) {
	spec, rawMarker, hasMarker := strings.Cut(value, ";")
	spec = strings.TrimSpace(spec)
	if !hasMarker {
		return Requirement{Name: spec}, true, nil
	}

	tree, err := marker.Parse(strings.TrimSpace(rawMarker))
	if err != nil {
		return Requirement{}, false, errs.Wrap(errs.ErrCodeMalformedMarker, err, "Requires-Dist %q", value)
	}
	res, err := marker.SplitExtra(tree)
	if err != nil {
		return Requirement{}, false, errs.Wrap(errs.ErrCodeMalformedMarker, err, "Requires-Dist %q", value)
	}

	if opts.Legacy == LegacyCompat {
		if res.Extra == "" || !leadingExtra(tree) {
			skip := errs.New(errs.ErrCodeUnsupportedMarker, "condition %q does not start with an extra", tree)
			opts.Logger("skipping requirement %s: %v", spec, skip)
			opts.OnSkip(spec, skip)
			return Requirement{}, false, nil
		}
		return Requirement{Name: spec, Extra: res.Extra}, true, nil
	}
	return Requirement{Name: spec, Extra: res.Extra, Environment: res.Remaining.String()}, true, nil
}

// leadingExtra reports whether the first item of tree is an extra == '...'
// comparison.
func leadingExtra(tree marker.Tree) bool {
	if len(tree) == 0 || tree[0].Kind != marker.KindTerm {
		return false
	}
	t := tree[0].Term
	return t.Left.Variable && t.Left.Value == "extra" && t.Op == "==" && !t.Right.Variable
}

type header struct {
	key, value string
}

// readHeaders returns the "Key: value" fields up to the blank line that ends
// the header block. Blank lines before the first field are skipped. Indented
// lines continue the previous field.
func readHeaders(data []byte) ([]header, error) {
	var out []header
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			if len(out) == 0 {
				continue
			}
			break
		}
		if line[0] == ' ' || line[0] == '\t' {
			if n := len(out); n > 0 {
				out[n-1].value += " " + strings.TrimSpace(line)
			}
			continue
		}
		key, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		out = append(out, header{key: strings.TrimSpace(key), value: strings.TrimSpace(value)})
	}
	return out, sc.Err()
}
