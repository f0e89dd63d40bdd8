package marker

import (
	"maps"
	"regexp"
	"runtime"
	"strings"
)

// DefaultPythonVersion is the interpreter version assumed when nothing else
// is configured.
const DefaultPythonVersion = "3.12.0"

// Environment maps marker variable names to their values.
type Environment map[string]string

// DefaultEnvironment describes the running platform with a CPython
// interpreter of [DefaultPythonVersion].
func DefaultEnvironment() Environment {
	env := Environment{
		"os_name":                        "posix",
		"sys_platform":                   runtime.GOOS,
		"platform_system":                platformSystem(runtime.GOOS),
		"platform_machine":               platformMachine(runtime.GOOS, runtime.GOARCH),
		"platform_release":               "",
		"platform_version":               "",
		"implementation_name":            "cpython",
		"platform_python_implementation": "CPython",
		"extra":                          "",
	}
	if runtime.GOOS == "windows" {
		env["os_name"] = "nt"
		env["sys_platform"] = "win32"
	}
	return env.WithPython(DefaultPythonVersion)
}

// WithPython returns a copy of e describing the given interpreter version.
// A version of "" leaves the Python variables unchanged.
func (e Environment) WithPython(version string) Environment {
	out := maps.Clone(e)
	if out == nil {
		out = Environment{}
	}
	if version == "" {
		return out
	}
	full := version
	parts := strings.SplitN(version, ".", 3)
	if len(parts) == 2 {
		full = version + ".0"
	}
	short := version
	if len(parts) >= 2 {
		short = parts[0] + "." + parts[1]
	}
	out["python_version"] = short
	out["python_full_version"] = full
	out["implementation_version"] = full
	return out
}

// With returns a copy of e with overrides applied. Legacy variable spellings
// in overrides are accepted; the canonical spelling wins when both are given.
//
// A sys_platform override first derives the dependent platform variables
// through [Environment.WithPlatform], then the remaining overrides are
// applied on top, so explicit values always win.
func (e Environment) With(overrides map[string]string) Environment {
	set := canonicalize(overrides)
	out := maps.Clone(e)
	if out == nil {
		out = Environment{}
	}
	if p, ok := set["sys_platform"]; ok {
		out = out.WithPlatform(p)
	}
	for k, v := range set {
		if k == "python_version" || k == "python_full_version" {
			continue
		}
		out[k] = v
	}
	if v := set["python_full_version"]; v != "" {
		return out.WithPython(v)
	}
	return out.WithPython(set["python_version"])
}

func canonicalize(overrides map[string]string) map[string]string {
	set := make(map[string]string, len(overrides))
	for k, v := range overrides {
		name, ok := variables[k]
		if !ok {
			set[k] = v
			continue
		}
		if name != k {
			if _, explicit := overrides[name]; explicit {
				continue
			}
		}
		set[name] = v
	}
	return set
}

// WithPlatform returns a copy of e targeting the given sys.platform value
// (such as "win32", "darwin" or "linux"). os_name, platform_system and
// platform_machine are derived from it, with the machine's architecture
// carried over. An unrecognized platform only sets sys_platform.
func (e Environment) WithPlatform(sysPlatform string) Environment {
	out := maps.Clone(e)
	if out == nil {
		out = Environment{}
	}
	out["sys_platform"] = sysPlatform
	goos := platformGOOS(sysPlatform)
	if goos == "" {
		return out
	}
	out["os_name"] = "posix"
	if goos == "windows" {
		out["os_name"] = "nt"
	}
	out["platform_system"] = platformSystem(goos)
	if m, ok := out["platform_machine"]; ok {
		if arch, known := machineArch[m]; known {
			out["platform_machine"] = platformMachine(goos, arch)
		}
	}
	return out
}

// platformGOOS maps a sys.platform value to its GOOS, or "" if unknown.
func platformGOOS(sysPlatform string) string {
	switch p := strings.ToLower(sysPlatform); {
	case p == "win32":
		return "windows"
	case p == "darwin":
		return "darwin"
	case strings.HasPrefix(p, "linux"):
		return "linux"
	case strings.HasPrefix(p, "freebsd"):
		return "freebsd"
	case strings.HasPrefix(p, "openbsd"):
		return "openbsd"
	case strings.HasPrefix(p, "netbsd"):
		return "netbsd"
	}
	return ""
}

// machineArch maps platform_machine spellings back to GOARCH.
var machineArch = map[string]string{
	"x86_64":  "amd64",
	"AMD64":   "amd64",
	"amd64":   "amd64",
	"aarch64": "arm64",
	"arm64":   "arm64",
	"ARM64":   "arm64",
	"i686":    "386",
	"i386":    "386",
	"x86":     "386",
}

func (e Environment) resolve(o Operand) string {
	if o.Variable {
		return e[o.Value]
	}
	return o.Value
}

var extraSeparators = regexp.MustCompile(`[-_.]+`)

// NormalizeExtra canonicalizes an extra name (PEP 685): lowercase, with runs
// of '-', '_' and '.' collapsed to a single '-'.
func NormalizeExtra(name string) string {
	return extraSeparators.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), "-")
}

func platformSystem(goos string) string {
	switch goos {
	case "linux":
		return "Linux"
	case "darwin":
		return "Darwin"
	case "windows":
		return "Windows"
	case "freebsd":
		return "FreeBSD"
	case "openbsd":
		return "OpenBSD"
	case "netbsd":
		return "NetBSD"
	}
	return goos
}

func platformMachine(goos, goarch string) string {
	switch goarch {
	case "amd64":
		if goos == "windows" {
			return "AMD64"
		}
		return "x86_64"
	case "arm64":
		if goos == "linux" {
			return "aarch64"
		}
		if goos == "windows" {
			return "ARM64"
		}
		return "arm64"
	case "386":
		if goos == "windows" {
			return "x86"
		}
		return "i686"
	}
	return goarch
}
