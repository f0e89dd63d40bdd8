package wheel

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zip"

	"github.com/matzehuels/wheeltool/pkg/marker"
)

// writeWheel creates a wheel archive named name in a temp dir holding files.
func writeWheel(t *testing.T, name string, files map[string]string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	f, err := os.Create(p)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	for n, content := range files {
		w, err := zw.Create(n)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	return p
}

func linuxEnv() marker.Environment {
	return marker.Environment{
		"python_version":      "3.11",
		"python_full_version": "3.11.4",
		"os_name":             "posix",
		"sys_platform":        "linux",
		"platform_system":     "Linux",
		"platform_machine":    "x86_64",
		"implementation_name": "cpython",
	}
}

func mustView(t *testing.T, meta *Metadata, env marker.Environment) *View {
	t.Helper()
	v, err := NewView(meta, env)
	if err != nil {
		t.Fatalf("NewView: %v", err)
	}
	return v
}

func setOf(seq []string) map[string]bool {
	m := make(map[string]bool, len(seq))
	for _, s := range seq {
		m[s] = true
	}
	return m
}
