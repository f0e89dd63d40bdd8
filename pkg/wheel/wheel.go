package wheel

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/klauspost/compress/zip"

	errs "github.com/matzehuels/wheeltool/pkg/errors"
)

const (
	structuredFile = "metadata.json"
	legacyFile     = "METADATA"
)

// Wheel is a wheel archive on the local filesystem. The archive is opened
// only for the duration of each read.
type Wheel struct {
	path    string
	dist    string
	version string
}

// Open validates the wheel file name and returns a handle to it. The file
// contents are not read until [Wheel.Metadata] is called.
func Open(p string) (*Wheel, error) {
	if err := errs.ValidateWheelPath(p); err != nil {
		return nil, err
	}
	// See https://peps.python.org/pep-0427/#file-name-convention
	parts := strings.Split(strings.TrimSuffix(filepath.Base(p), ".whl"), "-")
	if len(parts) != 5 && len(parts) != 6 {
		return nil, errs.New(errs.ErrCodeMalformedArchive, "wheel file name %q does not follow name-version-python-abi-platform.whl", filepath.Base(p))
	}
	if err := errs.ValidatePythonPackageName(parts[0]); err != nil {
		return nil, errs.Wrap(errs.ErrCodeMalformedArchive, err, "wheel file name %q", filepath.Base(p))
	}
	return &Wheel{path: p, dist: parts[0], version: parts[1]}, nil
}

// Path returns the file path the wheel was opened with.
func (w *Wheel) Path() string { return w.path }

// Distribution returns the distribution name from the file name.
func (w *Wheel) Distribution() string { return w.dist }

// Version returns the version from the file name.
func (w *Wheel) Version() string { return w.version }

// DistInfo returns the expected dist-info directory name, e.g.
// google_cloud-0.27.0.dist-info.
func (w *Wheel) DistInfo() string {
	return w.dist + "-" + w.version + ".dist-info"
}

var repoNameRE = regexp.MustCompile(`[-.]`)

// RepositoryName returns a build-system friendly identifier for the wheel:
// pypi__<distribution>_<version> with '-' and '.' replaced by '_'.
func (w *Wheel) RepositoryName() string {
	return repoNameRE.ReplaceAllString("pypi__"+w.dist+"_"+w.version, "_")
}

// Digest returns the hex SHA-256 of the wheel file.
func (w *Wheel) Digest() (string, error) {
	f, err := os.Open(w.path)
	if err != nil {
		return "", errs.Wrap(errs.ErrCodeMalformedArchive, err, "open %s", w.path)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", errs.Wrap(errs.ErrCodeMalformedArchive, err, "read %s", w.path)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Metadata reads and parses the wheel's dependency metadata. metadata.json
// is preferred; METADATA is the fallback.
func (w *Wheel) Metadata(opts ParseOptions) (*Metadata, error) {
	data, format, err := w.readMetadata()
	if err != nil {
		return nil, err
	}
	meta, err := ParseMetadata(data, format, opts)
	if err != nil {
		code := errs.GetCode(err)
		if code == "" {
			code = errs.ErrCodeMalformedMetadata
		}
		return nil, errs.Wrap(code, err, "%s", filepath.Base(w.path))
	}
	if meta.Version == "" {
		meta.Version = w.version
	}
	return meta, nil
}

func (w *Wheel) readMetadata() ([]byte, Format, error) {
	r, err := zip.OpenReader(w.path)
	if err != nil {
		return nil, 0, errs.Wrap(errs.ErrCodeMalformedArchive, err, "open %s", w.path)
	}
	defer r.Close()

	dir := w.findDistInfo(r.File)
	candidates := []struct {
		name   string
		format Format
	}{
		{structuredFile, FormatStructured},
		{legacyFile, FormatLegacy},
	}
	for _, c := range candidates {
		f := lookup(r.File, path.Join(dir, c.name))
		if f == nil {
			continue
		}
		data, err := readEntry(f)
		if err != nil {
			return nil, 0, errs.Wrap(errs.ErrCodeMalformedArchive, err, "read %s from %s", f.Name, w.path)
		}
		return data, c.format, nil
	}
	return nil, 0, errs.New(errs.ErrCodeMalformedArchive, "%s: no %s or %s in %s", filepath.Base(w.path), structuredFile, legacyFile, dir)
}

// findDistInfo returns the expected dist-info directory if the archive has
// it, otherwise the only dist-info directory holding a METADATA file. Build
// tools do not always agree on the case or normalization of the name.
func (w *Wheel) findDistInfo(files []*zip.File) string {
	want := w.DistInfo()
	var found []string
	for _, f := range files {
		dir, name := path.Split(f.Name)
		dir = strings.TrimSuffix(dir, "/")
		if dir == want {
			return want
		}
		if name == legacyFile && strings.HasSuffix(dir, ".dist-info") && !strings.Contains(dir, "/") {
			found = append(found, dir)
		}
	}
	if len(found) == 1 {
		return found[0]
	}
	for _, dir := range found {
		if strings.EqualFold(dir, want) {
			return dir
		}
	}
	return want
}

func lookup(files []*zip.File, name string) *zip.File {
	for _, f := range files {
		if f.Name == name {
			return f
		}
	}
	return nil
}

func readEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}
