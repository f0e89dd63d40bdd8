// Package pipeline runs the wheel metadata extraction end to end.
//
// A run opens the wheel, looks up its parsed metadata in a cache keyed by
// the archive's content digest, parses it on a miss, and evaluates every
// requirement against a marker environment to produce the [wheel.Report]
// printed for build systems. The CLI and any embedding tool share this
// path, so cache keys and defaults stay consistent between them.
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	res, err := runner.Execute(ctx, pipeline.Options{
//	    WheelPath: "dist/requests-2.31.0-py3-none-any.whl",
//	})
//	if err != nil {
//	    return err
//	}
//	json.NewEncoder(os.Stdout).Encode(res.Report)
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	errs "github.com/matzehuels/wheeltool/pkg/errors"
	"github.com/matzehuels/wheeltool/pkg/marker"
	"github.com/matzehuels/wheeltool/pkg/wheel"
)

// DefaultCacheTTL is how long parsed metadata stays cached.
const DefaultCacheTTL = 24 * time.Hour

// Options configures a pipeline run.
type Options struct {
	WheelPath   string             `json:"wheel_path"`
	Legacy      wheel.LegacyPolicy `json:"legacy,omitempty"`
	Environment marker.Environment `json:"environment,omitempty"` // Default: marker.DefaultEnvironment()
	Refresh     bool               `json:"refresh,omitempty"`     // Bypass cached metadata
	CacheTTL    time.Duration      `json:"cache_ttl,omitempty"`

	Logger *log.Logger `json:"-"`
}

// ValidateAndSetDefaults checks required fields and fills in defaults.
func (o *Options) ValidateAndSetDefaults() error {
	if o.WheelPath == "" {
		return errs.New(errs.ErrCodeInvalidInput, "wheel path is required")
	}
	switch o.Legacy {
	case wheel.LegacyEvaluate, wheel.LegacyCompat:
	default:
		return errs.New(errs.ErrCodeInvalidInput, "unknown legacy marker policy %d", o.Legacy)
	}
	if o.CacheTTL < 0 {
		return errs.New(errs.ErrCodeInvalidInput, "cache ttl must not be negative")
	}
	if o.CacheTTL == 0 {
		o.CacheTTL = DefaultCacheTTL
	}
	if o.Environment == nil {
		o.Environment = marker.DefaultEnvironment()
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return nil
}

// Result contains the outputs of a pipeline run.
type Result struct {
	Wheel    *wheel.Wheel
	Digest   string // Hex SHA-256 of the archive
	Metadata *wheel.Metadata
	View     *wheel.View
	Report   wheel.Report

	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains run statistics.
type Stats struct {
	Requirements int
	Extras       int
	ParseTime    time.Duration
}

// CacheInfo tracks cache use.
type CacheInfo struct {
	MetadataHit bool // Whether metadata came from the cache
}
