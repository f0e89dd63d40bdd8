package pipeline

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/wheeltool/pkg/cache"
	"github.com/matzehuels/wheeltool/pkg/observability"
	"github.com/matzehuels/wheeltool/pkg/wheel"
)

const keyTypeMetadata = "metadata"

// Runner executes the pipeline with caching.
//
// The Runner holds no per-run state; multiple goroutines can share one
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute opens the wheel, loads its metadata and evaluates it.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	hooks := observability.Pipeline()
	hooks.OnExtractStart(ctx, opts.WheelPath)
	start := time.Now()

	result, err := r.execute(ctx, opts, start)
	requirements := 0
	if result != nil {
		requirements = result.Stats.Requirements
	}
	hooks.OnExtractComplete(ctx, opts.WheelPath, requirements, time.Since(start), err)
	return result, err
}

func (r *Runner) execute(ctx context.Context, opts Options, start time.Time) (*Result, error) {
	w, err := wheel.Open(opts.WheelPath)
	if err != nil {
		return nil, err
	}
	result := &Result{Wheel: w}

	meta, digest, hit, err := r.MetadataWithCacheInfo(ctx, w, opts)
	if err != nil {
		return nil, err
	}
	result.Digest = digest
	result.Metadata = meta
	result.CacheInfo.MetadataHit = hit
	result.Stats.ParseTime = time.Since(start)
	result.Stats.Requirements = len(meta.Requirements)
	result.Stats.Extras = len(meta.Extras)

	r.Logger.Debug("loaded metadata",
		"wheel", w.Distribution(),
		"version", meta.Version,
		"requirements", len(meta.Requirements),
		"extras", len(meta.Extras),
		"cached", hit,
		"duration", result.Stats.ParseTime)

	view, err := wheel.NewView(meta, opts.Environment)
	if err != nil {
		return nil, err
	}
	result.View = view
	result.Report = view.Report()
	return result, nil
}

// MetadataWithCacheInfo returns the wheel's parsed metadata together with
// its digest and whether it came from the cache. Cache failures are logged
// and treated as misses.
func (r *Runner) MetadataWithCacheInfo(ctx context.Context, w *wheel.Wheel, opts Options) (*wheel.Metadata, string, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, "", false, err
	}

	digest, err := w.Digest()
	if err != nil {
		return nil, "", false, err
	}
	key := r.Keyer.MetadataKey(digest, cache.MetadataKeyOpts{Legacy: opts.Legacy.String()})
	hooks := observability.Cache()

	if !opts.Refresh {
		var cached wheel.Metadata
		hit, err := cache.GetJSON(ctx, r.Cache, key, &cached)
		switch {
		case err != nil:
			r.Logger.Warn("cache read failed", "key", key, "err", err)
		case hit && cached.Validate() == nil:
			hooks.OnCacheHit(ctx, keyTypeMetadata)
			return &cached, digest, true, nil
		case hit:
			r.Logger.Debug("discarding invalid cache entry", "key", key)
		}
		hooks.OnCacheMiss(ctx, keyTypeMetadata)
	}

	meta, err := w.Metadata(wheel.ParseOptions{
		Legacy: opts.Legacy,
		Logger: func(format string, args ...any) {
			opts.Logger.Debugf(format, args...)
		},
		OnSkip: func(spec string, _ error) {
			observability.Pipeline().OnRequirementSkipped(ctx, w.Path(), spec)
		},
	})
	if err != nil {
		return nil, "", false, err
	}

	if size, err := cache.SetJSON(ctx, r.Cache, key, meta, opts.CacheTTL); err != nil {
		r.Logger.Warn("cache write failed", "key", key, "err", err)
	} else {
		hooks.OnCacheSet(ctx, keyTypeMetadata, size)
	}
	return meta, digest, false, nil
}

// Metadata is a convenience wrapper that discards the digest and cache info.
func (r *Runner) Metadata(ctx context.Context, w *wheel.Wheel, opts Options) (*wheel.Metadata, error) {
	meta, _, _, err := r.MetadataWithCacheInfo(ctx, w, opts)
	return meta, err
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
