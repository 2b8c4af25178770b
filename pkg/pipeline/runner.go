package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/tooltree/pkg/cache"
	"github.com/matzehuels/tooltree/pkg/core/treemap"
	"github.com/matzehuels/tooltree/pkg/observability"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API can use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
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

// Execute runs the complete load → build → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	// Stage 1: Load
	loadStart := time.Now()
	in, err := Load(opts)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	loadTime := time.Since(loadStart)
	opts.Logger.Debug("loaded input",
		"path", opts.Input,
		"rows", in.Frame.Len(),
		"columns", len(in.Frame.Columns()),
		"duration", loadTime)

	result, err := r.ExecuteInput(ctx, in, opts)
	if err != nil {
		return nil, err
	}
	result.Stats.LoadTime = loadTime
	return result, nil
}

// ExecuteInput runs build and render on an already loaded input. The API
// server uses it for tables posted in the request body.
func (r *Runner) ExecuteInput(ctx context.Context, in Input, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForBuild(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	if err := opts.ValidateForRender(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{
		RunID:     uuid.NewString(),
		Artifacts: make(map[string][]byte),
	}
	result.Stats.Rows = in.Frame.Len()

	// Stage 2: Build
	buildStart := time.Now()
	built, buildHit, err := r.BuildWithCacheInfo(ctx, in, opts)
	if err != nil {
		return nil, fmt.Errorf("build: %w", err)
	}
	result.Data = built.Data
	result.Levels = built.Levels
	result.Summary = treemap.Summarize(built.Data)
	result.Stats.BuildTime = time.Since(buildStart)
	result.Stats.NodeCount = built.Data.Len()
	result.CacheInfo.BuildHit = buildHit

	if hash, err := cache.HashJSON(built.Data); err == nil {
		result.DataHash = hash
	}

	opts.Logger.Info("built treemap",
		"run", result.RunID,
		"nodes", result.Stats.NodeCount,
		"total", built.Data.TotalSize,
		"cached", buildHit,
		"duration", result.Stats.BuildTime)

	// Stage 3: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, built.Data, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	opts.Logger.Info("rendered outputs",
		"run", result.RunID,
		"formats", opts.Formats,
		"cached", renderHit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// Built is a treemap together with its per-level pruning report. It is the
// unit stored in the build cache.
type Built struct {
	Data   *treemap.Data        `json:"data"`
	Levels []treemap.LevelStats `json:"levels"`
}

// BuildWithCacheInfo builds treemap data with caching and returns cache hit info.
func (r *Runner) BuildWithCacheInfo(ctx context.Context, in Input, opts Options) (Built, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForBuild(); err != nil {
		return Built{}, false, err
	}

	var cacheKey string
	if in.Hash != "" {
		cacheKey = r.Keyer.TreemapKey(in.Hash, opts.BuildKeyOpts())
	}

	// Try cache first (unless refresh requested)
	if cacheKey != "" && !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			var cached Built
			if err := json.Unmarshal(data, &cached); err == nil && cached.Data != nil && cached.Data.Validate() == nil {
				observability.Cache().OnCacheHit(ctx, "treemap")
				return cached, true, nil // Cache hit
			}
			// If deserialization fails, fall through to rebuild
		} else if err != nil {
			opts.Logger.Warn("cache read failed", "key", cacheKey, "error", err)
		}
		observability.Cache().OnCacheMiss(ctx, "treemap")
	}

	hooks := observability.Pipeline()
	hooks.OnBuildStart(ctx, opts.Levels, in.Frame.Len())
	start := time.Now()
	d, levels, err := treemap.BuildWithStats(in.Frame, opts.TreemapOptions())
	nodes := 0
	if d != nil {
		nodes = d.Len()
	}
	hooks.OnBuildComplete(ctx, opts.Levels, nodes, time.Since(start), err)
	if err != nil {
		return Built{}, false, err
	}
	built := Built{Data: d, Levels: levels}
	logLevels(opts.Logger, levels)

	// Cache the result
	if cacheKey != "" {
		if data, err := json.Marshal(built); err == nil {
			if err := r.Cache.Set(ctx, cacheKey, data, cache.TTLTreemap); err != nil {
				opts.Logger.Warn("cache write failed", "key", cacheKey, "error", err)
			} else {
				observability.Cache().OnCacheSet(ctx, "treemap", len(data))
			}
		}
	}

	return built, false, nil // Cache miss
}

// Build is a convenience wrapper that calls BuildWithCacheInfo and discards the cache hit info.
func (r *Runner) Build(ctx context.Context, in Input, opts Options) (Built, error) {
	built, _, err := r.BuildWithCacheInfo(ctx, in, opts)
	return built, err
}

// RenderWithCacheInfo generates artifacts with caching and returns cache hit info.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, d *treemap.Data, opts Options) (map[string][]byte, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}

	// Compute cache key from treemap data
	dataHash, err := cache.HashJSON(d)
	if err != nil {
		return nil, false, fmt.Errorf("serialize treemap for cache key: %w", err)
	}

	// Try to get all formats from cache
	artifacts := make(map[string][]byte)
	if !opts.Refresh {
		for _, format := range opts.Formats {
			cacheKey := r.Keyer.ArtifactKey(dataHash, opts.ArtifactKeyOpts(format))
			data, hit, err := r.Cache.Get(ctx, cacheKey)
			if err != nil || !hit {
				observability.Cache().OnCacheMiss(ctx, "artifact")
				break
			}
			observability.Cache().OnCacheHit(ctx, "artifact")
			artifacts[format] = data
		}
		if len(artifacts) == len(opts.Formats) {
			return artifacts, true, nil // All artifacts from cache
		}
	}

	// Render all formats
	rd, err := newRenderer(ctx, d, opts)
	if err != nil {
		return nil, false, err
	}
	hooks := observability.Pipeline()
	rendered := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		hooks.OnRenderStart(ctx, format, d.Len())
		start := time.Now()
		data, err := rd.render(format)
		hooks.OnRenderComplete(ctx, format, len(data), time.Since(start), err)
		if err != nil {
			return nil, false, fmt.Errorf("render %s: %w", format, err)
		}
		rendered[format] = data
	}

	// Cache each format
	for format, data := range rendered {
		cacheKey := r.Keyer.ArtifactKey(dataHash, opts.ArtifactKeyOpts(format))
		if err := r.Cache.Set(ctx, cacheKey, data, cache.TTLArtifact); err != nil {
			opts.Logger.Warn("cache write failed", "key", cacheKey, "error", err)
		} else {
			observability.Cache().OnCacheSet(ctx, "artifact", len(data))
		}
	}

	return rendered, false, nil // Cache miss
}

// Render is a convenience wrapper that calls RenderWithCacheInfo and discards the cache hit info.
func (r *Runner) Render(ctx context.Context, d *treemap.Data, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, d, opts)
	return artifacts, err
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

func logLevels(logger *log.Logger, levels []treemap.LevelStats) {
	for _, s := range levels {
		logger.Debug("pruned level",
			"level", s.Level,
			"column", s.Column,
			"candidates", s.Candidates,
			"kept", s.Kept,
			"skipped", s.Skipped,
			"kept_size", s.KeptSize)
	}
}
