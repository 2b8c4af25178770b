// Package cache stores built treemaps and rendered artifacts.
//
// # Overview
//
// Building a treemap from a large table and rendering it to SVG are the two
// expensive steps of the pipeline. Both are pure functions of their inputs,
// so their outputs are cached under content-derived keys:
//
//   - Treemap keys hash the input table and the build options
//   - Artifact keys hash the treemap and the render options
//
// # Backends
//
//   - [NullCache]: never stores anything (caching disabled)
//   - [FileCache]: one JSON file per entry, for the CLI
//   - [RedisCache]: shared cache for the API server
//
// All backends are safe for concurrent use.
package cache

import (
	"context"
	"time"
)

// Cache is a byte store with per-entry expiry.
type Cache interface {
	// Get returns the value for key and whether it was found. Expired
	// entries are reported as misses.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl <= 0 means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Clearer is implemented by caches that can drop all of their entries.
type Clearer interface {
	// Clear removes every entry and returns how many were removed.
	Clear(ctx context.Context) (int, error)
}

// Default TTLs.
const (
	TTLTreemap  = 24 * time.Hour
	TTLArtifact = 7 * 24 * time.Hour
)

// Keyer generates cache keys.
type Keyer interface {
	// TreemapKey identifies a treemap built from the input with the given
	// content hash. opts is any JSON-serialisable description of the build
	// options.
	TreemapKey(inputHash string, opts any) string

	// ArtifactKey identifies a rendered output of a treemap.
	ArtifactKey(treemapHash string, opts ArtifactKeyOpts) string
}

// ArtifactKeyOpts are the render options that affect an artifact.
type ArtifactKeyOpts struct {
	Format string `json:"format"`
	// Options is any JSON-serialisable description of the render options.
	Options any `json:"options,omitempty"`
}

// DefaultKeyer hashes key components with SHA-256.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// TreemapKey returns "treemap:<hash>".
func (DefaultKeyer) TreemapKey(inputHash string, opts any) string {
	return hashKey("treemap", inputHash, opts)
}

// ArtifactKey returns "artifact:<format>:<hash>".
func (DefaultKeyer) ArtifactKey(treemapHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact:"+opts.Format, treemapHash, opts.Options)
}
