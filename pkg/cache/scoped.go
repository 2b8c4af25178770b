package cache

// ScopedKeyer wraps a Keyer with a prefix so several deployments can share
// one backend without colliding.
//
// Example usage:
//
//	// API server sharing a Redis instance with other services
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "tooltree:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// TreemapKey generates a prefixed key for treemap caching.
func (k *ScopedKeyer) TreemapKey(inputHash string, opts any) string {
	return k.prefix + k.inner.TreemapKey(inputHash, opts)
}

// ArtifactKey generates a prefixed key for artifact caching.
func (k *ScopedKeyer) ArtifactKey(treemapHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(treemapHash, opts)
}
