package cache

// SchemaVersion is bumped whenever the cached metadata layout changes, so
// entries written by older builds are never decoded.
const SchemaVersion = 1

// MetadataKeyOpts are the parse settings that change parsed metadata.
type MetadataKeyOpts struct {
	Legacy string // Legacy marker policy name
}

// Keyer derives cache keys.
type Keyer interface {
	// MetadataKey returns the key for the parsed metadata of the wheel with
	// the given content digest.
	MetadataKey(digest string, opts MetadataKeyOpts) string
}

// DefaultKeyer hashes the digest, options and schema version together.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// MetadataKey implements Keyer.
func (DefaultKeyer) MetadataKey(digest string, opts MetadataKeyOpts) string {
	return hashKey("metadata", SchemaVersion, digest, opts.Legacy)
}

// ScopedKeyer wraps a Keyer with a prefix, so several tools or build
// configurations can share one Redis instance without colliding.
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "ci:linux:")
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

// MetadataKey generates a prefixed metadata key.
func (k *ScopedKeyer) MetadataKey(digest string, opts MetadataKeyOpts) string {
	return k.prefix + k.inner.MetadataKey(digest, opts)
}
