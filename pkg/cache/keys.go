package cache

import "strings"

// Keyer generates cache keys for the artifacts eveshow caches.
type Keyer interface {
	// HTTPKey identifies a fetched HTTP body (remote catalogs).
	HTTPKey(namespace, key string) string
	// DiagramKey identifies a rendered diagram.
	DiagramKey(sourceHash string, opts DiagramKeyOpts) string
}

// DiagramKeyOpts are the render inputs besides the source itself.
type DiagramKeyOpts struct {
	Theme   string `json:"theme"`
	Palette string `json:"palette"` // palette fingerprint, see [Fingerprint]
	Engine  string `json:"engine"`
}

// DefaultKeyer produces unscoped keys.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// HTTPKey returns "http:<namespace>:<key>".
func (DefaultKeyer) HTTPKey(namespace, key string) string {
	return "http:" + namespace + ":" + key
}

// DiagramKey hashes the source hash together with every option.
func (DefaultKeyer) DiagramKey(sourceHash string, opts DiagramKeyOpts) string {
	return hashKey("diagram", sourceHash, opts)
}

// Fingerprint hashes an ordered list of values, e.g. palette colors.
func Fingerprint(values ...string) string {
	return Hash([]byte(strings.Join(values, "\x00")))[:16]
}

// ScopedKeyer prefixes every key of an inner Keyer. The site uses it to keep
// the server's entries apart from the CLI's when both share a Redis.
//
//	siteKeyer := NewScopedKeyer(NewDefaultKeyer(), "site:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix. A nil inner keyer means
// [DefaultKeyer].
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// HTTPKey generates a prefixed key for HTTP body caching.
func (k *ScopedKeyer) HTTPKey(namespace, key string) string {
	return k.prefix + k.inner.HTTPKey(namespace, key)
}

// DiagramKey generates a prefixed key for rendered diagrams.
func (k *ScopedKeyer) DiagramKey(sourceHash string, opts DiagramKeyOpts) string {
	return k.prefix + k.inner.DiagramKey(sourceHash, opts)
}
