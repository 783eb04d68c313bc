package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// DocumentKeyOpts are the options that affect document identity. Two runs
// with the same input hash but different options must cache separately.
type DocumentKeyOpts struct {
	Algorithm  string // louvain or leiden
	Params     string // canonical clustering parameter string
	Plain      bool   // legacy bare relation output
	Attributes bool   // persistence attribute block included
}

// Keyer generates cache keys.
type Keyer interface {
	// DocumentKey generates a key for a converted document. inputHash is
	// the SHA-256 of the input edge-list bytes.
	DocumentKey(inputHash string, opts DocumentKeyOpts) string
}

// DefaultKeyer is the standard key generator.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// DocumentKey generates a key for document caching.
func (k *DefaultKeyer) DocumentKey(inputHash string, opts DocumentKeyOpts) string {
	return hashKey("document", inputHash, opts)
}

// ScopedKeyer wraps a Keyer with a prefix so multiple tenants of one
// redis instance get separate namespaces.
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

// DocumentKey generates a prefixed key for document caching.
func (k *ScopedKeyer) DocumentKey(inputHash string, opts DocumentKeyOpts) string {
	return k.prefix + k.inner.DocumentKey(inputHash, opts)
}

// hashKey builds a key of the form prefix:sha256(parts). The full hash
// keeps documents for near-identical parameter sets from colliding.
func hashKey(prefix string, parts ...interface{}) string {
	data, _ := json.Marshal(parts)
	sum := sha256.Sum256(data)
	return fmt.Sprintf("%s:%s", prefix, hex.EncodeToString(sum[:]))
}

// Hash returns the SHA-256 of data as a 64-character hex string. The
// pipeline uses it to fingerprint the input edge list, and the file
// backend reuses it to shard entries on disk.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
