// Package cache stores build results keyed by a content hash of their
// inputs.
//
// Backends share the [Cache] interface:
//
//   - [FileCache]: one JSON file per entry, for the CLI
//   - [MemoryCache]: an in-process LRU
//   - [RedisCache]: a shared Redis instance
//   - [NullCache]: caching disabled
//
// Keys come from a [Keyer], so callers never build key strings by hand.
// A [ScopedKeyer] prefixes every key, which keeps incompatible settings
// profiles or versions apart.
package cache

import (
	"context"
	"time"
)

// Default entry lifetimes.
const (
	TTLResult = 7 * 24 * time.Hour
	TTLTree   = 7 * 24 * time.Hour
)

// Cache is a byte-oriented key/value store with per-entry TTL.
// A ttl of zero or less means the entry does not expire.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Keyer derives cache keys.
type Keyer interface {
	// ResultKey is the key of a full build result.
	ResultKey(inputHash string, opts ResultKeyOpts) string

	// TreeKey is the key of one category's tree snapshot.
	TreeKey(category, itemsHash string, opts TreeKeyOpts) string
}

// ResultKeyOpts are the settings that change a build result.
type ResultKeyOpts struct {
	SettingsHash string `json:"settings"`
	GridHash     string `json:"grid"`

	// Builder is the skilltree version that computes the result.
	Builder string `json:"builder,omitempty"`
}

// TreeKeyOpts are the settings that change a tree.
type TreeKeyOpts struct {
	MaxChildren int    `json:"max_children"`
	Seed        uint64 `json:"seed"`
	Root        string `json:"root,omitempty"`
}

// DefaultKeyer hashes key components into fixed-length keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// ResultKey implements [Keyer].
func (DefaultKeyer) ResultKey(inputHash string, opts ResultKeyOpts) string {
	return hashKey("result", inputHash, opts)
}

// TreeKey implements [Keyer].
func (DefaultKeyer) TreeKey(category, itemsHash string, opts TreeKeyOpts) string {
	return hashKey("tree", category, itemsHash, opts)
}
