package cache

// ScopedKeyer prefixes every key of an inner [Keyer].
//
// The CLI scopes keys by program version so results from an older scoring
// model are never served:
//
//	keyer := cache.NewScopedKeyer(nil, "v1.2.0:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer wraps inner, or a [DefaultKeyer] when inner is nil.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// ResultKey implements [Keyer].
func (k *ScopedKeyer) ResultKey(inputHash string, opts ResultKeyOpts) string {
	return k.prefix + k.inner.ResultKey(inputHash, opts)
}

// TreeKey implements [Keyer].
func (k *ScopedKeyer) TreeKey(category, itemsHash string, opts TreeKeyOpts) string {
	return k.prefix + k.inner.TreeKey(category, itemsHash, opts)
}
