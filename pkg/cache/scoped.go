package cache

// ScopedKeyer wraps a Keyer with a prefix, giving every tenant or
// environment its own namespace in a shared backend:
//
//	staging := NewScopedKeyer(NewDefaultKeyer(), "staging:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix. A nil inner keyer selects
// the [DefaultKeyer].
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// PartitionKey generates a prefixed partition key.
func (k *ScopedKeyer) PartitionKey(treeHash string, opts PartitionKeyOpts) string {
	return k.prefix + k.inner.PartitionKey(treeHash, opts)
}

// CompareKey generates a prefixed comparison key.
func (k *ScopedKeyer) CompareKey(treeHash string, algorithms []string, opts PartitionKeyOpts) string {
	return k.prefix + k.inner.CompareKey(treeHash, algorithms, opts)
}
