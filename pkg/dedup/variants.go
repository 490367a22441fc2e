package dedup

import (
	"sort"
	"sync"

	"github.com/typedensity/typedensity/pkg/javatype"
)

// VariantCache maps a signature to every canonical node seen so far under
// that signature. It lives for the whole process and is shared by every
// Deduplicator; it is safe for concurrent use. There is no eviction.
type VariantCache struct {
	signer func(javatype.Type) string
	sets   sync.Map // string -> *VariantSet
}

// Option configures a VariantCache.
type Option func(*VariantCache)

// WithSigner replaces the signature function. Signatures are only a coarse
// key: nodes with equal signatures are still compared structurally.
func WithSigner(fn func(javatype.Type) string) Option {
	return func(c *VariantCache) {
		c.signer = fn
	}
}

// NewVariantCache creates an empty cache keyed by javatype.Signature.
func NewVariantCache(opts ...Option) *VariantCache {
	c := &VariantCache{signer: javatype.Signature}
	for _, o := range opts {
		o(c)
	}
	return c
}

// VariantsOf returns the variant set for t's signature, creating an empty
// one on first access.
func (c *VariantCache) VariantsOf(t javatype.Type) *VariantSet {
	sig := c.signer(t)
	if s, ok := c.sets.Load(sig); ok {
		return s.(*VariantSet)
	}
	s, _ := c.sets.LoadOrStore(sig, newVariantSet())
	return s.(*VariantSet)
}

// VariantsOfSignature returns the variant set stored under sig, or nil.
func (c *VariantCache) VariantsOfSignature(sig string) *VariantSet {
	if s, ok := c.sets.Load(sig); ok {
		return s.(*VariantSet)
	}
	return nil
}

// Len returns the number of canonical nodes across all signatures.
func (c *VariantCache) Len() int {
	n := 0
	c.sets.Range(func(_, v any) bool {
		n += v.(*VariantSet).Len()
		return true
	})
	return n
}

// Signatures returns the distinct signatures in sorted order.
func (c *VariantCache) Signatures() []string {
	var sigs []string
	c.sets.Range(func(k, _ any) bool {
		sigs = append(sigs, k.(string))
		return true
	})
	sort.Strings(sigs)
	return sigs
}

// VariantSet is an insertion-ordered identity set of canonical nodes.
type VariantSet struct {
	mu    sync.Mutex
	order []javatype.Type
	index map[javatype.Type]struct{}
}

func newVariantSet() *VariantSet {
	return &VariantSet{index: make(map[javatype.Type]struct{})}
}

// Snapshot returns the current members in insertion order. Later inserts
// do not affect the returned slice.
func (s *VariantSet) Snapshot() []javatype.Type {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]javatype.Type, len(s.order))
	copy(out, s.order)
	return out
}

// Add inserts t unless the identical node is already present, and reports
// whether it was inserted.
func (s *VariantSet) Add(t javatype.Type) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.index[t]; ok {
		return false
	}
	s.index[t] = struct{}{}
	s.order = append(s.order, t)
	return true
}

// Contains reports whether the identical node is present.
func (s *VariantSet) Contains(t javatype.Type) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.index[t]
	return ok
}

// Len returns the number of members.
func (s *VariantSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.order)
}
