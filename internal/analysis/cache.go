package analysis

import (
	"fmt"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/zeebo/xxh3"

	"github.com/inodb/vibe-pgx/internal/vcf"
)

// Fingerprint identifies a parse: the content hash plus the chromosome
// filter, since one file parsed against different gene sets differs.
func Fingerprint(content string, opts vcf.Options) string {
	return fmt.Sprintf("%016x_%s", xxh3.HashString(content), opts.Key())
}

// ParseCache is a bounded, least-recently-used cache of parse results.
// Cached results are shared between callers and must not be modified.
type ParseCache struct {
	entries *lru.Cache[string, *vcf.ParseResult]
	hits    atomic.Int64
	misses  atomic.Int64
}

// NewParseCache creates a cache holding at most size results.
func NewParseCache(size int) (*ParseCache, error) {
	entries, err := lru.New[string, *vcf.ParseResult](size)
	if err != nil {
		return nil, fmt.Errorf("create parse cache: %w", err)
	}
	return &ParseCache{entries: entries}, nil
}

// Get returns the cached result for a fingerprint.
func (c *ParseCache) Get(key string) (*vcf.ParseResult, bool) {
	res, ok := c.entries.Get(key)
	if ok {
		c.hits.Add(1)
	} else {
		c.misses.Add(1)
	}
	return res, ok
}

// Add stores a result, evicting the least recently used entry when full.
func (c *ParseCache) Add(key string, res *vcf.ParseResult) {
	c.entries.Add(key, res)
}

// Len returns the number of cached results.
func (c *ParseCache) Len() int {
	return c.entries.Len()
}

// Purge empties the cache and resets the counters.
func (c *ParseCache) Purge() {
	c.entries.Purge()
	c.hits.Store(0)
	c.misses.Store(0)
}

// Stats returns hit and miss counts since creation or the last Purge.
func (c *ParseCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}
