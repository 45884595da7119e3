// Package cache provides the in-memory tokenization memo.
package cache

import (
	"fmt"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/jbctechsolutions/tokenlens/internal/application/ports"
	"github.com/jbctechsolutions/tokenlens/internal/domain/tokenization"
)

// MemoryCache implements ResultCachePort on a fixed-size LRU.
type MemoryCache struct {
	lru      *lru.Cache[ports.MemoKey, tokenization.DetailedTokenizationResult]
	capacity int

	hits      atomic.Int64
	misses    atomic.Int64
	evictions atomic.Int64
}

var _ ports.ResultCachePort = (*MemoryCache)(nil)

// NewMemoryCache creates a memo holding at most size results.
func NewMemoryCache(size int) (*MemoryCache, error) {
	if size <= 0 {
		return nil, fmt.Errorf("cache size must be positive, got %d", size)
	}

	c, err := lru.New[ports.MemoKey, tokenization.DetailedTokenizationResult](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create memo: %w", err)
	}

	return &MemoryCache{lru: c, capacity: size}, nil
}

// Get returns a copy of the cached result for key.
func (m *MemoryCache) Get(key ports.MemoKey) (tokenization.DetailedTokenizationResult, bool) {
	result, ok := m.lru.Get(key)
	if !ok {
		m.misses.Add(1)
		return tokenization.DetailedTokenizationResult{}, false
	}
	m.hits.Add(1)
	return clone(result), true
}

// Add stores a copy of result under key.
func (m *MemoryCache) Add(key ports.MemoKey, result tokenization.DetailedTokenizationResult) {
	if evicted := m.lru.Add(key, clone(result)); evicted {
		m.evictions.Add(1)
	}
}

// Len returns the number of cached results.
func (m *MemoryCache) Len() int {
	return m.lru.Len()
}

// Purge removes every entry. Counters are kept.
func (m *MemoryCache) Purge() {
	m.lru.Purge()
}

// Stats returns memo statistics.
func (m *MemoryCache) Stats() ports.CacheStats {
	hits := m.hits.Load()
	misses := m.misses.Load()

	var hitRate float64
	if total := hits + misses; total > 0 {
		hitRate = float64(hits) / float64(total)
	}

	return ports.CacheStats{
		Entries:   m.lru.Len(),
		Capacity:  m.capacity,
		Hits:      hits,
		Misses:    misses,
		Evictions: m.evictions.Load(),
		HitRate:   hitRate,
	}
}

func clone(r tokenization.DetailedTokenizationResult) tokenization.DetailedTokenizationResult {
	if r.Tokens != nil {
		r.Tokens = append([]int(nil), r.Tokens...)
	}
	if r.TokenStrings != nil {
		r.TokenStrings = append([]string(nil), r.TokenStrings...)
	}
	return r
}
