package ports

import (
	"crypto/sha256"

	"github.com/jbctechsolutions/tokenlens/internal/domain/tokenization"
)

// MemoKey identifies one tokenization of one text on one model.
// Detailed distinguishes results that carry token strings from bare counts.
type MemoKey struct {
	ModelID  string
	Digest   [sha256.Size]byte
	Detailed bool
}

// NewMemoKey fingerprints text for modelID.
func NewMemoKey(modelID, text string, detailed bool) MemoKey {
	return MemoKey{
		ModelID:  modelID,
		Digest:   sha256.Sum256([]byte(text)),
		Detailed: detailed,
	}
}

// CacheStats represents memo statistics.
type CacheStats struct {
	Entries   int     `json:"entries"`
	Capacity  int     `json:"capacity"`
	Hits      int64   `json:"hits"`
	Misses    int64   `json:"misses"`
	Evictions int64   `json:"evictions"`
	HitRate   float64 `json:"hit_rate"` // 0.0 to 1.0
}

// ResultCachePort memoizes tokenization results. Implementations must be
// safe for concurrent use and must hand out copies, so callers may mutate
// what they get back.
type ResultCachePort interface {
	// Get returns the cached result for key.
	Get(key MemoKey) (tokenization.DetailedTokenizationResult, bool)

	// Add stores result under key, evicting the least recently used entry
	// when full.
	Add(key MemoKey, result tokenization.DetailedTokenizationResult)

	// Len returns the number of cached results.
	Len() int

	// Purge removes every entry.
	Purge()

	// Stats returns hit/miss/eviction counters.
	Stats() CacheStats
}
