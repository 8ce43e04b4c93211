package api

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/cardio-risk-server/internal/domain"
)

// RecentCache keeps the most recent assessment records in memory so the
// recent-assessments endpoint works without a database. Only computed
// outcomes are cached, never raw inputs.
type RecentCache struct {
	cache *lru.Cache[string, *domain.AssessmentRecord]
}

// NewRecentCache creates a cache holding up to size records.
func NewRecentCache(size int) (*RecentCache, error) {
	cache, err := lru.New[string, *domain.AssessmentRecord](size)
	if err != nil {
		return nil, err
	}
	return &RecentCache{cache: cache}, nil
}

// Add records an assessment. Eviction is LRU once the cache is full.
func (r *RecentCache) Add(record *domain.AssessmentRecord) {
	if record == nil {
		return
	}
	r.cache.Add(record.ID, record)
}

// Get returns a cached record by assessment ID.
func (r *RecentCache) Get(id string) (*domain.AssessmentRecord, bool) {
	return r.cache.Get(id)
}

// List returns cached records newest-first.
func (r *RecentCache) List() []*domain.AssessmentRecord {
	keys := r.cache.Keys()
	records := make([]*domain.AssessmentRecord, 0, len(keys))
	// Keys returns oldest-first; walk backwards for newest-first.
	for i := len(keys) - 1; i >= 0; i-- {
		if record, ok := r.cache.Peek(keys[i]); ok {
			records = append(records, record)
		}
	}
	return records
}

// Len returns the number of cached records.
func (r *RecentCache) Len() int {
	return r.cache.Len()
}
