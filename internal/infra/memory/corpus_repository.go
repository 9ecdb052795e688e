package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"banisa-service/internal/domain"
	"golang.org/x/sync/singleflight"
)

// CorpusLoader fetches clue records from a backing store (file, Postgres, ...).
type CorpusLoader interface {
	LoadCorpus(ctx context.Context, corpusID string) ([]domain.ClueRecord, error)
}

// CorpusRepository caches corpora with TTL to avoid repeated loads.
type CorpusRepository struct {
	loader CorpusLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rndMu  sync.Mutex
	rnd    *rand.Rand

	mu    sync.RWMutex
	cache map[string]cachedCorpus
}

type cachedCorpus struct {
	records   []domain.ClueRecord
	expiresAt time.Time
}

func NewCorpusRepository(loader CorpusLoader, ttl time.Duration) *CorpusRepository {
	return &CorpusRepository{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[string]cachedCorpus),
	}
}

func (r *CorpusRepository) GetCorpus(ctx context.Context, corpusID string) ([]domain.ClueRecord, error) {
	if records, ok := r.cached(corpusID); ok {
		return records, nil
	}

	result, err, _ := r.sf.Do(corpusID, func() (interface{}, error) {
		if records, ok := r.cached(corpusID); ok {
			return records, nil
		}

		records, err := r.loader.LoadCorpus(ctx, corpusID)
		if err != nil {
			return nil, err
		}

		expiresAt := r.clock().Add(r.ttlWithJitter())
		r.mu.Lock()
		r.cache[corpusID] = cachedCorpus{records: records, expiresAt: expiresAt}
		r.mu.Unlock()
		return records, nil
	})
	if err != nil {
		return nil, err
	}
	return copyRecords(result.([]domain.ClueRecord)), nil
}

func (r *CorpusRepository) cached(corpusID string) ([]domain.ClueRecord, bool) {
	now := r.clock()
	r.mu.RLock()
	defer r.mu.RUnlock()
	if entry, ok := r.cache[corpusID]; ok && entry.expiresAt.After(now) {
		return copyRecords(entry.records), true
	}
	return nil, false
}

// StaticCorpusLoader is a simple loader backed by an in-memory map (useful for tests/demos).
type StaticCorpusLoader struct {
	corpora map[string][]domain.ClueRecord
}

func NewStaticCorpusLoader(corpora map[string][]domain.ClueRecord) *StaticCorpusLoader {
	return &StaticCorpusLoader{corpora: corpora}
}

func (l *StaticCorpusLoader) LoadCorpus(_ context.Context, corpusID string) ([]domain.ClueRecord, error) {
	if records, ok := l.corpora[corpusID]; ok {
		return copyRecords(records), nil
	}
	return nil, domain.ErrCorpusNotFound
}

func (r *CorpusRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(r.ttl) / 10
	r.rndMu.Lock()
	defer r.rndMu.Unlock()
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}

// copyRecords keeps callers from reordering the cached slice.
func copyRecords(records []domain.ClueRecord) []domain.ClueRecord {
	return append([]domain.ClueRecord(nil), records...)
}
