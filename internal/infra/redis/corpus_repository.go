package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"banisa-service/internal/domain"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

// CorpusLoader fetches clue records from a backing store (e.g., Postgres).
type CorpusLoader interface {
	LoadCorpus(ctx context.Context, corpusID string) ([]domain.ClueRecord, error)
}

// CorpusRepository caches whole corpora in Redis and falls back to a loader on cache miss.
// Records are stored as a JSON array: SET corpus:{corpusID}:records [...]
type CorpusRepository struct {
	client *redis.Client
	loader CorpusLoader
	ttl    time.Duration
	sf     singleflight.Group

	rndMu sync.Mutex
	rnd   *rand.Rand
}

func NewCorpusRepository(client *redis.Client, loader CorpusLoader, ttl time.Duration) *CorpusRepository {
	return &CorpusRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *CorpusRepository) GetCorpus(ctx context.Context, corpusID string) ([]domain.ClueRecord, error) {
	key := r.recordsKey(corpusID)
	if records, ok := r.fromCache(ctx, key); ok {
		return records, nil
	}

	result, err, _ := r.sf.Do(corpusID, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if records, ok := r.fromCache(ctx, key); ok {
			return records, nil
		}

		records, err := r.loader.LoadCorpus(ctx, corpusID)
		if err != nil {
			return nil, err
		}

		data, err := json.Marshal(records)
		if err != nil {
			return nil, fmt.Errorf("marshal corpus: %w", err)
		}
		if err := r.client.Set(ctx, key, data, r.ttlWithJitter()).Err(); err != nil {
			log.Warn().Err(err).Str("corpus", corpusID).Msg("cache corpus")
		}
		return records, nil
	})
	if err != nil {
		return nil, err
	}
	return append([]domain.ClueRecord(nil), result.([]domain.ClueRecord)...), nil
}

func (r *CorpusRepository) fromCache(ctx context.Context, key string) ([]domain.ClueRecord, bool) {
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	var records []domain.ClueRecord
	if err := json.Unmarshal(data, &records); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("discarding malformed cached corpus")
		return nil, false
	}
	return records, true
}

func (r *CorpusRepository) recordsKey(corpusID string) string {
	return "corpus:" + corpusID + ":records"
}

func (r *CorpusRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	r.rndMu.Lock()
	defer r.rndMu.Unlock()
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
