package postgres

import (
	"context"
	"fmt"

	"banisa-service/internal/domain"
	"github.com/jackc/pgx/v4/pgxpool"
)

// CorpusLoader loads clue rows for a corpus from Postgres.
type CorpusLoader struct {
	pool *pgxpool.Pool
}

func NewCorpusLoader(pool *pgxpool.Pool) *CorpusLoader {
	return &CorpusLoader{pool: pool}
}

func (l *CorpusLoader) LoadCorpus(ctx context.Context, corpusID string) ([]domain.ClueRecord, error) {
	rows, err := l.pool.Query(ctx,
		`SELECT question, answer, song, movie, words FROM clues WHERE corpus_id=$1 ORDER BY id`, corpusID)
	if err != nil {
		return nil, fmt.Errorf("load corpus: %w", err)
	}
	defer rows.Close()

	var records []domain.ClueRecord
	for rows.Next() {
		var (
			record domain.ClueRecord
			song   *string
		)
		if err := rows.Scan(&record.Question, &record.Answer, &song, &record.Movie, &record.Words); err != nil {
			return nil, fmt.Errorf("scan clue: %w", err)
		}
		if song != nil {
			record.Song = *song
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load corpus: %w", err)
	}
	if len(records) == 0 {
		return nil, domain.ErrCorpusNotFound
	}
	return records, nil
}
