package postgres

import (
	"context"
	"fmt"

	"banisa-service/internal/domain"
	"github.com/uptrace/bun"
)

type clueRow struct {
	bun.BaseModel `bun:"table:clues"`

	ID       int64    `bun:"id,pk,autoincrement"`
	CorpusID string   `bun:"corpus_id,notnull"`
	Question string   `bun:"question,notnull"`
	Answer   string   `bun:"answer,notnull"`
	Song     string   `bun:"song,nullzero"`
	Movie    string   `bun:"movie,notnull"`
	Words    []string `bun:"words,array"`
}

// CorpusImporter replaces a corpus's rows in one transaction.
type CorpusImporter struct {
	db *bun.DB
}

func NewCorpusImporter(db *bun.DB) *CorpusImporter {
	return &CorpusImporter{db: db}
}

// Import drops every existing row of corpusID and inserts records in order.
// It returns the number of rows written.
func (i *CorpusImporter) Import(ctx context.Context, corpusID string, records []domain.ClueRecord) (int, error) {
	if len(records) == 0 {
		return 0, domain.ErrEmptyCorpus
	}

	rows := make([]clueRow, 0, len(records))
	for _, r := range records {
		rows = append(rows, clueRow{
			CorpusID: corpusID,
			Question: r.Question,
			Answer:   r.Answer,
			Song:     r.Song,
			Movie:    r.Movie,
			Words:    r.Words,
		})
	}

	err := i.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().Model((*clueRow)(nil)).Where("corpus_id = ?", corpusID).Exec(ctx); err != nil {
			return fmt.Errorf("clear corpus: %w", err)
		}
		if _, err := tx.NewInsert().Model(&rows).Exec(ctx); err != nil {
			return fmt.Errorf("insert clues: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(rows), nil
}
