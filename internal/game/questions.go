package game

import (
	"banisa-service/internal/domain"
	"github.com/samber/lo"
)

// GenerateQuestions binds the records associated with word into an ordered
// question list. The order is shuffled once here and never again. A positive
// limit truncates the list after shuffling.
func GenerateQuestions(word string, records []domain.ClueRecord, choose Chooser, limit int) ([]domain.GameQuestion, error) {
	matched := lo.Filter(records, func(r domain.ClueRecord, _ int) bool {
		return r.Usable() && r.Clues(word)
	})
	if len(matched) == 0 {
		return nil, domain.ErrNoQuestions
	}
	if choose == nil {
		choose = DefaultChooser()
	}

	shuffle(matched, choose)
	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}

	return lo.Map(matched, func(r domain.ClueRecord, _ int) domain.GameQuestion {
		return domain.GameQuestion{Prompt: r.Question, Record: r}
	}), nil
}

// shuffle is a Fisher-Yates pass driven by choose.
func shuffle[T any](items []T, choose Chooser) {
	for i := len(items) - 1; i > 0; i-- {
		j := pick(choose, i+1)
		items[i], items[j] = items[j], items[i]
	}
}
