// Package game holds the puzzle engine: word selection, question generation
// and the per-session state machine. It does no I/O and schedules no time;
// callers drive the countdown by calling Tick at whatever cadence they own.
package game

import (
	"math/rand"
	"sort"
	"unicode"

	"banisa-service/internal/domain"
	"github.com/samber/lo"
)

// Chooser returns a value in [0, n). Tests inject fixed choosers for
// deterministic outcomes.
type Chooser func(n int) int

// DefaultChooser is safe for concurrent use.
func DefaultChooser() Chooser {
	return rand.Intn
}

// CandidateWords derives the sorted, distinct set of eligible target words
// from the usable records of a corpus.
func CandidateWords(records []domain.ClueRecord) []string {
	usable := lo.Filter(records, func(r domain.ClueRecord, _ int) bool {
		return r.Usable()
	})
	words := lo.FlatMap(usable, func(r domain.ClueRecord, _ int) []string {
		return lo.Map(r.Words, func(w string, _ int) string {
			return domain.NormalizeWord(w)
		})
	})
	words = lo.Uniq(lo.Filter(words, func(w string, _ int) bool {
		return isLetters(w)
	}))
	sort.Strings(words)
	return words
}

// SelectWord picks one candidate uniformly at random.
func SelectWord(records []domain.ClueRecord, choose Chooser) (string, error) {
	candidates := CandidateWords(records)
	if len(candidates) == 0 {
		return "", domain.ErrEmptyCorpus
	}
	if choose == nil {
		choose = DefaultChooser()
	}
	return candidates[pick(choose, len(candidates))], nil
}

func isLetters(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

// pick clamps the chooser's answer so a misbehaving chooser cannot index out of bounds.
func pick(choose Chooser, n int) int {
	i := choose(n)
	if i < 0 || i >= n {
		return 0
	}
	return i
}
