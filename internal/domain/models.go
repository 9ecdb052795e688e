package domain

import "strings"

// ClueRecord is one corpus entry. Words lists every target word the record clues.
type ClueRecord struct {
	Question string   `json:"question" yaml:"question"`
	Answer   string   `json:"answer" yaml:"answer"`
	Song     string   `json:"song,omitempty" yaml:"song,omitempty"` // empty when absent
	Movie    string   `json:"movie" yaml:"movie"`
	Words    []string `json:"words" yaml:"words"`
}

// Usable reports whether the record carries every required field.
func (r ClueRecord) Usable() bool {
	if strings.TrimSpace(r.Question) == "" || strings.TrimSpace(r.Answer) == "" || strings.TrimSpace(r.Movie) == "" {
		return false
	}
	for _, w := range r.Words {
		if NormalizeWord(w) != "" {
			return true
		}
	}
	return false
}

// Clues reports whether the record is associated with word. Both sides are normalized.
func (r ClueRecord) Clues(word string) bool {
	target := NormalizeWord(word)
	if target == "" {
		return false
	}
	for _, w := range r.Words {
		if NormalizeWord(w) == target {
			return true
		}
	}
	return false
}

// NormalizeWord applies the single casing rule used for comparisons.
func NormalizeWord(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// GameQuestion is a clue bound into an active session.
type GameQuestion struct {
	Prompt string     `json:"prompt"`
	Record ClueRecord `json:"record"`
}

// State is a point-in-time copy of a session's mutable state. Revision grows
// with every accepted mutation, so of two snapshots the higher one is newer.
type State struct {
	Revision         uint64   `json:"revision"`
	RemainingSeconds int      `json:"remainingSeconds"`
	UserLetters      []string `json:"userLetters"`
	IsOver           bool     `json:"isOver"`
	IsSuccess        bool     `json:"isSuccess"`
	SuccessMessage   string   `json:"successMessage,omitempty"`
}
