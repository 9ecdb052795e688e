package domain

import "errors"

var (
	// ErrEmptyCorpus is returned when the corpus holds no usable records or no candidate words.
	ErrEmptyCorpus = errors.New("corpus has no usable records")
	// ErrNoQuestions indicates the chosen word has no associated clues.
	ErrNoQuestions = errors.New("no questions for word")
	// ErrIndexOutOfRange is a caller bug: a letter index outside the word.
	ErrIndexOutOfRange = errors.New("letter index out of range")
	// ErrSessionNotFound is returned when a puzzle session does not exist (or was discarded).
	ErrSessionNotFound = errors.New("puzzle session not found")
	// ErrCorpusNotFound indicates the corpus source has nothing under the requested id.
	ErrCorpusNotFound = errors.New("corpus not found")
)
