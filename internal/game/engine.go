package game

import (
	"fmt"
	"strings"
	"sync"
	"unicode/utf8"

	"banisa-service/internal/domain"
)

// DefaultDurationSeconds is the countdown a session starts with.
const DefaultDurationSeconds = 5 * 60

// Option customizes a Game at construction.
type Option func(*Game)

// WithDuration overrides the starting countdown. Non-positive values are ignored.
func WithDuration(seconds int) Option {
	return func(g *Game) {
		if seconds > 0 {
			g.remaining = seconds
		}
	}
}

// WithChooser sets the random source used to draw the success message.
func WithChooser(choose Chooser) Option {
	return func(g *Game) {
		if choose != nil {
			g.choose = choose
		}
	}
}

// WithMessages replaces the success message pool.
func WithMessages(pool []string) Option {
	return func(g *Game) {
		if len(pool) > 0 {
			g.messages = pool
		}
	}
}

// Game is the state machine for one session. It is created Active; Over is
// terminal. All methods are safe for concurrent use and calls made after the
// game is over are no-ops.
type Game struct {
	mu        sync.Mutex
	word      []rune
	questions []domain.GameQuestion
	choose    Chooser
	messages  []string

	revision  uint64
	remaining int
	letters   []string
	over      bool
	success   bool
	message   string
}

// New starts an Active game for word with all letter slots empty.
func New(word string, questions []domain.GameQuestion, opts ...Option) (*Game, error) {
	word = domain.NormalizeWord(word)
	if word == "" {
		return nil, fmt.Errorf("%w: empty word", domain.ErrEmptyCorpus)
	}
	if len(questions) == 0 {
		return nil, domain.ErrNoQuestions
	}

	g := &Game{
		word:      []rune(word),
		questions: append([]domain.GameQuestion(nil), questions...),
		choose:    DefaultChooser(),
		messages:  SuccessMessages,
		remaining: DefaultDurationSeconds,
	}
	for _, opt := range opts {
		opt(g)
	}
	g.letters = make([]string, len(g.word))
	return g, nil
}

// Word returns the normalized target word.
func (g *Game) Word() string {
	return string(g.word)
}

// Len is the number of letter slots.
func (g *Game) Len() int {
	return len(g.word)
}

// Questions returns the question list in its fixed order.
func (g *Game) Questions() []domain.GameQuestion {
	return append([]domain.GameQuestion(nil), g.questions...)
}

// Tick advances the countdown by one second. Reaching zero ends the game
// without success.
func (g *Game) Tick() domain.State {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.over {
		return g.stateLocked()
	}
	g.revision++
	if g.remaining > 0 {
		g.remaining--
	}
	if g.remaining == 0 {
		g.over = true
		g.success = false
	}
	return g.stateLocked()
}

// SetLetter writes the first character of raw, upper-cased, into slot index
// and then evaluates the win condition. The returned flag advises the caller
// to move input to the next slot: a non-empty value was written and index is
// not the last slot. The returned state is the one this write produced.
func (g *Game) SetLetter(index int, raw string) (bool, domain.State, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.over {
		return false, g.stateLocked(), nil
	}
	if index < 0 || index >= len(g.word) {
		return false, g.stateLocked(), fmt.Errorf("%w: %d not in [0,%d)", domain.ErrIndexOutOfRange, index, len(g.word))
	}

	value := normalizeLetter(raw)
	g.letters[index] = value
	g.revision++

	if g.solvedLocked() {
		g.winLocked()
	}
	return value != "" && index < len(g.word)-1, g.stateLocked(), nil
}

// ForceEnd ends the game. A game that is already solved keeps its success.
func (g *Game) ForceEnd() domain.State {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.over {
		g.revision++
		if g.solvedLocked() {
			g.winLocked()
		} else {
			g.over = true
		}
	}
	return g.stateLocked()
}

// IsLetterCorrect reports whether slot index is filled and matches.
func (g *Game) IsLetterCorrect(index int) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.filledLocked(index) && g.matchesLocked(index)
}

// IsLetterIncorrect reports whether slot index is filled and does not match.
func (g *Game) IsLetterIncorrect(index int) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.filledLocked(index) && !g.matchesLocked(index)
}

// State returns a copy of the current state.
func (g *Game) State() domain.State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.stateLocked()
}

func (g *Game) stateLocked() domain.State {
	return domain.State{
		Revision:         g.revision,
		RemainingSeconds: g.remaining,
		UserLetters:      append([]string(nil), g.letters...),
		IsOver:           g.over,
		IsSuccess:        g.success,
		SuccessMessage:   g.message,
	}
}

// MarkLetters evaluates a letters snapshot against word with the same rules
// as IsLetterCorrect and IsLetterIncorrect.
func MarkLetters(word string, letters []string) (correct, incorrect []bool) {
	target := []rune(domain.NormalizeWord(word))
	correct = make([]bool, len(letters))
	incorrect = make([]bool, len(letters))
	for i, l := range letters {
		if l == "" {
			continue
		}
		match := i < len(target) && strings.EqualFold(l, string(target[i]))
		correct[i] = match
		incorrect[i] = !match
	}
	return correct, incorrect
}

func (g *Game) filledLocked(index int) bool {
	return index >= 0 && index < len(g.letters) && g.letters[index] != ""
}

func (g *Game) matchesLocked(index int) bool {
	return strings.EqualFold(g.letters[index], string(g.word[index]))
}

func (g *Game) solvedLocked() bool {
	for i := range g.word {
		if !g.filledLocked(i) || !g.matchesLocked(i) {
			return false
		}
	}
	return true
}

func (g *Game) winLocked() {
	g.over = true
	g.success = true
	g.message = randomFrom(g.messages, g.choose)
}

func normalizeLetter(raw string) string {
	upper := strings.ToUpper(raw)
	if upper == "" {
		return ""
	}
	r, size := utf8.DecodeRuneInString(upper)
	if r == utf8.RuneError && size <= 1 {
		return ""
	}
	return upper[:size]
}
