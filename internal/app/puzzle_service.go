package app

import (
	"context"
	"fmt"
	"time"

	"banisa-service/internal/domain"
	"banisa-service/internal/game"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
)

// SessionRepository abstracts where live puzzle sessions are kept (in-memory, Redis, etc).
type SessionRepository interface {
	Add(session *Session)
	Get(sessionID string) (*Session, bool)
	Delete(sessionID string)
}

// CorpusRepository loads clue records (from cache/backing store).
type CorpusRepository interface {
	GetCorpus(ctx context.Context, corpusID string) ([]domain.ClueRecord, error)
}

// LetterResult is the outcome of a single letter write.
type LetterResult struct {
	Index   int          `json:"index"`
	Advance bool         `json:"advance"`
	State   domain.State `json:"state"`
}

// PuzzleService contains the puzzle use cases. Start is the setup boundary:
// it either stores a fully built session or nothing at all.
type PuzzleService struct {
	sessions     SessionRepository
	corpora      CorpusRepository
	choose       game.Chooser
	duration     int
	maxQuestions int
	newID        func() string
	now          func() time.Time
}

// Option configures a PuzzleService.
type Option func(*PuzzleService)

// WithChooser injects the random source for word, question and message selection.
func WithChooser(choose game.Chooser) Option {
	return func(s *PuzzleService) { s.choose = choose }
}

// WithDuration sets the countdown length in seconds.
func WithDuration(seconds int) Option {
	return func(s *PuzzleService) { s.duration = seconds }
}

// WithMaxQuestions caps the questions per session; zero keeps all of them.
func WithMaxQuestions(n int) Option {
	return func(s *PuzzleService) { s.maxQuestions = n }
}

// WithIDGenerator replaces uuid-based session ids. Test-only.
func WithIDGenerator(newID func() string) Option {
	return func(s *PuzzleService) { s.newID = newID }
}

func NewPuzzleService(store SessionRepository, corpora CorpusRepository, opts ...Option) *PuzzleService {
	s := &PuzzleService{
		sessions: store,
		corpora:  corpora,
		choose:   game.DefaultChooser(),
		duration: game.DefaultDurationSeconds,
		newID:    uuid.NewString,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start loads the corpus, picks a word, generates its questions and registers
// a new Active session.
func (s *PuzzleService) Start(ctx context.Context, corpusID string) (*Session, error) {
	records, err := s.corpora.GetCorpus(ctx, corpusID)
	if err != nil {
		return nil, fmt.Errorf("load corpus %q: %w", corpusID, err)
	}
	records = lo.Filter(records, func(r domain.ClueRecord, _ int) bool {
		return r.Usable()
	})
	if len(records) == 0 {
		return nil, fmt.Errorf("corpus %q: %w", corpusID, domain.ErrEmptyCorpus)
	}

	word, err := game.SelectWord(records, s.choose)
	if err != nil {
		return nil, fmt.Errorf("corpus %q: %w", corpusID, err)
	}
	questions, err := game.GenerateQuestions(word, records, s.choose, s.maxQuestions)
	if err != nil {
		return nil, fmt.Errorf("corpus %q: %w", corpusID, err)
	}
	g, err := game.New(word, questions, game.WithDuration(s.duration), game.WithChooser(s.choose))
	if err != nil {
		return nil, err
	}

	session := newSessionWithClock(s.newID(), corpusID, g, s.now)
	s.sessions.Add(session)

	log.Info().
		Str("session", session.ID()).
		Str("corpus", corpusID).
		Int("letters", g.Len()).
		Int("questions", len(questions)).
		Msg("session started")
	return session, nil
}

// Get returns a live session.
func (s *PuzzleService) Get(sessionID string) (*Session, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return session, nil
}

// SetLetter writes one letter into a session.
func (s *PuzzleService) SetLetter(_ context.Context, sessionID string, index int, value string) (LetterResult, error) {
	session, err := s.Get(sessionID)
	if err != nil {
		return LetterResult{}, err
	}
	return session.SetLetter(index, value)
}

// Tick advances a session's countdown by one second.
func (s *PuzzleService) Tick(sessionID string) (domain.State, error) {
	session, err := s.Get(sessionID)
	if err != nil {
		return domain.State{}, err
	}
	return session.Tick(), nil
}

// End forfeits a session.
func (s *PuzzleService) End(sessionID string) (domain.State, error) {
	session, err := s.Get(sessionID)
	if err != nil {
		return domain.State{}, err
	}
	return session.End(), nil
}

// Leave discards a session. Unknown ids are ignored.
func (s *PuzzleService) Leave(sessionID string) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return
	}
	s.sessions.Delete(sessionID)
	st := session.State()
	log.Info().
		Str("session", sessionID).
		Bool("over", st.IsOver).
		Bool("success", st.IsSuccess).
		Int("remaining", st.RemainingSeconds).
		Msg("session discarded")
}
