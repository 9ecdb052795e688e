package app

import (
	"context"
	"sync"
	"time"

	"banisa-service/internal/domain"
	"banisa-service/internal/game"
	"github.com/rs/zerolog/log"
)

// Session is one playthrough. It wraps the game state machine and signals
// Done once the game reaches Over so tick sources can stop.
type Session struct {
	id        string
	corpusID  string
	createdAt time.Time
	game      *game.Game

	doneOnce sync.Once
	done     chan struct{}
}

// NewSession is exported for infrastructure layers and tests that need to seed sessions.
func NewSession(id, corpusID string, g *game.Game) *Session {
	return newSessionWithClock(id, corpusID, g, time.Now)
}

func newSessionWithClock(id, corpusID string, g *game.Game, now func() time.Time) *Session {
	return &Session{
		id:        id,
		corpusID:  corpusID,
		createdAt: now(),
		game:      g,
		done:      make(chan struct{}),
	}
}

func (s *Session) ID() string           { return s.id }
func (s *Session) CorpusID() string     { return s.corpusID }
func (s *Session) CreatedAt() time.Time { return s.createdAt }
func (s *Session) Word() string         { return s.game.Word() }
func (s *Session) Len() int             { return s.game.Len() }

// Questions returns the session's questions in their fixed order.
func (s *Session) Questions() []domain.GameQuestion {
	return s.game.Questions()
}

// State returns a snapshot of the session state.
func (s *Session) State() domain.State {
	return s.game.State()
}

// Marks reports per-slot correctness of the letters in st.
func (s *Session) Marks(st domain.State) (correct, incorrect []bool) {
	return game.MarkLetters(s.game.Word(), st.UserLetters)
}

// Done is closed when the game is over.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// SetLetter writes one letter and reports whether input should advance.
func (s *Session) SetLetter(index int, value string) (LetterResult, error) {
	advance, st, err := s.game.SetLetter(index, value)
	if err != nil {
		return LetterResult{}, err
	}
	return LetterResult{Index: index, Advance: advance, State: s.observe(st)}, nil
}

// Tick advances the countdown by one second.
func (s *Session) Tick() domain.State {
	return s.observe(s.game.Tick())
}

// End forfeits the session unless it is already solved.
func (s *Session) End() domain.State {
	return s.observe(s.game.ForceEnd())
}

// RunCountdown calls Tick for every value received on ticks and hands the
// resulting state to notify. It returns once the game is over, ticks is
// closed or ctx is cancelled. A tick that arrives after the game ended is
// dropped.
func (s *Session) RunCountdown(ctx context.Context, ticks <-chan time.Time, notify func(domain.State)) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.done:
			return
		case _, ok := <-ticks:
			if !ok {
				return
			}
			select {
			case <-s.done:
				return
			default:
			}
			st := s.Tick()
			if notify != nil {
				notify(st)
			}
			if st.IsOver {
				return
			}
		}
	}
}

func (s *Session) observe(st domain.State) domain.State {
	if st.IsOver {
		s.doneOnce.Do(func() {
			close(s.done)
			log.Info().
				Str("session", s.id).
				Bool("success", st.IsSuccess).
				Int("remaining", st.RemainingSeconds).
				Msg("session over")
		})
	}
	return st
}
