package app_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"banisa-service/internal/app"
	"banisa-service/internal/domain"
	"banisa-service/internal/infra/memory"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func TestStartDoesNotLogTheWord(t *testing.T) {
	var buf bytes.Buffer
	prev, prevLevel := log.Logger, zerolog.GlobalLevel()
	log.Logger = zerolog.New(&buf)
	zerolog.SetGlobalLevel(zerolog.TraceLevel)
	defer func() {
		log.Logger = prev
		zerolog.SetGlobalLevel(prevLevel)
	}()

	service := newTestService(memory.NewSessionStore())
	session, err := service.Start(context.Background(), "tfi")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if !strings.Contains(buf.String(), "session started") {
		t.Fatalf("expected start to be logged, got %q", buf.String())
	}
	if strings.Contains(strings.ToUpper(buf.String()), session.Word()) {
		t.Fatalf("log reveals the target word: %q", buf.String())
	}
}

func TestStartBuildsSession(t *testing.T) {
	ctx := context.Background()
	store := memory.NewSessionStore()
	service := newTestService(store)

	session, err := service.Start(ctx, "tfi")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if session.ID() != "session-1" {
		t.Fatalf("expected injected id, got %s", session.ID())
	}
	if session.Word() != "RAJA" {
		t.Fatalf("expected RAJA, got %s", session.Word())
	}
	if got := len(session.Questions()); got != 2 {
		t.Fatalf("expected 2 questions, got %d", got)
	}
	st := session.State()
	if st.RemainingSeconds != 300 || len(st.UserLetters) != 4 || st.IsOver {
		t.Fatalf("unexpected initial state %+v", st)
	}
	if _, ok := store.Get(session.ID()); !ok {
		t.Fatalf("expected session stored")
	}
}

func TestStartFailuresLeaveNoSession(t *testing.T) {
	ctx := context.Background()
	store := memory.NewSessionStore()
	service := newTestService(store)

	cases := map[string]error{
		"empty":    domain.ErrEmptyCorpus,
		"unusable": domain.ErrEmptyCorpus,
		"missing":  domain.ErrCorpusNotFound,
	}
	for corpusID, want := range cases {
		session, err := service.Start(ctx, corpusID)
		if !errors.Is(err, want) {
			t.Fatalf("corpus %s: expected %v, got %v", corpusID, want, err)
		}
		if session != nil {
			t.Fatalf("corpus %s: expected no session", corpusID)
		}
	}
	if store.Len() != 0 {
		t.Fatalf("expected no stored sessions, got %d", store.Len())
	}
}

func TestSetLetterWinsSession(t *testing.T) {
	ctx := context.Background()
	service := newTestService(memory.NewSessionStore())
	session, err := service.Start(ctx, "tfi")
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	var last app.LetterResult
	for i, l := range []string{"r", "a", "j", "a"} {
		last, err = service.SetLetter(ctx, session.ID(), i, l)
		if err != nil {
			t.Fatalf("set letter %d: %v", i, err)
		}
		if want := i < 3; last.Advance != want {
			t.Fatalf("letter %d: expected advance=%v", i, want)
		}
	}
	if !last.State.IsOver || !last.State.IsSuccess || last.State.SuccessMessage == "" {
		t.Fatalf("expected success, got %+v", last.State)
	}
	select {
	case <-session.Done():
	default:
		t.Fatalf("expected done to be closed")
	}
}

func TestSetLetterErrors(t *testing.T) {
	ctx := context.Background()
	service := newTestService(memory.NewSessionStore())

	if _, err := service.SetLetter(ctx, "nope", 0, "a"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected session not found, got %v", err)
	}

	session, _ := service.Start(ctx, "tfi")
	if _, err := service.SetLetter(ctx, session.ID(), 4, "a"); !errors.Is(err, domain.ErrIndexOutOfRange) {
		t.Fatalf("expected out of range, got %v", err)
	}
}

func TestEndAndLeave(t *testing.T) {
	ctx := context.Background()
	store := memory.NewSessionStore()
	service := newTestService(store)
	session, _ := service.Start(ctx, "tfi")

	st, err := service.End(session.ID())
	if err != nil {
		t.Fatalf("end: %v", err)
	}
	if !st.IsOver || st.IsSuccess {
		t.Fatalf("expected forfeit, got %+v", st)
	}

	service.Leave(session.ID())
	if _, err := service.Tick(session.ID()); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected session gone, got %v", err)
	}
	service.Leave(session.ID())
}

func TestRunCountdownStopsOnTimeout(t *testing.T) {
	ctx := context.Background()
	service := newTestService(memory.NewSessionStore(), app.WithDuration(3))
	session, _ := service.Start(ctx, "tfi")

	ticks := make(chan time.Time, 10)
	for i := 0; i < 10; i++ {
		ticks <- time.Time{}
	}

	var states []domain.State
	session.RunCountdown(ctx, ticks, func(st domain.State) {
		states = append(states, st)
	})

	if len(states) != 3 {
		t.Fatalf("expected 3 notifications, got %d", len(states))
	}
	final := states[len(states)-1]
	if final.RemainingSeconds != 0 || !final.IsOver || final.IsSuccess {
		t.Fatalf("expected timeout, got %+v", final)
	}
	if len(ticks) != 7 {
		t.Fatalf("expected remaining ticks untouched, got %d", len(ticks))
	}
}

func TestRunCountdownStopsWhenSolved(t *testing.T) {
	ctx := context.Background()
	service := newTestService(memory.NewSessionStore())
	session, _ := service.Start(ctx, "tfi")

	for i, l := range []string{"R", "A", "J", "A"} {
		if _, err := session.SetLetter(i, l); err != nil {
			t.Fatalf("set letter: %v", err)
		}
	}

	ticks := make(chan time.Time, 1)
	ticks <- time.Time{}
	called := false
	session.RunCountdown(ctx, ticks, func(domain.State) { called = true })
	if called {
		t.Fatalf("expected no tick delivered after the game ended")
	}
	if got := session.State().RemainingSeconds; got != 300 {
		t.Fatalf("expected clock untouched, got %d", got)
	}
}

func TestRunCountdownStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	service := newTestService(memory.NewSessionStore())
	session, _ := service.Start(ctx, "tfi")

	done := make(chan struct{})
	go func() {
		session.RunCountdown(ctx, make(chan time.Time), nil)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("countdown did not stop on cancel")
	}
}

func newTestService(store app.SessionRepository, opts ...app.Option) *app.PuzzleService {
	corpora := memory.NewCorpusRepository(memory.NewStaticCorpusLoader(map[string][]domain.ClueRecord{
		"tfi": {
			{Question: "Who sang the title track?", Answer: "SPB", Song: "Raja Raja", Movie: "Raja", Words: []string{"raja"}},
			{Question: "Which year did it release?", Answer: "1999", Movie: "Raja", Words: []string{"RAJA"}},
		},
		"empty":    {},
		"unusable": {{Question: "q", Answer: "a", Words: []string{"RAJA"}}},
	}), 5*time.Minute)

	n := 0
	defaults := []app.Option{
		app.WithChooser(func(int) int { return 0 }),
		app.WithIDGenerator(func() string {
			n++
			return "session-" + string(rune('0'+n))
		}),
	}
	return app.NewPuzzleService(store, corpora, append(defaults, opts...)...)
}
