package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"banisa-service/internal/app"
	"banisa-service/internal/domain"
	"banisa-service/internal/game"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

// TickerFunc starts a tick source with the given period and returns its
// channel and a stop function.
type TickerFunc func(d time.Duration) (<-chan time.Time, func())

func realTicker(d time.Duration) (<-chan time.Time, func()) {
	t := time.NewTicker(d)
	return t.C, t.Stop
}

// Options tunes the websocket host.
type Options struct {
	DefaultCorpus string
	Tick          time.Duration
	Rate          float64 // inbound messages per second, <= 0 disables limiting
	Burst         int
}

type WSHandler struct {
	service   *app.PuzzleService
	upgrader  websocket.Upgrader
	opts      Options
	newTicker TickerFunc
}

func NewWSHandler(service *app.PuzzleService, opts Options) *WSHandler {
	if opts.Tick <= 0 {
		opts.Tick = time.Second
	}
	if opts.Burst <= 0 {
		opts.Burst = 1
	}
	return &WSHandler{
		service: service,
		opts:    opts,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		newTicker: realTicker,
	}
}

// WithTicker swaps the tick source, letting tests drive the countdown by hand.
func (h *WSHandler) WithTicker(f TickerFunc) *WSHandler {
	h.newTicker = f
	return h
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type letterPayload struct {
	Index int    `json:"index"`
	Value string `json:"value"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

type questionView struct {
	Prompt string `json:"prompt"`
}

type stateView struct {
	Revision         uint64   `json:"revision"`
	RemainingSeconds int      `json:"remainingSeconds"`
	Clock            string   `json:"clock"`
	Letters          []string `json:"letters"`
	Correct          []bool   `json:"correct"`
	Incorrect        []bool   `json:"incorrect"`
	IsOver           bool     `json:"isOver"`
	IsSuccess        bool     `json:"isSuccess"`
	SuccessMessage   string   `json:"successMessage,omitempty"`
}

type startedPayload struct {
	SessionID  string         `json:"sessionId"`
	WordLength int            `json:"wordLength"`
	Questions  []questionView `json:"questions"`
	State      stateView      `json:"state"`
}

type letterResult struct {
	Index   int  `json:"index"`
	Advance bool `json:"advance"`
}

type revealView struct {
	Prompt string `json:"prompt"`
	Answer string `json:"answer"`
	Song   string `json:"song,omitempty"`
	Movie  string `json:"movie"`
}

type overPayload struct {
	Word   string       `json:"word"`
	State  stateView    `json:"state"`
	Reveal []revealView `json:"reveal"`
}

const loadFailedMessage = "failed to load game data"

// ServeWS upgrades the request, starts a puzzle session and hosts it until
// the client disconnects. The session's countdown runs on its own goroutine.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	corpusID := r.URL.Query().Get("corpusId")
	if corpusID == "" {
		corpusID = h.opts.DefaultCorpus
	}
	if corpusID == "" {
		http.Error(w, "missing corpusId", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("ws upgrade failed")
		return
	}
	defer conn.Close()

	session, err := h.service.Start(r.Context(), corpusID)
	if err != nil {
		log.Warn().Err(err).Str("corpus", corpusID).Msg("session setup failed")
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: loadFailedMessage}})
		return
	}
	defer h.service.Leave(session.ID())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	countdownDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Debug().Err(err).Str("session", session.ID()).Msg("ws write error")
				return
			}
		}
	}()

	emit := func(typ string, payload any) {
		select {
		case send <- outboundMessage[any]{Type: typ, Payload: payload}:
		case <-closeSignals:
		}
	}
	pub := &statePublisher{session: session, emit: emit}

	emit("started", newStartedPayload(session))

	ticks, stopTicker := h.newTicker(h.opts.Tick)
	go func() {
		defer close(countdownDone)
		defer stopTicker()
		session.RunCountdown(ctx, ticks, pub.publish)
	}()

	limiter := rate.NewLimiter(rate.Inf, h.opts.Burst)
	if h.opts.Rate > 0 {
		limiter = rate.NewLimiter(rate.Limit(h.opts.Rate), h.opts.Burst)
	}

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		if !limiter.Allow() {
			emit("error", errorPayload{Message: "too many messages"})
			continue
		}
		switch inbound.Type {
		case "letter":
			var payload letterPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				emit("error", errorPayload{Message: "invalid letter payload"})
				continue
			}
			res, err := h.service.SetLetter(r.Context(), session.ID(), payload.Index, payload.Value)
			if err != nil {
				if errors.Is(err, domain.ErrIndexOutOfRange) {
					log.Warn().Err(err).Str("session", session.ID()).Msg("client sent bad letter index")
					emit("error", errorPayload{Message: "invalid letter index"})
					continue
				}
				emit("error", errorPayload{Message: err.Error()})
				continue
			}
			emit("letter", letterResult{Index: res.Index, Advance: res.Advance})
			pub.publish(res.State)
		case "end":
			st, err := h.service.End(session.ID())
			if err != nil {
				emit("error", errorPayload{Message: err.Error()})
				continue
			}
			pub.publish(st)
		default:
			emit("error", errorPayload{Message: "unsupported message type"})
		}
	}

	close(closeSignals)
	cancel()
	<-countdownDone
	close(send)
	<-writerDone
}

// statePublisher serializes state pushes from the reader loop and the
// countdown goroutine. A snapshot older than the last one sent is dropped,
// and once over has been sent only over states go out.
type statePublisher struct {
	session *app.Session
	emit    func(typ string, payload any)

	mu       sync.Mutex
	revision uint64
	overSent bool
}

func (p *statePublisher) publish(st domain.State) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if st.Revision < p.revision || (p.overSent && !st.IsOver) {
		return
	}
	p.revision = st.Revision
	p.emit("state", newStateView(p.session, st))
	if st.IsOver && !p.overSent {
		p.overSent = true
		p.emit("over", newOverPayload(p.session, st))
	}
}

func newStateView(session *app.Session, st domain.State) stateView {
	correct, incorrect := session.Marks(st)
	return stateView{
		Revision:         st.Revision,
		RemainingSeconds: st.RemainingSeconds,
		Clock:            game.FormatTime(st.RemainingSeconds),
		Letters:          st.UserLetters,
		Correct:          correct,
		Incorrect:        incorrect,
		IsOver:           st.IsOver,
		IsSuccess:        st.IsSuccess,
		SuccessMessage:   st.SuccessMessage,
	}
}

func newStartedPayload(session *app.Session) startedPayload {
	questions := session.Questions()
	views := make([]questionView, 0, len(questions))
	for _, q := range questions {
		views = append(views, questionView{Prompt: q.Prompt})
	}
	return startedPayload{
		SessionID:  session.ID(),
		WordLength: session.Len(),
		Questions:  views,
		State:      newStateView(session, session.State()),
	}
}

// newOverPayload reveals the word and the full clue records.
func newOverPayload(session *app.Session, st domain.State) overPayload {
	questions := session.Questions()
	reveal := make([]revealView, 0, len(questions))
	for _, q := range questions {
		reveal = append(reveal, revealView{
			Prompt: q.Prompt,
			Answer: q.Record.Answer,
			Song:   q.Record.Song,
			Movie:  q.Record.Movie,
		})
	}
	return overPayload{
		Word:   session.Word(),
		State:  newStateView(session, st),
		Reveal: reveal,
	}
}
