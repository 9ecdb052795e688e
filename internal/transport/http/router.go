package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
)

// SessionCounter reports how many sessions are live.
type SessionCounter interface {
	Count(ctx context.Context) (int, error)
}

// NewRouter mounts the health check and the websocket endpoint. When sessions
// is non-nil, GET /sessions reports the live session count.
func NewRouter(ws *WSHandler, sessions SessionCounter) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	if sessions != nil {
		r.Get("/sessions", func(w http.ResponseWriter, r *http.Request) {
			n, err := sessions.Count(r.Context())
			if err != nil {
				log.Warn().Err(err).Msg("count sessions")
				http.Error(w, "session count unavailable", http.StatusServiceUnavailable)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]int{"live": n})
		})
	}
	r.Get("/ws", ws.ServeWS)
	return r
}
