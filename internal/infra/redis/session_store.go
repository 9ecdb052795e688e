package redis

import (
	"context"
	"sync"
	"time"

	"banisa-service/internal/app"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// SessionStore is a Redis-aware implementation of app.SessionRepository.
// Notes:
//   - Sessions hold a live state machine and a countdown, so they stay in a
//     local map owned by this process.
//   - Redis marks session liveness with the corpus id. Count reads the markers
//     back, giving the number of live sessions across all instances. A marker
//     expires after ttl so a crashed instance does not leave sessions behind.
type SessionStore struct {
	client   *redis.Client
	ttl      time.Duration
	mu       sync.RWMutex
	sessions map[string]*app.Session
}

func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{
		client:   client,
		ttl:      ttl,
		sessions: make(map[string]*app.Session),
	}
}

func (s *SessionStore) Add(session *app.Session) {
	s.mu.Lock()
	s.sessions[session.ID()] = session
	s.mu.Unlock()

	// best-effort liveness marker
	if err := s.client.Set(context.Background(), s.key(session.ID()), session.CorpusID(), s.ttl).Err(); err != nil {
		log.Warn().Err(err).Str("session", session.ID()).Msg("mark session live")
	}
}

func (s *SessionStore) Get(sessionID string) (*app.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[sessionID]
	return session, ok
}

func (s *SessionStore) Delete(sessionID string) {
	s.mu.Lock()
	_, ok := s.sessions[sessionID]
	delete(s.sessions, sessionID)
	s.mu.Unlock()

	if ok {
		if err := s.client.Del(context.Background(), s.key(sessionID)).Err(); err != nil {
			log.Warn().Err(err).Str("session", sessionID).Msg("clear session marker")
		}
	}
}

// Count reports live sessions across every instance sharing the Redis.
func (s *SessionStore) Count(ctx context.Context) (int, error) {
	n := 0
	iter := s.client.Scan(ctx, 0, sessionKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		n++
	}
	if err := iter.Err(); err != nil {
		return 0, err
	}
	return n, nil
}

const sessionKeyPrefix = "banisa:session:"

func (s *SessionStore) key(sessionID string) string {
	return sessionKeyPrefix + sessionID
}
