package memory

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/shroombros/shroom-api/internal/domains/auth/domain"
	"github.com/shroombros/shroom-api/internal/domains/auth/ports"
)

var _ ports.SessionStore = (*SessionStore)(nil)

// SessionStore is an in-memory SessionStore implementation.
type SessionStore struct {
	sessions sync.Map
}

func NewSessionStore() *SessionStore {
	return &SessionStore{}
}

func (s *SessionStore) Save(_ context.Context, session *domain.Session) error {
	if session == nil {
		return errors.New("session is nil")
	}
	clone := *session
	s.sessions.Store(clone.ID, clone)
	return nil
}

func (s *SessionStore) Get(_ context.Context, id uuid.UUID) (*domain.Session, error) {
	value, ok := s.sessions.Load(id)
	if !ok {
		return nil, ports.ErrSessionNotFound
	}
	session := value.(domain.Session)
	return &session, nil
}

func (s *SessionStore) Delete(_ context.Context, id uuid.UUID) error {
	s.sessions.Delete(id)
	return nil
}

func (s *SessionStore) PurgeExpired(_ context.Context, now time.Time) (int64, error) {
	var purged int64
	s.sessions.Range(func(key, value any) bool {
		session := value.(domain.Session)
		if session.Expired(now) {
			if _, loaded := s.sessions.LoadAndDelete(key); loaded {
				purged++
			}
		}
		return true
	})
	return purged, nil
}
