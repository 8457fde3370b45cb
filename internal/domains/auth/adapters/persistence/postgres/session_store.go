package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shroombros/shroom-api/internal/domains/auth/domain"
	"github.com/shroombros/shroom-api/internal/domains/auth/ports"
)

var _ ports.SessionStore = (*SessionStore)(nil)

// SessionStore persists user sessions in PostgreSQL.
type SessionStore struct {
	db *gorm.DB
}

// NewSessionStore wires a PostgreSQL-backed session store. Caller owns DB lifecycle.
func NewSessionStore(db *gorm.DB) *SessionStore {
	return &SessionStore{db: db}
}

type SessionRecord struct {
	ID        uuid.UUID `gorm:"primaryKey;type:uuid;column:id"`
	UserID    uuid.UUID `gorm:"type:uuid;column:user_id;not null;index"`
	ExpiresAt time.Time `gorm:"column:expires_at;not null;index"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (SessionRecord) TableName() string { return "user_sessions" }

func (s *SessionStore) Save(ctx context.Context, session *domain.Session) error {
	if err := s.ensureDB(); err != nil {
		return err
	}
	if session == nil {
		return errors.New("session is nil")
	}
	rec := SessionRecord{
		ID:        session.ID,
		UserID:    session.UserID,
		ExpiresAt: session.ExpiresAt,
		CreatedAt: session.CreatedAt,
	}
	return s.db.WithContext(ctx).Create(&rec).Error
}

func (s *SessionStore) Get(ctx context.Context, id uuid.UUID) (*domain.Session, error) {
	if err := s.ensureDB(); err != nil {
		return nil, err
	}
	var rec SessionRecord
	if err := s.db.WithContext(ctx).First(&rec, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrSessionNotFound
		}
		return nil, err
	}
	return &domain.Session{ID: rec.ID, UserID: rec.UserID, ExpiresAt: rec.ExpiresAt, CreatedAt: rec.CreatedAt}, nil
}

func (s *SessionStore) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.ensureDB(); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Delete(&SessionRecord{}, "id = ?", id).Error
}

// PurgeExpired removes all expired sessions. Use for housekeeping or cron.
func (s *SessionStore) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	if err := s.ensureDB(); err != nil {
		return 0, err
	}
	res := s.db.WithContext(ctx).Where("expires_at <= ?", now).Delete(&SessionRecord{})
	return res.RowsAffected, res.Error
}

func (s *SessionStore) ensureDB() error {
	if s == nil || s.db == nil {
		return errors.New("postgres session store not configured")
	}
	return nil
}
