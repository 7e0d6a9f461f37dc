package auth

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/openscenic/backend/internal/models"
)

const (
	SessionTTL    = 30 * 24 * time.Hour
	SessionCookie = "session_id"
)

// SessionStore is the persistence contract for session rows.
type SessionStore interface {
	CreateSession(ctx context.Context, sess *models.Session) error
	GetSession(ctx context.Context, id string) (*models.Session, error)
	DeleteSession(ctx context.Context, id string) error
}

// Sessions manages session tokens against the sessions table.
type Sessions struct {
	store SessionStore
}

func NewSessions(store SessionStore) *Sessions {
	return &Sessions{store: store}
}

// Create opens a new session for the user and returns its token.
func (s *Sessions) Create(ctx context.Context, userID string) (string, error) {
	sess := &models.Session{
		ID:        uuid.New().String(),
		UserID:    userID,
		ExpiresAt: time.Now().Add(SessionTTL),
	}
	if err := s.store.CreateSession(ctx, sess); err != nil {
		return "", err
	}
	return sess.ID, nil
}

// Validate returns the user id for a live session, or "" when the token
// is unknown or expired. Expired rows are deleted on sight.
func (s *Sessions) Validate(ctx context.Context, token string) (string, error) {
	sess, err := s.store.GetSession(ctx, token)
	if err != nil {
		return "", err
	}
	if sess == nil {
		return "", nil
	}
	if time.Now().After(sess.ExpiresAt) {
		_ = s.store.DeleteSession(ctx, token)
		return "", nil
	}
	return sess.UserID, nil
}

// Destroy removes a session.
func (s *Sessions) Destroy(ctx context.Context, token string) error {
	return s.store.DeleteSession(ctx, token)
}
