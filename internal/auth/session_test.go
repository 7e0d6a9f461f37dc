package auth

import (
	"context"
	"testing"
	"time"

	"github.com/openscenic/backend/internal/models"
)

func TestSessionsValidate(t *testing.T) {
	store := newFakeSessionStore()
	sessions := NewSessions(store)
	ctx := context.Background()

	token, err := sessions.Create(ctx, "u1")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if token == "" {
		t.Fatal("empty token")
	}

	userID, err := sessions.Validate(ctx, token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if userID != "u1" {
		t.Errorf("userID = %q, want u1", userID)
	}

	// Unknown token resolves to no user, not an error.
	userID, err = sessions.Validate(ctx, "no-such-token")
	if err != nil {
		t.Fatalf("validate unknown: %v", err)
	}
	if userID != "" {
		t.Errorf("userID = %q, want empty", userID)
	}
}

func TestSessionsValidateExpired(t *testing.T) {
	store := newFakeSessionStore()
	sessions := NewSessions(store)
	ctx := context.Background()

	store.sessions["stale"] = &models.Session{
		ID:        "stale",
		UserID:    "u1",
		ExpiresAt: time.Now().Add(-time.Hour),
	}

	userID, err := sessions.Validate(ctx, "stale")
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if userID != "" {
		t.Errorf("expired session resolved to %q", userID)
	}
	if store.sessions["stale"] != nil {
		t.Error("expired session row not deleted")
	}
}

func TestSessionsDestroy(t *testing.T) {
	store := newFakeSessionStore()
	sessions := NewSessions(store)
	ctx := context.Background()

	token, err := sessions.Create(ctx, "u1")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := sessions.Destroy(ctx, token); err != nil {
		t.Fatalf("destroy: %v", err)
	}
	if userID, _ := sessions.Validate(ctx, token); userID != "" {
		t.Errorf("destroyed session still resolves to %q", userID)
	}
}
