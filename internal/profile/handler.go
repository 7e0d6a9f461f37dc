package profile

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/openscenic/backend/internal/auth"
	"github.com/openscenic/backend/internal/models"
)

// StatsStore defines the interface for profile statistics.
type StatsStore interface {
	ProfileStats(ctx context.Context, userID string) (*models.ProfileStats, error)
}

// Handler serves the profile-page statistics.
type Handler struct {
	stats StatsStore
	log   zerolog.Logger
}

func NewHandler(stats StatsStore, log zerolog.Logger) *Handler {
	return &Handler{stats: stats, log: log}
}

// Stats returns the caller's submission and rating aggregates.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	if userID == "" {
		http.Error(w, `{"error":"not authenticated"}`, http.StatusUnauthorized)
		return
	}

	stats, err := h.stats.ProfileStats(r.Context(), userID)
	if err != nil {
		h.log.Error().Err(err).Msg("profile stats")
		http.Error(w, `{"error":"database error"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(stats)
}
