package profile

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"

	"github.com/openscenic/backend/internal/auth"
	"github.com/openscenic/backend/internal/models"
)

type fakeStatsStore struct {
	stats *models.ProfileStats
	err   error
}

func (f *fakeStatsStore) ProfileStats(_ context.Context, _ string) (*models.ProfileStats, error) {
	return f.stats, f.err
}

func TestStats(t *testing.T) {
	avgGiven := 3.5
	h := NewHandler(&fakeStatsStore{stats: &models.ProfileStats{
		RoutesSubmitted: 2,
		RatingsGiven:    4,
		AvgGiven:        &avgGiven,
		UniqueRaters:    3,
	}}, zerolog.Nop())

	req := httptest.NewRequest(http.MethodGet, "/api/profile/stats", nil)
	req = req.WithContext(auth.WithUserID(req.Context(), "u1"))
	w := httptest.NewRecorder()
	h.Stats(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var got models.ProfileStats
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.RoutesSubmitted != 2 || got.RatingsGiven != 4 || got.UniqueRaters != 3 {
		t.Errorf("stats = %+v", got)
	}
	if got.AvgGiven == nil || *got.AvgGiven != 3.5 {
		t.Errorf("avg_given = %v, want 3.5", got.AvgGiven)
	}
	// No ratings received yet: the average is null, not zero.
	if got.AvgRating != nil {
		t.Errorf("avg_rating = %v, want null", *got.AvgRating)
	}
}

func TestStatsUnauthenticated(t *testing.T) {
	h := NewHandler(&fakeStatsStore{}, zerolog.Nop())
	req := httptest.NewRequest(http.MethodGet, "/api/profile/stats", nil)
	w := httptest.NewRecorder()
	h.Stats(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestStatsStoreError(t *testing.T) {
	h := NewHandler(&fakeStatsStore{err: errors.New("db down")}, zerolog.Nop())
	req := httptest.NewRequest(http.MethodGet, "/api/profile/stats", nil)
	req = req.WithContext(auth.WithUserID(req.Context(), "u1"))
	w := httptest.NewRecorder()
	h.Stats(w, req)
	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
}
