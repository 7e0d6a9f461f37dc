// Package segments implements the scenic-segment endpoints: submission,
// rating (single and batch), per-user rating lookup, and the aggregated
// feature listing.
package segments

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/openscenic/backend/internal/auth"
	"github.com/openscenic/backend/internal/models"
	"github.com/openscenic/backend/internal/store"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// SegmentStore defines the interface for segment and rating persistence.
type SegmentStore interface {
	InsertSegment(ctx context.Context, userID, name, description string, route []byte) (int64, error)
	ListAggregated(ctx context.Context, byUserID string) ([]models.AggregatedSegment, error)
	UpsertRating(ctx context.Context, segmentID int64, userID string, rating int) error
	UpsertRatings(ctx context.Context, userID string, ratings []models.RatingInput) error
	RatingsByUser(ctx context.Context, userID string, segmentIDs []int64) (map[int64]int, error)
}

// Handler holds the segment HTTP handlers.
type Handler struct {
	segments SegmentStore
	log      zerolog.Logger
}

func NewHandler(segments SegmentStore, log zerolog.Logger) *Handler {
	return &Handler{segments: segments, log: log}
}

// Submit persists a new scenic segment owned by the caller.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	var req models.SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusBadRequest, "missing or invalid fields")
		return
	}

	// The editor sends route_json as a string; it must hold a feature
	// with a geometry. Malformed payloads are a 400, never a crash.
	feature, err := models.ParseFeature([]byte(req.RouteJSON))
	if err != nil {
		writeError(w, http.StatusBadRequest, "route_json is not a valid feature")
		return
	}

	// Re-encode so the stored JSONB is the parsed structure, not a
	// double-encoded string.
	stored, err := json.Marshal(feature)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	if _, err := h.segments.InsertSegment(r.Context(), userID, req.Name, req.Description, stored); err != nil {
		h.log.Error().Err(err).Msg("insert segment")
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// Rate records one rating, or a batch of them when the body carries a
// "ratings" array. Conflict policy is last-write-wins in both shapes.
func (h *Handler) Rate(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	var req models.RateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Ratings != nil {
		h.rateBatch(w, r, userID, req.Ratings)
		return
	}

	single := models.RatingInput{SegmentID: req.SegmentID, Rating: req.Rating}
	if err := validate.Struct(&single); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	err := h.segments.UpsertRating(r.Context(), *single.SegmentID, userID, *single.Rating)
	if err != nil {
		if errors.Is(err, store.ErrUnknownSegment) {
			writeError(w, http.StatusBadRequest, "unknown segment")
			return
		}
		h.log.Error().Err(err).Msg("upsert rating")
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// rateBatch validates every element before any write; one bad element
// rejects the whole batch. Persistence is transactional.
func (h *Handler) rateBatch(w http.ResponseWriter, r *http.Request, userID string, ratings []models.RatingInput) {
	if len(ratings) == 0 {
		writeError(w, http.StatusBadRequest, "ratings must not be empty")
		return
	}
	for i := range ratings {
		if err := validate.Struct(&ratings[i]); err != nil {
			writeError(w, http.StatusBadRequest, "invalid payload")
			return
		}
	}

	if err := h.segments.UpsertRatings(r.Context(), userID, ratings); err != nil {
		if errors.Is(err, store.ErrUnknownSegment) {
			writeError(w, http.StatusBadRequest, "unknown segment")
			return
		}
		h.log.Error().Err(err).Msg("upsert ratings")
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// MyRatings returns the caller's ratings for the requested segment ids as
// a sparse map; unrated ids are absent rather than zero.
func (h *Handler) MyRatings(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	var req models.MyRatingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.IDs == nil {
		writeError(w, http.StatusBadRequest, "ids must be an array of numbers")
		return
	}

	ratings, err := h.segments.RatingsByUser(r.Context(), userID, req.IDs)
	if err != nil {
		h.log.Error().Err(err).Msg("ratings by user")
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}

	writeJSON(w, http.StatusOK, ratings)
}

// List returns the aggregated feature collection, optionally filtered to
// one submitter via ?by=<userId>.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	rows, err := h.segments.ListAggregated(r.Context(), r.URL.Query().Get("by"))
	if err != nil {
		h.log.Error().Err(err).Msg("list segments")
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}

	features := make([]models.Feature, 0, len(rows))
	for _, row := range rows {
		feature, err := models.ParseFeature(row.RouteJSON)
		if err != nil {
			// A bad stored payload drops the row, not the request.
			h.log.Warn().Err(err).Int64("segment_id", row.ID).Msg("skipping malformed route_json")
			continue
		}
		feature.Properties["id"] = row.ID
		feature.Properties["name"] = row.Name
		feature.Properties["description"] = row.Description
		feature.Properties["createdAt"] = row.CreatedAt.Format(time.RFC3339)
		feature.Properties["submittedBy"] = row.SubmittedBy
		feature.Properties["avgRating"] = row.AvgRating
		feature.Properties["ratingCount"] = row.RatingCount
		features = append(features, *feature)
	}

	writeJSON(w, http.StatusOK, map[string][]models.Feature{"features": features})
}
