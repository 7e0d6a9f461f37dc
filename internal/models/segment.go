package models

import (
	"encoding/json"
	"time"
)

// Segment represents a row in the scenic_segments table. RouteJSON holds
// the stored JSONB feature payload exactly as persisted.
type Segment struct {
	ID          int64           `json:"id"`
	UserID      string          `json:"user_id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	RouteJSON   json.RawMessage `json:"route_json"`
	CreatedAt   time.Time       `json:"created_at"`
}

// AggregatedSegment is one row of the ratings-joined segment listing:
// the segment plus its average rating, rating count, and the submitter's
// display name ("unknown" when the user row cannot be resolved).
type AggregatedSegment struct {
	Segment
	SubmittedBy string  `json:"submitted_by"`
	AvgRating   float64 `json:"avg_rating"`
	RatingCount int     `json:"rating_count"`
}

// SubmitRequest is the JSON body for POST /api/submit. RouteJSON arrives
// as a string from the map editor and is parsed server-side before storage.
type SubmitRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
	RouteJSON   string `json:"route_json" validate:"required"`
}

// RatingInput is a single (segment, rating) pair. Pointer fields
// distinguish absent keys from zero values so validation can report them.
type RatingInput struct {
	SegmentID *int64 `json:"segmentId" validate:"required"`
	Rating    *int   `json:"rating" validate:"required,gte=1,lte=5"`
}

// RateRequest is the JSON body for POST /api/rate. A body carrying
// "ratings" is treated as a batch; otherwise segmentId/rating apply.
type RateRequest struct {
	SegmentID *int64        `json:"segmentId"`
	Rating    *int          `json:"rating"`
	Ratings   []RatingInput `json:"ratings"`
}

// MyRatingsRequest is the JSON body for POST /api/my-ratings.
type MyRatingsRequest struct {
	IDs []int64 `json:"ids"`
}

// ProfileStats are the aggregate figures shown on the profile page.
// AvgGiven and AvgRating are nil when the user has no ratings in the
// relevant direction, which is distinct from an average of zero.
type ProfileStats struct {
	RoutesSubmitted int      `json:"routes_submitted"`
	RatingsGiven    int      `json:"ratings_given"`
	AvgGiven        *float64 `json:"avg_given"`
	AvgRating       *float64 `json:"avg_rating"`
	UniqueRaters    int      `json:"unique_raters"`
}
