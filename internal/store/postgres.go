package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/openscenic/backend/internal/models"
)

var (
	// ErrUsernameTaken maps the unique violation on users.username.
	ErrUsernameTaken = errors.New("username already taken")
	// ErrUnknownSegment maps the FK violation raised when rating a
	// segment id that does not exist.
	ErrUnknownSegment = errors.New("unknown segment")
)

// PostgresStore handles all relational persistence: users, sessions,
// scenic segments, and ratings.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Migrate creates the schema if it doesn't exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS users (
			id            TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
			username      TEXT UNIQUE NOT NULL,
			password_hash TEXT NOT NULL,
			age           INT,
			created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE TABLE IF NOT EXISTS sessions (
			id         TEXT PRIMARY KEY,
			user_id    TEXT NOT NULL REFERENCES users(id),
			expires_at TIMESTAMPTZ NOT NULL
		);
		CREATE TABLE IF NOT EXISTS scenic_segments (
			id          BIGSERIAL PRIMARY KEY,
			user_id     TEXT NOT NULL REFERENCES users(id),
			name        TEXT NOT NULL,
			description TEXT,
			route_json  JSONB NOT NULL,
			created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE TABLE IF NOT EXISTS scenic_segment_ratings (
			segment_id BIGINT NOT NULL REFERENCES scenic_segments(id),
			user_id    TEXT NOT NULL REFERENCES users(id),
			rating     INT NOT NULL CHECK (rating BETWEEN 1 AND 5),
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (segment_id, user_id)
		)
	`)
	return err
}

// pgErrCode returns the Postgres error code, or "" for non-pg errors.
func pgErrCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// ── Users ────────────────────────────────────────────────────

func (s *PostgresStore) CreateUser(ctx context.Context, username, passwordHash string, age *int) (*models.User, error) {
	var u models.User
	err := s.pool.QueryRow(ctx,
		`INSERT INTO users (username, password_hash, age)
		 VALUES ($1, $2, $3)
		 RETURNING id, username, age, created_at`,
		username, passwordHash, age,
	).Scan(&u.ID, &u.Username, &u.Age, &u.CreatedAt)
	if err != nil {
		if pgErrCode(err) == "23505" {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return &u, nil
}

func (s *PostgresStore) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var u models.User
	err := s.pool.QueryRow(ctx,
		`SELECT id, username, password_hash, age, created_at FROM users WHERE username = $1`,
		username,
	).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Age, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *PostgresStore) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	err := s.pool.QueryRow(ctx,
		`SELECT id, username, age, created_at FROM users WHERE id = $1`, id,
	).Scan(&u.ID, &u.Username, &u.Age, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// ── Sessions ─────────────────────────────────────────────────

func (s *PostgresStore) CreateSession(ctx context.Context, sess *models.Session) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO sessions (id, user_id, expires_at) VALUES ($1, $2, $3)`,
		sess.ID, sess.UserID, sess.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

// GetSession returns the session row, or nil when the token is unknown.
// Expiry is the caller's concern.
func (s *PostgresStore) GetSession(ctx context.Context, id string) (*models.Session, error) {
	var sess models.Session
	err := s.pool.QueryRow(ctx,
		`SELECT id, user_id, expires_at FROM sessions WHERE id = $1`, id,
	).Scan(&sess.ID, &sess.UserID, &sess.ExpiresAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sess, nil
}

func (s *PostgresStore) DeleteSession(ctx context.Context, id string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM sessions WHERE id = $1`, id)
	return err
}

// ── Segments ─────────────────────────────────────────────────

func (s *PostgresStore) InsertSegment(ctx context.Context, userID, name, description string, route []byte) (int64, error) {
	var id int64
	err := s.pool.QueryRow(ctx,
		`INSERT INTO scenic_segments (user_id, name, description, route_json)
		 VALUES ($1, $2, NULLIF($3, ''), $4::jsonb)
		 RETURNING id`,
		userID, name, description, string(route),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert segment: %w", err)
	}
	return id, nil
}

// ListAggregated returns every segment joined with its rating aggregates
// and submitter name, optionally restricted to one submitter. Both joins
// are LEFT so segments with zero ratings or an unresolvable user row
// still come back.
func (s *PostgresStore) ListAggregated(ctx context.Context, byUserID string) ([]models.AggregatedSegment, error) {
	query := `
		SELECT s.id, s.user_id, s.name, COALESCE(s.description, ''), s.route_json, s.created_at,
		       COALESCE(u.username, 'unknown'),
		       COALESCE(AVG(r.rating), 0)::float8,
		       COUNT(r.rating)::int
		FROM scenic_segments s
		LEFT JOIN scenic_segment_ratings r ON r.segment_id = s.id
		LEFT JOIN users u ON u.id = s.user_id`
	var args []any
	if byUserID != "" {
		query += ` WHERE s.user_id = $1`
		args = append(args, byUserID)
	}
	query += `
		GROUP BY s.id, u.username
		ORDER BY s.id`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list segments: %w", err)
	}
	defer rows.Close()

	var out []models.AggregatedSegment
	for rows.Next() {
		var seg models.AggregatedSegment
		if err := rows.Scan(
			&seg.ID, &seg.UserID, &seg.Name, &seg.Description, &seg.RouteJSON, &seg.CreatedAt,
			&seg.SubmittedBy, &seg.AvgRating, &seg.RatingCount,
		); err != nil {
			return nil, fmt.Errorf("scan segment: %w", err)
		}
		out = append(out, seg)
	}
	return out, rows.Err()
}

// ── Ratings ──────────────────────────────────────────────────

const upsertRatingSQL = `
	INSERT INTO scenic_segment_ratings (segment_id, user_id, rating)
	VALUES ($1, $2, $3)
	ON CONFLICT (segment_id, user_id) DO UPDATE SET rating = EXCLUDED.rating`

// UpsertRating records a user's rating for a segment. A repeated rating
// for the same (segment, user) pair overwrites the stored value.
func (s *PostgresStore) UpsertRating(ctx context.Context, segmentID int64, userID string, rating int) error {
	_, err := s.pool.Exec(ctx, upsertRatingSQL, segmentID, userID, rating)
	if err != nil {
		if pgErrCode(err) == "23503" {
			return ErrUnknownSegment
		}
		return fmt.Errorf("upsert rating: %w", err)
	}
	return nil
}

// UpsertRatings applies a batch of ratings for one user inside a single
// transaction, so either every row lands or none do.
func (s *PostgresStore) UpsertRatings(ctx context.Context, userID string, ratings []models.RatingInput) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for _, r := range ratings {
		batch.Queue(upsertRatingSQL, *r.SegmentID, userID, *r.Rating)
	}
	br := tx.SendBatch(ctx, batch)
	for range ratings {
		if _, err := br.Exec(); err != nil {
			br.Close()
			if pgErrCode(err) == "23503" {
				return ErrUnknownSegment
			}
			return fmt.Errorf("upsert ratings: %w", err)
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("close batch: %w", err)
	}
	return tx.Commit(ctx)
}

// RatingsByUser returns the user's ratings for the given segment ids as a
// sparse map; unrated ids are simply absent.
func (s *PostgresStore) RatingsByUser(ctx context.Context, userID string, segmentIDs []int64) (map[int64]int, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT segment_id, rating FROM scenic_segment_ratings
		 WHERE user_id = $1 AND segment_id = ANY($2)`,
		userID, segmentIDs,
	)
	if err != nil {
		return nil, fmt.Errorf("ratings by user: %w", err)
	}
	defer rows.Close()

	out := make(map[int64]int)
	for rows.Next() {
		var id int64
		var rating int
		if err := rows.Scan(&id, &rating); err != nil {
			return nil, err
		}
		out[id] = rating
	}
	return out, rows.Err()
}

// ProfileStats computes the profile-page aggregates. The queries are
// independent and run sequentially.
func (s *PostgresStore) ProfileStats(ctx context.Context, userID string) (*models.ProfileStats, error) {
	var stats models.ProfileStats

	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM scenic_segments WHERE user_id = $1`, userID,
	).Scan(&stats.RoutesSubmitted)
	if err != nil {
		return nil, fmt.Errorf("routes submitted: %w", err)
	}

	err = s.pool.QueryRow(ctx,
		`SELECT COUNT(*), AVG(rating)::float8 FROM scenic_segment_ratings WHERE user_id = $1`,
		userID,
	).Scan(&stats.RatingsGiven, &stats.AvgGiven)
	if err != nil {
		return nil, fmt.Errorf("ratings given: %w", err)
	}

	err = s.pool.QueryRow(ctx,
		`SELECT AVG(r.rating)::float8, COUNT(DISTINCT r.user_id)
		 FROM scenic_segment_ratings r
		 JOIN scenic_segments s ON s.id = r.segment_id
		 WHERE s.user_id = $1`,
		userID,
	).Scan(&stats.AvgRating, &stats.UniqueRaters)
	if err != nil {
		return nil, fmt.Errorf("received ratings: %w", err)
	}

	return &stats, nil
}
