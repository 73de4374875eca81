// Package feedback implements the append-only MatchFeedback log using
// PostgreSQL. Rows are never updated or deleted.
package feedback

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/campusfind/lostfound-backend/internal/adapter/postgres"
	"github.com/campusfind/lostfound-backend/internal/domain"
)

// Repo provides feedback persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new feedback repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

const createSQL = `
INSERT INTO match_feedback
    (id, item_id, matched_item_id, user_id, is_accurate, comment,
     match_score, item_category, matched_item_category, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, now())
RETURNING created_at`

// Create appends a feedback record and returns it with the server timestamp.
func (r *Repo) Create(ctx context.Context, fb *domain.MatchFeedback) (*domain.MatchFeedback, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	if fb.ID == uuid.Nil {
		fb.ID = uuid.New()
	}

	err := q.QueryRow(ctx, createSQL,
		fb.ID, fb.ItemID, fb.MatchedItemID, fb.UserID,
		fb.IsAccurate, fb.Comment, fb.MatchScore,
		fb.ItemCategory, fb.MatchedItemCategory,
	).Scan(&fb.CreatedAt)
	if err != nil {
		return nil, postgres.MapError(err, "match_feedback", fb.ID)
	}

	return fb, nil
}
