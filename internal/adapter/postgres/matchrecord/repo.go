// Package matchrecord implements the MatchRecord repository using PostgreSQL.
package matchrecord

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/campusfind/lostfound-backend/internal/adapter/postgres"
	"github.com/campusfind/lostfound-backend/internal/domain"
)

// Repo provides match-record persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new match-record repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

const createSQL = `
INSERT INTO match_records (id, lost_item_id, found_item_id, score, status, created_at, confirmed_at)
VALUES ($1, $2, $3, $4, $5, now(), $6)
RETURNING created_at`

const getByPairSQL = `
SELECT id, lost_item_id, found_item_id, score, status, created_at, confirmed_at
FROM match_records
WHERE lost_item_id = $1 AND found_item_id = $2`

// Create inserts a match record. The (lost_item_id, found_item_id) pair is
// unique; a duplicate maps to domain.ErrAlreadyExists.
func (r *Repo) Create(ctx context.Context, record *domain.MatchRecord) (*domain.MatchRecord, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}

	var confirmedAt pgtype.Timestamptz
	if record.ConfirmedAt != nil {
		confirmedAt = pgtype.Timestamptz{Time: *record.ConfirmedAt, Valid: true}
	}

	err := q.QueryRow(ctx, createSQL,
		record.ID, record.LostItemID, record.FoundItemID,
		record.Score, record.Status, confirmedAt,
	).Scan(&record.CreatedAt)
	if err != nil {
		return nil, postgres.MapError(err, "match_record", record.ID)
	}

	return record, nil
}

// GetByPair returns the match record for a lost/found pair.
// Returns domain.ErrNotFound when the pair has never been confirmed.
func (r *Repo) GetByPair(ctx context.Context, lostItemID, foundItemID uuid.UUID) (*domain.MatchRecord, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	var (
		record      domain.MatchRecord
		status      string
		confirmedAt pgtype.Timestamptz
	)
	err := q.QueryRow(ctx, getByPairSQL, lostItemID, foundItemID).Scan(
		&record.ID, &record.LostItemID, &record.FoundItemID,
		&record.Score, &status, &record.CreatedAt, &confirmedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("match %s/%s: %w", lostItemID, foundItemID, domain.ErrNotFound)
		}
		return nil, postgres.MapError(err, "match_record", lostItemID)
	}

	record.Status = domain.MatchStatus(status)
	if confirmedAt.Valid {
		t := confirmedAt.Time
		record.ConfirmedAt = &t
	}

	return &record, nil
}
