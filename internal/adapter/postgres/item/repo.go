// Package item implements the item read/update repository using PostgreSQL.
// Items themselves are created and edited by the posting service; this
// backend reads snapshots, loads tag sets, and performs the conditional
// status transition used by the match confirmation flow.
package item

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/campusfind/lostfound-backend/internal/adapter/postgres"
	"github.com/campusfind/lostfound-backend/internal/domain"
	"github.com/campusfind/lostfound-backend/internal/geo"
)

// Repo provides item persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new item repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

const itemColumns = `
    i.id, i.user_id, i.title, i.description, i.type, i.category,
    i.longitude, i.latitude, i.location_desc, i.event_time, i.status,
    i.deleted, i.created_at, i.updated_at`

const getByIDSQL = `
SELECT` + itemColumns + `
FROM items i
WHERE i.id = $1 AND i.deleted = FALSE`

const listInBoxSQL = `
SELECT` + itemColumns + `
FROM items i
WHERE i.deleted = FALSE
  AND i.latitude  IS NOT NULL AND i.latitude  BETWEEN $1 AND $2
  AND i.longitude IS NOT NULL AND i.longitude BETWEEN $3 AND $4`

const tagsByItemSQL = `
SELECT tag, confidence FROM item_tags WHERE item_id = $1`

const tagsByItemsSQL = `
SELECT item_id, tag, confidence FROM item_tags WHERE item_id = ANY($1::uuid[])`

const updateStatusIfSQL = `
UPDATE items SET status = $1, updated_at = now()
WHERE id = $2 AND deleted = FALSE AND status = $3`

// GetByID returns a non-deleted item by primary key.
// Returns domain.ErrNotFound for unknown or soft-deleted ids.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Item, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := q.Query(ctx, getByIDSQL, id)
	if err != nil {
		return nil, postgres.MapError(err, "item", id)
	}
	defer rows.Close()

	items, err := scanItems(rows)
	if err != nil {
		return nil, postgres.MapError(err, "item", id)
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("item %s: %w", id, domain.ErrNotFound)
	}

	return items[0], nil
}

// ListCandidates returns non-deleted items matching the bounded filter,
// ordered by event_time descending. Tag sets are NOT loaded; use
// TagsByItemIDs for the surviving candidates.
func (r *Repo) ListCandidates(ctx context.Context, f domain.CandidateFilter) ([]*domain.Item, error) {
	f.Normalize()

	builder := sq.Select(
		"i.id", "i.user_id", "i.title", "i.description", "i.type", "i.category",
		"i.longitude", "i.latitude", "i.location_desc", "i.event_time", "i.status",
		"i.deleted", "i.created_at", "i.updated_at",
	).
		From("items i").
		Where(sq.Eq{"i.deleted": false}).
		Where(sq.Eq{"i.type": f.Type}).
		Where(sq.Eq{"i.status": f.Status}).
		OrderBy("i.event_time DESC").
		Limit(uint64(f.Limit)).
		PlaceholderFormat(sq.Dollar)

	if f.ExcludeUserID != nil {
		builder = builder.Where(sq.NotEq{"i.user_id": *f.ExcludeUserID})
	}
	if f.EventTimeFrom != nil {
		builder = builder.Where(sq.GtOrEq{"i.event_time": *f.EventTimeFrom})
	}
	if f.EventTimeTo != nil {
		builder = builder.Where(sq.LtOrEq{"i.event_time": *f.EventTimeTo})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build candidate query: %w", err)
	}

	q := postgres.QuerierFromCtx(ctx, r.pool)
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list candidates: %w", err)
	}
	defer rows.Close()

	items, err := scanItems(rows)
	if err != nil {
		return nil, fmt.Errorf("list candidates: %w", err)
	}

	return items, nil
}

// ListInBoundingBox returns non-deleted, geolocated items inside the
// rectangle. This is the cheap phase-1 prefilter of the radius search; the
// caller applies the exact distance check.
func (r *Repo) ListInBoundingBox(ctx context.Context, box geo.BoundingBox) ([]*domain.Item, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := q.Query(ctx, listInBoxSQL,
		box.MinLatitude, box.MaxLatitude, box.MinLongitude, box.MaxLongitude)
	if err != nil {
		return nil, fmt.Errorf("list in bounding box: %w", err)
	}
	defer rows.Close()

	items, err := scanItems(rows)
	if err != nil {
		return nil, fmt.Errorf("list in bounding box: %w", err)
	}

	return items, nil
}

// TagsByItemID returns the tag→confidence map for one item.
// Returns an empty (non-nil) map when the item has no tags.
func (r *Repo) TagsByItemID(ctx context.Context, itemID uuid.UUID) (map[string]float64, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := q.Query(ctx, tagsByItemSQL, itemID)
	if err != nil {
		return nil, fmt.Errorf("tags by item: %w", err)
	}
	defer rows.Close()

	tags := make(map[string]float64)
	for rows.Next() {
		var (
			tag        string
			confidence float64
		)
		if err := rows.Scan(&tag, &confidence); err != nil {
			return nil, fmt.Errorf("tags by item: %w", err)
		}
		tags[tag] = confidence
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("tags by item: %w", err)
	}

	return tags, nil
}

// TagsByItemIDs returns tag maps for multiple items in one round trip.
// Items without tags are absent from the result map.
func (r *Repo) TagsByItemIDs(ctx context.Context, itemIDs []uuid.UUID) (map[uuid.UUID]map[string]float64, error) {
	if len(itemIDs) == 0 {
		return map[uuid.UUID]map[string]float64{}, nil
	}

	q := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := q.Query(ctx, tagsByItemsSQL, itemIDs)
	if err != nil {
		return nil, fmt.Errorf("tags by items: %w", err)
	}
	defer rows.Close()

	result := make(map[uuid.UUID]map[string]float64)
	for rows.Next() {
		var (
			itemID     uuid.UUID
			tag        string
			confidence float64
		)
		if err := rows.Scan(&itemID, &tag, &confidence); err != nil {
			return nil, fmt.Errorf("tags by items: %w", err)
		}
		if result[itemID] == nil {
			result[itemID] = make(map[string]float64)
		}
		result[itemID][tag] = confidence
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("tags by items: %w", err)
	}

	return result, nil
}

// UpdateStatusIf transitions the item's status only when the current status
// still equals expected (optimistic guard). Returns false with nil error
// when the guard failed (0 rows affected).
func (r *Repo) UpdateStatusIf(ctx context.Context, itemID uuid.UUID, expected, next domain.ItemStatus) (bool, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	tag, err := q.Exec(ctx, updateStatusIfSQL, next, itemID, expected)
	if err != nil {
		return false, postgres.MapError(err, "item", itemID)
	}

	return tag.RowsAffected() == 1, nil
}

// scanItems scans item rows into domain items.
func scanItems(rows pgx.Rows) ([]*domain.Item, error) {
	var result []*domain.Item
	for rows.Next() {
		var (
			id           uuid.UUID
			userID       uuid.UUID
			title        string
			description  pgtype.Text
			itemType     string
			category     string
			longitude    pgtype.Float8
			latitude     pgtype.Float8
			locationDesc pgtype.Text
			eventTime    time.Time
			status       string
			deleted      bool
			createdAt    time.Time
			updatedAt    time.Time
		)

		if err := rows.Scan(&id, &userID, &title, &description, &itemType, &category,
			&longitude, &latitude, &locationDesc, &eventTime, &status,
			&deleted, &createdAt, &updatedAt); err != nil {
			return nil, err
		}

		it := &domain.Item{
			ID:          id,
			UserID:      userID,
			Title:       title,
			Description: description.String,
			Type:        domain.ItemType(itemType),
			Category:    category,
			EventTime:   eventTime,
			Status:      domain.ItemStatus(status),
			Deleted:     deleted,
			CreatedAt:   createdAt,
			UpdatedAt:   updatedAt,
		}
		if locationDesc.Valid {
			it.LocationDesc = locationDesc.String
		}
		if longitude.Valid && latitude.Valid {
			it.Location = &domain.GeoPoint{
				Longitude: longitude.Float64,
				Latitude:  latitude.Float64,
				Address:   it.LocationDesc,
			}
		}

		result = append(result, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if result == nil {
		result = []*domain.Item{}
	}

	return result, nil
}
