package feedback_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusfind/lostfound-backend/internal/adapter/postgres/feedback"
	"github.com/campusfind/lostfound-backend/internal/adapter/postgres/testhelper"
	"github.com/campusfind/lostfound-backend/internal/domain"
)

func newRepo(t *testing.T) (*feedback.Repo, *pgxpool.Pool) {
	t.Helper()
	pool := testhelper.SetupTestDB(t)
	return feedback.New(pool), pool
}

func seedItems(t *testing.T, pool *pgxpool.Pool) (itemID, matchedID uuid.UUID) {
	t.Helper()
	ctx := context.Background()
	itemID, matchedID = uuid.New(), uuid.New()
	for id, itemType := range map[uuid.UUID]string{itemID: "LOST", matchedID: "FOUND"} {
		_, err := pool.Exec(ctx,
			`INSERT INTO items (id, user_id, title, type, category, event_time)
			 VALUES ($1, $2, 'feedback item', $3, 'misc', now())`,
			id, uuid.New(), itemType,
		)
		require.NoError(t, err)
	}
	return itemID, matchedID
}

func TestCreate(t *testing.T) {
	repo, pool := newRepo(t)
	ctx := context.Background()

	itemID, matchedID := seedItems(t, pool)

	fb, err := repo.Create(ctx, &domain.MatchFeedback{
		ItemID:              itemID,
		MatchedItemID:       matchedID,
		UserID:              uuid.New(),
		IsAccurate:          false,
		Comment:             "different brand",
		MatchScore:          72.5,
		ItemCategory:        "electronics",
		MatchedItemCategory: "electronics",
	})
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, fb.ID)
	assert.False(t, fb.CreatedAt.IsZero())
}

func TestCreate_RepeatedFeedbackAllowed(t *testing.T) {
	repo, pool := newRepo(t)
	ctx := context.Background()

	itemID, matchedID := seedItems(t, pool)
	userID := uuid.New()

	// The log is append-only: the same user may revise their judgment.
	for _, accurate := range []bool{true, false} {
		_, err := repo.Create(ctx, &domain.MatchFeedback{
			ItemID:              itemID,
			MatchedItemID:       matchedID,
			UserID:              userID,
			IsAccurate:          accurate,
			MatchScore:          60,
			ItemCategory:        "misc",
			MatchedItemCategory: "misc",
		})
		require.NoError(t, err)
	}
}

func TestCreate_UnknownItem(t *testing.T) {
	repo, _ := newRepo(t)

	_, err := repo.Create(context.Background(), &domain.MatchFeedback{
		ItemID:              uuid.New(),
		MatchedItemID:       uuid.New(),
		UserID:              uuid.New(),
		IsAccurate:          true,
		MatchScore:          10,
		ItemCategory:        "misc",
		MatchedItemCategory: "misc",
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
