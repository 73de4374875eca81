package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusfind/lostfound-backend/internal/domain"
	"github.com/campusfind/lostfound-backend/internal/service/match"
	"github.com/campusfind/lostfound-backend/pkg/ctxutil"
)

type mockMatchService struct {
	RecommendFunc      func(ctx context.Context, itemID uuid.UUID) ([]domain.Recommendation, error)
	ConfirmFunc        func(ctx context.Context, callerID uuid.UUID, in match.ConfirmInput) (*domain.MatchRecord, error)
	SubmitFeedbackFunc func(ctx context.Context, callerID uuid.UUID, in match.FeedbackInput) (*domain.MatchFeedback, error)
}

func (m *mockMatchService) Recommend(ctx context.Context, itemID uuid.UUID) ([]domain.Recommendation, error) {
	if m.RecommendFunc != nil {
		return m.RecommendFunc(ctx, itemID)
	}
	return []domain.Recommendation{}, nil
}

func (m *mockMatchService) Confirm(ctx context.Context, callerID uuid.UUID, in match.ConfirmInput) (*domain.MatchRecord, error) {
	if m.ConfirmFunc != nil {
		return m.ConfirmFunc(ctx, callerID, in)
	}
	return nil, domain.ErrNotFound
}

func (m *mockMatchService) SubmitFeedback(ctx context.Context, callerID uuid.UUID, in match.FeedbackInput) (*domain.MatchFeedback, error) {
	if m.SubmitFeedbackFunc != nil {
		return m.SubmitFeedbackFunc(ctx, callerID, in)
	}
	return nil, domain.ErrNotFound
}

func newTestRouter(svc matchService) http.Handler {
	return newTestRouterWithLocations(svc, &mockLocationService{})
}

func newTestRouterWithLocations(svc matchService, loc locationService) http.Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewRouter(
		NewMatchHandler(svc, logger),
		NewLocationHandler(loc, logger),
		NewHealthHandler(okPinger{}, nil, "test"),
	)
}

type okPinger struct{}

func (okPinger) Ping(context.Context) error { return nil }

func authed(req *http.Request, userID uuid.UUID) *http.Request {
	return req.WithContext(ctxutil.WithUserID(req.Context(), userID))
}

func decodeError(t *testing.T, body *bytes.Buffer) errorBody {
	t.Helper()
	var eb errorBody
	require.NoError(t, json.NewDecoder(body).Decode(&eb))
	return eb
}

// ---------------------------------------------------------------------------
// GET /api/v1/matches/recommendations/{itemID}
// ---------------------------------------------------------------------------

func TestRecommendations(t *testing.T) {
	itemID := uuid.New()
	candidate := &domain.Item{
		ID:        uuid.New(),
		Title:     "black wallet",
		Type:      domain.ItemTypeFound,
		Category:  "wallets",
		EventTime: time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC),
		Status:    domain.ItemStatusPending,
		Location:  &domain.GeoPoint{Longitude: 116.4, Latitude: 39.9, Address: "Main Quad"},
	}

	router := newTestRouter(&mockMatchService{
		RecommendFunc: func(_ context.Context, gotID uuid.UUID) ([]domain.Recommendation, error) {
			assert.Equal(t, itemID, gotID)
			return []domain.Recommendation{{
				Item:  candidate,
				Score: domain.ScoreBreakdown{Category: 30, Tag: 24, Time: 20, Location: 20, Total: 94},
			}}, nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/matches/recommendations/"+itemID.String(), nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Recommendations []recommendationDTO `json:"recommendations"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.Recommendations, 1)

	got := resp.Recommendations[0]
	assert.Equal(t, candidate.ID, got.Item.ID)
	assert.Equal(t, "FOUND", got.Item.Type)
	assert.Equal(t, 94.0, got.Score.Total)
	require.NotNil(t, got.Item.Location)
	assert.Equal(t, "Main Quad", got.Item.Location.Address)
}

func TestRecommendations_BadItemID(t *testing.T) {
	router := newTestRouter(&mockMatchService{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/matches/recommendations/not-a-uuid", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "validation_error", decodeError(t, rec.Body).Error.Code)
}

func TestRecommendations_ItemNotFound(t *testing.T) {
	router := newTestRouter(&mockMatchService{
		RecommendFunc: func(context.Context, uuid.UUID) ([]domain.Recommendation, error) {
			return nil, fmt.Errorf("recommend: %w", domain.ErrNotFound)
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/matches/recommendations/"+uuid.NewString(), nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", decodeError(t, rec.Body).Error.Code)
}

// ---------------------------------------------------------------------------
// POST /api/v1/matches/confirm
// ---------------------------------------------------------------------------

func confirmBody(t *testing.T, itemID, matchedID uuid.UUID) *bytes.Reader {
	t.Helper()
	b, err := json.Marshal(map[string]string{
		"item_id":         itemID.String(),
		"matched_item_id": matchedID.String(),
	})
	require.NoError(t, err)
	return bytes.NewReader(b)
}

func TestConfirm(t *testing.T) {
	caller := uuid.New()
	lostID, foundID := uuid.New(), uuid.New()
	now := time.Now().UTC()

	router := newTestRouter(&mockMatchService{
		ConfirmFunc: func(_ context.Context, callerID uuid.UUID, in match.ConfirmInput) (*domain.MatchRecord, error) {
			assert.Equal(t, caller, callerID)
			assert.Equal(t, lostID, in.ItemID)
			return &domain.MatchRecord{
				ID:          uuid.New(),
				LostItemID:  lostID,
				FoundItemID: foundID,
				Score:       94,
				Status:      domain.MatchStatusConfirmed,
				CreatedAt:   now,
				ConfirmedAt: &now,
			}, nil
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/matches/confirm", confirmBody(t, lostID, foundID))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authed(req, caller))

	require.Equal(t, http.StatusOK, rec.Code)

	var got matchRecordDTO
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, "CONFIRMED", got.Status)
	assert.Equal(t, lostID, got.LostItemID)
	require.NotNil(t, got.ConfirmedAt)
}

func TestConfirm_Anonymous(t *testing.T) {
	router := newTestRouter(&mockMatchService{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/matches/confirm", confirmBody(t, uuid.New(), uuid.New()))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "unauthorized", decodeError(t, rec.Body).Error.Code)
}

func TestConfirm_Conflict(t *testing.T) {
	router := newTestRouter(&mockMatchService{
		ConfirmFunc: func(context.Context, uuid.UUID, match.ConfirmInput) (*domain.MatchRecord, error) {
			return nil, fmt.Errorf("confirm: pair already recorded: %w", domain.ErrConflict)
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/matches/confirm", confirmBody(t, uuid.New(), uuid.New()))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authed(req, uuid.New()))

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "conflict", decodeError(t, rec.Body).Error.Code)
}

func TestConfirm_InvalidJSON(t *testing.T) {
	router := newTestRouter(&mockMatchService{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/matches/confirm", bytes.NewBufferString("{"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authed(req, uuid.New()))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// ---------------------------------------------------------------------------
// POST /api/v1/matches/feedback
// ---------------------------------------------------------------------------

func TestFeedback(t *testing.T) {
	caller := uuid.New()
	itemID, matchedID := uuid.New(), uuid.New()

	router := newTestRouter(&mockMatchService{
		SubmitFeedbackFunc: func(_ context.Context, callerID uuid.UUID, in match.FeedbackInput) (*domain.MatchFeedback, error) {
			assert.Equal(t, caller, callerID)
			assert.False(t, in.IsAccurate)
			assert.Equal(t, "wrong color entirely", in.Comment)
			return &domain.MatchFeedback{
				ID:            uuid.New(),
				ItemID:        in.ItemID,
				MatchedItemID: in.MatchedItemID,
				IsAccurate:    in.IsAccurate,
				CreatedAt:     time.Now(),
			}, nil
		},
	})

	body, err := json.Marshal(map[string]any{
		"item_id":         itemID,
		"matched_item_id": matchedID,
		"is_accurate":     false,
		"comment":         "wrong color entirely",
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/matches/feedback", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authed(req, caller))

	require.Equal(t, http.StatusCreated, rec.Code)

	var got feedbackDTO
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, itemID, got.ItemID)
	assert.NotEqual(t, uuid.Nil, got.ID)
}

func TestFeedback_Forbidden(t *testing.T) {
	router := newTestRouter(&mockMatchService{
		SubmitFeedbackFunc: func(context.Context, uuid.UUID, match.FeedbackInput) (*domain.MatchFeedback, error) {
			return nil, fmt.Errorf("submit feedback: %w", domain.ErrForbidden)
		},
	})

	body, err := json.Marshal(map[string]any{"item_id": uuid.New(), "matched_item_id": uuid.New()})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/matches/feedback", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authed(req, uuid.New()))

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

// ---------------------------------------------------------------------------
// Routing
// ---------------------------------------------------------------------------

func TestRouter_UnknownRoute(t *testing.T) {
	router := newTestRouter(&mockMatchService{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/nope", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", decodeError(t, rec.Body).Error.Code)
}
