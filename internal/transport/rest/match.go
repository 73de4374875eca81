package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/campusfind/lostfound-backend/internal/domain"
	"github.com/campusfind/lostfound-backend/internal/service/match"
	"github.com/campusfind/lostfound-backend/pkg/ctxutil"
)

type matchService interface {
	Recommend(ctx context.Context, itemID uuid.UUID) ([]domain.Recommendation, error)
	Confirm(ctx context.Context, callerID uuid.UUID, in match.ConfirmInput) (*domain.MatchRecord, error)
	SubmitFeedback(ctx context.Context, callerID uuid.UUID, in match.FeedbackInput) (*domain.MatchFeedback, error)
}

// MatchHandler serves the match endpoints.
type MatchHandler struct {
	matches matchService
	log     *slog.Logger
}

// NewMatchHandler creates a MatchHandler.
func NewMatchHandler(matches matchService, logger *slog.Logger) *MatchHandler {
	return &MatchHandler{
		matches: matches,
		log:     logger.With("handler", "match"),
	}
}

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

type geoPointDTO struct {
	Longitude float64 `json:"longitude"`
	Latitude  float64 `json:"latitude"`
	Address   string  `json:"address,omitempty"`
}

type itemDTO struct {
	ID           uuid.UUID    `json:"id"`
	Title        string       `json:"title"`
	Description  string       `json:"description,omitempty"`
	Type         string       `json:"type"`
	Category     string       `json:"category"`
	Location     *geoPointDTO `json:"location,omitempty"`
	LocationDesc string       `json:"location_desc,omitempty"`
	EventTime    time.Time    `json:"event_time"`
	Status       string       `json:"status"`
}

type recommendationDTO struct {
	Item  itemDTO               `json:"item"`
	Score domain.ScoreBreakdown `json:"score"`
}

type matchRecordDTO struct {
	ID          uuid.UUID  `json:"id"`
	LostItemID  uuid.UUID  `json:"lost_item_id"`
	FoundItemID uuid.UUID  `json:"found_item_id"`
	Score       float64    `json:"score"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	ConfirmedAt *time.Time `json:"confirmed_at,omitempty"`
}

type feedbackDTO struct {
	ID            uuid.UUID `json:"id"`
	ItemID        uuid.UUID `json:"item_id"`
	MatchedItemID uuid.UUID `json:"matched_item_id"`
	IsAccurate    bool      `json:"is_accurate"`
	CreatedAt     time.Time `json:"created_at"`
}

func toItemDTO(it *domain.Item) itemDTO {
	dto := itemDTO{
		ID:           it.ID,
		Title:        it.Title,
		Description:  it.Description,
		Type:         it.Type.String(),
		Category:     it.Category,
		LocationDesc: it.LocationDesc,
		EventTime:    it.EventTime,
		Status:       it.Status.String(),
	}
	if it.Location != nil {
		dto.Location = &geoPointDTO{
			Longitude: it.Location.Longitude,
			Latitude:  it.Location.Latitude,
			Address:   it.Location.Address,
		}
	}
	return dto
}

func toMatchRecordDTO(record *domain.MatchRecord) matchRecordDTO {
	return matchRecordDTO{
		ID:          record.ID,
		LostItemID:  record.LostItemID,
		FoundItemID: record.FoundItemID,
		Score:       record.Score,
		Status:      record.Status.String(),
		CreatedAt:   record.CreatedAt,
		ConfirmedAt: record.ConfirmedAt,
	}
}

// ---------------------------------------------------------------------------
// Handlers
// ---------------------------------------------------------------------------

// Recommendations handles GET /api/v1/matches/recommendations/{itemID}.
func (h *MatchHandler) Recommendations(w http.ResponseWriter, r *http.Request) {
	itemID, err := uuid.Parse(mux.Vars(r)["itemID"])
	if err != nil {
		writeError(w, domain.NewValidationError("itemID", "must be a valid uuid"))
		return
	}

	recs, err := h.matches.Recommend(r.Context(), itemID)
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]recommendationDTO, len(recs))
	for i, rec := range recs {
		out[i] = recommendationDTO{
			Item:  toItemDTO(rec.Item),
			Score: rec.Score,
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{"recommendations": out})
}

type confirmRequest struct {
	ItemID        uuid.UUID `json:"item_id"`
	MatchedItemID uuid.UUID `json:"matched_item_id"`
}

// Confirm handles POST /api/v1/matches/confirm.
func (h *MatchHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	userID, ok := ctxutil.UserIDFromCtx(r.Context())
	if !ok {
		writeError(w, fmt.Errorf("authentication required: %w", domain.ErrUnauthorized))
		return
	}

	var req confirmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, domain.NewValidationError("body", "invalid json"))
		return
	}

	record, err := h.matches.Confirm(r.Context(), userID, match.ConfirmInput{
		ItemID:        req.ItemID,
		MatchedItemID: req.MatchedItemID,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toMatchRecordDTO(record))
}

type feedbackRequest struct {
	ItemID        uuid.UUID `json:"item_id"`
	MatchedItemID uuid.UUID `json:"matched_item_id"`
	IsAccurate    bool      `json:"is_accurate"`
	Comment       string    `json:"comment"`
}

// Feedback handles POST /api/v1/matches/feedback.
func (h *MatchHandler) Feedback(w http.ResponseWriter, r *http.Request) {
	userID, ok := ctxutil.UserIDFromCtx(r.Context())
	if !ok {
		writeError(w, fmt.Errorf("authentication required: %w", domain.ErrUnauthorized))
		return
	}

	var req feedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, domain.NewValidationError("body", "invalid json"))
		return
	}

	fb, err := h.matches.SubmitFeedback(r.Context(), userID, match.FeedbackInput{
		ItemID:        req.ItemID,
		MatchedItemID: req.MatchedItemID,
		IsAccurate:    req.IsAccurate,
		Comment:       req.Comment,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, feedbackDTO{
		ID:            fb.ID,
		ItemID:        fb.ItemID,
		MatchedItemID: fb.MatchedItemID,
		IsAccurate:    fb.IsAccurate,
		CreatedAt:     fb.CreatedAt,
	})
}
