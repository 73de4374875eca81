package domain

import (
	"time"

	"github.com/google/uuid"
)

// ScoreBreakdown is the explainable result of scoring one item pair.
// Sub-score maxima: category 30, tag 30, time 20, location 20.
// Total is the clamped sum in [0,100].
type ScoreBreakdown struct {
	Category float64 `json:"category_score"`
	Tag      float64 `json:"tag_score"`
	Time     float64 `json:"time_score"`
	Location float64 `json:"location_score"`
	Total    float64 `json:"total_score"`
}

// MatchRecord pairs a lost item with a found item. Created when a user
// confirms a recommendation; Confirmed and Rejected are terminal.
type MatchRecord struct {
	ID          uuid.UUID
	LostItemID  uuid.UUID
	FoundItemID uuid.UUID
	Score       float64
	Status      MatchStatus
	CreatedAt   time.Time
	ConfirmedAt *time.Time
}

// MatchFeedback is a user's judgment on match quality, with a snapshot of
// the score and both categories at submission time. Immutable once created;
// consumed only by offline analysis.
type MatchFeedback struct {
	ID                  uuid.UUID
	ItemID              uuid.UUID
	MatchedItemID       uuid.UUID
	UserID              uuid.UUID
	IsAccurate          bool
	Comment             string
	MatchScore          float64
	ItemCategory        string
	MatchedItemCategory string
	CreatedAt           time.Time
}

// Recommendation is one ranked candidate returned to the caller.
type Recommendation struct {
	Item  *Item
	Score ScoreBreakdown
}
