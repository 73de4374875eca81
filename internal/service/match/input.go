package match

import (
	"github.com/google/uuid"

	"github.com/campusfind/lostfound-backend/internal/domain"
)

// ConfirmInput identifies the pair to confirm. ItemID is the caller's own
// posting; MatchedItemID is the counterpart. Which side is the lost item is
// derived from the item types.
type ConfirmInput struct {
	ItemID        uuid.UUID
	MatchedItemID uuid.UUID
}

func (in ConfirmInput) validate() error {
	var fields []domain.FieldError
	if in.ItemID == uuid.Nil {
		fields = append(fields, domain.FieldError{Field: "item_id", Message: "required"})
	}
	if in.MatchedItemID == uuid.Nil {
		fields = append(fields, domain.FieldError{Field: "matched_item_id", Message: "required"})
	}
	if in.ItemID != uuid.Nil && in.ItemID == in.MatchedItemID {
		fields = append(fields, domain.FieldError{Field: "matched_item_id", Message: "must differ from item_id"})
	}
	if len(fields) > 0 {
		return &domain.ValidationError{Errors: fields}
	}
	return nil
}

// FeedbackInput is a user's judgment on one recommendation.
type FeedbackInput struct {
	ItemID        uuid.UUID
	MatchedItemID uuid.UUID
	IsAccurate    bool
	Comment       string
}

const maxCommentLength = 1000

func (in FeedbackInput) validate() error {
	var fields []domain.FieldError
	if in.ItemID == uuid.Nil {
		fields = append(fields, domain.FieldError{Field: "item_id", Message: "required"})
	}
	if in.MatchedItemID == uuid.Nil {
		fields = append(fields, domain.FieldError{Field: "matched_item_id", Message: "required"})
	}
	if in.ItemID != uuid.Nil && in.ItemID == in.MatchedItemID {
		fields = append(fields, domain.FieldError{Field: "matched_item_id", Message: "must differ from item_id"})
	}
	if len(in.Comment) > maxCommentLength {
		fields = append(fields, domain.FieldError{Field: "comment", Message: "too long"})
	}
	if len(fields) > 0 {
		return &domain.ValidationError{Errors: fields}
	}
	return nil
}
