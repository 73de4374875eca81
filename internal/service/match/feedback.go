package match

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/campusfind/lostfound-backend/internal/domain"
)

// SubmitFeedback records the caller's judgment on a recommendation. The
// caller must own one of the two items in the pair. The current score and
// both categories are snapshotted so later edits to the items do not
// distort offline analysis. Feedback is append-only and never affects live
// scoring.
func (s *Service) SubmitFeedback(ctx context.Context, callerID uuid.UUID, in FeedbackInput) (*domain.MatchFeedback, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	item, err := s.items.GetByID(ctx, in.ItemID)
	if err != nil {
		return nil, fmt.Errorf("submit feedback: %w", err)
	}
	matched, err := s.items.GetByID(ctx, in.MatchedItemID)
	if err != nil {
		return nil, fmt.Errorf("submit feedback: %w", err)
	}

	if item.UserID != callerID && matched.UserID != callerID {
		return nil, fmt.Errorf("submit feedback: caller owns neither item: %w", domain.ErrForbidden)
	}

	score, err := s.scorePair(ctx, item, matched)
	if err != nil {
		return nil, fmt.Errorf("submit feedback: %w", err)
	}

	fb := &domain.MatchFeedback{
		ItemID:              item.ID,
		MatchedItemID:       matched.ID,
		UserID:              callerID,
		IsAccurate:          in.IsAccurate,
		Comment:             in.Comment,
		MatchScore:          score.Total,
		ItemCategory:        item.Category,
		MatchedItemCategory: matched.Category,
	}

	fb, err = s.feedback.Create(ctx, fb)
	if err != nil {
		return nil, fmt.Errorf("submit feedback: %w", err)
	}

	s.log.InfoContext(ctx, "match feedback recorded",
		slog.String("feedback_id", fb.ID.String()),
		slog.String("item_id", item.ID.String()),
		slog.Bool("is_accurate", fb.IsAccurate),
	)

	return fb, nil
}
