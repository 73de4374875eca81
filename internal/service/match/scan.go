package match

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/campusfind/lostfound-backend/internal/domain"
)

const routingMatchFound = "match.found"

// ScanForMatches ranks counterparts for a freshly published item and emits
// a match.found event plus realtime notices for every candidate at or above
// the notify threshold. Invoked from the event-bus consumer, not from a
// user request. A vanished item is not an error; the posting may have been
// deleted between publish and scan.
func (s *Service) ScanForMatches(ctx context.Context, itemID uuid.UUID) error {
	source, err := s.items.GetByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.log.DebugContext(ctx, "scan skipped, item gone",
				slog.String("item_id", itemID.String()))
			return nil
		}
		return fmt.Errorf("scan: %w", err)
	}

	recs, err := s.recommendFor(ctx, source)
	if err != nil {
		return fmt.Errorf("scan: %w", err)
	}

	notified := 0
	for _, rec := range recs {
		if rec.Score.Total < s.cfg.NotifyThreshold {
			// Recommendations are sorted by score; nothing below passes.
			break
		}
		s.notifyCandidate(ctx, source, rec)
		notified++
	}

	s.log.InfoContext(ctx, "match scan complete",
		slog.String("item_id", itemID.String()),
		slog.Int("candidates", len(recs)),
		slog.Int("notified", notified),
	)

	return nil
}

// notifyCandidate emits the match.found event and pushes a notice to both
// owners. Event delivery is best effort.
func (s *Service) notifyCandidate(ctx context.Context, source *domain.Item, rec domain.Recommendation) {
	lostID, foundID := source.ID, rec.Item.ID
	if source.Type != domain.ItemTypeLost {
		lostID, foundID = foundID, lostID
	}

	event := map[string]any{
		"lost_item_id":  lostID,
		"found_item_id": foundID,
		"score":         rec.Score.Total,
	}
	if err := s.bus.Publish(ctx, routingMatchFound, event); err != nil {
		s.log.WarnContext(ctx, "publish match.found failed",
			slog.String("item_id", source.ID.String()),
			slog.String("error", err.Error()),
		)
	}

	notice := map[string]any{
		"type":            "match_found",
		"item_id":         source.ID,
		"matched_item_id": rec.Item.ID,
		"score":           rec.Score.Total,
	}
	s.push.Send(source.UserID, notice)
	s.push.Send(rec.Item.UserID, notice)
}
