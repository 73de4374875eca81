package match

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/campusfind/lostfound-backend/internal/domain"
)

// Points awarded when a pair is confirmed. The finder (owner of the found
// posting) earns the larger award; the owner of the lost posting gets an
// acknowledgment for closing the loop.
const (
	finderPoints   = 50
	reporterPoints = 10
)

// Routing keys for confirmation side effects.
const (
	routingMatchConfirmed = "match.confirmed"
	routingPointsAward    = "points.award"
)

// Confirm marks a lost/found pair as a real match. The caller must own one
// of the two items, the items must be of opposite types, and both must
// still be pending. On success both items become recovered and a confirmed
// match record is written, all in one transaction. Points and notifications
// are dispatched after commit and never fail the call.
func (s *Service) Confirm(ctx context.Context, callerID uuid.UUID, in ConfirmInput) (*domain.MatchRecord, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	own, other, err := s.loadPair(ctx, in.ItemID, in.MatchedItemID)
	if err != nil {
		return nil, err
	}

	if own.UserID != callerID && other.UserID != callerID {
		return nil, fmt.Errorf("confirm: caller owns neither item: %w", domain.ErrForbidden)
	}
	if own.Type == other.Type {
		return nil, domain.NewValidationError("matched_item_id", "items must be of opposite types")
	}

	lost, found := own, other
	if lost.Type != domain.ItemTypeLost {
		lost, found = found, lost
	}

	if lost.Status != domain.ItemStatusPending {
		return nil, fmt.Errorf("confirm: lost item %s is %s: %w", lost.ID, lost.Status, domain.ErrConflict)
	}
	if found.Status != domain.ItemStatusPending {
		return nil, fmt.Errorf("confirm: found item %s is %s: %w", found.ID, found.Status, domain.ErrConflict)
	}

	if _, err := s.matches.GetByPair(ctx, lost.ID, found.ID); err == nil {
		return nil, fmt.Errorf("confirm: pair already recorded: %w", domain.ErrConflict)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("confirm: %w", err)
	}

	score, err := s.scorePair(ctx, lost, found)
	if err != nil {
		return nil, fmt.Errorf("confirm: %w", err)
	}

	now := time.Now().UTC()
	record := &domain.MatchRecord{
		LostItemID:  lost.ID,
		FoundItemID: found.ID,
		Score:       score.Total,
		Status:      domain.MatchStatusConfirmed,
		ConfirmedAt: &now,
	}

	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		ok, err := s.items.UpdateStatusIf(ctx, lost.ID, domain.ItemStatusPending, domain.ItemStatusRecovered)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("lost item %s no longer pending: %w", lost.ID, domain.ErrConflict)
		}

		ok, err = s.items.UpdateStatusIf(ctx, found.ID, domain.ItemStatusPending, domain.ItemStatusRecovered)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("found item %s no longer pending: %w", found.ID, domain.ErrConflict)
		}

		record, err = s.matches.Create(ctx, record)
		if errors.Is(err, domain.ErrAlreadyExists) {
			return fmt.Errorf("pair already recorded: %w", domain.ErrConflict)
		}
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("confirm: %w", err)
	}

	s.log.InfoContext(ctx, "match confirmed",
		slog.String("match_id", record.ID.String()),
		slog.String("lost_item_id", lost.ID.String()),
		slog.String("found_item_id", found.ID.String()),
		slog.Float64("score", record.Score),
	)

	s.dispatchConfirmed(record, lost, found)

	return record, nil
}

// loadPair fetches both items; either missing or soft-deleted surfaces as
// domain.ErrNotFound.
func (s *Service) loadPair(ctx context.Context, itemID, matchedID uuid.UUID) (*domain.Item, *domain.Item, error) {
	own, err := s.items.GetByID(ctx, itemID)
	if err != nil {
		return nil, nil, fmt.Errorf("confirm: %w", err)
	}
	other, err := s.items.GetByID(ctx, matchedID)
	if err != nil {
		return nil, nil, fmt.Errorf("confirm: %w", err)
	}
	return own, other, nil
}

// scorePair loads tag sets and computes a fresh score for the record.
func (s *Service) scorePair(ctx context.Context, a, b *domain.Item) (domain.ScoreBreakdown, error) {
	var err error
	if a.Tags == nil {
		if a.Tags, err = s.items.TagsByItemID(ctx, a.ID); err != nil {
			return domain.ScoreBreakdown{}, err
		}
	}
	if b.Tags == nil {
		if b.Tags, err = s.items.TagsByItemID(ctx, b.ID); err != nil {
			return domain.ScoreBreakdown{}, err
		}
	}
	return s.scorer.Score(a, b), nil
}

// dispatchConfirmed runs the post-commit side effects on the task pool:
// the confirmation event, point awards for both participants, and realtime
// notices. Failures are logged and dropped.
func (s *Service) dispatchConfirmed(record *domain.MatchRecord, lost, found *domain.Item) {
	matchID := record.ID
	lostOwner, foundOwner := lost.UserID, found.UserID
	lostID, foundID := lost.ID, found.ID
	score := record.Score

	s.submit("match.confirmed", func(ctx context.Context) {
		event := map[string]any{
			"match_id":      matchID,
			"lost_item_id":  lostID,
			"found_item_id": foundID,
			"score":         score,
		}
		if err := s.bus.Publish(ctx, routingMatchConfirmed, event); err != nil {
			s.log.WarnContext(ctx, "publish match.confirmed failed",
				slog.String("match_id", matchID.String()),
				slog.String("error", err.Error()),
			)
		}

		awards := []struct {
			user   uuid.UUID
			points int
		}{
			{foundOwner, finderPoints},
			{lostOwner, reporterPoints},
		}
		for _, a := range awards {
			user, points := a.user, a.points
			award := map[string]any{
				"user_id":  user,
				"points":   points,
				"reason":   "match_confirmed",
				"match_id": matchID,
			}
			if err := s.bus.Publish(ctx, routingPointsAward, award); err != nil {
				s.log.WarnContext(ctx, "publish points.award failed",
					slog.String("user_id", user.String()),
					slog.String("error", err.Error()),
				)
			}
		}

		notice := map[string]any{
			"type":     "match_confirmed",
			"match_id": matchID,
			"score":    score,
		}
		s.push.Send(lostOwner, notice)
		s.push.Send(foundOwner, notice)
	})
}

// submit hands a task to the pool, logging when the queue is saturated.
func (s *Service) submit(name string, fn func(ctx context.Context)) {
	if !s.pool.Submit(name, fn) {
		s.log.Warn("background task dropped", slog.String("task", name))
	}
}
