package match

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/campusfind/lostfound-backend/internal/domain"
)

// Recommend returns the top-ranked counterpart candidates for the given
// item: opposite type, still pending, published by someone else, with event
// time inside the scoring horizon. Results are ordered by total score
// descending; ties break on smaller event-time gap, then on item id, so the
// ranking is stable across calls.
func (s *Service) Recommend(ctx context.Context, itemID uuid.UUID) ([]domain.Recommendation, error) {
	source, err := s.items.GetByID(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("recommend: %w", err)
	}
	return s.recommendFor(ctx, source)
}

// recommendFor ranks counterparts for an already loaded source item, so the
// background scan does not re-fetch what its caller just read.
func (s *Service) recommendFor(ctx context.Context, source *domain.Item) ([]domain.Recommendation, error) {
	if source.Tags == nil {
		tags, err := s.items.TagsByItemID(ctx, source.ID)
		if err != nil {
			return nil, fmt.Errorf("recommend: %w", err)
		}
		source.Tags = tags
	}

	candidates, err := s.listCandidates(ctx, source)
	if err != nil {
		return nil, fmt.Errorf("recommend: %w", err)
	}
	if len(candidates) == 0 {
		return []domain.Recommendation{}, nil
	}

	if err := s.attachTags(ctx, candidates); err != nil {
		return nil, fmt.Errorf("recommend: %w", err)
	}

	recs := make([]domain.Recommendation, 0, len(candidates))
	for _, cand := range candidates {
		recs = append(recs, domain.Recommendation{
			Item:  cand,
			Score: s.scorer.Score(source, cand),
		})
	}

	sortRecommendations(recs, source.EventTime)

	if len(recs) > s.cfg.TopK {
		recs = recs[:s.cfg.TopK]
	}

	return recs, nil
}

// listCandidates fetches the bounded prefiltered counterpart set. Items
// whose event time falls outside the horizon would score zero time credit,
// so the window is pushed into the query.
func (s *Service) listCandidates(ctx context.Context, source *domain.Item) ([]*domain.Item, error) {
	from := source.EventTime.Add(-s.cfg.TimeHorizon)
	to := source.EventTime.Add(s.cfg.TimeHorizon)

	return s.items.ListCandidates(ctx, domain.CandidateFilter{
		Type:          source.Type.Opposite(),
		Status:        domain.ItemStatusPending,
		ExcludeUserID: &source.UserID,
		EventTimeFrom: &from,
		EventTimeTo:   &to,
		Limit:         s.cfg.CandidateLimit,
	})
}

// attachTags loads tag sets for all candidates in one round trip.
func (s *Service) attachTags(ctx context.Context, items []*domain.Item) error {
	ids := make([]uuid.UUID, len(items))
	for i, it := range items {
		ids[i] = it.ID
	}

	tags, err := s.items.TagsByItemIDs(ctx, ids)
	if err != nil {
		return err
	}

	for _, it := range items {
		if t, ok := tags[it.ID]; ok {
			it.Tags = t
		} else {
			it.Tags = map[string]float64{}
		}
	}

	return nil
}

// sortRecommendations orders by score descending, then by proximity of the
// candidate's event time to the source's, then by item id byte order.
func sortRecommendations(recs []domain.Recommendation, sourceEventTime time.Time) {
	gap := func(r domain.Recommendation) time.Duration {
		d := r.Item.EventTime.Sub(sourceEventTime)
		if d < 0 {
			d = -d
		}
		return d
	}

	sort.Slice(recs, func(i, j int) bool {
		a, b := recs[i], recs[j]
		if a.Score.Total != b.Score.Total {
			return a.Score.Total > b.Score.Total
		}
		ga, gb := gap(a), gap(b)
		if ga != gb {
			return ga < gb
		}
		return bytes.Compare(a.Item.ID[:], b.Item.ID[:]) < 0
	})
}
