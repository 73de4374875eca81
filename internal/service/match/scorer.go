package match

import (
	"strings"
	"time"

	"github.com/campusfind/lostfound-backend/internal/config"
	"github.com/campusfind/lostfound-backend/internal/domain"
	"github.com/campusfind/lostfound-backend/internal/geo"
)

// Scorer computes the explainable similarity score of a lost/found pair.
// It is pure: no I/O, no clock, deterministic for fixed inputs. Tag sets
// must be attached to the items before scoring.
type Scorer struct {
	cfg config.MatchingConfig
}

// NewScorer creates a scorer from matching configuration.
func NewScorer(cfg config.MatchingConfig) *Scorer {
	return &Scorer{cfg: cfg}
}

// Score returns the per-dimension breakdown for a pair of items.
// The pair's order does not matter.
func (s *Scorer) Score(a, b *domain.Item) domain.ScoreBreakdown {
	breakdown := domain.ScoreBreakdown{
		Category: s.categoryScore(a, b),
		Tag:      s.tagScore(a.Tags, b.Tags),
		Time:     s.timeScore(a.EventTime, b.EventTime),
		Location: s.locationScore(a.Location, b.Location),
	}
	breakdown.Total = clamp(
		breakdown.Category+breakdown.Tag+breakdown.Time+breakdown.Location,
		0, 100,
	)

	return breakdown
}

// categoryScore is binary: full weight on a case-insensitive category match.
func (s *Scorer) categoryScore(a, b *domain.Item) float64 {
	if a.Category == "" || b.Category == "" {
		return 0
	}
	if strings.EqualFold(a.Category, b.Category) {
		return s.cfg.CategoryWeight
	}
	return 0
}

// tagScore credits shared tags by the weaker of the two confidences,
// normalized by the average tag-set size so that sprawling tag sets do not
// dominate. Capped at the tag weight.
func (s *Scorer) tagScore(a, b map[string]float64) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	var overlap float64
	for tag, confA := range a {
		confB, ok := b[tag]
		if !ok {
			continue
		}
		overlap += min(confA, confB)
	}
	if overlap == 0 {
		return 0
	}

	avgSize := float64(len(a)+len(b)) / 2
	score := overlap / avgSize * s.cfg.TagWeight

	return clamp(score, 0, s.cfg.TagWeight)
}

// timeScore is full within the close window, zero beyond the horizon, and
// decays linearly in between.
func (s *Scorer) timeScore(a, b time.Time) float64 {
	delta := a.Sub(b)
	if delta < 0 {
		delta = -delta
	}

	return linearDecay(
		float64(delta),
		float64(s.cfg.TimeCloseWindow),
		float64(s.cfg.TimeHorizon),
		s.cfg.TimeWeight,
	)
}

// locationScore is full within the close radius, zero beyond the max radius,
// and decays linearly in between. Either side missing a location earns zero.
func (s *Scorer) locationScore(a, b *domain.GeoPoint) float64 {
	dist, ok := geo.Distance(a, b)
	if !ok {
		return 0
	}

	return linearDecay(dist, s.cfg.LocationCloseRadius, s.cfg.LocationMaxRadius, s.cfg.LocationWeight)
}

// linearDecay maps value onto [0, weight]: full credit at or below lo, zero
// at or beyond hi, linear interpolation in between.
func linearDecay(value, lo, hi, weight float64) float64 {
	switch {
	case value <= lo:
		return weight
	case value >= hi:
		return 0
	default:
		return weight * (hi - value) / (hi - lo)
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
