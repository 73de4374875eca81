package match

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/campusfind/lostfound-backend/internal/config"
	"github.com/campusfind/lostfound-backend/internal/domain"
)

func defaultMatchingConfig() config.MatchingConfig {
	return config.MatchingConfig{
		CategoryWeight:      30,
		TagWeight:           30,
		TimeWeight:          20,
		LocationWeight:      20,
		TimeCloseWindow:     24 * time.Hour,
		TimeHorizon:         720 * time.Hour,
		LocationCloseRadius: 200,
		LocationMaxRadius:   5000,
		TopK:                10,
		CandidateLimit:      500,
		NotifyThreshold:     70,
	}
}

func pairAt(t0 time.Time, gap time.Duration) (*domain.Item, *domain.Item) {
	a := &domain.Item{EventTime: t0}
	b := &domain.Item{EventTime: t0.Add(gap)}
	return a, b
}

func TestScore_NearPerfectPair(t *testing.T) {
	scorer := NewScorer(defaultMatchingConfig())
	t0 := time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)

	lost := &domain.Item{
		Category:  "electronics",
		Tags:      map[string]float64{"phone": 0.9},
		EventTime: t0,
		Location:  &domain.GeoPoint{Longitude: 116.4000, Latitude: 39.9000},
	}
	found := &domain.Item{
		Category:  "Electronics",
		Tags:      map[string]float64{"phone": 0.8},
		EventTime: t0.Add(2 * time.Hour),
		// ~55m north, well inside the 200m full-credit radius.
		Location: &domain.GeoPoint{Longitude: 116.4000, Latitude: 39.9005},
	}

	got := scorer.Score(lost, found)

	assert.Equal(t, 30.0, got.Category, "case-insensitive category match earns full weight")
	assert.InDelta(t, 24.0, got.Tag, 0.001, "min(0.9, 0.8) / avg size 1 * 30")
	assert.Equal(t, 20.0, got.Time, "2h gap is inside the close window")
	assert.Equal(t, 20.0, got.Location, "55m is inside the close radius")
	assert.InDelta(t, 94.0, got.Total, 0.001)
}

func TestScore_OrderIndependent(t *testing.T) {
	scorer := NewScorer(defaultMatchingConfig())
	t0 := time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)

	a := &domain.Item{
		Category:  "bags",
		Tags:      map[string]float64{"backpack": 0.7, "blue": 0.5},
		EventTime: t0,
		Location:  &domain.GeoPoint{Longitude: 116.40, Latitude: 39.90},
	}
	b := &domain.Item{
		Category:  "bags",
		Tags:      map[string]float64{"backpack": 0.9},
		EventTime: t0.Add(72 * time.Hour),
		Location:  &domain.GeoPoint{Longitude: 116.41, Latitude: 39.91},
	}

	assert.Equal(t, scorer.Score(a, b), scorer.Score(b, a))
}

func TestScore_Bounded(t *testing.T) {
	scorer := NewScorer(defaultMatchingConfig())
	t0 := time.Now()

	tags := map[string]float64{}
	for _, name := range []string{"a", "b", "c", "d", "e"} {
		tags[name] = 1.0
	}

	identical := &domain.Item{
		Category:  "keys",
		Tags:      tags,
		EventTime: t0,
		Location:  &domain.GeoPoint{Longitude: 116.4, Latitude: 39.9},
	}

	got := scorer.Score(identical, identical)
	assert.LessOrEqual(t, got.Total, 100.0)
	assert.GreaterOrEqual(t, got.Total, 0.0)
	assert.Equal(t, 100.0, got.Total, "identical items score the maximum")
}

func TestCategoryScore(t *testing.T) {
	scorer := NewScorer(defaultMatchingConfig())

	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{"exact match", "electronics", "electronics", 30},
		{"case insensitive", "Electronics", "ELECTRONICS", 30},
		{"different", "electronics", "bags", 0},
		{"one empty", "electronics", "", 0},
		{"both empty", "", "", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := scorer.categoryScore(&domain.Item{Category: tt.a}, &domain.Item{Category: tt.b})
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTagScore(t *testing.T) {
	scorer := NewScorer(defaultMatchingConfig())

	tests := []struct {
		name string
		a, b map[string]float64
		want float64
	}{
		{
			name: "single shared tag uses weaker confidence",
			a:    map[string]float64{"phone": 0.9},
			b:    map[string]float64{"phone": 0.8},
			want: 24, // 0.8 / 1 * 30
		},
		{
			name: "normalized by average set size",
			a:    map[string]float64{"phone": 1.0, "black": 1.0, "cracked": 1.0},
			b:    map[string]float64{"phone": 1.0},
			want: 15, // 1.0 / 2 * 30
		},
		{
			name: "no overlap",
			a:    map[string]float64{"phone": 0.9},
			b:    map[string]float64{"wallet": 0.9},
			want: 0,
		},
		{
			name: "empty side",
			a:    map[string]float64{},
			b:    map[string]float64{"phone": 0.9},
			want: 0,
		},
		{
			name: "nil side",
			a:    nil,
			b:    map[string]float64{"phone": 0.9},
			want: 0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, scorer.tagScore(tt.a, tt.b), 0.001)
		})
	}
}

func TestTimeScore(t *testing.T) {
	scorer := NewScorer(defaultMatchingConfig())
	t0 := time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		gap  time.Duration
		want float64
	}{
		{"same instant", 0, 20},
		{"inside close window", 23 * time.Hour, 20},
		{"exactly close window", 24 * time.Hour, 20},
		{"midpoint of decay", (24 + (720-24)/2) * time.Hour, 10},
		{"at horizon", 720 * time.Hour, 0},
		{"beyond horizon", 1000 * time.Hour, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, b := pairAt(t0, tt.gap)
			assert.InDelta(t, tt.want, scorer.timeScore(a.EventTime, b.EventTime), 0.001)

			// Sign of the gap must not matter.
			assert.InDelta(t, tt.want, scorer.timeScore(b.EventTime, a.EventTime), 0.001)
		})
	}
}

func TestLocationScore(t *testing.T) {
	scorer := NewScorer(defaultMatchingConfig())
	center := &domain.GeoPoint{Longitude: 116.4, Latitude: 39.9}

	t.Run("inside close radius", func(t *testing.T) {
		// ~111m north.
		near := &domain.GeoPoint{Longitude: 116.4, Latitude: 39.901}
		assert.Equal(t, 20.0, scorer.locationScore(center, near))
	})

	t.Run("beyond max radius", func(t *testing.T) {
		// ~11km north.
		far := &domain.GeoPoint{Longitude: 116.4, Latitude: 40.0}
		assert.Equal(t, 0.0, scorer.locationScore(center, far))
	})

	t.Run("partial credit between radii", func(t *testing.T) {
		// ~2.6km north: between 200m and 5000m.
		mid := &domain.GeoPoint{Longitude: 116.4, Latitude: 39.9234}
		got := scorer.locationScore(center, mid)
		assert.Greater(t, got, 0.0)
		assert.Less(t, got, 20.0)
	})

	t.Run("missing location", func(t *testing.T) {
		assert.Equal(t, 0.0, scorer.locationScore(center, nil))
		assert.Equal(t, 0.0, scorer.locationScore(nil, nil))
	})
}
