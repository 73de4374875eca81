// Package location provides geocoding and spatial search on top of the
// external geocoder and the item store. Geocoding is best-effort: provider
// outages degrade to "no location" instead of failing the caller.
package location

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/campusfind/lostfound-backend/internal/domain"
	"github.com/campusfind/lostfound-backend/internal/geo"
)

// ---------------------------------------------------------------------------
// Consumer-defined interfaces (private)
// ---------------------------------------------------------------------------

type geocoder interface {
	Geocode(ctx context.Context, address string) (*domain.GeoPoint, error)
	ReverseGeocode(ctx context.Context, point *domain.GeoPoint) (string, error)
}

type itemRepo interface {
	ListInBoundingBox(ctx context.Context, box geo.BoundingBox) ([]*domain.Item, error)
}

// Service resolves addresses and searches items by radius.
type Service struct {
	geocoder geocoder
	items    itemRepo
	timeout  time.Duration
	log      *slog.Logger
}

// New creates a location service. timeout bounds each geocoder call.
func New(gc geocoder, items itemRepo, timeout time.Duration, logger *slog.Logger) *Service {
	return &Service{
		geocoder: gc,
		items:    items,
		timeout:  timeout,
		log:      logger.With("service", "location"),
	}
}

// Geocode resolves a free-text address to a coordinate pair.
// Returns nil, nil when the address cannot be resolved, including when the
// provider is unavailable.
func (s *Service) Geocode(ctx context.Context, address string) (*domain.GeoPoint, error) {
	if address == "" {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	point, err := s.geocoder.Geocode(ctx, address)
	if err != nil {
		s.log.WarnContext(ctx, "geocoding degraded to no location",
			slog.String("address", address),
			slog.String("error", err.Error()),
		)
		return nil, nil
	}

	return point, nil
}

// ReverseGeocode resolves a coordinate pair to a human-readable address.
// Returns "", nil when the point cannot be resolved.
func (s *Service) ReverseGeocode(ctx context.Context, point *domain.GeoPoint) (string, error) {
	if point == nil {
		return "", nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	addr, err := s.geocoder.ReverseGeocode(ctx, point)
	if err != nil {
		s.log.WarnContext(ctx, "reverse geocoding degraded to no address",
			slog.Float64("longitude", point.Longitude),
			slog.Float64("latitude", point.Latitude),
			slog.String("error", err.Error()),
		)
		return "", nil
	}

	return addr, nil
}

// SearchInRadius returns items whose location lies within radiusMeters of
// center. The search runs in two phases: a bounding-box prefilter pushed to
// the store, then an exact great-circle distance check. Degenerate input
// (nil center, non-positive radius) yields an empty result.
func (s *Service) SearchInRadius(ctx context.Context, center *domain.GeoPoint, radiusMeters float64) ([]*domain.Item, error) {
	box, ok := geo.Envelope(center, radiusMeters)
	if !ok {
		return []*domain.Item{}, nil
	}

	candidates, err := s.items.ListInBoundingBox(ctx, box)
	if err != nil {
		return nil, fmt.Errorf("search in radius: %w", err)
	}

	result := make([]*domain.Item, 0, len(candidates))
	for _, it := range candidates {
		dist, ok := geo.Distance(center, it.Location)
		if !ok || dist > radiusMeters {
			continue
		}
		result = append(result, it)
	}

	return result, nil
}
