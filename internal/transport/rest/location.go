package rest

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/campusfind/lostfound-backend/internal/domain"
)

type locationService interface {
	Geocode(ctx context.Context, address string) (*domain.GeoPoint, error)
	ReverseGeocode(ctx context.Context, point *domain.GeoPoint) (string, error)
	SearchInRadius(ctx context.Context, center *domain.GeoPoint, radiusMeters float64) ([]*domain.Item, error)
}

// LocationHandler serves geocoding and radius-search endpoints.
type LocationHandler struct {
	locations locationService
	log       *slog.Logger
}

// NewLocationHandler creates a LocationHandler.
func NewLocationHandler(locations locationService, logger *slog.Logger) *LocationHandler {
	return &LocationHandler{
		locations: locations,
		log:       logger.With("handler", "location"),
	}
}

// Geocode handles GET /api/v1/locations/geocode?address=...
// An unresolvable address yields 200 with a null location, not an error.
func (h *LocationHandler) Geocode(w http.ResponseWriter, r *http.Request) {
	address := r.URL.Query().Get("address")
	if address == "" {
		writeError(w, domain.NewValidationError("address", "required"))
		return
	}

	point, err := h.locations.Geocode(r.Context(), address)
	if err != nil {
		writeError(w, err)
		return
	}

	var dto *geoPointDTO
	if point != nil {
		dto = &geoPointDTO{
			Longitude: point.Longitude,
			Latitude:  point.Latitude,
			Address:   point.Address,
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{"location": dto})
}

// Reverse handles GET /api/v1/locations/reverse?longitude=..&latitude=..
func (h *LocationHandler) Reverse(w http.ResponseWriter, r *http.Request) {
	point, verr := parsePoint(r)
	if verr != nil {
		writeError(w, verr)
		return
	}

	address, err := h.locations.ReverseGeocode(r.Context(), point)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"address": address})
}

// Nearby handles GET /api/v1/items/nearby?longitude=..&latitude=..&radius=..
// radius is in meters.
func (h *LocationHandler) Nearby(w http.ResponseWriter, r *http.Request) {
	point, verr := parsePoint(r)
	if verr != nil {
		writeError(w, verr)
		return
	}

	radius, err := strconv.ParseFloat(r.URL.Query().Get("radius"), 64)
	if err != nil || radius <= 0 {
		writeError(w, domain.NewValidationError("radius", "must be a positive number of meters"))
		return
	}

	items, err := h.locations.SearchInRadius(r.Context(), point, radius)
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]itemDTO, len(items))
	for i, it := range items {
		out[i] = toItemDTO(it)
	}

	writeJSON(w, http.StatusOK, map[string]any{"items": out})
}

func parsePoint(r *http.Request) (*domain.GeoPoint, error) {
	lon, err := strconv.ParseFloat(r.URL.Query().Get("longitude"), 64)
	if err != nil {
		return nil, domain.NewValidationError("longitude", "must be a number")
	}
	lat, err := strconv.ParseFloat(r.URL.Query().Get("latitude"), 64)
	if err != nil {
		return nil, domain.NewValidationError("latitude", "must be a number")
	}
	if lon < -180 || lon > 180 {
		return nil, domain.NewValidationError("longitude", "out of range")
	}
	if lat < -90 || lat > 90 {
		return nil, domain.NewValidationError("latitude", "out of range")
	}
	return &domain.GeoPoint{Longitude: lon, Latitude: lat}, nil
}
