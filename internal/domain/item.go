package domain

import (
	"time"

	"github.com/google/uuid"
)

// GeoPoint is an immutable WGS-84 coordinate pair with an optional resolved
// address. A nil *GeoPoint on an Item means "no location".
type GeoPoint struct {
	Longitude float64
	Latitude  float64
	Address   string
}

// Item is a lost or found posting. Status is mutated only by the match
// confirmation flow or moderation; soft-deleted rows are retained forever.
type Item struct {
	ID           uuid.UUID
	UserID       uuid.UUID
	Title        string
	Description  string
	Type         ItemType
	Category     string
	Location     *GeoPoint
	LocationDesc string
	EventTime    time.Time
	Status       ItemStatus
	Deleted      bool
	CreatedAt    time.Time
	UpdatedAt    time.Time

	// Tags maps tag name to recognition confidence in [0,1].
	Tags map[string]float64
}

// HasLocation reports whether the item carries coordinates.
func (i *Item) HasLocation() bool {
	return i.Location != nil
}
