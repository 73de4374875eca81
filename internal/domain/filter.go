package domain

import (
	"time"

	"github.com/google/uuid"
)

// CandidateFilter defines parameters for bounded candidate retrieval.
// Deleted rows are always excluded.
type CandidateFilter struct {
	// Type restricts results to one posting type (the opposite of the
	// source item's type).
	Type ItemType

	// Status restricts results to one lifecycle state; candidate scoring
	// only ever looks at pending postings.
	Status ItemStatus

	// ExcludeUserID drops postings published by this user, so users are
	// never matched against their own items.
	ExcludeUserID *uuid.UUID

	// EventTimeFrom/EventTimeTo bound the event timestamp. The ranker sets
	// these to the source event time plus/minus the scoring time horizon:
	// anything outside would earn zero time credit anyway.
	EventTimeFrom *time.Time
	EventTimeTo   *time.Time

	// Limit caps the candidate set size. Default 500, max 1000.
	Limit int
}

const (
	defaultCandidateLimit = 500
	maxCandidateLimit     = 1000
)

// Normalize applies the default and maximum limit bounds.
func (f *CandidateFilter) Normalize() {
	if f.Limit <= 0 {
		f.Limit = defaultCandidateLimit
	}
	if f.Limit > maxCandidateLimit {
		f.Limit = maxCandidateLimit
	}
}
