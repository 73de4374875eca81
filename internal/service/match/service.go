// Package match implements the matching engine: scoring lost/found item
// pairs, ranking recommendations, confirming matches, collecting feedback,
// and scanning fresh postings for notification-worthy counterparts.
package match

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/campusfind/lostfound-backend/internal/config"
	"github.com/campusfind/lostfound-backend/internal/domain"
)

// ---------------------------------------------------------------------------
// Consumer-defined interfaces (private)
// ---------------------------------------------------------------------------

type itemRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Item, error)
	ListCandidates(ctx context.Context, f domain.CandidateFilter) ([]*domain.Item, error)
	TagsByItemID(ctx context.Context, itemID uuid.UUID) (map[string]float64, error)
	TagsByItemIDs(ctx context.Context, itemIDs []uuid.UUID) (map[uuid.UUID]map[string]float64, error)
	UpdateStatusIf(ctx context.Context, itemID uuid.UUID, expected, next domain.ItemStatus) (bool, error)
}

type matchRepo interface {
	Create(ctx context.Context, record *domain.MatchRecord) (*domain.MatchRecord, error)
	GetByPair(ctx context.Context, lostItemID, foundItemID uuid.UUID) (*domain.MatchRecord, error)
}

type feedbackRepo interface {
	Create(ctx context.Context, fb *domain.MatchFeedback) (*domain.MatchFeedback, error)
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// publisher emits domain events to the bus. Implementations must be safe to
// call after the originating request has completed.
type publisher interface {
	Publish(ctx context.Context, routingKey string, body any) error
}

// pusher delivers realtime notifications to connected users, best effort.
type pusher interface {
	Send(userID uuid.UUID, payload any) bool
}

// taskPool runs fire-and-forget work outside the request lifecycle.
type taskPool interface {
	Submit(name string, fn func(ctx context.Context)) bool
}

// Service is the matching engine.
type Service struct {
	items    itemRepo
	matches  matchRepo
	feedback feedbackRepo
	tx       txManager
	bus      publisher
	push     pusher
	pool     taskPool
	scorer   *Scorer
	cfg      config.MatchingConfig
	log      *slog.Logger
}

// New creates a match service.
func New(
	items itemRepo,
	matches matchRepo,
	feedback feedbackRepo,
	tx txManager,
	bus publisher,
	push pusher,
	pool taskPool,
	cfg config.MatchingConfig,
	logger *slog.Logger,
) *Service {
	return &Service{
		items:    items,
		matches:  matches,
		feedback: feedback,
		tx:       tx,
		bus:      bus,
		push:     push,
		pool:     pool,
		scorer:   NewScorer(cfg),
		cfg:      cfg,
		log:      logger.With("service", "match"),
	}
}
