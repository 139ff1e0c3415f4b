package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/moon-community/fto-queue-service/internal/events"
	"github.com/moon-community/fto-queue-service/internal/observability"
	"github.com/moon-community/fto-queue-service/internal/repository"
	"github.com/moon-community/fto-queue-service/internal/statusboard"
)

// SweeperService retires queue entries that waited longer than the TTL.
// Each expired row is processed independently: its retire is one
// transaction, and a failure on one row never blocks the rest.
type SweeperService struct {
	store      repository.QueueRepository
	board      statusboard.Board
	dispatcher events.Dispatcher
	logger     *zap.Logger
	metrics    *observability.Metrics
	ttl        time.Duration
}

// NewSweeperService constructs the sweeper.
func NewSweeperService(deps QueueDependencies, ttl time.Duration) *SweeperService {
	return &SweeperService{
		store:      deps.Store,
		board:      deps.Board,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
		metrics:    deps.Metrics,
		ttl:        ttl,
	}
}

// SweepOnce runs a single sweep tick and returns how many entries it
// retired.
func (s *SweeperService) SweepOnce(ctx context.Context) int {
	expired, err := s.store.ListExpired(ctx, s.ttl)
	if err != nil {
		s.logger.Error("expiry sweep query failed", zap.Error(err))
		return 0
	}

	retired := 0
	for i := range expired {
		entry := &expired[i]

		if err := s.store.Finish(ctx, entry.ID); err != nil {
			s.logger.Error("failed to retire expired entry",
				zap.Int64("queue_id", entry.ID),
				zap.Error(err))
			continue
		}
		retired++
		s.metrics.RecordQueueOp("expired")

		if boardErr := s.board.Remove(ctx, entry.Board, statusboard.ListForRole(entry.Role()), entry.DisplayName); boardErr != nil {
			s.logger.Warn("status board update failed",
				zap.String("op", "remove"),
				zap.Int64("queue_id", entry.ID),
				zap.Error(boardErr))
		}

		event := events.Event{
			ID:        uuid.NewString(),
			Type:      events.EventQueueExpired,
			Board:     entry.Board,
			Timestamp: time.Now(),
			Payload: events.QueueExpiredPayload{
				Actor: events.Participant{
					ActorID:     entry.ActorID(),
					DisplayName: entry.DisplayName,
					Role:        entry.Role(),
				},
				QueueID: entry.ID,
				Waited:  time.Since(entry.CreatedAt),
			},
		}
		_ = s.dispatcher.Publish(ctx, event)
	}

	if retired > 0 {
		s.logger.Info("expiry sweep retired entries", zap.Int("count", retired))
	}
	return retired
}
