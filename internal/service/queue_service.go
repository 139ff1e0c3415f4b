package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/moon-community/fto-queue-service/internal/domain"
	"github.com/moon-community/fto-queue-service/internal/events"
	"github.com/moon-community/fto-queue-service/internal/observability"
	"github.com/moon-community/fto-queue-service/internal/repository"
	"github.com/moon-community/fto-queue-service/internal/roles"
	"github.com/moon-community/fto-queue-service/internal/statusboard"
)

// Actor identifies the member behind an interaction, with the display name
// snapshot taken at interaction time.
type Actor struct {
	ID          int64
	DisplayName string
}

// JoinResult reports how a join resolved: paired immediately with a waiting
// peer, or enrolled as newly waiting.
type JoinResult struct {
	Paired bool
	Entry  *domain.QueueEntry
	Peer   *domain.QueueEntry
}

// QueueService is the matching engine. All pairing correctness comes from
// the repository's row locking; this layer sequences the two transactions,
// keeps side effects strictly after their commits, and treats board and
// notification failures as best-effort.
type QueueService struct {
	store      repository.QueueRepository
	board      statusboard.Board
	resolver   roles.Resolver
	dispatcher events.Dispatcher
	logger     *zap.Logger
	metrics    *observability.Metrics
}

// QueueDependencies bundles collaborators for the queue service.
type QueueDependencies struct {
	Store      repository.QueueRepository
	Board      statusboard.Board
	Resolver   roles.Resolver
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
	Metrics    *observability.Metrics
}

// NewQueueService constructs the service.
func NewQueueService(deps QueueDependencies) *QueueService {
	return &QueueService{
		store:      deps.Store,
		board:      deps.Board,
		resolver:   deps.Resolver,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
		metrics:    deps.Metrics,
	}
}

// Join resolves the actor's role and enters them into the queue on the
// given board. Returns domain.ErrIneligible before any persistence access
// when the actor holds neither capability.
func (s *QueueService) Join(ctx context.Context, board domain.BoardRef, actor Actor) (*JoinResult, error) {
	role, err := s.resolver.ResolveRole(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	return s.JoinAs(ctx, board, actor, role)
}

// JoinAs enters an actor with an already-resolved role. Two transactions:
// an insert-only enrollment that keeps the lock window short, then a
// skip-locked claim of the oldest complementary waiting entry.
func (s *QueueService) JoinAs(ctx context.Context, board domain.BoardRef, actor Actor, role domain.Role) (*JoinResult, error) {
	if !role.Valid() {
		return nil, domain.ErrIneligible
	}

	entry, err := s.store.Enroll(ctx, actor.ID, role, actor.DisplayName, board)
	if err != nil {
		return nil, err
	}

	peer, err := s.store.ClaimOldestWaiting(ctx, entry.ID, role.Opposite(), board)
	if err != nil {
		// The enrollment committed; the actor is waiting even though the
		// claim failed. The board may lag behind, which is acceptable.
		return nil, err
	}

	if peer == nil {
		if boardErr := s.board.Append(ctx, board, statusboard.ListForRole(role), actor.DisplayName); boardErr != nil {
			s.logBoardFailure("append", board, actor.DisplayName, boardErr)
		}
		s.metrics.RecordQueueOp("join_waiting")
		s.publish(ctx, events.Event{
			Type:  events.EventQueueWaiting,
			Board: board,
			Payload: events.QueueWaitingPayload{
				Actor:   participant(actor, role),
				QueueID: entry.ID,
			},
		})
		return &JoinResult{Paired: false, Entry: entry}, nil
	}

	// Only the peer's name leaves the board: the joiner was paired before
	// ever being rendered, so it is never added.
	if boardErr := s.board.Remove(ctx, board, statusboard.ListForRole(role.Opposite()), peer.DisplayName); boardErr != nil {
		s.logBoardFailure("remove", board, peer.DisplayName, boardErr)
	}
	s.metrics.RecordQueueOp("join_paired")
	s.publish(ctx, events.Event{
		Type:  events.EventQueuePaired,
		Board: board,
		Payload: events.QueuePairedPayload{
			Joiner: participant(actor, role),
			Peer: events.Participant{
				ActorID:     peer.ActorID(),
				DisplayName: peer.DisplayName,
				Role:        peer.Role(),
			},
		},
	})
	return &JoinResult{Paired: true, Entry: entry, Peer: peer}, nil
}

// Leave retires every active entry for the actor in one transaction and
// removes their name from all board lists; the role is not re-derived.
// Returns domain.ErrNotQueued when nothing was active.
func (s *QueueService) Leave(ctx context.Context, board domain.BoardRef, actorID int64) error {
	entries, err := s.store.FinishAllActive(ctx, actorID)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return domain.ErrNotQueued
	}

	for _, entry := range entries {
		if boardErr := s.board.RemoveEverywhere(ctx, board, entry.DisplayName); boardErr != nil {
			s.logBoardFailure("remove_everywhere", board, entry.DisplayName, boardErr)
		}
	}
	s.metrics.RecordQueueOp("leave")
	s.publish(ctx, events.Event{
		Type:  events.EventQueueLeft,
		Board: board,
		Payload: events.QueueLeftPayload{
			ActorID: actorID,
			Entries: len(entries),
		},
	})
	return nil
}

// WaitingLists reconstructs the board view from the authoritative active
// rows; serves the board read API.
func (s *QueueService) WaitingLists(ctx context.Context, board domain.BoardRef) (map[statusboard.List][]string, error) {
	entries, err := s.store.ListActive(ctx, board)
	if err != nil {
		return nil, err
	}
	lists := map[statusboard.List][]string{
		statusboard.ListOfficers:     {},
		statusboard.ListProbationers: {},
	}
	for i := range entries {
		list := statusboard.ListForRole(entries[i].Role())
		lists[list] = append(lists[list], entries[i].DisplayName)
	}
	return lists, nil
}

func (s *QueueService) publish(ctx context.Context, event events.Event) {
	event.ID = uuid.NewString()
	event.Timestamp = time.Now()
	_ = s.dispatcher.Publish(ctx, event)
}

func (s *QueueService) logBoardFailure(op string, board domain.BoardRef, name string, err error) {
	s.logger.Warn("status board update failed",
		zap.String("op", op),
		zap.Int64("channel_id", board.ChannelID),
		zap.Int64("message_id", board.MessageID),
		zap.String("display_name", name),
		zap.Error(err))
}

func participant(actor Actor, role domain.Role) events.Participant {
	return events.Participant{ActorID: actor.ID, DisplayName: actor.DisplayName, Role: role}
}
