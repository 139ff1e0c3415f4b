package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/moon-community/fto-queue-service/internal/domain"
	"github.com/moon-community/fto-queue-service/internal/events"
)

// Notifier delivers a direct message to a member through the gateway.
type Notifier interface {
	SendDirect(ctx context.Context, actorID int64, content string) error
}

// NotificationService turns queue events into best-effort direct messages.
// Delivery failures (closed DMs, gateway down) are logged and swallowed;
// they never fail the queue operation that emitted the event.
type NotificationService struct {
	notifier Notifier
	logger   *zap.Logger
}

// NewNotificationService creates the service.
func NewNotificationService(notifier Notifier, logger *zap.Logger) *NotificationService {
	return &NotificationService{notifier: notifier, logger: logger}
}

// RegisterHandlers subscribes to queue events.
func (n *NotificationService) RegisterHandlers(dispatcher events.Dispatcher) {
	if dispatcher == nil {
		return
	}
	dispatcher.Subscribe(events.EventQueuePaired, n.handlePaired)
	dispatcher.Subscribe(events.EventQueueExpired, n.handleExpired)
}

func (n *NotificationService) handlePaired(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.QueuePairedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload for %s", event.Type)
	}

	n.send(ctx, payload.Joiner.ActorID,
		fmt.Sprintf("🎉 You found your %s: %s!", roleLabel(payload.Peer.Role), payload.Peer.DisplayName))
	n.send(ctx, payload.Peer.ActorID,
		fmt.Sprintf("🎉 You found your %s: %s!", roleLabel(payload.Joiner.Role), payload.Joiner.DisplayName))
	return nil
}

func (n *NotificationService) handleExpired(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.QueueExpiredPayload)
	if !ok {
		return fmt.Errorf("unexpected payload for %s", event.Type)
	}

	n.send(ctx, payload.Actor.ActorID,
		"❌ You were removed from the queue because no match was found in time.")
	return nil
}

func (n *NotificationService) send(ctx context.Context, actorID int64, content string) {
	if err := n.notifier.SendDirect(ctx, actorID, content); err != nil {
		// Member likely has DMs closed; queue state is already committed.
		n.logger.Warn("direct message delivery failed",
			zap.Int64("actor_id", actorID),
			zap.Error(err))
	}
}

func roleLabel(role domain.Role) string {
	if role == domain.RoleOfficer {
		return "FTO"
	}
	return "trainee"
}
