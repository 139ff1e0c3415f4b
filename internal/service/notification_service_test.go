package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/moon-community/fto-queue-service/internal/domain"
	"github.com/moon-community/fto-queue-service/internal/events"
)

type fakeNotifier struct {
	mu   sync.Mutex
	sent map[int64][]string
	err  error
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{sent: make(map[int64][]string)}
}

func (n *fakeNotifier) SendDirect(_ context.Context, actorID int64, content string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.sent[actorID] = append(n.sent[actorID], content)
	return nil
}

func pairedEvent() events.Event {
	return events.Event{
		ID:        "evt-1",
		Type:      events.EventQueuePaired,
		Timestamp: time.Now(),
		Payload: events.QueuePairedPayload{
			Joiner: events.Participant{ActorID: 9, DisplayName: "Mentor", Role: domain.RoleOfficer},
			Peer:   events.Participant{ActorID: 11, DisplayName: "Rookie", Role: domain.RoleProbationary},
		},
	}
}

func TestPairedEventNotifiesBothSides(t *testing.T) {
	notifier := newFakeNotifier()
	svc := NewNotificationService(notifier, zap.NewNop())
	dispatcher := events.NewInMemoryDispatcher(zap.NewNop())
	svc.RegisterHandlers(dispatcher)

	require.NoError(t, dispatcher.Publish(context.Background(), pairedEvent()))

	require.Len(t, notifier.sent[9], 1)
	require.Len(t, notifier.sent[11], 1)
	assert.Contains(t, notifier.sent[9][0], "Rookie")
	assert.Contains(t, notifier.sent[9][0], "trainee")
	assert.Contains(t, notifier.sent[11][0], "Mentor")
	assert.Contains(t, notifier.sent[11][0], "FTO")
}

func TestExpiredEventNotifiesActor(t *testing.T) {
	notifier := newFakeNotifier()
	svc := NewNotificationService(notifier, zap.NewNop())
	dispatcher := events.NewInMemoryDispatcher(zap.NewNop())
	svc.RegisterHandlers(dispatcher)

	event := events.Event{
		ID:        "evt-2",
		Type:      events.EventQueueExpired,
		Timestamp: time.Now(),
		Payload: events.QueueExpiredPayload{
			Actor:   events.Participant{ActorID: 5, DisplayName: "Rookie", Role: domain.RoleProbationary},
			QueueID: 1,
			Waited:  3 * time.Hour,
		},
	}
	require.NoError(t, dispatcher.Publish(context.Background(), event))

	require.Len(t, notifier.sent[5], 1)
	assert.Contains(t, notifier.sent[5][0], "removed from the queue")
}

func TestDeliveryFailureIsSwallowed(t *testing.T) {
	notifier := newFakeNotifier()
	notifier.err = &injectedError{"dms closed"}
	svc := NewNotificationService(notifier, zap.NewNop())
	dispatcher := events.NewInMemoryDispatcher(zap.NewNop())
	svc.RegisterHandlers(dispatcher)

	assert.NoError(t, dispatcher.Publish(context.Background(), pairedEvent()))
}

func TestUnexpectedPayloadReported(t *testing.T) {
	notifier := newFakeNotifier()
	svc := NewNotificationService(notifier, zap.NewNop())

	err := svc.handlePaired(context.Background(), events.Event{Type: events.EventQueuePaired, Payload: "bogus"})
	assert.Error(t, err)
}
