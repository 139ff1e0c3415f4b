package events

import (
	"time"

	"github.com/moon-community/fto-queue-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventQueueWaiting EventType = "queue_waiting"
	EventQueuePaired  EventType = "queue_paired"
	EventQueueLeft    EventType = "queue_left"
	EventQueueExpired EventType = "queue_expired"
)

// Event represents a queue event emitted after its transaction committed.
type Event struct {
	ID        string          `json:"id"`
	Type      EventType       `json:"type"`
	Board     domain.BoardRef `json:"board"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   interface{}     `json:"payload"`
}

// Participant summarizes one side of a queue event.
type Participant struct {
	ActorID     int64       `json:"actor_id"`
	DisplayName string      `json:"display_name"`
	Role        domain.Role `json:"role"`
}

// QueueWaitingPayload payload.
type QueueWaitingPayload struct {
	Actor   Participant `json:"actor"`
	QueueID int64       `json:"queue_id"`
}

// QueuePairedPayload payload.
type QueuePairedPayload struct {
	Joiner Participant `json:"joiner"`
	Peer   Participant `json:"peer"`
}

// QueueLeftPayload payload.
type QueueLeftPayload struct {
	ActorID int64 `json:"actor_id"`
	Entries int   `json:"entries"`
}

// QueueExpiredPayload payload.
type QueueExpiredPayload struct {
	Actor   Participant   `json:"actor"`
	QueueID int64         `json:"queue_id"`
	Waited  time.Duration `json:"waited"`
}
