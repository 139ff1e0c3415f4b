package domain

import "time"

// Role enumerates the two queue roles an actor may hold.
type Role string

const (
	RoleOfficer      Role = "OFFICER"
	RoleProbationary Role = "PROBATIONARY"
)

// Opposite returns the complementary role for pairing.
func (r Role) Opposite() Role {
	if r == RoleOfficer {
		return RoleProbationary
	}
	return RoleOfficer
}

// Valid reports whether the role is one of the known queue roles.
func (r Role) Valid() bool {
	return r == RoleOfficer || r == RoleProbationary
}

// BoardRef identifies the status board message a queue operation targets.
// It is always passed explicitly; the service keeps no ambient board state.
type BoardRef struct {
	ChannelID int64
	MessageID int64
}

// QueueEntry is a single actor's waiting-room ticket. Exactly one of
// OfficerID and ProbationaryID is set. FinishedAt is nil while the entry
// is active and, once set, is never cleared.
type QueueEntry struct {
	ID             int64
	OfficerID      *int64
	ProbationaryID *int64
	DisplayName    string
	Board          BoardRef
	CreatedAt      time.Time
	FinishedAt     *time.Time
}

// Role derives the entry's role from whichever identity column is set.
func (e *QueueEntry) Role() Role {
	if e.OfficerID != nil {
		return RoleOfficer
	}
	return RoleProbationary
}

// ActorID returns the identity of whichever side the entry belongs to.
func (e *QueueEntry) ActorID() int64 {
	if e.OfficerID != nil {
		return *e.OfficerID
	}
	if e.ProbationaryID != nil {
		return *e.ProbationaryID
	}
	return 0
}

// Active reports whether the entry is still waiting.
func (e *QueueEntry) Active() bool {
	return e.FinishedAt == nil
}
