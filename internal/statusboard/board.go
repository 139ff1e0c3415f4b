package statusboard

import (
	"context"

	"github.com/moon-community/fto-queue-service/internal/domain"
)

// List names one of the two waiting lists rendered on a board.
type List string

const (
	ListOfficers     List = "officers"
	ListProbationers List = "probationers"
)

// Lists enumerates every tracked list, in render order.
var Lists = []List{ListProbationers, ListOfficers}

// ListForRole maps a queue role to its board list.
func ListForRole(role domain.Role) List {
	if role == domain.RoleOfficer {
		return ListOfficers
	}
	return ListProbationers
}

// Board mutates the rendered waiting lists for a queue board. The board is
// a derived, best-effort view: callers log failures and move on, and the
// queue table stays authoritative even when the board drifts.
type Board interface {
	// Append adds a display name to the end of a list.
	Append(ctx context.Context, ref domain.BoardRef, list List, name string) error
	// Remove deletes the first occurrence of a display name from a list.
	Remove(ctx context.Context, ref domain.BoardRef, list List, name string) error
	// RemoveEverywhere deletes the display name from every tracked list;
	// used by leave, where the actor's role is not re-derived.
	RemoveEverywhere(ctx context.Context, ref domain.BoardRef, name string) error
	// Snapshot returns the current names per list.
	Snapshot(ctx context.Context, ref domain.BoardRef) (map[List][]string, error)
}
