package roles

import (
	"context"

	"github.com/moon-community/fto-queue-service/internal/config"
	"github.com/moon-community/fto-queue-service/internal/domain"
	"github.com/moon-community/fto-queue-service/internal/gateway"
)

// Resolver answers which queue role an actor is entitled to. Actors holding
// both platform roles resolve as officer; actors holding neither get
// domain.ErrIneligible before any persistence access.
type Resolver interface {
	ResolveRole(ctx context.Context, actorID int64) (domain.Role, error)
}

// GatewayResolver resolves roles through the gateway's member-roles API,
// matching the configured platform role names.
type GatewayResolver struct {
	client           *gateway.Client
	officerRole      string
	probationaryRole string
}

// NewGatewayResolver builds a resolver over the gateway client.
func NewGatewayResolver(client *gateway.Client, cfg config.GatewayConfig) *GatewayResolver {
	return &GatewayResolver{
		client:           client,
		officerRole:      cfg.OfficerRoleName,
		probationaryRole: cfg.ProbationaryRoleName,
	}
}

// ResolveRole fetches the member's platform roles and maps them.
func (r *GatewayResolver) ResolveRole(ctx context.Context, actorID int64) (domain.Role, error) {
	names, err := r.client.MemberRoles(ctx, actorID)
	if err != nil {
		return "", err
	}
	return FromRoleNames(names, r.officerRole, r.probationaryRole)
}

// FromRoleNames maps platform role names onto a queue role. Officer wins
// when both are held.
func FromRoleNames(names []string, officerRole, probationaryRole string) (domain.Role, error) {
	var probationary bool
	for _, name := range names {
		if name == officerRole {
			return domain.RoleOfficer, nil
		}
		if name == probationaryRole {
			probationary = true
		}
	}
	if probationary {
		return domain.RoleProbationary, nil
	}
	return "", domain.ErrIneligible
}

// StaticResolver serves a fixed mapping; used in tests and local setups
// without a gateway.
type StaticResolver map[int64]domain.Role

// ResolveRole returns the configured role for the actor.
func (s StaticResolver) ResolveRole(_ context.Context, actorID int64) (domain.Role, error) {
	role, ok := s[actorID]
	if !ok {
		return "", domain.ErrIneligible
	}
	return role, nil
}
