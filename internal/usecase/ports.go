package usecase

import (
	"context"
	"time"

	"github.com/assistralabs/assistra"
	"github.com/assistralabs/assistra/internal/domain"
)

// ChallengeStore holds single-use signing nonces keyed by
// (chain family, normalized address). Put replaces any live nonce for the
// pair; Consume is an atomic compare-and-delete so two concurrent
// verification attempts can never both succeed.
type ChallengeStore interface {
	Put(ctx context.Context, family assistra.ChainFamily, address, nonce string, ttl time.Duration) error
	Consume(ctx context.Context, family assistra.ChainFamily, address, nonce string) error
}

// IdentityRepository defines persistence/lookup for users and their
// authentication identities.
type IdentityRepository interface {
	GetUser(ctx context.Context, id string) (domain.User, error)
	GetIdentity(ctx context.Context, provider, subject string) (domain.AuthIdentity, error)
	CreateUserWithIdentity(ctx context.Context, user domain.User, identity domain.AuthIdentity) error
	CreateIdentity(ctx context.Context, identity domain.AuthIdentity) error
}

// TenantRepository defines persistence/lookup for organizations, workspaces
// and their memberships.
type TenantRepository interface {
	// ListOrganizations returns the user's organizations ordered by creation
	// time ascending.
	ListOrganizations(ctx context.Context, userID string) ([]domain.Organization, error)
	// DefaultWorkspace returns the workspace flagged default, falling back to
	// the earliest-created workspace of the organization.
	DefaultWorkspace(ctx context.Context, orgID string) (domain.Workspace, error)
	GetWorkspace(ctx context.Context, workspaceID string) (domain.Workspace, error)
	// CreatePersonalTenant commits all four records in a single transaction.
	// A concurrent winner surfaces as domain.ErrDuplicate.
	CreatePersonalTenant(ctx context.Context, org domain.Organization, member domain.OrganizationMember, ws domain.Workspace, wsMember domain.WorkspaceMember) error
	OrganizationRole(ctx context.Context, orgID, userID string) (string, error)
	WorkspaceRole(ctx context.Context, workspaceID, userID string) (string, error)
}
