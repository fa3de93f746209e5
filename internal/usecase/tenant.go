package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/assistralabs/assistra/internal/domain"
)

// TenantUsecase guarantees every user resolves to exactly one active
// organization and workspace, provisioning a personal tenant when none
// exists.
type TenantUsecase struct {
	tenants   TenantRepository
	trialDays int
}

func NewTenantUsecase(tenants TenantRepository, trialDays int) *TenantUsecase {
	if trialDays <= 0 {
		trialDays = 30
	}
	return &TenantUsecase{tenants: tenants, trialDays: trialDays}
}

// EnsureTenant resolves the organization and workspace for a freshly
// authenticated user. With no organizations the personal tenant is created
// atomically; with several, the earliest-created one wins. This is also the
// recovery path for users who deleted every organization they owned.
func (uc *TenantUsecase) EnsureTenant(ctx context.Context, user domain.User) (domain.Organization, domain.Workspace, error) {
	ctx, span := tracer.Start(ctx, "Tenant.EnsureTenant")
	defer span.End()

	orgs, err := uc.tenants.ListOrganizations(ctx, user.ID)
	if err != nil {
		span.RecordError(err)
		return domain.Organization{}, domain.Workspace{}, errors.Wrap(err, "list organizations")
	}

	if len(orgs) > 0 {
		org := orgs[0]
		ws, err := uc.tenants.DefaultWorkspace(ctx, org.ID)
		if err != nil {
			span.RecordError(err)
			return domain.Organization{}, domain.Workspace{}, errors.Wrap(err, "resolve default workspace")
		}
		return org, ws, nil
	}

	name := user.DisplayName
	if name == "" {
		name = "My"
	}
	org := domain.Organization{
		ID:          uuid.NewString(),
		Name:        name + "'s Organization",
		Tier:        domain.TierFree,
		TrialEndsAt: time.Now().AddDate(0, 0, uc.trialDays),
		CreatedBy:   user.ID,
		Personal:    true,
	}
	ws := domain.Workspace{
		ID:             uuid.NewString(),
		OrganizationID: org.ID,
		Name:           "Default Workspace",
		IsDefault:      true,
		CreatedBy:      user.ID,
	}
	member := domain.OrganizationMember{
		OrganizationID: org.ID,
		UserID:         user.ID,
		Role:           domain.OrgRoleOwner,
	}
	wsMember := domain.WorkspaceMember{
		WorkspaceID: ws.ID,
		UserID:      user.ID,
		Role:        domain.WorkspaceRoleAdmin,
	}

	err = uc.tenants.CreatePersonalTenant(ctx, org, member, ws, wsMember)
	if errors.Is(err, domain.ErrDuplicate) {
		// A concurrent first login provisioned the tenant; adopt it.
		orgs, err := uc.tenants.ListOrganizations(ctx, user.ID)
		if err != nil || len(orgs) == 0 {
			return domain.Organization{}, domain.Workspace{}, errors.Wrap(err, "re-read tenant after conflict")
		}
		winner := orgs[0]
		ws, err := uc.tenants.DefaultWorkspace(ctx, winner.ID)
		if err != nil {
			return domain.Organization{}, domain.Workspace{}, errors.Wrap(err, "resolve default workspace")
		}
		return winner, ws, nil
	}
	if err != nil {
		span.RecordError(err)
		return domain.Organization{}, domain.Workspace{}, errors.Wrap(err, "provision tenant")
	}

	return org, ws, nil
}

// Permissions computes the effective permission set of a user inside an
// organization and workspace. Both memberships must hold: a credential is
// only ever issued for a (org, workspace) pair the user is live in, so
// issuance and verification enforce the same predicate.
func (uc *TenantUsecase) Permissions(ctx context.Context, userID, orgID, workspaceID string) ([]string, error) {
	orgRole, err := uc.tenants.OrganizationRole(ctx, orgID, userID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrNoLongerMember
	}
	if err != nil {
		return nil, errors.Wrap(err, "organization role")
	}

	wsRole, err := uc.tenants.WorkspaceRole(ctx, workspaceID, userID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrNoLongerMember
	}
	if err != nil {
		return nil, errors.Wrap(err, "workspace role")
	}

	return domain.PermissionsFor(orgRole, wsRole), nil
}

// Switch re-verifies live membership in the target organization and
// workspace and returns the permission set for a fresh credential. The old
// credential is never touched.
func (uc *TenantUsecase) Switch(ctx context.Context, userID, orgID, workspaceID string) ([]string, error) {
	ctx, span := tracer.Start(ctx, "Tenant.Switch")
	defer span.End()

	ws, err := uc.tenants.GetWorkspace(ctx, workspaceID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrNoLongerMember
	}
	if err != nil {
		span.RecordError(err)
		return nil, errors.Wrap(err, "load workspace")
	}
	if ws.OrganizationID != orgID {
		return nil, domain.ErrNoLongerMember
	}

	orgRole, err := uc.tenants.OrganizationRole(ctx, orgID, userID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrNoLongerMember
	}
	if err != nil {
		span.RecordError(err)
		return nil, errors.Wrap(err, "organization role")
	}

	wsRole, err := uc.tenants.WorkspaceRole(ctx, workspaceID, userID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrNoLongerMember
	}
	if err != nil {
		span.RecordError(err)
		return nil, errors.Wrap(err, "workspace role")
	}

	return domain.PermissionsFor(orgRole, wsRole), nil
}
