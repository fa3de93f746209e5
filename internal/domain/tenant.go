package domain

import "time"

const (
	TierFree = "free"

	OrgRoleOwner  = "owner"
	OrgRoleAdmin  = "admin"
	OrgRoleMember = "member"

	WorkspaceRoleAdmin  = "admin"
	WorkspaceRoleEditor = "editor"
	WorkspaceRoleViewer = "viewer"
)

// Organization is the top-level tenant boundary. Personal marks the
// auto-provisioned organization; at most one personal organization exists per
// creator, which is what serializes concurrent first logins.
type Organization struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Tier        string    `json:"tier"`
	TrialEndsAt time.Time `json:"trialEndsAt"`
	CreatedBy   string    `json:"createdBy"`
	Personal    bool      `json:"personal"`
	CreatedAt   time.Time `json:"createdAt"`
}

type OrganizationMember struct {
	OrganizationID string    `json:"organizationId"`
	UserID         string    `json:"userId"`
	Role           string    `json:"role"`
	CreatedAt      time.Time `json:"createdAt"`
}

// Workspace is the sub-tenant scoping unit inside an organization. Exactly
// one workspace per freshly provisioned organization carries IsDefault.
type Workspace struct {
	ID             string    `json:"id"`
	OrganizationID string    `json:"organizationId"`
	Name           string    `json:"name"`
	IsDefault      bool      `json:"isDefault"`
	CreatedBy      string    `json:"createdBy"`
	CreatedAt      time.Time `json:"createdAt"`
}

type WorkspaceMember struct {
	WorkspaceID string    `json:"workspaceId"`
	UserID      string    `json:"userId"`
	Role        string    `json:"role"`
	CreatedAt   time.Time `json:"createdAt"`
}
