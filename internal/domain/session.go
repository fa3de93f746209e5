package domain

import "time"

// SessionContext is the decoded, re-verified content of a context token.
// It is never persisted; switching organization or workspace issues a new
// token rather than mutating this.
type SessionContext struct {
	UserID         string    `json:"userId"`
	OrganizationID string    `json:"organizationId"`
	WorkspaceID    string    `json:"workspaceId"`
	Permissions    []string  `json:"permissions"`
	ExpiresAt      time.Time `json:"expiresAt"`
}
