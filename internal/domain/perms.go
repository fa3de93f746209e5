package domain

// Permission vocabulary. Tokens carry "resource:action" strings so downstream
// handlers never need to reload membership rows for ordinary checks.
const (
	PermOrgManage    = "org:manage"
	PermOrgBilling   = "org:billing"
	PermMemberRead   = "member:read"
	PermMemberManage = "member:manage"

	PermWorkspaceManage = "workspace:manage"

	PermAssistantRead     = "assistant:read"
	PermAssistantWrite    = "assistant:write"
	PermKnowledgeRead     = "knowledge:read"
	PermKnowledgeWrite    = "knowledge:write"
	PermConversationRead  = "conversation:read"
	PermConversationWrite = "conversation:write"
)

// PermissionsFor computes the effective permission set for a user holding
// orgRole in the organization and workspaceRole in the active workspace.
// Either role may be empty; an empty role contributes nothing.
func PermissionsFor(orgRole, workspaceRole string) []string {
	perms := make([]string, 0, 11)

	switch orgRole {
	case OrgRoleOwner:
		perms = append(perms, PermOrgManage, PermOrgBilling, PermMemberManage, PermMemberRead)
	case OrgRoleAdmin:
		perms = append(perms, PermMemberManage, PermMemberRead)
	case OrgRoleMember:
		perms = append(perms, PermMemberRead)
	}

	switch workspaceRole {
	case WorkspaceRoleAdmin:
		perms = append(perms, PermWorkspaceManage)
		fallthrough
	case WorkspaceRoleEditor:
		perms = append(perms, PermAssistantWrite, PermKnowledgeWrite, PermConversationWrite)
		fallthrough
	case WorkspaceRoleViewer:
		perms = append(perms, PermAssistantRead, PermKnowledgeRead, PermConversationRead)
	}

	return perms
}
