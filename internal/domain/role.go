package domain

// Permission strings understood by the resolver. Every permission referenced
// by a role default or a gate in the service layer is listed here; anything
// else is reachable only through an explicit grant.
const (
	PermDocsRead      = "docs.read"
	PermDocsWrite     = "docs.write"
	PermDocsDelete    = "docs.delete"
	PermDocsAdmin     = "docs.admin"
	PermSpaceAdmin    = "space.admin"
	PermSpaceDelete   = "space.delete"
	PermMembersInvite = "members.invite"
	PermMembersRemove = "members.remove"
	PermMembersManage = "members.manage"
	PermCommentManage = "docs.comment.manage"
)

// Role is a space membership role
type Role string

const (
	RoleOwner  Role = "owner"
	RoleAdmin  Role = "admin"
	RoleEditor Role = "editor"
	RoleViewer Role = "viewer"
	RoleMember Role = "member"
)

// Valid reports whether r is a known role
func (r Role) Valid() bool {
	switch r {
	case RoleOwner, RoleAdmin, RoleEditor, RoleViewer, RoleMember:
		return true
	}
	return false
}

// DefaultPermissions returns the fixed permission set implied by the role.
// This table is the single source of truth for implicit role capability.
func (r Role) DefaultPermissions() []string {
	switch r {
	case RoleOwner:
		return []string{
			PermDocsRead,
			PermDocsWrite,
			PermDocsDelete,
			PermDocsAdmin,
			PermSpaceAdmin,
			PermSpaceDelete,
			PermMembersInvite,
			PermMembersRemove,
			PermMembersManage,
		}
	case RoleAdmin:
		return []string{
			PermDocsRead,
			PermDocsWrite,
			PermDocsDelete,
			PermDocsAdmin,
			PermMembersInvite,
			PermMembersManage,
		}
	case RoleEditor:
		return []string{
			PermDocsRead,
			PermDocsWrite,
		}
	case RoleViewer:
		return []string{
			PermDocsRead,
		}
	case RoleMember:
		return []string{
			PermDocsRead,
			PermDocsWrite,
		}
	}
	return nil
}

// CanPerform reports whether the role's default permission set includes perm
func (r Role) CanPerform(perm string) bool {
	for _, p := range r.DefaultPermissions() {
		if p == perm {
			return true
		}
	}
	return false
}

// CapabilityRank orders roles by capability as implied by the default
// permission tables. Editor and Member share the same permissions and
// therefore the same rank.
func (r Role) CapabilityRank() int {
	switch r {
	case RoleOwner:
		return 4
	case RoleAdmin:
		return 3
	case RoleEditor, RoleMember:
		return 2
	case RoleViewer:
		return 1
	}
	return 0
}
