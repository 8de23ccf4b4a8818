package domain

import "strings"

// Role enumerates portal roles. Values are stored in canonical (bare) form.
type Role string

const (
	RoleAdmin           Role = "ADMIN"
	RoleSambhagManager  Role = "SAMBHAG_MANAGER"
	RoleDistrictManager Role = "DISTRICT_MANAGER"
	RoleBlockManager    Role = "BLOCK_MANAGER"
	RoleMember          Role = "MEMBER"
)

// RoleNamespace is the prefix some identity providers put in front of role labels.
const RoleNamespace = "ROLE_"

// ParseRole canonicalises an incoming role label so that "ADMIN" and
// "ROLE_ADMIN" compare equal. Unknown labels are kept as-is and never
// match a known role. An empty label becomes RoleMember.
func ParseRole(raw string) Role {
	label := strings.TrimSpace(raw)
	label = strings.TrimPrefix(label, RoleNamespace)
	if label == "" {
		return RoleMember
	}
	return Role(label)
}

// Known reports whether the role is one of the enumerated portal roles.
func (r Role) Known() bool {
	switch r {
	case RoleAdmin, RoleSambhagManager, RoleDistrictManager, RoleBlockManager, RoleMember:
		return true
	}
	return false
}

// Namespaced returns the prefixed form, e.g. ROLE_ADMIN.
func (r Role) Namespaced() string {
	return RoleNamespace + string(r)
}
