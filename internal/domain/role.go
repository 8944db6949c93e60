package domain

// Role enumerates the permission levels of an identity.
type Role string

const (
	RoleSalesman     Role = "salesman"
	RoleCallOperator Role = "call_operator"
	RoleTechnician   Role = "technician"
	RoleTeamLead     Role = "team_lead"
	RoleSuperAdmin   Role = "super_admin"
)

// AllRoles lists every role variant in a stable order.
func AllRoles() []Role {
	return []Role{RoleSalesman, RoleCallOperator, RoleTechnician, RoleTeamLead, RoleSuperAdmin}
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	for _, known := range AllRoles() {
		if r == known {
			return true
		}
	}
	return false
}

// IsAdmin reports whether r belongs to the administrative group.
func (r Role) IsAdmin() bool {
	return r == RoleTeamLead || r == RoleSuperAdmin
}

// RoleSet is an unordered set of roles.
type RoleSet map[Role]struct{}

// NewRoleSet builds a set from the given roles.
func NewRoleSet(roles ...Role) RoleSet {
	set := make(RoleSet, len(roles))
	for _, role := range roles {
		set[role] = struct{}{}
	}
	return set
}

// Contains reports membership.
func (s RoleSet) Contains(r Role) bool {
	_, ok := s[r]
	return ok
}
