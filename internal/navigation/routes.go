package navigation

import (
	"fmt"

	"github.com/spec-kit/fieldops/internal/domain"
)

// Fixed routes of the application shell.
const (
	LoginRoute        = "/login"
	AdminRoute        = "/(admin)"
	SalesmanRoute     = "/(salesman)"
	CallOperatorRoute = "/(call_operator)"
	TechnicianRoute   = "/(technician)"
)

// landingRoutes maps each role to its canonical landing route. Every variant
// of domain.Role must appear here; init refuses to start otherwise.
var landingRoutes = map[domain.Role]string{
	domain.RoleSalesman:     SalesmanRoute,
	domain.RoleCallOperator: CallOperatorRoute,
	domain.RoleTechnician:   TechnicianRoute,
	domain.RoleTeamLead:     AdminRoute,
	domain.RoleSuperAdmin:   AdminRoute,
}

func init() {
	if err := validateRoutes(landingRoutes, domain.AllRoles()); err != nil {
		panic(err)
	}
}

func validateRoutes(table map[domain.Role]string, roles []domain.Role) error {
	for _, role := range roles {
		if route, ok := table[role]; !ok || route == "" {
			return fmt.Errorf("navigation: role %q has no landing route", role)
		}
	}
	return nil
}

// LandingRoute returns the canonical route for role, or LoginRoute when the
// role is not recognized.
func LandingRoute(role domain.Role) string {
	if route, ok := landingRoutes[role]; ok {
		return route
	}
	return LoginRoute
}

// Group names a guarded route subtree.
type Group string

const (
	GroupAdmin        Group = "admin"
	GroupSalesman     Group = "salesman"
	GroupCallOperator Group = "call_operator"
	GroupTechnician   Group = "technician"
)

var groupRoles = map[Group]domain.RoleSet{
	GroupAdmin:        domain.NewRoleSet(domain.RoleTeamLead, domain.RoleSuperAdmin),
	GroupSalesman:     domain.NewRoleSet(domain.RoleSalesman),
	GroupCallOperator: domain.NewRoleSet(domain.RoleCallOperator),
	GroupTechnician:   domain.NewRoleSet(domain.RoleTechnician),
}

// RequiredRoles returns the role set guarding group.
func RequiredRoles(group Group) (domain.RoleSet, bool) {
	roles, ok := groupRoles[group]
	return roles, ok
}
