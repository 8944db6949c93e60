package navigation

import (
	"go.uber.org/zap"

	"github.com/spec-kit/fieldops/internal/domain"
)

// Action is the outcome of a guard evaluation.
type Action string

const (
	ActionLoading  Action = "loading"
	ActionRender   Action = "render"
	ActionRedirect Action = "redirect"
)

// Decision tells the caller whether to render the guarded subtree or where to go instead.
type Decision struct {
	Action  Action `json:"action"`
	Route   string `json:"location,omitempty"`
	Replace bool   `json:"replace,omitempty"`
}

func redirect(route string) Decision {
	return Decision{Action: ActionRedirect, Route: route, Replace: true}
}

// Evaluate decides what to do with a guarded subtree for the given session.
// It never redirects while the session is still loading.
func Evaluate(session domain.Session, required domain.RoleSet) Decision {
	if session.IsLoading {
		return Decision{Action: ActionLoading}
	}
	if !session.IsAuthenticated || session.Identity == nil {
		return redirect(LoginRoute)
	}
	role := session.Identity.Role
	if required.Contains(role) {
		return Decision{Action: ActionRender}
	}
	return redirect(LandingRoute(role))
}

// Guard gates a route subtree behind authentication and role membership.
type Guard struct {
	required domain.RoleSet
	logger   *zap.Logger
}

// NewGuard builds a guard requiring one of roles.
func NewGuard(logger *zap.Logger, roles ...domain.Role) *Guard {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Guard{required: domain.NewRoleSet(roles...), logger: logger}
}

// ForGroup builds the guard registered for group.
func ForGroup(logger *zap.Logger, group Group) (*Guard, bool) {
	roles, ok := RequiredRoles(group)
	if !ok {
		return nil, false
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Guard{required: roles, logger: logger}, true
}

// Evaluate runs the decision for session without side effects.
func (g *Guard) Evaluate(session domain.Session) Decision {
	return Evaluate(session, g.required)
}

// Enforce applies the decision: redirects replace the current navigator entry,
// render decisions invoke render, loading does nothing.
func (g *Guard) Enforce(nav Navigator, session domain.Session, render func()) Decision {
	decision := g.Evaluate(session)
	switch decision.Action {
	case ActionRedirect:
		g.logger.Debug("guard redirect",
			zap.String("role", string(session.Role())),
			zap.String("route", decision.Route))
		nav.Replace(decision.Route)
	case ActionRender:
		if render != nil {
			render()
		}
	}
	return decision
}
