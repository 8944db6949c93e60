package domain

// Session is the transient authentication state seen by the screen tree.
type Session struct {
	Identity        *Identity
	IsAuthenticated bool
	IsLoading       bool
}

// Role returns the session role or an empty role when no identity is present.
func (s Session) Role() Role {
	if s.Identity == nil {
		return ""
	}
	return s.Identity.Role
}
