package domain

import "time"

// Token represents issued access token metadata.
type Token struct {
	ID         string
	IdentityID string
	Role       Role
	ExpiresAt  time.Time
	IssuedAt   time.Time
}
