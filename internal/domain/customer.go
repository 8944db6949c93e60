package domain

import "time"

// Customer is a converted lead. LeadID is a lookup reference, not ownership.
type Customer struct {
	ID           string
	LeadID       *string
	Name         string
	Phone        string
	Email        string
	Address      string
	SystemSizeKW float64
	TechnicianID *string
	InstalledAt  *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
