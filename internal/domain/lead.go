package domain

import "time"

// LeadStatus enumerates lifecycle states for a lead.
type LeadStatus string

const (
	LeadStatusNew       LeadStatus = "new"
	LeadStatusContacted LeadStatus = "contacted"
	LeadStatusQualified LeadStatus = "qualified"
	LeadStatusConverted LeadStatus = "converted"
	LeadStatusLost      LeadStatus = "lost"
)

// Valid reports whether s is a known lead status.
func (s LeadStatus) Valid() bool {
	switch s {
	case LeadStatusNew, LeadStatusContacted, LeadStatusQualified, LeadStatusConverted, LeadStatusLost:
		return true
	}
	return false
}

// Lead is a prospective customer owned by the identity that created it.
type Lead struct {
	ID        string
	Name      string
	Phone     string
	Email     string
	Address   string
	Notes     string
	Status    LeadStatus
	CreatedBy string
	CreatedAt time.Time
	UpdatedAt time.Time
}
