package events

import (
	"time"

	"github.com/spec-kit/fieldops/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventLeadCreated       EventType = "lead_created"
	EventLeadStatusChanged EventType = "lead_status_changed"
	EventLeadConverted     EventType = "lead_converted"
	EventIdentityCreated   EventType = "identity_created"
)

// Actor identifies who caused an event.
type Actor struct {
	IdentityID string      `json:"identity_id"`
	Role       domain.Role `json:"role"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	SubjectID string      `json:"subject_id"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// LeadCreatedPayload payload.
type LeadCreatedPayload struct {
	Name      string `json:"name"`
	CreatedBy string `json:"created_by"`
}

// LeadStatusChangedPayload payload.
type LeadStatusChangedPayload struct {
	OldStatus domain.LeadStatus `json:"old_status"`
	NewStatus domain.LeadStatus `json:"new_status"`
	CreatedBy string            `json:"created_by"`
}

// LeadConvertedPayload payload.
type LeadConvertedPayload struct {
	CustomerID string `json:"customer_id"`
	CreatedBy  string `json:"created_by"`
}

// IdentityCreatedPayload payload.
type IdentityCreatedPayload struct {
	Email string      `json:"email"`
	Role  domain.Role `json:"role"`
}
