package service

import (
	"context"
	"sync"

	"github.com/spec-kit/fieldops/internal/domain"
	"github.com/spec-kit/fieldops/internal/events"
)

// recorder collects published events.
type recorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recorder) Publish(_ context.Context, event events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *recorder) Subscribe(events.EventType, events.EventHandler) {}

func (r *recorder) types() []events.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]events.EventType, 0, len(r.events))
	for _, event := range r.events {
		out = append(out, event.Type)
	}
	return out
}

func strPtr(s string) *string { return &s }

var (
	superAdmin   = &domain.Identity{ID: "root", Name: "Root", Role: domain.RoleSuperAdmin, IsActive: true}
	teamLead     = &domain.Identity{ID: "tl", Name: "Tia", Role: domain.RoleTeamLead, IsActive: true}
	salesman     = &domain.Identity{ID: "sam", Name: "Sam", Role: domain.RoleSalesman, IsActive: true}
	callOperator = &domain.Identity{ID: "cora", Name: "Cora", Role: domain.RoleCallOperator, IsActive: true}
	technician   = &domain.Identity{ID: "tech", Name: "Ted", Role: domain.RoleTechnician, IsActive: true}
)
