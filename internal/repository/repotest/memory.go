// Package repotest provides in-memory repositories for tests.
package repotest

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/fieldops/internal/domain"
	"github.com/spec-kit/fieldops/internal/repository"
)

// Identities is an in-memory repository.IdentityRepository.
type Identities struct {
	mu    sync.Mutex
	Items []*domain.Identity
}

func (m *Identities) Create(_ context.Context, identity *domain.Identity) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	identity.ID = uuid.NewString()
	identity.CreatedAt = time.Now()
	identity.UpdatedAt = identity.CreatedAt
	copied := *identity
	m.Items = append(m.Items, &copied)
	return nil
}

func (m *Identities) Update(_ context.Context, identity *domain.Identity) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, existing := range m.Items {
		if existing.ID == identity.ID {
			copied := *identity
			m.Items[i] = &copied
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (m *Identities) GetByID(_ context.Context, id string) (*domain.Identity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.Items {
		if existing.ID == id {
			copied := *existing
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (m *Identities) GetByEmail(_ context.Context, email string) (*domain.Identity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.Items {
		if strings.EqualFold(existing.Email, email) {
			copied := *existing
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (m *Identities) List(_ context.Context, filter repository.IdentityFilter) ([]domain.Identity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Identity
	for _, existing := range m.Items {
		if filter.Role != nil && existing.Role != *filter.Role {
			continue
		}
		if filter.Active != nil && existing.IsActive != *filter.Active {
			continue
		}
		out = append(out, *existing)
	}
	return out, nil
}

// Seed stores copies of items as they are.
func (m *Identities) Seed(items ...domain.Identity) {
	for i := range items {
		copied := items[i]
		m.Items = append(m.Items, &copied)
	}
}

// Leads is an in-memory repository.LeadRepository. ListErr, when set, fails List.
type Leads struct {
	mu      sync.Mutex
	Items   []domain.Lead
	Lists   int
	ListErr error
}

func (m *Leads) Create(_ context.Context, lead *domain.Lead) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	lead.ID = uuid.NewString()
	m.Items = append(m.Items, *lead)
	return nil
}

func (m *Leads) Update(_ context.Context, lead *domain.Lead) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.Items {
		if m.Items[i].ID == lead.ID {
			m.Items[i] = *lead
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (m *Leads) GetByID(_ context.Context, id string) (*domain.Lead, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.Items {
		if m.Items[i].ID == id {
			copied := m.Items[i]
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (m *Leads) List(_ context.Context, filter repository.LeadFilter) ([]domain.Lead, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Lists++
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	var out []domain.Lead
	for _, lead := range m.Items {
		if filter.CreatedBy != nil && lead.CreatedBy != *filter.CreatedBy {
			continue
		}
		out = append(out, lead)
	}
	return out, nil
}

// Customers is an in-memory repository.CustomerRepository.
type Customers struct {
	mu    sync.Mutex
	Items []domain.Customer
}

func (m *Customers) Create(_ context.Context, customer *domain.Customer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	customer.ID = uuid.NewString()
	m.Items = append(m.Items, *customer)
	return nil
}

func (m *Customers) GetByID(_ context.Context, id string) (*domain.Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.Items {
		if m.Items[i].ID == id {
			copied := m.Items[i]
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (m *Customers) GetByLeadID(_ context.Context, leadID string) (*domain.Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.Items {
		if m.Items[i].LeadID != nil && *m.Items[i].LeadID == leadID {
			copied := m.Items[i]
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (m *Customers) List(_ context.Context, filter repository.CustomerFilter) ([]domain.Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Customer
	for _, customer := range m.Items {
		if filter.TechnicianID != nil && (customer.TechnicianID == nil || *customer.TechnicianID != *filter.TechnicianID) {
			continue
		}
		out = append(out, customer)
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if filter.Limit > 0 && filter.Limit < len(out) {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (m *Customers) AssignTechnician(_ context.Context, customerID string, technicianID *string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.Items {
		if m.Items[i].ID == customerID {
			m.Items[i].TechnicianID = technicianID
			return nil
		}
	}
	return pgx.ErrNoRows
}

// RevokedTokens is an in-memory repository.RevokedTokenRepository.
type RevokedTokens struct {
	mu      sync.Mutex
	revoked map[string]time.Time
}

func (r *RevokedTokens) Revoke(_ context.Context, tokenID string, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.revoked == nil {
		r.revoked = make(map[string]time.Time)
	}
	r.revoked[tokenID] = expiresAt
	return nil
}

func (r *RevokedTokens) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.revoked[tokenID]
	return ok, nil
}

var (
	_ repository.IdentityRepository     = (*Identities)(nil)
	_ repository.LeadRepository         = (*Leads)(nil)
	_ repository.CustomerRepository     = (*Customers)(nil)
	_ repository.RevokedTokenRepository = (*RevokedTokens)(nil)
)
