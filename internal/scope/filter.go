// Package scope derives role-scoped views of shared lead and customer collections.
package scope

import "github.com/spec-kit/fieldops/internal/domain"

// CustomersForIdentity returns the customers whose originating lead was created
// by identity. Customers without a lead reference, or whose lead is missing
// from leads, are dropped. A nil identity returns customers unchanged.
// Inputs are not modified and the relative order of customers is kept.
func CustomersForIdentity(customers []domain.Customer, leads []domain.Lead, identity *domain.Identity) []domain.Customer {
	if identity == nil {
		return customers
	}

	owned := make(map[string]struct{}, len(leads))
	for i := range leads {
		if leads[i].CreatedBy == identity.ID {
			owned[leads[i].ID] = struct{}{}
		}
	}

	result := make([]domain.Customer, 0, len(owned))
	for i := range customers {
		leadID := customers[i].LeadID
		if leadID == nil {
			continue
		}
		if _, ok := owned[*leadID]; ok {
			result = append(result, customers[i])
		}
	}
	return result
}

// LeadsCreatedBy returns the leads created by identity, in input order.
// A nil identity returns leads unchanged.
func LeadsCreatedBy(leads []domain.Lead, identity *domain.Identity) []domain.Lead {
	if identity == nil {
		return leads
	}
	result := make([]domain.Lead, 0)
	for i := range leads {
		if leads[i].CreatedBy == identity.ID {
			result = append(result, leads[i])
		}
	}
	return result
}

// Restricted reports whether role only sees records descending from its own leads.
func Restricted(role domain.Role) bool {
	return role == domain.RoleCallOperator || role == domain.RoleSalesman
}

// Viewer returns the identity to scope by for a caller: restricted roles scope
// by themselves, everyone else gets the unfiltered view.
func Viewer(identity *domain.Identity) *domain.Identity {
	if identity != nil && Restricted(identity.Role) {
		return identity
	}
	return nil
}
