package scope

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	"github.com/spec-kit/fieldops/internal/domain"
)

func ref(s string) *string { return &s }

func fixture() ([]domain.Customer, []domain.Lead) {
	leads := []domain.Lead{
		{ID: "l1", CreatedBy: "op-1"},
		{ID: "l2", CreatedBy: "op-2"},
		{ID: "l3", CreatedBy: "op-1"},
	}
	customers := []domain.Customer{
		{ID: "c1", LeadID: ref("l3")},
		{ID: "c2", LeadID: ref("l2")},
		{ID: "c3"},
		{ID: "c4", LeadID: ref("missing")},
		{ID: "c5", LeadID: ref("l1")},
	}
	return customers, leads
}

func ids(customers []domain.Customer) []string {
	out := make([]string, 0, len(customers))
	for _, c := range customers {
		out = append(out, c.ID)
	}
	return out
}

func TestCustomersForIdentityKeepsOwnLeadsInOrder(t *testing.T) {
	customers, leads := fixture()

	got := CustomersForIdentity(customers, leads, &domain.Identity{ID: "op-1"})

	if diff := cmp.Diff([]string{"c1", "c5"}, ids(got)); diff != "" {
		t.Fatalf("unexpected customers (-want +got):\n%s", diff)
	}
}

func TestCustomersForIdentityDropsMissingAndDanglingLeads(t *testing.T) {
	customers, leads := fixture()

	for _, c := range CustomersForIdentity(customers, leads, &domain.Identity{ID: "op-2"}) {
		assert.NotEqual(t, "c3", c.ID)
		assert.NotEqual(t, "c4", c.ID)
	}
	assert.Empty(t, CustomersForIdentity(customers, leads, &domain.Identity{ID: "nobody"}))
}

func TestCustomersForIdentityNilIdentityPassesThrough(t *testing.T) {
	customers, leads := fixture()

	got := CustomersForIdentity(customers, leads, nil)
	if diff := cmp.Diff(customers, got); diff != "" {
		t.Fatalf("nil identity changed collection (-want +got):\n%s", diff)
	}
}

func TestCustomersForIdentityIsIdempotent(t *testing.T) {
	customers, leads := fixture()
	identity := &domain.Identity{ID: "op-1"}

	once := CustomersForIdentity(customers, leads, identity)
	twice := CustomersForIdentity(once, leads, identity)

	if diff := cmp.Diff(once, twice); diff != "" {
		t.Fatalf("second pass changed result (-once +twice):\n%s", diff)
	}
}

func TestCustomersForIdentityDoesNotMutateInputs(t *testing.T) {
	customers, leads := fixture()
	wantCustomers, wantLeads := fixture()

	CustomersForIdentity(customers, leads, &domain.Identity{ID: "op-1"})

	assert.Empty(t, cmp.Diff(wantCustomers, customers))
	assert.Empty(t, cmp.Diff(wantLeads, leads))
}

func TestLeadsCreatedBy(t *testing.T) {
	_, leads := fixture()

	got := LeadsCreatedBy(leads, &domain.Identity{ID: "op-1"})
	assert.Len(t, got, 2)
	assert.Equal(t, "l1", got[0].ID)
	assert.Equal(t, "l3", got[1].ID)

	assert.Len(t, LeadsCreatedBy(leads, nil), 3)
}

func TestViewer(t *testing.T) {
	operator := &domain.Identity{ID: "op", Role: domain.RoleCallOperator}
	lead := &domain.Identity{ID: "tl", Role: domain.RoleTeamLead}

	assert.Same(t, operator, Viewer(operator))
	assert.Nil(t, Viewer(lead))
	assert.Nil(t, Viewer(nil))
	assert.True(t, Restricted(domain.RoleSalesman))
	assert.False(t, Restricted(domain.RoleTechnician))
}
