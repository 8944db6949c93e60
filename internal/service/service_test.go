package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spec-kit/fieldops/internal/auth"
	"github.com/spec-kit/fieldops/internal/config"
	"github.com/spec-kit/fieldops/internal/domain"
	"github.com/spec-kit/fieldops/internal/events"
	"github.com/spec-kit/fieldops/internal/repository/repotest"
	"github.com/spec-kit/fieldops/internal/settings"
	apperrors "github.com/spec-kit/fieldops/pkg/util/errorutil"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func errCode(err error) string {
	if err == nil {
		return ""
	}
	return apperrors.ToDomainError(err).Code
}

func testConfig() config.Config {
	return config.Config{Auth: config.AuthConfig{JWTSecret: "test-secret", AccessTokenTTLMinutes: 5, BcryptCost: 4}}
}

func newRegistry(t *testing.T, logger *zap.Logger) *settings.Registry {
	t.Helper()
	storages := map[string]*settings.MemoryStorage{}
	registry := settings.NewRegistry(func(owner string) settings.Storage {
		if _, ok := storages[owner]; !ok {
			storages[owner] = settings.NewMemoryStorage()
		}
		return storages[owner]
	}, logger)
	t.Cleanup(registry.Close)
	return registry
}

func TestAuthServiceLogin(t *testing.T) {
	ctx := context.Background()
	identities := &repotest.Identities{}
	svc := NewAuthService(testConfig(), AuthDependencies{IdentityRepo: identities})
	require.NoError(t, svc.BootstrapSuperAdmin(ctx, "root@example.com", "s3cret-pass"))
	require.NoError(t, svc.BootstrapSuperAdmin(ctx, "root@example.com", "s3cret-pass"))
	require.Len(t, identities.Items, 1)

	identity, token, meta, err := svc.Login(ctx, "root@example.com", "s3cret-pass")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleSuperAdmin, identity.Role)
	assert.NotEmpty(t, token)
	assert.Equal(t, identity.ID, meta.IdentityID)

	claims, err := svc.TokenManager().ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, identity.ID, claims.IdentityID())

	_, _, _, err = svc.Login(ctx, "root@example.com", "wrong")
	assert.Equal(t, "UNAUTHORIZED", errCode(err))
	_, _, _, err = svc.Login(ctx, "nobody@example.com", "s3cret-pass")
	assert.Equal(t, "UNAUTHORIZED", errCode(err))
}

func TestAuthServiceLoginUpgradesOutdatedHash(t *testing.T) {
	ctx := context.Background()
	identities := &repotest.Identities{}
	cfg := testConfig()
	cfg.Auth.BcryptCost = 5
	old, err := auth.HashPassword("s3cret-pass", 4)
	require.NoError(t, err)
	identities.Seed(domain.Identity{ID: "sam", Email: "sam@example.com", PasswordHash: old, Role: domain.RoleSalesman, IsActive: true})

	svc := NewAuthService(cfg, AuthDependencies{IdentityRepo: identities})
	_, _, _, err = svc.Login(ctx, "sam@example.com", "s3cret-pass")
	require.NoError(t, err)

	stored, err := identities.GetByID(ctx, "sam")
	require.NoError(t, err)
	assert.False(t, auth.NeedsRehash(stored.PasswordHash, 5))
	assert.NoError(t, auth.ComparePassword(stored.PasswordHash, "s3cret-pass"))
}

func TestAuthServiceRejectsInactiveIdentity(t *testing.T) {
	ctx := context.Background()
	identities := &repotest.Identities{}
	svc := NewAuthService(testConfig(), AuthDependencies{IdentityRepo: identities})
	require.NoError(t, svc.BootstrapSuperAdmin(ctx, "root@example.com", "s3cret-pass"))
	identities.Items[0].IsActive = false

	_, _, _, err := svc.Login(ctx, "root@example.com", "s3cret-pass")
	assert.Equal(t, "UNAUTHORIZED", errCode(err))
}

func TestIdentityServiceCreate(t *testing.T) {
	ctx := context.Background()
	identities := &repotest.Identities{}
	rec := &recorder{}
	svc := NewIdentityService(testConfig(), identities, rec, zap.NewNop())

	input := IdentityCreateInput{Name: "Ted", Email: "Ted@Example.com", Password: "password1", Role: domain.RoleTechnician}
	_, err := svc.Create(ctx, teamLead, input)
	assert.Equal(t, "FORBIDDEN", errCode(err))

	created, err := svc.Create(ctx, superAdmin, input)
	require.NoError(t, err)
	assert.Equal(t, "ted@example.com", created.Email)
	assert.True(t, created.IsActive)
	assert.NotEqual(t, "password1", created.PasswordHash)
	assert.Equal(t, []events.EventType{events.EventIdentityCreated}, rec.types())

	_, err = svc.Create(ctx, superAdmin, input)
	assert.Equal(t, "CONFLICT", errCode(err))

	_, err = svc.Create(ctx, superAdmin, IdentityCreateInput{Name: "X", Email: "x@example.com", Password: "password1", Role: "janitor"})
	assert.Equal(t, "VALIDATION_FAILED", errCode(err))
}

func TestIdentityServiceSetActive(t *testing.T) {
	ctx := context.Background()
	identities := &repotest.Identities{}
	identities.Seed(*superAdmin, *teamLead, *salesman)
	svc := NewIdentityService(testConfig(), identities, nil, nil)

	updated, err := svc.SetActive(ctx, teamLead, salesman.ID, false)
	require.NoError(t, err)
	assert.False(t, updated.IsActive)

	_, err = svc.SetActive(ctx, teamLead, superAdmin.ID, false)
	assert.Equal(t, "FORBIDDEN", errCode(err))

	_, err = svc.SetActive(ctx, superAdmin, superAdmin.ID, false)
	assert.Equal(t, "CONFLICT", errCode(err))

	_, err = svc.SetActive(ctx, superAdmin, "missing", true)
	assert.Equal(t, "NOT_FOUND", errCode(err))

	_, err = svc.SetActive(ctx, salesman, teamLead.ID, false)
	assert.Equal(t, "FORBIDDEN", errCode(err))

	active := false
	listed, err := svc.List(ctx, superAdmin, IdentityListFilters{Active: &active})
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, salesman.ID, listed[0].ID)
}

func TestLeadServiceScopesListToOwner(t *testing.T) {
	ctx := context.Background()
	leads := &repotest.Leads{}
	svc := NewLeadService(leads, &repotest.Customers{}, nil, nil)

	own, err := svc.Create(ctx, salesman, LeadCreateInput{Name: "Ada", Phone: "555-0100"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, callOperator, LeadCreateInput{Name: "Bob", Email: "bob@example.com"})
	require.NoError(t, err)

	mine, err := svc.List(ctx, salesman, LeadListFilters{})
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, own.ID, mine[0].ID)

	all, err := svc.List(ctx, teamLead, LeadListFilters{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, err = svc.List(ctx, technician, LeadListFilters{})
	assert.Equal(t, "FORBIDDEN", errCode(err))

	_, err = svc.Get(ctx, callOperator, own.ID)
	assert.Equal(t, "NOT_FOUND", errCode(err))
}

func TestLeadServiceCreateValidation(t *testing.T) {
	svc := NewLeadService(&repotest.Leads{}, &repotest.Customers{}, nil, nil)

	_, err := svc.Create(context.Background(), salesman, LeadCreateInput{Name: "  "})
	assert.Equal(t, "VALIDATION_FAILED", errCode(err))
	_, err = svc.Create(context.Background(), salesman, LeadCreateInput{Name: "Ada"})
	assert.Equal(t, "VALIDATION_FAILED", errCode(err))
	_, err = svc.Create(context.Background(), technician, LeadCreateInput{Name: "Ada", Phone: "1"})
	assert.Equal(t, "FORBIDDEN", errCode(err))
	_, err = svc.Create(context.Background(), nil, LeadCreateInput{Name: "Ada", Phone: "1"})
	assert.Equal(t, "UNAUTHORIZED", errCode(err))
}

func TestLeadServiceStatusLifecycle(t *testing.T) {
	ctx := context.Background()
	rec := &recorder{}
	svc := NewLeadService(&repotest.Leads{}, &repotest.Customers{}, rec, nil)

	lead, err := svc.Create(ctx, salesman, LeadCreateInput{Name: "Ada", Phone: "555-0100"})
	require.NoError(t, err)
	assert.Equal(t, domain.LeadStatusNew, lead.Status)

	updated, err := svc.UpdateStatus(ctx, salesman, lead.ID, domain.LeadStatusQualified)
	require.NoError(t, err)
	assert.Equal(t, domain.LeadStatusQualified, updated.Status)

	_, err = svc.UpdateStatus(ctx, salesman, lead.ID, domain.LeadStatusConverted)
	assert.Equal(t, "VALIDATION_FAILED", errCode(err))
	_, err = svc.UpdateStatus(ctx, salesman, lead.ID, "archived")
	assert.Equal(t, "VALIDATION_FAILED", errCode(err))
	_, err = svc.UpdateStatus(ctx, callOperator, lead.ID, domain.LeadStatusLost)
	assert.Equal(t, "NOT_FOUND", errCode(err))

	assert.Equal(t, []events.EventType{events.EventLeadCreated, events.EventLeadStatusChanged}, rec.types())
}

func TestLeadServiceConvert(t *testing.T) {
	ctx := context.Background()
	leads := &repotest.Leads{}
	customers := &repotest.Customers{}
	rec := &recorder{}
	svc := NewLeadService(leads, customers, rec, nil)

	lead, err := svc.Create(ctx, salesman, LeadCreateInput{Name: "Ada", Phone: "555-0100", Address: "1 Sun St"})
	require.NoError(t, err)

	_, err = svc.Convert(ctx, salesman, lead.ID, ConvertLeadInput{SystemSizeKW: 6.4, TechnicianID: strPtr(technician.ID)})
	assert.Equal(t, "FORBIDDEN", errCode(err))

	customer, err := svc.Convert(ctx, salesman, lead.ID, ConvertLeadInput{SystemSizeKW: 6.4})
	require.NoError(t, err)
	require.NotNil(t, customer.LeadID)
	assert.Equal(t, lead.ID, *customer.LeadID)
	assert.Equal(t, "1 Sun St", customer.Address)
	assert.InDelta(t, 6.4, customer.SystemSizeKW, 0.001)

	stored, err := leads.GetByID(ctx, lead.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.LeadStatusConverted, stored.Status)

	_, err = svc.Convert(ctx, salesman, lead.ID, ConvertLeadInput{})
	assert.Equal(t, "CONFLICT", errCode(err))
	_, err = svc.UpdateStatus(ctx, salesman, lead.ID, domain.LeadStatusLost)
	assert.Equal(t, "CONFLICT", errCode(err))

	assert.Contains(t, rec.types(), events.EventLeadConverted)
}

func TestLeadServiceConvertRejectsLostLead(t *testing.T) {
	ctx := context.Background()
	leads := &repotest.Leads{}
	customers := &repotest.Customers{}
	rec := &recorder{}
	svc := NewLeadService(leads, customers, rec, nil)

	lead, err := svc.Create(ctx, salesman, LeadCreateInput{Name: "Bob", Email: "bob@example.com"})
	require.NoError(t, err)
	_, err = svc.UpdateStatus(ctx, salesman, lead.ID, domain.LeadStatusLost)
	require.NoError(t, err)

	_, err = svc.Convert(ctx, salesman, lead.ID, ConvertLeadInput{SystemSizeKW: 5})
	assert.Equal(t, "CONFLICT", errCode(err))
	assert.Empty(t, customers.Items)
	assert.NotContains(t, rec.types(), events.EventLeadConverted)

	stored, err := leads.GetByID(ctx, lead.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.LeadStatusLost, stored.Status)
}

func TestLeadServiceConvertRepairsHalfConvertedLead(t *testing.T) {
	ctx := context.Background()
	leads := &repotest.Leads{Items: []domain.Lead{{ID: "l1", Name: "Ada", CreatedBy: salesman.ID, Status: domain.LeadStatusQualified}}}
	customers := &repotest.Customers{Items: []domain.Customer{{ID: "c1", LeadID: strPtr("l1"), Name: "Ada"}}}
	svc := NewLeadService(leads, customers, &recorder{}, nil)

	_, err := svc.Convert(ctx, salesman, "l1", ConvertLeadInput{})
	assert.Equal(t, "CONFLICT", errCode(err))

	stored, err := leads.GetByID(ctx, "l1")
	require.NoError(t, err)
	assert.Equal(t, domain.LeadStatusConverted, stored.Status)
	assert.Len(t, customers.Items, 1)
}

func TestWorkServiceListCustomersScopesByLeadOwner(t *testing.T) {
	ctx := context.Background()
	leads := &repotest.Leads{Items: []domain.Lead{
		{ID: "l1", CreatedBy: salesman.ID},
		{ID: "l2", CreatedBy: callOperator.ID},
		{ID: "l3", CreatedBy: salesman.ID},
	}}
	customers := &repotest.Customers{Items: []domain.Customer{
		{ID: "c1", LeadID: strPtr("l1")},
		{ID: "c2", LeadID: strPtr("l2")},
		{ID: "c3"},
		{ID: "c4", LeadID: strPtr("gone")},
		{ID: "c5", LeadID: strPtr("l3")},
	}}
	svc := NewWorkService(leads, customers, &repotest.Identities{})

	ids := func(items []domain.Customer) []string {
		out := make([]string, 0, len(items))
		for _, item := range items {
			out = append(out, item.ID)
		}
		return out
	}

	mine, err := svc.ListCustomers(ctx, salesman, CustomerListFilters{})
	require.NoError(t, err)
	assert.Equal(t, []string{"c1", "c5"}, ids(mine))

	theirs, err := svc.ListCustomers(ctx, callOperator, CustomerListFilters{})
	require.NoError(t, err)
	assert.Equal(t, []string{"c2"}, ids(theirs))

	for _, viewer := range []*domain.Identity{teamLead, superAdmin, technician} {
		all, err := svc.ListCustomers(ctx, viewer, CustomerListFilters{})
		require.NoError(t, err)
		assert.Len(t, all, 5, viewer.Role)
	}

	_, err = svc.ListCustomers(ctx, nil, CustomerListFilters{})
	assert.Equal(t, "UNAUTHORIZED", errCode(err))
}

func TestWorkServiceListCustomersPagesAfterOwnershipFilter(t *testing.T) {
	ctx := context.Background()
	leads := &repotest.Leads{Items: []domain.Lead{
		{ID: "l1", CreatedBy: callOperator.ID},
		{ID: "l2", CreatedBy: callOperator.ID},
		{ID: "l3", CreatedBy: salesman.ID},
		{ID: "l4", CreatedBy: salesman.ID},
		{ID: "l5", CreatedBy: salesman.ID},
	}}
	customers := &repotest.Customers{Items: []domain.Customer{
		{ID: "c1", LeadID: strPtr("l1")},
		{ID: "c2", LeadID: strPtr("l2")},
		{ID: "c3", LeadID: strPtr("l3")},
		{ID: "c4", LeadID: strPtr("l4")},
		{ID: "c5", LeadID: strPtr("l5")},
	}}
	svc := NewWorkService(leads, customers, &repotest.Identities{})

	ids := func(items []domain.Customer) []string {
		out := make([]string, 0, len(items))
		for _, item := range items {
			out = append(out, item.ID)
		}
		return out
	}

	first, err := svc.ListCustomers(ctx, salesman, CustomerListFilters{Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"c3", "c4"}, ids(first))

	second, err := svc.ListCustomers(ctx, salesman, CustomerListFilters{Limit: 2, Offset: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"c5"}, ids(second))

	past, err := svc.ListCustomers(ctx, salesman, CustomerListFilters{Limit: 2, Offset: 4})
	require.NoError(t, err)
	assert.Empty(t, past)

	lead, err := svc.ListCustomers(ctx, teamLead, CustomerListFilters{Limit: 2, Offset: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"c3", "c4"}, ids(lead))
}

func TestWorkServiceListCustomersPropagatesFetchError(t *testing.T) {
	leads := &repotest.Leads{ListErr: assert.AnError}
	svc := NewWorkService(leads, &repotest.Customers{}, &repotest.Identities{})

	_, err := svc.ListCustomers(context.Background(), salesman, CustomerListFilters{})
	assert.Equal(t, "INTERNAL_ERROR", errCode(err))
}

func TestWorkServiceSummary(t *testing.T) {
	leads := &repotest.Leads{Items: []domain.Lead{
		{ID: "l1", CreatedBy: salesman.ID, Status: domain.LeadStatusConverted},
		{ID: "l2", CreatedBy: salesman.ID, Status: domain.LeadStatusNew},
		{ID: "l3", CreatedBy: callOperator.ID, Status: domain.LeadStatusNew},
	}}
	customers := &repotest.Customers{Items: []domain.Customer{{ID: "c1", LeadID: strPtr("l1")}}}
	svc := NewWorkService(leads, customers, &repotest.Identities{})

	summary, err := svc.Summary(context.Background(), salesman)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Leads)
	assert.Equal(t, 1, summary.Customers)
	assert.Equal(t, 1, summary.LeadsByStatus[domain.LeadStatusNew])

	summary, err = svc.Summary(context.Background(), teamLead)
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Leads)
	assert.Equal(t, 2, summary.LeadsByStatus[domain.LeadStatusNew])
}

func TestWorkServiceAssignTechnician(t *testing.T) {
	ctx := context.Background()
	identities := &repotest.Identities{}
	identities.Seed(*technician, *salesman)
	customers := &repotest.Customers{Items: []domain.Customer{{ID: "c1"}}}
	svc := NewWorkService(&repotest.Leads{}, customers, identities)

	assigned, err := svc.AssignTechnician(ctx, teamLead, "c1", strPtr(technician.ID))
	require.NoError(t, err)
	require.NotNil(t, assigned.TechnicianID)
	assert.Equal(t, technician.ID, *assigned.TechnicianID)

	_, err = svc.AssignTechnician(ctx, teamLead, "c1", strPtr(salesman.ID))
	assert.Equal(t, "VALIDATION_FAILED", errCode(err))
	_, err = svc.AssignTechnician(ctx, salesman, "c1", nil)
	assert.Equal(t, "FORBIDDEN", errCode(err))
	_, err = svc.AssignTechnician(ctx, teamLead, "missing", nil)
	assert.Equal(t, "NOT_FOUND", errCode(err))

	cleared, err := svc.AssignTechnician(ctx, teamLead, "c1", nil)
	require.NoError(t, err)
	assert.Nil(t, cleared.TechnicianID)
}

func TestSettingsServiceUpdate(t *testing.T) {
	ctx := context.Background()
	svc := NewSettingsService(newRegistry(t, zap.NewNop()))

	current, err := svc.Get(ctx, salesman)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultNotificationSettings(), current)

	updated, err := svc.Update(ctx, salesman, map[string]bool{domain.FlagSMSAlerts: true, domain.FlagEmailAlerts: false})
	require.NoError(t, err)
	assert.Equal(t, domain.NotificationSettings{PushNotifications: true, EmailAlerts: false, SMSAlerts: true}, updated)

	_, err = svc.Update(ctx, salesman, map[string]bool{"carrierPigeon": true})
	assert.Equal(t, "VALIDATION_FAILED", errCode(err))

	other, err := svc.Get(ctx, callOperator)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultNotificationSettings(), other)

	_, err = svc.Get(ctx, nil)
	assert.Equal(t, "UNAUTHORIZED", errCode(err))
}

func TestNotificationServiceHonorsRecipientSettings(t *testing.T) {
	ctx := context.Background()
	core, logs := observer.New(zap.DebugLevel)
	logger := zap.New(core)
	registry := newRegistry(t, zap.NewNop())
	dispatcher := events.NewInMemoryDispatcher()
	svc := NewNotificationService(dispatcher, registry, logger, config.NotificationConfig{
		EmailFrom: "noreply@example.com",
		SMSSender: "FIELDOPS",
		PushTopic: "fieldops",
	})
	svc.RegisterHandlers()

	store, err := registry.For(ctx, salesman.ID)
	require.NoError(t, err)
	require.NoError(t, store.Replace(ctx, domain.NotificationSettings{SMSAlerts: true}))
	assert.Equal(t, []Channel{ChannelSMS}, svc.Channels(ctx, salesman.ID))
	assert.Equal(t, []Channel{ChannelPush, ChannelEmail}, svc.Channels(ctx, callOperator.ID))

	require.NoError(t, dispatcher.Publish(ctx, events.Event{
		Type:      events.EventLeadConverted,
		SubjectID: "l1",
		Actor:     events.Actor{IdentityID: teamLead.ID, Role: teamLead.Role},
		Payload:   events.LeadConvertedPayload{CustomerID: "c1", CreatedBy: salesman.ID},
	}))

	assert.Equal(t, 1, logs.FilterMessage("sendSMSNotificationStub").Len())
	assert.Zero(t, logs.FilterMessage("sendPushNotificationStub").Len())
	assert.Zero(t, logs.FilterMessage("sendEmailNotificationStub").Len())
}

func TestNotificationServiceSkipsSelfStatusChanges(t *testing.T) {
	ctx := context.Background()
	core, logs := observer.New(zap.DebugLevel)
	dispatcher := events.NewInMemoryDispatcher()
	svc := NewNotificationService(dispatcher, newRegistry(t, zap.NewNop()), zap.New(core), config.NotificationConfig{PushTopic: "fieldops"})
	svc.RegisterHandlers()

	require.NoError(t, dispatcher.Publish(ctx, events.Event{
		Type:    events.EventLeadStatusChanged,
		Actor:   events.Actor{IdentityID: salesman.ID},
		Payload: events.LeadStatusChangedPayload{CreatedBy: salesman.ID},
	}))
	assert.Zero(t, logs.FilterMessage("sendPushNotificationStub").Len())

	require.NoError(t, dispatcher.Publish(ctx, events.Event{
		Type:    events.EventLeadStatusChanged,
		Actor:   events.Actor{IdentityID: teamLead.ID},
		Payload: events.LeadStatusChangedPayload{CreatedBy: salesman.ID},
	}))
	assert.Equal(t, 1, logs.FilterMessage("sendPushNotificationStub").Len())
}

func TestNotificationServiceSkipsSelfConversions(t *testing.T) {
	ctx := context.Background()
	core, logs := observer.New(zap.DebugLevel)
	dispatcher := events.NewInMemoryDispatcher()
	svc := NewNotificationService(dispatcher, newRegistry(t, zap.NewNop()), zap.New(core), config.NotificationConfig{PushTopic: "fieldops"})
	svc.RegisterHandlers()

	require.NoError(t, dispatcher.Publish(ctx, events.Event{
		Type:      events.EventLeadConverted,
		SubjectID: "l1",
		Actor:     events.Actor{IdentityID: salesman.ID, Role: salesman.Role},
		Payload:   events.LeadConvertedPayload{CustomerID: "c1", CreatedBy: salesman.ID},
	}))
	assert.Zero(t, logs.FilterMessage("sendPushNotificationStub").Len())
	assert.Equal(t, 1, logs.FilterMessage("LeadConverted").Len())

	require.NoError(t, dispatcher.Publish(ctx, events.Event{
		Type:      events.EventLeadConverted,
		SubjectID: "l2",
		Actor:     events.Actor{IdentityID: teamLead.ID, Role: teamLead.Role},
		Payload:   events.LeadConvertedPayload{CustomerID: "c2", CreatedBy: salesman.ID},
	}))
	assert.Equal(t, 1, logs.FilterMessage("sendPushNotificationStub").Len())
}

func TestSettingsServiceUnreadableRecordIsNotOverwritten(t *testing.T) {
	ctx := context.Background()
	storage := settings.NewMemoryStorage()
	require.NoError(t, storage.Set(ctx, settings.StorageKey, `{"pushNotifications":false,"emailAlerts":false,"smsAlerts":true}`))
	storage.GetErr = errors.New("redis: i/o timeout")
	registry := settings.NewRegistry(func(string) settings.Storage { return storage }, nil)
	t.Cleanup(registry.Close)
	svc := NewSettingsService(registry)

	_, err := svc.Get(ctx, salesman)
	assert.Equal(t, "DEPENDENCY_UNAVAILABLE", errCode(err))
	_, err = svc.Update(ctx, salesman, map[string]bool{domain.FlagEmailAlerts: true})
	assert.Equal(t, "DEPENDENCY_UNAVAILABLE", errCode(err))
	assert.Equal(t, 1, storage.Writes())

	storage.GetErr = nil
	got, err := svc.Update(ctx, salesman, map[string]bool{domain.FlagEmailAlerts: true})
	require.NoError(t, err)
	assert.Equal(t, domain.NotificationSettings{PushNotifications: false, EmailAlerts: true, SMSAlerts: true}, got)
}
