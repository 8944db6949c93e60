package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/spec-kit/fieldops/internal/domain"
	"github.com/spec-kit/fieldops/internal/navigation"
	"github.com/spec-kit/fieldops/internal/scope"
)

func newHomeCommand(state *rootState) *cobra.Command {
	return &cobra.Command{
		Use:   "home",
		Short: "Open the landing screen of your role",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app := state.app
			guard := navigation.NewGuard(app.logger, domain.AllRoles()...)
			return app.Screen(cmd.Context(), "/", guard, func(ctx context.Context, identity *domain.Identity) error {
				app.nav.Replace(navigation.LandingRoute(identity.Role))
				summary, err := app.api.Summary(ctx, app.provider.Token())
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintln(out, titleStyle.Render(fmt.Sprintf("%s  %s", app.Route(), identity.Name)))
				if identity.Role != domain.RoleTechnician {
					fmt.Fprintf(out, "leads: %d\n", summary.Leads)
				}
				fmt.Fprintf(out, "customers: %d\n", summary.Customers)
				return nil
			})
		},
	}
}

func newCustomersCommand(state *rootState) *cobra.Command {
	return &cobra.Command{
		Use:   "customers",
		Short: "List the customers visible to you",
		Long: `List customers. Salesmen and call operators only see customers
converted from leads they created.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app := state.app
			guard := navigation.NewGuard(app.logger, domain.AllRoles()...)
			return app.Screen(cmd.Context(), "/customers", guard, func(ctx context.Context, identity *domain.Identity) error {
				customers, err := app.visibleCustomers(ctx, identity)
				if err != nil {
					return err
				}
				renderTable(cmd.OutOrStdout(), "Customers", []string{"Name", "Phone", "Address", "kW", "Technician"}, customerRows(customers))
				return nil
			})
		},
	}
}

// visibleCustomers fetches customers and, for restricted roles, their own
// leads concurrently, then keeps the customers descending from those leads.
func (a *App) visibleCustomers(ctx context.Context, identity *domain.Identity) ([]domain.Customer, error) {
	token := a.provider.Token()
	viewer := scope.Viewer(identity)

	var (
		customers []domain.Customer
		leads     []domain.Lead
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		customers, err = a.api.Customers(gctx, token)
		return err
	})
	if viewer != nil {
		g.Go(func() error {
			var err error
			leads, err = a.api.Leads(gctx, token)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return scope.CustomersForIdentity(customers, leads, viewer), nil
}

func newLeadsCommand(state *rootState) *cobra.Command {
	var statuses []string
	cmd := &cobra.Command{
		Use:   "leads",
		Short: "List your leads",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app := state.app
			filter := make([]domain.LeadStatus, 0, len(statuses))
			for _, raw := range statuses {
				status := domain.LeadStatus(strings.TrimSpace(raw))
				if !status.Valid() {
					return fmt.Errorf("unknown lead status %q", raw)
				}
				filter = append(filter, status)
			}
			guard := navigation.NewGuard(app.logger, domain.RoleSalesman, domain.RoleCallOperator, domain.RoleTeamLead, domain.RoleSuperAdmin)
			return app.Screen(cmd.Context(), "/leads", guard, func(ctx context.Context, identity *domain.Identity) error {
				leads, err := app.api.Leads(ctx, app.provider.Token(), filter...)
				if err != nil {
					return err
				}
				leads = scope.LeadsCreatedBy(leads, scope.Viewer(identity))
				renderTable(cmd.OutOrStdout(), "Leads", []string{"Name", "Phone", "Email", "Status", "Created"}, leadRows(leads))
				return nil
			})
		},
	}
	cmd.Flags().StringSliceVarP(&statuses, "status", "s", nil, "only show leads in these statuses")
	return cmd
}

func newAdminCommand(state *rootState) *cobra.Command {
	admin := &cobra.Command{
		Use:   "admin",
		Short: "Administration screens for team leads and super admins",
	}
	admin.AddCommand(&cobra.Command{
		Use:   "identities",
		Short: "List staff identities",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app := state.app
			guard, _ := navigation.ForGroup(app.logger, navigation.GroupAdmin)
			return app.Screen(cmd.Context(), navigation.AdminRoute+"/identities", guard, func(ctx context.Context, _ *domain.Identity) error {
				identities, err := app.api.Identities(ctx, app.provider.Token())
				if err != nil {
					return err
				}
				renderTable(cmd.OutOrStdout(), "Identities", []string{"Name", "Email", "Role", "Active"}, identityRows(identities))
				return nil
			})
		},
	})
	return admin
}
