package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spec-kit/fieldops/internal/domain"
	"github.com/spec-kit/fieldops/internal/navigation"
	"github.com/spec-kit/fieldops/internal/settings"
)

func newSettingsCommand(state *rootState) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Notification settings of this device",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show notification settings",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app := state.app
			guard := navigation.NewGuard(app.logger, domain.AllRoles()...)
			return app.Screen(cmd.Context(), "/settings", guard, func(ctx context.Context, _ *domain.Identity) error {
				current := app.settings.Load(ctx)
				renderTable(cmd.OutOrStdout(), "Notifications", []string{"Flag", "Enabled"}, settingsRows(current))
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:       "set <flag> <true|false>",
		Short:     "Change a notification flag",
		Args:      cobra.ExactArgs(2),
		ValidArgs: settings.Flags(),
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := strconv.ParseBool(args[1])
			if err != nil {
				return fmt.Errorf("value must be true or false: %w", err)
			}
			app := state.app
			guard := navigation.NewGuard(app.logger, domain.AllRoles()...)
			return app.Screen(cmd.Context(), "/settings", guard, func(ctx context.Context, _ *domain.Identity) error {
				app.settings.Load(ctx)
				if err := app.settings.Set(ctx, args[0], value); err != nil {
					return err
				}
				if _, err := app.api.UpdateSettings(ctx, app.provider.Token(), map[string]bool{args[0]: value}); err != nil {
					app.logger.Warn("settings sync failed", zap.String("flag", args[0]), zap.Error(err))
				}
				renderTable(cmd.OutOrStdout(), "Notifications", []string{"Flag", "Enabled"}, settingsRows(app.settings.Snapshot()))
				return nil
			})
		},
	})
	return cmd
}
