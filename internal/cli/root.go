package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/spec-kit/fieldops/internal/client"
	"github.com/spec-kit/fieldops/internal/config"
	"github.com/spec-kit/fieldops/internal/observability"
	"github.com/spec-kit/fieldops/internal/settings"
)

// AppFactory builds the App for one invocation.
type AppFactory func(cfg *config.ClientConfig, out io.Writer) (*App, error)

// DefaultAppFactory talks to the configured API and keeps state in the
// configured storage file.
func DefaultAppFactory(cfg *config.ClientConfig, out io.Writer) (*App, error) {
	logger, err := observability.NewConsoleLogger(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	api := client.New(cfg.APIBaseURL, cfg.RequestTimeout())
	storage := settings.NewFileStorage(cfg.StoragePath)
	return NewApp(api, storage, logger, out), nil
}

type rootState struct {
	v       *viper.Viper
	factory AppFactory
	app     *App
}

// Run executes fieldctl with args and releases the App afterwards, also when
// the command fails.
func Run(ctx context.Context, factory AppFactory, args []string, out, errOut io.Writer) error {
	if factory == nil {
		factory = DefaultAppFactory
	}
	state := &rootState{v: viper.New(), factory: factory}
	defer state.close()

	root := newRootCommand(state)
	root.SetArgs(args)
	root.SetOut(out)
	root.SetErr(errOut)
	return root.ExecuteContext(ctx)
}

func (s *rootState) close() {
	if s.app == nil {
		return
	}
	s.app.Close()
	_ = s.app.logger.Sync()
}

func newRootCommand(state *rootState) *cobra.Command {
	root := &cobra.Command{
		Use:   "fieldctl",
		Short: "Terminal client for fieldops",
		Long: `fieldctl signs field staff in and shows the screens of their role:
customers and leads for sales staff, installations for technicians and
identity administration for team leads.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadClient(state.v, state.v.GetString("config"))
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			app, err := state.factory(cfg, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			state.app = app
			return nil
		},
	}

	root.PersistentFlags().StringP("config", "c", "", "config file (default is $XDG_CONFIG_HOME/fieldctl/config.yaml)")
	root.PersistentFlags().String("api-base-url", "", "fieldops API base URL")
	_ = state.v.BindPFlag("config", root.PersistentFlags().Lookup("config"))
	_ = state.v.BindPFlag("api_base_url", root.PersistentFlags().Lookup("api-base-url"))

	root.AddCommand(
		newLoginCommand(state),
		newLogoutCommand(state),
		newWhoamiCommand(state),
		newHomeCommand(state),
		newCustomersCommand(state),
		newLeadsCommand(state),
		newAdminCommand(state),
		newSettingsCommand(state),
	)
	return root
}
