package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/spec-kit/fieldops/internal/navigation"
)

func newLoginCommand(state *rootState) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and remember the session on this device",
		Long: `Sign in with email and password. The password can also be passed
through the FIELDCTL_PASSWORD environment variable.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if password == "" {
				password = os.Getenv("FIELDCTL_PASSWORD")
			}
			if email == "" || password == "" {
				return errors.New("email and password are required")
			}
			app := state.app
			current, err := app.provider.Login(cmd.Context(), email, password)
			if err != nil {
				return fmt.Errorf("login failed: %w", err)
			}
			app.nav.Replace(navigation.LandingRoute(current.Role()))
			fmt.Fprintf(cmd.OutOrStdout(), "signed in as %s (%s)\n", current.Identity.Name, current.Role())
			fmt.Fprintf(cmd.OutOrStdout(), "home: %s\n", app.Route())
			return nil
		},
	}
	cmd.Flags().StringVarP(&email, "email", "e", "", "account email")
	cmd.Flags().StringVarP(&password, "password", "p", "", "account password")
	return cmd
}

func newLogoutCommand(state *rootState) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the session on this device",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app := state.app
			if _, err := app.Session(cmd.Context()); err != nil {
				return err
			}
			app.provider.Logout(cmd.Context())
			app.nav.Replace(navigation.LoginRoute)
			fmt.Fprintln(cmd.OutOrStdout(), "signed out")
			return nil
		},
	}
}

func newWhoamiCommand(state *rootState) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the current session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			current, err := state.app.Session(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if !current.IsAuthenticated {
				fmt.Fprintln(out, "not signed in")
				return nil
			}
			fmt.Fprintf(out, "%s <%s>\nrole: %s\nhome: %s\n",
				current.Identity.Name, current.Identity.Email, current.Role(), navigation.LandingRoute(current.Role()))
			return nil
		},
	}
}
