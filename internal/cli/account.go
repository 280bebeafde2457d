package cli

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"
)

func newSignupCmd() *cobra.Command {
	var email, pass, repeat string

	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account and sign in",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("repeat") {
				repeat = pass
			}
			if err := ensureClient(cmd.Context()); err != nil {
				return err
			}

			req := map[string]string{
				"email":           email,
				"password":        pass,
				"password_repeat": repeat,
			}
			var result SignupResult

			if err := client.Post(cmd.Context(), "/api/v1/accounts", req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Email address (required)")
	cmd.Flags().StringVar(&pass, "pass", "", "Password")
	cmd.Flags().StringVar(&repeat, "repeat", "", "Password confirmation (defaults to --pass)")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}

func newLoginCmd() *cobra.Command {
	var email, pass string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in to an existing account",
		RunE: func(cmd *cobra.Command, args []string) error {
			if email == "" || pass == "" {
				return fmt.Errorf("--email and --pass are required")
			}
			if err := ensureClient(cmd.Context()); err != nil {
				return err
			}

			req := map[string]string{
				"email":    email,
				"password": pass,
			}
			var result LoginResult

			if err := client.Post(cmd.Context(), "/api/v1/session", req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Email address (required)")
	cmd.Flags().StringVar(&pass, "pass", "", "Password (required)")

	return cmd
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := client.Delete(cmd.Context(), "/api/v1/session"); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.PrintMessage("Logged out")
			return nil
		},
	}
}

func newMeCmd() *cobra.Command {
	var location string

	cmd := &cobra.Command{
		Use:   "me",
		Short: "Show the signed-in account and where the gate sends this client",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result SessionResult

			path := "/api/v1/session?location=" + url.QueryEscape(location)
			if err := client.Get(cmd.Context(), path, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&location, "location", "/", "Location to report to the gate")

	return cmd
}
