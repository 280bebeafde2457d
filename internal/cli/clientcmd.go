package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newClientCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "client",
		Short: "Client token commands",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "new",
		Short: "Register a new client and save its token",
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := registerClient(cmd.Context())
			if err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	})

	return cmd
}

func registerClient(ctx context.Context) (ClientResult, error) {
	var result ClientResult
	if err := client.Post(ctx, "/api/v1/clients", nil, &result); err != nil {
		return result, err
	}

	if err := cfg.SaveToken(result.ClientID); err != nil {
		return result, fmt.Errorf("failed to save token: %w", err)
	}
	client.SetToken(result.ClientID)
	return result, nil
}

// ensureClient registers a client when no token is configured
func ensureClient(ctx context.Context) error {
	if client.Token() != "" {
		return nil
	}
	result, err := registerClient(ctx)
	if err != nil {
		return err
	}
	if cfg.Verbose {
		fmt.Fprintf(os.Stderr, "Registered client %s\n", result.ClientID)
	}
	return nil
}
