package cli

import (
	"net/url"

	"github.com/spf13/cobra"
)

func newProfileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Profile commands",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "get [id]",
		Short: "Show a profile (defaults to your own)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := "me"
			if len(args) == 1 {
				id = args[0]
			}

			var result Profile
			if err := client.Get(cmd.Context(), "/api/v1/profiles/"+url.PathEscape(id), &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	})

	return cmd
}
