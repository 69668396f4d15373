package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/savora-app/savora/internal/cli/userconfig"
)

// NewConfigCmd creates the config command group
func NewConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage CLI configuration",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "set-api-url <url>",
		Short: "Set the API base URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := userconfig.SetAPIURL(args[0]); err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}
			fmt.Printf("✓ API URL set to %s\n", args[0])
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			url, err := userconfig.ResolveAPIURL()
			if err != nil {
				return err
			}
			fmt.Printf("API URL: %s\n", url)
			return nil
		},
	})

	return cmd
}
