package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewLogoutCmd creates the logout command
func NewLogoutCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Log out and remove the stored credential",
		RunE: func(cmd *cobra.Command, args []string) error {
			app.Session.Logout()
			fmt.Println("✓ Logged out")
			return nil
		},
	}
}
