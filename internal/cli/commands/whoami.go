package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/savora-app/savora/internal/cli/guard"
)

// NewWhoamiCmd creates the whoami command
func NewWhoamiCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the currently logged-in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := guard.RequireSession(app.Session); err != nil {
				return err
			}

			user := app.Session.Current().User
			fmt.Printf("Name:     %s\n", user.Name)
			fmt.Printf("Email:    %s\n", user.Email)
			if user.Bio != "" {
				fmt.Printf("Bio:      %s\n", user.Bio)
			}
			if user.Location != "" {
				fmt.Printf("Location: %s\n", user.Location)
			}
			if user.AvatarURL != "" {
				fmt.Printf("Avatar:   %s\n", user.AvatarURL)
			}
			return nil
		},
	}
}
