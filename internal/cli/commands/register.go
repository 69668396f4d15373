package commands

import (
	"fmt"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/savora-app/savora/internal/cli/client"
)

// NewRegisterCmd creates the register command
func NewRegisterCmd(app *App) *cobra.Command {
	var name, email, password string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a new Savora account",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRegister(app, name, email, password)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Display name")
	cmd.Flags().StringVar(&email, "email", "", "Email address")
	cmd.Flags().StringVar(&password, "password", "", "Password (will prompt if not provided)")

	return cmd
}

func runRegister(app *App, name, email, password string) error {
	if name == "" {
		return fmt.Errorf("name is required (use --name flag)")
	}
	if email == "" {
		return fmt.Errorf("email is required (use --email flag)")
	}

	if password == "" {
		if term.IsTerminal(int(syscall.Stdin)) {
			fmt.Print("Password: ")
			bytePassword, err := term.ReadPassword(int(syscall.Stdin))
			if err != nil {
				return fmt.Errorf("failed to read password: %w", err)
			}
			password = string(bytePassword)
			fmt.Println()
		} else {
			return fmt.Errorf("password is required in non-interactive mode (use --password flag)")
		}
	}

	user, err := app.Session.Register(client.Registration{
		Name:     name,
		Email:    email,
		Password: password,
	})
	if err != nil {
		return fmt.Errorf("registration failed: %w", err)
	}

	fmt.Println("✓ Account created!")
	fmt.Printf("  User: %s (%s)\n", user.Name, user.Email)

	return nil
}
