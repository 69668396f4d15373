package commands

import (
	"fmt"
	"os"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/savora-app/savora/internal/cli/client"
)

// NewLoginCmd creates the login command
func NewLoginCmd(app *App) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate with the Savora API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogin(app, email, password)
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Email address (or set SAVORA_EMAIL)")
	cmd.Flags().StringVar(&password, "password", "", "Password (or set SAVORA_PASSWORD, will prompt if not provided)")

	return cmd
}

func runLogin(app *App, email, password string) error {
	// Check for environment variables (useful for CI/CD)
	if email == "" {
		email = os.Getenv("SAVORA_EMAIL")
	}
	if password == "" {
		password = os.Getenv("SAVORA_PASSWORD")
	}

	if email == "" {
		return fmt.Errorf("email is required (use --email flag or SAVORA_EMAIL env var)")
	}

	// Prompt for password if not provided via flag or env var
	if password == "" {
		// Check if stdin is a terminal (not piped)
		if term.IsTerminal(int(syscall.Stdin)) {
			fmt.Print("Password: ")
			bytePassword, err := term.ReadPassword(int(syscall.Stdin))
			if err != nil {
				return fmt.Errorf("failed to read password: %w", err)
			}
			password = string(bytePassword)
			fmt.Println() // New line after password input
		} else {
			return fmt.Errorf("password is required in non-interactive mode (use --password flag or SAVORA_PASSWORD env var)")
		}
	}

	user, err := app.Session.Login(client.Credentials{Email: email, Password: password})
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	fmt.Println("✓ Login successful!")
	fmt.Printf("  User: %s (%s)\n", user.Name, user.Email)

	return nil
}
