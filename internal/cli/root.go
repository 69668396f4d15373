package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/savora-app/savora/internal/cli/commands"
	"github.com/savora-app/savora/internal/cli/update"
	"github.com/savora-app/savora/internal/logger"
)

var version = "dev" // Will be set during build

// Execute builds the command tree and runs the root command
func Execute() error {
	logLevel := os.Getenv("SAVORA_LOG_LEVEL")
	if logLevel == "" {
		logLevel = "warn"
	}
	logger.InitCLI(logLevel)
	log := logger.GetLogger()

	app, err := commands.NewApp(log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}

	rootCmd := &cobra.Command{
		Use:   "savora",
		Short: "Savora - Share and discover recipes",
		Long: `Savora CLI - Browse the recipe feed, publish your own recipes and
manage your profile from the terminal.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Skip update check for the version command
			if cmd.Name() == "version" {
				return
			}
			if os.Getenv("SAVORA_SKIP_UPDATE_CHECK") != "" {
				return
			}
			update.PrintUpdateNotification(version)
		},
	}

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("savora version %s\n", version)
		},
	})

	rootCmd.AddCommand(commands.NewLoginCmd(app))
	rootCmd.AddCommand(commands.NewRegisterCmd(app))
	rootCmd.AddCommand(commands.NewLogoutCmd(app))
	rootCmd.AddCommand(commands.NewWhoamiCmd(app))
	rootCmd.AddCommand(commands.NewProfileCmd(app))
	rootCmd.AddCommand(commands.NewRecipesCmd(app))
	rootCmd.AddCommand(commands.NewConfigCmd(app))

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}
