package commands

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/savora-app/savora/internal/cli/client"
	"github.com/savora-app/savora/internal/cli/guard"
	"github.com/savora-app/savora/internal/cli/session"
)

// NewProfileCmd creates the profile command group
func NewProfileCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Manage your profile",
	}

	cmd.AddCommand(newProfileUpdateCmd(app))
	cmd.AddCommand(newProfileAvatarCmd(app))
	cmd.AddCommand(newProfileStatsCmd(app))

	return cmd
}

func newProfileUpdateCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update",
		Short: "Update profile fields",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := guard.RequireSession(app.Session); err != nil {
				return err
			}

			var update client.ProfileUpdate
			if cmd.Flags().Changed("name") {
				v, _ := cmd.Flags().GetString("name")
				update.Name = &v
			}
			if cmd.Flags().Changed("bio") {
				v, _ := cmd.Flags().GetString("bio")
				update.Bio = &v
			}
			if cmd.Flags().Changed("location") {
				v, _ := cmd.Flags().GetString("location")
				update.Location = &v
			}
			if update.Name == nil && update.Bio == nil && update.Location == nil {
				return fmt.Errorf("nothing to update (use --name, --bio or --location)")
			}

			user, err := app.Client.UpdateProfile(update, app.Session.Token())
			if err != nil {
				return fmt.Errorf("failed to update profile: %w", err)
			}

			// Keep the session's cached user in sync with what the backend
			// persisted.
			app.Session.SetUser(*user)

			fmt.Println("✓ Profile updated")
			return nil
		},
	}

	cmd.Flags().String("name", "", "Display name")
	cmd.Flags().String("bio", "", "Short bio")
	cmd.Flags().String("location", "", "Location")

	return cmd
}

func newProfileAvatarCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "avatar <file>",
		Short: "Upload a new avatar image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := guard.RequireSession(app.Session); err != nil {
				return err
			}

			avatar, cleanup, err := openAvatarFile(args[0])
			if err != nil {
				return err
			}
			defer cleanup()

			avatarURL, err := app.Client.UploadAvatar(*avatar, app.Session.Token())
			if err != nil {
				return fmt.Errorf("failed to upload avatar: %w", err)
			}

			if _, err := app.Session.UpdateUser(session.UserPatch{AvatarURL: &avatarURL}); err != nil {
				return err
			}

			fmt.Printf("✓ Avatar uploaded: %s\n", avatarURL)
			return nil
		},
	}
}

// openAvatarFile stats and opens the image, sniffing its content type from
// the first bytes so the client-side checks see a real MIME type.
func openAvatarFile(path string) (*client.AvatarFile, func(), error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to stat avatar file: %w", err)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open avatar file: %w", err)
	}

	head := make([]byte, 512)
	n, err := f.Read(head)
	if err != nil && n == 0 {
		f.Close()
		return nil, nil, fmt.Errorf("failed to read avatar file: %w", err)
	}
	if _, err := f.Seek(0, 0); err != nil {
		f.Close()
		return nil, nil, fmt.Errorf("failed to rewind avatar file: %w", err)
	}

	return &client.AvatarFile{
		Name:        filepath.Base(path),
		ContentType: http.DetectContentType(head[:n]),
		Size:        info.Size(),
		Content:     f,
	}, func() { f.Close() }, nil
}

func newProfileStatsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show your activity statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := guard.RequireSession(app.Session); err != nil {
				return err
			}

			stats, err := app.Client.GetStats(app.Session.Token())
			if err != nil {
				return fmt.Errorf("failed to fetch stats: %w", err)
			}

			fmt.Printf("Recipes published: %d\n", stats.RecipeCount)
			return nil
		},
	}
}
