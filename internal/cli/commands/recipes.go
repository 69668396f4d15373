package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/savora-app/savora/internal/cli/client"
	"github.com/savora-app/savora/internal/cli/guard"
)

// NewRecipesCmd creates the recipes command group
func NewRecipesCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recipes",
		Short: "Browse and manage recipes",
	}

	cmd.AddCommand(newRecipesListCmd(app))
	cmd.AddCommand(newRecipesGetCmd(app))
	cmd.AddCommand(newRecipesCreateCmd(app))
	cmd.AddCommand(newRecipesUpdateCmd(app))
	cmd.AddCommand(newRecipesDeleteCmd(app))

	return cmd
}

func newRecipesListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List published recipes",
		RunE: func(cmd *cobra.Command, args []string) error {
			recipes, err := app.Client.ListRecipes()
			if err != nil {
				return fmt.Errorf("failed to list recipes: %w", err)
			}

			if len(recipes) == 0 {
				fmt.Println("No recipes published yet.")
				return nil
			}

			fmt.Printf("%-28s %-24s %-12s %s\n", "ID", "NAME", "CATEGORY", "TIME")
			for _, r := range recipes {
				fmt.Printf("%-28s %-24s %-12s %dmin\n", r.ID, r.Name, r.Category, r.PrepTime+r.CookTime)
			}
			return nil
		},
	}
}

func newRecipesGetCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show a recipe",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			recipe, err := app.Client.GetRecipe(args[0])
			if err != nil {
				return fmt.Errorf("failed to fetch recipe: %w", err)
			}

			printRecipe(recipe)
			return nil
		},
	}
}

func newRecipesCreateCmd(app *App) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Publish a recipe from a YAML file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := guard.RequireSession(app.Session); err != nil {
				return err
			}

			recipe, err := readRecipeFile(file)
			if err != nil {
				return err
			}

			created, err := app.Client.CreateRecipe(*recipe, app.Session.Token())
			if err != nil {
				return fmt.Errorf("failed to create recipe: %w", err)
			}

			fmt.Printf("✓ Recipe published: %s (%s)\n", created.Name, created.ID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Recipe YAML file (required)")
	cmd.MarkFlagRequired("file")

	return cmd
}

func newRecipesUpdateCmd(app *App) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Replace a recipe from a YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := guard.RequireSession(app.Session); err != nil {
				return err
			}

			recipe, err := readRecipeFile(file)
			if err != nil {
				return err
			}

			updated, err := app.Client.UpdateRecipe(args[0], *recipe, app.Session.Token())
			if err != nil {
				return fmt.Errorf("failed to update recipe: %w", err)
			}

			fmt.Printf("✓ Recipe updated: %s\n", updated.Name)
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Recipe YAML file (required)")
	cmd.MarkFlagRequired("file")

	return cmd
}

func newRecipesDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete one of your recipes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := guard.RequireSession(app.Session); err != nil {
				return err
			}

			if err := app.Client.DeleteRecipe(args[0], app.Session.Token()); err != nil {
				return fmt.Errorf("failed to delete recipe: %w", err)
			}

			fmt.Println("✓ Recipe deleted")
			return nil
		},
	}
}

// readRecipeFile parses a recipe from YAML
func readRecipeFile(path string) (*client.Recipe, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read recipe file: %w", err)
	}

	var recipe client.Recipe
	if err := yaml.Unmarshal(data, &recipe); err != nil {
		return nil, fmt.Errorf("failed to parse recipe file: %w", err)
	}

	if recipe.Name == "" {
		return nil, fmt.Errorf("recipe file is missing a name")
	}

	return &recipe, nil
}

func printRecipe(r *client.Recipe) {
	fmt.Printf("%s\n", r.Name)
	fmt.Printf("Category: %s | Prep: %dmin | Cook: %dmin\n", r.Category, r.PrepTime, r.CookTime)
	if r.Description != "" {
		fmt.Printf("\n%s\n", r.Description)
	}
	if len(r.Ingredients) > 0 {
		fmt.Println("\nIngredients:")
		for _, ing := range r.Ingredients {
			fmt.Printf("  - %s\n", ing)
		}
	}
	if len(r.Instructions) > 0 {
		fmt.Println("\nInstructions:")
		for i, step := range r.Instructions {
			fmt.Printf("  %d. %s\n", i+1, step)
		}
	}
	if r.Image != "" {
		fmt.Printf("\nImage: %s\n", r.Image)
	}
}
