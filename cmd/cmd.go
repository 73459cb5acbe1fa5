// submodule cmd contains command definitions
package main

import (
	"github.com/buinguyenkhai/pttkht-20251-recipe-recommendation-system/internal/formatter"
	"github.com/urfave/cli/v3"
)

func jsonFlag() cli.Flag {
	return &cli.BoolFlag{
		Name:  "json",
		Usage: "Output raw JSON",
	}
}

func prettyFlag() cli.Flag {
	return &cli.BoolFlag{
		Name:  "pretty",
		Usage: "Pretty-print JSON output",
		Value: true,
	}
}

func pageFlag() cli.Flag {
	return &cli.IntFlag{
		Name:    "page",
		Aliases: []string{"p"},
		Usage:   "Page number, starting at 1",
		Value:   1,
	}
}

func yesFlag() cli.Flag {
	return &cli.BoolFlag{
		Name:    "yes",
		Aliases: []string{"y"},
		Usage:   "Skip the confirmation prompt",
	}
}

func idArg(name string) []cli.Argument {
	return []cli.Argument{&cli.StringArg{Name: name}}
}

// recipeFormFlags are shared by recipe create and edit.
func recipeFormFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "title",
			Usage: "Recipe title",
		},
		&cli.StringFlag{
			Name:  "description",
			Usage: "Short description",
		},
		&cli.StringFlag{
			Name:  "servings",
			Usage: "Servings, e.g. \"4\" or \"2-3\"",
		},
		&cli.StringSliceFlag{
			Name:  "step",
			Usage: "Instruction step, repeat in order",
		},
		&cli.StringSliceFlag{
			Name:  "ingredient",
			Usage: "Ingredient as name:quantity[:unit], repeatable",
		},
		&cli.StringSliceFlag{
			Name:  "tag",
			Usage: "Tag, repeatable",
		},
		&cli.StringFlag{
			Name:  "image",
			Usage: "Path of an image file to upload as the cover",
		},
	}
}

func setupCommand(r *Runner) *cli.Command {
	configFlag := &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   "config.toml",
	}
	return &cli.Command{
		Name:  "setup",
		Usage: "Initialize the local database and configuration",
		Commands: []*cli.Command{
			{
				Name:   "database",
				Usage:  "Create the database and run migrations",
				Flags:  []cli.Flag{configFlag},
				Action: r.SetupDatabase,
			},
			{
				Name:   "rollback",
				Usage:  "Roll back the most recent migration",
				Flags:  []cli.Flag{configFlag},
				Action: r.SetupRollback,
			},
			{
				Name:  "config",
				Usage: "Write a configuration file",
				Flags: []cli.Flag{
					configFlag,
					&cli.StringFlag{
						Name:  "api-url",
						Usage: "Backend base URL to store in the file",
					},
					&cli.BoolFlag{
						Name:  "force",
						Usage: "Overwrite an existing file",
					},
				},
				Action: r.SetupConfig,
			},
		},
	}
}

func authCommand(r *Runner) *cli.Command {
	credentials := []cli.Flag{
		&cli.StringFlag{
			Name:    "username",
			Aliases: []string{"u"},
			Usage:   "Account name",
		},
		&cli.StringFlag{
			Name:    "password",
			Usage:   "Account password",
			Sources: cli.EnvVars("RECIPES_PASSWORD"),
		},
	}
	return &cli.Command{
		Name:  "auth",
		Usage: "Sign in, sign up and manage the stored session",
		Commands: []*cli.Command{
			{
				Name:   "login",
				Usage:  "Sign in and remember the session",
				Flags:  credentials,
				Action: r.AuthLogin,
			},
			{
				Name:  "signup",
				Usage: "Create an account and sign in",
				Flags: append(credentials, &cli.StringFlag{
					Name:    "confirm",
					Usage:   "Repeat the password",
					Sources: cli.EnvVars("RECIPES_PASSWORD_CONFIRM"),
				}),
				Action: r.AuthSignup,
			},
			{
				Name:   "logout",
				Usage:  "Forget the stored session",
				Action: r.AuthLogout,
			},
			{
				Name:   "whoami",
				Usage:  "Show the signed-in user",
				Flags:  []cli.Flag{jsonFlag()},
				Action: r.AuthWhoami,
			},
		},
	}
}

func recipesCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "recipes",
		Aliases: []string{"r"},
		Usage:   "Browse, create and manage recipes",
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List every recipe, newest first",
				Flags:  []cli.Flag{pageFlag(), jsonFlag()},
				Action: r.RecipesList,
			},
			{
				Name:   "featured",
				Usage:  "Show the featured recipes",
				Flags:  []cli.Flag{jsonFlag()},
				Action: r.RecipesFeatured,
			},
			{
				Name:      "show",
				Usage:     "Show a recipe with its ingredients, steps and reviews",
				Arguments: idArg("id"),
				Flags: []cli.Flag{
					jsonFlag(),
					&cli.BoolFlag{
						Name:  "open-image",
						Usage: "Open the cover image in the browser",
					},
				},
				Action: r.RecipesShow,
			},
			{
				Name:   "create",
				Usage:  "Create a recipe",
				Flags:  recipeFormFlags(),
				Action: r.RecipesCreate,
			},
			{
				Name:      "edit",
				Usage:     "Edit one of your recipes; omitted flags keep their values",
				Arguments: idArg("id"),
				Flags:     recipeFormFlags(),
				Action:    r.RecipesEdit,
			},
			{
				Name:      "delete",
				Usage:     "Delete a recipe you created",
				Arguments: idArg("id"),
				Flags:     []cli.Flag{yesFlag()},
				Action:    r.RecipesDelete,
			},
			{
				Name:      "save",
				Usage:     "Save or unsave a recipe",
				Arguments: idArg("id"),
				Action:    r.RecipesToggleSave,
			},
			{
				Name:   "saved",
				Usage:  "List your saved recipes",
				Flags:  []cli.Flag{pageFlag(), jsonFlag()},
				Action: r.RecipesSaved,
			},
			{
				Name:   "mine",
				Usage:  "List the recipes you created",
				Flags:  []cli.Flag{pageFlag(), jsonFlag()},
				Action: r.RecipesMine,
			},
			{
				Name:      "export",
				Usage:     "Export a recipe to a file",
				Arguments: idArg("id"),
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Export format (md, txt, json)",
						Value:   string(formatter.FormatMarkdown),
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file, or directory for md",
					},
				},
				Action: r.RecipesExport,
			},
		},
	}
}

func searchCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "search",
		Aliases:   []string{"s"},
		Usage:     "Search recipes by text, tags and ingredients",
		ArgsUsage: "[query]",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:    "tag",
				Aliases: []string{"t"},
				Usage:   "Tag the recipes must carry, repeatable",
			},
			&cli.StringSliceFlag{
				Name:  "exclude-tag",
				Usage: "Tag the recipes must not carry, repeatable",
			},
			&cli.StringSliceFlag{
				Name:    "ingredient",
				Aliases: []string{"i"},
				Usage:   "Ingredient the recipes must use, repeatable",
			},
			&cli.StringSliceFlag{
				Name:  "exclude-ingredient",
				Usage: "Ingredient the recipes must not use, repeatable",
			},
			pageFlag(),
			&cli.StringFlag{
				Name:  "location",
				Usage: "Replay a search location such as \"query=soup&tag_inc=Vegan\"",
			},
			jsonFlag(),
		},
		Action: r.Search,
		Commands: []*cli.Command{
			{
				Name:  "history",
				Usage: "Show recent searches",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "limit",
						Aliases: []string{"n"},
						Usage:   "Number of entries to show",
						Value:   20,
					},
					jsonFlag(),
				},
				Action: r.SearchHistory,
				Commands: []*cli.Command{
					{
						Name:   "clear",
						Usage:  "Delete the search history",
						Action: r.SearchHistoryClear,
					},
				},
			},
		},
	}
}

func reviewsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "reviews",
		Usage: "Read and write recipe reviews",
		Commands: []*cli.Command{
			{
				Name:      "list",
				Usage:     "List a recipe's reviews",
				Arguments: idArg("recipe-id"),
				Flags:     []cli.Flag{jsonFlag()},
				Action:    r.ReviewsList,
			},
			{
				Name:      "add",
				Usage:     "Review a recipe, or update your existing review",
				Arguments: idArg("recipe-id"),
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "rating",
						Usage: "Star rating from 1 to 5",
					},
					&cli.StringFlag{
						Name:  "text",
						Usage: "Review text",
					},
				},
				Action: r.ReviewsAdd,
			},
			{
				Name:  "delete",
				Usage: "Delete a review",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "recipe-id"},
					&cli.StringArg{Name: "review-id"},
				},
				Action: r.ReviewsDelete,
			},
		},
	}
}

func mealCommand(r *Runner) *cli.Command {
	personFlag := &cli.StringSliceFlag{
		Name:  "person",
		Usage: "Person as gender:weight:exercise, e.g. Female:60:Low; repeatable",
	}
	return &cli.Command{
		Name:  "meal",
		Usage: "Generate, build and save meal plans",
		Commands: []*cli.Command{
			{
				Name:  "random",
				Usage: "Generate a random meal for a number of people",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "people",
						Aliases: []string{"n"},
						Usage:   "Number of people",
						Value:   1,
					},
					&cli.StringFlag{
						Name:  "save",
						Usage: "Save the meal under this name (empty uses a default name)",
					},
					jsonFlag(),
				},
				Action: r.MealRandom,
			},
			{
				Name:   "custom",
				Usage:  "Show your custom meal plan",
				Flags:  []cli.Flag{personFlag, jsonFlag()},
				Action: r.CustomShow,
				Commands: []*cli.Command{
					{
						Name:      "add",
						Usage:     "Add a recipe to the custom plan",
						Arguments: idArg("recipe-id"),
						Action:    r.CustomAdd,
					},
					{
						Name:      "remove",
						Usage:     "Remove a recipe from the custom plan",
						Arguments: idArg("recipe-id"),
						Action:    r.CustomRemove,
					},
					{
						Name:   "clear",
						Usage:  "Remove every recipe from the custom plan",
						Flags:  []cli.Flag{yesFlag()},
						Action: r.CustomClear,
					},
					{
						Name:  "save",
						Usage: "Save the custom plan",
						Flags: []cli.Flag{
							&cli.StringFlag{
								Name:  "name",
								Usage: "Plan name",
							},
							personFlag,
						},
						Action: r.CustomSave,
					},
				},
			},
			{
				Name:  "plans",
				Usage: "Manage saved meal plans",
				Commands: []*cli.Command{
					{
						Name:   "list",
						Usage:  "List saved plans",
						Flags:  []cli.Flag{jsonFlag()},
						Action: r.PlansList,
					},
					{
						Name:      "show",
						Usage:     "Show a saved plan",
						Arguments: idArg("id"),
						Flags:     []cli.Flag{jsonFlag()},
						Action:    r.PlansShow,
					},
					{
						Name:  "rename",
						Usage: "Rename a saved plan",
						Arguments: []cli.Argument{
							&cli.StringArg{Name: "id"},
							&cli.StringArg{Name: "name"},
						},
						Action: r.PlansRename,
					},
					{
						Name:      "delete",
						Usage:     "Delete a saved plan",
						Arguments: idArg("id"),
						Flags:     []cli.Flag{yesFlag()},
						Action:    r.PlansDelete,
					},
				},
			},
			{
				Name:      "export",
				Usage:     "Export saved plans concurrently; no ids exports every plan",
				ArgsUsage: "[plan-id...]",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Export format (json, csv, md, txt, xlsx)",
						Value:   string(formatter.FormatJSON),
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output directory",
					},
					&cli.IntFlag{
						Name:    "workers",
						Aliases: []string{"w"},
						Usage:   "Concurrent export workers",
					},
				},
				Action: r.MealExport,
			},
		},
	}
}

func adminCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "admin",
		Usage: "Administer users and content (admins only)",
		Commands: []*cli.Command{
			{
				Name:  "users",
				Usage: "List users with their activity",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "sort",
						Usage: "Sort key (created_recipes, reviews_count, average_rating)",
					},
					&cli.BoolFlag{
						Name:  "asc",
						Usage: "Sort ascending",
					},
					&cli.IntFlag{
						Name:  "year",
						Usage: "Only count activity of this year",
					},
					&cli.StringFlag{
						Name:  "xlsx",
						Usage: "Write the table to this XLSX file",
					},
					jsonFlag(),
				},
				Action: r.AdminUsers,
			},
			{
				Name:      "delete-user",
				Usage:     "Delete a user with all their content",
				Arguments: idArg("id"),
				Flags:     []cli.Flag{yesFlag()},
				Action:    r.AdminDeleteUser,
			},
			{
				Name:      "delete-recipe",
				Usage:     "Delete any recipe",
				Arguments: idArg("id"),
				Flags:     []cli.Flag{yesFlag()},
				Action:    r.AdminDeleteRecipe,
			},
			{
				Name:      "delete-review",
				Usage:     "Delete any review",
				Arguments: idArg("id"),
				Action:    r.AdminDeleteReview,
			},
			{
				Name:      "grant",
				Usage:     "Give a user admin rights",
				Arguments: idArg("username"),
				Action:    r.AdminGrant,
			},
			{
				Name:  "charts",
				Usage: "Show monthly activity for a year",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "year",
						Usage: "Year to chart (default: this year)",
					},
					jsonFlag(),
				},
				Action: r.AdminCharts,
			},
		},
	}
}

// apiCommand handles direct backend calls
func apiCommand(r *Runner) *cli.Command {
	pathArg := idArg("path")
	dataFlag := &cli.StringFlag{
		Name:    "data",
		Aliases: []string{"d"},
		Usage:   "JSON body to send",
	}
	return &cli.Command{
		Name:  "api",
		Usage: "Direct calls to the recipe backend",
		Commands: []*cli.Command{
			{
				Name:      "get",
				Usage:     "GET a path, prints the response",
				Arguments: pathArg,
				Flags:     []cli.Flag{prettyFlag()},
				Action:    r.APIGet,
			},
			{
				Name:      "post",
				Usage:     "POST a JSON body",
				Arguments: pathArg,
				Flags:     []cli.Flag{dataFlag, prettyFlag()},
				Action:    r.APIPost,
			},
			{
				Name:      "put",
				Usage:     "PUT a JSON body",
				Arguments: pathArg,
				Flags:     []cli.Flag{dataFlag, prettyFlag()},
				Action:    r.APIPut,
			},
			{
				Name:      "delete",
				Usage:     "DELETE a path",
				Arguments: pathArg,
				Flags:     []cli.Flag{prettyFlag()},
				Action:    r.APIDelete,
			},
		},
	}
}

func healthCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "health",
		Usage:  "Check that the backend is reachable",
		Action: r.Health,
	}
}

func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "tui",
		Usage: "Launch the interactive recipe search",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "location",
				Usage: "Start from a search location such as \"query=soup&adv=true\"",
			},
			&cli.BoolFlag{
				Name:  "history",
				Usage: "Start from the most recent search",
			},
		},
		Action: r.TUI,
	}
}
