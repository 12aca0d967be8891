package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/urfave/cli/v3"

	"pantry-chef/internal/app"
	"pantry-chef/internal/clipper"
	"pantry-chef/internal/metrics"
)

func formatFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"o"},
		Value:   formatTable,
		Usage:   "Output format (table, json)",
	}
}

func searchCmd() *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "Find recipes for the ingredients you have",
		ArgsUsage: "<ingredient>[, <ingredient>...]",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "servings", Aliases: []string{"s"}, Usage: "Scale ingredients to this many servings (1-16)"},
			&cli.StringFlag{Name: "difficulty", Usage: "easy, medium, hard or any"},
			&cli.IntFlag{Name: "max-time", Usage: "Maximum cooking time in minutes"},
			&cli.StringSliceFlag{Name: "diet", Usage: "Required dietary tag (repeatable)"},
			&cli.StringSliceFlag{Name: "prefer", Usage: "Preferred dietary tag (repeatable)"},
			&cli.IntFlag{Name: "limit", Value: 5, Usage: "Maximum number of results"},
			formatFlag(),
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			ingredients := app.ParseIngredients(strings.Join(cmd.Args().Slice(), ","))
			if len(ingredients) == 0 {
				return errors.New("at least one ingredient is required")
			}

			req := app.SearchRequest{
				Ingredients:        ingredients,
				DietaryPreferences: cmd.StringSlice("prefer"),
			}
			if cmd.IsSet("servings") {
				servings := int(cmd.Int("servings"))
				req.Servings = &servings
			}
			if cmd.IsSet("difficulty") || cmd.IsSet("max-time") || cmd.IsSet("diet") {
				req.Filters = &app.FiltersRequest{
					Difficulty:          cmd.String("difficulty"),
					DietaryRestrictions: cmd.StringSlice("diet"),
				}
				if cmd.IsSet("max-time") {
					maxTime := int(cmd.Int("max-time"))
					req.Filters.MaxCookingTime = &maxTime
				}
			}

			return withApp(ctx, cmd, func(a *app.App) error {
				results, err := a.Search(ctx, req)
				if err != nil {
					return err
				}
				if limit := int(cmd.Int("limit")); limit > 0 && len(results) > limit {
					results = results[:limit]
				}
				return printResults(cmd, results)
			})
		},
	}
}

func suggestCmd() *cli.Command {
	return &cli.Command{
		Name:  "suggest",
		Usage: "Show recipes picked from your favorites, ratings and preferences",
		Flags: []cli.Flag{formatFlag()},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return withApp(ctx, cmd, func(a *app.App) error {
				suggestions, err := a.Suggestions(ctx)
				if err != nil {
					return err
				}
				return printResults(cmd, suggestions)
			})
		},
	}
}

func rateCmd() *cli.Command {
	return &cli.Command{
		Name:      "rate",
		Usage:     "Rate a recipe from 1 to 5",
		ArgsUsage: "<recipe-id> <rating>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.NArg() != 2 {
				return errors.New("usage: rate <recipe-id> <rating>")
			}
			recipeID := cmd.Args().Get(0)
			rating, err := strconv.ParseFloat(cmd.Args().Get(1), 64)
			if err != nil {
				return fmt.Errorf("invalid rating %q: %w", cmd.Args().Get(1), err)
			}

			return withApp(ctx, cmd, func(a *app.App) error {
				ratings, err := a.Rate(ctx, app.RateRequest{RecipeID: recipeID, Rating: &rating})
				if err != nil {
					return err
				}
				for _, r := range ratings {
					if r.RecipeID == recipeID {
						fmt.Fprintf(cmd.Root().Writer, "Rated %s %g/5\n", recipeID, r.Rating)
					}
				}
				return nil
			})
		},
	}
}

func favoriteCmd() *cli.Command {
	return &cli.Command{
		Name:      "favorite",
		Aliases:   []string{"fav"},
		Usage:     "Save or unsave a recipe",
		ArgsUsage: "<recipe-id>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.NArg() != 1 {
				return errors.New("usage: favorite <recipe-id>")
			}
			recipeID := cmd.Args().First()

			return withApp(ctx, cmd, func(a *app.App) error {
				favorites, err := a.ToggleFavorite(ctx, recipeID)
				if err != nil {
					return err
				}
				action := "Removed"
				for _, f := range favorites {
					if f.RecipeID == recipeID {
						action = "Saved"
					}
				}
				fmt.Fprintf(cmd.Root().Writer, "%s %s (%d favorites)\n", action, recipeID, len(favorites))
				return nil
			})
		},
	}
}

func clipCmd() *cli.Command {
	return &cli.Command{
		Name:      "clip",
		Usage:     "Import a recipe from a web page into a catalog file",
		ArgsUsage: "<url>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "catalog",
				Usage: "Catalog file to append to (default: the configured catalog, or data/catalog.json)",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.NArg() != 1 {
				return errors.New("usage: clip <url>")
			}
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			path := cmd.String("catalog")
			if path == "" {
				path = cfg.Catalog.Path
			}
			if path == "" {
				path = "data/catalog.json"
			}

			rec, err := clipper.NewClipper(nil).Import(ctx, cmd.Args().First(), path)
			if err != nil {
				return err
			}
			w := cmd.Root().Writer
			fmt.Fprintf(w, "Imported %q as %s into %s\n", rec.Title, rec.ID, path)
			if cfg.Catalog.Path != path {
				fmt.Fprintf(w, "Set PANTRY_CATALOG_PATH=%s to serve it.\n", path)
			}
			return nil
		},
	}
}

func healthCmd() *cli.Command {
	return &cli.Command{
		Name:  "health",
		Usage: "Report recognition usage and process health",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "days", Value: 7, Usage: "Days of recognition usage to show"},
			formatFlag(),
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return withApp(ctx, cmd, func(a *app.App) error {
				usage, err := a.RecognitionUsage(ctx, int(cmd.Int("days")))
				if err != nil {
					return err
				}
				report := healthReport{
					Recipes: len(a.Recipes()),
					Usage:   usage,
					System:  metrics.GetSysHealth(a.Config().Store.Path),
				}
				return printHealth(cmd, report)
			})
		},
	}
}

func pruneCmd() *cli.Command {
	return &cli.Command{
		Name:  "prune",
		Usage: "Delete recognition call records older than --days",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "days", Value: retentionDays, Usage: "Keep records for the last N days"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return withApp(ctx, cmd, func(a *app.App) error {
				removed, err := a.PruneRecognitionCalls(ctx, int(cmd.Int("days")))
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.Root().Writer, "Successfully removed %d old recognition records.\n", removed)
				return nil
			})
		},
	}
}
