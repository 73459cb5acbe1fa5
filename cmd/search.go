package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/buinguyenkhai/pttkht-20251-recipe-recommendation-system/internal/filters"
	"github.com/buinguyenkhai/pttkht-20251-recipe-recommendation-system/internal/search"
	"github.com/buinguyenkhai/pttkht-20251-recipe-recommendation-system/internal/shared"
	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"
)

// newController builds a search controller that records every committed location in the
// search history when the local database is open.
func (r *Runner) newController(logger *log.Logger) *search.Controller {
	return search.New(r.client, search.Options{
		SettleDelay: r.config.Search.SettleDelay(),
		PageSize:    r.config.Search.PageSize,
		Logger:      shared.WithLogger(logger, "component", "search"),
		OnNavigate: func(q filters.Query, location string) {
			if r.history == nil {
				return
			}
			if _, err := r.history.Record(location, q.Text, q.Page); err != nil {
				logger.Warn("could not record search", "error", err)
			}
		},
	})
}

// searchLocation builds the location for the search flags and arguments. The query parameter
// is always present so an empty search lists every recipe.
func searchLocation(cmd *cli.Command) (string, error) {
	if raw := cmd.String("location"); raw != "" {
		return raw, nil
	}

	q := filters.NewQuery()
	q.Text = strings.TrimSpace(strings.Join(cmd.Args().Slice(), " "))
	q.Page = cmd.Int("page")

	for flag, set := range map[string]struct {
		sel   filters.Selection
		state filters.State
	}{
		"tag":                {q.Tags, filters.Include},
		"exclude-tag":        {q.Tags, filters.Exclude},
		"ingredient":         {q.Ingredients, filters.Include},
		"exclude-ingredient": {q.Ingredients, filters.Exclude},
	} {
		for _, name := range cmd.StringSlice(flag) {
			name = strings.TrimSpace(name)
			if name == "" {
				return "", fmt.Errorf("%w: --%s needs a name", shared.ErrInvalidFlag, flag)
			}
			if prev := set.sel.Get(name); prev != filters.None && prev != set.state {
				return "", fmt.Errorf("%w: %q is both included and excluded", shared.ErrInvalidFlag, name)
			}
			set.sel.Set(name, set.state)
		}
	}

	v := q.Values()
	v.Set(filters.ParamQuery, q.Text)
	return v.Encode(), nil
}

// Search runs one search and prints the page of results.
func (r *Runner) Search(ctx context.Context, cmd *cli.Command) error {
	location, err := searchLocation(cmd)
	if err != nil {
		return err
	}
	sess, err := r.ensureSession(ctx)
	if err != nil {
		return err
	}

	ctrl := r.newController(r.logger)
	defer ctrl.Close()

	r.logger.Debug("searching", "location", location)
	if err := ctrl.Navigate(location); err != nil {
		return err
	}
	ctrl.Wait()

	snap := ctrl.Snapshot()
	switch snap.Status {
	case search.Failed:
		return fmt.Errorf("%w: %s", shared.ErrAPIRequest, snap.Err)
	case search.Idle:
		return fmt.Errorf("%w: location %q has no search parameters", shared.ErrInvalidArgument, location)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(recipePage{Recipes: snap.Recipes, Pagination: snap.Pagination}, true)
	}

	if s := describeQuery(snap.Query); s != "" {
		r.writePlain("%s\n\n", s)
	}
	r.printRecipes(snap.Recipes, snap.Pagination, sess)
	if snap.Pagination.HasNext() {
		r.writePlain("Next page: recipes search --location %q\n", nextPage(snap.Location, snap.Pagination.Page+1))
	}
	return nil
}

func nextPage(location string, page int) string {
	v, err := filters.ParseLocation(location)
	if err != nil {
		return location
	}
	v.Set(filters.ParamPage, fmt.Sprint(page))
	return v.Encode()
}

// describeQuery summarises the active text and filters.
func describeQuery(q filters.Query) string {
	var parts []string
	if q.Text != "" {
		parts = append(parts, fmt.Sprintf("%q", q.Text))
	}
	add := func(label string, names []string) {
		if len(names) > 0 {
			parts = append(parts, label+" "+strings.Join(names, ", "))
		}
	}
	add("tags:", q.Tags.Included())
	add("without tags:", q.Tags.Excluded())
	add("with:", q.Ingredients.Included())
	add("without:", q.Ingredients.Excluded())
	if len(parts) == 0 {
		return ""
	}
	return "Searching " + strings.Join(parts, " • ")
}

var errNoHistory = errors.New("search history needs the local database, run `recipes setup database`")

func (r *Runner) openHistory(ctx context.Context) error {
	if r.history != nil {
		return nil
	}
	if _, err := r.ensureSession(ctx); err != nil {
		return err
	}
	if r.history == nil {
		return fmt.Errorf("%w: %w", shared.ErrServiceUnavailable, errNoHistory)
	}
	return nil
}

// SearchHistory lists recent searches, newest first.
func (r *Runner) SearchHistory(ctx context.Context, cmd *cli.Command) error {
	if err := r.openHistory(ctx); err != nil {
		return err
	}
	entries, err := r.history.Recent(cmd.Int("limit"))
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(entries, true)
	}
	if len(entries) == 0 {
		r.writePlain("No searches yet\n")
		return nil
	}
	for _, e := range entries {
		text := e.Text
		if text == "" {
			text = "(all recipes)"
		}
		r.writePlain("%s  %-30s page %-3d %s\n", e.CreatedAt.Local().Format("2006-01-02 15:04"), text, e.Page, e.QueryString)
	}
	return nil
}

// SearchHistoryClear deletes every history entry.
func (r *Runner) SearchHistoryClear(ctx context.Context, cmd *cli.Command) error {
	if err := r.openHistory(ctx); err != nil {
		return err
	}
	n, err := r.history.Clear()
	if err != nil {
		return err
	}
	r.writePlain("✓ Deleted %d searches\n", n)
	return nil
}
