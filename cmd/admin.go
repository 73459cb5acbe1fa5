package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/buinguyenkhai/pttkht-20251-recipe-recommendation-system/internal/api"
	"github.com/buinguyenkhai/pttkht-20251-recipe-recommendation-system/internal/formatter"
	"github.com/buinguyenkhai/pttkht-20251-recipe-recommendation-system/internal/models"
	"github.com/buinguyenkhai/pttkht-20251-recipe-recommendation-system/internal/shared"
	"github.com/buinguyenkhai/pttkht-20251-recipe-recommendation-system/internal/views"
	"github.com/urfave/cli/v3"
)

// dashboard opens the admin dashboard for the signed-in user. Non-admins are rejected by the
// dashboard itself on first use.
func (r *Runner) dashboard(ctx context.Context, cmd *cli.Command) (*views.AdminDashboard, error) {
	sess, err := r.requireLogin(ctx)
	if err != nil {
		return nil, err
	}
	d := views.NewAdminDashboard(r.client, sess, time.Now())
	if cmd.IsSet("year") {
		d.SetYear(cmd.Int("year"))
	}
	return d, nil
}

// AdminUsers prints the user table and optionally writes it to an XLSX workbook.
func (r *Runner) AdminUsers(ctx context.Context, cmd *cli.Command) error {
	d, err := r.dashboard(ctx, cmd)
	if err != nil {
		return err
	}
	defer d.Close()

	sort := views.DefaultSort
	if key := cmd.String("sort"); key != "" {
		sort.Key = key
	}
	if cmd.Bool("asc") {
		sort.Direction = views.Asc
	}
	if err := d.SetSort(sort); err != nil {
		return err
	}

	if err := d.Load(ctx); err != nil {
		return viewError(d.State().Err, err)
	}
	s := d.State()

	if path := cmd.String("xlsx"); path != "" {
		if err := writeUsersWorkbook(path, s.Users); err != nil {
			return err
		}
		r.logger.Info("users exported", "path", path, "count", len(s.Users))
	}

	if cmd.Bool("json") {
		return r.writeJSON(s.Users, true)
	}

	r.writePlainHeader(fmt.Sprintf("Users (%d, sorted by %s %s)", s.Year, s.Sort.Key, s.Sort.Direction))
	r.writePlain("%5s  %-20s %-10s %8s %8s %7s\n", "ID", "USERNAME", "JOINED", "RECIPES", "REVIEWS", "RATING")
	for _, u := range s.Users {
		name := u.Username
		if u.IsAdmin {
			name += " *"
		}
		r.writePlain("%5d  %-20s %-10s %8d %8d %7.1f\n",
			u.ID, name, u.CreatedAt.Date(), u.CreatedRecipesCount, u.ReviewsCount, u.AverageRatingOrZero())
	}
	return nil
}

func writeUsersWorkbook(path string, users []models.UserAdminView) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := formatter.WriteUsersXLSX(f, users); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// AdminDeleteUser deletes an account after confirmation.
func (r *Runner) AdminDeleteUser(ctx context.Context, cmd *cli.Command) error {
	id, err := parseID("user id", cmd.StringArg("id"))
	if err != nil {
		return err
	}
	d, err := r.dashboard(ctx, cmd)
	if err != nil {
		return err
	}
	defer d.Close()

	if !r.confirm(views.DeleteUserPrompt(fmt.Sprintf("#%d", id)), cmd.Bool("yes")) {
		r.writePlain("Cancelled\n")
		return nil
	}
	if err := d.DeleteUser(ctx, id); err != nil {
		return viewError(d.State().Err, err)
	}
	r.writePlain("✓ Deleted user %d\n", id)
	return nil
}

// AdminDeleteRecipe deletes any recipe.
func (r *Runner) AdminDeleteRecipe(ctx context.Context, cmd *cli.Command) error {
	id, err := parseID("recipe id", cmd.StringArg("id"))
	if err != nil {
		return err
	}
	d, err := r.dashboard(ctx, cmd)
	if err != nil {
		return err
	}
	defer d.Close()

	if !r.confirm(fmt.Sprintf("Delete recipe %d?", id), cmd.Bool("yes")) {
		r.writePlain("Cancelled\n")
		return nil
	}
	if err := d.DeleteRecipe(ctx, id); err != nil {
		return viewError(d.State().Err, err)
	}
	r.writePlain("✓ Deleted recipe %d\n", id)
	return nil
}

// AdminDeleteReview deletes any review.
func (r *Runner) AdminDeleteReview(ctx context.Context, cmd *cli.Command) error {
	id, err := parseID("review id", cmd.StringArg("id"))
	if err != nil {
		return err
	}
	d, err := r.dashboard(ctx, cmd)
	if err != nil {
		return err
	}
	defer d.Close()

	if err := d.DeleteReview(ctx, id); err != nil {
		return viewError(d.State().Err, err)
	}
	r.writePlain("✓ Deleted review %d\n", id)
	return nil
}

// AdminGrant gives a user admin rights.
func (r *Runner) AdminGrant(ctx context.Context, cmd *cli.Command) error {
	username := strings.TrimSpace(cmd.StringArg("username"))
	if username == "" {
		return fmt.Errorf("%w: username", shared.ErrMissingArgument)
	}
	sess, err := r.requireLogin(ctx)
	if err != nil {
		return err
	}
	if !sess.IsAdmin() {
		return fmt.Errorf("%w: admin access required", shared.ErrForbidden)
	}

	msg, err := r.client.GrantAdmin(ctx, username)
	if err != nil {
		if sess.HandleError(err) {
			return viewError("", err)
		}
		return viewError(api.Message(err, "Failed to grant admin rights."), err)
	}
	r.logger.Info("admin granted", "username", username)
	r.writePlain("✓ %s\n", msg.Message)
	return nil
}

// AdminCharts prints monthly activity bars for the selected year.
func (r *Runner) AdminCharts(ctx context.Context, cmd *cli.Command) error {
	d, err := r.dashboard(ctx, cmd)
	if err != nil {
		return err
	}
	defer d.Close()

	charts, err := d.LoadCharts(ctx)
	if err != nil {
		return viewError(d.State().Err, err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(charts, true)
	}

	year := d.State().Year
	for _, series := range []struct {
		title  string
		points []models.Point
	}{
		{"Recipes created", charts.Recipes},
		{"Users joined", charts.Users},
		{"Reviews written", charts.Reviews},
	} {
		r.writePlainHeader(fmt.Sprintf("%s in %d", series.title, year))
		r.printBars(series.points)
	}
	return nil
}

func (r *Runner) printBars(points []models.Point) {
	peak := 0
	for _, p := range points {
		peak = max(peak, p.Value)
	}
	const width = 40
	for _, p := range points {
		n := 0
		if peak > 0 {
			n = p.Value * width / peak
		}
		r.writePlain("%-4s %s %d\n", p.Label, strings.Repeat("█", n), p.Value)
	}
}
