package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/buinguyenkhai/pttkht-20251-recipe-recommendation-system/internal/models"
	"github.com/buinguyenkhai/pttkht-20251-recipe-recommendation-system/internal/shared"
	"github.com/urfave/cli/v3"
)

func stars(n int) string {
	if n < 0 {
		n = 0
	}
	if n > 5 {
		n = 5
	}
	return strings.Repeat("★", n) + strings.Repeat("☆", 5-n)
}

func (r *Runner) printReviews(reviews []models.Review) {
	if len(reviews) == 0 {
		r.writePlainln("No reviews yet")
		return
	}
	r.writePlainln("Reviews:")
	for _, rv := range reviews {
		r.writePlain("  #%d %s %s (%s)\n", rv.ID, stars(rv.RatingOrZero()), rv.Author(), rv.CreatedAt.Date())
		if t := rv.TextOrEmpty(); t != "" {
			r.writePlain("     %s\n", t)
		}
	}
}

// ReviewsList prints a recipe's reviews with the rating distribution.
func (r *Runner) ReviewsList(ctx context.Context, cmd *cli.Command) error {
	sess, err := r.ensureSession(ctx)
	if err != nil {
		return err
	}
	detail, err := r.loadDetail(ctx, sess, cmd.StringArg("recipe-id"))
	if err != nil {
		return err
	}
	defer detail.Close()
	s := detail.State()

	if cmd.Bool("json") {
		return r.writeJSON(struct {
			Reviews []models.Review    `json:"reviews"`
			Stats   models.RatingStats `json:"stats"`
		}{s.Reviews, s.Stats}, true)
	}

	r.writePlainHeader(s.Recipe.Title)
	r.writePlain("Average %s from %d reviews\n", s.Stats.AverageString(), s.Stats.Total)
	for n := 5; n >= 1; n-- {
		r.writePlain("  %d %s %d\n", n, strings.Repeat("█", s.Stats.Distribution[n]), s.Stats.Distribution[n])
	}
	r.printReviews(s.Reviews)
	return nil
}

// ReviewsAdd creates the user's review of a recipe or replaces the existing one.
func (r *Runner) ReviewsAdd(ctx context.Context, cmd *cli.Command) error {
	sess, err := r.requireLogin(ctx)
	if err != nil {
		return err
	}
	detail, err := r.loadDetail(ctx, sess, cmd.StringArg("recipe-id"))
	if err != nil {
		return err
	}
	defer detail.Close()

	updating := detail.OwnReview() != nil
	review, err := detail.SubmitReview(ctx, cmd.Int("rating"), cmd.String("text"))
	if err != nil {
		return viewError(detail.State().Err, err)
	}

	verb := "Added"
	if updating {
		verb = "Updated"
	}
	r.writePlain("✓ %s review #%d %s\n", verb, review.ID, stars(review.RatingOrZero()))
	return nil
}

// ReviewsDelete deletes a review of a recipe.
func (r *Runner) ReviewsDelete(ctx context.Context, cmd *cli.Command) error {
	reviewID, err := parseID("review id", cmd.StringArg("review-id"))
	if err != nil {
		return err
	}
	sess, err := r.requireLogin(ctx)
	if err != nil {
		return err
	}
	detail, err := r.loadDetail(ctx, sess, cmd.StringArg("recipe-id"))
	if err != nil {
		return err
	}
	defer detail.Close()

	found := false
	for _, rv := range detail.State().Reviews {
		if rv.ID == reviewID {
			found = true
		}
	}
	if !found {
		return fmt.Errorf("%w: recipe has no review #%d", shared.ErrInvalidArgument, reviewID)
	}

	if err := detail.DeleteReview(ctx, reviewID); err != nil {
		return viewError(detail.State().Err, err)
	}
	r.writePlain("✓ Deleted review #%d\n", reviewID)
	return nil
}
