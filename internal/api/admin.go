package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/buinguyenkhai/pttkht-20251-recipe-recommendation-system/internal/models"
	"github.com/buinguyenkhai/pttkht-20251-recipe-recommendation-system/internal/shared"
)

// Sort keys accepted by the admin user dashboard.
const (
	SortCreatedRecipes = "created_recipes"
	SortReviewsCount   = "reviews_count"
	SortAverageRating  = "average_rating"
)

// ValidSortKey reports whether key is accepted by [Client.DashboardUsers].
func ValidSortKey(key string) bool {
	switch key {
	case SortCreatedRecipes, SortReviewsCount, SortAverageRating:
		return true
	}
	return false
}

// YearRange returns the start_date and end_date parameters that cover a calendar year.
func YearRange(year int) (start, end string) {
	return fmt.Sprintf("%04d-01-01T00:00:00", year), fmt.Sprintf("%04d-12-31T23:59:59", year)
}

// DashboardUsers lists users with activity counts, sorted descending by sortBy when set and
// limited to accounts created in year when year is non-zero.
func (c *Client) DashboardUsers(ctx context.Context, sortBy string, year int) ([]models.UserAdminView, error) {
	if err := c.requireToken(); err != nil {
		return nil, err
	}
	q := url.Values{}
	if sortBy != "" {
		if !ValidSortKey(sortBy) {
			return nil, fmt.Errorf("%w: unknown sort key %q", shared.ErrInvalidArgument, sortBy)
		}
		q.Set("sort_by", sortBy)
	}
	if year != 0 {
		start, end := YearRange(year)
		q.Set("start_date", start)
		q.Set("end_date", end)
	}

	var out []models.UserAdminView
	if err := c.do(ctx, http.MethodGet, "/admin/dashboard/users", q, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AdminDeleteUser deletes any user account.
func (c *Client) AdminDeleteUser(ctx context.Context, id int) error {
	if err := c.requireToken(); err != nil {
		return err
	}
	return c.do(ctx, http.MethodDelete, "/admin/users/"+strconv.Itoa(id), nil, nil, nil)
}

// AdminDeleteRecipe deletes any recipe.
func (c *Client) AdminDeleteRecipe(ctx context.Context, id int) error {
	if err := c.requireToken(); err != nil {
		return err
	}
	return c.do(ctx, http.MethodDelete, "/admin/recipes/"+strconv.Itoa(id), nil, nil, nil)
}

// AdminDeleteReview deletes any review.
func (c *Client) AdminDeleteReview(ctx context.Context, id int) error {
	if err := c.requireToken(); err != nil {
		return err
	}
	return c.do(ctx, http.MethodDelete, "/admin/reviews/"+strconv.Itoa(id), nil, nil, nil)
}

// Chart returns per-date counts for one of [models.ChartRecipes], [models.ChartUsers] or
// [models.ChartReviews].
func (c *Client) Chart(ctx context.Context, name string) (models.DateCounts, error) {
	if err := c.requireToken(); err != nil {
		return nil, err
	}
	switch name {
	case models.ChartRecipes, models.ChartUsers, models.ChartReviews:
	default:
		return nil, fmt.Errorf("%w: unknown chart %q", shared.ErrInvalidArgument, name)
	}

	out := models.DateCounts{}
	if err := c.do(ctx, http.MethodGet, "/admin/charts/"+name, nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GrantAdmin gives username admin privileges.
func (c *Client) GrantAdmin(ctx context.Context, username string) (*models.Message, error) {
	if err := c.requireToken(); err != nil {
		return nil, err
	}
	var out models.Message
	path := "/admin/users/" + url.PathEscape(username) + "/grant-admin"
	if err := c.do(ctx, http.MethodPost, path, nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
