package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/buinguyenkhai/pttkht-20251-recipe-recommendation-system/internal/models"
)

// Reviews lists the reviews of a recipe.
func (c *Client) Reviews(ctx context.Context, recipeID int) ([]models.Review, error) {
	var out []models.Review
	if err := c.do(ctx, http.MethodGet, recipePath(recipeID, "/reviews"), nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateReview posts a review on a recipe.
func (c *Client) CreateReview(ctx context.Context, recipeID int, in models.ReviewInput) (*models.Review, error) {
	if err := c.requireToken(); err != nil {
		return nil, err
	}
	var out models.Review
	if err := c.do(ctx, http.MethodPost, recipePath(recipeID, "/reviews"), nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateReview edits one of the user's reviews.
func (c *Client) UpdateReview(ctx context.Context, reviewID int, in models.ReviewInput) (*models.Review, error) {
	if err := c.requireToken(); err != nil {
		return nil, err
	}
	var out models.Review
	if err := c.do(ctx, http.MethodPut, "/reviews/"+strconv.Itoa(reviewID), nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteReview deletes one of the user's reviews.
func (c *Client) DeleteReview(ctx context.Context, reviewID int) error {
	if err := c.requireToken(); err != nil {
		return err
	}
	return c.do(ctx, http.MethodDelete, "/reviews/"+strconv.Itoa(reviewID), nil, nil, nil)
}
