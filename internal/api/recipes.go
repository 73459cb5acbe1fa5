package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"path/filepath"
	"strconv"

	"github.com/buinguyenkhai/pttkht-20251-recipe-recommendation-system/internal/models"
)

// MaxFeatured is the largest count the featured endpoint accepts.
const MaxFeatured = 10

func pageQuery(skip, limit int) url.Values {
	q := url.Values{}
	if skip > 0 {
		q.Set("skip", strconv.Itoa(skip))
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	return q
}

func recipePath(id int, rest string) string {
	return "/recipes/" + strconv.Itoa(id) + rest
}

// ListRecipes returns one page of all recipes, newest first.
func (c *Client) ListRecipes(ctx context.Context, skip, limit int) (*models.RecipePage, error) {
	var page models.RecipePage
	if err := c.do(ctx, http.MethodGet, "/recipes/", pageQuery(skip, limit), nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// SearchRecipes runs GET /recipes/search/ with already-encoded search parameters.
func (c *Client) SearchRecipes(ctx context.Context, params url.Values) (*models.RecipePage, error) {
	var page models.RecipePage
	if err := c.do(ctx, http.MethodGet, "/recipes/search/", params, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// FeaturedRecipes returns up to count random recipes that have an image.
func (c *Client) FeaturedRecipes(ctx context.Context, count int) ([]models.FeaturedRecipe, error) {
	if count < 1 {
		count = 1
	}
	if count > MaxFeatured {
		count = MaxFeatured
	}
	var out []models.FeaturedRecipe
	q := url.Values{"count": {strconv.Itoa(count)}}
	if err := c.do(ctx, http.MethodGet, "/recipes/random-featured/", q, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetRecipe returns a single recipe.
func (c *Client) GetRecipe(ctx context.Context, id int) (*models.RecipeDetail, error) {
	var r models.RecipeDetail
	if err := c.do(ctx, http.MethodGet, recipePath(id, ""), nil, nil, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// RecipeIngredients returns the ingredient lines of a recipe.
func (c *Client) RecipeIngredients(ctx context.Context, id int) ([]models.RecipeIngredient, error) {
	var out []models.RecipeIngredient
	if err := c.do(ctx, http.MethodGet, recipePath(id, "/ingredients/"), nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// RecipeSteps returns the ordered steps of a recipe.
func (c *Client) RecipeSteps(ctx context.Context, id int) ([]models.Step, error) {
	var out []models.Step
	if err := c.do(ctx, http.MethodGet, recipePath(id, "/steps/"), nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// RecipeTags returns the tags of a recipe.
func (c *Client) RecipeTags(ctx context.Context, id int) ([]models.Tag, error) {
	var out []models.Tag
	if err := c.do(ctx, http.MethodGet, recipePath(id, "/tags/"), nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// RecipeNutrition returns the macros of a recipe, computed by the backend when missing.
func (c *Client) RecipeNutrition(ctx context.Context, id int) (*models.Nutrition, error) {
	var out models.Nutrition
	if err := c.do(ctx, http.MethodGet, recipePath(id, "/nutrition"), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateRecipe creates a recipe authored by the current user.
func (c *Client) CreateRecipe(ctx context.Context, in models.RecipeInput) (*models.Recipe, error) {
	if err := c.requireToken(); err != nil {
		return nil, err
	}
	var out models.Recipe
	if err := c.do(ctx, http.MethodPost, "/recipes/", nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateRecipe replaces a recipe the current user owns.
func (c *Client) UpdateRecipe(ctx context.Context, id int, in models.RecipeInput) (*models.Recipe, error) {
	if err := c.requireToken(); err != nil {
		return nil, err
	}
	var out models.Recipe
	if err := c.do(ctx, http.MethodPut, recipePath(id, ""), nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteRecipe deletes a recipe the current user owns.
func (c *Client) DeleteRecipe(ctx context.Context, id int) error {
	if err := c.requireToken(); err != nil {
		return err
	}
	return c.do(ctx, http.MethodDelete, recipePath(id, ""), nil, nil, nil)
}

// SaveRecipe adds a recipe to the user's saved list.
func (c *Client) SaveRecipe(ctx context.Context, id int) error {
	if err := c.requireToken(); err != nil {
		return err
	}
	return c.do(ctx, http.MethodPost, recipePath(id, "/save"), nil, nil, nil)
}

// UnsaveRecipe removes a recipe from the user's saved list.
func (c *Client) UnsaveRecipe(ctx context.Context, id int) error {
	if err := c.requireToken(); err != nil {
		return err
	}
	return c.do(ctx, http.MethodDelete, recipePath(id, "/save"), nil, nil, nil)
}

// UploadImage uploads an image as multipart form field "image" and returns its public URL.
func (c *Client) UploadImage(ctx context.Context, filename string, r io.Reader) (string, error) {
	if err := c.requireToken(); err != nil {
		return "", err
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("image", filepath.Base(filename))
	if err != nil {
		return "", fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return "", fmt.Errorf("failed to read image: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("failed to finish form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("/recipes/upload-image/", nil), &buf)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	data, err := c.send(ctx, req)
	if err != nil {
		return "", err
	}
	var out models.UploadedImage
	if err := decode(data, &out); err != nil {
		return "", err
	}
	return out.ImageURL, nil
}

// Tags returns the tag catalog with recipe counts.
func (c *Client) Tags(ctx context.Context) ([]models.Tag, error) {
	var out []models.Tag
	if err := c.do(ctx, http.MethodGet, "/tags/", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Ingredients returns the ingredient catalog with recipe counts.
func (c *Client) Ingredients(ctx context.Context) ([]models.Ingredient, error) {
	var out []models.Ingredient
	if err := c.do(ctx, http.MethodGet, "/ingredients/", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
