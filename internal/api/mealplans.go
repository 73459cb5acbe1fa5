package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/buinguyenkhai/pttkht-20251-recipe-recommendation-system/internal/models"
)

// RandomMeal returns the recipes of a random pre-built meal for numPeople.
func (c *Client) RandomMeal(ctx context.Context, numPeople int) ([]models.Recipe, error) {
	var out []models.Recipe
	q := url.Values{"num_people": {strconv.Itoa(numPeople)}}
	if err := c.do(ctx, http.MethodGet, "/random_meal/", q, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CustomPlan returns the recipes in the user's custom meal plan.
func (c *Client) CustomPlan(ctx context.Context) ([]models.Recipe, error) {
	if err := c.requireToken(); err != nil {
		return nil, err
	}
	var out []models.Recipe
	if err := c.do(ctx, http.MethodGet, "/custom-meal-plan/", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AddToCustomPlan adds a recipe to the user's custom meal plan.
func (c *Client) AddToCustomPlan(ctx context.Context, recipeID int) error {
	if err := c.requireToken(); err != nil {
		return err
	}
	return c.do(ctx, http.MethodPost, "/custom-meal-plan/recipe/"+strconv.Itoa(recipeID), nil, nil, nil)
}

// RemoveFromCustomPlan removes a recipe from the user's custom meal plan.
func (c *Client) RemoveFromCustomPlan(ctx context.Context, recipeID int) error {
	if err := c.requireToken(); err != nil {
		return err
	}
	return c.do(ctx, http.MethodDelete, "/custom-meal-plan/recipe/"+strconv.Itoa(recipeID), nil, nil, nil)
}

// CaloriesNeeded asks the backend for the daily calorie needs of one person.
func (c *Client) CaloriesNeeded(ctx context.Context, p models.PersonProfile) (float64, error) {
	if err := c.requireToken(); err != nil {
		return 0, err
	}
	var out models.CaloriesNeeded
	if err := c.do(ctx, http.MethodPost, "/custom-meal-plan/calculate-and-get-plan", nil, p, &out); err != nil {
		return 0, err
	}
	return out.CaloriesNeeded, nil
}

// SavedPlans lists the user's saved meal plans.
func (c *Client) SavedPlans(ctx context.Context) ([]models.SavedMealPlanInfo, error) {
	if err := c.requireToken(); err != nil {
		return nil, err
	}
	var out []models.SavedMealPlanInfo
	if err := c.do(ctx, http.MethodGet, "/saved-meal-plans/", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SavedPlan returns one saved plan with its recipes.
func (c *Client) SavedPlan(ctx context.Context, id int) (*models.SavedMealPlan, error) {
	if err := c.requireToken(); err != nil {
		return nil, err
	}
	var out models.SavedMealPlan
	if err := c.do(ctx, http.MethodGet, "/saved-meal-plans/"+strconv.Itoa(id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SavePlan stores a meal plan under a name.
func (c *Client) SavePlan(ctx context.Context, in models.SavedMealPlanInput) (*models.SavedMealPlan, error) {
	if err := c.requireToken(); err != nil {
		return nil, err
	}
	var out models.SavedMealPlan
	if err := c.do(ctx, http.MethodPost, "/saved-meal-plans/", nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RenamePlan changes the name of a saved plan.
func (c *Client) RenamePlan(ctx context.Context, id int, name string) (*models.SavedMealPlanInfo, error) {
	if err := c.requireToken(); err != nil {
		return nil, err
	}
	var out models.SavedMealPlanInfo
	path := "/saved-meal-plans/" + strconv.Itoa(id) + "/name"
	if err := c.do(ctx, http.MethodPut, path, nil, models.PlanName{Name: name}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeletePlan deletes a saved plan.
func (c *Client) DeletePlan(ctx context.Context, id int) error {
	if err := c.requireToken(); err != nil {
		return err
	}
	return c.do(ctx, http.MethodDelete, "/saved-meal-plans/"+strconv.Itoa(id), nil, nil, nil)
}
