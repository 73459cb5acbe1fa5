package models

import "strings"

// DeletedCreator is what the backend reports for recipes whose author no longer exists.
const DeletedCreator = "Deleted user"

// Recipe is one entry of a recipe listing.
type Recipe struct {
	ID              int       `json:"recipe_id"`
	Title           string    `json:"title"`
	Description     *string   `json:"description,omitempty"`
	ImageURL        *string   `json:"image_url,omitempty"`
	Calories        *float64  `json:"calories,omitempty"`
	Protein         *float64  `json:"protein,omitempty"`
	Fat             *float64  `json:"fat,omitempty"`
	Carbs           *float64  `json:"carbs,omitempty"`
	Date            Timestamp `json:"date"`
	CreatorUsername *string   `json:"creator_username,omitempty"`
	Tags            []string  `json:"tags"`
	Servings        *string   `json:"servings,omitempty"`
}

// RecipeDetail is a single recipe as returned by GET /recipes/{id}.
type RecipeDetail struct {
	Recipe
	IsSaved bool `json:"is_saved"`
}

// FeaturedRecipe is the reduced payload used by the featured carousel.
type FeaturedRecipe struct {
	ID       int    `json:"recipe_id"`
	Title    string `json:"title"`
	ImageURL string `json:"image_url"`
}

// RecipePage is one page of a recipe listing along with the size of the full result set.
type RecipePage struct {
	Recipes    []Recipe `json:"recipes"`
	TotalCount int      `json:"total_count"`
}

// RecipeIngredient is an ingredient line of a recipe.
type RecipeIngredient struct {
	Name     string `json:"name"`
	Quantity string `json:"quantity"`
	Unit     string `json:"unit,omitempty"`
}

// Step is one numbered instruction of a recipe.
type Step struct {
	RecipeID int    `json:"recipe_id"`
	Number   int    `json:"step_number"`
	Detail   string `json:"step_detail"`
}

// Tag is a recipe tag. RecipeCount is only filled by the catalog endpoint.
type Tag struct {
	ID          int    `json:"tag_id"`
	Name        string `json:"tag_name"`
	RecipeCount int    `json:"recipe_count,omitempty"`
}

// Ingredient is a catalog ingredient with the number of recipes using it.
type Ingredient struct {
	ID          int    `json:"ingredient_id"`
	Name        string `json:"name"`
	RecipeCount int    `json:"recipe_count,omitempty"`
}

// Nutrition holds per-recipe macros.
type Nutrition struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Fat      float64 `json:"fat"`
	Carbs    float64 `json:"carbs"`
}

// RecipeInput is the payload of recipe create and update.
type RecipeInput struct {
	Title       string             `json:"title"`
	Description string             `json:"description"`
	Servings    string             `json:"servings"`
	Steps       []string           `json:"steps"`
	Tags        []string           `json:"tags"`
	Ingredients []RecipeIngredient `json:"ingredients"`
	ImageURL    *string            `json:"image_url,omitempty"`
}

// UploadedImage is the response of the image upload endpoint.
type UploadedImage struct {
	ImageURL string `json:"image_url"`
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func orZero(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}

// DescriptionOrEmpty returns the description for display.
func (r Recipe) DescriptionOrEmpty() string { return deref(r.Description) }

// ImageURLOrEmpty returns the image URL for display.
func (r Recipe) ImageURLOrEmpty() string { return deref(r.ImageURL) }

// Creator returns the author's username, reporting [DeletedCreator] when absent.
func (r Recipe) Creator() string {
	if c := deref(r.CreatorUsername); c != "" {
		return c
	}
	return DeletedCreator
}

// CaloriesOrZero treats a missing calorie value as zero.
func (r Recipe) CaloriesOrZero() float64 { return orZero(r.Calories) }

// Macros returns the recipe's nutrition with missing values as zero.
func (r Recipe) Macros() Nutrition {
	return Nutrition{
		Calories: orZero(r.Calories),
		Protein:  orZero(r.Protein),
		Fat:      orZero(r.Fat),
		Carbs:    orZero(r.Carbs),
	}
}

// HasTag reports whether the recipe carries tag, ignoring case.
func (r Recipe) HasTag(tag string) bool {
	for _, t := range r.Tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

// IDs returns the recipe ids in order.
func IDs(recipes []Recipe) []int {
	ids := make([]int, 0, len(recipes))
	for _, r := range recipes {
		ids = append(ids, r.ID)
	}
	return ids
}
