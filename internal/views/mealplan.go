package views

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/buinguyenkhai/pttkht-20251-recipe-recommendation-system/internal/models"
	"github.com/buinguyenkhai/pttkht-20251-recipe-recommendation-system/internal/shared"
)

// DefaultPeople is how many people a generated meal is sized for until changed.
const DefaultPeople = 2

const (
	NoMealToSave    = "You must generate a meal before saving."
	SavePlanFailure = "Failed to save the meal plan."
)

// PlanSaver stores a meal plan under a name.
type PlanSaver interface {
	SavePlan(ctx context.Context, in models.SavedMealPlanInput) (*models.SavedMealPlan, error)
}

// MealPlanSource generates random meals and saves them.
type MealPlanSource interface {
	PlanSaver
	RandomMeal(ctx context.Context, numPeople int) ([]models.Recipe, error)
}

// ValidatePlanName trims name and checks its length against the backend bounds.
func ValidatePlanName(name string) (string, error) {
	name = strings.TrimSpace(name)
	n := utf8.RuneCountInString(name)
	if n < models.MinPlanNameLength {
		return "", shared.Invalid("name", fmt.Sprintf("Plan name must be at least %d characters long.", models.MinPlanNameLength))
	}
	if n > models.MaxPlanNameLength {
		return "", shared.Invalid("name", fmt.Sprintf("Plan name must be at most %d characters long.", models.MaxPlanNameLength))
	}
	return name, nil
}

// MealPlanState is the generated meal and its totals.
type MealPlanState struct {
	NumPeople int
	Recipes   []models.Recipe
	Totals    models.NutritionTotals
	Loading   bool
	Err       string
	Notice    string
}

// MealPlan is the "surprise me" meal generator.
type MealPlan struct {
	src    MealPlanSource
	sess   Session
	latest Latest

	mu    sync.Mutex
	state MealPlanState
}

func NewMealPlan(src MealPlanSource, sess Session) *MealPlan {
	return &MealPlan{src: src, sess: sess, state: MealPlanState{NumPeople: DefaultPeople}}
}

func (v *MealPlan) State() MealPlanState {
	v.mu.Lock()
	defer v.mu.Unlock()
	s := v.state
	s.Recipes = append([]models.Recipe(nil), v.state.Recipes...)
	return s
}

// DefaultPlanName is the name offered when saving a meal for n people.
func DefaultPlanName(n int) string {
	return fmt.Sprintf("Chef's Plan for %d people", n)
}

// Generate asks the backend for a random meal sized for n people.
func (v *MealPlan) Generate(ctx context.Context, n int) error {
	if n < 1 {
		err := shared.Invalid("people", "Number of people must be at least 1.")
		v.mu.Lock()
		v.state.Err = err.Error()
		v.mu.Unlock()
		return err
	}

	ctx, seq := v.latest.Begin(ctx)
	v.mu.Lock()
	v.state.NumPeople = n
	v.state.Loading = true
	v.state.Err, v.state.Notice = "", ""
	v.mu.Unlock()

	recipes, err := v.src.RandomMeal(ctx, n)

	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.latest.Current(seq) {
		return nil
	}
	v.state.Loading = false
	if err != nil {
		v.state.Recipes = nil
		v.state.Totals = models.NutritionTotals{}
		v.state.Err = describe(v.sess, err, fmt.Sprintf("Could not find a meal plan for %d people.", n))
		return err
	}
	v.state.Recipes = recipes
	v.state.Totals = models.SumNutrition(recipes).Rounded()
	return nil
}

// Save stores the generated meal. An empty name uses [DefaultPlanName].
func (v *MealPlan) Save(ctx context.Context, name string) (*models.SavedMealPlan, error) {
	v.mu.Lock()
	recipes := v.state.Recipes
	totals := v.state.Totals
	people := v.state.NumPeople
	v.mu.Unlock()

	if len(recipes) == 0 {
		return nil, v.fail(shared.Invalid("recipes", NoMealToSave))
	}
	if !v.sess.Authenticated() {
		return nil, fmt.Errorf("%w: login to save meal plans", shared.ErrNotAuthenticated)
	}
	if strings.TrimSpace(name) == "" {
		name = DefaultPlanName(people)
	}
	name, err := ValidatePlanName(name)
	if err != nil {
		return nil, v.fail(err)
	}

	plan, err := v.src.SavePlan(ctx, models.SavedMealPlanInput{
		Name:      name,
		RecipeIDs: models.IDs(recipes),
		Nutrition: totals,
	})
	if err != nil {
		v.mu.Lock()
		v.state.Err = describe(v.sess, err, SavePlanFailure)
		v.mu.Unlock()
		return nil, err
	}

	v.mu.Lock()
	v.state.Err = ""
	v.state.Notice = fmt.Sprintf("Saved %q.", plan.Name)
	v.mu.Unlock()
	return plan, nil
}

func (v *MealPlan) fail(err error) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.state.Err = err.Error()
	return err
}

func (v *MealPlan) Close() { v.latest.Stop() }
