package views

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/buinguyenkhai/pttkht-20251-recipe-recommendation-system/internal/models"
	"github.com/buinguyenkhai/pttkht-20251-recipe-recommendation-system/internal/shared"
	"golang.org/x/sync/errgroup"
)

const (
	CustomPlanFailure = "Failed to load your meal plan."
	CaloriesFailure   = "Failed to calculate calories for one or more people."
	EmptyPlan         = "Your plan is empty. Add some recipes before saving."
	RemoveFailure     = "Failed to remove recipe from plan."
	DefaultCustomName = "My Custom Plan"
)

// DefaultPerson is the profile a newly added person starts with.
var DefaultPerson = models.PersonProfile{Gender: models.Male, Weight: 70, FrequencyExercise: models.Moderate}

// CustomPlanSource is the custom meal plan API.
type CustomPlanSource interface {
	PlanSaver
	CustomPlan(ctx context.Context) ([]models.Recipe, error)
	RemoveFromCustomPlan(ctx context.Context, recipeID int) error
	CaloriesNeeded(ctx context.Context, p models.PersonProfile) (float64, error)
}

// CustomPlanState is the user's hand-built plan.
type CustomPlanState struct {
	Recipes []models.Recipe
	People  []models.PersonProfile
	// Needed is the summed daily need of every person, 0 until calculated.
	Needed  float64
	Loading bool
	Err     string
	Notice  string
}

// Totals are the rounded macros of the plan's recipes.
func (s CustomPlanState) Totals() models.NutritionTotals {
	return models.SumNutrition(s.Recipes).Rounded()
}

// Comparison reports how the plan's calories relate to the calculated need.
func (s CustomPlanState) Comparison() (models.CalorieComparison, bool) {
	return models.CompareCalories(s.Totals().Calories, s.Needed)
}

// CustomPlan is the custom meal plan screen.
type CustomPlan struct {
	src    CustomPlanSource
	sess   Session
	latest Latest

	mu    sync.Mutex
	state CustomPlanState
}

func NewCustomPlan(src CustomPlanSource, sess Session) *CustomPlan {
	return &CustomPlan{
		src:   src,
		sess:  sess,
		state: CustomPlanState{People: []models.PersonProfile{DefaultPerson}},
	}
}

func (v *CustomPlan) State() CustomPlanState {
	v.mu.Lock()
	defer v.mu.Unlock()
	s := v.state
	s.Recipes = append([]models.Recipe(nil), v.state.Recipes...)
	s.People = append([]models.PersonProfile(nil), v.state.People...)
	return s
}

func (v *CustomPlan) setErr(msg string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.state.Err = msg
}

// Load fetches the plan's recipes.
func (v *CustomPlan) Load(ctx context.Context) error {
	if !v.sess.Authenticated() {
		return fmt.Errorf("%w: login to view your meal plan", shared.ErrNotAuthenticated)
	}
	ctx, seq := v.latest.Begin(ctx)
	v.mu.Lock()
	v.state.Loading = true
	v.mu.Unlock()

	recipes, err := v.src.CustomPlan(ctx)

	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.latest.Current(seq) {
		return nil
	}
	v.state.Loading = false
	if err != nil {
		v.state.Recipes = nil
		v.state.Err = describe(v.sess, err, CustomPlanFailure)
		return err
	}
	v.state.Recipes = recipes
	v.state.Err = ""
	return nil
}

// AddPerson appends a person with [DefaultPerson]'s profile.
func (v *CustomPlan) AddPerson() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.state.People = append(v.state.People, DefaultPerson)
	v.state.Needed = 0
	return len(v.state.People)
}

// RemovePerson drops the person at index i. The last person cannot be removed.
func (v *CustomPlan) RemovePerson(i int) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if i < 0 || i >= len(v.state.People) {
		return fmt.Errorf("%w: no person %d", shared.ErrInvalidArgument, i+1)
	}
	if len(v.state.People) == 1 {
		return fmt.Errorf("%w: a plan needs at least one person", shared.ErrInvalidArgument)
	}
	v.state.People = append(v.state.People[:i], v.state.People[i+1:]...)
	v.state.Needed = 0
	return nil
}

// SetPerson replaces the profile at index i.
func (v *CustomPlan) SetPerson(i int, p models.PersonProfile) error {
	if err := p.Validate(); err != nil {
		return shared.Invalid("person", err.Error())
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	if i < 0 || i >= len(v.state.People) {
		return fmt.Errorf("%w: no person %d", shared.ErrInvalidArgument, i+1)
	}
	v.state.People[i] = p
	v.state.Needed = 0
	return nil
}

// Calculate asks the backend for each person's daily calories and stores the sum. A single
// failure discards the whole result.
func (v *CustomPlan) Calculate(ctx context.Context) (float64, error) {
	people := v.State().People
	for i, p := range people {
		if err := p.Validate(); err != nil {
			err = shared.Invalid("person", fmt.Sprintf("Person %d: %s", i+1, err))
			v.setErr(err.Error())
			return 0, err
		}
	}

	needs := make([]float64, len(people))
	g, gctx := errgroup.WithContext(ctx)
	for i, p := range people {
		g.Go(func() error {
			n, err := v.src.CaloriesNeeded(gctx, p)
			needs[i] = n
			return err
		})
	}
	if err := g.Wait(); err != nil {
		v.mu.Lock()
		v.state.Needed = 0
		v.mu.Unlock()
		v.setErr(describe(v.sess, err, CaloriesFailure))
		return 0, err
	}

	var total float64
	for _, n := range needs {
		total += n
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	v.state.Needed = total
	v.state.Err = ""
	return total, nil
}

// Remove takes a recipe out of the plan.
func (v *CustomPlan) Remove(ctx context.Context, recipeID int) error {
	if err := v.src.RemoveFromCustomPlan(ctx, recipeID); err != nil {
		v.setErr(describe(v.sess, err, RemoveFailure))
		return err
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	kept := v.state.Recipes[:0]
	for _, r := range v.state.Recipes {
		if r.ID != recipeID {
			kept = append(kept, r)
		}
	}
	v.state.Recipes = kept
	return nil
}

// Clear removes every recipe from the plan, stopping at the first failure.
func (v *CustomPlan) Clear(ctx context.Context) error {
	for _, id := range models.IDs(v.State().Recipes) {
		if err := v.Remove(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// Save stores the plan under name, or [DefaultCustomName] when name is blank.
func (v *CustomPlan) Save(ctx context.Context, name string) (*models.SavedMealPlan, error) {
	st := v.State()
	if len(st.Recipes) == 0 {
		err := shared.Invalid("recipes", EmptyPlan)
		v.setErr(err.Error())
		return nil, err
	}
	if strings.TrimSpace(name) == "" {
		name = DefaultCustomName
	}
	name, err := ValidatePlanName(name)
	if err != nil {
		v.setErr(err.Error())
		return nil, err
	}

	plan, err := v.src.SavePlan(ctx, models.SavedMealPlanInput{
		Name:      name,
		RecipeIDs: models.IDs(st.Recipes),
		Nutrition: st.Totals(),
	})
	if err != nil {
		v.setErr(describe(v.sess, err, SavePlanFailure))
		return nil, err
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	v.state.Err = ""
	v.state.Notice = fmt.Sprintf("Saved %q.", plan.Name)
	return plan, nil
}

func (v *CustomPlan) Close() { v.latest.Stop() }
