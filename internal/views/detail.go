package views

import (
	"context"
	"fmt"
	"sync"
	"unicode/utf8"

	"github.com/buinguyenkhai/pttkht-20251-recipe-recommendation-system/internal/models"
	"github.com/buinguyenkhai/pttkht-20251-recipe-recommendation-system/internal/shared"
	"golang.org/x/sync/errgroup"
)

// MaxReviewLength is the longest review text accepted.
const MaxReviewLength = 500

// Messages shown by the detail screen.
const (
	RecipeNotFound      = "Recipe not found"
	DeleteRecipeFailure = "Failed to delete recipe."
	AddToPlanFailure    = "Failed to add recipe to plan."
	ReviewFailure       = "Failed to submit review"
	DeleteReviewFailure = "Failed to delete review"
	RatingRequired      = "A star rating is required to submit a review."
)

// DetailSource is everything the detail screen reads and writes.
type DetailSource interface {
	GetRecipe(ctx context.Context, id int) (*models.RecipeDetail, error)
	RecipeIngredients(ctx context.Context, id int) ([]models.RecipeIngredient, error)
	RecipeSteps(ctx context.Context, id int) ([]models.Step, error)
	RecipeTags(ctx context.Context, id int) ([]models.Tag, error)
	RecipeNutrition(ctx context.Context, id int) (*models.Nutrition, error)
	Reviews(ctx context.Context, recipeID int) ([]models.Review, error)

	DeleteRecipe(ctx context.Context, id int) error
	AdminDeleteRecipe(ctx context.Context, id int) error
	AddToCustomPlan(ctx context.Context, recipeID int) error

	CreateReview(ctx context.Context, recipeID int, in models.ReviewInput) (*models.Review, error)
	UpdateReview(ctx context.Context, reviewID int, in models.ReviewInput) (*models.Review, error)
	DeleteReview(ctx context.Context, reviewID int) error
	AdminDeleteReview(ctx context.Context, id int) error
}

// DetailState is one recipe with everything shown alongside it.
type DetailState struct {
	Recipe      *models.RecipeDetail
	Ingredients []models.RecipeIngredient
	Steps       []models.Step
	Tags        []models.Tag
	Reviews     []models.Review
	// Nutrition is nil when the backend could not provide it.
	Nutrition *models.Nutrition
	Stats     models.RatingStats
	Saved     bool
	Loading   bool
	Err       string
}

// RecipeDetail is the single recipe screen.
type RecipeDetail struct {
	src    DetailSource
	sess   Session
	latest Latest

	mu    sync.Mutex
	state DetailState
}

func NewRecipeDetail(src DetailSource, sess Session) *RecipeDetail {
	return &RecipeDetail{src: src, sess: sess}
}

func (v *RecipeDetail) State() DetailState {
	v.mu.Lock()
	defer v.mu.Unlock()
	s := v.state
	s.Reviews = append([]models.Review(nil), v.state.Reviews...)
	return s
}

// Load fetches the recipe and its sub-resources concurrently. Missing nutrition is tolerated;
// any other failure fails the screen.
func (v *RecipeDetail) Load(ctx context.Context, id int) error {
	ctx, seq := v.latest.Begin(ctx)
	v.mu.Lock()
	v.state = DetailState{Loading: true}
	v.mu.Unlock()

	var next DetailState
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		r, err := v.src.GetRecipe(gctx, id)
		if err != nil {
			return err
		}
		next.Recipe = r
		return nil
	})
	g.Go(func() (err error) {
		next.Ingredients, err = v.src.RecipeIngredients(gctx, id)
		return err
	})
	g.Go(func() (err error) {
		next.Steps, err = v.src.RecipeSteps(gctx, id)
		return err
	})
	g.Go(func() (err error) {
		next.Tags, err = v.src.RecipeTags(gctx, id)
		return err
	})
	g.Go(func() (err error) {
		next.Reviews, err = v.src.Reviews(gctx, id)
		return err
	})
	g.Go(func() error {
		if n, err := v.src.RecipeNutrition(gctx, id); err == nil {
			next.Nutrition = n
		}
		return nil
	})
	err := g.Wait()

	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.latest.Current(seq) {
		return nil
	}
	if err != nil {
		v.state = DetailState{Err: describe(v.sess, err, RecipeNotFound)}
		return err
	}
	next.Stats = models.NewRatingStats(next.Reviews)
	next.Saved = v.sess.Authenticated() && v.sess.IsSaved(next.Recipe.ID)
	v.state = next
	return nil
}

func (v *RecipeDetail) recipe() (models.Recipe, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.state.Recipe == nil {
		return models.Recipe{}, fmt.Errorf("%w: no recipe loaded", shared.ErrRecipeNotFound)
	}
	return v.state.Recipe.Recipe, nil
}

func (v *RecipeDetail) setErr(msg string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.state.Err = msg
}

// CanModify reports whether the signed-in user may edit or delete the loaded recipe.
func (v *RecipeDetail) CanModify() bool {
	r, err := v.recipe()
	if err != nil {
		return false
	}
	return v.sess.IsAdmin() || isOwner(v.sess, r)
}

// Delete removes the recipe, through the admin endpoint when the user is an admin.
func (v *RecipeDetail) Delete(ctx context.Context) error {
	r, err := v.recipe()
	if err != nil {
		return err
	}
	if !v.sess.Authenticated() {
		return fmt.Errorf("%w: login to delete recipes", shared.ErrNotAuthenticated)
	}

	if v.sess.IsAdmin() {
		err = v.src.AdminDeleteRecipe(ctx, r.ID)
	} else {
		err = v.src.DeleteRecipe(ctx, r.ID)
	}
	if err != nil {
		v.setErr(describe(v.sess, err, DeleteRecipeFailure))
		return err
	}

	v.mu.Lock()
	v.state = DetailState{}
	v.mu.Unlock()
	return nil
}

// ToggleSave flips the saved state through the session.
func (v *RecipeDetail) ToggleSave(ctx context.Context) (bool, error) {
	r, err := v.recipe()
	if err != nil {
		return false, err
	}
	saved, err := v.sess.ToggleSave(ctx, r.ID)

	v.mu.Lock()
	defer v.mu.Unlock()
	v.state.Saved = v.sess.IsSaved(r.ID)
	return saved, err
}

// AddToCustomPlan adds the recipe to the user's custom meal plan.
func (v *RecipeDetail) AddToCustomPlan(ctx context.Context) error {
	r, err := v.recipe()
	if err != nil {
		return err
	}
	if !v.sess.Authenticated() {
		return fmt.Errorf("%w: login to build a meal plan", shared.ErrNotAuthenticated)
	}
	if err := v.src.AddToCustomPlan(ctx, r.ID); err != nil {
		v.setErr(describe(v.sess, err, AddToPlanFailure))
		return err
	}
	return nil
}

// OwnReview returns the signed-in user's review of the recipe, if any.
func (v *RecipeDetail) OwnReview() *models.Review {
	u := v.sess.User()
	if u == nil {
		return nil
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	for _, r := range v.state.Reviews {
		if r.User != nil && r.User.ID == u.ID {
			rv := r
			return &rv
		}
	}
	return nil
}

// ValidateReview checks a review before it is sent.
func ValidateReview(rating int, text string) error {
	if rating == 0 {
		return shared.Invalid("rating", RatingRequired)
	}
	if rating < 1 || rating > 5 {
		return shared.Invalid("rating", "Rating must be between 1 and 5.")
	}
	if utf8.RuneCountInString(text) > MaxReviewLength {
		return shared.Invalid("text", fmt.Sprintf("Review must be at most %d characters.", MaxReviewLength))
	}
	return nil
}

// SubmitReview creates the user's review, or updates it when one exists.
func (v *RecipeDetail) SubmitReview(ctx context.Context, rating int, text string) (*models.Review, error) {
	if err := ValidateReview(rating, text); err != nil {
		v.setErr(err.Error())
		return nil, err
	}
	r, err := v.recipe()
	if err != nil {
		return nil, err
	}
	if !v.sess.Authenticated() {
		return nil, fmt.Errorf("%w: login to review recipes", shared.ErrNotAuthenticated)
	}

	in := models.ReviewInput{Rating: &rating, Text: &text}
	own := v.OwnReview()

	var saved *models.Review
	if own != nil {
		saved, err = v.src.UpdateReview(ctx, own.ID, in)
	} else {
		saved, err = v.src.CreateReview(ctx, r.ID, in)
	}
	if err != nil {
		v.setErr(describe(v.sess, err, ReviewFailure))
		return nil, err
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	replaced := false
	for i := range v.state.Reviews {
		if v.state.Reviews[i].ID == saved.ID {
			v.state.Reviews[i] = *saved
			replaced = true
		}
	}
	if !replaced {
		v.state.Reviews = append([]models.Review{*saved}, v.state.Reviews...)
	}
	v.state.Stats = models.NewRatingStats(v.state.Reviews)
	v.state.Err = ""
	return saved, nil
}

// DeleteReview removes a review. Admins deleting someone else's review use the admin endpoint.
func (v *RecipeDetail) DeleteReview(ctx context.Context, reviewID int) error {
	if !v.sess.Authenticated() {
		return fmt.Errorf("%w: login to delete reviews", shared.ErrNotAuthenticated)
	}

	own := v.OwnReview()
	isOwn := own != nil && own.ID == reviewID

	var err error
	if v.sess.IsAdmin() && !isOwn {
		err = v.src.AdminDeleteReview(ctx, reviewID)
	} else {
		err = v.src.DeleteReview(ctx, reviewID)
	}
	if err != nil {
		v.setErr(describe(v.sess, err, DeleteReviewFailure))
		return err
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	kept := v.state.Reviews[:0]
	for _, r := range v.state.Reviews {
		if r.ID != reviewID {
			kept = append(kept, r)
		}
	}
	v.state.Reviews = kept
	v.state.Stats = models.NewRatingStats(kept)
	return nil
}

func (v *RecipeDetail) Close() { v.latest.Stop() }
