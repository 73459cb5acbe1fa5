package views

import (
	"context"
	"fmt"
	"sync"

	"github.com/buinguyenkhai/pttkht-20251-recipe-recommendation-system/internal/api"
	"github.com/buinguyenkhai/pttkht-20251-recipe-recommendation-system/internal/models"
	"github.com/buinguyenkhai/pttkht-20251-recipe-recommendation-system/internal/shared"
)

// FeaturedCount is how many featured recipes the home screen asks for.
const FeaturedCount = api.MaxFeatured

// Fallback messages for list screens.
const (
	ListFailure     = "Failed to fetch recipes."
	FeaturedFailure = "Could not fetch featured recipes."
)

// RecipeSource lists recipes for the home screen.
type RecipeSource interface {
	ListRecipes(ctx context.Context, skip, limit int) (*models.RecipePage, error)
	FeaturedRecipes(ctx context.Context, count int) ([]models.FeaturedRecipe, error)
}

// ListState is a page of recipes.
type ListState struct {
	Recipes    []models.Recipe
	Pagination models.Pagination
	Loading    bool
	Err        string
}

// Empty reports a successful load with no recipes.
func (s ListState) Empty() bool { return !s.Loading && s.Err == "" && len(s.Recipes) == 0 }

func (s ListState) clone() ListState {
	s.Recipes = append([]models.Recipe(nil), s.Recipes...)
	return s
}

// RecipeList is the home screen: every recipe, newest first, plus the featured carousel.
type RecipeList struct {
	src      RecipeSource
	pageSize int

	pageReq     Latest
	featuredReq Latest

	mu          sync.Mutex
	state       ListState
	featured    []models.FeaturedRecipe
	featuredErr string
}

// NewRecipeList creates the home screen on page 1.
func NewRecipeList(src RecipeSource, pageSize int) *RecipeList {
	if pageSize <= 0 {
		pageSize = models.DefaultPageSize
	}
	return &RecipeList{
		src:      src,
		pageSize: pageSize,
		state:    ListState{Pagination: models.NewPagination(1, pageSize, 0)},
	}
}

func (v *RecipeList) State() ListState {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state.clone()
}

// Featured returns the featured recipes and the message of the last failed fetch.
func (v *RecipeList) Featured() ([]models.FeaturedRecipe, string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]models.FeaturedRecipe(nil), v.featured...), v.featuredErr
}

// Load fetches page n (clamped to 1 or more).
func (v *RecipeList) Load(ctx context.Context, n int) error {
	p := models.NewPagination(n, v.pageSize, 0)
	ctx, seq := v.pageReq.Begin(ctx)

	v.mu.Lock()
	v.state.Loading = true
	v.mu.Unlock()

	page, err := v.src.ListRecipes(ctx, p.Skip(), p.PageSize)

	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.pageReq.Current(seq) {
		return nil
	}
	v.state.Loading = false
	if err != nil {
		v.state.Recipes = nil
		v.state.Err = api.Message(err, ListFailure)
		return err
	}
	v.state.Err = ""
	v.state.Recipes = page.Recipes
	v.state.Pagination = models.NewPagination(p.Page, v.pageSize, page.TotalCount)
	return nil
}

// LoadFeatured fetches the featured carousel. Failures leave the carousel empty.
func (v *RecipeList) LoadFeatured(ctx context.Context) error {
	ctx, seq := v.featuredReq.Begin(ctx)
	out, err := v.src.FeaturedRecipes(ctx, FeaturedCount)

	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.featuredReq.Current(seq) {
		return nil
	}
	if err != nil {
		v.featured, v.featuredErr = nil, api.Message(err, FeaturedFailure)
		return err
	}
	v.featured, v.featuredErr = out, ""
	return nil
}

// Goto loads page n clamped to the known page range.
func (v *RecipeList) Goto(ctx context.Context, n int) error {
	return v.Load(ctx, v.State().Pagination.Clamp(n))
}

func (v *RecipeList) First(ctx context.Context) error { return v.Goto(ctx, 1) }

func (v *RecipeList) Prev(ctx context.Context) error {
	return v.Goto(ctx, v.State().Pagination.Page-1)
}

func (v *RecipeList) Next(ctx context.Context) error {
	return v.Goto(ctx, v.State().Pagination.Page+1)
}

func (v *RecipeList) Last(ctx context.Context) error {
	return v.Goto(ctx, v.State().Pagination.TotalPages())
}

// Close cancels outstanding requests.
func (v *RecipeList) Close() {
	v.pageReq.Stop()
	v.featuredReq.Stop()
}

// ProfileKind selects one of the user's recipe lists.
type ProfileKind int

const (
	SavedRecipes ProfileKind = iota
	CreatedRecipes
)

func (k ProfileKind) String() string {
	if k == CreatedRecipes {
		return "created"
	}
	return "saved"
}

// ProfileSource lists the signed-in user's recipes.
type ProfileSource interface {
	SavedRecipes(ctx context.Context, skip, limit int) (*models.RecipePage, error)
	CreatedRecipes(ctx context.Context, skip, limit int) (*models.RecipePage, error)
}

// ProfileRecipes is the saved or created recipe list of the signed-in user.
type ProfileRecipes struct {
	src      ProfileSource
	sess     Session
	kind     ProfileKind
	pageSize int
	latest   Latest

	mu    sync.Mutex
	state ListState
}

func NewProfileRecipes(src ProfileSource, sess Session, kind ProfileKind, pageSize int) *ProfileRecipes {
	if pageSize <= 0 {
		pageSize = models.DefaultPageSize
	}
	return &ProfileRecipes{
		src:      src,
		sess:     sess,
		kind:     kind,
		pageSize: pageSize,
		state:    ListState{Pagination: models.NewPagination(1, pageSize, 0)},
	}
}

func (v *ProfileRecipes) State() ListState {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state.clone()
}

// Load fetches page n. It requires a signed-in user.
func (v *ProfileRecipes) Load(ctx context.Context, n int) error {
	if !v.sess.Authenticated() {
		return fmt.Errorf("%w: login to see your %s recipes", shared.ErrNotAuthenticated, v.kind)
	}

	p := models.NewPagination(n, v.pageSize, 0)
	ctx, seq := v.latest.Begin(ctx)

	v.mu.Lock()
	v.state.Loading = true
	v.mu.Unlock()

	var (
		page *models.RecipePage
		err  error
	)
	if v.kind == CreatedRecipes {
		page, err = v.src.CreatedRecipes(ctx, p.Skip(), p.PageSize)
	} else {
		page, err = v.src.SavedRecipes(ctx, p.Skip(), p.PageSize)
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.latest.Current(seq) {
		return nil
	}
	v.state.Loading = false
	if err != nil {
		v.state.Recipes = nil
		v.state.Err = describe(v.sess, err, fmt.Sprintf("Failed to fetch %s recipes.", v.kind))
		return err
	}
	v.state.Err = ""
	v.state.Recipes = page.Recipes
	v.state.Pagination = models.NewPagination(p.Page, v.pageSize, page.TotalCount)
	return nil
}

// Goto loads page n clamped to the known page range.
func (v *ProfileRecipes) Goto(ctx context.Context, n int) error {
	return v.Load(ctx, v.State().Pagination.Clamp(n))
}

func (v *ProfileRecipes) Close() { v.latest.Stop() }
