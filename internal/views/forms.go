package views

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/buinguyenkhai/pttkht-20251-recipe-recommendation-system/internal/models"
	"github.com/buinguyenkhai/pttkht-20251-recipe-recommendation-system/internal/shared"
	"golang.org/x/sync/errgroup"
)

// Recipe form limits.
const (
	MaxTitleLength       = 100
	MaxDescriptionLength = 500
)

// Recipe form messages.
const (
	StepsRequired       = "Please ensure all steps are filled out before submitting."
	IngredientsRequired = "Please add at least one ingredient with a name and quantity."
	TagsRequired        = "Please select or add at least one tag for the recipe."
	SaveRecipeFailure   = "Failed to save recipe."
	UploadFailure       = "Failed to upload image."
)

// RecipeForm is the editable state of the create and edit screens.
type RecipeForm struct {
	Title       string
	Description string
	Servings    string
	Steps       []string
	Ingredients []models.RecipeIngredient
	Tags        []string
	ImageURL    string
}

// NewRecipeForm starts with one empty step and one empty ingredient line.
func NewRecipeForm() *RecipeForm {
	return &RecipeForm{Steps: []string{""}, Ingredients: []models.RecipeIngredient{{}}}
}

// AddTag adds a trimmed tag unless it is blank or already present, ignoring case.
func (f *RecipeForm) AddTag(tag string) bool {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return false
	}
	for _, t := range f.Tags {
		if strings.EqualFold(t, tag) {
			return false
		}
	}
	f.Tags = append(f.Tags, tag)
	return true
}

func (f *RecipeForm) RemoveTag(tag string) {
	f.Tags = slices.DeleteFunc(f.Tags, func(t string) bool { return strings.EqualFold(t, tag) })
}

func (f *RecipeForm) filledIngredients() []models.RecipeIngredient {
	var out []models.RecipeIngredient
	for _, in := range f.Ingredients {
		in.Name = strings.TrimSpace(in.Name)
		in.Quantity = strings.TrimSpace(in.Quantity)
		in.Unit = strings.TrimSpace(in.Unit)
		if in.Name != "" && in.Quantity != "" {
			out = append(out, in)
		}
	}
	return out
}

// Validate checks the form in display order and returns the first problem.
func (f *RecipeForm) Validate() error {
	title := strings.TrimSpace(f.Title)
	switch {
	case title == "":
		return shared.Invalid("title", "Title is required.")
	case utf8.RuneCountInString(title) > MaxTitleLength:
		return shared.Invalid("title", fmt.Sprintf("Title must be at most %d characters.", MaxTitleLength))
	}

	desc := strings.TrimSpace(f.Description)
	switch {
	case desc == "":
		return shared.Invalid("description", "Description is required.")
	case utf8.RuneCountInString(desc) > MaxDescriptionLength:
		return shared.Invalid("description", fmt.Sprintf("Description must be at most %d characters.", MaxDescriptionLength))
	}

	if strings.TrimSpace(f.Servings) == "" {
		return shared.Invalid("servings", "Servings is required.")
	}

	if len(f.Steps) == 0 {
		return shared.Invalid("steps", StepsRequired)
	}
	for _, s := range f.Steps {
		if strings.TrimSpace(s) == "" {
			return shared.Invalid("steps", StepsRequired)
		}
	}

	if len(f.filledIngredients()) == 0 {
		return shared.Invalid("ingredients", IngredientsRequired)
	}
	if len(f.Tags) == 0 {
		return shared.Invalid("tags", TagsRequired)
	}
	return nil
}

// Input builds the request payload. Blank steps and incomplete ingredient lines are dropped.
func (f *RecipeForm) Input() models.RecipeInput {
	in := models.RecipeInput{
		Title:       strings.TrimSpace(f.Title),
		Description: strings.TrimSpace(f.Description),
		Servings:    strings.TrimSpace(f.Servings),
		Ingredients: f.filledIngredients(),
		Tags:        append([]string(nil), f.Tags...),
	}
	for _, s := range f.Steps {
		if s = strings.TrimSpace(s); s != "" {
			in.Steps = append(in.Steps, s)
		}
	}
	if f.ImageURL != "" {
		img := f.ImageURL
		in.ImageURL = &img
	}
	return in
}

// EditorSource creates and updates recipes.
type EditorSource interface {
	GetRecipe(ctx context.Context, id int) (*models.RecipeDetail, error)
	RecipeIngredients(ctx context.Context, id int) ([]models.RecipeIngredient, error)
	RecipeSteps(ctx context.Context, id int) ([]models.Step, error)
	CreateRecipe(ctx context.Context, in models.RecipeInput) (*models.Recipe, error)
	UpdateRecipe(ctx context.Context, id int, in models.RecipeInput) (*models.Recipe, error)
	UploadImage(ctx context.Context, filename string, r io.Reader) (string, error)
}

// RecipeEditor submits recipe forms.
type RecipeEditor struct {
	src  EditorSource
	sess Session
}

func NewRecipeEditor(src EditorSource, sess Session) *RecipeEditor {
	return &RecipeEditor{src: src, sess: sess}
}

func (e *RecipeEditor) requireAuth() error {
	if !e.sess.Authenticated() {
		return fmt.Errorf("%w: login to manage recipes", shared.ErrNotAuthenticated)
	}
	return nil
}

// failure wraps a backend error with the message a user should see.
func (e *RecipeEditor) failure(err error, fallback string) error {
	msg := describe(e.sess, err, fallback)
	if msg == "" {
		return err
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// Create validates f and creates the recipe.
func (e *RecipeEditor) Create(ctx context.Context, f *RecipeForm) (*models.Recipe, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	if err := e.requireAuth(); err != nil {
		return nil, err
	}
	r, err := e.src.CreateRecipe(ctx, f.Input())
	if err != nil {
		return nil, e.failure(err, SaveRecipeFailure)
	}
	return r, nil
}

// Update validates f and replaces recipe id. Only the creator or an admin may edit.
func (e *RecipeEditor) Update(ctx context.Context, id int, f *RecipeForm) (*models.Recipe, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	if err := e.requireAuth(); err != nil {
		return nil, err
	}
	r, err := e.src.UpdateRecipe(ctx, id, f.Input())
	if err != nil {
		return nil, e.failure(err, SaveRecipeFailure)
	}
	return r, nil
}

// LoadForEdit fills a form from an existing recipe. Users who are neither the creator nor an
// admin get [shared.ErrForbidden].
func (e *RecipeEditor) LoadForEdit(ctx context.Context, id int) (*RecipeForm, error) {
	if err := e.requireAuth(); err != nil {
		return nil, err
	}

	var (
		detail      *models.RecipeDetail
		ingredients []models.RecipeIngredient
		steps       []models.Step
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		detail, err = e.src.GetRecipe(gctx, id)
		return err
	})
	g.Go(func() (err error) {
		ingredients, err = e.src.RecipeIngredients(gctx, id)
		return err
	})
	g.Go(func() (err error) {
		steps, err = e.src.RecipeSteps(gctx, id)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, e.failure(err, RecipeNotFound)
	}

	if !e.sess.IsAdmin() && !isOwner(e.sess, detail.Recipe) {
		return nil, fmt.Errorf("%w: only the creator or an admin can edit this recipe", shared.ErrForbidden)
	}

	slices.SortFunc(steps, func(a, b models.Step) int { return a.Number - b.Number })
	f := &RecipeForm{
		Title:       detail.Title,
		Description: detail.DescriptionOrEmpty(),
		ImageURL:    detail.ImageURLOrEmpty(),
		Ingredients: ingredients,
		Tags:        append([]string(nil), detail.Tags...),
	}
	if detail.Servings != nil {
		f.Servings = *detail.Servings
	}
	for _, s := range steps {
		f.Steps = append(f.Steps, s.Detail)
	}
	return f, nil
}

// UploadImage uploads the image at path and returns its URL.
func (e *RecipeEditor) UploadImage(ctx context.Context, path string) (string, error) {
	if err := e.requireAuth(); err != nil {
		return "", err
	}
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("%w: %w", shared.ErrInvalidInput, err)
	}
	defer file.Close()

	url, err := e.src.UploadImage(ctx, filepath.Base(path), file)
	if err != nil {
		return "", e.failure(err, UploadFailure)
	}
	return url, nil
}
