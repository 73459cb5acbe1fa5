package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/buinguyenkhai/pttkht-20251-recipe-recommendation-system/internal/formatter"
	"github.com/buinguyenkhai/pttkht-20251-recipe-recommendation-system/internal/models"
	"github.com/buinguyenkhai/pttkht-20251-recipe-recommendation-system/internal/session"
	"github.com/buinguyenkhai/pttkht-20251-recipe-recommendation-system/internal/shared"
	"github.com/buinguyenkhai/pttkht-20251-recipe-recommendation-system/internal/views"
	"github.com/urfave/cli/v3"
)

// recipePage is the JSON form of a listing.
type recipePage struct {
	Recipes    []models.Recipe   `json:"recipes"`
	Pagination models.Pagination `json:"pagination"`
}

func (r *Runner) pageSize() int { return r.config.Search.PageSize }

// printRecipes writes one line per recipe followed by the page footer. Saved recipes are
// starred when sess is signed in.
func (r *Runner) printRecipes(recipes []models.Recipe, p models.Pagination, sess *session.Store) {
	if len(recipes) == 0 {
		r.writePlain("No recipes found\n")
		return
	}
	for _, rc := range recipes {
		mark := " "
		if sess != nil && sess.IsSaved(rc.ID) {
			mark = "★"
		}
		r.writePlain("%s %5d  %-40s %6.0f kcal  by %s\n", mark, rc.ID, rc.Title, rc.CaloriesOrZero(), rc.Creator())
		if len(rc.Tags) > 0 {
			r.writePlain("         %s\n", strings.Join(rc.Tags, ", "))
		}
	}
	if p.Visible() {
		r.writePlainln("Page %d of %d (%d recipes)", p.Page, p.TotalPages(), p.Total)
	}
}

func (r *Runner) writeList(s views.ListState, sess *session.Store, asJSON bool) error {
	if asJSON {
		return r.writeJSON(recipePage{Recipes: s.Recipes, Pagination: s.Pagination}, true)
	}
	r.printRecipes(s.Recipes, s.Pagination, sess)
	return nil
}

// RecipesList prints a page of every recipe.
func (r *Runner) RecipesList(ctx context.Context, cmd *cli.Command) error {
	sess, err := r.ensureSession(ctx)
	if err != nil {
		return err
	}

	list := views.NewRecipeList(r.client, r.pageSize())
	defer list.Close()
	if err := list.Load(ctx, cmd.Int("page")); err != nil {
		return viewError(list.State().Err, err)
	}
	return r.writeList(list.State(), sess, cmd.Bool("json"))
}

// RecipesFeatured prints the featured recipes.
func (r *Runner) RecipesFeatured(ctx context.Context, cmd *cli.Command) error {
	list := views.NewRecipeList(r.client, r.pageSize())
	defer list.Close()

	err := list.LoadFeatured(ctx)
	featured, msg := list.Featured()
	if err != nil {
		return viewError(msg, err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(featured, true)
	}
	for _, f := range featured {
		r.writePlain("%5d  %s\n", f.ID, f.Title)
	}
	return nil
}

// loadDetail loads recipe id through the detail view.
func (r *Runner) loadDetail(ctx context.Context, sess *session.Store, raw string) (*views.RecipeDetail, error) {
	id, err := parseID("recipe id", raw)
	if err != nil {
		return nil, err
	}
	detail := views.NewRecipeDetail(r.client, sess)
	if err := detail.Load(ctx, id); err != nil {
		detail.Close()
		return nil, viewError(detail.State().Err, err)
	}
	return detail, nil
}

func recipeExport(s views.DetailState) *formatter.RecipeExport {
	return &formatter.RecipeExport{
		Recipe:      *s.Recipe,
		Ingredients: s.Ingredients,
		Steps:       s.Steps,
		Reviews:     s.Reviews,
		Nutrition:   s.Nutrition,
		Stats:       s.Stats,
	}
}

// RecipesShow prints a recipe with its ingredients, steps, nutrition and reviews.
func (r *Runner) RecipesShow(ctx context.Context, cmd *cli.Command) error {
	sess, err := r.ensureSession(ctx)
	if err != nil {
		return err
	}
	detail, err := r.loadDetail(ctx, sess, cmd.StringArg("id"))
	if err != nil {
		return err
	}
	defer detail.Close()
	s := detail.State()

	if cmd.Bool("open-image") {
		if img := s.Recipe.ImageURLOrEmpty(); img != "" {
			if err := shared.OpenURL(img); err != nil {
				r.logger.Warn("could not open image", "error", err)
			}
		} else {
			r.logger.Warn("recipe has no image")
		}
	}

	if cmd.Bool("json") {
		return r.writeJSON(recipeExport(s), true)
	}

	text, err := formatter.ExportRecipeToText(recipeExport(s))
	if err != nil {
		return err
	}
	r.writePlainHeader(s.Recipe.Title)
	r.output.Write(text)

	if s.Recipe.Servings != nil {
		r.writePlain("\nServings: %s\n", *s.Recipe.Servings)
	}
	if len(s.Tags) > 0 {
		names := make([]string, len(s.Tags))
		for i, t := range s.Tags {
			names[i] = t.Name
		}
		r.writePlain("Tags: %s\n", strings.Join(names, ", "))
	}
	if s.Nutrition != nil {
		r.writePlain("Nutrition: %.0f kcal, %.1f g protein, %.1f g fat, %.1f g carbs\n",
			s.Nutrition.Calories, s.Nutrition.Protein, s.Nutrition.Fat, s.Nutrition.Carbs)
	}
	r.writePlain("Rating: %s (%d reviews)\n", s.Stats.AverageString(), s.Stats.Total)
	if s.Saved {
		r.writePlain("★ In your saved recipes\n")
	}
	r.printReviews(s.Reviews)
	return nil
}

// parseIngredient reads name:quantity[:unit].
func parseIngredient(raw string) (models.RecipeIngredient, error) {
	parts := strings.Split(raw, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return models.RecipeIngredient{}, fmt.Errorf("%w: ingredient must be name:quantity[:unit], got %q", shared.ErrInvalidFlag, raw)
	}
	in := models.RecipeIngredient{
		Name:     strings.TrimSpace(parts[0]),
		Quantity: strings.TrimSpace(parts[1]),
	}
	if len(parts) == 3 {
		in.Unit = strings.TrimSpace(parts[2])
	}
	return in, nil
}

// fillForm applies the recipe flags that were given to f.
func fillForm(cmd *cli.Command, f *views.RecipeForm) error {
	if cmd.IsSet("title") {
		f.Title = cmd.String("title")
	}
	if cmd.IsSet("description") {
		f.Description = cmd.String("description")
	}
	if cmd.IsSet("servings") {
		f.Servings = cmd.String("servings")
	}
	if cmd.IsSet("step") {
		f.Steps = cmd.StringSlice("step")
	}
	if cmd.IsSet("ingredient") {
		f.Ingredients = nil
		for _, raw := range cmd.StringSlice("ingredient") {
			in, err := parseIngredient(raw)
			if err != nil {
				return err
			}
			f.Ingredients = append(f.Ingredients, in)
		}
	}
	if cmd.IsSet("tag") {
		f.Tags = nil
		for _, t := range cmd.StringSlice("tag") {
			f.AddTag(t)
		}
	}
	return nil
}

func (r *Runner) uploadCover(ctx context.Context, cmd *cli.Command, editor *views.RecipeEditor, f *views.RecipeForm) error {
	path := cmd.String("image")
	if path == "" {
		return nil
	}
	r.logger.Info("uploading image", "path", path)
	url, err := editor.UploadImage(ctx, path)
	if err != nil {
		return err
	}
	f.ImageURL = url
	return nil
}

// RecipesCreate creates a recipe from flags.
func (r *Runner) RecipesCreate(ctx context.Context, cmd *cli.Command) error {
	sess, err := r.requireLogin(ctx)
	if err != nil {
		return err
	}
	editor := views.NewRecipeEditor(r.client, sess)

	form := views.NewRecipeForm()
	if err := fillForm(cmd, form); err != nil {
		return err
	}
	if err := form.Validate(); err != nil {
		return err
	}
	if err := r.uploadCover(ctx, cmd, editor, form); err != nil {
		return err
	}

	recipe, err := editor.Create(ctx, form)
	if err != nil {
		return err
	}
	r.logger.Info("recipe created", "id", recipe.ID)
	r.writePlain("✓ Created recipe %d: %s\n", recipe.ID, recipe.Title)
	return nil
}

// RecipesEdit replaces the given fields of an existing recipe.
func (r *Runner) RecipesEdit(ctx context.Context, cmd *cli.Command) error {
	id, err := parseID("recipe id", cmd.StringArg("id"))
	if err != nil {
		return err
	}
	sess, err := r.requireLogin(ctx)
	if err != nil {
		return err
	}
	editor := views.NewRecipeEditor(r.client, sess)

	form, err := editor.LoadForEdit(ctx, id)
	if err != nil {
		return err
	}
	if err := fillForm(cmd, form); err != nil {
		return err
	}
	if err := form.Validate(); err != nil {
		return err
	}
	if err := r.uploadCover(ctx, cmd, editor, form); err != nil {
		return err
	}

	recipe, err := editor.Update(ctx, id, form)
	if err != nil {
		return err
	}
	r.writePlain("✓ Updated recipe %d: %s\n", recipe.ID, recipe.Title)
	return nil
}

// RecipesDelete deletes a recipe the user created, or any recipe for admins.
func (r *Runner) RecipesDelete(ctx context.Context, cmd *cli.Command) error {
	sess, err := r.requireLogin(ctx)
	if err != nil {
		return err
	}
	detail, err := r.loadDetail(ctx, sess, cmd.StringArg("id"))
	if err != nil {
		return err
	}
	defer detail.Close()

	title := detail.State().Recipe.Title
	if !detail.CanModify() {
		return fmt.Errorf("%w: only the creator or an admin can delete %q", shared.ErrForbidden, title)
	}
	if !r.confirm(fmt.Sprintf("Delete %q?", title), cmd.Bool("yes")) {
		r.writePlain("Cancelled\n")
		return nil
	}

	if err := detail.Delete(ctx); err != nil {
		return viewError(detail.State().Err, err)
	}
	r.writePlain("✓ Deleted %q\n", title)
	return nil
}

// RecipesToggleSave saves the recipe, or unsaves it when it is already saved.
func (r *Runner) RecipesToggleSave(ctx context.Context, cmd *cli.Command) error {
	id, err := parseID("recipe id", cmd.StringArg("id"))
	if err != nil {
		return err
	}
	sess, err := r.requireLogin(ctx)
	if err != nil {
		return err
	}

	saved, err := sess.ToggleSave(ctx, id)
	if err != nil {
		return err
	}
	if saved {
		r.writePlain("★ Saved recipe %d\n", id)
	} else {
		r.writePlain("Removed recipe %d from saved recipes\n", id)
	}
	return nil
}

func (r *Runner) profileList(ctx context.Context, cmd *cli.Command, kind views.ProfileKind) error {
	sess, err := r.requireLogin(ctx)
	if err != nil {
		return err
	}
	list := views.NewProfileRecipes(r.client, sess, kind, r.pageSize())
	defer list.Close()

	if err := list.Load(ctx, cmd.Int("page")); err != nil {
		return viewError(list.State().Err, err)
	}
	return r.writeList(list.State(), sess, cmd.Bool("json"))
}

// RecipesSaved lists the user's saved recipes.
func (r *Runner) RecipesSaved(ctx context.Context, cmd *cli.Command) error {
	return r.profileList(ctx, cmd, views.SavedRecipes)
}

// RecipesMine lists the recipes the user created.
func (r *Runner) RecipesMine(ctx context.Context, cmd *cli.Command) error {
	return r.profileList(ctx, cmd, views.CreatedRecipes)
}

// RecipesExport writes a recipe to disk as Markdown (with its cover), text or JSON.
func (r *Runner) RecipesExport(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}
	output := cmd.String("output")

	sess, err := r.ensureSession(ctx)
	if err != nil {
		return err
	}
	detail, err := r.loadDetail(ctx, sess, cmd.StringArg("id"))
	if err != nil {
		return err
	}
	defer detail.Close()

	export := recipeExport(detail.State())
	base := formatter.Slug(export.Recipe.Title)

	var path string
	switch format {
	case formatter.FormatMarkdown:
		res, err := formatter.WriteRecipeMarkdownExport(ctx, export, output)
		if err != nil {
			return err
		}
		for _, w := range res.Warnings {
			r.logger.Warn(w)
		}
		path = res.Directory
	case formatter.FormatText:
		data, err := formatter.ExportRecipeToText(export)
		if err != nil {
			return err
		}
		if path, err = formatter.WriteFile(data, output, base, format); err != nil {
			return err
		}
	case formatter.FormatJSON:
		data, err := shared.MarshalJSON(export, true)
		if err != nil {
			return err
		}
		if path, err = formatter.WriteFile(data, output, base, format); err != nil {
			return err
		}
	default:
		return fmt.Errorf("%w: recipes export as md, txt or json, not %s", shared.ErrInvalidFlag, format)
	}

	r.logger.Info("recipe exported", "id", export.Recipe.ID, "format", format, "path", path)
	r.writePlain("✓ Exported %q to %s\n", export.Recipe.Title, path)
	return nil
}
