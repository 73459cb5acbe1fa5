package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/buinguyenkhai/pttkht-20251-recipe-recommendation-system/internal/formatter"
	"github.com/buinguyenkhai/pttkht-20251-recipe-recommendation-system/internal/models"
	"github.com/buinguyenkhai/pttkht-20251-recipe-recommendation-system/internal/shared"
	"github.com/buinguyenkhai/pttkht-20251-recipe-recommendation-system/internal/tasks"
	"github.com/buinguyenkhai/pttkht-20251-recipe-recommendation-system/internal/views"
	"github.com/urfave/cli/v3"
)

func (r *Runner) printTotals(t models.NutritionTotals) {
	r.writePlain("Total: %.0f kcal, %.0f g protein, %.0f g fat, %.0f g carbs\n", t.Calories, t.Protein, t.Fat, t.Carbs)
}

func (r *Runner) printMeal(recipes []models.Recipe) {
	for _, rc := range recipes {
		m := rc.Macros()
		r.writePlain("  %5d  %-40s %6.0f kcal\n", rc.ID, rc.Title, m.Calories)
	}
}

// MealRandom generates a meal for a number of people and optionally saves it.
func (r *Runner) MealRandom(ctx context.Context, cmd *cli.Command) error {
	sess, err := r.ensureSession(ctx)
	if err != nil {
		return err
	}
	plan := views.NewMealPlan(r.client, sess)
	defer plan.Close()

	if err := plan.Generate(ctx, cmd.Int("people")); err != nil {
		return viewError(plan.State().Err, err)
	}
	s := plan.State()

	var saved *models.SavedMealPlan
	if cmd.IsSet("save") {
		if saved, err = plan.Save(ctx, cmd.String("save")); err != nil {
			return viewError(plan.State().Err, err)
		}
	}

	if cmd.Bool("json") {
		return r.writeJSON(struct {
			Recipes []models.Recipe        `json:"recipes"`
			Totals  models.NutritionTotals `json:"totals"`
			Saved   *models.SavedMealPlan  `json:"saved,omitempty"`
		}{s.Recipes, s.Totals, saved}, true)
	}

	r.writePlainHeader(fmt.Sprintf("Meal for %d", s.NumPeople))
	r.printMeal(s.Recipes)
	r.printTotals(s.Totals)
	if saved != nil {
		r.writePlain("✓ Saved as %q (plan %d)\n", saved.Name, saved.ID)
	}
	return nil
}

// parsePerson reads gender:weight:exercise.
func parsePerson(raw string) (models.PersonProfile, error) {
	parts := strings.Split(raw, ":")
	if len(parts) != 3 {
		return models.PersonProfile{}, fmt.Errorf("%w: person must be gender:weight:exercise, got %q", shared.ErrInvalidFlag, raw)
	}
	gender, err := models.ParseGender(strings.TrimSpace(parts[0]))
	if err != nil {
		return models.PersonProfile{}, fmt.Errorf("%w: %w", shared.ErrInvalidFlag, err)
	}
	weight, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return models.PersonProfile{}, fmt.Errorf("%w: weight %q is not a number", shared.ErrInvalidFlag, parts[1])
	}
	freq, err := models.ParseExerciseFrequency(strings.TrimSpace(parts[2]))
	if err != nil {
		return models.PersonProfile{}, fmt.Errorf("%w: %w", shared.ErrInvalidFlag, err)
	}
	return models.PersonProfile{Gender: gender, Weight: weight, FrequencyExercise: freq}, nil
}

// loadCustomPlan loads the custom plan and applies the --person flags.
func (r *Runner) loadCustomPlan(ctx context.Context, cmd *cli.Command) (*views.CustomPlan, error) {
	var people []models.PersonProfile
	for _, raw := range cmd.StringSlice("person") {
		p, err := parsePerson(raw)
		if err != nil {
			return nil, err
		}
		people = append(people, p)
	}

	sess, err := r.requireLogin(ctx)
	if err != nil {
		return nil, err
	}
	plan := views.NewCustomPlan(r.client, sess)
	if err := plan.Load(ctx); err != nil {
		plan.Close()
		return nil, viewError(plan.State().Err, err)
	}

	for i, p := range people {
		if i > 0 {
			plan.AddPerson()
		}
		if err := plan.SetPerson(i, p); err != nil {
			plan.Close()
			return nil, err
		}
	}
	return plan, nil
}

// CustomShow prints the custom plan. With --person it also compares the plan's calories to the
// people's estimated needs.
func (r *Runner) CustomShow(ctx context.Context, cmd *cli.Command) error {
	plan, err := r.loadCustomPlan(ctx, cmd)
	if err != nil {
		return err
	}
	defer plan.Close()

	if cmd.IsSet("person") {
		if _, err := plan.Calculate(ctx); err != nil {
			return viewError(plan.State().Err, err)
		}
	}
	s := plan.State()
	cmp, hasCmp := s.Comparison()

	if cmd.Bool("json") {
		out := struct {
			Recipes    []models.Recipe           `json:"recipes"`
			Totals     models.NutritionTotals    `json:"totals"`
			Needed     float64                   `json:"calories_needed,omitempty"`
			Comparison *models.CalorieComparison `json:"comparison,omitempty"`
		}{Recipes: s.Recipes, Totals: s.Totals(), Needed: s.Needed}
		if hasCmp {
			out.Comparison = &cmp
		}
		return r.writeJSON(out, true)
	}

	r.writePlainHeader("Custom meal plan")
	if len(s.Recipes) == 0 {
		r.writePlain("Your plan is empty; add recipes with 'recipes meal custom add <id>'\n")
		return nil
	}
	r.printMeal(s.Recipes)
	r.printTotals(s.Totals())
	if hasCmp {
		r.writePlain("Estimated need for %d: %.0f kcal\n", len(s.People), s.Needed)
		r.writePlain("%s\n", cmp.Message)
	}
	return nil
}

// CustomAdd adds a recipe to the custom plan.
func (r *Runner) CustomAdd(ctx context.Context, cmd *cli.Command) error {
	sess, err := r.requireLogin(ctx)
	if err != nil {
		return err
	}
	detail, err := r.loadDetail(ctx, sess, cmd.StringArg("recipe-id"))
	if err != nil {
		return err
	}
	defer detail.Close()

	if err := detail.AddToCustomPlan(ctx); err != nil {
		return viewError(detail.State().Err, err)
	}
	r.writePlain("✓ Added %q to your meal plan\n", detail.State().Recipe.Title)
	return nil
}

// CustomRemove takes a recipe out of the custom plan.
func (r *Runner) CustomRemove(ctx context.Context, cmd *cli.Command) error {
	id, err := parseID("recipe id", cmd.StringArg("recipe-id"))
	if err != nil {
		return err
	}
	plan, err := r.loadCustomPlan(ctx, cmd)
	if err != nil {
		return err
	}
	defer plan.Close()

	if err := plan.Remove(ctx, id); err != nil {
		return viewError(plan.State().Err, err)
	}
	r.writePlain("✓ Removed recipe %d from your meal plan\n", id)
	return nil
}

// CustomClear empties the custom plan.
func (r *Runner) CustomClear(ctx context.Context, cmd *cli.Command) error {
	plan, err := r.loadCustomPlan(ctx, cmd)
	if err != nil {
		return err
	}
	defer plan.Close()

	n := len(plan.State().Recipes)
	if n == 0 {
		r.writePlain("Your plan is already empty\n")
		return nil
	}
	if !r.confirm(fmt.Sprintf("Remove all %d recipes from your meal plan?", n), cmd.Bool("yes")) {
		r.writePlain("Cancelled\n")
		return nil
	}
	if err := plan.Clear(ctx); err != nil {
		return viewError(plan.State().Err, err)
	}
	r.writePlain("✓ Cleared %d recipes\n", n)
	return nil
}

// CustomSave saves the custom plan as a named meal plan.
func (r *Runner) CustomSave(ctx context.Context, cmd *cli.Command) error {
	plan, err := r.loadCustomPlan(ctx, cmd)
	if err != nil {
		return err
	}
	defer plan.Close()

	saved, err := plan.Save(ctx, cmd.String("name"))
	if err != nil {
		return viewError(plan.State().Err, err)
	}
	r.writePlain("✓ Saved %q (plan %d)\n", saved.Name, saved.ID)
	return nil
}

func (r *Runner) savedPlans(ctx context.Context) (*views.SavedPlans, error) {
	sess, err := r.requireLogin(ctx)
	if err != nil {
		return nil, err
	}
	return views.NewSavedPlans(r.client, sess), nil
}

// PlansList prints the saved meal plans.
func (r *Runner) PlansList(ctx context.Context, cmd *cli.Command) error {
	plans, err := r.savedPlans(ctx)
	if err != nil {
		return err
	}
	defer plans.Close()

	if err := plans.List(ctx); err != nil {
		return viewError(plans.State().Err, err)
	}
	s := plans.State()

	if cmd.Bool("json") {
		return r.writeJSON(s.Plans, true)
	}
	if len(s.Plans) == 0 {
		r.writePlain("No saved meal plans\n")
		return nil
	}
	for _, p := range s.Plans {
		r.writePlain("%5d  %s\n", p.ID, p.Name)
	}
	return nil
}

// PlansShow prints one saved plan.
func (r *Runner) PlansShow(ctx context.Context, cmd *cli.Command) error {
	id, err := parseID("plan id", cmd.StringArg("id"))
	if err != nil {
		return err
	}
	plans, err := r.savedPlans(ctx)
	if err != nil {
		return err
	}
	defer plans.Close()

	plan, err := plans.Open(ctx, id)
	if err != nil {
		return viewError(plans.State().Err, err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(plan, true)
	}
	r.writePlainHeader(plan.Name)
	r.writePlain("Created: %s\n\n", plan.CreatedAt.Date())
	r.printMeal(plan.Recipes)
	r.printTotals(plan.Totals())
	return nil
}

// PlansRename renames a saved plan.
func (r *Runner) PlansRename(ctx context.Context, cmd *cli.Command) error {
	id, err := parseID("plan id", cmd.StringArg("id"))
	if err != nil {
		return err
	}
	plans, err := r.savedPlans(ctx)
	if err != nil {
		return err
	}
	defer plans.Close()

	name := cmd.StringArg("name")
	if err := plans.Rename(ctx, id, name); err != nil {
		return viewError(plans.State().Err, err)
	}
	r.writePlain("✓ Renamed plan %d to %q\n", id, strings.TrimSpace(name))
	return nil
}

// PlansDelete deletes a saved plan.
func (r *Runner) PlansDelete(ctx context.Context, cmd *cli.Command) error {
	id, err := parseID("plan id", cmd.StringArg("id"))
	if err != nil {
		return err
	}
	plans, err := r.savedPlans(ctx)
	if err != nil {
		return err
	}
	defer plans.Close()

	if !r.confirm(fmt.Sprintf("Delete saved plan %d?", id), cmd.Bool("yes")) {
		r.writePlain("Cancelled\n")
		return nil
	}
	if err := plans.Delete(ctx, id); err != nil {
		return viewError(plans.State().Err, err)
	}
	r.writePlain("✓ Deleted plan %d\n", id)
	return nil
}

// MealExport exports saved plans with a worker pool, printing progress as plans complete.
func (r *Runner) MealExport(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	var ids []int
	for _, raw := range cmd.Args().Slice() {
		id, err := parseID("plan id", raw)
		if err != nil {
			return err
		}
		ids = append(ids, id)
	}

	if _, err := r.requireLogin(ctx); err != nil {
		return err
	}

	opts := tasks.BulkExportOpts{
		Format:     format,
		OutputDir:  cmd.String("output"),
		NumWorkers: r.config.Export.Workers,
		RateLimit:  r.config.Export.RateLimit,
	}
	if opts.OutputDir == "" && r.config.Export.Dir != "" {
		opts.OutputDir = r.config.Export.Dir
	}
	if cmd.IsSet("workers") {
		opts.NumWorkers = cmd.Int("workers")
	}

	r.logger.Info("starting export", "plans", len(ids), "format", format)
	r.writePlain("Exporting meal plans as %s...\n\n", format)

	progressCh := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progressCh {
			switch update.Phase {
			case tasks.ListPlans:
				r.writePlain("📋 %s\n\n", update.Message)
			case tasks.FetchPlan:
				r.logger.Debug(update.Message)
			case tasks.ExportPlan:
				r.writePlain("   %s\n", update.Message)
			case tasks.WriteManifest:
				r.writePlain("\n📝 %s\n", update.Message)
			}
		}
	}()

	exporter := tasks.NewExporter(r.client, shared.WithLogger(r.logger, "component", "export"))
	result, err := exporter.BulkExport(ctx, progressCh, ids, opts)
	close(progressCh)
	<-done

	if err != nil {
		return err
	}

	r.writePlainln("═══════════════════════════════════════")
	r.writePlain("Export Complete!\n")
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("Exported: %d/%d plans\n", result.SuccessfulExports, result.TotalPlans)
	r.writePlain("Directory: %s\n", result.OutputDirectory)
	if result.FailedExports > 0 {
		r.writePlain("\nFailed to export %d plans:\n", result.FailedExports)
		for _, res := range result.Results {
			if !res.Success {
				r.writePlain("  - %s: %v\n", res.PlanName, res.Error)
			}
		}
	}
	return nil
}
