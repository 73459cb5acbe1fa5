package formatter

import (
	"fmt"
	"io"

	"github.com/buinguyenkhai/pttkht-20251-recipe-recommendation-system/internal/models"
	"github.com/xuri/excelize/v2"
)

// Sheet names used by the workbook exports.
const (
	UsersSheet   = "Users"
	PlansSheet   = "Plans"
	RecipesSheet = "Recipes"
)

// streamRows writes header and rows to sheet, creating it unless it is the workbook's first sheet.
func streamRows(f *excelize.File, sheet string, header []any, rows [][]any) error {
	if f.GetSheetName(0) != sheet {
		if _, err := f.NewSheet(sheet); err != nil {
			return fmt.Errorf("failed to create sheet %s: %w", sheet, err)
		}
	}

	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return fmt.Errorf("failed to open stream writer: %w", err)
	}
	if err := sw.SetRow("A1", header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}
	return sw.Flush()
}

func newWorkbook(first string) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName(f.GetSheetName(0), first); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}
	return f, nil
}

// WriteUsersXLSX writes the admin user table as a workbook to w.
func WriteUsersXLSX(w io.Writer, users []models.UserAdminView) error {
	f, err := newWorkbook(UsersSheet)
	if err != nil {
		return err
	}
	defer f.Close()

	header := []any{"ID", "Username", "Admin", "Joined", "Recipes", "Reviews", "Average Rating"}
	rows := make([][]any, 0, len(users))
	for _, u := range users {
		rows = append(rows, []any{
			u.ID, u.Username, u.IsAdmin, u.CreatedAt.Date(),
			u.CreatedRecipesCount, u.ReviewsCount, u.AverageRatingOrZero(),
		})
	}
	if err := streamRows(f, UsersSheet, header, rows); err != nil {
		return err
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// WritePlansXLSX writes one summary row per plan and one row per plan recipe to w.
func WritePlansXLSX(w io.Writer, plans []models.SavedMealPlan) error {
	f, err := newWorkbook(PlansSheet)
	if err != nil {
		return err
	}
	defer f.Close()

	summary := make([][]any, 0, len(plans))
	var recipes [][]any
	for _, p := range plans {
		t := p.Totals()
		summary = append(summary, []any{p.ID, p.Name, p.CreatedAt.Date(), len(p.Recipes), t.Calories, t.Protein, t.Fat, t.Carbs})
		for _, r := range p.Recipes {
			m := r.Macros()
			recipes = append(recipes, []any{p.ID, p.Name, r.ID, r.Title, m.Calories, m.Protein, m.Fat, m.Carbs})
		}
	}

	if err := streamRows(f, PlansSheet,
		[]any{"ID", "Name", "Created", "Recipes", "Calories", "Protein", "Fat", "Carbs"}, summary); err != nil {
		return err
	}
	if err := streamRows(f, RecipesSheet,
		[]any{"Plan ID", "Plan", "Recipe ID", "Title", "Calories", "Protein", "Fat", "Carbs"}, recipes); err != nil {
		return err
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
