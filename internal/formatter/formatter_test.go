package formatter

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/buinguyenkhai/pttkht-20251-recipe-recommendation-system/internal/models"
	"github.com/buinguyenkhai/pttkht-20251-recipe-recommendation-system/internal/shared"
	th "github.com/buinguyenkhai/pttkht-20251-recipe-recommendation-system/internal/testing"
	"github.com/xuri/excelize/v2"
)

func ptr[T any](v T) *T { return &v }

func sampleRecipe(imageURL string) *RecipeExport {
	r := &RecipeExport{
		Recipe: models.RecipeDetail{Recipe: models.Recipe{
			ID:              7,
			Title:           "Beef Pho",
			Description:     ptr("Noodle soup"),
			CreatorUsername: ptr("mai"),
			Servings:        ptr("4"),
			Tags:            []string{"soup", "vietnamese"},
		}},
		Ingredients: []models.RecipeIngredient{{Name: "noodles", Quantity: "200", Unit: "g"}, {Name: "lime", Quantity: "1"}},
		Steps:       []models.Step{{Number: 1, Detail: "Boil broth"}, {Number: 2, Detail: "Serve"}},
		Reviews:     []models.Review{{ID: 1, Rating: ptr(5), Text: ptr("great"), User: &models.User{Username: "an"}}},
		Nutrition:   &models.Nutrition{Calories: 450, Protein: 30, Fat: 10, Carbs: 55.5},
	}
	r.Stats = models.NewRatingStats(r.Reviews)
	if imageURL != "" {
		r.Recipe.ImageURL = &imageURL
	}
	return r
}

func samplePlan() *models.SavedMealPlan {
	return &models.SavedMealPlan{
		SavedMealPlanInfo: models.SavedMealPlanInfo{ID: 3, Name: "Weekday Dinner"},
		TotalCalories:     ptr(650.0),
		Recipes: []models.Recipe{
			{ID: 1, Title: "Pho", Calories: ptr(450.0), Protein: ptr(30.0)},
			{ID: 2, Title: "Salad, green", Calories: ptr(200.0)},
		},
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
	}{
		{"csv", FormatCSV}, {"Markdown", FormatMarkdown}, {"md", FormatMarkdown},
		{"text", FormatText}, {"json", FormatJSON}, {"excel", FormatXLSX},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if err != nil || got != tt.want {
				t.Errorf("expected %s, got %s (%v)", tt.want, got, err)
			}
		})
	}

	if _, err := ParseFormat("pdf"); !errors.Is(err, shared.ErrInvalidFlag) {
		t.Errorf("expected ErrInvalidFlag, got %v", err)
	}
}

func TestSlug(t *testing.T) {
	tests := map[string]string{
		"Beef Pho":              "beef-pho",
		"  Chef's Plan for 2  ": "chef-s-plan-for-2",
		"Bún chả!":              "b-n-ch",
	}
	for in, want := range tests {
		if got := Slug(in); got != want {
			t.Errorf("Slug(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestRecipeExporters(t *testing.T) {
	t.Run("ExportRecipeToMarkdown", func(t *testing.T) {
		t.Run("without cover image", func(t *testing.T) {
			data, err := ExportRecipeToMarkdown(sampleRecipe(""), "")
			if err != nil {
				t.Fatalf("ExportRecipeToMarkdown failed: %v", err)
			}
			output := string(data)

			for _, want := range []string{
				"# Beef Pho", "**By**: mai", "**Tags**: soup, vietnamese", "**Rating**: 5.0 (1 reviews)",
				"| 450 | 30 g | 10 g | 55.5 g |", "- 200 g noodles", "- 1 lime", "2. Serve", "- **an** (5/5): great",
			} {
				if !strings.Contains(output, want) {
					t.Errorf("expected %q in output:\n%s", want, output)
				}
			}
			if strings.Contains(output, "![Cover]") {
				t.Error("expected no cover image")
			}
		})

		t.Run("with cover image", func(t *testing.T) {
			data, _ := ExportRecipeToMarkdown(sampleRecipe(""), "cover.jpg")
			if !strings.Contains(string(data), "![Cover](cover.jpg)") {
				t.Error("expected cover image reference")
			}
		})
	})

	t.Run("ExportRecipeToText", func(t *testing.T) {
		data, err := ExportRecipeToText(sampleRecipe(""))
		if err != nil {
			t.Fatalf("ExportRecipeToText failed: %v", err)
		}
		output := string(data)
		if !strings.Contains(output, "Recipe: Beef Pho") || !strings.Contains(output, "  1. Boil broth") {
			t.Errorf("unexpected text:\n%s", output)
		}
	})

	t.Run("deleted creator", func(t *testing.T) {
		r := sampleRecipe("")
		r.Recipe.CreatorUsername = nil
		data, _ := ExportRecipeToText(r)
		if !strings.Contains(string(data), "By: "+models.DeletedCreator) {
			t.Errorf("expected placeholder creator, got:\n%s", data)
		}
	})
}

func TestPlanExporters(t *testing.T) {
	t.Run("ExportPlanToCSV", func(t *testing.T) {
		data, err := ExportPlanToCSV(samplePlan())
		if err != nil {
			t.Fatalf("ExportPlanToCSV failed: %v", err)
		}
		output := string(data)
		if !strings.HasPrefix(output, "ID,Title,Calories,Protein,Fat,Carbs\n") {
			t.Errorf("CSV missing headers, got: %s", output)
		}
		if !strings.Contains(output, "1,Pho,450,30,0,0") {
			t.Errorf("CSV missing first recipe, got: %s", output)
		}
		if !strings.Contains(output, `"Salad, green"`) {
			t.Errorf("expected quoted title, got: %s", output)
		}
	})

	t.Run("ExportPlanToMarkdown", func(t *testing.T) {
		data, _ := ExportPlanToMarkdown(samplePlan())
		output := string(data)
		if !strings.Contains(output, "# Weekday Dinner") || !strings.Contains(output, "**Recipes**: 2") ||
			!strings.Contains(output, "2. Salad, green [200 kcal]") {
			t.Errorf("unexpected markdown:\n%s", output)
		}
	})

	t.Run("ExportPlanToText", func(t *testing.T) {
		data, _ := ExportPlanToText(samplePlan())
		if !strings.Contains(string(data), "Calories: 650") {
			t.Errorf("unexpected text:\n%s", data)
		}
	})

	t.Run("WritePlanCSVExport", func(t *testing.T) {
		base := filepath.Join(t.TempDir(), "weekday")
		result, err := WritePlanCSVExport(samplePlan(), base)
		if err != nil {
			t.Fatalf("WritePlanCSVExport failed: %v", err)
		}

		th.AssertFileExists(t, result.RecipesFile)
		th.AssertFileExists(t, result.MetadataFile)
		if !strings.HasSuffix(result.RecipesFile, "weekday_recipes.csv") {
			t.Errorf("unexpected recipes file %s", result.RecipesFile)
		}
		metadata := th.MustReadFile(t, result.MetadataFile)
		if !strings.Contains(metadata, `"name": "Weekday Dinner"`) || !strings.Contains(metadata, `"total_calories": 650`) {
			t.Errorf("unexpected metadata: %s", metadata)
		}
	})
}

func TestDownloadImage(t *testing.T) {
	t.Run("EmptyURL", func(t *testing.T) {
		if _, err := DownloadImage(context.Background(), ""); err == nil {
			t.Error("expected error for empty URL")
		}
	})

	t.Run("NotFound", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		defer srv.Close()
		if _, err := DownloadImage(context.Background(), srv.URL+"/img.jpg"); err == nil {
			t.Error("expected error for 404")
		}
	})
}

func TestWriteRecipeMarkdownExport(t *testing.T) {
	t.Run("with cover image", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("jpeg-bytes"))
		}))
		defer srv.Close()

		dir := filepath.Join(t.TempDir(), "pho")
		result, err := WriteRecipeMarkdownExport(context.Background(), sampleRecipe(srv.URL+"/pho.jpg"), dir)
		if err != nil {
			t.Fatalf("WriteRecipeMarkdownExport failed: %v", err)
		}
		if len(result.Files) != 2 || result.CoverImage == "" || len(result.Warnings) != 0 {
			t.Errorf("unexpected result: %+v", result)
		}
		if th.MustReadFile(t, result.CoverImage) != "jpeg-bytes" {
			t.Error("unexpected cover content")
		}
		if !strings.Contains(th.MustReadFile(t, filepath.Join(dir, "README.md")), "![Cover](cover.jpg)") {
			t.Error("expected README to reference cover")
		}
	})

	t.Run("unreachable cover is a warning", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		defer srv.Close()

		result, err := WriteRecipeMarkdownExport(context.Background(), sampleRecipe(srv.URL+"/missing.jpg"), t.TempDir())
		if err != nil {
			t.Fatalf("WriteRecipeMarkdownExport failed: %v", err)
		}
		if len(result.Warnings) != 1 || result.CoverImage != "" || len(result.Files) != 1 {
			t.Errorf("unexpected result: %+v", result)
		}
	})
}

func TestWorkbooks(t *testing.T) {
	t.Run("users", func(t *testing.T) {
		users := []models.UserAdminView{
			{User: models.User{ID: 1, Username: "mai", IsAdmin: true}, CreatedRecipesCount: 4, ReviewsCount: 2, AverageRating: ptr(4.5)},
			{User: models.User{ID: 2, Username: "an"}, CreatedRecipesCount: 0},
		}
		var buf bytes.Buffer
		if err := WriteUsersXLSX(&buf, users); err != nil {
			t.Fatalf("WriteUsersXLSX failed: %v", err)
		}

		f, err := excelize.OpenReader(&buf)
		if err != nil {
			t.Fatalf("failed to open workbook: %v", err)
		}
		defer f.Close()

		rows, err := f.GetRows(UsersSheet)
		if err != nil {
			t.Fatalf("GetRows failed: %v", err)
		}
		if len(rows) != 3 || rows[0][1] != "Username" || rows[1][1] != "mai" || rows[1][6] != "4.5" {
			t.Errorf("unexpected rows: %v", rows)
		}
	})

	t.Run("plans", func(t *testing.T) {
		var buf bytes.Buffer
		if err := WritePlansXLSX(&buf, []models.SavedMealPlan{*samplePlan()}); err != nil {
			t.Fatalf("WritePlansXLSX failed: %v", err)
		}

		f, err := excelize.OpenReader(&buf)
		if err != nil {
			t.Fatalf("failed to open workbook: %v", err)
		}
		defer f.Close()

		if sheets := f.GetSheetList(); len(sheets) != 2 || sheets[0] != PlansSheet || sheets[1] != RecipesSheet {
			t.Errorf("unexpected sheets: %v", sheets)
		}
		recipes, _ := f.GetRows(RecipesSheet)
		if len(recipes) != 3 || recipes[2][3] != "Salad, green" {
			t.Errorf("unexpected recipe rows: %v", recipes)
		}
	})
}
