// package formatter exports recipes, meal plans and admin reports to CSV, Markdown, plain text and XLSX.
package formatter

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/buinguyenkhai/pttkht-20251-recipe-recommendation-system/internal/models"
	"github.com/buinguyenkhai/pttkht-20251-recipe-recommendation-system/internal/shared"
)

// Format is an export file format.
type Format string

const (
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "md"
	FormatText     Format = "txt"
	FormatJSON     Format = "json"
	FormatXLSX     Format = "xlsx"
)

// ParseFormat accepts a format name or its common aliases.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "csv":
		return FormatCSV, nil
	case "md", "markdown":
		return FormatMarkdown, nil
	case "txt", "text":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	case "xlsx", "excel":
		return FormatXLSX, nil
	}
	return "", fmt.Errorf("%w: unknown export format %q", shared.ErrInvalidFlag, s)
}

// RecipeExport is a recipe with everything its detail screen shows.
type RecipeExport struct {
	Recipe      models.RecipeDetail       `json:"recipe"`
	Ingredients []models.RecipeIngredient `json:"ingredients"`
	Steps       []models.Step             `json:"steps"`
	Reviews     []models.Review           `json:"reviews,omitempty"`
	Nutrition   *models.Nutrition         `json:"nutrition,omitempty"`
	Stats       models.RatingStats        `json:"stats"`
}

// Slug turns a title into a file-name-safe base name.
func Slug(title string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func ingredientLine(in models.RecipeIngredient) string {
	qty := strings.TrimSpace(in.Quantity + " " + in.Unit)
	return fmt.Sprintf("%s %s", qty, in.Name)
}

// ExportRecipeToMarkdown renders a recipe card with an optional cover image.
func ExportRecipeToMarkdown(r *RecipeExport, imageFilename string) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# %s\n\n", r.Recipe.Title))
	if imageFilename != "" {
		buf.WriteString(fmt.Sprintf("![Cover](%s)\n\n", imageFilename))
	}
	if d := r.Recipe.DescriptionOrEmpty(); d != "" {
		buf.WriteString(d + "\n\n")
	}

	buf.WriteString(fmt.Sprintf("**By**: %s\n", r.Recipe.Creator()))
	if r.Recipe.Servings != nil {
		buf.WriteString(fmt.Sprintf("**Servings**: %s\n", *r.Recipe.Servings))
	}
	if len(r.Recipe.Tags) > 0 {
		buf.WriteString(fmt.Sprintf("**Tags**: %s\n", strings.Join(r.Recipe.Tags, ", ")))
	}
	buf.WriteString(fmt.Sprintf("**Rating**: %s (%d reviews)\n\n", r.Stats.AverageString(), r.Stats.Total))

	if r.Nutrition != nil {
		buf.WriteString("## Nutrition\n\n")
		buf.WriteString("| Calories | Protein | Fat | Carbs |\n|---|---|---|---|\n")
		buf.WriteString(fmt.Sprintf("| %s | %s g | %s g | %s g |\n\n",
			formatFloat(r.Nutrition.Calories), formatFloat(r.Nutrition.Protein),
			formatFloat(r.Nutrition.Fat), formatFloat(r.Nutrition.Carbs)))
	}

	buf.WriteString("## Ingredients\n\n")
	for _, in := range r.Ingredients {
		buf.WriteString("- " + ingredientLine(in) + "\n")
	}

	buf.WriteString("\n## Steps\n\n")
	for i, s := range r.Steps {
		buf.WriteString(fmt.Sprintf("%d. %s\n", i+1, s.Detail))
	}

	if len(r.Reviews) > 0 {
		buf.WriteString("\n## Reviews\n\n")
		for _, rv := range r.Reviews {
			rating := "-"
			if rv.Rating != nil {
				rating = strconv.Itoa(*rv.Rating) + "/5"
			}
			text := ""
			if rv.Text != nil && *rv.Text != "" {
				text = ": " + *rv.Text
			}
			buf.WriteString(fmt.Sprintf("- **%s** (%s)%s\n", rv.Author(), rating, text))
		}
	}

	return buf.Bytes(), nil
}

// ExportRecipeToText renders a recipe as plain text.
func ExportRecipeToText(r *RecipeExport) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Recipe: %s\n", r.Recipe.Title))
	if d := r.Recipe.DescriptionOrEmpty(); d != "" {
		buf.WriteString(fmt.Sprintf("Description: %s\n", d))
	}
	buf.WriteString(fmt.Sprintf("By: %s\n\n", r.Recipe.Creator()))

	buf.WriteString("Ingredients:\n")
	for _, in := range r.Ingredients {
		buf.WriteString("  - " + ingredientLine(in) + "\n")
	}
	buf.WriteString("\nSteps:\n")
	for i, s := range r.Steps {
		buf.WriteString(fmt.Sprintf("  %d. %s\n", i+1, s.Detail))
	}

	return buf.Bytes(), nil
}

// ExportPlanToCSV lists a plan's recipes with columns: ID, Title, Calories, Protein, Fat, Carbs
func ExportPlanToCSV(plan *models.SavedMealPlan) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Title", "Calories", "Protein", "Fat", "Carbs"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, r := range plan.Recipes {
		m := r.Macros()
		record := []string{
			strconv.Itoa(r.ID),
			r.Title,
			formatFloat(m.Calories),
			formatFloat(m.Protein),
			formatFloat(m.Fat),
			formatFloat(m.Carbs),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportPlanToMarkdown renders a plan with its stored totals.
func ExportPlanToMarkdown(plan *models.SavedMealPlan) ([]byte, error) {
	var buf bytes.Buffer
	t := plan.Totals()

	buf.WriteString(fmt.Sprintf("# %s\n\n", plan.Name))
	if !plan.CreatedAt.IsZero() {
		buf.WriteString(fmt.Sprintf("**Created**: %s\n", plan.CreatedAt.Date()))
	}
	buf.WriteString(fmt.Sprintf("**Recipes**: %d\n", len(plan.Recipes)))
	buf.WriteString(fmt.Sprintf("**Totals**: %s kcal, %s g protein, %s g fat, %s g carbs\n\n",
		formatFloat(t.Calories), formatFloat(t.Protein), formatFloat(t.Fat), formatFloat(t.Carbs)))

	buf.WriteString("## Recipes\n\n")
	for i, r := range plan.Recipes {
		buf.WriteString(fmt.Sprintf("%d. %s [%s kcal]\n", i+1, r.Title, formatFloat(r.CaloriesOrZero())))
	}

	return buf.Bytes(), nil
}

// ExportPlanToText renders a plan as plain text.
func ExportPlanToText(plan *models.SavedMealPlan) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Meal plan: %s\n", plan.Name))
	buf.WriteString(fmt.Sprintf("Calories: %s\n", formatFloat(plan.Totals().Calories)))
	buf.WriteString(fmt.Sprintf("Recipes: %d\n\n", len(plan.Recipes)))

	for i, r := range plan.Recipes {
		buf.WriteString(fmt.Sprintf("%d. %s\n", i+1, r.Title))
	}

	return buf.Bytes(), nil
}

// DownloadImage downloads an image from the given URL and returns the raw bytes
func DownloadImage(ctx context.Context, url string) ([]byte, error) {
	if url == "" {
		return nil, fmt.Errorf("empty URL provided")
	}

	client := &http.Client{
		Timeout: 30 * time.Second,
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create image request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to download image: %w", shared.ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download image: status %d", resp.StatusCode)
	}

	imageData, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}

	return imageData, nil
}

// CSVExportResult contains the paths of files created by WritePlanCSVExport
type CSVExportResult struct {
	RecipesFile  string
	MetadataFile string
}

// WritePlanCSVExport writes {base}_recipes.csv and {base}_metadata.json for a plan.
//
// The base defaults to the slug of the plan name.
func WritePlanCSVExport(plan *models.SavedMealPlan, baseFilepath string) (*CSVExportResult, error) {
	if baseFilepath == "" {
		baseFilepath = Slug(plan.Name)
	}

	csvData, err := ExportPlanToCSV(plan)
	if err != nil {
		return nil, fmt.Errorf("failed to generate CSV: %w", err)
	}

	recipesFile := baseFilepath + "_recipes.csv"
	if err := os.WriteFile(recipesFile, csvData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write CSV file: %w", err)
	}

	metadata := struct {
		models.SavedMealPlanInfo
		CreatedAt string                 `json:"created_at,omitempty"`
		Totals    models.NutritionTotals `json:"totals"`
	}{plan.SavedMealPlanInfo, plan.CreatedAt.Date(), plan.Totals()}
	metadataJSON, err := shared.MarshalJSON(metadata, true)
	if err != nil {
		return nil, fmt.Errorf("failed to generate metadata JSON: %w", err)
	}

	metadataFile := baseFilepath + "_metadata.json"
	if err := os.WriteFile(metadataFile, metadataJSON, 0644); err != nil {
		return nil, fmt.Errorf("failed to write metadata file: %w", err)
	}

	return &CSVExportResult{RecipesFile: recipesFile, MetadataFile: metadataFile}, nil
}

// MarkdownExportResult contains information about files created by WriteRecipeMarkdownExport
type MarkdownExportResult struct {
	Directory  string
	Files      []string
	CoverImage string
	// Warnings lists non-fatal problems, such as a cover image that could not be fetched.
	Warnings []string
}

// WriteRecipeMarkdownExport writes {dir}/README.md and, when the recipe has an image that can be
// downloaded, {dir}/cover.jpg. The directory defaults to the recipe's slug.
func WriteRecipeMarkdownExport(ctx context.Context, r *RecipeExport, outputDir string) (*MarkdownExportResult, error) {
	if outputDir == "" {
		outputDir = Slug(r.Recipe.Title)
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	result := &MarkdownExportResult{Directory: outputDir, Files: []string{}}

	var coverImageFilename string
	if imageURL := r.Recipe.ImageURLOrEmpty(); imageURL != "" {
		imageData, err := DownloadImage(ctx, imageURL)
		if err != nil {
			result.Warnings = append(result.Warnings, fmt.Sprintf("failed to download cover image: %v", err))
		} else {
			coverImageFilename = "cover.jpg"
			coverImagePath := filepath.Join(outputDir, coverImageFilename)
			if err := os.WriteFile(coverImagePath, imageData, 0644); err != nil {
				result.Warnings = append(result.Warnings, fmt.Sprintf("failed to save cover image: %v", err))
				coverImageFilename = ""
			} else {
				result.CoverImage = coverImagePath
				result.Files = append(result.Files, coverImagePath)
			}
		}
	}

	mdData, err := ExportRecipeToMarkdown(r, coverImageFilename)
	if err != nil {
		return nil, fmt.Errorf("failed to generate Markdown: %w", err)
	}

	mdFile := filepath.Join(outputDir, "README.md")
	if err := os.WriteFile(mdFile, mdData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write Markdown file: %w", err)
	}
	result.Files = append(result.Files, mdFile)

	return result, nil
}

// WriteFile renders data to path, defaulting the name to {base}.{ext}.
func WriteFile(data []byte, path, base string, format Format) (string, error) {
	if path == "" {
		path = fmt.Sprintf("%s.%s", base, format)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s file: %w", format, err)
	}
	return path, nil
}
