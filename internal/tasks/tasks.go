package tasks

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/buinguyenkhai/pttkht-20251-recipe-recommendation-system/internal/models"
	"github.com/buinguyenkhai/pttkht-20251-recipe-recommendation-system/internal/shared"
	"github.com/charmbracelet/log"
)

// PlanSource reads saved meal plans.
type PlanSource interface {
	SavedPlans(ctx context.Context) ([]models.SavedMealPlanInfo, error)
	SavedPlan(ctx context.Context, id int) (*models.SavedMealPlan, error)
}

// PlanExportJob is a fetched plan waiting to be written.
type PlanExportJob struct {
	PlanID int
	Plan   *models.SavedMealPlan
}

// PlanExportResult is the outcome of exporting one plan.
type PlanExportResult struct {
	PlanID   int
	PlanName string
	Success  bool
	Files    []string
	Error    error
}

// BulkExportResult summarises a bulk export.
type BulkExportResult struct {
	TotalPlans        int
	SuccessfulExports int
	FailedExports     int
	Results           []PlanExportResult
	OutputDirectory   string
	ManifestPath      string
}

// Exporter runs bulk meal plan exports.
type Exporter struct {
	src    PlanSource
	logger *log.Logger
}

func NewExporter(src PlanSource, logger *log.Logger) *Exporter {
	if logger == nil {
		logger = shared.NewLogger(io.Discard)
	}
	return &Exporter{src: src, logger: logger}
}

// resolveIDs returns ids unchanged, or every saved plan's id when ids is empty.
func (e *Exporter) resolveIDs(ctx context.Context, ids []int) ([]int, map[int]string, error) {
	names := map[int]string{}
	if len(ids) > 0 {
		return ids, names, nil
	}

	plans, err := e.src.SavedPlans(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list saved plans: %w", err)
	}
	for _, p := range plans {
		ids = append(ids, p.ID)
		names[p.ID] = p.Name
	}
	return ids, names, nil
}

type manifestEntry struct {
	PlanID   int      `json:"plan_id"`
	PlanName string   `json:"plan_name"`
	Status   string   `json:"status"`
	Files    []string `json:"files,omitempty"`
	Error    string   `json:"error,omitempty"`
}

type manifest struct {
	Format            string          `json:"format"`
	TotalPlans        int             `json:"total_plans"`
	SuccessfulExports int             `json:"successful_exports"`
	FailedExports     int             `json:"failed_exports"`
	OutputDirectory   string          `json:"output_directory"`
	Plans             []manifestEntry `json:"plans"`
}

// WriteBulkExportManifest writes a JSON summary of result to path.
func WriteBulkExportManifest(result *BulkExportResult, format, path string) error {
	m := manifest{
		Format:            format,
		TotalPlans:        result.TotalPlans,
		SuccessfulExports: result.SuccessfulExports,
		FailedExports:     result.FailedExports,
		OutputDirectory:   result.OutputDirectory,
		Plans:             make([]manifestEntry, 0, len(result.Results)),
	}
	for _, r := range result.Results {
		entry := manifestEntry{PlanID: r.PlanID, PlanName: r.PlanName, Status: "success", Files: r.Files}
		if !r.Success {
			entry.Status = "failed"
			if r.Error != nil {
				entry.Error = r.Error.Error()
			}
		}
		m.Plans = append(m.Plans, entry)
	}

	data, err := shared.MarshalJSON(m, true)
	if err != nil {
		return fmt.Errorf("failed to encode manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}

func sortResults(results []PlanExportResult) {
	sort.Slice(results, func(i, j int) bool { return results[i].PlanID < results[j].PlanID })
}
