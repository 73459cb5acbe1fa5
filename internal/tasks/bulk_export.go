package tasks

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/buinguyenkhai/pttkht-20251-recipe-recommendation-system/internal/formatter"
	"github.com/buinguyenkhai/pttkht-20251-recipe-recommendation-system/internal/models"
	"github.com/buinguyenkhai/pttkht-20251-recipe-recommendation-system/internal/shared"
	"golang.org/x/time/rate"
)

// Worker pool bounds.
const (
	DefaultWorkers = 4
	MaxWorkers     = 10
)

// ManifestFile is written to the output directory of every bulk export.
const ManifestFile = "export_manifest.json"

// WorkbookFile collects every plan when exporting as XLSX.
const WorkbookFile = "meal_plans.xlsx"

// BulkExportOpts contains configuration for bulk meal plan exports.
type BulkExportOpts struct {
	Format     formatter.Format // json, csv, md, txt or xlsx
	OutputDir  string           // Base output directory (default: meal_plans_{epoch})
	NumWorkers int              // Concurrent workers (default: 4)
	RateLimit  float64          // Plan fetches per second (default: 5)
}

// BulkExport exports the plans with the given ids, or every saved plan when ids is empty.
//
// Plans are fetched under a rate limiter and written by a worker pool. Failed plans are
// recorded in the result and the manifest; they do not stop the export.
func (e *Exporter) BulkExport(
	ctx context.Context,
	prog chan<- ProgressUpdate,
	ids []int,
	opts BulkExportOpts,
) (*BulkExportResult, error) {
	if e.src == nil {
		return nil, fmt.Errorf("%w: plan source not initialized", shared.ErrServiceUnavailable)
	}

	if opts.Format == "" {
		opts.Format = formatter.FormatJSON
	}
	if opts.OutputDir == "" {
		opts.OutputDir = fmt.Sprintf("meal_plans_%d", time.Now().Unix())
	}
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = DefaultWorkers
	}
	if opts.NumWorkers > MaxWorkers {
		opts.NumWorkers = MaxWorkers
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 5.0
	}

	ids, names, err := e.resolveIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	sendProgress(prog, listPlansUpdate(len(ids)))

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	result := &BulkExportResult{
		TotalPlans:      len(ids),
		OutputDirectory: opts.OutputDir,
		Results:         make([]PlanExportResult, 0, len(ids)),
	}

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)

	jobs := make(chan PlanExportJob, len(ids))
	results := make(chan PlanExportResult, len(ids))

	book := &workbook{}
	var wg sync.WaitGroup
	for i := 0; i < opts.NumWorkers; i++ {
		wg.Add(1)
		go e.exportWorker(ctx, &wg, jobs, results, book, opts)
	}

	go func() {
		defer close(jobs)
		for i, id := range ids {
			if err := limiter.Wait(ctx); err != nil {
				return
			}

			name := names[id]
			if name == "" {
				name = fmt.Sprintf("plan %d", id)
			}
			sendProgress(prog, fetchPlanUpdate(i+1, len(ids), name))

			plan, err := e.src.SavedPlan(ctx, id)
			if err != nil {
				results <- PlanExportResult{
					PlanID:   id,
					PlanName: fmt.Sprintf("Unknown (%d)", id),
					Error:    fmt.Errorf("failed to fetch plan: %w", err),
				}
				continue
			}
			jobs <- PlanExportJob{PlanID: id, Plan: plan}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	completed := 0
	for res := range results {
		completed++
		result.Results = append(result.Results, res)

		if res.Success {
			result.SuccessfulExports++
			sendProgress(prog, exportCompletedUpdate(completed, len(ids), res.PlanName, len(res.Files)))
		} else {
			result.FailedExports++
			e.logger.Warn("plan export failed", "plan", res.PlanID, "error", res.Error)
			sendProgress(prog, exportFailedUpdate(completed, len(ids), res.PlanName, res.Error))
		}
	}
	sortResults(result.Results)

	if err := ctx.Err(); err != nil {
		return result, err
	}

	if opts.Format == formatter.FormatXLSX && result.SuccessfulExports > 0 {
		path := filepath.Join(opts.OutputDir, WorkbookFile)
		if err := book.write(path); err != nil {
			return result, err
		}
		for i := range result.Results {
			if result.Results[i].Success {
				result.Results[i].Files = []string{path}
			}
		}
	}

	manifestPath := filepath.Join(opts.OutputDir, ManifestFile)
	if err := WriteBulkExportManifest(result, string(opts.Format), manifestPath); err != nil {
		return result, fmt.Errorf("export completed but failed to write manifest: %w", err)
	}
	result.ManifestPath = manifestPath
	sendProgress(prog, manifestUpdate(manifestPath))
	return result, nil
}

// exportWorker is a worker goroutine that exports plans from the jobs channel.
func (e *Exporter) exportWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	jobs <-chan PlanExportJob,
	results chan<- PlanExportResult,
	book *workbook,
	opts BulkExportOpts,
) {
	defer wg.Done()

	for job := range jobs {
		select {
		case <-ctx.Done():
			return
		default:
		}
		results <- e.exportSinglePlan(job, book, opts)
	}
}

// exportSinglePlan writes one plan in the requested format.
func (e *Exporter) exportSinglePlan(j PlanExportJob, book *workbook, opts BulkExportOpts) PlanExportResult {
	result := PlanExportResult{
		PlanID:   j.PlanID,
		PlanName: j.Plan.Name,
		Files:    []string{},
	}
	base := filepath.Join(opts.OutputDir, fmt.Sprintf("%d_%s", j.PlanID, formatter.Slug(j.Plan.Name)))

	var (
		data []byte
		err  error
	)
	switch opts.Format {
	case formatter.FormatCSV:
		csvRes, err := formatter.WritePlanCSVExport(j.Plan, base)
		if err != nil {
			result.Error = fmt.Errorf("CSV export failed: %w", err)
			return result
		}
		result.Files = []string{csvRes.RecipesFile, csvRes.MetadataFile}
		result.Success = true
		return result
	case formatter.FormatXLSX:
		// rows are written to the shared workbook once every plan is in
		book.add(j.Plan)
		result.Success = true
		return result
	case formatter.FormatMarkdown:
		data, err = formatter.ExportPlanToMarkdown(j.Plan)
	case formatter.FormatText:
		data, err = formatter.ExportPlanToText(j.Plan)
	default:
		data, err = shared.MarshalJSON(j.Plan, true)
	}
	if err != nil {
		result.Error = fmt.Errorf("%s export failed: %w", opts.Format, err)
		return result
	}

	path, err := formatter.WriteFile(data, "", base, opts.Format)
	if err != nil {
		result.Error = err
		return result
	}
	result.Files = []string{path}
	result.Success = true
	return result
}

// workbook gathers plans from the workers for a single XLSX file.
type workbook struct {
	mu    sync.Mutex
	plans []models.SavedMealPlan
}

func (b *workbook) add(p *models.SavedMealPlan) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.plans = append(b.plans, *p)
}

func (b *workbook) write(path string) error {
	b.mu.Lock()
	plans := append([]models.SavedMealPlan(nil), b.plans...)
	b.mu.Unlock()
	sort.Slice(plans, func(i, j int) bool { return plans[i].ID < plans[j].ID })

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create workbook: %w", err)
	}
	if err := formatter.WritePlansXLSX(f, plans); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
