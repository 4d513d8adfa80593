package tasks

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/desertthunder/staffdir/internal/formatter"
	"github.com/desertthunder/staffdir/internal/models"
	"github.com/desertthunder/staffdir/internal/shared"
)

// ExportFormats lists every format [Engine.BulkExport] can write.
var ExportFormats = []string{"json", "csv", "markdown", "txt", "xlsx"}

var extensions = map[string]string{
	"json":     ".json",
	"csv":      ".csv",
	"markdown": ".md",
	"txt":      ".txt",
	"xlsx":     ".xlsx",
}

// ExportOpts configures [Engine.BulkExport].
type ExportOpts struct {
	Formats    []string // Formats to write (default: all of [ExportFormats])
	OutputDir  string   // Output directory (default: staff_directory_export_{epoch})
	NumWorkers int      // Concurrent writers (default: 4, max: 10)
}

// FormatExportResult is the outcome of writing one format.
type FormatExportResult struct {
	Format  string `json:"format"`
	File    string `json:"file,omitempty"`
	Success bool   `json:"success"`
	Error   error  `json:"-"`
	Message string `json:"error,omitempty"`
}

// BulkExportResult summarizes a multi-format export.
type BulkExportResult struct {
	OutputDirectory   string               `json:"outputDirectory"`
	Employees         int                  `json:"employees"`
	GradeLevels       int                  `json:"gradeLevels"`
	SuccessfulExports int                  `json:"successfulExports"`
	FailedExports     int                  `json:"failedExports"`
	Results           []FormatExportResult `json:"results"`
	ManifestPath      string               `json:"-"`
}

// BulkExport writes employees and grades in several formats concurrently and records a manifest.
//
// The json format is the importable backup document; the others are for reading and sharing.
// A failed format does not stop the others.
func (e *Engine) BulkExport(
	ctx context.Context,
	prog chan<- ProgressUpdate,
	employees []models.Employee,
	grades []models.GradeLevel,
	opts ExportOpts,
) (*BulkExportResult, error) {
	if len(opts.Formats) == 0 {
		opts.Formats = ExportFormats
	}
	for _, f := range opts.Formats {
		if _, ok := extensions[f]; !ok {
			return nil, fmt.Errorf("%w: unsupported format %q", shared.ErrInvalidArgument, f)
		}
	}
	if opts.OutputDir == "" {
		opts.OutputDir = fmt.Sprintf("staff_directory_export_%d", time.Now().Unix())
	}
	workers := clampWorkers(opts.NumWorkers)

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	total := len(opts.Formats)
	result := &BulkExportResult{
		OutputDirectory: opts.OutputDir,
		Employees:       len(employees),
		GradeLevels:     len(grades),
		Results:         make([]FormatExportResult, 0, total),
	}

	jobs := make(chan string, total)
	results := make(chan FormatExportResult, total)

	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for format := range jobs {
				select {
				case <-ctx.Done():
					return
				default:
				}
				results <- e.exportFormat(format, employees, grades, opts.OutputDir)
			}
		}()
	}

	for _, f := range opts.Formats {
		jobs <- f
	}
	close(jobs)

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
			e.sendProgress(prog, rowUpdate(ExportFormat, completed, total, "✓ "+res.File))
		} else {
			result.FailedExports++
			e.sendProgress(prog, rowUpdate(ExportFormat, completed, total, fmt.Sprintf("✗ %s: %v", res.Format, res.Error)))
		}
	}

	if err := ctx.Err(); err != nil {
		return result, err
	}

	sort.Slice(result.Results, func(i, j int) bool { return result.Results[i].Format < result.Results[j].Format })

	e.sendProgress(prog, rowUpdate(WriteManifest, 1, 1, "Writing manifest..."))
	manifestPath := filepath.Join(opts.OutputDir, "export_manifest.json")
	data, err := shared.MarshalJSON(result, true)
	if err != nil {
		return result, fmt.Errorf("export completed but failed to encode manifest: %w", err)
	}
	if err := os.WriteFile(manifestPath, data, 0644); err != nil {
		return result, fmt.Errorf("export completed but failed to write manifest: %w", err)
	}
	result.ManifestPath = manifestPath
	return result, nil
}

func (e *Engine) exportFormat(format string, employees []models.Employee, grades []models.GradeLevel, dir string) FormatExportResult {
	res := FormatExportResult{Format: format}
	path := filepath.Join(dir, "staff-directory"+extensions[format])

	var err error
	if format == "json" {
		var doc string
		doc, err = e.repos.Persistence.ExportData(employees, grades)
		if err == nil {
			err = os.WriteFile(path, []byte(doc), 0644)
		}
	} else {
		err = formatter.WriteExport(format, employees, grades, path)
	}

	if err != nil {
		res.Error = fmt.Errorf("%s export failed: %w", format, err)
		res.Message = res.Error.Error()
		e.logger.Error("export failed", "format", format, "error", err)
		return res
	}

	res.File = path
	res.Success = true
	return res
}
