package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/desertthunder/staffdir/internal/directory"
	"github.com/desertthunder/staffdir/internal/formatter"
	"github.com/desertthunder/staffdir/internal/models"
	"github.com/desertthunder/staffdir/internal/repositories"
	"github.com/desertthunder/staffdir/internal/shared"
	"github.com/desertthunder/staffdir/internal/tasks"
	"github.com/urfave/cli/v3"
)

// printProgress writes progress updates until the channel closes, then closes done.
func (r *Runner) printProgress(progress <-chan tasks.ProgressUpdate, done chan<- struct{}) {
	defer close(done)
	for update := range progress {
		switch update.Phase {
		case tasks.ValidateRows:
			r.writePlain("   %s\n", update.Message)
		case tasks.SaveRecords:
			r.writePlain("\n💾 %s\n", update.Message)
		case tasks.ExportFormat:
			r.writePlain("   %s\n", update.Message)
		case tasks.WriteManifest:
			r.writePlain("\n📝 %s\n", update.Message)
		}
	}
}

// readSource reads path, or the runner's input when path is "-".
func (r *Runner) readSource(path string) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(r.input)
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return data, nil
	}
	return shared.VerifyAndReadFile(path)
}

// DataExport writes the backup document to a file or stdout.
func (r *Runner) DataExport(ctx context.Context, cmd *cli.Command) error {
	repos, err := r.openRepos()
	if err != nil {
		return err
	}

	doc, err := repos.Export()
	if err != nil {
		return fmt.Errorf("failed to export data: %w", err)
	}

	path := cmd.String("output")
	if path == "-" {
		return r.writePlain("%s\n", doc)
	}
	if path == "" {
		path = repositories.BackupFilename(r.now())
	}

	if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
		return fmt.Errorf("failed to write backup: %w", err)
	}
	return r.writeSuccess("Exported backup to %s", path)
}

// DataImport replaces every record with a backup document. Nothing changes when the document is rejected.
func (r *Runner) DataImport(ctx context.Context, cmd *cli.Command) error {
	path, err := requireArg(cmd, "path")
	if err != nil {
		return err
	}
	data, err := r.readSource(path)
	if err != nil {
		return err
	}
	repos, err := r.openRepos()
	if err != nil {
		return err
	}

	result, err := repos.Import(string(data))
	if err != nil {
		return fmt.Errorf("failed to import data: %w", err)
	}
	return r.writeSuccess("Imported %d employees and %d grade levels", len(result.Employees), len(result.GradeLevels))
}

// DataClear removes every record and the automatic backup after confirmation.
func (r *Runner) DataClear(ctx context.Context, cmd *cli.Command) error {
	if err := r.confirm(cmd.Bool("yes"), "Clear all employees, grade levels and the automatic backup?"); err != nil {
		return err
	}
	repos, err := r.openRepos()
	if err != nil {
		return err
	}

	if err := repos.Clear(); err != nil {
		return fmt.Errorf("failed to clear data: %w", err)
	}
	return r.writeSuccess("All data cleared")
}

type dataInfo struct {
	Storage     models.StorageInfo `json:"storage"`
	Employees   int                `json:"employees"`
	GradeLevels int                `json:"gradeLevels"`
	Departments int                `json:"departments"`
	Warning     bool               `json:"warning"`
}

// DataInfo prints storage usage with a data summary and warns above the configured threshold.
func (r *Runner) DataInfo(ctx context.Context, cmd *cli.Command) error {
	repos, err := r.openRepos()
	if err != nil {
		return err
	}

	employees, grades, err := repos.Snapshot()
	if err != nil {
		return err
	}
	storage := repos.Persistence.GetStorageInfo()
	stats := directory.ComputeStats(employees, employees, grades)
	warn := storage.Percentage > r.config.Storage.WarnPercent

	if cmd.Bool("json") {
		return r.writeJSON(dataInfo{
			Storage:     storage,
			Employees:   stats.Total,
			GradeLevels: stats.GradeLevels,
			Departments: stats.Departments,
			Warning:     warn,
		}, true)
	}

	r.writePlainHeader("Data Summary")
	r.writePlain("Employees:     %d\n", stats.Total)
	r.writePlain("Grade levels:  %d\n", stats.GradeLevels)
	r.writePlain("Departments:   %d\n", stats.Departments)
	r.writePlainln("Storage used:  %s of %s (%.1f%%)", humanBytes(storage.Used), humanBytes(storage.Available), storage.Percentage)

	if warn {
		return r.writeWarning("Storage is almost full. Export a backup and clear old records.")
	}
	return nil
}

// DataRestore replaces every record with the automatic backup.
func (r *Runner) DataRestore(ctx context.Context, cmd *cli.Command) error {
	repos, err := r.openRepos()
	if err != nil {
		return err
	}

	result, err := repos.Restore()
	if err != nil {
		return fmt.Errorf("failed to restore backup: %w", err)
	}
	return r.writeSuccess("Restored %d employees and %d grade levels", len(result.Employees), len(result.GradeLevels))
}

// DataSpreadsheet exports the filtered directory and grade levels to an XLSX workbook.
func (r *Runner) DataSpreadsheet(ctx context.Context, cmd *cli.Command) error {
	path, err := requireArg(cmd, "path")
	if err != nil {
		return err
	}
	q, err := r.queryFromFlags(cmd)
	if err != nil {
		return err
	}
	repos, err := r.openRepos()
	if err != nil {
		return err
	}

	employees, grades, err := repos.Snapshot()
	if err != nil {
		return err
	}
	filtered := directory.Apply(employees, q)

	if err := formatter.WriteExport("xlsx", filtered, grades, path); err != nil {
		return err
	}
	return r.writeSuccess("Wrote %d employees to %s", len(filtered), path)
}

// DataLoadSheet bulk imports employees from a spreadsheet.
func (r *Runner) DataLoadSheet(ctx context.Context, cmd *cli.Command) error {
	path, err := requireArg(cmd, "path")
	if err != nil {
		return err
	}
	data, err := shared.VerifyAndReadFile(path)
	if err != nil {
		return err
	}
	if _, err := r.openRepos(); err != nil {
		return err
	}

	rows, err := formatter.ReadRows(bytes.NewReader(data), filepath.Base(path))
	if err != nil {
		return err
	}
	records, sheetRows, err := formatter.ParseEmployees(rows)
	if err != nil {
		return err
	}

	r.writePlain("Validating %d rows from %s\n", len(records), path)
	progress := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go r.printProgress(progress, done)

	result, err := r.engine.BulkImport(ctx, progress, records, tasks.ImportOpts{
		NumWorkers:  int(cmd.Int("workers")),
		SkipInvalid: cmd.Bool("skip-invalid"),
		SourceRows:  sheetRows,
	})
	close(progress)
	<-done

	if result != nil && len(result.Invalid) > 0 {
		r.writePlainln("Invalid rows:")
		for _, row := range result.Invalid {
			r.writePlain("  - row %d (%s): %v\n", row.Row, row.Employee.Name, row.Error)
		}
	}
	if err != nil {
		return err
	}

	r.writePlainHeader("Import Complete")
	r.writePlain("Rows:     %d\n", result.TotalRows)
	r.writePlain("Created:  %d\n", result.Created)
	r.writePlain("Updated:  %d\n", result.Updated)
	r.writePlain("Skipped:  %d\n", len(result.Invalid))
	return nil
}

// DataExportAll writes every record in several formats plus a manifest.
func (r *Runner) DataExportAll(ctx context.Context, cmd *cli.Command) error {
	repos, err := r.openRepos()
	if err != nil {
		return err
	}
	employees, grades, err := repos.Snapshot()
	if err != nil {
		return err
	}

	progress := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go r.printProgress(progress, done)

	result, err := r.engine.BulkExport(ctx, progress, employees, grades, tasks.ExportOpts{
		Formats:    cmd.StringSlice("format"),
		OutputDir:  cmd.String("output-dir"),
		NumWorkers: int(cmd.Int("workers")),
	})
	close(progress)
	<-done
	if err != nil {
		return err
	}

	r.writePlainHeader("Export Complete")
	r.writePlain("Directory:  %s\n", result.OutputDirectory)
	r.writePlain("Succeeded:  %d\n", result.SuccessfulExports)
	r.writePlain("Failed:     %d\n", result.FailedExports)
	r.writePlain("Manifest:   %s\n", result.ManifestPath)
	if result.FailedExports > 0 {
		return r.writeWarning("%d formats failed; see the manifest for details", result.FailedExports)
	}
	return nil
}

// humanBytes renders n as B, KB or MB with one decimal.
func humanBytes(n int) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}
