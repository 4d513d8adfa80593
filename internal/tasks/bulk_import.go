package tasks

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/desertthunder/staffdir/internal/models"
	"github.com/desertthunder/staffdir/internal/shared"
	"golang.org/x/time/rate"
)

// ImportOpts configures [Engine.BulkImport].
type ImportOpts struct {
	NumWorkers       int           // Concurrent validators (default: 4, max: 10)
	ProgressInterval time.Duration // Minimum gap between validation progress updates (default: 50ms)
	SkipInvalid      bool          // Import the valid records even when some fail
	SourceRows       []int         // Worksheet row of each record; positions are used when unset
}

// RowResult is the outcome of validating one input record.
type RowResult struct {
	Index    int             // Position in the input, starting at 1
	Row      int             // Worksheet row the record came from
	Employee models.Employee // Normalized record
	Error    error           // Validation failure, nil when valid
}

// BulkImportResult summarizes an import.
type BulkImportResult struct {
	TotalRows int
	Created   int
	Updated   int
	Invalid   []RowResult // Rejected records ordered by Index
}

// BulkImport validates records concurrently and saves the valid ones in a single write.
//
// Grade names are matched ignoring case and rewritten to the stored spelling. Records with an ID that
// already exists replace the stored employee. Unless opts.SkipInvalid is set, any invalid record aborts
// the import before anything is written.
func (e *Engine) BulkImport(
	ctx context.Context,
	prog chan<- ProgressUpdate,
	records []models.Employee,
	opts ImportOpts,
) (*BulkImportResult, error) {
	workers := clampWorkers(opts.NumWorkers)
	if opts.ProgressInterval <= 0 {
		opts.ProgressInterval = defaultProgressInterval
	}

	grades, err := e.repos.GradeLevels.All()
	if err != nil {
		return nil, err
	}
	canonical := make(map[string]string, len(grades))
	for _, g := range grades {
		canonical[strings.ToLower(g.Name)] = g.Name
	}

	total := len(records)
	result := &BulkImportResult{TotalRows: total, Invalid: []RowResult{}}

	jobs := make(chan int, total)
	results := make(chan RowResult, total)

	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				select {
				case <-ctx.Done():
					return
				default:
				}
				res := validateRecord(i, records[i], canonical)
				if i < len(opts.SourceRows) {
					res.Row = opts.SourceRows[i]
				}
				results <- res
			}
		}()
	}

	for i := range records {
		jobs <- i
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	limiter := rate.NewLimiter(rate.Every(opts.ProgressInterval), 1)
	valid := make([]RowResult, 0, total)
	completed := 0
	for res := range results {
		completed++
		if res.Error != nil {
			result.Invalid = append(result.Invalid, res)
		} else {
			valid = append(valid, res)
		}
		if completed == total || limiter.Allow() {
			e.sendProgress(prog, rowUpdate(ValidateRows, completed, total, res.Employee.Name))
		}
	}

	if err := ctx.Err(); err != nil {
		return result, err
	}

	sort.Slice(result.Invalid, func(i, j int) bool { return result.Invalid[i].Index < result.Invalid[j].Index })
	sort.Slice(valid, func(i, j int) bool { return valid[i].Index < valid[j].Index })

	if len(result.Invalid) > 0 && !opts.SkipInvalid {
		return result, fmt.Errorf("%w: %d of %d records are invalid", shared.ErrValidation, len(result.Invalid), total)
	}
	if len(valid) == 0 {
		return result, nil
	}

	accepted := make([]models.Employee, len(valid))
	for i, v := range valid {
		accepted[i] = v.Employee
	}

	e.sendProgress(prog, rowUpdate(SaveRecords, 1, 1, fmt.Sprintf("Saving %d employees...", len(accepted))))
	upserted, err := e.repos.Employees.Upsert(accepted)
	if err != nil {
		return result, fmt.Errorf("failed to save imported employees: %w", err)
	}

	result.Created = upserted.Created
	result.Updated = upserted.Updated
	e.logger.Info("bulk import complete", "created", result.Created, "updated", result.Updated, "invalid", len(result.Invalid))
	return result, nil
}

func validateRecord(i int, rec models.Employee, canonical map[string]string) RowResult {
	rec.Normalize()
	res := RowResult{Index: i + 1, Row: i + 1, Employee: rec}

	if err := rec.Validate(); err != nil {
		res.Error = err
		return res
	}

	if rec.GradeLevel != "" {
		name, ok := canonical[strings.ToLower(rec.GradeLevel)]
		if !ok {
			res.Error = fmt.Errorf("%w: %s", shared.ErrUnknownGrade, rec.GradeLevel)
			return res
		}
		res.Employee.GradeLevel = name
	}
	return res
}
