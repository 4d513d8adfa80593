package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/desertthunder/staffdir/internal/directory"
	"github.com/desertthunder/staffdir/internal/formatter"
	"github.com/desertthunder/staffdir/internal/models"
	"github.com/desertthunder/staffdir/internal/shared"
	"github.com/urfave/cli/v3"
)

func requireArg(cmd *cli.Command, name string) (string, error) {
	v := strings.TrimSpace(cmd.StringArg(name))
	if v == "" {
		return "", fmt.Errorf("%w: %s", shared.ErrMissingArgument, name)
	}
	return v, nil
}

// confirm asks a y/N question on the runner's input unless yes is already set.
func (r *Runner) confirm(yes bool, format string, args ...any) error {
	if yes {
		return nil
	}
	r.writePlain(format+" [y/N] ", args...)

	line, err := bufio.NewReader(r.input).ReadString('\n')
	if err != nil && line == "" {
		return fmt.Errorf("%w: no confirmation given", shared.ErrAborted)
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return nil
	default:
		return shared.ErrAborted
	}
}

// queryFromFlags builds a [directory.Query] from the filter flags, falling back to the configured default sort.
func (r *Runner) queryFromFlags(cmd *cli.Command) (directory.Query, error) {
	q := directory.Query{
		Search:     cmd.String("search"),
		Grade:      cmd.String("grade"),
		Department: cmd.String("department"),
		Country:    cmd.String("country"),
	}

	sortBy := cmd.String("sort")
	if sortBy == "" {
		sortBy = r.config.Directory.DefaultSort
	}
	order := cmd.String("order")
	if order == "" {
		order = r.config.Directory.DefaultOrder
	}

	var err error
	if q.SortBy, err = directory.ParseSortField(sortBy); err != nil {
		return q, err
	}
	if q.Order, err = directory.ParseOrder(order); err != nil {
		return q, err
	}
	return q, nil
}

// applyEmployeeFlags copies every employee field flag that was set onto e.
func applyEmployeeFlags(cmd *cli.Command, e *models.Employee) {
	for flag, dst := range map[string]*string{
		"name":       &e.Name,
		"role":       &e.Role,
		"department": &e.Department,
		"grade":      &e.GradeLevel,
		"country":    &e.Country,
		"state":      &e.State,
		"address":    &e.Address,
		"email":      &e.Email,
		"phone":      &e.Phone,
	} {
		if cmd.IsSet(flag) {
			*dst = cmd.String(flag)
		}
	}
}

// EmployeeAdd creates an employee from flags.
func (r *Runner) EmployeeAdd(ctx context.Context, cmd *cli.Command) error {
	repos, err := r.openRepos()
	if err != nil {
		return err
	}

	var e models.Employee
	applyEmployeeFlags(cmd, &e)
	if err := repos.Employees.Create(&e); err != nil {
		return fmt.Errorf("failed to add employee: %w", err)
	}

	r.logger.Debug("employee created", "id", e.ID)
	return r.writeSuccess("Added %s (%s)", e.Name, e.ID)
}

// EmployeeEdit updates the fields given as flags and keeps the rest.
func (r *Runner) EmployeeEdit(ctx context.Context, cmd *cli.Command) error {
	id, err := requireArg(cmd, "id")
	if err != nil {
		return err
	}
	repos, err := r.openRepos()
	if err != nil {
		return err
	}

	e, err := repos.Employees.Get(id)
	if err != nil {
		return err
	}
	applyEmployeeFlags(cmd, e)
	if err := repos.Employees.Update(e); err != nil {
		return fmt.Errorf("failed to update employee: %w", err)
	}

	return r.writeSuccess("Updated %s", e.Name)
}

// EmployeeShow prints one employee profile.
func (r *Runner) EmployeeShow(ctx context.Context, cmd *cli.Command) error {
	id, err := requireArg(cmd, "id")
	if err != nil {
		return err
	}
	repos, err := r.openRepos()
	if err != nil {
		return err
	}

	e, err := repos.Employees.Get(id)
	if err != nil {
		return err
	}
	if cmd.Bool("json") {
		return r.writeJSON(e, true)
	}

	var grade *models.GradeLevel
	if e.GradeLevel != "" {
		if grade, err = repos.GradeLevels.FindByName(e.GradeLevel); err != nil && !errors.Is(err, shared.ErrNotFound) {
			return err
		}
	}
	return formatter.WriteProfile(r.output, *e, grade)
}

// EmployeeDelete removes one employee.
func (r *Runner) EmployeeDelete(ctx context.Context, cmd *cli.Command) error {
	id, err := requireArg(cmd, "id")
	if err != nil {
		return err
	}
	repos, err := r.openRepos()
	if err != nil {
		return err
	}

	e, err := repos.Employees.Get(id)
	if err != nil {
		return err
	}
	if err := repos.Employees.Delete(id); err != nil {
		return fmt.Errorf("failed to delete employee: %w", err)
	}

	return r.writeSuccess("Deleted %s", e.Name)
}

// EmployeeList prints the filtered, sorted directory as a table, JSON or an export format.
func (r *Runner) EmployeeList(ctx context.Context, cmd *cli.Command) error {
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

	if cmd.Bool("json") {
		return r.writeJSON(filtered, cmd.Bool("pretty"))
	}

	switch format := strings.ToLower(cmd.String("format")); format {
	case "", "table":
		if len(filtered) == 0 {
			if len(employees) == 0 {
				r.writeHint("No employees yet. Add one with 'staffdir employee add'.")
			} else {
				r.writeHint("No employees match the current filters.")
			}
			return nil
		}
		if err := formatter.WriteTable(r.output, filtered); err != nil {
			return err
		}
		stats := directory.ComputeStats(employees, filtered, grades)
		summary := fmt.Sprintf("Showing %d of %d employees", stats.Filtered, stats.Total)
		if n := q.ActiveFilterCount(); n > 0 {
			summary = fmt.Sprintf("%s (%d filters active)", summary, n)
		}
		r.writeHint(summary)
		return nil
	case "csv", "markdown", "md", "txt", "text":
		data, err := formatter.Render(format, filtered, grades)
		if err != nil {
			return err
		}
		_, err = r.output.Write(data)
		return err
	default:
		return fmt.Errorf("%w: unsupported list format %q", shared.ErrInvalidFlag, format)
	}
}
