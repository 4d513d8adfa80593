package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/staffdir/internal/directory"
	"github.com/desertthunder/staffdir/internal/formatter"
	"github.com/desertthunder/staffdir/internal/models"
	"github.com/urfave/cli/v3"
)

func applyGradeFlags(cmd *cli.Command, g *models.GradeLevel) {
	for flag, dst := range map[string]*string{
		"name":        &g.Name,
		"description": &g.Description,
		"item-code":   &g.ItemCode,
	} {
		if cmd.IsSet(flag) {
			*dst = cmd.String(flag)
		}
	}
}

// GradeAdd creates a grade level from flags.
func (r *Runner) GradeAdd(ctx context.Context, cmd *cli.Command) error {
	repos, err := r.openRepos()
	if err != nil {
		return err
	}

	var g models.GradeLevel
	applyGradeFlags(cmd, &g)
	if err := repos.GradeLevels.Create(&g); err != nil {
		return fmt.Errorf("failed to add grade level: %w", err)
	}

	return r.writeSuccess("Added grade level %s (%s)", g.Name, g.ID)
}

// GradeEdit updates a grade level. A rename moves assigned employees to the new name.
func (r *Runner) GradeEdit(ctx context.Context, cmd *cli.Command) error {
	id, err := requireArg(cmd, "id")
	if err != nil {
		return err
	}
	repos, err := r.openRepos()
	if err != nil {
		return err
	}

	g, err := repos.GradeLevels.Get(id)
	if err != nil {
		return err
	}
	oldName := g.Name
	moved, err := repos.GradeLevels.EmployeeCount(oldName)
	if err != nil {
		return err
	}

	applyGradeFlags(cmd, g)
	if err := repos.GradeLevels.Update(g); err != nil {
		return fmt.Errorf("failed to update grade level: %w", err)
	}

	if g.Name != oldName && moved > 0 {
		r.writeHint("Moved %d employees from %s to %s", moved, oldName, g.Name)
	}
	return r.writeSuccess("Updated grade level %s", g.Name)
}

// GradeDelete removes a grade level after confirmation, clearing it from every assigned employee.
func (r *Runner) GradeDelete(ctx context.Context, cmd *cli.Command) error {
	id, err := requireArg(cmd, "id")
	if err != nil {
		return err
	}
	repos, err := r.openRepos()
	if err != nil {
		return err
	}

	g, err := repos.GradeLevels.Get(id)
	if err != nil {
		return err
	}
	count, err := repos.GradeLevels.EmployeeCount(g.Name)
	if err != nil {
		return err
	}

	if count > 0 {
		if err := r.confirm(cmd.Bool("yes"), "Delete grade level %s? %d assigned employees will be unassigned.", g.Name, count); err != nil {
			return err
		}
	}

	if err := repos.GradeLevels.Delete(id); err != nil {
		return fmt.Errorf("failed to delete grade level: %w", err)
	}
	return r.writeSuccess("Deleted grade level %s", g.Name)
}

type gradeRow struct {
	models.GradeLevel
	EmployeeCount int `json:"employeeCount"`
}

// GradeList prints every grade level with its assigned employee count.
func (r *Runner) GradeList(ctx context.Context, cmd *cli.Command) error {
	repos, err := r.openRepos()
	if err != nil {
		return err
	}

	employees, grades, err := repos.Snapshot()
	if err != nil {
		return err
	}
	counts := directory.GradeCounts(employees)

	if cmd.Bool("json") {
		rows := make([]gradeRow, len(grades))
		for i, g := range grades {
			rows[i] = gradeRow{GradeLevel: g, EmployeeCount: counts[g.Name]}
		}
		return r.writeJSON(rows, true)
	}

	if len(grades) == 0 {
		r.writeHint("No grade levels. Add one with 'staffdir grade add --name NAME'.")
		return nil
	}
	return formatter.WriteGradeTable(r.output, grades, counts)
}
