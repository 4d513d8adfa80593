package repositories

import (
	"errors"
	"fmt"
	"slices"

	"github.com/desertthunder/staffdir/internal/models"
	"github.com/desertthunder/staffdir/internal/shared"
)

var _ models.Repository[*models.GradeLevel] = (*GradeLevelRepository)(nil)

// GradeLevelRepository implements [models.Repository] for [models.GradeLevel] persistence.
//
// Employees reference grades by name, so renames and deletes cascade into the employee list.
type GradeLevelRepository struct {
	p *DataPersistence
}

// NewGradeLevelRepository creates a new [GradeLevelRepository] over p.
func NewGradeLevelRepository(p *DataPersistence) *GradeLevelRepository {
	return &GradeLevelRepository{p: p}
}

// checkUnique rejects g when another grade (different ID) has the same name, ignoring case.
func checkUnique(grades []models.GradeLevel, g *models.GradeLevel) error {
	for _, other := range grades {
		if other.ID != g.ID && models.SameName(other.Name, g.Name) {
			return fmt.Errorf("%w: %s", shared.ErrDuplicateName, g.Name)
		}
	}
	return nil
}

// Create appends a new grade level, generating an ID when blank.
func (r *GradeLevelRepository) Create(g *models.GradeLevel) error {
	g.Normalize()
	if err := g.Validate(); err != nil {
		return err
	}

	return r.p.Atomically(func() error {
		grades, err := r.p.LoadGradeLevels()
		if err != nil {
			return err
		}

		if g.ID == "" {
			g.ID = shared.GenerateID()
		} else if indexOfGradeLevel(grades, g.ID) >= 0 {
			return fmt.Errorf("%w: grade level %s already exists", shared.ErrInvalidInput, g.ID)
		}

		if err := checkUnique(grades, g); err != nil {
			return err
		}

		return r.p.SaveGradeLevels(append(grades, *g))
	})
}

// Get retrieves a grade level by ID.
func (r *GradeLevelRepository) Get(id string) (*models.GradeLevel, error) {
	grades, err := r.p.LoadGradeLevels()
	if err != nil {
		return nil, err
	}

	i := indexOfGradeLevel(grades, id)
	if i < 0 {
		return nil, notFound("grade level", id)
	}

	g := grades[i]
	return &g, nil
}

// FindByName looks a grade up by name, ignoring case.
func (r *GradeLevelRepository) FindByName(name string) (*models.GradeLevel, error) {
	grades, err := r.p.LoadGradeLevels()
	if err != nil {
		return nil, err
	}

	for i := range grades {
		if models.SameName(grades[i].Name, name) {
			g := grades[i]
			return &g, nil
		}
	}
	return nil, notFound("grade level", name)
}

// Update replaces the grade level with the same ID. A rename moves every employee on the old name to the new one.
func (r *GradeLevelRepository) Update(g *models.GradeLevel) error {
	g.Normalize()
	if err := g.Validate(); err != nil {
		return err
	}

	return r.p.Atomically(func() error {
		grades, err := r.p.LoadGradeLevels()
		if err != nil {
			return err
		}

		i := indexOfGradeLevel(grades, g.ID)
		if i < 0 {
			return notFound("grade level", g.ID)
		}

		if err := checkUnique(grades, g); err != nil {
			return err
		}

		previous := slices.Clone(grades)
		oldName := grades[i].Name
		grades[i] = *g
		if err := r.p.SaveGradeLevels(grades); err != nil {
			return err
		}

		if oldName == g.Name {
			return nil
		}

		if err := r.reassign(oldName, g.Name); err != nil {
			return r.rollback(err, func() error { return r.p.SaveGradeLevels(previous) })
		}
		return nil
	})
}

// Delete removes a grade level by ID after clearing it from every assigned employee.
func (r *GradeLevelRepository) Delete(id string) error {
	return r.p.Atomically(func() error {
		grades, err := r.p.LoadGradeLevels()
		if err != nil {
			return err
		}

		i := indexOfGradeLevel(grades, id)
		if i < 0 {
			return notFound("grade level", id)
		}

		employees, err := r.p.LoadEmployees()
		if err != nil {
			return err
		}
		if err := r.reassign(grades[i].Name, ""); err != nil {
			return err
		}

		if err := r.p.SaveGradeLevels(slices.Delete(slices.Clone(grades), i, i+1)); err != nil {
			return r.rollback(err, func() error { return r.p.SaveEmployees(employees) })
		}
		return nil
	})
}

// rollback runs restore after a failed second write so both lists keep agreeing.
func (r *GradeLevelRepository) rollback(cause error, restore func() error) error {
	if err := restore(); err != nil {
		r.p.logger.Error("failed to roll back grade level change", "error", err)
		return errors.Join(cause, err)
	}
	return cause
}

// reassign moves employees graded `from` to `to`; an empty `to` unassigns them.
func (r *GradeLevelRepository) reassign(from, to string) error {
	employees, err := r.p.LoadEmployees()
	if err != nil {
		return err
	}

	changed := false
	for i := range employees {
		if employees[i].GradeLevel == from {
			employees[i].GradeLevel = to
			changed = true
		}
	}
	if !changed {
		return nil
	}

	return r.p.SaveEmployees(employees)
}

// List returns grade levels in stored order. The "name" criterion matches case-insensitively.
func (r *GradeLevelRepository) List(criteria map[string]any) ([]*models.GradeLevel, error) {
	grades, err := r.p.LoadGradeLevels()
	if err != nil {
		return nil, err
	}

	name, _ := criteria["name"].(string)

	result := make([]*models.GradeLevel, 0, len(grades))
	for i := range grades {
		g := grades[i]
		if name != "" && !models.SameName(g.Name, name) {
			continue
		}
		result = append(result, &g)
	}

	return result, nil
}

// All returns every stored grade level by value.
func (r *GradeLevelRepository) All() ([]models.GradeLevel, error) {
	return r.p.LoadGradeLevels()
}

// EmployeeCount returns how many employees are assigned to the grade named name.
func (r *GradeLevelRepository) EmployeeCount(name string) (int, error) {
	employees, err := r.p.LoadEmployees()
	if err != nil {
		return 0, err
	}

	count := 0
	for _, e := range employees {
		if e.GradeLevel == name {
			count++
		}
	}
	return count, nil
}
