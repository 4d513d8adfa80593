package repositories

import (
	"fmt"

	"github.com/desertthunder/staffdir/internal/models"
	"github.com/desertthunder/staffdir/internal/shared"
)

var _ models.Repository[*models.Employee] = (*EmployeeRepository)(nil)

// EmployeeRepository implements [models.Repository] for [models.Employee] persistence.
type EmployeeRepository struct {
	p *DataPersistence
}

// NewEmployeeRepository creates a new [EmployeeRepository] over p.
func NewEmployeeRepository(p *DataPersistence) *EmployeeRepository {
	return &EmployeeRepository{p: p}
}

// canonicalGrade resolves a non-empty grade name to the stored spelling of the grade it matches ignoring case.
func (r *EmployeeRepository) canonicalGrade(name string) (string, error) {
	if name == "" {
		return "", nil
	}
	grades, err := r.p.LoadGradeLevels()
	if err != nil {
		return "", err
	}
	for _, g := range grades {
		if models.SameName(g.Name, name) {
			return g.Name, nil
		}
	}
	return "", fmt.Errorf("%w: %s", shared.ErrUnknownGrade, name)
}

func (r *EmployeeRepository) prepare(e *models.Employee) error {
	e.Normalize()
	if err := e.Validate(); err != nil {
		return err
	}
	grade, err := r.canonicalGrade(e.GradeLevel)
	if err != nil {
		return err
	}
	e.GradeLevel = grade
	return nil
}

// Create appends a new employee, generating an ID when blank.
func (r *EmployeeRepository) Create(e *models.Employee) error {
	if err := r.prepare(e); err != nil {
		return err
	}

	return r.p.Atomically(func() error {
		employees, err := r.p.LoadEmployees()
		if err != nil {
			return err
		}

		if e.ID == "" {
			e.ID = shared.GenerateID()
		} else if indexOfEmployee(employees, e.ID) >= 0 {
			return fmt.Errorf("%w: employee %s already exists", shared.ErrInvalidInput, e.ID)
		}

		return r.p.SaveEmployees(append(employees, *e))
	})
}

// Get retrieves an employee by ID.
func (r *EmployeeRepository) Get(id string) (*models.Employee, error) {
	employees, err := r.p.LoadEmployees()
	if err != nil {
		return nil, err
	}

	i := indexOfEmployee(employees, id)
	if i < 0 {
		return nil, notFound("employee", id)
	}

	e := employees[i]
	return &e, nil
}

// Update replaces the stored employee with the same ID.
func (r *EmployeeRepository) Update(e *models.Employee) error {
	if err := r.prepare(e); err != nil {
		return err
	}

	return r.p.Atomically(func() error {
		employees, err := r.p.LoadEmployees()
		if err != nil {
			return err
		}

		i := indexOfEmployee(employees, e.ID)
		if i < 0 {
			return notFound("employee", e.ID)
		}

		employees[i] = *e
		return r.p.SaveEmployees(employees)
	})
}

// Delete removes an employee by ID.
func (r *EmployeeRepository) Delete(id string) error {
	return r.p.Atomically(func() error {
		employees, err := r.p.LoadEmployees()
		if err != nil {
			return err
		}

		i := indexOfEmployee(employees, id)
		if i < 0 {
			return notFound("employee", id)
		}

		return r.p.SaveEmployees(append(employees[:i], employees[i+1:]...))
	})
}

// List returns employees in stored order, keeping those whose department, country and gradeLevel equal
// the corresponding criteria values. Empty criteria values are ignored.
func (r *EmployeeRepository) List(criteria map[string]any) ([]*models.Employee, error) {
	employees, err := r.p.LoadEmployees()
	if err != nil {
		return nil, err
	}

	department, _ := criteria["department"].(string)
	country, _ := criteria["country"].(string)
	grade, _ := criteria["gradeLevel"].(string)

	result := make([]*models.Employee, 0, len(employees))
	for i := range employees {
		e := employees[i]
		if department != "" && e.Department != department {
			continue
		}
		if country != "" && e.Country != country {
			continue
		}
		if grade != "" && e.GradeLevel != grade {
			continue
		}
		result = append(result, &e)
	}

	return result, nil
}

// UpsertResult counts the records written by [EmployeeRepository.Upsert].
type UpsertResult struct {
	Created int
	Updated int
}

// Upsert validates every record and then saves them in one write. A record whose ID matches a stored
// employee replaces it; the rest are appended with generated IDs when blank.
//
// Nothing is written when any record fails validation.
func (r *EmployeeRepository) Upsert(records []models.Employee) (*UpsertResult, error) {
	for i := range records {
		if err := r.prepare(&records[i]); err != nil {
			return nil, fmt.Errorf("record %d: %w", i+1, err)
		}
	}

	result := &UpsertResult{}
	err := r.p.Atomically(func() error {
		employees, err := r.p.LoadEmployees()
		if err != nil {
			return err
		}

		for _, e := range records {
			if e.ID != "" {
				if i := indexOfEmployee(employees, e.ID); i >= 0 {
					employees[i] = e
					result.Updated++
					continue
				}
			} else {
				e.ID = shared.GenerateID()
			}
			employees = append(employees, e)
			result.Created++
		}

		return r.p.SaveEmployees(employees)
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// All returns every stored employee by value.
func (r *EmployeeRepository) All() ([]models.Employee, error) {
	return r.p.LoadEmployees()
}
