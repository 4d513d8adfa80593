// package repositories provides persistence layer implementations for all model types.
//
// Each repository implements models.Repository[T] for a specific record type on top of [DataPersistence].
package repositories

import (
	"fmt"
	"time"

	"github.com/desertthunder/staffdir/internal/models"
	"github.com/desertthunder/staffdir/internal/shared"
)

// Storage keys. These match the keys the directory has always used so existing backups stay readable.
const (
	KeyEmployees   = "staff-directory-employees"
	KeyGradeLevels = "staff-directory-grade-levels"
	KeyBackup      = "staff-directory-backup"
	KeyVersion     = "staff-directory-version"
)

// CurrentVersion is stamped on every save, backup and export.
const CurrentVersion = "1.0.0"

// DefaultQuota is the storage estimate denominator when none is configured (5 MiB).
const DefaultQuota = 5 * 1024 * 1024

// BackupFilename is the default file name for a backup exported at t.
func BackupFilename(t time.Time) string {
	return fmt.Sprintf("staff-directory-backup-%s.json", t.Format("2006-01-02"))
}

// Repositories bundles both record repositories over one [DataPersistence].
type Repositories struct {
	Persistence *DataPersistence
	Employees   *EmployeeRepository
	GradeLevels *GradeLevelRepository
}

// New wires a [DataPersistence] and both repositories over store.
func New(store KeyValueStore, opts ...Option) *Repositories {
	p := NewDataPersistence(store, opts...)
	return &Repositories{
		Persistence: p,
		Employees:   NewEmployeeRepository(p),
		GradeLevels: NewGradeLevelRepository(p),
	}
}

func notFound(kind, id string) error {
	return fmt.Errorf("%w: %s %s", shared.ErrNotFound, kind, id)
}

func indexOfEmployee(list []models.Employee, id string) int {
	for i := range list {
		if list[i].ID == id {
			return i
		}
	}
	return -1
}

func indexOfGradeLevel(list []models.GradeLevel, id string) int {
	for i := range list {
		if list[i].ID == id {
			return i
		}
	}
	return -1
}

// Snapshot loads both record lists.
func (r *Repositories) Snapshot() ([]models.Employee, []models.GradeLevel, error) {
	employees, err := r.Persistence.LoadEmployees()
	if err != nil {
		return nil, nil, err
	}
	grades, err := r.Persistence.LoadGradeLevels()
	if err != nil {
		return nil, nil, err
	}
	return employees, grades, nil
}

// Export renders the stored records as a backup document.
func (r *Repositories) Export() (string, error) {
	employees, grades, err := r.Snapshot()
	if err != nil {
		return "", err
	}
	return r.Persistence.ExportData(employees, grades)
}

// Import parses a backup document and replaces every stored record with its contents.
func (r *Repositories) Import(text string) (*ImportResult, error) {
	result, err := r.Persistence.ImportData(text)
	if err != nil {
		return nil, err
	}
	if err := r.Replace(result); err != nil {
		return nil, err
	}
	return result, nil
}

// Replace overwrites both record lists with data.
func (r *Repositories) Replace(data *ImportResult) error {
	return r.Persistence.Atomically(func() error {
		return r.Persistence.SaveAll(data.Employees, data.GradeLevels)
	})
}

// Restore replaces the stored records with the automatic backup.
func (r *Repositories) Restore() (*ImportResult, error) {
	result, err := r.Persistence.RestoreBackup()
	if err != nil {
		return nil, err
	}
	if err := r.Replace(result); err != nil {
		return nil, err
	}
	return result, nil
}

// Clear removes every record and the automatic backup.
func (r *Repositories) Clear() error {
	return r.Persistence.Atomically(r.Persistence.ClearAllData)
}
