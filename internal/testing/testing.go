// package testing contains shared testing utilities
package testing

import (
	"database/sql"
	"errors"
	"io"
	"os"
	"testing"

	"github.com/desertthunder/staffdir/internal/models"
	"github.com/desertthunder/staffdir/internal/shared"
)

// NewTestDB opens an in-memory SQLite database with migrations applied.
//
// The pool is pinned to one connection because every new ":memory:" connection is a fresh database.
func NewTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	shared.ConfigureDatabase(db, 1, 1)

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() { db.Close() })
	return db
}

// SampleGradeLevels returns the default grades plus a managerial grade.
func SampleGradeLevels() []models.GradeLevel {
	return append(models.DefaultGradeLevels(), models.GradeLevel{ID: "4", Name: "MGR", Description: "Manager", ItemCode: "0627"})
}

// SampleEmployees returns a small directory spanning several departments, countries and grades.
func SampleEmployees() []models.Employee {
	return []models.Employee{
		{
			ID: "e1", Name: "Grace Hopper", Country: "United States", State: "New York",
			Address: "1 Navy Yard", Role: "Rear Admiral", Department: "Engineering",
			GradeLevel: "MGR", Email: "grace@example.com", Phone: "555-0100",
		},
		{
			ID: "e2", Name: "alan turing", Country: "United Kingdom", State: "England",
			Address: "Bletchley Park", Role: "Cryptanalyst", Department: "Research",
			GradeLevel: "LVL3",
		},
		{
			ID: "e3", Name: "Katherine Johnson", Country: "United States", State: "Virginia",
			Address: "Langley", Role: "Mathematician", Department: "Research",
			Email: "kj@example.com",
		},
		{
			ID: "e4", Name: "Linus Torvalds", Country: "Finland", State: "Uusimaa",
			Address: "Helsinki", Role: "Engineer", Department: "Engineering",
			GradeLevel: "LVL1",
		},
	}
}

// FailingStore is a key-value store whose every operation fails with Err.
type FailingStore struct {
	Err error
}

func (f *FailingStore) Get(string) (string, bool, error)    { return "", false, f.Err }
func (f *FailingStore) Set(string, string) error            { return f.Err }
func (f *FailingStore) Remove(string) error                 { return f.Err }
func (f *FailingStore) Entries() (map[string]string, error) { return nil, f.Err }

// MapStore is an in-memory key-value store.
type MapStore map[string]string

func (m MapStore) Get(key string) (string, bool, error) {
	v, ok := m[key]
	return v, ok, nil
}
func (m MapStore) Set(key, value string) error { m[key] = value; return nil }
func (m MapStore) Remove(key string) error     { delete(m, key); return nil }
func (m MapStore) Entries() (map[string]string, error) {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out, nil
}

// KeyFailStore is a [MapStore] whose writes to FailKey fail with Err.
type KeyFailStore struct {
	MapStore
	FailKey string
	Err     error
}

func (s *KeyFailStore) Set(key, value string) error {
	if key == s.FailKey {
		return s.Err
	}
	return s.MapStore.Set(key, value)
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) *LimitedWriter {
	return &LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}

func MustWriteFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write file %s: %v", path, err)
	}
}
