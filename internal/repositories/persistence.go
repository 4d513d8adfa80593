package repositories

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"
	"unicode/utf16"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/staffdir/internal/models"
	"github.com/desertthunder/staffdir/internal/shared"
)

// isoMillis matches the timestamps written by earlier versions of the directory.
const isoMillis = "2006-01-02T15:04:05.000Z07:00"

// DataPersistence loads, validates and saves directory records in a [KeyValueStore].
type DataPersistence struct {
	store  KeyValueStore
	logger *log.Logger
	quota  int
	now    func() time.Time
	mu     sync.Mutex
}

// Option configures a [DataPersistence].
type Option func(*DataPersistence)

// WithLogger sets the logger used for swallowed load/backup failures.
func WithLogger(l *log.Logger) Option {
	return func(p *DataPersistence) { p.logger = l }
}

// WithQuota sets the storage estimate denominator in bytes.
func WithQuota(bytes int) Option {
	return func(p *DataPersistence) {
		if bytes > 0 {
			p.quota = bytes
		}
	}
}

// WithClock overrides the time source for backup and export timestamps.
func WithClock(now func() time.Time) Option {
	return func(p *DataPersistence) { p.now = now }
}

// NewDataPersistence creates a [DataPersistence] over store.
func NewDataPersistence(store KeyValueStore, opts ...Option) *DataPersistence {
	p := &DataPersistence{
		store: store,
		quota: DefaultQuota,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = shared.NewLogger(nil)
	}
	return p
}

// Atomically runs fn while holding the persistence lock so read-modify-write sequences do not interleave.
func (p *DataPersistence) Atomically(fn func() error) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return fn()
}

// ValidateEmployee reports whether raw, a decoded JSON value, has the shape of an employee record.
func ValidateEmployee(raw any) bool {
	obj, ok := raw.(map[string]any)
	if !ok {
		return false
	}
	return hasStrings(obj, "id", "name", "country", "state", "address", "role", "department") &&
		optionalStrings(obj, "gradeLevel", "email", "phone")
}

// ValidateGradeLevel reports whether raw, a decoded JSON value, has the shape of a grade level record.
func ValidateGradeLevel(raw any) bool {
	obj, ok := raw.(map[string]any)
	if !ok {
		return false
	}
	return hasStrings(obj, "id", "name") && optionalStrings(obj, "description", "itemCode")
}

func hasStrings(obj map[string]any, keys ...string) bool {
	for _, k := range keys {
		if _, ok := obj[k].(string); !ok {
			return false
		}
	}
	return true
}

// optionalStrings allows each key to be absent; a present key must hold a string (null is rejected).
func optionalStrings(obj map[string]any, keys ...string) bool {
	for _, k := range keys {
		v, present := obj[k]
		if !present {
			continue
		}
		if _, ok := v.(string); !ok {
			return false
		}
	}
	return true
}

// SafeParseJSON decodes text, returning nil for empty input, malformed JSON or a value rejected by validator.
//
// validator may be nil.
func (p *DataPersistence) SafeParseJSON(text string, validator func(any) bool) any {
	if text == "" {
		return nil
	}

	var parsed any
	if err := json.Unmarshal([]byte(text), &parsed); err != nil {
		p.logger.Error("failed to parse JSON", "error", err)
		return nil
	}

	if validator != nil && !validator(parsed) {
		p.logger.Warn("data validation failed, returning nil")
		return nil
	}

	return parsed
}

// decodeValid keeps the items accepted by validate and converts them to T.
func decodeValid[T any](items []any, validate func(any) bool) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if !validate(item) {
			continue
		}
		data, err := json.Marshal(item)
		if err != nil {
			continue
		}
		var v T
		if err := json.Unmarshal(data, &v); err != nil {
			continue
		}
		out = append(out, v)
	}
	return out
}

func (p *DataPersistence) read(key string) (string, error) {
	value, _, err := p.store.Get(key)
	return value, err
}

// LoadEmployees returns the stored employees, dropping malformed entries.
//
// A missing or corrupt document yields an empty list; only storage failures are returned as errors.
func (p *DataPersistence) LoadEmployees() ([]models.Employee, error) {
	saved, err := p.read(KeyEmployees)
	if err != nil {
		p.logger.Error("failed to load employees", "error", err)
		return []models.Employee{}, err
	}

	items, ok := p.SafeParseJSON(saved, nil).([]any)
	if !ok {
		return []models.Employee{}, nil
	}

	employees := decodeValid[models.Employee](items, ValidateEmployee)
	if dropped := len(items) - len(employees); dropped > 0 {
		p.logger.Warn("dropped invalid employee records", "count", dropped)
	}
	return employees, nil
}

// LoadGradeLevels returns the stored grade levels, dropping malformed entries.
//
// When no grade-level array is stored, the defaults are saved and returned.
// An explicitly stored empty array is returned as-is.
func (p *DataPersistence) LoadGradeLevels() ([]models.GradeLevel, error) {
	saved, err := p.read(KeyGradeLevels)
	if err != nil {
		p.logger.Error("failed to load grade levels", "error", err)
		return []models.GradeLevel{}, err
	}

	if items, ok := p.SafeParseJSON(saved, nil).([]any); ok {
		grades := decodeValid[models.GradeLevel](items, ValidateGradeLevel)
		if dropped := len(items) - len(grades); dropped > 0 {
			p.logger.Warn("dropped invalid grade level records", "count", dropped)
		}
		return grades, nil
	}

	defaults := models.DefaultGradeLevels()
	if err := p.SaveGradeLevels(defaults); err != nil {
		return defaults, err
	}
	return defaults, nil
}

// SaveEmployees writes employees, stamps the version and refreshes the automatic backup.
func (p *DataPersistence) SaveEmployees(employees []models.Employee) error {
	if err := p.writeJSON(KeyEmployees, nonNilEmployees(employees)); err != nil {
		p.logger.Error("failed to save employees", "error", err)
		return err
	}

	grades, _ := p.LoadGradeLevels()
	p.CreateBackup(employees, grades)
	return nil
}

// SaveGradeLevels writes grade levels, stamps the version and refreshes the automatic backup.
func (p *DataPersistence) SaveGradeLevels(grades []models.GradeLevel) error {
	if err := p.writeJSON(KeyGradeLevels, nonNilGrades(grades)); err != nil {
		p.logger.Error("failed to save grade levels", "error", err)
		return err
	}

	employees, _ := p.LoadEmployees()
	p.CreateBackup(employees, grades)
	return nil
}

// SaveAll replaces both record lists, grade levels first.
func (p *DataPersistence) SaveAll(employees []models.Employee, grades []models.GradeLevel) error {
	if err := p.SaveGradeLevels(grades); err != nil {
		return err
	}
	return p.SaveEmployees(employees)
}

func (p *DataPersistence) writeJSON(key string, v any) error {
	data, err := shared.MarshalJSON(v, false)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	if err := p.store.Set(key, string(data)); err != nil {
		return err
	}
	return p.store.Set(KeyVersion, CurrentVersion)
}

func (p *DataPersistence) snapshot(employees []models.Employee, grades []models.GradeLevel) models.AppData {
	return models.AppData{
		Employees:   nonNilEmployees(employees),
		GradeLevels: nonNilGrades(grades),
		Version:     CurrentVersion,
		ExportDate:  p.now().UTC().Format(isoMillis),
	}
}

// CreateBackup writes an [models.AppData] document to the backup key. Failures are logged, never returned.
func (p *DataPersistence) CreateBackup(employees []models.Employee, grades []models.GradeLevel) {
	data, err := shared.MarshalJSON(p.snapshot(employees, grades), false)
	if err != nil {
		p.logger.Error("failed to create backup", "error", err)
		return
	}
	if err := p.store.Set(KeyBackup, string(data)); err != nil {
		p.logger.Error("failed to create backup", "error", err)
	}
}

// ExportData renders both lists as an indented [models.AppData] document.
func (p *DataPersistence) ExportData(employees []models.Employee, grades []models.GradeLevel) (string, error) {
	data, err := shared.MarshalJSON(p.snapshot(employees, grades), true)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// ImportResult holds the records accepted from an import document.
type ImportResult struct {
	Employees   []models.Employee
	GradeLevels []models.GradeLevel
}

// ImportData parses a backup document without persisting it.
//
// Both "employees" and "gradeLevels" must be present and truthy. Each list is filtered through its validator;
// a present value that is not an array yields an empty list.
func (p *DataPersistence) ImportData(text string) (*ImportResult, error) {
	var doc map[string]any
	if err := json.Unmarshal([]byte(text), &doc); err != nil || doc == nil {
		p.logger.Error("failed to import data", "error", err)
		return nil, fmt.Errorf("%w: not a JSON object", shared.ErrInvalidBackup)
	}

	rawEmployees, rawGrades := doc["employees"], doc["gradeLevels"]
	if falsy(rawEmployees) || falsy(rawGrades) {
		p.logger.Error("failed to import data", "error", "missing employees or gradeLevels")
		return nil, fmt.Errorf("%w: employees and gradeLevels are required", shared.ErrInvalidBackup)
	}

	result := &ImportResult{
		Employees:   []models.Employee{},
		GradeLevels: []models.GradeLevel{},
	}
	if items, ok := rawEmployees.([]any); ok {
		result.Employees = decodeValid[models.Employee](items, ValidateEmployee)
	}
	if items, ok := rawGrades.([]any); ok {
		result.GradeLevels = decodeValid[models.GradeLevel](items, ValidateGradeLevel)
	}

	return result, nil
}

// falsy mirrors JavaScript truthiness for decoded JSON values.
func falsy(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case bool:
		return !t
	case float64:
		return t == 0
	case string:
		return t == ""
	default:
		return false
	}
}

// RestoreBackup reads the automatic backup and returns its records using [DataPersistence.ImportData] rules.
func (p *DataPersistence) RestoreBackup() (*ImportResult, error) {
	saved, ok, err := p.store.Get(KeyBackup)
	if err != nil {
		return nil, err
	}
	if !ok || saved == "" {
		return nil, shared.ErrNoBackup
	}
	return p.ImportData(saved)
}

// ClearAllData removes the employee, grade level and backup keys. The version stamp is kept.
func (p *DataPersistence) ClearAllData() error {
	for _, key := range []string{KeyEmployees, KeyGradeLevels, KeyBackup} {
		if err := p.store.Remove(key); err != nil {
			p.logger.Error("failed to clear data", "key", key, "error", err)
			return err
		}
	}
	return nil
}

// GetStorageInfo estimates utilization as the summed UTF-16 length of every key and value against the quota.
//
// On a storage failure the zero [models.StorageInfo] is returned.
func (p *DataPersistence) GetStorageInfo() models.StorageInfo {
	entries, err := p.store.Entries()
	if err != nil {
		p.logger.Error("failed to get storage info", "error", err)
		return models.StorageInfo{}
	}

	used := 0
	for k, v := range entries {
		used += utf16Len(k) + utf16Len(v)
	}

	return models.StorageInfo{
		Used:       used,
		Available:  p.quota,
		Percentage: float64(used) * 100 / float64(p.quota),
	}
}

// utf16Len counts s in UTF-16 code units, the unit browser storage quotas are measured in.
func utf16Len(s string) int {
	return len(utf16.Encode([]rune(s)))
}

func nonNilEmployees(list []models.Employee) []models.Employee {
	if list == nil {
		return []models.Employee{}
	}
	return list
}

func nonNilGrades(list []models.GradeLevel) []models.GradeLevel {
	if list == nil {
		return []models.GradeLevel{}
	}
	return list
}
