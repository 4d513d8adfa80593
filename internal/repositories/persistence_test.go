package repositories

import (
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/staffdir/internal/models"
	"github.com/desertthunder/staffdir/internal/shared"
	th "github.com/desertthunder/staffdir/internal/testing"
	"github.com/google/go-cmp/cmp"
)

var fixedTime = time.Date(2025, 3, 4, 5, 6, 7, 890_000_000, time.UTC)

func newTestPersistence(t *testing.T, store KeyValueStore) *DataPersistence {
	t.Helper()
	if store == nil {
		store = NewSQLiteStore(th.NewTestDB(t))
	}
	return NewDataPersistence(store,
		WithLogger(shared.NewLogger(io.Discard)),
		WithClock(func() time.Time { return fixedTime }),
	)
}

func decode(t *testing.T, text string) any {
	t.Helper()
	var v any
	if err := json.Unmarshal([]byte(text), &v); err != nil {
		t.Fatalf("bad fixture %q: %v", text, err)
	}
	return v
}

func TestSQLiteStore(t *testing.T) {
	store := NewSQLiteStore(th.NewTestDB(t))

	if _, ok, err := store.Get("missing"); err != nil || ok {
		t.Fatalf("Get(missing) = ok %v, err %v", ok, err)
	}

	if err := store.Set("a", "1"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := store.Set("a", "2"); err != nil {
		t.Fatalf("Set overwrite failed: %v", err)
	}
	if err := store.Set("b", "3"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	v, ok, err := store.Get("a")
	if err != nil || !ok || v != "2" {
		t.Errorf("Get(a) = %q, %v, %v", v, ok, err)
	}

	entries, err := store.Entries()
	if err != nil {
		t.Fatalf("Entries failed: %v", err)
	}
	if diff := cmp.Diff(map[string]string{"a": "2", "b": "3"}, entries); diff != "" {
		t.Errorf("Entries mismatch (-want +got):\n%s", diff)
	}

	if err := store.Remove("a"); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if err := store.Remove("a"); err != nil {
		t.Errorf("Remove of absent key should not fail: %v", err)
	}
	if _, ok, _ := store.Get("a"); ok {
		t.Error("expected a to be removed")
	}
}

func TestValidators(t *testing.T) {
	t.Run("ValidateEmployee", func(t *testing.T) {
		base := `"id":"1","name":"n","country":"c","state":"s","address":"a","role":"r","department":"d"`
		tc := []struct {
			name string
			json string
			want bool
		}{
			{name: "required only", json: "{" + base + "}", want: true},
			{name: "with optionals", json: "{" + base + `,"gradeLevel":"LVL1","email":"e","phone":"p"}`, want: true},
			{name: "extra fields ignored", json: "{" + base + `,"nickname":"x"}`, want: true},
			{name: "missing department", json: `{"id":"1","name":"n","country":"c","state":"s","address":"a","role":"r"}`, want: false},
			{name: "numeric id", json: `{"id":1,"name":"n","country":"c","state":"s","address":"a","role":"r","department":"d"}`, want: false},
			{name: "null optional", json: "{" + base + `,"email":null}`, want: false},
			{name: "numeric optional", json: "{" + base + `,"phone":5550100}`, want: false},
			{name: "array", json: `[]`, want: false},
			{name: "null", json: `null`, want: false},
			{name: "string", json: `"employee"`, want: false},
		}
		for _, tt := range tc {
			t.Run(tt.name, func(t *testing.T) {
				if got := ValidateEmployee(decode(t, tt.json)); got != tt.want {
					t.Errorf("ValidateEmployee(%s) = %v, want %v", tt.json, got, tt.want)
				}
			})
		}
	})

	t.Run("ValidateGradeLevel", func(t *testing.T) {
		tc := []struct {
			name string
			json string
			want bool
		}{
			{name: "minimal", json: `{"id":"1","name":"LVL1"}`, want: true},
			{name: "description", json: `{"id":"1","name":"LVL1","description":"Entry"}`, want: true},
			{name: "item code", json: `{"id":"1","name":"LVL1","itemCode":"0123"}`, want: true},
			{name: "numeric description", json: `{"id":"1","name":"LVL1","description":3}`, want: false},
			{name: "missing name", json: `{"id":"1"}`, want: false},
			{name: "not object", json: `5`, want: false},
		}
		for _, tt := range tc {
			t.Run(tt.name, func(t *testing.T) {
				if got := ValidateGradeLevel(decode(t, tt.json)); got != tt.want {
					t.Errorf("ValidateGradeLevel(%s) = %v, want %v", tt.json, got, tt.want)
				}
			})
		}
	})
}

func TestSafeParseJSON(t *testing.T) {
	p := newTestPersistence(t, th.MapStore{})

	if got := p.SafeParseJSON("", nil); got != nil {
		t.Errorf("empty input should yield nil, got %v", got)
	}
	if got := p.SafeParseJSON("{not json", nil); got != nil {
		t.Errorf("malformed input should yield nil, got %v", got)
	}
	if got := p.SafeParseJSON(`{"id":"1"}`, ValidateGradeLevel); got != nil {
		t.Errorf("rejected value should yield nil, got %v", got)
	}
	got := p.SafeParseJSON(`{"id":"1","name":"LVL1"}`, ValidateGradeLevel)
	if obj, ok := got.(map[string]any); !ok || obj["name"] != "LVL1" {
		t.Errorf("expected parsed object, got %v", got)
	}
}

func TestDataPersistence(t *testing.T) {
	t.Run("LoadEmployees empty", func(t *testing.T) {
		p := newTestPersistence(t, nil)
		employees, err := p.LoadEmployees()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if employees == nil || len(employees) != 0 {
			t.Errorf("expected empty non-nil slice, got %#v", employees)
		}
	})

	t.Run("LoadEmployees drops invalid entries", func(t *testing.T) {
		store := th.MapStore{
			KeyEmployees: `[
				{"id":"1","name":"A","country":"c","state":"s","address":"a","role":"r","department":"d"},
				{"id":2,"name":"B"},
				"garbage",
				{"id":"3","name":"C","country":"c","state":"s","address":"a","role":"r","department":"d","gradeLevel":"LVL1"}
			]`,
		}
		p := newTestPersistence(t, store)

		employees, err := p.LoadEmployees()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(employees) != 2 || employees[0].ID != "1" || employees[1].GradeLevel != "LVL1" {
			t.Errorf("unexpected employees %+v", employees)
		}
	})

	t.Run("LoadEmployees corrupt document", func(t *testing.T) {
		for _, doc := range []string{"{oops", `{"id":"1"}`, `"text"`} {
			p := newTestPersistence(t, th.MapStore{KeyEmployees: doc})
			employees, err := p.LoadEmployees()
			if err != nil || len(employees) != 0 {
				t.Errorf("doc %q: got %v, %v", doc, employees, err)
			}
		}
	})

	t.Run("LoadEmployees storage failure", func(t *testing.T) {
		p := newTestPersistence(t, &th.FailingStore{Err: shared.ErrStorage})
		employees, err := p.LoadEmployees()
		if !errors.Is(err, shared.ErrStorage) {
			t.Errorf("expected ErrStorage, got %v", err)
		}
		if len(employees) != 0 {
			t.Errorf("expected empty list, got %v", employees)
		}
	})

	t.Run("LoadGradeLevels seeds defaults", func(t *testing.T) {
		store := th.MapStore{}
		p := newTestPersistence(t, store)

		grades, err := p.LoadGradeLevels()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if diff := cmp.Diff(models.DefaultGradeLevels(), grades); diff != "" {
			t.Errorf("defaults mismatch (-want +got):\n%s", diff)
		}
		if _, ok := store[KeyGradeLevels]; !ok {
			t.Error("defaults should be persisted")
		}
		if store[KeyVersion] != CurrentVersion {
			t.Errorf("expected version stamp %s, got %q", CurrentVersion, store[KeyVersion])
		}
		if _, ok := store[KeyBackup]; !ok {
			t.Error("seeding should write a backup")
		}
	})

	t.Run("LoadGradeLevels seeds defaults over corrupt data", func(t *testing.T) {
		p := newTestPersistence(t, th.MapStore{KeyGradeLevels: `{"broken":true}`})
		grades, _ := p.LoadGradeLevels()
		if len(grades) != 3 {
			t.Errorf("expected defaults, got %v", grades)
		}
	})

	t.Run("LoadGradeLevels respects stored empty array", func(t *testing.T) {
		p := newTestPersistence(t, th.MapStore{KeyGradeLevels: `[]`})
		grades, err := p.LoadGradeLevels()
		if err != nil || len(grades) != 0 {
			t.Errorf("expected empty list, got %v, %v", grades, err)
		}
	})

	t.Run("Save round trip", func(t *testing.T) {
		p := newTestPersistence(t, nil)
		employees := th.SampleEmployees()
		grades := th.SampleGradeLevels()

		if err := p.SaveAll(employees, grades); err != nil {
			t.Fatalf("SaveAll failed: %v", err)
		}

		gotEmployees, _ := p.LoadEmployees()
		gotGrades, _ := p.LoadGradeLevels()
		if diff := cmp.Diff(employees, gotEmployees); diff != "" {
			t.Errorf("employees mismatch (-want +got):\n%s", diff)
		}
		if diff := cmp.Diff(grades, gotGrades); diff != "" {
			t.Errorf("grades mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("Save writes backup", func(t *testing.T) {
		store := th.MapStore{}
		p := newTestPersistence(t, store)
		if err := p.SaveAll(th.SampleEmployees(), th.SampleGradeLevels()); err != nil {
			t.Fatalf("SaveAll failed: %v", err)
		}

		var backup models.AppData
		if err := json.Unmarshal([]byte(store[KeyBackup]), &backup); err != nil {
			t.Fatalf("backup is not valid JSON: %v", err)
		}
		if len(backup.Employees) != 4 || len(backup.GradeLevels) != 4 {
			t.Errorf("backup has %d employees and %d grades", len(backup.Employees), len(backup.GradeLevels))
		}
		if backup.Version != CurrentVersion {
			t.Errorf("backup version %q", backup.Version)
		}
		if backup.ExportDate != "2025-03-04T05:06:07.890Z" {
			t.Errorf("backup export date %q", backup.ExportDate)
		}
	})

	t.Run("Save storage failure", func(t *testing.T) {
		p := newTestPersistence(t, &th.FailingStore{Err: shared.ErrStorage})
		if err := p.SaveEmployees(th.SampleEmployees()); !errors.Is(err, shared.ErrStorage) {
			t.Errorf("expected ErrStorage, got %v", err)
		}
		if err := p.SaveGradeLevels(th.SampleGradeLevels()); !errors.Is(err, shared.ErrStorage) {
			t.Errorf("expected ErrStorage, got %v", err)
		}
	})

	t.Run("Save nil list writes empty array", func(t *testing.T) {
		store := th.MapStore{}
		p := newTestPersistence(t, store)
		if err := p.SaveEmployees(nil); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if store[KeyEmployees] != "[]" {
			t.Errorf("expected [], got %q", store[KeyEmployees])
		}
	})
}

func TestExportImport(t *testing.T) {
	t.Run("ExportData", func(t *testing.T) {
		p := newTestPersistence(t, th.MapStore{})
		out, err := p.ExportData(th.SampleEmployees()[:1], models.DefaultGradeLevels()[:1])
		if err != nil {
			t.Fatalf("ExportData failed: %v", err)
		}

		if !strings.HasPrefix(out, "{\n  \"employees\": [") {
			t.Errorf("expected two-space indented document, got:\n%s", out)
		}
		for _, want := range []string{`"version": "1.0.0"`, `"exportDate": "2025-03-04T05:06:07.890Z"`, `"gradeLevel": "MGR"`} {
			if !strings.Contains(out, want) {
				t.Errorf("export missing %s", want)
			}
		}
	})

	t.Run("ExportData empty lists", func(t *testing.T) {
		p := newTestPersistence(t, th.MapStore{})
		out, _ := p.ExportData(nil, nil)
		if !strings.Contains(out, `"employees": []`) || !strings.Contains(out, `"gradeLevels": []`) {
			t.Errorf("expected empty arrays, got:\n%s", out)
		}
	})

	t.Run("ImportData round trip", func(t *testing.T) {
		p := newTestPersistence(t, th.MapStore{})
		out, _ := p.ExportData(th.SampleEmployees(), th.SampleGradeLevels())

		result, err := p.ImportData(out)
		if err != nil {
			t.Fatalf("ImportData failed: %v", err)
		}
		if diff := cmp.Diff(th.SampleEmployees(), result.Employees); diff != "" {
			t.Errorf("employees mismatch (-want +got):\n%s", diff)
		}
		if diff := cmp.Diff(th.SampleGradeLevels(), result.GradeLevels); diff != "" {
			t.Errorf("grades mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("ImportData filters invalid records", func(t *testing.T) {
		p := newTestPersistence(t, th.MapStore{})
		result, err := p.ImportData(`{
			"employees": [{"id":"1"}, {"id":"2","name":"n","country":"c","state":"s","address":"a","role":"r","department":"d"}],
			"gradeLevels": [{"id":"1","name":"LVL1"}, {"name":"orphan"}]
		}`)
		if err != nil {
			t.Fatalf("ImportData failed: %v", err)
		}
		if len(result.Employees) != 1 || result.Employees[0].ID != "2" {
			t.Errorf("unexpected employees %+v", result.Employees)
		}
		if len(result.GradeLevels) != 1 || result.GradeLevels[0].Name != "LVL1" {
			t.Errorf("unexpected grades %+v", result.GradeLevels)
		}
	})

	t.Run("ImportData non-array values yield empty lists", func(t *testing.T) {
		p := newTestPersistence(t, th.MapStore{})
		result, err := p.ImportData(`{"employees": {"a": 1}, "gradeLevels": "LVL1"}`)
		if err != nil {
			t.Fatalf("ImportData failed: %v", err)
		}
		if len(result.Employees) != 0 || len(result.GradeLevels) != 0 {
			t.Errorf("expected empty lists, got %+v", result)
		}
	})

	t.Run("ImportData empty arrays are accepted", func(t *testing.T) {
		p := newTestPersistence(t, th.MapStore{})
		if _, err := p.ImportData(`{"employees": [], "gradeLevels": []}`); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("ImportData rejects", func(t *testing.T) {
		p := newTestPersistence(t, th.MapStore{})
		tc := []struct {
			name string
			text string
		}{
			{name: "malformed", text: `{"employees": [`},
			{name: "array document", text: `[1,2]`},
			{name: "null document", text: `null`},
			{name: "missing employees", text: `{"gradeLevels": []}`},
			{name: "missing gradeLevels", text: `{"employees": []}`},
			{name: "null employees", text: `{"employees": null, "gradeLevels": []}`},
			{name: "false gradeLevels", text: `{"employees": [], "gradeLevels": false}`},
			{name: "zero employees", text: `{"employees": 0, "gradeLevels": []}`},
			{name: "empty string gradeLevels", text: `{"employees": [], "gradeLevels": ""}`},
		}
		for _, tt := range tc {
			t.Run(tt.name, func(t *testing.T) {
				result, err := p.ImportData(tt.text)
				if !errors.Is(err, shared.ErrInvalidBackup) {
					t.Errorf("expected ErrInvalidBackup, got %v", err)
				}
				if result != nil {
					t.Errorf("expected nil result, got %+v", result)
				}
			})
		}
	})

	t.Run("RestoreBackup", func(t *testing.T) {
		p := newTestPersistence(t, nil)
		if _, err := p.RestoreBackup(); !errors.Is(err, shared.ErrNoBackup) {
			t.Fatalf("expected ErrNoBackup, got %v", err)
		}

		if err := p.SaveAll(th.SampleEmployees(), th.SampleGradeLevels()); err != nil {
			t.Fatalf("SaveAll failed: %v", err)
		}

		result, err := p.RestoreBackup()
		if err != nil {
			t.Fatalf("RestoreBackup failed: %v", err)
		}
		if len(result.Employees) != 4 || len(result.GradeLevels) != 4 {
			t.Errorf("unexpected restore %d/%d", len(result.Employees), len(result.GradeLevels))
		}
	})
}

func TestClearAndStorageInfo(t *testing.T) {
	t.Run("ClearAllData", func(t *testing.T) {
		store := th.MapStore{}
		p := newTestPersistence(t, store)
		if err := p.SaveAll(th.SampleEmployees(), th.SampleGradeLevels()); err != nil {
			t.Fatalf("SaveAll failed: %v", err)
		}

		if err := p.ClearAllData(); err != nil {
			t.Fatalf("ClearAllData failed: %v", err)
		}

		for _, key := range []string{KeyEmployees, KeyGradeLevels, KeyBackup} {
			if _, ok := store[key]; ok {
				t.Errorf("%s should be removed", key)
			}
		}
		if store[KeyVersion] != CurrentVersion {
			t.Error("version stamp should survive a clear")
		}

		grades, _ := p.LoadGradeLevels()
		if len(grades) != 3 {
			t.Errorf("expected defaults after clear, got %v", grades)
		}
	})

	t.Run("ClearAllData failure", func(t *testing.T) {
		p := newTestPersistence(t, &th.FailingStore{Err: shared.ErrStorage})
		if err := p.ClearAllData(); !errors.Is(err, shared.ErrStorage) {
			t.Errorf("expected ErrStorage, got %v", err)
		}
	})

	t.Run("GetStorageInfo", func(t *testing.T) {
		store := th.MapStore{"ab": "cde", "f": "gh"}
		p := NewDataPersistence(store, WithLogger(shared.NewLogger(io.Discard)), WithQuota(100))

		info := p.GetStorageInfo()
		want := models.StorageInfo{Used: 8, Available: 100, Percentage: 8}
		if diff := cmp.Diff(want, info); diff != "" {
			t.Errorf("storage info mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("GetStorageInfo counts UTF-16 units", func(t *testing.T) {
		store := th.MapStore{"k": "ë𝄞"}
		p := NewDataPersistence(store, WithLogger(shared.NewLogger(io.Discard)), WithQuota(100))

		if info := p.GetStorageInfo(); info.Used != 4 {
			t.Errorf("expected 4 units (k, ë, surrogate pair), got %d", info.Used)
		}
	})

	t.Run("stored JSON keeps HTML characters", func(t *testing.T) {
		store := th.MapStore{}
		p := newTestPersistence(t, store)
		e := th.SampleEmployees()[:1]
		e[0].Name = "Zoë & Ana"
		if err := p.SaveAll(e, th.SampleGradeLevels()); err != nil {
			t.Fatalf("SaveAll failed: %v", err)
		}

		for _, key := range []string{KeyEmployees, KeyBackup} {
			if !strings.Contains(store[key], `"Zoë & Ana"`) {
				t.Errorf("%s should store the name literally, got %s", key, store[key])
			}
		}
		doc, err := p.ExportData(e, th.SampleGradeLevels())
		if err != nil {
			t.Fatalf("ExportData failed: %v", err)
		}
		if strings.Contains(doc, `\u0026`) {
			t.Errorf("export should not escape &: %s", doc)
		}
	})

	t.Run("GetStorageInfo default quota", func(t *testing.T) {
		p := newTestPersistence(t, th.MapStore{})
		if info := p.GetStorageInfo(); info.Available != 5*1024*1024 || info.Used != 0 || info.Percentage != 0 {
			t.Errorf("unexpected info %+v", info)
		}
	})

	t.Run("GetStorageInfo failure", func(t *testing.T) {
		p := newTestPersistence(t, &th.FailingStore{Err: shared.ErrStorage})
		if info := p.GetStorageInfo(); info != (models.StorageInfo{}) {
			t.Errorf("expected zero info, got %+v", info)
		}
	})
}
