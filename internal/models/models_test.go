package models

import (
	"errors"
	"testing"

	"github.com/desertthunder/staffdir/internal/shared"
)

func validEmployee() Employee {
	return Employee{
		ID:         "e1",
		Name:       "Ada Lovelace",
		Country:    "United Kingdom",
		State:      "England",
		Address:    "12 St James's Square",
		Role:       "Analyst",
		Department: "Engineering",
	}
}

func TestEmployee(t *testing.T) {
	t.Run("Validate", func(t *testing.T) {
		tc := []struct {
			name    string
			mutate  func(*Employee)
			wantErr bool
		}{
			{name: "valid", mutate: func(*Employee) {}},
			{name: "valid with email", mutate: func(e *Employee) { e.Email = "ada@example.com" }},
			{name: "blank name", mutate: func(e *Employee) { e.Name = "   " }, wantErr: true},
			{name: "missing role", mutate: func(e *Employee) { e.Role = "" }, wantErr: true},
			{name: "missing department", mutate: func(e *Employee) { e.Department = "" }, wantErr: true},
			{name: "missing country", mutate: func(e *Employee) { e.Country = "" }, wantErr: true},
			{name: "missing state", mutate: func(e *Employee) { e.State = "" }, wantErr: true},
			{name: "missing address", mutate: func(e *Employee) { e.Address = "" }, wantErr: true},
			{name: "bad email", mutate: func(e *Employee) { e.Email = "not-an-email" }, wantErr: true},
			{name: "phone is free text", mutate: func(e *Employee) { e.Phone = "ext. 42" }},
		}

		for _, tt := range tc {
			t.Run(tt.name, func(t *testing.T) {
				e := validEmployee()
				tt.mutate(&e)
				err := e.Validate()
				if (err != nil) != tt.wantErr {
					t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
				}
				if err != nil && !errors.Is(err, shared.ErrValidation) {
					t.Errorf("expected ErrValidation, got %v", err)
				}
			})
		}
	})

	t.Run("Validate lists every missing field", func(t *testing.T) {
		e := Employee{}
		err := e.Validate()
		if err == nil {
			t.Fatal("expected error")
		}
		want := "validation failed: name, role, department, country, state, address required"
		if err.Error() != want {
			t.Errorf("got %q, want %q", err.Error(), want)
		}
	})

	t.Run("Normalize", func(t *testing.T) {
		e := Employee{Name: "  Ada  ", Email: " ada@example.com\t"}
		e.Normalize()
		if e.Name != "Ada" || e.Email != "ada@example.com" {
			t.Errorf("unexpected normalized employee: %+v", e)
		}
	})

	t.Run("Location", func(t *testing.T) {
		e := validEmployee()
		if got := e.Location(); got != "England, United Kingdom" {
			t.Errorf("Location() = %q", got)
		}
		e.State = ""
		if got := e.Location(); got != "United Kingdom" {
			t.Errorf("Location() = %q", got)
		}
	})
}

func TestGradeLevel(t *testing.T) {
	t.Run("Validate", func(t *testing.T) {
		g := GradeLevel{Name: " "}
		if err := g.Validate(); !errors.Is(err, shared.ErrValidation) {
			t.Errorf("expected ErrValidation, got %v", err)
		}
		g.Name = "LVL4"
		if err := g.Validate(); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("Normalize", func(t *testing.T) {
		g := GradeLevel{Name: " LVL9 ", Description: "  ", ItemCode: " 0123 "}
		g.Normalize()
		if g.Name != "LVL9" || g.Description != "" || g.ItemCode != "0123" {
			t.Errorf("unexpected normalized grade: %+v", g)
		}
	})

	t.Run("SameName", func(t *testing.T) {
		if !SameName("lvl1", " LVL1 ") {
			t.Error("expected case-insensitive match")
		}
		if SameName("LVL1", "LVL2") {
			t.Error("expected mismatch")
		}
	})

	t.Run("DefaultGradeLevels", func(t *testing.T) {
		defaults := DefaultGradeLevels()
		if len(defaults) != 3 {
			t.Fatalf("expected 3 defaults, got %d", len(defaults))
		}
		if defaults[0].ID != "1" || defaults[0].Name != "LVL1" || defaults[0].Description != "Entry Level" {
			t.Errorf("unexpected first default: %+v", defaults[0])
		}
		if defaults[2].Label() != "LVL3 - Senior Level" {
			t.Errorf("unexpected label %q", defaults[2].Label())
		}
	})
}
