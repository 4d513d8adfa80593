package models

import (
	"fmt"
	"strings"

	"github.com/desertthunder/staffdir/internal/shared"
)

var _ Model = (*GradeLevel)(nil)

// GradeLevel is an organizational grade. Names are unique case-insensitively.
type GradeLevel struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	ItemCode    string `json:"itemCode,omitempty"`
}

// DefaultGradeLevels are seeded when no grade levels have ever been stored.
func DefaultGradeLevels() []GradeLevel {
	return []GradeLevel{
		{ID: "1", Name: "LVL1", Description: "Entry Level"},
		{ID: "2", Name: "LVL2", Description: "Junior Level"},
		{ID: "3", Name: "LVL3", Description: "Senior Level"},
	}
}

func (g *GradeLevel) Identifier() string { return g.ID }

// Normalize trims name, description and item code.
func (g *GradeLevel) Normalize() {
	g.Name = strings.TrimSpace(g.Name)
	g.Description = strings.TrimSpace(g.Description)
	g.ItemCode = strings.TrimSpace(g.ItemCode)
}

// Validate requires a non-blank name.
func (g *GradeLevel) Validate() error {
	if strings.TrimSpace(g.Name) == "" {
		return fmt.Errorf("%w: grade level name is required", shared.ErrValidation)
	}
	return nil
}

// SameName reports whether two grade names collide (case-insensitive).
func SameName(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// Label renders "NAME - description" the way grade pickers show it.
func (g GradeLevel) Label() string {
	if g.Description == "" {
		return g.Name
	}
	return g.Name + " - " + g.Description
}
