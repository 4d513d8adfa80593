package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/staffdir/internal/models"
)

var (
	_ list.Item = employeeItem{}
	_ list.Item = gradeItem{}
)

// employeeItem wraps [models.Employee] to implement [list.Item].
type employeeItem struct {
	employee models.Employee
}

func (i employeeItem) FilterValue() string { return i.employee.Name }
func (i employeeItem) Title() string {
	if i.employee.GradeLevel == "" {
		return i.employee.Name
	}
	return fmt.Sprintf("%s [%s]", i.employee.Name, i.employee.GradeLevel)
}
func (i employeeItem) Description() string {
	parts := []string{i.employee.Role, i.employee.Department}
	if loc := i.employee.Location(); loc != "" {
		parts = append(parts, loc)
	}
	return strings.Join(parts, " • ")
}

// gradeItem wraps [models.GradeLevel] with its assigned employee count.
type gradeItem struct {
	grade models.GradeLevel
	count int
}

func (i gradeItem) FilterValue() string { return i.grade.Name }
func (i gradeItem) Title() string       { return i.grade.Label() }
func (i gradeItem) Description() string {
	noun := "employees"
	if i.count == 1 {
		noun = "employee"
	}
	desc := fmt.Sprintf("%d %s", i.count, noun)
	if i.grade.ItemCode != "" {
		desc = fmt.Sprintf("%s • item %s", desc, i.grade.ItemCode)
	}
	return desc
}
