// package directory filters, searches and sorts the employee list.
//
// A [Query] holds the user's current search text, filter selections and sort order.
// [Apply] evaluates a query against a list without mutating it.
package directory

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/desertthunder/staffdir/internal/models"
	"github.com/desertthunder/staffdir/internal/shared"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// All is the filter value meaning "no filter".
const All = "all"

// SortField names the employee field a [Query] sorts by.
type SortField string

const (
	SortName       SortField = "name"
	SortRole       SortField = "role"
	SortDepartment SortField = "department"
	SortCountry    SortField = "country"
	SortGrade      SortField = "gradeLevel"
)

// SortFields lists the accepted sort fields in display order.
var SortFields = []SortField{SortName, SortRole, SortDepartment, SortCountry, SortGrade}

// Order is the sort direction.
type Order string

const (
	Asc  Order = "asc"
	Desc Order = "desc"
)

// ParseSortField accepts a sort field name; "grade" is an alias for gradeLevel.
func ParseSortField(s string) (SortField, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "name":
		return SortName, nil
	case "role":
		return SortRole, nil
	case "department":
		return SortDepartment, nil
	case "country":
		return SortCountry, nil
	case "gradelevel", "grade":
		return SortGrade, nil
	default:
		return SortName, fmt.Errorf("%w: unknown sort field %q", shared.ErrInvalidFlag, s)
	}
}

// ParseOrder accepts "asc" or "desc".
func ParseOrder(s string) (Order, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "asc":
		return Asc, nil
	case "desc":
		return Desc, nil
	default:
		return Asc, fmt.Errorf("%w: unknown sort order %q", shared.ErrInvalidFlag, s)
	}
}

// Query is the directory view state.
//
// Grade, Department and Country are exact-match filters; "" and [All] disable them.
type Query struct {
	Search     string    `json:"search,omitempty"`
	Grade      string    `json:"grade,omitempty"`
	Department string    `json:"department,omitempty"`
	Country    string    `json:"country,omitempty"`
	SortBy     SortField `json:"sortBy,omitempty"`
	Order      Order     `json:"order,omitempty"`
}

// NewQuery returns an unfiltered query sorted by name ascending.
func NewQuery() Query {
	return Query{SortBy: SortName, Order: Asc}
}

// Reset clears every filter and the search text and returns to name/asc.
func (q *Query) Reset() {
	*q = NewQuery()
}

func active(v string) bool {
	return v != "" && v != All
}

// ActiveFilterCount counts any non-empty search text plus each set grade, department and country filter.
//
// Whitespace-only search text counts as a filter.
func (q Query) ActiveFilterCount() int {
	n := 0
	if q.Search != "" {
		n++
	}
	for _, v := range []string{q.Grade, q.Department, q.Country} {
		if active(v) {
			n++
		}
	}
	return n
}

// Matches reports whether e passes the search text and every active filter.
func (q Query) Matches(e models.Employee) bool {
	if active(q.Grade) && e.GradeLevel != q.Grade {
		return false
	}
	if active(q.Department) && e.Department != q.Department {
		return false
	}
	if active(q.Country) && e.Country != q.Country {
		return false
	}

	// The term is matched as typed, surrounding spaces included.
	term := strings.ToLower(q.Search)
	if term == "" {
		return true
	}
	for _, field := range []string{e.Name, e.Role, e.Department, e.Email, e.Country, e.State} {
		if strings.Contains(strings.ToLower(field), term) {
			return true
		}
	}
	return false
}

func sortValue(e models.Employee, field SortField) string {
	switch field {
	case SortRole:
		return e.Role
	case SortDepartment:
		return e.Department
	case SortCountry:
		return e.Country
	case SortGrade:
		return e.GradeLevel
	default:
		return e.Name
	}
}

// Apply returns the employees matching q, sorted by q.SortBy in q.Order.
//
// Empty sort values are placed last in both directions. Equal values keep their input order.
// The input slice is never modified.
func Apply(employees []models.Employee, q Query) []models.Employee {
	out := make([]models.Employee, 0, len(employees))
	for _, e := range employees {
		if q.Matches(e) {
			out = append(out, e)
		}
	}

	field := q.SortBy
	if !slices.Contains(SortFields, field) {
		field = SortName
	}
	desc := q.Order == Desc
	c := collate.New(language.Und, collate.IgnoreCase)

	sort.SliceStable(out, func(i, j int) bool {
		a, b := sortValue(out[i], field), sortValue(out[j], field)
		switch {
		case a == "" && b == "":
			return false
		case a == "":
			return false
		case b == "":
			return true
		}

		cmp := c.CompareString(a, b)
		if desc {
			return cmp > 0
		}
		return cmp < 0
	})

	return out
}

func unique(employees []models.Employee, pick func(models.Employee) string) []string {
	seen := make(map[string]struct{})
	out := []string{}
	for _, e := range employees {
		v := pick(e)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// UniqueDepartments returns the sorted distinct non-empty departments.
func UniqueDepartments(employees []models.Employee) []string {
	return unique(employees, func(e models.Employee) string { return e.Department })
}

// UniqueCountries returns the sorted distinct non-empty countries.
func UniqueCountries(employees []models.Employee) []string {
	return unique(employees, func(e models.Employee) string { return e.Country })
}

// GradeCounts maps each assigned grade name to its employee count.
func GradeCounts(employees []models.Employee) map[string]int {
	counts := make(map[string]int)
	for _, e := range employees {
		if e.GradeLevel != "" {
			counts[e.GradeLevel]++
		}
	}
	return counts
}

// Stats summarizes the directory for headers and dashboards.
type Stats struct {
	Total       int `json:"total"`
	Filtered    int `json:"filtered"`
	Departments int `json:"departments"`
	GradeLevels int `json:"gradeLevels"`
}

// ComputeStats counts all employees, the filtered subset, distinct departments and defined grades.
func ComputeStats(all, filtered []models.Employee, grades []models.GradeLevel) Stats {
	return Stats{
		Total:       len(all),
		Filtered:    len(filtered),
		Departments: len(UniqueDepartments(all)),
		GradeLevels: len(grades),
	}
}
