// package formatter renders directory data as CSV, Markdown, plain text, XLSX and terminal tables,
// and reads employee rows back from spreadsheets.
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/desertthunder/staffdir/internal/models"
	"github.com/olekukonko/tablewriter"
)

// Columns is the header row shared by every tabular export and accepted by [ParseEmployees].
var Columns = []string{"ID", "Name", "Role", "Department", "Grade Level", "Country", "State", "Address", "Email", "Phone"}

// Record flattens e into [Columns] order.
func Record(e models.Employee) []string {
	return []string{e.ID, e.Name, e.Role, e.Department, e.GradeLevel, e.Country, e.State, e.Address, e.Email, e.Phone}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// ExportToCSV converts employees to CSV with a [Columns] header row.
func ExportToCSV(employees []models.Employee) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(Columns); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, e := range employees {
		if err := writer.Write(Record(e)); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown renders a directory document: a summary, the grade levels and one entry per employee.
func ExportToMarkdown(employees []models.Employee, grades []models.GradeLevel) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString("# Staff Directory\n\n")
	buf.WriteString(fmt.Sprintf("**Employees**: %d\n", len(employees)))
	buf.WriteString(fmt.Sprintf("**Grade Levels**: %d\n\n", len(grades)))

	if len(grades) > 0 {
		buf.WriteString("## Grade Levels\n\n")
		buf.WriteString("| Name | Description | Item Code |\n")
		buf.WriteString("|------|-------------|-----------|\n")
		for _, g := range grades {
			buf.WriteString(fmt.Sprintf("| %s | %s | %s |\n", g.Name, orDash(g.Description), orDash(g.ItemCode)))
		}
		buf.WriteString("\n")
	}

	buf.WriteString("## Employees\n\n")
	for i, e := range employees {
		gradePart := ""
		if e.GradeLevel != "" {
			gradePart = fmt.Sprintf(" [%s]", e.GradeLevel)
		}
		buf.WriteString(fmt.Sprintf("%d. **%s** - %s, %s%s\n", i+1, e.Name, e.Role, e.Department, gradePart))
		buf.WriteString(fmt.Sprintf("   - Location: %s\n", e.Location()))
		if e.Email != "" {
			buf.WriteString(fmt.Sprintf("   - Email: %s\n", e.Email))
		}
		if e.Phone != "" {
			buf.WriteString(fmt.Sprintf("   - Phone: %s\n", e.Phone))
		}
	}

	return buf.Bytes(), nil
}

// ExportToText converts employees to a numbered plain text list.
func ExportToText(employees []models.Employee) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Employees: %d\n\n", len(employees)))
	for i, e := range employees {
		buf.WriteString(fmt.Sprintf("%d. %s - %s (%s, %s)\n", i+1, e.Name, e.Role, e.Department, e.Location()))
	}

	return buf.Bytes(), nil
}

// WriteTable renders employees as an aligned terminal table.
func WriteTable(w io.Writer, employees []models.Employee) error {
	table := tablewriter.NewWriter(w)
	table.Header("ID", "Name", "Role", "Department", "Grade", "Location", "Email")

	for _, e := range employees {
		if err := table.Append(e.ID, e.Name, e.Role, e.Department, orDash(e.GradeLevel), e.Location(), orDash(e.Email)); err != nil {
			return fmt.Errorf("failed to append row: %w", err)
		}
	}

	return table.Render()
}

// WriteGradeTable renders grade levels with their assigned employee counts.
func WriteGradeTable(w io.Writer, grades []models.GradeLevel, counts map[string]int) error {
	table := tablewriter.NewWriter(w)
	table.Header("ID", "Name", "Description", "Item Code", "Employees")

	for _, g := range grades {
		if err := table.Append(g.ID, g.Name, orDash(g.Description), orDash(g.ItemCode), strconv.Itoa(counts[g.Name])); err != nil {
			return fmt.Errorf("failed to append row: %w", err)
		}
	}

	return table.Render()
}

// WriteProfile renders one employee as a two-column field/value table.
//
// grade may be nil when the employee is unassigned or the grade no longer exists.
func WriteProfile(w io.Writer, e models.Employee, grade *models.GradeLevel) error {
	table := tablewriter.NewWriter(w)
	table.Header("Field", "Value")

	gradeLabel := orDash(e.GradeLevel)
	if grade != nil {
		gradeLabel = grade.Label()
	}

	rows := [][2]string{
		{"ID", e.ID},
		{"Name", e.Name},
		{"Role", e.Role},
		{"Department", e.Department},
		{"Grade Level", gradeLabel},
		{"Email", orDash(e.Email)},
		{"Phone", orDash(e.Phone)},
		{"Address", e.Address},
		{"State", e.State},
		{"Country", e.Country},
	}
	for _, r := range rows {
		if err := table.Append(r[0], r[1]); err != nil {
			return fmt.Errorf("failed to append row: %w", err)
		}
	}

	return table.Render()
}

// Render produces employees in the named file format: csv, markdown, txt or xlsx.
func Render(format string, employees []models.Employee, grades []models.GradeLevel) ([]byte, error) {
	switch format {
	case "csv":
		return ExportToCSV(employees)
	case "markdown", "md":
		return ExportToMarkdown(employees, grades)
	case "txt", "text":
		return ExportToText(employees)
	case "xlsx":
		return ExportToXLSX(employees, grades)
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}
}

// WriteExport renders employees in format and writes the result to path.
func WriteExport(format string, employees []models.Employee, grades []models.GradeLevel, path string) error {
	data, err := Render(format, employees, grades)
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s file: %w", format, err)
	}
	return nil
}
