package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/desertthunder/staffdir/internal/models"
	"github.com/desertthunder/staffdir/internal/shared"
	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
)

const (
	employeesSheet = "Employees"
	gradesSheet    = "Grade Levels"
	maxXLSRows     = 100000
)

// ExportToXLSX builds a workbook with an Employees sheet and a Grade Levels sheet.
func ExportToXLSX(employees []models.Employee, grades []models.GradeLevel) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", employeesSheet); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}
	if _, err := f.NewSheet(gradesSheet); err != nil {
		return nil, fmt.Errorf("failed to add sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	employeeRows := make([][]string, 0, len(employees)+1)
	employeeRows = append(employeeRows, Columns)
	for _, e := range employees {
		employeeRows = append(employeeRows, Record(e))
	}
	if err := writeSheet(f, employeesSheet, employeeRows, bold); err != nil {
		return nil, err
	}

	gradeRows := make([][]string, 0, len(grades)+1)
	gradeRows = append(gradeRows, []string{"ID", "Name", "Description", "Item Code"})
	for _, g := range grades {
		gradeRows = append(gradeRows, []string{g.ID, g.Name, g.Description, g.ItemCode})
	}
	if err := writeSheet(f, gradesSheet, gradeRows, bold); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeSheet(f *excelize.File, sheet string, rows [][]string, headerStyle int) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		values := make([]any, len(row))
		for j, v := range row {
			values[j] = v
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, i+1, err)
		}
	}
	if err := f.SetRowStyle(sheet, 1, 1, headerStyle); err != nil {
		return fmt.Errorf("failed to style %s header: %w", sheet, err)
	}
	return nil
}

// ReadRows reads every row of the first worksheet. The format is chosen by the filename extension:
// .xls uses the legacy BIFF reader, .csv the CSV reader and anything else is opened as XLSX.
func ReadRows(r io.Reader, filename string) ([][]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var rows [][]string
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xls":
		workbook, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
		if err != nil {
			return nil, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
		}
		if workbook.NumSheets() == 0 {
			return nil, fmt.Errorf("%w: no worksheet found", shared.ErrInvalidInput)
		}
		rows = workbook.ReadAllCells(maxXLSRows)
	case ".csv":
		reader := csv.NewReader(bytes.NewReader(data))
		reader.FieldsPerRecord = -1
		rows, err = reader.ReadAll()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
		}
	default:
		file, err := excelize.OpenReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
		}
		defer func() { _ = file.Close() }()

		sheetName := file.GetSheetName(0)
		if sheetName == "" {
			return nil, fmt.Errorf("%w: no worksheet found", shared.ErrInvalidInput)
		}
		rows, err = file.GetRows(sheetName)
		if err != nil {
			return nil, err
		}
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: worksheet is empty", shared.ErrInvalidInput)
	}
	return rows, nil
}

// headerAliases maps normalized header text to the employee field it fills.
var headerAliases = map[string]string{
	"id":            "id",
	"employee id":   "id",
	"name":          "name",
	"full name":     "name",
	"employee name": "name",
	"employee":      "name",
	"role":          "role",
	"title":         "role",
	"job title":     "role",
	"position":      "role",
	"department":    "department",
	"dept":          "department",
	"team":          "department",
	"grade":         "gradeLevel",
	"grade level":   "gradeLevel",
	"gradelevel":    "gradeLevel",
	"level":         "gradeLevel",
	"country":       "country",
	"state":         "state",
	"province":      "state",
	"region":        "state",
	"address":       "address",
	"email":         "email",
	"e-mail":        "email",
	"email address": "email",
	"phone":         "phone",
	"phone number":  "phone",
	"mobile":        "phone",
}

func normalizeHeader(header string) string {
	return strings.Join(strings.Fields(strings.ToLower(strings.TrimSpace(header))), " ")
}

func cellValue(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// ParseEmployees maps spreadsheet rows to employees using the first row as headers.
//
// Headers are matched case-insensitively against common aliases; unknown columns are ignored.
// A name column is required. Rows whose cells are all blank are skipped. The returned employees
// are not validated. sheetRows holds the 1-based worksheet row each employee was read from.
func ParseEmployees(rows [][]string) (employees []models.Employee, sheetRows []int, err error) {
	if len(rows) == 0 {
		return nil, nil, fmt.Errorf("%w: worksheet is empty", shared.ErrInvalidInput)
	}

	index := make(map[string]int)
	for i, h := range rows[0] {
		field, ok := headerAliases[normalizeHeader(h)]
		if !ok {
			continue
		}
		if _, dup := index[field]; !dup {
			index[field] = i
		}
	}
	if _, ok := index["name"]; !ok {
		return nil, nil, fmt.Errorf("%w: missing name column", shared.ErrInvalidInput)
	}

	col := func(row []string, field string) string {
		idx, ok := index[field]
		if !ok {
			return ""
		}
		return cellValue(row, idx)
	}

	employees = make([]models.Employee, 0, len(rows)-1)
	sheetRows = make([]int, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if blankRow(row) {
			continue
		}
		sheetRows = append(sheetRows, i+2)
		employees = append(employees, models.Employee{
			ID:         col(row, "id"),
			Name:       col(row, "name"),
			Role:       col(row, "role"),
			Department: col(row, "department"),
			GradeLevel: col(row, "gradeLevel"),
			Country:    col(row, "country"),
			State:      col(row, "state"),
			Address:    col(row, "address"),
			Email:      col(row, "email"),
			Phone:      col(row, "phone"),
		})
	}

	return employees, sheetRows, nil
}

func blankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
