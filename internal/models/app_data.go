package models

// AppData is the backup and export document.
//
// ExportDate is an RFC 3339 UTC timestamp with millisecond precision.
type AppData struct {
	Employees   []Employee   `json:"employees"`
	GradeLevels []GradeLevel `json:"gradeLevels"`
	Version     string       `json:"version"`
	ExportDate  string       `json:"exportDate"`
}

// StorageInfo is the storage utilization estimate.
type StorageInfo struct {
	Used       int     `json:"used"`       // UTF-16 code units of every key and value
	Available  int     `json:"available"`  // configured quota in the same units
	Percentage float64 `json:"percentage"` // Used / Available * 100
}
