package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Storage errors
	ErrStorage       = fmt.Errorf("storage operation failed")
	ErrInvalidBackup = fmt.Errorf("invalid backup data format")
	ErrNoBackup      = fmt.Errorf("no automatic backup available")

	// Record errors
	ErrNotFound      = fmt.Errorf("record not found")
	ErrValidation    = fmt.Errorf("validation failed")
	ErrDuplicateName = fmt.Errorf("a grade level with this name already exists")
	ErrUnknownGrade  = fmt.Errorf("unknown grade level")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
	ErrAborted         = fmt.Errorf("operation aborted")
)
