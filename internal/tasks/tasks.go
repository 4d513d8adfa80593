package tasks

import (
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/staffdir/internal/repositories"
	"github.com/desertthunder/staffdir/internal/shared"
)

const (
	defaultWorkers          = 4
	maxWorkers              = 10
	defaultProgressInterval = 50 * time.Millisecond
)

// ProgressUpdate represents a progress event during a long-running operation.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
}

// Phase identifies the stage of a task.
type Phase int

const (
	ValidateRows Phase = iota
	SaveRecords
	ExportFormat
	WriteManifest
)

func (p Phase) String() string {
	switch p {
	case ValidateRows:
		return "validate_rows"
	case SaveRecords:
		return "save_records"
	case ExportFormat:
		return "export_format"
	case WriteManifest:
		return "write_manifest"
	default:
		return ""
	}
}

// Engine runs bulk operations against one set of repositories.
type Engine struct {
	repos  *repositories.Repositories
	logger *log.Logger
}

// NewEngine creates an [Engine]. A nil logger writes to stderr.
func NewEngine(repos *repositories.Repositories, logger *log.Logger) *Engine {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Engine{repos: repos, logger: logger}
}

// sendProgress sends a progress update through the channel without blocking.
func (e *Engine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

func clampWorkers(n int) int {
	switch {
	case n <= 0:
		return defaultWorkers
	case n > maxWorkers:
		return maxWorkers
	default:
		return n
	}
}

func rowUpdate(phase Phase, step, total int, msg string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   phase,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s", step, total, msg),
	}
}
