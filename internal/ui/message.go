package ui

import (
	"github.com/desertthunder/staffdir/internal/models"
)

// dataLoadedMsg carries a fresh snapshot of every record and the storage estimate.
type dataLoadedMsg struct {
	employees []models.Employee
	grades    []models.GradeLevel
	storage   models.StorageInfo
	err       error
}

// actionDoneMsg reports the outcome of a mutation. A nil err triggers a reload.
type actionDoneMsg struct {
	status string
	err    error
}

// formSubmittedMsg is emitted by a [form] when every field has been collected.
type formSubmittedMsg struct {
	values map[string]string
}

// formCancelledMsg is emitted by a [form] on esc.
type formCancelledMsg struct{}
