package models

import (
	"fmt"
	"net/mail"
	"strings"

	"github.com/desertthunder/staffdir/internal/shared"
)

var _ Model = (*Employee)(nil)

// Employee is a staff member. GradeLevel holds the *name* of a [GradeLevel], not its ID.
type Employee struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Country    string `json:"country"`
	State      string `json:"state"`
	Address    string `json:"address"`
	Role       string `json:"role"`
	Department string `json:"department"`
	GradeLevel string `json:"gradeLevel,omitempty"`
	Email      string `json:"email,omitempty"`
	Phone      string `json:"phone,omitempty"`
}

func (e *Employee) Identifier() string { return e.ID }

// Normalize trims surrounding whitespace from every field.
func (e *Employee) Normalize() {
	for _, f := range []*string{
		&e.ID, &e.Name, &e.Country, &e.State, &e.Address,
		&e.Role, &e.Department, &e.GradeLevel, &e.Email, &e.Phone,
	} {
		*f = strings.TrimSpace(*f)
	}
}

// Validate applies the employee form rules: required fields must be non-blank and email, when set, must be an address.
func (e *Employee) Validate() error {
	required := []struct {
		label string
		value string
	}{
		{"name", e.Name},
		{"role", e.Role},
		{"department", e.Department},
		{"country", e.Country},
		{"state", e.State},
		{"address", e.Address},
	}

	var missing []string
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			missing = append(missing, r.label)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s required", shared.ErrValidation, strings.Join(missing, ", "))
	}

	if email := strings.TrimSpace(e.Email); email != "" {
		if _, err := mail.ParseAddress(email); err != nil {
			return fmt.Errorf("%w: invalid email %q", shared.ErrValidation, email)
		}
	}

	return nil
}

// Location joins state and country for display.
func (e Employee) Location() string {
	switch {
	case e.State != "" && e.Country != "":
		return e.State + ", " + e.Country
	case e.Country != "":
		return e.Country
	default:
		return e.State
	}
}
