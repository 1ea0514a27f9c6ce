package model

import (
	"fmt"
	"strings"
)

// Status is the completion state of a task as exchanged with the API.
type Status string

// Status values, spelled exactly as the API sends them.
const (
	StatusCompleted    Status = "Completed"
	StatusNotCompleted Status = "Not Completed"
)

// Valid reports whether s is one of the known status values.
func (s Status) Valid() bool {
	return s == StatusCompleted || s == StatusNotCompleted
}

// Toggle returns the opposite status. Anything that is not Completed
// toggles to Completed.
func (s Status) Toggle() Status {
	if s == StatusCompleted {
		return StatusNotCompleted
	}
	return StatusCompleted
}

// Task is a unit of work held by the remote tasks resource.
type Task struct {
	// ID is assigned by the server. It is empty until the task is created.
	ID string `json:"_id,omitempty" db:"id"`

	// Name is the short title of the task.
	Name string `json:"name" db:"name"`

	// Description is the free-form body text.
	Description string `json:"description" db:"description"`

	// Status is either StatusCompleted or StatusNotCompleted.
	Status Status `json:"status" db:"status"`

	// AssignDate is when the task was assigned, as ISO-8601 text.
	AssignDate string `json:"assignDate" db:"assign_date"`

	// LastDate is the due date, as ISO-8601 text.
	LastDate string `json:"lastDate" db:"last_date"`
}

// IsCompleted reports whether the task is marked Completed.
func (t Task) IsCompleted() bool { return t.Status == StatusCompleted }

// Persisted reports whether the task carries a server identifier.
func (t Task) Persisted() bool { return t.ID != "" }

// NewDraft returns an empty task ready to be filled in by a creation form.
func NewDraft() Task {
	return Task{Status: StatusNotCompleted}
}

// TaskPatch holds the fields to merge into an existing task.
// Nil fields are left untouched. Decoding a JSON body into a TaskPatch
// leaves absent keys nil.
type TaskPatch struct {
	ID          *string `json:"_id,omitempty"`
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Status      *Status `json:"status,omitempty"`
	AssignDate  *string `json:"assignDate,omitempty"`
	LastDate    *string `json:"lastDate,omitempty"`
}

// Apply returns t with every non-nil field of p merged in.
func (p TaskPatch) Apply(t Task) Task {
	if p.ID != nil {
		t.ID = *p.ID
	}
	if p.Name != nil {
		t.Name = *p.Name
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.AssignDate != nil {
		t.AssignDate = *p.AssignDate
	}
	if p.LastDate != nil {
		t.LastDate = *p.LastDate
	}
	return t
}

// PatchFrom builds a patch from a task returned by the server. Empty text
// fields are treated as absent so a sparse response never blanks out
// local values.
func PatchFrom(t Task) TaskPatch {
	var p TaskPatch
	if t.ID != "" {
		p.ID = &t.ID
	}
	if t.Name != "" {
		p.Name = &t.Name
	}
	if t.Description != "" {
		p.Description = &t.Description
	}
	if t.Status != "" {
		p.Status = &t.Status
	}
	if t.AssignDate != "" {
		p.AssignDate = &t.AssignDate
	}
	if t.LastDate != "" {
		p.LastDate = &t.LastDate
	}
	return p
}

// FullPatch returns a patch that overwrites every field except ID.
func FullPatch(t Task) TaskPatch {
	return TaskPatch{
		Name:        &t.Name,
		Description: &t.Description,
		Status:      &t.Status,
		AssignDate:  &t.AssignDate,
		LastDate:    &t.LastDate,
	}
}

// StatusPatch returns a patch that only sets the status.
func StatusPatch(s Status) TaskPatch {
	return TaskPatch{Status: &s}
}

// ValidationError lists the required fields missing from a task draft.
type ValidationError struct {
	Missing []string
}

func (e *ValidationError) Error() string {
	return "Please fill in all fields."
}

// Detail names the missing fields, for logs.
func (e *ValidationError) Detail() string {
	return fmt.Sprintf("missing required fields: %s", strings.Join(e.Missing, ", "))
}

// ValidateNew checks the creation invariant: name and description must be
// non-blank and both dates must be set. No ordering between the dates is
// enforced.
func ValidateNew(t Task) error {
	var missing []string
	if strings.TrimSpace(t.Name) == "" {
		missing = append(missing, "name")
	}
	if strings.TrimSpace(t.Description) == "" {
		missing = append(missing, "description")
	}
	if t.AssignDate == "" {
		missing = append(missing, "assignDate")
	}
	if t.LastDate == "" {
		missing = append(missing, "lastDate")
	}
	if len(missing) > 0 {
		return &ValidationError{Missing: missing}
	}
	return nil
}
