// Package editor implements the single in-place edit session of the list
// view.
//
// An Editor is Idle or Editing. Begin copies a task into a scratch buffer;
// ChangeField only touches that buffer; Save sends it to the Updater and,
// on success, merges the server's answer into the task store and returns
// to Idle. A failed Save keeps the session so no edit is lost. Beginning a
// second edit silently discards the first.
package editor

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/nhle/taskboard/internal/model"
	"github.com/nhle/taskboard/internal/taskstore"
)

var (
	// ErrNotEditing is returned by operations that need an active session.
	ErrNotEditing = errors.New("no task is being edited")

	// ErrNoIdentifier is returned when saving a task the server never
	// assigned an identifier to.
	ErrNoIdentifier = errors.New("task has no identifier")

	// ErrUnknownField is returned by ChangeField for unknown field names.
	ErrUnknownField = errors.New("unknown task field")
)

// Field names accepted by ChangeField. They match the JSON field names.
const (
	FieldName        = "name"
	FieldDescription = "description"
	FieldStatus      = "status"
	FieldAssignDate  = "assignDate"
	FieldLastDate    = "lastDate"
)

// Updater persists an edited task and returns the server's version.
type Updater interface {
	UpdateTask(ctx context.Context, id string, t model.Task) (model.Task, error)
}

// session is the state of an active edit.
type session struct {
	id       string
	position int
	scratch  model.Task
}

// Editor tracks at most one edit session against a task store.
type Editor struct {
	store   *taskstore.Store
	updater Updater
	current *session
}

// New returns an idle editor that commits into s through u.
func New(s *taskstore.Store, u Updater) *Editor {
	return &Editor{store: s, updater: u}
}

// Begin starts editing task, which sits at position in the store. Any
// session already in progress is discarded.
func (e *Editor) Begin(position int, task model.Task) {
	e.current = &session{
		id:       task.ID,
		position: position,
		scratch:  task,
	}
}

// BeginByID starts editing the task with the given identifier.
func (e *Editor) BeginByID(id string) bool {
	pos := e.store.IndexOf(id)
	task, ok := e.store.Get(pos)
	if !ok {
		return false
	}
	e.Begin(pos, task)
	return true
}

// Active reports whether a session is in progress.
func (e *Editor) Active() bool { return e.current != nil }

// ID returns the identifier of the task being edited.
func (e *Editor) ID() string {
	if e.current == nil {
		return ""
	}
	return e.current.id
}

// Position returns the store position captured when the session began.
func (e *Editor) Position() (int, bool) {
	if e.current == nil {
		return 0, false
	}
	return e.current.position, true
}

// Scratch returns a copy of the in-progress values.
func (e *Editor) Scratch() (model.Task, bool) {
	if e.current == nil {
		return model.Task{}, false
	}
	return e.current.scratch, true
}

// ChangeField sets one field of the scratch buffer. The store is not
// touched. Dates must be blank or YYYY-MM-DD; a rejected value leaves the
// scratch as it was.
func (e *Editor) ChangeField(name, value string) error {
	if e.current == nil {
		return ErrNotEditing
	}

	s := &e.current.scratch
	switch name {
	case FieldName:
		s.Name = value
	case FieldDescription:
		s.Description = value
	case FieldStatus:
		st := model.Status(value)
		if !st.Valid() {
			return fmt.Errorf("invalid status %q", value)
		}
		s.Status = st
	case FieldAssignDate:
		if err := model.CheckInputDate(name, value); err != nil {
			return err
		}
		s.AssignDate = strings.TrimSpace(value)
	case FieldLastDate:
		if err := model.CheckInputDate(name, value); err != nil {
			return err
		}
		s.LastDate = strings.TrimSpace(value)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	return nil
}

// Request returns what a save must send: the task identifier and the
// scratch values. It does not change any state.
func (e *Editor) Request() (string, model.Task, error) {
	if e.current == nil {
		return "", model.Task{}, ErrNotEditing
	}
	if e.current.id == "" {
		return "", model.Task{}, ErrNoIdentifier
	}
	return e.current.id, e.current.scratch, nil
}

// Commit applies a successful save of scratch for the task with the given
// identifier: the scratch values, then the non-empty fields of the server
// result, are written at the task's current position. The session ends if
// it still targets that task. Nothing is written when the task is no
// longer in the store.
func (e *Editor) Commit(id string, scratch, result model.Task) model.Task {
	if e.current != nil && e.current.id == id {
		e.current = nil
	}

	pos := e.store.IndexOf(id)
	if pos < 0 {
		return model.PatchFrom(result).Apply(scratch)
	}
	e.store.Update(pos, model.FullPatch(scratch))
	e.store.Update(pos, model.PatchFrom(result))

	task, _ := e.store.Get(pos)
	return task
}

// Save sends the scratch buffer to the updater and commits the answer.
// On failure the session is kept and the error returned.
func (e *Editor) Save(ctx context.Context) (model.Task, error) {
	id, scratch, err := e.Request()
	if err != nil {
		return model.Task{}, err
	}

	result, err := e.updater.UpdateTask(ctx, id, scratch)
	if err != nil {
		return model.Task{}, fmt.Errorf("saving task %s: %w", id, err)
	}

	return e.Commit(id, scratch, result), nil
}

// Cancel discards the session without touching the store.
func (e *Editor) Cancel() {
	e.current = nil
}

// Forget drops the session if it targets the task with the given
// identifier. Used after that task is deleted.
func (e *Editor) Forget(id string) {
	if e.current != nil && e.current.id == id {
		e.current = nil
	}
}
