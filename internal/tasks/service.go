// Package tasks ties the remote API to the session's task store and edit
// session. Every mutation is applied locally only after the remote call
// succeeded; failures are logged once and returned, leaving local state as
// it was.
package tasks

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"log"

	"github.com/nhle/taskboard/internal/editor"
	"github.com/nhle/taskboard/internal/model"
	"github.com/nhle/taskboard/internal/taskstore"
)

// ErrNotFound is returned when an identifier is not in the store.
var ErrNotFound = errors.New("task not found")

// API is the remote tasks resource.
type API interface {
	ListTasks(ctx context.Context) ([]model.Task, error)
	CreateTask(ctx context.Context, t model.Task) (model.Task, error)
	UpdateTask(ctx context.Context, id string, t model.Task) (model.Task, error)
	DeleteTask(ctx context.Context, id string) error
}

// Service owns the task store and the edit session for one session.
type Service struct {
	api    API
	store  *taskstore.Store
	editor *editor.Editor
	logger *log.Logger
}

// NewService returns a service with an empty store. A nil logger discards
// diagnostics.
func NewService(a API, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	s := taskstore.New()
	return &Service{
		api:    a,
		store:  s,
		editor: editor.New(s, a),
		logger: logger,
	}
}

// API returns the remote collaborator.
func (s *Service) API() API { return s.api }

// Store returns the session's task store.
func (s *Service) Store() *taskstore.Store { return s.store }

// Editor returns the session's edit state machine.
func (s *Service) Editor() *editor.Editor { return s.editor }

// Load fetches every task and replaces the store contents.
func (s *Service) Load(ctx context.Context) error {
	tasks, err := s.api.ListTasks(ctx)
	if err != nil {
		return s.fail("fetching tasks", err)
	}
	s.ApplyLoaded(tasks)
	return nil
}

// ApplyLoaded replaces the store contents with a fetched list.
func (s *Service) ApplyLoaded(tasks []model.Task) {
	s.store.ReplaceAll(tasks)
}

// Create validates draft, posts it, and appends the created task. A
// validation failure returns *model.ValidationError, or an error wrapping
// model.ErrInvalidDate, without calling the API.
func (s *Service) Create(ctx context.Context, draft model.Task) (model.Task, error) {
	if err := PrepareDraft(&draft); err != nil {
		return model.Task{}, err
	}
	created, err := s.api.CreateTask(ctx, draft)
	if err != nil {
		return model.Task{}, s.fail("adding task", err)
	}
	s.ApplyCreated(created)
	return created, nil
}

// PrepareDraft fills defaults and checks the creation invariant. Missing
// fields are reported before malformed dates.
func PrepareDraft(draft *model.Task) error {
	draft.ID = ""
	if draft.Status == "" {
		draft.Status = model.StatusNotCompleted
	}
	if err := model.ValidateNew(*draft); err != nil {
		return err
	}
	if err := model.CheckInputDate("assignDate", draft.AssignDate); err != nil {
		return err
	}
	return model.CheckInputDate("lastDate", draft.LastDate)
}

// ApplyCreated appends a task the server has confirmed.
func (s *Service) ApplyCreated(t model.Task) {
	s.store.Add(t)
}

// BeginEdit starts editing the task with the given identifier, discarding
// any edit in progress.
func (s *Service) BeginEdit(id string) error {
	if !s.editor.BeginByID(id) {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

// ChangeField updates the edit scratch buffer.
func (s *Service) ChangeField(name, value string) error {
	return s.editor.ChangeField(name, value)
}

// SaveEdit sends the scratch buffer and commits the result.
func (s *Service) SaveEdit(ctx context.Context) (model.Task, error) {
	t, err := s.editor.Save(ctx)
	if err != nil {
		return model.Task{}, s.fail("updating task", err)
	}
	return t, nil
}

// CancelEdit discards the edit in progress.
func (s *Service) CancelEdit() {
	s.editor.Cancel()
}

// Delete removes the task remotely, then locally.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.DeleteRequest(id); err != nil {
		return err
	}
	if err := s.api.DeleteTask(ctx, id); err != nil {
		return s.fail("deleting task", err)
	}
	s.ApplyDeleted(id)
	return nil
}

// DeleteRequest checks that id names a stored task, so a DELETE can be
// sent for it. Tasks without an identifier are never sent.
func (s *Service) DeleteRequest(id string) error {
	if s.store.IndexOf(id) < 0 {
		return fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	return nil
}

// ApplyDeleted removes a task the server has deleted and ends any edit
// session targeting it.
func (s *Service) ApplyDeleted(id string) {
	s.store.DeleteByID(id)
	s.editor.Forget(id)
}

// ToggleStatus flips a task between Completed and Not Completed.
func (s *Service) ToggleStatus(ctx context.Context, id string) (model.Task, error) {
	req, err := s.ToggleRequest(id)
	if err != nil {
		return model.Task{}, err
	}
	result, err := s.api.UpdateTask(ctx, id, req)
	if err != nil {
		return model.Task{}, s.fail("updating task", err)
	}
	return s.ApplyUpdated(id, req, result), nil
}

// ToggleRequest builds the PUT payload that flips a task's status.
func (s *Service) ToggleRequest(id string) (model.Task, error) {
	t, ok := s.store.Find(id)
	if !ok {
		return model.Task{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	t.Status = t.Status.Toggle()
	return t, nil
}

// ApplyUpdated merges a confirmed update into the store. sent is what was
// put, result what the server answered.
func (s *Service) ApplyUpdated(id string, sent, result model.Task) model.Task {
	s.store.UpdateByID(id, model.StatusPatch(sent.Status))
	s.store.UpdateByID(id, model.PatchFrom(result))
	t, _ := s.store.Find(id)
	return t
}

// LogFailure records a failed external call that was run elsewhere,
// e.g. from a UI command.
func (s *Service) LogFailure(action string, err error) error {
	return s.fail(action, err)
}

// View returns the filtered view of the store.
func (s *Service) View(f model.Filter) iter.Seq2[int, model.Task] {
	return s.store.FilteredView(f)
}

// Counts returns totals over the whole store.
func (s *Service) Counts() model.Counts {
	return s.store.Counts()
}

func (s *Service) fail(action string, err error) error {
	s.logger.Printf("error %s: %v", action, err)
	return fmt.Errorf("%s: %w", action, err)
}
