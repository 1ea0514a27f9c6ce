package app

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/taskboard/internal/model"
)

// tasksLoadedMsg carries the result of a full reload.
type tasksLoadedMsg struct {
	tasks []model.Task
	err   error
	at    time.Time
}

// taskCreatedMsg is sent after a POST completes.
type taskCreatedMsg struct {
	task model.Task
	err  error
}

// taskSavedMsg is sent after an edit session's PUT completes.
type taskSavedMsg struct {
	id      string
	scratch model.Task
	result  model.Task
	err     error
}

// taskToggledMsg is sent after a status toggle's PUT completes.
type taskToggledMsg struct {
	id     string
	sent   model.Task
	result model.Task
	err    error
}

// taskDeletedMsg is sent after a DELETE completes.
type taskDeletedMsg struct {
	id  string
	err error
}

// reload fetches every task unless a reload is already in flight.
func (m *Model) reload() tea.Cmd {
	if !m.poller.Begin() {
		return nil
	}
	api := m.svc.API()
	return func() tea.Msg {
		tasks, err := api.ListTasks(context.Background())
		return tasksLoadedMsg{tasks: tasks, err: err, at: time.Now()}
	}
}

// createTask posts a validated draft.
func (m *Model) createTask(draft model.Task) tea.Cmd {
	api := m.svc.API()
	return func() tea.Msg {
		created, err := api.CreateTask(context.Background(), draft)
		return taskCreatedMsg{task: created, err: err}
	}
}

// saveTask puts the edit session's scratch copy.
func (m *Model) saveTask(id string, scratch model.Task) tea.Cmd {
	api := m.svc.API()
	return func() tea.Msg {
		result, err := api.UpdateTask(context.Background(), id, scratch)
		return taskSavedMsg{id: id, scratch: scratch, result: result, err: err}
	}
}

// toggleTask flips the status of the task with the given ID.
func (m *Model) toggleTask(id string) tea.Cmd {
	sent, err := m.svc.ToggleRequest(id)
	if err != nil {
		m.setError(err)
		return nil
	}
	api := m.svc.API()
	return func() tea.Msg {
		result, err := api.UpdateTask(context.Background(), id, sent)
		return taskToggledMsg{id: id, sent: sent, result: result, err: err}
	}
}

// deleteTask removes the task with the given ID.
func (m *Model) deleteTask(id string) tea.Cmd {
	if err := m.svc.DeleteRequest(id); err != nil {
		m.setError(err)
		return nil
	}
	api := m.svc.API()
	return func() tea.Msg {
		err := api.DeleteTask(context.Background(), id)
		return taskDeletedMsg{id: id, err: err}
	}
}
