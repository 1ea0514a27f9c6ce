// Package store persists tasks for the development backend.
package store

import (
	"context"
	"errors"

	"github.com/nhle/taskboard/internal/model"
)

// ErrNotFound is returned when no task has the requested identifier.
var ErrNotFound = errors.New("task not found")

// TaskFilter narrows ListTasks.
type TaskFilter struct {
	Status *model.Status
	Query  *string
	Limit  int
	Offset int
	// SortByDue orders by last date, then insertion order.
	SortByDue bool
}

// Store defines the persistence interface behind the tasks API.
type Store interface {
	CreateTask(ctx context.Context, task model.Task) (model.Task, error)
	UpdateTask(ctx context.Context, task model.Task) (model.Task, error)
	DeleteTask(ctx context.Context, id string) error
	GetTaskByID(ctx context.Context, id string) (*model.Task, error)
	ListTasks(ctx context.Context, filter TaskFilter) ([]model.Task, error)
	CountTasks(ctx context.Context) (model.Counts, error)
}
