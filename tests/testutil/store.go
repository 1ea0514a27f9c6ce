// Package testutil holds helpers shared by the store and server tests.
package testutil

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nhle/taskboard/internal/model"
	"github.com/nhle/taskboard/internal/store"
)

// NewTestStore creates an in-memory SQLiteStore with all migrations applied.
// It automatically closes the store when the test completes.
func NewTestStore(t *testing.T) *store.SQLiteStore {
	t.Helper()

	s, err := store.NewSQLiteStore(":memory:")
	require.NoError(t, err, "creating test store")

	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("closing test store: %v", err)
		}
	})

	return s
}

// SampleTask returns a task that passes creation validation.
func SampleTask(name string) model.Task {
	return model.Task{
		Name:        name,
		Description: name + " description",
		Status:      model.StatusNotCompleted,
		AssignDate:  "2024-01-01",
		LastDate:    "2024-01-10",
	}
}

// Seed inserts one task per name, in order, and returns the stored copies.
func Seed(t *testing.T, s store.Store, names ...string) []model.Task {
	t.Helper()

	out := make([]model.Task, 0, len(names))
	for _, name := range names {
		created, err := s.CreateTask(context.Background(), SampleTask(name))
		require.NoError(t, err, "seeding %s", name)
		out = append(out, created)
	}
	return out
}
