package store_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/taskboard/internal/model"
	"github.com/nhle/taskboard/internal/store"
	"github.com/nhle/taskboard/tests/testutil"
)

func TestCreateAssignsID(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	in := testutil.SampleTask("write report")
	in.ID = "client-chosen"
	in.Status = ""

	created, err := s.CreateTask(ctx, in)
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.NotEqual(t, "client-chosen", created.ID)
	assert.Equal(t, model.StatusNotCompleted, created.Status)

	got, err := s.GetTaskByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, *got)
}

func TestCreateRejectsIncompleteTask(t *testing.T) {
	s := testutil.NewTestStore(t)

	in := testutil.SampleTask("x")
	in.Description = "  "
	_, err := s.CreateTask(context.Background(), in)

	var verr *model.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Missing, "description")
}

func TestListKeepsInsertionOrder(t *testing.T) {
	s := testutil.NewTestStore(t)
	seeded := testutil.Seed(t, s, "c", "a", "b")

	tasks, err := s.ListTasks(context.Background(), store.TaskFilter{})
	require.NoError(t, err)
	assert.Equal(t, seeded, tasks)
}

func TestListEmpty(t *testing.T) {
	s := testutil.NewTestStore(t)

	tasks, err := s.ListTasks(context.Background(), store.TaskFilter{})
	require.NoError(t, err)
	assert.NotNil(t, tasks)
	assert.Empty(t, tasks)
}

func TestListFilters(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()
	seeded := testutil.Seed(t, s, "groceries", "taxes", "garden")

	done := seeded[1]
	done.Status = model.StatusCompleted
	_, err := s.UpdateTask(ctx, done)
	require.NoError(t, err)

	completed := model.StatusCompleted
	tasks, err := s.ListTasks(ctx, store.TaskFilter{Status: &completed})
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "taxes", tasks[0].Name)

	q := "ar"
	tasks, err = s.ListTasks(ctx, store.TaskFilter{Query: &q})
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "garden", tasks[0].Name)

	tasks, err = s.ListTasks(ctx, store.TaskFilter{Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "taxes", tasks[0].Name)

	tasks, err = s.ListTasks(ctx, store.TaskFilter{Offset: 2})
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "garden", tasks[0].Name)
}

func TestListSortByDue(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()
	seeded := testutil.Seed(t, s, "late", "early", "tied")

	for i, last := range []string{"2024-03-01", "2024-01-01", "2024-03-01"} {
		task := seeded[i]
		task.LastDate = last
		_, err := s.UpdateTask(ctx, task)
		require.NoError(t, err)
	}

	tasks, err := s.ListTasks(ctx, store.TaskFilter{SortByDue: true})
	require.NoError(t, err)
	var names []string
	for _, task := range tasks {
		names = append(names, task.Name)
	}
	assert.Equal(t, []string{"early", "late", "tied"}, names)
}

func TestUpdateTask(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()
	seeded := testutil.Seed(t, s, "a", "b")

	changed := seeded[0]
	changed.Name = "renamed"
	changed.LastDate = "2024-02-01"
	_, err := s.UpdateTask(ctx, changed)
	require.NoError(t, err)

	tasks, err := s.ListTasks(ctx, store.TaskFilter{})
	require.NoError(t, err)
	assert.Equal(t, []model.Task{changed, seeded[1]}, tasks)
}

func TestUpdateUnknownID(t *testing.T) {
	s := testutil.NewTestStore(t)

	missing := testutil.SampleTask("ghost")
	missing.ID = "missing"
	_, err := s.UpdateTask(context.Background(), missing)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestDeleteTask(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()
	seeded := testutil.Seed(t, s, "a", "b")

	require.NoError(t, s.DeleteTask(ctx, seeded[0].ID))
	assert.ErrorIs(t, s.DeleteTask(ctx, seeded[0].ID), store.ErrNotFound)

	_, err := s.GetTaskByID(ctx, seeded[0].ID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	tasks, err := s.ListTasks(ctx, store.TaskFilter{})
	require.NoError(t, err)
	assert.Equal(t, []model.Task{seeded[1]}, tasks)
}

func TestCountTasks(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	counts, err := s.CountTasks(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.Counts{}, counts)

	seeded := testutil.Seed(t, s, "a", "b", "c")
	done := seeded[2]
	done.Status = model.StatusCompleted
	_, err = s.UpdateTask(ctx, done)
	require.NoError(t, err)

	counts, err = s.CountTasks(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.Counts{Total: 3, Completed: 1, Incomplete: 2}, counts)
}

func TestMigrationsAreIdempotent(t *testing.T) {
	path := t.TempDir() + "/tasks.db"

	s, err := store.NewSQLiteStore(path)
	require.NoError(t, err)
	testutil.Seed(t, s, "kept")
	require.NoError(t, s.Close())

	s, err = store.NewSQLiteStore(path)
	require.NoError(t, err)
	defer s.Close()

	tasks, err := s.ListTasks(context.Background(), store.TaskFilter{})
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "kept", tasks[0].Name)
}
