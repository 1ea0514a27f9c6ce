package tasklist

import (
	"iter"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/taskboard/internal/keys"
	"github.com/nhle/taskboard/internal/model"
	"github.com/nhle/taskboard/internal/taskstore"
)

// storeSource adapts a taskstore.Store to Source.
type storeSource struct{ s *taskstore.Store }

func (src storeSource) View(f model.Filter) iter.Seq2[int, model.Task] { return src.s.FilteredView(f) }
func (src storeSource) Counts() model.Counts                           { return src.s.Counts() }

func newList(t *testing.T, tasks ...model.Task) (Model, *taskstore.Store) {
	t.Helper()
	s := taskstore.New()
	s.ReplaceAll(tasks)
	m := New(storeSource{s}, keys.DefaultKeyMap(), 100, 30)
	m.Refresh()
	return m, s
}

func sample() []model.Task {
	return []model.Task{
		{ID: "1", Name: "A", Status: model.StatusCompleted, LastDate: "2024-01-10"},
		{ID: "2", Name: "B", Status: model.StatusNotCompleted, LastDate: "2024-01-11"},
		{ID: "3", Name: "C", Status: model.StatusNotCompleted, LastDate: "2024-01-12"},
	}
}

func TestRefreshKeepsPositions(t *testing.T) {
	m, _ := newList(t, sample()...)
	m.SetFilter(model.FilterNotCompleted)

	items := m.list.Items()
	require.Len(t, items, 2)
	assert.Equal(t, 1, items[0].(TaskItem).Position)
	assert.Equal(t, 2, items[1].(TaskItem).Position)
	assert.Equal(t, model.Counts{Total: 3, Completed: 1, Incomplete: 2}, m.counts)
}

func TestRefreshFollowsSelection(t *testing.T) {
	m, s := newList(t, sample()...)
	m.list.Select(2)

	s.DeleteByID("1")
	m.Refresh()

	selected, ok := m.SelectedTask()
	require.True(t, ok)
	assert.Equal(t, "3", selected.ID)
}

func TestEmptyStates(t *testing.T) {
	m, _ := newList(t)
	assert.Contains(t, m.View(), "No tasks yet.")

	m, _ = newList(t, sample()[0])
	m.SetFilter(model.FilterNotCompleted)
	assert.Contains(t, m.View(), "No incomplete tasks.")
}

func TestRemainingLabel(t *testing.T) {
	assert.Equal(t, "overdue by 3 days", RemainingLabel(-3))
	assert.Equal(t, "overdue by 1 day", RemainingLabel(-1))
	assert.Equal(t, "due today", RemainingLabel(0))
	assert.Equal(t, "1 day left", RemainingLabel(1))
	assert.Equal(t, "9 days left", RemainingLabel(9))
}

func TestHeadline(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	d := ItemDelegate{now: func() time.Time { return now }}

	open := d.headline(model.Task{
		Name: "B", Status: model.StatusNotCompleted,
		AssignDate: "2023-12-20", LastDate: "2023-12-30",
	})
	assert.True(t, strings.HasPrefix(open, "○"))
	assert.Contains(t, open, "Dec 20, 2023")
	assert.Contains(t, open, "overdue by 2 days")

	done := d.headline(model.Task{
		Name: "A", Status: model.StatusCompleted,
		AssignDate: "2024-01-01", LastDate: "2024-01-10",
	})
	assert.True(t, strings.HasPrefix(done, "✓"))
	assert.NotContains(t, done, "left")
}
