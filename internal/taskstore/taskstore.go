// Package taskstore holds the session's authoritative list of tasks.
//
// Positions are indices into the full list, never into a filtered view.
// FilteredView yields the full-list position of each visible task so that
// a rendered row can be mapped back before calling Update or Delete.
// Callers that can should address tasks by identifier instead; the *ByID
// methods resolve the position internally.
//
// A Store is not safe for concurrent use. The UI mutates it only from its
// single update loop.
package taskstore

import (
	"iter"
	"slices"

	"github.com/nhle/taskboard/internal/model"
)

// Store is the in-memory task list for one session.
type Store struct {
	tasks []model.Task
}

// New returns an empty store.
func New() *Store {
	return &Store{}
}

// ReplaceAll discards the current contents and adopts tasks as given.
// No validation is performed.
func (s *Store) ReplaceAll(tasks []model.Task) {
	s.tasks = slices.Clone(tasks)
}

// Add appends a task. It should already carry its server identifier.
func (s *Store) Add(t model.Task) {
	s.tasks = append(s.tasks, t)
}

// Update merges patch into the task at position. An out-of-range position
// is a no-op and reports false.
func (s *Store) Update(position int, patch model.TaskPatch) bool {
	if !s.inRange(position) {
		return false
	}
	s.tasks[position] = patch.Apply(s.tasks[position])
	return true
}

// Delete removes the task at position, shifting later tasks down by one.
// An out-of-range position is a no-op and reports false.
func (s *Store) Delete(position int) bool {
	if !s.inRange(position) {
		return false
	}
	s.tasks = slices.Delete(s.tasks, position, position+1)
	return true
}

// Get returns the task at position.
func (s *Store) Get(position int) (model.Task, bool) {
	if !s.inRange(position) {
		return model.Task{}, false
	}
	return s.tasks[position], true
}

// Len returns the number of tasks.
func (s *Store) Len() int { return len(s.tasks) }

// Tasks returns a copy of the full list in display order.
func (s *Store) Tasks() []model.Task {
	return slices.Clone(s.tasks)
}

// IndexOf returns the position of the first task with the given
// identifier, or -1.
func (s *Store) IndexOf(id string) int {
	if id == "" {
		return -1
	}
	return slices.IndexFunc(s.tasks, func(t model.Task) bool { return t.ID == id })
}

// Find returns the first task with the given identifier.
func (s *Store) Find(id string) (model.Task, bool) {
	return s.Get(s.IndexOf(id))
}

// UpdateByID merges patch into the task with the given identifier.
func (s *Store) UpdateByID(id string, patch model.TaskPatch) bool {
	return s.Update(s.IndexOf(id), patch)
}

// DeleteByID removes the task with the given identifier.
func (s *Store) DeleteByID(id string) bool {
	return s.Delete(s.IndexOf(id))
}

// FilteredView returns a lazy, restartable sequence of (position, task)
// pairs for the tasks matching f, in list order. It reads the list as it
// is when iteration happens and never mutates it.
func (s *Store) FilteredView(f model.Filter) iter.Seq2[int, model.Task] {
	return func(yield func(int, model.Task) bool) {
		for i, t := range s.tasks {
			if !f.Match(t) {
				continue
			}
			if !yield(i, t) {
				return
			}
		}
	}
}

// Filtered collects FilteredView into a slice.
func (s *Store) Filtered(f model.Filter) []model.Task {
	var out []model.Task
	for _, t := range s.FilteredView(f) {
		out = append(out, t)
	}
	return out
}

// Counts returns totals over the full list, computed on each call.
func (s *Store) Counts() model.Counts {
	c := model.Counts{Total: len(s.tasks)}
	for _, t := range s.tasks {
		if t.IsCompleted() {
			c.Completed++
		} else {
			c.Incomplete++
		}
	}
	return c
}

func (s *Store) inRange(position int) bool {
	return position >= 0 && position < len(s.tasks)
}
