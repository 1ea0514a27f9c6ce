package model

import (
	"fmt"
	"strings"
)

// Filter selects which tasks the list view shows. It never changes the
// underlying list.
type Filter int

const (
	FilterAll Filter = iota
	FilterCompleted
	FilterNotCompleted
)

// filterOrder is the cycle order used by the list view.
var filterOrder = []Filter{FilterAll, FilterCompleted, FilterNotCompleted}

// Match reports whether t is visible under f. Any status other than
// Completed counts as incomplete, as in Counts.
func (f Filter) Match(t Task) bool {
	switch f {
	case FilterCompleted:
		return t.IsCompleted()
	case FilterNotCompleted:
		return !t.IsCompleted()
	default:
		return true
	}
}

// Next returns the filter after f in the cycle All → Completed → Incomplete.
func (f Filter) Next() Filter {
	for i, candidate := range filterOrder {
		if candidate == f {
			return filterOrder[(i+1)%len(filterOrder)]
		}
	}
	return FilterAll
}

// String returns the label shown in the status filter.
func (f Filter) String() string {
	switch f {
	case FilterCompleted:
		return "Completed"
	case FilterNotCompleted:
		return "Incomplete"
	default:
		return "All"
	}
}

// ParseFilter converts user text into a Filter.
func ParseFilter(s string) (Filter, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return FilterAll, nil
	case "completed", "complete", "done":
		return FilterCompleted, nil
	case "incomplete", "not completed", "not-completed", "open":
		return FilterNotCompleted, nil
	default:
		return FilterAll, fmt.Errorf("unknown filter %q (want all, completed or incomplete)", s)
	}
}

// Counts summarizes a task list.
type Counts struct {
	Total      int
	Completed  int
	Incomplete int
}
