package tasklist

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/taskboard/internal/model"
	"github.com/nhle/taskboard/internal/theme"
)

// TaskItem wraps a model.Task so it can be used in a bubbles/list.
// Position is the task's index in the full, unfiltered store.
type TaskItem struct {
	Position int
	Task     model.Task
}

// FilterValue returns the string used for fuzzy filtering.
func (i TaskItem) FilterValue() string { return i.Task.Name }

// Title returns the task name for the list.
func (i TaskItem) Title() string { return i.Task.Name }

// Description returns the task description for the list.
func (i TaskItem) Description() string { return i.Task.Description }

// ItemDelegate implements list.ItemDelegate for rendering task rows.
type ItemDelegate struct {
	// now is used for remaining-day calculations. Nil means time.Now.
	now func() time.Time
}

// Height returns the number of lines each item takes.
func (d ItemDelegate) Height() int { return 2 }

// Spacing returns the number of blank lines between items.
func (d ItemDelegate) Spacing() int { return 0 }

// Update handles per-item messages (unused for now).
func (d ItemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

// Render draws a task as a headline and a dimmed description line.
func (d ItemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	ti, ok := item.(TaskItem)
	if !ok {
		return
	}
	isSelected := index == m.Index()

	headline := d.headline(ti.Task)
	desc := theme.DimmedStyle.Render("    " + firstLine(ti.Task.Description))

	style := theme.ListItemStyle
	if isSelected {
		style = theme.SelectedItemStyle
	}
	fmt.Fprint(w, style.Render(headline+"\n"+desc))
}

// headline renders check mark, status badge, name, dates and remaining days.
func (d ItemDelegate) headline(t model.Task) string {
	prefix := "○"
	if t.IsCompleted() {
		prefix = "✓"
	}

	statusBadge := theme.StatusStyle(t.Status).Render(string(t.Status))

	dates := theme.DateStyle.Render(fmt.Sprintf(
		"%s → %s", model.DisplayDate(t.AssignDate), model.DisplayDate(t.LastDate),
	))

	line := fmt.Sprintf("%s %s %s  %s", prefix, statusBadge, t.Name, dates)

	if !t.IsCompleted() {
		if remaining := d.remaining(t.LastDate); remaining != "" {
			line += "  " + remaining
		}
	}
	return line
}

// remaining renders the day count until the last date, or "" when the
// date is unreadable.
func (d ItemDelegate) remaining(lastDate string) string {
	now := time.Now()
	if d.now != nil {
		now = d.now()
	}
	days, ok := model.RemainingDays(lastDate, now)
	if !ok {
		return ""
	}
	return theme.RemainingStyle(days).Render(RemainingLabel(days))
}

// RemainingLabel describes a remaining-days count for humans.
func RemainingLabel(days int) string {
	switch {
	case days < -1:
		return fmt.Sprintf("overdue by %d days", -days)
	case days == -1:
		return "overdue by 1 day"
	case days == 0:
		return "due today"
	case days == 1:
		return "1 day left"
	default:
		return fmt.Sprintf("%d days left", days)
	}
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}
