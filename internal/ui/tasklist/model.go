package tasklist

import (
	"fmt"
	"iter"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/taskboard/internal/keys"
	"github.com/nhle/taskboard/internal/model"
	"github.com/nhle/taskboard/internal/theme"
)

// Source is the read side of the task store the list renders.
type Source interface {
	View(f model.Filter) iter.Seq2[int, model.Task]
	Counts() model.Counts
}

// FilterChangedMsg is sent after the active filter changes.
type FilterChangedMsg struct {
	Filter model.Filter
}

// filters is the order the selector renders.
var filters = []model.Filter{
	model.FilterAll,
	model.FilterCompleted,
	model.FilterNotCompleted,
}

// Model is the main task list view component.
type Model struct {
	list   list.Model
	source Source
	keys   *keys.KeyMap
	filter model.Filter
	counts model.Counts
	width  int
	height int
}

// headerHeight is the number of lines above the list.
const headerHeight = 2

// New creates a new task list model.
func New(src Source, k *keys.KeyMap, width, height int) Model {
	l := list.New([]list.Item{}, ItemDelegate{}, width, height-headerHeight)
	l.Title = "Tasks"
	l.SetShowTitle(false)
	l.SetShowStatusBar(true)
	l.SetStatusBarItemName("task", "tasks")
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.Styles.Title = theme.HeaderStyle

	return Model{
		list:   l,
		source: src,
		keys:   k,
		filter: model.FilterAll,
		width:  width,
		height: height,
	}
}

// Update handles messages for the task list view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, m.keys.CycleFilter):
			return m, m.SetFilter(m.filter.Next())
		case key.Matches(msg, m.keys.FilterAll):
			return m, m.SetFilter(model.FilterAll)
		case key.Matches(msg, m.keys.FilterCompleted):
			return m, m.SetFilter(model.FilterCompleted)
		case key.Matches(msg, m.keys.FilterIncomplete):
			return m, m.SetFilter(model.FilterNotCompleted)
		}
	}

	// Delegate to the list for navigation keys (up/down/pgup/pgdn)
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// SetFilter switches the filter and rebuilds the rows.
func (m *Model) SetFilter(f model.Filter) tea.Cmd {
	m.filter = f
	m.list.ResetSelected()
	cmd := m.Refresh()
	return tea.Batch(cmd, func() tea.Msg { return FilterChangedMsg{Filter: f} })
}

// Filter returns the active filter.
func (m Model) Filter() model.Filter { return m.filter }

// Refresh rebuilds the rows from the source. The selection follows the
// previously selected task when it is still visible.
func (m *Model) Refresh() tea.Cmd {
	selectedID := ""
	if t, ok := m.SelectedTask(); ok {
		selectedID = t.ID
	}

	var items []list.Item
	cursor := -1
	for pos, t := range m.source.View(m.filter) {
		if selectedID != "" && t.ID == selectedID {
			cursor = len(items)
		}
		items = append(items, TaskItem{Position: pos, Task: t})
	}
	m.counts = m.source.Counts()

	cmd := m.list.SetItems(items)
	if cursor >= 0 {
		m.list.Select(cursor)
	}
	return cmd
}

// SelectedTask returns the highlighted task.
func (m Model) SelectedTask() (model.Task, bool) {
	item, ok := m.list.SelectedItem().(TaskItem)
	if !ok {
		return model.Task{}, false
	}
	return item.Task, true
}

// View renders the counts header, the filter selector and the rows.
func (m Model) View() string {
	header := lipgloss.JoinHorizontal(lipgloss.Top, m.renderCounts(), "   ", m.renderFilters())

	body := m.list.View()
	if len(m.list.Items()) == 0 {
		body = m.renderEmptyState()
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, "", body)
}

func (m Model) renderCounts() string {
	return fmt.Sprintf(
		"%s %s %s",
		lipgloss.NewStyle().Bold(true).Render(fmt.Sprintf("Total %d", m.counts.Total)),
		theme.StatusStyle(model.StatusCompleted).Render(fmt.Sprintf("Completed %d", m.counts.Completed)),
		theme.StatusStyle(model.StatusNotCompleted).Render(fmt.Sprintf("Incomplete %d", m.counts.Incomplete)),
	)
}

func (m Model) renderFilters() string {
	tabs := make([]string, len(filters))
	for i, f := range filters {
		tabs[i] = theme.FilterTabStyle(f == m.filter).Render(fmt.Sprintf("%d %s", i+1, f))
	}
	return strings.Join(tabs, "")
}

// renderEmptyState shows guidance text when no tasks are visible.
func (m Model) renderEmptyState() string {
	style := lipgloss.NewStyle().
		Width(m.width).
		Height(m.height-headerHeight).
		Align(lipgloss.Center, lipgloss.Center).
		Foreground(theme.ColorGray)

	if m.counts.Total > 0 {
		return style.Render(fmt.Sprintf("No %s tasks.\nPress 1 to show all.", strings.ToLower(m.filter.String())))
	}

	return style.Render("No tasks yet.\n\nPress n to add one.")
}

// SetSize updates the list dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width, height-headerHeight)
}
