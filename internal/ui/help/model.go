// Package help renders the help overlay: key bindings, palette commands
// and the legend for list markers.
package help

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/taskboard/internal/keys"
	"github.com/nhle/taskboard/internal/model"
	"github.com/nhle/taskboard/internal/theme"
)

// Command documents one palette command.
type Command struct {
	Name string
	Desc string
}

// Commands lists the palette commands shown below the key bindings.
var Commands = []Command{
	{"reload", "fetch the task list again"},
	{"new", "open the creation form"},
	{"settings", "edit API and display settings"},
	{"filter all|completed|incomplete", "change the status filter"},
	{"help", "show this screen"},
	{"quit", "exit"},
}

// Model is the help overlay view.
type Model struct {
	keys   *keys.KeyMap
	help   help.Model
	width  int
	height int
}

// New creates a new help view model.
func New(keys *keys.KeyMap, width, height int) Model {
	h := help.New()
	h.Width = width
	h.ShowAll = true
	return Model{
		keys:   keys,
		help:   h,
		width:  width,
		height: height,
	}
}

// Update handles messages for the help view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	return m, nil
}

// View renders the help overlay.
func (m Model) View() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)
	sectionStyle := titleStyle.MarginTop(1)

	content := lipgloss.JoinVertical(
		lipgloss.Left,
		titleStyle.Render("Keyboard Shortcuts"),
		m.help.View(m.keys),
		sectionStyle.Render("Commands"),
		renderCommands(),
		sectionStyle.Render("Legend"),
		renderLegend(),
	)

	return theme.PanelStyle.
		Width(max(m.width-4, 0)).
		Height(max(m.height-4, 0)).
		Render(content)
}

func renderCommands() string {
	width := 0
	for _, c := range Commands {
		width = max(width, len(c.Name)+1)
	}
	lines := make([]string, 0, len(Commands))
	for _, c := range Commands {
		lines = append(lines, fmt.Sprintf("%s  %s",
			theme.HelpStyle.Render(fmt.Sprintf("%-*s", width, ":"+c.Name)),
			theme.DimmedStyle.Render(c.Desc),
		))
	}
	return strings.Join(lines, "\n")
}

func renderLegend() string {
	return strings.Join([]string{
		"○ " + theme.StatusStyle(model.StatusNotCompleted).Render(string(model.StatusNotCompleted)) +
			"  ✓ " + theme.StatusStyle(model.StatusCompleted).Render(string(model.StatusCompleted)),
		theme.RemainingStyle(10).Render("days left") + "  " +
			theme.RemainingStyle(2).Render("due within 3 days") + "  " +
			theme.RemainingStyle(-1).Render("overdue"),
	}, "\n")
}

// SetSize updates the help view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.help.Width = max(width-4, 0)
}
