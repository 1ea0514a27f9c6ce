// Package command is the ":" palette: a single-line input with tab
// completion and a recall history.
package command

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/taskboard/internal/theme"
)

// CommandMsg is emitted when the user executes a command.
type CommandMsg string

// suggestions are offered for tab completion.
var suggestions = []string{
	"reload",
	"new",
	"settings",
	"filter all",
	"filter completed",
	"filter incomplete",
	"help",
	"quit",
}

const maxHistory = 20

// Model is the command palette view.
type Model struct {
	input   textinput.Model
	history []string // oldest first
	recall  int      // index into history while browsing, len(history) otherwise
	width   int
	height  int
}

// New creates a new command palette model.
func New(width, height int) Model {
	ti := textinput.New()
	ti.Placeholder = "type a command, tab completes"
	ti.Prompt = ": "
	ti.ShowSuggestions = true
	ti.SetSuggestions(suggestions)
	ti.Width = max(width-6, 10)

	return Model{
		input:  ti,
		width:  width,
		height: height,
	}
}

// Update handles messages for the command palette.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.Type {
		case tea.KeyEnter:
			line := strings.TrimSpace(m.input.Value())
			m.input.Reset()
			if line == "" {
				return m, nil
			}
			m.remember(line)
			return m, func() tea.Msg {
				return CommandMsg(line)
			}

		case tea.KeyUp:
			if m.recall > 0 {
				m.recall--
				m.input.SetValue(m.history[m.recall])
				m.input.CursorEnd()
			}
			return m, nil

		case tea.KeyDown:
			if m.recall < len(m.history)-1 {
				m.recall++
				m.input.SetValue(m.history[m.recall])
				m.input.CursorEnd()
			} else {
				m.recall = len(m.history)
				m.input.Reset()
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// remember appends line to the history, dropping an identical previous
// entry and the oldest entries past maxHistory.
func (m *Model) remember(line string) {
	if n := len(m.history); n > 0 && m.history[n-1] == line {
		m.recall = n
		return
	}
	m.history = append(m.history, line)
	if len(m.history) > maxHistory {
		m.history = m.history[len(m.history)-maxHistory:]
	}
	m.recall = len(m.history)
}

// History returns the executed commands, oldest first.
func (m Model) History() []string {
	return append([]string(nil), m.history...)
}

// View renders the command palette.
func (m Model) View() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	content := lipgloss.JoinVertical(
		lipgloss.Left,
		titleStyle.Render("Command Palette"),
		m.input.View(),
		theme.HelpStyle.Render("↑/↓ history"),
	)

	return theme.PanelStyle.
		Width(max(m.width-4, 0)).
		Render(content)
}

// SetSize updates the command palette dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.input.Width = max(width-6, 10)
}

// Focus gives keyboard focus to the text input.
func (m *Model) Focus() tea.Cmd {
	return m.input.Focus()
}

// Reset clears the input and restarts history browsing.
func (m *Model) Reset() {
	m.input.Reset()
	m.recall = len(m.history)
}
