package command

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func typeLine(t *testing.T, m Model, line string) (Model, tea.Cmd) {
	t.Helper()
	m.input.SetValue(line)
	return m.Update(tea.KeyMsg{Type: tea.KeyEnter})
}

func TestEnterEmitsCommand(t *testing.T) {
	m := New(80, 24)
	m.Focus()

	m, cmd := typeLine(t, m, "  filter completed ")
	require.NotNil(t, cmd)
	assert.Equal(t, CommandMsg("filter completed"), cmd())
	assert.Empty(t, m.input.Value())

	_, cmd = typeLine(t, m, "   ")
	assert.Nil(t, cmd)
}

func TestHistoryRecall(t *testing.T) {
	m := New(80, 24)
	m.Focus()
	m, _ = typeLine(t, m, "reload")
	m, _ = typeLine(t, m, "new")
	m, _ = typeLine(t, m, "new")
	assert.Equal(t, []string{"reload", "new"}, m.History())

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, "new", m.input.Value())
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, "reload", m.input.Value())
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, "reload", m.input.Value(), "stops at the oldest entry")

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, "new", m.input.Value())
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Empty(t, m.input.Value())
}

func TestHistoryIsBounded(t *testing.T) {
	m := New(80, 24)
	for i := 0; i < maxHistory+5; i++ {
		m.remember(string(rune('a' + i)))
	}
	h := m.History()
	assert.Len(t, h, maxHistory)
	assert.Equal(t, string(rune('a'+5)), h[0])
}
