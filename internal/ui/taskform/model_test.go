package taskform

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/taskboard/internal/editor"
	"github.com/nhle/taskboard/internal/model"
)

func TestStartEditPrefillsInputDates(t *testing.T) {
	m := New(80, 24)
	m.StartEdit(model.Task{
		ID:          "1",
		Name:        "A",
		Description: "a",
		Status:      model.StatusCompleted,
		AssignDate:  "2024-01-01T00:00:00.000Z",
		LastDate:    "2024-01-10T00:00:00.000Z",
	})

	assert.True(t, m.Editing())
	assert.Equal(t, "2024-01-01", m.fb.assignDate)
	assert.Equal(t, "2024-01-10", m.fb.lastDate)
	assert.Equal(t, string(model.StatusCompleted), m.fb.status)
}

func TestEditSubmitCarriesEveryField(t *testing.T) {
	m := New(80, 24)
	m.StartEdit(model.Task{ID: "7", Name: "A", Status: model.StatusNotCompleted})
	m.fb.name = "renamed"
	m.fb.lastDate = " 2024-03-01 "

	msg := m.handleSubmit()()
	sub, ok := msg.(EditSubmittedMsg)
	require.True(t, ok)
	assert.Equal(t, "7", sub.ID)
	assert.Contains(t, sub.Fields, FieldValue{Name: editor.FieldName, Value: "renamed"})
	assert.Contains(t, sub.Fields, FieldValue{Name: editor.FieldLastDate, Value: "2024-03-01"})
	assert.Len(t, sub.Fields, 5)
}

func TestCreateSubmitBuildsDraft(t *testing.T) {
	m := New(80, 24)
	m.StartCreate()
	m.fb.name = "C"
	m.fb.description = "c"
	m.fb.assignDate = "2024-02-01"

	msg := m.handleSubmit()()
	sub, ok := msg.(CreateSubmittedMsg)
	require.True(t, ok)
	assert.Equal(t, "C", sub.Draft.Name)
	assert.Equal(t, model.StatusNotCompleted, sub.Draft.Status)
	assert.Empty(t, sub.Draft.ID)
	assert.Empty(t, sub.Draft.LastDate)
}

func TestShowErrorKeepsValues(t *testing.T) {
	m := New(80, 24)
	m.StartCreate()
	m.fb.name = "kept"

	m.ShowError("Please fill in all fields.")
	assert.Equal(t, "Please fill in all fields.", m.Error())
	assert.Equal(t, "kept", m.fb.name)
	assert.Contains(t, m.View(), "Please fill in all fields.")

	m.StartCreate()
	assert.Empty(t, m.Error())
	assert.Empty(t, m.fb.name)
}

func TestEscCancels(t *testing.T) {
	m := New(80, 24)
	m.StartCreate()

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.Equal(t, FormCancelMsg{}, cmd())
}

func TestValidateOptionalDate(t *testing.T) {
	assert.NoError(t, validateOptionalDate(""))
	assert.NoError(t, validateOptionalDate("2024-01-31"))
	assert.Error(t, validateOptionalDate("31/01/2024"))
}
