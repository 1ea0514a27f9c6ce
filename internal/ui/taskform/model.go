package taskform

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/taskboard/internal/editor"
	"github.com/nhle/taskboard/internal/model"
	"github.com/nhle/taskboard/internal/theme"
)

// CreateSubmittedMsg is dispatched when the creation form is submitted.
type CreateSubmittedMsg struct {
	Draft model.Task
}

// EditSubmittedMsg is dispatched when the edit form is submitted. Fields
// carries every form value keyed by editor field name.
type EditSubmittedMsg struct {
	ID     string
	Fields []FieldValue
}

// FieldValue is one submitted edit field.
type FieldValue struct {
	Name  string
	Value string
}

// FormCancelMsg is dispatched when the user leaves the form.
type FormCancelMsg struct{}

// formBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	name        string
	description string
	status      string
	assignDate  string
	lastDate    string
}

// Model is the Bubble Tea model for the task create/edit form.
type Model struct {
	form     *huh.Form
	fb       *formBindings
	editMode bool
	editID   string
	errText  string
	width    int
	height   int
}

// New creates a new task form model.
func New(width, height int) Model {
	return Model{
		fb:     &formBindings{status: string(model.StatusNotCompleted)},
		width:  width,
		height: height,
	}
}

// StartCreate initializes an empty creation form.
func (m *Model) StartCreate() tea.Cmd {
	m.editMode = false
	m.editID = ""
	m.errText = ""
	*m.fb = formBindings{status: string(model.StatusNotCompleted)}
	m.form = m.buildCreateForm()
	return m.form.Init()
}

// StartEdit initializes the edit form from the editor's scratch copy.
// Dates are shown as YYYY-MM-DD.
func (m *Model) StartEdit(t model.Task) tea.Cmd {
	m.editMode = true
	m.editID = t.ID
	m.errText = ""
	*m.fb = formBindings{
		name:        t.Name,
		description: t.Description,
		status:      string(t.Status),
		assignDate:  model.DateInputValue(t.AssignDate),
		lastDate:    model.DateInputValue(t.LastDate),
	}
	if !t.Status.Valid() {
		m.fb.status = string(model.StatusNotCompleted)
	}
	m.form = m.buildEditForm()
	return m.form.Init()
}

// ShowError reopens the form with the submitted values and an inline
// error message.
func (m *Model) ShowError(text string) tea.Cmd {
	m.errText = text
	if m.editMode {
		m.form = m.buildEditForm()
	} else {
		m.form = m.buildCreateForm()
	}
	return m.form.Init()
}

// Editing reports whether the form edits an existing task.
func (m Model) Editing() bool { return m.editMode }

// Error returns the inline error text, if any.
func (m Model) Error() string { return m.errText }

// Update handles messages for the task form.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		return m, nil
	}

	if k, ok := msg.(tea.KeyMsg); ok && k.String() == "esc" {
		return m, func() tea.Msg { return FormCancelMsg{} }
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		return m, m.handleSubmit()
	}
	if m.form.State == huh.StateAborted {
		return m, func() tea.Msg { return FormCancelMsg{} }
	}

	return m, cmd
}

// View renders the task form.
func (m Model) View() string {
	if m.form == nil {
		return ""
	}

	titleText := "New Task"
	if m.editMode {
		titleText = "Edit Task"
	}

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	content := titleStyle.Render(titleText) + "\n"
	if m.errText != "" {
		content += theme.ErrorTextStyle.Render(m.errText) + "\n\n"
	}
	content += m.form.View()

	return lipgloss.NewStyle().
		Padding(1, 2).
		Render(content)
}

// SetSize updates the form dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *Model) buildCreateForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(m.coreFields()...),
	).WithWidth(m.formWidth()).WithHeight(m.formHeight()).WithShowHelp(true)
}

func (m *Model) buildEditForm() *huh.Form {
	fields := m.coreFields()
	fields = append(fields,
		huh.NewSelect[string]().
			Title("Status").
			Options(
				huh.NewOption("Not Completed", string(model.StatusNotCompleted)),
				huh.NewOption("Completed", string(model.StatusCompleted)),
			).
			Value(&m.fb.status),
	)

	return huh.NewForm(
		huh.NewGroup(fields...),
	).WithWidth(m.formWidth()).WithHeight(m.formHeight()).WithShowHelp(true)
}

// coreFields leaves emptiness checks to the submit handler so a blank
// form yields a single "Please fill in all fields." message.
func (m *Model) coreFields() []huh.Field {
	return []huh.Field{
		huh.NewInput().
			Title("Name").
			Placeholder("What needs to be done?").
			Value(&m.fb.name),
		huh.NewText().
			Title("Description").
			Placeholder("Details...").
			Value(&m.fb.description),
		huh.NewInput().
			Title("Assign Date").
			Placeholder("YYYY-MM-DD").
			Value(&m.fb.assignDate).
			Validate(validateOptionalDate),
		huh.NewInput().
			Title("Last Date").
			Placeholder("YYYY-MM-DD").
			Value(&m.fb.lastDate).
			Validate(validateOptionalDate),
	}
}

func (m Model) handleSubmit() tea.Cmd {
	fb := *m.fb
	if m.editMode {
		id := m.editID
		fields := []FieldValue{
			{Name: editor.FieldName, Value: fb.name},
			{Name: editor.FieldDescription, Value: fb.description},
			{Name: editor.FieldStatus, Value: fb.status},
			{Name: editor.FieldAssignDate, Value: strings.TrimSpace(fb.assignDate)},
			{Name: editor.FieldLastDate, Value: strings.TrimSpace(fb.lastDate)},
		}
		return func() tea.Msg { return EditSubmittedMsg{ID: id, Fields: fields} }
	}

	draft := model.NewDraft()
	draft.Name = fb.name
	draft.Description = fb.description
	draft.AssignDate = strings.TrimSpace(fb.assignDate)
	draft.LastDate = strings.TrimSpace(fb.lastDate)
	return func() tea.Msg { return CreateSubmittedMsg{Draft: draft} }
}

func (m Model) formWidth() int {
	w := m.width - 4
	if w < 40 {
		w = 40
	}
	if w > 100 {
		w = 100
	}
	return w
}

func (m Model) formHeight() int {
	h := m.height - 6
	if h < 10 {
		h = 10
	}
	return h
}

func validateOptionalDate(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if !model.ValidInputDate(s) {
		return fmt.Errorf("invalid date format, use YYYY-MM-DD")
	}
	return nil
}
