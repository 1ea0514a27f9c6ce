package app

import (
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/taskboard/internal/model"
	appsync "github.com/nhle/taskboard/internal/sync"
	"github.com/nhle/taskboard/internal/tasks"
	"github.com/nhle/taskboard/internal/ui"
	"github.com/nhle/taskboard/internal/theme"
	"github.com/nhle/taskboard/internal/ui/command"
	configview "github.com/nhle/taskboard/internal/ui/config"
	"github.com/nhle/taskboard/internal/ui/detail"
	helpview "github.com/nhle/taskboard/internal/ui/help"
	"github.com/nhle/taskboard/internal/ui/taskform"
	"github.com/nhle/taskboard/internal/ui/tasklist"
)

// ViewState represents the current active view in the application.
type ViewState int

const (
	ViewList ViewState = iota
	ViewHelp
	ViewCommand
	ViewCreate
	ViewEdit
	ViewDetail
	ViewSettings
)

// Model is the root Bubble Tea model that manages view routing, layout,
// and the task service. Remote calls run inside commands; their results
// are applied to the service here, on the event loop.
type Model struct {
	currentView  ViewState
	previousView ViewState
	layout       ui.Layout
	svc          *tasks.Service
	keys         *KeyMap
	taskList     tasklist.Model
	detailView   detail.Model
	helpView     helpview.Model
	commandView  command.Model
	formView     taskform.Model
	settingsView configview.Model
	config       *model.AppConfig
	poller       *appsync.Poller
	ready        bool
	errorMessage string
}

// Options configures the root model.
type Options struct {
	// Config is the loaded configuration shown on the settings screen.
	Config *model.AppConfig
	// Check tests a connection from the settings screen. Nil skips it.
	Check configview.CheckFunc
	// Save persists settings. Nil keeps them for this session only.
	Save configview.SaveFunc
}

// New creates a new root application model. A positive refresh interval in
// the config reloads the list periodically.
func New(svc *tasks.Service, opts Options) Model {
	keys := DefaultKeyMap()
	cfg := opts.Config
	if cfg == nil {
		cfg = model.DefaultAppConfig()
	}

	return Model{
		currentView:  ViewList,
		svc:          svc,
		keys:         keys,
		taskList:     tasklist.New(svc, keys, 80, 24),
		detailView:   detail.New(keys, 80, 24),
		helpView:     helpview.New(keys, 80, 24),
		commandView:  command.New(80, 24),
		formView:     taskform.New(80, 24),
		settingsView: configview.New(opts.Check, opts.Save, 80, 24),
		config:       cfg,
		poller:       appsync.New(cfg.Display.RefreshInterval()),
	}
}

// Init loads the task list and starts the refresh ticker.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.reload(),
		m.poller.Start(),
	)
}

// Update handles messages and dispatches to the active view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height)
		m.ready = true
		contentWidth := m.layout.ContentWidth()
		contentHeight := m.layout.ContentHeight()
		m.taskList.SetSize(contentWidth, contentHeight)
		m.detailView.SetSize(contentWidth, contentHeight)
		m.helpView.SetSize(contentWidth, contentHeight)
		m.commandView.SetSize(contentWidth, contentHeight)
		m.formView.SetSize(contentWidth, contentHeight)
		m.settingsView.SetSize(contentWidth, contentHeight)
		// Forward to active view so huh forms can calculate their layout.
		return m.updateActiveView(msg)

	case tasksLoadedMsg:
		m.poller.Finish(msg.err, msg.at)
		if msg.err != nil {
			m.setError(m.svc.LogFailure("fetching tasks", msg.err))
			return m, nil
		}
		m.errorMessage = ""
		m.svc.ApplyLoaded(msg.tasks)
		return m, m.refresh()

	case taskCreatedMsg:
		if msg.err != nil {
			err := m.svc.LogFailure("adding task", msg.err)
			m.setError(err)
			return m, m.formView.ShowError(err.Error())
		}
		m.errorMessage = ""
		m.svc.ApplyCreated(msg.task)
		m.currentView = m.previousView
		return m, m.refresh()

	case taskSavedMsg:
		if msg.err != nil {
			err := m.svc.LogFailure("updating task", msg.err)
			m.setError(err)
			if m.currentView == ViewEdit {
				return m, m.formView.ShowError(err.Error())
			}
			return m, nil
		}
		m.errorMessage = ""
		m.svc.Editor().Commit(msg.id, msg.scratch, msg.result)
		if m.currentView == ViewEdit && !m.svc.Editor().Active() {
			m.currentView = m.previousView
		}
		return m, m.refresh()

	case taskToggledMsg:
		if msg.err != nil {
			m.setError(m.svc.LogFailure("updating task", msg.err))
			return m, nil
		}
		m.errorMessage = ""
		m.svc.ApplyUpdated(msg.id, msg.sent, msg.result)
		return m, m.refresh()

	case taskDeletedMsg:
		if msg.err != nil {
			m.setError(m.svc.LogFailure("deleting task", msg.err))
			return m, nil
		}
		m.errorMessage = ""
		m.svc.ApplyDeleted(msg.id)
		if m.currentView == ViewEdit && !m.svc.Editor().Active() {
			m.currentView = ViewList
		}
		return m, m.refresh()

	case taskform.CreateSubmittedMsg:
		draft := msg.Draft
		if err := tasks.PrepareDraft(&draft); err != nil {
			return m, m.formView.ShowError(err.Error())
		}
		return m, m.createTask(draft)

	case taskform.EditSubmittedMsg:
		for _, f := range msg.Fields {
			if err := m.svc.ChangeField(f.Name, f.Value); err != nil {
				return m, m.formView.ShowError(err.Error())
			}
		}
		id, scratch, err := m.svc.Editor().Request()
		if err != nil {
			return m, m.formView.ShowError(err.Error())
		}
		return m, m.saveTask(id, scratch)

	case taskform.FormCancelMsg:
		if m.currentView == ViewEdit {
			m.svc.CancelEdit()
		}
		m.currentView = m.previousView
		return m, nil

	case configview.ConfigDoneMsg:
		m.currentView = m.previousView
		return m, nil

	case configview.ConfigSavedMsg:
		m.config = msg.Config
		theme.Apply(msg.Config.Display.Theme)
		m.currentView = m.previousView
		if m.poller.Interval() == msg.Config.Display.RefreshInterval() {
			return m, nil
		}
		return m, m.poller.SetInterval(msg.Config.Display.RefreshInterval())

	case detail.BackMsg:
		m.currentView = ViewList
		return m, nil

	case detail.ActionMsg:
		switch msg.Action {
		case detail.ActionEdit:
			return m, m.openEdit(msg.TaskID)
		case detail.ActionToggle:
			return m, m.toggleTask(msg.TaskID)
		case detail.ActionDelete:
			return m, m.deleteTask(msg.TaskID)
		}
		return m, nil

	case tasklist.FilterChangedMsg:
		return m, nil

	case command.CommandMsg:
		m.currentView = m.previousView
		return m, m.executeCommand(string(msg))

	case appsync.TickMsg:
		live, next := m.poller.Next(msg)
		if !live {
			return m, nil
		}
		// Never reload under an open form.
		if m.svc.Editor().Active() || m.currentView == ViewCreate || m.currentView == ViewEdit || m.currentView == ViewSettings {
			return m, next
		}
		return m, tea.Batch(next, m.reload())

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.poller.Stop()
			return m, tea.Quit
		}

		// Forms and the palette own every other key.
		if m.currentView == ViewCreate || m.currentView == ViewEdit || m.currentView == ViewSettings {
			break
		}

		switch {
		case key.Matches(msg, m.keys.Back):
			if m.currentView == ViewHelp || m.currentView == ViewCommand {
				m.currentView = m.previousView
				return m, nil
			}
			if m.currentView == ViewList {
				m.errorMessage = ""
				return m, nil
			}

		case key.Matches(msg, m.keys.Command):
			if m.currentView == ViewCommand {
				break
			}
			m.previousView = m.currentView
			m.currentView = ViewCommand
			m.commandView.Reset()
			return m, m.commandView.Focus()
		}

		if m.currentView == ViewCommand {
			break
		}

		switch {
		case key.Matches(msg, m.keys.Help):
			if m.currentView == ViewHelp {
				m.currentView = m.previousView
				return m, nil
			}
			m.previousView = m.currentView
			m.currentView = ViewHelp
			return m, nil

		case key.Matches(msg, m.keys.Quit):
			if m.currentView == ViewList {
				m.poller.Stop()
				return m, tea.Quit
			}
		}

		if m.currentView == ViewList {
			if cmd, handled := m.handleListKey(msg); handled {
				return m, cmd
			}
		}
	}

	// Delegate to active sub-view
	return m.updateActiveView(msg)
}

// handleListKey runs the task actions bound in the list view.
func (m *Model) handleListKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	switch {
	case key.Matches(msg, m.keys.Refresh):
		return m.reload(), true

	case key.Matches(msg, m.keys.New):
		return m.openCreate(), true

	case key.Matches(msg, m.keys.Settings):
		return m.openSettings(), true

	case key.Matches(msg, m.keys.Open):
		t, ok := m.taskList.SelectedTask()
		if !ok {
			return nil, true
		}
		m.detailView.SetTask(t)
		m.currentView = ViewDetail
		return nil, true

	case key.Matches(msg, m.keys.Edit):
		t, ok := m.taskList.SelectedTask()
		if !ok {
			return nil, true
		}
		return m.openEdit(t.ID), true

	case key.Matches(msg, m.keys.Toggle):
		t, ok := m.taskList.SelectedTask()
		if !ok {
			return nil, true
		}
		return m.toggleTask(t.ID), true

	case key.Matches(msg, m.keys.Delete):
		t, ok := m.taskList.SelectedTask()
		if !ok {
			return nil, true
		}
		return m.deleteTask(t.ID), true
	}
	return nil, false
}

// refresh re-reads the store into the list and the open detail view. A
// detail view whose task is gone falls back to the list.
func (m *Model) refresh() tea.Cmd {
	if m.currentView == ViewDetail || m.previousView == ViewDetail {
		if t, ok := m.svc.Store().Find(m.detailView.TaskID()); ok {
			m.detailView.SetTask(t)
		} else if m.currentView == ViewDetail {
			m.currentView = ViewList
		} else {
			m.previousView = ViewList
		}
	}
	return m.taskList.Refresh()
}

func (m *Model) openCreate() tea.Cmd {
	m.previousView = m.currentView
	m.currentView = ViewCreate
	return m.formView.StartCreate()
}

func (m *Model) openSettings() tea.Cmd {
	m.previousView = m.currentView
	m.currentView = ViewSettings
	return m.settingsView.Start(m.config)
}

func (m *Model) openEdit(id string) tea.Cmd {
	if err := m.svc.BeginEdit(id); err != nil {
		m.setError(err)
		return nil
	}
	scratch, _ := m.svc.Editor().Scratch()
	m.previousView = m.currentView
	m.currentView = ViewEdit
	return m.formView.StartEdit(scratch)
}

// setError shows err in the status bar until the next successful call.
func (m *Model) setError(err error) {
	if err == nil {
		return
	}
	var verr *model.ValidationError
	if errors.As(err, &verr) {
		m.errorMessage = verr.Error()
		return
	}
	m.errorMessage = "Error: " + err.Error()
}

// updateActiveView dispatches the message to the currently active view.
func (m Model) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.currentView {
	case ViewList:
		m.taskList, cmd = m.taskList.Update(msg)
	case ViewDetail:
		m.detailView, cmd = m.detailView.Update(msg)
	case ViewHelp:
		m.helpView, cmd = m.helpView.Update(msg)
	case ViewCommand:
		m.commandView, cmd = m.commandView.Update(msg)
	case ViewCreate, ViewEdit:
		m.formView, cmd = m.formView.Update(msg)
	case ViewSettings:
		m.settingsView, cmd = m.settingsView.Update(msg)
	}

	return m, cmd
}

// View renders the full terminal UI using the layout manager.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	header := m.layout.RenderHeader("Taskboard", m.poller.Summary(time.Now()))
	content := m.renderContent()

	statusBar := m.layout.RenderStatusBar(m.keyHints())
	if m.errorMessage != "" {
		statusBar = m.layout.RenderErrorBar(m.errorMessage)
	}

	return m.layout.RenderWithFrame(header, content, statusBar)
}

// renderContent returns the rendered string for the current active view.
func (m Model) renderContent() string {
	switch m.currentView {
	case ViewList:
		return m.taskList.View()
	case ViewDetail:
		return m.detailView.View()
	case ViewHelp:
		return m.helpView.View()
	case ViewCommand:
		return m.commandView.View()
	case ViewCreate, ViewEdit:
		return m.formView.View()
	case ViewSettings:
		return m.settingsView.View()
	default:
		return ""
	}
}

// keyHints returns keyboard shortcut hints for the status bar.
func (m Model) keyHints() string {
	switch m.currentView {
	case ViewHelp:
		return "? close help | esc back"
	case ViewCommand:
		return "enter execute | tab complete | esc back"
	case ViewCreate, ViewEdit:
		return "enter next/submit | esc cancel"
	case ViewSettings:
		return "enter next/save | esc close"
	case ViewDetail:
		return "e edit | x toggle | d delete | esc back"
	default:
		return "q quit | ? help | enter open | n new | e edit | x toggle | d delete | f filter: " +
			m.taskList.Filter().String()
	}
}

// executeCommand handles a command string from the command palette.
func (m *Model) executeCommand(cmd string) tea.Cmd {
	cmd = strings.ToLower(strings.TrimSpace(cmd))

	if rest, ok := strings.CutPrefix(cmd, "filter"); ok {
		f, err := model.ParseFilter(strings.TrimSpace(rest))
		if err != nil {
			m.setError(err)
			return nil
		}
		m.currentView = ViewList
		return m.taskList.SetFilter(f)
	}

	switch cmd {
	case "reload", "refresh":
		return m.reload()
	case "quit", "q":
		m.poller.Stop()
		return tea.Quit
	case "new", "add":
		return m.openCreate()
	case "settings", "config":
		return m.openSettings()
	case "help":
		m.previousView = ViewList
		m.currentView = ViewHelp
		return nil
	case "all", "completed", "incomplete":
		f, _ := model.ParseFilter(cmd)
		m.currentView = ViewList
		return m.taskList.SetFilter(f)
	default:
		m.errorMessage = "Unknown command: " + cmd
		return nil
	}
}
