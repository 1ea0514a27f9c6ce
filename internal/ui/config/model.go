// Package config is the settings screen: API endpoint, timeouts, refresh
// interval, theme, and the API token.
package config

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/taskboard/internal/model"
	"github.com/nhle/taskboard/internal/theme"
)

// ConfigMode represents the current state of the settings view.
type ConfigMode int

const (
	ModeForm           ConfigMode = iota // Editing settings
	ModeValidating                       // Testing connection
	ModeValidateResult                   // Connection test failed
)

// CheckFunc checks that the API answers at baseURL with token.
type CheckFunc func(ctx context.Context, baseURL, token string, timeout time.Duration) error

// SaveFunc persists cfg. A non-empty token replaces the stored one.
type SaveFunc func(cfg *model.AppConfig, token string) error

// ConfigDoneMsg signals the settings view closed without saving.
type ConfigDoneMsg struct{}

// ConfigSavedMsg signals the settings were persisted.
type ConfigSavedMsg struct {
	Config *model.AppConfig
}

// validateResultMsg carries the result of a connection test.
type validateResultMsg struct {
	err error
}

// savedInternalMsg is sent after the settings are persisted.
type savedInternalMsg struct {
	cfg *model.AppConfig
	err error
}

// Model is the Bubble Tea model for the settings screen.
type Model struct {
	mode    ConfigMode
	form    *huh.Form
	current *model.AppConfig
	check   CheckFunc
	save    SaveFunc

	// Form field values (huh binds to these)
	formBaseURL string
	formTimeout string
	formRefresh string
	formTheme   string
	formToken   string

	validError error
	spinner    spinner.Model
	statusMsg  string

	width, height int
}

// New creates a settings view. A nil check skips the connection test.
func New(check CheckFunc, save SaveFunc, width, height int) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return Model{
		mode:    ModeForm,
		check:   check,
		save:    save,
		spinner: sp,
		width:   width,
		height:  height,
	}
}

// Start opens the form prefilled from cfg.
func (m *Model) Start(cfg *model.AppConfig) tea.Cmd {
	if cfg == nil {
		cfg = model.DefaultAppConfig()
	}
	m.current = cfg
	m.formBaseURL = cfg.API.BaseURL
	m.formTimeout = strconv.Itoa(cfg.API.TimeoutSec)
	m.formRefresh = strconv.Itoa(cfg.Display.RefreshIntervalSec)
	m.formTheme = cfg.Display.Theme
	m.formToken = ""
	m.validError = nil
	m.statusMsg = ""
	return m.openForm()
}

func (m *Model) openForm() tea.Cmd {
	m.mode = ModeForm
	m.form = m.buildForm()
	return m.form.Init()
}

// Update handles messages and dispatches based on current mode.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case validateResultMsg:
		if m.mode != ModeValidating {
			return m, nil
		}
		if msg.err != nil {
			m.validError = msg.err
			m.mode = ModeValidateResult
			return m, nil
		}
		return m, m.persist()

	case savedInternalMsg:
		if msg.err != nil {
			m.statusMsg = fmt.Sprintf("Error saving settings: %v", msg.err)
			return m, m.openForm()
		}
		return m, func() tea.Msg { return ConfigSavedMsg{Config: msg.cfg} }

	case spinner.TickMsg:
		if m.mode == ModeValidating {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil

	case tea.KeyMsg:
		switch m.mode {
		case ModeValidating:
			// Only allow escape during validation
			if msg.String() == "esc" {
				return m, m.openForm()
			}
			return m, nil
		case ModeValidateResult:
			return m.handleValidateResultKeys(msg)
		}
		if msg.String() == "esc" {
			return m, func() tea.Msg { return ConfigDoneMsg{} }
		}
	}

	if m.mode != ModeForm {
		return m, nil
	}
	return m.updateForm(msg)
}

// handleValidateResultKeys processes key events on the failed-test screen.
func (m Model) handleValidateResultKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "s":
		return m, m.persist()
	case "r":
		return m, m.validate()
	case "enter", "esc":
		m.validError = nil
		return m, m.openForm()
	}
	return m, nil
}

func (m *Model) buildForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("API Base URL").
				Description("Root the /tasks resource hangs off").
				Placeholder("http://localhost:8080/api").
				Value(&m.formBaseURL).
				Validate(validateURL),
			huh.NewInput().
				Title("Request Timeout").
				Description("Seconds, 0 disables").
				Value(&m.formTimeout).
				Validate(validateSeconds),
			huh.NewInput().
				Title("Refresh Interval").
				Description("Seconds between automatic reloads, 0 disables").
				Value(&m.formRefresh).
				Validate(validateSeconds),
			huh.NewSelect[string]().
				Title("Theme").
				Options(
					huh.NewOption("Terminal default", "default"),
					huh.NewOption("Dark", "dark"),
					huh.NewOption("Light", "light"),
				).
				Value(&m.formTheme),
			huh.NewInput().
				Title("API Token").
				Description("Leave empty to keep the stored token").
				EchoMode(huh.EchoModePassword).
				Value(&m.formToken),
		),
	).WithWidth(m.formWidth()).WithShowHelp(false)
}

func (m Model) updateForm(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		return m, m.validate()
	}
	if m.form.State == huh.StateAborted {
		return m, func() tea.Msg { return ConfigDoneMsg{} }
	}

	return m, cmd
}

// Settings returns the configuration described by the form fields.
func (m Model) Settings() *model.AppConfig {
	cfg := *m.current
	cfg.API.BaseURL = strings.TrimRight(strings.TrimSpace(m.formBaseURL), "/")
	cfg.API.TimeoutSec, _ = strconv.Atoi(strings.TrimSpace(m.formTimeout))
	cfg.Display.RefreshIntervalSec, _ = strconv.Atoi(strings.TrimSpace(m.formRefresh))
	cfg.Display.Theme = m.formTheme
	return &cfg
}

// validate runs the connection test for the form values.
func (m *Model) validate() tea.Cmd {
	if m.check == nil {
		return m.persist()
	}
	m.mode = ModeValidating
	cfg := m.Settings()
	token := m.formToken
	check := m.check
	return tea.Batch(
		m.spinner.Tick,
		func() tea.Msg {
			return validateResultMsg{err: check(context.Background(), cfg.API.BaseURL, token, cfg.API.Timeout())}
		},
	)
}

// persist saves the form values.
func (m *Model) persist() tea.Cmd {
	cfg := m.Settings()
	token := m.formToken
	save := m.save
	return func() tea.Msg {
		if save == nil {
			return savedInternalMsg{cfg: cfg}
		}
		return savedInternalMsg{cfg: cfg, err: save(cfg, token)}
	}
}

// Mode returns the current settings mode.
func (m Model) Mode() ConfigMode { return m.mode }

// View renders the settings screen.
func (m Model) View() string {
	var b strings.Builder

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)
	b.WriteString(titleStyle.Render("Settings"))
	b.WriteString("\n\n")

	switch m.mode {
	case ModeValidating:
		b.WriteString(m.spinner.View())
		b.WriteString(" Testing connection to ")
		b.WriteString(m.formBaseURL)
		b.WriteString("...")
	case ModeValidateResult:
		b.WriteString(theme.ErrorTextStyle.Render("✗ Connection failed: " + m.validError.Error()))
		b.WriteString("\n\n")
		hintStyle := lipgloss.NewStyle().Foreground(theme.ColorGray)
		b.WriteString(hintStyle.Render("s save anyway | r retry | enter edit"))
	default:
		if m.form != nil {
			b.WriteString(m.form.View())
		}
	}

	if m.statusMsg != "" {
		b.WriteString("\n")
		statusStyle := lipgloss.NewStyle().
			Foreground(theme.ColorYellow).
			Italic(true)
		b.WriteString(statusStyle.Render(m.statusMsg))
	}

	return lipgloss.NewStyle().Padding(1, 2).Render(b.String())
}

// SetSize updates the settings view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	if m.form != nil {
		m.form = m.form.WithWidth(m.formWidth())
	}
}

func (m Model) formWidth() int {
	w := m.width - 8
	if w > 70 {
		w = 70
	}
	if w < 30 {
		w = 30
	}
	return w
}

func validateURL(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("URL is required")
	}
	parsed, err := url.Parse(s)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("URL must include scheme and host (e.g., https://example.com)")
	}
	return nil
}

func validateSeconds(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("must be a whole number of seconds")
	}
	if n < 0 {
		return fmt.Errorf("must not be negative")
	}
	return nil
}
