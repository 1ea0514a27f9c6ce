package config

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/taskboard/internal/model"
)

func started(t *testing.T, check CheckFunc, save SaveFunc) Model {
	t.Helper()
	m := New(check, save, 100, 30)
	cfg := model.DefaultAppConfig()
	cfg.API.BaseURL = "http://old.example/api"
	m.Start(cfg)
	return m
}

func TestStartPrefills(t *testing.T) {
	m := started(t, nil, nil)
	assert.Equal(t, ModeForm, m.Mode())

	got := m.Settings()
	assert.Equal(t, "http://old.example/api", got.API.BaseURL)
	assert.Equal(t, 30, got.API.TimeoutSec)
	assert.Equal(t, "default", got.Display.Theme)
}

func TestSettingsParsesFields(t *testing.T) {
	m := started(t, nil, nil)
	m.formBaseURL = " http://new.example/api/ "
	m.formTimeout = "5"
	m.formRefresh = "60"
	m.formTheme = "dark"

	got := m.Settings()
	assert.Equal(t, "http://new.example/api", got.API.BaseURL)
	assert.Equal(t, 5*time.Second, got.API.Timeout())
	assert.Equal(t, time.Minute, got.Display.RefreshInterval())
	assert.Equal(t, "dark", got.Display.Theme)
	assert.Equal(t, "http://old.example/api", m.current.API.BaseURL, "current config is not mutated")
}

// findMsg runs cmd, descending into batches, and returns the first T.
func findMsg[T tea.Msg](cmd tea.Cmd) (T, bool) {
	var zero T
	if cmd == nil {
		return zero, false
	}
	switch msg := cmd().(type) {
	case T:
		return msg, true
	case tea.BatchMsg:
		for _, c := range msg {
			if got, ok := findMsg[T](c); ok {
				return got, true
			}
		}
	}
	return zero, false
}

func TestValidateThenSave(t *testing.T) {
	var savedToken string
	var checked string
	check := func(_ context.Context, baseURL, token string, _ time.Duration) error {
		checked = baseURL + "|" + token
		return nil
	}
	save := func(_ *model.AppConfig, token string) error {
		savedToken = token
		return nil
	}
	m := started(t, check, save)
	m.formToken = "secret"

	cmd := m.validate()
	require.Equal(t, ModeValidating, m.mode)
	require.NotNil(t, cmd)

	result, ok := findMsg[validateResultMsg](cmd)
	require.True(t, ok, "validate runs the connection check")
	require.NoError(t, result.err)

	m, cmd = m.Update(result)
	require.NotNil(t, cmd)
	m, cmd = m.Update(cmd())
	require.NotNil(t, cmd)

	msg, ok := cmd().(ConfigSavedMsg)
	require.True(t, ok)
	assert.Equal(t, "http://old.example/api", msg.Config.API.BaseURL)
	assert.Equal(t, "http://old.example/api|secret", checked)
	assert.Equal(t, "secret", savedToken)
}

func TestFailedCheckOffersRetryAndSaveAnyway(t *testing.T) {
	m := started(t, func(context.Context, string, string, time.Duration) error {
		return errors.New("connection refused")
	}, nil)

	m.validate()
	m, _ = m.Update(validateResultMsg{err: errors.New("connection refused")})
	require.Equal(t, ModeValidateResult, m.Mode())
	assert.Contains(t, m.View(), "connection refused")

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("s")})
	require.NotNil(t, cmd)
	_, cmd = m.Update(cmd())
	require.NotNil(t, cmd)
	assert.IsType(t, ConfigSavedMsg{}, cmd())
}

func TestSaveErrorReopensForm(t *testing.T) {
	m := started(t, nil, nil)
	m, _ = m.Update(savedInternalMsg{err: errors.New("read-only file system")})
	assert.Equal(t, ModeForm, m.Mode())
	assert.Contains(t, m.View(), "read-only file system")
}

func TestEscCloses(t *testing.T) {
	m := started(t, nil, nil)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.Equal(t, ConfigDoneMsg{}, cmd())
}

func TestValidators(t *testing.T) {
	assert.NoError(t, validateURL("https://example.com/api"))
	assert.Error(t, validateURL("example.com"))
	assert.Error(t, validateURL(""))

	assert.NoError(t, validateSeconds("0"))
	assert.Error(t, validateSeconds("-1"))
	assert.Error(t, validateSeconds("soon"))
}
