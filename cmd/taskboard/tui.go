package main

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/taskboard/internal/api"
	"github.com/nhle/taskboard/internal/app"
	"github.com/nhle/taskboard/internal/credential"
	"github.com/nhle/taskboard/internal/model"
	"github.com/nhle/taskboard/internal/theme"
)

// runTUI starts the interactive task list.
func runTUI(opts *rootOptions) error {
	s, err := opts.openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	theme.Apply(s.cfg.Display.Theme)

	p := tea.NewProgram(
		app.New(s.svc, app.Options{
			Config: s.cfg,
			Check:  checkAPI,
			Save:   opts.saveSettings,
		}),
		tea.WithAltScreen(),
	)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running UI: %w", err)
	}
	return nil
}

// checkAPI lists tasks once to check an endpoint and token.
func checkAPI(ctx context.Context, baseURL, token string, timeout time.Duration) error {
	if token == "" {
		token, _ = credential.Token()
	}
	client := api.NewClient(baseURL, api.WithToken(token), api.WithTimeout(timeout))
	_, err := client.ListTasks(ctx)
	return err
}

// saveSettings writes cfg to the config file and stores a new token.
// Endpoint changes apply from the next start.
func (o *rootOptions) saveSettings(cfg *model.AppConfig, token string) error {
	if err := model.SaveConfig(o.path(), cfg); err != nil {
		return err
	}
	if token == "" {
		return nil
	}
	return credential.SetToken(token)
}
