package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/nhle/taskboard/internal/api"
	"github.com/nhle/taskboard/internal/credential"
	"github.com/nhle/taskboard/internal/model"
	"github.com/nhle/taskboard/internal/tasks"
)

var Version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// rootOptions carries the persistent flags shared by every subcommand.
type rootOptions struct {
	configPath string
	apiURL     string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:           "taskboard",
		Short:         "Taskboard - manage tasks on a remote tasks API",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(opts)
		},
	}

	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default ~/.config/taskboard/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&opts.apiURL, "api-url", "", "tasks API base URL, overrides the config file")

	// Add subcommands
	rootCmd.AddCommand(listCmd(opts))
	rootCmd.AddCommand(addCmd(opts))
	rootCmd.AddCommand(editCmd(opts))
	rootCmd.AddCommand(doneCmd(opts))
	rootCmd.AddCommand(toggleCmd(opts))
	rootCmd.AddCommand(deleteCmd(opts))
	rootCmd.AddCommand(serveCmd(opts))
	rootCmd.AddCommand(tokenCmd())
	rootCmd.AddCommand(configCmd(opts))

	return rootCmd
}

// loadConfig reads the config file and applies flag overrides.
func (o *rootOptions) loadConfig() (*model.AppConfig, error) {
	cfg, err := model.LoadConfig(o.path())
	if err != nil {
		return nil, err
	}
	if o.apiURL != "" {
		cfg.API.BaseURL = strings.TrimRight(o.apiURL, "/")
	}
	return cfg, nil
}

// session bundles what a command needs to talk to the API.
type session struct {
	cfg     *model.AppConfig
	svc     *tasks.Service
	logFile io.Closer
}

func (s *session) Close() {
	if s.logFile != nil {
		s.logFile.Close()
	}
}

// openSession loads config, routes the standard logger to the log file
// and builds the task service.
func (o *rootOptions) openSession() (*session, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, err
	}

	s := &session{cfg: cfg}
	if f, err := openLogFile(cfg.Log.File); err == nil {
		s.logFile = f
	} else {
		log.SetOutput(io.Discard)
	}

	token, err := credential.Token()
	if err != nil {
		log.Printf("reading API token: %v", err)
	}

	client := api.NewClient(
		cfg.API.BaseURL,
		api.WithToken(token),
		api.WithTimeout(cfg.API.Timeout()),
	)
	s.svc = tasks.NewService(client, log.Default())
	return s, nil
}

// openLogFile sends the standard logger to path, creating its directory.
func openLogFile(path string) (*os.File, error) {
	if path == "" {
		return nil, fmt.Errorf("no log file configured")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating log directory: %w", err)
	}
	return tea.LogToFile(path, "taskboard")
}
