package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/nhle/taskboard/internal/server"
	"github.com/nhle/taskboard/internal/store"
)

func serveCmd(opts *rootOptions) *cobra.Command {
	var (
		addr   string
		dbPath string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run a local tasks API backed by SQLite",
		Long: `Run a development backend that speaks the tasks REST contract.

Examples:
  taskboard serve
  taskboard serve --addr :9090 --db ./tasks.db`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("addr") {
				addr = cfg.Server.Addr
			}
			if !cmd.Flags().Changed("db") {
				dbPath = cfg.Server.DBPath
			}

			if dir := filepath.Dir(dbPath); dir != "." {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					return fmt.Errorf("creating database directory: %w", err)
				}
			}

			st, err := store.NewSQLiteStore(dbPath)
			if err != nil {
				return err
			}
			defer st.Close()

			gin.SetMode(gin.ReleaseMode)
			logger := log.New(cmd.ErrOrStderr(), "taskboard-serve ", log.LstdFlags)
			srv := server.NewServer(st, logger)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			fmt.Fprintf(cmd.OutOrStdout(), "Serving tasks API at http://localhost%s/api/tasks (db %s)\n", addr, dbPath)
			return srv.Serve(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().StringVar(&dbPath, "db", "", "SQLite database path")

	return cmd
}
