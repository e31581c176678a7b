package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"golang.org/x/sys/unix"

	"github.com/storynest/storysync/internal/daemon"
	"github.com/storynest/storysync/internal/dashboard"
)

var dashboardPort int

var dashboardCmd = &cobra.Command{
	Use:     "dashboard",
	GroupID: "advanced",
	Short:   "Start the real-time sync dashboard",
	Long: `Start a WebSocket dashboard server plus an embedded sync daemon, so
connected clients can watch syncs happen live.

WebSocket messages include:
- sync_started: a cloud sync began
- sync_complete: a cloud sync finished, with its outcome
- migration_complete: a local-to-cloud migration finished
- stats: cached record counts and sync state

Example usage:
  storysync dashboard              # Start on the configured port
  storysync dashboard --port 9000  # Start on a custom port

Connect with a WebSocket client:
  ws://localhost:8787/ws`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		port := dashboardPort
		if port == 0 {
			port = cfg.Dashboard.Port
		}

		store, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer store.Close()

		engine, _ := buildEngines(cfg, store)
		logger := log.New(os.Stderr, "[dashboard] ", log.LstdFlags)

		server := dashboard.NewServer(&dashboard.Config{Port: port, Logger: logger})
		if err := server.Start(); err != nil {
			return fmt.Errorf("failed to start dashboard: %w", err)
		}

		handler := dashboard.NewHandler(server, engine, logger)

		dcfg := daemon.DefaultConfig()
		dcfg.SyncInterval = cfg.Daemon.SyncInterval
		dcfg.DebounceInterval = cfg.Daemon.DebounceInterval
		dcfg.Logger = logger
		dcfg.Events = handler

		d, err := daemon.NewWithConfig(engine, store, cfg.UserID, cfg.Daemon.InboxDir, dcfg)
		if err != nil {
			_ = server.Stop()
			return err
		}

		fmt.Printf("Dashboard server started on http://localhost:%d\n", port)
		fmt.Printf("WebSocket endpoint: ws://localhost:%d/ws\n", port)
		fmt.Printf("Health check: http://localhost:%d/health\n", port)
		fmt.Println("\nPress Ctrl+C to stop...")

		ctx, stop := signal.NotifyContext(cmd.Context(), unix.SIGINT, unix.SIGTERM)
		defer stop()

		err = d.Start(ctx)
		if stopErr := server.Stop(); stopErr != nil && err == nil {
			err = stopErr
		}
		return err
	},
}

func init() {
	dashboardCmd.Flags().IntVar(&dashboardPort, "port", 0, "port to listen on (default from config)")
}
