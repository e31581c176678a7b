package main

import (
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sys/unix"

	"github.com/storynest/storysync/internal/daemon"
	"github.com/storynest/storysync/internal/syncer"
	"github.com/storynest/storysync/internal/ui"
)

var daemonForeground bool

var daemonCmd = &cobra.Command{
	Use:     "daemon",
	GroupID: "advanced",
	Short:   "Background sync daemon",
	Long: `Run the background sync daemon.

The daemon watches the inbox directory for dropped record files, ingests
them into the local cache, and periodically refreshes the cache from the
cloud. State is recorded in ~/.storysync/daemon.toml so 'daemon status' and
'daemon stop' can find the process.`,
}

var daemonStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the sync daemon",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		state, err := daemon.ReadState(cfg.Daemon.StateFile)
		if err != nil {
			return err
		}
		if state.Alive() {
			return fmt.Errorf("daemon already running (pid %d)", state.PID)
		}

		if !daemonForeground {
			return spawnDaemon(cfg.Daemon.LogFile)
		}

		store, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer store.Close()

		logger := daemon.NewRotatingLogger(cfg.Daemon.LogFile)
		engine, _ := buildEngines(cfg, store)

		dcfg := daemon.DefaultConfig()
		dcfg.SyncInterval = cfg.Daemon.SyncInterval
		dcfg.DebounceInterval = cfg.Daemon.DebounceInterval
		dcfg.Logger = logger

		d, err := daemon.NewWithConfig(engine, store, cfg.UserID, cfg.Daemon.InboxDir, dcfg)
		if err != nil {
			return err
		}

		if err := daemon.WriteState(cfg.Daemon.StateFile, cfg.UserID, cfg.Daemon.LogFile); err != nil {
			return err
		}
		defer func() {
			if err := daemon.RemoveState(cfg.Daemon.StateFile); err != nil {
				logger.Printf("Warning: %v", err)
			}
		}()

		ctx, stop := signal.NotifyContext(cmd.Context(), unix.SIGINT, unix.SIGTERM)
		defer stop()

		return d.Start(ctx)
	},
}

var daemonStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether the daemon is running",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		state, err := daemon.ReadState(cfg.Daemon.StateFile)
		if err != nil {
			return err
		}
		if !state.Alive() {
			fmt.Printf("%s Daemon not running\n", ui.RenderMuted("○"))
			if state != nil {
				fmt.Printf("   Stale state file: %s\n", cfg.Daemon.StateFile)
			}
			return nil
		}

		fmt.Printf("%s Daemon running (pid %d)\n", ui.RenderPass("●"), state.PID)
		fmt.Printf("   User:    %s\n", state.UserID)
		fmt.Printf("   Started: %s (%s)\n",
			state.StartedAt.Local().Format("2006-01-02 15:04:05"),
			syncer.FormatSince(time.Since(state.StartedAt)))
		fmt.Printf("   Log:     %s\n", state.LogFile)
		return nil
	},
}

var daemonStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the running daemon",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		state, err := daemon.ReadState(cfg.Daemon.StateFile)
		if err != nil {
			return err
		}
		if !state.Alive() {
			fmt.Printf("%s Daemon not running\n", ui.RenderMuted("○"))
			return daemon.RemoveState(cfg.Daemon.StateFile)
		}

		if err := state.Signal(unix.SIGTERM); err != nil {
			return err
		}
		fmt.Printf("%s Sent stop signal to pid %d\n", ui.RenderPass("OK"), state.PID)
		return nil
	},
}

// spawnDaemon re-executes this binary with --foreground, detached from the
// current terminal. The child writes its own state file on startup.
func spawnDaemon(logFile string) error {
	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("failed to resolve executable: %w", err)
	}

	args := []string{"daemon", "start", "--foreground"}
	if cfgPath != "" {
		args = append(args, "--config", cfgPath)
	}

	child := exec.Command(exe, args...)
	child.Stdout = nil
	child.Stderr = nil
	child.Stdin = nil

	if err := child.Start(); err != nil {
		return fmt.Errorf("failed to spawn daemon: %w", err)
	}
	// Detach; the child outlives this process.
	if err := child.Process.Release(); err != nil {
		return fmt.Errorf("failed to detach daemon: %w", err)
	}

	fmt.Printf("%s Daemon started\n", ui.RenderPass("OK"))
	fmt.Printf("   Log: %s\n", logFile)
	return nil
}

func init() {
	daemonStartCmd.Flags().BoolVar(&daemonForeground, "foreground", false, "run in the foreground instead of detaching")
	daemonCmd.AddCommand(daemonStartCmd, daemonStatusCmd, daemonStopCmd)
}
