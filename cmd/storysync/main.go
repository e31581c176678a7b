// Command storysync manages the local story cache and its cloud backend.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/storynest/storysync/internal/backend"
	"github.com/storynest/storysync/internal/cache"
	"github.com/storynest/storysync/internal/config"
	"github.com/storynest/storysync/internal/migrate"
	"github.com/storynest/storysync/internal/syncer"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:   "storysync",
	Short: "Local/cloud sync for the StoryNest bedtime story app",
	Long: `storysync keeps on-device story data (child profiles, stories, parent
voice recordings) in sync with the cloud backend.

Records created offline carry local ids; storysync detects them, migrates
them to the cloud exactly once, and mirrors cloud state back into the local
cache so the app always has something to render.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "config file (default: ./storysync.yaml, then ~/.storysync/config.yaml)")

	rootCmd.AddGroup(
		&cobra.Group{ID: "sync", Title: "Sync Commands:"},
		&cobra.Group{ID: "advanced", Title: "Advanced Commands:"},
	)
	rootCmd.AddCommand(syncCmd, statusCmd, migrateCmd, childCmd, voiceCmd, loginCmd, daemonCmd, dashboardCmd)
}

// loadConfig reads the effective configuration for this invocation.
func loadConfig() (*config.Config, error) {
	return config.Load(cfgPath)
}

// openStore opens the configured cache store. The caller owns Close.
func openStore(cfg *config.Config) (cache.Store, error) {
	store, err := cache.Open(cfg.Cache)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache: %w", err)
	}
	return store, nil
}

// buildEngines wires the gateway, sync engine and migration engine for one
// command invocation.
func buildEngines(cfg *config.Config, store cache.Store) (*syncer.Engine, *migrate.Engine) {
	client := backend.New(cfg.Backend, nil)
	engine := syncer.New(client, store, nil)
	policy := migrate.GiveUpAfterFirstAttempt
	if cfg.RetryPolicy == "retry-failed-only" {
		policy = migrate.RetryFailedOnly
	}
	return engine, migrate.New(client, store, engine, policy, nil)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
