package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/storynest/storysync/internal/syncer"
	"github.com/storynest/storysync/internal/ui"
)

var syncCmd = &cobra.Command{
	Use:     "sync",
	GroupID: "sync",
	Short:   "Refresh the local cache from the cloud",
	Long: `Pull every entity collection for the signed-in user and refresh the
local cache.

This performs a full sync:
  1. Fetches children, voice profiles, stories and preferences concurrently
  2. Rewrites each collection's cache key with the cloud state
  3. Records the sync timestamp locally and mirrors it to the cloud

A partial failure leaves the failed collections' previous cache entries
untouched and reports an error status.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cfg.UserID == "" {
			return fmt.Errorf("not signed in, run 'storysync login' first")
		}
		if !cfg.Backend.Configured() {
			return fmt.Errorf("backend not configured, run 'storysync login' first")
		}

		store, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer store.Close()

		engine, _ := buildEngines(cfg, store)

		fmt.Printf("%s Syncing for %s...\n", ui.RenderAccent("~"), cfg.UserID)
		start := time.Now()

		ctx := cmd.Context()
		if !engine.SyncFromCloud(ctx, cfg.UserID) {
			return fmt.Errorf("sync failed, see log for details")
		}

		elapsed := time.Since(start)
		fmt.Printf("%s Sync complete in %v\n", ui.RenderPass("OK"), elapsed.Round(time.Millisecond))
		printCacheCounts(ctx, engine)
		return nil
	},
}

// printCacheCounts summarizes what the cache now holds.
func printCacheCounts(ctx context.Context, engine *syncer.Engine) {
	fmt.Printf("   Children: %d\n", len(engine.CachedChildren(ctx)))
	fmt.Printf("   Stories:  %d\n", len(engine.CachedStories(ctx)))
	fmt.Printf("   Voices:   %d\n", len(engine.CachedVoices(ctx)))
}
