package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/storynest/storysync/internal/model"
	"github.com/storynest/storysync/internal/ui"
)

var statusCmd = &cobra.Command{
	Use:     "status",
	GroupID: "sync",
	Short:   "Show sync state and cache contents",
	Long: `Display the current sync state of this device.

Shows:
  - Sync status and relative time of the last successful sync
  - Cached record counts per collection
  - Migration state for the signed-in user`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		store, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer store.Close()

		engine, migrator := buildEngines(cfg, store)
		ctx := cmd.Context()

		fmt.Println(ui.RenderTitle("StorySync Status"))
		if cfg.UserID == "" {
			fmt.Printf("   User: %s\n", ui.RenderMuted("signed out"))
		} else {
			fmt.Printf("   User: %s\n", ui.RenderAccent(cfg.UserID))
		}
		if !cfg.Backend.Configured() {
			fmt.Printf("   Backend: %s\n", ui.RenderWarn("not configured"))
		} else {
			fmt.Printf("   Backend: %s\n", cfg.Backend.URL)
		}

		state := engine.SyncState(ctx)
		fmt.Printf("   Sync: %s %s\n", statusDot(state.Status), ui.RenderMuted(state.Label))

		fmt.Println()
		printCacheCounts(ctx, engine)

		if cfg.UserID != "" {
			fmt.Println()
			if migrator.IsMigrationComplete(ctx, cfg.UserID) {
				ts := migrator.MigrationTimestamp(ctx)
				when := ""
				if ts != nil {
					when = ts.Local().Format("2006-01-02 15:04")
				}
				fmt.Printf("   Migration: %s %s\n", ui.RenderPass("complete"), ui.RenderMuted(when))
			} else if summary := migrator.DetectLocalData(ctx, cfg.UserID); summary.HasLocalData {
				fmt.Printf("   Migration: %s (%d children, %d stories, %d voices pending)\n",
					ui.RenderWarn("pending"),
					summary.ChildCount(), summary.StoryCount(), summary.VoiceCount())
			} else {
				fmt.Printf("   Migration: %s\n", ui.RenderMuted("nothing to migrate"))
			}
		}
		return nil
	},
}

// statusDot renders the colored status marker.
func statusDot(status model.SyncStatus) string {
	switch status {
	case model.SyncSuccess:
		return ui.RenderPass("●")
	case model.SyncError:
		return ui.RenderErr("●")
	case model.SyncInProgress:
		return ui.RenderAccent("●")
	default:
		return ui.RenderMuted("○")
	}
}
