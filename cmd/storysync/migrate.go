package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/storynest/storysync/internal/ui"
)

var migrateCmd = &cobra.Command{
	Use:     "migrate",
	GroupID: "sync",
	Short:   "Migrate device-local records to the cloud",
	Long: `Detect records that exist only on this device and upload them to the
cloud backend.

Migration runs at most once per user. Children migrate first so their new
cloud ids can be attached to the stories and voices that follow; cached
copies are rewritten in place with the cloud-assigned ids, never duplicated.
A record that fails is reported and skipped, it does not stop the rest.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cfg.UserID == "" {
			return fmt.Errorf("not signed in, run 'storysync login' first")
		}

		store, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer store.Close()

		_, migrator := buildEngines(cfg, store)
		ctx := cmd.Context()

		if migrator.IsMigrationComplete(ctx, cfg.UserID) {
			fmt.Printf("%s Migration already complete for %s\n", ui.RenderPass("OK"), cfg.UserID)
			return nil
		}

		summary := migrator.DetectLocalData(ctx, cfg.UserID)
		if !summary.HasLocalData {
			fmt.Printf("%s No local data to migrate\n", ui.RenderMuted("-"))
			return nil
		}

		fmt.Printf("%s Migrating %d children, %d stories, %d voices...\n",
			ui.RenderAccent("~"),
			summary.ChildCount(), summary.StoryCount(), summary.VoiceCount())

		result := migrator.MigrateLocalDataToCloud(ctx, cfg.UserID, summary)

		fmt.Printf("   Children: %d\n", result.MigratedChildren)
		fmt.Printf("   Stories:  %d\n", result.MigratedStories)
		fmt.Printf("   Voices:   %d\n", result.MigratedVoices)

		if !result.Success {
			for _, e := range result.Errors {
				fmt.Printf("   %s %s\n", ui.RenderErr("!"), e)
			}
			return fmt.Errorf("migration finished with %d errors", len(result.Errors))
		}

		fmt.Printf("%s Migrated %d records\n", ui.RenderPass("OK"), result.TotalMigrated)
		return nil
	},
}
