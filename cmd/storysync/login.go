package main

import (
	"fmt"
	"path/filepath"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/storynest/storysync/internal/config"
	"github.com/storynest/storysync/internal/ui"
)

var loginCmd = &cobra.Command{
	Use:     "login",
	GroupID: "sync",
	Short:   "Configure backend credentials and sign in",
	Long: `Interactively configure the backend connection and the signed-in user.

Values are written to ~/.storysync/config.yaml (or the file given with
--config) and used by every other command.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		form := huh.NewForm(
			huh.NewGroup(
				huh.NewInput().
					Title("Backend URL").
					Description("e.g. https://xyzcompany.supabase.co").
					Value(&cfg.Backend.URL),
				huh.NewInput().
					Title("Anon key").
					EchoMode(huh.EchoModePassword).
					Value(&cfg.Backend.AnonKey),
				huh.NewInput().
					Title("User id").
					Description("the authenticated user's uuid").
					Value(&cfg.UserID),
				huh.NewInput().
					Title("Access token").
					Description("optional, for row-level security").
					EchoMode(huh.EchoModePassword).
					Value(&cfg.Backend.AccessToken),
			),
		)
		if err := form.Run(); err != nil {
			return fmt.Errorf("login aborted: %w", err)
		}

		if !cfg.Backend.Configured() {
			return fmt.Errorf("backend URL and anon key are both required")
		}
		if cfg.UserID == "" {
			return fmt.Errorf("user id is required")
		}

		path := cfgPath
		if path == "" {
			dir, err := config.Dir()
			if err != nil {
				return err
			}
			path = filepath.Join(dir, "config.yaml")
		}
		if err := config.Save(path, cfg); err != nil {
			return err
		}

		fmt.Printf("%s Signed in as %s\n", ui.RenderPass("OK"), ui.RenderAccent(cfg.UserID))
		fmt.Printf("   Config: %s\n", path)
		return nil
	},
}
