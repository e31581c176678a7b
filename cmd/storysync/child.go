package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
	"github.com/spf13/cobra"

	"github.com/storynest/storysync/internal/cache"
	"github.com/storynest/storysync/internal/model"
	"github.com/storynest/storysync/internal/ui"
)

var childCmd = &cobra.Command{
	Use:     "child",
	GroupID: "advanced",
	Short:   "Manage the local child profile",
}

var (
	childName      string
	childBirthday  string
	childInterests []string
	childNotes     string
)

var childAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Create a local child profile",
	Long: `Create a child profile in the local cache.

The profile gets a local id and becomes a migration candidate; run
'storysync migrate' while signed in to promote it to a cloud record.

The birthday accepts natural language:
  storysync child add --name Mila --birthday "March 5 2019"
  storysync child add --name Theo --birthday "2020-11-02" --interests dinosaurs,space`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		child := model.ChildProfile{
			ID:        model.NewLocalID(),
			Name:      childName,
			Interests: childInterests,
			CreatedAt: time.Now().UTC(),
		}
		if child.Interests == nil {
			child.Interests = []string{}
		}
		if childNotes != "" {
			child.LifeNotes = &childNotes
		}

		if childBirthday != "" {
			birthday, err := parseBirthday(childBirthday)
			if err != nil {
				return err
			}
			child.Birthday = &birthday
			age := ageFromBirthday(birthday, time.Now())
			if age >= 0 {
				child.Age = &age
			}
		}

		store, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer store.Close()

		data, err := json.Marshal(child)
		if err != nil {
			return fmt.Errorf("failed to encode child profile: %w", err)
		}
		ctx := cmd.Context()
		if err := store.Set(ctx, cache.KeyPendingChild, data); err != nil {
			return fmt.Errorf("failed to cache child profile: %w", err)
		}
		if err := store.Set(ctx, cache.KeyActiveChildID, []byte(child.ID)); err != nil {
			return fmt.Errorf("failed to set active child: %w", err)
		}

		fmt.Printf("%s Created local profile for %s (%s)\n",
			ui.RenderPass("OK"), ui.RenderAccent(child.Name), ui.RenderMuted(child.ID))
		if child.Birthday != nil {
			fmt.Printf("   Birthday: %s\n", *child.Birthday)
		}
		return nil
	},
}

var childShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the cached child profiles",
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

		engine, _ := buildEngines(cfg, store)
		children := engine.CachedChildren(context.Background())
		if len(children) == 0 {
			fmt.Printf("%s No child profiles cached\n", ui.RenderMuted("-"))
			return nil
		}

		for _, child := range children {
			marker := ui.RenderPass("●")
			if model.OriginOf(child.ID) == model.OriginLocal {
				marker = ui.RenderWarn("●")
			}
			fmt.Printf("%s %s %s\n", marker, child.Name, ui.RenderMuted(child.ID))
			if child.Birthday != nil {
				fmt.Printf("   Birthday: %s\n", *child.Birthday)
			}
			if len(child.Interests) > 0 {
				fmt.Printf("   Interests: %v\n", child.Interests)
			}
		}
		return nil
	},
}

func init() {
	childAddCmd.Flags().StringVar(&childName, "name", "", "child's name (required)")
	childAddCmd.Flags().StringVar(&childBirthday, "birthday", "", "birthday, natural language accepted")
	childAddCmd.Flags().StringSliceVar(&childInterests, "interests", nil, "comma-separated interests")
	childAddCmd.Flags().StringVar(&childNotes, "notes", "", "free-form notes about the child")
	_ = childAddCmd.MarkFlagRequired("name")

	childCmd.AddCommand(childAddCmd, childShowCmd)
}

// parseBirthday turns natural-language input into the YYYY-MM-DD form the
// backend stores.
func parseBirthday(input string) (string, error) {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)

	result, err := w.Parse(input, time.Now())
	if err != nil {
		return "", fmt.Errorf("failed to parse birthday %q: %w", input, err)
	}
	if result == nil {
		return "", fmt.Errorf("could not understand birthday %q", input)
	}
	return result.Time.Format("2006-01-02"), nil
}

// ageFromBirthday computes full years between birthday and now, -1 when the
// birthday is in the future.
func ageFromBirthday(birthday string, now time.Time) int {
	born, err := time.Parse("2006-01-02", birthday)
	if err != nil {
		return -1
	}
	years := now.Year() - born.Year()
	if now.Month() < born.Month() || (now.Month() == born.Month() && now.Day() < born.Day()) {
		years--
	}
	if years < 0 {
		return -1
	}
	return years
}
