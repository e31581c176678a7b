package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/storynest/storysync/internal/script"
	"github.com/storynest/storysync/internal/ui"
)

var voiceScriptFile string

var voiceCmd = &cobra.Command{
	Use:     "voice",
	GroupID: "advanced",
	Short:   "Inspect voice profiles and the recording script",
}

var voiceScriptCmd = &cobra.Command{
	Use:   "script",
	Short: "Print the voice recording script",
	Long: `Print the script parents read when recording a narrator voice.

A voice profile is complete once every paragraph has been recorded. Pass
--file to use a custom YAML script instead of the built-in one.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadScript()
		if err != nil {
			return err
		}

		fmt.Printf("%s (%d paragraphs)\n\n", ui.RenderTitle(s.Name), s.Total())
		for i, p := range s.Paragraphs {
			fmt.Printf("%d. %s\n   %s\n", i+1, ui.RenderAccent(p.Key), p.Text)
		}
		return nil
	},
}

var voiceListCmd = &cobra.Command{
	Use:   "list",
	Short: "List cached voice profiles and their recording progress",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		s, err := loadScript()
		if err != nil {
			return err
		}

		store, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer store.Close()

		engine, _ := buildEngines(cfg, store)
		voices := engine.CachedVoices(context.Background())
		if len(voices) == 0 {
			fmt.Printf("%s No voice profiles cached\n", ui.RenderMuted("-"))
			return nil
		}

		for _, v := range voices {
			name := string(v.VoiceType)
			if v.VoiceName != nil {
				name = *v.VoiceName
			}
			progress := fmt.Sprintf("%d/%d paragraphs", v.ScriptParagraphsRecorded, s.Total())
			if v.Complete(s.Total()) {
				fmt.Printf("%s %s %s\n", ui.RenderPass("●"), name, ui.RenderMuted(progress))
			} else {
				fmt.Printf("%s %s %s\n", ui.RenderWarn("●"), name, ui.RenderMuted(progress))
			}
		}
		return nil
	},
}

func loadScript() (*script.Script, error) {
	if voiceScriptFile == "" {
		return script.Default(), nil
	}
	return script.Load(voiceScriptFile)
}

func init() {
	voiceCmd.PersistentFlags().StringVar(&voiceScriptFile, "file", "", "custom script YAML file")
	voiceCmd.AddCommand(voiceScriptCmd, voiceListCmd)
}
