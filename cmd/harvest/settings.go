package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/golang-cafe/remotehq/internal/settings"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show or change the harvesting settings",
	RunE:  runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	Args:  cobra.NoArgs,
	RunE:  runSettingsShow,
}

var settingsModeCmd = &cobra.Command{
	Use:   "mode <exact|fuzzy>",
	Short: "Set the harvesting mode",
	Long: `Set how job titles are matched against the whitelist.

Available modes:
  exact - the whole title must equal a whitelisted phrase
  fuzzy - a whitelisted phrase must appear as whole words in the title`,
	Args: cobra.ExactArgs(1),
	RunE: runSettingsMode,
}

var settingsAddCmd = &cobra.Command{
	Use:   "add <phrase>",
	Short: "Add a phrase to the title whitelist",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSettingsAdd,
}

var settingsRemoveCmd = &cobra.Command{
	Use:   "remove <phrase>",
	Short: "Remove a phrase from the title whitelist",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSettingsRemove,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsModeCmd)
	settingsCmd.AddCommand(settingsAddCmd)
	settingsCmd.AddCommand(settingsRemoveCmd)
	rootCmd.AddCommand(settingsCmd)
}

func printSettings(cmd *cobra.Command, s settings.Settings) {
	cmd.Printf("Mode: %s\n", s.HarvestingMode)
	cmd.Printf("Whitelisted titles (%d):\n", len(s.WhitelistedTitles))
	for _, t := range s.WhitelistedTitles {
		cmd.Printf("  %s\n", t)
	}
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	s, err := settingsStore.GetSettings()
	if err != nil {
		return err
	}
	printSettings(cmd, s)
	return nil
}

func runSettingsMode(cmd *cobra.Command, args []string) error {
	mode := settings.Mode(strings.ToLower(args[0]))
	s, err := settingsStore.UpdateSettings(settings.HarvestingUserID, settings.Update{HarvestingMode: &mode})
	if err != nil {
		return err
	}
	printSettings(cmd, s)
	return nil
}

func runSettingsAdd(cmd *cobra.Command, args []string) error {
	s, err := settingsStore.GetSettings()
	if err != nil {
		return err
	}
	titles := append(s.WhitelistedTitles, strings.Join(args, " "))
	s, err = settingsStore.UpdateSettings(settings.HarvestingUserID, settings.Update{WhitelistedTitles: &titles})
	if err != nil {
		return err
	}
	printSettings(cmd, s)
	return nil
}

func runSettingsRemove(cmd *cobra.Command, args []string) error {
	s, err := settingsStore.GetSettings()
	if err != nil {
		return err
	}
	phrase := strings.ToLower(strings.TrimSpace(strings.Join(args, " ")))
	titles := make([]string, 0, len(s.WhitelistedTitles))
	for _, t := range s.WhitelistedTitles {
		if t != phrase {
			titles = append(titles, t)
		}
	}
	if len(titles) == len(s.WhitelistedTitles) {
		return fmt.Errorf("%q is not whitelisted", phrase)
	}
	s, err = settingsStore.UpdateSettings(settings.HarvestingUserID, settings.Update{WhitelistedTitles: &titles})
	if err != nil {
		return err
	}
	printSettings(cmd, s)
	return nil
}
