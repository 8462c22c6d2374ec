package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var themeCmd = &cobra.Command{
	Use:       "theme [dark|light|toggle]",
	Short:     "Show or change the colour theme",
	Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"dark", "light", "toggle"},
	RunE:      runTheme,
}

func runTheme(cmd *cobra.Command, args []string) error {
	prefs := openPrefs()
	dark, err := prefs.DarkMode()
	if err != nil {
		return fmt.Errorf("failed to read theme: %w", err)
	}

	if len(args) == 1 {
		switch args[0] {
		case "dark":
			dark = true
		case "light":
			dark = false
		case "toggle":
			dark = !dark
		}
		if err := prefs.SetDarkMode(dark); err != nil {
			return fmt.Errorf("failed to save theme: %w", err)
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Theme: %s\n", themeName(dark))
	return nil
}
