package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gordyrad/report-relay/internal/store"
)

var themeCmd = &cobra.Command{
	Use:   "theme [light|dark]",
	Short: "Show or set the preferred display theme",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, _, _, err := components()
		if err != nil {
			return err
		}
		defer s.Close()

		if len(args) == 0 {
			theme, err := s.GetSetting(store.KeyTheme)
			if err != nil {
				return fmt.Errorf("reading theme: %w", err)
			}
			if theme == "" {
				theme = "light"
			}
			fmt.Println(theme)
			return nil
		}

		theme := args[0]
		if theme != "light" && theme != "dark" {
			return fmt.Errorf("unknown theme %q (expected light or dark)", theme)
		}
		if err := s.PutSetting(store.KeyTheme, theme); err != nil {
			return fmt.Errorf("storing theme: %w", err)
		}
		fmt.Println(successStyle.Render("Theme set to " + theme))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(themeCmd)
}
