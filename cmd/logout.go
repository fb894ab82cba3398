package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and clear the local session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, creds, _, err := components()
		if err != nil {
			return err
		}
		defer s.Close()

		if err := creds.Logout(cmd.Context()); err != nil {
			return fmt.Errorf("logging out: %w", err)
		}
		fmt.Println(successStyle.Render("Logged out."))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(logoutCmd)
}
