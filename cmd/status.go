package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

var statusShowLog bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current session and recent fetch activity",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, creds, _, err := components()
		if err != nil {
			return err
		}
		defer s.Close()

		fmt.Println(titleStyle.Render("Session"))
		sess, err := creds.Session()
		if err != nil {
			return fmt.Errorf("reading session: %w", err)
		}
		switch {
		case sess == nil:
			fmt.Println(warnStyle.Render("  Not signed in."))
		case !creds.IsLive():
			fmt.Printf("  %s %s (%s) [%s]\n", labelStyle.Render("User:"),
				sess.User.DisplayName, sess.User.Provider,
				errorStyle.Render("session expired"))
		default:
			// Refresh the profile from the backend when possible; the stored
			// copy is the fallback.
			user := sess.User
			if fresh, err := creds.CurrentUser(cmd.Context()); err == nil {
				user = *fresh
			}
			fmt.Printf("  %s %s (%s)\n", labelStyle.Render("User:"),
				user.DisplayName, user.Provider)
			if sess.ExpiresAt > 0 {
				fmt.Printf("  %s %s\n", labelStyle.Render("Expires:"),
					time.Unix(sess.ExpiresAt, 0).Format("2006-01-02 15:04"))
			}
		}

		if !statusShowLog {
			return nil
		}

		logs, err := s.RecentFetchLogs(10)
		if err != nil {
			return fmt.Errorf("reading fetch log: %w", err)
		}
		fmt.Println()
		fmt.Println(titleStyle.Render("Recent activity"))
		if len(logs) == 0 {
			fmt.Println(faintStyle.Render("  No fetch activity yet."))
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
		fmt.Fprintln(w, "  TIME\tPROVIDER\tOPERATION\tSTATUS\tDURATION")
		for _, l := range logs {
			status := l.Status
			if l.Status == "error" {
				status = errorStyle.Render(l.Status)
			}
			fmt.Fprintf(w, "  %s\t%s\t%s\t%s\t%dms\n",
				l.CreatedAt.Format("01-02 15:04"), l.Provider, l.Operation, status, l.DurationMS)
		}
		return w.Flush()
	},
}

func init() {
	statusCmd.Flags().BoolVar(&statusShowLog, "log", false, "Include recent fetch log entries")
	rootCmd.AddCommand(statusCmd)
}
