package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gordyrad/report-relay/internal/browser"
)

var loginManual bool

var loginCmd = &cobra.Command{
	Use:   "login [dingtalk|feishu]",
	Short: "Sign in to a report provider via the backend's OAuth flow",
	Long: `Starts the OAuth handshake with the report backend, opens the provider's
authorization page in a browser window, and captures the redirect to finish
the login. With --manual no browser is driven: the authorization URL is
printed and you paste the redirect URL back in.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		provider := strings.ToLower(args[0])
		if provider != "dingtalk" && provider != "feishu" {
			return fmt.Errorf("unknown provider %q (expected dingtalk or feishu)", provider)
		}

		s, creds, _, err := components()
		if err != nil {
			return err
		}
		defer s.Close()

		ctx := cmd.Context()
		authURL, err := creds.BeginLogin(ctx, provider)
		if err != nil {
			return fmt.Errorf("starting login: %w", err)
		}

		var redirect string
		if loginManual {
			fmt.Println(titleStyle.Render("Open this URL and sign in:"))
			fmt.Println(authURL)
			fmt.Println()
			fmt.Print("Paste the URL you were redirected to: ")
			reader := bufio.NewReader(os.Stdin)
			line, err := reader.ReadString('\n')
			if err != nil {
				return fmt.Errorf("reading redirect URL: %w", err)
			}
			redirect = strings.TrimSpace(line)
		} else {
			fmt.Println(faintStyle.Render("Opening browser for " + provider + " authorization..."))
			redirect, err = browser.NewWindow().CaptureRedirect(ctx, authURL)
			if err != nil {
				return fmt.Errorf("capturing oauth redirect: %w", err)
			}
		}

		sess, err := creds.HandleCallback(ctx, redirect)
		if err != nil {
			return fmt.Errorf("completing login: %w", err)
		}

		fmt.Println(successStyle.Render(fmt.Sprintf("Logged in as %s via %s",
			sess.User.DisplayName, sess.User.Provider)))
		return nil
	},
}

func init() {
	loginCmd.Flags().BoolVar(&loginManual, "manual", false, "Print the auth URL instead of driving a browser")
	rootCmd.AddCommand(loginCmd)
}
