package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/gordyrad/report-relay/internal/canonical"
	"github.com/gordyrad/report-relay/internal/config"
	"github.com/gordyrad/report-relay/internal/report"
)

var (
	reportsTemplate string
	reportsExport   bool
)

var reportsCmd = &cobra.Command{
	Use:   "reports",
	Short: "List submitted reports on the active provider",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, _, cat, err := components()
		if err != nil {
			return err
		}
		defer s.Close()

		now := time.Now()
		filter := canonical.Filter{
			Template: reportsTemplate,
			Start:    now.Add(-cfg.Lookback),
			End:      now,
		}
		if cfg.Verbose {
			fmt.Fprintf(os.Stderr, "Fetching reports since %s...\n", filter.Start.Format("2006-01-02"))
		}

		reportList, err := cat.ListReports(cmd.Context(), filter)
		if err != nil {
			return fmt.Errorf("listing reports: %w", err)
		}

		provider, _ := cat.Provider()
		fmt.Println(titleStyle.Render(fmt.Sprintf("Reports (%s, last %s)", provider, cfg.Lookback)))
		if len(reportList) == 0 {
			fmt.Println(faintStyle.Render("  No reports in this window."))
			return nil
		}
		for _, r := range reportList {
			fmt.Printf("  %s %s\n", labelStyle.Render("•"), r.Title)
		}

		if !reportsExport {
			return nil
		}

		path, err := writeReports(provider, reportList)
		if err != nil {
			return err
		}
		fmt.Println(successStyle.Render("Exported to " + path))
		return nil
	},
}

// writeReports dispatches to the generator for the configured output format.
func writeReports(provider string, reports []canonical.Report) (string, error) {
	switch cfg.Format {
	case config.FormatJSON:
		return report.NewJSONGenerator(cfg.OutputDir).WriteReports(provider, reports)
	default:
		return report.NewMarkdownGenerator(cfg.OutputDir).WriteReports(provider, reports)
	}
}

func init() {
	reportsCmd.Flags().StringVar(&reportsTemplate, "template", "", "Only reports for this template or rule")
	reportsCmd.Flags().BoolVar(&reportsExport, "export", false, "Write the listing to the output directory")
	rootCmd.AddCommand(reportsCmd)
}
