package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/gordyrad/report-relay/internal/ai"
	"github.com/gordyrad/report-relay/internal/canonical"
	"github.com/gordyrad/report-relay/internal/config"
	"github.com/gordyrad/report-relay/internal/report"
	"github.com/gordyrad/report-relay/internal/synth"
)

var (
	synthTarget string
	synthSource string
	synthSubmit bool
)

var synthesizeCmd = &cobra.Command{
	Use:   "synthesize",
	Short: "Generate a report draft from recent reports with an AI model",
	Long: `Fetches recent reports, feeds them to the configured AI completion
provider, and generates content for every field of the target template. The
draft is written to the output directory; fields whose generation fails get a
manual-entry placeholder instead of aborting the run.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if synthTarget == "" {
			return fmt.Errorf("--target is required")
		}

		s, _, cat, err := components()
		if err != nil {
			return err
		}
		defer s.Close()

		ctx := cmd.Context()

		now := time.Now()
		filter := canonical.Filter{
			Template: synthSource,
			Start:    now.Add(-cfg.Lookback),
			End:      now,
		}
		sources, err := cat.ListReports(ctx, filter)
		if err != nil {
			return fmt.Errorf("fetching source reports: %w", err)
		}
		if len(sources) == 0 {
			return fmt.Errorf("no reports in the last %s to summarize", cfg.Lookback)
		}
		fmt.Println(faintStyle.Render(fmt.Sprintf("Summarizing %d source report(s)...", len(sources))))

		target, err := cat.TemplateDetail(ctx, synthTarget)
		if err != nil {
			return fmt.Errorf("fetching target template: %w", err)
		}

		settings := ai.LoadSettings(s)
		if cfg.AI.Provider != "" {
			settings.Provider = cfg.AI.Provider
		}
		if cfg.AI.Model != "" {
			settings.Model = cfg.AI.Model
		}
		if cfg.AI.APIKey != "" {
			settings.APIKey = cfg.AI.APIKey
		}

		synthesizer := synth.New(ai.NewClient(settings), s, settings.Model)
		fields, err := synthesizer.SummarizeReports(ctx, sources, target)
		if err != nil {
			return fmt.Errorf("synthesizing draft: %w", err)
		}

		path, err := writeDraft(target, fields)
		if err != nil {
			return err
		}
		fmt.Println(successStyle.Render("Draft written to " + path))

		if !synthSubmit {
			return nil
		}

		draft := &canonical.Draft{
			TemplateID:   target.ID,
			TemplateName: target.Name,
		}
		for _, f := range target.Fields {
			draft.Fields = append(draft.Fields, canonical.DraftField{Key: f.ID, Value: fields[f.ID]})
		}
		result, err := cat.SubmitReport(ctx, draft)
		if err != nil {
			return fmt.Errorf("submitting draft: %w", err)
		}
		fmt.Println(successStyle.Render("Submitted report " + result.ReportID))
		return nil
	},
}

func writeDraft(target *canonical.Template, fields map[string]string) (string, error) {
	switch cfg.Format {
	case config.FormatJSON:
		return report.NewJSONGenerator(cfg.OutputDir).WriteDraft(target, fields)
	default:
		return report.NewMarkdownGenerator(cfg.OutputDir).WriteDraft(target, fields)
	}
}

func init() {
	synthesizeCmd.Flags().StringVar(&synthTarget, "target", "", "Target template name (required)")
	synthesizeCmd.Flags().StringVar(&synthSource, "source", "", "Only summarize reports for this template or rule")
	synthesizeCmd.Flags().BoolVar(&synthSubmit, "submit", false, "Submit the draft after generating it")
	rootCmd.AddCommand(synthesizeCmd)
}
