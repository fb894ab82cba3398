package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gordyrad/report-relay/internal/canonical"
)

var submitCmd = &cobra.Command{
	Use:   "submit <draft.json>",
	Short: "Submit a report draft from a JSON file",
	Long: `Reads a draft document (the JSON format produced by synthesize with
--format json, or hand-written in the same shape) and submits it on the
active provider. Providers without write support reject the submission.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("reading draft file: %w", err)
		}

		draft, err := parseDraftFile(raw)
		if err != nil {
			return err
		}

		s, _, cat, err := components()
		if err != nil {
			return err
		}
		defer s.Close()

		result, err := cat.SubmitReport(cmd.Context(), draft)
		if err != nil {
			return fmt.Errorf("submitting report: %w", err)
		}

		fmt.Println(successStyle.Render("Submitted report " + result.ReportID))
		return nil
	},
}

// parseDraftFile accepts either a bare canonical draft or the draft document
// the synthesize command exports (template plus fields map).
func parseDraftFile(raw []byte) (*canonical.Draft, error) {
	var draft canonical.Draft
	if err := json.Unmarshal(raw, &draft); err == nil && draft.TemplateID != "" && len(draft.Fields) > 0 {
		return &draft, nil
	}

	var doc struct {
		Template *canonical.Template `json:"template"`
		Fields   map[string]string   `json:"fields"`
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parsing draft file: %w", err)
	}
	if doc.Template == nil || len(doc.Fields) == 0 {
		return nil, fmt.Errorf("draft file has no template or fields")
	}

	d := &canonical.Draft{
		TemplateID:   doc.Template.ID,
		TemplateName: doc.Template.Name,
	}
	for _, f := range doc.Template.Fields {
		d.Fields = append(d.Fields, canonical.DraftField{Key: f.ID, Value: doc.Fields[f.ID]})
	}
	return d, nil
}

func init() {
	rootCmd.AddCommand(submitCmd)
}
