package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "List report templates on the active provider",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, _, cat, err := components()
		if err != nil {
			return err
		}
		defer s.Close()

		templates, err := cat.ListTemplates(cmd.Context())
		if err != nil {
			return fmt.Errorf("listing templates: %w", err)
		}

		provider, _ := cat.Provider()
		fmt.Println(titleStyle.Render(fmt.Sprintf("Templates (%s)", provider)))
		if len(templates) == 0 {
			fmt.Println(faintStyle.Render("  No templates found."))
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
		fmt.Fprintln(w, "  NAME\tID\tFIELDS")
		for _, t := range templates {
			fmt.Fprintf(w, "  %s\t%s\t%d\n", t.Name, t.ID, len(t.Fields))
		}
		return w.Flush()
	},
}

var templatesShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Show the field layout of one template",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, _, cat, err := components()
		if err != nil {
			return err
		}
		defer s.Close()

		tpl, err := cat.TemplateDetail(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("fetching template: %w", err)
		}

		fmt.Println(titleStyle.Render(tpl.Name))
		fmt.Println(faintStyle.Render("  " + tpl.ID))
		fmt.Println()

		w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
		fmt.Fprintln(w, "  FIELD\tTYPE\tPLACEHOLDER")
		for _, f := range tpl.Fields {
			fmt.Fprintf(w, "  %s\t%s\t%s\n", f.Label, f.Type, f.Placeholder)
		}
		if err := w.Flush(); err != nil {
			return err
		}

		for _, f := range tpl.Fields {
			if len(f.Options) > 0 {
				fmt.Printf("\n  %s options:", f.Label)
				for _, o := range f.Options {
					fmt.Printf(" %s", o.Text)
				}
				fmt.Println()
			}
		}
		return nil
	},
}

func init() {
	templatesCmd.AddCommand(templatesShowCmd)
	rootCmd.AddCommand(templatesCmd)
}
