package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/gordyrad/report-relay/internal/ai"
)

var (
	aiSetProvider   string
	aiSetModel      string
	aiSetKey        string
	aiProcessPreset string
)

var aiCmd = &cobra.Command{
	Use:   "ai",
	Short: "Configure the AI completion provider",
}

var aiShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current AI settings and available providers",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, _, _, err := components()
		if err != nil {
			return err
		}
		defer s.Close()

		settings := ai.LoadSettings(s)
		fmt.Println(titleStyle.Render("AI settings"))
		fmt.Printf("  %s %s\n", labelStyle.Render("Provider:"), settings.Provider)
		fmt.Printf("  %s %s\n", labelStyle.Render("Model:"), settings.Model)
		fmt.Printf("  %s %s\n", labelStyle.Render("API key:"), maskKey(settings.APIKey))

		fmt.Println()
		fmt.Println(titleStyle.Render("Available providers"))
		for _, p := range ai.Providers {
			models := make([]string, 0, len(p.Models))
			for _, m := range p.Models {
				models = append(models, m.ID)
			}
			fmt.Printf("  %s (%s): %s\n", p.Name, p.Label, strings.Join(models, ", "))
		}
		return nil
	},
}

var aiSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Update AI settings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, _, _, err := components()
		if err != nil {
			return err
		}
		defer s.Close()

		settings := ai.LoadSettings(s)
		if aiSetProvider != "" {
			if _, err := ai.ProviderFor(aiSetProvider); err != nil {
				return err
			}
			settings.Provider = aiSetProvider
			// Switching provider invalidates a model from the old one.
			if aiSetModel == "" {
				settings.Model = ai.DefaultModel(aiSetProvider)
			}
		}
		if aiSetModel != "" {
			settings.Model = aiSetModel
		}
		if aiSetKey != "" {
			settings.APIKey = aiSetKey
		}

		if err := ai.SaveSettings(s, settings); err != nil {
			return err
		}
		fmt.Println(successStyle.Render(fmt.Sprintf("AI settings saved: %s / %s", settings.Provider, settings.Model)))
		return nil
	},
}

var aiProcessCmd = &cobra.Command{
	Use:   "process [prompt] [file]",
	Short: "Run a prompt over text with the configured model, streaming output",
	Long: `Sends a prompt plus the given text (from a file, or stdin when no file is
named) to the configured completion provider and streams the result to stdout
as it arrives. The prompt is either given inline or picked from the built-in
catalog with --preset (see "report-relay ai presets").`,
	Args: cobra.MaximumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		prompt, rest, err := resolveProcessPrompt(aiProcessPreset, args)
		if err != nil {
			return err
		}

		var text []byte
		if len(rest) == 1 {
			text, err = os.ReadFile(rest[0])
		} else {
			text, err = io.ReadAll(os.Stdin)
		}
		if err != nil {
			return fmt.Errorf("reading input text: %w", err)
		}

		s, _, _, err := components()
		if err != nil {
			return err
		}
		defer s.Close()

		settings := ai.LoadSettings(s)
		if cfg.AI.APIKey != "" {
			settings.APIKey = cfg.AI.APIKey
		}
		client := ai.NewClient(settings)

		_, err = client.Process(cmd.Context(), prompt, string(text), func(fragment, _ string) {
			fmt.Print(fragment)
		}, ai.Options{})
		fmt.Println()
		if err != nil {
			return fmt.Errorf("processing text: %w", err)
		}
		return nil
	},
}

var aiPresetsCmd = &cobra.Command{
	Use:   "presets",
	Short: "List the built-in processing prompts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println(titleStyle.Render("Presets"))
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tDESCRIPTION")
		for _, p := range ai.Presets {
			fmt.Fprintf(w, "%s\t%s\n", p.Name, p.Description)
		}
		return w.Flush()
	},
}

// resolveProcessPrompt picks the prompt for `ai process`: the named preset, or
// the first positional argument. The remaining arguments name the input file.
func resolveProcessPrompt(preset string, args []string) (string, []string, error) {
	if preset != "" {
		if len(args) > 1 {
			return "", nil, fmt.Errorf("--preset takes at most one argument (the input file)")
		}
		p, err := ai.PresetFor(preset)
		if err != nil {
			return "", nil, err
		}
		return p.Prompt, args, nil
	}
	if len(args) == 0 {
		return "", nil, fmt.Errorf("a prompt argument or --preset is required")
	}
	return args[0], args[1:], nil
}

func maskKey(key string) string {
	if key == "" {
		return faintStyle.Render("(not set)")
	}
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

func init() {
	aiSetCmd.Flags().StringVar(&aiSetProvider, "provider", "", "Completion provider: deepseek, doubao")
	aiSetCmd.Flags().StringVar(&aiSetModel, "model", "", "Model identifier")
	aiSetCmd.Flags().StringVar(&aiSetKey, "api-key", "", "API key")
	aiProcessCmd.Flags().StringVar(&aiProcessPreset, "preset", "", "Built-in prompt name (see `ai presets`)")
	aiCmd.AddCommand(aiShowCmd, aiSetCmd, aiProcessCmd, aiPresetsCmd)
	rootCmd.AddCommand(aiCmd)
}
