package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ppiankov/noema/internal/llm"
	"github.com/ppiankov/noema/internal/model"
	"github.com/ppiankov/noema/internal/synth"
)

var synthesizeCmd = &cobra.Command{
	Use:   "synthesize <term-id>",
	Short: "Synthesize a grounded narrative about a term",
	Long: `Build the term's evidence map and compose a grounded narrative from
it. With an LLM provider configured the text is generated and every
citation is checked against the evidence; without one, or when
generation fails, a deterministic template is used instead. Either
way the result is persisted as a synthesis run.

Filters restrict the evidence: --folder and --thinker take names,
--from and --to take dates (2006-01-02) applied to note update times.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openApp()
		if err != nil {
			return err
		}
		defer app.Close()

		modeStr, _ := cmd.Flags().GetString("mode")
		mode, err := model.ParseMode(modeStr)
		if err != nil {
			return err
		}

		filter, err := buildFilter(cmd, app)
		if err != nil {
			return err
		}

		gen, err := synthGenerator(cmd, app)
		if err != nil {
			return err
		}

		engine := synth.New(app.store, app.aggregator, gen, app.cfg.Output.Verbose)
		run, err := engine.Synthesize(cmd.Context(), args[0], mode, filter)
		if err != nil {
			return err
		}

		if jsonPath, _ := cmd.Flags().GetString("json"); jsonPath != "" {
			if err := writeJSON(jsonPath, run); err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "Run written to %s\n", jsonPath)
		}

		printRun(run)
		return nil
	},
}

// buildFilter resolves --folder/--thinker names to IDs and carries the
// date bounds through as given.
func buildFilter(cmd *cobra.Command, app *app) (model.EvidenceFilter, error) {
	var filter model.EvidenceFilter

	if name, _ := cmd.Flags().GetString("folder"); name != "" {
		folder, err := app.store.GetFolderByName(name)
		if err != nil {
			return filter, fmt.Errorf("folder %q: %w", name, err)
		}
		filter.FolderID = folder.ID
	}
	if name, _ := cmd.Flags().GetString("thinker"); name != "" {
		thinker, err := app.store.GetThinkerByName(name)
		if err != nil {
			return filter, fmt.Errorf("thinker %q: %w", name, err)
		}
		filter.ThinkerID = thinker.ID
	}
	filter.DateFrom, _ = cmd.Flags().GetString("from")
	filter.DateTo, _ = cmd.Flags().GetString("to")
	return filter, nil
}

// synthGenerator builds the generator honoring the --llm flags. Returns a
// disabled generator when no provider is configured anywhere.
func synthGenerator(cmd *cobra.Command, app *app) (*llm.Generator, error) {
	if provider, _ := cmd.Flags().GetString("llm"); provider != "" {
		app.cfg.LLM.Provider = provider
	}
	if m, _ := cmd.Flags().GetString("llm-model"); m != "" {
		app.cfg.LLM.Model = m
	}
	if noLLM, _ := cmd.Flags().GetBool("no-llm"); noLLM {
		app.cfg.LLM.Provider = ""
	}
	return app.newGenerator()
}

func printRun(run *model.SynthesisRun) {
	fmt.Println(run.SynthesisText)
	fmt.Println()

	fmt.Printf("Run: %s (%s, %s)\n", run.ID, run.Mode, run.FilterContext)
	if run.Generated {
		fmt.Println("Source: generated")
	} else {
		fmt.Println("Source: template fallback")
	}
	if run.CoverageRate != nil {
		fmt.Printf("Coverage: %.0f%% of evidence cited\n", *run.CoverageRate*100)
	}
	if len(run.Citations) > 0 {
		fmt.Println("Citations:")
		for _, c := range run.Citations {
			loc := c.NoteTitle
			if c.FolderName != "" {
				loc = c.FolderName + "/" + c.NoteTitle
			}
			fmt.Printf("  [%s] %s: %s\n", c.Key, loc, c.ContextSnippet)
		}
	}
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal JSON: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func init() {
	synthesizeCmd.Flags().String("mode", "definition", "Synthesis mode: definition, comparative, critical")
	synthesizeCmd.Flags().String("folder", "", "Restrict evidence to a folder (by name)")
	synthesizeCmd.Flags().String("thinker", "", "Restrict evidence to notes mentioning a thinker (by name)")
	synthesizeCmd.Flags().String("from", "", "Restrict to notes updated on or after this date (2006-01-02)")
	synthesizeCmd.Flags().String("to", "", "Restrict to notes updated on or before this date (2006-01-02)")
	synthesizeCmd.Flags().String("llm", "", "Generator provider: openai, anthropic, ollama")
	synthesizeCmd.Flags().String("llm-model", "", "Generator model override")
	synthesizeCmd.Flags().Bool("no-llm", false, "Force the deterministic template")
	synthesizeCmd.Flags().String("json", "", "Also write the run as JSON to this path")

	rootCmd.AddCommand(synthesizeCmd)
}
