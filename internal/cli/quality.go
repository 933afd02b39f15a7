package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ppiankov/noema/internal/quality"
	"github.com/ppiankov/noema/internal/review"
)

var qualityCmd = &cobra.Command{
	Use:   "quality <term-id>",
	Short: "Assess the latest synthesis run for a term",
	Long: `Compare the term's most recent synthesis run against its full
current evidence: citation coverage, sentences asserting without a
citation, and excerpt pairs whose snippets carry contrastive
connectives. All signals are advisory.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openApp()
		if err != nil {
			return err
		}
		defer app.Close()

		assessor := quality.New(app.store, app.aggregator)
		report, err := assessor.Assess(args[0])
		if err != nil {
			return err
		}

		if jsonPath, _ := cmd.Flags().GetString("json"); jsonPath != "" {
			if err := writeJSON(jsonPath, report); err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "Report written to %s\n", jsonPath)
		}

		if report.RunID == "" {
			fmt.Println("No synthesis run yet; assessment covers evidence only.")
		} else {
			fmt.Printf("Run: %s\n", report.RunID)
		}
		fmt.Printf("Coverage: %.0f%% of evidence cited\n", report.CoverageRate*100)
		fmt.Printf("Uncertainty: %s\n", report.Uncertainty)

		if len(report.UnsupportedClaims) > 0 {
			fmt.Printf("\nUnsupported claims (%d):\n", len(report.UnsupportedClaims))
			for _, claim := range report.UnsupportedClaims {
				fmt.Printf("  - %s\n", claim)
			}
		}
		if len(report.ContradictionSignals) > 0 {
			fmt.Printf("\nContradiction signals (%d):\n", len(report.ContradictionSignals))
			for _, sig := range report.ContradictionSignals {
				fmt.Printf("  - %q: %s <> %s\n", sig.Connective, sig.LeftText, sig.RightText)
			}
		}
		return nil
	},
}

var reviewCmd = &cobra.Command{
	Use:   "review <term-id>",
	Short: "Record a graded review of a term",
	Long: `Record a spaced-repetition review. Grade 0-2 resets the schedule,
3-5 extends the interval.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openApp()
		if err != nil {
			return err
		}
		defer app.Close()

		grade, _ := cmd.Flags().GetInt("grade")
		svc := review.New(app.store)
		state, err := svc.ReviewTerm(args[0], grade)
		if err != nil {
			return err
		}

		fmt.Printf("✓ Reviewed term %s (grade %d)\n", args[0], grade)
		fmt.Printf("  Repetitions: %d, ease %.2f, next review in %d day(s) (%s)\n",
			state.Repetitions, state.EaseFactor, state.IntervalDays,
			state.DueAt.Format("2006-01-02"))
		return nil
	},
}

func init() {
	qualityCmd.Flags().String("json", "", "Also write the report as JSON to this path")
	rootCmd.AddCommand(qualityCmd)

	reviewCmd.Flags().Int("grade", 3, "Recall grade 0-5")
	rootCmd.AddCommand(reviewCmd)
}
