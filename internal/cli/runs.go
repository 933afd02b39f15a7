package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var runsCmd = &cobra.Command{
	Use:   "runs <term-id>",
	Short: "List a term's synthesis run history",
	Long: `List synthesis runs for a term, newest first. Runs are append-only:
history is never rewritten by later syntheses. Use --show to print
one run in full.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openApp()
		if err != nil {
			return err
		}
		defer app.Close()

		if runID, _ := cmd.Flags().GetString("show"); runID != "" {
			run, err := app.store.GetRun(runID)
			if err != nil {
				return err
			}
			printRun(run)
			return nil
		}

		summaries, err := app.store.ListRuns(args[0])
		if err != nil {
			return err
		}
		if len(summaries) == 0 {
			fmt.Println("No synthesis runs for this term yet.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tMODE\tFILTER\tCOVERAGE\tCITATIONS\tCREATED")
		for _, s := range summaries {
			coverage := "-"
			if s.CoverageRate != nil {
				coverage = fmt.Sprintf("%.0f%%", *s.CoverageRate*100)
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\n",
				s.ID, s.Mode, s.FilterContext, coverage, s.CitationCount,
				s.CreatedAt.Format("2006-01-02 15:04"))
		}
		return w.Flush()
	},
}

func init() {
	runsCmd.Flags().String("show", "", "Print one run in full (by run ID)")
	rootCmd.AddCommand(runsCmd)
}
