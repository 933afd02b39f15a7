package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ppiankov/noema/internal/worker"
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Rescan a single note or term",
	Long: `Rescan one note against every active term, or one term against
every scannable note. Each rescan fully replaces the previous
occurrence index for its target.`,
}

var scanNoteCmd = &cobra.Command{
	Use:   "note <note-id>",
	Short: "Rescan one note against all active terms",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openApp()
		if err != nil {
			return err
		}
		defer app.Close()

		count, err := app.index.RescanNote(args[0])
		if err != nil {
			return err
		}
		fmt.Printf("✓ Note %s: %d occurrence(s) indexed\n", args[0], count)
		return nil
	},
}

var scanTermCmd = &cobra.Command{
	Use:   "term <term-id>",
	Short: "Rescan one term across all scannable notes",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openApp()
		if err != nil {
			return err
		}
		defer app.Close()

		count, err := app.index.RescanTerm(args[0])
		if err != nil {
			return err
		}
		fmt.Printf("✓ Term %s: %d occurrence(s) indexed\n", args[0], count)
		return nil
	},
}

var reindexCmd = &cobra.Command{
	Use:   "reindex",
	Short: "Rescan the whole corpus",
	Long: `Rescan every note against every active term using a worker pool.
Use after importing notes or adding thinkers in bulk.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openApp()
		if err != nil {
			return err
		}
		defer app.Close()

		workers, _ := cmd.Flags().GetInt("workers")
		if workers <= 0 {
			workers = app.cfg.Concurrency.ReindexWorkers
		}

		notes, err := app.store.ListNotes()
		if err != nil {
			return err
		}
		noteIDs := make([]string, len(notes))
		for i, n := range notes {
			noteIDs[i] = n.ID
		}

		if app.cfg.Output.Verbose {
			fmt.Fprintf(os.Stderr, "Reindexing %d note(s) with %d worker(s)\n", len(noteIDs), workers)
		}

		reindexer := worker.NewReindexer(app.index, workers)
		results := reindexer.ProcessNotes(cmd.Context(), noteIDs)

		total, failed := 0, 0
		for _, r := range results {
			if r.Error != nil {
				failed++
				fmt.Fprintf(os.Stderr, "Warning: note %s: %v\n", r.NoteID, r.Error)
				continue
			}
			total += r.Count
			if app.cfg.Output.Verbose {
				fmt.Fprintf(os.Stderr, "  %s: %d occurrence(s)\n", r.NoteID, r.Count)
			}
		}

		fmt.Printf("✓ Reindexed %d note(s): %d occurrence(s), %d failure(s)\n",
			len(noteIDs)-failed, total, failed)
		if failed > 0 {
			return fmt.Errorf("%d note(s) failed to reindex", failed)
		}
		return nil
	},
}

func init() {
	scanCmd.AddCommand(scanNoteCmd)
	scanCmd.AddCommand(scanTermCmd)
	rootCmd.AddCommand(scanCmd)

	reindexCmd.Flags().Int("workers", 0, "Worker count (defaults to config)")
	rootCmd.AddCommand(reindexCmd)
}
