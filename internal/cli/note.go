package cli

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var noteCmd = &cobra.Command{
	Use:   "note",
	Short: "Manage notes",
	Long: `Manage the notes the term index is built over. Every mutation
rescans the affected note so its occurrences and thinker mentions
stay current.`,
}

// readContentArg reads note content: literal text, or stdin when "-".
func readContentArg(arg string) (string, error) {
	if arg != "-" {
		return arg, nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return string(data), nil
}

var noteAddCmd = &cobra.Command{
	Use:   "add <title> <content>",
	Short: "Add a note and index it",
	Long: `Add a note and scan it for every active term. Pass "-" as the
content to read it from stdin.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openApp()
		if err != nil {
			return err
		}
		defer app.Close()

		content, err := readContentArg(args[1])
		if err != nil {
			return err
		}

		folderID := ""
		if folderName, _ := cmd.Flags().GetString("folder"); folderName != "" {
			folder, err := app.store.CreateFolder(folderName)
			if err != nil {
				return err
			}
			folderID = folder.ID
		}
		canvas, _ := cmd.Flags().GetBool("canvas")

		note, err := app.store.CreateNote(args[0], content, folderID, canvas)
		if err != nil {
			return err
		}
		count, err := app.index.RescanNote(note.ID)
		if err != nil {
			return err
		}
		fmt.Printf("✓ Added note %q (%s), %d occurrence(s) indexed\n", note.Title, note.ID, count)
		return nil
	},
}

var noteEditCmd = &cobra.Command{
	Use:   "edit <id> <content>",
	Short: "Replace a note's content and reindex it",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openApp()
		if err != nil {
			return err
		}
		defer app.Close()

		note, err := app.store.GetNote(args[0])
		if err != nil {
			return err
		}
		content, err := readContentArg(args[1])
		if err != nil {
			return err
		}

		title := note.Title
		if t, _ := cmd.Flags().GetString("title"); t != "" {
			title = t
		}
		if err := app.store.UpdateNoteContent(note.ID, title, content); err != nil {
			return err
		}
		count, err := app.index.RescanNote(note.ID)
		if err != nil {
			return err
		}
		fmt.Printf("✓ Updated note %s, %d occurrence(s) indexed\n", note.ID, count)
		return nil
	},
}

var noteMoveCmd = &cobra.Command{
	Use:   "move <id> <folder>",
	Short: "Move a note to a folder",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openApp()
		if err != nil {
			return err
		}
		defer app.Close()

		folder, err := app.store.CreateFolder(args[1])
		if err != nil {
			return err
		}
		if err := app.store.MoveNote(args[0], folder.ID); err != nil {
			return err
		}
		fmt.Printf("✓ Moved note %s to folder %q\n", args[0], folder.Name)
		return nil
	},
}

var noteListCmd = &cobra.Command{
	Use:   "list",
	Short: "List notes",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openApp()
		if err != nil {
			return err
		}
		defer app.Close()

		notes, err := app.store.ListNotes()
		if err != nil {
			return err
		}
		if len(notes) == 0 {
			fmt.Println("No notes yet. Add one with: noema note add <title> <content>")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tTITLE\tFOLDER\tCANVAS\tUPDATED")
		for _, n := range notes {
			folderName := ""
			if n.FolderID != "" {
				if folder, err := app.store.GetFolder(n.FolderID); err == nil {
					folderName = folder.Name
				}
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%v\t%s\n",
				n.ID, n.Title, folderName, n.IsCanvasNote, n.UpdatedAt.Format("2006-01-02 15:04"))
		}
		return w.Flush()
	},
}

var noteDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a note and its occurrences",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openApp()
		if err != nil {
			return err
		}
		defer app.Close()

		if err := app.store.DeleteNote(args[0]); err != nil {
			return err
		}
		fmt.Printf("✓ Deleted note %s\n", args[0])
		return nil
	},
}

var thinkerCmd = &cobra.Command{
	Use:   "thinker",
	Short: "Manage tracked thinkers",
}

var thinkerAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Register a thinker for mention detection",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openApp()
		if err != nil {
			return err
		}
		defer app.Close()

		thinker, err := app.store.CreateThinker(args[0])
		if err != nil {
			return err
		}
		fmt.Printf("✓ Thinker %q (%s)\n", thinker.Name, thinker.ID)
		fmt.Println("Run 'noema reindex' to detect mentions in existing notes.")
		return nil
	},
}

var thinkerListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tracked thinkers",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openApp()
		if err != nil {
			return err
		}
		defer app.Close()

		thinkers, err := app.store.ListThinkers()
		if err != nil {
			return err
		}
		if len(thinkers) == 0 {
			fmt.Println("No thinkers tracked yet.")
			return nil
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME")
		for _, t := range thinkers {
			fmt.Fprintf(w, "%s\t%s\n", t.ID, t.Name)
		}
		return w.Flush()
	},
}

func init() {
	noteAddCmd.Flags().String("folder", "", "Folder name (created if missing)")
	noteAddCmd.Flags().Bool("canvas", false, "Mark as a canvas note (excluded from scanning)")
	noteEditCmd.Flags().String("title", "", "New title (keeps current when empty)")

	noteCmd.AddCommand(noteAddCmd)
	noteCmd.AddCommand(noteEditCmd)
	noteCmd.AddCommand(noteMoveCmd)
	noteCmd.AddCommand(noteListCmd)
	noteCmd.AddCommand(noteDeleteCmd)

	thinkerCmd.AddCommand(thinkerAddCmd)
	thinkerCmd.AddCommand(thinkerListCmd)

	rootCmd.AddCommand(noteCmd)
	rootCmd.AddCommand(thinkerCmd)
}
