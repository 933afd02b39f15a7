package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ppiankov/noema/internal/model"
)

var termCmd = &cobra.Command{
	Use:   "term",
	Short: "Manage tracked critical terms",
	Long: `Manage the catalog of critical terms whose occurrences are indexed
across notes. Term identity is case-insensitive: "Habit" and "habit"
are the same term.`,
}

var termAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a critical term and scan the corpus for it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openApp()
		if err != nil {
			return err
		}
		defer app.Close()

		description, _ := cmd.Flags().GetString("description")
		term, created, err := app.store.CreateTerm(args[0], description)
		if err != nil {
			return err
		}
		if !created {
			fmt.Printf("Term already exists: %s (%s)\n", term.Name, term.ID)
			return nil
		}

		count, err := app.index.RescanTerm(term.ID)
		if err != nil {
			return fmt.Errorf("scan for %q: %w", term.Name, err)
		}
		fmt.Printf("✓ Added term %q (%s), %d occurrence(s) indexed\n", term.Name, term.ID, count)
		return nil
	},
}

var termListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tracked terms",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openApp()
		if err != nil {
			return err
		}
		defer app.Close()

		all, _ := cmd.Flags().GetBool("all")
		var terms []model.CriticalTerm
		if all {
			terms, err = app.store.ListTerms()
		} else {
			terms, err = app.store.ListActiveTerms()
		}
		if err != nil {
			return err
		}
		if len(terms) == 0 {
			fmt.Println("No terms tracked yet. Add one with: noema term add <name>")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tACTIVE\tDESCRIPTION")
		for _, t := range terms {
			fmt.Fprintf(w, "%s\t%s\t%v\t%s\n", t.ID, t.Name, t.IsActive, t.Description)
		}
		return w.Flush()
	},
}

var termRenameCmd = &cobra.Command{
	Use:   "rename <id> <new-name>",
	Short: "Rename a term and rescan its occurrences",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openApp()
		if err != nil {
			return err
		}
		defer app.Close()

		if err := app.store.RenameTerm(args[0], args[1]); err != nil {
			return err
		}
		count, err := app.index.RescanTerm(args[0])
		if err != nil {
			return err
		}
		fmt.Printf("✓ Renamed term %s to %q, %d occurrence(s) indexed\n",
			args[0], model.NormalizeTermName(args[1]), count)
		return nil
	},
}

var termMergeCmd = &cobra.Command{
	Use:   "merge <winner-id> <loser-id>",
	Short: "Merge one term into another",
	Long: `Merge the loser term into the winner. The loser's name becomes an
approved alias of the winner, its proposed aliases move to the winner,
and its occurrence index is dropped. The winner is rescanned so the
loser's old matches reappear under the winner.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openApp()
		if err != nil {
			return err
		}
		defer app.Close()

		if err := app.store.MergeTerms(args[0], args[1]); err != nil {
			return err
		}
		count, err := app.index.RescanTerm(args[0])
		if err != nil {
			return err
		}
		fmt.Printf("✓ Merged %s into %s, %d occurrence(s) indexed\n", args[1], args[0], count)
		return nil
	},
}

var termActivateCmd = &cobra.Command{
	Use:   "activate <id>",
	Short: "Reactivate a term and rescan it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openApp()
		if err != nil {
			return err
		}
		defer app.Close()

		if err := app.store.SetTermActive(args[0], true); err != nil {
			return err
		}
		count, err := app.index.RescanTerm(args[0])
		if err != nil {
			return err
		}
		fmt.Printf("✓ Activated term %s, %d occurrence(s) indexed\n", args[0], count)
		return nil
	},
}

var termDeactivateCmd = &cobra.Command{
	Use:   "deactivate <id>",
	Short: "Deactivate a term without deleting its history",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openApp()
		if err != nil {
			return err
		}
		defer app.Close()

		if err := app.store.SetTermActive(args[0], false); err != nil {
			return err
		}
		fmt.Printf("✓ Deactivated term %s\n", args[0])
		return nil
	},
}

var termDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a term, its aliases, occurrences, and run history",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openApp()
		if err != nil {
			return err
		}
		defer app.Close()

		if err := app.store.DeleteTerm(args[0]); err != nil {
			return err
		}
		fmt.Printf("✓ Deleted term %s\n", args[0])
		return nil
	},
}

var aliasCmd = &cobra.Command{
	Use:   "alias",
	Short: "Manage term aliases",
	Long: `Manage alternate names for terms. A proposed alias has no effect on
scanning until it is approved; approval adds it as a scan key and
rescans the term.`,
}

var aliasProposeCmd = &cobra.Command{
	Use:   "propose <term-id> <name>",
	Short: "Propose an alias for a term",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openApp()
		if err != nil {
			return err
		}
		defer app.Close()

		alias, err := app.store.ProposeAlias(args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Printf("✓ Proposed alias %q (%s) for term %s\n", alias.Name, alias.ID, alias.TermID)
		return nil
	},
}

var aliasApproveCmd = &cobra.Command{
	Use:   "approve <alias-id>",
	Short: "Approve an alias and rescan its term",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openApp()
		if err != nil {
			return err
		}
		defer app.Close()

		alias, err := app.store.GetAlias(args[0])
		if err != nil {
			return err
		}
		if err := app.store.ResolveAlias(args[0], model.AliasApproved); err != nil {
			return err
		}
		count, err := app.index.RescanTerm(alias.TermID)
		if err != nil {
			return err
		}
		fmt.Printf("✓ Approved alias %q, %d occurrence(s) indexed\n", alias.Name, count)
		return nil
	},
}

var aliasRejectCmd = &cobra.Command{
	Use:   "reject <alias-id>",
	Short: "Reject a proposed alias",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openApp()
		if err != nil {
			return err
		}
		defer app.Close()

		if err := app.store.ResolveAlias(args[0], model.AliasRejected); err != nil {
			return err
		}
		fmt.Printf("✓ Rejected alias %s\n", args[0])
		return nil
	},
}

var aliasListCmd = &cobra.Command{
	Use:   "list <term-id>",
	Short: "List aliases of a term",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openApp()
		if err != nil {
			return err
		}
		defer app.Close()

		aliases, err := app.store.ListAliases(args[0])
		if err != nil {
			return err
		}
		if len(aliases) == 0 {
			fmt.Println("No aliases.")
			return nil
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tSTATUS")
		for _, a := range aliases {
			fmt.Fprintf(w, "%s\t%s\t%s\n", a.ID, a.Name, a.Status)
		}
		return w.Flush()
	},
}

func init() {
	termAddCmd.Flags().String("description", "", "Optional gloss for the term")
	termListCmd.Flags().Bool("all", false, "Include deactivated terms")

	termCmd.AddCommand(termAddCmd)
	termCmd.AddCommand(termListCmd)
	termCmd.AddCommand(termRenameCmd)
	termCmd.AddCommand(termMergeCmd)
	termCmd.AddCommand(termActivateCmd)
	termCmd.AddCommand(termDeactivateCmd)
	termCmd.AddCommand(termDeleteCmd)

	aliasCmd.AddCommand(aliasProposeCmd)
	aliasCmd.AddCommand(aliasApproveCmd)
	aliasCmd.AddCommand(aliasRejectCmd)
	aliasCmd.AddCommand(aliasListCmd)
	termCmd.AddCommand(aliasCmd)

	rootCmd.AddCommand(termCmd)
}
