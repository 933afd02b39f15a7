// Package index maintains the occurrence table: idempotent full-replace
// rescans of a term across the corpus or of a note across all terms.
package index

import (
	"fmt"
	"strings"

	"github.com/ppiankov/noema/internal/model"
	"github.com/ppiankov/noema/internal/scan"
	"github.com/ppiankov/noema/internal/store"
)

// Index is the evidence index over the occurrence store. There is no
// partial occurrence state: every rescan deletes and regenerates the whole
// set for its term or note inside one transaction.
type Index struct {
	store   *store.Store
	scanner *scan.Scanner
}

// New creates an index over the given store and scanner.
func New(st *store.Store, scanner *scan.Scanner) *Index {
	return &Index{store: st, scanner: scanner}
}

// RescanTerm replaces every occurrence of the term across all scannable
// notes. Used after term create, rename, alias approval, or merge. Returns
// the occurrence count written.
func (ix *Index) RescanTerm(termID string) (int, error) {
	term, err := ix.store.GetTerm(termID)
	if err != nil {
		return 0, fmt.Errorf("rescan term: %w", err)
	}
	keys, err := ix.termKeys(term)
	if err != nil {
		return 0, err
	}

	notes, err := ix.store.ListActiveNotes()
	if err != nil {
		return 0, fmt.Errorf("list notes: %w", err)
	}

	var occs []model.TermOccurrence
	for _, note := range notes {
		occs = append(occs, toOccurrences(ix.scanner.Scan(note.Content, keys), note.ID)...)
	}
	return ix.store.ReplaceTermOccurrences(termID, occs)
}

// RescanNote replaces every occurrence inside the note, across all active
// terms, and refreshes the note's thinker mentions. Canvas notes and notes
// with empty content come out with zero occurrences and zero mentions.
// Used after note create or edit. Returns the occurrence count written.
func (ix *Index) RescanNote(noteID string) (int, error) {
	note, err := ix.store.GetNote(noteID)
	if err != nil {
		return 0, fmt.Errorf("rescan note: %w", err)
	}

	var occs []model.TermOccurrence
	var thinkerIDs []string
	if scannable(note) {
		terms, err := ix.store.ListActiveTerms()
		if err != nil {
			return 0, fmt.Errorf("list terms: %w", err)
		}
		var keys []scan.Key
		for i := range terms {
			tk, err := ix.termKeys(&terms[i])
			if err != nil {
				return 0, err
			}
			keys = append(keys, tk...)
		}

		plain := scan.RenderPlainText(note.Content)
		occs = toOccurrences(ix.scanner.ScanText(plain, keys), note.ID)
		if thinkerIDs, err = ix.matchThinkers(plain); err != nil {
			return 0, err
		}
	}

	n, err := ix.store.ReplaceNoteOccurrences(noteID, occs)
	if err != nil {
		return 0, err
	}
	if err := ix.store.ReplaceMentions(noteID, thinkerIDs); err != nil {
		return n, fmt.Errorf("refresh mentions: %w", err)
	}
	return n, nil
}

// termKeys builds the scan keys for a term: its canonical name plus every
// approved alias, deduplicated by name.
func (ix *Index) termKeys(term *model.CriticalTerm) ([]scan.Key, error) {
	keys := []scan.Key{{ID: term.ID, Name: term.Name}}
	aliases, err := ix.store.ApprovedAliasNames(term.ID)
	if err != nil {
		return nil, fmt.Errorf("aliases for %s: %w", term.ID, err)
	}
	seen := map[string]bool{term.Name: true}
	for _, name := range aliases {
		if seen[name] {
			continue
		}
		seen[name] = true
		keys = append(keys, scan.Key{ID: term.ID, Name: name})
	}
	return keys, nil
}

// matchThinkers finds the distinct thinkers whose names occur whole-word in
// the plain text.
func (ix *Index) matchThinkers(plain string) ([]string, error) {
	thinkers, err := ix.store.ListThinkers()
	if err != nil {
		return nil, fmt.Errorf("list thinkers: %w", err)
	}
	var keys []scan.Key
	for _, t := range thinkers {
		keys = append(keys, scan.Key{ID: t.ID, Name: model.NormalizeTermName(t.Name)})
	}

	var ids []string
	seen := make(map[string]bool)
	for _, m := range ix.scanner.ScanText(plain, keys) {
		if !seen[m.KeyID] {
			seen[m.KeyID] = true
			ids = append(ids, m.KeyID)
		}
	}
	return ids, nil
}

func scannable(note *model.Note) bool {
	return !note.IsCanvasNote && strings.TrimSpace(note.Content) != ""
}

func toOccurrences(matches []scan.Match, noteID string) []model.TermOccurrence {
	var occs []model.TermOccurrence
	for _, m := range matches {
		occs = append(occs, model.TermOccurrence{
			TermID:         m.KeyID,
			NoteID:         noteID,
			ContextSnippet: m.Snippet,
			ParagraphIndex: m.ParagraphIndex,
			CharOffset:     m.CharOffset,
		})
	}
	return occs
}
