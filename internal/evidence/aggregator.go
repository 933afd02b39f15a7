// Package evidence builds the aggregated, filtered view of a term's
// occurrences: annotated excerpts, thinker and folder distributions, and
// co-occurring terms.
package evidence

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/ppiankov/noema/internal/model"
	"github.com/ppiankov/noema/internal/store"
)

// coTermCap bounds the co-occurring term list in an evidence map.
const coTermCap = 20

// Aggregator derives evidence maps from the occurrence store. Everything
// here is a read-time join over current state: nothing is cached, so note
// edits and mention refreshes are reflected immediately.
type Aggregator struct {
	store *store.Store
}

// New creates an aggregator over the given store.
func New(st *store.Store) *Aggregator {
	return &Aggregator{store: st}
}

// BuildEvidenceMap assembles the filtered evidence for a term. Filters are
// conjunctive; date bounds are inclusive against the note's last-updated
// timestamp. Returns model.ErrNotFound when the term does not exist.
func (a *Aggregator) BuildEvidenceMap(termID string, filter model.EvidenceFilter) (*model.EvidenceMap, error) {
	term, err := a.store.GetTerm(termID)
	if err != nil {
		return nil, fmt.Errorf("term %s: %w", termID, err)
	}

	rows, err := a.store.OccurrenceRowsForTerm(termID)
	if err != nil {
		return nil, err
	}

	dateFrom, dateTo, err := parseDateBounds(filter)
	if err != nil {
		return nil, err
	}

	rows = filterRows(rows, filter, dateFrom, dateTo)

	// Thinker filter needs the mention join before excerpts are final.
	mentionsByNote, err := a.mentionIndex(rows)
	if err != nil {
		return nil, err
	}
	if filter.ThinkerID != "" {
		kept := rows[:0]
		for _, r := range rows {
			if mentionsByNote.has(r.NoteID, filter.ThinkerID) {
				kept = append(kept, r)
			}
		}
		rows = kept
	}

	em := &model.EvidenceMap{
		TermID:    term.ID,
		TermName:  term.Name,
		ByThinker: make(map[string]int),
		ByFolder:  make(map[string]int),
	}

	noteIDs := make([]string, 0, len(rows))
	seenNotes := make(map[string]bool)
	for _, r := range rows {
		thinkers := mentionsByNote.names(r.NoteID)
		em.Excerpts = append(em.Excerpts, model.EvidenceExcerpt{
			OccurrenceID:   r.ID,
			NoteID:         r.NoteID,
			NoteTitle:      r.NoteTitle,
			FolderName:     r.FolderName,
			Thinkers:       thinkers,
			ContextSnippet: r.ContextSnippet,
			ParagraphIndex: r.ParagraphIndex,
			CharOffset:     r.CharOffset,
		})
		for _, name := range thinkers {
			em.ByThinker[name]++
		}
		em.ByFolder[folderBucket(r.FolderName)]++
		if !seenNotes[r.NoteID] {
			seenNotes[r.NoteID] = true
			noteIDs = append(noteIDs, r.NoteID)
		}
	}
	em.TotalCount = len(em.Excerpts)
	em.NoteCount = len(noteIDs)

	if em.CoTerms, err = a.store.CoTermNames(noteIDs, termID, coTermCap); err != nil {
		return nil, err
	}

	if em.FilterContext, err = a.describeFilter(filter); err != nil {
		return nil, err
	}

	return em, nil
}

// mentionIndex is the per-note mention lookup built for one map.
type mentionIndex map[string][]model.Mention

func (a *Aggregator) mentionIndex(rows []store.OccurrenceRow) (mentionIndex, error) {
	var noteIDs []string
	seen := make(map[string]bool)
	for _, r := range rows {
		if !seen[r.NoteID] {
			seen[r.NoteID] = true
			noteIDs = append(noteIDs, r.NoteID)
		}
	}

	mentions, err := a.store.MentionsForNotes(noteIDs)
	if err != nil {
		return nil, err
	}
	idx := make(mentionIndex)
	for _, m := range mentions {
		idx[m.NoteID] = append(idx[m.NoteID], m)
	}
	return idx, nil
}

func (idx mentionIndex) has(noteID, thinkerID string) bool {
	for _, m := range idx[noteID] {
		if m.ThinkerID == thinkerID {
			return true
		}
	}
	return false
}

// names returns the note's distinct thinker names, alphabetical. The store
// deduplicates (note, thinker) pairs, so each name appears once.
func (idx mentionIndex) names(noteID string) []string {
	ms := idx[noteID]
	if len(ms) == 0 {
		return nil
	}
	names := make([]string, len(ms))
	for i, m := range ms {
		names[i] = m.ThinkerName
	}
	sort.Strings(names)
	return names
}

func filterRows(rows []store.OccurrenceRow, filter model.EvidenceFilter, from, to time.Time) []store.OccurrenceRow {
	kept := rows[:0]
	for _, r := range rows {
		if filter.FolderID != "" && r.FolderID != filter.FolderID {
			continue
		}
		if !from.IsZero() && r.NoteUpdatedAt.Before(from) {
			continue
		}
		if !to.IsZero() && r.NoteUpdatedAt.After(to) {
			continue
		}
		kept = append(kept, r)
	}
	return kept
}

func parseDateBounds(filter model.EvidenceFilter) (from, to time.Time, err error) {
	if filter.DateFrom != "" {
		if from, err = parseDate(filter.DateFrom); err != nil {
			return from, to, fmt.Errorf("date_from: %w", err)
		}
	}
	if filter.DateTo != "" {
		if to, err = parseDate(filter.DateTo); err != nil {
			return from, to, fmt.Errorf("date_to: %w", err)
		}
		// Inclusive upper bound: cover the whole day.
		to = to.Add(24*time.Hour - time.Second)
	}
	return from, to, nil
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD or RFC3339)", s)
}

func folderBucket(name string) string {
	if name == "" {
		return "(unfiled)"
	}
	return name
}

// describeFilter renders a stable human-readable filter description,
// persisted on synthesis runs as filter_context.
func (a *Aggregator) describeFilter(filter model.EvidenceFilter) (string, error) {
	if filter.IsZero() {
		return "all notes", nil
	}
	var parts []string
	if filter.FolderID != "" {
		name := filter.FolderID
		if f, err := a.store.GetFolder(filter.FolderID); err == nil {
			name = f.Name
		}
		parts = append(parts, "folder="+name)
	}
	if filter.ThinkerID != "" {
		name := filter.ThinkerID
		if t, err := a.store.GetThinker(filter.ThinkerID); err == nil {
			name = t.Name
		}
		parts = append(parts, "thinker="+name)
	}
	if filter.DateFrom != "" {
		parts = append(parts, "from="+filter.DateFrom)
	}
	if filter.DateTo != "" {
		parts = append(parts, "to="+filter.DateTo)
	}
	return strings.Join(parts, "; "), nil
}
