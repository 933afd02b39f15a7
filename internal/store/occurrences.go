package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ppiankov/noema/internal/model"
)

// OccurrenceRow is an occurrence joined with the note metadata the
// aggregator needs: title, folder, last-updated timestamp.
type OccurrenceRow struct {
	model.TermOccurrence
	NoteTitle     string
	FolderID      string
	FolderName    string
	NoteUpdatedAt time.Time
}

// ReplaceTermOccurrences replaces every occurrence of the term across all
// notes with the given set, atomically. Returns the number written.
func (s *Store) ReplaceTermOccurrences(termID string, occs []model.TermOccurrence) (int, error) {
	err := s.withTx(func(tx *sql.Tx) error {
		if _, err := tx.Exec(`DELETE FROM occurrences WHERE term_id = ?`, termID); err != nil {
			return fmt.Errorf("delete term occurrences: %w", err)
		}
		return insertOccurrences(tx, occs)
	})
	if err != nil {
		return 0, err
	}
	return len(occs), nil
}

// ReplaceNoteOccurrences replaces every occurrence inside the note, across
// all terms, with the given set, atomically. Returns the number written.
func (s *Store) ReplaceNoteOccurrences(noteID string, occs []model.TermOccurrence) (int, error) {
	err := s.withTx(func(tx *sql.Tx) error {
		if _, err := tx.Exec(`DELETE FROM occurrences WHERE note_id = ?`, noteID); err != nil {
			return fmt.Errorf("delete note occurrences: %w", err)
		}
		return insertOccurrences(tx, occs)
	})
	if err != nil {
		return 0, err
	}
	return len(occs), nil
}

func insertOccurrences(tx *sql.Tx, occs []model.TermOccurrence) error {
	now := nowUTC()
	for i := range occs {
		o := &occs[i]
		if o.ID == "" {
			o.ID = uuid.NewString()
		}
		if o.CreatedAt.IsZero() {
			o.CreatedAt = now
		}
		if _, err := tx.Exec(
			`INSERT INTO occurrences (id, term_id, note_id, context_snippet, paragraph_index, char_offset, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			o.ID, o.TermID, o.NoteID, o.ContextSnippet, o.ParagraphIndex, o.CharOffset, o.CreatedAt,
		); err != nil {
			return fmt.Errorf("insert occurrence: %w", err)
		}
	}
	return nil
}

// OccurrencesForTerm returns the term's occurrences in (note, offset) order.
func (s *Store) OccurrencesForTerm(termID string) ([]model.TermOccurrence, error) {
	rows, err := s.db.Query(
		`SELECT id, term_id, note_id, context_snippet, paragraph_index, char_offset, created_at
		 FROM occurrences WHERE term_id = ? ORDER BY note_id, char_offset`, termID)
	if err != nil {
		return nil, fmt.Errorf("query occurrences: %w", err)
	}
	defer rows.Close()

	var occs []model.TermOccurrence
	for rows.Next() {
		var o model.TermOccurrence
		if err := rows.Scan(&o.ID, &o.TermID, &o.NoteID, &o.ContextSnippet, &o.ParagraphIndex, &o.CharOffset, &o.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan occurrence row: %w", err)
		}
		occs = append(occs, o)
	}
	return occs, rows.Err()
}

// OccurrencesForNote returns the note's occurrences across all terms.
func (s *Store) OccurrencesForNote(noteID string) ([]model.TermOccurrence, error) {
	rows, err := s.db.Query(
		`SELECT id, term_id, note_id, context_snippet, paragraph_index, char_offset, created_at
		 FROM occurrences WHERE note_id = ? ORDER BY char_offset`, noteID)
	if err != nil {
		return nil, fmt.Errorf("query occurrences: %w", err)
	}
	defer rows.Close()

	var occs []model.TermOccurrence
	for rows.Next() {
		var o model.TermOccurrence
		if err := rows.Scan(&o.ID, &o.TermID, &o.NoteID, &o.ContextSnippet, &o.ParagraphIndex, &o.CharOffset, &o.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan occurrence row: %w", err)
		}
		occs = append(occs, o)
	}
	return occs, rows.Err()
}

// OccurrenceRowsForTerm returns the term's occurrences joined with their
// note metadata, in deterministic (note, offset) order. The folder name is
// a read-time join: it reflects where the note lives now.
func (s *Store) OccurrenceRowsForTerm(termID string) ([]OccurrenceRow, error) {
	rows, err := s.db.Query(
		`SELECT o.id, o.term_id, o.note_id, o.context_snippet, o.paragraph_index, o.char_offset, o.created_at,
		        n.title, COALESCE(n.folder_id, ''), COALESCE(f.name, ''), n.updated_at
		 FROM occurrences o
		 JOIN notes n ON n.id = o.note_id
		 LEFT JOIN folders f ON f.id = n.folder_id
		 WHERE o.term_id = ?
		 ORDER BY o.note_id, o.char_offset`, termID)
	if err != nil {
		return nil, fmt.Errorf("query occurrence rows: %w", err)
	}
	defer rows.Close()

	var out []OccurrenceRow
	for rows.Next() {
		var r OccurrenceRow
		if err := rows.Scan(
			&r.ID, &r.TermID, &r.NoteID, &r.ContextSnippet, &r.ParagraphIndex, &r.CharOffset, &r.CreatedAt,
			&r.NoteTitle, &r.FolderID, &r.FolderName, &r.NoteUpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan occurrence row: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// CoTermNames returns the distinct names of other terms occurring in any of
// the given notes, alphabetical, capped at limit.
func (s *Store) CoTermNames(noteIDs []string, excludeTermID string, limit int) ([]string, error) {
	if len(noteIDs) == 0 || limit <= 0 {
		return nil, nil
	}
	query := fmt.Sprintf(
		`SELECT DISTINCT t.name
		 FROM occurrences o JOIN terms t ON t.id = o.term_id
		 WHERE o.note_id IN (%s) AND o.term_id != ?
		 ORDER BY t.name LIMIT ?`,
		placeholders(len(noteIDs)))
	args := append(toAnySlice(noteIDs), excludeTermID, limit)
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query co-terms: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan co-term: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}
