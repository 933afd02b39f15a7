package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/ppiankov/noema/internal/model"
)

// CreateNote inserts a note. folderID may be empty.
func (s *Store) CreateNote(title, content, folderID string, isCanvas bool) (*model.Note, error) {
	now := nowUTC()
	n := &model.Note{
		ID:           uuid.NewString(),
		Title:        title,
		Content:      content,
		FolderID:     folderID,
		IsCanvasNote: isCanvas,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	_, err := s.db.Exec(
		`INSERT INTO notes (id, title, content, folder_id, is_canvas_note, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		n.ID, n.Title, n.Content, nullable(n.FolderID), n.IsCanvasNote, n.CreatedAt, n.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert note: %w", err)
	}
	return n, nil
}

// GetNote fetches a note by id. Returns model.ErrNotFound if absent.
func (s *Store) GetNote(id string) (*model.Note, error) {
	var n model.Note
	var folderID sql.NullString
	err := s.db.QueryRow(
		`SELECT id, title, content, folder_id, is_canvas_note, created_at, updated_at FROM notes WHERE id = ?`, id,
	).Scan(&n.ID, &n.Title, &n.Content, &folderID, &n.IsCanvasNote, &n.CreatedAt, &n.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan note: %w", err)
	}
	n.FolderID = folderID.String
	return &n, nil
}

// UpdateNoteContent replaces a note's title and content. The caller is
// expected to rescan the note afterwards.
func (s *Store) UpdateNoteContent(id, title, content string) error {
	res, err := s.db.Exec(
		`UPDATE notes SET title = ?, content = ?, updated_at = ? WHERE id = ?`,
		title, content, nowUTC(), id,
	)
	if err != nil {
		return fmt.Errorf("update note: %w", err)
	}
	return requireRow(res)
}

// MoveNote reassigns a note's folder. Empty folderID clears it.
func (s *Store) MoveNote(id, folderID string) error {
	res, err := s.db.Exec(
		`UPDATE notes SET folder_id = ?, updated_at = ? WHERE id = ?`,
		nullable(folderID), nowUTC(), id,
	)
	if err != nil {
		return fmt.Errorf("move note: %w", err)
	}
	return requireRow(res)
}

// DeleteNote removes a note; occurrences and mentions cascade.
func (s *Store) DeleteNote(id string) error {
	res, err := s.db.Exec(`DELETE FROM notes WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete note: %w", err)
	}
	return requireRow(res)
}

// ListNotes returns all notes, newest first.
func (s *Store) ListNotes() ([]model.Note, error) {
	return s.queryNotes(`SELECT id, title, content, folder_id, is_canvas_note, created_at, updated_at FROM notes ORDER BY updated_at DESC`)
}

// ListActiveNotes returns the notes eligible for term scanning: non-canvas
// with non-empty content.
func (s *Store) ListActiveNotes() ([]model.Note, error) {
	notes, err := s.queryNotes(
		`SELECT id, title, content, folder_id, is_canvas_note, created_at, updated_at FROM notes WHERE is_canvas_note = 0 ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	active := notes[:0]
	for _, n := range notes {
		if strings.TrimSpace(n.Content) != "" {
			active = append(active, n)
		}
	}
	return active, nil
}

func (s *Store) queryNotes(query string, args ...any) ([]model.Note, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query notes: %w", err)
	}
	defer rows.Close()

	var notes []model.Note
	for rows.Next() {
		var n model.Note
		var folderID sql.NullString
		if err := rows.Scan(&n.ID, &n.Title, &n.Content, &folderID, &n.IsCanvasNote, &n.CreatedAt, &n.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan note row: %w", err)
		}
		n.FolderID = folderID.String
		notes = append(notes, n)
	}
	return notes, rows.Err()
}

// CreateFolder inserts a folder, returning the existing one on a name hit.
func (s *Store) CreateFolder(name string) (*model.Folder, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("folder name is empty")
	}
	if existing, err := s.GetFolderByName(name); err == nil {
		return existing, nil
	} else if !errors.Is(err, model.ErrNotFound) {
		return nil, err
	}

	f := &model.Folder{ID: uuid.NewString(), Name: name}
	if _, err := s.db.Exec(`INSERT INTO folders (id, name) VALUES (?, ?)`, f.ID, f.Name); err != nil {
		return nil, fmt.Errorf("insert folder: %w", err)
	}
	return f, nil
}

// GetFolder fetches a folder by id.
func (s *Store) GetFolder(id string) (*model.Folder, error) {
	var f model.Folder
	err := s.db.QueryRow(`SELECT id, name FROM folders WHERE id = ?`, id).Scan(&f.ID, &f.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan folder: %w", err)
	}
	return &f, nil
}

// GetFolderByName fetches a folder by exact name.
func (s *Store) GetFolderByName(name string) (*model.Folder, error) {
	var f model.Folder
	err := s.db.QueryRow(`SELECT id, name FROM folders WHERE name = ?`, name).Scan(&f.ID, &f.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan folder: %w", err)
	}
	return &f, nil
}

// CreateThinker inserts a thinker, returning the existing one on a name hit.
func (s *Store) CreateThinker(name string) (*model.Thinker, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("thinker name is empty")
	}
	var existing model.Thinker
	err := s.db.QueryRow(`SELECT id, name FROM thinkers WHERE name = ?`, name).Scan(&existing.ID, &existing.Name)
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("lookup thinker: %w", err)
	}

	t := &model.Thinker{ID: uuid.NewString(), Name: name}
	if _, err := s.db.Exec(`INSERT INTO thinkers (id, name) VALUES (?, ?)`, t.ID, t.Name); err != nil {
		return nil, fmt.Errorf("insert thinker: %w", err)
	}
	return t, nil
}

// GetThinkerByName fetches a thinker by exact name.
func (s *Store) GetThinkerByName(name string) (*model.Thinker, error) {
	var t model.Thinker
	err := s.db.QueryRow(`SELECT id, name FROM thinkers WHERE name = ?`, strings.TrimSpace(name)).Scan(&t.ID, &t.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan thinker: %w", err)
	}
	return &t, nil
}

// GetThinker fetches a thinker by id.
func (s *Store) GetThinker(id string) (*model.Thinker, error) {
	var t model.Thinker
	err := s.db.QueryRow(`SELECT id, name FROM thinkers WHERE id = ?`, id).Scan(&t.ID, &t.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan thinker: %w", err)
	}
	return &t, nil
}

// ListThinkers returns all thinkers ordered by name.
func (s *Store) ListThinkers() ([]model.Thinker, error) {
	rows, err := s.db.Query(`SELECT id, name FROM thinkers ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("query thinkers: %w", err)
	}
	defer rows.Close()

	var thinkers []model.Thinker
	for rows.Next() {
		var t model.Thinker
		if err := rows.Scan(&t.ID, &t.Name); err != nil {
			return nil, fmt.Errorf("scan thinker row: %w", err)
		}
		thinkers = append(thinkers, t)
	}
	return thinkers, rows.Err()
}

// ReplaceMentions replaces a note's full mention set. Duplicate thinker ids
// collapse to a single row.
func (s *Store) ReplaceMentions(noteID string, thinkerIDs []string) error {
	return s.withTx(func(tx *sql.Tx) error {
		if _, err := tx.Exec(`DELETE FROM mentions WHERE note_id = ?`, noteID); err != nil {
			return fmt.Errorf("delete mentions: %w", err)
		}
		seen := make(map[string]bool, len(thinkerIDs))
		for _, id := range thinkerIDs {
			if seen[id] {
				continue
			}
			seen[id] = true
			if _, err := tx.Exec(`INSERT INTO mentions (note_id, thinker_id) VALUES (?, ?)`, noteID, id); err != nil {
				return fmt.Errorf("insert mention: %w", err)
			}
		}
		return nil
	})
}

// MentionsForNotes returns the deduplicated (note, thinker) pairs for the
// given notes, with thinker names joined in.
func (s *Store) MentionsForNotes(noteIDs []string) ([]model.Mention, error) {
	if len(noteIDs) == 0 {
		return nil, nil
	}
	query := fmt.Sprintf(
		`SELECT m.note_id, m.thinker_id, t.name
		 FROM mentions m JOIN thinkers t ON t.id = m.thinker_id
		 WHERE m.note_id IN (%s)
		 ORDER BY m.note_id, t.name`,
		placeholders(len(noteIDs)))
	rows, err := s.db.Query(query, toAnySlice(noteIDs)...)
	if err != nil {
		return nil, fmt.Errorf("query mentions: %w", err)
	}
	defer rows.Close()

	var mentions []model.Mention
	for rows.Next() {
		var m model.Mention
		if err := rows.Scan(&m.NoteID, &m.ThinkerID, &m.ThinkerName); err != nil {
			return nil, fmt.Errorf("scan mention row: %w", err)
		}
		mentions = append(mentions, m)
	}
	return mentions, rows.Err()
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func toAnySlice(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
