package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/ppiankov/noema/internal/model"
)

// CreateTerm creates a term with the normalized form of name. Identity is
// case-insensitive: if a term with the same normalized name already exists,
// the existing term is returned and created is false.
func (s *Store) CreateTerm(name, description string) (term *model.CriticalTerm, created bool, err error) {
	normalized := model.NormalizeTermName(name)
	if normalized == "" {
		return nil, false, fmt.Errorf("term name is empty")
	}

	if existing, err := s.GetTermByName(normalized); err == nil {
		return existing, false, nil
	} else if !errors.Is(err, model.ErrNotFound) {
		return nil, false, err
	}

	now := nowUTC()
	t := &model.CriticalTerm{
		ID:          uuid.NewString(),
		Name:        normalized,
		Description: description,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	_, err = s.db.Exec(
		`INSERT INTO terms (id, name, description, is_active, created_at, updated_at) VALUES (?, ?, ?, 1, ?, ?)`,
		t.ID, t.Name, t.Description, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return nil, false, fmt.Errorf("insert term: %w", err)
	}
	return t, true, nil
}

// GetTerm fetches a term by id. Returns model.ErrNotFound if absent.
func (s *Store) GetTerm(id string) (*model.CriticalTerm, error) {
	return s.scanTerm(s.db.QueryRow(
		`SELECT id, name, description, is_active, created_at, updated_at FROM terms WHERE id = ?`, id))
}

// GetTermByName fetches a term by its normalized name.
func (s *Store) GetTermByName(name string) (*model.CriticalTerm, error) {
	return s.scanTerm(s.db.QueryRow(
		`SELECT id, name, description, is_active, created_at, updated_at FROM terms WHERE name = ?`,
		model.NormalizeTermName(name)))
}

func (s *Store) scanTerm(row *sql.Row) (*model.CriticalTerm, error) {
	var t model.CriticalTerm
	err := row.Scan(&t.ID, &t.Name, &t.Description, &t.IsActive, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan term: %w", err)
	}
	return &t, nil
}

// ListTerms returns all terms ordered by name.
func (s *Store) ListTerms() ([]model.CriticalTerm, error) {
	return s.queryTerms(`SELECT id, name, description, is_active, created_at, updated_at FROM terms ORDER BY name`)
}

// ListActiveTerms returns active terms ordered by name. These are the terms
// a note rescan matches against.
func (s *Store) ListActiveTerms() ([]model.CriticalTerm, error) {
	return s.queryTerms(`SELECT id, name, description, is_active, created_at, updated_at FROM terms WHERE is_active = 1 ORDER BY name`)
}

func (s *Store) queryTerms(query string, args ...any) ([]model.CriticalTerm, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query terms: %w", err)
	}
	defer rows.Close()

	var terms []model.CriticalTerm
	for rows.Next() {
		var t model.CriticalTerm
		if err := rows.Scan(&t.ID, &t.Name, &t.Description, &t.IsActive, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan term row: %w", err)
		}
		terms = append(terms, t)
	}
	return terms, rows.Err()
}

// RenameTerm sets a new canonical name (normalized). The caller is expected
// to rescan the term afterwards so its occurrences track the new name.
func (s *Store) RenameTerm(id, newName string) error {
	normalized := model.NormalizeTermName(newName)
	if normalized == "" {
		return fmt.Errorf("term name is empty")
	}
	res, err := s.db.Exec(`UPDATE terms SET name = ?, updated_at = ? WHERE id = ?`, normalized, nowUTC(), id)
	if err != nil {
		return fmt.Errorf("rename term: %w", err)
	}
	return requireRow(res)
}

// SetTermActive toggles whether the term participates in corpus rescans.
func (s *Store) SetTermActive(id string, active bool) error {
	res, err := s.db.Exec(`UPDATE terms SET is_active = ?, updated_at = ? WHERE id = ?`, active, nowUTC(), id)
	if err != nil {
		return fmt.Errorf("set term active: %w", err)
	}
	return requireRow(res)
}

// DeleteTerm removes a term; occurrences, aliases, runs, and review state
// cascade.
func (s *Store) DeleteTerm(id string) error {
	res, err := s.db.Exec(`DELETE FROM terms WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete term: %w", err)
	}
	return requireRow(res)
}

// MergeTerms folds loserID into winnerID: the loser's canonical name joins
// the winner as an approved alias, the loser's aliases are re-pointed at
// the winner as proposals, and the loser (with its occurrences and runs) is
// deleted. The caller is expected to rescan the winner afterwards.
func (s *Store) MergeTerms(winnerID, loserID string) error {
	if winnerID == loserID {
		return fmt.Errorf("cannot merge a term into itself")
	}
	winner, err := s.GetTerm(winnerID)
	if err != nil {
		return fmt.Errorf("winner: %w", err)
	}
	loser, err := s.GetTerm(loserID)
	if err != nil {
		return fmt.Errorf("loser: %w", err)
	}

	now := nowUTC()
	return s.withTx(func(tx *sql.Tx) error {
		// Loser aliases move to the winner, back to proposed for re-review.
		if _, err := tx.Exec(
			`UPDATE term_aliases SET term_id = ?, status = 'proposed', updated_at = ? WHERE term_id = ? AND name != ?`,
			winner.ID, now, loser.ID, winner.Name,
		); err != nil {
			return fmt.Errorf("move aliases: %w", err)
		}
		if _, err := tx.Exec(
			`INSERT INTO term_aliases (id, term_id, name, status, created_at, updated_at) VALUES (?, ?, ?, 'approved', ?, ?)`,
			uuid.NewString(), winner.ID, loser.Name, now, now,
		); err != nil {
			return fmt.Errorf("register merged name: %w", err)
		}
		if _, err := tx.Exec(`DELETE FROM terms WHERE id = ?`, loser.ID); err != nil {
			return fmt.Errorf("delete merged term: %w", err)
		}
		return nil
	})
}

// ProposeAlias records a proposed alternate name for a term.
func (s *Store) ProposeAlias(termID, name string) (*model.TermAlias, error) {
	if _, err := s.GetTerm(termID); err != nil {
		return nil, err
	}
	normalized := model.NormalizeTermName(name)
	if normalized == "" {
		return nil, fmt.Errorf("alias name is empty")
	}

	now := nowUTC()
	a := &model.TermAlias{
		ID:        uuid.NewString(),
		TermID:    termID,
		Name:      normalized,
		Status:    model.AliasProposed,
		CreatedAt: now,
		UpdatedAt: now,
	}
	_, err := s.db.Exec(
		`INSERT INTO term_aliases (id, term_id, name, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		a.ID, a.TermID, a.Name, a.Status, a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert alias: %w", err)
	}
	return a, nil
}

// GetAlias fetches an alias by id.
func (s *Store) GetAlias(id string) (*model.TermAlias, error) {
	var a model.TermAlias
	err := s.db.QueryRow(
		`SELECT id, term_id, name, status, created_at, updated_at FROM term_aliases WHERE id = ?`, id,
	).Scan(&a.ID, &a.TermID, &a.Name, &a.Status, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan alias: %w", err)
	}
	return &a, nil
}

// ResolveAlias transitions a proposed alias to approved or rejected. The
// transition happens at most once; resolved aliases are terminal.
func (s *Store) ResolveAlias(id string, status model.AliasStatus) error {
	if status != model.AliasApproved && status != model.AliasRejected {
		return fmt.Errorf("invalid alias resolution: %q", status)
	}
	a, err := s.GetAlias(id)
	if err != nil {
		return err
	}
	if a.Status != model.AliasProposed {
		return fmt.Errorf("alias %s already resolved as %s", id, a.Status)
	}
	_, err = s.db.Exec(`UPDATE term_aliases SET status = ?, updated_at = ? WHERE id = ?`, status, nowUTC(), id)
	if err != nil {
		return fmt.Errorf("resolve alias: %w", err)
	}
	return nil
}

// ListAliases returns a term's aliases, any status, oldest first.
func (s *Store) ListAliases(termID string) ([]model.TermAlias, error) {
	rows, err := s.db.Query(
		`SELECT id, term_id, name, status, created_at, updated_at FROM term_aliases WHERE term_id = ? ORDER BY created_at`, termID)
	if err != nil {
		return nil, fmt.Errorf("query aliases: %w", err)
	}
	defer rows.Close()

	var aliases []model.TermAlias
	for rows.Next() {
		var a model.TermAlias
		if err := rows.Scan(&a.ID, &a.TermID, &a.Name, &a.Status, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan alias row: %w", err)
		}
		aliases = append(aliases, a)
	}
	return aliases, rows.Err()
}

// ApprovedAliasNames returns the approved alias names for a term. These
// participate in rescans as additional scan keys.
func (s *Store) ApprovedAliasNames(termID string) ([]string, error) {
	rows, err := s.db.Query(
		`SELECT name FROM term_aliases WHERE term_id = ? AND status = 'approved' ORDER BY name`, termID)
	if err != nil {
		return nil, fmt.Errorf("query approved aliases: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan alias name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return model.ErrNotFound
	}
	return nil
}
