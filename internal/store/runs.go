package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/ppiankov/noema/internal/model"
)

// SaveRun persists a synthesis run with its citations, atomically. Runs are
// append-only: nothing ever updates a saved run.
func (s *Store) SaveRun(run *model.SynthesisRun) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = nowUTC()
	}

	return s.withTx(func(tx *sql.Tx) error {
		var coverage any
		if run.CoverageRate != nil {
			coverage = *run.CoverageRate
		}
		if _, err := tx.Exec(
			`INSERT INTO synthesis_runs (id, term_id, mode, filter_context, synthesis_text, coverage_rate, generated, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			run.ID, run.TermID, run.Mode, run.FilterContext, run.SynthesisText, coverage, run.Generated, run.CreatedAt,
		); err != nil {
			return fmt.Errorf("insert run: %w", err)
		}
		for _, c := range run.Citations {
			if _, err := tx.Exec(
				`INSERT INTO synthesis_citations (run_id, citation_key, note_id, note_title, folder_name, context_snippet)
				 VALUES (?, ?, ?, ?, ?, ?)`,
				run.ID, c.Key, c.NoteID, c.NoteTitle, c.FolderName, c.ContextSnippet,
			); err != nil {
				return fmt.Errorf("insert citation %s: %w", c.Key, err)
			}
		}
		return nil
	})
}

// GetRun fetches a run with its citations.
func (s *Store) GetRun(id string) (*model.SynthesisRun, error) {
	run, err := s.scanRun(s.db.QueryRow(
		`SELECT id, term_id, mode, filter_context, synthesis_text, coverage_rate, generated, created_at
		 FROM synthesis_runs WHERE id = ?`, id))
	if err != nil {
		return nil, err
	}
	if run.Citations, err = s.citationsForRun(run.ID); err != nil {
		return nil, err
	}
	return run, nil
}

// LatestRun returns the most recent run for the term, or model.ErrNotFound
// when the term has no runs yet.
func (s *Store) LatestRun(termID string) (*model.SynthesisRun, error) {
	run, err := s.scanRun(s.db.QueryRow(
		`SELECT id, term_id, mode, filter_context, synthesis_text, coverage_rate, generated, created_at
		 FROM synthesis_runs WHERE term_id = ? ORDER BY created_at DESC, id DESC LIMIT 1`, termID))
	if err != nil {
		return nil, err
	}
	if run.Citations, err = s.citationsForRun(run.ID); err != nil {
		return nil, err
	}
	return run, nil
}

func (s *Store) scanRun(row *sql.Row) (*model.SynthesisRun, error) {
	var run model.SynthesisRun
	var coverage sql.NullFloat64
	err := row.Scan(&run.ID, &run.TermID, &run.Mode, &run.FilterContext, &run.SynthesisText, &coverage, &run.Generated, &run.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan run: %w", err)
	}
	if coverage.Valid {
		run.CoverageRate = &coverage.Float64
	}
	return &run, nil
}

func (s *Store) citationsForRun(runID string) ([]model.Citation, error) {
	// citation_key sorts lexically wrong past E9, so order by the numeric part.
	rows, err := s.db.Query(
		`SELECT citation_key, note_id, note_title, folder_name, context_snippet
		 FROM synthesis_citations WHERE run_id = ?
		 ORDER BY CAST(SUBSTR(citation_key, 2) AS INTEGER)`, runID)
	if err != nil {
		return nil, fmt.Errorf("query citations: %w", err)
	}
	defer rows.Close()

	var citations []model.Citation
	for rows.Next() {
		var c model.Citation
		if err := rows.Scan(&c.Key, &c.NoteID, &c.NoteTitle, &c.FolderName, &c.ContextSnippet); err != nil {
			return nil, fmt.Errorf("scan citation row: %w", err)
		}
		citations = append(citations, c)
	}
	return citations, rows.Err()
}

// ListRuns returns the term's run history, newest first.
func (s *Store) ListRuns(termID string) ([]model.SynthesisRunSummary, error) {
	rows, err := s.db.Query(
		`SELECT r.id, r.mode, r.filter_context, r.coverage_rate, r.created_at,
		        (SELECT COUNT(*) FROM synthesis_citations c WHERE c.run_id = r.id)
		 FROM synthesis_runs r WHERE r.term_id = ?
		 ORDER BY r.created_at DESC, r.id DESC`, termID)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var summaries []model.SynthesisRunSummary
	for rows.Next() {
		var sum model.SynthesisRunSummary
		var coverage sql.NullFloat64
		if err := rows.Scan(&sum.ID, &sum.Mode, &sum.FilterContext, &coverage, &sum.CreatedAt, &sum.CitationCount); err != nil {
			return nil, fmt.Errorf("scan run row: %w", err)
		}
		if coverage.Valid {
			sum.CoverageRate = &coverage.Float64
		}
		summaries = append(summaries, sum)
	}
	return summaries, rows.Err()
}
