package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/ppiankov/noema/internal/model"
)

// GetReviewState fetches a term's review counters, or the fresh-term
// default when none have been saved yet.
func (s *Store) GetReviewState(termID string) (*model.ReviewState, error) {
	var st model.ReviewState
	err := s.db.QueryRow(
		`SELECT term_id, repetitions, ease_factor, interval_days, due_at FROM review_states WHERE term_id = ?`, termID,
	).Scan(&st.TermID, &st.Repetitions, &st.EaseFactor, &st.IntervalDays, &st.DueAt)
	if errors.Is(err, sql.ErrNoRows) {
		return &model.ReviewState{TermID: termID, EaseFactor: 2.5, DueAt: nowUTC()}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan review state: %w", err)
	}
	return &st, nil
}

// SaveReviewState upserts a term's review counters.
func (s *Store) SaveReviewState(st *model.ReviewState) error {
	_, err := s.db.Exec(
		`INSERT INTO review_states (term_id, repetitions, ease_factor, interval_days, due_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(term_id) DO UPDATE SET
		   repetitions = excluded.repetitions,
		   ease_factor = excluded.ease_factor,
		   interval_days = excluded.interval_days,
		   due_at = excluded.due_at`,
		st.TermID, st.Repetitions, st.EaseFactor, st.IntervalDays, st.DueAt,
	)
	if err != nil {
		return fmt.Errorf("save review state: %w", err)
	}
	return nil
}
