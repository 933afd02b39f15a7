// Package review updates the fixed-formula spaced-repetition counters
// attached to terms. Deliberately small: a grade goes in, the SM-2 style
// counters come out, nothing schedules anything.
package review

import (
	"fmt"
	"math"
	"time"

	"github.com/ppiankov/noema/internal/model"
	"github.com/ppiankov/noema/internal/store"
)

const minEaseFactor = 1.3

// Service applies graded reviews to a term's counters.
type Service struct {
	store *store.Store
}

// New creates a review service over the given store.
func New(st *store.Store) *Service {
	return &Service{store: st}
}

// ReviewTerm applies a grade (0–5) to the term's review state and persists
// the result. Returns model.ErrNotFound for unknown terms.
func (s *Service) ReviewTerm(termID string, grade int) (*model.ReviewState, error) {
	if grade < 0 || grade > 5 {
		return nil, fmt.Errorf("grade must be 0–5, got %d", grade)
	}
	if _, err := s.store.GetTerm(termID); err != nil {
		return nil, err
	}

	st, err := s.store.GetReviewState(termID)
	if err != nil {
		return nil, err
	}

	Apply(st, grade, time.Now().UTC())

	if err := s.store.SaveReviewState(st); err != nil {
		return nil, err
	}
	return st, nil
}

// Apply runs the SM-2 update formula in place. Grades below 3 reset the
// repetition streak; grades of 3 and above grow the interval and nudge the
// ease factor.
func Apply(st *model.ReviewState, grade int, now time.Time) {
	if grade < 3 {
		st.Repetitions = 0
		st.IntervalDays = 1
	} else {
		st.Repetitions++
		switch st.Repetitions {
		case 1:
			st.IntervalDays = 1
		case 2:
			st.IntervalDays = 6
		default:
			st.IntervalDays = int(math.Round(float64(st.IntervalDays) * st.EaseFactor))
		}

		q := float64(grade)
		st.EaseFactor += 0.1 - (5-q)*(0.08+(5-q)*0.02)
		if st.EaseFactor < minEaseFactor {
			st.EaseFactor = minEaseFactor
		}
	}

	st.DueAt = now.AddDate(0, 0, st.IntervalDays)
}
