package model

import "time"

// ReviewState is the spaced-repetition counter attached to a term. Updated
// by a fixed SM-2 style formula on each graded review; nothing else reads
// or writes it.
type ReviewState struct {
	TermID       string    `json:"term_id"`
	Repetitions  int       `json:"repetitions"`
	EaseFactor   float64   `json:"ease_factor"`
	IntervalDays int       `json:"interval_days"`
	DueAt        time.Time `json:"due_at"`
}
