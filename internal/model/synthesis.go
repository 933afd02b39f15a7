package model

import (
	"fmt"
	"time"
)

// SynthesisMode selects the narrative structure of a synthesis run.
type SynthesisMode string

const (
	ModeDefinition  SynthesisMode = "definition"
	ModeComparative SynthesisMode = "comparative"
	ModeCritical    SynthesisMode = "critical"
)

// ParseMode validates a user-supplied mode string.
func ParseMode(s string) (SynthesisMode, error) {
	switch SynthesisMode(s) {
	case ModeDefinition, ModeComparative, ModeCritical:
		return SynthesisMode(s), nil
	}
	return "", fmt.Errorf("unknown synthesis mode: %q (supported: definition, comparative, critical)", s)
}

// Citation maps one inline [E<k>] marker to its source excerpt. Keys are
// sequential per run, 1-indexed, in first-reference order. Every snippet is
// a verbatim (or ellipsized) substring of a real occurrence for the term.
type Citation struct {
	Key            string `json:"citation_key"` // "E1", "E2", ...
	NoteID         string `json:"note_id"`
	NoteTitle      string `json:"note_title"`
	FolderName     string `json:"folder_name,omitempty"`
	ContextSnippet string `json:"context_snippet"`
}

// SynthesisRun is one generated-or-fallback narrative answer about a term.
// Append-only history: runs are never mutated after persistence.
type SynthesisRun struct {
	ID            string        `json:"id"`
	TermID        string        `json:"term_id"`
	Mode          SynthesisMode `json:"mode"`
	FilterContext string        `json:"filter_context"`
	SynthesisText string        `json:"synthesis_text"`
	CoverageRate  *float64      `json:"coverage_rate,omitempty"` // 0–1, nil when not computed
	Generated     bool          `json:"generated"`               // True when the external generator produced the text
	Citations     []Citation    `json:"citations"`
	CreatedAt     time.Time     `json:"created_at"`
}

// SynthesisRunSummary is the listing shape for run history.
type SynthesisRunSummary struct {
	ID            string        `json:"id"`
	Mode          SynthesisMode `json:"mode"`
	FilterContext string        `json:"filter_context"`
	CoverageRate  *float64      `json:"coverage_rate,omitempty"`
	CitationCount int           `json:"citation_count"`
	CreatedAt     time.Time     `json:"created_at"`
}
