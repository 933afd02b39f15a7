package model

// UncertaintyLabel grades how much trust the quality heuristics place in
// the latest synthesis run.
type UncertaintyLabel string

const (
	UncertaintyLow    UncertaintyLabel = "low"
	UncertaintyMedium UncertaintyLabel = "medium"
	UncertaintyHigh   UncertaintyLabel = "high"
)

// ContradictionSignal pairs two excerpts of the same term whose snippets
// carry contrastive connectives. A shallow lexical heuristic: it flags
// candidates for human review, it does not prove a contradiction.
type ContradictionSignal struct {
	Connective string `json:"connective"` // The contrastive cue that fired ("however", "but", ...)
	LeftID     string `json:"left_occurrence_id"`
	LeftText   string `json:"left_text"` // One-line rendering of the left excerpt
	RightID    string `json:"right_occurrence_id"`
	RightText  string `json:"right_text"`
}

// QualityReport is the advisory assessment of a term's most recent
// synthesis run against its full current evidence set.
type QualityReport struct {
	TermID               string                `json:"term_id"`
	RunID                string                `json:"run_id,omitempty"` // Empty when no run exists yet
	CoverageRate         float64               `json:"coverage_rate"`    // Distinct cited / total excerpts, clamped to [0,1]
	UnsupportedClaims    []string              `json:"unsupported_claims"`
	ContradictionSignals []ContradictionSignal `json:"contradiction_signals"`
	Uncertainty          UncertaintyLabel      `json:"uncertainty_label"`
}
