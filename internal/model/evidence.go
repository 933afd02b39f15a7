package model

// EvidenceExcerpt is one occurrence annotated with the read-time joins the
// aggregator stitches on: note title, folder name, and the thinkers the
// note mentions. The joins are re-derived on every build, never persisted.
type EvidenceExcerpt struct {
	OccurrenceID   string   `json:"occurrence_id"`
	NoteID         string   `json:"note_id"`
	NoteTitle      string   `json:"note_title"`
	FolderName     string   `json:"folder_name,omitempty"`
	Thinkers       []string `json:"thinkers,omitempty"` // Distinct, alphabetical
	ContextSnippet string   `json:"context_snippet"`
	ParagraphIndex int      `json:"paragraph_index"`
	CharOffset     int      `json:"char_offset"`
}

// EvidenceMap is the aggregated, filtered view of a term's occurrences.
// Derived state: always recomputed from current occurrences, notes, and
// mentions, because any note edit or mention refresh can change it.
type EvidenceMap struct {
	TermID        string           `json:"term_id"`
	TermName      string           `json:"term_name"`
	Excerpts      []EvidenceExcerpt `json:"excerpts"`
	TotalCount    int              `json:"total_count"`
	NoteCount     int              `json:"note_count"`
	ByThinker     map[string]int   `json:"by_thinker"` // thinker name → excerpt count
	ByFolder      map[string]int   `json:"by_folder"`  // folder name → excerpt count
	CoTerms       []string         `json:"co_terms"`   // ≤20, alphabetical, query term excluded
	FilterContext string           `json:"filter_context"`
}

// EvidenceFilter restricts an evidence map build. All set fields are
// conjunctive. Date bounds apply to the note's last-updated timestamp,
// inclusive on both ends.
type EvidenceFilter struct {
	FolderID  string `json:"folder_id,omitempty"`
	ThinkerID string `json:"thinker_id,omitempty"`
	DateFrom  string `json:"date_from,omitempty"` // RFC 3339 date, inclusive
	DateTo    string `json:"date_to,omitempty"`   // RFC 3339 date, inclusive
}

// IsZero reports whether no filter field is set.
func (f EvidenceFilter) IsZero() bool {
	return f.FolderID == "" && f.ThinkerID == "" && f.DateFrom == "" && f.DateTo == ""
}
