package model

import "time"

// TermOccurrence is one located match of a term inside one note. The set of
// occurrences for a (term, note) pair is always the full output of scanning
// the note's current content: rescans replace wholesale, never patch.
type TermOccurrence struct {
	ID             string    `json:"id"`
	TermID         string    `json:"term_id"`
	NoteID         string    `json:"note_id"`
	ContextSnippet string    `json:"context_snippet"` // ±100 chars around the match, ellipsized at cut edges
	ParagraphIndex int       `json:"paragraph_index"` // Newlines before the match in the plain-text rendering
	CharOffset     int       `json:"char_offset"`     // Match start offset into the plain text
	CreatedAt      time.Time `json:"created_at"`
}
