package model

import "time"

// Note is an opaque text container. Content is markdown with embedded HTML;
// the scanner renders it to plain text before matching. Canvas notes are
// visual sticky notes and are excluded from term scanning.
type Note struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Content      string    `json:"content"`
	FolderID     string    `json:"folder_id,omitempty"`
	IsCanvasNote bool      `json:"is_canvas_note"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Folder groups notes for filtering and distribution statistics.
type Folder struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Thinker is a historical thinker tracked by the knowledge graph.
type Thinker struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Mention links a note to a thinker it discusses. At most one mention is
// recorded per (note, thinker) pair.
type Mention struct {
	NoteID      string `json:"note_id"`
	ThinkerID   string `json:"thinker_id"`
	ThinkerName string `json:"thinker_name"`
}
