package index

import (
	"testing"

	"github.com/ppiankov/noema/internal/model"
	"github.com/ppiankov/noema/internal/scan"
	"github.com/ppiankov/noema/internal/store"
)

func testIndex(t *testing.T) (*Index, *store.Store) {
	t.Helper()
	s, err := store.Open(":memory:")
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return New(s, scan.NewScanner(100)), s
}

func TestIndex_RescanTerm_AcrossNotes(t *testing.T) {
	ix, s := testIndex(t)

	term, _, err := s.CreateTerm("habit", "")
	if err != nil {
		t.Fatalf("CreateTerm failed: %v", err)
	}
	if _, err := s.CreateNote("Aristotle", "Virtue is a habit of the soul. Habit again.", "", false); err != nil {
		t.Fatalf("CreateNote failed: %v", err)
	}
	if _, err := s.CreateNote("Unrelated", "Nothing to see here.", "", false); err != nil {
		t.Fatalf("CreateNote failed: %v", err)
	}

	count, err := ix.RescanTerm(term.ID)
	if err != nil {
		t.Fatalf("RescanTerm failed: %v", err)
	}
	if count != 2 {
		t.Errorf("Expected 2 occurrences, got %d", count)
	}
}

func TestIndex_RescanTerm_SkipsCanvasNotes(t *testing.T) {
	ix, s := testIndex(t)

	term, _, err := s.CreateTerm("habit", "")
	if err != nil {
		t.Fatalf("CreateTerm failed: %v", err)
	}
	if _, err := s.CreateNote("Canvas", "habit habit habit", "", true); err != nil {
		t.Fatalf("CreateNote failed: %v", err)
	}

	count, err := ix.RescanTerm(term.ID)
	if err != nil {
		t.Fatalf("RescanTerm failed: %v", err)
	}
	if count != 0 {
		t.Errorf("Expected canvas note excluded, got %d occurrences", count)
	}
}

func TestIndex_RescanTerm_UsesApprovedAliases(t *testing.T) {
	ix, s := testIndex(t)

	term, _, err := s.CreateTerm("habit", "")
	if err != nil {
		t.Fatalf("CreateTerm failed: %v", err)
	}
	if _, err := s.CreateNote("Bourdieu", "The habitus structures perception.", "", false); err != nil {
		t.Fatalf("CreateNote failed: %v", err)
	}

	count, err := ix.RescanTerm(term.ID)
	if err != nil {
		t.Fatalf("RescanTerm failed: %v", err)
	}
	if count != 0 {
		t.Errorf("Expected no matches before alias approval, got %d", count)
	}

	alias, err := s.ProposeAlias(term.ID, "habitus")
	if err != nil {
		t.Fatalf("ProposeAlias failed: %v", err)
	}

	// Proposed is not enough.
	count, err = ix.RescanTerm(term.ID)
	if err != nil {
		t.Fatalf("RescanTerm failed: %v", err)
	}
	if count != 0 {
		t.Errorf("Expected proposed alias to be inert, got %d matches", count)
	}

	if err := s.ResolveAlias(alias.ID, model.AliasApproved); err != nil {
		t.Fatalf("ResolveAlias failed: %v", err)
	}
	count, err = ix.RescanTerm(term.ID)
	if err != nil {
		t.Fatalf("RescanTerm failed: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected 1 match through approved alias, got %d", count)
	}
}

func TestIndex_RescanNote_ReplacesOnEdit(t *testing.T) {
	ix, s := testIndex(t)

	term, _, err := s.CreateTerm("habit", "")
	if err != nil {
		t.Fatalf("CreateTerm failed: %v", err)
	}
	note, err := s.CreateNote("Draft", "habit and habit", "", false)
	if err != nil {
		t.Fatalf("CreateNote failed: %v", err)
	}

	count, err := ix.RescanNote(note.ID)
	if err != nil {
		t.Fatalf("RescanNote failed: %v", err)
	}
	if count != 2 {
		t.Fatalf("Expected 2 occurrences, got %d", count)
	}

	// Editing the term out leaves a clean index, not stale rows.
	if err := s.UpdateNoteContent(note.ID, note.Title, "nothing relevant anymore"); err != nil {
		t.Fatalf("UpdateNoteContent failed: %v", err)
	}
	count, err = ix.RescanNote(note.ID)
	if err != nil {
		t.Fatalf("RescanNote after edit failed: %v", err)
	}
	if count != 0 {
		t.Errorf("Expected 0 occurrences after edit, got %d", count)
	}
	occs, err := s.OccurrencesForTerm(term.ID)
	if err != nil {
		t.Fatalf("OccurrencesForTerm failed: %v", err)
	}
	if len(occs) != 0 {
		t.Errorf("Expected no stale occurrences, got %d", len(occs))
	}
}

func TestIndex_RescanNote_RefreshesMentions(t *testing.T) {
	ix, s := testIndex(t)

	thinker, err := s.CreateThinker("Aristotle")
	if err != nil {
		t.Fatalf("CreateThinker failed: %v", err)
	}
	note, err := s.CreateNote("Ethics notes", "Aristotle treats virtue as habit.", "", false)
	if err != nil {
		t.Fatalf("CreateNote failed: %v", err)
	}

	if _, err := ix.RescanNote(note.ID); err != nil {
		t.Fatalf("RescanNote failed: %v", err)
	}
	mentions, err := s.MentionsForNotes([]string{note.ID})
	if err != nil {
		t.Fatalf("MentionsForNotes failed: %v", err)
	}
	if len(mentions) != 1 || mentions[0].ThinkerID != thinker.ID {
		t.Fatalf("Expected one mention of Aristotle, got %v", mentions)
	}

	// A partial surname match is not a mention.
	if err := s.UpdateNoteContent(note.ID, note.Title, "Aristotelian themes only."); err != nil {
		t.Fatalf("UpdateNoteContent failed: %v", err)
	}
	if _, err := ix.RescanNote(note.ID); err != nil {
		t.Fatalf("RescanNote failed: %v", err)
	}
	mentions, err = s.MentionsForNotes([]string{note.ID})
	if err != nil {
		t.Fatalf("MentionsForNotes failed: %v", err)
	}
	if len(mentions) != 0 {
		t.Errorf("Expected no mentions for partial-word match, got %v", mentions)
	}
}

func TestIndex_RescanNote_HTMLStrippedBeforeMatching(t *testing.T) {
	ix, s := testIndex(t)

	if _, _, err := s.CreateTerm("habit", ""); err != nil {
		t.Fatalf("CreateTerm failed: %v", err)
	}
	note, err := s.CreateNote("Markup", "<p>A <b>habit</b> inside markup.</p><script>habit()</script>", "", false)
	if err != nil {
		t.Fatalf("CreateNote failed: %v", err)
	}

	count, err := ix.RescanNote(note.ID)
	if err != nil {
		t.Fatalf("RescanNote failed: %v", err)
	}
	// The bold occurrence counts, the script body does not.
	if count != 1 {
		t.Errorf("Expected 1 occurrence from visible text only, got %d", count)
	}
}
