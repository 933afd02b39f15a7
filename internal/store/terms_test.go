package store

import (
	"errors"
	"testing"

	"github.com/ppiankov/noema/internal/model"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStore_CreateTerm_CaseInsensitiveIdentity(t *testing.T) {
	s := testStore(t)

	first, created, err := s.CreateTerm("Habit", "recurring behavior")
	if err != nil {
		t.Fatalf("CreateTerm failed: %v", err)
	}
	if !created {
		t.Error("Expected first create to report created=true")
	}
	if first.Name != "habit" {
		t.Errorf("Expected normalized name %q, got %q", "habit", first.Name)
	}

	second, created, err := s.CreateTerm("  HABIT ", "")
	if err != nil {
		t.Fatalf("CreateTerm for same name failed: %v", err)
	}
	if created {
		t.Error("Expected second create to report created=false")
	}
	if second.ID != first.ID {
		t.Errorf("Expected same term ID %s, got %s", first.ID, second.ID)
	}

	terms, err := s.ListTerms()
	if err != nil {
		t.Fatalf("ListTerms failed: %v", err)
	}
	if len(terms) != 1 {
		t.Errorf("Expected 1 term, got %d", len(terms))
	}
}

func TestStore_CreateTerm_CollapsesInnerWhitespace(t *testing.T) {
	s := testStore(t)

	term, _, err := s.CreateTerm("Categorical   Imperative", "")
	if err != nil {
		t.Fatalf("CreateTerm failed: %v", err)
	}
	if term.Name != "categorical imperative" {
		t.Errorf("Expected %q, got %q", "categorical imperative", term.Name)
	}
}

func TestStore_GetTerm_NotFound(t *testing.T) {
	s := testStore(t)

	_, err := s.GetTerm("no-such-id")
	if !errors.Is(err, model.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestStore_RenameTerm(t *testing.T) {
	s := testStore(t)

	term, _, err := s.CreateTerm("praxis", "")
	if err != nil {
		t.Fatalf("CreateTerm failed: %v", err)
	}
	if err := s.RenameTerm(term.ID, "  Lived Practice "); err != nil {
		t.Fatalf("RenameTerm failed: %v", err)
	}

	got, err := s.GetTerm(term.ID)
	if err != nil {
		t.Fatalf("GetTerm failed: %v", err)
	}
	if got.Name != "lived practice" {
		t.Errorf("Expected renamed term %q, got %q", "lived practice", got.Name)
	}
}

func TestStore_SetTermActive(t *testing.T) {
	s := testStore(t)

	term, _, err := s.CreateTerm("aura", "")
	if err != nil {
		t.Fatalf("CreateTerm failed: %v", err)
	}
	if err := s.SetTermActive(term.ID, false); err != nil {
		t.Fatalf("SetTermActive failed: %v", err)
	}

	active, err := s.ListActiveTerms()
	if err != nil {
		t.Fatalf("ListActiveTerms failed: %v", err)
	}
	if len(active) != 0 {
		t.Errorf("Expected no active terms, got %d", len(active))
	}

	all, err := s.ListTerms()
	if err != nil {
		t.Fatalf("ListTerms failed: %v", err)
	}
	if len(all) != 1 {
		t.Errorf("Expected 1 term in full list, got %d", len(all))
	}
}

func TestStore_AliasLifecycle(t *testing.T) {
	s := testStore(t)

	term, _, err := s.CreateTerm("habit", "")
	if err != nil {
		t.Fatalf("CreateTerm failed: %v", err)
	}

	alias, err := s.ProposeAlias(term.ID, "Habitus")
	if err != nil {
		t.Fatalf("ProposeAlias failed: %v", err)
	}
	if alias.Status != model.AliasProposed {
		t.Errorf("Expected proposed status, got %s", alias.Status)
	}
	if alias.Name != "habitus" {
		t.Errorf("Expected normalized alias name %q, got %q", "habitus", alias.Name)
	}

	// Proposed aliases are not scan keys yet.
	names, err := s.ApprovedAliasNames(term.ID)
	if err != nil {
		t.Fatalf("ApprovedAliasNames failed: %v", err)
	}
	if len(names) != 0 {
		t.Errorf("Expected no approved aliases before approval, got %v", names)
	}

	if err := s.ResolveAlias(alias.ID, model.AliasApproved); err != nil {
		t.Fatalf("ResolveAlias failed: %v", err)
	}
	names, err = s.ApprovedAliasNames(term.ID)
	if err != nil {
		t.Fatalf("ApprovedAliasNames failed: %v", err)
	}
	if len(names) != 1 || names[0] != "habitus" {
		t.Errorf("Expected approved alias [habitus], got %v", names)
	}

	// Status transitions exactly once.
	if err := s.ResolveAlias(alias.ID, model.AliasRejected); err == nil {
		t.Error("Expected error when resolving an already-resolved alias")
	}
}

func TestStore_MergeTerms(t *testing.T) {
	s := testStore(t)

	winner, _, err := s.CreateTerm("habit", "")
	if err != nil {
		t.Fatalf("CreateTerm winner failed: %v", err)
	}
	loser, _, err := s.CreateTerm("custom", "")
	if err != nil {
		t.Fatalf("CreateTerm loser failed: %v", err)
	}
	loserAlias, err := s.ProposeAlias(loser.ID, "convention")
	if err != nil {
		t.Fatalf("ProposeAlias failed: %v", err)
	}

	if err := s.MergeTerms(winner.ID, loser.ID); err != nil {
		t.Fatalf("MergeTerms failed: %v", err)
	}

	if _, err := s.GetTerm(loser.ID); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("Expected loser term gone, got %v", err)
	}

	// The loser's name becomes an approved scan key of the winner.
	names, err := s.ApprovedAliasNames(winner.ID)
	if err != nil {
		t.Fatalf("ApprovedAliasNames failed: %v", err)
	}
	if len(names) != 1 || names[0] != "custom" {
		t.Errorf("Expected approved alias [custom] on winner, got %v", names)
	}

	// The loser's proposed aliases move over still proposed.
	aliases, err := s.ListAliases(winner.ID)
	if err != nil {
		t.Fatalf("ListAliases failed: %v", err)
	}
	var foundMoved bool
	for _, a := range aliases {
		if a.Name == loserAlias.Name {
			foundMoved = true
			if a.Status != model.AliasProposed {
				t.Errorf("Expected moved alias to stay proposed, got %s", a.Status)
			}
		}
	}
	if !foundMoved {
		t.Errorf("Expected loser alias %q moved to winner, got %v", loserAlias.Name, aliases)
	}
}

func TestStore_DeleteTerm_CascadesOccurrences(t *testing.T) {
	s := testStore(t)

	term, _, err := s.CreateTerm("habit", "")
	if err != nil {
		t.Fatalf("CreateTerm failed: %v", err)
	}
	note, err := s.CreateNote("Aristotle on habit", "habit forms character", "", false)
	if err != nil {
		t.Fatalf("CreateNote failed: %v", err)
	}
	if _, err := s.ReplaceTermOccurrences(term.ID, []model.TermOccurrence{
		{TermID: term.ID, NoteID: note.ID, ContextSnippet: "habit forms character"},
	}); err != nil {
		t.Fatalf("ReplaceTermOccurrences failed: %v", err)
	}

	if err := s.DeleteTerm(term.ID); err != nil {
		t.Fatalf("DeleteTerm failed: %v", err)
	}

	occs, err := s.OccurrencesForNote(note.ID)
	if err != nil {
		t.Fatalf("OccurrencesForNote failed: %v", err)
	}
	if len(occs) != 0 {
		t.Errorf("Expected occurrences gone with the term, got %d", len(occs))
	}
}
