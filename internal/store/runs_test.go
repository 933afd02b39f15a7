package store

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/ppiankov/noema/internal/model"
)

func TestStore_SaveRun_RoundTrip(t *testing.T) {
	s := testStore(t)

	term, _, err := s.CreateTerm("habit", "")
	if err != nil {
		t.Fatalf("CreateTerm failed: %v", err)
	}

	coverage := 0.75
	run := &model.SynthesisRun{
		TermID:        term.ID,
		Mode:          model.ModeDefinition,
		FilterContext: "all notes",
		SynthesisText: "## Definition synthesis\n\ntext [E1]",
		CoverageRate:  &coverage,
		Generated:     false,
		Citations: []model.Citation{
			{Key: "E1", NoteID: "n1", NoteTitle: "Aristotle", ContextSnippet: "habit forms character"},
		},
	}
	if err := s.SaveRun(run); err != nil {
		t.Fatalf("SaveRun failed: %v", err)
	}
	if run.ID == "" {
		t.Fatal("Expected SaveRun to assign an ID")
	}

	got, err := s.GetRun(run.ID)
	if err != nil {
		t.Fatalf("GetRun failed: %v", err)
	}
	if got.SynthesisText != run.SynthesisText {
		t.Errorf("Expected text preserved, got %q", got.SynthesisText)
	}
	if got.CoverageRate == nil || *got.CoverageRate != coverage {
		t.Errorf("Expected coverage %v, got %v", coverage, got.CoverageRate)
	}
	if len(got.Citations) != 1 || got.Citations[0].Key != "E1" {
		t.Errorf("Expected citation E1, got %v", got.Citations)
	}
}

func TestStore_LatestRun_PicksNewest(t *testing.T) {
	s := testStore(t)

	term, _, err := s.CreateTerm("habit", "")
	if err != nil {
		t.Fatalf("CreateTerm failed: %v", err)
	}

	old := &model.SynthesisRun{
		TermID: term.ID, Mode: model.ModeDefinition, FilterContext: "all notes",
		SynthesisText: "old", CreatedAt: time.Now().UTC().Add(-time.Hour).Truncate(time.Second),
	}
	if err := s.SaveRun(old); err != nil {
		t.Fatalf("SaveRun old failed: %v", err)
	}
	newer := &model.SynthesisRun{
		TermID: term.ID, Mode: model.ModeCritical, FilterContext: "all notes",
		SynthesisText: "new",
	}
	if err := s.SaveRun(newer); err != nil {
		t.Fatalf("SaveRun new failed: %v", err)
	}

	latest, err := s.LatestRun(term.ID)
	if err != nil {
		t.Fatalf("LatestRun failed: %v", err)
	}
	if latest.ID != newer.ID {
		t.Errorf("Expected latest run %s, got %s", newer.ID, latest.ID)
	}

	summaries, err := s.ListRuns(term.ID)
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(summaries) != 2 {
		t.Fatalf("Expected 2 runs, got %d", len(summaries))
	}
	if summaries[0].ID != newer.ID {
		t.Errorf("Expected newest first, got %s", summaries[0].ID)
	}
}

func TestStore_LatestRun_NotFound(t *testing.T) {
	s := testStore(t)

	term, _, err := s.CreateTerm("habit", "")
	if err != nil {
		t.Fatalf("CreateTerm failed: %v", err)
	}
	if _, err := s.LatestRun(term.ID); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for term with no runs, got %v", err)
	}
}

func TestStore_CitationOrder_NumericPastNine(t *testing.T) {
	s := testStore(t)

	term, _, err := s.CreateTerm("habit", "")
	if err != nil {
		t.Fatalf("CreateTerm failed: %v", err)
	}

	run := &model.SynthesisRun{TermID: term.ID, Mode: model.ModeDefinition, FilterContext: "all notes", SynthesisText: "t"}
	for i := 1; i <= 11; i++ {
		run.Citations = append(run.Citations, model.Citation{
			Key: fmt.Sprintf("E%d", i), NoteID: "n", NoteTitle: "t", ContextSnippet: "s",
		})
	}
	if err := s.SaveRun(run); err != nil {
		t.Fatalf("SaveRun failed: %v", err)
	}

	got, err := s.GetRun(run.ID)
	if err != nil {
		t.Fatalf("GetRun failed: %v", err)
	}
	if len(got.Citations) != 11 {
		t.Fatalf("Expected 11 citations, got %d", len(got.Citations))
	}
	// E10 and E11 must come after E9, not after E1.
	if got.Citations[9].Key != "E10" || got.Citations[10].Key != "E11" {
		t.Errorf("Expected numeric key order, got %s then %s", got.Citations[9].Key, got.Citations[10].Key)
	}
}
