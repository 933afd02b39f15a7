package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
)

// mapRescanner returns a fixed count per note ID.
type mapRescanner struct {
	mu     sync.Mutex
	counts map[string]int
	failOn string
	calls  int
}

func (m *mapRescanner) RescanNote(noteID string) (int, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	if noteID == m.failOn {
		return 0, errors.New("rescan blew up")
	}
	return m.counts[noteID], nil
}

func TestReindexer_ProcessNotes(t *testing.T) {
	rescanner := &mapRescanner{counts: map[string]int{"a": 2, "b": 0, "c": 5}}
	r := NewReindexer(rescanner, 2)

	results := r.ProcessNotes(context.Background(), []string{"a", "b", "c"})

	if len(results) != 3 {
		t.Fatalf("Expected 3 results, got %d", len(results))
	}
	total := 0
	for _, res := range results {
		if res.Error != nil {
			t.Errorf("Unexpected error for %s: %v", res.NoteID, res.Error)
		}
		total += res.Count
	}
	if total != 7 {
		t.Errorf("Expected 7 total occurrences, got %d", total)
	}
	if rescanner.calls != 3 {
		t.Errorf("Expected 3 rescan calls, got %d", rescanner.calls)
	}
}

func TestReindexer_ProcessNotes_PartialFailure(t *testing.T) {
	rescanner := &mapRescanner{counts: map[string]int{"a": 1, "c": 1}, failOn: "b"}
	r := NewReindexer(rescanner, 2)

	results := r.ProcessNotes(context.Background(), []string{"a", "b", "c"})

	var failed []string
	for _, res := range results {
		if res.Error != nil {
			failed = append(failed, res.NoteID)
		}
	}
	if len(failed) != 1 || failed[0] != "b" {
		t.Errorf("Expected only note b to fail, got %v", failed)
	}
}

func TestReindexer_ProcessNotes_Empty(t *testing.T) {
	r := NewReindexer(&mapRescanner{}, 2)
	results := r.ProcessNotes(context.Background(), nil)
	if len(results) != 0 {
		t.Errorf("Expected no results for empty input, got %d", len(results))
	}
}

func TestReindexer_ProcessNotes_ManyNotes(t *testing.T) {
	// Far more notes than the pool's channel buffers hold.
	counts := make(map[string]int)
	var ids []string
	for i := 0; i < 200; i++ {
		id := fmt.Sprintf("note-%d", i)
		counts[id] = 1
		ids = append(ids, id)
	}
	r := NewReindexer(&mapRescanner{counts: counts}, 4)

	results := r.ProcessNotes(context.Background(), ids)
	if len(results) != 200 {
		t.Fatalf("Expected 200 results, got %d", len(results))
	}
}

func TestReindexer_ProcessNotes_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := NewReindexer(&mapRescanner{counts: map[string]int{"a": 1}}, 1)
	results := r.ProcessNotes(ctx, []string{"a", "b", "c"})

	if len(results) == 3 {
		t.Log("all jobs finished before cancellation was observed")
	}
	// The call must return promptly either way; reaching here is the test.
}
