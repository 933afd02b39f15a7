package worker

import (
	"context"
)

// NoteRescanner defines the interface for rescanning one note
type NoteRescanner interface {
	RescanNote(noteID string) (int, error)
}

// RescanJob rescans a single note's occurrences and mentions
type RescanJob struct {
	NoteID    string
	Rescanner NoteRescanner
}

// Execute executes the rescan job
func (j *RescanJob) Execute(ctx context.Context) Result {
	if err := ctx.Err(); err != nil {
		return &RescanResult{NoteID: j.NoteID, Error: err}
	}
	count, err := j.Rescanner.RescanNote(j.NoteID)
	return &RescanResult{
		NoteID: j.NoteID,
		Count:  count,
		Error:  err,
	}
}

// RescanResult represents the result of a rescan job
type RescanResult struct {
	NoteID string
	Count  int
	Error  error
}

// GetError returns the error from the rescan result
func (r *RescanResult) GetError() error {
	return r.Error
}

// Reindexer rescans many notes concurrently
type Reindexer struct {
	rescanner   NoteRescanner
	concurrency int
}

// NewReindexer creates a new reindexer
func NewReindexer(rescanner NoteRescanner, concurrency int) *Reindexer {
	return &Reindexer{
		rescanner:   rescanner,
		concurrency: concurrency,
	}
}

// ProcessNotes rescans the given notes through the worker pool and returns
// one result per note. Each note's rescan is itself a full-replace
// transaction, so concurrent workers never interleave partial state.
// Submission and collection run concurrently; the result channel buffers
// fewer entries than a large corpus produces.
func (r *Reindexer) ProcessNotes(ctx context.Context, noteIDs []string) []*RescanResult {
	if len(noteIDs) == 0 {
		return []*RescanResult{}
	}

	pool := NewPool(r.concurrency)
	pool.Start()
	defer pool.Shutdown()

	go func() {
		for _, id := range noteIDs {
			if ctx.Err() != nil {
				return
			}
			pool.Submit(&RescanJob{NoteID: id, Rescanner: r.rescanner})
		}
	}()

	rescans := make([]*RescanResult, 0, len(noteIDs))
	for range noteIDs {
		select {
		case result := <-pool.results:
			rescans = append(rescans, result.(*RescanResult))
		case <-ctx.Done():
			return rescans
		}
	}
	return rescans
}
