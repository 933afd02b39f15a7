// Package synth produces mode-specific narratives about a term from its
// evidence, with every claim traceable to a concrete excerpt through
// enumerated [E<k>] citations.
package synth

import (
	"context"
	"fmt"
	"os"

	"github.com/ppiankov/noema/internal/evidence"
	"github.com/ppiankov/noema/internal/llm"
	"github.com/ppiankov/noema/internal/model"
	"github.com/ppiankov/noema/internal/store"
)

// Engine is the synthesis engine: evidence in, persisted run out. Two
// branches produce text (the external generator when one is configured
// and behaving, the deterministic templates otherwise) and one shared
// normalization step enforces citation soundness on whichever branch ran.
type Engine struct {
	store      *store.Store
	aggregator *evidence.Aggregator
	generator  *llm.Generator
	verbose    bool
}

// New creates an engine. generator may be nil or disabled; synthesis then
// always takes the deterministic path.
func New(st *store.Store, agg *evidence.Aggregator, gen *llm.Generator, verbose bool) *Engine {
	return &Engine{store: st, aggregator: agg, generator: gen, verbose: verbose}
}

// Synthesize builds the filtered evidence map, composes a mode-specific
// narrative, and persists the run with its citation list.
//
// Fails with model.ErrNotFound when the term is absent and with
// model.ErrNoEvidence when the filtered map has zero excerpts. Generator
// trouble of any kind (unreachable backend, timeout, tripped quota,
// over-long prompt, output that cannot be mapped to valid citations) is
// recovered locally by the fallback branch and never surfaces.
func (e *Engine) Synthesize(ctx context.Context, termID string, mode model.SynthesisMode, filter model.EvidenceFilter) (*model.SynthesisRun, error) {
	em, err := e.aggregator.BuildEvidenceMap(termID, filter)
	if err != nil {
		return nil, err
	}
	if len(em.Excerpts) == 0 {
		return nil, fmt.Errorf("term %s (%s): %w", termID, em.FilterContext, model.ErrNoEvidence)
	}

	text, citations, generated := e.compose(ctx, em, mode)

	coverage := coverageRate(citations, em, mode)
	run := &model.SynthesisRun{
		TermID:        termID,
		Mode:          mode,
		FilterContext: em.FilterContext,
		SynthesisText: text,
		CoverageRate:  &coverage,
		Generated:     generated,
		Citations:     citations,
	}
	if err := e.store.SaveRun(run); err != nil {
		return nil, err
	}
	return run, nil
}

// compose runs the two-branch strategy. Both branches emit raw excerpt
// indexes; normalizeCitations is applied to both, so the soundness
// invariant is enforced in exactly one place.
func (e *Engine) compose(ctx context.Context, em *model.EvidenceMap, mode model.SynthesisMode) (string, []model.Citation, bool) {
	if e.generator.IsEnabled() {
		raw, err := e.generator.Generate(ctx, buildPrompt(em, mode), mode)
		if err == nil {
			if text, citations, ok := normalizeCitations(raw, em.Excerpts); ok {
				return text, citations, true
			}
			e.warnf("generator output had no mappable citations, using deterministic composition")
		} else {
			e.warnf("generator failed (%v), using deterministic composition", err)
		}
	}

	text, citations, _ := normalizeCitations(composeFallback(em, mode), em.Excerpts)
	return text, citations, false
}

// coverageRate is distinct cited excerpts over mode-eligible excerpts. For
// comparative runs only thinker-attributed excerpts are eligible, because
// only those can appear in a thinker sub-block.
func coverageRate(citations []model.Citation, em *model.EvidenceMap, mode model.SynthesisMode) float64 {
	eligible := len(em.Excerpts)
	if mode == model.ModeComparative {
		eligible = 0
		for _, ex := range em.Excerpts {
			if len(ex.Thinkers) > 0 {
				eligible++
			}
		}
	}
	if eligible == 0 {
		return 0
	}
	rate := float64(len(citations)) / float64(eligible)
	if rate > 1 {
		rate = 1
	}
	return rate
}

func (e *Engine) warnf(format string, args ...any) {
	if e.verbose {
		fmt.Fprintf(os.Stderr, "synth: "+format+"\n", args...)
	}
}
