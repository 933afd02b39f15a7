// Package quality derives an advisory report (coverage, unsupported
// claims, contradiction signals, an uncertainty label) from a term's most
// recent synthesis run and its full current evidence set.
package quality

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ppiankov/noema/internal/evidence"
	"github.com/ppiankov/noema/internal/model"
	"github.com/ppiankov/noema/internal/scan"
	"github.com/ppiankov/noema/internal/store"
)

// Heuristic thresholds for the uncertainty label.
const (
	lowCoverageFloor     = 0.7
	highCoverageCeiling  = 0.3
	highContradictionMin = 3
)

// contrastConnectives are the lexical cues the contradiction heuristic
// looks for, matched as whole words. The heuristic stays shallow: the
// report flags candidates, it does not prove anything.
var contrastConnectives = []string{"however", "but", "yet", "on the other hand"}

// assertionCues mark a sentence as making a claim that ought to carry a
// citation.
var assertionCues = []string{
	" is ", " are ", " was ", " were ", " appears ", " renders ",
	" supports ", " shows ", " must ", " cannot ", " shifts ", " stays ",
}

// Assessor computes quality reports. Read-only: it never mutates runs or
// evidence.
type Assessor struct {
	store      *store.Store
	aggregator *evidence.Aggregator
}

// New creates an assessor over the given store and aggregator.
func New(st *store.Store, agg *evidence.Aggregator) *Assessor {
	return &Assessor{store: st, aggregator: agg}
}

// Assess scores the term's latest synthesis run against its full, unfiltered
// evidence map. Only the latest run feeds the live score; history is
// visible elsewhere but never assessed. With no run yet the report carries
// zero coverage and a high uncertainty label.
func (a *Assessor) Assess(termID string) (*model.QualityReport, error) {
	em, err := a.aggregator.BuildEvidenceMap(termID, model.EvidenceFilter{})
	if err != nil {
		return nil, err
	}

	report := &model.QualityReport{
		TermID:               termID,
		ContradictionSignals: contradictionSignals(em.Excerpts),
	}

	run, err := a.store.LatestRun(termID)
	if errors.Is(err, model.ErrNotFound) {
		report.Uncertainty = model.UncertaintyHigh
		return report, nil
	}
	if err != nil {
		return nil, err
	}

	report.RunID = run.ID
	report.CoverageRate = clamp01(coverage(run, em))
	report.UnsupportedClaims = unsupportedClaims(run.SynthesisText)
	report.Uncertainty = uncertaintyLabel(report.CoverageRate, len(report.ContradictionSignals))
	return report, nil
}

// coverage is distinct cited excerpts over total current excerpts. Citation
// keys are unique per excerpt within a run, so the citation count is the
// distinct count.
func coverage(run *model.SynthesisRun, em *model.EvidenceMap) float64 {
	if len(em.Excerpts) == 0 {
		return 0
	}
	return float64(len(run.Citations)) / float64(len(em.Excerpts))
}

func uncertaintyLabel(coverage float64, contradictions int) model.UncertaintyLabel {
	switch {
	case coverage >= lowCoverageFloor && contradictions == 0:
		return model.UncertaintyLow
	case coverage < highCoverageCeiling || contradictions >= highContradictionMin:
		return model.UncertaintyHigh
	default:
		return model.UncertaintyMedium
	}
}

// unsupportedClaims returns the sentences that assert something without an
// [E<k>] marker in the same sentence. Markdown headings are structure, not
// claims, and are skipped.
func unsupportedClaims(text string) []string {
	var claims []string
	for _, sentence := range splitSentences(text) {
		if strings.Contains(sentence, "[E") {
			continue
		}
		lower := " " + strings.ToLower(sentence) + " "
		for _, cue := range assertionCues {
			if strings.Contains(lower, cue) {
				claims = append(claims, sentence)
				break
			}
		}
	}
	return claims
}

// splitSentences splits prose on terminal punctuation, dropping heading
// lines and blanks.
func splitSentences(text string) []string {
	var body strings.Builder
	for _, line := range strings.Split(text, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "#") {
			continue
		}
		body.WriteString(line)
		body.WriteString(" ")
	}

	var sentences []string
	var current strings.Builder
	for _, r := range body.String() {
		current.WriteRune(r)
		if r == '.' || r == '!' || r == '?' {
			if s := strings.TrimSpace(current.String()); len(s) > 1 {
				sentences = append(sentences, s)
			}
			current.Reset()
		}
	}
	if s := strings.TrimSpace(current.String()); len(s) > 1 {
		sentences = append(sentences, s)
	}
	return sentences
}

// contradictionSignals pairs each cue-carrying excerpt with its nearest
// neighbor in evidence order. One signal per cue excerpt keeps the count
// proportional to the cue density rather than quadratic in excerpts.
func contradictionSignals(excerpts []model.EvidenceExcerpt) []model.ContradictionSignal {
	if len(excerpts) < 2 {
		return nil
	}

	var signals []model.ContradictionSignal
	for i, ex := range excerpts {
		cue := firstConnective(ex.ContextSnippet)
		if cue == "" {
			continue
		}
		partner := i - 1
		if partner < 0 {
			partner = i + 1
		}
		signals = append(signals, model.ContradictionSignal{
			Connective: cue,
			LeftID:     excerpts[partner].OccurrenceID,
			LeftText:   oneLine(excerpts[partner]),
			RightID:    ex.OccurrenceID,
			RightText:  oneLine(ex),
		})
	}
	return signals
}

// firstConnective returns the first contrastive connective present in the
// snippet as a whole word, or "". Substring hits ("but" inside
// "attribute") do not count.
func firstConnective(snippet string) string {
	for _, c := range contrastConnectives {
		if scan.ContainsWholeWord(snippet, c) {
			return c
		}
	}
	return ""
}

// oneLine renders an excerpt as a single summary line for signal output.
func oneLine(ex model.EvidenceExcerpt) string {
	title := ex.NoteTitle
	if title == "" {
		title = "untitled note"
	}
	snippet := strings.Join(strings.Fields(strings.ReplaceAll(ex.ContextSnippet, "…", " ")), " ")
	return fmt.Sprintf("%s: %s", title, snippet)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
