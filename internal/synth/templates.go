package synth

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ppiankov/noema/internal/model"
	"github.com/ppiankov/noema/internal/scan"
)

// Deterministic fallback composition. Each mode's template is structural
// contract, not decoration: callers (and the quality assessor) rely on the
// section headings, and every clause is drawn from excerpt text with a raw
// [<index>] marker that the shared normalizer rewrites to [E<k>]. Quoted
// material passes through neutralizeMarkers first, so bracketed numbers in
// the notes themselves never collide with those markers.

// keyDimensionCap bounds the evidence listing in the definition template.
const keyDimensionCap = 6

// contrastCues mark a snippet as carrying a tension worth surfacing.
var contrastCues = []string{"however", "but", "yet", "on the other hand"}

// composeFallback renders the mode template from the evidence alone. The
// generator is never consulted here.
func composeFallback(em *model.EvidenceMap, mode model.SynthesisMode) string {
	switch mode {
	case model.ModeComparative:
		return composeComparative(em)
	case model.ModeCritical:
		return composeCritical(em)
	default:
		return composeDefinition(em)
	}
}

func composeDefinition(em *model.EvidenceMap) string {
	var b strings.Builder

	fmt.Fprintf(&b, "## Definition synthesis\n\n")
	fmt.Fprintf(&b, "Evidence for **%s**: %d excerpt(s) across %d note(s).\n\n", em.TermName, em.TotalCount, em.NoteCount)

	b.WriteString("### Working definition\n\n")
	fmt.Fprintf(&b, "In the collected evidence, %q appears as: %q [1].", em.TermName, clause(em.Excerpts[0].ContextSnippet))
	if len(em.Excerpts) > 1 {
		fmt.Fprintf(&b, " A further excerpt frames it as: %q [2].", clause(em.Excerpts[1].ContextSnippet))
	}
	b.WriteString("\n\n")

	b.WriteString("### Key dimensions in the evidence\n\n")
	for i, ex := range em.Excerpts {
		if i >= keyDimensionCap {
			fmt.Fprintf(&b, "- …and %d more excerpt(s) not listed here.\n", len(em.Excerpts)-keyDimensionCap)
			break
		}
		b.WriteString("- ")
		b.WriteString(excerptLabel(ex))
		fmt.Fprintf(&b, ": %q [%d].\n", clause(ex.ContextSnippet), i+1)
	}
	b.WriteString("\n")

	b.WriteString("### Tensions and open questions\n\n")
	tense := cueExcerpts(em.Excerpts)
	if len(tense) == 0 {
		fmt.Fprintf(&b, "No contrastive cues appear in the current evidence; the reading of %q stays consistent across its excerpts, anchored by %q [1].\n", em.TermName, clause(em.Excerpts[0].ContextSnippet))
	} else {
		for _, idx := range tense {
			fmt.Fprintf(&b, "The evidence shifts direction around: %q [%d].\n", clause(em.Excerpts[idx].ContextSnippet), idx+1)
		}
	}

	return b.String()
}

func composeComparative(em *model.EvidenceMap) string {
	var b strings.Builder

	fmt.Fprintf(&b, "## Comparative synthesis\n\n")
	fmt.Fprintf(&b, "Evidence for **%s**: %d excerpt(s) across %d note(s).\n\n", em.TermName, em.TotalCount, em.NoteCount)

	byThinker := excerptsByThinker(em.Excerpts)
	names := make([]string, 0, len(byThinker))
	for name := range byThinker {
		names = append(names, name)
	}
	sort.Strings(names)

	b.WriteString("### Thinker-context comparison\n\n")
	if len(names) == 0 {
		fmt.Fprintf(&b, "No excerpt in the current evidence is attributed to a thinker; the unattributed material is anchored by %q [1].\n\n", clause(em.Excerpts[0].ContextSnippet))
	}
	for _, name := range names {
		idxs := byThinker[name]
		fmt.Fprintf(&b, "**%s**\n\n", name)
		fmt.Fprintf(&b, "In this context, %q appears as: %q [%d].", em.TermName, clause(em.Excerpts[idxs[0]].ContextSnippet), idxs[0]+1)
		for _, idx := range idxs[1:] {
			fmt.Fprintf(&b, " Further: %q [%d].", clause(em.Excerpts[idx].ContextSnippet), idx+1)
		}
		b.WriteString("\n\n")
	}

	b.WriteString("### Comparative assessment\n\n")
	if len(names) == 0 {
		fmt.Fprintf(&b, "With no thinker attribution yet, %q cannot be contrasted across contexts [1].\n", em.TermName)
	} else {
		var counts []string
		for _, name := range names {
			counts = append(counts, fmt.Sprintf("%s (%d)", name, len(byThinker[name])))
		}
		fmt.Fprintf(&b, "%q is attested in %d thinker context(s): %s.", em.TermName, len(names), strings.Join(counts, ", "))
		densest := names[0]
		for _, name := range names[1:] {
			if len(byThinker[name]) > len(byThinker[densest]) {
				densest = name
			}
		}
		fmt.Fprintf(&b, " The densest context is %s [%d].\n", densest, byThinker[densest][0]+1)
	}

	return b.String()
}

func composeCritical(em *model.EvidenceMap) string {
	var b strings.Builder

	fmt.Fprintf(&b, "## Critical synthesis\n\n")
	fmt.Fprintf(&b, "Evidence for **%s**: %d excerpt(s) across %d note(s).\n\n", em.TermName, em.TotalCount, em.NoteCount)

	// Objection prefers an excerpt carrying a contrastive cue, falling back
	// to the second excerpt, then to re-reading the only one.
	objection := 0
	if tense := cueExcerpts(em.Excerpts); len(tense) > 0 {
		objection = tense[0]
	} else if len(em.Excerpts) > 1 {
		objection = 1
	}

	b.WriteString("### Claim\n\n")
	fmt.Fprintf(&b, "The evidence renders %q as: %q [1].\n\n", em.TermName, clause(em.Excerpts[0].ContextSnippet))

	b.WriteString("### Objection\n\n")
	if objection == 0 {
		fmt.Fprintf(&b, "The same excerpt already qualifies itself: %q [1].\n\n", clause(em.Excerpts[0].ContextSnippet))
	} else {
		fmt.Fprintf(&b, "Against this, another excerpt pushes back: %q [%d].\n\n", clause(em.Excerpts[objection].ContextSnippet), objection+1)
	}

	b.WriteString("### Reply\n\n")
	fmt.Fprintf(&b, "Read together, the claim and the objection delimit each other's scope rather than cancel out [1][%d].\n", objection+1)

	return b.String()
}

// clause flattens a snippet to a single quotable line: ellipsis markers
// stripped, whitespace collapsed, bracketed numbers defused.
func clause(snippet string) string {
	s := strings.ReplaceAll(snippet, "…", " ")
	return neutralizeMarkers(strings.Join(strings.Fields(s), " "))
}

// neutralizeMarkers rewrites [<n>]-shaped sequences already present in
// quoted material into (<n>), so the only bracketed numbers in composed
// text are the markers the templates themselves emit. Without this, a
// footnote like [99] in a note snippet would read as a citation of a
// nonexistent excerpt and sink the whole composition.
func neutralizeMarkers(s string) string {
	return markerPattern.ReplaceAllString(s, "($1)")
}

// excerptLabel names the excerpt's source: note title plus folder.
func excerptLabel(ex model.EvidenceExcerpt) string {
	label := ex.NoteTitle
	if label == "" {
		label = "untitled note"
	}
	if ex.FolderName != "" {
		label += " (" + ex.FolderName + ")"
	}
	return neutralizeMarkers(label)
}

// cueExcerpts returns the indexes of excerpts whose snippets carry a
// contrastive cue. Cues match as whole words, so "yetis" carries no "yet".
func cueExcerpts(excerpts []model.EvidenceExcerpt) []int {
	var idxs []int
	for i, ex := range excerpts {
		for _, cue := range contrastCues {
			if scan.ContainsWholeWord(ex.ContextSnippet, cue) {
				idxs = append(idxs, i)
				break
			}
		}
	}
	return idxs
}

// excerptsByThinker groups excerpt indexes by thinker name. An excerpt with
// several thinkers counts toward each of its contexts.
func excerptsByThinker(excerpts []model.EvidenceExcerpt) map[string][]int {
	byThinker := make(map[string][]int)
	for i, ex := range excerpts {
		for _, name := range ex.Thinkers {
			byThinker[name] = append(byThinker[name], i)
		}
	}
	return byThinker
}
