package synth

import (
	"fmt"
	"strings"

	"github.com/ppiankov/noema/internal/model"
)

// modeInstructions are the per-mode structure requests sent to the
// generator. They mirror the fallback templates so either branch produces
// the same narrative shape.
var modeInstructions = map[model.SynthesisMode]string{
	model.ModeDefinition: `Write a definition synthesis in markdown with exactly these sections:
## Definition synthesis
### Working definition
### Key dimensions in the evidence
### Tensions and open questions`,

	model.ModeComparative: `Write a comparative synthesis in markdown with exactly these sections:
## Comparative synthesis
### Thinker-context comparison
(one bold sub-heading per thinker present in the evidence, citing that thinker's excerpts)
### Comparative assessment`,

	model.ModeCritical: `Write a critical synthesis in markdown with exactly these sections:
## Critical synthesis
### Claim
### Objection
### Reply
Each of the three sections must be grounded in at least one excerpt citation.`,
}

// buildPrompt embeds the term, the requested structure, and every evidence
// excerpt tagged with its stable 1-based index. The generator may cite only
// these indexes; anything else is rejected during normalization.
func buildPrompt(em *model.EvidenceMap, mode model.SynthesisMode) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Term: %q\n\n", em.TermName)
	b.WriteString(modeInstructions[mode])
	b.WriteString("\n\nEvidence excerpts (cite by bracketed number, e.g. [2]):\n")

	for i, ex := range em.Excerpts {
		fmt.Fprintf(&b, "\n[%d] note: %s", i+1, ex.NoteTitle)
		if ex.FolderName != "" {
			fmt.Fprintf(&b, " | folder: %s", ex.FolderName)
		}
		if len(ex.Thinkers) > 0 {
			fmt.Fprintf(&b, " | thinkers: %s", strings.Join(ex.Thinkers, ", "))
		}
		fmt.Fprintf(&b, "\n%s\n", ex.ContextSnippet)
	}

	b.WriteString("\nEvery sentence that draws on an excerpt must carry its bracketed number. Do not cite numbers outside the list above.")
	return b.String()
}
