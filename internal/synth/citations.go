package synth

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ppiankov/noema/internal/model"
)

// markerPattern matches raw excerpt references in composed text: [3] or
// [E3]. Both branches (generator and fallback) emit this shape; the
// normalizer rewrites every survivor to the canonical [E<k>] form.
var markerPattern = regexp.MustCompile(`\[E?(\d+)\]`)

// normalizeCitations rewrites excerpt-index references into sequential
// citation keys E1..En, numbered in first-reference order, and builds the
// citation list. This is the single enforcement point for the citation
// soundness invariant: it runs on both the generator's and the fallback's
// output.
//
// ok is false when the text cannot be grounded: it has no markers at all,
// or any marker points outside the excerpt list. Callers treat that as
// invalid generator output and fall through to deterministic composition.
func normalizeCitations(text string, excerpts []model.EvidenceExcerpt) (normalized string, citations []model.Citation, ok bool) {
	matches := markerPattern.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return text, nil, false
	}

	assigned := make(map[int]int) // excerpt index (1-based) → citation number
	var b strings.Builder
	last := 0
	for _, m := range matches {
		idx := atoi(text[m[2]:m[3]])
		if idx < 1 || idx > len(excerpts) {
			// A marker pointing at a nonexistent excerpt is a fabricated
			// citation; the whole text is rejected.
			return text, nil, false
		}

		key, seen := assigned[idx]
		if !seen {
			key = len(assigned) + 1
			assigned[idx] = key
			ex := excerpts[idx-1]
			citations = append(citations, model.Citation{
				Key:            fmt.Sprintf("E%d", key),
				NoteID:         ex.NoteID,
				NoteTitle:      ex.NoteTitle,
				FolderName:     ex.FolderName,
				ContextSnippet: ex.ContextSnippet,
			})
		}

		b.WriteString(text[last:m[0]])
		fmt.Fprintf(&b, "[E%d]", key)
		last = m[1]
	}
	b.WriteString(text[last:])

	return b.String(), citations, true
}

func atoi(s string) int {
	n := 0
	for _, r := range s {
		n = n*10 + int(r-'0')
	}
	return n
}
