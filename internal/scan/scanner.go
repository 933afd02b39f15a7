package scan

import (
	"strings"
	"unicode"

	"golang.org/x/net/html"
)

// Key is one lookup name to scan for. A term contributes one Key for its
// canonical name plus one per approved alias, all sharing the term's ID.
type Key struct {
	ID   string // Owning term (or thinker) id
	Name string // Normalized: trimmed, lower-cased
}

// Match is one located whole-word occurrence of a key in a plain-text
// rendering.
type Match struct {
	KeyID          string // Key.ID that matched
	Snippet        string // Context around the match, ellipsized at cut edges
	ParagraphIndex int    // Newlines before the match start
	CharOffset     int    // Match start, in characters, into the plain text
}

// Scanner finds literal occurrences of tracked names inside note content.
// Pure: it never touches storage.
type Scanner struct {
	radius int // Context characters kept on each side of a match
}

// NewScanner creates a scanner with the given snippet radius. Radius <= 0
// falls back to the default of 100.
func NewScanner(radius int) *Scanner {
	if radius <= 0 {
		radius = 100
	}
	return &Scanner{radius: radius}
}

// Scan renders content to plain text and matches every key against it.
// Matching is whole-word, case-insensitive, literal: no stemming, no fuzz.
// Multiple keys may match the same span independently. Empty or
// whitespace-only content yields no matches.
func (s *Scanner) Scan(content string, keys []Key) []Match {
	return s.ScanText(RenderPlainText(content), keys)
}

// ScanText matches keys against an already-rendered plain text. Matches are
// ordered by key input order, then by offset.
func (s *Scanner) ScanText(plain string, keys []Key) []Match {
	if strings.TrimSpace(plain) == "" {
		return nil
	}

	runes := []rune(plain)
	lower := make([]rune, len(runes))
	for i, r := range runes {
		lower[i] = unicode.ToLower(r)
	}

	var matches []Match
	for _, key := range keys {
		name := []rune(key.Name)
		if len(name) == 0 {
			continue
		}
		for _, start := range findWholeWord(lower, name) {
			matches = append(matches, Match{
				KeyID:          key.ID,
				Snippet:        s.snippet(runes, start, start+len(name)),
				ParagraphIndex: countNewlines(runes[:start]),
				CharOffset:     start,
			})
		}
	}
	return matches
}

// findWholeWord returns the start indices of every whole-word occurrence of
// needle in haystack. Both must already be lower-cased. Word boundaries
// keep "art" from matching inside "party".
func findWholeWord(haystack, needle []rune) []int {
	var starts []int
	limit := len(haystack) - len(needle)
	for i := 0; i <= limit; i++ {
		if !runesEqual(haystack[i:i+len(needle)], needle) {
			continue
		}
		if i > 0 && isWordRune(haystack[i-1]) {
			continue
		}
		if end := i + len(needle); end < len(haystack) && isWordRune(haystack[end]) {
			continue
		}
		starts = append(starts, i)
	}
	return starts
}

// ContainsWholeWord reports whether needle occurs in text as a whole word
// (or whole phrase), case-insensitively. "but" does not match inside
// "attribute".
func ContainsWholeWord(text, needle string) bool {
	n := []rune(strings.ToLower(needle))
	if len(n) == 0 {
		return false
	}
	return len(findWholeWord([]rune(strings.ToLower(text)), n)) > 0
}

func runesEqual(a, b []rune) bool {
	for i := range b {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}

func countNewlines(runes []rune) int {
	n := 0
	for _, r := range runes {
		if r == '\n' {
			n++
		}
	}
	return n
}

// snippet extracts the context window around [start, end), clamped at the
// document edges, with ellipsis markers on truncated sides.
func (s *Scanner) snippet(runes []rune, start, end int) string {
	lo := start - s.radius
	hi := end + s.radius

	var b strings.Builder
	if lo < 0 {
		lo = 0
	} else if lo > 0 {
		b.WriteString("…")
	}
	clippedRight := hi < len(runes)
	if hi > len(runes) {
		hi = len(runes)
	}
	b.WriteString(string(runes[lo:hi]))
	if clippedRight {
		b.WriteString("…")
	}
	return b.String()
}

// blockClosers are the elements whose end renders as a paragraph break.
var blockClosers = map[string]bool{
	"p": true, "div": true, "li": true, "blockquote": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
}

// RenderPlainText strips markup from note content: closing block tags and
// <br> become newlines, every other tag is removed, entities are decoded.
// Plain markdown passes through with its newlines intact.
func RenderPlainText(content string) string {
	doc, err := html.Parse(strings.NewReader(content))
	if err != nil {
		// html.Parse is extremely tolerant; treat a failure as already-plain text.
		return content
	}

	var buf strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "iframe":
				return
			case "br":
				buf.WriteString("\n")
			}
		}

		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}

		if n.Type == html.ElementNode && blockClosers[n.Data] {
			buf.WriteString("\n")
		}
	}
	walk(doc)

	return strings.TrimRight(buf.String(), "\n")
}
