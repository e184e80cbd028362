// Package unfavorable finds unfavorable-clause phrases and the text around their first occurrence.
package unfavorable

import (
	"strings"
	"unicode/utf8"

	"github.com/joseph-ayodele/contracts-analyzer/internal/lexicon"
)

// DefaultContextChars is how many characters of context are kept on each side of a match.
const DefaultContextChars = 50

type Finding struct {
	Term        string `json:"term"`
	Explanation string `json:"explanation"`
	Snippet     string `json:"snippet"`
}

type Detector struct {
	phrases      []lexicon.UnfavorablePhrase
	contextChars int
}

type Option func(*Detector)

// WithContextChars overrides the snippet radius; n < 0 is ignored.
func WithContextChars(n int) Option {
	return func(d *Detector) {
		if n >= 0 {
			d.contextChars = n
		}
	}
}

// NewDetector copies phrases; a nil or empty slice uses the built-in lexicon.
func NewDetector(phrases []lexicon.UnfavorablePhrase, opts ...Option) *Detector {
	if len(phrases) == 0 {
		phrases = lexicon.DefaultUnfavorable()
	}
	d := &Detector{
		phrases:      append([]lexicon.UnfavorablePhrase(nil), phrases...),
		contextChars: DefaultContextChars,
	}
	for _, o := range opts {
		o(d)
	}
	return d
}

// Detect reports the first occurrence of each phrase, in lexicon order.
func (d *Detector) Detect(text string) []Finding {
	findings := make([]Finding, 0)
	for _, p := range d.phrases {
		start, end := lexicon.IndexFold(text, p.Term)
		if start < 0 {
			continue
		}
		findings = append(findings, Finding{
			Term:        p.Term,
			Explanation: p.Explanation,
			Snippet:     d.snippet(text, start, end),
		})
	}
	return findings
}

// snippet widens [start, end) by contextChars runes on each side, clamped to text.
func (d *Detector) snippet(text string, start, end int) string {
	from := start
	for i := 0; i < d.contextChars && from > 0; i++ {
		_, w := utf8.DecodeLastRuneInString(text[:from])
		from -= w
	}
	to := end
	for i := 0; i < d.contextChars && to < len(text); i++ {
		_, w := utf8.DecodeRuneInString(text[to:])
		to += w
	}
	return strings.TrimSpace(text[from:to])
}
