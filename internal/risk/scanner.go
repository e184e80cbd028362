// Package risk scores contract text against a lexicon of risk-indicating terms.
package risk

import (
	"github.com/joseph-ayodele/contracts-analyzer/constants"
	"github.com/joseph-ayodele/contracts-analyzer/internal/lexicon"
)

type Finding struct {
	Term        string             `json:"term"`
	Severity    constants.Severity `json:"severity"`
	Explanation string             `json:"explanation"`
}

// Report holds the clamped score and one finding per matched term, in lexicon order.
type Report struct {
	Score    int       `json:"score"`
	Findings []Finding `json:"findings"`
}

type Scanner struct {
	terms []lexicon.RiskTerm
}

// NewScanner copies terms; a nil or empty slice uses the built-in lexicon.
func NewScanner(terms []lexicon.RiskTerm) *Scanner {
	if len(terms) == 0 {
		terms = lexicon.DefaultRisk()
	}
	return &Scanner{terms: append([]lexicon.RiskTerm(nil), terms...)}
}

// Scan never fails; a report without findings is a valid result.
func (s *Scanner) Scan(text string) Report {
	score := 0
	findings := make([]Finding, 0, len(s.terms))
	for _, t := range s.terms {
		if !lexicon.ContainsFold(text, t.Term) {
			continue
		}
		score += t.Severity.Weight()
		findings = append(findings, Finding{
			Term:        t.Term,
			Severity:    t.Severity,
			Explanation: t.Explanation,
		})
	}
	return Report{Score: min(score, constants.MaxRiskScore), Findings: findings}
}
