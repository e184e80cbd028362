// Package lexicon holds the fixed, ordered keyword data the detectors are built from.
// A Set is never mutated after construction; detectors copy the slices they are given.
package lexicon

import (
	"github.com/joseph-ayodele/contracts-analyzer/constants"
)

// RiskTerm is one risk-indicating keyword.
type RiskTerm struct {
	Term        string             `yaml:"term"`
	Severity    constants.Severity `yaml:"severity"`
	Explanation string             `yaml:"explanation"`
}

// UnfavorablePhrase is one unfavorable-clause phrase.
type UnfavorablePhrase struct {
	Term        string `yaml:"term"`
	Explanation string `yaml:"explanation"`
}

// ClassRule maps any of Keywords to Type. Rules are evaluated in order; first match wins.
type ClassRule struct {
	Type     constants.ContractType `yaml:"type"`
	Keywords []string               `yaml:"keywords"`
}

// Set bundles the three lexicons.
type Set struct {
	Risk           []RiskTerm          `yaml:"risk"`
	Unfavorable    []UnfavorablePhrase `yaml:"unfavorable"`
	Classification []ClassRule         `yaml:"classification"`
}

// DefaultRisk returns a fresh copy of the built-in risk lexicon.
func DefaultRisk() []RiskTerm {
	return []RiskTerm{
		{Term: "penalty", Severity: constants.SeverityHigh, Explanation: "Could impose financial burden on the signer."},
		{Term: "termination", Severity: constants.SeverityMedium, Explanation: "The contract may be ended abruptly without enough notice."},
		{Term: "liability", Severity: constants.SeverityHigh, Explanation: "Exposes signer to potential unlimited responsibility."},
		{Term: "indemnify", Severity: constants.SeverityHigh, Explanation: "One party must cover losses/damages of the other."},
		{Term: "breach", Severity: constants.SeverityMedium, Explanation: "Strict consequences if obligations are not met."},
		{Term: "damages", Severity: constants.SeverityMedium, Explanation: "Compensation obligations in case of failure."},
	}
}

// DefaultUnfavorable returns a fresh copy of the built-in unfavorable-clause lexicon.
func DefaultUnfavorable() []UnfavorablePhrase {
	return []UnfavorablePhrase{
		{Term: "termination without notice", Explanation: "Allows one party to end the contract suddenly, leaving the other vulnerable."},
		{Term: "auto-renewal", Explanation: "The contract may renew automatically without explicit consent, locking the business in."},
		{Term: "unlimited liability", Explanation: "Exposes the SME to very high financial risk."},
		{Term: "non-compete", Explanation: "Restricts the SME from doing other business activities, may be too broad."},
		{Term: "arbitration outside india", Explanation: "Legal disputes may become costly and inconvenient if handled abroad."},
	}
}

// DefaultClassification returns the keyword rules in priority order. General is the implicit default.
func DefaultClassification() []ClassRule {
	return []ClassRule{
		{Type: constants.LeaseRental, Keywords: []string{"lease", "landlord", "tenant"}},
		{Type: constants.Employment, Keywords: []string{"employee", "employer", "salary"}},
		{Type: constants.Vendor, Keywords: []string{"vendor", "purchase order"}},
		{Type: constants.NDA, Keywords: []string{"confidential", "non-disclosure"}},
	}
}

// Default returns the built-in Set.
func Default() Set {
	return Set{
		Risk:           DefaultRisk(),
		Unfavorable:    DefaultUnfavorable(),
		Classification: DefaultClassification(),
	}
}

// Clone deep-copies s so callers can hold it without sharing backing arrays.
func (s Set) Clone() Set {
	out := Set{
		Risk:           append([]RiskTerm(nil), s.Risk...),
		Unfavorable:    append([]UnfavorablePhrase(nil), s.Unfavorable...),
		Classification: make([]ClassRule, len(s.Classification)),
	}
	for i, r := range s.Classification {
		out.Classification[i] = ClassRule{Type: r.Type, Keywords: append([]string(nil), r.Keywords...)}
	}
	return out
}
