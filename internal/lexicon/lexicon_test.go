package lexicon

import (
	"errors"
	"testing"

	"github.com/joseph-ayodele/contracts-analyzer/constants"
	"github.com/joseph-ayodele/contracts-analyzer/internal/common"
)

func TestIndexFold(t *testing.T) {
	tests := []struct {
		s, sub     string
		start, end int
	}{
		{"Termination Without Notice applies", "termination without notice", 0, 26},
		{"see the PENALTY clause", "penalty", 8, 15},
		{"no match here", "penalty", -1, -1},
		// U+017F folds to s and is two bytes wide
		{"ſecret", "secret", 0, 7},
		// Kelvin sign is three bytes wide
		{"5 Kilograms", "kilo", 2, 8},
		{"abc", "", 0, 0},
	}
	for _, tt := range tests {
		start, end := IndexFold(tt.s, tt.sub)
		if start != tt.start || end != tt.end {
			t.Errorf("IndexFold(%q, %q) = (%d, %d), want (%d, %d)", tt.s, tt.sub, start, end, tt.start, tt.end)
		}
	}
	if !ContainsFold("Non-Compete", "non-compete") || ContainsFold("compete", "non-compete") {
		t.Error("ContainsFold mismatch")
	}
}

func TestDefaultsValidate(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("default lexicon invalid: %v", err)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	a := Default()
	b := a.Clone()
	b.Risk[0].Term = "changed"
	b.Classification[0].Keywords[0] = "changed"
	if a.Risk[0].Term == "changed" || a.Classification[0].Keywords[0] == "changed" {
		t.Error("Clone shares backing arrays")
	}
}

func TestParseOverridesSections(t *testing.T) {
	data := []byte(`
unfavorable:
  - term: exclusive jurisdiction
    explanation: Disputes must be heard in one forum.
classification:
  - type: lease
    keywords: [premises]
`)
	set, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(set.Risk) != len(DefaultRisk()) {
		t.Errorf("risk section not defaulted: %d terms", len(set.Risk))
	}
	if len(set.Unfavorable) != 1 || set.Unfavorable[0].Term != "exclusive jurisdiction" {
		t.Errorf("unfavorable = %+v", set.Unfavorable)
	}
	if len(set.Classification) != 1 || set.Classification[0].Type != constants.LeaseRental {
		t.Errorf("classification = %+v", set.Classification)
	}
}

func TestParseRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"bad yaml":             "risk: [",
		"bad severity":         "risk:\n  - term: fee\n    severity: Low\n",
		"empty term":           "unfavorable:\n  - term: \"\"\n",
		"unknown type":         "classification:\n  - type: Franchise\n    keywords: [franchisee]\n",
		"empty keyword":        "classification:\n  - type: NDA\n    keywords: []\n",
		"empty risk":           "risk: []\n",
		"empty unfavorable":    "unfavorable: []\n",
		"empty classification": "classification: []\n",
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := Parse([]byte(data)); !errors.Is(err, common.ErrConfiguration) {
				t.Errorf("err = %v, want configuration error", err)
			}
		})
	}
}
