package lexicon

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/joseph-ayodele/contracts-analyzer/constants"
	"github.com/joseph-ayodele/contracts-analyzer/internal/common"
)

// LoadFile reads a YAML lexicon file. Sections missing from the file keep the defaults.
func LoadFile(path string) (Set, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Set{}, common.NewConfigError("lexicon", "read lexicon file", err)
	}
	return Parse(b)
}

// Parse decodes YAML lexicon data over the defaults and validates the result.
func Parse(data []byte) (Set, error) {
	var raw Set
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Set{}, common.NewConfigError("lexicon", "decode lexicon yaml", err)
	}

	set := Default()
	if raw.Risk != nil {
		set.Risk = raw.Risk
	}
	if raw.Unfavorable != nil {
		set.Unfavorable = raw.Unfavorable
	}
	if raw.Classification != nil {
		set.Classification = raw.Classification
	}
	for i := range set.Classification {
		if ct, ok := constants.Canonicalize(string(set.Classification[i].Type)); ok {
			set.Classification[i].Type = ct
		}
	}
	if err := set.Validate(); err != nil {
		return Set{}, err
	}
	return set, nil
}

// Validate rejects empty sections, empty terms and unknown severities or contract types.
func (s Set) Validate() error {
	v := common.NewValidator()
	v.Check(len(s.Risk) > 0, "risk", s.Risk, "must not be empty; omit the section to keep the defaults")
	v.Check(len(s.Unfavorable) > 0, "unfavorable", s.Unfavorable, "must not be empty; omit the section to keep the defaults")
	v.Check(len(s.Classification) > 0, "classification", s.Classification, "must not be empty; omit the section to keep the defaults")
	for i, t := range s.Risk {
		field := fmt.Sprintf("risk[%d]", i)
		v.Field(field+".term", t.Term, common.Required)
		v.Check(t.Severity.Valid(), field+".severity", t.Severity, "must be High or Medium")
	}
	for i, p := range s.Unfavorable {
		v.Field(fmt.Sprintf("unfavorable[%d].term", i), p.Term, common.Required)
	}
	for i, r := range s.Classification {
		field := fmt.Sprintf("classification[%d]", i)
		_, known := constants.Canonicalize(string(r.Type))
		v.Check(known, field+".type", r.Type, "must be one of: "+strings.Join(constants.AsStringSlice(), ", "))
		v.Check(len(r.Keywords) > 0, field+".keywords", r.Keywords, "must not be empty")
		for j, kw := range r.Keywords {
			v.Field(fmt.Sprintf("%s.keywords[%d]", field, j), kw, common.Required)
		}
	}
	return common.ValidateAndReturnError("lexicon", v)
}
