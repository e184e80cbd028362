package constants

// Severity of a risk lexicon term.
type Severity string

const (
	SeverityHigh   Severity = "High"
	SeverityMedium Severity = "Medium"
)

// Weight is the score contribution of a matched term.
func (s Severity) Weight() int {
	switch s {
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	default:
		return 0
	}
}

func (s Severity) Valid() bool {
	return s == SeverityHigh || s == SeverityMedium
}

// MaxRiskScore is the clamp applied to the summed weights.
const MaxRiskScore = 10
