package constants

import (
	"strings"
)

type ContractType string

const (
	LeaseRental ContractType = "Lease/Rental"
	Employment  ContractType = "Employment"
	Vendor      ContractType = "Vendor"
	NDA         ContractType = "NDA"
	General     ContractType = "General"
)

// allContractTypes is indexed by the class index a classification model emits.
var allContractTypes = []ContractType{
	LeaseRental,
	Employment,
	Vendor,
	NDA,
	General,
}

func AsStringSlice() []string {
	result := make([]string, len(allContractTypes))
	for i, ct := range allContractTypes {
		result[i] = string(ct)
	}
	return result
}

// ContractTypeCount is the number of classes a classification model may emit.
func ContractTypeCount() int { return len(allContractTypes) }

// ContractTypeFromIndex maps a model class index to a ContractType; out of range maps to General.
func ContractTypeFromIndex(idx int) ContractType {
	if idx < 0 || idx >= len(allContractTypes) {
		return General
	}
	return allContractTypes[idx]
}

// Label is the display label used in exports and CLI output.
func (c ContractType) Label() string {
	switch c {
	case LeaseRental:
		return "Lease / Rental Agreement"
	case Employment:
		return "Employment Agreement"
	case Vendor:
		return "Vendor Contract"
	case NDA:
		return "NDA (Non-Disclosure Agreement)"
	default:
		return "General Contract"
	}
}

// Canonicalize resolves a free-form label (config files, model output) to a ContractType.
func Canonicalize(input string) (ContractType, bool) {
	if input == "" {
		return General, false
	}

	normalized := strings.ToLower(strings.TrimSpace(input))

	synonyms := map[string]ContractType{
		"lease":          LeaseRental,
		"rental":         LeaseRental,
		"lease / rental": LeaseRental,
		"employment":     Employment,
		"vendor":         Vendor,
		"nda":            NDA,
		"non-disclosure": NDA,
		"general":        General,
	}

	if ct, ok := synonyms[normalized]; ok {
		return ct, true
	}

	for _, ct := range allContractTypes {
		if normalized == strings.ToLower(string(ct)) || normalized == strings.ToLower(ct.Label()) {
			return ct, true
		}
	}

	return General, false
}
