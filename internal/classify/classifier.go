// Package classify labels a contract with one of the fixed contract types.
//
// Two strategies exist: KeywordClassifier, a deterministic rule list, and
// CapabilityClassifier, which asks an injected model and falls back to the
// keyword rules when the model fails. Select picks one once at startup.
package classify

import (
	"context"
	"log/slog"

	"github.com/joseph-ayodele/contracts-analyzer/constants"
	"github.com/joseph-ayodele/contracts-analyzer/internal/common"
	"github.com/joseph-ayodele/contracts-analyzer/internal/lexicon"
	"github.com/joseph-ayodele/contracts-analyzer/internal/llm"
)

const (
	StrategyKeyword    = "keyword"
	StrategyCapability = "capability"
)

type Classifier interface {
	Classify(ctx context.Context, text string) constants.ContractType
	Strategy() string
}

// KeywordClassifier evaluates ordered rules with case-insensitive substring search.
type KeywordClassifier struct {
	rules []lexicon.ClassRule
}

// NewKeywordClassifier copies rules; a nil or empty slice uses the built-in rules.
func NewKeywordClassifier(rules []lexicon.ClassRule) *KeywordClassifier {
	if len(rules) == 0 {
		rules = lexicon.DefaultClassification()
	}
	cp := make([]lexicon.ClassRule, len(rules))
	for i, r := range rules {
		cp[i] = lexicon.ClassRule{Type: r.Type, Keywords: append([]string(nil), r.Keywords...)}
	}
	return &KeywordClassifier{rules: cp}
}

func (k *KeywordClassifier) Classify(_ context.Context, text string) constants.ContractType {
	for _, r := range k.rules {
		for _, kw := range r.Keywords {
			if lexicon.ContainsFold(text, kw) {
				return r.Type
			}
		}
	}
	return constants.General
}

func (k *KeywordClassifier) Strategy() string { return StrategyKeyword }

// CapabilityClassifier maps the capability's class index onto constants.ContractType.
type CapabilityClassifier struct {
	capability llm.ContractClassifier
	fallback   *KeywordClassifier
	logger     *slog.Logger
}

func NewCapabilityClassifier(capability llm.ContractClassifier, fallback *KeywordClassifier, logger *slog.Logger) *CapabilityClassifier {
	if logger == nil {
		logger = slog.Default()
	}
	if fallback == nil {
		fallback = NewKeywordClassifier(nil)
	}
	return &CapabilityClassifier{capability: capability, fallback: fallback, logger: logger}
}

// Classify never aborts: a capability failure is logged and answered by the keyword rules.
func (c *CapabilityClassifier) Classify(ctx context.Context, text string) constants.ContractType {
	log := common.LoggerFromContext(ctx, c.logger)
	idx, err := c.capability.ClassifyIndex(ctx, text)
	if err != nil {
		ct := c.fallback.Classify(ctx, text)
		log.Warn("classify.capability_failed",
			"error", common.NewCapabilityError("classify", "classification capability failed", err),
			"fallback", string(ct),
		)
		return ct
	}
	ct := constants.ContractTypeFromIndex(idx)
	if idx < 0 || idx >= constants.ContractTypeCount() {
		log.Warn("classify.index_out_of_range", "index", idx, "mapped", string(ct))
	}
	return ct
}

func (c *CapabilityClassifier) Strategy() string { return StrategyCapability }

// Select resolves the strategy once: capability-backed when one is available, else keywords.
func Select(capability llm.ContractClassifier, rules []lexicon.ClassRule, logger *slog.Logger) Classifier {
	if logger == nil {
		logger = slog.Default()
	}
	kw := NewKeywordClassifier(rules)
	if capability == nil {
		logger.Info("classifier selected", "strategy", StrategyKeyword)
		return kw
	}
	logger.Info("classifier selected", "strategy", StrategyCapability)
	return NewCapabilityClassifier(capability, kw, logger)
}
