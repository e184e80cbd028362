// Package app wires configuration into the extractor, capability backend,
// persistence and processor shared by every binary.
package app

import (
	"context"
	"log/slog"

	"github.com/joseph-ayodele/contracts-analyzer/internal/classify"
	"github.com/joseph-ayodele/contracts-analyzer/internal/common"
	"github.com/joseph-ayodele/contracts-analyzer/internal/extract"
	"github.com/joseph-ayodele/contracts-analyzer/internal/lexicon"
	"github.com/joseph-ayodele/contracts-analyzer/internal/llm"
	"github.com/joseph-ayodele/contracts-analyzer/internal/llm/eino"
	"github.com/joseph-ayodele/contracts-analyzer/internal/llm/hf"
	"github.com/joseph-ayodele/contracts-analyzer/internal/llm/openai"
	"github.com/joseph-ayodele/contracts-analyzer/internal/ocr"
	"github.com/joseph-ayodele/contracts-analyzer/internal/pipeline"
	"github.com/joseph-ayodele/contracts-analyzer/internal/summarize"
)

// Capabilities holds whatever the configured backend provides; any field may be nil.
type Capabilities struct {
	Backend    string
	Summarizer llm.Summarizer
	Classifier llm.ContractClassifier
	Translator llm.Translator
	QA         llm.QuestionAnswerer
}

// NewCapabilities builds the backend named by cfg.Backend. The classification capability is
// only exposed when cfg.ClassifierEnabled is set; otherwise the keyword rules classify.
func NewCapabilities(ctx context.Context, cfg common.LLMConfig, logger *slog.Logger) (Capabilities, error) {
	if logger == nil {
		logger = slog.Default()
	}
	caps := Capabilities{Backend: cfg.Backend}

	switch cfg.Backend {
	case common.BackendOpenAI:
		c := openai.NewClient(openai.Config{
			APIKey:      cfg.APIKey,
			BaseURL:     cfg.BaseURL,
			Model:       cfg.Model,
			Temperature: cfg.Temperature,
			Timeout:     cfg.Timeout,
		}, logger)
		caps.Summarizer, caps.Classifier, caps.Translator, caps.QA = c, c, c, c
	case common.BackendHF:
		c := hf.NewClient(hf.Config{
			Token:           cfg.HFToken,
			BaseURL:         cfg.HFBaseURL,
			SummaryModel:    cfg.HFSummaryModel,
			ClassifierModel: cfg.HFClassifierModel,
			QAModel:         cfg.HFQAModel,
			Timeout:         cfg.Timeout,
		}, logger)
		caps.Summarizer, caps.QA = c, c
		if cfg.HFClassifierModel != "" {
			caps.Classifier = c
		}
	case common.BackendEino:
		chat, err := eino.NewOpenAICompatible(ctx, eino.ChatModelConfig{
			APIKey:      cfg.APIKey,
			BaseURL:     cfg.BaseURL,
			Model:       cfg.Model,
			Temperature: cfg.Temperature,
			Timeout:     cfg.Timeout,
		})
		if err != nil {
			return Capabilities{}, err
		}
		c := eino.New(chat, logger)
		caps.Summarizer, caps.Classifier, caps.Translator, caps.QA = c, c, c, c
	case common.BackendNone, "":
		logger.Warn("no capability backend configured, summaries are skipped")
	default:
		return Capabilities{}, common.NewConfigError("config", "unknown LLM_BACKEND "+cfg.Backend, common.ErrInvalidInput)
	}

	if !cfg.ClassifierEnabled {
		caps.Classifier = nil
	}
	logger.Info("capability backend ready",
		"backend", cfg.Backend,
		"summarizer", caps.Summarizer != nil,
		"classifier", caps.Classifier != nil,
		"translator", caps.Translator != nil,
		"qa", caps.QA != nil,
	)
	return caps, nil
}

func NewExtractor(cfg common.OCRConfig, logger *slog.Logger) extract.TextExtractor {
	e := ocr.NewExtractor(ocr.Config{
		Pdftotext:           cfg.Pdftotext,
		Pdftoppm:            cfg.Pdftoppm,
		Tesseract:           cfg.Tesseract,
		TesseractLang:       cfg.TesseractLang,
		DPI:                 cfg.DPI,
		MaxPages:            cfg.MaxPages,
		TessdataDir:         cfg.TessdataDir,
		EnableTSVConfidence: cfg.EnableTSVConfidence,
	}, logger)
	return extract.NewOCRAdapter(e, logger)
}

// LoadLexicon returns the built-in lexicon, or the YAML file at path merged over it.
func LoadLexicon(path string, logger *slog.Logger) (lexicon.Set, error) {
	if path == "" {
		return lexicon.Default(), nil
	}
	set, err := lexicon.LoadFile(path)
	if err != nil {
		return lexicon.Set{}, err
	}
	if logger != nil {
		logger.Info("lexicon loaded", "path", path, "risk_terms", len(set.Risk), "unfavorable", len(set.Unfavorable), "rules", len(set.Classification))
	}
	return set, nil
}

// NewProcessor builds the orchestrator from cfg using extractor and caps.
func NewProcessor(cfg *common.Config, extractor extract.TextExtractor, caps Capabilities, logger *slog.Logger, opts ...pipeline.Option) (*pipeline.Processor, error) {
	set, err := LoadLexicon(cfg.Pipeline.LexiconFile, logger)
	if err != nil {
		return nil, err
	}
	summary, err := summarize.ForMode(cfg.Summary.Mode)
	if err != nil {
		return nil, err
	}
	summary.BestEffort = cfg.Summary.BestEffort

	classifier := classify.Select(caps.Classifier, set.Classification, logger)
	return pipeline.NewProcessor(logger, extractor, classifier, caps.Summarizer, pipeline.Config{
		Summary:  summary,
		Parallel: cfg.Pipeline.Parallel,
		Lexicon:  set,
	}, opts...), nil
}
