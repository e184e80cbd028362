// Package hf implements the llm capabilities against the Hugging Face
// Inference API: a summarization model, a sequence classifier emitting
// LABEL_<n> labels, and an extractive question-answering model.
package hf

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/joseph-ayodele/contracts-analyzer/internal/common"
	"github.com/joseph-ayodele/contracts-analyzer/internal/llm"
)

const defaultBaseURL = "https://api-inference.huggingface.co/models"

type Config struct {
	Token           string
	BaseURL         string // default https://api-inference.huggingface.co/models
	SummaryModel    string // e.g. "facebook/bart-large-cnn"
	ClassifierModel string // fine-tuned contract classifier; empty disables ClassifyIndex
	QAModel         string // e.g. "deepset/roberta-base-squad2"
	Timeout         time.Duration
	// MaxInputChars bounds classifier and QA input; the hosted models truncate near 512 tokens anyway.
	MaxInputChars int
}

type Client struct {
	cfg        Config
	httpClient *http.Client
	log        *slog.Logger
}

var (
	_ llm.Summarizer         = (*Client)(nil)
	_ llm.ContractClassifier = (*Client)(nil)
	_ llm.QuestionAnswerer   = (*Client)(nil)
)

func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.SummaryModel == "" {
		cfg.SummaryModel = "facebook/bart-large-cnn"
	}
	if cfg.QAModel == "" {
		cfg.QAModel = "deepset/roberta-base-squad2"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 120 * time.Second
	}
	if cfg.MaxInputChars <= 0 {
		cfg.MaxInputChars = 2000
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		log:        logger.With("provider", "hf"),
	}
}

// Summarize calls a summarization pipeline with deterministic decoding.
func (c *Client) Summarize(ctx context.Context, text string, minLen, maxLen int) (string, error) {
	body := map[string]any{
		"inputs": text,
		"parameters": map[string]any{
			"min_length": minLen,
			"max_length": maxLen,
			"do_sample":  false,
		},
	}
	var out []struct {
		SummaryText string `json:"summary_text"`
	}
	if err := c.call(ctx, "llm.summarize", c.cfg.SummaryModel, body, &out); err != nil {
		return "", err
	}
	if len(out) == 0 {
		return "", common.NewCapabilityError("llm.summarize", "empty summarization response", nil)
	}
	return strings.TrimSpace(out[0].SummaryText), nil
}

// ClassifyIndex returns n for the highest-scoring LABEL_n.
func (c *Client) ClassifyIndex(ctx context.Context, text string) (int, error) {
	if c.cfg.ClassifierModel == "" {
		return 0, common.NewCapabilityError("llm.classify", "no classifier model configured", nil)
	}
	body := map[string]any{"inputs": clip(text, c.cfg.MaxInputChars)}
	var raw json.RawMessage
	if err := c.call(ctx, "llm.classify", c.cfg.ClassifierModel, body, &raw); err != nil {
		return 0, err
	}
	labels, err := decodeLabels(raw)
	if err != nil {
		return 0, common.NewCapabilityError("llm.classify", "decode classifier response", err)
	}
	best := -1
	var bestScore float64
	for i, l := range labels {
		if best == -1 || l.Score > bestScore {
			best, bestScore = i, l.Score
		}
	}
	if best == -1 {
		return 0, common.NewCapabilityError("llm.classify", "classifier returned no labels", nil)
	}
	idx, err := labelIndex(labels[best].Label)
	if err != nil {
		return 0, common.NewCapabilityError("llm.classify", "unexpected label", err)
	}
	return idx, nil
}

// Answer calls an extractive QA model.
func (c *Client) Answer(ctx context.Context, question, contractText string) (string, error) {
	body := map[string]any{
		"inputs": map[string]any{
			"question": question,
			"context":  clip(contractText, c.cfg.MaxInputChars),
		},
	}
	var out struct {
		Answer string  `json:"answer"`
		Score  float64 `json:"score"`
	}
	if err := c.call(ctx, "llm.answer", c.cfg.QAModel, body, &out); err != nil {
		return "", err
	}
	return strings.TrimSpace(out.Answer), nil
}

func (c *Client) call(ctx context.Context, stage, model string, body any, out any) error {
	start := time.Now()
	log := common.LoggerFromContext(ctx, c.log).With("model", model)
	url := strings.TrimRight(c.cfg.BaseURL, "/") + "/" + model
	headers := map[string]string{}
	if c.cfg.Token != "" {
		headers["Authorization"] = "Bearer " + c.cfg.Token
	}

	log.Info(stage + ".start")
	raw, _, err := llm.SendJSON(ctx, c.httpClient, url, body, headers, log)
	if err != nil {
		log.Error(stage+".http_error", "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		return common.NewCapabilityError(stage, "hugging face request failed", err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		log.Error(stage+".decode_error", "error", err, "raw_bytes", len(raw))
		return common.NewCapabilityError(stage, "decode hugging face response", err)
	}
	log.Info(stage+".ok", "elapsed_ms", time.Since(start).Milliseconds())
	return nil
}

type scoredLabel struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// decodeLabels accepts both the flat and the batched ([[...]]) classifier reply shapes.
func decodeLabels(raw json.RawMessage) ([]scoredLabel, error) {
	var flat []scoredLabel
	if err := json.Unmarshal(raw, &flat); err == nil {
		return flat, nil
	}
	var nested [][]scoredLabel
	if err := json.Unmarshal(raw, &nested); err != nil {
		return nil, err
	}
	if len(nested) == 0 {
		return nil, nil
	}
	return nested[0], nil
}

func labelIndex(label string) (int, error) {
	s, ok := strings.CutPrefix(label, "LABEL_")
	if !ok {
		return 0, fmt.Errorf("label %q lacks LABEL_ prefix", label)
	}
	return strconv.Atoi(s)
}

func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return strings.ToValidUTF8(s[:n], "")
}
