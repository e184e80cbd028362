// Package eino adapts any eino chat model to the llm capabilities.
// NewOpenAICompatible builds one for OpenAI-compatible endpoints.
package eino

import (
	"context"
	"log/slog"
	"strings"
	"time"

	openaiModel "github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/joseph-ayodele/contracts-analyzer/constants"
	"github.com/joseph-ayodele/contracts-analyzer/internal/common"
	"github.com/joseph-ayodele/contracts-analyzer/internal/llm"
)

// ChatModelConfig defines the configuration for creating a chat model.
type ChatModelConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float32
	Timeout     time.Duration
}

// NewOpenAICompatible creates an OpenAI-compatible chat model from specific configuration.
func NewOpenAICompatible(ctx context.Context, cfg ChatModelConfig) (model.BaseChatModel, error) {
	if cfg.APIKey == "" {
		return nil, common.NewConfigError("llm.eino", "API key is required", nil)
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	temp := cfg.Temperature
	m, err := openaiModel.NewChatModel(ctx, &openaiModel.ChatModelConfig{
		APIKey:      cfg.APIKey,
		BaseURL:     cfg.BaseURL,
		Model:       cfg.Model,
		Temperature: &temp,
		Timeout:     cfg.Timeout,
	})
	if err != nil {
		return nil, common.NewConfigError("llm.eino", "create chat model", err)
	}
	return m, nil
}

// Capability prompts a chat model for JSON replies and validates them like the HTTP providers do.
type Capability struct {
	chat          model.BaseChatModel
	log           *slog.Logger
	maxInputChars int
}

var (
	_ llm.Summarizer         = (*Capability)(nil)
	_ llm.ContractClassifier = (*Capability)(nil)
	_ llm.Translator         = (*Capability)(nil)
	_ llm.QuestionAnswerer   = (*Capability)(nil)
)

func New(chat model.BaseChatModel, logger *slog.Logger) *Capability {
	if logger == nil {
		logger = slog.Default()
	}
	return &Capability{chat: chat, log: logger.With("provider", "eino"), maxInputChars: 12000}
}

func (c *Capability) Summarize(ctx context.Context, text string, minLen, maxLen int) (string, error) {
	var out struct {
		Summary string `json:"summary"`
	}
	if err := c.generate(ctx, "llm.summarize", llm.SummarizeSystemPrompt(minLen, maxLen), text, llm.SummarySchema(), &out); err != nil {
		return "", err
	}
	return strings.TrimSpace(out.Summary), nil
}

func (c *Capability) ClassifyIndex(ctx context.Context, text string) (int, error) {
	var out struct {
		ClassIndex int `json:"class_index"`
	}
	if len(text) > c.maxInputChars {
		text = strings.ToValidUTF8(text[:c.maxInputChars], "")
	}
	schema := llm.ClassificationSchema(constants.ContractTypeCount())
	if err := c.generate(ctx, "llm.classify", llm.ClassifySystemPrompt(), text, schema, &out); err != nil {
		return 0, err
	}
	return out.ClassIndex, nil
}

func (c *Capability) Translate(ctx context.Context, text, targetLang string) (string, error) {
	var out struct {
		Translation string `json:"translation"`
	}
	if err := c.generate(ctx, "llm.translate", llm.TranslateSystemPrompt(targetLang), text, llm.TranslationSchema(), &out); err != nil {
		return "", err
	}
	return strings.TrimSpace(out.Translation), nil
}

func (c *Capability) Answer(ctx context.Context, question, contractText string) (string, error) {
	var out struct {
		Answer string `json:"answer"`
	}
	user := llm.AnswerUserPrompt(question, contractText, c.maxInputChars)
	if err := c.generate(ctx, "llm.answer", llm.AnswerSystemPrompt(), user, llm.AnswerSchema(), &out); err != nil {
		return "", err
	}
	return strings.TrimSpace(out.Answer), nil
}

func (c *Capability) generate(ctx context.Context, stage, system, user string, schemaMap map[string]any, out any) error {
	start := time.Now()
	log := common.LoggerFromContext(ctx, c.log)
	msgs := []*schema.Message{
		{Role: schema.System, Content: system},
		{Role: schema.User, Content: user},
	}
	resp, err := c.chat.Generate(ctx, msgs)
	if err != nil {
		log.Error(stage+".generate_error", "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		return common.NewCapabilityError(stage, "chat model generate failed", err)
	}
	if resp == nil {
		return common.NewCapabilityError(stage, "chat model returned no message", nil)
	}
	content := []byte(llm.StripCodeFences(resp.Content))
	if err := llm.DecodeReply(stage, schemaMap, content, out); err != nil {
		log.Error(stage+".reply_rejected", "error", err, "content", string(content))
		return err
	}
	log.Debug(stage+".ok", "elapsed_ms", time.Since(start).Milliseconds())
	return nil
}
