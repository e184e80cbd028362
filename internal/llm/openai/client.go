// Package openai implements the llm capabilities on top of OpenAI-compatible
// chat/completions endpoints using JSON-mode replies validated against a schema.
package openai

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joseph-ayodele/contracts-analyzer/constants"
	"github.com/joseph-ayodele/contracts-analyzer/internal/common"
	"github.com/joseph-ayodele/contracts-analyzer/internal/llm"
)

var (
	_ llm.Summarizer         = (*Client)(nil)
	_ llm.ContractClassifier = (*Client)(nil)
	_ llm.Translator         = (*Client)(nil)
	_ llm.QuestionAnswerer   = (*Client)(nil)
)

// Summarize implements llm.Summarizer.
func (c *Client) Summarize(ctx context.Context, text string, minLen, maxLen int) (string, error) {
	var out struct {
		Summary string `json:"summary"`
	}
	if err := c.complete(ctx, "summarize", llm.SummarizeSystemPrompt(minLen, maxLen), text, llm.SummarySchema(), &out); err != nil {
		return "", err
	}
	return strings.TrimSpace(out.Summary), nil
}

// ClassifyIndex implements llm.ContractClassifier.
func (c *Client) ClassifyIndex(ctx context.Context, text string) (int, error) {
	var out struct {
		ClassIndex int `json:"class_index"`
	}
	schema := llm.ClassificationSchema(constants.ContractTypeCount())
	if err := c.complete(ctx, "classify", llm.ClassifySystemPrompt(), c.clip(text), schema, &out); err != nil {
		return 0, err
	}
	return out.ClassIndex, nil
}

// Translate implements llm.Translator.
func (c *Client) Translate(ctx context.Context, text, targetLang string) (string, error) {
	var out struct {
		Translation string `json:"translation"`
	}
	if err := c.complete(ctx, "translate", llm.TranslateSystemPrompt(targetLang), text, llm.TranslationSchema(), &out); err != nil {
		return "", err
	}
	return strings.TrimSpace(out.Translation), nil
}

// Answer implements llm.QuestionAnswerer.
func (c *Client) Answer(ctx context.Context, question, contractText string) (string, error) {
	var out struct {
		Answer string `json:"answer"`
	}
	user := llm.AnswerUserPrompt(question, contractText, c.cfg.MaxInputChars)
	if err := c.complete(ctx, "answer", llm.AnswerSystemPrompt(), user, llm.AnswerSchema(), &out); err != nil {
		return "", err
	}
	return strings.TrimSpace(out.Answer), nil
}

// complete runs one JSON-mode chat completion, validates the reply against schema and decodes it into out.
func (c *Client) complete(ctx context.Context, op, system, user string, schema map[string]any, out any) error {
	rid := uuid.New().String()
	start := time.Now()
	stage := "llm." + op
	log := common.LoggerFromContext(ctx, c.log)

	log.Info(stage+".start", "req_id", rid, "temp", c.cfg.Temperature, "text_len", len(user))

	body := map[string]any{
		"model":           c.cfg.Model,
		"temperature":     c.cfg.Temperature,
		"response_format": map[string]any{"type": "json_object"},
		"messages": []map[string]any{
			{"role": "system", "content": system},
			{"role": "user", "content": user},
		},
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	headers := map[string]string{"Authorization": "Bearer " + c.cfg.APIKey}
	raw, _, httpErr := llm.SendJSON(ctx, c.httpClient, endpoint, body, headers, log)
	if httpErr != nil {
		log.Error(stage+".http_error", "req_id", rid, "error", httpErr, "elapsed_ms", time.Since(start).Milliseconds())
		return common.NewCapabilityError(stage, "openai request failed", httpErr)
	}

	var cc struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &cc); err != nil {
		log.Error(stage+".decode_error", "req_id", rid, "error", err, "raw_bytes", len(raw))
		return common.NewCapabilityError(stage, "decode openai response", err)
	}
	if len(cc.Choices) == 0 {
		log.Error(stage+".no_choices", "req_id", rid, "raw", string(raw))
		return common.NewCapabilityError(stage, "no choices in openai response", nil)
	}

	content := []byte(llm.StripCodeFences(cc.Choices[0].Message.Content))
	if err := llm.DecodeReply(stage, schema, content, out); err != nil {
		log.Error(stage+".reply_rejected", "req_id", rid, "error", err, "content", string(content))
		return err
	}

	log.Info(stage+".ok", "req_id", rid, "elapsed_ms", time.Since(start).Milliseconds())
	return nil
}

func (c *Client) clip(text string) string {
	if len(text) <= c.cfg.MaxInputChars {
		return text
	}
	return strings.ToValidUTF8(text[:c.cfg.MaxInputChars], "")
}
