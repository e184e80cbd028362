package llm

import "context"

// Summarizer condenses text to roughly [minLen, maxLen] words.
type Summarizer interface {
	Summarize(ctx context.Context, text string, minLen, maxLen int) (string, error)
}

// ContractClassifier returns the model's class index for the full contract text.
type ContractClassifier interface {
	ClassifyIndex(ctx context.Context, text string) (int, error)
}

// Translator renders text in targetLang (ISO 639-1, e.g. "hi").
type Translator interface {
	Translate(ctx context.Context, text, targetLang string) (string, error)
}

// QuestionAnswerer answers question using only the supplied context.
type QuestionAnswerer interface {
	Answer(ctx context.Context, question, context string) (string, error)
}

// SummarizerFunc adapts a function to Summarizer.
type SummarizerFunc func(ctx context.Context, text string, minLen, maxLen int) (string, error)

func (f SummarizerFunc) Summarize(ctx context.Context, text string, minLen, maxLen int) (string, error) {
	return f(ctx, text, minLen, maxLen)
}

// ClassifierFunc adapts a function to ContractClassifier.
type ClassifierFunc func(ctx context.Context, text string) (int, error)

func (f ClassifierFunc) ClassifyIndex(ctx context.Context, text string) (int, error) {
	return f(ctx, text)
}
