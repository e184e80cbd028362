package llm

import (
	"fmt"
	"strings"

	"github.com/joseph-ayodele/contracts-analyzer/constants"
)

// SummarizeSystemPrompt instructs a chat model to behave like an extractive/abstractive summarizer.
func SummarizeSystemPrompt(minLen, maxLen int) string {
	parts := []string{
		"You summarize sections of legal contracts.",
		fmt.Sprintf("Write between %d and %d words.", minLen, maxLen),
		"Keep obligations, parties, amounts, dates, and termination or liability terms.",
		"Do not invent facts and do not add commentary.",
		`Return ONLY JSON of the form {"summary": "..."}.`,
	}
	return strings.Join(parts, " ")
}

// ClassifySystemPrompt enumerates the contract classes by index.
func ClassifySystemPrompt() string {
	var b strings.Builder
	b.WriteString("You classify legal contracts. Classes:\n")
	for i, label := range constants.AsStringSlice() {
		fmt.Fprintf(&b, "%d = %s\n", i, label)
	}
	b.WriteString(`Return ONLY JSON of the form {"class_index": <integer>}.`)
	return b.String()
}

// TranslateSystemPrompt asks for a faithful translation into targetLang.
func TranslateSystemPrompt(targetLang string) string {
	return "Translate the user's text into the language with ISO 639-1 code " + targetLang +
		". Preserve meaning and legal terminology. " + `Return ONLY JSON of the form {"translation": "..."}.`
}

// AnswerSystemPrompt restricts answers to the supplied contract text.
func AnswerSystemPrompt() string {
	return "Answer the question using only the contract text provided. " +
		"If the text does not contain the answer, say so. " + `Return ONLY JSON of the form {"answer": "..."}.`
}

// AnswerUserPrompt frames the question and context for AnswerSystemPrompt.
func AnswerUserPrompt(question, context string, maxChars int) string {
	if maxChars > 0 && len(context) > maxChars {
		context = strings.ToValidUTF8(context[:maxChars], "")
	}
	return "Contract text:\n" + context + "\n\nQuestion: " + question
}
