package llm

// SummarySchema constrains a summarization reply to {"summary": "..."}.
func SummarySchema() map[string]any {
	return textReplySchema("summary")
}

// TranslationSchema constrains a translation reply to {"translation": "..."}.
func TranslationSchema() map[string]any {
	return textReplySchema("translation")
}

// AnswerSchema constrains a question-answering reply to {"answer": "..."}.
func AnswerSchema() map[string]any {
	return textReplySchema("answer")
}

// ClassificationSchema constrains a classification reply to {"class_index": 0..classes-1}.
func ClassificationSchema(classes int) map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"class_index": map[string]any{"type": "integer", "minimum": 0, "maximum": classes - 1},
		},
		"required": []string{"class_index"},
	}
}

func textReplySchema(key string) map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			key: map[string]any{"type": "string", "minLength": 1},
		},
		"required": []string{key},
	}
}
