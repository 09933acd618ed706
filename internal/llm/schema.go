package llm

// ChatCompletionEnvelopeSchema returns the JSON-Schema a chat/completions
// response must satisfy before its content is trusted. Content may be absent
// or null (handled as passthrough) but never a non-string value.
func ChatCompletionEnvelopeSchema() map[string]any {
	message := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"role": map[string]any{"type": "string"},
			"content": map[string]any{
				"type": []any{"string", "null"},
			},
		},
	}
	choice := map[string]any{
		"type":     "object",
		"required": []any{"message"},
		"properties": map[string]any{
			"index":         map[string]any{"type": "integer"},
			"message":       message,
			"finish_reason": map[string]any{"type": []any{"string", "null"}},
		},
	}
	return map[string]any{
		"type":     "object",
		"required": []any{"choices"},
		"properties": map[string]any{
			"choices": map[string]any{
				"type":     "array",
				"minItems": 1,
				"items":    choice,
			},
		},
	}
}
