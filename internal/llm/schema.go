package llm

// BuildOrderJSONSchema returns a JSON-Schema (draft 2020-12 subset) as a generic map.
// We send it to the model alongside the prompt and also use it locally to validate.
// Qty and rate are nullable: null means "not stated", zero is a real value.
func BuildOrderJSONSchema() map[string]any {
	item := map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"name": map[string]any{"type": "string", "minLength": 1},
			"qty":  nullableNumber(),
			"rate": nullableNumber(),
		},
		"required": []string{"name"},
	}
	data := map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"customer": map[string]any{"type": []string{"string", "null"}},
			"items":    map[string]any{"type": "array", "items": item},
		},
		"required": []string{"items"},
	}

	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"status":         map[string]any{"type": "string", "enum": []string{"complete", "incomplete", "error"}},
			"data":           data,
			"missing_fields": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
			"message":        map[string]any{"type": []string{"string", "null"}},
		},
		"required": []string{"status", "data"},
	}
}

func nullableNumber() map[string]any {
	return map[string]any{
		"type":    []string{"number", "null"},
		"minimum": 0,
	}
}
