package llm

// DocumentSchema is the static JSON Schema for the document model, supplied
// to providers that support constrained decoding. It is self-referential
// through $defs and never varies with the prompt: instruction text is
// configuration, not schema.
func DocumentSchema() map[string]any {
	block := map[string]any{
		"anyOf": []any{
			map[string]any{"$ref": "#/$defs/content"},
			map[string]any{"$ref": "#/$defs/heading"},
		},
	}
	return map[string]any{
		"type":                 "object",
		"properties":           map[string]any{"contents": map[string]any{"type": "array", "items": block}},
		"required":             []any{"contents"},
		"additionalProperties": false,
		"$defs": map[string]any{
			"content": map[string]any{
				"type":                 "object",
				"properties":           map[string]any{"content": map[string]any{"type": "string"}},
				"required":             []any{"content"},
				"additionalProperties": false,
			},
			"heading": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"level":    map[string]any{"type": "integer"},
					"text":     map[string]any{"type": "string"},
					"children": map[string]any{"type": "array", "items": block},
				},
				"required":             []any{"level", "text", "children"},
				"additionalProperties": false,
			},
		},
	}
}
