package llm

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// BuildReceiptSchema returns the JSON-Schema (draft 2020-12 subset) the model
// is asked to follow. It is also used locally: a response that parses but
// fails this schema is still interpreted leniently, and the resulting record
// is flagged for review instead of being rejected.
func BuildReceiptSchema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"vendor": map[string]any{"type": []string{"string", "null"}},
			"date":   map[string]any{"type": []string{"string", "null"}},
			"total":  map[string]any{"type": []string{"number", "null"}},
			"tax":    map[string]any{"type": []string{"number", "null"}},
			"line_items": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type":                 "object",
					"additionalProperties": false,
					"properties": map[string]any{
						"name":     map[string]any{"type": "string"},
						"quantity": map[string]any{"type": "number"},
						"price":    map[string]any{"type": "number"},
					},
					"required": []string{"name", "quantity", "price"},
				},
			},
		},
		"required": []string{"vendor", "date", "total", "tax", "line_items"},
	}
}

// ValidateAgainstSchema validates data against schemaMap.
func ValidateAgainstSchema(schemaMap map[string]any, data []byte) error {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(b)); err != nil {
		return fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("schema.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("json does not match schema: %w", err)
	}
	return nil
}
