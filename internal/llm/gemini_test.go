package llm

import (
	"testing"
)

func TestGeminiModelMapping(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"gemini-flash", "gemini-2.0-flash"},
		{"gemini-flash-2.5", "gemini-2.5-flash"},
		{"gemini-pro", "gemini-2.5-pro"},
		{"gemini-2.0-flash-lite", "gemini-2.0-flash-lite"},
	}
	for _, tt := range tests {
		got := resolveModel(tt.input, geminiModels)
		if got != tt.expected {
			t.Errorf("resolveModel(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestBuildGeminiSchema(t *testing.T) {
	def := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"truthfulness":    map[string]any{"type": "string", "enum": []string{"Genuine", "Potentially Inconsistent"}},
			"alert_caretaker": map[string]any{"type": "boolean"},
			"score":           map[string]any{"type": "integer"},
			"tags": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
		},
		"required":             []any{"truthfulness", "alert_caretaker"},
		"additionalProperties": false,
	}

	schema := buildGeminiSchema(def)

	if schema.Type != "OBJECT" {
		t.Fatalf("expected OBJECT type, got %s", schema.Type)
	}
	if len(schema.Properties) != 4 {
		t.Fatalf("expected 4 properties, got %d", len(schema.Properties))
	}
	if schema.Properties["alert_caretaker"].Type != "BOOLEAN" {
		t.Fatalf("expected BOOLEAN for alert_caretaker, got %s", schema.Properties["alert_caretaker"].Type)
	}
	if schema.Properties["score"].Type != "INTEGER" {
		t.Fatalf("expected INTEGER for score, got %s", schema.Properties["score"].Type)
	}
	if len(schema.Properties["truthfulness"].Enum) != 2 {
		t.Fatalf("expected 2 enum values, got %d", len(schema.Properties["truthfulness"].Enum))
	}
	if schema.Properties["tags"].Type != "ARRAY" {
		t.Fatalf("expected ARRAY for tags, got %s", schema.Properties["tags"].Type)
	}
	if schema.Properties["tags"].Items.Type != "STRING" {
		t.Fatalf("expected STRING for tags items, got %s", schema.Properties["tags"].Items.Type)
	}
	if len(schema.Required) != 2 {
		t.Fatalf("expected 2 required fields, got %d", len(schema.Required))
	}
}
