package llm

import (
	"encoding/json"
	"errors"
	"testing"
)

func testSchema() *Schema {
	return &Schema{
		Name:        "test-object",
		Description: "A test object",
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"name":  map[string]any{"type": "string"},
				"age":   map[string]any{"type": "integer", "minimum": 0},
				"grade": map[string]any{"type": "string", "enum": []any{"A", "B", "C"}},
			},
			"required": []any{"name", "age"},
		},
	}
}

func decode(t *testing.T, raw string) any {
	t.Helper()
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		t.Fatalf("decode %q: %v", raw, err)
	}
	return v
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{"all fields", `{"name":"Alice","age":10,"grade":"A"}`, false},
		{"without optional", `{"name":"Bob","age":8}`, false},
		{"missing required", `{"name":"Charlie"}`, true},
		{"wrong type", `{"name":"Dave","age":"ten"}`, true},
		{"invalid enum", `{"name":"Eve","age":9,"grade":"D"}`, true},
		{"negative minimum", `{"name":"Fay","age":-1}`, true},
		{"array instead of object", `[{"name":"Gus","age":1}]`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(testSchema(), decode(t, tt.raw))
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				var schemaErr *ErrSchema
				if !errors.As(err, &schemaErr) {
					t.Fatalf("expected ErrSchema, got: %T", err)
				}
				if schemaErr.Schema != "test-object" {
					t.Fatalf("expected schema name test-object, got %q", schemaErr.Schema)
				}
			}
		})
	}
}

func TestValidate_NilSchema(t *testing.T) {
	if err := Validate(nil, decode(t, `{"anything":true}`)); err != nil {
		t.Fatalf("expected no error with nil schema, got: %v", err)
	}
}

func TestValidate_ArrayRootWithMinItems(t *testing.T) {
	schema := &Schema{
		Name: "test-array",
		Definition: map[string]any{
			"type":     "array",
			"minItems": 1,
			"items": map[string]any{
				"type":     "object",
				"required": []string{"title"},
				"properties": map[string]any{
					"title": map[string]any{"type": "string"},
				},
			},
		},
	}

	if err := Validate(schema, decode(t, `[{"title":"one"}]`)); err != nil {
		t.Fatalf("expected valid, got: %v", err)
	}
	if err := Validate(schema, decode(t, `[]`)); err == nil {
		t.Fatal("expected error for empty array")
	}
	if err := Validate(schema, decode(t, `[{"name":"x"}]`)); err == nil {
		t.Fatal("expected error for missing title")
	}
}

func TestValidate_CachesCompiledSchema(t *testing.T) {
	s := testSchema()
	s.Name = "test-cache"

	first, err := compiledSchema(s)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	second, err := compiledSchema(s)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if first != second {
		t.Fatal("expected the cached schema to be reused")
	}
}
