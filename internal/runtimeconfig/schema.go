package runtimeconfig

import (
	"encoding/json"
	"fmt"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

// Filter payloads are open-ended property conditions; the schema pins the
// parts the Notion API is strict about, the compound and/or shape.
const filterSchemaJSON = `{
	"type": "object",
	"minProperties": 1,
	"properties": {
		"and": {"type": "array", "minItems": 1, "items": {"$ref": "#"}},
		"or": {"type": "array", "minItems": 1, "items": {"$ref": "#"}}
	}
}`

const sortsSchemaJSON = `{
	"type": "array",
	"minItems": 1,
	"items": {
		"type": "object",
		"properties": {
			"property": {"type": "string"},
			"timestamp": {"enum": ["created_time", "last_edited_time"]},
			"direction": {"enum": ["ascending", "descending"]}
		},
		"required": ["direction"],
		"oneOf": [
			{"required": ["property"]},
			{"required": ["timestamp"]}
		],
		"additionalProperties": false
	}
}`

// ValidateFilter checks a notion_filter payload's shape before it reaches
// the API. An absent filter is fine.
func ValidateFilter(filter map[string]any) error {
	if len(filter) == 0 {
		return nil
	}
	return validateAgainstSchema("notion_filter", filterSchemaJSON, filter)
}

// ValidateSorts checks a notion_sorts payload's shape. An absent list is
// fine.
func ValidateSorts(sorts []any) error {
	if len(sorts) == 0 {
		return nil
	}
	return validateAgainstSchema("notion_sorts", sortsSchemaJSON, sorts)
}

func validateAgainstSchema(field, source string, payload any) error {
	schema, err := compileSchema(field+".json", source)
	if err != nil {
		return fmt.Errorf("compile %s schema: %w", field, err)
	}
	normalized, err := normalizePayload(payload)
	if err != nil {
		return fmt.Errorf("%s does not encode to json: %w", field, err)
	}
	if err := schema.Validate(normalized); err != nil {
		return fmt.Errorf("%s: %w", field, err)
	}
	return nil
}

func compileSchema(name, source string) (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource(name, strings.NewReader(source)); err != nil {
		return nil, err
	}
	return compiler.Compile(name)
}

// normalizePayload round-trips YAML-decoded values through encoding/json so
// the schema validator sees the types it expects.
func normalizePayload(payload any) (any, error) {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	var normalized any
	if err := json.Unmarshal(encoded, &normalized); err != nil {
		return nil, err
	}
	return normalized, nil
}
