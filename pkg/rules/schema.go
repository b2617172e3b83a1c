package rules

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// ruleDocumentSchema is the JSON schema every stored rule document must
// satisfy before it is accepted into the rule set. The conditional branches
// mirror the two variants of the tagged union: structured rules need a
// condition, semantic rules need a prompt.
const ruleDocumentSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["id", "name", "type"],
  "properties": {
    "id": {"type": "string", "minLength": 1},
    "name": {"type": "string", "minLength": 1},
    "type": {"type": "string", "enum": ["structured", "semantic"]},
    "enabled": {"type": "boolean"},
    "applies_to": {
      "type": "array",
      "items": {"type": "string", "minLength": 1}
    },
    "condition": {
      "type": "object",
      "required": ["field", "operator"],
      "properties": {
        "field": {"type": "string", "minLength": 1},
        "operator": {
          "type": "string",
          "enum": ["equals", "in", "notEmpty", "greaterThan", "lessThan"]
        }
      }
    },
    "prompt": {"type": "string"},
    "guidance": {"type": "string"}
  },
  "allOf": [
    {
      "if": {"properties": {"type": {"const": "structured"}}},
      "then": {"required": ["condition"]}
    },
    {
      "if": {"properties": {"type": {"const": "semantic"}}},
      "then": {"required": ["prompt"]}
    }
  ]
}`

// ValidateDocument checks a raw rule document against the rule schema.
func ValidateDocument(document []byte) error {
	schemaLoader := gojsonschema.NewStringLoader(ruleDocumentSchema)
	documentLoader := gojsonschema.NewBytesLoader(document)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("failed to validate rule document: %w", err)
	}

	if !result.Valid() {
		messages := make([]string, 0, len(result.Errors()))
		for _, issue := range result.Errors() {
			messages = append(messages, issue.String())
		}

		return fmt.Errorf("invalid rule document: %s", strings.Join(messages, "; "))
	}

	return nil
}
