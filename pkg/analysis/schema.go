package analysis

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/dukex/flowgate/pkg/models"
	"github.com/xeipuuv/gojsonschema"
)

// ErrInvalidGraph is wrapped by every GraphValidationError.
var ErrInvalidGraph = errors.New("invalid workflow graph")

// GraphValidationError lists what is wrong with an uploaded graph document.
type GraphValidationError struct {
	Issues []string
}

func (e *GraphValidationError) Error() string {
	return fmt.Sprintf("%v: %s", ErrInvalidGraph, strings.Join(e.Issues, "; "))
}

func (e *GraphValidationError) Unwrap() error {
	return ErrInvalidGraph
}

const graphSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["name", "nodes"],
  "properties": {
    "name": {"type": "string", "minLength": 1, "pattern": "\\S"},
    "nodes": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "anyOf": [
          {"required": ["id"], "properties": {"id": {"type": "string", "minLength": 1}}},
          {"required": ["name"], "properties": {"name": {"type": "string", "minLength": 1}}}
        ],
        "properties": {
          "id": {"type": ["string", "null"]},
          "name": {"type": "string"},
          "type": {"type": "string"},
          "webhookId": {"type": ["string", "null"]},
          "parameters": {"type": ["object", "null"]},
          "credentials": {
            "type": ["object", "null"],
            "additionalProperties": {
              "type": "object",
              "properties": {
                "id": {"type": ["string", "null"]},
                "name": {"type": "string"}
              }
            }
          }
        }
      }
    },
    "connections": {"type": ["object", "null"]}
  }
}`

var graphSchemaLoader = gojsonschema.NewStringLoader(graphSchema)

// ValidateGraphDocument checks a raw uploaded document before it is decoded:
// a non-empty name and a non-empty node array are required, and every node
// needs an id or, in older exports, a name.
func ValidateGraphDocument(document []byte) error {
	result, err := gojsonschema.Validate(graphSchemaLoader, gojsonschema.NewBytesLoader(document))
	if err != nil {
		return &GraphValidationError{Issues: []string{"document is not valid JSON: " + err.Error()}}
	}

	if result.Valid() {
		return nil
	}

	issues := make([]string, 0, len(result.Errors()))
	for _, resultErr := range result.Errors() {
		issues = append(issues, resultErr.String())
	}

	return &GraphValidationError{Issues: issues}
}

// ValidateGraph applies the document rules to an already decoded graph.
func ValidateGraph(graph models.WorkflowGraph) error {
	document, err := json.Marshal(graph)
	if err != nil {
		return &GraphValidationError{Issues: []string{err.Error()}}
	}

	return ValidateGraphDocument(document)
}
