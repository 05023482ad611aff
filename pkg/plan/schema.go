package plan

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Schema couples a compiled JSON Schema with the Go type a conforming
// document decodes into.
type Schema[T any] struct {
	name     string
	compiled *jsonschema.Schema
	defaults func(*T)
}

// NewSchema compiles source (a JSON Schema document) under name. The optional
// defaults func runs after a document has been decoded into T.
func NewSchema[T any](name, source string, defaults func(*T)) (*Schema[T], error) {
	c := jsonschema.NewCompiler()
	url := name + ".json"
	if err := c.AddResource(url, strings.NewReader(source)); err != nil {
		return nil, fmt.Errorf("add schema %s: %w", name, err)
	}
	compiled, err := c.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compile schema %s: %w", name, err)
	}
	return &Schema[T]{name: name, compiled: compiled, defaults: defaults}, nil
}

// MustSchema is like NewSchema but panics on error. It is intended for
// package-level schemas whose source is a constant.
func MustSchema[T any](name, source string, defaults func(*T)) *Schema[T] {
	s, err := NewSchema(name, source, defaults)
	if err != nil {
		panic(err)
	}
	return s
}

// Name returns the schema name.
func (s *Schema[T]) Name() string { return s.name }

// Decode parses text, checks it against the schema and decodes it into T.
// Text is expected to be normalized already (see [Normalize]).
func (s *Schema[T]) Decode(text string) (T, error) {
	var zero T

	var doc any
	if err := json.Unmarshal([]byte(text), &doc); err != nil {
		return zero, fmt.Errorf("parse: %w", err)
	}
	if err := s.compiled.Validate(doc); err != nil {
		return zero, errors.New(describe(err))
	}

	var v T
	if err := json.Unmarshal([]byte(text), &v); err != nil {
		return zero, fmt.Errorf("decode: %w", err)
	}
	if s.defaults != nil {
		s.defaults(&v)
	}
	return v, nil
}

// describe flattens a schema validation error into its leaf causes, e.g.
// "/components/0: missing properties: 'name'".
func describe(err error) string {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return err.Error()
	}

	var msgs []string
	var walk func(e *jsonschema.ValidationError)
	walk = func(e *jsonschema.ValidationError) {
		if len(e.Causes) == 0 {
			loc := e.InstanceLocation
			if loc == "" {
				loc = "/"
			}
			msgs = append(msgs, fmt.Sprintf("%s: %s", loc, e.Message))
			return
		}
		for _, c := range e.Causes {
			walk(c)
		}
	}
	walk(ve)
	return strings.Join(msgs, "; ")
}

const architectureSchemaSource = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["components"],
  "properties": {
    "components": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["id", "name", "type"],
        "properties": {
          "id": {"type": "string", "minLength": 1},
          "name": {"type": "string", "minLength": 1},
          "type": {"type": "string", "minLength": 1},
          "description": {"type": "string"}
        }
      }
    },
    "relationships": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["from", "to"],
        "properties": {
          "from": {"type": "string", "minLength": 1},
          "to": {"type": "string", "minLength": 1},
          "label": {"type": "string"},
          "protocol": {"type": "string"}
        }
      }
    },
    "data_flows": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["from", "to"],
        "properties": {
          "from": {"type": "string", "minLength": 1},
          "to": {"type": "string", "minLength": 1},
          "data": {"type": "string"}
        }
      }
    },
    "infra": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["id", "name"],
        "properties": {
          "id": {"type": "string", "minLength": 1},
          "name": {"type": "string", "minLength": 1},
          "type": {"type": "string"}
        }
      }
    },
    "constraints": {
      "type": "array",
      "items": {"type": "string"}
    },
    "architecture_style": {"type": "string"}
  }
}`

var (
	architectureOnce   sync.Once
	architectureSchema *Schema[ArchitecturePlan]
)

// ArchitectureSchema returns the structural schema for [ArchitecturePlan].
func ArchitectureSchema() *Schema[ArchitecturePlan] {
	architectureOnce.Do(func() {
		architectureSchema = MustSchema("architecture-plan", architectureSchemaSource,
			func(p *ArchitecturePlan) { p.applyDefaults() })
	})
	return architectureSchema
}
