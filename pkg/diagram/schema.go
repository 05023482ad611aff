package diagram

import (
	"sync"

	"github.com/harishkotra/SketchStack/pkg/plan"
)

const planSchemaSource = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["nodes", "edges"],
  "properties": {
    "nodes": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["id", "label", "type"],
        "properties": {
          "id": {"type": "string"},
          "label": {"type": "string"},
          "type": {"type": "string"},
          "cloud_icon": {"type": "string"},
          "layer": {"type": "string"},
          "x": {"type": "number"},
          "y": {"type": "number"}
        }
      }
    },
    "edges": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["from", "to"],
        "properties": {
          "from": {"type": "string"},
          "to": {"type": "string"},
          "label": {"type": "string"},
          "protocol": {"type": "string"}
        }
      }
    }
  }
}`

var (
	schemaOnce sync.Once
	schema     *plan.Schema[Plan]
)

// Schema returns the structural schema for a serialized [Plan]. Decoded
// nodes with a missing or unknown layer get the layer of their type.
func Schema() *plan.Schema[Plan] {
	schemaOnce.Do(func() {
		schema = plan.MustSchema("diagram-plan", planSchemaSource, func(p *Plan) {
			for i := range p.Nodes {
				p.Nodes[i].Layer = p.Nodes[i].EffectiveLayer()
			}
		})
	})
	return schema
}
