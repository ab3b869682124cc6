// Package schema generates JSON Schemas for generation outputs and tool
// arguments from Go types.
package schema

import "github.com/invopop/jsonschema"

// Generate reflects T into an inlined JSON Schema (no $ref, no $schema)
// that disallows additional properties.
func Generate[T any]() *jsonschema.Schema {
	var v T
	return From(v)
}

// From reflects the dynamic type of v
func From(v any) *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	s := reflector.Reflect(v)
	s.Version = ""
	return s
}
