package llm

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// Kind is a JSON value type.
type Kind string

const (
	KindObject Kind = "object"
	KindArray  Kind = "array"
	KindString Kind = "string"
	KindNumber Kind = "number"
)

// Schema is a provider-neutral response schema. Providers translate it to
// their own format; Validate checks model output against it.
type Schema struct {
	Kind        Kind
	Description string
	// Properties keeps declaration order, which some providers honour.
	Properties []Property
	Required   []string
	Items      *Schema
}

// Property is a named object member.
type Property struct {
	Name   string
	Schema *Schema
}

func Object(required []string, props ...Property) *Schema {
	return &Schema{Kind: KindObject, Properties: props, Required: required}
}

func Array(items *Schema) *Schema { return &Schema{Kind: KindArray, Items: items} }

func String(desc string) *Schema { return &Schema{Kind: KindString, Description: desc} }

func Number(desc string) *Schema { return &Schema{Kind: KindNumber, Description: desc} }

func Prop(name string, s *Schema) Property { return Property{Name: name, Schema: s} }

// JSONSchema renders the schema as a JSON Schema document.
func (s *Schema) JSONSchema() map[string]any {
	if s == nil {
		return map[string]any{}
	}
	out := map[string]any{"type": string(s.Kind)}
	if s.Description != "" {
		out["description"] = s.Description
	}
	if len(s.Properties) > 0 {
		props := make(map[string]any, len(s.Properties))
		for _, p := range s.Properties {
			props[p.Name] = p.Schema.JSONSchema()
		}
		out["properties"] = props
	}
	if len(s.Required) > 0 {
		out["required"] = append([]string(nil), s.Required...)
	}
	if s.Items != nil {
		out["items"] = s.Items.JSONSchema()
	}
	return out
}

// ValidationError lists every field that failed validation.
type ValidationError struct {
	Errors []FieldError
}

// FieldError is a single validation failure.
type FieldError struct {
	Field   string
	Message string
}

func (ve *ValidationError) Error() string {
	parts := make([]string, 0, len(ve.Errors))
	for _, e := range ve.Errors {
		parts = append(parts, e.Field+": "+e.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Validate checks raw JSON against the schema.
func (s *Schema) Validate(raw string) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewGoLoader(s.JSONSchema()),
		gojsonschema.NewStringLoader(raw),
	)
	if err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	if result.Valid() {
		return nil
	}
	ve := &ValidationError{}
	for _, re := range result.Errors() {
		ve.Errors = append(ve.Errors, FieldError{Field: re.Field(), Message: re.Description()})
	}
	return ve
}
