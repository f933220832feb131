// Package schema validates analysis payloads against the published draft-07
// documents. The documents are opaque contracts; this package only decides
// pass/fail and which violation gets reported.
package schema

import (
	"embed"
	"fmt"
	"sort"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed schemas/*.schema.json
var schemaFS embed.FS

// LoadError marks a missing or malformed schema document. That is a
// configuration fault, distinct from a validation failure.
type LoadError struct {
	Name string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("schema %s unavailable: %v", e.Name, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// ValidationError carries the single reported violation.
type ValidationError struct {
	Schema  string
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("Schema validation failed for %s: %s", e.Schema, e.Message)
}

// Validate checks payload against the named embedded document. When several
// violations are found, the one with the lexicographically smallest field
// path is reported, so the message is stable across validator versions and
// iteration orders.
func Validate(payload any, name string) error {
	raw, err := schemaFS.ReadFile("schemas/" + name + ".schema.json")
	if err != nil {
		return &LoadError{Name: name, Err: err}
	}

	loader := gojsonschema.NewSchemaLoader()
	loader.Draft = gojsonschema.Draft7
	compiled, err := loader.Compile(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return &LoadError{Name: name, Err: err}
	}

	result, err := compiled.Validate(gojsonschema.NewGoLoader(payload))
	if err != nil {
		return fmt.Errorf("validate against %s: %w", name, err)
	}
	if result.Valid() {
		return nil
	}

	violations := result.Errors()
	sort.SliceStable(violations, func(i, j int) bool {
		return violations[i].Field() < violations[j].Field()
	})
	first := violations[0]
	return &ValidationError{Schema: name, Field: first.Field(), Message: first.Description()}
}
