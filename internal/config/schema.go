package config

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed schema.json
var schemaJSON string

var schemaLoader = gojsonschema.NewStringLoader(schemaJSON)

// SchemaError lists every violation found in a configuration document.
type SchemaError struct {
	Violations []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("invalid config: %s", strings.Join(e.Violations, "; "))
}

// ValidateSchema checks merged settings against the embedded JSON schema.
func ValidateSchema(settings map[string]interface{}) error {
	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewGoLoader(settings))
	if err != nil {
		return fmt.Errorf("failed to validate config: %w", err)
	}
	if result.Valid() {
		return nil
	}

	violations := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		violations = append(violations, e.String())
	}
	return &SchemaError{Violations: violations}
}
