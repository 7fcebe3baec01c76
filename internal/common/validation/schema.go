// Package validation checks configuration blocks and job inputs against
// JSON schemas.
package validation

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	apperrors "archetype-resolver/internal/common/errors"
)

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// ArchetypesConfigSchema describes the archetypes block of the
// configuration: a non-empty object of named archetypes, each with a uri.
const ArchetypesConfigSchema = `{
  "type": "object",
  "minProperties": 1,
  "additionalProperties": {
    "type": "object",
    "required": ["uri"],
    "properties": {
      "uri": {"type": "string", "minLength": 1},
      "default_construction_specific": {
        "type": "object",
        "properties": {
          "active": {"type": "boolean"},
          "wall": {"type": "string"},
          "roof": {"type": "string"},
          "groundfloor": {"type": "string"},
          "window": {"type": "string"},
          "internal_ceiling": {"type": "string"}
        }
      }
    }
  }
}`

// ResolveInputSchema describes the variables of a resolve-archetypes job.
const ResolveInputSchema = `{
  "type": "object",
  "required": ["buildingIds"],
  "properties": {
    "buildingIds": {
      "type": "array",
      "minItems": 1,
      "items": {"type": "integer"}
    },
    "includeConstructions": {"type": "boolean"}
  }
}`

// Validate checks doc against the JSON schema text.
func Validate(schemaJSON string, doc interface{}) (*ValidationResult, error) {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(schemaJSON),
		gojsonschema.NewGoLoader(doc),
	)
	if err != nil {
		return nil, fmt.Errorf("validation error: %w", err)
	}

	out := &ValidationResult{Valid: result.Valid()}
	for _, desc := range result.Errors() {
		out.Errors = append(out.Errors, ValidationError{
			Field:   desc.Field(),
			Message: desc.Description(),
			Code:    strings.ToUpper(desc.Type()),
		})
	}
	return out, nil
}

// ValidateArchetypesConfig validates the raw archetypes block as read by
// the config loader.
func ValidateArchetypesConfig(raw map[string]interface{}) error {
	return validateAsConfig(ArchetypesConfigSchema, raw, "archetypes")
}

// ValidateResolveInput validates the variables of a resolve-archetypes job.
func ValidateResolveInput(vars map[string]interface{}) error {
	return validateAsConfig(ResolveInputSchema, vars, "input")
}

func validateAsConfig(schemaJSON string, doc interface{}, what string) error {
	result, err := Validate(schemaJSON, doc)
	if err != nil {
		return apperrors.NewConfigurationError(fmt.Sprintf("%s: %v", what, err))
	}
	if !result.Valid {
		return apperrors.NewConfigurationError(
			fmt.Sprintf("%s: %s", what, strings.Join(result.GetErrorMessages(), "; ")))
	}
	return nil
}

// GetErrorMessages returns a simple list of error messages
func (vr *ValidationResult) GetErrorMessages() []string {
	messages := make([]string, len(vr.Errors))
	for i, err := range vr.Errors {
		messages[i] = fmt.Sprintf("%s: %s", err.Field, err.Message)
	}
	return messages
}

// HasErrors checks if validation has errors for specific field
func (vr *ValidationResult) HasErrors(field string) bool {
	for _, err := range vr.Errors {
		if err.Field == field {
			return true
		}
	}
	return false
}

// GetErrorsForField returns errors for a specific field or any of its children.
func (vr *ValidationResult) GetErrorsForField(field string) []ValidationError {
	var fieldErrors []ValidationError
	for _, err := range vr.Errors {
		if err.Field == field || strings.HasPrefix(err.Field, field+".") {
			fieldErrors = append(fieldErrors, err)
		}
	}
	return fieldErrors
}
