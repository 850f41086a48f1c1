// Package schemas provides JSON Schema validation for upstream payloads.
package schemas

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed job_board.schema.json
var jobBoardSchema []byte

// ValidationError represents a schema validation error with field paths
type ValidationError struct {
	Errors []FieldError
}

// FieldError represents a single validation error at a specific field
type FieldError struct {
	Field   string
	Message string
}

func (ve *ValidationError) Error() string {
	var sb strings.Builder
	sb.WriteString("validation failed:\n")
	for i, err := range ve.Errors {
		sb.WriteString(fmt.Sprintf("  %d. %s: %s\n", i+1, err.Field, err.Message))
	}
	return sb.String()
}

// SchemaLoadError represents errors loading or parsing the schema itself
type SchemaLoadError struct {
	Name    string
	Message string
	Cause   error
}

func (e *SchemaLoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("failed to load schema %s: %s: %v", e.Name, e.Message, e.Cause)
	}
	return fmt.Sprintf("failed to load schema %s: %s", e.Name, e.Message)
}

func (e *SchemaLoadError) Unwrap() error {
	return e.Cause
}

// DocumentError means the document is not parseable JSON.
type DocumentError struct {
	Cause error
}

func (e *DocumentError) Error() string {
	return fmt.Sprintf("document is not valid JSON: %v", e.Cause)
}

func (e *DocumentError) Unwrap() error {
	return e.Cause
}

var (
	jobBoardOnce   sync.Once
	jobBoardLoaded *gojsonschema.Schema
	jobBoardErr    error
)

func loadJobBoardSchema() (*gojsonschema.Schema, error) {
	jobBoardOnce.Do(func() {
		jobBoardLoaded, jobBoardErr = gojsonschema.NewSchema(gojsonschema.NewBytesLoader(jobBoardSchema))
		if jobBoardErr != nil {
			jobBoardErr = &SchemaLoadError{Name: "job_board.schema.json", Message: "invalid schema", Cause: jobBoardErr}
		}
	})
	return jobBoardLoaded, jobBoardErr
}

// ValidateJobBoard checks the minimal shape of a job-board response: an
// object with an array "jobs" field. Postings themselves are not checked
// here; a malformed posting is skipped by the decoder, not the whole feed.
func ValidateJobBoard(body []byte) error {
	schema, err := loadJobBoardSchema()
	if err != nil {
		return err
	}
	result, err := schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return &DocumentError{Cause: err}
	}
	return toValidationError(result)
}

func toValidationError(result *gojsonschema.Result) error {
	if result.Valid() {
		return nil
	}

	validationErr := &ValidationError{
		Errors: make([]FieldError, 0, len(result.Errors())),
	}
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		validationErr.Errors = append(validationErr.Errors, FieldError{
			Field:   field,
			Message: desc.Description(),
		})
	}
	return validationErr
}
