// Package schemas provides JSON Schema validation for resume documents and the variant registry.
package schemas

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/xeipuuv/gojsonschema"

	"github.com/jonathan/resume-site/internal/types"
)

// Schema files, relative to the repository root
const (
	ResumeSchemaFile   = "schemas/resume.schema.json"
	RegistrySchemaFile = "schemas/registry.schema.json"
)

// ResolveSchemaPath attempts to find a schema file by trying multiple common path resolutions.
// It tries paths relative to the current working directory, then paths relative to likely repo root locations.
// Returns the first path that exists, or empty string if none found.
func ResolveSchemaPath(relativePath string) string {
	candidates := []string{
		relativePath,
		filepath.Join("..", relativePath),
		filepath.Join("..", "..", relativePath),
	}

	for _, candidate := range candidates {
		if absPath, err := filepath.Abs(candidate); err == nil {
			if _, err := os.Stat(absPath); err == nil {
				return absPath
			}
		}
	}

	return ""
}

// Validator checks JSON documents against one compiled schema
type Validator struct {
	Path   string
	schema *gojsonschema.Schema
}

// NewValidator loads and compiles the schema at schemaPath.
func NewValidator(schemaPath string) (*Validator, error) {
	absPath, err := filepath.Abs(schemaPath)
	if err != nil {
		return nil, &SchemaLoadError{Path: schemaPath, Message: "failed to resolve schema path", Cause: err}
	}
	if _, err := os.Stat(absPath); err != nil {
		return nil, &SchemaLoadError{Path: absPath, Message: "schema file not found", Cause: fmt.Errorf("%w: %w", types.ErrNotFound, err)}
	}

	schema, err := gojsonschema.NewSchema(gojsonschema.NewReferenceLoader("file://" + filepath.ToSlash(absPath)))
	if err != nil {
		return nil, &SchemaLoadError{Path: absPath, Message: "failed to compile schema", Cause: err}
	}
	return &Validator{Path: absPath, schema: schema}, nil
}

// NewValidatorFromString compiles an inline schema.
func NewValidatorFromString(schemaContent string) (*Validator, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(schemaContent))
	if err != nil {
		return nil, &SchemaLoadError{Path: "(string schema)", Message: "failed to compile schema", Cause: err}
	}
	return &Validator{Path: "(string schema)", schema: schema}, nil
}

// ValidateBytes validates one JSON document. A document that is not JSON
// yields an error wrapping types.ErrMalformed; a document that violates the
// schema yields a *ValidationError listing every violation.
func (v *Validator) ValidateBytes(data []byte) error {
	result, err := v.schema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("%w: %w", types.ErrMalformed, err)
	}
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

// ValidateFile reads and validates the document at path.
func (v *Validator) ValidateFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("JSON file not found: %s: %w", path, types.ErrNotFound)
		}
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := v.ValidateBytes(data); err != nil {
		var ve *ValidationError
		if errors.As(err, &ve) {
			ve.Path = path
			return ve
		}
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// ValidateJSON validates a JSON file against a JSON Schema file
func ValidateJSON(schemaPath, jsonPath string) error {
	v, err := NewValidator(schemaPath)
	if err != nil {
		return err
	}
	return v.ValidateFile(jsonPath)
}

// ValidateJSONString validates JSON string content against schema string content
func ValidateJSONString(schemaContent, jsonContent string) error {
	v, err := NewValidatorFromString(schemaContent)
	if err != nil {
		return err
	}
	return v.ValidateBytes([]byte(jsonContent))
}

// FileResult is the outcome of validating one file
type FileResult struct {
	Path string
	Err  error
}

// ValidateFiles validates every path and returns one result per path, in order.
func (v *Validator) ValidateFiles(paths []string) []FileResult {
	results := make([]FileResult, len(paths))
	for i, p := range paths {
		results[i] = FileResult{Path: p, Err: v.ValidateFile(p)}
	}
	return results
}

// Failed counts the results carrying an error.
func Failed(results []FileResult) int {
	n := 0
	for _, r := range results {
		if r.Err != nil {
			n++
		}
	}
	return n
}
