package schemas

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-site/internal/types"
)

const testSchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"required": ["slug", "version"],
	"properties": {
		"slug": {"type": "string"},
		"version": {"type": "string"},
		"tags": {"type": "array", "items": {"type": "string"}}
	}
}`

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestValidateJSON_ValidJSON(t *testing.T) {
	schemaPath := writeTemp(t, "schema.json", testSchema)
	jsonPath := writeTemp(t, "doc.json", `{"slug": "cv", "version": "1.0.0"}`)

	assert.NoError(t, ValidateJSON(schemaPath, jsonPath))
}

func TestValidateJSON_InvalidJSON_MissingField(t *testing.T) {
	schemaPath := writeTemp(t, "schema.json", testSchema)
	jsonPath := writeTemp(t, "doc.json", `{"slug": "cv"}`)

	err := ValidateJSON(schemaPath, jsonPath)
	require.Error(t, err)

	validationErr, ok := err.(*ValidationError)
	require.True(t, ok, "error should be ValidationError type")
	require.Len(t, validationErr.Errors, 1)
	assert.Equal(t, "(root)", validationErr.Errors[0].Field)
	assert.Equal(t, jsonPath, validationErr.Path)
}

func TestValidateJSON_InvalidJSON_WrongType(t *testing.T) {
	schemaPath := writeTemp(t, "schema.json", testSchema)
	jsonPath := writeTemp(t, "doc.json", `{"slug": 1, "version": "1", "tags": [1, "ok"]}`)

	err := ValidateJSON(schemaPath, jsonPath)
	require.Error(t, err)

	validationErr, ok := err.(*ValidationError)
	require.True(t, ok, "error should be ValidationError type")
	assert.Len(t, validationErr.Errors, 2, "every violation is reported")
}

func TestValidateJSON_NonExistentSchema(t *testing.T) {
	jsonPath := writeTemp(t, "doc.json", `{}`)

	err := ValidateJSON(filepath.Join(t.TempDir(), "nope.json"), jsonPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
	assert.True(t, errors.Is(err, types.ErrNotFound))

	var loadErr *SchemaLoadError
	assert.True(t, errors.As(err, &loadErr))
}

func TestValidateJSON_NonExistentJSON(t *testing.T) {
	schemaPath := writeTemp(t, "schema.json", testSchema)

	err := ValidateJSON(schemaPath, filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
	assert.True(t, errors.Is(err, types.ErrNotFound))
}

func TestValidateJSON_MalformedJSON(t *testing.T) {
	schemaPath := writeTemp(t, "schema.json", testSchema)
	jsonPath := writeTemp(t, "doc.json", `{"slug": `)

	err := ValidateJSON(schemaPath, jsonPath)
	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrMalformed))
	assert.Contains(t, err.Error(), jsonPath)
}

func TestValidateJSON_MalformedSchema(t *testing.T) {
	schemaPath := writeTemp(t, "schema.json", `{"type": `)
	jsonPath := writeTemp(t, "doc.json", `{}`)

	err := ValidateJSON(schemaPath, jsonPath)
	var loadErr *SchemaLoadError
	assert.True(t, errors.As(err, &loadErr))
}

func TestValidateJSONString_Valid(t *testing.T) {
	assert.NoError(t, ValidateJSONString(testSchema, `{"slug": "cv", "version": "2"}`))
}

func TestValidateJSONString_Invalid(t *testing.T) {
	err := ValidateJSONString(testSchema, `{"version": 2}`)
	require.Error(t, err)

	validationErr, ok := err.(*ValidationError)
	require.True(t, ok)
	assert.Len(t, validationErr.Errors, 2)
}

func TestValidationError_Error(t *testing.T) {
	err := &ValidationError{
		Path: "data/resumes/cv@1.json",
		Errors: []FieldError{
			{Field: "meta.slug", Message: "Invalid type"},
			{Field: "(root)", Message: "name is required"},
		},
	}

	assert.Equal(t,
		"validation failed for data/resumes/cv@1.json:\n  1. meta.slug: Invalid type\n  2. (root): name is required\n",
		err.Error())
}

func TestValidateFiles(t *testing.T) {
	v, err := NewValidatorFromString(testSchema)
	require.NoError(t, err)

	good := writeTemp(t, "good.json", `{"slug": "cv", "version": "1"}`)
	bad := writeTemp(t, "bad.json", `{"slug": "cv"}`)

	results := v.ValidateFiles([]string{good, bad})
	require.Len(t, results, 2)
	assert.NoError(t, results[0].Err)
	assert.Error(t, results[1].Err)
	assert.Equal(t, bad, results[1].Path)
	assert.Equal(t, 1, Failed(results))
}

func TestResolveSchemaPath(t *testing.T) {
	path := ResolveSchemaPath(ResumeSchemaFile)
	require.NotEmpty(t, path, "resume schema should resolve from the package directory")
	assert.True(t, filepath.IsAbs(path))

	assert.Empty(t, ResolveSchemaPath("schemas/does-not-exist.json"))
}
