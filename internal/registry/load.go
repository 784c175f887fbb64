package registry

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/jonathan/resume-site/internal/types"
)

// Load reads a registry JSON file: {"default": "...", "variants": [...]}.
func Load(path string) (*types.Registry, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		cause := err
		if errors.Is(err, fs.ErrNotExist) {
			cause = fmt.Errorf("%w: %w", types.ErrNotFound, err)
		}
		return nil, &LoadError{Path: path, Message: "failed to read registry", Cause: cause}
	}

	reg, err := Parse(content)
	if err != nil {
		return nil, &LoadError{Path: path, Message: "failed to parse registry", Cause: err}
	}
	return reg, nil
}

// Parse decodes and validates registry JSON.
func Parse(content []byte) (*types.Registry, error) {
	var reg types.Registry
	if err := json.Unmarshal(content, &reg); err != nil {
		return nil, fmt.Errorf("%w: %w", types.ErrMalformed, err)
	}
	if err := reg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", types.ErrMalformed, err)
	}
	return &reg, nil
}
