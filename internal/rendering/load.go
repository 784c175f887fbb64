package rendering

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/jonathan/resume-site/internal/types"
)

// LoadTemplate reads and parses a template file
func LoadTemplate(templatePath string) (*Template, error) {
	content, err := os.ReadFile(templatePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &TemplateError{
				Message: fmt.Sprintf("template file not found: %s", templatePath),
				Cause:   fmt.Errorf("%w: %w", types.ErrNotFound, err),
			}
		}
		return nil, &TemplateError{
			Message: fmt.Sprintf("failed to read template file: %s", templatePath),
			Cause:   err,
		}
	}
	return Parse(string(content)), nil
}
