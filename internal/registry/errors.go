// Package registry loads the variant registry and resolves which resume variant to publish.
package registry

import "fmt"

// LoadError represents an error reading or parsing the registry file
type LoadError struct {
	Path    string
	Message string
	Cause   error
}

func (e *LoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("registry load error: %s: %s: %v", e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("registry load error: %s: %s", e.Path, e.Message)
}

func (e *LoadError) Unwrap() error {
	return e.Cause
}

// ResolutionError reports that no variant could be selected
type ResolutionError struct {
	Identifier string
	Message    string
	Cause      error
}

func (e *ResolutionError) Error() string {
	msg := e.Message
	if e.Identifier != "" {
		msg = fmt.Sprintf("%s: %q", msg, e.Identifier)
	}
	if e.Cause != nil {
		return fmt.Sprintf("resolution error: %s: %v", msg, e.Cause)
	}
	return fmt.Sprintf("resolution error: %s", msg)
}

func (e *ResolutionError) Unwrap() error {
	return e.Cause
}
