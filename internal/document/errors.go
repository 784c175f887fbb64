// Package document loads raw resume documents and normalizes them into the display model.
package document

import "fmt"

// LoadError represents an error reading or parsing a raw document
type LoadError struct {
	Path    string
	Message string
	Cause   error
}

func (e *LoadError) Error() string {
	where := e.Path
	if where == "" {
		where = "(inline)"
	}
	if e.Cause != nil {
		return fmt.Sprintf("load error: %s: %s: %v", where, e.Message, e.Cause)
	}
	return fmt.Sprintf("load error: %s: %s", where, e.Message)
}

func (e *LoadError) Unwrap() error {
	return e.Cause
}
