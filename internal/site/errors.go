// Package site builds the static resume site: every registered variant is
// located, normalized, rendered and published with its redirects.
package site

import (
	"fmt"

	"github.com/jonathan/resume-site/internal/types"
)

// BuildError represents a failure that aborts a whole build
type BuildError struct {
	Message string
	Cause   error
}

func (e *BuildError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("build error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("build error: %s", e.Message)
}

func (e *BuildError) Unwrap() error {
	return e.Cause
}

// VariantError represents a failure building a single variant
type VariantError struct {
	Ref     types.VariantRef
	Message string
	Cause   error
}

func (e *VariantError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("variant %s: %s: %v", e.Ref, e.Message, e.Cause)
	}
	return fmt.Sprintf("variant %s: %s", e.Ref, e.Message)
}

func (e *VariantError) Unwrap() error {
	return e.Cause
}
