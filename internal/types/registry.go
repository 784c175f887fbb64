package types

import (
	"fmt"
	"regexp"

	"github.com/go-playground/validator/v10"
)

// pathSegment matches slugs and versions. Both become directory names in the
// published site, so separators and leading dots are rejected.
var pathSegment = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// Registry lists the resume variants that can be published
type Registry struct {
	Default  string    `json:"default"`
	Variants []Variant `json:"variants" validate:"dive"`
}

// Variant is one published resume document, addressed by slug and version
type Variant struct {
	Slug    string   `json:"slug" validate:"required,segment"`
	Version string   `json:"version" validate:"required,segment"`
	Aliases []string `json:"aliases,omitempty" validate:"dive,required"`
}

// VariantRef identifies the document a resolution picked
type VariantRef struct {
	Slug    string `json:"slug"`
	Version string `json:"version"`
}

// String returns the ref in slug@version form, which is also the document file stem.
func (r VariantRef) String() string {
	return fmt.Sprintf("%s@%s", r.Slug, r.Version)
}

// Ref returns the variant's identity.
func (v Variant) Ref() VariantRef {
	return VariantRef{Slug: v.Slug, Version: v.Version}
}

// Validate validates the Registry using the validator.
func (r *Registry) Validate() error {
	validate := validator.New()
	if err := validate.RegisterValidation("segment", isPathSegment); err != nil {
		return err
	}
	return validate.Struct(r)
}

func isPathSegment(fl validator.FieldLevel) bool {
	return pathSegment.MatchString(fl.Field().String())
}
