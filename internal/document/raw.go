package document

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/jonathan/resume-site/internal/types"
	"github.com/tidwall/gjson"
)

// RawDocument is an untyped resume document as produced by any of the
// document authors. Access goes through gjson so object key order is kept
// and mismatched types never fail.
type RawDocument struct {
	root gjson.Result
}

// Parse parses a JSON document. The root must be an object.
func Parse(data []byte) (RawDocument, error) {
	if !gjson.ValidBytes(data) {
		return RawDocument{}, &LoadError{
			Message: "invalid JSON",
			Cause:   types.ErrMalformed,
		}
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return RawDocument{}, &LoadError{
			Message: "document root must be an object",
			Cause:   types.ErrMalformed,
		}
	}
	return RawDocument{root: root}, nil
}

// MustParse is Parse for documents known to be valid, such as test fixtures.
func MustParse(data string) RawDocument {
	doc, err := Parse([]byte(data))
	if err != nil {
		panic(err)
	}
	return doc
}

// LoadFile reads and parses the document at path.
func LoadFile(path string) (RawDocument, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		cause := err
		if errors.Is(err, fs.ErrNotExist) {
			cause = fmt.Errorf("%w: %w", types.ErrNotFound, err)
		}
		return RawDocument{}, &LoadError{
			Path:    path,
			Message: "failed to read file",
			Cause:   cause,
		}
	}

	doc, err := Parse(content)
	if err != nil {
		var le *LoadError
		if errors.As(err, &le) {
			le.Path = path
		}
		return RawDocument{}, err
	}
	return doc, nil
}

// Get returns the value at a gjson path such as "meta.slug".
func (d RawDocument) Get(path string) gjson.Result {
	return d.root.Get(path)
}

// Slug returns meta.slug, or "" when absent.
func (d RawDocument) Slug() string {
	return text(d.root.Get("meta.slug"))
}

// Version returns meta.version, or "" when absent.
func (d RawDocument) Version() string {
	return text(d.root.Get("meta.version"))
}

// truthy applies the fallback test used throughout normalization: missing,
// null, false, 0 and "" all fall through to the next candidate.
func truthy(r gjson.Result) bool {
	switch r.Type {
	case gjson.String:
		return r.Str != ""
	case gjson.Number:
		return r.Num != 0
	case gjson.True, gjson.JSON:
		return true
	default:
		return false
	}
}

// scalar reports whether r holds text that can stand in for a string field.
func scalar(r gjson.Result) bool {
	switch r.Type {
	case gjson.String, gjson.Number, gjson.True:
		return truthy(r)
	default:
		return false
	}
}

// text returns the text of a scalar, or "" for anything else. Numbers keep
// their JSON spelling, so a version of 2.10 stays "2.10".
func text(r gjson.Result) string {
	switch r.Type {
	case gjson.String:
		return r.Str
	case gjson.Number:
		return r.Raw
	case gjson.True:
		return "true"
	default:
		return ""
	}
}

// first returns the text of the first truthy scalar among candidates.
func first(candidates ...gjson.Result) (string, bool) {
	for _, c := range candidates {
		if scalar(c) {
			return text(c), true
		}
	}
	return "", false
}
