package site

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"go.uber.org/zap"

	"github.com/jonathan/resume-site/internal/document"
	"github.com/jonathan/resume-site/internal/types"
)

// ScanPattern selects the candidate documents when no file is named after a variant.
const ScanPattern = "**/*.json"

// Locator finds the document for a variant inside a resumes directory.
type Locator struct {
	Dir    string
	logger *zap.Logger
}

// NewLocator creates a Locator over dir. A nil logger discards output.
func NewLocator(dir string, logger *zap.Logger) *Locator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Locator{Dir: dir, logger: logger}
}

// FileName returns the conventional file name for ref, "<slug>@<version>.json".
func FileName(ref types.VariantRef) string {
	return ref.Slug + "@" + ref.Version + ".json"
}

// Locate returns the path of the document for ref. The conventional file name
// is tried first; otherwise every JSON file under Dir is scanned, in lexical
// order, for one whose meta.slug and meta.version equal ref. Files that do not
// parse are skipped.
func (l *Locator) Locate(ref types.VariantRef) (string, error) {
	direct := filepath.Join(l.Dir, FileName(ref))
	if info, err := os.Stat(direct); err == nil && !info.IsDir() {
		return direct, nil
	}

	matches, err := doublestar.Glob(os.DirFS(l.Dir), ScanPattern)
	if err != nil {
		return "", &VariantError{Ref: ref, Message: "failed to scan resumes directory", Cause: err}
	}
	sort.Strings(matches)

	for _, rel := range matches {
		full := filepath.Join(l.Dir, filepath.FromSlash(rel))
		doc, err := document.LoadFile(full)
		if err != nil {
			l.logger.Warn("skipping unreadable document", zap.String("path", full), zap.Error(err))
			continue
		}
		if doc.Slug() == ref.Slug && doc.Version() == ref.Version {
			return full, nil
		}
	}

	return "", &VariantError{
		Ref:     ref,
		Message: "no document found",
		Cause:   fmt.Errorf("%w: searched %s", types.ErrNotFound, l.Dir),
	}
}

// Documents lists every JSON document under dir in lexical order.
func Documents(dir string) ([]string, error) {
	matches, err := doublestar.Glob(os.DirFS(dir), ScanPattern)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		if _, statErr := os.Stat(dir); errors.Is(statErr, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", types.ErrNotFound, dir)
		}
	}
	sort.Strings(matches)
	paths := make([]string, len(matches))
	for i, rel := range matches {
		paths[i] = filepath.Join(dir, filepath.FromSlash(rel))
	}
	return paths, nil
}
