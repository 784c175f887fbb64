package site

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/jonathan/resume-site/internal/db"
	"github.com/jonathan/resume-site/internal/types"
)

// Artifact is one file produced by a build, addressed by a slash-separated
// path relative to the site root.
type Artifact struct {
	BuildID uuid.UUID
	Path    string
	Data    []byte
}

// Store receives build artifacts
type Store interface {
	Put(ctx context.Context, a Artifact) error
}

// FileStore writes artifacts under Root
type FileStore struct {
	Root string
}

const tempFilePrefix = ".resume-site-tmp-"

// Put writes the artifact atomically, creating parent directories as needed.
// Paths that would leave Root are rejected.
func (s FileStore) Put(ctx context.Context, a Artifact) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !filepath.IsLocal(filepath.FromSlash(a.Path)) {
		return fmt.Errorf("%w: artifact path %q escapes %s", types.ErrMalformed, a.Path, s.Root)
	}
	target := filepath.Join(s.Root, filepath.FromSlash(a.Path))
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", a.Path, err)
	}
	return writeFileAtomic(target, a.Data, 0644)
}

func writeFileAtomic(filename string, data []byte, perm os.FileMode) error {
	tmpFile, err := os.CreateTemp(filepath.Dir(filename), tempFilePrefix+"*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmpFile.Name())

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to write to temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tmpFile.Name(), perm); err != nil {
		return fmt.Errorf("failed to chmod temp file: %w", err)
	}
	if err := os.Rename(tmpFile.Name(), filename); err != nil {
		return fmt.Errorf("failed to rename temp file to %s: %w", filename, err)
	}
	return nil
}

// MultiStore fans each artifact out to every store in order, stopping at the first error.
type MultiStore []Store

// Put implements Store
func (m MultiStore) Put(ctx context.Context, a Artifact) error {
	for _, s := range m {
		if err := s.Put(ctx, a); err != nil {
			return err
		}
	}
	return nil
}

// PageSaver persists one page of a build. *db.DB implements it.
type PageSaver interface {
	SavePage(ctx context.Context, buildID uuid.UUID, path, contentType string, content []byte) error
}

// BuildRecorder tracks build records. *db.DB implements it.
type BuildRecorder interface {
	CreateBuild(ctx context.Context, id uuid.UUID, basePath string) error
	CompleteBuild(ctx context.Context, id uuid.UUID, status string, built, failed int) error
}

// DBStore saves artifacts as pages of their build
type DBStore struct {
	Pages PageSaver
}

// Put implements Store
func (s DBStore) Put(ctx context.Context, a Artifact) error {
	return s.Pages.SavePage(ctx, a.BuildID, a.Path, db.ContentTypeFor(a.Path), a.Data)
}

var (
	_ PageSaver     = (*db.DB)(nil)
	_ BuildRecorder = (*db.DB)(nil)
)
