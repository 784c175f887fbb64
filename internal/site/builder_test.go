package site

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/jonathan/resume-site/internal/db"
	"github.com/jonathan/resume-site/internal/types"
)

const twoSlugRegistry = `{
  "default": "cv",
  "variants": [
    {"slug": "cv", "version": "1.0.0"},
    {"slug": "cv", "version": "2.0.0", "aliases": ["latest"]},
    {"slug": "pm", "version": "1.0.0"}
  ]
}`

func twoSlugDocs() map[string]string {
	return map[string]string{
		"cv@1.0.0.json":  `{"name": "Ada Old", "meta": {"slug": "cv", "version": "1.0.0"}}`,
		"cv@2.0.0.json":  `{"name": "Ada", "contact": {"email": "ada@example.com"}, "meta": {"slug": "cv", "version": "2.0.0"}}`,
		"program-manager.json": `{"name": "Ada PM", "meta": {"slug": "pm", "version": "1.0.0"}}`,
	}
}

func TestBuild_WritesVariantsAndRedirects(t *testing.T) {
	f := newFixture(t, twoSlugRegistry, twoSlugDocs())
	opts := f.options()
	opts.BasePath = "/site/"

	report, err := NewBuilder(opts).Build(context.Background())
	require.NoError(t, err)

	assert.True(t, report.OK())
	assert.Equal(t, []types.VariantRef{
		{Slug: "cv", Version: "1.0.0"},
		{Slug: "cv", Version: "2.0.0"},
		{Slug: "pm", Version: "1.0.0"},
	}, report.Built)
	assert.Equal(t, types.VariantRef{Slug: "cv", Version: "2.0.0"}, report.Default)

	assert.Contains(t, f.read(t, "resume/cv/v2.0.0/index.html"), "<h1>Ada</h1>")
	assert.Contains(t, f.read(t, "resume/cv/v2.0.0/index.html"), `<a href="mailto:ada@example.com">`)
	assert.Contains(t, f.read(t, "resume/cv/v1.0.0/index.html"), "<h1>Ada Old</h1>")
	assert.Contains(t, f.read(t, "resume/pm/v1.0.0/index.html"), "<h1>Ada PM</h1>")

	assert.Equal(t, `<!doctype html><meta http-equiv="refresh" content="0; url=./v2.0.0/">`, f.read(t, "resume/cv/index.html"))
	assert.Equal(t, `<!doctype html><meta http-equiv="refresh" content="0; url=./v1.0.0/">`, f.read(t, "resume/pm/index.html"))
	assert.Equal(t, `<!doctype html><meta http-equiv="refresh" content="0; url=/site/resume/cv/">`, f.read(t, "index.html"))
}

func TestBuild_OneBadDocumentDoesNotAbort(t *testing.T) {
	reg := `{"default": "cv", "variants": [
		{"slug": "cv", "version": "1.0.0"},
		{"slug": "broken", "version": "1.0.0"},
		{"slug": "missing", "version": "1.0.0"}
	]}`
	f := newFixture(t, reg, map[string]string{
		"cv@1.0.0.json":     `{"name": "Ada"}`,
		"broken@1.0.0.json": `{"name": `,
	})

	report, err := NewBuilder(f.options()).Build(context.Background())
	require.NoError(t, err)

	assert.False(t, report.OK())
	assert.Equal(t, []types.VariantRef{{Slug: "cv", Version: "1.0.0"}}, report.Built)
	require.Len(t, report.Failed, 2)

	byslug := map[string]Failure{}
	for _, fail := range report.Failed {
		byslug[fail.Variant.Slug] = fail
	}
	assert.True(t, errors.Is(byslug["broken"].Err, types.ErrMalformed))
	assert.True(t, errors.Is(byslug["missing"].Err, types.ErrNotFound))
	assert.NotEmpty(t, byslug["missing"].Message)

	assert.Contains(t, f.read(t, "resume/cv/v1.0.0/index.html"), "<h1>Ada</h1>")
	assert.NoFileExists(t, filepath.Join(f.outDir, "resume", "broken", "index.html"))
}

func TestBuild_EmptyRegistryAborts(t *testing.T) {
	f := newFixture(t, `{"default": "cv", "variants": []}`, nil)

	report, err := NewBuilder(f.options()).Build(context.Background())
	assert.Nil(t, report)
	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrResolution))

	var buildErr *BuildError
	assert.True(t, errors.As(err, &buildErr))
}

func TestBuild_MissingRegistry(t *testing.T) {
	opts := Options{DataDir: t.TempDir(), OutDir: t.TempDir(), TemplatePath: "unused.html"}

	_, err := NewBuilder(opts).Build(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrNotFound))
}

func TestBuild_RejectsSlugOutsideOutput(t *testing.T) {
	f := newFixture(t, `{"default": "x", "variants": [{"slug": "../../escaped", "version": "1"}]}`, map[string]string{
		"doc.json": `{"meta": {"slug": "../../escaped", "version": "1"}, "name": "Ada"}`,
	})

	report, err := NewBuilder(f.options()).Build(context.Background())
	assert.Nil(t, report)
	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrMalformed))

	_, statErr := os.Stat(filepath.Join(f.root, "escaped"))
	assert.True(t, os.IsNotExist(statErr))
	_, statErr = os.Stat(filepath.Join(filepath.Dir(f.root), "escaped"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestBuild_MissingTemplate(t *testing.T) {
	f := newFixture(t, twoSlugRegistry, twoSlugDocs())
	opts := f.options()
	opts.TemplatePath = filepath.Join(f.root, "nope.html")

	_, err := NewBuilder(opts).Build(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrNotFound))
}

func TestBuild_UnknownDefaultRedirectsToHighest(t *testing.T) {
	reg := `{"default": "gone", "variants": [
		{"slug": "a", "version": "1.2.0"},
		{"slug": "b", "version": "1.10.0"}
	]}`
	f := newFixture(t, reg, map[string]string{
		"a@1.2.0.json":  `{}`,
		"b@1.10.0.json": `{}`,
	})

	report, err := NewBuilder(f.options()).Build(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "b", report.Default.Slug)
	assert.Contains(t, f.read(t, "index.html"), "url=/resume/b/")
}

func TestBuild_SlugRedirectSkipsFailedVersions(t *testing.T) {
	reg := `{"default": "cv", "variants": [
		{"slug": "cv", "version": "1.0.0"},
		{"slug": "cv", "version": "3.0.0"}
	]}`
	f := newFixture(t, reg, map[string]string{"cv@1.0.0.json": `{}`})

	report, err := NewBuilder(f.options()).Build(context.Background())
	require.NoError(t, err)
	assert.Len(t, report.Failed, 1)
	assert.Contains(t, f.read(t, "resume/cv/index.html"), "url=./v1.0.0/")
}

func TestBuild_UntrustedStripsMarkup(t *testing.T) {
	reg := `{"default": "cv", "variants": [{"slug": "cv", "version": "1.0.0"}]}`
	f := newFixture(t, reg, map[string]string{
		"cv@1.0.0.json": `{"name": "<script>alert(1)</script>Ada"}`,
	})

	opts := f.options()
	_, err := NewBuilder(opts).Build(context.Background())
	require.NoError(t, err)
	assert.Contains(t, f.read(t, "resume/cv/v1.0.0/index.html"), "<script>")

	opts.Untrusted = true
	_, err = NewBuilder(opts).Build(context.Background())
	require.NoError(t, err)
	page := f.read(t, "resume/cv/v1.0.0/index.html")
	assert.NotContains(t, page, "<script>")
	assert.Contains(t, page, "<h1>Ada</h1>")
}

func TestBuild_UnsafeLinkReportedAsWarning(t *testing.T) {
	reg := `{"default": "cv", "variants": [{"slug": "cv", "version": "1.0.0"}]}`
	f := newFixture(t, reg, map[string]string{"cv@1.0.0.json": `{"summary": "x"}`})
	writeFile(t, f.template, `<a href="javascript:alert(1)">{{summary}}</a>`)

	report, err := NewBuilder(f.options()).Build(context.Background())
	require.NoError(t, err)
	assert.True(t, report.OK())
	require.Len(t, report.Warnings, 1)
	assert.Contains(t, report.Warnings[0], "javascript:")
}

func TestBuild_StoreAndRecorder(t *testing.T) {
	f := newFixture(t, twoSlugRegistry, twoSlugDocs())
	store := newMemoryStore()
	rec := &fakeRecorder{}

	opts := f.options()
	opts.Store = store
	opts.Recorder = rec

	report, err := NewBuilder(opts).Build(context.Background())
	require.NoError(t, err)

	assert.Contains(t, store.files, "resume/cv/v2.0.0/index.html")
	assert.Contains(t, store.files, "resume/cv/index.html")
	assert.Contains(t, store.files, "index.html")
	assert.Equal(t, 6, store.ids[report.BuildID])
	assert.NoDirExists(t, f.outDir)

	require.Len(t, rec.created, 1)
	assert.Equal(t, report.BuildID, rec.created[0])
	assert.True(t, rec.completed)
	assert.Equal(t, db.StatusCompleted, rec.status)
	assert.Equal(t, 3, rec.built)
}

func TestBuild_StoreFailure(t *testing.T) {
	f := newFixture(t, twoSlugRegistry, twoSlugDocs())
	opts := f.options()
	opts.Store = failingStore{}

	_, err := NewBuilder(opts).Build(context.Background())
	require.Error(t, err)
	var buildErr *BuildError
	assert.True(t, errors.As(err, &buildErr))
}

func TestBuild_ExporterWritesPDF(t *testing.T) {
	f := newFixture(t, twoSlugRegistry, twoSlugDocs())
	opts := f.options()
	opts.Exporter = fakeExporter{}

	report, err := NewBuilder(opts).Build(context.Background())
	require.NoError(t, err)
	assert.Empty(t, report.Warnings)
	assert.True(t, strings.HasPrefix(f.read(t, "resume/cv/v2.0.0/index.pdf"), "%PDF-"))
}

func TestBuild_ExporterFailureIsWarning(t *testing.T) {
	f := newFixture(t, twoSlugRegistry, twoSlugDocs())
	opts := f.options()
	opts.Exporter = fakeExporter{err: errors.New("no chrome")}

	report, err := NewBuilder(opts).Build(context.Background())
	require.NoError(t, err)
	assert.True(t, report.OK())
	assert.Len(t, report.Warnings, 3)
	assert.NoFileExists(t, filepath.Join(f.outDir, "resume", "cv", "v2.0.0", "index.pdf"))
}

func TestBuild_ProgressEvents(t *testing.T) {
	f := newFixture(t, twoSlugRegistry, twoSlugDocs())
	var stages []string
	opts := f.options()
	opts.OnProgress = func(e ProgressEvent) { stages = append(stages, e.Stage) }

	_, err := NewBuilder(opts).Build(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{StageStarted, StageBuilt, StageBuilt, StageBuilt, StageDone}, stages)
}

func TestBuild_CancelledContext(t *testing.T) {
	f := newFixture(t, twoSlugRegistry, twoSlugDocs())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewBuilder(f.options()).Build(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBuild_DeterministicOutput(t *testing.T) {
	f := newFixture(t, twoSlugRegistry, twoSlugDocs())
	a, b := newMemoryStore(), newMemoryStore()

	optsA := f.options()
	optsA.Store = a
	optsB := f.options()
	optsB.Store = b
	optsB.Concurrency = 1

	_, err := NewBuilder(optsA).Build(context.Background())
	require.NoError(t, err)
	_, err = NewBuilder(optsB).Build(context.Background())
	require.NoError(t, err)

	assert.Equal(t, a.files, b.files)
}

func TestBuild_ParallelLeavesNoGoroutines(t *testing.T) {
	defer goleak.VerifyNone(t)

	var variants []string
	docs := map[string]string{}
	for i := 0; i < 20; i++ {
		variants = append(variants, fmt.Sprintf(`{"slug": "v%d", "version": "1.0.%d"}`, i, i))
		docs[fmt.Sprintf("v%d@1.0.%d.json", i, i)] = fmt.Sprintf(`{"name": "N%d"}`, i)
	}
	reg := `{"default": "v0", "variants": [` + strings.Join(variants, ",") + `]}`
	f := newFixture(t, reg, docs)

	opts := f.options()
	opts.Concurrency = 4
	report, err := NewBuilder(opts).Build(context.Background())
	require.NoError(t, err)
	assert.Len(t, report.Built, 20)
	assert.Contains(t, f.read(t, "resume/v7/v1.0.7/index.html"), "<h1>N7</h1>")
}
