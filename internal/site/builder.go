package site

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/resume-site/internal/db"
	"github.com/jonathan/resume-site/internal/document"
	"github.com/jonathan/resume-site/internal/registry"
	"github.com/jonathan/resume-site/internal/rendering"
	"github.com/jonathan/resume-site/internal/types"
)

// Layout of the data directory
const (
	RegistryFile = "index.json"
	ResumesDir   = "resumes"
)

// Exporter turns a rendered page into a printable document
type Exporter interface {
	PDF(ctx context.Context, html string) ([]byte, error)
}

// Progress stages
const (
	StageStarted = "started"
	StageBuilt   = "built"
	StageFailed  = "failed"
	StageDone    = "done"
)

// ProgressEvent represents a progress update during a build
type ProgressEvent struct {
	BuildID uuid.UUID        `json:"build_id"`
	Stage   string           `json:"stage"`
	Variant types.VariantRef `json:"variant"`
	Message string           `json:"message"`
}

// ProgressCallback is called when build progress occurs
type ProgressCallback func(event ProgressEvent)

// Options holds configuration for a Builder. Everything the build reads is
// passed here; nothing is taken from the environment.
type Options struct {
	DataDir      string
	OutDir       string
	TemplatePath string
	BasePath     string
	Concurrency  int
	Untrusted    bool

	// Store receives every artifact. Defaults to a FileStore over OutDir.
	Store    Store
	Recorder BuildRecorder
	Exporter Exporter
	Logger   *zap.Logger

	OnProgress ProgressCallback
}

// Failure records one variant that could not be built
type Failure struct {
	Variant types.VariantRef `json:"variant"`
	Err     error            `json:"-"`
	Message string           `json:"error"`
}

// Report summarizes a build
type Report struct {
	BuildID  uuid.UUID          `json:"build_id"`
	Default  types.VariantRef   `json:"default"`
	Built    []types.VariantRef `json:"built"`
	Failed   []Failure          `json:"failed,omitempty"`
	Warnings []string           `json:"warnings,omitempty"`
	Duration time.Duration      `json:"duration"`
}

// OK reports whether every variant was built
func (r *Report) OK() bool {
	return len(r.Failed) == 0
}

// Builder publishes every registered variant
type Builder struct {
	opts   Options
	logger *zap.Logger
}

// NewBuilder creates a Builder, filling defaults for unset options.
func NewBuilder(opts Options) *Builder {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = runtime.NumCPU()
	}
	if opts.Store == nil {
		opts.Store = FileStore{Root: opts.OutDir}
	}
	return &Builder{opts: opts, logger: opts.Logger}
}

type variantResult struct {
	ref      types.VariantRef
	err      error
	warnings []string
}

// Build renders every variant of the registry under DataDir.
//
// A registry that cannot be read or holds no variants, or a template that
// cannot be read, aborts the build. A variant that fails is recorded in the
// report and the remaining variants are still built.
func (b *Builder) Build(ctx context.Context) (*Report, error) {
	start := time.Now()

	reg, err := registry.Load(filepath.Join(b.opts.DataDir, RegistryFile))
	if err != nil {
		return nil, &BuildError{Message: "failed to load registry", Cause: err}
	}
	defaultRef, err := registry.Resolve(reg, "")
	if err != nil {
		return nil, &BuildError{Message: "failed to resolve default variant", Cause: err}
	}
	tmpl, err := rendering.LoadTemplate(b.opts.TemplatePath)
	if err != nil {
		return nil, &BuildError{Message: "failed to load template", Cause: err}
	}

	report := &Report{BuildID: uuid.New(), Default: defaultRef}
	log := b.logger.With(zap.String("build_id", report.BuildID.String()))

	if b.opts.Recorder != nil {
		if err := b.opts.Recorder.CreateBuild(ctx, report.BuildID, b.opts.BasePath); err != nil {
			return nil, &BuildError{Message: "failed to record build", Cause: err}
		}
	}
	b.emit(ProgressEvent{BuildID: report.BuildID, Stage: StageStarted,
		Message: fmt.Sprintf("building %d variant(s)", len(reg.Variants))})

	locator := NewLocator(filepath.Join(b.opts.DataDir, ResumesDir), log)
	results := make([]variantResult, len(reg.Variants))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(b.opts.Concurrency)
	for i, v := range reg.Variants {
		g.Go(func() error {
			results[i] = b.buildVariant(gCtx, report.BuildID, locator, tmpl, v.Ref())
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	for _, res := range results {
		report.Warnings = append(report.Warnings, res.warnings...)
		if res.err != nil {
			log.Error("variant failed",
				zap.String("slug", res.ref.Slug),
				zap.String("version", res.ref.Version),
				zap.Error(res.err))
			report.Failed = append(report.Failed, Failure{Variant: res.ref, Err: res.err, Message: res.err.Error()})
			b.emit(ProgressEvent{BuildID: report.BuildID, Stage: StageFailed, Variant: res.ref, Message: res.err.Error()})
			continue
		}
		report.Built = append(report.Built, res.ref)
		b.emit(ProgressEvent{BuildID: report.BuildID, Stage: StageBuilt, Variant: res.ref, Message: VariantPath(res.ref.Slug, res.ref.Version)})
	}

	if err := b.writeRedirects(ctx, report); err != nil {
		return nil, err
	}

	if b.opts.Recorder != nil {
		status := db.StatusFor(len(report.Built), len(report.Failed))
		if err := b.opts.Recorder.CompleteBuild(ctx, report.BuildID, status, len(report.Built), len(report.Failed)); err != nil {
			log.Warn("failed to complete build record", zap.Error(err))
		}
	}

	report.Duration = time.Since(start)
	log.Info("build finished",
		zap.Int("built", len(report.Built)),
		zap.Int("failed", len(report.Failed)),
		zap.String("default", report.Default.String()),
		zap.Duration("duration", report.Duration))
	b.emit(ProgressEvent{BuildID: report.BuildID, Stage: StageDone,
		Message: fmt.Sprintf("built %d, failed %d", len(report.Built), len(report.Failed))})
	return report, nil
}

func (b *Builder) buildVariant(ctx context.Context, buildID uuid.UUID, locator *Locator, tmpl *rendering.Template, ref types.VariantRef) variantResult {
	res := variantResult{ref: ref}
	if err := ctx.Err(); err != nil {
		res.err = err
		return res
	}

	path, err := locator.Locate(ref)
	if err != nil {
		res.err = err
		return res
	}
	doc, err := document.LoadFile(path)
	if err != nil {
		res.err = &VariantError{Ref: ref, Message: "failed to load document", Cause: err}
		return res
	}
	html, _ := RenderDocument(tmpl, doc, RenderOptions{BasePath: b.opts.BasePath, Untrusted: b.opts.Untrusted})

	findings, err := rendering.AuditLinks(html)
	if err != nil {
		res.warnings = append(res.warnings, fmt.Sprintf("%s: %v", ref, err))
	}
	for _, f := range findings {
		b.logger.Warn("unsafe link in rendered page",
			zap.String("variant", ref.String()),
			zap.String("href", f.Href))
		res.warnings = append(res.warnings, fmt.Sprintf("%s: unsafe link %s", ref, f))
	}

	if err := b.opts.Store.Put(ctx, Artifact{BuildID: buildID, Path: VariantPath(ref.Slug, ref.Version), Data: []byte(html)}); err != nil {
		res.err = &VariantError{Ref: ref, Message: "failed to write page", Cause: err}
		return res
	}

	if b.opts.Exporter != nil {
		pdf, err := b.opts.Exporter.PDF(ctx, html)
		if err == nil {
			err = b.opts.Store.Put(ctx, Artifact{BuildID: buildID, Path: PDFPath(ref.Slug, ref.Version), Data: pdf})
		}
		if err != nil {
			b.logger.Warn("pdf export failed", zap.String("variant", ref.String()), zap.Error(err))
			res.warnings = append(res.warnings, fmt.Sprintf("%s: pdf export failed: %v", ref, err))
		}
	}
	return res
}

// writeRedirects points each built slug at its highest built version and the
// site root at the default slug.
func (b *Builder) writeRedirects(ctx context.Context, report *Report) error {
	var slugs []string
	latest := make(map[string]string)
	for _, ref := range report.Built {
		cur, seen := latest[ref.Slug]
		if !seen {
			slugs = append(slugs, ref.Slug)
		}
		if !seen || registry.CompareVersions(ref.Version, cur) > 0 {
			latest[ref.Slug] = ref.Version
		}
	}

	for _, slug := range slugs {
		a := Artifact{BuildID: report.BuildID, Path: SlugIndexPath(slug), Data: SlugRedirect(latest[slug])}
		if err := b.opts.Store.Put(ctx, a); err != nil {
			return &BuildError{Message: fmt.Sprintf("failed to write redirect for %s", slug), Cause: err}
		}
	}

	root := Artifact{BuildID: report.BuildID, Path: "index.html", Data: RootRedirect(b.opts.BasePath, report.Default.Slug)}
	if err := b.opts.Store.Put(ctx, root); err != nil {
		return &BuildError{Message: "failed to write root redirect", Cause: err}
	}
	return nil
}

func (b *Builder) emit(event ProgressEvent) {
	if b.opts.OnProgress != nil {
		b.opts.OnProgress(event)
	}
}
