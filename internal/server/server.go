// Package server provides the HTTP preview server for resume variants.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jonathan/resume-site/internal/db"
	"github.com/jonathan/resume-site/internal/document"
	"github.com/jonathan/resume-site/internal/registry"
	"github.com/jonathan/resume-site/internal/rendering"
	"github.com/jonathan/resume-site/internal/site"
	"github.com/jonathan/resume-site/internal/types"
)

// BuildStore reads stored builds. *db.DB implements it.
type BuildStore interface {
	ListBuilds(ctx context.Context, limit int) ([]db.Build, error)
	GetBuild(ctx context.Context, id uuid.UUID) (*db.Build, error)
	GetPage(ctx context.Context, buildID uuid.UUID, path string) (*db.Page, error)
}

var _ BuildStore = (*db.DB)(nil)

// Server represents the HTTP server
type Server struct {
	httpServer *http.Server
	cfg        Config
	logger     *zap.Logger
}

// Config holds server configuration. The registry, documents and template
// are read on every request so edits show up without a restart.
type Config struct {
	Addr         string
	DataDir      string
	TemplatePath string
	BasePath     string
	Untrusted    bool
	Builds       BuildStore
	Logger       *zap.Logger
}

// New creates a new server instance
func New(cfg Config) *Server {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	s := &Server{cfg: cfg, logger: cfg.Logger}

	s.httpServer = &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Handler returns the routed handler with middleware applied
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /api/registry", s.handleRegistry)
	mux.HandleFunc("GET /api/resume/{id}", s.handleResume)
	mux.HandleFunc("GET /view", s.handleView)
	mux.HandleFunc("GET /view/{id}", s.handleView)

	// Stored builds
	mux.HandleFunc("GET /api/builds", s.handleListBuilds)
	mux.HandleFunc("GET /api/builds/{id}", s.handleGetBuild)
	mux.HandleFunc("GET /builds/{id}/{path...}", s.handleBuildPage)

	return s.withLogging(mux)
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", zap.String("addr", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	s.logger.Info("server stopped")
	return nil
}

// statusRecorder captures the status code written by a handler
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)))
	})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) loadRegistry() (*types.Registry, error) {
	return registry.Load(filepath.Join(s.cfg.DataDir, site.RegistryFile))
}

// registryResponse is the body of GET /api/registry
type registryResponse struct {
	Default  string             `json:"default"`
	Resolved types.VariantRef   `json:"resolved"`
	Latest   []types.VariantRef `json:"latest"`
	Variants []types.Variant    `json:"variants"`
}

func (s *Server) handleRegistry(w http.ResponseWriter, _ *http.Request) {
	reg, err := s.loadRegistry()
	if err != nil {
		s.fail(w, err)
		return
	}
	resolved, err := registry.Resolve(reg, "")
	if err != nil {
		s.fail(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, registryResponse{
		Default:  reg.Default,
		Resolved: resolved,
		Latest:   registry.LatestBySlug(reg),
		Variants: reg.Variants,
	})
}

// loadVariant resolves id against the registry, falling back like the
// published site does, and loads the matching document.
func (s *Server) loadVariant(id string) (types.VariantRef, document.RawDocument, error) {
	reg, err := s.loadRegistry()
	if err != nil {
		return types.VariantRef{}, document.RawDocument{}, err
	}
	ref, err := registry.Resolve(reg, id)
	if err != nil {
		return types.VariantRef{}, document.RawDocument{}, err
	}
	path, err := site.NewLocator(filepath.Join(s.cfg.DataDir, site.ResumesDir), s.logger).Locate(ref)
	if err != nil {
		return ref, document.RawDocument{}, err
	}
	doc, err := document.LoadFile(path)
	if err != nil {
		return ref, document.RawDocument{}, err
	}
	return ref, doc, nil
}

// resumeResponse is the body of GET /api/resume/{id}
type resumeResponse struct {
	Variant types.VariantRef `json:"variant"`
	Model   map[string]any   `json:"model"`
}

func (s *Server) handleResume(w http.ResponseWriter, r *http.Request) {
	ref, doc, err := s.loadVariant(r.PathValue("id"))
	if err != nil {
		s.fail(w, err)
		return
	}
	ctx := rendering.ModelContext(document.Normalize(doc), rendering.ContextOptions{BasePath: site.NormalizeBase(s.cfg.BasePath)})
	if s.cfg.Untrusted {
		ctx = rendering.StripUntrusted(ctx)
	}
	s.jsonResponse(w, http.StatusOK, resumeResponse{Variant: ref, Model: ctx})
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	ref, doc, err := s.loadVariant(r.PathValue("id"))
	if err != nil {
		s.errorPage(w, err)
		return
	}
	tmpl, err := rendering.LoadTemplate(s.cfg.TemplatePath)
	if err != nil {
		s.errorPage(w, err)
		return
	}
	html, _ := site.RenderDocument(tmpl, doc, site.RenderOptions{BasePath: s.cfg.BasePath, Untrusted: s.cfg.Untrusted})

	w.Header().Set("Content-Type", db.ContentTypeHTML)
	w.Header().Set("X-Resume-Variant", ref.String())
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(html))
}

func (s *Server) handleListBuilds(w http.ResponseWriter, r *http.Request) {
	if s.cfg.Builds == nil {
		s.fail(w, ErrStorageDisabled)
		return
	}
	builds, err := s.cfg.Builds.ListBuilds(r.Context(), db.DefaultListLimit)
	if err != nil {
		s.fail(w, err)
		return
	}
	if builds == nil {
		builds = []db.Build{}
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"builds": builds})
}

func (s *Server) handleGetBuild(w http.ResponseWriter, r *http.Request) {
	build, ok := s.lookupBuild(w, r)
	if !ok {
		return
	}
	s.jsonResponse(w, http.StatusOK, build)
}

func (s *Server) handleBuildPage(w http.ResponseWriter, r *http.Request) {
	build, ok := s.lookupBuild(w, r)
	if !ok {
		return
	}
	path := r.PathValue("path")
	if path == "" {
		path = "index.html"
	}

	page, err := s.cfg.Builds.GetPage(r.Context(), build.ID, path)
	if err != nil {
		s.fail(w, err)
		return
	}
	if page == nil {
		s.fail(w, types.ErrNotFound)
		return
	}
	w.Header().Set("Content-Type", page.ContentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(page.Content)
}

// lookupBuild loads the build named by the {id} path value, writing the error
// response itself when there is none.
func (s *Server) lookupBuild(w http.ResponseWriter, r *http.Request) (*db.Build, bool) {
	if s.cfg.Builds == nil {
		s.fail(w, ErrStorageDisabled)
		return nil, false
	}
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid build id")
		return nil, false
	}
	build, err := s.cfg.Builds.GetBuild(r.Context(), id)
	if err != nil {
		s.fail(w, err)
		return nil, false
	}
	if build == nil {
		s.fail(w, types.ErrNotFound)
		return nil, false
	}
	return build, true
}

// fail logs err and writes the matching JSON error
func (s *Server) fail(w http.ResponseWriter, err error) {
	s.logger.Warn("request failed", zap.Error(err))
	s.errorResponse(w, HTTPStatus(err), publicMessage(err))
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("error encoding JSON response", zap.Error(err))
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

var errorPageTemplate = template.Must(template.New("error").Parse(`<!doctype html>
<html lang="en">
<head><meta charset="utf-8"><title>{{.Title}}</title></head>
<body><main><h1>{{.Title}}</h1><p>{{.Message}}</p></main></body>
</html>
`))

// errorPage writes a generic, non-technical HTML page for err
func (s *Server) errorPage(w http.ResponseWriter, err error) {
	s.logger.Warn("view failed", zap.Error(err))
	status := HTTPStatus(err)
	data := struct{ Title, Message string }{
		Title:   "Resume unavailable",
		Message: "This resume could not be loaded right now. Please try again later.",
	}
	w.Header().Set("Content-Type", db.ContentTypeHTML)
	w.WriteHeader(status)
	if err := errorPageTemplate.Execute(w, data); err != nil {
		s.logger.Error("error rendering error page", zap.Error(err))
	}
}
