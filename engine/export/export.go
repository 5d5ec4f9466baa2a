package export

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"

	"github.com/arloai/reporting/engine/core"
	"github.com/arloai/reporting/engine/report"
	"github.com/arloai/reporting/pkg/logger"
)

// Artifact is one exported rendering of a report document.
type Artifact struct {
	Format      report.Format  `json:"format"`
	Bytes       []byte         `json:"-"`
	ContentType string         `json:"content_type"`
	Path        string         `json:"path,omitempty"`
	// FallbackUsed marks a slide deck produced by the local builder
	// instead of the AI presentation service.
	FallbackUsed bool           `json:"fallback_used,omitempty"`
	Warnings     []core.Warning `json:"warnings,omitempty"`
	// Error records a per-format failure. The other formats of the same
	// document are unaffected.
	Error *core.Error `json:"error,omitempty"`
}

// Pipeline turns an assembled document into output artifacts. Each format
// is an independent, idempotent transform of the same immutable document;
// re-exporting never re-runs ingestion or rendering.
type Pipeline struct {
	backend RenderBackend
	slides  slideExporter
	fs      afero.Fs
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithRenderBackend replaces the built-in PDF backend.
func WithRenderBackend(backend RenderBackend) Option {
	return func(p *Pipeline) { p.backend = backend }
}

// WithPresentationService enables the primary slide-generation path.
func WithPresentationService(svc PresentationService) Option {
	return func(p *Pipeline) { p.slides.service = svc }
}

// WithFs replaces the artifact filesystem.
func WithFs(fs afero.Fs) Option {
	return func(p *Pipeline) { p.fs = fs }
}

// NewPipeline creates an export pipeline. Without options it exports HTML,
// backend-rendered PDF and fallback-built slide decks to the OS filesystem.
func NewPipeline(opts ...Option) *Pipeline {
	p := &Pipeline{
		backend: &GofpdfBackend{},
		slides:  slideExporter{builder: &DeckBuilder{}},
		fs:      afero.NewOsFs(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Export produces every requested format concurrently. A per-format failure
// is recorded on its artifact; Export only errors when no format at all
// could be delivered.
func (p *Pipeline) Export(ctx context.Context, doc *report.Document, formats []report.Format, destDir string) ([]Artifact, error) {
	log := logger.FromContext(ctx)
	artifacts := make([]Artifact, len(formats))

	g, gctx := errgroup.WithContext(ctx)
	for i, format := range formats {
		g.Go(func() error {
			artifacts[i] = p.exportOne(gctx, doc, format)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.Warn("export interrupted", "error", err)
	}

	delivered := 0
	for i := range artifacts {
		if artifacts[i].Error != nil {
			continue
		}
		if destDir != "" {
			if err := p.write(destDir, doc, &artifacts[i]); err != nil {
				artifacts[i].Error = core.NewError(err, ErrCodeWrite,
					"failed to write artifact", map[string]any{"format": string(artifacts[i].Format)})
				continue
			}
		}
		delivered++
	}
	if delivered == 0 {
		return artifacts, core.NewErrorf(ErrCodeAllFailed,
			"no artifact could be delivered for document %s", doc.ID)
	}

	log.Info("export finished", "document", doc.ID, "requested", len(formats), "delivered", delivered)
	return artifacts, nil
}

func (p *Pipeline) exportOne(ctx context.Context, doc *report.Document, format report.Format) Artifact {
	switch format {
	case report.FormatHTML:
		html, err := RenderHTML(doc)
		if err != nil {
			return failedArtifact(ctx, format, err)
		}
		return Artifact{Format: format, Bytes: html, ContentType: "text/html; charset=utf-8"}

	case report.FormatPDF:
		html, err := RenderHTML(doc)
		if err != nil {
			return failedArtifact(ctx, format, err)
		}
		pdf, err := p.backend.HTMLToPDF(ctx, html)
		if err != nil {
			var backendErr *RenderBackendError
			if !errors.As(err, &backendErr) {
				err = &RenderBackendError{cause: err}
			}
			return failedArtifact(ctx, format, err)
		}
		return Artifact{Format: format, Bytes: pdf, ContentType: "application/pdf"}

	case report.FormatSlides:
		result := p.slides.Export(ctx, doc)
		return Artifact{
			Format:       format,
			Bytes:        result.Deck,
			ContentType:  result.ContentType,
			FallbackUsed: result.Path == PathFallback,
			Warnings:     result.Warnings,
		}

	default:
		return failedArtifact(ctx, format, fmt.Errorf("unsupported export format: %s", format))
	}
}

func (p *Pipeline) write(destDir string, doc *report.Document, artifact *Artifact) error {
	if err := p.fs.MkdirAll(destDir, 0o755); err != nil {
		return &WriteError{Path: destDir, cause: err}
	}
	path := filepath.Join(destDir, artifactFileName(doc, artifact))
	if err := afero.WriteFile(p.fs, path, artifact.Bytes, 0o644); err != nil {
		return &WriteError{Path: path, cause: err}
	}
	artifact.Path = path
	return nil
}

func artifactFileName(doc *report.Document, artifact *Artifact) string {
	ext := map[report.Format]string{
		report.FormatHTML:   "html",
		report.FormatPDF:    "pdf",
		report.FormatSlides: "pptx",
	}[artifact.Format]
	if artifact.Format == report.FormatSlides && artifact.FallbackUsed {
		ext = "pdf"
	}
	return fmt.Sprintf("report-%s-%s.%s", doc.Type, doc.ID, ext)
}

func failedArtifact(ctx context.Context, format report.Format, err error) Artifact {
	logger.FromContext(ctx).Warn("export format failed", "format", format, "error", err)
	code := ErrCodeExport
	if format == report.FormatPDF {
		code = ErrCodeRenderBackend
	}
	return Artifact{
		Format: format,
		Error: core.NewError(err, code, "export failed",
			map[string]any{"format": string(format)}),
	}
}
