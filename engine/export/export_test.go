package export

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arloai/reporting/engine/core"
	"github.com/arloai/reporting/engine/metrics"
	"github.com/arloai/reporting/engine/report"
	"github.com/arloai/reporting/engine/widget"
	"github.com/arloai/reporting/pkg/logger"
)

func testContext() context.Context {
	log := logger.NewLogger(logger.TestConfig())
	return logger.ContextWithLogger(context.Background(), log)
}

func sampleDocument() *report.Document {
	day := func(s string) time.Time {
		t, _ := time.Parse("2006-01-02", s)
		return t
	}
	return &report.Document{
		ID:          "doc-fixture-1",
		Type:        core.ReportMidCampaign,
		CampaignID:  "camp-1",
		GeneratedAt: time.Unix(0, 0).UTC(),
		Range:       metrics.DateRange{Start: day("2025-07-01"), End: day("2025-07-03")},
		Blocks: []widget.Block{
			{WidgetID: "topline_kpi_grid", Label: "Topline KPIs", HTML: "<div><h3>Topline KPIs</h3><p>Impressions: 3100</p></div>", Records: 3},
			{WidgetID: "unknown_widget_x", Omitted: true},
			{WidgetID: "daily_spend_chart", Label: "Daily Spend", HTML: "<div><h3>Daily Spend</h3><p>325.00</p></div>", Records: 3},
		},
		Provenance: []string{"daily.csv"},
		Warnings: []core.Warning{
			{Component: "normalizer", Code: "UNMAPPED_FIELD", Message: "source field notes has no canonical mapping and was dropped"},
		},
		Omissions:    []report.Omission{{WidgetID: "unknown_widget_x", Reason: "unknown widget: unknown_widget_x"}},
		RejectedRows: 1,
	}
}

// stubBackend returns fixed bytes or a fixed error.
type stubBackend struct {
	out []byte
	err error
}

func (b *stubBackend) HTMLToPDF(context.Context, []byte) ([]byte, error) {
	return b.out, b.err
}

// stubService scripts the presentation service responses.
type stubService struct {
	healthy bool
	deck    []byte
	err     error
}

func (s *stubService) HealthCheck(context.Context) bool { return s.healthy }

func (s *stubService) Generate(context.Context, string) ([]byte, error) {
	return s.deck, s.err
}

func TestRenderHTML(t *testing.T) {
	t.Run("Should render the same document to byte-identical HTML", func(t *testing.T) {
		doc := sampleDocument()
		first, err := RenderHTML(doc)
		require.NoError(t, err)
		second, err := RenderHTML(doc)
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})

	t.Run("Should make omissions, warnings and rejected rows visible", func(t *testing.T) {
		html, err := RenderHTML(sampleDocument())
		require.NoError(t, err)

		out := string(html)
		assert.Contains(t, out, "Widget unknown_widget_x was omitted.")
		assert.Contains(t, out, "Data Quality Notes")
		assert.Contains(t, out, "source field notes")
		assert.Contains(t, out, "1 source row(s) were rejected during normalization")
		assert.Contains(t, out, "daily.csv")
	})

	t.Run("Should keep block content in requested order", func(t *testing.T) {
		html, err := RenderHTML(sampleDocument())
		require.NoError(t, err)

		out := string(html)
		topline := indexOf(t, out, "Topline KPIs")
		omitted := indexOf(t, out, "unknown_widget_x was omitted")
		spend := indexOf(t, out, "Daily Spend")
		assert.Less(t, topline, omitted)
		assert.Less(t, omitted, spend)
	})
}

func TestGofpdfBackend(t *testing.T) {
	t.Run("Should produce byte-identical PDFs for the same HTML", func(t *testing.T) {
		backend := &GofpdfBackend{}
		html, err := RenderHTML(sampleDocument())
		require.NoError(t, err)

		first, err := backend.HTMLToPDF(testContext(), html)
		require.NoError(t, err)
		second, err := backend.HTMLToPDF(testContext(), html)
		require.NoError(t, err)
		assert.Equal(t, first, second)
		assert.True(t, len(first) > 0)
	})
}

func TestDeckBuilder(t *testing.T) {
	t.Run("Should always produce a deck, even for an empty document", func(t *testing.T) {
		builder := &DeckBuilder{}
		deck := builder.Build(&report.Document{Type: core.ReportInitial})
		assert.NotEmpty(t, deck)
	})

	t.Run("Should produce identical decks for the same document", func(t *testing.T) {
		builder := &DeckBuilder{}
		doc := sampleDocument()
		assert.Equal(t, builder.Build(doc), builder.Build(doc))
	})
}

func TestPipeline_Export(t *testing.T) {
	ctx := testContext()

	t.Run("Should export all formats and write artifacts to the destination", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		pipeline := NewPipeline(
			WithRenderBackend(&stubBackend{out: []byte("%PDF-stub")}),
			WithFs(fs),
		)
		doc := sampleDocument()
		formats := []report.Format{report.FormatHTML, report.FormatPDF, report.FormatSlides}

		artifacts, err := pipeline.Export(ctx, doc, formats, "out")
		require.NoError(t, err)
		require.Len(t, artifacts, 3)

		for i, format := range formats {
			assert.Equal(t, format, artifacts[i].Format)
			assert.Nil(t, artifacts[i].Error)
			assert.NotEmpty(t, artifacts[i].Bytes)
			exists, statErr := afero.Exists(fs, artifacts[i].Path)
			require.NoError(t, statErr)
			assert.True(t, exists, artifacts[i].Path)
		}
	})

	t.Run("Should isolate a PDF backend failure from the other formats", func(t *testing.T) {
		pipeline := NewPipeline(
			WithRenderBackend(&stubBackend{err: errors.New("headless renderer crashed")}),
			WithFs(afero.NewMemMapFs()),
		)
		doc := sampleDocument()
		formats := []report.Format{report.FormatHTML, report.FormatPDF, report.FormatSlides}

		artifacts, err := pipeline.Export(ctx, doc, formats, "")
		require.NoError(t, err)

		assert.Nil(t, artifacts[0].Error)
		require.NotNil(t, artifacts[1].Error)
		assert.Equal(t, ErrCodeRenderBackend, artifacts[1].Error.Code)
		assert.Nil(t, artifacts[2].Error)
	})

	t.Run("Should fail only when no format could be delivered", func(t *testing.T) {
		pipeline := NewPipeline(
			WithRenderBackend(&stubBackend{err: errors.New("headless renderer crashed")}),
			WithFs(afero.NewMemMapFs()),
		)

		artifacts, err := pipeline.Export(ctx, sampleDocument(), []report.Format{report.FormatPDF}, "")
		require.Error(t, err)
		var coreErr *core.Error
		require.ErrorAs(t, err, &coreErr)
		assert.Equal(t, ErrCodeAllFailed, coreErr.Code)
		require.Len(t, artifacts, 1)
		assert.NotNil(t, artifacts[0].Error)
	})

	t.Run("Should name slide artifacts by the path that produced them", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		pipeline := NewPipeline(WithFs(fs))

		artifacts, err := pipeline.Export(ctx, sampleDocument(), []report.Format{report.FormatSlides}, "out")
		require.NoError(t, err)
		require.Len(t, artifacts, 1)
		assert.True(t, artifacts[0].FallbackUsed)
		assert.Contains(t, artifacts[0].Path, ".pdf")
	})
}

func TestSlideExport(t *testing.T) {
	ctx := testContext()

	t.Run("Should use the primary path when the service is healthy", func(t *testing.T) {
		svc := &stubService{healthy: true, deck: []byte("PK\x03\x04pptx-bytes")}
		pipeline := NewPipeline(WithPresentationService(svc))

		artifacts, err := pipeline.Export(ctx, sampleDocument(), []report.Format{report.FormatSlides}, "")
		require.NoError(t, err)
		require.Len(t, artifacts, 1)

		assert.False(t, artifacts[0].FallbackUsed)
		assert.Equal(t, []byte("PK\x03\x04pptx-bytes"), artifacts[0].Bytes)
		assert.Contains(t, artifacts[0].ContentType, "presentationml")
		assert.Empty(t, artifacts[0].Warnings)
	})

	t.Run("Should fall back when the health probe fails", func(t *testing.T) {
		svc := &stubService{healthy: false}
		pipeline := NewPipeline(WithPresentationService(svc))

		artifacts, err := pipeline.Export(ctx, sampleDocument(), []report.Format{report.FormatSlides}, "")
		require.NoError(t, err)

		assert.True(t, artifacts[0].FallbackUsed)
		assert.Equal(t, "application/pdf", artifacts[0].ContentType)
		require.Len(t, artifacts[0].Warnings, 1)
		assert.Equal(t, ErrCodeFallbackUsed, artifacts[0].Warnings[0].Code)
	})

	t.Run("Should fall back when generation fails or returns nothing", func(t *testing.T) {
		for name, svc := range map[string]*stubService{
			"error": {healthy: true, err: errors.New("model overloaded")},
			"empty": {healthy: true, deck: nil},
		} {
			pipeline := NewPipeline(WithPresentationService(svc))
			artifacts, err := pipeline.Export(ctx, sampleDocument(), []report.Format{report.FormatSlides}, "")
			require.NoError(t, err, name)
			assert.True(t, artifacts[0].FallbackUsed, name)
			assert.NotEmpty(t, artifacts[0].Bytes, name)
		}
	})

	t.Run("Should fall back without a service configured", func(t *testing.T) {
		pipeline := NewPipeline()

		artifacts, err := pipeline.Export(ctx, sampleDocument(), []report.Format{report.FormatSlides}, "")
		require.NoError(t, err)
		assert.True(t, artifacts[0].FallbackUsed)
		assert.NotEmpty(t, artifacts[0].Bytes)
	})
}

func indexOf(t *testing.T, haystack, needle string) int {
	t.Helper()
	idx := strings.Index(haystack, needle)
	require.GreaterOrEqual(t, idx, 0, needle)
	return idx
}
