package report

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arloai/reporting/engine/core"
	"github.com/arloai/reporting/engine/metrics"
	"github.com/arloai/reporting/engine/source"
	"github.com/arloai/reporting/engine/widget"
	"github.com/arloai/reporting/pkg/logger"
)

func testContext() context.Context {
	log := logger.NewLogger(logger.TestConfig())
	return logger.ContextWithLogger(context.Background(), log)
}

func csvInput(name, body string) source.Input {
	return &source.BytesInput{SourceName: name, SourceKind: core.KindCSV, Data: []byte(body)}
}

func fullCSV() source.Input {
	return csvInput("daily.csv",
		"date,campaign,creative,placement,impressions,clicks,spend,sessions\n"+
			"2025-07-01,camp-1,cr-a,feed,1000,50,120.00,300\n"+
			"2025-07-02,camp-1,cr-a,feed,900,45,110.00,280\n"+
			"2025-07-03,camp-1,cr-b,stories,1200,30,95.00,310\n")
}

func newTestEngine(t *testing.T, opts Options) *Engine {
	t.Helper()
	registry, err := widget.DefaultRegistry()
	require.NoError(t, err)
	return NewEngine(registry, nil, opts)
}

// slowRenderer sleeps a caller-chosen time before delegating, so completion
// order diverges from request order under parallel rendering.
type slowRenderer struct {
	delay time.Duration
}

func (r *slowRenderer) Render(ctx context.Context, ds *metrics.NormalizedDataset, desc *widget.Descriptor) (*widget.Block, error) {
	time.Sleep(r.delay)
	return &widget.Block{WidgetID: desc.ID, Label: desc.Label, HTML: "<div>" + desc.ID + "</div>"}, nil
}

type failingRenderer struct{}

func (r *failingRenderer) Render(context.Context, *metrics.NormalizedDataset, *widget.Descriptor) (*widget.Block, error) {
	return nil, errors.New("renderer exploded")
}

type panickingRenderer struct{}

func (r *panickingRenderer) Render(context.Context, *metrics.NormalizedDataset, *widget.Descriptor) (*widget.Block, error) {
	panic("renderer lost its mind")
}

func TestEngine_Generate(t *testing.T) {
	ctx := testContext()

	t.Run("Should assemble a complete document from a single CSV source", func(t *testing.T) {
		engine := newTestEngine(t, DefaultOptions())
		spec := &Spec{Type: core.ReportMidCampaign, CampaignID: "camp-1"}

		doc, err := engine.Generate(ctx, spec, []source.Input{fullCSV()})
		require.NoError(t, err)

		assert.NotEmpty(t, doc.ID)
		assert.Equal(t, core.ReportMidCampaign, doc.Type)
		assert.Equal(t, DefaultWidgets(core.ReportMidCampaign), blockIDs(doc))
		assert.True(t, doc.Complete())
		assert.Equal(t, []string{"daily.csv"}, doc.Provenance)
	})

	t.Run("Should fail with NoUsableSourceError when every source is unreadable", func(t *testing.T) {
		engine := newTestEngine(t, DefaultOptions())
		spec := &Spec{Type: core.ReportInitial}
		inputs := []source.Input{
			csvInput("empty.csv", ""),
			&source.FileInput{Path: "/does/not/exist.csv", FileKind: core.KindCSV},
		}

		_, err := engine.Generate(ctx, spec, inputs)
		var noSource *NoUsableSourceError
		require.ErrorAs(t, err, &noSource)
		assert.Equal(t, 2, noSource.Declared)
	})

	t.Run("Should reject an invalid spec before touching any source", func(t *testing.T) {
		engine := newTestEngine(t, DefaultOptions())
		spec := &Spec{Type: core.ReportType("quarterly")}

		_, err := engine.Generate(ctx, spec, []source.Input{fullCSV()})
		var invalid *InvalidSpecError
		require.ErrorAs(t, err, &invalid)
	})

	t.Run("Should keep one broken source from sinking the run", func(t *testing.T) {
		engine := newTestEngine(t, DefaultOptions())
		spec := &Spec{Type: core.ReportInitial}
		inputs := []source.Input{
			csvInput("broken.csv", ""),
			fullCSV(),
		}

		doc, err := engine.Generate(ctx, spec, inputs)
		require.NoError(t, err)
		require.NotEmpty(t, doc.Blocks)
		assert.True(t, hasWarningCode(doc.Warnings, ErrCodeSourceSkipped))
	})

	t.Run("Should omit an unknown widget visibly and render the rest", func(t *testing.T) {
		engine := newTestEngine(t, DefaultOptions())
		spec := &Spec{
			Type:    core.ReportMidCampaign,
			Widgets: []string{widget.WidgetToplineKPIGrid, "unknown_widget_x", widget.WidgetDailySpendChart},
		}

		doc, err := engine.Generate(ctx, spec, []source.Input{fullCSV()})
		require.NoError(t, err)
		require.Len(t, doc.Blocks, 3)

		assert.False(t, doc.Blocks[0].Degraded())
		assert.True(t, doc.Blocks[1].Omitted)
		assert.Equal(t, "unknown_widget_x", doc.Blocks[1].WidgetID)
		assert.False(t, doc.Blocks[2].Degraded())

		require.Len(t, doc.Omissions, 1)
		assert.Equal(t, "unknown_widget_x", doc.Omissions[0].WidgetID)
		assert.False(t, doc.Complete())
	})

	t.Run("Should drop records from other campaigns with a warning", func(t *testing.T) {
		engine := newTestEngine(t, DefaultOptions())
		spec := &Spec{Type: core.ReportInitial, CampaignID: "camp-1"}
		mixed := csvInput("mixed.csv",
			"date,campaign,impressions,clicks,spend\n"+
				"2025-07-01,camp-1,1000,50,10\n"+
				"2025-07-01,camp-2,9999,999,99\n")

		doc, err := engine.Generate(ctx, spec, []source.Input{mixed})
		require.NoError(t, err)
		assert.True(t, hasWarningCode(doc.Warnings, "OUT_OF_SCOPE_RECORDS"))
	})
}

func TestEngine_BlockOrdering(t *testing.T) {
	ctx := testContext()

	t.Run("Should preserve requested widget order under parallel rendering", func(t *testing.T) {
		registry := widget.NewRegistry()
		var ids []string
		for i := 0; i < 12; i++ {
			id := fmt.Sprintf("probe_widget_%02d", i)
			ids = append(ids, id)
			require.NoError(t, registry.Register(&widget.Descriptor{
				ID:       id,
				Label:    id,
				Category: widget.CategoryKPIGrid,
				Renderer: &slowRenderer{delay: time.Duration(rand.Intn(20)) * time.Millisecond},
			}))
		}

		engine := NewEngine(registry, nil, Options{MaxWorkers: 8})
		spec := &Spec{Type: core.ReportFinal, Widgets: ids}

		doc, err := engine.Generate(ctx, spec, []source.Input{fullCSV()})
		require.NoError(t, err)
		assert.Equal(t, ids, blockIDs(doc))
	})

	t.Run("Should produce the same order with sequential rendering", func(t *testing.T) {
		engine := newTestEngine(t, Options{MaxWorkers: 0})
		spec := &Spec{Type: core.ReportFinal}

		doc, err := engine.Generate(ctx, spec, []source.Input{fullCSV()})
		require.NoError(t, err)
		assert.Equal(t, DefaultWidgets(core.ReportFinal), blockIDs(doc))
	})
}

func TestEngine_RenderFailureIsolation(t *testing.T) {
	ctx := testContext()

	register := func(t *testing.T, registry *widget.Registry, id string, r widget.Renderer) {
		t.Helper()
		require.NoError(t, registry.Register(&widget.Descriptor{
			ID: id, Label: id, Category: widget.CategoryKPIGrid, Renderer: r,
		}))
	}

	t.Run("Should degrade a failing renderer to an error block and keep the rest", func(t *testing.T) {
		registry := widget.NewRegistry()
		register(t, registry, "healthy_a", &slowRenderer{})
		register(t, registry, "doomed", &failingRenderer{})
		register(t, registry, "healthy_b", &slowRenderer{})

		engine := NewEngine(registry, nil, Options{MaxWorkers: 4})
		spec := &Spec{Type: core.ReportFinal, Widgets: []string{"healthy_a", "doomed", "healthy_b"}}

		doc, err := engine.Generate(ctx, spec, []source.Input{fullCSV()})
		require.NoError(t, err)
		require.Len(t, doc.Blocks, 3)

		assert.False(t, doc.Blocks[0].Degraded())
		require.NotNil(t, doc.Blocks[1].Error)
		assert.Equal(t, widget.ErrCodeRender, doc.Blocks[1].Error.Code)
		assert.False(t, doc.Blocks[2].Degraded())
		assert.True(t, hasWarningCode(doc.Warnings, ErrCodeWidgetFailed))
	})

	t.Run("Should contain a panicking renderer the same way", func(t *testing.T) {
		registry := widget.NewRegistry()
		register(t, registry, "healthy", &slowRenderer{})
		register(t, registry, "volatile", &panickingRenderer{})

		engine := NewEngine(registry, nil, Options{MaxWorkers: 4})
		spec := &Spec{Type: core.ReportFinal, Widgets: []string{"healthy", "volatile"}}

		doc, err := engine.Generate(ctx, spec, []source.Input{fullCSV()})
		require.NoError(t, err)
		require.Len(t, doc.Blocks, 2)
		assert.False(t, doc.Blocks[0].Degraded())
		require.NotNil(t, doc.Blocks[1].Error)
	})
}

func TestEngine_PlaceholderPolicy(t *testing.T) {
	ctx := testContext()

	noSessions := func() source.Input {
		return csvInput("no-sessions.csv",
			"date,impressions,clicks,spend\n2025-07-01,1000,50,10\n")
	}

	t.Run("Should render placeholders for initial reports with thin data", func(t *testing.T) {
		engine := newTestEngine(t, DefaultOptions())
		spec := &Spec{
			Type:    core.ReportInitial,
			Widgets: []string{widget.WidgetToplineKPIGrid, widget.WidgetSessionEngagement},
		}

		doc, err := engine.Generate(ctx, spec, []source.Input{noSessions()})
		require.NoError(t, err)
		require.Len(t, doc.Blocks, 2)
		assert.True(t, doc.Blocks[1].Placeholder)
		assert.Empty(t, doc.Omissions)
	})

	t.Run("Should omit instead of placeholder for final reports", func(t *testing.T) {
		engine := newTestEngine(t, DefaultOptions())
		spec := &Spec{
			Type:    core.ReportFinal,
			Widgets: []string{widget.WidgetToplineKPIGrid, widget.WidgetSessionEngagement},
		}

		doc, err := engine.Generate(ctx, spec, []source.Input{noSessions()})
		require.NoError(t, err)
		require.Len(t, doc.Blocks, 2)
		assert.True(t, doc.Blocks[1].Omitted)
		require.Len(t, doc.Omissions, 1)
		assert.Equal(t, widget.WidgetSessionEngagement, doc.Omissions[0].WidgetID)
	})
}

func TestSpec_Validate(t *testing.T) {
	t.Run("Should fill default widgets and HTML format", func(t *testing.T) {
		spec := &Spec{Type: core.ReportInitial}
		require.NoError(t, spec.Validate())

		assert.Equal(t, DefaultWidgets(core.ReportInitial), spec.Widgets)
		assert.Equal(t, []Format{FormatHTML}, spec.Formats)
	})

	t.Run("Should reject an unknown export format", func(t *testing.T) {
		spec := &Spec{Type: core.ReportInitial, Formats: []Format{"docx"}}
		var invalid *InvalidSpecError
		require.ErrorAs(t, spec.Validate(), &invalid)
	})

	t.Run("Should expand default widget sets per report type", func(t *testing.T) {
		assert.Len(t, DefaultWidgets(core.ReportInitial), 2)
		assert.Len(t, DefaultWidgets(core.ReportMidCampaign), 4)
		assert.Len(t, DefaultWidgets(core.ReportFinal), 6)
	})
}

func blockIDs(doc *Document) []string {
	ids := make([]string, 0, len(doc.Blocks))
	for i := range doc.Blocks {
		ids = append(ids, doc.Blocks[i].WidgetID)
	}
	return ids
}

func hasWarningCode(warnings []core.Warning, code string) bool {
	for _, w := range warnings {
		if w.Code == code {
			return true
		}
	}
	return false
}
