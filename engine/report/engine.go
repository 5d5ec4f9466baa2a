package report

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/arloai/reporting/engine/core"
	"github.com/arloai/reporting/engine/metrics"
	"github.com/arloai/reporting/engine/normalizer"
	"github.com/arloai/reporting/engine/source"
	"github.com/arloai/reporting/engine/widget"
	"github.com/arloai/reporting/pkg/logger"
)

// State is the per-request pipeline phase. ASSEMBLED and FAILED are
// terminal.
type State string

const (
	StateCollecting       State = "COLLECTING"
	StateNormalizing      State = "NORMALIZING"
	StateResolvingWidgets State = "RESOLVING_WIDGETS"
	StateRendering        State = "RENDERING"
	StateAssembled        State = "ASSEMBLED"
	StateFailed           State = "FAILED"
)

// Options tune the engine.
type Options struct {
	// MaxWorkers bounds parallel source collection and widget rendering.
	// Zero means sequential execution; both satisfy the ordering contract
	// since blocks are slotted by request index, never completion order.
	MaxWorkers int
	// PlaceholderTypes enables placeholder rendering for widgets with
	// missing requirements, per report type. Types not present get an
	// omission instead.
	PlaceholderTypes map[core.ReportType]bool
}

// DefaultOptions enables placeholders for initial reports only, where thin
// data is expected.
func DefaultOptions() Options {
	return Options{
		MaxWorkers:       4,
		PlaceholderTypes: map[core.ReportType]bool{core.ReportInitial: true},
	}
}

// Engine orchestrates the end-to-end report assembly pipeline. The widget
// registry is passed in explicitly and must be fully populated before the
// first Generate call; the engine never mutates it.
type Engine struct {
	registry    *widget.Registry
	normalizer  *normalizer.Normalizer
	opts        Options
	placeholder widget.PlaceholderRenderer
}

// NewEngine creates a report engine.
func NewEngine(registry *widget.Registry, norm *normalizer.Normalizer, opts Options) *Engine {
	if norm == nil {
		norm = normalizer.New()
	}
	if opts.MaxWorkers < 0 {
		opts.MaxWorkers = 0
	}
	return &Engine{registry: registry, normalizer: norm, opts: opts}
}

// Generate runs one request through the pipeline and assembles the report
// document. Per-source and per-widget failures degrade into warnings,
// omissions or error blocks; only a request with literally nothing to
// deliver returns an error.
func (e *Engine) Generate(ctx context.Context, spec *Spec, inputs []source.Input) (*Document, error) {
	log := logger.FromContext(ctx)
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	state := StateCollecting
	log.Info("generating report", "type", spec.Type, "sources", len(inputs), "widgets", len(spec.Widgets))

	raws, collectWarnings := e.collect(ctx, inputs)
	if len(raws) == 0 {
		state = StateFailed
		log.Error("report failed", "state", state, "reason", "no source collected")
		return nil, &NoUsableSourceError{Declared: len(inputs)}
	}

	state = StateNormalizing
	ds, normWarnings := e.normalize(ctx, spec, raws)
	if ds == nil || len(ds.Records) == 0 {
		state = StateFailed
		log.Error("report failed", "state", state, "reason", "no source normalized")
		return nil, &NoUsableSourceError{Declared: len(inputs)}
	}
	ds.Warnings = append(ds.Warnings, collectWarnings...)
	ds.Warnings = append(ds.Warnings, normWarnings...)

	state = StateResolvingWidgets
	plan, omissions, resolveWarnings := e.resolveWidgets(spec, ds)

	state = StateRendering
	blocks := e.render(ctx, plan, ds)

	state = StateAssembled
	doc := newDocument(spec, ds, time.Now().UTC())
	doc.Blocks = blocks
	doc.Omissions = omissions
	doc.Warnings = append(doc.Warnings, resolveWarnings...)
	for i := range blocks {
		if blocks[i].Error != nil {
			doc.Warnings = append(doc.Warnings, core.Warning{
				Component: "report",
				Code:      ErrCodeWidgetFailed,
				Message:   "widget " + blocks[i].WidgetID + " degraded to an error block",
			})
		}
	}

	log.Info("report assembled",
		"state", state,
		"id", doc.ID,
		"blocks", len(doc.Blocks),
		"warnings", len(doc.Warnings),
		"complete", doc.Complete())
	return doc, nil
}

// collect reads every declared input, tolerating per-source failures. Raw
// sets come back in declaration order so later sources keep merge
// precedence.
func (e *Engine) collect(ctx context.Context, inputs []source.Input) ([]*source.RawRecordSet, []core.Warning) {
	log := logger.FromContext(ctx)
	raws := make([]*source.RawRecordSet, len(inputs))
	errs := make([]error, len(inputs))

	g, gctx := errgroup.WithContext(ctx)
	sem := make(chan struct{}, e.workerSlots())
	for i := range inputs {
		g.Go(func() error {
			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-gctx.Done():
				return gctx.Err()
			}
			raws[i], errs[i] = source.Collect(gctx, inputs[i])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.Warn("source collection interrupted", "error", err)
	}

	var collected []*source.RawRecordSet
	var warnings []core.Warning
	for i := range inputs {
		if errs[i] != nil {
			log.Warn("source skipped", "source", inputs[i].Name(), "error", errs[i])
			warnings = append(warnings, core.Warning{
				Component: "report",
				Code:      ErrCodeSourceSkipped,
				Message:   errs[i].Error(),
				Source:    inputs[i].Name(),
			})
			continue
		}
		if raws[i] != nil {
			collected = append(collected, raws[i])
		}
	}
	return collected, warnings
}

// normalize converts and merges the collected raw sets. A malformed source
// aborts ingestion for that source only; the run continues with the rest.
func (e *Engine) normalize(ctx context.Context, spec *Spec, raws []*source.RawRecordSet) (*metrics.NormalizedDataset, []core.Warning) {
	log := logger.FromContext(ctx)
	var merged *metrics.NormalizedDataset
	var warnings []core.Warning

	for _, raw := range raws {
		ds, err := e.normalizer.Normalize(ctx, raw)
		if err != nil {
			log.Warn("source dropped during normalization", "source", raw.Source, "error", err)
			warnings = append(warnings, core.Warning{
				Component: "normalizer",
				Code:      ErrCodeSourceSkipped,
				Message:   err.Error(),
				Source:    raw.Source,
			})
			continue
		}
		if merged == nil {
			merged = ds
			continue
		}
		merged.Merge(ds)
	}

	if merged != nil && spec.CampaignID != "" {
		warnings = append(warnings, scopeToCampaign(merged, spec.CampaignID)...)
	}
	return merged, warnings
}

// scopeToCampaign drops records belonging to a different campaign than the
// one the report requested.
func scopeToCampaign(ds *metrics.NormalizedDataset, campaignID string) []core.Warning {
	kept := ds.Records[:0]
	dropped := 0
	for _, rec := range ds.Records {
		if rec.CampaignID != "" && rec.CampaignID != campaignID {
			dropped++
			continue
		}
		kept = append(kept, rec)
	}
	ds.Records = kept
	if dropped == 0 {
		return nil
	}
	return []core.Warning{{
		Component: "report",
		Code:      "OUT_OF_SCOPE_RECORDS",
		Message:   fmt.Sprintf("%d record(s) outside campaign %s were dropped", dropped, campaignID),
	}}
}

// renderTask is one slot in the request's widget order. A task with a nil
// descriptor marks an omission resolved earlier.
type renderTask struct {
	index int
	id    string
	desc  *widget.Descriptor
	// placeholder renders the explicit placeholder block instead of the
	// widget's own renderer.
	placeholder bool
}

// resolveWidgets resolves every requested identifier and runs the mandatory
// requirements check. Widgets that cannot render become placeholder tasks or
// pre-filled omission blocks, never silent exclusions.
func (e *Engine) resolveWidgets(spec *Spec, ds *metrics.NormalizedDataset) ([]renderTask, []Omission, []core.Warning) {
	var tasks []renderTask
	var omissions []Omission
	var warnings []core.Warning
	allowPlaceholders := e.opts.PlaceholderTypes[spec.Type]

	for i, id := range spec.Widgets {
		desc, err := e.registry.Resolve(id)
		if err != nil {
			var unknown *widget.UnknownWidgetError
			if !errors.As(err, &unknown) {
				// Resolve only fails with UnknownWidgetError today;
				// anything else still degrades to an omission.
				unknown = &widget.UnknownWidgetError{ID: id}
			}
			omissions = append(omissions, Omission{WidgetID: id, Reason: unknown.Error()})
			warnings = append(warnings, core.Warning{
				Component: "report",
				Code:      ErrCodeWidgetOmitted,
				Message:   unknown.Error(),
			})
			tasks = append(tasks, renderTask{index: i, id: id})
			continue
		}

		missing := e.registry.CheckRequirements(desc, ds)
		if len(missing) > 0 {
			if allowPlaceholders {
				tasks = append(tasks, renderTask{index: i, id: id, desc: desc, placeholder: true})
				continue
			}
			reason := fmt.Sprintf("widget %s omitted: dataset is missing %v", id, missing)
			omissions = append(omissions, Omission{WidgetID: id, Reason: reason})
			warnings = append(warnings, core.Warning{
				Component: "report",
				Code:      ErrCodeWidgetOmitted,
				Message:   reason,
			})
			tasks = append(tasks, renderTask{index: i, id: id})
			continue
		}
		tasks = append(tasks, renderTask{index: i, id: id, desc: desc})
	}
	return tasks, omissions, warnings
}

// render invokes each resolvable widget, in parallel, slotting results into
// the original request order. A single renderer failure or panic degrades to
// an error block and never aborts the report.
func (e *Engine) render(ctx context.Context, tasks []renderTask, ds *metrics.NormalizedDataset) []widget.Block {
	blocks := make([]widget.Block, len(tasks))

	g, gctx := errgroup.WithContext(ctx)
	sem := make(chan struct{}, e.workerSlots())
	for _, task := range tasks {
		if task.desc == nil {
			// Omitted widget: the block marks the omission in place.
			blocks[task.index] = widget.Block{WidgetID: task.id, Omitted: true}
			continue
		}
		g.Go(func() error {
			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-gctx.Done():
				return gctx.Err()
			}
			blocks[task.index] = e.renderOne(gctx, task, ds)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		logger.FromContext(ctx).Warn("widget rendering interrupted", "error", err)
	}
	return blocks
}

func (e *Engine) renderOne(ctx context.Context, task renderTask, ds *metrics.NormalizedDataset) (block widget.Block) {
	desc := task.desc
	defer func() {
		if r := recover(); r != nil {
			block = errorBlock(desc, fmt.Errorf("renderer panicked: %v", r))
		}
	}()

	renderer := desc.Renderer
	if task.placeholder {
		renderer = &e.placeholder
	}
	out, err := renderer.Render(ctx, ds, desc)
	if err != nil {
		logger.FromContext(ctx).Warn("widget render failed", "widget", desc.ID, "error", err)
		return errorBlock(desc, err)
	}
	return *out
}

func errorBlock(desc *widget.Descriptor, err error) widget.Block {
	return widget.Block{
		WidgetID: desc.ID,
		Label:    desc.Label,
		Error: core.NewError(widget.NewRenderError(desc.ID, err), widget.ErrCodeRender,
			"widget "+desc.ID+" failed to render", map[string]any{"widget": desc.ID}),
	}
}

func (e *Engine) workerSlots() int {
	if e.opts.MaxWorkers <= 0 {
		return 1
	}
	return e.opts.MaxWorkers
}
