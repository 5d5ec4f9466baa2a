package export

import (
	"context"
	"fmt"

	"github.com/arloai/reporting/engine/core"
	"github.com/arloai/reporting/engine/report"
	"github.com/arloai/reporting/pkg/logger"
)

// SlidePath identifies which route produced a slide deck.
type SlidePath string

const (
	// PathPrimary is the external AI presentation service.
	PathPrimary SlidePath = "primary"
	// PathFallback is the local deterministic deck builder.
	PathFallback SlidePath = "fallback"
)

// PresentationService is the external AI presentation service contract.
// Both calls are network-bound and honor the caller's context deadline.
type PresentationService interface {
	HealthCheck(ctx context.Context) bool
	Generate(ctx context.Context, prompt string) ([]byte, error)
}

// SlideResult is a produced slide deck plus the path that produced it.
// Slide export has no failure terminal state: a deck always comes back,
// possibly lower-fidelity.
type SlideResult struct {
	Deck        []byte
	ContentType string
	Path        SlidePath
	Warnings    []core.Warning
}

// slideExporter runs the two-stage primary/fallback state machine.
type slideExporter struct {
	service PresentationService
	builder *DeckBuilder
}

// Export attempts the external service first, guarded by a health probe so
// a known-down dependency never burns a full generation timeout, and falls
// back to the local builder on any primary defect.
func (e *slideExporter) Export(ctx context.Context, doc *report.Document) *SlideResult {
	log := logger.FromContext(ctx)

	if e.service != nil {
		if !e.service.HealthCheck(ctx) {
			log.Warn("presentation service health probe failed, skipping to fallback")
			return e.fallback(doc, "health probe failed or timed out")
		}
		deck, err := e.service.Generate(ctx, deckPrompt(doc))
		switch {
		case err != nil:
			log.Warn("presentation service generation failed, falling back", "error", err)
			return e.fallback(doc, err.Error())
		case len(deck) == 0:
			log.Warn("presentation service returned an empty payload, falling back")
			return e.fallback(doc, "service returned an empty payload")
		default:
			return &SlideResult{
				Deck:        deck,
				ContentType: "application/vnd.openxmlformats-officedocument.presentationml.presentation",
				Path:        PathPrimary,
			}
		}
	}
	return e.fallback(doc, "no presentation service configured")
}

func (e *slideExporter) fallback(doc *report.Document, reason string) *SlideResult {
	return &SlideResult{
		Deck:        e.builder.Build(doc),
		ContentType: "application/pdf",
		Path:        PathFallback,
		Warnings: []core.Warning{{
			Component: "export",
			Code:      ErrCodeFallbackUsed,
			Message:   "slide deck generated via local fallback: " + reason,
		}},
	}
}

// deckPrompt summarizes the document for the AI presentation service.
func deckPrompt(doc *report.Document) string {
	prompt := fmt.Sprintf(
		"Create a professional campaign performance presentation.\n"+
			"Report type: %s\nCampaign: %s\nPeriod: %s to %s\n\nSections:\n",
		doc.Type, orAll(doc.CampaignID),
		doc.Range.Start.Format("2006-01-02"), doc.Range.End.Format("2006-01-02"))
	for i := range doc.Blocks {
		block := &doc.Blocks[i]
		if block.Degraded() {
			continue
		}
		prompt += fmt.Sprintf("%d. %s\n", i+1, blockTitle(block.Label, block.WidgetID))
		for _, para := range textParagraphs(block.HTML) {
			prompt += "   " + para.text + "\n"
		}
	}
	return prompt
}
