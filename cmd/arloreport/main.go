// arloreport is the thin command-line caller for the report engine: it
// builds a report spec from flags, runs generation and exports the
// requested artifacts.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/arloai/reporting/engine/core"
	"github.com/arloai/reporting/engine/export"
	"github.com/arloai/reporting/engine/export/presenton"
	"github.com/arloai/reporting/engine/normalizer"
	"github.com/arloai/reporting/engine/report"
	"github.com/arloai/reporting/engine/source"
	"github.com/arloai/reporting/engine/widget"
	"github.com/arloai/reporting/pkg/config"
	"github.com/arloai/reporting/pkg/logger"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		reportType string
		campaignID string
		widgets    []string
		formats    []string
		sources    []string
		outputDir  string
	)

	cmd := &cobra.Command{
		Use:   "arloreport",
		Short: "Generate campaign performance reports",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			cfg, err := config.NewLoader().Load(ctx)
			if err != nil {
				return err
			}
			logger.SetupLogger(cfg.Log.Level, cfg.Log.JSON, cfg.Log.Source)

			inputs, err := parseSources(sources)
			if err != nil {
				return err
			}

			registry, err := widget.DefaultRegistry()
			if err != nil {
				return err
			}

			norm := normalizer.New()
			if cfg.Engine.AliasTablePath != "" {
				aliases, err := normalizer.LoadAliases(cfg.Engine.AliasTablePath)
				if err != nil {
					return err
				}
				norm = normalizer.NewWithAliases(aliases)
			}

			opts := report.DefaultOptions()
			opts.MaxWorkers = cfg.Engine.MaxWorkers
			engine := report.NewEngine(registry, norm, opts)

			spec := &report.Spec{
				Type:       core.ReportType(reportType),
				CampaignID: campaignID,
				Widgets:    widgets,
			}
			for _, f := range formats {
				spec.Formats = append(spec.Formats, report.Format(f))
			}

			doc, err := engine.Generate(ctx, spec, inputs)
			if err != nil {
				return err
			}

			pipeline := export.NewPipeline(
				export.WithPresentationService(presenton.New(presenton.Config{
					BaseURL:         cfg.Presenton.BaseURL,
					HealthTimeout:   cfg.Presenton.HealthTimeout,
					GenerateTimeout: cfg.Presenton.GenerateTimeout,
					Retries:         cfg.Presenton.Retries,
				})),
			)

			dest := outputDir
			if dest == "" {
				dest = cfg.Export.OutputDir
			}
			artifacts, err := pipeline.Export(ctx, doc, spec.Formats, dest)
			if err != nil {
				return err
			}
			for _, artifact := range artifacts {
				if artifact.Error != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "%s export failed: %s\n", artifact.Format, artifact.Error)
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s\n", artifact.Format, artifact.Path)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&reportType, "type", "mid_campaign", "report type: initial, mid_campaign or final")
	cmd.Flags().StringVar(&campaignID, "campaign", "", "campaign identifier to scope the report to")
	cmd.Flags().StringSliceVar(&widgets, "widget", nil, "widget identifiers to include, in order (default set per report type)")
	cmd.Flags().StringSliceVar(&formats, "format", []string{"html"}, "output formats: html, pdf, slides")
	cmd.Flags().StringSliceVar(&sources, "source", nil, "data sources as kind:path (kinds: spreadsheet, csv, pdf, json)")
	cmd.Flags().StringVar(&outputDir, "out", "", "output directory for artifacts")
	return cmd
}

func parseSources(specs []string) ([]source.Input, error) {
	if len(specs) == 0 {
		return nil, fmt.Errorf("at least one --source is required")
	}
	inputs := make([]source.Input, 0, len(specs))
	for _, s := range specs {
		kind, path, ok := strings.Cut(s, ":")
		if !ok {
			return nil, fmt.Errorf("invalid source %q: expected kind:path", s)
		}
		k := core.SourceKind(kind)
		if !k.Valid() {
			return nil, fmt.Errorf("invalid source %q: unknown kind %q", s, kind)
		}
		inputs = append(inputs, &source.FileInput{Path: path, FileKind: k})
	}
	return inputs, nil
}
