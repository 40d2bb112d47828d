package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/dgallion1/personadoc/internal/config"
	"github.com/dgallion1/personadoc/internal/input"
	"github.com/dgallion1/personadoc/internal/parser"
	"github.com/dgallion1/personadoc/internal/pipeline"
)

type analyzeFlags struct {
	docDir       string
	output       string
	top          int
	minDocuments int
}

var analyzeOpts analyzeFlags

var analyzeCmd = &cobra.Command{
	Use:   "analyze <input.json>",
	Short: "Rank document sections for the persona and task in an input file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("top") {
			cfg.Analysis.TopN = analyzeOpts.top
		}
		if cmd.Flags().Changed("min-documents") {
			cfg.Analysis.MinDocuments = analyzeOpts.minDocuments
		}
		if err := cfg.Validate(); err != nil {
			return eris.Wrap(err, "invalid flags")
		}
		return runAnalyze(cmd.Context(), cfg, log, args[0], analyzeOpts, cmd.OutOrStdout())
	},
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeOpts.docDir, "doc-dir", "pdfs", "directory containing the input documents")
	analyzeCmd.Flags().StringVar(&analyzeOpts.output, "output", "output.json", "output JSON file")
	analyzeCmd.Flags().IntVar(&analyzeOpts.top, "top", 10, "number of sections to extract")
	analyzeCmd.Flags().IntVar(&analyzeOpts.minDocuments, "min-documents", input.DefaultMinDocuments, "smallest accepted collection (0 disables the check)")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(ctx context.Context, cfg *config.Config, log *slog.Logger, inputPath string, flags analyzeFlags, out io.Writer) error {
	batch, err := input.Load(inputPath)
	if err != nil {
		return err
	}

	ttl, cleanup := cfg.CacheTTL()
	resolver := &input.Resolver{
		DocDir: flags.docDir,
		Cache:  parser.NewCache(ttl, cleanup),
		Log:    log,
	}
	docs := resolver.Resolve(batch)
	if err := input.EnforceMinimum(docs, cfg.Analysis.MinDocuments); err != nil {
		return err
	}

	analyzer := pipeline.NewAnalyzer(cfg.PipelineOptions(), log)
	res, err := analyzer.Analyze(ctx, docs, batch.Role(), batch.Task())
	if err != nil {
		return eris.Wrap(err, "analyze")
	}

	if err := input.WriteJSON(flags.output, res); err != nil {
		return err
	}

	fmt.Fprintf(out, "Processing complete! Results saved to %s\n", flags.output)
	fmt.Fprintf(out, "Extracted %d sections\n", len(res.ExtractedSections))
	fmt.Fprintf(out, "Generated %d subsection analyses\n", len(res.SubsectionAnalysis))
	for _, w := range res.Metadata.Warnings {
		fmt.Fprintf(out, "Warning: %s\n", w)
	}
	return nil
}
