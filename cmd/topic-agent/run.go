package main

import (
	"fmt"
	"os"

	"github.com/oklog/ulid/v2"
	"github.com/spf13/cobra"

	"github.com/DanielDi/agent-tech-mining/internal/common"
	"github.com/DanielDi/agent-tech-mining/internal/pipeline"
)

var runDryRun bool

var runCmd = &cobra.Command{
	Use:   "run <file-or-directory>",
	Short: "Extract metadata from articles and update the vocabulary and dataset",
	Long: `Process one PDF or every PDF in a directory.

Each article is read, sent to the model with the current vocabulary, normalized
against that vocabulary and merged into the dataset, replacing any earlier row
with the same SourceFile. Articles that fail are reported and skipped; the rest
are still saved.

Exit codes:
  0  success (including partial failures without --strict)
  1  a store could not be read or written
  2  configuration error
  3  --strict and at least one article failed`,
	Args: cobra.ExactArgs(1),
	RunE: runRun,
}

func init() {
	f := runCmd.Flags()
	addStoreFlags(runCmd)
	addProcessingFlags(runCmd)
	f.BoolVar(&runDryRun, "dry-run", false, "process and summarize without writing either file")
	f.Bool("strict", false, "exit 3 when any article fails")
	rootCmd.AddCommand(runCmd)
}

func addStoreFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("vocab", "", "vocabulary JSON file")
	f.String("dataset", "", "dataset XLSX file")
	f.String("sheet", "", "dataset sheet name")
}

func addProcessingFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.Bool("recursive", false, "descend into subdirectories")
	f.StringSlice("ext", nil, "file extensions to pick up from directories")
	f.String("model", "", "model name")
	f.Int("max-input", 0, "article characters sent to the model")
	f.Int("workers", 0, "parallel extractions")
	f.Duration("doc-timeout", 0, "time limit per article")
	f.String("cache", "", "SQLite file caching model answers")
	f.String("pdftotext", "", "pdftotext binary used when a PDF has no usable text layer")
	f.Bool("prefer-poppler", false, "try pdftotext before the embedded PDF reader")
}

func runRun(cmd *cobra.Command, args []string) error {
	a, err := buildApp(cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := common.WithRunID(cmd.Context(), ulid.Make().String())
	sum, err := a.pipeline.Run(ctx, args[0], pipeline.RunOptions{DryRun: runDryRun})
	if err != nil {
		return err
	}
	logger.Info("topic-agent.run.done",
		"processed", sum.Processed, "failed", sum.Failed, "cache_hits", a.extractor.CacheHits())
	if err := printSummary(sum); err != nil {
		return err
	}
	if sum.Failed > 0 && cfg.Pipeline.Strict {
		return withExitCode(ExitDocumentsFailed, fmt.Errorf("%d of %d articles failed", sum.Failed, sum.Documents))
	}
	return nil
}

func printSummary(sum pipeline.Summary) error {
	if humanOutput {
		return sum.WriteText(os.Stdout)
	}
	return outputJSON(os.Stdout, sum)
}
