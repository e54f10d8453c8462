package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/DanielDi/agent-tech-mining/constants"
	"github.com/DanielDi/agent-tech-mining/internal/common"
	"github.com/DanielDi/agent-tech-mining/internal/dataset"
	"github.com/DanielDi/agent-tech-mining/internal/vocab"
)

var (
	seedColumns   []string
	seedSheet     string
	seedMerge     bool
	seedOverwrite bool
)

var seedCmd = &cobra.Command{
	Use:   "seed <workbook.xlsx>",
	Short: "Build the vocabulary from an existing spreadsheet",
	Long: `Build the vocabulary from the category columns of an existing spreadsheet.

Cells are split on ";" and trimmed; labels are deduplicated and sorted. By
default the legacy headers are used:

  AnalyzedFields     ¿Qué se analiza?
  TermPreprocessing  Preprocesamiento de Términos
  Clustering         Clustering
  ClusterAnalysis    Análisis de Clusters

Override any of them with --column Category=Header.`,
	Args: cobra.ExactArgs(1),
	RunE: runSeed,
}

func init() {
	f := seedCmd.Flags()
	f.StringArrayVar(&seedColumns, "column", nil, "category to header mapping, e.g. Clustering=Algorithms (repeatable)")
	f.StringVar(&seedSheet, "from-sheet", "", "sheet to read (default: first sheet)")
	f.BoolVar(&seedMerge, "merge", false, "add to the existing vocabulary instead of replacing it")
	f.BoolVar(&seedOverwrite, "force", false, "replace an existing vocabulary file")
	f.String("vocab", "", "vocabulary JSON file to write")
	rootCmd.AddCommand(seedCmd)
}

// parseColumns applies Category=Header overrides to the default mapping.
func parseColumns(overrides []string) (map[constants.Category]string, error) {
	cols := make(map[constants.Category]string, len(constants.SeedColumns))
	for c, h := range constants.SeedColumns {
		cols[c] = h
	}
	for _, o := range overrides {
		name, header, ok := strings.Cut(o, "=")
		if !ok || strings.TrimSpace(header) == "" {
			return nil, fmt.Errorf("invalid --column %q: want Category=Header", o)
		}
		cat, ok := constants.Canonicalize(name)
		if !ok {
			return nil, fmt.Errorf("invalid --column %q: unknown category (want one of %s)", o, strings.Join(constants.AsStringSlice(), ", "))
		}
		cols[cat] = strings.TrimSpace(header)
	}
	return cols, nil
}

func runSeed(cmd *cobra.Command, args []string) error {
	cols, err := parseColumns(seedColumns)
	if err != nil {
		return configError(err)
	}

	out := cfg.Paths.Vocabulary
	if _, err := os.Stat(out); err == nil && !seedMerge && !seedOverwrite {
		return configError(fmt.Errorf("%s exists; use --merge or --force", out))
	}

	if _, err := os.Stat(args[0]); err != nil {
		return err
	}
	src := dataset.NewStore(args[0], seedSheet, logger)
	table, err := src.Read()
	if err != nil {
		return common.WrapError(err, "read seed workbook")
	}
	if table.Len() == 0 {
		return fmt.Errorf("%s has no data rows", args[0])
	}

	seeded, res := vocab.Seed(table.Columns, table.Rows, cols)
	for cat, header := range res.MissingColumns {
		logger.Warn("vocab.seed.missing_column", "category", cat, "header", header)
	}

	if seedMerge {
		existing, err := vocab.Load(out, logger)
		if err != nil {
			return err
		}
		for _, cat := range seeded.Categories() {
			for _, l := range seeded.Labels(cat) {
				existing.Add(cat, l)
			}
		}
		seeded = existing
	}

	if err := vocab.Save(out, seeded); err != nil {
		return common.WrapError(err, "save vocabulary")
	}
	logger.Info("vocab.seed.ok", "path", out, "rows", res.Rows, "labels", seeded.Total())

	if humanOutput {
		outputHuman(os.Stdout, "Seeded %s from %d rows of %s\n", out, res.Rows, args[0])
		for _, cat := range seeded.Categories() {
			outputHuman(os.Stdout, "  %-18s %d labels\n", cat, seeded.Len(cat))
		}
		for cat, header := range res.MissingColumns {
			outputHuman(os.Stdout, "  warning: column %q for %s not found\n", header, cat)
		}
		return nil
	}
	return outputJSON(os.Stdout, struct {
		Path string `json:"path"`
		vocab.SeedResult
	}{Path: out, SeedResult: res})
}
