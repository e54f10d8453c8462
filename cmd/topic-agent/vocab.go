package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/DanielDi/agent-tech-mining/constants"
	"github.com/DanielDi/agent-tech-mining/internal/vocab"
)

var vocabCmd = &cobra.Command{
	Use:   "vocab",
	Short: "Inspect the label vocabulary",
}

var vocabShowCmd = &cobra.Command{
	Use:   "show [category]",
	Short: "Print known labels, for all categories or one",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runVocabShow,
}

func init() {
	vocabShowCmd.Flags().String("vocab", "", "vocabulary JSON file")
	vocabCmd.AddCommand(vocabShowCmd)
	rootCmd.AddCommand(vocabCmd)
}

func runVocabShow(cmd *cobra.Command, args []string) error {
	v, err := vocab.Load(cfg.Paths.Vocabulary, logger)
	if err != nil {
		return err
	}

	cats := v.Categories()
	if len(args) == 1 {
		cat, ok := constants.Canonicalize(args[0])
		if !ok {
			cat = constants.Category(args[0])
		}
		if !containsCategory(cats, cat) {
			return configError(fmt.Errorf("unknown category %q (known: %s)", args[0], strings.Join(constants.AsStringSlice(), ", ")))
		}
		cats = []constants.Category{cat}
	}

	w := cmd.OutOrStdout()
	if !humanOutput {
		out := make(map[string][]string, len(cats))
		for _, c := range cats {
			out[string(c)] = v.Labels(c)
		}
		return outputJSON(w, out)
	}
	for _, c := range cats {
		labels := v.Labels(c)
		outputHuman(w, "%s (%d)\n", c, len(labels))
		for _, l := range labels {
			outputHuman(w, "  - %s\n", l)
		}
	}
	return nil
}

func containsCategory(cats []constants.Category, c constants.Category) bool {
	for _, x := range cats {
		if x == c {
			return true
		}
	}
	return false
}
