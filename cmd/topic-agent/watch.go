package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/oklog/ulid/v2"
	"github.com/spf13/cobra"

	"github.com/DanielDi/agent-tech-mining/constants"
	"github.com/DanielDi/agent-tech-mining/internal/common"
	"github.com/DanielDi/agent-tech-mining/internal/entity"
	"github.com/DanielDi/agent-tech-mining/internal/ingest"
	"github.com/DanielDi/agent-tech-mining/internal/pipeline"
)

var watchInitial bool

var watchCmd = &cobra.Command{
	Use:   "watch <directory>",
	Short: "Process new or changed articles as they appear in a directory",
	Long: `Watch a directory and run a full cycle (load, process, merge, save) for
every debounced batch of new or changed files. Stops on SIGINT or SIGTERM.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	f := watchCmd.Flags()
	addStoreFlags(watchCmd)
	addProcessingFlags(watchCmd)
	f.BoolVar(&watchInitial, "initial", false, "process files already in the directory first")
	f.Duration("debounce", 0, "quiet period before a batch starts")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	info, err := os.Stat(args[0])
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return configError(fmt.Errorf("%s is not a directory", args[0]))
	}

	a, err := buildApp(cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	batches, errs, err := ingest.StartWatcher(ctx, ingest.WatchConfig{
		Roots:       []string{args[0]},
		AllowedExts: constants.ExtSet(cfg.Ingest.Extensions),
		Recursive:   cfg.Ingest.Recursive,
		SkipHidden:  cfg.Ingest.SkipHidden,
		InitialScan: watchInitial,
		Debounce:    cfg.Ingest.Debounce,
		Logger:      logger,
	})
	if err != nil {
		return err
	}
	logger.Info("watch.start", "dir", args[0], "debounce", cfg.Ingest.Debounce)

	for {
		select {
		case <-ctx.Done():
			logger.Info("watch.stop")
			return nil
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			logger.Warn("watch.error", "error", err)
		case paths, ok := <-batches:
			if !ok {
				return nil
			}
			if err := processBatch(cmd, a, paths); err != nil {
				// Store failures stop the loop; they would repeat on every batch.
				if errors.Is(err, common.ErrDatasetMerge) || errors.Is(err, common.ErrVocabularyLoad) {
					return err
				}
				logger.Error("watch.batch_failed", "error", err)
			}
		}
	}
}

func processBatch(cmd *cobra.Command, a *app, paths []string) error {
	docs := make([]entity.SourceDocument, 0, len(paths))
	for _, p := range paths {
		d, err := ingest.Describe(p)
		if err != nil {
			// removed or renamed away before the batch started
			logger.Debug("watch.skip", "path", p, "error", err)
			continue
		}
		docs = append(docs, d)
	}
	if len(docs) == 0 {
		return nil
	}

	ctx := common.WithRunID(cmd.Context(), ulid.Make().String())
	sum, err := a.pipeline.RunDocuments(ctx, docs, pipeline.RunOptions{})
	if err != nil {
		return err
	}
	return printSummary(sum)
}
