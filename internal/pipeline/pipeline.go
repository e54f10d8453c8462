package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"sort"

	"github.com/DanielDi/agent-tech-mining/constants"
	"github.com/DanielDi/agent-tech-mining/internal/common"
	"github.com/DanielDi/agent-tech-mining/internal/dataset"
	"github.com/DanielDi/agent-tech-mining/internal/entity"
	"github.com/DanielDi/agent-tech-mining/internal/ingest"
	"github.com/DanielDi/agent-tech-mining/internal/vocab"
)

// Pipeline runs a full cycle: load both stores, process a batch, save both stores.
type Pipeline struct {
	Scanner        ingest.Ingestor
	Runner         *BatchRunner
	VocabularyPath string
	Dataset        *dataset.Store
	Logger         *slog.Logger
}

type RunOptions struct {
	DryRun bool // process and summarize without writing either store
}

func New(scanner ingest.Ingestor, runner *BatchRunner, vocabularyPath string, store *dataset.Store, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		Scanner:        scanner,
		Runner:         runner,
		VocabularyPath: vocabularyPath,
		Dataset:        store,
		Logger:         logger,
	}
}

// Run scans input (a file or a directory) and processes what it finds.
func (p *Pipeline) Run(ctx context.Context, input string, opts RunOptions) (Summary, error) {
	docs, stats, err := p.Scanner.Scan(ctx, input)
	if err != nil {
		return Summary{}, common.NewAppError("INPUT_ERROR", "scan input", errors.Join(common.ErrInvalidInput, err))
	}
	p.Logger.Info("pipeline.scan.ok", "input", input, "documents", len(docs), "skipped", stats.Skipped, "failed", stats.Failed)
	return p.runDocuments(ctx, docs, stats.Errors, opts)
}

// RunDocuments processes docs against the persisted stores. Store load and
// save failures are fatal; per-document failures are only reported.
func (p *Pipeline) RunDocuments(ctx context.Context, docs []entity.SourceDocument, opts RunOptions) (Summary, error) {
	return p.runDocuments(ctx, docs, nil, opts)
}

// runDocuments also reports unreadable, files the scanner matched but could
// not open, as text-stage failures.
func (p *Pipeline) runDocuments(ctx context.Context, docs []entity.SourceDocument, unreadable map[string]error, opts RunOptions) (Summary, error) {
	v, err := vocab.Load(p.VocabularyPath, p.Logger)
	if err != nil {
		return Summary{}, err
	}
	existing, err := p.Dataset.Load()
	if err != nil {
		return Summary{}, err
	}
	// Fail before any model call when the rows could never be merged.
	if err := existing.Validate(); err != nil {
		return Summary{}, &common.DatasetMergeError{Path: p.Dataset.Path, Err: err}
	}

	merged, sum, err := p.Runner.RunBatch(ctx, docs, v, existing)
	sum.DryRun = opts.DryRun
	p.addUnreadable(&sum, unreadable)
	if err != nil {
		var merr *common.DatasetMergeError
		if errors.As(err, &merr) && merr.Path == "" {
			merr.Path = p.Dataset.Path
		}
		return sum, err
	}
	if opts.DryRun {
		p.Logger.Info("pipeline.dry_run", "run_id", sum.RunID, "rows", sum.Rows)
		return sum, nil
	}

	// An empty result leaves both files untouched.
	if sum.Processed == 0 {
		return sum, nil
	}
	if err := p.Dataset.Save(merged); err != nil {
		return sum, common.WrapError(err, "save dataset")
	}
	p.Logger.Info("dataset.save.ok", "path", p.Dataset.Path, "rows", merged.Len())
	if err := vocab.Save(p.VocabularyPath, v); err != nil {
		return sum, common.WrapError(err, "save vocabulary")
	}
	p.Logger.Info("vocab.save.ok", "path", p.VocabularyPath, "labels", v.Total())
	return sum, nil
}

func (p *Pipeline) addUnreadable(sum *Summary, unreadable map[string]error) {
	paths := make([]string, 0, len(unreadable))
	for path := range unreadable {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	for _, path := range paths {
		name := filepath.Base(path)
		f := newFailure(name, &common.ExtractionError{SourceFile: name, Stage: common.StageText, Err: unreadable[path]})
		sum.Failures = append(sum.Failures, f)
		sum.Results = append(sum.Results, DocumentResult{SourceFile: name, Status: constants.DocStatusFailed})
		sum.Documents++
		sum.Failed++
		p.Logger.Error("pipeline.document.failed", "source_file", name, "stage", f.Stage, "error", f.Reason)
	}
}
