package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/DanielDi/agent-tech-mining/constants"
	"github.com/DanielDi/agent-tech-mining/internal/async"
	"github.com/DanielDi/agent-tech-mining/internal/common"
	"github.com/DanielDi/agent-tech-mining/internal/dataset"
	"github.com/DanielDi/agent-tech-mining/internal/entity"
	"github.com/DanielDi/agent-tech-mining/internal/normalize"
	"github.com/DanielDi/agent-tech-mining/internal/vocab"
)

// BatchRunner processes documents into normalized records and merges them
// into a dataset. It never writes files.
type BatchRunner struct {
	proc            *Processor
	logger          *slog.Logger
	workers         int
	documentTimeout time.Duration
}

type BatchOption func(*BatchRunner)

// WithWorkers runs extraction on n goroutines. Normalization stays sequential.
func WithWorkers(n int) BatchOption {
	return func(b *BatchRunner) {
		if n > 0 {
			b.workers = n
		}
	}
}

// WithDocumentTimeout bounds text and record extraction per document.
func WithDocumentTimeout(d time.Duration) BatchOption {
	return func(b *BatchRunner) {
		if d >= 0 {
			b.documentTimeout = d
		}
	}
}

func NewBatchRunner(proc *Processor, logger *slog.Logger, opts ...BatchOption) *BatchRunner {
	if logger == nil {
		logger = slog.Default()
	}
	b := &BatchRunner{proc: proc, logger: logger, workers: 1}
	for _, o := range opts {
		o(b)
	}
	return b
}

type outcome struct {
	rec     entity.Record
	err     error
	elapsed time.Duration
}

// RunBatch extracts every document, normalizes the successes against v in
// document order (admitting new labels into v), and merges them into
// existing. A failed document is recorded in the summary and skipped. The
// returned error is non-nil only when the merge itself fails.
func (b *BatchRunner) RunBatch(ctx context.Context, docs []entity.SourceDocument, v *vocab.Vocabulary, existing *dataset.Dataset) (*dataset.Dataset, Summary, error) {
	sum := Summary{
		RunID:     common.RunIDFromContext(ctx),
		Started:   time.Now(),
		Documents: len(docs),
		Failures:  []Failure{},
		Results:   make([]DocumentResult, 0, len(docs)),
		NewLabels: map[string][]string{},
	}
	if sum.RunID == "" {
		sum.RunID = ulid.Make().String()
		ctx = common.WithRunID(ctx, sum.RunID)
	}
	log := b.logger.With("run_id", sum.RunID)
	log.Info("pipeline.batch.start", "documents", len(docs), "workers", b.workers, "known_labels", v.Total())

	// Every prompt in the batch sees the vocabulary as it was at the start.
	known := v.Snapshot()

	var outcomes []outcome
	if b.workers > 1 && len(docs) > 1 {
		outcomes = b.extractParallel(ctx, docs, known)
	} else {
		outcomes = b.extractSequential(ctx, docs, known)
	}

	records := make([]entity.Record, 0, len(docs))
	for i, o := range outcomes {
		doc := docs[i]
		result := DocumentResult{SourceFile: doc.SourceFile, Status: constants.DocStatusOK, ElapsedMS: o.elapsed.Milliseconds()}
		if o.err != nil {
			result.Status = constants.DocStatusFailed
			sum.Results = append(sum.Results, result)
			f := newFailure(doc.SourceFile, o.err)
			sum.Failures = append(sum.Failures, f)
			log.Error("pipeline.document.failed", "source_file", doc.SourceFile, "stage", f.Stage, "error", f.Reason)
			continue
		}
		rec, out := normalize.Record(o.rec, nil, v)
		for c, added := range out.Added {
			sum.NewLabels[string(c)] = append(sum.NewLabels[string(c)], added...)
		}
		records = append(records, rec)
		sum.Results = append(sum.Results, result)
		log.Info("pipeline.document.ok", "source_file", doc.SourceFile, "new_labels", out.Count())
	}
	sum.Processed = len(records)
	sum.Failed = len(sum.Failures)

	merged, err := dataset.Merge(existing, records)
	if err != nil {
		sum.Elapsed = time.Since(sum.Started)
		log.Error("pipeline.batch.merge_failed", "error", err)
		return nil, sum, err
	}
	sum.Rows = merged.Len()
	sum.Elapsed = time.Since(sum.Started)

	log.Info("pipeline.batch.done",
		"processed", sum.Processed,
		"failed", sum.Failed,
		"new_labels", sum.NewLabelCount(),
		"rows", sum.Rows,
		"elapsed_ms", sum.Elapsed.Milliseconds(),
	)
	return merged, sum, nil
}

func (b *BatchRunner) extractSequential(ctx context.Context, docs []entity.SourceDocument, known map[string][]string) []outcome {
	out := make([]outcome, len(docs))
	for i, doc := range docs {
		if err := ctx.Err(); err != nil {
			out[i] = outcome{err: fmt.Errorf("batch cancelled: %w", err)}
			continue
		}
		start := time.Now()
		dctx, cancel := common.WithTimeout(ctx, b.documentTimeout)
		rec, err := b.proc.ProcessDocument(dctx, doc, known)
		cancel()
		out[i] = outcome{rec: rec, err: err, elapsed: time.Since(start)}
	}
	return out
}

func (b *BatchRunner) extractParallel(ctx context.Context, docs []entity.SourceDocument, known map[string][]string) []outcome {
	q := async.NewProcessorQueue(ctx, b.proc.forBatch(known), b.logger,
		async.WithWorkers(b.workers),
		async.WithQueueSize(len(docs)),
		async.WithProcessTimeout(b.documentTimeout),
	)
	runID := common.RunIDFromContext(ctx)
	go func() {
		defer q.Shutdown(context.Background())
		for i, doc := range docs {
			job := async.Job{Index: i, Document: doc, TraceID: fmt.Sprintf("%s/%d", runID, i)}
			if err := q.Enqueue(ctx, job); err != nil {
				b.logger.Warn("pipeline.enqueue_failed", "source_file", doc.SourceFile, "error", err)
				return
			}
		}
	}()

	out := make([]outcome, len(docs))
	seen := make([]bool, len(docs))
	for res := range q.Results() {
		out[res.Job.Index] = outcome{rec: res.Record, err: res.Err, elapsed: res.Elapsed}
		seen[res.Job.Index] = true
	}
	for i, ok := range seen {
		if ok {
			continue
		}
		cause := context.Cause(ctx)
		if cause == nil {
			cause = errors.New("document was not queued")
		}
		out[i] = outcome{err: fmt.Errorf("batch cancelled: %w", cause)}
	}
	return out
}
