package pipeline

import (
	"context"
	"log/slog"

	"github.com/DanielDi/agent-tech-mining/internal/async"
	"github.com/DanielDi/agent-tech-mining/internal/common"
	"github.com/DanielDi/agent-tech-mining/internal/entity"
)

// Processor coordinates text extraction then record extraction for one document.
type Processor struct {
	Logger *slog.Logger
	Text   *TextStage
	Record *RecordStage
}

func NewProcessor(logger *slog.Logger, text *TextStage, record *RecordStage) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{Logger: logger, Text: text, Record: record}
}

// ProcessDocument returns the raw (not yet normalized) record for doc. known
// is the vocabulary snapshot offered to the extractor.
func (p *Processor) ProcessDocument(ctx context.Context, doc entity.SourceDocument, known map[string][]string) (entity.Record, error) {
	ctx = common.WithSourceFile(ctx, doc.SourceFile)

	// 1) file -> text
	res, err := p.Text.Run(ctx, doc)
	if err != nil {
		return nil, err
	}
	p.Logger.Debug("pipeline.text.ok",
		"source_file", doc.SourceFile,
		"method", res.Method,
		"pages", res.Pages,
		"chars", len(res.Text),
		"elapsed_ms", res.Duration.Milliseconds(),
	)

	// 2) text -> raw record
	return p.Record.Run(ctx, doc, res.Text, known)
}

// forBatch binds a vocabulary snapshot so the processor can serve a worker queue.
func (p *Processor) forBatch(known map[string][]string) async.Processor {
	return async.ProcessorFunc(func(ctx context.Context, job async.Job) (entity.Record, error) {
		return p.ProcessDocument(ctx, job.Document, known)
	})
}
