package extract

import (
	"context"
	"time"

	"github.com/DanielDi/agent-tech-mining/internal/entity"
)

// TextExtractor is Stage 1: file -> text.
type TextExtractor interface {
	Extract(ctx context.Context, path string) (TextResult, error)
}

type TextResult struct {
	Text     string
	Pages    int
	Method   string // "pdf-text" | "pdftotext" | "plain"
	Duration time.Duration
	Warnings []string
}

// Request is one document handed to a RecordExtractor.
type Request struct {
	Text       string
	SourceFile string
	// KnownLabels is the vocabulary snapshot taken when the batch started.
	KnownLabels map[string][]string
}

// RecordExtractor is Stage 2: text -> raw record. Failures are
// *common.ExtractionError so the batch can attribute them.
type RecordExtractor interface {
	ExtractRecord(ctx context.Context, req Request) (entity.Record, error)
}

// RecordExtractorFunc adapts a plain function to RecordExtractor.
type RecordExtractorFunc func(ctx context.Context, req Request) (entity.Record, error)

func (f RecordExtractorFunc) ExtractRecord(ctx context.Context, req Request) (entity.Record, error) {
	return f(ctx, req)
}
