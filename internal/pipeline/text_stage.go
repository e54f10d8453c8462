package pipeline

import (
	"context"
	"log/slog"

	"github.com/DanielDi/agent-tech-mining/internal/common"
	"github.com/DanielDi/agent-tech-mining/internal/entity"
	"github.com/DanielDi/agent-tech-mining/internal/extract"
)

type TextStage struct {
	TextExtractor extract.TextExtractor
	Logger        *slog.Logger
}

func NewTextStage(tx extract.TextExtractor, logger *slog.Logger) *TextStage {
	if logger == nil {
		logger = slog.Default()
	}
	return &TextStage{TextExtractor: tx, Logger: logger}
}

// Run reads the document's text. Any failure is a TEXT-stage ExtractionError.
func (s *TextStage) Run(ctx context.Context, doc entity.SourceDocument) (extract.TextResult, error) {
	res, err := s.TextExtractor.Extract(ctx, doc.Path)
	if err != nil {
		return res, common.NewExtractionError(doc.SourceFile, common.StageText, err)
	}
	for _, w := range res.Warnings {
		s.Logger.Debug("pipeline.text.warning", "source_file", doc.SourceFile, "warning", w)
	}
	return res, nil
}
