package pipeline

import (
	"context"
	"errors"
	"log/slog"

	"github.com/DanielDi/agent-tech-mining/constants"
	"github.com/DanielDi/agent-tech-mining/internal/common"
	"github.com/DanielDi/agent-tech-mining/internal/entity"
	"github.com/DanielDi/agent-tech-mining/internal/extract"
)

type RecordStage struct {
	Extractor extract.RecordExtractor
	Logger    *slog.Logger
}

func NewRecordStage(rx extract.RecordExtractor, logger *slog.Logger) *RecordStage {
	if logger == nil {
		logger = slog.Default()
	}
	return &RecordStage{Extractor: rx, Logger: logger}
}

// Run asks the extractor for a raw record and stamps the identifier on it.
// Errors that are not already attributed become LLM-stage ExtractionErrors.
func (s *RecordStage) Run(ctx context.Context, doc entity.SourceDocument, text string, known map[string][]string) (entity.Record, error) {
	rec, err := s.Extractor.ExtractRecord(ctx, extract.Request{
		Text:        text,
		SourceFile:  doc.SourceFile,
		KnownLabels: known,
	})
	if err != nil {
		var xerr *common.ExtractionError
		if errors.As(err, &xerr) {
			return nil, err
		}
		return nil, common.NewExtractionError(doc.SourceFile, common.StageLLM, err)
	}
	if rec == nil {
		return nil, common.NewExtractionError(doc.SourceFile, common.StageParse, errors.New("extractor returned no record"))
	}
	rec = rec.Clone()
	rec[constants.FieldSourceFile] = doc.SourceFile
	return rec, nil
}
