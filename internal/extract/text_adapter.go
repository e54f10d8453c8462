package extract

import (
	"context"
	"log/slog"

	"github.com/DanielDi/agent-tech-mining/internal/textract"
)

type TextAdapter struct {
	e *textract.Extractor
}

func NewTextAdapter(e *textract.Extractor, _ *slog.Logger) *TextAdapter {
	return &TextAdapter{e: e}
}

func (a *TextAdapter) Extract(ctx context.Context, path string) (TextResult, error) {
	r, err := a.e.Extract(ctx, path)
	return TextResult{
		Text:     r.Text,
		Pages:    r.Pages,
		Method:   r.Method,
		Duration: r.Duration,
		Warnings: r.Warnings,
	}, err
}
