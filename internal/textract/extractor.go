package textract

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"
	"unicode/utf8"

	"github.com/DanielDi/agent-tech-mining/constants"
)

// Extraction methods reported in Result.Method.
const (
	MethodPDFText   = "pdf-text"
	MethodPdftotext = "pdftotext"
	MethodPlain     = "plain"
)

type Config struct {
	Pdftotext      string // binary name or absolute path; if empty -> "pdftotext"
	PreferExternal bool   // try pdftotext before the embedded reader
	MaxPages       int    // 0 = no limit
	MinChars       int    // below this the embedded result is treated as unusable, default 200
}

type Result struct {
	Text     string
	Pages    int
	Format   constants.FileFormat
	Method   string
	Duration time.Duration
	Warnings []string
}

type Extractor struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

type Option func(*Extractor)

// WithRunner replaces the command runner used for pdftotext.
func WithRunner(r Runner) Option {
	return func(e *Extractor) {
		if r != nil {
			e.runner = r
		}
	}
}

func NewExtractor(cfg Config, logger *slog.Logger, opts ...Option) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Pdftotext == "" {
		cfg.Pdftotext = "pdftotext"
	}
	if cfg.MinChars <= 0 {
		cfg.MinChars = 200
	}
	e := &Extractor{cfg: cfg, runner: execRunner{logger: logger}, logger: logger}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract picks a strategy based on file extension and returns normalized text.
func (e *Extractor) Extract(ctx context.Context, path string) (Result, error) {
	start := time.Now()
	ext := constants.NormalizeExt(filepath.Ext(path))
	e.logger.Debug("text.extract.start", "path", path, "ext", ext)

	var (
		res Result
		err error
	)
	switch constants.MapExtToFormat(ext) {
	case constants.PDF:
		res, err = e.extractPDF(ctx, path)
	case constants.TXT:
		res, err = e.extractPlain(path)
	default:
		e.logger.Error("text.extract.unsupported", "path", path, "extension", ext)
		return Result{Format: constants.UNKNOWN}, fmt.Errorf("unsupported extension: %q", ext)
	}
	res.Duration = time.Since(start)
	if err != nil {
		return res, err
	}

	res.Text = Normalize(res.Text)
	if res.Text == "" {
		return res, fmt.Errorf("no text extracted from %s", filepath.Base(path))
	}
	e.logger.Info("text.extract.ok",
		"path", path,
		"method", res.Method,
		"pages", res.Pages,
		"chars", utf8.RuneCountInString(res.Text),
		"warnings", len(res.Warnings),
		"duration_ms", res.Duration.Milliseconds(),
	)
	return res, nil
}

func (e *Extractor) extractPlain(path string) (Result, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Result{Format: constants.TXT}, fmt.Errorf("read %s: %w", path, err)
	}
	res := Result{Format: constants.TXT, Method: MethodPlain, Pages: 1}
	if !utf8.Valid(b) {
		res.Warnings = append(res.Warnings, "invalid utf-8 replaced")
	}
	res.Text = string(b)
	return res, nil
}
