package extract

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/DanielDi/agent-tech-mining/constants"
	"github.com/DanielDi/agent-tech-mining/internal/cache"
	"github.com/DanielDi/agent-tech-mining/internal/common"
	"github.com/DanielDi/agent-tech-mining/internal/entity"
	"github.com/DanielDi/agent-tech-mining/internal/llm"
)

// LLMExtractor turns article text into a raw record with a language model,
// optionally short-circuiting through a cache of earlier answers.
type LLMExtractor struct {
	fields   llm.FieldExtractor
	cache    cache.Cache
	cacheTTL time.Duration
	logger   *slog.Logger
	hits     atomic.Int64
}

type Option func(*LLMExtractor)

// WithCache stores sanitized model answers keyed by prompt version, model and text.
func WithCache(c cache.Cache, ttl time.Duration) Option {
	return func(e *LLMExtractor) {
		e.cache = c
		e.cacheTTL = ttl
	}
}

func NewLLMExtractor(fields llm.FieldExtractor, logger *slog.Logger, opts ...Option) *LLMExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	e := &LLMExtractor{fields: fields, logger: logger}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *LLMExtractor) ExtractRecord(ctx context.Context, req Request) (entity.Record, error) {
	if strings.TrimSpace(req.Text) == "" {
		return nil, common.NewExtractionError(req.SourceFile, common.StageText, errors.New("document has no text"))
	}

	key := cache.Key(llm.PromptVersion, e.fields.Model(), req.Text)
	if fields, ok := e.cached(key, req.SourceFile); ok {
		return e.record(fields, req.SourceFile), nil
	}

	fields, clean, err := e.fields.ExtractFields(ctx, llm.ExtractRequest{
		Text:         req.Text,
		FilenameHint: req.SourceFile,
		KnownMethods: req.KnownLabels,
	})
	if err != nil {
		stage := common.StageLLM
		if errors.Is(err, llm.ErrMalformedResponse) {
			stage = common.StageParse
		}
		return nil, common.NewExtractionError(req.SourceFile, stage, err)
	}

	if e.cache != nil && len(clean) > 0 {
		if err := e.cache.Set(key, clean, e.cacheTTL); err != nil {
			e.logger.Warn("extract.cache.store_failed", "source_file", req.SourceFile, "error", err)
		}
	}
	return e.record(fields, req.SourceFile), nil
}

func (e *LLMExtractor) cached(key, sourceFile string) (llm.ArticleFields, bool) {
	if e.cache == nil {
		return llm.ArticleFields{}, false
	}
	raw, ok := e.cache.Get(key)
	if !ok {
		return llm.ArticleFields{}, false
	}
	fields, _, err := llm.ParseArticleResponse(string(raw), e.logger)
	if err != nil {
		e.logger.Warn("extract.cache.corrupt", "source_file", sourceFile, "error", err)
		_ = e.cache.Delete(key)
		return llm.ArticleFields{}, false
	}
	e.hits.Add(1)
	e.logger.Info("extract.cache.hit", "source_file", sourceFile, "model", e.fields.Model())
	return fields, true
}

func (e *LLMExtractor) record(fields llm.ArticleFields, sourceFile string) entity.Record {
	rec := fields.Record()
	rec[constants.FieldSourceFile] = sourceFile
	return rec
}

// CacheHits reports how many records were served from the cache.
func (e *LLMExtractor) CacheHits() int64 { return e.hits.Load() }
