package main

import (
	"io"
	"log/slog"

	"github.com/DanielDi/agent-tech-mining/internal/cache"
	"github.com/DanielDi/agent-tech-mining/internal/common"
	"github.com/DanielDi/agent-tech-mining/internal/dataset"
	"github.com/DanielDi/agent-tech-mining/internal/extract"
	"github.com/DanielDi/agent-tech-mining/internal/ingest"
	"github.com/DanielDi/agent-tech-mining/internal/llm/openai"
	"github.com/DanielDi/agent-tech-mining/internal/pipeline"
	"github.com/DanielDi/agent-tech-mining/internal/textract"
)

// app holds the wired pipeline and whatever must be released after it.
type app struct {
	pipeline  *pipeline.Pipeline
	extractor *extract.LLMExtractor
	closers   []io.Closer
}

func (a *app) Close() {
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			logger.Warn("close failed", "error", err)
		}
	}
}

// buildApp wires text extraction, the model client, the optional cache and
// both stores from cfg.
func buildApp(cfg *common.Config, logger *slog.Logger) (*app, error) {
	if err := cfg.RequireLLM(); err != nil {
		return nil, configError(err)
	}
	a := &app{}

	tx := textract.NewExtractor(textract.Config{
		Pdftotext:      cfg.Text.Pdftotext,
		PreferExternal: cfg.Text.PreferExternal,
		MaxPages:       cfg.Text.MaxPages,
		MinChars:       cfg.Text.MinChars,
	}, logger)

	client := openai.NewClient(openai.Config{
		APIKey:            cfg.LLM.APIKey,
		BaseURL:           cfg.LLM.BaseURL,
		Model:             cfg.LLM.Model,
		Temperature:       float32(cfg.LLM.Temperature),
		MaxTokens:         cfg.LLM.MaxTokens,
		Timeout:           cfg.LLM.Timeout,
		RequestsPerSecond: cfg.LLM.RequestsPerSecond,
		Burst:             cfg.LLM.Burst,
		MaxRetries:        cfg.LLM.MaxRetries,
		MaxInputChars:     cfg.LLM.MaxInputChars,
	}, logger)

	var opts []extract.Option
	if cfg.Cache.Path != "" {
		disk, err := cache.OpenSQLite(cfg.Cache.Path, cfg.Cache.TTL)
		if err != nil {
			return nil, common.WrapError(err, "open extraction cache")
		}
		if n, err := disk.Prune(); err == nil && n > 0 {
			logger.Info("cache.prune", "path", cfg.Cache.Path, "removed", n)
		}
		layered := cache.NewLayeredCache(cfg.Cache.MemoryTTL, disk)
		a.closers = append(a.closers, layered)
		opts = append(opts, extract.WithCache(layered, cfg.Cache.TTL))
	}
	a.extractor = extract.NewLLMExtractor(client, logger, opts...)

	proc := pipeline.NewProcessor(logger,
		pipeline.NewTextStage(extract.NewTextAdapter(tx, logger), logger),
		pipeline.NewRecordStage(a.extractor, logger),
	)
	runner := pipeline.NewBatchRunner(proc, logger,
		pipeline.WithWorkers(cfg.Pipeline.Workers),
		pipeline.WithDocumentTimeout(cfg.Pipeline.DocumentTimeout),
	)
	scanner := ingest.NewFSScanner(ingest.ScanConfig{
		Extensions: cfg.Ingest.Extensions,
		Recursive:  cfg.Ingest.Recursive,
		SkipHidden: cfg.Ingest.SkipHidden,
	}, logger)
	store := dataset.NewStore(cfg.Paths.Dataset, cfg.Paths.Sheet, logger)

	a.pipeline = pipeline.New(scanner, runner, cfg.Paths.Vocabulary, store, logger)
	return a, nil
}
