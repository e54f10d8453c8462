package extract

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/DanielDi/agent-tech-mining/constants"
	"github.com/DanielDi/agent-tech-mining/internal/cache"
	"github.com/DanielDi/agent-tech-mining/internal/common"
	"github.com/DanielDi/agent-tech-mining/internal/llm"
)

type stubFields struct {
	fields llm.ArticleFields
	raw    string
	err    error
	calls  int
	last   llm.ExtractRequest
}

func (s *stubFields) ExtractFields(_ context.Context, req llm.ExtractRequest) (llm.ArticleFields, []byte, error) {
	s.calls++
	s.last = req
	if s.err != nil {
		return llm.ArticleFields{}, nil, s.err
	}
	return s.fields, []byte(s.raw), nil
}

func (s *stubFields) Model() string { return "stub-model" }

func TestLLMExtractorBuildsRecord(t *testing.T) {
	stub := &stubFields{
		fields: llm.ArticleFields{Document: "A study", Clustering: "LDA", PaperCount: "10"},
		raw:    `{"Document":"A study","Clustering":"LDA","PaperCount":"10"}`,
	}
	known := map[string][]string{"Clustering": {"LDA"}}
	rec, err := NewLLMExtractor(stub, nil).ExtractRecord(context.Background(), Request{
		Text: "some text", SourceFile: "a.pdf", KnownLabels: known,
	})
	if err != nil {
		t.Fatalf("ExtractRecord: %v", err)
	}
	if rec.SourceFile() != "a.pdf" || rec["Clustering"] != "LDA" || rec[constants.FieldDocument] != "A study" {
		t.Errorf("record = %v", rec)
	}
	if _, ok := rec["AnalyzedFields"]; ok {
		t.Error("absent category should not be filled by the extractor")
	}
	if stub.last.FilenameHint != "a.pdf" || len(stub.last.KnownMethods["Clustering"]) != 1 {
		t.Errorf("request = %+v", stub.last)
	}
}

func TestLLMExtractorErrorStages(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		err   error
		stage common.ExtractionStage
	}{
		{"blank text", "  \n", nil, common.StageText},
		{"transport", "x", errors.New("connection refused"), common.StageLLM},
		{"timeout", "x", context.DeadlineExceeded, common.StageLLM},
		{"malformed", "x", fmt.Errorf("%w: not json", llm.ErrMalformedResponse), common.StageParse},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewLLMExtractor(&stubFields{err: tt.err}, nil).ExtractRecord(context.Background(), Request{Text: tt.text, SourceFile: "b.pdf"})
			var xerr *common.ExtractionError
			if !errors.As(err, &xerr) {
				t.Fatalf("err = %v, want *ExtractionError", err)
			}
			if xerr.Stage != tt.stage || xerr.SourceFile != "b.pdf" {
				t.Errorf("stage = %s source = %s", xerr.Stage, xerr.SourceFile)
			}
			if !errors.Is(err, common.ErrExtraction) {
				t.Error("errors.Is(err, ErrExtraction) = false")
			}
		})
	}
}

func TestLLMExtractorCache(t *testing.T) {
	stub := &stubFields{
		fields: llm.ArticleFields{Document: "Cached study", TermPreprocessing: "Stemming"},
		raw:    `{"Document":"Cached study","TermPreprocessing":"Stemming"}`,
	}
	c := cache.NewMemoryCache(time.Hour, time.Minute)
	e := NewLLMExtractor(stub, nil, WithCache(c, 0))
	req := Request{Text: "identical text", SourceFile: "c.pdf"}

	first, err := e.ExtractRecord(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	req.SourceFile = "c-copy.pdf"
	second, err := e.ExtractRecord(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	if stub.calls != 1 {
		t.Errorf("model calls = %d, want 1", stub.calls)
	}
	if e.CacheHits() != 1 {
		t.Errorf("CacheHits = %d", e.CacheHits())
	}
	if second["TermPreprocessing"] != first["TermPreprocessing"] || second.SourceFile() != "c-copy.pdf" {
		t.Errorf("second = %v", second)
	}
}

func TestLLMExtractorCorruptCacheEntry(t *testing.T) {
	stub := &stubFields{fields: llm.ArticleFields{Document: "Fresh"}, raw: `{"Document":"Fresh"}`}
	c := cache.NewMemoryCache(time.Hour, time.Minute)
	key := cache.Key(llm.PromptVersion, stub.Model(), "t")
	_ = c.Set(key, []byte("not json"), 0)

	rec, err := NewLLMExtractor(stub, nil, WithCache(c, 0)).ExtractRecord(context.Background(), Request{Text: "t", SourceFile: "d.pdf"})
	if err != nil {
		t.Fatal(err)
	}
	if stub.calls != 1 || rec[constants.FieldDocument] != "Fresh" {
		t.Errorf("calls = %d record = %v", stub.calls, rec)
	}
	if v, _ := c.Get(key); string(v) != `{"Document":"Fresh"}` {
		t.Errorf("cache not refreshed: %s", v)
	}
}
