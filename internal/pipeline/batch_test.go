package pipeline

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"testing"

	"github.com/DanielDi/agent-tech-mining/constants"
	"github.com/DanielDi/agent-tech-mining/internal/common"
	"github.com/DanielDi/agent-tech-mining/internal/dataset"
	"github.com/DanielDi/agent-tech-mining/internal/entity"
	"github.com/DanielDi/agent-tech-mining/internal/extract"
	"github.com/DanielDi/agent-tech-mining/internal/vocab"
)

// fakeText serves text by path; a missing path fails.
type fakeText map[string]string

func (f fakeText) Extract(_ context.Context, path string) (extract.TextResult, error) {
	t, ok := f[path]
	if !ok {
		return extract.TextResult{}, fmt.Errorf("open %s: no such file", path)
	}
	return extract.TextResult{Text: t, Method: "plain", Pages: 1}, nil
}

// scriptedExtractor reads "Clustering=..." style lines from the text.
type scriptedExtractor struct {
	mu   sync.Mutex
	seen map[string]map[string][]string
}

func (s *scriptedExtractor) ExtractRecord(_ context.Context, req extract.Request) (entity.Record, error) {
	s.mu.Lock()
	if s.seen == nil {
		s.seen = map[string]map[string][]string{}
	}
	s.seen[req.SourceFile] = req.KnownLabels
	s.mu.Unlock()

	if strings.Contains(req.Text, "MALFORMED") {
		return nil, common.NewExtractionError(req.SourceFile, common.StageParse, errors.New("not json"))
	}
	if strings.Contains(req.Text, "UPSTREAM") {
		return nil, errors.New("503 service unavailable")
	}
	rec := entity.Record{constants.FieldDocument: "Doc " + req.SourceFile}
	for _, line := range strings.Split(req.Text, "\n") {
		if k, v, ok := strings.Cut(line, "="); ok {
			rec[k] = v
		}
	}
	return rec, nil
}

func docs(names ...string) []entity.SourceDocument {
	out := make([]entity.SourceDocument, len(names))
	for i, n := range names {
		out[i] = entity.SourceDocument{Path: "/in/" + n, SourceFile: n}
	}
	return out
}

func newRunner(text fakeText, rx extract.RecordExtractor, opts ...BatchOption) *BatchRunner {
	proc := NewProcessor(nil, NewTextStage(text, nil), NewRecordStage(rx, nil))
	return NewBatchRunner(proc, nil, opts...)
}

func TestRunBatchFailureIsolation(t *testing.T) {
	text := fakeText{
		"/in/a.pdf": "Clustering=LDA",
		"/in/b.pdf": "MALFORMED",
		"/in/c.pdf": "Clustering=BERTopic; LDA",
	}
	v := vocab.New()
	merged, sum, err := newRunner(text, &scriptedExtractor{}).RunBatch(context.Background(), docs("a.pdf", "b.pdf", "c.pdf"), v, nil)
	if err != nil {
		t.Fatalf("RunBatch: %v", err)
	}
	if sum.Processed != 2 || sum.Failed != 1 || sum.Documents != 3 {
		t.Errorf("summary = %+v", sum)
	}
	if len(sum.Failures) != 1 || sum.Failures[0].SourceFile != "b.pdf" || sum.Failures[0].Stage != common.StageParse {
		t.Errorf("failures = %+v", sum.Failures)
	}
	var statuses []constants.DocStatus
	for _, r := range sum.Results {
		statuses = append(statuses, r.Status)
	}
	want := []constants.DocStatus{constants.DocStatusOK, constants.DocStatusFailed, constants.DocStatusOK}
	if !reflect.DeepEqual(statuses, want) {
		t.Errorf("statuses = %v, want %v", statuses, want)
	}
	if merged.Len() != 2 || sum.Rows != 2 {
		t.Fatalf("rows = %d", merged.Len())
	}
	if got := merged.SourceFiles(); !reflect.DeepEqual(got, []string{"a.pdf", "c.pdf"}) {
		t.Errorf("source files = %v", got)
	}
	if !v.Contains(constants.Clustering, "BERTopic") || !v.Contains(constants.Clustering, "LDA") {
		t.Errorf("vocabulary = %v", v.Snapshot())
	}
	if got := sum.NewLabels["Clustering"]; !reflect.DeepEqual(got, []string{"LDA", "BERTopic"}) {
		t.Errorf("new labels = %v", got)
	}
	if sum.RunID == "" {
		t.Error("run id not assigned")
	}
}

func TestRunBatchFailureStages(t *testing.T) {
	text := fakeText{"/in/up.pdf": "UPSTREAM"}
	_, sum, err := newRunner(text, &scriptedExtractor{}).RunBatch(context.Background(), docs("missing.pdf", "up.pdf"), vocab.New(), nil)
	if err != nil {
		t.Fatal(err)
	}
	stages := map[string]common.ExtractionStage{}
	for _, f := range sum.Failures {
		stages[f.SourceFile] = f.Stage
	}
	if stages["missing.pdf"] != common.StageText || stages["up.pdf"] != common.StageLLM {
		t.Errorf("stages = %v", stages)
	}
}

func TestRunBatchNormalizesRecords(t *testing.T) {
	text := fakeText{"/in/a.pdf": "Clustering=  LDA ;; NMF ; LDA\nTermPreprocessing=   \nExtra=kept"}
	merged, _, err := newRunner(text, &scriptedExtractor{}).RunBatch(context.Background(), docs("a.pdf"), vocab.New(), nil)
	if err != nil {
		t.Fatal(err)
	}
	rec, ok := merged.Find("a.pdf")
	if !ok {
		t.Fatal("record missing")
	}
	want := map[string]string{
		"Clustering":        "LDA; NMF; LDA",
		"TermPreprocessing": constants.NotSpecified,
		"AnalyzedFields":    constants.NotSpecified,
		"ClusterAnalysis":   constants.NotSpecified,
		"Extra":             "kept",
		"SourceFile":        "a.pdf",
	}
	for k, v := range want {
		if rec[k] != v {
			t.Errorf("%s = %q, want %q", k, rec[k], v)
		}
	}
}

func TestRunBatchPromptSnapshot(t *testing.T) {
	text := fakeText{
		"/in/a.pdf": "Clustering=NewMethod",
		"/in/b.pdf": "Clustering=Other",
	}
	v := vocab.New()
	v.Add(constants.Clustering, "LDA")
	rx := &scriptedExtractor{}
	if _, _, err := newRunner(text, rx).RunBatch(context.Background(), docs("a.pdf", "b.pdf"), v, nil); err != nil {
		t.Fatal(err)
	}
	if got := rx.seen["b.pdf"]["Clustering"]; !reflect.DeepEqual(got, []string{"LDA"}) {
		t.Errorf("second document saw %v, want the start-of-batch snapshot", got)
	}
}

func TestRunBatchParallelMatchesSequential(t *testing.T) {
	text := fakeText{}
	var names []string
	for i := 0; i < 12; i++ {
		n := fmt.Sprintf("doc%02d.pdf", i)
		names = append(names, n)
		text["/in/"+n] = fmt.Sprintf("Clustering=M%d; M%d\nAnalyzedFields=Title", i%4, (i+1)%4)
	}
	text["/in/doc05.pdf"] = "MALFORMED"

	seqV, parV := vocab.New(), vocab.New()
	seq, seqSum, err := newRunner(text, &scriptedExtractor{}).RunBatch(context.Background(), docs(names...), seqV, nil)
	if err != nil {
		t.Fatal(err)
	}
	par, parSum, err := newRunner(text, &scriptedExtractor{}, WithWorkers(4)).RunBatch(context.Background(), docs(names...), parV, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(seq.Rows, par.Rows) || !reflect.DeepEqual(seq.Columns, par.Columns) {
		t.Error("parallel dataset differs from sequential")
	}
	if !reflect.DeepEqual(seqV.Snapshot(), parV.Snapshot()) {
		t.Error("parallel vocabulary differs from sequential")
	}
	if !reflect.DeepEqual(seqSum.NewLabels, parSum.NewLabels) || !reflect.DeepEqual(seqSum.Failures, parSum.Failures) {
		t.Errorf("summaries differ: %+v vs %+v", seqSum, parSum)
	}
}

func TestRunBatchEmptyIsNoop(t *testing.T) {
	existing := &dataset.Dataset{
		Columns: []string{"Document", "SourceFile"},
		Rows:    []entity.Record{{"Document": "Old", "SourceFile": "old.pdf"}},
	}
	merged, sum, err := newRunner(fakeText{}, &scriptedExtractor{}).RunBatch(context.Background(), nil, vocab.New(), existing)
	if err != nil {
		t.Fatal(err)
	}
	if merged != existing || sum.Rows != 1 || sum.Processed != 0 {
		t.Errorf("merged = %+v summary = %+v", merged, sum)
	}
}

func TestRunBatchMergeError(t *testing.T) {
	existing := &dataset.Dataset{
		Columns: []string{"Document"},
		Rows:    []entity.Record{{"Document": "Old"}},
	}
	_, _, err := newRunner(fakeText{"/in/a.pdf": "x"}, &scriptedExtractor{}).RunBatch(context.Background(), docs("a.pdf"), vocab.New(), existing)
	if !errors.Is(err, common.ErrDatasetMerge) {
		t.Fatalf("err = %v, want DatasetMergeError", err)
	}
}

func TestRunBatchCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, sum, err := newRunner(fakeText{"/in/a.pdf": "x"}, &scriptedExtractor{}).RunBatch(ctx, docs("a.pdf"), vocab.New(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if sum.Failed != 1 {
		t.Errorf("failed = %d", sum.Failed)
	}
}
