package llm

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestStripCodeFences(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{`{"a":"b"}`, `{"a":"b"}`},
		{"```json\n{\"a\":\"b\"}\n```", `{"a":"b"}`},
		{"```\n{\"a\":\"b\"}\n```", `{"a":"b"}`},
		{"  ```JSON\n{\"a\":\"b\"}```  ", `{"a":"b"}`},
		{"```json\n{\"a\":\"b\"}", `{"a":"b"}`},
		{"```{\"a\":\"b\"}```", `{"a":"b"}`},
	}
	for _, tt := range tests {
		if got := StripCodeFences(tt.in); got != tt.want {
			t.Errorf("StripCodeFences(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeAndSanitizeJSON(t *testing.T) {
	raw := []byte(`{
		"title": "  Topic modeling of X  ",
		"analyzed_fields": ["Title", "Abstract", ""],
		"Clustering": "LDA; NMF",
		"ClusterAnalysis": null,
		"PaperCount": 1747,
		"TermCount": "",
		"SourceFile": "hallucinated.pdf",
		"Confidence": {"score": 1}
	}`)

	out, dropped, err := NormalizeAndSanitizeJSON(raw, nil)
	if err != nil {
		t.Fatalf("sanitize: %v", err)
	}

	var got map[string]string
	if err := json.Unmarshal(out, &got); err != nil {
		t.Fatal(err)
	}
	want := map[string]string{
		"Document":       "Topic modeling of X",
		"AnalyzedFields": "Title; Abstract",
		"Clustering":     "LDA; NMF",
		"PaperCount":     "1747",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("sanitized = %v, want %v", got, want)
	}

	joined := strings.Join(dropped, ",")
	for _, frag := range []string{"SourceFile(unknown)", "Confidence(unknown)", "TermCount(empty)", "title->Document"} {
		if !strings.Contains(joined, frag) {
			t.Errorf("dropped %v missing %s", dropped, frag)
		}
	}
}

func TestNormalizeAndSanitizeJSON_PrefersExactKey(t *testing.T) {
	out, _, err := NormalizeAndSanitizeJSON([]byte(`{"Document":"Exact","title":"Alias"}`), nil)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(out), `"Exact"`) || strings.Contains(string(out), "Alias") {
		t.Errorf("got %s", out)
	}
}

func TestNormalizeAndSanitizeJSON_SynonymsDeterministic(t *testing.T) {
	raw := []byte(`{"title":"From title","articleTitle":"From articleTitle","papers":"5","Number of papers":"7"}`)
	first, _, err := NormalizeAndSanitizeJSON(raw, nil)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 20; i++ {
		out, _, err := NormalizeAndSanitizeJSON(raw, nil)
		if err != nil {
			t.Fatal(err)
		}
		if string(out) != string(first) {
			t.Fatalf("run %d: got %s, first run %s", i, out, first)
		}
	}
	want := `{"Document":"From articleTitle","PaperCount":"7"}`
	if string(first) != want {
		t.Errorf("got %s, want %s", first, want)
	}
}

func TestNormalizeAndSanitizeJSON_NotJSON(t *testing.T) {
	if _, _, err := NormalizeAndSanitizeJSON([]byte("Sure! Here is the JSON"), nil); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestParseArticleResponse(t *testing.T) {
	content := "```json\n{\"Document\": \"A\", \"Clustering\": [\"LDA\", \"BERTopic\"], \"Extra\": \"x\"}\n```"
	fields, clean, err := ParseArticleResponse(content, nil)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if fields.Document != "A" || fields.Clustering != "LDA; BERTopic" {
		t.Errorf("fields = %+v", fields)
	}
	if strings.Contains(string(clean), "Extra") {
		t.Errorf("clean JSON kept unknown key: %s", clean)
	}

	rec := fields.Record()
	if _, ok := rec["AnalyzedFields"]; ok {
		t.Error("absent category should stay absent in the record")
	}
	if _, ok := rec["PaperCount"]; !ok {
		t.Error("metadata columns should always be present")
	}
}

func TestParseArticleResponse_Malformed(t *testing.T) {
	for _, content := range []string{"", "not json", "{}", `{"Unknown": "x"}`, "[1,2]", `{"Clustering":"LDA"}`, `{"Document":"  ","Clustering":"LDA"}`} {
		_, _, err := ParseArticleResponse(content, nil)
		if !errors.Is(err, ErrMalformedResponse) {
			t.Errorf("ParseArticleResponse(%q) err = %v, want ErrMalformedResponse", content, err)
		}
	}
}
