package dataset

import (
	"errors"
	"reflect"
	"testing"

	"github.com/DanielDi/agent-tech-mining/internal/common"
	"github.com/DanielDi/agent-tech-mining/internal/entity"
)

func rec(source, clustering string) entity.Record {
	return entity.Record{"Document": "doc " + source, "Clustering": clustering, "SourceFile": source}
}

func TestMergeReplacesAndAppends(t *testing.T) {
	existing := &Dataset{
		Columns: []string{"Document", "Clustering", "SourceFile"},
		Rows:    []entity.Record{rec("a.pdf", "LDA"), rec("b.pdf", "NMF")},
	}
	newRecs := []entity.Record{rec("b.pdf", "BERTopic"), rec("c.pdf", "LSA")}

	got, err := Merge(existing, newRecs)
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}

	if want := []string{"a.pdf", "b.pdf", "c.pdf"}; !reflect.DeepEqual(got.SourceFiles(), want) {
		t.Errorf("order = %v, want %v", got.SourceFiles(), want)
	}
	b, _ := got.Find("b.pdf")
	if b["Clustering"] != "BERTopic" {
		t.Errorf("b.pdf not replaced: %v", b)
	}
	if existing.Len() != 2 {
		t.Error("existing dataset was mutated")
	}
}

func TestMergeIdentifiersAreUnique(t *testing.T) {
	existing := &Dataset{Columns: []string{"SourceFile"}, Rows: []entity.Record{rec("a.pdf", "x")}}
	got, err := Merge(existing, []entity.Record{rec("a.pdf", "y"), rec("d.pdf", "z"), rec("a.pdf", "w")})
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{"d.pdf", "a.pdf"}; !reflect.DeepEqual(got.SourceFiles(), want) {
		t.Errorf("rows = %v, want %v", got.SourceFiles(), want)
	}
	a, _ := got.Find("a.pdf")
	if a["Clustering"] != "w" {
		t.Errorf("last record should win, got %v", a)
	}
}

func TestMergeEmptyBatchIsNoop(t *testing.T) {
	existing := &Dataset{Columns: []string{"Document"}, Rows: []entity.Record{{"Document": "no id"}}}
	got, err := Merge(existing, nil)
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if got != existing {
		t.Error("empty batch should return existing unchanged")
	}
}

func TestMergeNilExisting(t *testing.T) {
	got, err := Merge(nil, []entity.Record{rec("a.pdf", "LDA")})
	if err != nil {
		t.Fatal(err)
	}
	if got.Len() != 1 || got.Columns[len(got.Columns)-1] != "SourceFile" {
		t.Errorf("unexpected dataset %+v", got)
	}

	empty, err := Merge(nil, nil)
	if err != nil || empty.Len() != 0 {
		t.Errorf("Merge(nil, nil) = %+v, %v", empty, err)
	}
}

func TestMergeMissingIdentifierColumn(t *testing.T) {
	existing := &Dataset{Columns: []string{"Document"}, Rows: []entity.Record{{"Document": "x"}}}
	_, err := Merge(existing, []entity.Record{rec("a.pdf", "LDA")})
	if !errors.Is(err, common.ErrDatasetMerge) {
		t.Fatalf("expected dataset merge error, got %v", err)
	}
	if !errors.Is(err, ErrMissingIdentifier) {
		t.Errorf("expected ErrMissingIdentifier cause, got %v", err)
	}
}

func TestMergeColumnOrder(t *testing.T) {
	existing := &Dataset{Columns: []string{"SourceFile", "Notes"}, Rows: []entity.Record{{"SourceFile": "a.pdf", "Notes": "n"}}}
	newRecs := []entity.Record{{
		"SourceFile":     "b.pdf",
		"Document":       "d",
		"Clustering":     "LDA",
		"Zeta":           "z",
		"AnalyzedFields": "Title",
		"Alpha":          "a",
	}}

	got, err := Merge(existing, newRecs)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"SourceFile", "Notes", "Document", "AnalyzedFields", "Clustering", "Alpha", "Zeta"}
	if !reflect.DeepEqual(got.Columns, want) {
		t.Errorf("columns = %v, want %v", got.Columns, want)
	}
}

// A failed document never reaches the batch, so its prior row survives.
func TestMergeKeepsRowsOfFailedDocuments(t *testing.T) {
	existing := &Dataset{Columns: []string{"SourceFile", "Clustering"}, Rows: []entity.Record{rec("b.pdf", "old")}}
	got, err := Merge(existing, []entity.Record{rec("a.pdf", "LDA"), rec("c.pdf", "NMF")})
	if err != nil {
		t.Fatal(err)
	}
	b, ok := got.Find("b.pdf")
	if !ok || b["Clustering"] != "old" {
		t.Errorf("row for failed document lost: %v", got.SourceFiles())
	}
}
