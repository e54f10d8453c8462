package dataset

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/DanielDi/agent-tech-mining/internal/common"
	"github.com/DanielDi/agent-tech-mining/internal/entity"
)

func TestStoreLoadMissing(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "none.xlsx"), "", nil)
	d, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if d.Len() != 0 {
		t.Errorf("expected empty dataset, got %d rows", d.Len())
	}
}

func TestStoreSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "topic_metadata.xlsx")
	s := NewStore(path, "", nil)

	d := &Dataset{
		Columns: []string{"Document", "Clustering", "PaperCount", "SourceFile"},
		Rows: []entity.Record{
			{"Document": "Topic modeling of seawater desalination research", "Clustering": "LDA; DTM", "PaperCount": "11,942 (2000–2024)", "SourceFile": "a.pdf"},
			{"Document": "Exploring themes", "Clustering": "BERTopic", "SourceFile": "b.pdf"},
		},
	}
	if err := s.Save(d); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !reflect.DeepEqual(got.Columns, d.Columns) {
		t.Errorf("columns = %v, want %v", got.Columns, d.Columns)
	}
	if got.Len() != 2 {
		t.Fatalf("rows = %d", got.Len())
	}
	a, _ := got.Find("a.pdf")
	if a["PaperCount"] != "11,942 (2000–2024)" || a["Clustering"] != "LDA; DTM" {
		t.Errorf("row a = %v", a)
	}
	b, _ := got.Find("b.pdf")
	if b["PaperCount"] != "" {
		t.Errorf("missing cell should load as empty, got %q", b["PaperCount"])
	}
}

func TestStoreLoadMissingIdentifier(t *testing.T) {
	path := filepath.Join(t.TempDir(), "legacy.xlsx")
	f := excelize.NewFile()
	_ = f.SetSheetRow("Sheet1", "A1", &[]interface{}{"Document", "Clustering"})
	_ = f.SetSheetRow("Sheet1", "A2", &[]interface{}{"x", "LDA"})
	if err := f.SaveAs(path); err != nil {
		t.Fatal(err)
	}
	_ = f.Close()

	_, err := NewStore(path, "", nil).Load()
	var me *common.DatasetMergeError
	if !errors.As(err, &me) {
		t.Fatalf("expected DatasetMergeError, got %v", err)
	}

	d, err := NewStore(path, "", nil).Read()
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if d.Len() != 1 || d.Rows[0]["Clustering"] != "LDA" {
		t.Errorf("Read = %+v", d)
	}
}

func TestStoreLoadFallsBackToFirstSheet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "named.xlsx")
	s := NewStore(path, "Articles", nil)
	if err := s.Save(&Dataset{Columns: []string{"SourceFile"}, Rows: []entity.Record{{"SourceFile": "a.pdf"}}}); err != nil {
		t.Fatal(err)
	}

	got, err := NewStore(path, "Sheet1", nil).Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Len() != 1 {
		t.Errorf("rows = %d", got.Len())
	}
}

func TestStoreLoadCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.xlsx")
	if err := os.WriteFile(path, []byte("not a zip"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewStore(path, "", nil).Load(); !errors.Is(err, common.ErrDatasetMerge) {
		t.Fatalf("expected dataset merge error, got %v", err)
	}
}

func TestFromRows(t *testing.T) {
	rows := [][]string{
		{},
		{"SourceFile", "", "Notes", "Notes"},
		{"a.pdf", "x"},
		{"", "", ""},
		{"b.pdf", "", "n1", "n2"},
	}
	d := fromRows(rows)
	want := []string{"SourceFile", "Unnamed: 1", "Notes", "Notes.1"}
	if !reflect.DeepEqual(d.Columns, want) {
		t.Errorf("columns = %v, want %v", d.Columns, want)
	}
	if d.Len() != 2 {
		t.Fatalf("rows = %d, want 2", d.Len())
	}
	if d.Rows[1]["Notes.1"] != "n2" {
		t.Errorf("row = %v", d.Rows[1])
	}
}
