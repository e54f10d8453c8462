package constants

import "testing"

func TestCanonicalize(t *testing.T) {
	tests := []struct {
		input string
		want  Category
		ok    bool
	}{
		{"AnalyzedFields", AnalyzedFields, true},
		{"  clustering ", Clustering, true},
		{"term_preprocessing", TermPreprocessing, true},
		{"cluster-analysis", ClusterAnalysis, true},
		{"¿Qué se analiza?", AnalyzedFields, true},
		{"Preprocesamiento de Términos", TermPreprocessing, true},
		{"Análisis de Clusters", ClusterAnalysis, true},
		{"", "", false},
		{"Topics", "", false},
	}

	for _, tt := range tests {
		got, ok := Canonicalize(tt.input)
		if got != tt.want || ok != tt.ok {
			t.Errorf("Canonicalize(%q) = (%q, %v), want (%q, %v)", tt.input, got, ok, tt.want, tt.ok)
		}
	}
}

func TestAllCategoriesIsACopy(t *testing.T) {
	cats := AllCategories()
	cats[0] = "Mutated"
	if AllCategories()[0] != AnalyzedFields {
		t.Fatal("AllCategories leaked its backing array")
	}
}

func TestMapExtToFormat(t *testing.T) {
	tests := map[string]FileFormat{
		".pdf":  PDF,
		"PDF":   PDF,
		".txt":  TXT,
		"md":    TXT,
		".docx": UNKNOWN,
		"":      UNKNOWN,
	}
	for ext, want := range tests {
		if got := MapExtToFormat(ext); got != want {
			t.Errorf("MapExtToFormat(%q) = %q, want %q", ext, got, want)
		}
	}
}

func TestExtSet(t *testing.T) {
	set := ExtSet([]string{".PDF", "txt", " "})
	if len(set) != 2 {
		t.Fatalf("ExtSet size = %d, want 2", len(set))
	}
	if _, ok := set["pdf"]; !ok {
		t.Error("expected pdf in set")
	}
	if got := ExtSet(nil); len(got) != len(AllowedExtensions) {
		t.Errorf("ExtSet(nil) should fall back to defaults, got %v", got)
	}
}
