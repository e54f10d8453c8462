package constants

import (
	"strings"
)

// Category is one of the fixed method taxonomies tracked per article.
type Category string

const (
	AnalyzedFields    Category = "AnalyzedFields"
	TermPreprocessing Category = "TermPreprocessing"
	Clustering        Category = "Clustering"
	ClusterAnalysis   Category = "ClusterAnalysis"
)

var allCategories = []Category{
	AnalyzedFields,
	TermPreprocessing,
	Clustering,
	ClusterAnalysis,
}

// AllCategories returns the known categories in their canonical column order.
func AllCategories() []Category {
	out := make([]Category, len(allCategories))
	copy(out, allCategories)
	return out
}

func AsStringSlice() []string {
	result := make([]string, len(allCategories))
	for i, cat := range allCategories {
		result[i] = string(cat)
	}
	return result
}

// IsKnown reports whether c is one of the fixed categories.
func (c Category) IsKnown() bool {
	for _, cat := range allCategories {
		if c == cat {
			return true
		}
	}
	return false
}

// Canonicalize resolves user input (CLI args, spreadsheet headers) to a category.
// Matching is case-insensitive and tolerates spaces, dashes and underscores.
func Canonicalize(input string) (Category, bool) {
	if strings.TrimSpace(input) == "" {
		return "", false
	}

	normalized := squash(input)

	synonyms := map[string]Category{
		"analyzed":          AnalyzedFields,
		"fields":            AnalyzedFields,
		"analysedfields":    AnalyzedFields,
		"preprocessing":     TermPreprocessing,
		"clusteringmethod":  Clustering,
		"clusteringmethods": Clustering,
		"analysis":          ClusterAnalysis,
		"clusteranalyses":   ClusterAnalysis,

		// legacy spreadsheet headers
		"¿quéseanaliza?":             AnalyzedFields,
		"quéseanaliza":               AnalyzedFields,
		"preprocesamientodetérminos": TermPreprocessing,
		"análisisdeclusters":         ClusterAnalysis,
	}

	if cat, ok := synonyms[normalized]; ok {
		return cat, true
	}

	for _, cat := range allCategories {
		if normalized == strings.ToLower(string(cat)) {
			return cat, true
		}
	}

	return "", false
}

func squash(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer(" ", "", "_", "", "-", "").Replace(s)
}
