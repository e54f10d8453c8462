package constants

// NotSpecified is the sentinel written when a category has no usable items.
// It is never stored as a vocabulary label.
const NotSpecified = "Not specified"

const (
	// ItemDelimiter separates items in a raw categorical answer.
	ItemDelimiter = ";"
	// ItemJoiner joins normalized items back into a single cell.
	ItemJoiner = "; "
)

// Metadata columns carried alongside the categories.
const (
	FieldDocument   = "Document"
	FieldPaperCount = "PaperCount"
	FieldTermCount  = "TermCount"
	FieldSourceFile = "SourceFile"
)

// DefaultColumns is the column order used for a fresh dataset.
var DefaultColumns = []string{
	FieldDocument,
	string(AnalyzedFields),
	string(TermPreprocessing),
	string(Clustering),
	string(ClusterAnalysis),
	FieldPaperCount,
	FieldTermCount,
	FieldSourceFile,
}

// Defaults used when no configuration overrides them.
const (
	DefaultVocabularyFile = "topic_methods.json"
	DefaultDatasetFile    = "topic_metadata.xlsx"
	DefaultSheetName      = "Sheet1"
	DefaultModel          = "gpt-4o-mini"
	DefaultMaxTokens      = 1500
)

// SeedColumns maps the legacy spreadsheet headers to categories for vocabulary seeding.
var SeedColumns = map[Category]string{
	AnalyzedFields:    "¿Qué se analiza?",
	TermPreprocessing: "Preprocesamiento de Términos",
	Clustering:        "Clustering",
	ClusterAnalysis:   "Análisis de Clusters",
}
