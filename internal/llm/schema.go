package llm

import "github.com/DanielDi/agent-tech-mining/constants"

// AllowedKeys are the only keys kept in a sanitized answer.
var AllowedKeys = []string{
	constants.FieldDocument,
	string(constants.AnalyzedFields),
	string(constants.TermPreprocessing),
	string(constants.Clustering),
	string(constants.ClusterAnalysis),
	constants.FieldPaperCount,
	constants.FieldTermCount,
}

// BuildArticleJSONSchema returns a JSON-Schema (draft 2020-12 subset) as a generic map.
// Document is required; every other field is an optional string.
func BuildArticleJSONSchema() map[string]any {
	props := make(map[string]any, len(AllowedKeys))
	for _, k := range AllowedKeys {
		props[k] = map[string]any{"type": "string"}
	}
	props[constants.FieldDocument] = map[string]any{"type": "string", "minLength": 1}

	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties":           props,
		"required":             []string{constants.FieldDocument},
	}
}
