package llm

import (
	"context"
	"errors"

	"github.com/DanielDi/agent-tech-mining/constants"
	"github.com/DanielDi/agent-tech-mining/internal/entity"
)

// ErrMalformedResponse marks a model answer that is not a usable JSON record.
var ErrMalformedResponse = errors.New("malformed model response")

// ArticleFields is the normalized shape we want from the LLM.
type ArticleFields struct {
	Document          string `json:"Document,omitempty"`
	AnalyzedFields    string `json:"AnalyzedFields,omitempty"`
	TermPreprocessing string `json:"TermPreprocessing,omitempty"`
	Clustering        string `json:"Clustering,omitempty"`
	ClusterAnalysis   string `json:"ClusterAnalysis,omitempty"`
	PaperCount        string `json:"PaperCount,omitempty"` // e.g. "11,942 (2000–2024)"
	TermCount         string `json:"TermCount,omitempty"`  // e.g. "500 terms"
}

// Record converts the fields to a dataset row. Categories the model left out
// stay absent so the normalizer can default them; metadata is always present.
func (f ArticleFields) Record() entity.Record {
	r := entity.Record{
		constants.FieldDocument:   f.Document,
		constants.FieldPaperCount: f.PaperCount,
		constants.FieldTermCount:  f.TermCount,
	}
	cats := map[constants.Category]string{
		constants.AnalyzedFields:    f.AnalyzedFields,
		constants.TermPreprocessing: f.TermPreprocessing,
		constants.Clustering:        f.Clustering,
		constants.ClusterAnalysis:   f.ClusterAnalysis,
	}
	for c, v := range cats {
		if v != "" {
			r[string(c)] = v
		}
	}
	return r
}

type ExtractRequest struct {
	Text         string
	FilenameHint string
	// KnownMethods is the vocabulary snapshot offered to the model for reuse.
	KnownMethods map[string][]string
}

// FieldExtractor is the interface our pipeline depends on.
type FieldExtractor interface {
	ExtractFields(ctx context.Context, req ExtractRequest) (ArticleFields, []byte /*rawJSON*/, error)
	// Model names the model answering requests; it is part of cache keys.
	Model() string
}
