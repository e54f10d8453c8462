package llm

import (
	"encoding/json"
	"fmt"
	"log/slog"
)

// ParseArticleResponse turns raw model content into fields. It strips code
// fences, sanitizes, validates against the article schema and decodes. The
// returned bytes are the sanitized JSON, suitable for caching. Failures wrap
// ErrMalformedResponse.
func ParseArticleResponse(content string, logger *slog.Logger) (ArticleFields, []byte, error) {
	body := StripCodeFences(content)
	if body == "" {
		return ArticleFields{}, nil, fmt.Errorf("%w: empty content", ErrMalformedResponse)
	}

	clean, _, err := NormalizeAndSanitizeJSON([]byte(body), logger)
	if err != nil {
		return ArticleFields{}, []byte(body), fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if err := ValidateArticleJSON(clean); err != nil {
		return ArticleFields{}, clean, fmt.Errorf("%w: schema validation failed: %v", ErrMalformedResponse, err)
	}

	var out ArticleFields
	if err := json.Unmarshal(clean, &out); err != nil {
		return ArticleFields{}, clean, fmt.Errorf("%w: unmarshal fields: %v", ErrMalformedResponse, err)
	}
	return out, clean, nil
}
