package llm

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/DanielDi/agent-tech-mining/constants"
)

var reFence = regexp.MustCompile("(?s)^```[a-zA-Z0-9_-]*\\s*\n?(.*?)\\s*```$")

// StripCodeFences removes a surrounding markdown code fence (``` or ```json).
func StripCodeFences(content string) string {
	s := strings.TrimSpace(content)
	if m := reFence.FindStringSubmatch(s); m != nil {
		return strings.TrimSpace(m[1])
	}
	// unterminated fence
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		if i := strings.IndexByte(s, '\n'); i >= 0 && !strings.ContainsAny(s[:i], "{[") {
			s = s[i+1:]
		}
	}
	return strings.TrimSpace(s)
}

// metadata key aliases, compared after lowercasing and dropping spaces, dashes, underscores
var metaSynonyms = map[string]string{
	"document":       constants.FieldDocument,
	"title":          constants.FieldDocument,
	"articletitle":   constants.FieldDocument,
	"papercount":     constants.FieldPaperCount,
	"papers":         constants.FieldPaperCount,
	"numberofpapers": constants.FieldPaperCount,
	"corpussize":     constants.FieldPaperCount,
	"termcount":      constants.FieldTermCount,
	"terms":          constants.FieldTermCount,
	"numberofterms":  constants.FieldTermCount,
}

// NormalizeAndSanitizeJSON
// - Renames known synonyms (title -> Document, clustering_methods -> Clustering)
// - Coerces numbers to strings and joins string arrays with "; "
// - Drops null/empty values and values of unexpected types
// - Removes unknown keys (strict additionalProperties = false friendliness)
func NormalizeAndSanitizeJSON(raw []byte, logger *slog.Logger) ([]byte, []string, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, nil, fmt.Errorf("sanitize: decode: %w", err)
	}

	out := make(map[string]string, len(m))
	dropped := make([]string, 0, 4)

	// sorted so that competing synonyms resolve the same way every time
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		val := m[key]
		canon, ok := canonicalKey(key)
		if !ok {
			dropped = append(dropped, key+"(unknown)")
			continue
		}
		if canon != key {
			dropped = append(dropped, key+"->"+canon)
		}

		s, ok := coerceString(val)
		if !ok {
			dropped = append(dropped, key+"(type)")
			continue
		}
		if s == "" {
			dropped = append(dropped, key+"(empty)")
			continue
		}
		// keep an exact-key value over a synonym's
		if _, exists := out[canon]; exists && canon != key {
			continue
		}
		out[canon] = s
	}

	b, err := json.Marshal(out)
	if err != nil {
		return nil, dropped, fmt.Errorf("sanitize: encode: %w", err)
	}
	if len(dropped) > 0 {
		logger.Warn("llm.extract.normalize_sanitize", "dropped", dropped)
	}
	return b, dropped, nil
}

func canonicalKey(key string) (string, bool) {
	for _, k := range AllowedKeys {
		if key == k {
			return k, true
		}
	}
	squashed := strings.NewReplacer(" ", "", "_", "", "-", "").Replace(strings.ToLower(strings.TrimSpace(key)))
	if k, ok := metaSynonyms[squashed]; ok {
		return k, true
	}
	if c, ok := constants.Canonicalize(key); ok {
		return string(c), true
	}
	return "", false
}

func coerceString(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t), true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case nil:
		return "", true
	case []any:
		items := make([]string, 0, len(t))
		for _, it := range t {
			s, ok := coerceString(it)
			if !ok {
				return "", false
			}
			if s != "" {
				items = append(items, s)
			}
		}
		return strings.Join(items, constants.ItemJoiner), true
	default:
		return "", false
	}
}
