package vocab

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/DanielDi/agent-tech-mining/constants"
	"github.com/DanielDi/agent-tech-mining/internal/common"
)

// Load reads the vocabulary file at path. A missing file yields an empty
// vocabulary with every known category present. Any other failure is a
// *common.VocabularyLoadError.
func Load(path string, logger *slog.Logger) (*Vocabulary, error) {
	if logger == nil {
		logger = slog.Default()
	}

	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logger.Info("vocab.load.missing", "path", path)
			return New(), nil
		}
		return nil, &common.VocabularyLoadError{Path: path, Err: err}
	}
	if len(bytes.TrimSpace(b)) == 0 {
		logger.Warn("vocab.load.empty_file", "path", path)
		return New(), nil
	}

	var raw map[string][]string
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, &common.VocabularyLoadError{Path: path, Err: fmt.Errorf("decode: %w", err)}
	}

	v := New()
	skipped := 0
	for cat, labels := range raw {
		c := constants.Category(cat)
		if _, ok := v.labels[c]; !ok {
			v.labels[c] = map[string]struct{}{}
			logger.Debug("vocab.load.extra_category", "category", cat)
		}
		for _, l := range labels {
			if !v.Add(c, l) && !v.Contains(c, strings.TrimSpace(l)) {
				skipped++
			}
		}
	}
	if skipped > 0 {
		logger.Warn("vocab.load.skipped_labels", "path", path, "count", skipped)
	}
	logger.Info("vocab.load.ok", "path", path, "labels", v.Total())
	return v, nil
}

// Save writes v to path as indented JSON with labels sorted per category.
// The file is replaced atomically.
func Save(path string, v *Vocabulary) error {
	b, err := Marshal(v)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return common.WrapError(err, "create vocabulary dir")
	}
	tmp, err := os.CreateTemp(dir, ".vocab-*.json")
	if err != nil {
		return common.WrapError(err, "create temp vocabulary")
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(b); err != nil {
		_ = tmp.Close()
		return common.WrapError(err, "write vocabulary")
	}
	if err := tmp.Close(); err != nil {
		return common.WrapError(err, "close vocabulary")
	}
	if err := os.Rename(tmpName, path); err != nil {
		return common.WrapError(err, "replace vocabulary")
	}
	return nil
}

// Marshal renders the on-disk form: two-space indent, non-ASCII kept literal,
// every known category present even when empty.
func Marshal(v *Vocabulary) ([]byte, error) {
	out := make(map[string][]string, len(v.labels))
	for _, c := range constants.AllCategories() {
		out[string(c)] = []string{}
	}
	for c := range v.labels {
		out[string(c)] = v.Labels(c)
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return nil, fmt.Errorf("encode vocabulary: %w", err)
	}
	return buf.Bytes(), nil
}
