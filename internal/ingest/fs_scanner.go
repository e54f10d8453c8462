package ingest

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/DanielDi/agent-tech-mining/constants"
	"github.com/DanielDi/agent-tech-mining/internal/entity"
)

type ScanConfig struct {
	Extensions []string // lowercased sans '.'; empty -> constants.AllowedExtensions
	Recursive  bool
	SkipHidden bool
}

// FSScanner reads source documents from the local filesystem.
type FSScanner struct {
	cfg      ScanConfig
	exts     map[string]struct{}
	logger   *slog.Logger
	describe func(path string) (entity.SourceDocument, error)
}

func NewFSScanner(cfg ScanConfig, logger *slog.Logger) *FSScanner {
	if logger == nil {
		logger = slog.Default()
	}
	return &FSScanner{cfg: cfg, exts: constants.ExtSet(cfg.Extensions), logger: logger, describe: Describe}
}

// Scan accepts a single file, which is always attempted whatever its
// extension, or a directory, which is filtered by extension.
func (s *FSScanner) Scan(ctx context.Context, path string) ([]entity.SourceDocument, DirStats, error) {
	if strings.TrimSpace(path) == "" {
		return nil, DirStats{}, errors.New("input path is required")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, DirStats{}, fmt.Errorf("abs path: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, DirStats{}, fmt.Errorf("input path: %w", err)
	}
	if !info.IsDir() {
		doc, err := s.describe(abs)
		if err != nil {
			// still attempted; text extraction reports the failure for this file
			s.logger.Warn("ingest.describe_failed", "path", abs, "error", err)
			doc = entity.SourceDocument{
				Path:       abs,
				SourceFile: filepath.Base(abs),
				FileExt:    constants.NormalizeExt(filepath.Ext(abs)),
			}
		}
		return []entity.SourceDocument{doc}, DirStats{Scanned: 1, Matched: 1}, nil
	}
	return s.scanDir(ctx, abs)
}

func (s *FSScanner) scanDir(ctx context.Context, root string) ([]entity.SourceDocument, DirStats, error) {
	var (
		docs  []entity.SourceDocument
		stats DirStats
	)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if path == root {
			return walkErr
		}
		stats.Scanned++
		if walkErr != nil {
			s.logger.Warn("ingest.walk_error", "path", path, "error", walkErr)
			stats.Failed++
			return nil
		}
		if s.cfg.SkipHidden && IsHidden(path) {
			stats.Skipped++
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if !s.cfg.Recursive {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || !AllowedExt(filepath.Ext(path), s.exts) {
			stats.Skipped++
			return nil
		}

		doc, err := s.describe(path)
		if err != nil {
			s.logger.Warn("ingest.describe_failed", "path", path, "error", err)
			stats.Failed++
			if stats.Errors == nil {
				stats.Errors = make(map[string]error)
			}
			stats.Errors[path] = err
			return nil
		}
		stats.Matched++
		docs = append(docs, doc)
		return nil
	})
	if err != nil {
		return docs, stats, fmt.Errorf("walk: %w", err)
	}

	sort.Slice(docs, func(i, j int) bool { return docs[i].Path < docs[j].Path })
	seen := make(map[string]string, len(docs))
	for _, d := range docs {
		if prev, ok := seen[d.SourceFile]; ok {
			stats.Duplicates++
			s.logger.Warn("ingest.duplicate_source_file",
				"source_file", d.SourceFile, "path", d.Path, "previous", prev)
		}
		seen[d.SourceFile] = d.Path
	}

	s.logger.Info("ingest.scan.ok", "root", root,
		"scanned", stats.Scanned, "matched", stats.Matched,
		"skipped", stats.Skipped, "failed", stats.Failed)
	return docs, stats, nil
}

// Describe stats and hashes one file.
func Describe(path string) (entity.SourceDocument, error) {
	info, err := os.Stat(path)
	if err != nil {
		return entity.SourceDocument{}, err
	}
	if info.IsDir() {
		return entity.SourceDocument{}, fmt.Errorf("%s is a directory", path)
	}
	sum, err := hashFile(path)
	if err != nil {
		return entity.SourceDocument{}, fmt.Errorf("hash: %w", err)
	}
	return entity.SourceDocument{
		Path:       path,
		SourceFile: filepath.Base(path),
		FileExt:    constants.NormalizeExt(filepath.Ext(path)),
		HashHex:    sum,
		FileSize:   info.Size(),
		ModifiedAt: info.ModTime().UTC(),
	}, nil
}
