package ingest

import (
	"context"

	"github.com/DanielDi/agent-tech-mining/internal/entity"
)

// DirStats summarizes a directory scan.
type DirStats struct {
	Scanned    uint32
	Matched    uint32
	Skipped    uint32
	Failed     uint32
	Duplicates uint32 // matched files sharing a base name with an earlier one

	// Errors holds matched files that could not be read, by path.
	Errors map[string]error
}

// Ingestor is the behavior the pipeline depends on.
type Ingestor interface {
	// Scan resolves a file or directory into the documents to process, in path order.
	Scan(ctx context.Context, path string) ([]entity.SourceDocument, DirStats, error)
}
