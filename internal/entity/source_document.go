package entity

import (
	"time"
)

// SourceDocument represents an input file discovered for processing.
type SourceDocument struct {
	Path       string    `json:"path"`
	SourceFile string    `json:"source_file"` // base name; the dataset identifier
	FileExt    string    `json:"file_ext"`
	HashHex    string    `json:"hash_hex"`
	FileSize   int64     `json:"file_size"`
	ModifiedAt time.Time `json:"modified_at"`
}
