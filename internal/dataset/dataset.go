// Package dataset holds the persisted table of article records keyed by source file.
package dataset

import (
	"errors"
	"sort"

	"github.com/DanielDi/agent-tech-mining/constants"
	"github.com/DanielDi/agent-tech-mining/internal/common"
	"github.com/DanielDi/agent-tech-mining/internal/entity"
)

// ErrMissingIdentifier is returned when rows exist but no SourceFile column does.
var ErrMissingIdentifier = errors.New("dataset has no " + constants.FieldSourceFile + " column")

// Dataset is an ordered table. Columns fixes the output order; each row may
// omit columns, which are written as empty cells.
type Dataset struct {
	Columns []string
	Rows    []entity.Record
}

// New returns an empty dataset with the default column order.
func New() *Dataset {
	cols := make([]string, len(constants.DefaultColumns))
	copy(cols, constants.DefaultColumns)
	return &Dataset{Columns: cols}
}

// Len returns the number of rows.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Rows)
}

// HasColumn reports whether name is one of the dataset's columns.
func (d *Dataset) HasColumn(name string) bool {
	for _, c := range d.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// Find returns the row whose SourceFile equals sourceFile.
func (d *Dataset) Find(sourceFile string) (entity.Record, bool) {
	if d == nil {
		return nil, false
	}
	for _, r := range d.Rows {
		if r.SourceFile() == sourceFile {
			return r, true
		}
	}
	return nil, false
}

// SourceFiles returns the identifiers of all rows in order.
func (d *Dataset) SourceFiles() []string {
	out := make([]string, 0, d.Len())
	for _, r := range d.Rows {
		out = append(out, r.SourceFile())
	}
	return out
}

// Validate checks that rows can be matched by identifier.
func (d *Dataset) Validate() error {
	if d.Len() > 0 && !d.HasColumn(constants.FieldSourceFile) {
		return ErrMissingIdentifier
	}
	return nil
}

// Merge reconciles newRecords into existing. Rows whose SourceFile appears in
// newRecords are dropped, then newRecords are appended in order. A nil
// existing dataset is treated as empty. An empty batch returns existing as is.
// When one identifier repeats inside newRecords the last record wins.
func Merge(existing *Dataset, newRecords []entity.Record) (*Dataset, error) {
	if len(newRecords) == 0 {
		if existing == nil {
			return New(), nil
		}
		return existing, nil
	}
	if existing == nil {
		existing = New()
	}
	if err := existing.Validate(); err != nil {
		return nil, &common.DatasetMergeError{Err: err}
	}

	lastIdx := make(map[string]int, len(newRecords))
	for i, r := range newRecords {
		lastIdx[r.SourceFile()] = i
	}

	out := &Dataset{Columns: mergeColumns(existing.Columns, newRecords)}
	out.Rows = make([]entity.Record, 0, len(existing.Rows)+len(newRecords))
	for _, r := range existing.Rows {
		if _, replaced := lastIdx[r.SourceFile()]; replaced {
			continue
		}
		out.Rows = append(out.Rows, r)
	}
	for i, r := range newRecords {
		if lastIdx[r.SourceFile()] != i {
			continue
		}
		out.Rows = append(out.Rows, r.Clone())
	}
	return out, nil
}

// mergeColumns keeps existing columns in place, then appends missing default
// columns in their canonical order, then any remaining keys alphabetically.
func mergeColumns(existing []string, records []entity.Record) []string {
	cols := make([]string, 0, len(existing)+len(constants.DefaultColumns))
	seen := make(map[string]struct{}, cap(cols))
	add := func(c string) {
		if _, ok := seen[c]; ok {
			return
		}
		seen[c] = struct{}{}
		cols = append(cols, c)
	}

	for _, c := range existing {
		add(c)
	}
	keys := map[string]struct{}{}
	for _, r := range records {
		for k := range r {
			keys[k] = struct{}{}
		}
	}
	for _, c := range constants.DefaultColumns {
		if _, ok := keys[c]; ok {
			add(c)
		}
	}
	var extra []string
	for k := range keys {
		if _, ok := seen[k]; !ok {
			extra = append(extra, k)
		}
	}
	sort.Strings(extra)
	for _, c := range extra {
		add(c)
	}
	return cols
}
