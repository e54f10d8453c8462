package entity

import (
	"sort"

	"github.com/DanielDi/agent-tech-mining/constants"
)

// Record is one row of extracted article metadata, keyed by column name.
// Category columns hold ";"-delimited items; metadata columns hold free text.
type Record map[string]string

// SourceFile returns the identifier used to match rows across runs.
func (r Record) SourceFile() string {
	return r[constants.FieldSourceFile]
}

// Clone returns a shallow copy that can be modified independently.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Keys returns the record's column names in a stable order: known columns
// first (see constants.DefaultColumns), then the rest alphabetically.
func (r Record) Keys() []string {
	keys := make([]string, 0, len(r))
	seen := make(map[string]struct{}, len(r))
	for _, k := range constants.DefaultColumns {
		if _, ok := r[k]; ok {
			keys = append(keys, k)
			seen[k] = struct{}{}
		}
	}
	var extra []string
	for k := range r {
		if _, ok := seen[k]; !ok {
			extra = append(extra, k)
		}
	}
	sort.Strings(extra)
	return append(keys, extra...)
}
