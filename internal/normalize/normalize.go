// Package normalize reconciles free-text category answers against the vocabulary.
package normalize

import (
	"strings"

	"github.com/DanielDi/agent-tech-mining/constants"
	"github.com/DanielDi/agent-tech-mining/internal/entity"
	"github.com/DanielDi/agent-tech-mining/internal/vocab"
)

// Split breaks a raw answer into trimmed, non-empty items in their original order.
func Split(raw string) []string {
	parts := strings.Split(raw, constants.ItemDelimiter)
	items := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			items = append(items, p)
		}
	}
	return items
}

// Normalize rewrites raw for category and admits unseen items into v.
//
// Items equal to "not specified" in any case become the literal sentinel and
// are never admitted. Every other item is kept verbatim, duplicates included.
// With no items left the result is the sentinel. The returned slice lists the
// labels newly admitted by this call.
func Normalize(category constants.Category, raw string, v *vocab.Vocabulary) (string, []string) {
	items := Split(raw)
	if len(items) == 0 {
		return constants.NotSpecified, nil
	}

	var added []string
	for i, item := range items {
		if vocab.IsNotSpecified(item) {
			items[i] = constants.NotSpecified
			continue
		}
		if v.Add(category, item) {
			added = append(added, item)
		}
	}
	return strings.Join(items, constants.ItemJoiner), added
}

// Outcome lists the labels admitted while normalizing one record.
type Outcome struct {
	Added map[constants.Category][]string
}

// Count returns the number of newly admitted labels.
func (o Outcome) Count() int {
	n := 0
	for _, l := range o.Added {
		n += len(l)
	}
	return n
}

// Record normalizes every category of rec and returns a new record. Absent
// categories default to the sentinel. Keys that are not categories are copied
// through untouched.
func Record(rec entity.Record, categories []constants.Category, v *vocab.Vocabulary) (entity.Record, Outcome) {
	if len(categories) == 0 {
		categories = constants.AllCategories()
	}
	out := rec.Clone()
	outcome := Outcome{Added: map[constants.Category][]string{}}

	for _, cat := range categories {
		raw, ok := rec[string(cat)]
		if !ok {
			raw = constants.NotSpecified
		}
		text, added := Normalize(cat, raw, v)
		out[string(cat)] = text
		if len(added) > 0 {
			outcome.Added[cat] = append(outcome.Added[cat], added...)
		}
	}
	return out, outcome
}
