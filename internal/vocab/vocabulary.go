// Package vocab holds the controlled vocabulary of method labels per category
// and its JSON persistence.
package vocab

import (
	"sort"
	"strings"

	"github.com/DanielDi/agent-tech-mining/constants"
)

// Vocabulary maps each category to the set of labels admitted so far.
// It only grows during a run. A Vocabulary is not safe for concurrent
// mutation; the pipeline keeps a single writer.
type Vocabulary struct {
	labels map[constants.Category]map[string]struct{}
}

// New returns an empty vocabulary with the given categories present.
// With no arguments every known category is present.
func New(categories ...constants.Category) *Vocabulary {
	if len(categories) == 0 {
		categories = constants.AllCategories()
	}
	v := &Vocabulary{labels: make(map[constants.Category]map[string]struct{}, len(categories))}
	for _, c := range categories {
		v.labels[c] = map[string]struct{}{}
	}
	return v
}

// IsNotSpecified reports whether s is the sentinel, ignoring case and surrounding space.
func IsNotSpecified(s string) bool {
	return strings.EqualFold(strings.TrimSpace(s), constants.NotSpecified)
}

// Add admits label under category. It returns true when the label was not
// present before. Empty labels and the sentinel are rejected.
func (v *Vocabulary) Add(category constants.Category, label string) bool {
	label = strings.TrimSpace(label)
	if label == "" || IsNotSpecified(label) {
		return false
	}
	set, ok := v.labels[category]
	if !ok {
		set = map[string]struct{}{}
		v.labels[category] = set
	}
	if _, exists := set[label]; exists {
		return false
	}
	set[label] = struct{}{}
	return true
}

// Contains reports whether label is admitted under category. Unknown
// categories contain nothing.
func (v *Vocabulary) Contains(category constants.Category, label string) bool {
	_, ok := v.labels[category][label]
	return ok
}

// Labels returns the sorted labels of category.
func (v *Vocabulary) Labels(category constants.Category) []string {
	set := v.labels[category]
	out := make([]string, 0, len(set))
	for l := range set {
		out = append(out, l)
	}
	sort.Strings(out)
	return out
}

// Len returns the number of labels admitted under category.
func (v *Vocabulary) Len(category constants.Category) int {
	return len(v.labels[category])
}

// Categories returns every category present, known ones first in canonical
// order, then any others alphabetically.
func (v *Vocabulary) Categories() []constants.Category {
	out := make([]constants.Category, 0, len(v.labels))
	for _, c := range constants.AllCategories() {
		if _, ok := v.labels[c]; ok {
			out = append(out, c)
		}
	}
	var extra []string
	for c := range v.labels {
		if !c.IsKnown() {
			extra = append(extra, string(c))
		}
	}
	sort.Strings(extra)
	for _, c := range extra {
		out = append(out, constants.Category(c))
	}
	return out
}

// Snapshot returns an immutable copy of the vocabulary as sorted label lists.
// Extraction prompts are built from a snapshot taken at batch start so that
// workers never read the live vocabulary while it is being extended.
func (v *Vocabulary) Snapshot() map[string][]string {
	out := make(map[string][]string, len(v.labels))
	for c := range v.labels {
		out[string(c)] = v.Labels(c)
	}
	return out
}

// Clone returns a deep copy.
func (v *Vocabulary) Clone() *Vocabulary {
	out := &Vocabulary{labels: make(map[constants.Category]map[string]struct{}, len(v.labels))}
	for c, set := range v.labels {
		cp := make(map[string]struct{}, len(set))
		for l := range set {
			cp[l] = struct{}{}
		}
		out.labels[c] = cp
	}
	return out
}

// Total returns the number of labels across all categories.
func (v *Vocabulary) Total() int {
	n := 0
	for _, set := range v.labels {
		n += len(set)
	}
	return n
}
