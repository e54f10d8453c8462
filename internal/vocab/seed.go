package vocab

import (
	"strings"

	"github.com/DanielDi/agent-tech-mining/constants"
	"github.com/DanielDi/agent-tech-mining/internal/entity"
)

// SeedResult reports how a vocabulary was built from existing rows.
type SeedResult struct {
	Rows           int                           `json:"rows"`
	MissingColumns map[constants.Category]string `json:"missing_columns,omitempty"`
	Labels         map[constants.Category]int    `json:"labels"`
}

// Seed builds a vocabulary from spreadsheet rows. columns maps each category
// to the header holding its answers; a header absent from the rows leaves the
// category empty. Cells are split on ";" and trimmed.
func Seed(header []string, rows []entity.Record, columns map[constants.Category]string) (*Vocabulary, SeedResult) {
	present := make(map[string]struct{}, len(header))
	for _, h := range header {
		present[h] = struct{}{}
	}

	v := New()
	res := SeedResult{
		Rows:           len(rows),
		MissingColumns: map[constants.Category]string{},
		Labels:         map[constants.Category]int{},
	}
	for _, cat := range constants.AllCategories() {
		col, ok := columns[cat]
		if !ok {
			continue
		}
		if _, ok := present[col]; !ok {
			res.MissingColumns[cat] = col
			continue
		}
		for _, row := range rows {
			for _, item := range strings.Split(row[col], constants.ItemDelimiter) {
				v.Add(cat, item)
			}
		}
	}
	for _, cat := range v.Categories() {
		res.Labels[cat] = v.Len(cat)
	}
	return v, res
}
