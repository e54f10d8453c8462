package pipeline

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/DanielDi/agent-tech-mining/constants"
	"github.com/DanielDi/agent-tech-mining/internal/common"
)

// Failure attributes one failed document.
type Failure struct {
	SourceFile string                 `json:"source_file"`
	Stage      common.ExtractionStage `json:"stage"`
	Reason     string                 `json:"reason"`
}

// DocumentResult is the outcome of one document, in batch order.
type DocumentResult struct {
	SourceFile string              `json:"source_file"`
	Status     constants.DocStatus `json:"status"`
	ElapsedMS  int64               `json:"elapsed_ms"`
}

// Summary reports a batch run.
type Summary struct {
	RunID     string              `json:"run_id"`
	Started   time.Time           `json:"started_at"`
	Elapsed   time.Duration       `json:"elapsed_ns"`
	Documents int                 `json:"documents"`
	Processed int                 `json:"processed"`
	Failed    int                 `json:"failed"`
	Failures  []Failure           `json:"failures"`
	Results   []DocumentResult    `json:"results"`
	NewLabels map[string][]string `json:"new_labels"`
	Rows      int                 `json:"rows"`
	DryRun    bool                `json:"dry_run,omitempty"`
}

func newFailure(sourceFile string, err error) Failure {
	f := Failure{SourceFile: sourceFile, Stage: common.StageLLM, Reason: err.Error()}
	var xerr *common.ExtractionError
	if errors.As(err, &xerr) {
		f.Stage = xerr.Stage
		if xerr.Err != nil {
			f.Reason = xerr.Err.Error()
		}
	}
	return f
}

// NewLabelCount is the number of labels admitted to the vocabulary by the run.
func (s Summary) NewLabelCount() int {
	n := 0
	for _, l := range s.NewLabels {
		n += len(l)
	}
	return n
}

// WriteText renders the summary for a terminal.
func (s Summary) WriteText(w io.Writer) error {
	var b strings.Builder
	fmt.Fprintf(&b, "Run %s", s.RunID)
	if s.DryRun {
		b.WriteString(" (dry run, nothing written)")
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "  processed: %d of %d\n", s.Processed, s.Documents)
	fmt.Fprintf(&b, "  failed:    %d\n", s.Failed)
	for _, f := range s.Failures {
		fmt.Fprintf(&b, "    - %s [%s] %s\n", f.SourceFile, f.Stage, f.Reason)
	}
	fmt.Fprintf(&b, "  new labels: %d\n", s.NewLabelCount())
	for _, c := range sortedCategories(s.NewLabels) {
		fmt.Fprintf(&b, "    %s: %s\n", c, strings.Join(s.NewLabels[c], constants.ItemJoiner))
	}
	fmt.Fprintf(&b, "  dataset rows: %d\n", s.Rows)
	fmt.Fprintf(&b, "  elapsed: %s\n", s.Elapsed.Round(time.Millisecond))
	_, err := io.WriteString(w, b.String())
	return err
}

func sortedCategories(m map[string][]string) []string {
	out := make([]string, 0, len(m))
	for c := range m {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}
