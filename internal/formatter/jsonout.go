package formatter

import (
	"fmt"
	"io"

	"github.com/goccy/go-json"

	"github.com/gipack/gipack/internal/validate"
)

// JSONFormatter renders a validation report as machine-readable JSON, for
// tooling that consumes reports rather than humans reading them.
type JSONFormatter struct {
	writer io.Writer
}

// NewJSONFormatter creates a new JSON formatter
func NewJSONFormatter(w io.Writer) *JSONFormatter {
	return &JSONFormatter{writer: w}
}

type jsonReport struct {
	RunID        string           `json:"runId"`
	IsValid      bool             `json:"isValid"`
	ErrorCount   int              `json:"errorCount"`
	WarningCount int              `json:"warningCount"`
	Entries      []validate.Entry `json:"entries"`
}

// Format writes the report as indented JSON
func (f *JSONFormatter) Format(r *validate.Report) error {
	out := jsonReport{
		RunID:        r.RunID,
		IsValid:      r.IsValid(),
		ErrorCount:   r.ErrorCount(),
		WarningCount: r.WarningCount(),
		Entries:      r.Entries,
	}
	if out.Entries == nil {
		out.Entries = []validate.Entry{}
	}

	enc := json.NewEncoder(f.writer)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return nil
}
