package formatter

import (
	"fmt"
	"io"
	"strings"

	"github.com/gipack/gipack/internal/validate"
)

// TextFormatter renders a validation report as compact text.
type TextFormatter struct {
	writer io.Writer
}

// NewTextFormatter creates a new text formatter
func NewTextFormatter(w io.Writer) *TextFormatter {
	return &TextFormatter{writer: w}
}

// Format writes the report in compact text format
func (f *TextFormatter) Format(r *validate.Report) error {
	if r.IsValid() && len(r.Entries) == 0 {
		_, err := fmt.Fprintf(f.writer, "VALID (run %s): no problems found\n", r.RunID)
		return err
	}

	verdict := "VALID"
	if !r.IsValid() {
		verdict = "INVALID"
	}
	_, _ = fmt.Fprintf(f.writer, "%s (run %s): %d error(s), %d warning(s)\n",
		verdict, r.RunID, r.ErrorCount(), r.WarningCount())

	for _, resource := range resourceOrder(r) {
		_, _ = fmt.Fprintf(f.writer, "\n%s\n", resource)
		for _, entry := range r.ByResource(resource) {
			_, _ = fmt.Fprintf(f.writer, "  %s\n", f.formatEntry(entry))
		}
	}

	return nil
}

func (f *TextFormatter) formatEntry(e validate.Entry) string {
	parts := []string{strings.ToUpper(string(e.Severity)), string(e.Kind)}

	if e.RowIndex != nil {
		parts = append(parts, fmt.Sprintf("row %d", *e.RowIndex))
	}
	if e.Field != "" {
		parts = append(parts, e.Field+":")
	}
	parts = append(parts, e.Message)

	return strings.Join(parts, " ")
}

// resourceOrder lists the resources in first-appearance order, so the output
// follows the order the entries were produced in.
func resourceOrder(r *validate.Report) []string {
	var order []string
	seen := make(map[string]bool)
	for _, e := range r.Entries {
		if e.Resource == "" || seen[e.Resource] {
			continue
		}
		seen[e.Resource] = true
		order = append(order, e.Resource)
	}
	return order
}
