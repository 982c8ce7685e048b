package formatter

import (
	"fmt"
	"io"

	"github.com/gipack/gipack/internal/validate"
)

// MarkdownFormatter renders a validation report as markdown.
type MarkdownFormatter struct {
	writer io.Writer
}

// NewMarkdownFormatter creates a new markdown formatter
func NewMarkdownFormatter(w io.Writer) *MarkdownFormatter {
	return &MarkdownFormatter{writer: w}
}

// Format writes the report in markdown format
func (f *MarkdownFormatter) Format(r *validate.Report) error {
	_, _ = fmt.Fprintln(f.writer, "# Validation Report")
	_, _ = fmt.Fprintln(f.writer)

	verdict := "valid"
	if !r.IsValid() {
		verdict = "**invalid**"
	}
	_, _ = fmt.Fprintf(f.writer, "Run `%s`: %s, %d error(s), %d warning(s)\n\n",
		r.RunID, verdict, r.ErrorCount(), r.WarningCount())

	if len(r.Entries) == 0 {
		_, _ = fmt.Fprintln(f.writer, "No problems found.")
		return nil
	}

	for _, resource := range resourceOrder(r) {
		if err := f.formatResource(resource, r.ByResource(resource)); err != nil {
			return err
		}
	}

	return nil
}

func (f *MarkdownFormatter) formatResource(resource string, entries []validate.Entry) error {
	_, _ = fmt.Fprintf(f.writer, "## %s\n\n", resource)
	_, _ = fmt.Fprintln(f.writer, "| Severity | Kind | Row | Field | Message |")
	_, _ = fmt.Fprintln(f.writer, "|---|---|---|---|---|")

	for _, e := range entries {
		row := ""
		if e.RowIndex != nil {
			row = fmt.Sprintf("%d", *e.RowIndex)
		}
		_, _ = fmt.Fprintf(f.writer, "| %s | %s | %s | %s | %s |\n",
			e.Severity, e.Kind, row, e.Field, e.Message)
	}
	_, _ = fmt.Fprintln(f.writer)

	return nil
}
