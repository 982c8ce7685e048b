// Package validate implements the three validation passes over a dataset:
// per-field value checks, per-table key checks, and cross-table referential
// integrity. All problems are accumulated into a Report; only a broken schema
// document ever aborts a run.
package validate

import "github.com/google/uuid"

// Severity distinguishes hard failures from recoverable findings.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Kind identifies the check an entry came from.
type Kind string

const (
	// Field-level kinds.
	KindMissingRequired Kind = "MissingRequired"
	KindTypeMismatch    Kind = "TypeMismatch"
	KindFormatMismatch  Kind = "FormatMismatch"
	KindOutOfRange      Kind = "OutOfRange"
	KindUnknownField    Kind = "UnknownField"

	// Row-level kinds.
	KindDuplicateKey      Kind = "DuplicateKey"
	KindMissingPrimaryKey Kind = "MissingPrimaryKey"

	// Cross-table kinds.
	KindReferencedResourceMissing Kind = "ReferencedResourceMissing"
	KindDanglingReference         Kind = "DanglingReference"

	// Dataset-level kinds.
	KindUnknownResource Kind = "UnknownResource"
)

// Entry is one validation finding, addressable down to resource, row and
// field where those apply.
type Entry struct {
	Kind     Kind     `json:"kind"`
	Severity Severity `json:"severity"`
	Resource string   `json:"resource,omitempty"`
	RowIndex *int     `json:"rowIndex,omitempty"`
	Field    string   `json:"field,omitempty"`
	Message  string   `json:"message"`
}

// Report accumulates validation entries for one run. Entries keep the order
// they were produced in: row order within a table, declared field order
// within a row.
type Report struct {
	RunID   string  `json:"runId"`
	Entries []Entry `json:"entries"`
}

// NewReport creates an empty report with a fresh run ID.
func NewReport() *Report {
	return &Report{RunID: uuid.NewString()}
}

// Append adds entries to the report.
func (r *Report) Append(entries ...Entry) {
	r.Entries = append(r.Entries, entries...)
}

// Merge concatenates another report fragment onto this one. Concatenation is
// all a merge needs: cross-resource ordering carries no meaning.
func (r *Report) Merge(other *Report) {
	if other != nil {
		r.Entries = append(r.Entries, other.Entries...)
	}
}

// IsValid reports whether the run produced no error-severity entries.
// Warnings do not make a dataset invalid.
func (r *Report) IsValid() bool {
	for _, e := range r.Entries {
		if e.Severity == SeverityError {
			return false
		}
	}
	return true
}

// ErrorCount returns the number of error-severity entries.
func (r *Report) ErrorCount() int {
	n := 0
	for _, e := range r.Entries {
		if e.Severity == SeverityError {
			n++
		}
	}
	return n
}

// WarningCount returns the number of warning-severity entries.
func (r *Report) WarningCount() int {
	n := 0
	for _, e := range r.Entries {
		if e.Severity == SeverityWarning {
			n++
		}
	}
	return n
}

// ByResource returns the entries recorded against the named resource, in
// report order.
func (r *Report) ByResource(name string) []Entry {
	var out []Entry
	for _, e := range r.Entries {
		if e.Resource == name {
			out = append(out, e)
		}
	}
	return out
}

func rowIndex(i int) *int {
	return &i
}
