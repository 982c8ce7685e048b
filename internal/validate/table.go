package validate

import (
	"fmt"
	"strings"

	"github.com/gipack/gipack/internal/dataset"
	"github.com/gipack/gipack/internal/schema"
)

// Table validates one table against its resource schema and returns a report
// fragment: per-field findings in row order then declared field order,
// followed by key-uniqueness findings. Fields present in a row but absent
// from the schema are warnings, so data written against a newer schema still
// validates.
func Table(res *schema.Resource, table dataset.Table) *Report {
	report := NewReport()

	for i, row := range table {
		for _, field := range res.Schema.Fields {
			value := row[field.Name]
			for _, entry := range Field(field, value) {
				entry.Resource = res.Name
				entry.RowIndex = rowIndex(i)
				report.Append(entry)
			}
		}

		for _, name := range row.FieldNames() {
			if !res.HasField(name) {
				report.Append(Entry{
					Kind:     KindUnknownField,
					Severity: SeverityWarning,
					Resource: res.Name,
					RowIndex: rowIndex(i),
					Field:    name,
					Message:  fmt.Sprintf("field %q is not declared in the schema", name),
				})
			}
		}

		if missing := missingPrimaryKeyFields(res, row); len(missing) > 0 {
			report.Append(Entry{
				Kind:     KindMissingPrimaryKey,
				Severity: SeverityError,
				Resource: res.Name,
				RowIndex: rowIndex(i),
				Field:    strings.Join(missing, ", "),
				Message: fmt.Sprintf("row is missing primary key field(s) %s",
					strings.Join(missing, ", ")),
			})
		}
	}

	for _, tuple := range uniquenessTuples(res) {
		report.Append(checkUniqueness(res.Name, tuple, table)...)
	}

	return report
}

// missingPrimaryKeyFields returns the primary-key components absent or null
// in the row. Primary-key fields are implicitly required, regardless of the
// field's own required constraint.
func missingPrimaryKeyFields(res *schema.Resource, row dataset.Row) []string {
	var missing []string
	for _, name := range res.Schema.PrimaryKey {
		if dataset.IsNull(row[name]) {
			missing = append(missing, name)
		}
	}
	return missing
}

// uniquenessTuples lists the field tuples whose values must be unique across
// the table: the primary key, plus every unique-constrained field that is not
// itself the whole primary key (so a unique single-field primary key is only
// checked once).
func uniquenessTuples(res *schema.Resource) [][]string {
	var tuples [][]string
	if len(res.Schema.PrimaryKey) > 0 {
		tuples = append(tuples, res.Schema.PrimaryKey)
	}
	for _, field := range res.Schema.Fields {
		if !field.Constraints.Unique {
			continue
		}
		if len(res.Schema.PrimaryKey) == 1 && res.Schema.PrimaryKey[0] == field.Name {
			continue
		}
		tuples = append(tuples, []string{field.Name})
	}
	return tuples
}

// checkUniqueness flags the second and subsequent rows sharing a key tuple.
// The first occurrence is never flagged; every duplicate entry names the
// indices of all conflicting rows. Rows with a null tuple component are
// skipped: nulls are the business of the presence and primary-key checks.
func checkUniqueness(resource string, fields []string, table dataset.Table) []Entry {
	occurrences := make(map[string][]int)
	order := make([]string, 0, len(table))

	for i, row := range table {
		key, ok := tupleKey(fields, row)
		if !ok {
			continue
		}
		if _, seen := occurrences[key]; !seen {
			order = append(order, key)
		}
		occurrences[key] = append(occurrences[key], i)
	}

	var entries []Entry
	for _, key := range order {
		indices := occurrences[key]
		if len(indices) < 2 {
			continue
		}
		display := strings.ReplaceAll(key, "\x1f", ", ")
		for _, dup := range indices[1:] {
			entries = append(entries, Entry{
				Kind:     KindDuplicateKey,
				Severity: SeverityError,
				Resource: resource,
				RowIndex: rowIndex(dup),
				Field:    strings.Join(fields, ", "),
				Message: fmt.Sprintf("duplicate key (%s) over (%s), conflicting rows %s",
					display, strings.Join(fields, ", "), formatIndices(indices)),
			})
		}
	}
	return entries
}

// tupleKey builds the canonical lookup key for a row's field tuple, reporting
// false when any component is null.
func tupleKey(fields []string, row dataset.Row) (string, bool) {
	parts := make([]string, len(fields))
	for i, name := range fields {
		v := row[name]
		if dataset.IsNull(v) {
			return "", false
		}
		parts[i] = dataset.Canonical(v)
	}
	return strings.Join(parts, "\x1f"), true
}

func formatIndices(indices []int) string {
	parts := make([]string, len(indices))
	for i, idx := range indices {
		parts[i] = fmt.Sprintf("%d", idx)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
