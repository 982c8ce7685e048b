package validate

import (
	"fmt"
	"strings"

	"github.com/gipack/gipack/internal/dataset"
	"github.com/gipack/gipack/internal/schema"
)

// Relations validates cross-table foreign-key integrity for every resource
// present in both the schema document and the dataset. Each foreign key is
// checked independently against a precomputed key set of the referenced
// table, so reference cycles between resources need no special handling.
//
// Rows with any null local foreign-key field are skipped: a null foreign key
// means "no reference", and a null that should not be there was already
// reported by the field pass when the field is required.
func Relations(doc *schema.Document, ds dataset.Dataset) *Report {
	return RelationsFor(doc, ds, nil)
}

// RelationsFor is Relations restricted to the named referencing resources.
// Key sets are still built from the full dataset, so excluding a resource
// from validation does not hide it as a foreign-key target. A nil set checks
// every resource.
func RelationsFor(doc *schema.Document, ds dataset.Dataset, only map[string]bool) *Report {
	report := NewReport()

	for i := range doc.Resources {
		res := &doc.Resources[i]
		if only != nil && !only[res.Name] {
			continue
		}
		table, ok := ds[res.Name]
		if !ok {
			continue
		}

		for _, fk := range res.Schema.ForeignKeys {
			report.Append(checkForeignKey(res.Name, fk, table, ds)...)
		}
	}

	return report
}

func checkForeignKey(resource string, fk schema.ForeignKey, table dataset.Table, ds dataset.Dataset) []Entry {
	referenced, ok := ds[fk.Reference.Resource]
	if !ok {
		// Without the referenced table every reference through this key is
		// unresolvable; report the constraint once instead of once per row.
		return []Entry{{
			Kind:     KindReferencedResourceMissing,
			Severity: SeverityError,
			Resource: resource,
			Field:    strings.Join(fk.Fields, ", "),
			Message: fmt.Sprintf("foreign key (%s) references resource %q, which is absent from the dataset",
				strings.Join(fk.Fields, ", "), fk.Reference.Resource),
		}}
	}

	keys := keySet(fk.Reference.Fields, referenced)

	var entries []Entry
	for i, row := range table {
		key, ok := tupleKey(fk.Fields, row)
		if !ok {
			continue
		}
		if keys[key] {
			continue
		}
		entries = append(entries, Entry{
			Kind:     KindDanglingReference,
			Severity: SeverityError,
			Resource: resource,
			RowIndex: rowIndex(i),
			Field:    strings.Join(fk.Fields, ", "),
			Message: fmt.Sprintf("value (%s) in (%s) has no matching row in %q",
				strings.ReplaceAll(key, "\x1f", ", "), strings.Join(fk.Fields, ", "), fk.Reference.Resource),
		})
	}

	return entries
}

// keySet collects the key tuples present in the referenced table. Building it
// once keeps each foreign-key check at O(rows) with constant-time lookups.
func keySet(fields []string, table dataset.Table) map[string]bool {
	keys := make(map[string]bool, len(table))
	for _, row := range table {
		if key, ok := tupleKey(fields, row); ok {
			keys[key] = true
		}
	}
	return keys
}
