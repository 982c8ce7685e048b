// Package dataset holds the tabular data handed to the validators: rows of
// scalar values grouped into named tables. Loaders fill these structures from
// files or a database before validation; validators never mutate them.
package dataset

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Row maps field names to scalar values (string, float64, int64, bool or nil).
type Row map[string]any

// Table is an ordered sequence of rows conforming to one resource schema.
type Table []Row

// Dataset maps resource names to their tables. It may cover any subset of the
// resources a schema document declares.
type Dataset map[string]Table

// IsNull reports whether a value counts as absent: nil, or for values coming
// from CSV files, the empty string.
func IsNull(v any) bool {
	if v == nil {
		return true
	}
	s, ok := v.(string)
	return ok && s == ""
}

// Value returns the value for a field and whether the row carries it at all.
// A field present with a null value yields (nil, true).
func (r Row) Value(field string) (any, bool) {
	v, ok := r[field]
	return v, ok
}

// FieldNames returns the row's field names sorted alphabetically. Go map
// iteration is randomized, so every consumer that needs deterministic output
// goes through this.
func (r Row) FieldNames() []string {
	names := make([]string, 0, len(r))
	for name := range r {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Resources returns the dataset's resource names sorted alphabetically.
func (d Dataset) Resources() []string {
	names := make([]string, 0, len(d))
	for name := range d {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Merge concatenates the tables of two datasets into a new dataset, keeping
// target's rows first and dropping rows of incoming that are exact duplicates
// of a row already present in the same table. Resources unique to either side
// are carried over unchanged. Neither input is modified.
func Merge(target, incoming Dataset) Dataset {
	merged := make(Dataset, len(target)+len(incoming))

	for name, table := range target {
		merged[name] = append(Table(nil), table...)
	}

	for _, name := range incoming.Resources() {
		existing := merged[name]
		seen := make(map[string]bool, len(existing))
		for _, row := range existing {
			seen[fingerprint(row)] = true
		}
		for _, row := range incoming[name] {
			fp := fingerprint(row)
			if seen[fp] {
				continue
			}
			seen[fp] = true
			existing = append(existing, row)
		}
		merged[name] = existing
	}

	return merged
}

// fingerprint builds a canonical string identity for a row so duplicates can
// be detected across datasets loaded from different sources.
func fingerprint(r Row) string {
	var b strings.Builder
	for _, name := range r.FieldNames() {
		if IsNull(r[name]) {
			continue
		}
		b.WriteString(name)
		b.WriteByte('=')
		b.WriteString(Canonical(r[name]))
		b.WriteByte('\x1f')
	}
	return b.String()
}

// Canonical renders a scalar so that equal values compare equal regardless of
// the loader that produced them (JSON numbers arrive as float64, CSV values
// as strings).
func Canonical(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		// CSV carries numbers as strings; render them like the float64 case
		// so "25.0" and the JSON number 25 compare equal.
		if f, err := strconv.ParseFloat(x, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
			return strconv.FormatFloat(f, 'g', -1, 64)
		}
		return x
	case bool:
		return strconv.FormatBool(x)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	default:
		return fmt.Sprintf("%v", x)
	}
}
