package validate

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/gipack/gipack/internal/dataset"
	"github.com/gipack/gipack/internal/schema"
)

// Field runs every applicable check on a single value against its field
// declaration and returns all failures, not just the first. Entries come back
// without resource or row position; the table pass stamps those on.
//
// Check order: presence, then type, then format, then numeric bounds. An
// absent optional value short-circuits with no findings. Uniqueness is a
// table-wide property and lives in Table, not here.
func Field(f schema.Field, value any) []Entry {
	if dataset.IsNull(value) {
		if f.Constraints.Required {
			return []Entry{{
				Kind:     KindMissingRequired,
				Severity: SeverityError,
				Field:    f.Name,
				Message:  fmt.Sprintf("required field %q is missing or null", f.Name),
			}}
		}
		return nil
	}

	var entries []Entry

	if !conformsToType(f.Type, value) {
		entries = append(entries, Entry{
			Kind:     KindTypeMismatch,
			Severity: SeverityError,
			Field:    f.Name,
			Message:  fmt.Sprintf("value %v is not a valid %s", value, f.Type),
		})
	}

	if f.Format == schema.FormatWKT {
		s, ok := value.(string)
		if !ok || !ValidWKT(s) {
			entries = append(entries, Entry{
				Kind:     KindFormatMismatch,
				Severity: SeverityError,
				Field:    f.Name,
				Message:  fmt.Sprintf("field %q is not valid Well-Known Text", f.Name),
			})
		}
	}

	entries = append(entries, checkBounds(f, value)...)

	return entries
}

// conformsToType reports whether value is coercible to the declared type
// without loss. CSV loaders hand over strings, JSON loaders hand over
// float64/bool/string; both must land on the same verdict.
func conformsToType(t schema.FieldType, value any) bool {
	switch t {
	case schema.TypeString:
		_, ok := value.(string)
		return ok
	case schema.TypeInteger:
		return isInteger(value)
	case schema.TypeNumber:
		_, ok := asNumber(value)
		return ok
	case schema.TypeBoolean:
		return isBoolean(value)
	case schema.TypeDate:
		s, ok := value.(string)
		return ok && isDate(s)
	}
	return false
}

// asNumber coerces a scalar to float64 for bound comparisons.
func asNumber(value any) (float64, bool) {
	switch x := value.(type) {
	case float64:
		return x, true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		return f, err == nil
	}
	return 0, false
}

// isInteger accepts integral numbers only: float64 values with no fractional
// part (JSON has a single number type) and strings parsing as base-10 ints.
func isInteger(value any) bool {
	switch x := value.(type) {
	case int, int64:
		return true
	case float64:
		return x == math.Trunc(x) && !math.IsInf(x, 0)
	case string:
		_, err := strconv.ParseInt(strings.TrimSpace(x), 10, 64)
		return err == nil
	}
	return false
}

func isBoolean(value any) bool {
	switch x := value.(type) {
	case bool:
		return true
	case string:
		_, err := strconv.ParseBool(strings.TrimSpace(x))
		return err == nil
	}
	return false
}

var dateLayouts = []string{"2006-01-02", time.RFC3339}

func isDate(s string) bool {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if _, err := time.Parse(layout, s); err == nil {
			return true
		}
	}
	return false
}

// checkBounds applies the declared numeric bounds with exact real-number
// comparisons, strict for the exclusive variants and inclusive otherwise.
// Non-numeric values are skipped here; the type check already flagged them.
func checkBounds(f schema.Field, value any) []Entry {
	c := f.Constraints
	if c.Minimum == nil && c.Maximum == nil && c.ExclusiveMinimum == nil && c.ExclusiveMaximum == nil {
		return nil
	}

	n, ok := asNumber(value)
	if !ok {
		return nil
	}

	var entries []Entry
	outOfRange := func(format string, bound float64) {
		entries = append(entries, Entry{
			Kind:     KindOutOfRange,
			Severity: SeverityError,
			Field:    f.Name,
			Message:  fmt.Sprintf("field %q: "+format, f.Name, n, bound),
		})
	}

	if c.Minimum != nil && n < *c.Minimum {
		outOfRange("value %v is below minimum %v", *c.Minimum)
	}
	if c.ExclusiveMinimum != nil && n <= *c.ExclusiveMinimum {
		outOfRange("value %v must be greater than %v", *c.ExclusiveMinimum)
	}
	if c.Maximum != nil && n > *c.Maximum {
		outOfRange("value %v is above maximum %v", *c.Maximum)
	}
	if c.ExclusiveMaximum != nil && n >= *c.ExclusiveMaximum {
		outOfRange("value %v must be less than %v", *c.ExclusiveMaximum)
	}

	return entries
}
