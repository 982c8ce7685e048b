package schema

import "fmt"

// ErrorKind classifies why a schema document was rejected.
type ErrorKind string

const (
	// KindMalformedDocument means the input was not well-formed JSON or YAML.
	KindMalformedDocument ErrorKind = "MalformedDocument"
	// KindDuplicateResource means two resources share a name.
	KindDuplicateResource ErrorKind = "DuplicateResource"
	// KindDuplicateField means a resource declares the same field twice.
	KindDuplicateField ErrorKind = "DuplicateField"
	// KindUnknownFieldType means a field declares a type outside the closed set.
	KindUnknownFieldType ErrorKind = "UnknownFieldType"
	// KindUnknownPrimaryKeyField means a primaryKey entry is not a declared field.
	KindUnknownPrimaryKeyField ErrorKind = "UnknownPrimaryKeyField"
	// KindDanglingForeignKey means a foreign key references an undeclared
	// resource or field, or its local and referenced field counts differ.
	KindDanglingForeignKey ErrorKind = "DanglingForeignKey"
)

// Error is a fatal schema problem. A broken schema makes every downstream
// check meaningless, so Parse returns it instead of producing a document.
type Error struct {
	Kind     ErrorKind
	Resource string
	Detail   string
	Cause    error
}

func (e *Error) Error() string {
	if e.Resource != "" {
		return fmt.Sprintf("schema error (%s) in resource %q: %s", e.Kind, e.Resource, e.Detail)
	}
	return fmt.Sprintf("schema error (%s): %s", e.Kind, e.Detail)
}

func (e *Error) Unwrap() error {
	return e.Cause
}
