package schema

// FieldType is the closed set of column types a schema document may declare.
type FieldType string

const (
	TypeString  FieldType = "string"
	TypeInteger FieldType = "integer"
	TypeNumber  FieldType = "number"
	TypeBoolean FieldType = "boolean"
	TypeDate    FieldType = "date"
)

// KnownType reports whether t is one of the declared field types.
func KnownType(t FieldType) bool {
	switch t {
	case TypeString, TypeInteger, TypeNumber, TypeBoolean, TypeDate:
		return true
	}
	return false
}

// FormatWKT marks a string field holding a Well-Known Text geometry or
// coordinate reference system description.
const FormatWKT = "wkt"

// Document is a parsed schema document: an ordered set of resources with
// unique names. It is immutable after Parse and safe to share between
// concurrent validation runs.
type Document struct {
	Resources []Resource `json:"resources" yaml:"resources"`

	byName map[string]*Resource
}

// Resource is one table definition within a schema document.
type Resource struct {
	Name   string      `json:"name" yaml:"name"`
	Schema TableSchema `json:"schema" yaml:"schema"`
}

// TableSchema declares the fields, primary key and foreign keys of a resource.
type TableSchema struct {
	Fields      []Field      `json:"fields" yaml:"fields"`
	PrimaryKey  []string     `json:"primaryKey,omitempty" yaml:"primaryKey,omitempty"`
	ForeignKeys []ForeignKey `json:"foreignKeys,omitempty" yaml:"foreignKeys,omitempty"`
}

// Field is a single column declaration.
type Field struct {
	Name        string         `json:"name" yaml:"name"`
	Type        FieldType      `json:"type" yaml:"type"`
	Format      string         `json:"format,omitempty" yaml:"format,omitempty"`
	Constraints Constraints    `json:"constraints,omitempty" yaml:"constraints,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// Constraints carries the supported Table Schema field constraints. Numeric
// bounds are pointers so that an absent bound and a zero bound stay distinct.
type Constraints struct {
	Required         bool     `json:"required,omitempty" yaml:"required,omitempty"`
	Unique           bool     `json:"unique,omitempty" yaml:"unique,omitempty"`
	Minimum          *float64 `json:"minimum,omitempty" yaml:"minimum,omitempty"`
	Maximum          *float64 `json:"maximum,omitempty" yaml:"maximum,omitempty"`
	ExclusiveMinimum *float64 `json:"exclusiveMinimum,omitempty" yaml:"exclusiveMinimum,omitempty"`
	ExclusiveMaximum *float64 `json:"exclusiveMaximum,omitempty" yaml:"exclusiveMaximum,omitempty"`
}

// ForeignKey declares that the local Fields reference Reference.Fields in
// Reference.Resource (many local rows to one referenced row).
type ForeignKey struct {
	Fields    []string  `json:"fields" yaml:"fields"`
	Reference Reference `json:"reference" yaml:"reference"`
}

// Reference is the target side of a foreign key.
type Reference struct {
	Resource string   `json:"resource" yaml:"resource"`
	Fields   []string `json:"fields" yaml:"fields"`
}

// Resource returns the resource with the given name, or nil if the document
// does not declare it.
func (d *Document) Resource(name string) *Resource {
	return d.byName[name]
}

// ForeignKeysOf returns the foreign keys declared on the named resource.
func (d *Document) ForeignKeysOf(name string) []ForeignKey {
	if r := d.byName[name]; r != nil {
		return r.Schema.ForeignKeys
	}
	return nil
}

// PrimaryKeyFields returns the ordered primary-key field names of the named
// resource.
func (d *Document) PrimaryKeyFields(name string) []string {
	if r := d.byName[name]; r != nil {
		return r.Schema.PrimaryKey
	}
	return nil
}

// Field returns the declared field with the given name, or nil.
func (r *Resource) Field(name string) *Field {
	for i := range r.Schema.Fields {
		if r.Schema.Fields[i].Name == name {
			return &r.Schema.Fields[i]
		}
	}
	return nil
}

// HasField reports whether the resource declares the named field.
func (r *Resource) HasField(name string) bool {
	return r.Field(name) != nil
}
