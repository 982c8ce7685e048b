package schema

import (
	"fmt"
	"os"
	"strings"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// Parse reads a schema document from JSON or YAML data and checks its
// internal consistency: unique resource and field names, primary-key fields
// that exist, foreign keys that point at declared resources and fields.
//
// Parse is pure. The returned Document is immutable and may be shared by any
// number of concurrent validation runs.
func Parse(data []byte) (*Document, error) {
	doc := &Document{}

	if looksLikeJSON(data) {
		if err := json.Unmarshal(data, doc); err != nil {
			return nil, &Error{Kind: KindMalformedDocument, Detail: "invalid JSON: " + err.Error(), Cause: err}
		}
	} else {
		if err := yaml.Unmarshal(data, doc); err != nil {
			return nil, &Error{Kind: KindMalformedDocument, Detail: "invalid YAML: " + err.Error(), Cause: err}
		}
	}

	if err := doc.check(); err != nil {
		return nil, err
	}

	doc.byName = make(map[string]*Resource, len(doc.Resources))
	for i := range doc.Resources {
		doc.byName[doc.Resources[i].Name] = &doc.Resources[i]
	}

	return doc, nil
}

// ParseFile reads and parses a schema document from disk.
func ParseFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema document: %w", err)
	}
	return Parse(data)
}

// looksLikeJSON sniffs the first non-whitespace byte. Data Package
// descriptors are JSON objects; anything else is handed to the YAML decoder.
func looksLikeJSON(data []byte) bool {
	trimmed := strings.TrimLeft(string(data), " \t\r\n")
	return strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[")
}

// check verifies the document invariants before the lookup index is built.
func (d *Document) check() error {
	if len(d.Resources) == 0 {
		return &Error{Kind: KindMalformedDocument, Detail: "document declares no resources"}
	}

	seen := make(map[string]bool, len(d.Resources))
	for i := range d.Resources {
		res := &d.Resources[i]
		if res.Name == "" {
			return &Error{Kind: KindMalformedDocument, Detail: fmt.Sprintf("resource %d has no name", i)}
		}
		if seen[res.Name] {
			return &Error{Kind: KindDuplicateResource, Resource: res.Name, Detail: "resource declared more than once"}
		}
		seen[res.Name] = true

		if err := res.check(); err != nil {
			return err
		}
	}

	// Foreign keys can only be resolved once every resource name is known.
	for i := range d.Resources {
		res := &d.Resources[i]
		for _, fk := range res.Schema.ForeignKeys {
			if err := d.checkForeignKey(res, fk); err != nil {
				return err
			}
		}
	}

	return nil
}

func (r *Resource) check() error {
	fields := make(map[string]bool, len(r.Schema.Fields))
	for _, f := range r.Schema.Fields {
		if f.Name == "" {
			return &Error{Kind: KindMalformedDocument, Resource: r.Name, Detail: "field with empty name"}
		}
		if fields[f.Name] {
			return &Error{Kind: KindDuplicateField, Resource: r.Name, Detail: fmt.Sprintf("field %q declared more than once", f.Name)}
		}
		fields[f.Name] = true

		if !KnownType(f.Type) {
			return &Error{Kind: KindUnknownFieldType, Resource: r.Name, Detail: fmt.Sprintf("field %q has unknown type %q", f.Name, f.Type)}
		}
	}

	for _, pk := range r.Schema.PrimaryKey {
		if !fields[pk] {
			return &Error{Kind: KindUnknownPrimaryKeyField, Resource: r.Name, Detail: fmt.Sprintf("primary key field %q is not declared", pk)}
		}
	}

	return nil
}

func (d *Document) checkForeignKey(local *Resource, fk ForeignKey) error {
	if len(fk.Fields) == 0 {
		return &Error{Kind: KindDanglingForeignKey, Resource: local.Name, Detail: "foreign key with no local fields"}
	}
	if len(fk.Fields) != len(fk.Reference.Fields) {
		return &Error{
			Kind:     KindDanglingForeignKey,
			Resource: local.Name,
			Detail: fmt.Sprintf("foreign key (%s) has %d local fields but references %d fields in %q",
				strings.Join(fk.Fields, ", "), len(fk.Fields), len(fk.Reference.Fields), fk.Reference.Resource),
		}
	}

	for _, name := range fk.Fields {
		if !local.HasField(name) {
			return &Error{
				Kind:     KindDanglingForeignKey,
				Resource: local.Name,
				Detail:   fmt.Sprintf("foreign key field %q is not declared", name),
			}
		}
	}

	var target *Resource
	for i := range d.Resources {
		if d.Resources[i].Name == fk.Reference.Resource {
			target = &d.Resources[i]
			break
		}
	}
	if target == nil {
		return &Error{
			Kind:     KindDanglingForeignKey,
			Resource: local.Name,
			Detail:   fmt.Sprintf("foreign key references undeclared resource %q", fk.Reference.Resource),
		}
	}

	for _, name := range fk.Reference.Fields {
		if !target.HasField(name) {
			return &Error{
				Kind:     KindDanglingForeignKey,
				Resource: local.Name,
				Detail:   fmt.Sprintf("foreign key references undeclared field %q in resource %q", name, target.Name),
			}
		}
	}

	return nil
}
