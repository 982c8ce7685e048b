// Package gipack validates relational data packages of ground-investigation
// data against a declarative schema document.
//
// A schema document follows the Data Package / Table Schema convention: a set
// of resources (tables), each with typed fields, field constraints, a primary
// key and foreign keys. The document is parsed once into an immutable schema
// graph; datasets are then checked against it in three passes: per-field
// type/format/range/presence, per-table key uniqueness, and cross-table
// referential integrity. Every finding is collected into a single report, so
// one run always shows the complete picture.
//
// # Quick Start
//
//	doc, err := gipack.ParseSchemaFile("datapackage.json")
//	if err != nil {
//		log.Fatal(err) // the schema itself is broken
//	}
//	ds, err := gipack.LoadDataset("gi-data/") // directory of CSVs, or a JSON file
//	if err != nil {
//		log.Fatal(err)
//	}
//	report := gipack.Validate(doc, ds, nil)
//	if !report.IsValid() {
//		// inspect report.Entries
//	}
//
// # Schema documents
//
// JSON and YAML documents are accepted. ParseSchemaFile fails with a
// *schema.Error when the document is malformed or internally inconsistent
// (duplicate resources, unknown primary-key fields, dangling foreign keys);
// data problems never abort a run. A bundled schema for common
// ground-investigation tables (Projects, Locations, Samples, in-situ and
// rock tests) is available through DefaultSchema.
//
// # Datasets
//
// A dataset maps resource names to row sequences. LoadDataset reads either a
// directory of per-resource CSV files or a single JSON file; Merge combines
// datasets from several sources before validation, dropping exact duplicate
// rows.
package gipack

import (
	"fmt"
	"os"
	"strings"

	"github.com/gipack/gipack/internal/dataset"
	"github.com/gipack/gipack/internal/schema"
	"github.com/gipack/gipack/internal/validate"
)

// Options configures a validation run.
//
// All fields are optional. If not specified, every resource present in both
// the schema document and the dataset is validated. If both Resources and
// ExcludeResources are set, Resources is applied first, then exclusions.
type Options struct {
	// Resources limits validation to the named resources.
	// Example: []string{"Projects", "Locations"}
	Resources []string

	// ExcludeResources skips the named resources.
	ExcludeResources []string
}

// ParseSchema parses a schema document from JSON or YAML data.
func ParseSchema(data []byte) (*schema.Document, error) {
	return schema.Parse(data)
}

// ParseSchemaFile parses a schema document from a file on disk.
func ParseSchemaFile(path string) (*schema.Document, error) {
	return schema.ParseFile(path)
}

// DefaultSchema returns the bundled ground-investigation schema document.
func DefaultSchema() (*schema.Document, error) {
	return schema.Default()
}

// LoadDataset reads tabular data from path: a directory is treated as a set
// of per-resource CSV files (file stem = resource name), anything else as a
// JSON dataset file mapping resource names to row arrays.
func LoadDataset(path string) (dataset.Dataset, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat dataset input: %w", err)
	}
	if info.IsDir() {
		return dataset.LoadCSVDir(path)
	}
	return dataset.LoadJSONFile(path)
}

// MergeDatasets concatenates the tables of several datasets in order,
// dropping rows that duplicate one already merged. Use it to combine data
// from multiple source files before a single validation run.
func MergeDatasets(datasets ...dataset.Dataset) dataset.Dataset {
	merged := dataset.Dataset{}
	for _, ds := range datasets {
		merged = dataset.Merge(merged, ds)
	}
	return merged
}

// Validate runs the full pipeline: every resource present in both the schema
// document and the dataset is checked field by field and key by key, then all
// foreign keys are checked across tables. Dataset tables that the schema does
// not declare are reported as warnings.
//
// Validate never mutates its inputs and the same inputs always produce the
// same entries (modulo the report's run ID), so a report can be regenerated
// at will.
func Validate(doc *schema.Document, ds dataset.Dataset, opts *Options) *validate.Report {
	if opts == nil {
		opts = &Options{}
	}

	selected := selectResources(doc, opts)

	report := validate.NewReport()

	for _, name := range ds.Resources() {
		if doc.Resource(name) == nil {
			report.Append(validate.Entry{
				Kind:     validate.KindUnknownResource,
				Severity: validate.SeverityWarning,
				Resource: name,
				Message:  fmt.Sprintf("resource %q is not declared in the schema", name),
			})
		}
	}

	only := make(map[string]bool, len(selected))
	for _, res := range selected {
		only[res.Name] = true
		table, ok := ds[res.Name]
		if !ok {
			continue
		}
		report.Merge(validate.Table(res, table))
	}

	report.Merge(validate.RelationsFor(doc, ds, only))

	return report
}

// ValidateFiles is the one-call convenience: parse the schema document at
// schemaPath (empty means the bundled default), load and merge every dataset
// input, and validate.
func ValidateFiles(schemaPath string, inputs ...string) (*validate.Report, error) {
	var doc *schema.Document
	var err error
	if schemaPath == "" {
		doc, err = schema.Default()
	} else {
		doc, err = schema.ParseFile(schemaPath)
	}
	if err != nil {
		return nil, err
	}

	if len(inputs) == 0 {
		return nil, fmt.Errorf("no dataset inputs given")
	}

	merged := dataset.Dataset{}
	for _, input := range inputs {
		ds, err := LoadDataset(input)
		if err != nil {
			return nil, err
		}
		merged = dataset.Merge(merged, ds)
	}

	return Validate(doc, merged, nil), nil
}

// selectResources applies Options to the document's resource list, keeping
// document order.
func selectResources(doc *schema.Document, opts *Options) []*schema.Resource {
	include := make(map[string]bool, len(opts.Resources))
	for _, name := range opts.Resources {
		include[strings.TrimSpace(name)] = true
	}
	exclude := make(map[string]bool, len(opts.ExcludeResources))
	for _, name := range opts.ExcludeResources {
		exclude[strings.TrimSpace(name)] = true
	}

	var selected []*schema.Resource
	for i := range doc.Resources {
		res := &doc.Resources[i]
		if len(include) > 0 && !include[res.Name] {
			continue
		}
		if exclude[res.Name] {
			continue
		}
		selected = append(selected, res)
	}
	return selected
}
