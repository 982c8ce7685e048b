package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ReadCSV decodes one resource table from r. The first record is the header
// row naming the fields; every following record becomes a row. Empty cells
// are loaded as null. Values stay strings; type coercion happens during
// validation against the declared field types.
func ReadCSV(r io.Reader) (Table, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	// Tolerate ragged rows; missing cells load as null.
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("CSV input is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	var table Table
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV record: %w", err)
		}

		row := make(Row, len(header))
		for i, name := range header {
			if i >= len(record) || record[i] == "" {
				row[name] = nil
				continue
			}
			row[name] = record[i]
		}
		table = append(table, row)
	}

	return table, nil
}

// LoadCSVDir reads every *.csv file in dir into a dataset. The file stem is
// the resource name ("Locations.csv" loads the "Locations" table), matching
// how tabular data packages lay out their resource files.
func LoadCSVDir(dir string) (Dataset, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".csv") {
			continue
		}
		names = append(names, entry.Name())
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("no CSV files found in %s", dir)
	}
	sort.Strings(names)

	ds := make(Dataset, len(names))
	for _, name := range names {
		resource := strings.TrimSuffix(name, filepath.Ext(name))

		f, err := os.Open(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", name, err)
		}
		table, err := ReadCSV(f)
		_ = f.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", name, err)
		}
		ds[resource] = table
	}

	return ds, nil
}
