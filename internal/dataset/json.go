package dataset

import (
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-json"
)

// ReadJSON decodes a dataset from r. The expected shape is a JSON object
// mapping resource names to arrays of row objects:
//
//	{"Projects": [{"project_uid": "P1", ...}], "Locations": [...]}
//
// Numbers decode as float64, which the validators coerce against the declared
// field types.
func ReadJSON(r io.Reader) (Dataset, error) {
	var ds Dataset
	dec := json.NewDecoder(r)
	if err := dec.Decode(&ds); err != nil {
		return nil, fmt.Errorf("failed to decode dataset JSON: %w", err)
	}
	return ds, nil
}

// LoadJSONFile reads a dataset from a JSON file on disk.
func LoadJSONFile(path string) (Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset file: %w", err)
	}
	defer func() { _ = f.Close() }()

	ds, err := ReadJSON(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return ds, nil
}
