package dataset

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestMerge(t *testing.T) {
	target := Dataset{
		"Projects": {
			{"project_uid": "P1"},
		},
		"Locations": {
			{"location_uid": "L1", "project_uid": "P1"},
		},
	}
	incoming := Dataset{
		"Projects": {
			{"project_uid": "P1"}, // exact duplicate, dropped
			{"project_uid": "P2"},
		},
		"Samples": {
			{"sample_uid": "S1"},
		},
	}

	merged := Merge(target, incoming)

	if got := len(merged["Projects"]); got != 2 {
		t.Errorf("expected 2 project rows after dedupe, got %d", got)
	}
	if got := len(merged["Locations"]); got != 1 {
		t.Errorf("expected Locations carried over, got %d rows", got)
	}
	if got := len(merged["Samples"]); got != 1 {
		t.Errorf("expected Samples carried over, got %d rows", got)
	}

	// Target rows come first; incoming appends.
	if merged["Projects"][0]["project_uid"] != "P1" || merged["Projects"][1]["project_uid"] != "P2" {
		t.Errorf("unexpected project order: %v", merged["Projects"])
	}

	// Inputs must stay untouched.
	if len(target["Projects"]) != 1 || len(incoming["Projects"]) != 2 {
		t.Error("Merge mutated its inputs")
	}
}

func TestMergeEquivalentValuesAcrossLoaders(t *testing.T) {
	// The same row loaded from JSON (float64) and CSV (string) must dedupe,
	// including integral numbers that CSV spells with a decimal point.
	a := Dataset{"T": {{"id": "X", "depth": 2.5}, {"id": "Y", "depth": 25.0}}}
	b := Dataset{"T": {{"id": "X", "depth": "2.5"}, {"id": "Y", "depth": "25.0"}}}

	merged := Merge(a, b)
	if got := len(merged["T"]); got != 2 {
		t.Errorf("expected loader-equivalent rows to dedupe, got %d rows", got)
	}
}

func TestCanonical(t *testing.T) {
	tests := []struct {
		name string
		a, b any
	}{
		{"integral float vs decimal string", 25.0, "25.0"},
		{"integral float vs plain string", 25.0, "25"},
		{"fractional float vs string", 2.5, "2.5"},
		{"int64 vs string", int64(7), "7"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if ca, cb := Canonical(tt.a), Canonical(tt.b); ca != cb {
				t.Errorf("Canonical(%v) = %q, Canonical(%v) = %q, want equal", tt.a, ca, tt.b, cb)
			}
		})
	}

	// Non-numeric strings pass through untouched.
	if got := Canonical("P-001a"); got != "P-001a" {
		t.Errorf("Canonical(%q) = %q", "P-001a", got)
	}
}

func TestReadCSV(t *testing.T) {
	input := `sample_uid,location_uid,depth_to_top
S1,L1,1.5
S2,L1,
S3,,3.0
`
	table, err := ReadCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadCSV failed: %v", err)
	}

	if len(table) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(table))
	}
	if table[0]["sample_uid"] != "S1" || table[0]["depth_to_top"] != "1.5" {
		t.Errorf("unexpected first row: %v", table[0])
	}
	if table[1]["depth_to_top"] != nil {
		t.Errorf("empty cell should load as null, got %v", table[1]["depth_to_top"])
	}
	if table[2]["location_uid"] != nil {
		t.Errorf("empty cell should load as null, got %v", table[2]["location_uid"])
	}
}

func TestReadCSVEmptyInput(t *testing.T) {
	if _, err := ReadCSV(strings.NewReader("")); err == nil {
		t.Error("expected error for empty CSV input")
	}
}

func TestLoadCSVDir(t *testing.T) {
	dir := t.TempDir()

	writeFile(t, filepath.Join(dir, "Projects.csv"), "project_uid,crs_wkt\nP1,POINT (0 0)\n")
	writeFile(t, filepath.Join(dir, "Locations.csv"), "location_uid,project_uid\nL1,P1\nL2,P1\n")
	writeFile(t, filepath.Join(dir, "notes.txt"), "not a table")

	ds, err := LoadCSVDir(dir)
	if err != nil {
		t.Fatalf("LoadCSVDir failed: %v", err)
	}

	if len(ds) != 2 {
		t.Fatalf("expected 2 resources, got %v", ds.Resources())
	}
	if len(ds["Projects"]) != 1 || len(ds["Locations"]) != 2 {
		t.Errorf("unexpected row counts: Projects=%d Locations=%d", len(ds["Projects"]), len(ds["Locations"]))
	}
}

func TestLoadCSVDirEmpty(t *testing.T) {
	if _, err := LoadCSVDir(t.TempDir()); err == nil {
		t.Error("expected error for directory without CSV files")
	}
}

func TestReadJSON(t *testing.T) {
	input := `{
	  "Projects": [{"project_uid": "P1", "active": true}],
	  "Locations": [{"location_uid": "L1", "depth_to_base": 12.5}, {"location_uid": "L2", "depth_to_base": null}]
	}`

	ds, err := ReadJSON(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadJSON failed: %v", err)
	}

	if len(ds["Projects"]) != 1 || len(ds["Locations"]) != 2 {
		t.Fatalf("unexpected dataset shape: %v", ds)
	}
	if ds["Projects"][0]["active"] != true {
		t.Errorf("boolean not preserved: %v", ds["Projects"][0])
	}
	if ds["Locations"][0]["depth_to_base"] != 12.5 {
		t.Errorf("number not preserved: %v", ds["Locations"][0])
	}
	if !IsNull(ds["Locations"][1]["depth_to_base"]) {
		t.Errorf("null not preserved: %v", ds["Locations"][1])
	}
}

func TestReadJSONMalformed(t *testing.T) {
	if _, err := ReadJSON(strings.NewReader(`{"Projects": [`)); err == nil {
		t.Error("expected error for malformed JSON")
	}
}

func TestIsNull(t *testing.T) {
	if !IsNull(nil) || !IsNull("") {
		t.Error("nil and empty string count as null")
	}
	if IsNull("0") || IsNull(0.0) || IsNull(false) {
		t.Error("real values must not count as null")
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}
