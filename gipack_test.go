package gipack

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gipack/gipack/internal/dataset"
	"github.com/gipack/gipack/internal/validate"
)

const testSchemaJSON = `{
  "resources": [
    {
      "name": "Projects",
      "schema": {
        "fields": [
          {"name": "project_uid", "type": "string", "constraints": {"required": true, "unique": true}},
          {"name": "crs_wkt", "type": "string", "format": "wkt", "constraints": {"required": true}}
        ],
        "primaryKey": ["project_uid"]
      }
    },
    {
      "name": "Locations",
      "schema": {
        "fields": [
          {"name": "location_uid", "type": "string", "constraints": {"required": true}},
          {"name": "project_uid", "type": "string", "constraints": {"required": true}},
          {"name": "depth_to_base", "type": "number", "constraints": {"minimum": 0}}
        ],
        "primaryKey": ["location_uid"],
        "foreignKeys": [
          {"fields": ["project_uid"], "reference": {"resource": "Projects", "fields": ["project_uid"]}}
        ]
      }
    }
  ]
}`

const validProjectWKT = `PROJCS["HK1980 Grid System",GEOGCS["Hong Kong 1980",DATUM["Hong_Kong_1980",SPHEROID["International 1924",6378388,297]]]]`

func TestValidateCleanDataset(t *testing.T) {
	doc, err := ParseSchema([]byte(testSchemaJSON))
	if err != nil {
		t.Fatalf("ParseSchema failed: %v", err)
	}

	ds := dataset.Dataset{
		"Projects": {
			{"project_uid": "P1", "crs_wkt": validProjectWKT},
		},
		"Locations": {
			{"location_uid": "L1", "project_uid": "P1", "depth_to_base": 25.0},
			{"location_uid": "L2", "project_uid": "P1"},
		},
	}

	report := Validate(doc, ds, nil)
	if !report.IsValid() {
		t.Fatalf("expected valid dataset, got entries: %v", report.Entries)
	}
	if len(report.Entries) != 0 {
		t.Errorf("expected no entries, got %v", report.Entries)
	}
	if report.RunID == "" {
		t.Error("expected a run ID")
	}
}

func TestValidateCollectsEverything(t *testing.T) {
	doc, err := ParseSchema([]byte(testSchemaJSON))
	if err != nil {
		t.Fatalf("ParseSchema failed: %v", err)
	}

	ds := dataset.Dataset{
		"Projects": {
			{"project_uid": "P1"}, // missing required crs_wkt
		},
		"Locations": {
			{"location_uid": "L1", "project_uid": "P2", "depth_to_base": -3.0}, // dangling FK, negative depth
			{"location_uid": "L1", "project_uid": "P1"},                        // duplicate key
		},
		"Boreholes": { // not in schema
			{"borehole_uid": "B1"},
		},
	}

	report := Validate(doc, ds, nil)
	if report.IsValid() {
		t.Fatal("expected invalid dataset")
	}

	kinds := make(map[validate.Kind]int)
	for _, e := range report.Entries {
		kinds[e.Kind]++
	}

	want := map[validate.Kind]int{
		validate.KindMissingRequired:   1,
		validate.KindOutOfRange:        1,
		validate.KindDuplicateKey:      1,
		validate.KindDanglingReference: 1,
		validate.KindUnknownResource:   1,
	}
	for kind, count := range want {
		if kinds[kind] != count {
			t.Errorf("expected %d %s entries, got %d", count, kind, kinds[kind])
		}
	}

	// One full pass collects everything: 4 errors plus the warning.
	if report.ErrorCount() != 4 {
		t.Errorf("expected 4 errors, got %d", report.ErrorCount())
	}
	if report.WarningCount() != 1 {
		t.Errorf("expected 1 warning, got %d", report.WarningCount())
	}
}

func TestValidateIdempotent(t *testing.T) {
	doc, err := ParseSchema([]byte(testSchemaJSON))
	if err != nil {
		t.Fatalf("ParseSchema failed: %v", err)
	}

	ds := dataset.Dataset{
		"Projects": {{"project_uid": "P1"}},
		"Locations": {
			{"location_uid": "L1", "project_uid": "P9"},
		},
	}

	first := Validate(doc, ds, nil)
	second := Validate(doc, ds, nil)

	if len(first.Entries) != len(second.Entries) {
		t.Fatalf("reports differ: %d vs %d entries", len(first.Entries), len(second.Entries))
	}
	for i := range first.Entries {
		a, b := first.Entries[i], second.Entries[i]
		if a.Kind != b.Kind || a.Resource != b.Resource || a.Message != b.Message {
			t.Errorf("entry %d differs: %v vs %v", i, a, b)
		}
	}
}

func TestValidateResourceSelection(t *testing.T) {
	doc, err := ParseSchema([]byte(testSchemaJSON))
	if err != nil {
		t.Fatalf("ParseSchema failed: %v", err)
	}

	ds := dataset.Dataset{
		"Projects": {{"project_uid": "P1", "crs_wkt": validProjectWKT}},
		"Locations": {
			{"location_uid": "L1", "project_uid": "P9"}, // dangling, but excluded below
		},
	}

	report := Validate(doc, ds, &Options{ExcludeResources: []string{"Locations"}})
	if !report.IsValid() {
		t.Errorf("expected excluded resource to be skipped, got %v", report.Entries)
	}

	report = Validate(doc, ds, &Options{Resources: []string{"Locations"}})
	if report.IsValid() {
		t.Error("expected Locations problems to be reported when selected")
	}
}

func TestMergeDatasets(t *testing.T) {
	a := dataset.Dataset{"Projects": {{"project_uid": "P1"}}}
	b := dataset.Dataset{"Projects": {{"project_uid": "P1"}, {"project_uid": "P2"}}}

	merged := MergeDatasets(a, b)
	if got := len(merged["Projects"]); got != 2 {
		t.Errorf("expected 2 rows after merge, got %d", got)
	}
}

func TestValidateFiles(t *testing.T) {
	dir := t.TempDir()

	schemaPath := filepath.Join(dir, "datapackage.json")
	if err := os.WriteFile(schemaPath, []byte(testSchemaJSON), 0o644); err != nil {
		t.Fatal(err)
	}

	datasetPath := filepath.Join(dir, "data.json")
	data := `{
	  "Projects": [{"project_uid": "P1", "crs_wkt": "POINT (0 0)"}],
	  "Locations": [{"location_uid": "L1", "project_uid": "P1"}]
	}`
	if err := os.WriteFile(datasetPath, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	report, err := ValidateFiles(schemaPath, datasetPath)
	if err != nil {
		t.Fatalf("ValidateFiles failed: %v", err)
	}
	if !report.IsValid() {
		t.Errorf("expected valid dataset, got %v", report.Entries)
	}
}

func TestValidateFilesCSVDirectory(t *testing.T) {
	dir := t.TempDir()
	dataDir := filepath.Join(dir, "data")
	if err := os.Mkdir(dataDir, 0o755); err != nil {
		t.Fatal(err)
	}

	schemaPath := filepath.Join(dir, "datapackage.json")
	if err := os.WriteFile(schemaPath, []byte(testSchemaJSON), 0o644); err != nil {
		t.Fatal(err)
	}

	csvs := map[string]string{
		"Projects.csv":  "project_uid,crs_wkt\nP1,POINT (0 0)\n",
		"Locations.csv": "location_uid,project_uid,depth_to_base\nL1,P1,25.0\nL2,P2,\n",
	}
	for name, content := range csvs {
		if err := os.WriteFile(filepath.Join(dataDir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	report, err := ValidateFiles(schemaPath, dataDir)
	if err != nil {
		t.Fatalf("ValidateFiles failed: %v", err)
	}

	// L2 references project P2, which does not exist.
	if report.IsValid() {
		t.Fatal("expected dangling reference to be reported")
	}
	if report.ErrorCount() != 1 {
		t.Errorf("expected exactly 1 error, got %d: %v", report.ErrorCount(), report.Entries)
	}
	if report.Entries[len(report.Entries)-1].Kind != validate.KindDanglingReference {
		t.Errorf("expected DanglingReference, got %v", report.Entries)
	}
}

func TestValidateFilesNoInputs(t *testing.T) {
	if _, err := ValidateFiles(""); err == nil {
		t.Error("expected error when no dataset inputs are given")
	}
}

func TestDefaultSchemaUsable(t *testing.T) {
	doc, err := DefaultSchema()
	if err != nil {
		t.Fatalf("DefaultSchema failed: %v", err)
	}

	ds := dataset.Dataset{
		"Projects": {
			{"project_uid": "P1", "project_source_id": "HK-2024-001", "crs_wkt": validProjectWKT},
		},
		"Locations": {
			{
				"location_uid": "L1", "project_uid": "P1", "location_source_id": "BH-01",
				"location_type": "borehole", "easting": 836574.0, "northing": 817068.0,
				"ground_level_elevation": 4.5, "depth_to_base": 40.0,
			},
		},
	}

	report := Validate(doc, ds, nil)
	if !report.IsValid() {
		t.Errorf("expected bundled schema to accept well-formed GI data, got %v", report.Entries)
	}
}
