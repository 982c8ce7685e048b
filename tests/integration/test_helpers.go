//go:build integration
// +build integration

package integration

// testSchemaJSON is the schema document shared by the integration tests: one
// project table referenced by one location table.
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
