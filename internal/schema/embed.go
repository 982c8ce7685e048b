package schema

import (
	_ "embed"
	"sync"
)

//go:embed default_schema.json
var defaultSchemaJSON []byte

var (
	defaultOnce sync.Once
	defaultDoc  *Document
	defaultErr  error
)

// Default returns the bundled ground-investigation schema document
// (Projects, Locations, Samples, in-situ and rock tests). It is parsed once
// and shared; callers must treat it as read-only.
func Default() (*Document, error) {
	defaultOnce.Do(func() {
		defaultDoc, defaultErr = Parse(defaultSchemaJSON)
	})
	return defaultDoc, defaultErr
}
