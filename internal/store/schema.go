package store

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/agentstation/playmap/pkg/errors"
)

const schemaURL = "https://playmap.local/schema/catalog.schema.json"

//go:embed schema/catalog.schema.json
var catalogSchema []byte

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaErr      error
)

func documentSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		c := jsonschema.NewCompiler()
		c.Draft = jsonschema.Draft2020
		if err := c.AddResource(schemaURL, bytes.NewReader(catalogSchema)); err != nil {
			schemaErr = err
			return
		}
		compiledSchema, schemaErr = c.Compile(schemaURL)
	})
	return compiledSchema, schemaErr
}

// ValidateJSON checks a JSON catalog document against the document schema.
func ValidateJSON(data []byte, name string) error {
	schema, err := documentSchema()
	if err != nil {
		return errors.NewConfigError("catalog schema", "cannot compile", err)
	}
	var v any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		return errors.NewParseError("json", name, "invalid catalog document", err)
	}
	if err := schema.Validate(v); err != nil {
		return errors.NewParseError("json", name, "document does not match the catalog schema", err)
	}
	return nil
}
