package ml

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

//go:embed artifact.schema.json
var artifactSchemaJSON []byte

const artifactSchemaURL = "schema://riskengine/artifact.json"

var (
	artifactSchemaOnce sync.Once
	artifactSchema     *jsonschema.Schema
	artifactSchemaErr  error
)

func compiledArtifactSchema() (*jsonschema.Schema, error) {
	artifactSchemaOnce.Do(func() {
		var doc any
		if err := json.Unmarshal(artifactSchemaJSON, &doc); err != nil {
			artifactSchemaErr = fmt.Errorf("parse artifact schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource(artifactSchemaURL, doc); err != nil {
			artifactSchemaErr = fmt.Errorf("add artifact schema: %w", err)
			return
		}
		artifactSchema, artifactSchemaErr = c.Compile(artifactSchemaURL)
	})
	return artifactSchema, artifactSchemaErr
}

// validateArtifactJSON checks raw artifact bytes against the embedded schema.
func validateArtifactJSON(raw []byte) error {
	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	schema, err := compiledArtifactSchema()
	if err != nil {
		return err
	}
	if err := schema.Validate(parsed); err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}
	return nil
}
