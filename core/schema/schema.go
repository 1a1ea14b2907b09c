// Package schema validates protocol and artifact documents against the
// JSON schemas compiled into the binary.
package schema

import (
	_ "embed"
	"fmt"
	"sync"

	"github.com/kaptinlin/jsonschema"
)

//go:embed request.schema.json
var requestSchemaJSON []byte

//go:embed container.schema.json
var containerSchemaJSON []byte

var (
	compileOnce     sync.Once
	compileErr      error
	requestSchema   *jsonschema.Schema
	containerSchema *jsonschema.Schema
)

func compileSchemas() {
	compiler := jsonschema.NewCompiler()
	compiler.AssertFormat = true
	requestSchema, compileErr = compiler.Compile(requestSchemaJSON)
	if compileErr != nil {
		compileErr = fmt.Errorf("compile request schema: %w", compileErr)
		return
	}
	containerSchema, compileErr = compiler.Compile(containerSchemaJSON)
	if compileErr != nil {
		compileErr = fmt.Errorf("compile container schema: %w", compileErr)
	}
}

// ValidateRequest checks one protocol request line against the request schema.
func ValidateRequest(data []byte) error {
	compileOnce.Do(compileSchemas)
	if compileErr != nil {
		return compileErr
	}
	return validateJSON(requestSchema, data)
}

// ValidateContainer checks a serialized artifact container. Structural only;
// it never looks at the ciphertext content.
func ValidateContainer(data []byte) error {
	compileOnce.Do(compileSchemas)
	if compileErr != nil {
		return compileErr
	}
	return validateJSON(containerSchema, data)
}

func validateJSON(schema *jsonschema.Schema, data []byte) error {
	result := schema.ValidateJSON(data)
	if result.IsValid() {
		return nil
	}
	return fmt.Errorf("schema validation failed: %v", result.Errors)
}
