// Package schema provides JSON schema validation for taskfile configuration.
package schema

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"gopkg.in/yaml.v3"

	schemafs "taskforge/schema"
)

var (
	taskfileSchema *jsonschema.Schema
	compileOnce    sync.Once
	compileErr     error
)

// compileSchema compiles the embedded taskfile schema once.
func compileSchema() error {
	compileOnce.Do(func() {
		compiler := jsonschema.NewCompiler()

		data, err := schemafs.FS.ReadFile("taskfile.schema.json")
		if err != nil {
			compileErr = fmt.Errorf("read taskfile schema: %w", err)
			return
		}

		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
		if err != nil {
			compileErr = fmt.Errorf("unmarshal taskfile schema: %w", err)
			return
		}

		if err := compiler.AddResource("taskfile.schema.json", doc); err != nil {
			compileErr = fmt.Errorf("add taskfile schema resource: %w", err)
			return
		}

		taskfileSchema, err = compiler.Compile("taskfile.schema.json")
		if err != nil {
			compileErr = fmt.Errorf("compile taskfile schema: %w", err)
			return
		}
	})

	return compileErr
}

// ValidateTaskfile validates raw YAML data against the taskfile schema.
func ValidateTaskfile(data []byte) error {
	if err := compileSchema(); err != nil {
		return err
	}

	var v any
	if err := yaml.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("invalid YAML: %w", err)
	}

	if err := taskfileSchema.Validate(normalize(v)); err != nil {
		return fmt.Errorf("taskfile validation failed: %w", err)
	}

	return nil
}

// normalize converts YAML-decoded values into the shape the schema validator
// expects. yaml.v3 decodes nested mappings as map[string]any already, but
// mapping keys inside sequences can surface as map[any]any on some inputs.
func normalize(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = normalize(item)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[fmt.Sprintf("%v", k)] = normalize(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = normalize(item)
		}
		return out
	default:
		return v
	}
}
