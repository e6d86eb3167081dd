package config

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"taskforge/internal/schema"
)

// Load reads, schema-validates, and parses a taskfile.
func Load(path string) (*Taskfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read taskfile: %w", err)
	}
	return Parse(data)
}

// Parse validates raw taskfile data against the embedded schema and decodes
// it into a Taskfile with defaults applied.
func Parse(data []byte) (*Taskfile, error) {
	if err := schema.ValidateTaskfile(data); err != nil {
		return nil, err
	}

	var tf Taskfile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&tf); err != nil {
		return nil, fmt.Errorf("failed to parse taskfile: %w", err)
	}

	applyDefaults(&tf)

	if err := Validate(&tf); err != nil {
		return nil, err
	}

	return &tf, nil
}
