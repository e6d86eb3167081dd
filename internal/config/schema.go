// Package config provides loading and validation for taskfile.yml.
package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Taskfile represents the complete taskfile.yml configuration.
type Taskfile struct {
	Project ProjectConfig      `yaml:"project"`
	Env     map[string]string  `yaml:"env,omitempty"`
	Vars    map[string]VarSpec `yaml:"vars,omitempty"`
	Targets []TargetEntry      `yaml:"targets,omitempty"`
	Release *ReleaseConfig     `yaml:"release,omitempty"`
}

// ProjectConfig contains project metadata.
type ProjectConfig struct {
	Name        string `yaml:"name,omitempty"`
	Description string `yaml:"description,omitempty"`
	Default     string `yaml:"default,omitempty"`
}

// VarSpec is a variable definition: either a literal value or a shell
// derivation whose captured stdout becomes the value.
//
// YAML forms:
//
//	src: "tutor tests"        # literal
//	version:
//	  shell: git describe     # derived
type VarSpec struct {
	Literal string
	Shell   string
}

// IsDerived reports whether the variable value comes from a capture command.
func (v VarSpec) IsDerived() bool {
	return v.Shell != ""
}

// UnmarshalYAML accepts both the scalar and the mapping form.
func (v *VarSpec) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		return node.Decode(&v.Literal)
	case yaml.MappingNode:
		var aux struct {
			Shell string `yaml:"shell"`
		}
		if err := node.Decode(&aux); err != nil {
			return err
		}
		if aux.Shell == "" {
			return fmt.Errorf("line %d: derived variable requires a non-empty 'shell' command", node.Line)
		}
		v.Shell = aux.Shell
		return nil
	default:
		return fmt.Errorf("line %d: variable must be a string or a mapping with 'shell'", node.Line)
	}
}

// CommandSpec is one command line of a target.
//
// YAML forms:
//
//	- python -m pytest tests              # plain
//	- cmd: git tag -d v${version}         # with failure suppression
//	  ignore_error: true
type CommandSpec struct {
	Cmd         string `yaml:"cmd"`
	IgnoreError bool   `yaml:"ignore_error,omitempty"`
}

// UnmarshalYAML accepts both the scalar and the mapping form.
func (c *CommandSpec) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		return node.Decode(&c.Cmd)
	case yaml.MappingNode:
		type plain CommandSpec
		var aux plain
		if err := node.Decode(&aux); err != nil {
			return err
		}
		if aux.Cmd == "" {
			return fmt.Errorf("line %d: command requires a non-empty 'cmd'", node.Line)
		}
		*c = CommandSpec(aux)
		return nil
	default:
		return fmt.Errorf("line %d: command must be a string or a mapping with 'cmd'", node.Line)
	}
}

// TargetEntry is one item of the ordered targets list: either an executable
// target or a section header used purely for grouping in help output.
type TargetEntry struct {
	Section string
	Name    string
	Desc    string
	Deps    []string
	Cmds    []CommandSpec
}

// IsSection reports whether the entry is a section header pseudo-entry.
func (e TargetEntry) IsSection() bool {
	return e.Section != ""
}

// UnmarshalYAML decodes either form and rejects entries that are both or
// neither.
func (e *TargetEntry) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: target entry must be a mapping", node.Line)
	}

	var aux struct {
		Section string        `yaml:"section"`
		Name    string        `yaml:"name"`
		Desc    string        `yaml:"desc"`
		Deps    []string      `yaml:"deps"`
		Cmds    []CommandSpec `yaml:"cmds"`
	}
	if err := node.Decode(&aux); err != nil {
		return err
	}

	if aux.Section != "" && aux.Name != "" {
		return fmt.Errorf("line %d: entry cannot be both a section and a target", node.Line)
	}
	if aux.Section == "" && aux.Name == "" {
		return fmt.Errorf("line %d: entry requires 'name' or 'section'", node.Line)
	}

	e.Section = aux.Section
	e.Name = aux.Name
	e.Desc = aux.Desc
	e.Deps = aux.Deps
	e.Cmds = aux.Cmds
	return nil
}

// ReleaseConfig configures the generated release workflow targets.
type ReleaseConfig struct {
	VersionCmd string `yaml:"version_cmd"`
	TagFormat  string `yaml:"tag_format,omitempty"`
	Remote     string `yaml:"remote,omitempty"`
	Artifact   string `yaml:"artifact"`
	PackageCmd string `yaml:"package_cmd"`
	CheckCmd   string `yaml:"check_cmd,omitempty"`
	CreateCmd  string `yaml:"create_cmd,omitempty"`
	UploadCmd  string `yaml:"upload_cmd,omitempty"`
}
