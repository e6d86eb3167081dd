package config

import (
	"regexp"

	"taskforge/internal/errors"
)

// varNameRegex restricts variable names to identifiers usable in ${name}
// references.
var varNameRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Validate performs semantic checks that the JSON schema cannot express.
// Duplicate target names and unknown prerequisites are deliberately left to
// the registry and resolver so those failures carry their own error types.
func Validate(tf *Taskfile) error {
	for name := range tf.Vars {
		if !varNameRegex.MatchString(name) {
			return errors.Configf("invalid variable name %q: must match %s", name, varNameRegex)
		}
	}

	for name := range tf.Env {
		if name == "" {
			return errors.Config("env keys must be non-empty")
		}
	}

	if tf.Release != nil {
		if v, ok := tf.Vars["version"]; ok && !v.IsDerived() && v.Literal == "" {
			return errors.Config("variable 'version' conflicts with the release workflow: define it as a literal or a shell derivation")
		}
	}

	return nil
}
