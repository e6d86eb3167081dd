package config

import "strings"

// Default configuration values.
const (
	DefaultTarget    = "help"
	DefaultTagFormat = "v{version}"
	DefaultRemote    = "origin"
	DefaultCreateCmd = "gh release create {tag} --title {tag} --notes ''"
	DefaultUploadCmd = "gh release upload {tag} {artifact} --clobber"
)

// applyDefaults fills in default values for unset configuration fields.
func applyDefaults(tf *Taskfile) {
	if tf.Project.Default == "" {
		tf.Project.Default = DefaultTarget
	}
	applyReleaseDefaults(tf)
}

func applyReleaseDefaults(tf *Taskfile) {
	if tf.Release == nil {
		return // Release workflow is optional
	}
	if tf.Release.TagFormat == "" {
		tf.Release.TagFormat = DefaultTagFormat
	}
	if tf.Release.Remote == "" {
		tf.Release.Remote = DefaultRemote
	}
	if tf.Release.CreateCmd == "" {
		tf.Release.CreateCmd = DefaultCreateCmd
	}
	if tf.Release.UploadCmd == "" {
		tf.Release.UploadCmd = DefaultUploadCmd
	}
}

// Tag renders the release tag for interpolated command lines. The {version}
// placeholder is substituted at generation time with a ${version} variable
// reference, so the actual value is resolved lazily at execution time.
func (r *ReleaseConfig) Tag() string {
	return strings.ReplaceAll(r.TagFormat, "{version}", "${version}")
}
