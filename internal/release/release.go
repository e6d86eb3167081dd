// Package release generates the built-in release workflow targets.
//
// The workflow is expressed entirely as ordinary targets chained through
// prerequisites: derive the version, recreate the tag, push it, build the
// artifact, validate it, publish it. Every irreversible external action is
// made idempotent by convention: delete-then-create for tags (the delete is
// failure-suppressed so a missing tag is not an error) and replace-on-upload
// for release assets, so re-running a partially failed release converges
// instead of erroring on "already exists".
package release

import (
	"strings"

	"taskforge/internal/config"
	"taskforge/internal/target"
	"taskforge/internal/vars"
	"taskforge/internal/version"
)

// Target names of the generated workflow.
const (
	TargetRelease = "release"
	TargetTag     = "release:tag"
	TargetPush    = "release:push"
	TargetBuild   = "release:build"
	TargetCheck   = "release:check"
	TargetPublish = "release:publish"
)

// Generate registers the release targets and the derived version variable.
// A user-declared `version` variable wins over the generated derivation;
// either way the resolved value must be valid semver.
func Generate(cfg *config.ReleaseConfig, reg *target.Registry, env *vars.Env) error {
	env.Define("version", config.VarSpec{Shell: cfg.VersionCmd})
	env.SetCheck("version", version.Validate)

	tag := cfg.Tag()
	artifact := strings.ReplaceAll(cfg.Artifact, "{version}", "${version}")
	expand := func(cmd string) string {
		cmd = strings.ReplaceAll(cmd, "{tag}", tag)
		return strings.ReplaceAll(cmd, "{artifact}", artifact)
	}

	targets := []*target.Target{
		{
			Name:      TargetTag,
			AlwaysRun: true,
			Cmds: []target.Command{
				{Line: "git tag -d " + tag, IgnoreError: true},
				{Line: "git tag " + tag},
			},
		},
		{
			Name:      TargetPush,
			Deps:      []string{TargetTag},
			AlwaysRun: true,
			Cmds: []target.Command{
				{Line: "git push " + cfg.Remote},
				{Line: "git push " + cfg.Remote + " :refs/tags/" + tag, IgnoreError: true},
				{Line: "git push " + cfg.Remote + " " + tag},
			},
		},
		{
			Name:      TargetBuild,
			Deps:      []string{TargetPush},
			AlwaysRun: true,
			Cmds:      []target.Command{{Line: expand(cfg.PackageCmd)}},
		},
	}

	publishDeps := []string{TargetBuild}
	if cfg.CheckCmd != "" {
		targets = append(targets, &target.Target{
			Name:      TargetCheck,
			Deps:      []string{TargetBuild},
			AlwaysRun: true,
			Cmds:      []target.Command{{Line: expand(cfg.CheckCmd)}},
		})
		publishDeps = []string{TargetCheck}
	}

	targets = append(targets,
		&target.Target{
			Name:      TargetPublish,
			Deps:      publishDeps,
			AlwaysRun: true,
			Cmds: []target.Command{
				// Creating an existing release record fails; that is fine,
				// the upload below replaces the asset either way.
				{Line: expand(cfg.CreateCmd), IgnoreError: true},
				{Line: expand(cfg.UploadCmd)},
			},
		},
		&target.Target{
			Name:      TargetRelease,
			Desc:      "Tag, build, and publish a release",
			Deps:      []string{TargetPublish},
			AlwaysRun: true,
		},
	)

	for _, t := range targets {
		if err := reg.Add(t); err != nil {
			return err
		}
	}
	return nil
}
