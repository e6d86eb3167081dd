// Package cli provides the command-line interface for taskforge.
package cli

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"taskforge/internal/config"
	"taskforge/internal/errors"
	"taskforge/internal/executor"
	"taskforge/internal/output"
	"taskforge/internal/plan"
	"taskforge/internal/project"
	"taskforge/internal/release"
	"taskforge/internal/target"
	"taskforge/internal/vars"
)

// Version is set at build time.
var Version = "dev"

var out = output.New()

// SetOutput replaces the output writer (for testing).
func SetOutput(w *output.Writer) {
	out = w
}

// options holds parsed global flags.
type options struct {
	file    string // Explicit taskfile path (-f)
	dir     string // Directory to start discovery from (-C)
	quiet   bool
	help    bool
	version bool
}

// parseArgs splits global flags from requested target names. Only
// flag-form arguments are interpreted here; bare words are always
// target names.
func parseArgs(args []string) (*options, []string, error) {
	opts := &options{}
	var targets []string

	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch arg {
		case "-f", "--file":
			if i+1 >= len(args) {
				return nil, nil, errors.Configf("%s requires a path", arg)
			}
			i++
			opts.file = args[i]
		case "-C", "--directory":
			if i+1 >= len(args) {
				return nil, nil, errors.Configf("%s requires a directory", arg)
			}
			i++
			opts.dir = args[i]
		case "-q", "--quiet":
			opts.quiet = true
		case "-h", "--help":
			opts.help = true
		case "--version":
			opts.version = true
		default:
			if len(arg) > 1 && arg[0] == '-' {
				return nil, nil, errors.Configf("unknown flag: %s", arg)
			}
			targets = append(targets, arg)
		}
	}

	return opts, targets, nil
}

// Run executes the CLI with the given arguments and returns an exit code.
func Run(args []string) int {
	opts, requested, err := parseArgs(args)
	if err != nil {
		out.ErrorPrefix("%v", err)
		return errors.GetExitCode(err)
	}
	out.SetQuiet(opts.quiet)

	if opts.version {
		out.Println("taskforge %s", Version)
		return errors.ExitSuccess
	}
	if opts.help {
		printUsage()
		// The target listing needs a taskfile; without one the usage
		// text alone is the whole help.
		if tf, reg, err := loadRegistry(opts); err == nil {
			out.Println("")
			renderHelp(tf, reg)
		}
		return errors.ExitSuccess
	}

	root, tf, err := load(opts)
	if err != nil {
		out.ErrorPrefix("%v", err)
		return errors.ExitConfigError
	}

	env := vars.New(root, tf.Vars)
	reg, err := target.FromTaskfile(tf)
	if err != nil {
		out.ErrorPrefix("%v", err)
		return errors.GetExitCode(err)
	}
	if tf.Release != nil {
		if err := release.Generate(tf.Release, reg, env); err != nil {
			out.ErrorPrefix("%v", err)
			return errors.GetExitCode(err)
		}
	}

	if len(requested) == 0 {
		requested = []string{tf.Project.Default}
	}

	// Introspection surfaces; none executes a target. Each yields to a
	// user-declared target of the same name.
	if len(requested) == 1 {
		switch requested[0] {
		case "help":
			if !reg.Has("help") {
				renderHelp(tf, reg)
				return errors.ExitSuccess
			}
		case "targets":
			if !reg.Has("targets") {
				out.List(reg.Names())
				return errors.ExitSuccess
			}
		case "version":
			if !reg.Has("version") {
				out.Println("taskforge %s", Version)
				return errors.ExitSuccess
			}
		}
	}

	planNames, err := plan.Compute(reg, requested)
	if err != nil {
		out.ErrorPrefix("%v", err)
		return errors.GetExitCode(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	exec := executor.New(root, env, tf.Env, out)
	report := exec.Execute(ctx, planNames, reg)

	switch report.Status {
	case executor.StatusCancelled:
		out.ErrorPrefix("interrupted")
		return errors.ExitCancelled
	case executor.StatusFailed:
		out.ErrorPrefix("%v", report.Err)
		return errors.GetExitCode(report.Err)
	default:
		out.Info("")
		out.Success("✓ %d target(s) completed in %s", len(report.Targets), report.TotalDuration.Round(timeUnit))
		return errors.ExitSuccess
	}
}

// loadRegistry loads the taskfile and builds its full target registry,
// generated release targets included.
func loadRegistry(opts *options) (*config.Taskfile, *target.Registry, error) {
	root, tf, err := load(opts)
	if err != nil {
		return nil, nil, err
	}
	reg, err := target.FromTaskfile(tf)
	if err != nil {
		return nil, nil, err
	}
	if tf.Release != nil {
		if err := release.Generate(tf.Release, reg, vars.New(root, tf.Vars)); err != nil {
			return nil, nil, err
		}
	}
	return tf, reg, nil
}

// load locates and parses the taskfile, returning the project root.
func load(opts *options) (string, *config.Taskfile, error) {
	if opts.file != "" {
		path, err := filepath.Abs(opts.file)
		if err != nil {
			return "", nil, err
		}
		tf, err := config.Load(path)
		if err != nil {
			return "", nil, err
		}
		return filepath.Dir(path), tf, nil
	}

	var root string
	var err error
	if opts.dir != "" {
		root, err = project.FindRootFrom(opts.dir)
	} else {
		root, err = project.FindRoot()
	}
	if err != nil {
		return "", nil, err
	}

	tf, err := config.Load(filepath.Join(root, project.TaskfileName))
	if err != nil {
		return "", nil, err
	}
	return root, tf, nil
}
