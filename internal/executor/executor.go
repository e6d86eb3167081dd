// Package executor runs execution plans: each target's command lines in
// declared order, each line in its own shell subprocess.
package executor

import (
	"context"
	stderrors "errors"
	"io"
	"os"
	"os/exec"
	"time"

	"taskforge/internal/errors"
	"taskforge/internal/output"
	"taskforge/internal/target"
	"taskforge/internal/vars"
)

// Status is the overall outcome of a run.
type Status int

const (
	StatusSuccess Status = iota
	StatusFailed
	StatusCancelled
)

// TargetResult records the outcome of one plan entry.
type TargetResult struct {
	Name     string
	Duration time.Duration
	Err      error // nil on success
}

// Report describes a finished (or aborted) run.
type Report struct {
	Status        Status
	Targets       []TargetResult
	FailedTarget  string
	FailedCommand string
	ExitCode      int   // Exit code of the failing command, 0 otherwise
	Err           error // The error that stopped the run, nil on success
	TotalDuration time.Duration
}

// RunFunc executes a single command line. Injectable for tests.
type RunFunc func(ctx context.Context, dir, line string, extraEnv map[string]string, stdout, stderr io.Writer) error

// Executor runs plans sequentially. It is side-effect-free apart from
// orchestrating subprocesses and streaming their output in execution order.
type Executor struct {
	root    string
	env     *vars.Env
	exports map[string]string // Extra environment exported to every command
	out     *output.Writer
	run     RunFunc
}

// New creates an executor rooted at the given directory.
func New(root string, env *vars.Env, exports map[string]string, out *output.Writer) *Executor {
	return &Executor{
		root:    root,
		env:     env,
		exports: exports,
		out:     out,
		run:     shellRun,
	}
}

// SetRun replaces the command runner (for testing).
func (e *Executor) SetRun(f RunFunc) {
	e.run = f
}

// Execute runs the plan in order. The first unsuppressed command failure
// stops the whole run immediately; commands marked ignore_error have their
// exit status discarded. Cancellation is checked between commands and
// between targets; a running command killed by cancellation is reported
// as cancelled rather than failed.
func (e *Executor) Execute(ctx context.Context, planNames []string, reg *target.Registry) *Report {
	report := &Report{Status: StatusSuccess}
	start := time.Now()
	defer func() { report.TotalDuration = time.Since(start) }()

	for _, name := range planNames {
		t, err := reg.Get(name)
		if err != nil {
			// Plans are computed from the same registry, so this indicates
			// a caller bug rather than a user error.
			report.fail(name, "", 0, err)
			return report
		}

		if err := ctx.Err(); err != nil {
			report.cancel(name)
			return report
		}

		e.out.TargetStart(t.Name)
		targetStart := time.Now()

		if err := e.runTarget(ctx, t, report); err != nil {
			report.Targets = append(report.Targets, TargetResult{
				Name:     t.Name,
				Duration: time.Since(targetStart),
				Err:      err,
			})
			if report.Status != StatusCancelled {
				e.out.TargetFailed(t.Name, err)
			}
			return report
		}

		report.Targets = append(report.Targets, TargetResult{
			Name:     t.Name,
			Duration: time.Since(targetStart),
		})
	}

	return report
}

// runTarget runs all command lines of one target. Returns the error that
// stopped the run, having already recorded it in the report.
func (e *Executor) runTarget(ctx context.Context, t *target.Target, report *Report) error {
	for _, cmd := range t.Cmds {
		if err := ctx.Err(); err != nil {
			report.cancel(t.Name)
			return report.Err
		}

		line, err := e.env.Expand(ctx, cmd.Line)
		if err != nil {
			if ctx.Err() != nil {
				report.cancel(t.Name)
				return report.Err
			}
			report.fail(t.Name, cmd.Line, 0, err)
			return err
		}

		e.out.Command(line)

		err = e.run(ctx, e.root, line, e.exports, e.out.Stdout(), e.out.Stderr())
		if err == nil {
			continue
		}

		// A cancelled context kills the subprocess, which then surfaces as a
		// run error. Classify that as cancellation, not a command failure.
		if ctx.Err() != nil {
			report.cancel(t.Name)
			return report.Err
		}

		if cmd.IgnoreError {
			e.out.Warning("ignored failure: %s (%v)", line, err)
			continue
		}

		code := exitCode(err)
		failure := errors.CommandFailure(t.Name, line, code)
		report.fail(t.Name, line, code, failure)
		return failure
	}
	return nil
}

func (r *Report) fail(targetName, command string, code int, err error) {
	r.Status = StatusFailed
	r.FailedTarget = targetName
	r.FailedCommand = command
	r.ExitCode = code
	r.Err = err
}

func (r *Report) cancel(targetName string) {
	r.Status = StatusCancelled
	r.FailedTarget = targetName
	r.Err = errors.Cancelled(targetName)
}

// exitCode extracts the subprocess exit code, or 0 when unavailable.
// A process killed by a signal has no exit code and also maps to 0.
func exitCode(err error) int {
	var exitErr *exec.ExitError
	if stderrors.As(err, &exitErr) {
		if code := exitErr.ExitCode(); code >= 0 {
			return code
		}
	}
	return 0
}

// shellRun executes one command line through the shell, streaming output to
// the given writers as it is produced.
func shellRun(ctx context.Context, dir, line string, extraEnv map[string]string, stdout, stderr io.Writer) error {
	cmd := exec.CommandContext(ctx, "sh", "-c", line)
	cmd.Dir = dir
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	cmd.Stdin = os.Stdin

	cmd.Env = os.Environ()
	for k, v := range extraEnv {
		cmd.Env = append(cmd.Env, k+"="+v)
	}

	return cmd.Run()
}
