package executor

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"testing"
	"time"

	"taskforge/internal/config"
	"taskforge/internal/errors"
	"taskforge/internal/output"
	"taskforge/internal/plan"
	"taskforge/internal/target"
	"taskforge/internal/vars"
)

// fakeRunner records executed lines and fails those listed in failures with
// the given exit code.
type fakeRunner struct {
	lines    []string
	failures map[string]int
}

func (f *fakeRunner) run(ctx context.Context, dir, line string, extraEnv map[string]string, stdout, stderr io.Writer) error {
	f.lines = append(f.lines, line)
	if code, ok := f.failures[line]; ok {
		return fakeExitError(code)
	}
	return nil
}

// fakeExitError produces a real *exec.ExitError with the given code so the
// executor's exit-code extraction is exercised end to end.
func fakeExitError(code int) error {
	err := exec.Command("sh", "-c", fmt.Sprintf("exit %d", code)).Run()
	if err == nil {
		panic("expected non-zero exit")
	}
	return err
}

func newTestExecutor(t *testing.T, specs map[string]config.VarSpec) (*Executor, *fakeRunner, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	out := output.NewWithWriters(&buf, &buf, false)
	env := vars.New(t.TempDir(), specs)
	e := New(t.TempDir(), env, nil, out)
	f := &fakeRunner{failures: make(map[string]int)}
	e.SetRun(f.run)
	return e, f, &buf
}

func registryOf(t *testing.T, targets ...*target.Target) *target.Registry {
	t.Helper()
	r := target.NewRegistry()
	for _, tgt := range targets {
		if err := r.Add(tgt); err != nil {
			t.Fatal(err)
		}
	}
	return r
}

func TestExecute_RunsCommandsInOrder(t *testing.T) {
	e, f, _ := newTestExecutor(t, nil)
	reg := registryOf(t,
		&target.Target{Name: "a", Cmds: []target.Command{{Line: "first"}, {Line: "second"}}},
		&target.Target{Name: "b", Deps: []string{"a"}, Cmds: []target.Command{{Line: "third"}}},
	)

	names, err := plan.Compute(reg, []string{"b"})
	if err != nil {
		t.Fatal(err)
	}

	report := e.Execute(context.Background(), names, reg)
	if report.Status != StatusSuccess {
		t.Fatalf("Status = %v, want success (err: %v)", report.Status, report.Err)
	}

	want := []string{"first", "second", "third"}
	if strings.Join(f.lines, ",") != strings.Join(want, ",") {
		t.Errorf("executed %v, want %v", f.lines, want)
	}
	if len(report.Targets) != 2 {
		t.Errorf("len(Targets) = %d, want 2", len(report.Targets))
	}
}

func TestExecute_UnsuppressedFailureStopsRun(t *testing.T) {
	e, f, _ := newTestExecutor(t, nil)
	f.failures["boom"] = 3

	reg := registryOf(t,
		&target.Target{Name: "a", Cmds: []target.Command{{Line: "boom"}, {Line: "never"}}},
		&target.Target{Name: "b", Deps: []string{"a"}, Cmds: []target.Command{{Line: "also never"}}},
	)

	names, _ := plan.Compute(reg, []string{"b"})
	report := e.Execute(context.Background(), names, reg)

	if report.Status != StatusFailed {
		t.Fatalf("Status = %v, want failed", report.Status)
	}
	if report.FailedTarget != "a" || report.FailedCommand != "boom" {
		t.Errorf("failure = [%s] %q, want [a] boom", report.FailedTarget, report.FailedCommand)
	}
	if report.ExitCode != 3 {
		t.Errorf("ExitCode = %d, want 3", report.ExitCode)
	}
	if !errors.IsKind(report.Err, errors.KindCommandFailure) {
		t.Errorf("Err = %v, want CommandFailure", report.Err)
	}

	// Neither the next command in the target nor the next plan entry runs.
	for _, line := range f.lines {
		if line == "never" || line == "also never" {
			t.Errorf("command %q ran after an unsuppressed failure", line)
		}
	}
}

func TestExecute_SuppressedFailureContinues(t *testing.T) {
	e, f, buf := newTestExecutor(t, nil)
	f.failures["git tag -d v1.0.0"] = 1

	// Tag-delete-then-create where the tag does not exist: delete fails,
	// is suppressed, and the target still reports success.
	reg := registryOf(t, &target.Target{Name: "release-tag", Cmds: []target.Command{
		{Line: "git tag -d v1.0.0", IgnoreError: true},
		{Line: "git tag v1.0.0"},
	}})

	report := e.Execute(context.Background(), []string{"release-tag"}, reg)

	if report.Status != StatusSuccess {
		t.Fatalf("Status = %v, want success (err: %v)", report.Status, report.Err)
	}
	if strings.Join(f.lines, ",") != "git tag -d v1.0.0,git tag v1.0.0" {
		t.Errorf("executed %v, want both commands", f.lines)
	}
	if !strings.Contains(buf.String(), "ignored failure") {
		t.Errorf("output should note the ignored failure: %q", buf.String())
	}
}

func TestExecute_VariableExpansion(t *testing.T) {
	e, f, _ := newTestExecutor(t, map[string]config.VarSpec{
		"version": {Literal: "2.0.1"},
	})

	reg := registryOf(t, &target.Target{Name: "tag", Cmds: []target.Command{
		{Line: "git tag v${version}"},
	}})

	report := e.Execute(context.Background(), []string{"tag"}, reg)
	if report.Status != StatusSuccess {
		t.Fatalf("Status = %v, want success (err: %v)", report.Status, report.Err)
	}
	if f.lines[0] != "git tag v2.0.1" {
		t.Errorf("executed %q, want expanded line", f.lines[0])
	}
}

func TestExecute_VariableResolutionFailureAborts(t *testing.T) {
	e, f, _ := newTestExecutor(t, map[string]config.VarSpec{
		"version": {Shell: "extract-version"},
	})
	// The real capture runner is replaced so the derivation fails.
	env := vars.New(t.TempDir(), map[string]config.VarSpec{
		"version": {Shell: "extract-version"},
	})
	env.SetCapture(func(ctx context.Context, dir, command string) (string, error) {
		return "", fmt.Errorf("exit status 1")
	})
	e.env = env

	reg := registryOf(t, &target.Target{Name: "tag", Cmds: []target.Command{
		{Line: "git tag v${version}"},
		{Line: "never"},
	}})

	report := e.Execute(context.Background(), []string{"tag"}, reg)
	if report.Status != StatusFailed {
		t.Fatalf("Status = %v, want failed", report.Status)
	}
	if !errors.IsKind(report.Err, errors.KindVariableResolution) {
		t.Errorf("Err = %v, want VariableResolution", report.Err)
	}
	if len(f.lines) != 0 {
		t.Errorf("no command should run when expansion fails, got %v", f.lines)
	}
}

func TestExecute_CancelledBetweenCommands(t *testing.T) {
	e, _, _ := newTestExecutor(t, nil)

	ctx, cancel := context.WithCancel(context.Background())
	ran := 0
	e.SetRun(func(ctx context.Context, dir, line string, extraEnv map[string]string, stdout, stderr io.Writer) error {
		ran++
		cancel() // Interrupt arrives while the first command runs.
		return nil
	})

	reg := registryOf(t, &target.Target{Name: "a", Cmds: []target.Command{
		{Line: "one"},
		{Line: "two"},
	}})

	report := e.Execute(ctx, []string{"a"}, reg)

	if report.Status != StatusCancelled {
		t.Fatalf("Status = %v, want cancelled", report.Status)
	}
	if !errors.IsKind(report.Err, errors.KindCancelled) {
		t.Errorf("Err = %v, want Cancelled", report.Err)
	}
	if ran != 1 {
		t.Errorf("ran %d commands, want 1 (stop before the next command)", ran)
	}
}

func TestExecute_CancelledDuringCommand(t *testing.T) {
	// An interrupt kills the running subprocess, so the runner returns a
	// signal-termination error while the context is already cancelled. That
	// must surface as a cancelled run, not a command failure.
	e, _, _ := newTestExecutor(t, nil)

	ctx, cancel := context.WithCancel(context.Background())
	e.SetRun(func(ctx context.Context, dir, line string, extraEnv map[string]string, stdout, stderr io.Writer) error {
		cancel()
		return fmt.Errorf("signal: killed")
	})

	reg := registryOf(t, &target.Target{Name: "slow", Cmds: []target.Command{
		{Line: "sleep 5"},
	}})

	report := e.Execute(ctx, []string{"slow"}, reg)

	if report.Status != StatusCancelled {
		t.Fatalf("Status = %v, want cancelled (err: %v)", report.Status, report.Err)
	}
	if !errors.IsKind(report.Err, errors.KindCancelled) {
		t.Errorf("Err = %v, want Cancelled", report.Err)
	}
	if report.ExitCode != 0 {
		t.Errorf("ExitCode = %d, want 0", report.ExitCode)
	}
}

func TestExecute_ShellRunCancelled(t *testing.T) {
	// Same through the real shell runner: the deadline fires while sleep is
	// still running and the killed process is reported as cancelled.
	var buf bytes.Buffer
	out := output.NewWithWriters(&buf, &buf, false)
	out.SetQuiet(true)
	dir := t.TempDir()
	e := New(dir, vars.New(dir, nil), nil, out)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	reg := registryOf(t, &target.Target{Name: "slow", Cmds: []target.Command{
		{Line: "sleep 5"},
	}})

	report := e.Execute(ctx, []string{"slow"}, reg)

	if report.Status != StatusCancelled {
		t.Fatalf("Status = %v, want cancelled (err: %v)", report.Status, report.Err)
	}
	if errors.IsKind(report.Err, errors.KindCommandFailure) {
		t.Errorf("Err = %v, must not be CommandFailure", report.Err)
	}
}

func TestExecute_NoopTarget(t *testing.T) {
	e, f, _ := newTestExecutor(t, nil)
	reg := registryOf(t, &target.Target{Name: "empty"})

	report := e.Execute(context.Background(), []string{"empty"}, reg)
	if report.Status != StatusSuccess {
		t.Errorf("Status = %v, want success", report.Status)
	}
	if len(f.lines) != 0 {
		t.Errorf("no-op target executed %v", f.lines)
	}
}

func TestExecute_ShellRun(t *testing.T) {
	// End-to-end through the real shell runner: streams output and exports
	// the orchestrator environment.
	var buf bytes.Buffer
	out := output.NewWithWriters(&buf, &buf, false)
	out.SetQuiet(true)
	dir := t.TempDir()
	env := vars.New(dir, nil)
	e := New(dir, env, map[string]string{"GREETING": "hello"}, out)

	reg := registryOf(t, &target.Target{Name: "greet", Cmds: []target.Command{
		{Line: `printf '%s\n' "$GREETING"`},
	}})

	report := e.Execute(context.Background(), []string{"greet"}, reg)
	if report.Status != StatusSuccess {
		t.Fatalf("Status = %v, want success (err: %v)", report.Status, report.Err)
	}
	if got := buf.String(); got != "hello\n" {
		t.Errorf("streamed output = %q, want %q", got, "hello\n")
	}
}

func TestExecute_ShellRunExitCode(t *testing.T) {
	var buf bytes.Buffer
	out := output.NewWithWriters(&buf, &buf, false)
	dir := t.TempDir()
	e := New(dir, vars.New(dir, nil), nil, out)

	reg := registryOf(t, &target.Target{Name: "bad", Cmds: []target.Command{
		{Line: "exit 7"},
	}})

	report := e.Execute(context.Background(), []string{"bad"}, reg)
	if report.Status != StatusFailed {
		t.Fatalf("Status = %v, want failed", report.Status)
	}
	if report.ExitCode != 7 {
		t.Errorf("ExitCode = %d, want 7", report.ExitCode)
	}
}
