// Package vars implements the variable environment: literal and derived
// configuration values substituted into target command lines.
package vars

import (
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strings"
	"sync"

	"taskforge/internal/config"
	"taskforge/internal/errors"
)

// varPattern matches variable references in the format ${varname}.
// Captures the variable name in group 1.
var varPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// escapePlaceholder temporarily replaces the escaped variable syntax $${var}
// during expansion so that ${var} inside it is not treated as a reference.
// NUL bytes cannot appear in shell command strings or YAML scalars, so the
// placeholder cannot collide with user-provided values.
const escapePlaceholder = "\x00ESCAPED\x00"

// CaptureFunc runs a derivation command and returns its captured stdout.
// Injectable for tests.
type CaptureFunc func(ctx context.Context, dir, command string) (string, error)

// Env resolves named configuration values. Derived variables execute their
// capture command at most once per process; the result (or the failure) is
// memoized for every later reference.
type Env struct {
	root    string
	specs   map[string]config.VarSpec
	checks  map[string]func(string) error
	capture CaptureFunc

	mu   sync.Mutex
	once map[string]*sync.Once
	vals map[string]string
	errs map[string]error
}

// New creates an environment over the given variable specs. Capture commands
// run with root as their working directory.
func New(root string, specs map[string]config.VarSpec) *Env {
	return &Env{
		root:    root,
		specs:   specs,
		checks:  make(map[string]func(string) error),
		capture: shellCapture,
		once:    make(map[string]*sync.Once),
		vals:    make(map[string]string),
		errs:    make(map[string]error),
	}
}

// SetCapture replaces the capture command runner (for testing).
func (e *Env) SetCapture(f CaptureFunc) {
	e.capture = f
}

// Define adds a variable spec unless a variable of that name already exists.
// Used to merge generated definitions under user-declared ones.
func (e *Env) Define(name string, spec config.VarSpec) {
	if _, ok := e.specs[name]; ok {
		return
	}
	if e.specs == nil {
		e.specs = make(map[string]config.VarSpec)
	}
	e.specs[name] = spec
}

// SetCheck registers a validation applied to the resolved value of a
// variable. A failing check is a resolution failure.
func (e *Env) SetCheck(name string, check func(string) error) {
	e.checks[name] = check
}

// Resolve returns the value of a named variable. Literal variables return
// immediately; derived variables run their capture command exactly once per
// process lifetime, with the trailing newline trimmed from the output. A
// failing capture command is a hard error: derived values are load-bearing
// and must not silently default.
func (e *Env) Resolve(ctx context.Context, name string) (string, error) {
	spec, ok := e.specs[name]
	if !ok {
		return "", errors.VariableResolution(name, fmt.Errorf("undefined variable"))
	}

	if !spec.IsDerived() {
		if check := e.checks[name]; check != nil {
			if err := check(spec.Literal); err != nil {
				return "", errors.VariableResolution(name, err)
			}
		}
		return spec.Literal, nil
	}

	e.keyOnce(name).Do(func() {
		out, err := e.capture(ctx, e.root, spec.Shell)
		e.mu.Lock()
		defer e.mu.Unlock()
		if err != nil {
			e.errs[name] = errors.VariableResolution(name, err)
			return
		}
		val := strings.TrimRight(out, "\r\n")
		if check := e.checks[name]; check != nil {
			if err := check(val); err != nil {
				e.errs[name] = errors.VariableResolution(name, err)
				return
			}
		}
		e.vals[name] = val
	})

	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.errs[name]; err != nil {
		return "", err
	}
	return e.vals[name], nil
}

// Expand substitutes ${name} references in a command line. $${name} escapes
// to a literal ${name}. An unresolved reference is an error, not a no-op.
func (e *Env) Expand(ctx context.Context, line string) (string, error) {
	result := strings.ReplaceAll(line, "$${", escapePlaceholder)

	var expandErr error
	result = varPattern.ReplaceAllStringFunc(result, func(match string) string {
		if expandErr != nil {
			return match
		}
		name := match[2 : len(match)-1]
		val, err := e.Resolve(ctx, name)
		if err != nil {
			expandErr = err
			return match
		}
		return val
	})
	if expandErr != nil {
		return "", expandErr
	}

	return strings.ReplaceAll(result, escapePlaceholder, "${"), nil
}

func (e *Env) keyOnce(name string) *sync.Once {
	e.mu.Lock()
	defer e.mu.Unlock()
	o, ok := e.once[name]
	if !ok {
		o = &sync.Once{}
		e.once[name] = o
	}
	return o
}

// shellCapture runs a capture command through the shell and returns stdout.
func shellCapture(ctx context.Context, dir, command string) (string, error) {
	cmd := exec.CommandContext(ctx, "sh", "-c", command)
	cmd.Dir = dir

	var stderr strings.Builder
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return "", fmt.Errorf("%w: %s", err, msg)
		}
		return "", err
	}
	return string(out), nil
}
