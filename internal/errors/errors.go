// Package errors provides structured error types and exit codes for taskforge.
package errors

import (
	"fmt"
	"strings"
)

// Exit codes returned by the CLI.
const (
	ExitSuccess      = 0   // Success
	ExitRuntimeError = 1   // Runtime error (command failed, etc.)
	ExitConfigError  = 2   // Configuration error (invalid taskfile, bad graph, etc.)
	ExitCancelled    = 130 // Interrupted between commands
)

// Kind represents the type of error.
type Kind int

const (
	KindRuntime Kind = iota
	KindConfig
	KindUnknownTarget
	KindDuplicateTarget
	KindCyclicDependency
	KindVariableResolution
	KindCommandFailure
	KindCancelled
)

// Error is the base error type for taskforge.
type Error struct {
	Kind    Kind
	Message string
	Target  string // Target name if applicable
	Command string // Command line if applicable
	Code    int    // Exit code of a failed command (KindCommandFailure)
	Cause   error  // Underlying error
}

func (e *Error) Error() string {
	if e.Target != "" && e.Command != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Target, e.Command, e.Message)
	}
	if e.Target != "" {
		return fmt.Sprintf("[%s] %s", e.Target, e.Message)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// ExitCode returns the appropriate process exit code for this error.
// Command failures propagate the command's own exit code when it is known.
func (e *Error) ExitCode() int {
	switch e.Kind {
	case KindConfig, KindUnknownTarget, KindDuplicateTarget, KindCyclicDependency:
		return ExitConfigError
	case KindCancelled:
		return ExitCancelled
	case KindCommandFailure:
		if e.Code > 0 {
			return e.Code
		}
		return ExitRuntimeError
	default:
		return ExitRuntimeError
	}
}

// New creates a new runtime error.
func New(message string) *Error {
	return &Error{
		Kind:    KindRuntime,
		Message: message,
	}
}

// Config creates a new configuration error.
func Config(message string) *Error {
	return &Error{
		Kind:    KindConfig,
		Message: message,
	}
}

// Configf creates a new configuration error with formatting.
func Configf(format string, args ...interface{}) *Error {
	return Config(fmt.Sprintf(format, args...))
}

// UnknownTarget reports a requested or prerequisite target that is not registered.
func UnknownTarget(name string) *Error {
	return &Error{
		Kind:    KindUnknownTarget,
		Target:  name,
		Message: "unknown target",
	}
}

// DuplicateTarget reports a registration conflict.
func DuplicateTarget(name string) *Error {
	return &Error{
		Kind:    KindDuplicateTarget,
		Target:  name,
		Message: "target already declared",
	}
}

// CyclicDependency reports a prerequisite cycle. The cycle slice holds the
// target names along the cycle, starting and ending with the same name.
func CyclicDependency(cycle []string) *Error {
	return &Error{
		Kind:    KindCyclicDependency,
		Message: fmt.Sprintf("circular dependency: %s", strings.Join(cycle, " -> ")),
	}
}

// VariableResolution reports a failed derived-variable capture command.
func VariableResolution(name string, cause error) *Error {
	return &Error{
		Kind:    KindVariableResolution,
		Message: fmt.Sprintf("cannot resolve variable %q", name),
		Cause:   cause,
	}
}

// CommandFailure reports an unsuppressed command that exited non-zero.
func CommandFailure(target, command string, code int) *Error {
	return &Error{
		Kind:    KindCommandFailure,
		Target:  target,
		Command: command,
		Code:    code,
		Message: fmt.Sprintf("exit status %d", code),
	}
}

// Cancelled reports an external interrupt between commands.
func Cancelled(target string) *Error {
	return &Error{
		Kind:    KindCancelled,
		Target:  target,
		Message: "interrupted",
	}
}

// IsKind returns true if err is an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	if e, ok := err.(*Error); ok {
		return e.Kind == kind
	}
	return false
}

// GetExitCode returns the exit code for an error.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	if e, ok := err.(*Error); ok {
		return e.ExitCode()
	}
	return ExitRuntimeError
}
