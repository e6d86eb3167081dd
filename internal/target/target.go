// Package target provides the Target type and registry for declared tasks.
package target

// Command is a single command line of a target.
type Command struct {
	Line        string // Shell command line, possibly with ${var} references
	IgnoreError bool   // Non-zero exit is discarded instead of aborting the run
}

// Target is a named, executable unit of work. Every target here is purely
// logical: no produced filesystem artifact gates re-execution. AlwaysRun is
// carried for forward-compatibility with file-producing targets.
type Target struct {
	Name      string
	Desc      string // Optional; empty means internal/undocumented
	Deps      []string
	Cmds      []Command
	AlwaysRun bool
}

// IsNoop reports whether the target has no commands and no prerequisites.
func (t *Target) IsNoop() bool {
	return len(t.Cmds) == 0 && len(t.Deps) == 0
}
