package target

import (
	"sort"

	"taskforge/internal/config"
	"taskforge/internal/errors"
)

// DocEntry is one line of the help surface: either a section header or a
// documented target, in declaration order.
type DocEntry struct {
	Section string // Non-empty for section header pseudo-entries
	Name    string
	Desc    string
}

// Registry stores the set of declared targets.
type Registry struct {
	targets map[string]*Target
	order   []DocEntry // Declaration order of sections and targets
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		targets: make(map[string]*Target),
	}
}

// FromTaskfile builds a registry from the taskfile's ordered target list.
func FromTaskfile(tf *config.Taskfile) (*Registry, error) {
	r := NewRegistry()
	for _, entry := range tf.Targets {
		if entry.IsSection() {
			r.AddSection(entry.Section)
			continue
		}

		cmds := make([]Command, len(entry.Cmds))
		for i, c := range entry.Cmds {
			cmds[i] = Command{Line: c.Cmd, IgnoreError: c.IgnoreError}
		}

		t := &Target{
			Name:      entry.Name,
			Desc:      entry.Desc,
			Deps:      entry.Deps,
			Cmds:      cmds,
			AlwaysRun: true,
		}
		if err := r.Add(t); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Add registers a target. Registration fails if the name is already taken.
func (r *Registry) Add(t *Target) error {
	if _, exists := r.targets[t.Name]; exists {
		return errors.DuplicateTarget(t.Name)
	}
	r.targets[t.Name] = t
	r.order = append(r.order, DocEntry{Name: t.Name, Desc: t.Desc})
	return nil
}

// AddSection records a section header pseudo-entry for help grouping.
// Sections are not executable targets.
func (r *Registry) AddSection(title string) {
	r.order = append(r.order, DocEntry{Section: title})
}

// Get retrieves a target by name.
func (r *Registry) Get(name string) (*Target, error) {
	t, ok := r.targets[name]
	if !ok {
		return nil, errors.UnknownTarget(name)
	}
	return t, nil
}

// Has reports whether a target with the given name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.targets[name]
	return ok
}

// Names returns all registered target names sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.targets))
	for name := range r.targets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Documented returns section headers and targets that carry a description,
// in declaration order. Targets without a description are internal and
// excluded from the help surface.
func (r *Registry) Documented() []DocEntry {
	var entries []DocEntry
	for _, e := range r.order {
		if e.Section != "" || e.Desc != "" {
			entries = append(entries, e)
		}
	}
	return entries
}
