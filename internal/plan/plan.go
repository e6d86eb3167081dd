// Package plan computes dependency-respecting execution plans over the
// target registry, with cycle detection.
package plan

import (
	"taskforge/internal/errors"
	"taskforge/internal/target"
)

// Compute expands the requested targets into a single merged execution plan:
// an ordered sequence of target names with no duplicates in which every
// prerequisite appears before its dependents. Depth-first post-order; a
// target already in the plan is skipped, so diamond dependencies execute
// once even across multiple requested targets.
func Compute(reg *target.Registry, requested []string) ([]string, error) {
	var result []string
	visited := make(map[string]bool)
	inStack := make(map[string]bool)
	var stack []string

	var visit func(name string) error
	visit = func(name string) error {
		if inStack[name] {
			return errors.CyclicDependency(cyclePath(stack, name))
		}
		if visited[name] {
			return nil
		}

		t, err := reg.Get(name)
		if err != nil {
			return err
		}

		inStack[name] = true
		stack = append(stack, name)

		for _, dep := range t.Deps {
			if err := visit(dep); err != nil {
				return err
			}
		}

		stack = stack[:len(stack)-1]
		inStack[name] = false
		visited[name] = true
		result = append(result, name)

		return nil
	}

	for _, name := range requested {
		if err := visit(name); err != nil {
			return nil, err
		}
	}

	return result, nil
}

// Validate checks the whole registry for unknown prerequisites and cycles
// without producing a plan.
func Validate(reg *target.Registry) error {
	_, err := Compute(reg, reg.Names())
	return err
}

// cyclePath extracts the cycle from the recursion stack, starting and ending
// with the revisited target.
func cyclePath(stack []string, name string) []string {
	for i, n := range stack {
		if n == name {
			cycle := append([]string{}, stack[i:]...)
			return append(cycle, name)
		}
	}
	// Self-reference that never entered the stack; should not happen.
	return []string{name, name}
}
