// Package project provides taskfile discovery.
package project

import (
	"errors"
	"os"
	"path/filepath"
)

// TaskfileName is the name of the declarative source file.
const TaskfileName = "taskfile.yml"

// ErrNoTaskfile is returned when no taskfile.yml is found.
var ErrNoTaskfile = errors.New("taskfile.yml not found (or in any parent up to the root)")

// FindRoot walks up from the current working directory until it finds
// taskfile.yml, returning the directory that contains it.
func FindRoot() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return FindRootFrom(cwd)
}

// FindRootFrom walks up from the given directory until it finds taskfile.yml.
func FindRootFrom(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		path := filepath.Join(dir, TaskfileName)
		if _, err := os.Stat(path); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached filesystem root
			return "", ErrNoTaskfile
		}
		dir = parent
	}
}
