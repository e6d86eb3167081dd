// Package version provides semantic version validation and parsing.
package version

import (
	"fmt"
	"regexp"
	"strconv"
)

// SemverRegex validates semantic version strings.
var SemverRegex = regexp.MustCompile(`^(\d+)\.(\d+)\.(\d+)(-([a-zA-Z0-9]+(\.[a-zA-Z0-9]+)*))?(\+([a-zA-Z0-9]+(\.[a-zA-Z0-9]+)*))?$`)

// Semver represents a parsed semantic version.
type Semver struct {
	Major      int
	Minor      int
	Patch      int
	Prerelease string
	Build      string
}

// Validate checks if a version string is valid semver.
func Validate(version string) error {
	if !SemverRegex.MatchString(version) {
		return fmt.Errorf("invalid semver format: %q", version)
	}
	return nil
}

// Parse parses a semantic version string.
func Parse(version string) (*Semver, error) {
	match := SemverRegex.FindStringSubmatch(version)
	if match == nil {
		return nil, fmt.Errorf("invalid semver format: %q", version)
	}

	// Errors ignored: regex guarantees these capture groups contain only digits
	major, _ := strconv.Atoi(match[1])
	minor, _ := strconv.Atoi(match[2])
	patch, _ := strconv.Atoi(match[3])

	return &Semver{
		Major:      major,
		Minor:      minor,
		Patch:      patch,
		Prerelease: match[5], // Group 5 is prerelease without the dash
		Build:      match[8], // Group 8 is build without the plus
	}, nil
}

// String renders the version back to its canonical form.
func (v *Semver) String() string {
	s := fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
	if v.Prerelease != "" {
		s += "-" + v.Prerelease
	}
	if v.Build != "" {
		s += "+" + v.Build
	}
	return s
}
