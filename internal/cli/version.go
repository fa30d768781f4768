// Package cli holds the small amount of plumbing the bake binary shares
// with the driver: the release version and its #requires check, the REPL
// configuration file and TTY detection.
package cli

import (
	"fmt"

	"github.com/Masterminds/semver/v3"
)

// Version is the bake release. Source files pin a minimum through the
// #requires pragma, which Satisfies checks against this value.
const Version = "0.2.0"

// Satisfies checks the running version against a semver constraint such as
// ">= 0.2" or "~0.2.0".
func Satisfies(constraint string) (bool, error) {
	c, err := semver.NewConstraint(constraint)
	if err != nil {
		return false, fmt.Errorf("invalid version constraint %q: %w", constraint, err)
	}
	v, err := semver.NewVersion(Version)
	if err != nil {
		return false, fmt.Errorf("invalid version %q: %w", Version, err)
	}
	return c.Check(v), nil
}
