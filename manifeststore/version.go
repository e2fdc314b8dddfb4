package manifeststore

import (
	"fmt"
	"sort"

	"github.com/Masterminds/semver/v3"
)

// ResolveVersion converts a version constraint to an exact version from the
// available options. It returns the highest version that satisfies the
// constraint. The keyword "latest" is treated as ">= 0".
func ResolveVersion(constraint string, available []string) (string, error) {
	var c *semver.Constraints
	var err error

	if constraint == "latest" {
		c, err = semver.NewConstraint(">= 0")
	} else {
		c, err = semver.NewConstraint(constraint)
	}
	if err != nil {
		return "", fmt.Errorf("invalid version constraint %q: %w", constraint, err)
	}

	var valid []*semver.Version
	for _, vStr := range available {
		v, err := semver.NewVersion(vStr)
		if err != nil {
			continue // skip invalid versions in the availability list
		}
		if c.Check(v) {
			valid = append(valid, v)
		}
	}

	if len(valid) == 0 {
		return "", fmt.Errorf("no version satisfies constraint %q from available options", constraint)
	}

	sort.Sort(semver.Collection(valid))
	return valid[len(valid)-1].Original(), nil
}
