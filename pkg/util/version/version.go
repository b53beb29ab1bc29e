// Copyright (C) 2017 ScyllaDB

package version

import (
	"fmt"
	"strings"

	"github.com/hashicorp/go-version"
)

// Short excludes any metadata or pre-release information. For example,
// for a version "1.17.0-SNAPSHOT", it will return "1.17.0".
// If provided string isn't version, it will return input string.
func Short(v string) string {
	ver, err := version.NewVersion(v)
	if err != nil {
		return v
	}

	parts := make([]string, len(ver.Segments()))
	for i, s := range ver.Segments() {
		parts[i] = fmt.Sprint(s)
	}

	return strings.Join(parts, ".")
}

// CheckConstraint returns true iff version v satisfies the constraint c.
// Pre-release and build metadata are stripped before the check so that
// snapshot builds of a release line satisfy the line's constraints.
func CheckConstraint(v, c string) (bool, error) {
	ver, err := version.NewVersion(Short(v))
	if err != nil {
		return false, err
	}
	constraint, err := version.NewConstraint(c)
	if err != nil {
		return false, err
	}

	return constraint.Check(ver), nil
}
