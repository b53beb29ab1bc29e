// Copyright (C) 2017 ScyllaDB

package pkg

// version contains version of the binary, it's set in build time.
var version = "Snapshot"

// Version returns the version of the binary.
func Version() string {
	return version
}
