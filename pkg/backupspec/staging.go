// Copyright (C) 2017 ScyllaDB

package backupspec

import (
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Staging is an exclusively owned transient directory under a root location.
// It holds the artifacts of one backup round trip between the backup and the
// restore steps and must be released on every exit path.
type Staging struct {
	location Location
	dir      string
}

// NewStaging creates a fresh uniquely named directory under root. Only
// filesystem locations can host staging.
func NewStaging(root Location, tag string) (*Staging, error) {
	if root.Provider != FS {
		return nil, errors.Errorf("provider %q cannot host staging", root.Provider)
	}

	dir := filepath.Join(root.Path, tag+"_"+uuid.NewString()[:8])
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.Wrap(err, "create staging directory")
	}

	return &Staging{
		location: Location{Provider: FS, Path: dir},
		dir:      dir,
	}, nil
}

// Location returns the staging directory as a location for the pipeline.
func (s *Staging) Location() Location {
	return s.location
}

// Path returns the staging directory on the local filesystem.
func (s *Staging) Path() string {
	return s.dir
}

// Release removes the staging directory with everything it holds. It is
// safe to call more than once.
func (s *Staging) Release() error {
	if s.dir == "" {
		return nil
	}
	if err := os.RemoveAll(s.dir); err != nil {
		return errors.Wrap(err, "remove staging directory")
	}
	s.dir = ""
	return nil
}
