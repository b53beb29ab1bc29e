// Copyright (C) 2017 ScyllaDB

// Package backupspec defines where backup artifacts of one round trip live,
// locations, scoped staging directories, tags and the artifact manifest.
package backupspec

import (
	"path"
	"regexp"

	"github.com/pkg/errors"
	"github.com/scylladb/go-set/strset"
)

// Provider specifies the storage backing a location, a local filesystem
// directory or an S3 style bucket consumed by the external pipeline.
type Provider string

// Provider enumeration.
const (
	FS = Provider("fs")
	S3 = Provider("s3")
)

func (p Provider) String() string {
	return string(p)
}

// MarshalText implements encoding.TextMarshaler.
func (p Provider) MarshalText() (text []byte, err error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Provider) UnmarshalText(text []byte) error {
	if s := string(text); !providers.Has(s) {
		return errors.Errorf("unrecognised provider %q", text)
	}
	*p = Provider(text)
	return nil
}

var providers = strset.New(FS.String(), S3.String())

// Location specifies storage provider and path holding backup artifacts,
// ex. fs:/var/tmp/backups or s3:backup-bucket.
type Location struct {
	Provider Provider `json:"provider"`
	Path     string   `json:"path"`
}

func (l Location) String() string {
	return l.Provider.String() + ":" + l.Path
}

// MarshalText implements encoding.TextMarshaler.
func (l Location) MarshalText() (text []byte, err error) {
	return []byte(l.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *Location) UnmarshalText(text []byte) error {
	pattern := regexp.MustCompile(`^([a-z0-9]+):([a-zA-Z0-9\-\._/]+)$`)

	m := pattern.FindSubmatch(text)
	if m == nil {
		return errors.Errorf("invalid location %q, the format is <provider>:<path> ex. fs:/var/tmp/backups", string(text))
	}

	if err := l.Provider.UnmarshalText(m[1]); err != nil {
		return errors.Wrapf(err, "invalid location %q", string(text))
	}

	l.Path = string(m[2])

	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (l Location) MarshalYAML() (interface{}, error) {
	return l.String(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (l *Location) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	return l.UnmarshalText([]byte(s))
}

// RemotePath returns a path in the location that can be handed to the
// external pipeline.
func (l Location) RemotePath(p string) string {
	r := l.Provider.String()
	if r != "" {
		r += ":"
	}
	return path.Join(r+l.Path, p)
}
