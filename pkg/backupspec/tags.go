// Copyright (C) 2017 ScyllaDB

package backupspec

import (
	"regexp"
	"time"

	"github.com/arnaudpue/kudu/pkg/util/timeutc"
	"github.com/pkg/errors"
)

var (
	tagDateFormat = "20060102150405"
	tagRegexp     = regexp.MustCompile("^kbv_([0-9]{14})UTC$")
)

// NewBackupTag creates new backup tag for the current time.
func NewBackupTag() string {
	return BackupTagAt(timeutc.Now())
}

// BackupTagAt creates new backup tag for specified time.
func BackupTagAt(t time.Time) string {
	return "kbv_" + t.UTC().Format(tagDateFormat) + "UTC"
}

// IsBackupTag returns true if provided string has valid backup tag format.
func IsBackupTag(tag string) bool {
	return tagRegexp.MatchString(tag)
}

// BackupTagTime returns time of the provided backup tag.
func BackupTagTime(tag string) (time.Time, error) {
	m := tagRegexp.FindStringSubmatch(tag)
	if m == nil {
		return time.Time{}, errors.New("wrong format")
	}
	return timeutc.Parse(tagDateFormat, m[1])
}
