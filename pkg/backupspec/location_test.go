// Copyright (C) 2017 ScyllaDB

package backupspec

import (
	"strings"
	"testing"
)

func TestLocationUnmarshalText(t *testing.T) {
	t.Parallel()

	table := []struct {
		Name     string
		Text     string
		Location Location
		Error    string
	}{
		{
			Name:     "filesystem",
			Text:     "fs:/var/tmp/backups",
			Location: Location{Provider: FS, Path: "/var/tmp/backups"},
		},
		{
			Name:     "bucket",
			Text:     "s3:backup-bucket",
			Location: Location{Provider: S3, Path: "backup-bucket"},
		},
		{
			Name:  "empty",
			Error: "invalid location",
		},
		{
			Name:  "no provider",
			Text:  "/var/tmp/backups",
			Error: "invalid location",
		},
		{
			Name:  "unknown provider",
			Text:  "ftp:archive",
			Error: "unrecognised provider",
		},
	}

	for i := range table {
		test := table[i]
		t.Run(test.Name, func(t *testing.T) {
			t.Parallel()

			var l Location
			err := l.UnmarshalText([]byte(test.Text))
			if test.Error != "" {
				if err == nil {
					t.Fatal("UnmarshalText() expected error")
				}
				if !strings.Contains(err.Error(), test.Error) {
					t.Fatalf("UnmarshalText() = %v, expected %v", err, test.Error)
				}
				return
			}
			if err != nil {
				t.Fatal("UnmarshalText() error", err)
			}
			if l != test.Location {
				t.Fatalf("UnmarshalText() = %v, expected %v", l, test.Location)
			}
		})
	}
}

func TestLocationTextRoundTrip(t *testing.T) {
	t.Parallel()

	golden := Location{Provider: FS, Path: "/var/tmp/backups"}
	b, err := golden.MarshalText()
	if err != nil {
		t.Fatal(err)
	}

	var l Location
	if err := l.UnmarshalText(b); err != nil {
		t.Fatal(err)
	}
	if l != golden {
		t.Fatalf("round trip %v != %v", l, golden)
	}
}

func TestLocationRemotePath(t *testing.T) {
	t.Parallel()

	l := Location{Provider: S3, Path: "bucket"}
	if got := l.RemotePath("manifest.json.gz"); got != "s3:bucket/manifest.json.gz" {
		t.Fatalf("RemotePath() = %s", got)
	}
}
