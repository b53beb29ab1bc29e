// Copyright (C) 2017 ScyllaDB

package testutils

import (
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

var flagUpdate = flag.Bool("update", false, "update golden files")

// UpdateGoldenFiles is true when tests should rewrite their golden files
// instead of comparing against them.
func UpdateGoldenFiles() bool {
	if !flag.Parsed() {
		flag.Parse()
	}
	return *flagUpdate
}

// SaveGoldenTextFileIfNeeded writes s to the golden file of the running test
// when the update flag is set.
func SaveGoldenTextFileIfNeeded(t testing.TB, s string) {
	t.Helper()

	if !UpdateGoldenFiles() {
		return
	}

	name := goldenTextFileName(t)
	if err := os.MkdirAll(filepath.Dir(name), 0777); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(name, []byte(s), 0666); err != nil {
		t.Error(err)
	}
}

// LoadGoldenTextFile reads the golden file of the running test.
func LoadGoldenTextFile(t testing.TB) string {
	t.Helper()

	b, err := os.ReadFile(goldenTextFileName(t))
	if err != nil {
		t.Fatal(err)
	}
	return string(b)
}

func goldenTextFileName(t testing.TB) string {
	return filepath.Join("testdata", strings.TrimPrefix(t.Name(), "Test")+".golden.txt")
}
