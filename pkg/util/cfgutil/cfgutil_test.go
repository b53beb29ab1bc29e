// Copyright (C) 2017 ScyllaDB

package cfgutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type testConfig struct {
	Name  string   `yaml:"name"`
	Count int      `yaml:"count"`
	Hosts []string `yaml:"hosts"`
}

func writeFile(t *testing.T, dir, name, data string) string {
	t.Helper()

	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(data), 0600); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestParseYAML(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	f := writeFile(t, dir, "config.yaml", "name: foo\ncount: 42\nhosts:\n  - a\n  - b\n")

	var v testConfig
	if err := ParseYAML(&v, f); err != nil {
		t.Fatal(err)
	}

	golden := testConfig{Name: "foo", Count: 42, Hosts: []string{"a", "b"}}
	if diff := cmp.Diff(golden, v); diff != "" {
		t.Fatal(diff)
	}
}

func TestParseYAMLOverride(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	base := writeFile(t, dir, "base.yaml", "name: foo\ncount: 42\n")
	over := writeFile(t, dir, "override.yaml", "count: 7\n")

	var v testConfig
	if err := ParseYAML(&v, base, over); err != nil {
		t.Fatal(err)
	}

	golden := testConfig{Name: "foo", Count: 7}
	if diff := cmp.Diff(golden, v); diff != "" {
		t.Fatal(diff)
	}
}

func TestParseYAMLMissingFileSkipped(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	f := writeFile(t, dir, "config.yaml", "name: foo\n")

	var v testConfig
	if err := ParseYAML(&v, filepath.Join(dir, "missing.yaml"), f); err != nil {
		t.Fatal(err)
	}
	if v.Name != "foo" {
		t.Fatalf("Name = %s, expected foo", v.Name)
	}
}
